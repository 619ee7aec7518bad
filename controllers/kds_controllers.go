package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/restaurant-ordering/kds"
	"github.com/yeremiapane/restaurant-ordering/middlewares"
)

// KDSController serves the realtime change feed for kitchen, floor and admin screens.
type KDSController struct {
	Hub      *kds.Hub
	Upgrader websocket.Upgrader
}

func NewKDSController(hub *kds.Hub, allowOrigin func(r *http.Request) bool) *KDSController {
	if allowOrigin == nil {
		allowOrigin = func(r *http.Request) bool { return true }
	}
	return &KDSController{
		Hub:      hub,
		Upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
	}
}

// Subscribe upgrades to a websocket. ?tables=orders,tables narrows the feed.
func (kc *KDSController) Subscribe(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if !user.Role.Realtime() {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := kc.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	kc.Hub.Register(ws, user.Role.String(), kds.ParseTables(c.Query("tables")))

	// drain until the client goes away
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	kc.Hub.Unregister(ws)
}
