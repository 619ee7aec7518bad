package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

// NotificationController serves the kitchen notes left by preparation updates.
type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetAllNotifications lists the latest notifications; ?order_id= narrows to one order.
func (nc *NotificationController) GetAllNotifications(c *gin.Context) {
	q := nc.DB.WithContext(c.Request.Context()).Order("id desc").Limit(100)
	if oid := c.Query("order_id"); oid != "" {
		q = q.Where("order_id = ?", oid)
	}
	var notifs []models.Notification
	if err := q.Find(&notifs).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All notifications", notifs)
}

func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	id, ok := paramID(c, "notif_id")
	if !ok {
		return
	}
	if err := nc.DB.Delete(&models.Notification{}, id).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification deleted", gin.H{"notif_id": id})
}
