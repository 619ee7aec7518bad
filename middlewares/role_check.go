package middlewares

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

var errUnauthorized = errors.New("unauthorized")

// RoleCheck lets the request through when allowed(role) holds. It must run after
// AuthMiddleware.
func RoleCheck(allowed func(models.Role) bool, area string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, errUnauthorized)
			c.Abort()
			return
		}
		if !allowed(user.Role) {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("%s access required", area))
			c.Abort()
			return
		}
		c.Next()
	}
}

// StaffOnly admits staff and admins.
func StaffOnly() gin.HandlerFunc {
	return RoleCheck(models.Role.CanManageTables, "staff")
}

// ChefOnly admits chefs and admins.
func ChefOnly() gin.HandlerFunc {
	return RoleCheck(models.Role.CanRunKitchen, "chef")
}

// BackOfficeOnly admits every role except customers.
func BackOfficeOnly() gin.HandlerFunc {
	return RoleCheck(models.Role.CanSeeAllOrders, "back office")
}

func AdminOnly() gin.HandlerFunc {
	return RoleCheck(models.Role.IsAdmin, "admin")
}
