package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

type OrderController struct {
	DB     *gorm.DB
	Orders *services.OrderStore
}

func NewOrderController(db *gorm.DB, orders *services.OrderStore) *OrderController {
	return &OrderController{DB: db, Orders: orders}
}

// MyOrders lists the caller's orders, newest first.
func (oc *OrderController) MyOrders(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}
	orders, err := oc.Orders.ListForUser(c.Request.Context(), me.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "My orders", orders)
}

// GetOrderByID returns an order to its owner or to back-office roles.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}
	order, err := oc.Orders.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if order.UserID != me.UserID && !me.Role.CanSeeAllOrders() {
		// do not reveal that the order exists
		respondServiceError(c, services.ErrOrderNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", gin.H{
		"order":           order,
		"reference":       order.Reference(),
		"total_formatted": utils.FormatCurrency(order.TotalAmount),
	})
}

// GetAllOrders is the staff list. ?payment_status= filters.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	q := oc.DB.WithContext(c.Request.Context()).Preload("Items").Preload("Table").
		Order("created_at desc").Order("id desc")
	if ps := c.Query("payment_status"); ps != "" {
		q = q.Where("payment_status = ?", ps)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// KitchenOrders is the chef view, optionally for one table (?table_id=).
func (oc *OrderController) KitchenOrders(c *gin.Context) {
	var tableID uint
	if t := c.Query("table_id"); t != "" {
		n, err := strconv.ParseUint(t, 10, 32)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errInvalidID)
			return
		}
		tableID = uint(n)
	}
	orders, err := oc.Orders.KitchenOrders(c.Request.Context(), tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kitchen orders", orders)
}

// UpdatePreparation advances an order through pending, preparing, ready, served.
func (oc *OrderController) UpdatePreparation(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	order, err := oc.Orders.UpdatePreparation(c.Request.Context(), id, body.Status, me.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.WithField("order_id", order.ID).WithField("status", order.PreparationStatus).Info("preparation status updated")
	utils.RespondJSON(c, http.StatusOK, "Preparation status updated", order)
}
