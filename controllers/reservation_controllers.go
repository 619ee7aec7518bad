package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

type ReservationController struct {
	Reservations *services.ReservationService
}

func NewReservationController(svc *services.ReservationService) *ReservationController {
	return &ReservationController{Reservations: svc}
}

// CreateReservation books a table for the caller.
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}
	var body struct {
		TableID         uint   `json:"table_id" binding:"required"`
		Date            string `json:"reservation_date" binding:"required"`
		Time            string `json:"reservation_time" binding:"required"`
		Guests          int    `json:"guests" binding:"required"`
		SpecialRequests string `json:"special_requests"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	res, err := rc.Reservations.Book(c.Request.Context(), services.BookingRequest{
		UserID:          me.UserID,
		Email:           me.Email,
		TableID:         body.TableID,
		Date:            body.Date,
		Time:            body.Time,
		Guests:          body.Guests,
		SpecialRequests: body.SpecialRequests,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table booked successfully", res)
}

func (rc *ReservationController) MyReservations(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}
	rows, err := rc.Reservations.ListForUser(c.Request.Context(), me.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "My reservations", rows)
}

// CancelReservation lets owners cancel their booking; staff and admins may cancel any.
func (rc *ReservationController) CancelReservation(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "reservation_id")
	if !ok {
		return
	}
	res, err := rc.Reservations.Cancel(c.Request.Context(), id, me.UserID, me.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.WithField("reservation_id", res.ID).WithField("by", me.UserID).Info("reservation cancelled")
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", res)
}

// ReservationsByDate is the staff view of one day; ?date= defaults to today (UTC).
func (rc *ReservationController) ReservationsByDate(c *gin.Context) {
	date := c.DefaultQuery("date", time.Now().UTC().Format(models.DateLayout))
	rows, err := rc.Reservations.ListByDate(c.Request.Context(), date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservations for "+date, rows)
}
