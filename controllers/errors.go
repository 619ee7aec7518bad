package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-ordering/booking"
	"github.com/yeremiapane/restaurant-ordering/cart"
	"github.com/yeremiapane/restaurant-ordering/middlewares"
	"github.com/yeremiapane/restaurant-ordering/ordering"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

var (
	errInternal     = errors.New("something went wrong, please try again")
	errInvalidID    = errors.New("invalid id")
	errUnauthorized = errors.New("unauthorized")

	errInvalidGuests    = errors.New("guests must be a positive number")
	errTableNumberTaken = errors.New("table number already exists")
)

// statusFor maps domain errors to HTTP status codes. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ordering.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrNotReservationOwner):
		return http.StatusForbidden
	case errors.Is(err, services.ErrTableNotFound),
		errors.Is(err, services.ErrReservationNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, cart.ErrItemNotInCart):
		return http.StatusNotFound
	case errors.Is(err, services.ErrReservationConflict),
		errors.Is(err, services.ErrAlreadyCancelled),
		errors.Is(err, services.ErrOrderNotPending),
		errors.Is(err, services.ErrTableUnavailable),
		errors.Is(err, services.ErrSessionBusy),
		errors.Is(err, services.ErrTableHasOrders),
		errors.Is(err, ordering.ErrOrderInFlight),
		errors.Is(err, ordering.ErrInvalidTransition),
		errors.Is(err, ordering.ErrTableUnavailable),
		errors.Is(err, ordering.ErrNoCurrentOrder):
		return http.StatusConflict
	case errors.Is(err, booking.ErrInsufficientCapacity),
		errors.Is(err, booking.ErrInvalidGuests),
		errors.Is(err, booking.ErrInvalidSlot),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, ordering.ErrNoTable),
		errors.Is(err, ordering.ErrEmptyCart),
		errors.Is(err, ordering.ErrMissingEmail),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidTable),
		errors.Is(err, services.ErrInvalidQR),
		errors.Is(err, services.ErrInvalidDate):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// respondServiceError writes err with its mapped status. Internal errors are
// logged and replaced by a generic message.
func respondServiceError(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		utils.ErrorLogger.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
		utils.RespondError(c, code, errInternal)
		return
	}
	utils.RespondError(c, code, err)
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, errInvalidID)
		return 0, false
	}
	return uint(id), true
}

func currentUser(c *gin.Context) (middlewares.Identity, bool) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errUnauthorized)
	}
	return user, ok
}
