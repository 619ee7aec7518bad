package services

import "errors"

var (
	ErrTableNotFound       = errors.New("table not found")
	ErrReservationConflict = errors.New("this table is already booked for the selected time")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrNotReservationOwner = errors.New("you can only cancel your own reservations")
	ErrAlreadyCancelled    = errors.New("reservation is already cancelled")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNotPending     = errors.New("order is not awaiting payment")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidTable        = errors.New("table number and capacity must be positive")
	ErrSessionNotFound     = errors.New("ordering session not found")
	ErrTableUnavailable    = errors.New("table is not available")
	ErrInvalidDate         = errors.New("invalid date, expected YYYY-MM-DD")
	ErrSessionBusy         = errors.New("another request is updating this ordering session")
	ErrTableHasOrders      = errors.New("table has orders and cannot be deleted")
)
