package booking

import (
	"errors"

	"github.com/yeremiapane/restaurant-ordering/models"
)

// Rejection reasons.
const (
	ReasonInsufficientCapacity = "insufficient capacity"
	ReasonInvalidGuests        = "invalid guest count"
)

var (
	ErrInsufficientCapacity = errors.New(ReasonInsufficientCapacity)
	ErrInvalidGuests        = errors.New(ReasonInvalidGuests)
)

// Selection is the outcome of the capacity gate.
type Selection struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// Err returns the sentinel error matching a rejected selection, or nil.
func (s Selection) Err() error {
	switch {
	case s.Accepted:
		return nil
	case s.Reason == ReasonInvalidGuests:
		return ErrInvalidGuests
	default:
		return ErrInsufficientCapacity
	}
}

// SelectTable accepts the table iff it seats the requested number of guests.
func SelectTable(table models.Table, guests int) Selection {
	if guests < 1 {
		return Selection{Reason: ReasonInvalidGuests}
	}
	if table.Capacity < guests {
		return Selection{Reason: ReasonInsufficientCapacity}
	}
	return Selection{Accepted: true}
}

// FitTables keeps the tables that pass SelectTable for guests, preserving order.
func FitTables(tables []models.Table, guests int) []models.Table {
	fit := make([]models.Table, 0, len(tables))
	for _, t := range tables {
		if SelectTable(t, guests).Accepted {
			fit = append(fit, t)
		}
	}
	return fit
}
