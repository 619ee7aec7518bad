// Package booking holds the pure reservation rules: slot overlap and the table
// capacity gate. Nothing here touches the database.
package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/yeremiapane/restaurant-ordering/models"
)

// DefaultDuration is the length of a reservation when the flow does not set one.
const DefaultDuration = 90 * time.Minute

var ErrInvalidSlot = errors.New("invalid reservation time")

// Slot is the half-open window [Start, Start+Duration).
type Slot struct {
	Start    time.Time
	Duration time.Duration
}

func (s Slot) End() time.Time { return s.Start.Add(s.Duration) }

// Overlaps reports whether two half-open windows share any instant.
// Back-to-back windows do not overlap.
func (s Slot) Overlaps(o Slot) bool {
	return s.Start.Before(o.End()) && o.Start.Before(s.End())
}

// NewSlot builds a slot from a YYYY-MM-DD date and an HH:MM clock time.
func NewSlot(date, clock string, duration time.Duration) (Slot, error) {
	start, err := time.ParseInLocation(models.DateLayout+" "+models.ClockLayout, date+" "+clock, time.UTC)
	if err != nil {
		return Slot{}, fmt.Errorf("%w: %q %q", ErrInvalidSlot, date, clock)
	}
	if duration <= 0 {
		return Slot{}, fmt.Errorf("%w: duration %s", ErrInvalidSlot, duration)
	}
	return Slot{Start: start, Duration: duration}, nil
}

// ReservationSlot returns the window booked by r.
func ReservationSlot(r models.Reservation) (Slot, error) {
	return NewSlot(r.ReservationDate, r.ReservationTime, time.Duration(r.DurationMinutes)*time.Minute)
}

// ConfirmedSlots keeps the confirmed reservations of tableID on date and converts
// them to slots. A malformed stored time is reported rather than skipped.
func ConfirmedSlots(tableID uint, date string, reservations []models.Reservation) ([]Slot, error) {
	slots := make([]Slot, 0, len(reservations))
	for _, r := range reservations {
		if r.TableID != tableID || r.ReservationDate != date || r.Status != models.ReservationConfirmed {
			continue
		}
		s, err := ReservationSlot(r)
		if err != nil {
			return nil, fmt.Errorf("reservation %d: %w", r.ID, err)
		}
		slots = append(slots, s)
	}
	return slots, nil
}

// CheckConflict reports whether proposed overlaps any of the existing slots.
func CheckConflict(proposed Slot, existing []Slot) bool {
	for _, s := range existing {
		if proposed.Overlaps(s) {
			return true
		}
	}
	return false
}
