package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/restaurant-ordering/booking"
	"github.com/yeremiapane/restaurant-ordering/models"
)

// BookingNotifier delivers reservation confirmations.
type BookingNotifier interface {
	SendBookingConfirmation(ctx context.Context, to string, r models.Reservation) error
}

// BookingRequest is a customer's reservation form.
type BookingRequest struct {
	UserID          uint
	Email           string
	TableID         uint
	Date            string // YYYY-MM-DD
	Time            string // HH:MM
	Guests          int
	SpecialRequests string
}

// ReservationService books and cancels tables. The conflict check and the insert
// run in one transaction holding a row lock on the table, so two concurrent
// bookings of the same slot cannot both succeed.
type ReservationService struct {
	db       *gorm.DB
	duration time.Duration
	notifier BookingNotifier
	log      *logrus.Logger
}

func NewReservationService(db *gorm.DB, duration time.Duration, notifier BookingNotifier, log *logrus.Logger) *ReservationService {
	if duration <= 0 {
		duration = booking.DefaultDuration
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ReservationService{db: db, duration: duration, notifier: notifier, log: log}
}

// lockTable selects the table row FOR UPDATE where the dialect supports it.
// SQLite serializes writers on its own.
func lockTable(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Book reserves req.TableID for the canonical duration starting at req.Date req.Time.
func (s *ReservationService) Book(ctx context.Context, req BookingRequest) (*models.Reservation, error) {
	proposed, err := booking.NewSlot(req.Date, req.Time, s.duration)
	if err != nil {
		return nil, err
	}

	res := models.Reservation{
		TableID:         req.TableID,
		UserID:          req.UserID,
		ReservationDate: req.Date,
		ReservationTime: req.Time,
		DurationMinutes: int(s.duration / time.Minute),
		Guests:          req.Guests,
		Status:          models.ReservationConfirmed,
		SpecialRequests: strings.TrimSpace(req.SpecialRequests),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := lockTable(tx).First(&table, req.TableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTableNotFound
			}
			return err
		}
		if err := booking.SelectTable(table, req.Guests).Err(); err != nil {
			return err
		}

		var existing []models.Reservation
		if err := tx.Where("table_id = ? AND reservation_date = ? AND status = ?",
			req.TableID, req.Date, models.ReservationConfirmed).
			Find(&existing).Error; err != nil {
			return err
		}
		slots, err := booking.ConfirmedSlots(req.TableID, req.Date, existing)
		if err != nil {
			return err
		}
		if booking.CheckConflict(proposed, slots) {
			return ErrReservationConflict
		}

		if err := tx.Create(&res).Error; err != nil {
			return err
		}
		userID := req.UserID
		if err := tx.Create(&models.TableStatusHistory{
			TableID:   table.ID,
			Status:    models.TableReserved,
			ChangedBy: &userID,
			Notes:     fmt.Sprintf("Reserved for %d guests on %s at %s", req.Guests, req.Date, req.Time),
		}).Error; err != nil {
			return err
		}
		res.Table = table
		return recordChange(tx, SourceReservations, res.ID, models.ActionInsert)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"reservation_id": res.ID,
		"table_id":       res.TableID,
		"date":           res.ReservationDate,
		"time":           res.ReservationTime,
	}).Info("table booked")

	if s.notifier != nil && req.Email != "" {
		if err := s.notifier.SendBookingConfirmation(ctx, req.Email, res); err != nil {
			s.log.WithError(err).WithField("reservation_id", res.ID).Warn("booking confirmation not delivered")
		}
	}
	return &res, nil
}

// Cancel marks a reservation cancelled. Customers may only cancel their own.
func (s *ReservationService) Cancel(ctx context.Context, id, userID uint, role models.Role) (*models.Reservation, error) {
	var res models.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Table").First(&res, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return err
		}
		if res.UserID != userID && !role.CanManageTables() {
			return ErrNotReservationOwner
		}
		if res.Status == models.ReservationCancelled {
			return ErrAlreadyCancelled
		}
		if err := tx.Model(&res).Update("status", models.ReservationCancelled).Error; err != nil {
			return err
		}
		res.Status = models.ReservationCancelled
		return recordChange(tx, SourceReservations, res.ID, models.ActionUpdate)
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ListForUser returns a user's bookings, newest date first.
func (s *ReservationService) ListForUser(ctx context.Context, userID uint) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := s.db.WithContext(ctx).Preload("Table").
		Where("user_id = ?", userID).
		Order("reservation_date desc").Order("reservation_time desc").
		Find(&rows).Error
	return rows, err
}

// ListByDate returns all reservations on a date in time order.
func (s *ReservationService) ListByDate(ctx context.Context, date string) ([]models.Reservation, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	var rows []models.Reservation
	err := s.db.WithContext(ctx).Preload("Table").
		Where("reservation_date = ?", date).
		Order("reservation_time asc").
		Find(&rows).Error
	return rows, err
}
