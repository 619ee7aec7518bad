package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/ordering"
)

// OrderStore is the gorm-backed order persistence used by the ordering flow, the
// kitchen and the admin views.
type OrderStore struct {
	db *gorm.DB
}

func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

var _ ordering.Store = (*OrderStore)(nil)

func (s *OrderStore) TableExists(ctx context.Context, tableID uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Table{}).Where("id = ?", tableID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateOrder inserts the order and its items in one transaction.
func (s *OrderStore) CreateOrder(ctx context.Context, order *models.Order) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		return recordChange(tx, SourceOrders, order.ID, models.ActionInsert)
	})
}

// payableStatuses are the payment states a success callback may settle. An
// order the reaper expired is still payable: the provider has captured the money.
var payableStatuses = []string{models.PaymentPending, models.PaymentExpired}

// MarkOrderPaid flips a pending or expired order to paid/confirmed and records
// the payment.
func (s *OrderStore) MarkOrderPaid(ctx context.Context, orderID uint, payment ordering.PaymentDetails) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if !payable(order.PaymentStatus) {
			return ErrOrderNotPending
		}

		now := time.Now().UTC()
		paymentID := payment.ID
		res := tx.Model(&models.Order{}).
			Where("id = ? AND payment_status IN ?", orderID, payableStatuses).
			Updates(map[string]interface{}{
				"payment_status":  models.PaymentPaid,
				"status":          models.OrderConfirmed,
				"payment_id":      paymentID,
				"payment_details": payment.Raw,
				"paid_at":         now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOrderNotPending
		}
		order.PaymentStatus = models.PaymentPaid
		order.Status = models.OrderConfirmed
		order.PaymentID = &paymentID
		order.PaymentDetails = payment.Raw
		order.PaidAt = &now

		provider := payment.Provider
		if provider == "" {
			provider = "paypal"
		}
		if err := tx.Create(&models.Payment{
			OrderID:    orderID,
			Reference:  uuid.NewString(),
			Provider:   provider,
			ExternalID: payment.ID,
			Amount:     order.TotalAmount,
			Status:     models.PaymentAttemptSuccess,
			Details:    payment.Raw,
		}).Error; err != nil {
			return err
		}
		return recordChange(tx, SourceOrders, orderID, models.ActionUpdate)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func payable(status string) bool {
	for _, p := range payableStatuses {
		if status == p {
			return true
		}
	}
	return false
}

func (s *OrderStore) RecordPaymentFailure(ctx context.Context, orderID uint, amount int64, cause string) error {
	return s.db.WithContext(ctx).Create(&models.Payment{
		OrderID:   orderID,
		Reference: uuid.NewString(),
		Provider:  "paypal",
		Amount:    amount,
		Status:    models.PaymentAttemptFailed,
		Details:   cause,
	}).Error
}

// Get loads one order with its items and table.
func (s *OrderStore) Get(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Items").Preload("Table").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ListForUser returns a user's orders, newest first.
func (s *OrderStore) ListForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).Preload("Items").Preload("Table").
		Where("user_id = ?", userID).
		Order("created_at desc").Order("id desc").
		Find(&orders).Error
	return orders, err
}

// KitchenOrders returns orders newest first, optionally for one table.
func (s *OrderStore) KitchenOrders(ctx context.Context, tableID uint) ([]models.Order, error) {
	q := s.db.WithContext(ctx).Preload("Items").Preload("Table").
		Order("created_at desc").Order("id desc")
	if tableID != 0 {
		q = q.Where("table_id = ?", tableID)
	}
	var orders []models.Order
	err := q.Find(&orders).Error
	return orders, err
}

// UpdatePreparation sets the kitchen status and leaves a notification for the floor.
func (s *OrderStore) UpdatePreparation(ctx context.Context, orderID uint, status string, chefID uint) (*models.Order, error) {
	if !models.ValidPreparationStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if err := tx.Model(&order).Update("preparation_status", status).Error; err != nil {
			return err
		}
		order.PreparationStatus = status
		id := order.ID
		if err := tx.Create(&models.Notification{
			OrderID: &id,
			UserID:  &chefID,
			Status:  status,
			Message: fmt.Sprintf("Order marked as %s by chef", status),
		}).Error; err != nil {
			return err
		}
		return recordChange(tx, SourceOrders, order.ID, models.ActionUpdate)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// PaidOrders returns every paid order. Aggregation happens in Go so that it does
// not depend on the SQL dialect's date functions.
func (s *OrderStore) PaidOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Where("payment_status = ?", models.PaymentPaid).
		Find(&orders).Error
	return orders, err
}
