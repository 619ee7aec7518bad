package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/models"
)

// OrderReaper expires orders whose payment never completed: the customer left
// the checkout, or the payment window was closed without a callback.
type OrderReaper struct {
	db       *gorm.DB
	ttl      time.Duration
	interval time.Duration
	log      *logrus.Logger
	now      func() time.Time

	stop chan struct{}
	once sync.Once
}

func NewOrderReaper(db *gorm.DB, ttl, interval time.Duration, log *logrus.Logger) *OrderReaper {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &OrderReaper{
		db:       db,
		ttl:      ttl,
		interval: interval,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		stop:     make(chan struct{}),
	}
}

// Start runs RunOnce every interval until Stop is called.
func (r *OrderReaper) Start() {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := r.RunOnce(context.Background()); err != nil {
					r.log.WithError(err).Error("expiring pending orders")
				}
			case <-r.stop:
				return
			}
		}
	}()
	r.log.WithField("ttl", r.ttl).Info("pending order reaper started")
}

func (r *OrderReaper) Stop() {
	r.once.Do(func() { close(r.stop) })
}

// RunOnce cancels every pending order older than the TTL and returns the ids it
// expired. Age is compared in Go to stay independent of the driver's time encoding.
func (r *OrderReaper) RunOnce(ctx context.Context) ([]uint, error) {
	var pending []models.Order
	if err := r.db.WithContext(ctx).
		Where("payment_status = ? AND status = ?", models.PaymentPending, models.OrderPending).
		Find(&pending).Error; err != nil {
		return nil, err
	}

	cutoff := r.now().Add(-r.ttl)
	var expired []uint
	for _, order := range pending {
		if !order.CreatedAt.Before(cutoff) {
			continue
		}
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Order{}).
				Where("id = ? AND payment_status = ?", order.ID, models.PaymentPending).
				Updates(map[string]interface{}{
					"status":         models.OrderCancelled,
					"payment_status": models.PaymentExpired,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// paid in the meantime
				return nil
			}
			expired = append(expired, order.ID)
			return recordChange(tx, SourceOrders, order.ID, models.ActionUpdate)
		})
		if err != nil {
			r.log.WithError(err).WithField("order_id", order.ID).Error("expire pending order")
			continue
		}
	}

	if len(expired) > 0 {
		r.log.WithField("orders", expired).Info("expired unpaid orders")
	}
	return expired, nil
}
