package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/models"
)

// PaymentMetrics summarizes payment callbacks and order payment states.
type PaymentMetrics struct {
	TotalTransactions  int64 `json:"total_transactions"`
	SuccessfulPayments int64 `json:"successful_payments"`
	FailedPayments     int64 `json:"failed_payments"`
	PendingOrders      int64 `json:"pending_orders"`
	ExpiredOrders      int64 `json:"expired_orders"`
}

// CollectPaymentMetrics counts payment rows by status and orders by payment status.
func CollectPaymentMetrics(ctx context.Context, db *gorm.DB) (PaymentMetrics, error) {
	var m PaymentMetrics
	db = db.WithContext(ctx)

	counts := []struct {
		model interface{}
		where string
		arg   string
		dest  *int64
	}{
		{&models.Payment{}, "status = ?", models.PaymentAttemptSuccess, &m.SuccessfulPayments},
		{&models.Payment{}, "status = ?", models.PaymentAttemptFailed, &m.FailedPayments},
		{&models.Order{}, "payment_status = ?", models.PaymentPending, &m.PendingOrders},
		{&models.Order{}, "payment_status = ?", models.PaymentExpired, &m.ExpiredOrders},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Where(c.where, c.arg).Count(c.dest).Error; err != nil {
			return PaymentMetrics{}, err
		}
	}
	m.TotalTransactions = m.SuccessfulPayments + m.FailedPayments
	return m, nil
}
