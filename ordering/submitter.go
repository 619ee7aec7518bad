package ordering

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-ordering/booking"
	"github.com/yeremiapane/restaurant-ordering/cart"
	"github.com/yeremiapane/restaurant-ordering/models"
)

// Store is the persistence the ordering flow needs.
type Store interface {
	TableExists(ctx context.Context, tableID uint) (bool, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	MarkOrderPaid(ctx context.Context, orderID uint, payment PaymentDetails) (*models.Order, error)
	RecordPaymentFailure(ctx context.Context, orderID uint, amount int64, cause string) error
}

// Notifier delivers the order confirmation to the customer.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, to string, c Confirmation) error
}

// PaymentDetails is the provider's success payload.
type PaymentDetails struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
	Raw      string `json:"raw,omitempty"`
}

// Confirmation is the snapshot shown on the confirmation view and sent by mail.
type Confirmation struct {
	OrderID     uint        `json:"order_id"`
	Reference   string      `json:"reference"`
	TableNumber int         `json:"table_number"`
	Total       int64       `json:"total"`
	Items       []cart.Item `json:"items"`
	PaymentID   string      `json:"payment_id"`
	Warning     string      `json:"warning,omitempty"`
}

type Submitter struct {
	store    Store
	notifier Notifier
	log      *logrus.Logger
}

func NewSubmitter(store Store, notifier Notifier, log *logrus.Logger) *Submitter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Submitter{store: store, notifier: notifier, log: log}
}

// SelectTable attaches a table to the session if it seats the guests.
func (sub *Submitter) SelectTable(s *Session, table models.Table, guests int) error {
	if s.State != StateNoTable && s.State != StateTableSelected {
		return ErrInvalidTransition
	}
	if err := booking.SelectTable(table, guests).Err(); err != nil {
		return err
	}
	s.Table = &TableRef{ID: table.ID, Number: table.Number, Capacity: table.Capacity}
	s.Guests = guests
	s.State = StateTableSelected
	return nil
}

// AddItem puts one more of item in the cart. The first add starts ordering.
func (sub *Submitter) AddItem(s *Session, item cart.Item) error {
	if !s.editable() {
		if s.State == StateNoTable {
			return ErrNoTable
		}
		return ErrInvalidTransition
	}
	s.Cart.AddItem(item)
	s.State = StateOrdering
	return nil
}

func (sub *Submitter) UpdateQuantity(s *Session, menuItemID uint, quantity int) error {
	if !s.editable() {
		return ErrInvalidTransition
	}
	return s.Cart.UpdateQuantity(menuItemID, quantity)
}

func (sub *Submitter) RemoveItem(s *Session, menuItemID uint) error {
	if !s.editable() {
		return ErrInvalidTransition
	}
	return s.Cart.RemoveItem(menuItemID)
}

// PlaceOrder persists a pending order for the cart and moves the session to
// AwaitingPayment. It does not wait for payment.
func (sub *Submitter) PlaceOrder(ctx context.Context, s *Session) (*models.Order, error) {
	if s.State == StateAwaitingPayment {
		return nil, ErrOrderInFlight
	}
	if s.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	if s.Table == nil {
		return nil, ErrNoTable
	}
	if s.Cart.Empty() {
		return nil, ErrEmptyCart
	}
	if s.State != StateOrdering {
		return nil, ErrInvalidTransition
	}

	ok, err := sub.store.TableExists(ctx, s.Table.ID)
	if err != nil {
		return nil, fmt.Errorf("check table %d: %w", s.Table.ID, err)
	}
	if !ok {
		return nil, ErrTableUnavailable
	}

	order := &models.Order{
		TableID:           s.Table.ID,
		UserID:            s.UserID,
		Items:             s.Cart.OrderItems(),
		TotalAmount:       s.Cart.Total(),
		Status:            models.OrderPending,
		PaymentStatus:     models.PaymentPending,
		PreparationStatus: models.PreparationPending,
	}
	if err := sub.store.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.OrderID = order.ID
	s.OrderTotal = order.TotalAmount
	s.LastError = ""
	s.State = StateAwaitingPayment

	sub.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"table_id": order.TableID,
		"user_id":  order.UserID,
		"total":    order.TotalAmount,
	}).Info("order placed, awaiting payment")
	return order, nil
}

// OnPaymentSuccess confirms the pending order. A failed confirmation mail is
// reported in Confirmation.Warning and never undoes the payment.
func (sub *Submitter) OnPaymentSuccess(ctx context.Context, s *Session, payment PaymentDetails) (*Confirmation, error) {
	if s.State != StateAwaitingPayment || s.OrderID == 0 {
		return nil, ErrNoCurrentOrder
	}
	if s.Email == "" {
		return nil, ErrMissingEmail
	}

	order, err := sub.store.MarkOrderPaid(ctx, s.OrderID, payment)
	if err != nil {
		return nil, fmt.Errorf("confirm payment for order %d: %w", s.OrderID, err)
	}

	conf := &Confirmation{
		OrderID:   order.ID,
		Reference: order.Reference(),
		Total:     order.TotalAmount,
		Items:     append([]cart.Item(nil), s.Cart.Items...),
		PaymentID: payment.ID,
	}
	if s.Table != nil {
		conf.TableNumber = s.Table.Number
	}

	s.Cart.Clear()
	s.State = StatePaid

	sub.log.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"payment_id": payment.ID,
		"total":      order.TotalAmount,
	}).Info("payment confirmed")

	if sub.notifier != nil {
		if err := sub.notifier.SendOrderConfirmation(ctx, s.Email, *conf); err != nil {
			sub.log.WithError(err).WithField("order_id", order.ID).Warn("order confirmation not delivered")
			conf.Warning = "Your order is confirmed, but we could not send the confirmation email."
		}
	}
	return conf, nil
}

// OnPaymentError returns the session to Ordering with the cart intact. The pending
// order row stays unpaid until the reaper expires it.
func (sub *Submitter) OnPaymentError(ctx context.Context, s *Session, cause string) error {
	if s.State != StateAwaitingPayment || s.OrderID == 0 {
		return ErrNoCurrentOrder
	}
	orderID := s.OrderID

	s.State = StatePaymentFailed
	if err := sub.store.RecordPaymentFailure(ctx, orderID, s.OrderTotal, cause); err != nil {
		sub.log.WithError(err).WithField("order_id", orderID).Error("failed to record payment failure")
	}
	sub.log.WithFields(logrus.Fields{"order_id": orderID, "cause": cause}).Warn("payment failed")

	s.LastError = "Payment failed. Please try again."
	s.OrderID = 0
	s.OrderTotal = 0
	s.State = StateOrdering
	return nil
}
