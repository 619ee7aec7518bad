package ordering

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-ordering/booking"
	"github.com/yeremiapane/restaurant-ordering/cart"
	"github.com/yeremiapane/restaurant-ordering/models"
)

type fakeStore struct {
	tables    map[uint]bool
	orders    map[uint]*models.Order
	failures  []uint
	writes    int
	createErr error
	paidErr   error
	nextID    uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{tables: map[uint]bool{1: true}, orders: map[uint]*models.Order{}}
}

func (f *fakeStore) TableExists(_ context.Context, id uint) (bool, error) {
	return f.tables[id], nil
}

func (f *fakeStore) CreateOrder(_ context.Context, o *models.Order) error {
	f.writes++
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	o.ID = f.nextID
	f.orders[o.ID] = o
	return nil
}

func (f *fakeStore) MarkOrderPaid(_ context.Context, id uint, p PaymentDetails) (*models.Order, error) {
	f.writes++
	if f.paidErr != nil {
		return nil, f.paidErr
	}
	o, ok := f.orders[id]
	if !ok {
		return nil, errors.New("not found")
	}
	o.PaymentStatus = models.PaymentPaid
	o.Status = models.OrderConfirmed
	o.PaymentID = &p.ID
	return o, nil
}

func (f *fakeStore) RecordPaymentFailure(_ context.Context, id uint, _ int64, _ string) error {
	f.writes++
	f.failures = append(f.failures, id)
	return nil
}

type fakeNotifier struct {
	sent []Confirmation
	err  error
}

func (n *fakeNotifier) SendOrderConfirmation(_ context.Context, _ string, c Confirmation) error {
	n.sent = append(n.sent, c)
	return n.err
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var table4 = models.Table{ID: 1, Number: 4, Capacity: 4, Status: models.TableAvailable}

func readySession(t *testing.T, sub *Submitter) *Session {
	t.Helper()
	s := NewSession(10, "guest@example.com", models.RoleCustomer)
	require.NoError(t, sub.SelectTable(s, table4, 2))
	require.NoError(t, sub.AddItem(s, cart.Item{MenuItemID: 1, Name: "Burger", Price: 1000}))
	require.NoError(t, sub.AddItem(s, cart.Item{MenuItemID: 1, Name: "Burger", Price: 1000}))
	require.NoError(t, sub.AddItem(s, cart.Item{MenuItemID: 2, Name: "Soda", Price: 500}))
	return s
}

func TestSelectTable_CapacityGate(t *testing.T) {
	sub := NewSubmitter(newFakeStore(), nil, quietLogger())
	s := NewSession(10, "guest@example.com", models.RoleCustomer)

	err := sub.SelectTable(s, table4, 6)
	assert.ErrorIs(t, err, booking.ErrInsufficientCapacity)
	assert.Equal(t, StateNoTable, s.State)

	require.NoError(t, sub.SelectTable(s, table4, 4))
	assert.Equal(t, StateTableSelected, s.State)
	assert.Equal(t, 4, s.Table.Number)
}

func TestAddItem_RequiresTable(t *testing.T) {
	sub := NewSubmitter(newFakeStore(), nil, quietLogger())
	s := NewSession(10, "guest@example.com", models.RoleCustomer)
	assert.ErrorIs(t, sub.AddItem(s, cart.Item{MenuItemID: 1, Price: 100}), ErrNoTable)
}

func TestPlaceOrder_EmptyCartDoesNotWrite(t *testing.T) {
	store := newFakeStore()
	sub := NewSubmitter(store, nil, quietLogger())
	s := NewSession(10, "guest@example.com", models.RoleCustomer)
	require.NoError(t, sub.SelectTable(s, table4, 2))

	_, err := sub.PlaceOrder(context.Background(), s)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, store.writes)
	assert.Empty(t, store.orders)
}

func TestPlaceOrder_Guards(t *testing.T) {
	store := newFakeStore()
	sub := NewSubmitter(store, nil, quietLogger())

	s := readySession(t, sub)
	s.UserID = 0
	_, err := sub.PlaceOrder(context.Background(), s)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	s = readySession(t, sub)
	delete(store.tables, 1)
	_, err = sub.PlaceOrder(context.Background(), s)
	assert.ErrorIs(t, err, ErrTableUnavailable)
	assert.Equal(t, StateOrdering, s.State)
	assert.Zero(t, store.writes)
}

func TestPlaceOrder_PersistsCartTotal(t *testing.T) {
	store := newFakeStore()
	sub := NewSubmitter(store, nil, quietLogger())
	s := readySession(t, sub)

	order, err := sub.PlaceOrder(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), order.TotalAmount)
	assert.Equal(t, s.Cart.Total(), order.TotalAmount)
	assert.Equal(t, order.TotalAmount, order.ItemsTotal())
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.Equal(t, StateAwaitingPayment, s.State)
	assert.Equal(t, order.ID, s.OrderID)

	_, err = sub.PlaceOrder(context.Background(), s)
	assert.ErrorIs(t, err, ErrOrderInFlight)
	assert.ErrorIs(t, sub.AddItem(s, cart.Item{MenuItemID: 3, Price: 1}), ErrInvalidTransition)
}

func TestPlaceOrder_StoreFailureStaysOrdering(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("connection reset")
	sub := NewSubmitter(store, nil, quietLogger())
	s := readySession(t, sub)

	_, err := sub.PlaceOrder(context.Background(), s)
	require.Error(t, err)
	assert.Equal(t, StateOrdering, s.State)
	assert.Zero(t, s.OrderID)
	assert.Len(t, s.Cart.Items, 2)
}

func TestOnPaymentSuccess(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	sub := NewSubmitter(store, notifier, quietLogger())
	s := readySession(t, sub)
	order, err := sub.PlaceOrder(context.Background(), s)
	require.NoError(t, err)

	conf, err := sub.OnPaymentSuccess(context.Background(), s, PaymentDetails{ID: "PAY-1", Provider: "paypal"})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentPaid, store.orders[order.ID].PaymentStatus)
	assert.Equal(t, models.OrderConfirmed, store.orders[order.ID].Status)
	assert.True(t, s.Cart.Empty())
	assert.Equal(t, StatePaid, s.State)
	assert.Equal(t, int64(2500), conf.Total)
	assert.Len(t, conf.Items, 2)
	assert.Empty(t, conf.Warning)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, order.ID, notifier.sent[0].OrderID)
}

func TestOnPaymentSuccess_NotificationFailureIsNonFatal(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{err: errors.New("smtp down")}
	sub := NewSubmitter(store, notifier, quietLogger())
	s := readySession(t, sub)
	order, err := sub.PlaceOrder(context.Background(), s)
	require.NoError(t, err)

	conf, err := sub.OnPaymentSuccess(context.Background(), s, PaymentDetails{ID: "PAY-2"})
	require.NoError(t, err)
	assert.NotEmpty(t, conf.Warning)
	assert.Equal(t, models.PaymentPaid, store.orders[order.ID].PaymentStatus)
	assert.Equal(t, StatePaid, s.State)
	assert.True(t, s.Cart.Empty())
}

func TestOnPaymentSuccess_Preconditions(t *testing.T) {
	store := newFakeStore()
	sub := NewSubmitter(store, &fakeNotifier{}, quietLogger())

	s := readySession(t, sub)
	_, err := sub.OnPaymentSuccess(context.Background(), s, PaymentDetails{ID: "PAY-3"})
	assert.ErrorIs(t, err, ErrNoCurrentOrder)

	_, err = sub.PlaceOrder(context.Background(), s)
	require.NoError(t, err)
	writes := store.writes
	s.Email = ""
	_, err = sub.OnPaymentSuccess(context.Background(), s, PaymentDetails{ID: "PAY-3"})
	assert.ErrorIs(t, err, ErrMissingEmail)
	assert.Equal(t, writes, store.writes)
	assert.Equal(t, StateAwaitingPayment, s.State)
}

func TestOnPaymentError_RevertsToOrdering(t *testing.T) {
	store := newFakeStore()
	sub := NewSubmitter(store, nil, quietLogger())
	s := readySession(t, sub)
	order, err := sub.PlaceOrder(context.Background(), s)
	require.NoError(t, err)

	require.NoError(t, sub.OnPaymentError(context.Background(), s, "card declined"))
	assert.Equal(t, StateOrdering, s.State)
	assert.Len(t, s.Cart.Items, 2)
	assert.Equal(t, models.PaymentPending, store.orders[order.ID].PaymentStatus)
	assert.Equal(t, []uint{order.ID}, store.failures)

	retry, err := sub.PlaceOrder(context.Background(), s)
	require.NoError(t, err)
	assert.NotEqual(t, order.ID, retry.ID)

	assert.ErrorIs(t, sub.OnPaymentError(context.Background(), NewSession(1, "", models.RoleCustomer), "x"), ErrNoCurrentOrder)
}
