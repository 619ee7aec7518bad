package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"gopkg.in/gomail.v2"

	"github.com/yeremiapane/restaurant-ordering/cart"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/ordering"
)

type fakeSender struct {
	messages []*gomail.Message
	err      error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.messages = append(f.messages, m...)
	return f.err
}

func TestRenderOrderConfirmation(t *testing.T) {
	body, err := RenderOrderConfirmation(ordering.Confirmation{
		OrderID:     12,
		Reference:   "ORD-000012",
		TableNumber: 3,
		Total:       123456,
		Items: []cart.Item{
			{MenuItemID: 1, Name: "Steak <rare>", Price: 120000, Quantity: 1},
			{MenuItemID: 2, Name: "Soda", Price: 1728, Quantity: 2},
		},
		PaymentID: "PAY-9",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "ORD-000012")
	assert.Contains(t, body, "$1,234.56")
	assert.Contains(t, body, "$34.56")
	assert.Contains(t, body, "Steak &lt;rare&gt;")
}

func TestRenderBookingConfirmation(t *testing.T) {
	body, err := RenderBookingConfirmation(models.Reservation{
		ID: 4, Table: models.Table{Number: 9}, ReservationDate: "2026-05-01",
		ReservationTime: "19:30", Guests: 4, DurationMinutes: 90,
	})
	require.NoError(t, err)
	assert.Contains(t, body, "2026-05-01")
	assert.Contains(t, body, "19:30")
}

func TestMailer(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{}
	m := NewMailerWithSender(sender, "noreply@example.com", quietLogger())

	require.NoError(t, m.SendOrderConfirmation(ctx, "guest@example.com", ordering.Confirmation{Reference: "ORD-000001"}))
	require.Len(t, sender.messages, 1)
	assert.Equal(t, []string{"guest@example.com"}, sender.messages[0].GetHeader("To"))
	assert.Equal(t, []string{"Order Confirmation ORD-000001"}, sender.messages[0].GetHeader("Subject"))

	assert.Error(t, m.SendOrderConfirmation(ctx, "", ordering.Confirmation{}))

	sender.err = errors.New("smtp down")
	assert.ErrorIs(t, m.SendBookingConfirmation(ctx, "guest@example.com", models.Reservation{}), sender.err)

	unconfigured := NewMailer("", 0, "", "", "noreply@example.com", quietLogger())
	assert.NoError(t, unconfigured.SendBookingConfirmation(ctx, "guest@example.com", models.Reservation{}))
}

func TestSummarizeRevenue(t *testing.T) {
	now := time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		v := now.Add(-d)
		return &v
	}
	orders := []models.Order{
		{TotalAmount: 1000, PaymentStatus: models.PaymentPaid, PaidAt: at(time.Hour)},
		{TotalAmount: 2000, PaymentStatus: models.PaymentPaid, PaidAt: at(3 * 24 * time.Hour)},
		{TotalAmount: 4000, PaymentStatus: models.PaymentPaid, PaidAt: at(8 * 24 * time.Hour)},
		{TotalAmount: 8000, PaymentStatus: models.PaymentPaid, PaidAt: at(40 * 24 * time.Hour)},
		{TotalAmount: 9999, PaymentStatus: models.PaymentPending, CreatedAt: now},
	}

	s := SummarizeRevenue(orders, now)
	assert.Equal(t, int64(1000), s.Daily)
	assert.Equal(t, int64(3000), s.Weekly)
	assert.Equal(t, int64(7000), s.Monthly)
	assert.Equal(t, "$70.00", s.Formatted.Monthly)

	require.Len(t, s.Last7Days, 7)
	assert.Equal(t, "2026-05-04", s.Last7Days[0].Date)
	assert.Equal(t, "2026-05-10", s.Last7Days[6].Date)
	assert.Equal(t, int64(1000), s.Last7Days[6].Amount)
	assert.Equal(t, int64(2000), s.Last7Days[3].Amount)
}

var pngMagic = []byte("\x89PNG")

func TestRenderRevenueChart(t *testing.T) {
	s := SummarizeRevenue(nil, time.Now())
	png, err := RenderRevenueChart(s.Last7Days)
	require.NoError(t, err, "an empty week still renders")
	assert.True(t, bytes.HasPrefix(png, pngMagic))

	s.Last7Days[2].Amount = 15000
	png, err = RenderRevenueChart(s.Last7Days)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestTableQRCodes(t *testing.T) {
	png, err := TableQRCode(5)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))

	var tables []models.Table
	for i := 1; i <= 7; i++ {
		tables = append(tables, models.Table{ID: uint(i), Number: i, Capacity: 4})
	}
	pdf, err := TableQRCodesPDF(tables)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	empty, err := TableQRCodesPDF(nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(empty, []byte("%PDF")))
}

func TestOrdersWorkbook(t *testing.T) {
	paidAt := time.Date(2030, 5, 1, 19, 30, 0, 0, time.UTC)
	paymentID := "PAY-9"
	orders := []models.Order{
		{
			ID: 9, Table: models.Table{Number: 4}, UserID: 2, TotalAmount: 3300,
			Status: models.OrderConfirmed, PaymentStatus: models.PaymentPaid, PaymentID: &paymentID,
			PreparationStatus: "ready", PaidAt: &paidAt, CreatedAt: paidAt.Add(-time.Minute),
			Items: []models.OrderItem{{Name: "Burger", UnitPrice: 1250, Quantity: 2}, {Name: "Soda", UnitPrice: 800, Quantity: 1}},
		},
		{ID: 10, Table: models.Table{Number: 1}, TotalAmount: 500, PaymentStatus: models.PaymentPending},
	}

	book, err := OrdersWorkbook(orders)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(book, []byte("PK")))

	file, err := xlsx.OpenBinary(book)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	rows := file.Sheets[0].Rows
	require.Len(t, rows, 3)
	assert.Equal(t, "Reference", rows[0].Cells[0].String())
	assert.Equal(t, "ORD-000009", rows[1].Cells[0].String())
	assert.Equal(t, "Burger x2, Soda x1", rows[1].Cells[3].String())
	assert.Equal(t, "$33.00", rows[1].Cells[4].String())
	assert.Equal(t, "2030-05-01 19:30:00", rows[1].Cells[11].String())
}
