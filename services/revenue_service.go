package services

import (
	"bytes"
	"context"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

// DayRevenue is one point of the revenue series.
type DayRevenue struct {
	Date   string `json:"date"`
	Amount int64  `json:"amount"`
}

// RevenueSummary holds revenue in cents. Weekly is the trailing seven days, not the
// calendar week.
type RevenueSummary struct {
	Daily     int64        `json:"daily"`
	Weekly    int64        `json:"weekly"`
	Monthly   int64        `json:"monthly"`
	Formatted FormattedRev `json:"formatted"`
	Last7Days []DayRevenue `json:"last_7_days"`
}

type FormattedRev struct {
	Daily   string `json:"daily"`
	Weekly  string `json:"weekly"`
	Monthly string `json:"monthly"`
}

// paidAt is when the revenue was earned.
func paidAt(o models.Order) time.Time {
	if o.PaidAt != nil {
		return o.PaidAt.UTC()
	}
	return o.CreatedAt.UTC()
}

// SummarizeRevenue aggregates paid orders relative to now. Orders that are not
// paid are ignored.
func SummarizeRevenue(orders []models.Order, now time.Time) RevenueSummary {
	now = now.UTC()
	today := now.Format(models.DateLayout)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	days := make([]DayRevenue, 7)
	index := make(map[string]int, 7)
	for i := 0; i < 7; i++ {
		d := now.AddDate(0, 0, i-6).Format(models.DateLayout)
		days[i] = DayRevenue{Date: d}
		index[d] = i
	}

	var s RevenueSummary
	for _, o := range orders {
		if o.PaymentStatus != models.PaymentPaid {
			continue
		}
		at := paidAt(o)
		day := at.Format(models.DateLayout)
		if day == today {
			s.Daily += o.TotalAmount
		}
		if !at.Before(weekAgo) && !at.After(now) {
			s.Weekly += o.TotalAmount
		}
		if at.Year() == now.Year() && at.Month() == now.Month() {
			s.Monthly += o.TotalAmount
		}
		if i, ok := index[day]; ok {
			days[i].Amount += o.TotalAmount
		}
	}
	s.Last7Days = days
	s.Formatted = FormattedRev{
		Daily:   utils.FormatCurrency(s.Daily),
		Weekly:  utils.FormatCurrency(s.Weekly),
		Monthly: utils.FormatCurrency(s.Monthly),
	}
	return s
}

// RevenueService reads paid orders and renders the admin revenue views.
type RevenueService struct {
	Orders *OrderStore
	Now    func() time.Time
}

func NewRevenueService(orders *OrderStore) *RevenueService {
	return &RevenueService{Orders: orders, Now: time.Now}
}

func (r *RevenueService) Summary(ctx context.Context) (RevenueSummary, error) {
	orders, err := r.Orders.PaidOrders(ctx)
	if err != nil {
		return RevenueSummary{}, err
	}
	return SummarizeRevenue(orders, r.Now()), nil
}

// Chart renders the last seven days of revenue as a PNG line chart.
func (r *RevenueService) Chart(ctx context.Context) ([]byte, error) {
	summary, err := r.Summary(ctx)
	if err != nil {
		return nil, err
	}
	return RenderRevenueChart(summary.Last7Days)
}

// RenderRevenueChart draws the series in dollars. The y axis starts at zero and
// always has a non-empty range, so a week without sales still renders.
func RenderRevenueChart(days []DayRevenue) ([]byte, error) {
	xs := make([]time.Time, 0, len(days))
	ys := make([]float64, 0, len(days))
	maxVal := 0.0
	for _, d := range days {
		t, err := time.Parse(models.DateLayout, d.Date)
		if err != nil {
			return nil, err
		}
		v := utils.CentsToDollars(d.Amount)
		xs = append(xs, t)
		ys = append(ys, v)
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal < 1 {
		maxVal = 1
	}

	graph := chart.Chart{
		Title:  "Daily Revenue",
		Width:  800,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxVal * 1.1},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: "Daily Revenue",
				Style: chart.Style{
					StrokeColor: drawing.Color{R: 75, G: 192, B: 192, A: 255},
					StrokeWidth: 2,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
