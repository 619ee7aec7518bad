package services

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

const exportTimeLayout = "2006-01-02 15:04:05"

var orderExportHeaders = []string{
	"Reference", "Table", "User", "Items", "Total", "Total (cents)",
	"Status", "Payment", "Payment ID", "Preparation", "Created", "Paid",
}

// OrdersWorkbook writes orders to an .xlsx workbook, one row per order. Items must be
// preloaded.
func OrdersWorkbook(orders []models.Order) ([]byte, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return nil, err
	}

	header := sheet.AddRow()
	for _, h := range orderExportHeaders {
		header.AddCell().SetValue(h)
	}

	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetValue(o.Reference())
		row.AddCell().SetValue(o.Table.Number)
		row.AddCell().SetValue(o.UserID)

		lines := make([]string, 0, len(o.Items))
		for _, it := range o.Items {
			lines = append(lines, it.Name+" x"+strconv.Itoa(it.Quantity))
		}
		row.AddCell().SetValue(strings.Join(lines, ", "))

		row.AddCell().SetValue(utils.FormatCurrency(o.TotalAmount))
		row.AddCell().SetValue(o.TotalAmount)
		row.AddCell().SetValue(o.Status)
		row.AddCell().SetValue(o.PaymentStatus)
		paymentID := ""
		if o.PaymentID != nil {
			paymentID = *o.PaymentID
		}
		row.AddCell().SetValue(paymentID)
		row.AddCell().SetValue(o.PreparationStatus)
		row.AddCell().SetValue(o.CreatedAt.UTC().Format(exportTimeLayout))
		paid := ""
		if o.PaidAt != nil {
			paid = o.PaidAt.UTC().Format(exportTimeLayout)
		}
		row.AddCell().SetValue(paid)
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
