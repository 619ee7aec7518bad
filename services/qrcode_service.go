package services

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/skip2/go-qrcode"

	"github.com/yeremiapane/restaurant-ordering/models"
)

const qrSize = 256

// TableQRCode renders the QR payload of a table as a PNG.
func TableQRCode(number int) ([]byte, error) {
	return qrcode.Encode(QRPayload(number), qrcode.Medium, qrSize)
}

// TableQRCodesPDF lays out one printable card per table, two columns by three rows
// per A4 page.
func TableQRCodesPDF(tables []models.Table) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Table QR codes", false)
	pdf.SetAutoPageBreak(false, 0)

	const (
		cols   = 2
		rows   = 3
		cellW  = 95.0
		cellH  = 90.0
		margin = 10.0
		imgW   = 60.0
	)

	if len(tables) == 0 {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", 14)
		pdf.Cell(0, 10, "No tables configured")
	}

	for i, t := range tables {
		slot := i % (cols * rows)
		if slot == 0 {
			pdf.AddPage()
		}
		x := margin + float64(slot%cols)*cellW
		y := margin + float64(slot/cols)*cellH

		png, err := TableQRCode(t.Number)
		if err != nil {
			return nil, fmt.Errorf("qr for table %d: %w", t.Number, err)
		}
		name := fmt.Sprintf("table-%d", t.ID)
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
		pdf.ImageOptions(name, x+(cellW-imgW)/2, y+5, imgW, imgW, false, opts, 0, "")

		pdf.SetFont("Helvetica", "B", 16)
		pdf.SetXY(x, y+imgW+8)
		pdf.CellFormat(cellW, 8, fmt.Sprintf("Table %d", t.Number), "", 2, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(cellW, 6, fmt.Sprintf("Seats %d", t.Capacity), "", 0, "C", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
