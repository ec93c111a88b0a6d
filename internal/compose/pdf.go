package compose

import (
	"bytes"
	"fmt"
	"image"
	"time"

	"github.com/go-faster/errors"
	"github.com/phpdave11/gofpdf"
)

type PDFMeta struct {
	ID         string
	OrderCount int
	CreatedAt  time.Time
}

// RenderPDF wraps a stored report raster in a single landscape A4 page with
// a short header.
func RenderPDF(raster []byte, format Format, meta PDFMeta) (*bytes.Buffer, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raster))
	if err != nil {
		return nil, errors.Wrap(err, "decode report raster")
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, errors.New("empty report raster")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(false, 12)
	pdf.SetTitle("Order report "+meta.ID, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, "Order Report", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Report %s", meta.ID), "", 1, "L", false, 0, "")
	if !meta.CreatedAt.IsZero() {
		pdf.CellFormat(0, 5, fmt.Sprintf("Generated: %s", meta.CreatedAt.UTC().Format(time.RFC3339)), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 5, fmt.Sprintf("Orders: %d", meta.OrderCount), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pageW, pageH := pdf.GetPageSize()
	left, _, right, bottom := pdf.GetMargins()
	y := pdf.GetY()
	maxW, maxH := pageW-left-right, pageH-y-bottom

	w := maxW
	h := w * float64(cfg.Height) / float64(cfg.Width)
	if h > maxH {
		h = maxH
		w = h * float64(cfg.Width) / float64(cfg.Height)
	}

	imageType := "PNG"
	if format == FormatJPEG {
		imageType = "JPG"
	}
	opts := gofpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader("report", opts, bytes.NewReader(raster))
	pdf.ImageOptions("report", left+(maxW-w)/2, y, w, h, false, opts, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, errors.Wrap(err, "render pdf")
	}
	return &out, nil
}
