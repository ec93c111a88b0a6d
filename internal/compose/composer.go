// Package compose lays the headline figures and the three charts out on a
// single report raster.
package compose

import (
	"context"
	"image"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"wolt-report-service/internal/aggregate"
	"wolt-report-service/internal/chart"
	"wolt-report-service/internal/fonts"
)

const (
	TitleMonthly = "Monthly Expenses"
	TitleHeatmap = "Orders by Weekday and Time of Day"
	TitleSpend   = "Spend by Restaurant and Dish"
)

// Headline row offsets on a 600px quadrant; they scale with QLEN.
var headlineRows = [3][2]float64{{60, 120}, {240, 300}, {420, 480}}

type Composer struct {
	cfg      Config
	renderer chart.Renderer
	font     *fonts.Font
}

func New(cfg Config, renderer chart.Renderer, font *fonts.Font) *Composer {
	return &Composer{cfg: cfg.withDefaults(), renderer: renderer, font: font}
}

func (c *Composer) Config() Config { return c.cfg }

type tile struct {
	cell   image.Rectangle
	series chart.Series
	spec   chart.Spec
}

// Compose renders the charts concurrently and pastes them next to the
// headline quadrant. The first chart error cancels the others.
func (c *Composer) Compose(ctx context.Context, res aggregate.Result, head aggregate.Headline) (*image.NRGBA, error) {
	layout := c.cfg.Layout()
	tiles := []tile{
		{
			cell:   layout.Monthly,
			series: MonthlySeries(res),
			spec:   chart.Spec{Title: TitleMonthly, XLabel: "Month", YLabel: "Total Expense"},
		},
		{
			cell:   layout.Heatmap,
			series: HeatmapSeries(res),
			spec:   chart.Spec{Title: TitleHeatmap, XLabel: "Weekday"},
		},
		{
			cell:   layout.Spend,
			series: SpendSeries(res),
			spec:   chart.Spec{Title: TitleSpend},
		},
	}

	images := make([]image.Image, len(tiles))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range tiles {
		g.Go(func() error {
			spec := t.spec
			spec.Width, spec.Height = t.cell.Dx(), t.cell.Dy()
			data, err := c.renderer.Render(gctx, t.series, spec)
			if err != nil {
				return err
			}
			img, err := fitTile(data, t.cell, c.cfg.Background)
			if err != nil {
				return errors.Wrapf(err, "decode %q", spec.Title)
			}
			images[i] = img
			return nil
		})
	}

	canvas := imaging.New(layout.Canvas.Dx(), layout.Canvas.Dy(), c.cfg.Background)
	canvas = imaging.Paste(canvas, c.headline(layout.Headline, head), layout.Headline.Min)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, t := range tiles {
		canvas = imaging.Paste(canvas, images[i], t.cell.Min)
	}
	return canvas, nil
}

// headline draws the three label/value pairs, each line centered
// horizontally on its own rendered width.
func (c *Composer) headline(cell image.Rectangle, head aggregate.Headline) image.Image {
	w, h := cell.Dx(), cell.Dy()
	scale := float64(h) / 600

	dc := gg.NewContext(w, h)
	dc.SetColor(c.cfg.Background)
	dc.Clear()
	dc.SetColor(c.cfg.TextColor)

	label := c.font.Face(c.cfg.LabelPoints * scale)
	value := c.font.Face(c.cfg.ValuePoints * scale)
	lines := [3][2]string{
		{"Order Count", formatCount(head.OrderCount)},
		{"Total Expenses", aggregate.JoinAmounts(head.Totals)},
		{"Average Order", aggregate.JoinAmounts(head.Averages)},
	}
	for i, pair := range lines {
		dc.SetFontFace(label)
		drawCentered(dc, pair[0], float64(w), headlineRows[i][0]*scale)
		dc.SetFontFace(value)
		drawCentered(dc, pair[1], float64(w), headlineRows[i][1]*scale)
	}
	return dc.Image()
}

func drawCentered(dc *gg.Context, s string, width, top float64) {
	tw, _ := dc.MeasureString(s)
	dc.DrawStringAnchored(s, (width-tw)/2, top, 0, 1)
}
