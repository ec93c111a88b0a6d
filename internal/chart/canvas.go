package chart

import (
	"bytes"
	"context"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/image/font"

	"wolt-report-service/internal/fonts"
)

var (
	colorText  = color.RGBA{0x2a, 0x3f, 0x5f, 0xff}
	colorGrid  = color.RGBA{0xe5, 0xe8, 0xee, 0xff}
	colorWhite = color.RGBA{0xff, 0xff, 0xff, 0xff}
	heatLow    = color.RGBA{0xf7, 0xfb, 0xff, 0xff}
	heatHigh   = color.RGBA{0x08, 0x30, 0x6b, 0xff}
)

// CanvasRenderer draws charts in-process and encodes them as PNG.
type CanvasRenderer struct {
	font *fonts.Font
}

func NewCanvasRenderer(f *fonts.Font) *CanvasRenderer {
	return &CanvasRenderer{font: f}
}

func (r *CanvasRenderer) Render(ctx context.Context, s Series, spec Spec) ([]byte, error) {
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, errors.Errorf("invalid chart size %dx%d", spec.Width, spec.Height)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := &canvas{
		dc:   gg.NewContext(spec.Width, spec.Height),
		font: r.font,
		spec: spec,
	}
	c.dc.SetColor(colorWhite)
	c.dc.Clear()
	area := c.title()

	switch s := s.(type) {
	case BarSeries:
		c.bars(s, area)
	case GridSeries:
		c.grid(s, area)
	case TreeSeries:
		c.tree(s, area)
	default:
		return nil, errors.Errorf("unsupported series %T", s)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(err, "encode chart")
	}
	return buf.Bytes(), nil
}

type canvas struct {
	dc   *gg.Context
	font *fonts.Font
	spec Spec
}

func (c *canvas) labelSize() float64 {
	return max(9, float64(c.spec.Height)*0.028)
}

func (c *canvas) face(points float64) font.Face {
	return c.font.Face(points)
}

func (c *canvas) text(s string, x, y, ax, ay float64, col color.Color) {
	c.dc.SetColor(col)
	c.dc.DrawStringAnchored(s, x, y, ax, ay)
}

// title draws the chart title and returns the area left below it.
func (c *canvas) title() Rect {
	w, h := float64(c.spec.Width), float64(c.spec.Height)
	size := max(12, h*0.045)
	pad := size * 0.6
	if c.spec.Title == "" {
		return Rect{X: pad, Y: pad, W: w - 2*pad, H: h - 2*pad}
	}
	c.dc.SetFontFace(c.face(size))
	c.text(c.spec.Title, pad, pad, 0, 1, colorText)
	top := pad + size*1.6
	return Rect{X: pad, Y: top, W: w - 2*pad, H: h - top - pad}
}

func (c *canvas) empty(area Rect) {
	c.dc.SetFontFace(c.face(c.labelSize() * 1.2))
	c.text("No data", area.X+area.W/2, area.Y+area.H/2, 0.5, 0.5, colorText)
}

func (c *canvas) bars(s BarSeries, area Rect) {
	if len(s.Categories) == 0 || len(s.Groups) == 0 {
		c.empty(area)
		return
	}

	ls := c.labelSize()
	labels := c.face(ls)
	small := c.face(ls * 0.75)
	c.dc.SetFontFace(labels)

	peak := 0.0
	for _, g := range s.Groups {
		for _, v := range g.Values {
			peak = math.Max(peak, v)
		}
	}
	top := niceCeil(peak)

	tickWidth := 0.0
	for i := 0; i <= 5; i++ {
		w, _ := c.dc.MeasureString(formatTick(top * float64(i) / 5))
		tickWidth = math.Max(tickWidth, w)
	}

	legendH := ls * 1.6
	plot := Rect{
		X: area.X + ls*1.4 + tickWidth + 6,
		Y: area.Y,
		W: area.W - ls*1.4 - tickWidth - 6,
		H: area.H - ls*3.2 - legendH,
	}
	if plot.W <= 0 || plot.H <= 0 {
		return
	}
	base := plot.Y + plot.H

	c.dc.SetLineWidth(1)
	for i := 0; i <= 5; i++ {
		v := top * float64(i) / 5
		y := base - plot.H*v/top
		c.dc.SetColor(colorGrid)
		c.dc.DrawLine(plot.X, y, plot.X+plot.W, y)
		c.dc.Stroke()
		c.text(formatTick(v), plot.X-6, y, 1, 0.35, colorText)
	}

	groupW := plot.W / float64(len(s.Categories))
	barW := groupW * 0.8 / float64(len(s.Groups))
	for ci := range s.Categories {
		x0 := plot.X + groupW*float64(ci) + groupW*0.1
		for gi, g := range s.Groups {
			if ci >= len(g.Values) || g.Values[ci] <= 0 {
				continue
			}
			v := g.Values[ci]
			h := plot.H * v / top
			x := x0 + barW*float64(gi)
			c.dc.SetColor(paletteColor(gi))
			c.dc.DrawRectangle(x, base-h, barW, h)
			c.dc.Fill()

			c.dc.SetFontFace(small)
			label := formatTick(v)
			if w, _ := c.dc.MeasureString(label); w <= barW+groupW*0.1 {
				c.text(label, x+barW/2, base-h-3, 0.5, 0, colorText)
			}
		}
	}

	c.dc.SetFontFace(small)
	widest := 0.0
	for _, cat := range s.Categories {
		w, _ := c.dc.MeasureString(cat)
		widest = math.Max(widest, w)
	}
	rotate := widest > groupW*0.95
	for ci, cat := range s.Categories {
		x := plot.X + groupW*(float64(ci)+0.5)
		y := base + 4
		if rotate {
			c.dc.Push()
			c.dc.RotateAbout(gg.Radians(-35), x, y)
			c.text(cat, x, y, 1, 1, colorText)
			c.dc.Pop()
			continue
		}
		c.text(cat, x, y, 0.5, 1, colorText)
	}

	c.dc.SetFontFace(labels)
	if c.spec.XLabel != "" {
		c.text(c.spec.XLabel, plot.X+plot.W/2, base+ls*2.4, 0.5, 1, colorText)
	}
	if c.spec.YLabel != "" {
		x, y := area.X+ls*0.2, plot.Y+plot.H/2
		c.dc.Push()
		c.dc.RotateAbout(gg.Radians(-90), x, y)
		c.text(c.spec.YLabel, x, y, 0.5, 1, colorText)
		c.dc.Pop()
	}

	c.legend(s.Groups, plot.X, area.Y+area.H-legendH/2)
}

func (c *canvas) legend(groups []BarGroup, x, y float64) {
	if len(groups) < 2 {
		return
	}
	ls := c.labelSize()
	c.dc.SetFontFace(c.face(ls * 0.8))
	for i, g := range groups {
		c.dc.SetColor(paletteColor(i))
		c.dc.DrawRectangle(x, y-ls*0.35, ls*0.7, ls*0.7)
		c.dc.Fill()
		c.text(g.Name, x+ls, y, 0, 0.35, colorText)
		w, _ := c.dc.MeasureString(g.Name)
		x += ls*2 + w
	}
}

func (c *canvas) grid(s GridSeries, area Rect) {
	if len(s.Rows) == 0 || len(s.Cols) == 0 {
		c.empty(area)
		return
	}

	ls := c.labelSize()
	labels := c.face(ls * 0.8)
	c.dc.SetFontFace(labels)

	rowW := 0.0
	for _, r := range s.Rows {
		w, _ := c.dc.MeasureString(r)
		rowW = math.Max(rowW, w)
	}
	plot := Rect{X: area.X + rowW + 8, Y: area.Y + ls*1.4, W: area.W - rowW - 8, H: area.H - ls*1.4}
	if c.spec.XLabel != "" {
		plot.H -= ls * 1.6
	}
	if plot.W <= 0 || plot.H <= 0 {
		return
	}

	peak := 0
	for _, row := range s.Cells {
		for _, v := range row {
			peak = max(peak, v)
		}
	}

	cellW := plot.W / float64(len(s.Cols))
	cellH := plot.H / float64(len(s.Rows))
	values := c.face(math.Min(ls, cellH*0.4))
	for ri, row := range s.Rows {
		y := plot.Y + cellH*float64(ri)
		c.dc.SetFontFace(labels)
		c.text(row, plot.X-8, y+cellH/2, 1, 0.35, colorText)

		for ci := range s.Cols {
			v := 0
			if ri < len(s.Cells) && ci < len(s.Cells[ri]) {
				v = s.Cells[ri][ci]
			}
			t := 0.0
			if peak > 0 {
				t = float64(v) / float64(peak)
			}
			x := plot.X + cellW*float64(ci)
			c.dc.SetColor(mix(heatLow, heatHigh, t))
			c.dc.DrawRectangle(x, y, cellW, cellH)
			c.dc.Fill()
			c.dc.SetColor(colorWhite)
			c.dc.SetLineWidth(1)
			c.dc.DrawRectangle(x, y, cellW, cellH)
			c.dc.Stroke()

			ink := color.Color(colorText)
			if t > 0.5 {
				ink = colorWhite
			}
			c.dc.SetFontFace(values)
			c.text(decimal.NewFromInt(int64(v)).String(), x+cellW/2, y+cellH/2, 0.5, 0.35, ink)
		}
	}

	c.dc.SetFontFace(labels)
	for ci, col := range s.Cols {
		c.text(col, plot.X+cellW*(float64(ci)+0.5), plot.Y-4, 0.5, 0, colorText)
	}
	if c.spec.XLabel != "" {
		c.text(c.spec.XLabel, plot.X+plot.W/2, plot.Y+plot.H+4, 0.5, 1, colorText)
	}
}

func (c *canvas) tree(s TreeSeries, area Rect) {
	ls := c.labelSize() * 0.8
	tiles := Layout(s.Roots, area, ls*1.4)
	if len(tiles) == 0 {
		c.empty(area)
		return
	}

	face := c.face(ls)
	c.dc.SetFontFace(face)
	c.dc.SetLineWidth(1)
	for _, t := range tiles {
		fill := mix(paletteColor(t.Root), colorWhite, math.Min(0.2*float64(t.Depth), 0.6))
		c.dc.SetColor(fill)
		c.dc.DrawRectangle(t.X, t.Y, t.W, t.H)
		c.dc.Fill()
		c.dc.SetColor(colorWhite)
		c.dc.DrawRectangle(t.X, t.Y, t.W, t.H)
		c.dc.Stroke()

		label := t.Name
		if !t.HasChild {
			label += " " + formatTick(t.Value)
		}
		w, h := c.dc.MeasureString(label)
		if w+6 > t.W || h+6 > t.H {
			continue
		}
		c.text(label, t.X+3, t.Y+3, 0, 1, colorText)
	}
}

// niceCeil rounds v up to 1, 2, 2.5 or 5 times a power of ten.
func niceCeil(v float64) float64 {
	if v <= 0 {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	for _, step := range []float64{1, 2, 2.5, 5, 10} {
		if v <= step*exp {
			return step * exp
		}
	}
	return 10 * exp
}

func formatTick(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}
