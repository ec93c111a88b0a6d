package compose

import (
	"image"
	"image/color"
)

// Config controls the report canvas. QLEN is the side of one quadrant; the
// canvas is three quadrants wide and two tall.
type Config struct {
	QLEN        int
	Background  color.Color
	TextColor   color.Color
	LabelPoints float64
	ValuePoints float64
}

func DefaultConfig() Config {
	return Config{
		QLEN:        600,
		Background:  color.White,
		TextColor:   color.Black,
		LabelPoints: 40,
		ValuePoints: 40,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.QLEN <= 0 {
		c.QLEN = def.QLEN
	}
	if c.Background == nil {
		c.Background = def.Background
	}
	if c.TextColor == nil {
		c.TextColor = def.TextColor
	}
	if c.LabelPoints <= 0 {
		c.LabelPoints = def.LabelPoints
	}
	if c.ValuePoints <= 0 {
		c.ValuePoints = def.ValuePoints
	}
	return c
}

// Layout positions the four tiles on the canvas.
//
//	+----------+---------------------+
//	| headline |   monthly expenses  |
//	+----------+---------------------+
//	| heatmap  |   spend treemap     |
//	+----------+---------------------+
type Layout struct {
	Canvas   image.Rectangle
	Headline image.Rectangle
	Monthly  image.Rectangle
	Heatmap  image.Rectangle
	Spend    image.Rectangle
}

func (c Config) Layout() Layout {
	q := c.withDefaults().QLEN
	return Layout{
		Canvas:   image.Rect(0, 0, 3*q, 2*q),
		Headline: image.Rect(0, 0, q, q),
		Monthly:  image.Rect(q, 0, 3*q, q),
		Heatmap:  image.Rect(0, q, q, 2*q),
		Spend:    image.Rect(q, q, 3*q, 2*q),
	}
}
