// Package chart turns report datasets into raster images.
package chart

import (
	"context"
	"image/color"
)

// Spec describes the requested image.
type Spec struct {
	Title  string
	Width  int
	Height int
	XLabel string
	YLabel string
}

// Series is one of BarSeries, GridSeries or TreeSeries.
type Series interface {
	series()
}

// BarSeries is a grouped bar chart: one bar per group within each category.
type BarSeries struct {
	Categories []string
	Groups     []BarGroup
}

// BarGroup holds one value per category.
type BarGroup struct {
	Name   string
	Values []float64
}

// GridSeries is a labelled matrix of counts, Cells[row][col].
type GridSeries struct {
	Rows  []string
	Cols  []string
	Cells [][]int
}

// TreeSeries is a hierarchy drawn as nested rectangles.
type TreeSeries struct {
	Roots []TreeNode
}

type TreeNode struct {
	Name     string
	Value    float64
	Children []TreeNode
}

// total is the node's own value, or the sum of its children when unset.
func (n TreeNode) total() float64 {
	if n.Value > 0 || len(n.Children) == 0 {
		return n.Value
	}
	var sum float64
	for _, c := range n.Children {
		if v := c.total(); v > 0 {
			sum += v
		}
	}
	return sum
}

func (BarSeries) series()  {}
func (GridSeries) series() {}
func (TreeSeries) series() {}

// Renderer draws a series and returns the encoded image bytes.
type Renderer interface {
	Render(ctx context.Context, s Series, spec Spec) ([]byte, error)
}

var palette = []color.RGBA{
	{0x63, 0x6e, 0xfa, 0xff},
	{0xef, 0x55, 0x3b, 0xff},
	{0x00, 0xcc, 0x96, 0xff},
	{0xab, 0x63, 0xfa, 0xff},
	{0xff, 0xa1, 0x5a, 0xff},
	{0x19, 0xd3, 0xf3, 0xff},
	{0xff, 0x66, 0x92, 0xff},
	{0xb6, 0xe8, 0x80, 0xff},
	{0xff, 0x97, 0xff, 0xff},
	{0xfe, 0xcb, 0x52, 0xff},
}

func paletteColor(i int) color.RGBA {
	return palette[i%len(palette)]
}

// mix blends c toward to by t in [0, 1].
func mix(c, to color.RGBA, t float64) color.RGBA {
	lerp := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
	}
	return color.RGBA{lerp(c.R, to.R), lerp(c.G, to.G), lerp(c.B, to.B), 0xff}
}
