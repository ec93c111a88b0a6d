package chart

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wolt-report-service/internal/fonts"
)

func newTestRenderer(t *testing.T) *CanvasRenderer {
	t.Helper()
	f, err := fonts.Default()
	require.NoError(t, err)
	return NewCanvasRenderer(f)
}

func decodeSize(t *testing.T, data []byte) image.Point {
	t.Helper()
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return image.Pt(cfg.Width, cfg.Height)
}

func TestCanvasRendererDrawsEverySeries(t *testing.T) {
	r := newTestRenderer(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		series Series
	}{
		{
			name: "bars",
			series: BarSeries{
				Categories: []string{"2021-07", "2021-08"},
				Groups: []BarGroup{
					{Name: "EUR", Values: []float64{12.5, 0}},
					{Name: "USD", Values: []float64{0, 30}},
				},
			},
		},
		{
			name: "grid",
			series: GridSeries{
				Rows:  []string{"Morning, 6-12", "Night, 22-6"},
				Cols:  []string{"Sun", "Mon"},
				Cells: [][]int{{1, 0}, {0, 3}},
			},
		},
		{
			name: "tree",
			series: TreeSeries{Roots: []TreeNode{
				{Name: "EUR", Children: []TreeNode{
					{Name: "Burger Place", Children: []TreeNode{{Name: "Burger", Value: 7}, {Name: "Fries", Value: 1}}},
				}},
			}},
		},
		{name: "empty bars", series: BarSeries{}},
		{name: "empty tree", series: TreeSeries{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := r.Render(ctx, tt.series, Spec{Title: tt.name, Width: 320, Height: 200, XLabel: "x", YLabel: "y"})
			require.NoError(t, err)
			assert.Equal(t, image.Pt(320, 200), decodeSize(t, data))
		})
	}
}

type unknownSeries struct{}

func (unknownSeries) series() {}

func TestCanvasRendererRejectsBadInput(t *testing.T) {
	r := newTestRenderer(t)

	_, err := r.Render(context.Background(), BarSeries{}, Spec{Width: 0, Height: 10})
	assert.Error(t, err)

	_, err = r.Render(context.Background(), unknownSeries{}, Spec{Width: 10, Height: 10})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Render(ctx, BarSeries{}, Spec{Width: 10, Height: 10})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLayoutIsProportional(t *testing.T) {
	roots := []TreeNode{
		{Name: "a", Value: 3},
		{Name: "zero", Value: 0},
		{Name: "b", Children: []TreeNode{{Name: "b1", Value: 0.5}, {Name: "b2", Value: 0.5}}},
	}
	tiles := Layout(roots, Rect{W: 400, H: 100}, 0)
	require.Len(t, tiles, 4)

	assert.Equal(t, "a", tiles[0].Name)
	assert.InDelta(t, 300, tiles[0].W, 1e-9)
	assert.InDelta(t, 100, tiles[0].H, 1e-9)

	b := tiles[1]
	assert.Equal(t, "b", b.Name)
	assert.InDelta(t, 300, b.X, 1e-9)
	assert.InDelta(t, 100, b.W, 1e-9)
	assert.True(t, b.HasChild)
	assert.Equal(t, 1, b.Root)

	for _, child := range tiles[2:] {
		assert.Equal(t, 1, child.Depth)
		assert.Equal(t, 1, child.Root)
		assert.GreaterOrEqual(t, child.X, b.X)
		assert.LessOrEqual(t, child.X+child.W, b.X+b.W+1e-9)
		assert.InDelta(t, (100-2*tilePadding)/2, child.H, 1e-9)
	}
}

func TestLayoutEmpty(t *testing.T) {
	assert.Empty(t, Layout(nil, Rect{W: 10, H: 10}, 0))
	assert.Empty(t, Layout([]TreeNode{{Name: "a", Value: 1}}, Rect{}, 0))
}

func TestNiceCeil(t *testing.T) {
	assert.Equal(t, 1.0, niceCeil(0))
	assert.Equal(t, 10.0, niceCeil(10))
	assert.Equal(t, 20.0, niceCeil(11))
	assert.Equal(t, 250.0, niceCeil(240))
	assert.Equal(t, 1000.0, niceCeil(600))
}

type renderFunc func(ctx context.Context, s Series, spec Spec) ([]byte, error)

func (f renderFunc) Render(ctx context.Context, s Series, spec Spec) ([]byte, error) {
	return f(ctx, s, spec)
}

func zeroBackOff() backoff.BackOff { return &backoff.ZeroBackOff{} }

func TestWithTimeoutRetriesFailures(t *testing.T) {
	var calls atomic.Int32
	flaky := renderFunc(func(context.Context, Series, Spec) ([]byte, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("boom")
		}
		return []byte("ok"), nil
	})

	data, err := WithTimeout(flaky, time.Second, 1, WithBackOff(zeroBackOff)).Render(context.Background(), BarSeries{}, Spec{Title: "t"})
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
	assert.Equal(t, int32(2), calls.Load())
}

func TestWithTimeoutGivesUp(t *testing.T) {
	var calls atomic.Int32
	broken := renderFunc(func(context.Context, Series, Spec) ([]byte, error) {
		calls.Add(1)
		return nil, errors.New("boom")
	})

	_, err := WithTimeout(broken, time.Second, 2, WithBackOff(zeroBackOff)).Render(context.Background(), BarSeries{}, Spec{Title: "monthly"})
	var failure *RenderFailureError
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "monthly", failure.Title)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWithTimeoutBoundsSlowRenders(t *testing.T) {
	slow := renderFunc(func(ctx context.Context, _ Series, _ Spec) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	_, err := WithTimeout(slow, 20*time.Millisecond, 1, WithBackOff(zeroBackOff)).Render(context.Background(), GridSeries{}, Spec{Title: "heatmap"})
	var timeout *RenderTimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, "heatmap", timeout.Title)
}
