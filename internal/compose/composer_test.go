package compose

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wolt-report-service/internal/aggregate"
	"wolt-report-service/internal/chart"
	"wolt-report-service/internal/fonts"
)

// --- Stub renderer ---

type stubRenderer struct {
	mu    sync.Mutex
	specs map[string]chart.Spec
	fail  string
	size  image.Point
}

var stubColors = map[string]color.NRGBA{
	TitleMonthly: {R: 200, A: 255},
	TitleHeatmap: {G: 200, A: 255},
	TitleSpend:   {B: 200, A: 255},
}

func (s *stubRenderer) Render(_ context.Context, _ chart.Series, spec chart.Spec) ([]byte, error) {
	s.mu.Lock()
	if s.specs == nil {
		s.specs = make(map[string]chart.Spec)
	}
	s.specs[spec.Title] = spec
	s.mu.Unlock()

	if spec.Title == s.fail {
		return nil, &chart.RenderFailureError{Title: spec.Title, Err: errors.New("stub failure")}
	}
	w, h := spec.Width, spec.Height
	if s.size != (image.Point{}) {
		w, h = s.size.X, s.size.Y
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.New(w, h, stubColors[spec.Title]), imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func testComposer(t *testing.T, r chart.Renderer) *Composer {
	t.Helper()
	f, err := fonts.Default()
	require.NoError(t, err)
	return New(Config{QLEN: 120}, r, f)
}

func sampleResult() aggregate.Result {
	res := aggregate.Result{
		OrderCount: 2,
		Monthly: []aggregate.MonthlySpend{
			{Currency: "EUR", YearMonth: "2021-08", Minor: 150},
			{Currency: "USD", YearMonth: "2021-07", Minor: 500},
		},
		Totals: []aggregate.CurrencyTotal{
			{Currency: "USD", Minor: 500, Orders: 1},
			{Currency: "EUR", Minor: 150, Orders: 1},
		},
		Spend: []aggregate.SpendNode{
			{Name: "USD", Minor: 500, Children: []aggregate.SpendNode{
				{Name: "Burger Place", Minor: 500, Children: []aggregate.SpendNode{{Name: "Burger", Minor: 500}}},
			}},
		},
	}
	res.Heatmap[1][4] = 2
	return res
}

func TestComposeLaysOutTiles(t *testing.T) {
	stub := &stubRenderer{}
	c := testComposer(t, stub)
	res := sampleResult()

	img, err := c.Compose(context.Background(), res, res.Headline())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 360, 240), img.Bounds())

	assert.Equal(t, stubColors[TitleMonthly], img.NRGBAAt(200, 60))
	assert.Equal(t, stubColors[TitleHeatmap], img.NRGBAAt(60, 180))
	assert.Equal(t, stubColors[TitleSpend], img.NRGBAAt(300, 180))

	assert.Equal(t, 240, stub.specs[TitleMonthly].Width)
	assert.Equal(t, 120, stub.specs[TitleMonthly].Height)
	assert.Equal(t, 120, stub.specs[TitleHeatmap].Width)
	assert.Equal(t, "Month", stub.specs[TitleMonthly].XLabel)
	assert.Equal(t, "Total Expense", stub.specs[TitleMonthly].YLabel)
}

func TestComposeIsDeterministic(t *testing.T) {
	c := testComposer(t, &stubRenderer{})
	res := sampleResult()

	encode := func() []byte {
		img, err := c.Compose(context.Background(), res, res.Headline())
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, img, FormatPNG))
		return buf.Bytes()
	}
	assert.Equal(t, encode(), encode())
}

func TestComposeEmptyResult(t *testing.T) {
	c := testComposer(t, &stubRenderer{})
	res := aggregate.Aggregate(nil)

	img, err := c.Compose(context.Background(), res, res.Headline())
	require.NoError(t, err)
	assert.Equal(t, 360, img.Bounds().Dx())
}

func TestComposeFitsOversizedTiles(t *testing.T) {
	c := testComposer(t, &stubRenderer{size: image.Pt(1000, 1000)})
	res := sampleResult()

	img, err := c.Compose(context.Background(), res, res.Headline())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 360, 240), img.Bounds())
	// the square heatmap tile fills its square cell after scaling
	assert.Equal(t, stubColors[TitleHeatmap], img.NRGBAAt(60, 180))
}

func TestComposePropagatesRenderFailure(t *testing.T) {
	c := testComposer(t, &stubRenderer{fail: TitleSpend})
	res := sampleResult()

	img, err := c.Compose(context.Background(), res, res.Headline())
	assert.Nil(t, img)
	var failure *chart.RenderFailureError
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, TitleSpend, failure.Title)
}

func TestSeriesBuilders(t *testing.T) {
	res := sampleResult()

	bars := MonthlySeries(res)
	assert.Equal(t, []string{"2021-07", "2021-08"}, bars.Categories)
	require.Len(t, bars.Groups, 2)
	assert.Equal(t, "EUR", bars.Groups[0].Name)
	assert.Equal(t, []float64{0, 1.5}, bars.Groups[0].Values)
	assert.Equal(t, []float64{5, 0}, bars.Groups[1].Values)

	grid := HeatmapSeries(res)
	assert.Len(t, grid.Rows, 5)
	assert.Len(t, grid.Cols, 7)
	assert.Equal(t, 2, grid.Cells[1][4])

	tree := SpendSeries(res)
	require.Len(t, tree.Roots, 1)
	assert.Equal(t, 5.0, tree.Roots[0].Children[0].Children[0].Value)
}

func TestLayoutCoversCanvas(t *testing.T) {
	l := DefaultConfig().Layout()
	assert.Equal(t, image.Rect(0, 0, 1800, 1200), l.Canvas)

	area := 0
	cells := []image.Rectangle{l.Headline, l.Monthly, l.Heatmap, l.Spend}
	for i, a := range cells {
		area += a.Dx() * a.Dy()
		for _, b := range cells[i+1:] {
			assert.True(t, a.Intersect(b).Empty())
		}
	}
	assert.Equal(t, l.Canvas.Dx()*l.Canvas.Dy(), area)
}

func TestFormats(t *testing.T) {
	f, err := ParseFormat("JPG")
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, f)
	assert.Equal(t, "jpg", f.Ext())
	assert.Equal(t, "image/jpeg", f.ContentType())

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)

	_, err = ParseFormat("gif")
	assert.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, imaging.New(4, 4, color.White), FormatJPEG))
	decoded, err := imaging.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 4, decoded.Bounds().Dx())
}

func TestRenderPDF(t *testing.T) {
	var raster bytes.Buffer
	require.NoError(t, Encode(&raster, imaging.New(30, 20, color.White), FormatPNG))

	out, err := RenderPDF(raster.Bytes(), FormatPNG, PDFMeta{ID: "abc", OrderCount: 3})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF")))

	_, err = RenderPDF([]byte("nope"), FormatPNG, PDFMeta{})
	assert.Error(t, err)
}
