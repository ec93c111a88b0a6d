package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wolt-report-service/internal/config"
	"wolt-report-service/internal/report"
)

func testConfig(dir string) config.Config {
	return config.Config{
		ReportsDir:     dir,
		ReportFormat:   "png",
		ReportQLEN:     120,
		ReportWindow:   "all",
		ZonePolicy:     "skip",
		RenderTimeout:  30 * time.Second,
		RenderRetries:  0,
		RegistryMaxLen: 10,
	}
}

func TestBuildGeneratesAndReopensReport(t *testing.T) {
	a, err := Build(context.Background(), testConfig(t.TempDir()), zap.NewNop(),
		report.WithClock(func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) }))
	require.NoError(t, err)
	defer a.Close()

	doc := []byte(`[{"order_id":"o1","status":"delivered","delivery_time":{"$date":1689422400000},
		"venue_name":"Pizza Place","venue_timezone":"Europe/Berlin","currency":"USD","total_price":500,
		"items":[{"name":"Margherita","count":1,"end_amount":500}]}]`)

	rep, err := a.Service.Generate(context.Background(), [][]byte{doc})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.OrderCount)
	assert.Equal(t, []string{"USD"}, rep.Currencies)

	data, got, err := a.Service.Open(context.Background(), rep.ID)
	require.NoError(t, err)
	assert.Equal(t, rep.ID, got.ID)
	assert.Equal(t, []byte("\x89PNG"), data[:4])
}

func TestBuildRejectsBadSettings(t *testing.T) {
	cases := map[string]func(*config.Config){
		"format": func(c *config.Config) { c.ReportFormat = "gif" },
		"window": func(c *config.Config) { c.ReportWindow = "yesterday" },
		"zones":  func(c *config.Config) { c.ZonePolicy = "ignore" },
		"font":   func(c *config.Config) { c.ReportFont = "/nonexistent/font.ttf" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(t.TempDir())
			mutate(&cfg)
			_, err := Build(context.Background(), cfg, zap.NewNop())
			assert.Error(t, err)
		})
	}
}
