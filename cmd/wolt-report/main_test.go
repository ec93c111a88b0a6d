package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wolt-report-service/internal/auth"
)

const history = `[
{"order_id":"o1","status":"delivered","delivery_time":{"$date":1689422400000},"venue_name":"Pizza Place / Kallio",
 "venue_timezone":"Europe/Berlin","currency":"USD","total_price":500,"items":[{"name":"Margherita","count":1,"end_amount":500}]},
{"order_id":"o2","status":"delivered","delivery_time":{"$date":1692100800000},"venue_name":"Sushi Bar",
 "venue_timezone":"Mars/Base","currency":"EUR","total_price":900,"items":[{"name":"Maki","count":2,"end_amount":900}]},
{"order_id":"o3","status":"rejected","delivery_time":{"$date":1692100800000},"venue_name":"Burger",
 "venue_timezone":"UTC","currency":"EUR","total_price":100}
]`

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func gzipped(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := pgzip.NewWriter(&buf)
	_, err := gz.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestReadInputs(t *testing.T) {
	plain := writeFile(t, "orders.json", []byte(history))
	packed := writeFile(t, "orders.json.gz", gzipped(t, history))

	docs, err := readInputs([]string{plain, packed, "-"}, strings.NewReader(history))
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	_, err = readInputs(nil, nil)
	assert.Error(t, err)

	_, err = readInputs([]string{filepath.Join(t.TempDir(), "missing.json")}, nil)
	assert.Error(t, err)

	_, err = readInputs([]string{writeFile(t, "bad.json", []byte("{oops"))}, nil)
	assert.Error(t, err)
}

func TestSummaryCommand(t *testing.T) {
	out, err := runCLI(t, history, "summary", "--input", "-", "--window", "all", "--zones", "skip")
	require.NoError(t, err)

	assert.Contains(t, out, "Order Count:   1")
	assert.Contains(t, out, "Total Expenses: 5.0 USD")
	assert.Contains(t, out, "1. Pizza Place  5.0 USD")
	assert.Contains(t, out, "1. Margherita  5.0 USD")
	assert.Contains(t, out, "Skipped (unknown timezone): 1")
	assert.Contains(t, out, "  o2")
}

func TestSummaryFailsOnUnknownZoneWhenStrict(t *testing.T) {
	_, err := runCLI(t, history, "summary", "--input", "-", "--window", "all", "--zones", "fail")
	assert.Error(t, err)
}

func TestGenerateCommand(t *testing.T) {
	t.Setenv("OBJECT_STORE_ENDPOINT", "")
	t.Setenv("R2_S3_ENDPOINT", "")
	t.Setenv("R2_ACCOUNT_ID", "")
	dir := t.TempDir()
	input := writeFile(t, "orders.json.gz", gzipped(t, history))

	out, err := runCLI(t, "", "generate", "-i", input, "--out", dir, "--window", "all", "--qlen", "120")
	require.NoError(t, err)
	assert.Contains(t, out, "orders: 1")
	assert.Contains(t, out, "skipped: o2")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".png"))
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	out, err := runCLI(t, "", "token", "--subject", "ops")
	require.NoError(t, err)

	claims, err := auth.VerifyAccessToken(strings.TrimSpace(out), "secret")
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)

	t.Setenv("JWT_SECRET", "")
	_, err = runCLI(t, "", "token")
	assert.Error(t, err)
}
