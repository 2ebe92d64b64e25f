package console_test

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marketbloc/vendor-api/internal/console"
)

const servedCSV = "Sub Order ID,Status,Created At\nso-1,processing,2024-01-15T09:30:00Z\nso-2,shipped,2024-01-14T08:00:00Z\n"

func TestExportOrdersWritesBOMFile(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		_, _ = w.Write([]byte(servedCSV))
	}))
	t.Cleanup(ts.Close)

	client, err := console.NewClient(ts.URL, "tok", ts.Client())
	require.NoError(t, err)

	dir := t.TempDir()
	at := time.Date(2024, 1, 31, 17, 0, 0, 0, time.UTC)
	path, err := console.ExportOrders(context.Background(), client, console.Filters{}, dir, at)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "orders_2024-01-31.csv"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(raw), "\uFEFF"), "expected UTF-8 BOM prefix")

	// Stripping the BOM must yield exactly the served document: the header
	// row survives the round trip unmutated.
	body := strings.TrimPrefix(string(raw), "\uFEFF")
	require.Equal(t, servedCSV, body)

	records, err := csv.NewReader(strings.NewReader(body)).ReadAll()
	require.NoError(t, err)
	require.Equal(t, []string{"Sub Order ID", "Status", "Created At"}, records[0])
	require.Len(t, records, 3)
}

func TestExportRowsBuildsLocalCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	at := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	path, err := console.ExportRows(
		[]string{"Product", "Variant", "Price"},
		[][]string{
			{"Linen Shirt", "var-a", "100000"},
			{"Linen Shirt", "var-b", "120000"},
		},
		dir, at,
	)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "orders_2024-02-01.csv"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(raw), "\uFEFF"))

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(raw), "\uFEFF"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, []string{"Product", "Variant", "Price"}, records[0])
}

func TestExportOrdersFailureWritesNothing(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"success":false,"error":"storage_unavailable","message":"storage temporarily unavailable"}`))
	}))
	t.Cleanup(ts.Close)

	client, err := console.NewClient(ts.URL, "tok", ts.Client())
	require.NoError(t, err)

	dir := t.TempDir()
	_, err = console.ExportOrders(context.Background(), client, console.Filters{}, dir, time.Now())
	require.Error(t, err)
	require.Equal(t, "storage temporarily unavailable", err.Error())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "expected no file on failure")
}
