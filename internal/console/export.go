package console

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// utf8BOM is prepended to downloaded CSV so spreadsheet applications detect
// the encoding. The server ships plain UTF-8; the byte order mark is a
// client-side concern.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportAPI is the slice of the vendor API the export path needs.
type ExportAPI interface {
	ExportOrders(ctx context.Context, filters Filters) ([]byte, error)
}

// ExportFilename names the download for an export generated at the given time.
func ExportFilename(at time.Time) string {
	return "orders_" + at.UTC().Format("2006-01-02") + ".csv"
}

// ExportOrders downloads the filtered order set and writes it to dir as
// orders_<date>.csv with a UTF-8 BOM. The partially written file is removed
// on failure. Returns the written path.
func ExportOrders(ctx context.Context, api ExportAPI, filters Filters, dir string, at time.Time) (string, error) {
	data, err := api.ExportOrders(ctx, filters)
	if err != nil {
		return "", err
	}
	return writeExportFile(dir, at, data)
}

// ExportRows builds a CSV document locally from already loaded rows and
// writes it with the same BOM and naming scheme as the server export.
func ExportRows(header []string, rows [][]string, dir string, at time.Time) (string, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(header); err != nil {
		return "", fmt.Errorf("console: write csv header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("console: write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("console: flush csv: %w", err)
	}
	return writeExportFile(dir, at, buf.Bytes())
}

func writeExportFile(dir string, at time.Time, data []byte) (string, error) {
	if !bytes.HasPrefix(data, utf8BOM) {
		data = append(append(make([]byte, 0, len(utf8BOM)+len(data)), utf8BOM...), data...)
	}

	target := filepath.Join(dir, ExportFilename(at))
	if err := os.WriteFile(target, data, 0o644); err != nil {
		// Remove whatever made it to disk so a failed export leaves nothing behind.
		_ = os.Remove(target)
		return "", fmt.Errorf("console: write export file: %w", err)
	}
	return target, nil
}
