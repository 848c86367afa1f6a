package geoio

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/transportlab/zonelink/pkg/zone"
)

// csvHeader is the column layout of exported weight tables.
var csvHeader = []string{"source", "target", "weight"}

// WriteTableCSV writes a weight table to w as CSV with a header row.
// Weights are formatted with full float64 round-trip precision so the table
// re-imports without loss.
func WriteTableCSV(w io.Writer, table zone.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range table {
		rec := []string{e.Source, e.Target, strconv.FormatFloat(e.Weight, 'g', -1, 64)}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write entry %s->%s: %w", e.Source, e.Target, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportTableCSV writes a weight table to a CSV file at path.
func ExportTableCSV(table zone.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteTableCSV(f, table)
}

// WriteTableJSON writes a weight table to w as an indented JSON array.
func WriteTableJSON(w io.Writer, table zone.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(table); err != nil {
		return fmt.Errorf("encode table: %w", err)
	}
	return nil
}

// ExportTableJSON writes a weight table to a JSON file at path.
func ExportTableJSON(table zone.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteTableJSON(f, table)
}

// ReadTableJSON reads a weight table previously written by WriteTableJSON.
// Used by the result cache to rehydrate computed tables.
func ReadTableJSON(r io.Reader) (zone.Table, error) {
	var table zone.Table
	if err := json.NewDecoder(r).Decode(&table); err != nil {
		return nil, fmt.Errorf("decode table: %w", err)
	}
	return table, nil
}

// WriteDiagnosticsJSON writes the skipped-zone list to w as indented JSON.
func WriteDiagnosticsJSON(w io.Writer, diags zone.Diagnostics) error {
	if diags == nil {
		diags = zone.Diagnostics{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(diags); err != nil {
		return fmt.Errorf("encode diagnostics: %w", err)
	}
	return nil
}

// ReadDiagnosticsJSON reads a skipped-zone list previously written by
// WriteDiagnosticsJSON.
func ReadDiagnosticsJSON(r io.Reader) (zone.Diagnostics, error) {
	var diags zone.Diagnostics
	if err := json.NewDecoder(r).Decode(&diags); err != nil {
		return nil, fmt.Errorf("decode diagnostics: %w", err)
	}
	return diags, nil
}

// ExportDiagnosticsJSON writes diagnostics to a JSON file at path.
func ExportDiagnosticsJSON(diags zone.Diagnostics, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDiagnosticsJSON(f, diags)
}
