// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest reads declared source files into raw records and runs
// the ingestion pipeline: parse, normalize, reconcile, store.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/energyatlas/accessdb/internal/normalize"
	"github.com/energyatlas/accessdb/pkg/types"
)

// UnreadableSourceError reports a source file that could not be opened
// or whose structure does not match the declared format. Fatal: the run
// aborts and the store is left untouched.
type UnreadableSourceError struct {
	SourceID string
	Path     string
	Err      error
}

func (e *UnreadableSourceError) Error() string {
	return fmt.Sprintf("source %s: unreadable file %s: %v", e.SourceID, e.Path, e.Err)
}

func (e *UnreadableSourceError) Unwrap() error { return e.Err }

// Parser reads one declared source file into raw records. Parse re-reads
// the file on every call, so the same file yields the same sequence.
type Parser struct {
	cfg types.SourceConfig
}

// NewParser returns a Parser for one source declaration.
func NewParser(cfg types.SourceConfig) *Parser {
	return &Parser{cfg: cfg}
}

// Parse reads the whole source file, returning its header and rows as
// raw records. Wide-layout rows are exploded into one record per year
// column before being returned; rows always counts the data rows read
// from the file, not the exploded records.
func (p *Parser) Parse(ctx context.Context) (header []string, records []types.RawRecord, rows int, err error) {
	switch p.format() {
	case types.FormatXLSX:
		header, records, err = p.parseXLSX(ctx)
	default:
		header, records, err = p.parseCSV(ctx)
	}
	if err != nil {
		return nil, nil, 0, err
	}
	rows = len(records)
	if p.cfg.Layout == types.LayoutWide {
		records = explodeWide(header, records, p.cfg.Columns)
	}
	return header, records, rows, nil
}

// format resolves the declared format, falling back to the file extension.
func (p *Parser) format() types.SourceFormat {
	if p.cfg.Format != "" {
		return p.cfg.Format
	}
	switch strings.ToLower(filepath.Ext(p.cfg.Path)) {
	case ".xlsx", ".xls":
		return types.FormatXLSX
	}
	return types.FormatCSV
}

func (p *Parser) parseCSV(ctx context.Context) ([]string, []types.RawRecord, error) {
	f, err := os.Open(p.cfg.Path)
	if err != nil {
		return nil, nil, &UnreadableSourceError{SourceID: p.cfg.ID, Path: p.cfg.Path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged exports are common; rows are matched by header below

	header, err := r.Read()
	if err != nil {
		return nil, nil, &UnreadableSourceError{SourceID: p.cfg.ID, Path: p.cfg.Path,
			Err: fmt.Errorf("missing header row: %w", err)}
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []types.RawRecord
	row := 1
	for {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		cells, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, &UnreadableSourceError{SourceID: p.cfg.ID, Path: p.cfg.Path,
				Err: fmt.Errorf("row %d: %w", row+1, err)}
		}
		row++
		records = append(records, rowRecord(p.cfg.ID, row, header, cells))
	}
	return header, records, nil
}

func (p *Parser) parseXLSX(ctx context.Context) ([]string, []types.RawRecord, error) {
	f, err := excelize.OpenFile(p.cfg.Path)
	if err != nil {
		return nil, nil, &UnreadableSourceError{SourceID: p.cfg.ID, Path: p.cfg.Path, Err: err}
	}
	defer f.Close()

	sheet := p.cfg.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, &UnreadableSourceError{SourceID: p.cfg.ID, Path: p.cfg.Path,
			Err: fmt.Errorf("sheet %q: %w", sheet, err)}
	}
	if len(rows) == 0 {
		return nil, nil, &UnreadableSourceError{SourceID: p.cfg.ID, Path: p.cfg.Path,
			Err: fmt.Errorf("sheet %q: missing header row", sheet)}
	}

	header := rows[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []types.RawRecord
	for i, cells := range rows[1:] {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}
		records = append(records, rowRecord(p.cfg.ID, i+2, header, cells))
	}
	return header, records, nil
}

// rowRecord zips a header and a cell row into a RawRecord. Short rows
// leave trailing fields unset rather than failing.
func rowRecord(sourceID string, row int, header, cells []string) types.RawRecord {
	fields := make(map[string]string, len(header))
	for i, h := range header {
		if h == "" || i >= len(cells) {
			continue
		}
		fields[h] = cells[i]
	}
	return types.RawRecord{SourceID: sourceID, Row: row, Fields: fields}
}

// explodeWide converts year-per-column rows into one record per year
// cell. The year and cell value are stored under the normalizer's
// reserved keys; the country column passes through untouched.
func explodeWide(header []string, records []types.RawRecord, cols types.ColumnMap) []types.RawRecord {
	var yearCols []string
	for _, h := range header {
		if _, err := strconv.Atoi(h); err == nil {
			yearCols = append(yearCols, h)
		}
	}

	var out []types.RawRecord
	for _, rec := range records {
		country := rec.Fields[cols.Country]
		for _, yc := range yearCols {
			val, ok := rec.Fields[yc]
			if !ok || strings.TrimSpace(val) == "" {
				continue
			}
			out = append(out, types.RawRecord{
				SourceID: rec.SourceID,
				Row:      rec.Row,
				Fields: map[string]string{
					cols.Country:       country,
					normalize.YearKey:  yc,
					normalize.ValueKey: val,
				},
			})
		}
	}
	return out
}
