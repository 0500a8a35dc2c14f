// Package dataset loads pre-recorded sensor rows from CSV files or XLSX
// workbooks. Rows whose temperature cell is not a finite number are
// dropped here and never reach a session.
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/luki/pulpwatch/internal/sensor"
)

// DefaultTempColumn is the temperature header of the recorded workbooks.
const DefaultTempColumn = "Temperatura (°C)"

var (
	// ErrUnsupported is returned for file types other than CSV and XLSX.
	ErrUnsupported = errors.New("unsupported dataset format")
	// ErrEmpty is returned when a file has no header row.
	ErrEmpty = errors.New("empty dataset")
)

// Options select the columns and sheet to read.
type Options struct {
	TempColumn  string // exact header; empty falls back to identity matching
	PressColumn string // exact header; "-" disables the pressure channel
	Sheet       string // XLSX sheet; empty means the first sheet
}

// Dataset is the parsed content of one file.
type Dataset struct {
	Path     string
	Header   []string
	Columns  sensor.Columns
	Readings []sensor.Reading
	Rows     int // data rows seen, header excluded
	Dropped  int // rows rejected as malformed
}

// HasPressure reports whether a pressure column was resolved.
func (d *Dataset) HasPressure() bool {
	return d.Columns.Press >= 0
}

// ColumnName returns the header of a resolved column, or "".
func (d *Dataset) ColumnName(idx int) string {
	if idx < 0 || idx >= len(d.Header) {
		return ""
	}
	return d.Header[idx]
}

// LoadFile reads a dataset, choosing the format from the file extension.
func LoadFile(path string, opts Options) (*Dataset, error) {
	var (
		ds  *Dataset
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		ds, err = LoadCSV(f, opts)
	case ".xlsx", ".xlsm":
		ds, err = LoadXLSX(path, opts)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ds.Path = path
	return ds, nil
}

// LoadCSV reads a CSV stream with a header row. Semicolon-separated files
// are detected from the header line.
func LoadCSV(r io.Reader, opts Options) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if first, _, _ := bytes.Cut(data, []byte("\n")); bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		reader.Comma = ';'
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromRows(records, opts)
}

// LoadXLSX reads the first sheet (or opts.Sheet) of a workbook.
func LoadXLSX(path string, opts Options) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return fromRows(rows, opts)
}

func fromRows(rows [][]string, opts Options) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, ErrEmpty
	}

	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	tempName := opts.TempColumn
	if tempName == "" {
		tempName = DefaultTempColumn
	}
	cols, err := sensor.ResolveColumns(header, tempName, opts.PressColumn)
	if err != nil {
		return nil, fmt.Errorf("header %q: %w", header, err)
	}

	ds := &Dataset{Header: header, Columns: cols}
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		ds.Rows++
		r, err := sensor.ParseRow(row, cols, i+1)
		if err != nil {
			ds.Dropped++
			continue
		}
		ds.Readings = append(ds.Readings, r)
	}
	return ds, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
