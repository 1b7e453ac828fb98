// Package csv wraps the stdlib CSV reader with the header-indexed, per-row API the GTFS static parser uses.
//
// Columns are resolved once against the header row; each row read through a required column
// records the column as missing when the cell is absent or blank.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/transitmetrics/gtfs/constants"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type File struct {
	name                   constants.StaticFile
	reader                 *csv.Reader
	header                 map[string]int
	missingRequiredColumns []string
	rowNumber              int
	cells                  []string
	missingKeys            []string
	ioErr                  error
	closer                 func() error
}

// New reads the header row of the file. The reader is closed on error; otherwise the caller must call Close.
func New(name constants.StaticFile, reader io.ReadCloser) (*File, error) {
	csvReader := BOMAwareCSVReader(reader)
	csvReader.FieldsPerRecord = -1
	headerRow, err := csvReader.Read()
	if err == io.EOF {
		reader.Close()
		return nil, fmt.Errorf("%s contains no rows", name)
	} else if err != nil {
		reader.Close()
		return nil, fmt.Errorf("failed to read %s header: %w", name, err)
	}
	// Strings read from a row stay valid after the record slice is reused.
	csvReader.ReuseRecord = true
	header := map[string]int{}
	for i, column := range headerRow {
		header[column] = i
	}
	return &File{
		name:   name,
		reader: csvReader,
		header: header,
		closer: reader.Close,
	}, nil
}

func (f *File) Name() constants.StaticFile {
	return f.name
}

type RequiredColumn struct {
	i    int
	name string
	f    *File
}

func (f *File) RequiredColumn(name string) RequiredColumn {
	i, ok := f.header[name]
	if !ok {
		f.missingRequiredColumns = append(f.missingRequiredColumns, name)
		i = -1
	}
	return RequiredColumn{i: i, name: name, f: f}
}

// MissingRequiredColumns returns the required columns that are not in the header.
func (f *File) MissingRequiredColumns() []string {
	if len(f.missingRequiredColumns) == 0 {
		return nil
	}
	return f.missingRequiredColumns
}

func (c RequiredColumn) Read() string {
	if c.i < 0 || c.i >= len(c.f.cells) || c.f.cells[c.i] == "" {
		c.f.missingKeys = append(c.f.missingKeys, c.name)
		return ""
	}
	return c.f.cells[c.i]
}

// ReadInt reads the cell as an integer. An unparseable cell counts as missing.
func (c RequiredColumn) ReadInt() int {
	s := c.Read()
	if s == "" {
		return 0
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		c.f.missingKeys = append(c.f.missingKeys, c.name)
		return 0
	}
	return i
}

type OptionalColumn struct {
	i int
	f *File
}

func (f *File) OptionalColumn(name string) OptionalColumn {
	i, ok := f.header[name]
	if !ok {
		i = -1
	}
	return OptionalColumn{i: i, f: f}
}

// Read returns the cell, or the empty string if the column or cell is absent.
//
// Blank cells are returned as-is: for stop times an empty arrival_time is meaningful.
func (c OptionalColumn) Read() string {
	return c.ReadOr("")
}

func (c OptionalColumn) ReadOr(fallback string) string {
	if c.i < 0 || c.i >= len(c.f.cells) {
		return fallback
	}
	return c.f.cells[c.i]
}

func (f *File) NextRow() bool {
	cells, err := f.reader.Read()
	if err == io.EOF {
		f.cells = nil
		return false
	}
	if err != nil {
		f.cells = nil
		f.ioErr = fmt.Errorf("%s row %d: %w", f.name, f.rowNumber+1, err)
		return false
	}
	f.rowNumber++
	f.cells = cells
	f.missingKeys = nil
	return true
}

// RowNumber is the 1-based number of the current data row, not counting the header.
func (f *File) RowNumber() int {
	return f.rowNumber
}

func (f *File) MissingRowKeys() []string {
	return f.missingKeys
}

// Close closes the underlying reader and returns the first read error encountered, if any.
func (f *File) Close() error {
	closeErr := f.closer()
	if f.ioErr != nil {
		return f.ioErr
	}
	return closeErr
}

// From: https://stackoverflow.com/a/76023436
//
// BOMAwareCSVReader will detect a UTF BOM (Byte Order Mark) at the
// start of the data and transform to UTF8 accordingly.
// If there is no BOM, it will read the data without any transformation.
func BOMAwareCSVReader(reader io.Reader) *csv.Reader {
	var transformer = unicode.BOMOverride(encoding.Nop.NewDecoder())
	return csv.NewReader(transform.NewReader(reader, transformer))
}
