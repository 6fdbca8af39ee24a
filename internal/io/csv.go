// Package io reads and writes DataFrames as CSV with automatic type
// inference. Empty cells in numeric columns become missing values
// (Arrow nulls, surfaced as NaN) so the imputation operators can fill
// them downstream.
package io

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/prepline/prepline/internal/dataframe"
	"github.com/prepline/prepline/internal/series"
)

const (
	trueStr  = "true"
	falseStr = "false"
)

// CSVOptions contains configuration options for CSV operations.
type CSVOptions struct {
	// Delimiter is the field delimiter (default: comma).
	Delimiter rune
	// Comment is the comment character (default: 0 = disabled).
	Comment rune
	// Header indicates whether the first row contains headers.
	Header bool
	// SkipInitialSpace indicates whether to skip initial whitespace.
	SkipInitialSpace bool
}

// DefaultCSVOptions returns default CSV options.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter: ',',
		Header:    true,
	}
}

// CSVReader reads CSV data and converts it to DataFrames.
type CSVReader struct {
	reader  io.Reader
	options CSVOptions
	mem     memory.Allocator
}

// NewCSVReader creates a new CSV reader with the specified options.
func NewCSVReader(reader io.Reader, options CSVOptions, mem memory.Allocator) *CSVReader {
	return &CSVReader{reader: reader, options: options, mem: mem}
}

// ReadFile reads a CSV file with default options.
func ReadFile(filename string) (*dataframe.DataFrame, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening CSV file: %w", err)
	}
	defer f.Close()
	return NewCSVReader(f, DefaultCSVOptions(), memory.NewGoAllocator()).Read()
}

// Read reads CSV data and returns a DataFrame.
func (r *CSVReader) Read() (*dataframe.DataFrame, error) {
	csvReader := csv.NewReader(r.reader)
	csvReader.Comma = r.options.Delimiter
	csvReader.Comment = r.options.Comment
	csvReader.TrimLeadingSpace = r.options.SkipInitialSpace

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return dataframe.New(), nil
	}

	var headers []string
	var dataRows [][]string
	if r.options.Header {
		headers = records[0]
		dataRows = records[1:]
	} else {
		headers = make([]string, len(records[0]))
		for i := range headers {
			headers[i] = fmt.Sprintf("column_%d", i)
		}
		dataRows = records
	}

	// Transpose to columns.
	columns := make([][]string, len(headers))
	for i := range headers {
		columns[i] = make([]string, len(dataRows))
		for j, row := range dataRows {
			if i < len(row) {
				columns[i][j] = row[i]
			}
		}
	}

	cols := make([]dataframe.ISeries, 0, len(headers))
	for i, header := range headers {
		cols = append(cols, r.createSeriesFromStrings(header, columns[i]))
	}
	return dataframe.New(cols...), nil
}

// createSeriesFromStrings creates a series from string data, inferring
// the appropriate type. Numeric columns with empty cells are stored as
// float64 with nulls in the empty positions.
func (r *CSVReader) createSeriesFromStrings(name string, data []string) dataframe.ISeries {
	switch r.inferDataType(data) {
	case "bool":
		return r.createBoolSeries(name, data)
	case "int":
		return r.createIntSeries(name, data)
	case "float":
		return r.createFloatSeries(name, data)
	default:
		return series.New(name, data, r.mem)
	}
}

// inferDataType determines the most specific type the column can hold.
// Empty cells are skipped during inference; a column whose every cell
// is empty stays a string column.
func (r *CSVReader) inferDataType(data []string) string {
	canBeInt := true
	canBeFloat := true
	canBeBool := true
	hasEmpty := false
	hasNonEmpty := false

	for _, value := range data {
		if value == "" {
			hasEmpty = true
			continue
		}
		hasNonEmpty = true

		if canBeBool {
			lower := strings.ToLower(value)
			if lower != trueStr && lower != falseStr {
				canBeBool = false
			}
		}
		if canBeInt {
			if _, err := strconv.ParseInt(value, 10, 64); err != nil {
				canBeInt = false
			}
		}
		if canBeFloat {
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				canBeFloat = false
			}
		}
	}

	if !hasNonEmpty {
		return "string"
	}
	if canBeBool {
		return "bool"
	}
	if canBeInt {
		// Integers with gaps promote to float so the gaps can be
		// represented as missing values.
		if hasEmpty {
			return "float"
		}
		return "int"
	}
	if canBeFloat {
		return "float"
	}
	return "string"
}

func (r *CSVReader) createBoolSeries(name string, data []string) dataframe.ISeries {
	boolData := make([]bool, len(data))
	for i, value := range data {
		boolData[i] = strings.EqualFold(value, trueStr)
	}
	return series.New(name, boolData, r.mem)
}

func (r *CSVReader) createIntSeries(name string, data []string) dataframe.ISeries {
	intData := make([]int64, len(data))
	for i, value := range data {
		val, _ := strconv.ParseInt(value, 10, 64)
		intData[i] = val
	}
	return series.New(name, intData, r.mem)
}

func (r *CSVReader) createFloatSeries(name string, data []string) dataframe.ISeries {
	floatData := make([]float64, len(data))
	valid := make([]bool, len(data))
	for i, value := range data {
		if value == "" {
			continue
		}
		val, _ := strconv.ParseFloat(value, 64)
		floatData[i] = val
		valid[i] = true
	}
	return series.NewFloat64WithNulls(name, floatData, valid, r.mem)
}

// CSVWriter writes DataFrames to CSV format. Missing values are
// written as empty cells.
type CSVWriter struct {
	writer  io.Writer
	options CSVOptions
}

// NewCSVWriter creates a new CSV writer with the specified options.
func NewCSVWriter(writer io.Writer, options CSVOptions) *CSVWriter {
	return &CSVWriter{writer: writer, options: options}
}

// WriteFile writes the DataFrame to a CSV file with default options.
func WriteFile(filename string, df *dataframe.DataFrame) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating CSV file: %w", err)
	}
	defer f.Close()
	return NewCSVWriter(f, DefaultCSVOptions()).Write(df)
}

// Write writes the DataFrame to CSV format.
func (w *CSVWriter) Write(df *dataframe.DataFrame) error {
	csvWriter := csv.NewWriter(w.writer)
	csvWriter.Comma = w.options.Delimiter
	defer csvWriter.Flush()

	names := df.Columns()
	if w.options.Header {
		if err := csvWriter.Write(names); err != nil {
			return fmt.Errorf("writing headers: %w", err)
		}
	}

	for i := 0; i < df.Len(); i++ {
		row := make([]string, len(names))
		for j, name := range names {
			col, ok := df.Column(name)
			if !ok {
				continue
			}
			row[j] = col.GetAsString(i)
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	return csvWriter.Error()
}
