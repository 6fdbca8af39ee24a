// Package dataframe provides the table abstraction the preprocessing
// operators run over: ordered named columns with row-aligned values.
// Every mutating operation returns a new DataFrame; callers' frames are
// never modified in place.
package dataframe

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/prepline/prepline/internal/series"
)

// ISeries provides a type-erased interface for Series of any type.
type ISeries interface {
	Name() string
	Len() int
	DataType() arrow.DataType
	IsNull(index int) bool
	GetAsString(index int) string
	String() string
	Array() arrow.Array
	Release()
}

// DataFrame represents a table of data with typed columns.
type DataFrame struct {
	columns map[string]ISeries
	order   []string
}

// New creates a new DataFrame from a slice of ISeries. All columns must
// have the same length; constructing a frame with misaligned columns is
// a programming error and panics.
func New(cols ...ISeries) *DataFrame {
	columns := make(map[string]ISeries)
	order := make([]string, 0, len(cols))

	rows := -1
	for _, s := range cols {
		if rows == -1 {
			rows = s.Len()
		} else if s.Len() != rows {
			panic(fmt.Sprintf("dataframe: column %q has %d rows, want %d", s.Name(), s.Len(), rows))
		}
		name := s.Name()
		if _, exists := columns[name]; !exists {
			order = append(order, name)
		}
		columns[name] = s
	}

	return &DataFrame{
		columns: columns,
		order:   order,
	}
}

// Columns returns the names of all columns in order.
func (df *DataFrame) Columns() []string {
	if len(df.order) == 0 {
		return []string{}
	}
	return append([]string(nil), df.order...)
}

// Len returns the number of rows (all columns share the same length).
func (df *DataFrame) Len() int {
	if len(df.order) > 0 {
		if s, exists := df.columns[df.order[0]]; exists {
			return s.Len()
		}
	}
	return 0
}

// Width returns the number of columns.
func (df *DataFrame) Width() int {
	return len(df.columns)
}

// Column returns the series for the given column name.
func (df *DataFrame) Column(name string) (ISeries, bool) {
	s, exists := df.columns[name]
	return s, exists
}

// HasColumn checks if a column exists.
func (df *DataFrame) HasColumn(name string) bool {
	_, exists := df.columns[name]
	return exists
}

// Select returns a new DataFrame with only the specified columns,
// in the order given, filtered to those present.
func (df *DataFrame) Select(names ...string) *DataFrame {
	newColumns := make(map[string]ISeries)
	newOrder := make([]string, 0, len(names))

	for _, name := range names {
		if s, exists := df.columns[name]; exists {
			newColumns[name] = copySeries(s)
			newOrder = append(newOrder, name)
		}
	}

	return &DataFrame{
		columns: newColumns,
		order:   newOrder,
	}
}

// Drop returns a new DataFrame without the specified columns.
func (df *DataFrame) Drop(names ...string) *DataFrame {
	dropSet := make(map[string]bool)
	for _, name := range names {
		dropSet[name] = true
	}

	newColumns := make(map[string]ISeries)
	newOrder := make([]string, 0, len(df.order))

	for _, name := range df.order {
		if !dropSet[name] {
			newColumns[name] = copySeries(df.columns[name])
			newOrder = append(newOrder, name)
		}
	}

	return &DataFrame{
		columns: newColumns,
		order:   newOrder,
	}
}

// WithColumn returns a new DataFrame with the named column replaced by s,
// keeping its position in the column order. If the column does not exist
// it is appended.
func (df *DataFrame) WithColumn(name string, s ISeries) *DataFrame {
	if df.Width() > 0 && s.Len() != df.Len() {
		panic(fmt.Sprintf("dataframe: column %q has %d rows, want %d", name, s.Len(), df.Len()))
	}
	newColumns := make(map[string]ISeries, len(df.columns)+1)
	newOrder := make([]string, 0, len(df.order)+1)

	replaced := false
	for _, colName := range df.order {
		if colName == name {
			newColumns[name] = s
			newOrder = append(newOrder, name)
			replaced = true
			continue
		}
		newColumns[colName] = copySeries(df.columns[colName])
		newOrder = append(newOrder, colName)
	}

	if !replaced {
		newColumns[name] = s
		newOrder = append(newOrder, name)
	}

	return &DataFrame{
		columns: newColumns,
		order:   newOrder,
	}
}

// Copy returns a deep copy of the DataFrame.
func (df *DataFrame) Copy() *DataFrame {
	newColumns := make(map[string]ISeries, len(df.columns))
	newOrder := append([]string(nil), df.order...)

	for _, name := range df.order {
		newColumns[name] = copySeries(df.columns[name])
	}

	return &DataFrame{
		columns: newColumns,
		order:   newOrder,
	}
}

// Take returns a new DataFrame containing only the rows at the given
// indices, in the given order. Indices may repeat. Out-of-range indices
// are an error.
func (df *DataFrame) Take(indices []int) (*DataFrame, error) {
	length := df.Len()
	for _, idx := range indices {
		if idx < 0 || idx >= length {
			return nil, fmt.Errorf("take: row index %d out of range [0,%d)", idx, length)
		}
	}

	var newSeries []ISeries
	for _, name := range df.order {
		taken, err := takeSeries(df.columns[name], indices)
		if err != nil {
			return nil, err
		}
		newSeries = append(newSeries, taken)
	}

	return New(newSeries...), nil
}

// Slice creates a new DataFrame containing rows from start (inclusive)
// to end (exclusive).
func (df *DataFrame) Slice(start, end int) *DataFrame {
	length := df.Len()
	if start < 0 || end < 0 || start >= end || start >= length {
		return New()
	}
	if end > length {
		end = length
	}

	indices := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		indices = append(indices, i)
	}

	result, err := df.Take(indices)
	if err != nil {
		return New()
	}
	return result
}

// Concat concatenates this DataFrame with others row-wise. All frames
// must share the same column names and order.
func (df *DataFrame) Concat(others ...*DataFrame) (*DataFrame, error) {
	if len(others) == 0 {
		return df.Copy(), nil
	}

	for _, other := range others {
		if len(other.order) != len(df.order) {
			return nil, fmt.Errorf("concat: column count mismatch (%d vs %d)", len(df.order), len(other.order))
		}
		for i, name := range df.order {
			if other.order[i] != name {
				return nil, fmt.Errorf("concat: column order mismatch at %d (%q vs %q)", i, name, other.order[i])
			}
		}
	}

	var newSeries []ISeries
	for _, name := range df.order {
		parts := []ISeries{df.columns[name]}
		for _, other := range others {
			parts = append(parts, other.columns[name])
		}
		merged, err := concatSeries(name, parts)
		if err != nil {
			return nil, err
		}
		newSeries = append(newSeries, merged)
	}

	return New(newSeries...), nil
}

// String returns a string representation of the DataFrame.
func (df *DataFrame) String() string {
	if len(df.columns) == 0 {
		return "DataFrame[empty]"
	}

	parts := []string{fmt.Sprintf("DataFrame[%dx%d]", df.Len(), df.Width())}
	for _, name := range df.order {
		parts = append(parts, fmt.Sprintf("  %s: %s", name, df.columns[name].DataType().String()))
	}

	return strings.Join(parts, "\n")
}

// Release releases all underlying Arrow memory.
func (df *DataFrame) Release() {
	for _, s := range df.columns {
		s.Release()
	}
}

// copySeries creates an independent copy of a series.
func copySeries(s ISeries) ISeries {
	originalArray := s.Array()
	defer originalArray.Release()

	mem := memory.NewGoAllocator()

	switch typedArr := originalArray.(type) {
	case *array.String:
		values := make([]string, typedArr.Len())
		for i := 0; i < typedArr.Len(); i++ {
			if !typedArr.IsNull(i) {
				values[i] = typedArr.Value(i)
			}
		}
		return series.New(s.Name(), values, mem)

	case *array.Int64:
		values := make([]int64, typedArr.Len())
		for i := 0; i < typedArr.Len(); i++ {
			if !typedArr.IsNull(i) {
				values[i] = typedArr.Value(i)
			}
		}
		return series.New(s.Name(), values, mem)

	case *array.Float64:
		values := make([]float64, typedArr.Len())
		valid := make([]bool, typedArr.Len())
		for i := 0; i < typedArr.Len(); i++ {
			if !typedArr.IsNull(i) {
				values[i] = typedArr.Value(i)
				valid[i] = true
			}
		}
		return series.NewFloat64WithNulls(s.Name(), values, valid, mem)

	case *array.Boolean:
		values := make([]bool, typedArr.Len())
		for i := 0; i < typedArr.Len(); i++ {
			if !typedArr.IsNull(i) {
				values[i] = typedArr.Value(i)
			}
		}
		return series.New(s.Name(), values, mem)

	default:
		return series.New(s.Name(), []string{}, mem)
	}
}

// takeSeries builds a new series from the rows of s at the given indices.
func takeSeries(s ISeries, indices []int) (ISeries, error) {
	originalArray := s.Array()
	defer originalArray.Release()

	mem := memory.NewGoAllocator()

	switch typedArr := originalArray.(type) {
	case *array.String:
		values := make([]string, len(indices))
		for i, idx := range indices {
			if !typedArr.IsNull(idx) {
				values[i] = typedArr.Value(idx)
			}
		}
		return series.New(s.Name(), values, mem), nil

	case *array.Int64:
		values := make([]int64, len(indices))
		for i, idx := range indices {
			if !typedArr.IsNull(idx) {
				values[i] = typedArr.Value(idx)
			}
		}
		return series.New(s.Name(), values, mem), nil

	case *array.Float64:
		values := make([]float64, len(indices))
		valid := make([]bool, len(indices))
		for i, idx := range indices {
			if !typedArr.IsNull(idx) {
				values[i] = typedArr.Value(idx)
				valid[i] = true
			}
		}
		return series.NewFloat64WithNulls(s.Name(), values, valid, mem), nil

	case *array.Boolean:
		values := make([]bool, len(indices))
		for i, idx := range indices {
			if !typedArr.IsNull(idx) {
				values[i] = typedArr.Value(idx)
			}
		}
		return series.New(s.Name(), values, mem), nil

	default:
		return nil, fmt.Errorf("take: unsupported column type %s", s.DataType())
	}
}

// concatSeries concatenates same-typed series into one.
func concatSeries(name string, parts []ISeries) (ISeries, error) {
	mem := memory.NewGoAllocator()

	first := parts[0].Array()
	defer first.Release()

	switch first.(type) {
	case *array.String:
		var values []string
		for _, p := range parts {
			arr, ok := p.Array().(*array.String)
			if !ok {
				return nil, fmt.Errorf("concat: column %q type mismatch", name)
			}
			for i := 0; i < arr.Len(); i++ {
				if arr.IsNull(i) {
					values = append(values, "")
				} else {
					values = append(values, arr.Value(i))
				}
			}
			arr.Release()
		}
		return series.New(name, values, mem), nil

	case *array.Int64:
		var values []int64
		for _, p := range parts {
			arr, ok := p.Array().(*array.Int64)
			if !ok {
				return nil, fmt.Errorf("concat: column %q type mismatch", name)
			}
			for i := 0; i < arr.Len(); i++ {
				if arr.IsNull(i) {
					values = append(values, 0)
				} else {
					values = append(values, arr.Value(i))
				}
			}
			arr.Release()
		}
		return series.New(name, values, mem), nil

	case *array.Float64:
		var values []float64
		var valid []bool
		for _, p := range parts {
			arr, ok := p.Array().(*array.Float64)
			if !ok {
				return nil, fmt.Errorf("concat: column %q type mismatch", name)
			}
			for i := 0; i < arr.Len(); i++ {
				if arr.IsNull(i) {
					values = append(values, 0)
					valid = append(valid, false)
				} else {
					values = append(values, arr.Value(i))
					valid = append(valid, true)
				}
			}
			arr.Release()
		}
		return series.NewFloat64WithNulls(name, values, valid, mem), nil

	case *array.Boolean:
		var values []bool
		for _, p := range parts {
			arr, ok := p.Array().(*array.Boolean)
			if !ok {
				return nil, fmt.Errorf("concat: column %q type mismatch", name)
			}
			for i := 0; i < arr.Len(); i++ {
				values = append(values, !arr.IsNull(i) && arr.Value(i))
			}
			arr.Release()
		}
		return series.New(name, values, mem), nil

	default:
		return nil, fmt.Errorf("concat: unsupported column type for %q", name)
	}
}
