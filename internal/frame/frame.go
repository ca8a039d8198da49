// Package frame provides the column-oriented table the feature pipeline
// operates on. Every column carries a static kind assigned at creation;
// the kind, not a runtime type scan, decides whether a column is part of
// the model input.
package frame

import (
	"fmt"
	"time"
)

// Kind identifies the storage type of a column.
type Kind int

const (
	String Kind = iota
	Float
	Int
	Bool
	Time
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Float:
		return "float"
	case Int:
		return "int"
	case Bool:
		return "bool"
	case Time:
		return "time"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Model reports whether columns of this kind are fed to models.
// String and Time columns are intermediate pipeline artifacts only.
func (k Kind) Model() bool {
	return k == Float || k == Int || k == Bool
}

// Column is a named, typed, null-aware vector of values.
type Column struct {
	name   string
	kind   Kind
	valid  []bool
	strs   []string
	floats []float64
	ints   []int64
	bools  []bool
	times  []time.Time
}

// NewColumn creates an all-null column of the given kind and length.
func NewColumn(name string, kind Kind, n int) *Column {
	c := &Column{name: name, kind: kind, valid: make([]bool, n)}
	switch kind {
	case String:
		c.strs = make([]string, n)
	case Float:
		c.floats = make([]float64, n)
	case Int:
		c.ints = make([]int64, n)
	case Bool:
		c.bools = make([]bool, n)
	case Time:
		c.times = make([]time.Time, n)
	}
	return c
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }
func (c *Column) Len() int     { return len(c.valid) }

// IsNull reports whether row i holds no value.
func (c *Column) IsNull(i int) bool { return !c.valid[i] }

func (c *Column) SetNull(i int) { c.valid[i] = false }

func (c *Column) SetString(i int, v string) {
	c.strs[i] = v
	c.valid[i] = true
}

func (c *Column) SetFloat(i int, v float64) {
	c.floats[i] = v
	c.valid[i] = true
}

func (c *Column) SetInt(i int, v int64) {
	c.ints[i] = v
	c.valid[i] = true
}

func (c *Column) SetBool(i int, v bool) {
	c.bools[i] = v
	c.valid[i] = true
}

func (c *Column) SetTime(i int, v time.Time) {
	c.times[i] = v
	c.valid[i] = true
}

func (c *Column) StringAt(i int) (string, bool) { return c.strs[i], c.valid[i] }
func (c *Column) FloatAt(i int) (float64, bool) { return c.floats[i], c.valid[i] }
func (c *Column) IntAt(i int) (int64, bool)     { return c.ints[i], c.valid[i] }
func (c *Column) BoolAt(i int) (bool, bool)     { return c.bools[i], c.valid[i] }
func (c *Column) TimeAt(i int) (time.Time, bool) {
	return c.times[i], c.valid[i]
}

// NumberAt returns the numeric view of row i for Float, Int and Bool
// columns. Bool maps to 0/1. The second return is false for nulls and
// for non-numeric kinds.
func (c *Column) NumberAt(i int) (float64, bool) {
	if !c.valid[i] {
		return 0, false
	}
	switch c.kind {
	case Float:
		return c.floats[i], true
	case Int:
		return float64(c.ints[i]), true
	case Bool:
		if c.bools[i] {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	out := &Column{name: c.name, kind: c.kind}
	out.valid = append([]bool(nil), c.valid...)
	out.strs = append([]string(nil), c.strs...)
	out.floats = append([]float64(nil), c.floats...)
	out.ints = append([]int64(nil), c.ints...)
	out.bools = append([]bool(nil), c.bools...)
	out.times = append([]time.Time(nil), c.times...)
	return out
}

// Frame is an ordered collection of equal-length columns.
type Frame struct {
	rows  int
	cols  []*Column
	index map[string]int
}

// New creates an empty frame with the given row count.
func New(rows int) *Frame {
	return &Frame{rows: rows, index: make(map[string]int)}
}

func (f *Frame) Rows() int { return f.rows }

// Names returns column names in frame order.
func (f *Frame) Names() []string {
	out := make([]string, len(f.cols))
	for i, c := range f.cols {
		out[i] = c.name
	}
	return out
}

func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns the named column or nil.
func (f *Frame) Column(name string) *Column {
	if i, ok := f.index[name]; ok {
		return f.cols[i]
	}
	return nil
}

// SetColumn adds a column, replacing an existing one of the same name in
// place so column order stays stable. Panics on a row-count mismatch;
// that is a programming error, not a data error.
func (f *Frame) SetColumn(c *Column) {
	if c.Len() != f.rows {
		panic(fmt.Sprintf("frame: column %q has %d rows, frame has %d", c.name, c.Len(), f.rows))
	}
	if i, ok := f.index[c.name]; ok {
		f.cols[i] = c
		return
	}
	f.index[c.name] = len(f.cols)
	f.cols = append(f.cols, c)
}

// Drop removes the named columns; unknown names are ignored.
func (f *Frame) Drop(names ...string) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	kept := f.cols[:0]
	for _, c := range f.cols {
		if !drop[c.name] {
			kept = append(kept, c)
		}
	}
	f.cols = kept
	f.index = make(map[string]int, len(f.cols))
	for i, c := range f.cols {
		f.index[c.name] = i
	}
}

// Select returns a new frame holding the named columns in the given
// order. Columns are shared, not copied. Unknown names are skipped.
func (f *Frame) Select(names []string) *Frame {
	out := New(f.rows)
	for _, n := range names {
		if c := f.Column(n); c != nil {
			out.SetColumn(c)
		}
	}
	return out
}

// ModelColumns returns the names of all model-input columns (Float, Int
// and Bool kinds) in frame order.
func (f *Frame) ModelColumns() []string {
	var out []string
	for _, c := range f.cols {
		if c.kind.Model() {
			out = append(out, c.name)
		}
	}
	return out
}

// Matrix materializes the named columns as a dense row-major matrix.
// Nulls become 0. Returns an error if a column is missing or not
// numeric-capable.
func (f *Frame) Matrix(names []string) ([][]float64, error) {
	cols := make([]*Column, len(names))
	for i, n := range names {
		c := f.Column(n)
		if c == nil {
			return nil, fmt.Errorf("frame: missing column %q", n)
		}
		if !c.kind.Model() {
			return nil, fmt.Errorf("frame: column %q has non-numeric kind %s", n, c.kind)
		}
		cols[i] = c
	}
	out := make([][]float64, f.rows)
	for i := 0; i < f.rows; i++ {
		row := make([]float64, len(cols))
		for j, c := range cols {
			if v, ok := c.NumberAt(i); ok {
				row[j] = v
			}
		}
		out[i] = row
	}
	return out, nil
}

// Numbers extracts one column as a numeric vector with nulls as 0.
func (f *Frame) Numbers(name string) ([]float64, error) {
	c := f.Column(name)
	if c == nil {
		return nil, fmt.Errorf("frame: missing column %q", name)
	}
	out := make([]float64, f.rows)
	for i := 0; i < f.rows; i++ {
		if v, ok := c.NumberAt(i); ok {
			out[i] = v
		}
	}
	return out, nil
}
