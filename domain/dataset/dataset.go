package dataset

import (
	"insurisk/domain/core"
)

// Column is a named, typed sequence of cells
type Column struct {
	Name   string
	Type   ValueType
	Values []Value
}

// MissingCount returns the number of missing cells
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.Values {
		if v.IsMissing() {
			n++
		}
	}
	return n
}

func (c *Column) clone() *Column {
	values := make([]Value, len(c.Values))
	copy(values, c.Values)
	return &Column{Name: c.Name, Type: c.Type, Values: values}
}

// Record is one row viewed as column name -> value
type Record map[string]Value

// Dataset is an ordered, fully materialized batch of records stored column-wise.
// Column order is preserved. Operations that change shape return a new Dataset;
// the receiver is never mutated by them.
type Dataset struct {
	rows    int
	columns []*Column
	index   map[string]int
}

// New creates an empty dataset with the given row count
func New(rows int) *Dataset {
	return &Dataset{rows: rows, index: make(map[string]int)}
}

// FromColumns builds a dataset from columns that must all have equal length
func FromColumns(columns ...*Column) (*Dataset, error) {
	rows := 0
	if len(columns) > 0 {
		rows = len(columns[0].Values)
	}
	ds := New(rows)
	for _, c := range columns {
		if err := ds.AddColumn(c); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return d.rows
}

// Width returns the number of columns
func (d *Dataset) Width() int {
	return len(d.columns)
}

// ColumnNames returns the column names in schema order
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

// Columns returns the columns in schema order. Callers must not mutate them.
func (d *Dataset) Columns() []*Column {
	return d.columns
}

// Has reports whether a column exists
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column looks up a column by name
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.columns[i], true
}

// AddColumn appends a column, or replaces an existing column of the same name in place
func (d *Dataset) AddColumn(c *Column) error {
	if len(c.Values) != d.rows {
		return core.NewLengthMismatchError(c.Name, len(c.Values), d.rows)
	}
	if i, ok := d.index[c.Name]; ok {
		d.columns[i] = c
		return nil
	}
	d.index[c.Name] = len(d.columns)
	d.columns = append(d.columns, c)
	return nil
}

// Value returns the cell at (row, column); missing if the column is absent
func (d *Dataset) Value(row int, column string) Value {
	c, ok := d.Column(column)
	if !ok || row < 0 || row >= d.rows {
		return NewMissingValue()
	}
	return c.Values[row]
}

// Row returns one record
func (d *Dataset) Row(i int) Record {
	rec := make(Record, len(d.columns))
	for _, c := range d.columns {
		rec[c.Name] = c.Values[i]
	}
	return rec
}

// Clone returns a deep copy
func (d *Dataset) Clone() *Dataset {
	out := New(d.rows)
	for _, c := range d.columns {
		out.index[c.Name] = len(out.columns)
		out.columns = append(out.columns, c.clone())
	}
	return out
}

// Filter returns a new dataset holding only the rows for which keep returns true
func (d *Dataset) Filter(keep func(row int) bool) *Dataset {
	kept := make([]int, 0, d.rows)
	for i := 0; i < d.rows; i++ {
		if keep(i) {
			kept = append(kept, i)
		}
	}

	out := New(len(kept))
	for _, c := range d.columns {
		values := make([]Value, len(kept))
		for j, i := range kept {
			values[j] = c.Values[i]
		}
		out.index[c.Name] = len(out.columns)
		out.columns = append(out.columns, &Column{Name: c.Name, Type: c.Type, Values: values})
	}
	return out
}

// Drop returns a deep copy without the named columns. Unknown names are ignored.
func (d *Dataset) Drop(names ...string) *Dataset {
	skip := make(map[string]bool, len(names))
	for _, n := range names {
		skip[n] = true
	}

	out := New(d.rows)
	for _, c := range d.columns {
		if skip[c.Name] {
			continue
		}
		out.index[c.Name] = len(out.columns)
		out.columns = append(out.columns, c.clone())
	}
	return out
}

// Equal reports whether two datasets have the same schema and cells
func (d *Dataset) Equal(o *Dataset) bool {
	if d.rows != o.rows || len(d.columns) != len(o.columns) {
		return false
	}
	for i, c := range d.columns {
		oc := o.columns[i]
		if c.Name != oc.Name || c.Type != oc.Type {
			return false
		}
		for r := range c.Values {
			if !c.Values[r].Equal(oc.Values[r]) {
				return false
			}
		}
	}
	return true
}
