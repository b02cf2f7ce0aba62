package cleaning

import (
	"sort"

	"insurisk/domain/dataset"
)

// ColumnMissing is one row of the missing-value report
type ColumnMissing struct {
	Column  string
	Missing int
	Percent float64
}

// MissingValueReport returns the percentage (0-100) of missing cells per column.
// An empty dataset reports 0 for every column.
func MissingValueReport(ds *dataset.Dataset) map[string]float64 {
	report := make(map[string]float64, ds.Width())
	for _, m := range SortedMissingReport(ds) {
		report[m.Column] = m.Percent
	}
	return report
}

// SortedMissingReport lists every column, most-missing first, ties by name
func SortedMissingReport(ds *dataset.Dataset) []ColumnMissing {
	rows := make([]ColumnMissing, 0, ds.Width())
	for _, col := range ds.Columns() {
		m := ColumnMissing{Column: col.Name, Missing: col.MissingCount()}
		if ds.Len() > 0 {
			m.Percent = float64(m.Missing) / float64(ds.Len()) * 100
		}
		rows = append(rows, m)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Percent != rows[j].Percent {
			return rows[i].Percent > rows[j].Percent
		}
		return rows[i].Column < rows[j].Column
	})
	return rows
}
