package excel

import (
	"encoding/csv"
	"io"

	"insurisk/domain/dataset"
)

// WriteDataset writes ds as delimited text with a header row.
// Missing cells are written empty.
func WriteDataset(w io.Writer, ds *dataset.Dataset, delimiter rune) error {
	cw := csv.NewWriter(w)
	if delimiter != 0 {
		cw.Comma = delimiter
	}

	names := ds.ColumnNames()
	if err := cw.Write(names); err != nil {
		return err
	}

	record := make([]string, len(names))
	for i := 0; i < ds.Len(); i++ {
		for j, name := range names {
			record[j] = ds.Value(i, name).String()
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
