package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"insurisk/adapters/datareadiness/coercer"
	"insurisk/domain/core"
	"insurisk/domain/dataset"
	"insurisk/internal"
	apperrors "insurisk/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and delimited text files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "delimited"
	options  ReaderOptions
	coercer  *coercer.TypeCoercer
	logger   *internal.Logger
}

// NewDataReader creates a reader for filePath; the extension picks the format
func NewDataReader(filePath string, options ReaderOptions, logger *internal.Logger) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "delimited"
	if ext == ".xlsx" || ext == ".xlsm" {
		fileType = "xlsx"
	}
	if options.Delimiter == 0 {
		options.Delimiter = DefaultReaderOptions().Delimiter
	}
	if options.Sheet == "" {
		options.Sheet = DefaultReaderOptions().Sheet
	}
	if options.CoercionConfig.MissingTokens == nil {
		options.CoercionConfig = coercer.DefaultCoercionConfig()
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		options:  options,
		coercer:  coercer.NewTypeCoercer(options.CoercionConfig),
		logger:   logger.OrDefault().With("loader"),
	}
}

// ReadDataset loads the file into a raw dataset. Columns whose present cells
// all parse as numbers are numeric, everything else is text.
func (r *DataReader) ReadDataset(ctx context.Context) (*dataset.Dataset, error) {
	r.logger.Debug("starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, apperrors.NotFound(fmt.Sprintf("data file %s", r.filePath))
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		rows, err = r.readDelimitedRows()
	}
	if err != nil {
		return nil, apperrors.LoadFailed(r.filePath, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds, err := r.processRows(rows)
	if err != nil {
		return nil, apperrors.LoadFailed(r.filePath, err)
	}
	r.logger.Info("loaded %s: %d rows, %d columns", filepath.Base(r.filePath), ds.Len(), ds.Width())
	return ds, nil
}

// readExcelRows reads the configured sheet
func (r *DataReader) readExcelRows() ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.options.Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.options.Sheet, err)
	}
	r.logger.Debug("%s read in %.2fms (%d rows)", r.options.Sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// readDelimitedRows reads text separated by the configured delimiter
func (r *DataReader) readDelimitedRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer file.Close()

	startTime := time.Now()
	reader := csv.NewReader(file)
	reader.Comma = r.options.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read delimited file: %w", err)
	}
	r.logger.Debug("delimited file read in %.2fms (%d rows)", float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// processRows converts raw rows (header first) into a typed dataset
func (r *DataReader) processRows(rows [][]string) (*dataset.Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: file has no header row", core.ErrEmptyDataset)
	}

	headers := make([]string, len(rows[0]))
	seen := make(map[string]bool, len(headers))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if headers[i] == "" {
			headers[i] = fmt.Sprintf("column_%d", i+1)
		}
		if seen[headers[i]] {
			return nil, fmt.Errorf("%w: %q", core.ErrDuplicateName, headers[i])
		}
		seen[headers[i]] = true
	}

	var data [][]string
	for _, row := range rows[1:] {
		if !blank(row) {
			data = append(data, row)
		}
	}

	ds := dataset.New(len(data))
	for j, name := range headers {
		values := make([]dataset.Value, len(data))
		for i, row := range data {
			if j < len(row) {
				values[i] = r.coercer.ParseCell(row[j])
			}
		}

		colType := r.coercer.InferColumnType(values)
		if colType == dataset.ValueTypeNumeric {
			for i, v := range values {
				values[i] = r.coercer.ToNumeric(v)
			}
		}
		if err := ds.AddColumn(&dataset.Column{Name: name, Type: colType, Values: values}); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
