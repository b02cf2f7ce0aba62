package excel

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"insurisk/domain/dataset"
	"insurisk/internal"
	apperrors "insurisk/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func quietLogger() *internal.Logger {
	return internal.NewLoggerTo(&bytes.Buffer{}, internal.LogLevelError)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadDataset_PipeDelimited(t *testing.T) {
	path := writeFile(t, "MachineLearningRating_v3.txt",
		"UnderwrittenCoverID|TransactionMonth|Province|PostalCode|TotalPremium|TotalClaims|Gender\n"+
			"145249|2015-03-01 00:00:00|Gauteng|1459|21.929824561403|0|Not specified\n"+
			"145249|2015-05-01 00:00:00|Gauteng|1459|NA|0|\n"+
			"145255|2015-07-01 00:00:00|KwaZulu-Natal|4093|512.848070175438|0\n"+
			"\n")

	ds, err := NewDataReader(path, DefaultReaderOptions(), quietLogger()).ReadDataset(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Len(), "blank lines are skipped")
	assert.Equal(t, 7, ds.Width())

	premium, ok := ds.Column(dataset.ColTotalPremium)
	require.True(t, ok)
	assert.Equal(t, dataset.ValueTypeNumeric, premium.Type)
	assert.True(t, premium.Values[1].IsMissing(), "NA token is missing")

	postal, _ := ds.Column(dataset.ColPostalCode)
	assert.Equal(t, dataset.ValueTypeNumeric, postal.Type)
	assert.Equal(t, "1459", ds.Value(0, dataset.ColPostalCode).String())

	month, _ := ds.Column(dataset.ColTransactionMonth)
	assert.Equal(t, dataset.ValueTypeString, month.Type, "dates are left to the cleaning pipeline")

	assert.True(t, ds.Value(1, dataset.ColGender).IsMissing())
	assert.True(t, ds.Value(2, dataset.ColGender).IsMissing(), "short rows are padded")
}

func TestReadDataset_CommaDelimited(t *testing.T) {
	path := writeFile(t, "data.csv", "Province,TotalClaims\nGauteng,10\n\"Western Cape\",abc\n")

	options := DefaultReaderOptions()
	options.Delimiter = ','
	ds, err := NewDataReader(path, options, quietLogger()).ReadDataset(context.Background())
	require.NoError(t, err)

	claims, _ := ds.Column(dataset.ColTotalClaims)
	assert.Equal(t, dataset.ValueTypeString, claims.Type, "one text cell keeps the column textual")
	assert.Equal(t, "Western Cape", ds.Value(1, dataset.ColProvince).Str)
}

func TestReadDataset_Excel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policies.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Province", "TotalPremium"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Gauteng", 120.5}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"Limpopo", 80}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	ds, err := NewDataReader(path, ReaderOptions{}, quietLogger()).ReadDataset(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, 120.5, ds.Value(0, dataset.ColTotalPremium).Num)
	assert.Equal(t, "Limpopo", ds.Value(1, dataset.ColProvince).Str)
}

func TestReadDataset_Errors(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.txt"), DefaultReaderOptions(), quietLogger()).
		ReadDataset(context.Background())
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))

	dup := writeFile(t, "dup.txt", "a|a\n1|2\n")
	_, err = NewDataReader(dup, DefaultReaderOptions(), quietLogger()).ReadDataset(context.Background())
	assert.Equal(t, apperrors.CodeLoadFailed, apperrors.GetCode(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok := writeFile(t, "ok.txt", "a\n1\n")
	_, err = NewDataReader(ok, DefaultReaderOptions(), quietLogger()).ReadDataset(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteDataset(t *testing.T) {
	ds, err := dataset.FromColumns(
		&dataset.Column{Name: "Province", Type: dataset.ValueTypeString, Values: []dataset.Value{
			dataset.NewStringValue("Gauteng"), dataset.NewMissingValue(),
		}},
		&dataset.Column{Name: "VehicleAge", Type: dataset.ValueTypeNumeric, Values: []dataset.Value{
			dataset.NewNumericValue(5), dataset.NewNumericValue(0.5),
		}},
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteDataset(&buf, ds, '|'))
	assert.Equal(t, "Province|VehicleAge\nGauteng|5\n|0.5\n", buf.String())
}
