package ports

import (
	"context"

	"insurisk/domain/dataset"
)

// DatasetReader loads a raw, fully materialized dataset
type DatasetReader interface {
	ReadDataset(ctx context.Context) (*dataset.Dataset, error)
}
