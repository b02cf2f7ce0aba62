package excel

import (
	"insurisk/adapters/datareadiness/coercer"
)

// ReaderOptions holds configuration for a tabular data source
type ReaderOptions struct {
	Delimiter      rune                   `json:"delimiter"`  // delimited text only
	Sheet          string                 `json:"sheet"`      // xlsx only
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
}

// DefaultReaderOptions matches the pipe-delimited insurance extracts
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{
		Delimiter:      '|',
		Sheet:          "Sheet1",
		CoercionConfig: coercer.DefaultCoercionConfig(),
	}
}
