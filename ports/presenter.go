package ports

import (
	"io"

	"insurisk/domain/stats"
)

// Presenter renders hypothesis results for people
type Presenter interface {
	Present(w io.Writer, results []stats.TestResult) error
}
