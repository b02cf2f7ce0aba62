package report

import (
	"fmt"

	"insurisk/domain/stats"
	"insurisk/internal/config"
	apperrors "insurisk/internal/errors"
	"insurisk/ports"
)

// Presenter renders hypothesis results. Computation never depends on it.
type Presenter = ports.Presenter

// New returns the presenter for a configured report format
func New(format string) (Presenter, error) {
	switch format {
	case config.FormatText, "":
		return NewTextPresenter(), nil
	case config.FormatMarkdown:
		return &MarkdownPresenter{}, nil
	case config.FormatHTML:
		return &HTMLPresenter{Title: "Insurance risk hypotheses"}, nil
	}
	return nil, apperrors.InvalidInput(fmt.Sprintf("unknown report format %q", format))
}

// FormatPValue renders a p-value to 5 decimals, or n/a when none was computed
func FormatPValue(r stats.TestResult) string {
	if !r.HasPValue() {
		return "n/a"
	}
	return fmt.Sprintf("%.5f", r.PValue)
}
