package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"insurisk/domain/core"
	"insurisk/domain/dataset"
	"insurisk/domain/stats"
	"insurisk/internal"
	"insurisk/internal/cleaning"
	apperrors "insurisk/internal/errors"
	"insurisk/internal/hypothesis"
	"insurisk/ports"
)

// RiskAnalysisService orchestrates load -> clean -> test -> present -> archive
type RiskAnalysisService struct {
	reader     ports.DatasetReader
	pipeline   *cleaning.Pipeline
	presenter  ports.Presenter
	repository ports.ResultRepository // optional
	logger     *internal.Logger
}

// AnalysisRun contains one batch of hypothesis results with its audit trail
type AnalysisRun struct {
	RunID     core.RunID
	StartedAt time.Time
	Cleaning  *cleaning.Summary // nil when the raw data was tested
	Results   []stats.TestResult
	Archived  bool
	RuntimeMs int64
}

// NewRiskAnalysisService creates the service. repository may be nil.
func NewRiskAnalysisService(reader ports.DatasetReader, pipeline *cleaning.Pipeline, presenter ports.Presenter, repository ports.ResultRepository, logger *internal.Logger) *RiskAnalysisService {
	logger = logger.OrDefault()
	if pipeline == nil {
		pipeline = cleaning.NewDefaultPipeline(logger)
	}
	return &RiskAnalysisService{
		reader:     reader,
		pipeline:   pipeline,
		presenter:  presenter,
		repository: repository,
		logger:     logger.With("app"),
	}
}

// Load reads the raw dataset
func (s *RiskAnalysisService) Load(ctx context.Context) (*dataset.Dataset, error) {
	ds, err := s.reader.ReadDataset(ctx)
	if err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, apperrors.InvalidInput("dataset has no rows")
	}
	return ds, nil
}

// Clean loads and cleans the dataset
func (s *RiskAnalysisService) Clean(ctx context.Context) (*dataset.Dataset, *cleaning.Summary, error) {
	raw, err := s.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	cleaned, summary, err := s.pipeline.Clean(raw)
	if err != nil {
		return nil, nil, apperrors.WithCode(apperrors.CodeInvalidInput, err)
	}
	return cleaned, summary, nil
}

// MissingReport loads the raw dataset and reports missing shares per column
func (s *RiskAnalysisService) MissingReport(ctx context.Context) ([]cleaning.ColumnMissing, error) {
	raw, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return cleaning.SortedMissingReport(raw), nil
}

// RunHypotheses runs H1 to H4, optionally on cleaned data, and archives the
// results when a repository is configured. A failed hypothesis is part of the
// run, not an error.
func (s *RiskAnalysisService) RunHypotheses(ctx context.Context, clean bool) (*AnalysisRun, error) {
	run := &AnalysisRun{RunID: core.NewRunID(), StartedAt: time.Now().UTC()}

	engine, summary, err := s.engine(ctx, clean)
	if err != nil {
		return nil, err
	}
	run.Cleaning = summary

	run.Results = engine.RunAll()
	for i := range run.Results {
		run.Results[i].RunID = run.RunID
	}

	if s.repository != nil {
		if err := s.repository.SaveRun(ctx, run.RunID, run.Results); err != nil {
			return run, apperrors.Wrap(err, "failed to archive run")
		}
		run.Archived = true
	}

	run.RuntimeMs = time.Since(run.StartedAt).Milliseconds()
	s.logger.Info("run %s: %d hypotheses in %dms (archived=%t)", run.RunID, len(run.Results), run.RuntimeMs, run.Archived)
	return run, nil
}

// TestGroup runs the generic group-risk test. An insufficient-data error
// still comes with whatever part of the result could be computed.
func (s *RiskAnalysisService) TestGroup(ctx context.Context, group, metric string, clean bool) (*stats.GroupRiskResult, error) {
	engine, _, err := s.engine(ctx, clean)
	if err != nil {
		return nil, err
	}
	result, err := engine.TestRiskByGroup(group, metric)
	if core.IsConfigurationError(err) {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, err)
	}
	return result, err
}

// Segments summarizes portfolio metrics per value of column
func (s *RiskAnalysisService) Segments(ctx context.Context, column string, clean bool) ([]hypothesis.SegmentSummary, error) {
	engine, _, err := s.engine(ctx, clean)
	if err != nil {
		return nil, err
	}
	summaries, err := engine.SummarizeBy(column)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, err)
	}
	return summaries, nil
}

// Present renders a run with the configured presenter
func (s *RiskAnalysisService) Present(w io.Writer, run *AnalysisRun) error {
	if s.presenter == nil {
		return apperrors.New(apperrors.CodeInternalError, "no presenter configured")
	}
	if err := s.presenter.Present(w, run.Results); err != nil {
		return apperrors.RenderFailed(fmt.Sprintf("%T", s.presenter), err)
	}
	return nil
}

func (s *RiskAnalysisService) engine(ctx context.Context, clean bool) (*hypothesis.Engine, *cleaning.Summary, error) {
	var ds *dataset.Dataset
	var summary *cleaning.Summary
	var err error
	if clean {
		ds, summary, err = s.Clean(ctx)
	} else {
		ds, err = s.Load(ctx)
	}
	if err != nil {
		return nil, nil, err
	}
	return hypothesis.NewEngine(ds, s.logger), summary, nil
}
