package cleaning

import (
	"fmt"

	"insurisk/adapters/datareadiness/coercer"
	"insurisk/domain/core"
	"insurisk/domain/dataset"
	"insurisk/internal"
)

// Pipeline turns a raw dataset into a model-ready one by running four fixed
// stages once, in order: type coercion, anomaly filtering, feature derivation,
// missing-value handling.
type Pipeline struct {
	schema  Schema
	coercer *coercer.TypeCoercer
	logger  *internal.Logger
}

// Summary describes one Clean run
type Summary struct {
	RowsIn     int
	RowsOut    int
	ColumnsIn  int
	ColumnsOut int
	Plan       Plan
	Stages     []StageStats
}

// RowsDropped returns the number of rows removed by anomaly filtering
func (s *Summary) RowsDropped() int {
	return s.RowsIn - s.RowsOut
}

// Stage returns the stats of the named stage
func (s *Summary) Stage(name StageName) (StageStats, bool) {
	for _, st := range s.Stages {
		if st.Stage == name {
			return st, true
		}
	}
	return StageStats{}, false
}

// NewPipeline creates a pipeline for the given schema. A nil logger uses internal.DefaultLogger.
func NewPipeline(schema Schema, c *coercer.TypeCoercer, logger *internal.Logger) *Pipeline {
	if c == nil {
		c = coercer.NewDefaultCoercer()
	}
	return &Pipeline{schema: schema, coercer: c, logger: logger.OrDefault().With("cleaning")}
}

// NewDefaultPipeline creates a pipeline over DefaultSchema
func NewDefaultPipeline(logger *internal.Logger) *Pipeline {
	return NewPipeline(DefaultSchema(), nil, logger)
}

// Stages returns the fixed stage order
func (p *Pipeline) Stages() []Stage {
	return []Stage{
		coerceWith(p.coercer),
		FilterAnomalies,
		DeriveFeatures,
		HandleMissing,
	}
}

// Clean runs every stage once and returns a new dataset; ds is never modified.
// The only error is a Required schema column missing from ds.
func (p *Pipeline) Clean(ds *dataset.Dataset) (*dataset.Dataset, *Summary, error) {
	if ds == nil {
		return nil, nil, fmt.Errorf("%w: nil dataset", core.ErrEmptyDataset)
	}

	plan, err := p.schema.Check(ds)
	if err != nil {
		p.logger.Error("schema check failed: %v", err)
		return nil, nil, err
	}
	p.logPlan(plan)

	summary := &Summary{RowsIn: ds.Len(), ColumnsIn: ds.Width(), Plan: plan}

	current := ds
	for _, stage := range p.Stages() {
		next, st := stage(current, plan)
		summary.Stages = append(summary.Stages, st)
		p.logStage(st)
		current = next
	}

	summary.RowsOut = current.Len()
	summary.ColumnsOut = current.Width()
	p.logger.Info("cleaning complete: %d -> %d rows, %d -> %d columns",
		summary.RowsIn, summary.RowsOut, summary.ColumnsIn, summary.ColumnsOut)

	return current, summary, nil
}

func (p *Pipeline) logPlan(plan Plan) {
	for _, name := range plan.Absent {
		p.logger.Debug("column %q not present, skipping coercion", name)
	}
	if !plan.DeriveFeatures {
		p.logger.Warn("feature derivation skipped: requires both %q and %q columns",
			dataset.ColRegistrationYear, dataset.ColTransactionMonth)
	}
}

func (p *Pipeline) logStage(st StageStats) {
	switch st.Stage {
	case StageCoerceTypes:
		for _, col := range sortedKeys(st.Invalidated) {
			p.logger.Info("coerce_types: %d value(s) in %q could not be converted and are now missing", st.Invalidated[col], col)
		}
	case StageFilterAnomalies:
		p.logger.Info("filter_anomalies: dropped %d row(s) (%d non-positive premium, %d non-positive claims)",
			st.RowsIn-st.RowsOut, st.NonPositivePremium, st.NonPositiveClaims)
	case StageDeriveFeatures:
		if !st.Skipped {
			p.logger.Info("derive_features: %d vehicle age(s) outside [%d, %d] reset to 0",
				st.VehicleAgeResets, MinVehicleAge, MaxVehicleAge)
		}
	case StageHandleMissing:
		for _, col := range st.DroppedColumns {
			p.logger.Warn("handle_missing: dropped column %q (more than %.0f%% missing)", col, MaxMissingRatio*100)
		}
		for _, col := range sortedKeys(st.Filled) {
			p.logger.Debug("handle_missing: filled %d cell(s) in %q with %s", st.Filled[col], col, st.FillValues[col])
		}
	}
}
