package hypothesis

import (
	"fmt"
	"sort"

	"insurisk/adapters/datareadiness/coercer"
	"insurisk/domain/core"
	"insurisk/domain/dataset"
	"insurisk/domain/stats"
	"insurisk/internal"
	"insurisk/internal/analysis/significance"
)

// Engine runs segment comparisons over its own derived copy of a dataset.
// The caller's dataset is cloned once at construction and never touched again.
type Engine struct {
	data   *dataset.Dataset
	logger *internal.Logger
}

// NewEngine derives Claimed, Margin and LossRatio on a private copy of ds.
// TotalPremium and TotalClaims are coerced to numbers with missing read as 0,
// whether or not the data was cleaned first. A nil logger uses internal.DefaultLogger.
func NewEngine(ds *dataset.Dataset, logger *internal.Logger) *Engine {
	e := &Engine{logger: logger.OrDefault().With("hypothesis")}
	if ds == nil {
		ds = dataset.New(0)
	}
	e.data = e.derive(ds.Clone())
	return e
}

func (e *Engine) derive(ds *dataset.Dataset) *dataset.Dataset {
	c := coercer.NewDefaultCoercer()
	n := ds.Len()

	amounts := func(name string) ([]float64, bool) {
		col, ok := ds.Column(name)
		if !ok {
			e.logger.Warn("column %q not found: metrics depending on it are unavailable", name)
			return nil, false
		}
		out := make([]float64, n)
		values := make([]dataset.Value, n)
		for i, v := range col.Values {
			if num := c.ToNumeric(v); num.IsNumeric() {
				out[i] = num.Num
			}
			values[i] = dataset.NewNumericValue(out[i])
		}
		_ = ds.AddColumn(&dataset.Column{Name: name, Type: dataset.ValueTypeNumeric, Values: values})
		return out, true
	}

	premium, hasPremium := amounts(dataset.ColTotalPremium)
	claims, hasClaims := amounts(dataset.ColTotalClaims)

	if hasClaims {
		claimed := make([]dataset.Value, n)
		for i, v := range claims {
			claimed[i] = dataset.NewBooleanValue(v > 0)
		}
		_ = ds.AddColumn(&dataset.Column{Name: dataset.ColClaimed, Type: dataset.ValueTypeBoolean, Values: claimed})
	}

	if hasPremium && hasClaims {
		margin := make([]dataset.Value, n)
		lossRatio := make([]dataset.Value, n)
		for i := 0; i < n; i++ {
			margin[i] = dataset.NewNumericValue(premium[i] - claims[i])
			lossRatio[i] = dataset.NewNumericValue(LossRatio(claims[i], premium[i]))
		}
		_ = ds.AddColumn(&dataset.Column{Name: dataset.ColMargin, Type: dataset.ValueTypeNumeric, Values: margin})
		_ = ds.AddColumn(&dataset.Column{Name: dataset.ColLossRatio, Type: dataset.ValueTypeNumeric, Values: lossRatio})
	}

	return ds
}

// LossRatio is claims over premium, 0 when premium is not positive
func LossRatio(claims, premium float64) float64 {
	if premium <= 0 {
		return 0
	}
	return claims / premium
}

// Data returns a copy of the engine's derived dataset
func (e *Engine) Data() *dataset.Dataset {
	return e.data.Clone()
}

// TestRiskByGroup compares claim frequency (chi-squared on group x Claimed)
// and the mean of metric across the values of group. Groups with
// stats.MinGroupSize or fewer metric observations are left out of the
// magnitude test.
//
// When the magnitude step has fewer than two groups left, the result still
// carries the frequency outcome and the error wraps core.ErrInsufficientData.
func (e *Engine) TestRiskByGroup(group, metric string) (*stats.GroupRiskResult, error) {
	testName := fmt.Sprintf("risk by %s", group)

	keys, err := e.groupKeys(group)
	if err != nil {
		e.logger.Warn("%s: %v", testName, err)
		return nil, err
	}
	metricValues, err := e.metricValues(metric)
	if err != nil {
		e.logger.Warn("%s: %v", testName, err)
		return nil, err
	}
	claimed, err := e.claimedFlags()
	if err != nil {
		e.logger.Warn("%s: %v", testName, err)
		return nil, err
	}

	result := &stats.GroupRiskResult{
		GroupColumn:  group,
		MetricColumn: metric,
		Groups:       distinct(keys),
	}

	if len(result.Groups) < 2 {
		reason := fmt.Sprintf("column %q has %d distinct value(s), need at least 2", group, len(result.Groups))
		result.Frequency = stats.InsufficientOutcome(stats.MethodChiSquare, reason)
		result.Magnitude = stats.InsufficientOutcome(stats.MethodNone, reason)
		e.logger.Warn("%s: %s", testName, reason)
		return result, core.NewInsufficientDataError(testName, reason)
	}

	var tableGroups []string
	var tableFlags []bool
	for i, k := range keys {
		if k != "" {
			tableGroups = append(tableGroups, k)
			tableFlags = append(tableFlags, claimed[i])
		}
	}
	result.Frequency = significance.ChiSquareIndependence(significance.CrossTab(tableGroups, tableFlags), true)

	samples := collect(keys, metricValues)
	var tested [][]float64
	for _, name := range result.Groups {
		if len(samples[name]) > stats.MinGroupSize {
			result.TestedGroups = append(result.TestedGroups, name)
			tested = append(tested, samples[name])
		}
	}

	if len(tested) < 2 {
		reason := fmt.Sprintf("%d group(s) in %q have more than %d observations of %q, need at least 2",
			len(tested), group, stats.MinGroupSize, metric)
		result.Magnitude = stats.InsufficientOutcome(stats.MethodNone, reason)
		e.logger.Warn("%s: %s", testName, reason)
		return result, core.NewInsufficientDataError(testName, reason)
	}

	result.Magnitude = significance.CompareMagnitude(tested)
	e.logger.Debug("%s: frequency p=%.5f, %s p=%.5f over %d groups", testName,
		result.Frequency.PValue, result.Magnitude.Method, result.Magnitude.PValue, len(tested))
	return result, nil
}

// groupKeys returns each row's group label, "" where the cell is missing
func (e *Engine) groupKeys(column string) ([]string, error) {
	col, ok := e.data.Column(column)
	if !ok {
		return nil, core.NewColumnNotFoundError(column)
	}
	if col.Type == dataset.ValueTypeTimestamp {
		return nil, core.NewUnusableColumnError(column, "timestamps cannot be used as segments")
	}
	keys := make([]string, len(col.Values))
	for i, v := range col.Values {
		keys[i] = v.String()
	}
	return keys, nil
}

// metricValues returns each row's metric, with ok false where it is not a number
func (e *Engine) metricValues(column string) ([]optionalFloat, error) {
	col, ok := e.data.Column(column)
	if !ok {
		return nil, core.NewColumnNotFoundError(column)
	}
	if col.Type != dataset.ValueTypeNumeric && col.Type != dataset.ValueTypeBoolean {
		return nil, core.NewUnusableColumnError(column, fmt.Sprintf("metric must be numeric, column is %s", col.Type))
	}
	out := make([]optionalFloat, len(col.Values))
	for i, v := range col.Values {
		out[i].value, out[i].ok = v.Float()
	}
	return out, nil
}

func (e *Engine) claimedFlags() ([]bool, error) {
	col, ok := e.data.Column(dataset.ColClaimed)
	if !ok {
		return nil, core.NewColumnNotFoundError(dataset.ColTotalClaims)
	}
	flags := make([]bool, len(col.Values))
	for i, v := range col.Values {
		flags[i] = v.Bool
	}
	return flags, nil
}

type optionalFloat struct {
	value float64
	ok    bool
}

// collect groups present metric values by key, skipping rows without a key
func collect(keys []string, values []optionalFloat) map[string][]float64 {
	out := make(map[string][]float64)
	for i, k := range keys {
		if k == "" || !values[i].ok {
			continue
		}
		out[k] = append(out[k], values[i].value)
	}
	return out
}

// distinct returns the sorted non-empty keys
func distinct(keys []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, k := range keys {
		if k != "" && !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
