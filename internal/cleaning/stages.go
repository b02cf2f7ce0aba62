package cleaning

import (
	"sort"
	"time"

	"insurisk/adapters/datareadiness/coercer"
	"insurisk/domain/dataset"

	"github.com/montanaflynn/stats"
)

// Cleaning constants
const (
	MaxMissingRatio    = 0.5 // columns missing in more than this share of rows are dropped
	MinVehicleAge      = 0
	MaxVehicleAge      = 50
	UnknownCategory    = "Unknown"
	vehicleAgeFallback = 0
)

// StageName identifies a pipeline stage
type StageName string

const (
	StageCoerceTypes     StageName = "coerce_types"
	StageFilterAnomalies StageName = "filter_anomalies"
	StageDeriveFeatures  StageName = "derive_features"
	StageHandleMissing   StageName = "handle_missing"
)

// StageStats records what one stage did
type StageStats struct {
	Stage   StageName
	RowsIn  int
	RowsOut int
	Skipped bool

	// coerce_types: cells present before and missing after conversion, per column
	Invalidated map[string]int

	// filter_anomalies: rows failing each check (a row failing both counts twice)
	NonPositivePremium int
	NonPositiveClaims  int

	// derive_features
	VehicleAgeResets int

	// handle_missing
	DroppedColumns []string
	Filled         map[string]int
	FillValues     map[string]string
}

// Stage is a pure transformation: it never mutates its input
type Stage func(ds *dataset.Dataset, plan Plan) (*dataset.Dataset, StageStats)

// CoerceTypes is stage 1: convert recognized columns to their target type.
// Unconvertible cells become missing.
func CoerceTypes(ds *dataset.Dataset, plan Plan) (*dataset.Dataset, StageStats) {
	return coerceWith(coercer.NewDefaultCoercer())(ds, plan)
}

func coerceWith(c *coercer.TypeCoercer) Stage {
	return func(ds *dataset.Dataset, plan Plan) (*dataset.Dataset, StageStats) {
		st := StageStats{Stage: StageCoerceTypes, RowsIn: ds.Len(), Invalidated: map[string]int{}}
		out := ds.Clone()

		for _, target := range plan.Coerce {
			col, ok := out.Column(target.Name)
			if !ok {
				continue
			}
			values := make([]dataset.Value, len(col.Values))
			lost := 0
			for i, v := range col.Values {
				values[i] = c.Coerce(v, target.Type)
				if !v.IsMissing() && values[i].IsMissing() {
					lost++
				}
			}
			if lost > 0 {
				st.Invalidated[target.Name] = lost
			}
			// Column exists with the dataset's row count, so AddColumn cannot fail
			_ = out.AddColumn(&dataset.Column{Name: target.Name, Type: target.Type, Values: values})
		}

		st.RowsOut = out.Len()
		return out, st
	}
}

// FilterAnomalies is stage 2: drop rows whose premium or claims is present and not positive
func FilterAnomalies(ds *dataset.Dataset, plan Plan) (*dataset.Dataset, StageStats) {
	st := StageStats{Stage: StageFilterAnomalies, RowsIn: ds.Len()}

	nonPositive := func(column string, enabled bool, row int) bool {
		if !enabled {
			return false
		}
		n, ok := ds.Value(row, column).Float()
		return ok && n <= 0
	}

	out := ds.Filter(func(row int) bool {
		badPremium := nonPositive(dataset.ColTotalPremium, plan.FilterPremium, row)
		badClaims := nonPositive(dataset.ColTotalClaims, plan.FilterClaims, row)
		if badPremium {
			st.NonPositivePremium++
		}
		if badClaims {
			st.NonPositiveClaims++
		}
		return !badPremium && !badClaims
	})

	st.RowsOut = out.Len()
	return out, st
}

// DeriveFeatures is stage 3: add TransactionYear and VehicleAge.
// Runs only when both RegistrationYear and TransactionMonth are present.
// Cells already holding a value are kept, so a second run changes nothing.
// A VehicleAge outside [MinVehicleAge, MaxVehicleAge] is reset to 0.
func DeriveFeatures(ds *dataset.Dataset, plan Plan) (*dataset.Dataset, StageStats) {
	st := StageStats{Stage: StageDeriveFeatures, RowsIn: ds.Len(), RowsOut: ds.Len()}
	out := ds.Clone()
	if !plan.DeriveFeatures {
		st.Skipped = true
		return out, st
	}

	n := out.Len()
	existingYear := numericColumn(out, dataset.ColTransactionYear)
	existingAge := numericColumn(out, dataset.ColVehicleAge)

	years := make([]dataset.Value, n)
	ages := make([]dataset.Value, n)
	for i := 0; i < n; i++ {
		years[i] = existingYear[i]
		if years[i].IsMissing() {
			if month := out.Value(i, dataset.ColTransactionMonth); month.IsTimestamp() {
				years[i] = dataset.NewNumericValue(float64(month.Timestamp.Year()))
			}
		}

		age := existingAge[i]
		if age.IsMissing() {
			reg, regOK := out.Value(i, dataset.ColRegistrationYear).Float()
			if !years[i].IsMissing() && regOK {
				age = dataset.NewNumericValue(years[i].Num - reg)
			}
		}
		if !age.IsMissing() && (age.Num < MinVehicleAge || age.Num > MaxVehicleAge) {
			age = dataset.NewNumericValue(vehicleAgeFallback)
			st.VehicleAgeResets++
		}
		ages[i] = age
	}

	_ = out.AddColumn(&dataset.Column{Name: dataset.ColTransactionYear, Type: dataset.ValueTypeNumeric, Values: years})
	_ = out.AddColumn(&dataset.Column{Name: dataset.ColVehicleAge, Type: dataset.ValueTypeNumeric, Values: ages})
	return out, st
}

// numericColumn returns the column's values if it exists and is numeric,
// otherwise an all-missing slice
func numericColumn(ds *dataset.Dataset, name string) []dataset.Value {
	values := make([]dataset.Value, ds.Len())
	if col, ok := ds.Column(name); ok && col.Type == dataset.ValueTypeNumeric {
		copy(values, col.Values)
	}
	return values
}

// HandleMissing is stage 4: drop columns missing in more than half the rows,
// then fill the rest. Text columns get UnknownCategory; numeric columns
// their own median over surviving values; date columns their median
// timestamp; boolean columns their most common value.
func HandleMissing(ds *dataset.Dataset, _ Plan) (*dataset.Dataset, StageStats) {
	st := StageStats{
		Stage:      StageHandleMissing,
		RowsIn:     ds.Len(),
		RowsOut:    ds.Len(),
		Filled:     map[string]int{},
		FillValues: map[string]string{},
	}

	n := ds.Len()
	for _, col := range ds.Columns() {
		if n > 0 && float64(col.MissingCount()) > MaxMissingRatio*float64(n) {
			st.DroppedColumns = append(st.DroppedColumns, col.Name)
		}
	}
	out := ds.Drop(st.DroppedColumns...)

	for _, col := range out.Columns() {
		missing := col.MissingCount()
		if missing == 0 {
			continue
		}

		fill, ok := fillValue(col)
		if !ok {
			continue
		}
		for i, v := range col.Values {
			if v.IsMissing() {
				col.Values[i] = fill
			}
		}
		st.Filled[col.Name] = missing
		st.FillValues[col.Name] = fill.String()
	}

	return out, st
}

func fillValue(col *dataset.Column) (dataset.Value, bool) {
	switch col.Type {
	case dataset.ValueTypeNumeric:
		data := make(stats.Float64Data, 0, len(col.Values))
		for _, v := range col.Values {
			if v.IsNumeric() {
				data = append(data, v.Num)
			}
		}
		median, err := data.Median()
		if err != nil {
			return dataset.Value{}, false
		}
		return dataset.NewNumericValue(median), true

	case dataset.ValueTypeTimestamp:
		data := make(stats.Float64Data, 0, len(col.Values))
		for _, v := range col.Values {
			if v.IsTimestamp() {
				data = append(data, float64(v.Timestamp.Unix()))
			}
		}
		median, err := data.Median()
		if err != nil {
			return dataset.Value{}, false
		}
		return dataset.NewTimestampValue(time.Unix(int64(median), 0).UTC()), true

	case dataset.ValueTypeBoolean:
		trues, falses := 0, 0
		for _, v := range col.Values {
			if v.IsBoolean() {
				if v.Bool {
					trues++
				} else {
					falses++
				}
			}
		}
		if trues+falses == 0 {
			return dataset.Value{}, false
		}
		return dataset.NewBooleanValue(trues > falses), true
	}

	return dataset.NewStringValue(UnknownCategory), true
}

// sortedKeys returns map keys in order, for deterministic logging
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
