package cleaning

import (
	"sort"

	"insurisk/domain/core"
	"insurisk/domain/dataset"
)

// ColumnSpec describes one expected column
type ColumnSpec struct {
	Type     dataset.ValueType
	Required bool
}

// Schema maps expected column names to their target type.
// It is checked once per run, before any stage executes.
type Schema map[string]ColumnSpec

// DefaultSchema names the columns the pipeline knows how to coerce.
// None is required: absent columns are skipped.
func DefaultSchema() Schema {
	return Schema{
		dataset.ColTransactionMonth:         {Type: dataset.ValueTypeTimestamp},
		dataset.ColTotalPremium:             {Type: dataset.ValueTypeNumeric},
		dataset.ColTotalClaims:              {Type: dataset.ValueTypeNumeric},
		dataset.ColCalculatedPremiumPerTerm: {Type: dataset.ValueTypeNumeric},
		dataset.ColRegistrationYear:         {Type: dataset.ValueTypeNumeric},
	}
}

// ColumnTarget is one column scheduled for type coercion
type ColumnTarget struct {
	Name string
	Type dataset.ValueType
}

// Plan is the result of checking a schema against a dataset. Stages consult
// the plan instead of probing the dataset for columns themselves.
type Plan struct {
	Coerce         []ColumnTarget // present schema columns, sorted by name
	Absent         []string       // schema columns not in the dataset, sorted
	FilterPremium  bool
	FilterClaims   bool
	DeriveFeatures bool // both RegistrationYear and TransactionMonth are present
}

// Check resolves the schema against ds. It fails only when a Required column is absent.
func (s Schema) Check(ds *dataset.Dataset) (Plan, error) {
	var plan Plan

	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spec := s[name]
		if !ds.Has(name) {
			if spec.Required {
				return Plan{}, core.NewColumnNotFoundError(name)
			}
			plan.Absent = append(plan.Absent, name)
			continue
		}
		plan.Coerce = append(plan.Coerce, ColumnTarget{Name: name, Type: spec.Type})
	}

	plan.FilterPremium = ds.Has(dataset.ColTotalPremium)
	plan.FilterClaims = ds.Has(dataset.ColTotalClaims)
	plan.DeriveFeatures = ds.Has(dataset.ColRegistrationYear) && ds.Has(dataset.ColTransactionMonth)

	return plan, nil
}
