package hypothesis

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"insurisk/domain/core"
	"insurisk/domain/dataset"
	"insurisk/domain/stats"
	"insurisk/internal/analysis/significance"

	"gonum.org/v1/gonum/stat"
)

// Names of the fixed hypotheses
const (
	NameProvinceRisk = "H1: risk differences across provinces"
	NameZipRisk      = "H2: risk differences between postal codes"
	NameZipMargin    = "H3: margin differences between postal codes"
	NameGenderRisk   = "H4: risk differences between women and men"
)

var (
	maleLabels      = map[string]bool{"male": true, "m": true}
	femaleLabels    = map[string]bool{"female": true, "f": true}
	passengerMarker = "passenger"
)

// RunAll runs H1 to H4. A failing hypothesis is reported as INSUFFICIENT_DATA
// and never stops the others.
func (e *Engine) RunAll() []stats.TestResult {
	results := make([]stats.TestResult, 0, 4)
	for _, test := range []func() (stats.TestResult, error){
		e.TestProvinceRisk,
		e.TestZipRisk,
		e.TestZipMargin,
		e.TestGenderRisk,
	} {
		result, _ := test()
		results = append(results, result)
	}
	return results
}

// TestProvinceRisk compares TotalClaims across every province with one-way
// ANOVA. No per-group sample floor applies.
func (e *Engine) TestProvinceRisk() (stats.TestResult, error) {
	keys, values, err := e.groupedMetric(dataset.ColProvince, dataset.ColTotalClaims)
	if err != nil {
		return e.failed(NameProvinceRisk, stats.MethodANOVA, nil, err)
	}

	provinces := distinct(keys)
	if len(provinces) < 2 {
		return e.failed(NameProvinceRisk, stats.MethodANOVA, provinces, core.NewInsufficientDataError(NameProvinceRisk,
			fmt.Sprintf("found %d province(s), need at least 2", len(provinces))))
	}

	samples := collect(keys, values)
	groups := make([][]float64, len(provinces))
	for i, p := range provinces {
		groups[i] = samples[p]
	}

	out := significance.OneWayANOVA(groups)
	rec := recommend(out.Decision,
		"Apply a territorial risk loading: claim amounts differ significantly across provinces.",
		"Maintain uniform pricing across provinces: no significant difference in claim amounts.")
	return e.result(NameProvinceRisk, provinces, out, rec)
}

// TestZipRisk compares TotalClaims between the two most common postal codes
func (e *Engine) TestZipRisk() (stats.TestResult, error) {
	return e.zipTest(NameZipRisk, dataset.ColTotalClaims, func(out stats.TestOutcome, zips []string, _ [][]float64) string {
		return recommend(out.Decision,
			fmt.Sprintf("Introduce geo-fenced pricing: claim amounts differ significantly between postal codes %s and %s.", zips[0], zips[1]),
			fmt.Sprintf("No added lift from postal-code granularity: claim amounts in %s and %s are alike.", zips[0], zips[1]))
	})
}

// TestZipMargin compares Margin between the two most common postal codes
func (e *Engine) TestZipMargin() (stats.TestResult, error) {
	return e.zipTest(NameZipMargin, dataset.ColMargin, func(out stats.TestOutcome, zips []string, groups [][]float64) string {
		richer := zips[0]
		if stat.Mean(groups[1], nil) > stat.Mean(groups[0], nil) {
			richer = zips[1]
		}
		return recommend(out.Decision,
			fmt.Sprintf("Lower premiums in the more profitable postal code %s to gain market share.", richer),
			fmt.Sprintf("Pricing is already margin-neutral between postal codes %s and %s.", zips[0], zips[1]))
	})
}

func (e *Engine) zipTest(name, metric string, recommendation func(stats.TestOutcome, []string, [][]float64) string) (stats.TestResult, error) {
	keys, values, err := e.groupedMetric(dataset.ColPostalCode, metric)
	if err != nil {
		return e.failed(name, stats.MethodWelchT, nil, err)
	}

	zips := topTwo(keys)
	if len(zips) < 2 {
		return e.failed(name, stats.MethodWelchT, zips, core.NewInsufficientDataError(name,
			fmt.Sprintf("found %d postal code(s), need at least 2", len(zips))))
	}

	samples := collect(keys, values)
	groups := [][]float64{samples[zips[0]], samples[zips[1]]}
	out := significance.WelchTTest(groups[0], groups[1])
	if out.Decision == stats.DecisionInsufficientData {
		return e.failed(name, stats.MethodWelchT, zips, core.NewInsufficientDataError(name, out.Reason))
	}
	return e.result(name, zips, out, recommendation(out, zips, groups))
}

// TestGenderRisk compares claim frequency between women and men driving
// passenger vehicles, with a chi-squared test on gender x Claimed
func (e *Engine) TestGenderRisk() (stats.TestResult, error) {
	for _, col := range []string{dataset.ColGender, dataset.ColVehicleType} {
		if !e.data.Has(col) {
			return e.failed(NameGenderRisk, stats.MethodChiSquare, nil, core.NewColumnNotFoundError(col))
		}
	}
	claimed, err := e.claimedFlags()
	if err != nil {
		return e.failed(NameGenderRisk, stats.MethodChiSquare, nil, err)
	}

	var genders []string
	var flags []bool
	for i := 0; i < e.data.Len(); i++ {
		vehicle := strings.ToLower(e.data.Value(i, dataset.ColVehicleType).String())
		if !strings.Contains(vehicle, passengerMarker) {
			continue
		}
		gender, ok := canonicalGender(e.data.Value(i, dataset.ColGender).String())
		if !ok {
			continue
		}
		genders = append(genders, gender)
		flags = append(flags, claimed[i])
	}

	table := significance.CrossTab(genders, flags)
	if len(table.Rows) < 2 {
		return e.failed(NameGenderRisk, stats.MethodChiSquare, table.Rows, core.NewInsufficientDataError(NameGenderRisk,
			fmt.Sprintf("passenger vehicles with a recognized gender cover %d gender(s), need 2", len(table.Rows))))
	}

	out := significance.ChiSquareIndependence(table, true)

	rates := table.Rate()
	safer := "Female"
	if rates["Male"] < rates["Female"] {
		safer = "Male"
	}
	rec := recommend(out.Decision,
		fmt.Sprintf("Offer a discount product to %s drivers, the lower-risk group (claim rate %.1f%% vs %.1f%%).",
			strings.ToLower(safer), rates[safer]*100, rates[other(safer)]*100),
		"Exclude gender as a rating factor: claim frequency does not differ significantly.")
	return e.result(NameGenderRisk, table.Rows, out, rec)
}

// groupedMetric returns group labels and metric values aligned by row
func (e *Engine) groupedMetric(group, metric string) ([]string, []optionalFloat, error) {
	keys, err := e.groupKeys(group)
	if err != nil {
		return nil, nil, err
	}
	values, err := e.metricValues(metric)
	if err != nil {
		return nil, nil, err
	}
	return keys, values, nil
}

func (e *Engine) result(name string, groups []string, out stats.TestOutcome, recommendation string) (stats.TestResult, error) {
	if out.Decision == stats.DecisionInsufficientData {
		return e.failed(name, out.Method, groups, core.NewInsufficientDataError(name, out.Reason))
	}
	e.logger.Info("%s: %s p=%.5f -> %s", name, out.Method, out.PValue, out.Decision)
	return stats.TestResult{
		Name:           name,
		Method:         out.Method,
		PValue:         out.PValue,
		Decision:       out.Decision,
		Recommendation: recommendation,
		Groups:         groups,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

func (e *Engine) failed(name string, method stats.TestMethod, groups []string, err error) (stats.TestResult, error) {
	e.logger.Warn("%s aborted: %v", name, err)
	out := stats.InsufficientOutcome(method, err.Error())
	return stats.TestResult{
		Name:           name,
		Method:         method,
		PValue:         out.PValue,
		Decision:       out.Decision,
		Recommendation: "No recommendation: the test could not be computed.",
		Groups:         groups,
		Reason:         out.Reason,
		CreatedAt:      time.Now().UTC(),
	}, err
}

func recommend(d stats.Decision, reject, retain string) string {
	if d == stats.DecisionReject {
		return reject
	}
	return retain
}

// topTwo returns the two most frequent non-empty keys, ties by first appearance
func topTwo(keys []string) []string {
	counts := make(map[string]int)
	var order []string
	for _, k := range keys {
		if k == "" {
			continue
		}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > 2 {
		order = order[:2]
	}
	return order
}

func canonicalGender(label string) (string, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case maleLabels[l]:
		return "Male", true
	case femaleLabels[l]:
		return "Female", true
	}
	return "", false
}

func other(gender string) string {
	if gender == "Male" {
		return "Female"
	}
	return "Male"
}
