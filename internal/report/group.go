package report

import (
	"fmt"
	"time"

	"insurisk/domain/stats"
)

// FromGroupRisk turns a generic group test into presentable results, one
// for claim frequency and one for the metric comparison
func FromGroupRisk(r *stats.GroupRiskResult) []stats.TestResult {
	now := time.Now().UTC()
	row := func(name string, out stats.TestOutcome, groups []string, reject, retain string) stats.TestResult {
		rec := retain
		switch out.Decision {
		case stats.DecisionReject:
			rec = reject
		case stats.DecisionInsufficientData:
			rec = "No recommendation: the test could not be computed."
		}
		return stats.TestResult{
			Name:           name,
			Method:         out.Method,
			PValue:         out.PValue,
			Decision:       out.Decision,
			Recommendation: rec,
			Groups:         groups,
			Reason:         out.Reason,
			CreatedAt:      now,
		}
	}

	return []stats.TestResult{
		row(fmt.Sprintf("Claim frequency by %s", r.GroupColumn), r.Frequency, r.Groups,
			fmt.Sprintf("Claim frequency differs significantly across %s.", r.GroupColumn),
			fmt.Sprintf("No significant difference in claim frequency across %s.", r.GroupColumn)),
		row(fmt.Sprintf("%s by %s", r.MetricColumn, r.GroupColumn), r.Magnitude, r.TestedGroups,
			fmt.Sprintf("Mean %s differs significantly across %s.", r.MetricColumn, r.GroupColumn),
			fmt.Sprintf("No significant difference in mean %s across %s.", r.MetricColumn, r.GroupColumn)),
	}
}
