package stats

import (
	"math"
	"time"

	"insurisk/domain/core"
)

// SignificanceLevel is the fixed alpha every decision is made against
const SignificanceLevel = 0.05

// MinGroupSize is the per-group sample floor of the generic group test:
// groups with this many observations or fewer are excluded.
const MinGroupSize = 30

// Decision is the outcome of comparing a p-value to SignificanceLevel
type Decision string

const (
	DecisionReject           Decision = "REJECT"
	DecisionFailToReject     Decision = "FAIL_TO_REJECT"
	DecisionInsufficientData Decision = "INSUFFICIENT_DATA"
)

// Decide applies the decision rule: REJECT iff p < SignificanceLevel.
// A NaN p-value means no test could be computed.
func Decide(p float64) Decision {
	if math.IsNaN(p) {
		return DecisionInsufficientData
	}
	if p < SignificanceLevel {
		return DecisionReject
	}
	return DecisionFailToReject
}

// TestMethod defines the statistical test performed
type TestMethod string

const (
	MethodChiSquare TestMethod = "chi_square" // Chi-squared test of independence on a contingency table
	MethodWelchT    TestMethod = "welch_t"    // Two-sample t-test with unequal variances
	MethodANOVA     TestMethod = "anova"      // One-way analysis of variance
	MethodNone      TestMethod = ""
)

// MagnitudeMethod selects the magnitude test by surviving group count.
// ok is false when fewer than two groups remain.
func MagnitudeMethod(groups int) (method TestMethod, ok bool) {
	switch {
	case groups < 2:
		return MethodNone, false
	case groups == 2:
		return MethodWelchT, true
	default:
		return MethodANOVA, true
	}
}

// TestOutcome is one computed (or skipped) statistical comparison
type TestOutcome struct {
	Method    TestMethod `json:"method"`
	Statistic float64    `json:"statistic"`
	DF        float64    `json:"df"`
	PValue    float64    `json:"p_value"`
	Decision  Decision   `json:"decision"`
	Reason    string     `json:"reason,omitempty"` // set when Decision is INSUFFICIENT_DATA
}

// NewOutcome builds an outcome and applies the decision rule
func NewOutcome(method TestMethod, statistic, df, p float64) TestOutcome {
	return TestOutcome{Method: method, Statistic: statistic, DF: df, PValue: p, Decision: Decide(p)}
}

// InsufficientOutcome records a test that could not be computed
func InsufficientOutcome(method TestMethod, reason string) TestOutcome {
	return TestOutcome{Method: method, PValue: math.NaN(), Decision: DecisionInsufficientData, Reason: reason}
}

// HasPValue reports whether a p-value was computed
func (o TestOutcome) HasPValue() bool {
	return o.Decision != DecisionInsufficientData && !math.IsNaN(o.PValue)
}

// GroupRiskResult is the output of the generic group-risk test
type GroupRiskResult struct {
	GroupColumn  string      `json:"group_column"`
	MetricColumn string      `json:"metric_column"`
	Groups       []string    `json:"groups"`        // distinct non-missing group values
	TestedGroups []string    `json:"tested_groups"` // groups surviving the sample floor
	Frequency    TestOutcome `json:"frequency"`
	Magnitude    TestOutcome `json:"magnitude"`
}

// TestResult is one named hypothesis report
type TestResult struct {
	RunID          core.RunID `json:"run_id,omitempty"`
	Name           string     `json:"name"`
	Method         TestMethod `json:"method"`
	PValue         float64    `json:"p_value"`
	Decision       Decision   `json:"decision"`
	Recommendation string     `json:"recommendation"`
	Groups         []string   `json:"groups,omitempty"`
	Reason         string     `json:"reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// HasPValue reports whether a p-value was computed
func (r TestResult) HasPValue() bool {
	return r.Decision != DecisionInsufficientData && !math.IsNaN(r.PValue)
}
