package significance

import (
	"fmt"
	"math"

	"insurisk/domain/stats"

	"gonum.org/v1/gonum/stat"
)

// CompareMagnitude compares a numeric metric across groups, choosing the test
// by group count: Welch's t-test for two groups, one-way ANOVA for more.
func CompareMagnitude(groups [][]float64) stats.TestOutcome {
	method, ok := stats.MagnitudeMethod(len(groups))
	if !ok {
		return stats.InsufficientOutcome(stats.MethodNone, fmt.Sprintf("need at least 2 groups, have %d", len(groups)))
	}

	switch method {
	case stats.MethodWelchT:
		return WelchTTest(groups[0], groups[1])
	case stats.MethodANOVA:
		return OneWayANOVA(groups)
	}
	return stats.InsufficientOutcome(method, "unsupported magnitude test")
}

// WelchTTest performs a two-sided two-sample t-test without assuming equal variances
func WelchTTest(a, b []float64) stats.TestOutcome {
	n1, n2 := float64(len(a)), float64(len(b))
	if n1 < 2 || n2 < 2 {
		return stats.InsufficientOutcome(stats.MethodWelchT,
			fmt.Sprintf("each group needs at least 2 observations, have %d and %d", len(a), len(b)))
	}

	mean1, var1 := stat.MeanVariance(a, nil)
	mean2, var2 := stat.MeanVariance(b, nil)

	se1, se2 := var1/n1, var2/n2
	se := math.Sqrt(se1 + se2)

	if se == 0 {
		// Both groups constant: identical means are no evidence of a difference
		if mean1 == mean2 {
			return stats.NewOutcome(stats.MethodWelchT, 0, n1+n2-2, 1.0)
		}
		return stats.NewOutcome(stats.MethodWelchT, math.Copysign(math.Inf(1), mean1-mean2), n1+n2-2, 0)
	}

	tStat := (mean1 - mean2) / se

	// Welch-Satterthwaite degrees of freedom
	df := (se1 + se2) * (se1 + se2) / (se1*se1/(n1-1) + se2*se2/(n2-1))

	return stats.NewOutcome(stats.MethodWelchT, tStat, df, TTestPValue(tStat, df))
}

// OneWayANOVA tests equality of means across k groups with the F statistic
// F = (SSB/(k-1)) / (SSW/(N-k)). Empty groups are ignored.
func OneWayANOVA(groups [][]float64) stats.TestOutcome {
	var nonEmpty [][]float64
	total := 0
	for _, g := range groups {
		if len(g) > 0 {
			nonEmpty = append(nonEmpty, g)
			total += len(g)
		}
	}

	k := len(nonEmpty)
	if k < 2 {
		return stats.InsufficientOutcome(stats.MethodANOVA, fmt.Sprintf("need at least 2 non-empty groups, have %d", k))
	}
	if total-k <= 0 {
		return stats.InsufficientOutcome(stats.MethodANOVA, "no within-group degrees of freedom")
	}

	grandSum := 0.0
	for _, g := range nonEmpty {
		for _, x := range g {
			grandSum += x
		}
	}
	grandMean := grandSum / float64(total)

	ssb, ssw := 0.0, 0.0
	for _, g := range nonEmpty {
		m := stat.Mean(g, nil)
		ssb += float64(len(g)) * (m - grandMean) * (m - grandMean)
		for _, x := range g {
			ssw += (x - m) * (x - m)
		}
	}

	dfb := float64(k - 1)
	dfw := float64(total - k)

	if ssw == 0 {
		if ssb == 0 {
			return stats.NewOutcome(stats.MethodANOVA, 0, dfb, 1.0)
		}
		return stats.NewOutcome(stats.MethodANOVA, math.Inf(1), dfb, 0)
	}

	f := (ssb / dfb) / (ssw / dfw)
	return stats.NewOutcome(stats.MethodANOVA, f, dfb, FTestPValue(f, dfb, dfw))
}
