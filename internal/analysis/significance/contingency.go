package significance

import (
	"math"
	"sort"

	"insurisk/domain/stats"
)

// ContingencyTable cross-tabulates a categorical grouping against a binary indicator.
// Rows are group keys in sorted order; Cols are the indicator levels observed
// ("false" before "true"). Only observed levels appear, so no margin is zero.
type ContingencyTable struct {
	Rows   []string
	Cols   []string
	Counts [][]float64
}

// CrossTab builds a table from aligned group keys and indicator flags
func CrossTab(groups []string, flags []bool) ContingencyTable {
	rowIdx := make(map[string]int)
	var rows []string
	seenFalse, seenTrue := false, false
	for i, g := range groups {
		if _, ok := rowIdx[g]; !ok {
			rowIdx[g] = -1
			rows = append(rows, g)
		}
		if flags[i] {
			seenTrue = true
		} else {
			seenFalse = true
		}
	}
	sort.Strings(rows)
	for i, r := range rows {
		rowIdx[r] = i
	}

	var cols []string
	colIdx := map[bool]int{}
	if seenFalse {
		colIdx[false] = len(cols)
		cols = append(cols, "false")
	}
	if seenTrue {
		colIdx[true] = len(cols)
		cols = append(cols, "true")
	}

	counts := make([][]float64, len(rows))
	for i := range counts {
		counts[i] = make([]float64, len(cols))
	}
	for i, g := range groups {
		counts[rowIdx[g]][colIdx[flags[i]]]++
	}

	return ContingencyTable{Rows: rows, Cols: cols, Counts: counts}
}

// Total returns the number of observations in the table
func (t ContingencyTable) Total() float64 {
	total := 0.0
	for _, row := range t.Counts {
		for _, v := range row {
			total += v
		}
	}
	return total
}

// ChiSquareIndependence runs Pearson's chi-squared test of independence.
// With correction set and one degree of freedom, Yates' continuity correction
// moves each observed count up to 0.5 toward its expected count.
// A table with zero degrees of freedom yields statistic 0 and p = 1.
func ChiSquareIndependence(table ContingencyTable, correction bool) stats.TestOutcome {
	r, c := len(table.Rows), len(table.Cols)
	if r == 0 || c == 0 {
		return stats.InsufficientOutcome(stats.MethodChiSquare, "empty contingency table")
	}

	total := table.Total()
	rowSums := make([]float64, r)
	colSums := make([]float64, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			rowSums[i] += table.Counts[i][j]
			colSums[j] += table.Counts[i][j]
		}
	}

	dof := float64((r - 1) * (c - 1))
	if dof == 0 {
		return stats.NewOutcome(stats.MethodChiSquare, 0, 0, 1.0)
	}

	chi2 := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			expected := rowSums[i] * colSums[j] / total
			observed := table.Counts[i][j]
			if correction && dof == 1 {
				diff := expected - observed
				observed += math.Copysign(math.Min(0.5, math.Abs(diff)), diff)
			}
			d := observed - expected
			chi2 += d * d / expected
		}
	}

	return stats.NewOutcome(stats.MethodChiSquare, chi2, dof, ChiSquarePValue(chi2, dof))
}

// Rate returns, for each row, the share of observations in the "true" column
func (t ContingencyTable) Rate() map[string]float64 {
	trueCol := -1
	for j, c := range t.Cols {
		if c == "true" {
			trueCol = j
		}
	}
	rates := make(map[string]float64, len(t.Rows))
	for i, row := range t.Rows {
		n := 0.0
		for _, v := range t.Counts[i] {
			n += v
		}
		if n == 0 || trueCol < 0 {
			rates[row] = 0
			continue
		}
		rates[row] = t.Counts[i][trueCol] / n
	}
	return rates
}
