package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"insurisk/domain/stats"
	"insurisk/internal/cleaning"
	"insurisk/internal/hypothesis"
	apperrors "insurisk/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() []stats.TestResult {
	return []stats.TestResult{
		{
			Name:           "H4: risk differences between women and men",
			Method:         stats.MethodChiSquare,
			PValue:         0.0021,
			Decision:       stats.DecisionReject,
			Recommendation: "Offer a discount product to female drivers, the lower-risk group (claim rate 20.0% vs 40.0%).",
			Groups:         []string{"Female", "Male"},
		},
		{
			Name:           "H2: risk differences between postal codes",
			Method:         stats.MethodWelchT,
			PValue:         math.NaN(),
			Decision:       stats.DecisionInsufficientData,
			Recommendation: "No recommendation: the test could not be computed.",
			Reason:         `column not found: "PostalCode"`,
		},
	}
}

func TestTextPresenter_Block(t *testing.T) {
	block := NewTextPresenter().Block(sampleResults()[0])
	lines := strings.Split(strings.TrimSuffix(block, "\n"), "\n")

	assert.Equal(t, strings.Repeat("=", 60), lines[0])
	assert.Equal(t, strings.Repeat("=", 60), lines[len(lines)-1])
	for _, line := range lines {
		assert.LessOrEqual(t, len([]rune(line)), 60, "line %q is too wide", line)
	}
	assert.Contains(t, block, "H4: risk differences between women and men")
	assert.Contains(t, block, "0.00210")
	assert.Contains(t, block, "Threshold:      0.05")
	assert.Contains(t, block, "Decision:       REJECT")
	assert.Contains(t, block, "discount product")
}

func TestTextPresenter_Insufficient(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextPresenter().Present(&buf, sampleResults()))

	out := buf.String()
	assert.Contains(t, out, "P-Value:        n/a")
	assert.Contains(t, out, "INSUFFICIENT_DATA")
	assert.Contains(t, out, "PostalCode")
	assert.Equal(t, 4, strings.Count(out, strings.Repeat("=", 60)))
}

func TestMarkdownPresenter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&MarkdownPresenter{}).Present(&buf, sampleResults()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "| Hypothesis |"))
	assert.Contains(t, lines[2], "| 0.00210 | 0.05 | REJECT |")
	assert.Contains(t, lines[3], "| n/a |")
}

func TestHTMLPresenter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&HTMLPresenter{Title: "Risk"}).Present(&buf, sampleResults()))

	out := buf.String()
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<title>Risk</title>")
	assert.Contains(t, out, "REJECT")
}

func TestNew(t *testing.T) {
	for _, format := range []string{"text", "markdown", "html"} {
		p, err := New(format)
		require.NoError(t, err)
		assert.NotNil(t, p)
	}

	_, err := New("pdf")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestWrap(t *testing.T) {
	lines := wrap("one two three four five six", 9)
	assert.Equal(t, []string{"one two", "three", "four five", "six"}, lines)
	assert.Nil(t, wrap("   ", 10))
}

func TestWriteMissingReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMissingReport(&buf, []cleaning.ColumnMissing{
		{Column: "Bodytype", Missing: 600, Percent: 60},
		{Column: "Province", Missing: 0, Percent: 0},
	}))

	out := buf.String()
	assert.Contains(t, out, "Bodytype")
	assert.Contains(t, out, "60.00%")
	assert.Less(t, strings.Index(out, "Bodytype"), strings.Index(out, "Province"))
}

func TestWriteSegments(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSegments(&buf, "Province", []hypothesis.SegmentSummary{
		{Segment: "Gauteng", Policies: 10, Claims: 2, ClaimFrequency: 0.2, LossRatio: 0.35},
	}))
	assert.Contains(t, buf.String(), "Gauteng")
	assert.Contains(t, buf.String(), "0.3500")
}

func TestWriteCleaningSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCleaningSummary(&buf, &cleaning.Summary{
		RowsIn: 10, RowsOut: 8, ColumnsIn: 5, ColumnsOut: 6,
		Stages: []cleaning.StageStats{
			{Stage: cleaning.StageFilterAnomalies, RowsIn: 10, RowsOut: 8, NonPositivePremium: 2},
			{Stage: cleaning.StageDeriveFeatures, Skipped: true},
		},
	}))
	out := buf.String()
	assert.Contains(t, out, "10 -> 8")
	assert.Contains(t, out, "2 row(s) dropped")
	assert.Contains(t, out, "skipped")
}

func TestFromGroupRisk(t *testing.T) {
	results := FromGroupRisk(&stats.GroupRiskResult{
		GroupColumn:  "Province",
		MetricColumn: "TotalClaims",
		Groups:       []string{"A", "B", "C"},
		TestedGroups: []string{"A", "B"},
		Frequency:    stats.NewOutcome(stats.MethodChiSquare, 9.1, 2, 0.01),
		Magnitude:    stats.InsufficientOutcome(stats.MethodNone, "too few groups"),
	})

	require.Len(t, results, 2)
	assert.Equal(t, stats.DecisionReject, results[0].Decision)
	assert.Contains(t, results[0].Recommendation, "differs significantly across Province")
	assert.Equal(t, []string{"A", "B"}, results[1].Groups)
	assert.Equal(t, "too few groups", results[1].Reason)
	assert.False(t, results[1].HasPValue())
}
