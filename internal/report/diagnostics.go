package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"insurisk/internal/cleaning"
	"insurisk/internal/hypothesis"
)

// WriteMissingReport prints the per-column missing share, most-missing first
func WriteMissingReport(w io.Writer, rows []cleaning.ColumnMissing) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Column\tMissing\tPercent\n")
	fmt.Fprintf(tw, "------\t-------\t-------\n")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%.2f%%\n", r.Column, r.Missing, r.Percent)
	}
	return tw.Flush()
}

// WriteCleaningSummary prints what each pipeline stage did
func WriteCleaningSummary(w io.Writer, s *cleaning.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Rows\t%d -> %d\n", s.RowsIn, s.RowsOut)
	fmt.Fprintf(tw, "Columns\t%d -> %d\n", s.ColumnsIn, s.ColumnsOut)
	for _, st := range s.Stages {
		detail := ""
		switch st.Stage {
		case cleaning.StageCoerceTypes:
			lost := 0
			for _, n := range st.Invalidated {
				lost += n
			}
			detail = fmt.Sprintf("%d unconvertible value(s) set missing", lost)
		case cleaning.StageFilterAnomalies:
			detail = fmt.Sprintf("%d row(s) dropped (%d premium, %d claims)",
				st.RowsIn-st.RowsOut, st.NonPositivePremium, st.NonPositiveClaims)
		case cleaning.StageDeriveFeatures:
			if st.Skipped {
				detail = "skipped"
			} else {
				detail = fmt.Sprintf("%d vehicle age(s) reset", st.VehicleAgeResets)
			}
		case cleaning.StageHandleMissing:
			filled := 0
			for _, n := range st.Filled {
				filled += n
			}
			detail = fmt.Sprintf("%d column(s) dropped %v, %d cell(s) filled", len(st.DroppedColumns), st.DroppedColumns, filled)
		}
		fmt.Fprintf(tw, "%s\t%s\n", st.Stage, detail)
	}
	return tw.Flush()
}

// WriteSegments prints one row per segment
func WriteSegments(w io.Writer, column string, segments []hypothesis.SegmentSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\tPolicies\tClaims\tFrequency\tSeverity\tPremium\tClaimsPaid\tLossRatio\tMargin\t\n", column)
	for _, s := range segments {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.4f\t%.2f\t%.2f\t%.2f\t%.4f\t%.2f\t\n",
			s.Segment, s.Policies, s.Claims, s.ClaimFrequency, s.MeanSeverity,
			s.TotalPremium, s.TotalClaims, s.LossRatio, s.MeanMargin)
	}
	return tw.Flush()
}
