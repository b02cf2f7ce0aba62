package hypothesis

import (
	"insurisk/domain/dataset"

	descriptive "github.com/montanaflynn/stats"
)

// SegmentSummary holds portfolio metrics for one value of a segment column
type SegmentSummary struct {
	Segment        string  `json:"segment"`
	Policies       int     `json:"policies"`
	Claims         int     `json:"claims"`
	ClaimFrequency float64 `json:"claim_frequency"` // share of rows with a claim
	MeanSeverity   float64 `json:"mean_severity"`   // mean claim amount over claimed rows
	TotalPremium   float64 `json:"total_premium"`
	TotalClaims    float64 `json:"total_claims"`
	LossRatio      float64 `json:"loss_ratio"`
	MeanMargin     float64 `json:"mean_margin"`
}

// SummarizeBy aggregates premium, claims and margin per value of column,
// sorted by segment. Rows with a missing segment are skipped.
func (e *Engine) SummarizeBy(column string) ([]SegmentSummary, error) {
	keys, err := e.groupKeys(column)
	if err != nil {
		e.logger.Warn("segment summary by %q: %v", column, err)
		return nil, err
	}
	premium, err := e.metricValues(dataset.ColTotalPremium)
	if err != nil {
		return nil, err
	}
	claims, err := e.metricValues(dataset.ColTotalClaims)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		premium  descriptive.Float64Data
		claims   descriptive.Float64Data
		severity descriptive.Float64Data
		margin   descriptive.Float64Data
	}
	buckets := make(map[string]*bucket)
	for i, k := range keys {
		if k == "" {
			continue
		}
		b, ok := buckets[k]
		if !ok {
			b = &bucket{}
			buckets[k] = b
		}
		p, c := premium[i].value, claims[i].value
		b.premium = append(b.premium, p)
		b.claims = append(b.claims, c)
		b.margin = append(b.margin, p-c)
		if c > 0 {
			b.severity = append(b.severity, c)
		}
	}

	summaries := make([]SegmentSummary, 0, len(buckets))
	for _, name := range distinct(keys) {
		b := buckets[name]
		totalPremium, _ := b.premium.Sum()
		totalClaims, _ := b.claims.Sum()
		meanMargin, _ := b.margin.Mean()

		s := SegmentSummary{
			Segment:      name,
			Policies:     b.premium.Len(),
			Claims:       b.severity.Len(),
			TotalPremium: totalPremium,
			TotalClaims:  totalClaims,
			LossRatio:    LossRatio(totalClaims, totalPremium),
			MeanMargin:   meanMargin,
		}
		s.ClaimFrequency = float64(s.Claims) / float64(s.Policies)
		if s.Claims > 0 {
			s.MeanSeverity, _ = b.severity.Mean()
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}
