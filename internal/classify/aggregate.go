package classify

import (
	"math"

	"truthteller/internal/model"
)

// Aggregate computes the percentage distribution of predicted labels over
// the three fixed buckets, in stable presentation order. Values outside the
// fixed label set are ignored for counting: they must neither crash the
// aggregation nor appear as a new bucket. An empty result set yields a
// deterministic all-zero distribution instead of dividing by zero.
func Aggregate(results []model.ClassificationResult) model.LabelDistribution {
	counts := make(map[model.Label]int, 3)
	total := 0
	for _, r := range results {
		if !r.PredictedLabel.Valid() {
			continue
		}
		counts[r.PredictedLabel]++
		total++
	}

	dist := make(model.LabelDistribution, 0, 3)
	for _, label := range model.Labels() {
		pct := 0.0
		if total > 0 {
			pct = round2(float64(counts[label]) / float64(total) * 100)
		}
		dist = append(dist, model.LabelShare{Label: label, Percentage: pct})
	}
	return dist
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
