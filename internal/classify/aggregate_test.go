package classify

import (
	"testing"

	"truthteller/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultsWithLabels(labels ...model.Label) []model.ClassificationResult {
	out := make([]model.ClassificationResult, len(labels))
	for i, l := range labels {
		out[i] = model.ClassificationResult{PredictedLabel: l}
	}
	return out
}

func shareMap(dist model.LabelDistribution) map[model.Label]float64 {
	m := make(map[model.Label]float64, len(dist))
	for _, s := range dist {
		m[s.Label] = s.Percentage
	}
	return m
}

func TestAggregateEvenSplit(t *testing.T) {
	dist := Aggregate(resultsWithLabels(
		model.LabelTrue, model.LabelTrue,
		model.LabelFalse, model.LabelFalse,
	))
	require.Len(t, dist, 3)

	m := shareMap(dist)
	assert.Equal(t, 50.0, m[model.LabelTrue])
	assert.Equal(t, 50.0, m[model.LabelFalse])
	assert.Equal(t, 0.0, m[model.LabelNeutral])
}

func TestAggregateRoundsToTwoDecimals(t *testing.T) {
	dist := Aggregate(resultsWithLabels(
		model.LabelTrue, model.LabelFalse, model.LabelNeutral,
	))
	m := shareMap(dist)
	assert.Equal(t, 33.33, m[model.LabelTrue])
	assert.Equal(t, 33.33, m[model.LabelFalse])
	assert.Equal(t, 33.33, m[model.LabelNeutral])
}

func TestAggregateEmptySetIsAllZero(t *testing.T) {
	dist := Aggregate(nil)
	require.Len(t, dist, 3)
	for _, share := range dist {
		assert.Equal(t, 0.0, share.Percentage)
	}
}

func TestAggregateStableOrder(t *testing.T) {
	dist := Aggregate(resultsWithLabels(model.LabelNeutral))
	require.Len(t, dist, 3)
	assert.Equal(t, model.LabelTrue, dist[0].Label)
	assert.Equal(t, model.LabelFalse, dist[1].Label)
	assert.Equal(t, model.LabelNeutral, dist[2].Label)
}

func TestAggregateIgnoresInvalidLabels(t *testing.T) {
	results := resultsWithLabels(model.LabelTrue)
	results = append(results, model.ClassificationResult{PredictedLabel: model.Label("bogus")})

	m := shareMap(Aggregate(results))
	assert.Equal(t, 100.0, m[model.LabelTrue])
	assert.Equal(t, 0.0, m[model.LabelFalse])
	assert.Equal(t, 0.0, m[model.LabelNeutral])
}
