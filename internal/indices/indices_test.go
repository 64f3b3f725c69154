package indices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mitheesha/situational-awareness/internal/contracts"
	"github.com/Mitheesha/situational-awareness/internal/rules"
)

func newCalculator(t *testing.T) *Calculator {
	t.Helper()
	c, err := New(rules.Defaults(), DefaultCategoryWeights())
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadWeights(t *testing.T) {
	weights := DefaultCategoryWeights()
	weights[contracts.CategorySocialUnrest] = 0.5
	_, err := New(rules.Defaults(), weights)
	assert.Error(t, err)

	delete(weights, contracts.CategorySocialUnrest)
	_, err = New(rules.Defaults(), weights)
	assert.Error(t, err)
}

func TestIndexNoMatchingSignals(t *testing.T) {
	c := newCalculator(t)

	idx := c.Index(contracts.CategoryEconomicStress, nil)
	assert.Equal(t, 0.0, idx.Score)
	assert.Equal(t, contracts.LevelLow, idx.Level)
	assert.Equal(t, 0, idx.SignalCount)
	assert.Empty(t, idx.TopTopics)
	assert.NotEmpty(t, idx.Description)
}

func TestEconomicIndexUnboosted(t *testing.T) {
	c := newCalculator(t)

	signals := []contracts.Signal{
		{Topic: "inflation", Urgency: contracts.UrgencyCritical, Confidence: 100},
	}
	idx := c.Index(contracts.CategoryEconomicStress, signals)
	assert.InDelta(t, 100, idx.Score, 1e-9)
	assert.Equal(t, contracts.LevelCritical, idx.Level)

	signals[0].Urgency = contracts.UrgencyHigh
	signals[0].Confidence = 80
	idx = c.Index(contracts.CategoryEconomicStress, signals)
	assert.InDelta(t, 60, idx.Score, 1e-9)
	assert.Equal(t, contracts.LevelHigh, idx.Level)
	assert.Equal(t, []string{"inflation"}, idx.TopTopics)
}

func TestSocialUnrestVolumeBoost(t *testing.T) {
	c := newCalculator(t)

	// High-urgency protest with 50 sources: volume doubles the contribution
	// against a doubled denominator.
	signals := []contracts.Signal{
		{Topic: "protest", Urgency: contracts.UrgencyHigh, Confidence: 100, SourceCount: 50},
	}
	idx := c.Index(contracts.CategorySocialUnrest, signals)
	assert.InDelta(t, 75, idx.Score, 1e-9)
	assert.Equal(t, contracts.LevelCritical, idx.Level)
}

func TestOperationalBoostIsCapped(t *testing.T) {
	c := newCalculator(t)

	signals := []contracts.Signal{
		{Topic: "power cut", Urgency: contracts.UrgencyCritical, Confidence: 100, SourceCount: 500},
	}
	// Boost caps at 1.5, matching the denominator factor exactly.
	idx := c.Index(contracts.CategoryOperationalRisk, signals)
	assert.InDelta(t, 100, idx.Score, 1e-9)
}

func TestAddingSevereSignalNeverLowersIndex(t *testing.T) {
	c := newCalculator(t)

	signals := []contracts.Signal{
		{Topic: "fuel prices", Urgency: contracts.UrgencyLow, Confidence: 40},
		{Topic: "economy", Urgency: contracts.UrgencyMedium, Confidence: 60},
	}
	before := c.Index(contracts.CategoryEconomicStress, signals).Score

	signals = append(signals, contracts.Signal{
		Topic: "inflation", Urgency: contracts.UrgencyCritical, Confidence: 100,
	})
	after := c.Index(contracts.CategoryEconomicStress, signals).Score

	assert.GreaterOrEqual(t, after, before)
}

func TestOverallWeightsComponents(t *testing.T) {
	c := newCalculator(t)

	signals := []contracts.Signal{
		{Topic: "inflation", Urgency: contracts.UrgencyHigh, Confidence: 80},
		{Topic: "power cut", Urgency: contracts.UrgencyMedium, Confidence: 100, SourceCount: 0},
	}

	overall := c.Overall(signals)
	// economic 60.0 and operational 33.3, each weighted 0.35.
	assert.InDelta(t, 60.0, overall.ComponentScores[contracts.CategoryEconomicStress], 1e-9)
	assert.InDelta(t, 33.3, overall.ComponentScores[contracts.CategoryOperationalRisk], 1e-9)
	assert.InDelta(t, 32.7, overall.Score, 0.06)
	assert.Equal(t, contracts.LevelMedium, overall.Level)
	assert.NotEmpty(t, overall.RecommendedAction)
}

func TestOverallAtStatedComponents(t *testing.T) {
	c := newCalculator(t)

	// Economic index 80, operational 60, weather and social 0:
	// 0.35*80 + 0.35*60 = 49.0, just under the HIGH threshold.
	signals := []contracts.Signal{
		{Topic: "inflation", Urgency: contracts.UrgencyCritical, Confidence: 80},
		{Topic: "power cut", Urgency: contracts.UrgencyCritical, Confidence: 90, SourceCount: 0},
	}

	overall := c.Overall(signals)
	assert.InDelta(t, 80.0, overall.ComponentScores[contracts.CategoryEconomicStress], 1e-9)
	assert.InDelta(t, 60.0, overall.ComponentScores[contracts.CategoryOperationalRisk], 1e-9)
	assert.InDelta(t, 49.0, overall.Score, 1e-9)
	assert.Equal(t, contracts.LevelMedium, overall.Level)
}

func TestOverallEmptyIsLow(t *testing.T) {
	c := newCalculator(t)

	overall := c.Overall(nil)
	assert.Equal(t, 0.0, overall.Score)
	assert.Equal(t, contracts.LevelLow, overall.Level)
	assert.Len(t, overall.ComponentScores, 4)
}

func TestLevelForScoreThresholds(t *testing.T) {
	assert.Equal(t, contracts.LevelCritical, contracts.LevelForScore(70))
	assert.Equal(t, contracts.LevelHigh, contracts.LevelForScore(69.9))
	assert.Equal(t, contracts.LevelHigh, contracts.LevelForScore(50))
	assert.Equal(t, contracts.LevelMedium, contracts.LevelForScore(49.9))
	assert.Equal(t, contracts.LevelMedium, contracts.LevelForScore(30))
	assert.Equal(t, contracts.LevelLow, contracts.LevelForScore(29.9))
}
