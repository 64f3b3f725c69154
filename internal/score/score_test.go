package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mitheesha/situational-awareness/internal/contracts"
)

func newScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := New(DefaultWeights())
	require.NoError(t, err)
	return s
}

func TestScoreStaysInRange(t *testing.T) {
	s := newScorer(t)

	urgencies := []contracts.Urgency{
		contracts.UrgencyLow, contracts.UrgencyMedium,
		contracts.UrgencyHigh, contracts.UrgencyCritical,
	}
	kinds := []contracts.SignalKind{
		contracts.SignalSpike, contracts.SignalTrend,
		contracts.SignalHotspot, contracts.SignalSentimentShift,
	}

	for _, urgency := range urgencies {
		for _, kind := range kinds {
			for _, sources := range []int{0, 1, 50, 10000} {
				score := s.Score(contracts.Signal{
					Kind:        kind,
					Urgency:     urgency,
					Confidence:  95,
					SourceCount: sources,
				})
				assert.GreaterOrEqual(t, score, 0.0)
				assert.LessOrEqual(t, score, 100.0)
			}
		}
	}
}

func TestScoreFormula(t *testing.T) {
	s := newScorer(t)

	// 25 * 0.9 * (0.5 + 50/200) * 1.0
	low := s.Score(contracts.Signal{
		Kind:        contracts.SignalTrend,
		Urgency:     contracts.UrgencyLow,
		Confidence:  50,
		SourceCount: 1,
	})
	assert.InDelta(t, 16.875, low, 1e-9)

	// Critical spike with heavy volume clamps at 100.
	high := s.Score(contracts.Signal{
		Kind:        contracts.SignalSpike,
		Urgency:     contracts.UrgencyCritical,
		Confidence:  95,
		SourceCount: 100,
	})
	assert.InDelta(t, 100, high, 1e-9)
}

func TestScoreUnknownValuesFallBack(t *testing.T) {
	s := newScorer(t)

	unknown := s.Score(contracts.Signal{
		Kind:        contracts.SignalKind("mystery"),
		Urgency:     contracts.Urgency("unheard-of"),
		Confidence:  100,
		SourceCount: 1,
	})
	// 25 * 1.0 * 1.0 * 1.0
	assert.InDelta(t, 25, unknown, 1e-9)
}

func TestRankOrdersByScoreDescending(t *testing.T) {
	s := newScorer(t)

	signals := []contracts.Signal{
		{ID: "a", Kind: contracts.SignalTrend, Urgency: contracts.UrgencyLow, Confidence: 75, SourceCount: 5},
		{ID: "b", Kind: contracts.SignalSpike, Urgency: contracts.UrgencyCritical, Confidence: 90, SourceCount: 40},
		{ID: "c", Kind: contracts.SignalHotspot, Urgency: contracts.UrgencyMedium, Confidence: 85, SourceCount: 35},
	}

	ranked := s.Rank(signals)
	require.Len(t, ranked, 3)
	assert.Equal(t, "b", ranked[0].Signal.ID)
	assert.Equal(t, "c", ranked[1].Signal.ID)
	assert.Equal(t, "a", ranked[2].Signal.ID)
	assert.GreaterOrEqual(t, ranked[0].Score, ranked[1].Score)
	assert.GreaterOrEqual(t, ranked[1].Score, ranked[2].Score)
}

func TestRankIsStableForTies(t *testing.T) {
	s := newScorer(t)

	twin := contracts.Signal{
		Kind:        contracts.SignalSpike,
		Urgency:     contracts.UrgencyHigh,
		Confidence:  80,
		SourceCount: 10,
	}
	first, second := twin, twin
	first.ID = "first"
	second.ID = "second"

	ranked := s.Rank([]contracts.Signal{first, second})
	require.Len(t, ranked, 2)
	assert.Equal(t, "first", ranked[0].Signal.ID)
	assert.Equal(t, "second", ranked[1].Signal.ID)
}

func TestRankOfReversedInputAgreesOnScores(t *testing.T) {
	s := newScorer(t)

	signals := []contracts.Signal{
		{ID: "a", Kind: contracts.SignalTrend, Urgency: contracts.UrgencyLow, Confidence: 75, SourceCount: 5},
		{ID: "b", Kind: contracts.SignalSpike, Urgency: contracts.UrgencyCritical, Confidence: 90, SourceCount: 40},
		{ID: "c", Kind: contracts.SignalHotspot, Urgency: contracts.UrgencyMedium, Confidence: 85, SourceCount: 35},
	}
	reversed := []contracts.Signal{signals[2], signals[1], signals[0]}

	forward := s.Rank(signals)
	backward := s.Rank(reversed)
	require.Equal(t, len(forward), len(backward))
	for i := range forward {
		assert.Equal(t, forward[i].Signal.ID, backward[i].Signal.ID)
		assert.Equal(t, forward[i].Score, backward[i].Score)
	}
}

func TestTopAndFilter(t *testing.T) {
	s := newScorer(t)

	signals := []contracts.Signal{
		{ID: "critical", Kind: contracts.SignalSpike, Urgency: contracts.UrgencyCritical, Confidence: 90, SourceCount: 40},
		{ID: "medium", Kind: contracts.SignalHotspot, Urgency: contracts.UrgencyMedium, Confidence: 85, SourceCount: 35},
		{ID: "low", Kind: contracts.SignalTrend, Urgency: contracts.UrgencyLow, Confidence: 75, SourceCount: 5},
	}

	top := s.Top(signals, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "critical", top[0].ID)
	assert.Equal(t, "medium", top[1].ID)

	assert.Len(t, s.Top(signals, 10), 3)

	kept := s.FilterByThreshold(signals, 40)
	require.Len(t, kept, 2)
	assert.Equal(t, "critical", kept[0].ID)
	assert.Equal(t, "medium", kept[1].ID)
}

func TestWeightsValidate(t *testing.T) {
	assert.Error(t, Weights{}.Validate())

	bad := DefaultWeights()
	bad.Kind[contracts.SignalSpike] = 0
	assert.Error(t, bad.Validate())
}
