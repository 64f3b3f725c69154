package velocity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mitheesha/situational-awareness/internal/aggregate"
	"github.com/Mitheesha/situational-awareness/internal/contracts"
)

func newTracker(t *testing.T) *Tracker {
	t.Helper()
	tracker, err := New(DefaultConfig())
	require.NoError(t, err)
	return tracker
}

func TestTrackHalfWindowComparison(t *testing.T) {
	tracker := newTracker(t)

	snap := &aggregate.Snapshot{
		TakenAt: time.Now().UTC(),
		Series: []aggregate.TopicSeries{
			{Topic: "fuel prices", Counts: []int{2, 2, 2, 6, 6, 6}},
		},
	}

	set := tracker.Track(snap)
	require.Equal(t, 1, set.Len())

	rec, ok := set.ForTopic("fuel prices")
	require.True(t, ok)
	// Older half averages 2, recent half 6, over a 3-hour half-window.
	assert.InDelta(t, 1.33, rec.Rate, 1e-9)
	assert.Equal(t, contracts.BandGrowing, rec.Band)
	assert.InDelta(t, 6.0, rec.RecentAvg, 1e-9)
	assert.InDelta(t, 2.0, rec.OlderAvg, 1e-9)
	assert.InDelta(t, 0.0, rec.Momentum, 1e-9)
	assert.Equal(t, 6, rec.SampleCount)
	assert.Equal(t, 6, rec.LatestCount)
}

func TestTrackMomentumIsLastStep(t *testing.T) {
	tracker := newTracker(t)

	snap := &aggregate.Snapshot{
		TakenAt: time.Now().UTC(),
		Series: []aggregate.TopicSeries{
			{Topic: "protest", Counts: []int{1, 1, 4, 9}},
		},
	}

	rec, ok := tracker.Track(snap).ForTopic("protest")
	require.True(t, ok)
	assert.InDelta(t, 5.0, rec.Momentum, 1e-9)
}

func TestTrackSkipsThinSeries(t *testing.T) {
	tracker := newTracker(t)

	snap := &aggregate.Snapshot{
		TakenAt: time.Now().UTC(),
		Series: []aggregate.TopicSeries{
			{Topic: "drought", Counts: []int{3, 7}},
		},
	}

	set := tracker.Track(snap)
	assert.Equal(t, 0, set.Len())
	_, ok := set.ForTopic("drought")
	assert.False(t, ok)
}

func TestBandForRatePartitionsTheLine(t *testing.T) {
	cases := []struct {
		rate float64
		want contracts.TrendBand
	}{
		{3.0, contracts.BandAccelerating},
		{2.1, contracts.BandAccelerating},
		{2.0, contracts.BandGrowing},
		{0.6, contracts.BandGrowing},
		{0.5, contracts.BandStable},
		{0.0, contracts.BandStable},
		{-0.4, contracts.BandStable},
		{-0.5, contracts.BandDeclining},
		{-1.9, contracts.BandDeclining},
		{-2.0, contracts.BandFading},
		{-5.0, contracts.BandFading},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, BandForRate(tc.rate), "rate=%.1f", tc.rate)
	}
}

func TestAcceleratingAndDeceleratingOrder(t *testing.T) {
	tracker := newTracker(t)

	snap := &aggregate.Snapshot{
		TakenAt: time.Now().UTC(),
		Series: []aggregate.TopicSeries{
			{Topic: "slow riser", Counts: []int{0, 0, 0, 3, 3, 3}},
			{Topic: "fast riser", Counts: []int{0, 0, 0, 9, 9, 9}},
			{Topic: "fader", Counts: []int{9, 9, 9, 0, 0, 0}},
		},
	}

	set := tracker.Track(snap)

	rising := set.Accelerating(0)
	require.Len(t, rising, 2)
	assert.Equal(t, "fast riser", rising[0].Topic)
	assert.Equal(t, "slow riser", rising[1].Topic)

	falling := set.Decelerating(0)
	require.Len(t, falling, 1)
	assert.Equal(t, "fader", falling[0].Topic)
	assert.Equal(t, contracts.BandFading, falling[0].Band)
}

func TestNilSetIsEmpty(t *testing.T) {
	var set *Set
	assert.Equal(t, 0, set.Len())
	_, ok := set.ForTopic("anything")
	assert.False(t, ok)
}
