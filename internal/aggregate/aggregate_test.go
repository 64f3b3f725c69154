package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mitheesha/situational-awareness/internal/contracts"
)

type fakeStore struct {
	hourly  []contracts.HourlyCount
	grouped map[contracts.GroupBy][]contracts.GroupedRow

	hourlyErr  error
	groupedErr map[contracts.GroupBy]error
}

func (f *fakeStore) HourlyCounts(_ context.Context, _ string, _ int) ([]contracts.HourlyCount, error) {
	return f.hourly, f.hourlyErr
}

func (f *fakeStore) GroupedCounts(_ context.Context, groupBy contracts.GroupBy, _ int) ([]contracts.GroupedRow, error) {
	if err := f.groupedErr[groupBy]; err != nil {
		return nil, err
	}
	return f.grouped[groupBy], nil
}

func TestNewValidates(t *testing.T) {
	_, err := New(nil, 24)
	assert.Error(t, err)

	_, err = New(&fakeStore{}, 0)
	assert.Error(t, err)
}

func TestCollectShapesSeries(t *testing.T) {
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{
		hourly: []contracts.HourlyCount{
			{Topic: "fuel prices", Hour: base, Count: 3},
			{Topic: "fuel prices", Hour: base.Add(time.Hour), Count: 5},
			{Topic: "weather", Hour: base, Count: 2},
			{Topic: "fuel prices", Hour: base.Add(2 * time.Hour), Count: 9},
		},
		grouped: map[contracts.GroupBy][]contracts.GroupedRow{
			contracts.GroupByTopicUrgency: {
				{Topic: "fuel prices", Urgency: contracts.UrgencyHigh, Count: 17},
			},
			contracts.GroupByTopicSentiment: {
				{Topic: "fuel prices", Sentiment: "negative", Count: 12},
			},
			contracts.GroupByLocation: {
				{Location: "Colombo", Urgency: contracts.UrgencyHigh, Count: 8},
			},
		},
	}

	agg, err := New(store, 24)
	require.NoError(t, err)

	snap, err := agg.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 24, snap.WindowHours)
	assert.False(t, snap.TakenAt.IsZero())

	require.Len(t, snap.Series, 2)
	fuel, ok := snap.SeriesFor("fuel prices")
	require.True(t, ok)
	assert.Equal(t, []int{3, 5, 9}, fuel.Counts)
	assert.Equal(t, []time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour)}, fuel.Hours)

	weather, ok := snap.SeriesFor("weather")
	require.True(t, ok)
	assert.Equal(t, []int{2}, weather.Counts)

	_, ok = snap.SeriesFor("unknown")
	assert.False(t, ok)

	require.Len(t, snap.TopicUrgency, 1)
	require.Len(t, snap.TopicSentiment, 1)
	require.Len(t, snap.Locations, 1)
}

func TestCollectEmptyWindow(t *testing.T) {
	agg, err := New(&fakeStore{}, 12)
	require.NoError(t, err)

	snap, err := agg.Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Series)
	assert.Empty(t, snap.TopicUrgency)
}

func TestCollectWrapsStoreErrors(t *testing.T) {
	boom := errors.New("connection refused")

	agg, err := New(&fakeStore{hourlyErr: boom}, 12)
	require.NoError(t, err)
	_, err = agg.Collect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "aggregate hourly counts")

	agg, err = New(&fakeStore{
		groupedErr: map[contracts.GroupBy]error{contracts.GroupByLocation: boom},
	}, 12)
	require.NoError(t, err)
	_, err = agg.Collect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aggregate location counts")
}
