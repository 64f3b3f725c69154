// Package aggregate is the first pipeline stage: it runs the aggregate
// count queries against the event store and shapes the rows into the
// per-topic series and tallies every later stage consumes. All later stages
// are pure functions of the Snapshot.
package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/Mitheesha/situational-awareness/internal/contracts"
)

// Querier is the query capability the external event store must provide.
type Querier interface {
	HourlyCounts(ctx context.Context, topic string, hours int) ([]contracts.HourlyCount, error)
	GroupedCounts(ctx context.Context, groupBy contracts.GroupBy, hours int) ([]contracts.GroupedRow, error)
}

// TopicSeries is one topic's hourly mention counts in chronological order.
type TopicSeries struct {
	Topic  string
	Hours  []time.Time
	Counts []int
}

// Snapshot is the aggregated view of the lookback window. Series order
// follows query order (sorted by topic), so downstream output is
// deterministic.
type Snapshot struct {
	TakenAt        time.Time
	WindowHours    int
	Series         []TopicSeries
	TopicUrgency   []contracts.GroupedRow
	TopicSentiment []contracts.GroupedRow
	Locations      []contracts.GroupedRow

	seriesIndex map[string]int
}

// SeriesFor returns the hourly series for a topic, if the window contains
// any events for it.
func (s *Snapshot) SeriesFor(topic string) (TopicSeries, bool) {
	idx, ok := s.seriesIndex[topic]
	if !ok {
		return TopicSeries{}, false
	}
	return s.Series[idx], true
}

type Aggregator struct {
	store Querier
	hours int
}

// New builds an aggregator over the given lookback window in hours.
func New(store Querier, hours int) (*Aggregator, error) {
	if store == nil {
		return nil, fmt.Errorf("aggregate: store is required")
	}
	if hours < 1 {
		return nil, fmt.Errorf("aggregate: window must be at least 1 hour, got %d", hours)
	}
	return &Aggregator{store: store, hours: hours}, nil
}

// Collect runs the aggregate queries and builds the snapshot. A window with
// no events yields an empty snapshot, not an error; a failed store call is
// fatal to the run and is returned with query context.
func (a *Aggregator) Collect(ctx context.Context) (*Snapshot, error) {
	snapshot := &Snapshot{
		TakenAt:     time.Now().UTC(),
		WindowHours: a.hours,
		seriesIndex: make(map[string]int),
	}

	hourly, err := a.store.HourlyCounts(ctx, "", a.hours)
	if err != nil {
		return nil, fmt.Errorf("aggregate hourly counts: %w", err)
	}
	for _, row := range hourly {
		idx, ok := snapshot.seriesIndex[row.Topic]
		if !ok {
			idx = len(snapshot.Series)
			snapshot.seriesIndex[row.Topic] = idx
			snapshot.Series = append(snapshot.Series, TopicSeries{Topic: row.Topic})
		}
		series := &snapshot.Series[idx]
		series.Hours = append(series.Hours, row.Hour)
		series.Counts = append(series.Counts, row.Count)
	}

	snapshot.TopicUrgency, err = a.store.GroupedCounts(ctx, contracts.GroupByTopicUrgency, a.hours)
	if err != nil {
		return nil, fmt.Errorf("aggregate topic/urgency counts: %w", err)
	}

	snapshot.TopicSentiment, err = a.store.GroupedCounts(ctx, contracts.GroupByTopicSentiment, a.hours)
	if err != nil {
		return nil, fmt.Errorf("aggregate topic/sentiment counts: %w", err)
	}

	snapshot.Locations, err = a.store.GroupedCounts(ctx, contracts.GroupByLocation, a.hours)
	if err != nil {
		return nil, fmt.Errorf("aggregate location counts: %w", err)
	}

	return snapshot, nil
}
