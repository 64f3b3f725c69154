// Package velocity measures the rate of change of each topic's mention
// volume and classifies momentum into five trend bands. Accelerating topics
// are early-warning input; fading topics are concerns resolving.
package velocity

import (
	"fmt"
	"math"
	"sort"

	"github.com/Mitheesha/situational-awareness/internal/aggregate"
	"github.com/Mitheesha/situational-awareness/internal/contracts"
)

type Config struct {
	// MinBuckets is the minimum hourly buckets a topic needs before a rate
	// can be computed; thinner topics are skipped.
	MinBuckets int
}

func DefaultConfig() Config {
	return Config{MinBuckets: 3}
}

func (c Config) Validate() error {
	if c.MinBuckets < 3 {
		return fmt.Errorf("velocity: min buckets must be at least 3, got %d", c.MinBuckets)
	}
	return nil
}

// Set holds velocity records keyed by topic, in snapshot series order.
type Set struct {
	records []contracts.VelocityRecord
	index   map[string]int
}

func (s *Set) Records() []contracts.VelocityRecord {
	return s.records
}

func (s *Set) ForTopic(topic string) (contracts.VelocityRecord, bool) {
	if s == nil {
		return contracts.VelocityRecord{}, false
	}
	idx, ok := s.index[topic]
	if !ok {
		return contracts.VelocityRecord{}, false
	}
	return s.records[idx], true
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Accelerating returns topics whose rate exceeds minRate, fastest first.
func (s *Set) Accelerating(minRate float64) []contracts.VelocityRecord {
	var out []contracts.VelocityRecord
	for _, rec := range s.records {
		if rec.Rate > minRate {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rate > out[j].Rate })
	return out
}

// Decelerating returns topics whose rate is below maxRate (a negative
// threshold), fastest-fading first.
func (s *Set) Decelerating(maxRate float64) []contracts.VelocityRecord {
	var out []contracts.VelocityRecord
	for _, rec := range s.records {
		if rec.Rate < maxRate {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rate < out[j].Rate })
	return out
}

type Tracker struct {
	cfg Config
}

func New(cfg Config) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Tracker{cfg: cfg}, nil
}

// Track computes a velocity record per topic with enough buckets: the
// series splits in half and the rate is the change between half-averages
// per hour.
func (t *Tracker) Track(snap *aggregate.Snapshot) *Set {
	set := &Set{index: make(map[string]int)}

	for _, series := range snap.Series {
		counts := series.Counts
		if len(counts) < t.cfg.MinBuckets {
			continue
		}

		split := len(counts) / 2
		older := counts[:split]
		recent := counts[split:]
		if len(older) == 0 || len(recent) == 0 {
			continue
		}

		olderAvg := meanInts(older)
		recentAvg := meanInts(recent)
		rate := (recentAvg - olderAvg) / (float64(len(counts)) / 2)

		momentum := 0.0
		if len(recent) >= 2 {
			momentum = float64(recent[len(recent)-1] - recent[len(recent)-2])
		}

		band := BandForRate(rate)
		set.index[series.Topic] = len(set.records)
		set.records = append(set.records, contracts.VelocityRecord{
			Topic:       series.Topic,
			Rate:        round2(rate),
			Band:        band,
			Description: describe(band, rate),
			RecentAvg:   round1(recentAvg),
			OlderAvg:    round1(olderAvg),
			Momentum:    momentum,
			SampleCount: len(counts),
			LatestCount: counts[len(counts)-1],
		})
	}

	return set
}

// BandForRate classifies a signed mentions-per-hour rate. The five bands
// partition the real line: every rate maps to exactly one band.
func BandForRate(rate float64) contracts.TrendBand {
	switch {
	case rate > 2:
		return contracts.BandAccelerating
	case rate > 0.5:
		return contracts.BandGrowing
	case rate > -0.5:
		return contracts.BandStable
	case rate > -2:
		return contracts.BandDeclining
	default:
		return contracts.BandFading
	}
}

func describe(band contracts.TrendBand, rate float64) string {
	switch band {
	case contracts.BandAccelerating:
		return fmt.Sprintf("Rapidly increasing (+%.1f mentions/hour)", rate)
	case contracts.BandGrowing:
		return fmt.Sprintf("Steadily growing (+%.1f mentions/hour)", rate)
	case contracts.BandStable:
		return fmt.Sprintf("Relatively stable (%.1f mentions/hour)", rate)
	case contracts.BandDeclining:
		return fmt.Sprintf("Gradually declining (-%.1f mentions/hour)", math.Abs(rate))
	default:
		return fmt.Sprintf("Rapidly fading (-%.1f mentions/hour)", math.Abs(rate))
	}
}

func meanInts(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
