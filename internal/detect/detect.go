// Package detect turns an aggregated snapshot into typed Signals: volume
// spikes against the cross-topic baseline, short-vs-long window trend
// shifts, geographic hotspots and sentiment shifts. Detection is a pure
// function of the snapshot.
package detect

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/Mitheesha/situational-awareness/internal/aggregate"
	"github.com/Mitheesha/situational-awareness/internal/contracts"
)

type Config struct {
	// SpikeMultiplier is how many times above the cross-topic mean a count
	// must be to qualify as a spike.
	SpikeMultiplier float64
	// TrendRatio is the recent-vs-older mean ratio that flags an upward
	// trend.
	TrendRatio float64
	// MinTrendBuckets is the minimum hourly buckets a topic needs before
	// trend analysis applies; thinner topics are skipped, not failed.
	MinTrendBuckets int
	// HotspotMinMentions is the mention floor for a location row to count
	// as a hotspot.
	HotspotMinMentions int
	// NegativePctThreshold and MinSentimentVolume gate sentiment-shift
	// signals.
	NegativePctThreshold float64
	MinSentimentVolume   int
	// NegativeSentiments are the sentiment categories counted as negative.
	NegativeSentiments []string
}

func DefaultConfig() Config {
	return Config{
		SpikeMultiplier:      2.0,
		TrendRatio:           1.5,
		MinTrendBuckets:      3,
		HotspotMinMentions:   30,
		NegativePctThreshold: 60,
		MinSentimentVolume:   20,
		NegativeSentiments:   []string{"negative", "frustration", "concern"},
	}
}

func (c Config) Validate() error {
	if c.SpikeMultiplier <= 1 {
		return fmt.Errorf("detect: spike multiplier must exceed 1, got %.2f", c.SpikeMultiplier)
	}
	if c.TrendRatio <= 1 {
		return fmt.Errorf("detect: trend ratio must exceed 1, got %.2f", c.TrendRatio)
	}
	if c.MinTrendBuckets < 3 {
		return fmt.Errorf("detect: min trend buckets must be at least 3, got %d", c.MinTrendBuckets)
	}
	if c.HotspotMinMentions < 1 {
		return fmt.Errorf("detect: hotspot mention floor must be positive, got %d", c.HotspotMinMentions)
	}
	if c.NegativePctThreshold <= 0 || c.NegativePctThreshold >= 100 {
		return fmt.Errorf("detect: negative percentage threshold must be in (0,100), got %.1f", c.NegativePctThreshold)
	}
	return nil
}

type Detector struct {
	cfg      Config
	negative map[string]bool
}

func New(cfg Config) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	negative := make(map[string]bool, len(cfg.NegativeSentiments))
	for _, s := range cfg.NegativeSentiments {
		negative[s] = true
	}
	return &Detector{cfg: cfg, negative: negative}, nil
}

// DetectAll runs every detector and returns their signals in a fixed order:
// spikes, trends, hotspots, sentiment shifts.
func (d *Detector) DetectAll(snap *aggregate.Snapshot) []contracts.Signal {
	var signals []contracts.Signal
	signals = append(signals, d.DetectSpikes(snap)...)
	signals = append(signals, d.DetectTrends(snap)...)
	signals = append(signals, d.DetectHotspots(snap)...)
	signals = append(signals, d.DetectSentimentShifts(snap)...)
	return signals
}

// DetectSpikes flags (topic, urgency) rows whose count exceeds the mean
// across all rows by the configured multiplier. An empty snapshot yields no
// signals.
func (d *Detector) DetectSpikes(snap *aggregate.Snapshot) []contracts.Signal {
	rows := snap.TopicUrgency
	if len(rows) == 0 {
		return nil
	}

	counts := make([]float64, len(rows))
	for i, row := range rows {
		counts[i] = float64(row.Count)
	}
	avg := mean(counts)
	stdDev := sampleStdDev(counts, avg)
	if avg == 0 {
		return nil
	}

	var signals []contracts.Signal
	for _, row := range rows {
		count := float64(row.Count)
		if count <= avg*d.cfg.SpikeMultiplier {
			continue
		}

		multiplier := count / avg
		signals = append(signals, contracts.Signal{
			ID:    uuid.NewString(),
			Kind:  contracts.SignalSpike,
			Topic: row.Topic,
			Description: fmt.Sprintf("Spike detected: %s mentioned %d times (%.1fx baseline)",
				row.Topic, row.Count, multiplier),
			Urgency:     spikeUrgency(multiplier, row.Urgency),
			Confidence:  math.Min(95, 70+multiplier*5),
			SourceCount: row.Count,
			FirstSeen:   snap.TakenAt.Add(-windowDuration(snap)),
			LastSeen:    snap.TakenAt,
			Spike: &contracts.SpikeDetails{
				BaselineAvg:     avg,
				ActualCount:     row.Count,
				Multiplier:      multiplier,
				StdDev:          stdDev,
				InherentUrgency: row.Urgency,
			},
		})
	}

	return signals
}

// spikeUrgency escalates a spike based on how far it sits above baseline
// and the inherent urgency of the underlying events.
func spikeUrgency(multiplier float64, inherent contracts.Urgency) contracts.Urgency {
	switch {
	case multiplier > 3 || inherent == contracts.UrgencyHigh:
		return contracts.UrgencyCritical
	case multiplier > 2.5:
		return contracts.UrgencyHigh
	case multiplier > 2:
		return contracts.UrgencyMedium
	default:
		return contracts.UrgencyLow
	}
}

// DetectTrends flags topics whose recent three hourly buckets average more
// than TrendRatio times the older buckets. Topics with fewer than
// MinTrendBuckets buckets are skipped.
func (d *Detector) DetectTrends(snap *aggregate.Snapshot) []contracts.Signal {
	var signals []contracts.Signal

	for _, series := range snap.Series {
		if len(series.Counts) < d.cfg.MinTrendBuckets {
			continue
		}

		counts := make([]float64, len(series.Counts))
		for i, c := range series.Counts {
			counts[i] = float64(c)
		}

		recentAvg := mean(counts[len(counts)-3:])
		olderAvg := counts[0]
		if len(counts) > 3 {
			olderAvg = mean(counts[:len(counts)-3])
		}

		if recentAvg <= olderAvg*d.cfg.TrendRatio {
			continue
		}

		velocity := (recentAvg - olderAvg) / float64(len(counts))
		total := 0
		for _, c := range series.Counts {
			total += c
		}

		signals = append(signals, contracts.Signal{
			ID:    uuid.NewString(),
			Kind:  contracts.SignalTrend,
			Topic: series.Topic,
			Description: fmt.Sprintf("Upward trend: %s mentions increasing (recent: %.1f, baseline: %.1f)",
				series.Topic, recentAvg, olderAvg),
			Urgency:     contracts.UrgencyMedium,
			Confidence:  75,
			SourceCount: total,
			FirstSeen:   snap.TakenAt.Add(-windowDuration(snap)),
			LastSeen:    snap.TakenAt,
			Trend: &contracts.TrendDetails{
				Velocity:     velocity,
				RecentAvg:    recentAvg,
				OlderAvg:     olderAvg,
				HourlyCounts: series.Counts,
			},
		})
	}

	return signals
}

// DetectHotspots flags locations whose high/medium-urgency mention volume
// clears the configured floor.
func (d *Detector) DetectHotspots(snap *aggregate.Snapshot) []contracts.Signal {
	var signals []contracts.Signal

	for _, row := range snap.Locations {
		if row.Count <= d.cfg.HotspotMinMentions {
			continue
		}

		signals = append(signals, contracts.Signal{
			ID:    uuid.NewString(),
			Kind:  contracts.SignalHotspot,
			Topic: fmt.Sprintf("Activity in %s", row.Location),
			Description: fmt.Sprintf("High activity detected in %s: %d %s-urgency posts",
				row.Location, row.Count, row.Urgency),
			Urgency:     row.Urgency,
			Confidence:  85,
			SourceCount: row.Count,
			FirstSeen:   snap.TakenAt.Add(-windowDuration(snap)),
			LastSeen:    snap.TakenAt,
			Hotspot: &contracts.HotspotDetails{
				Location:     row.Location,
				Topics:       row.Topics,
				UrgencyLevel: row.Urgency,
			},
		})
	}

	return signals
}

// DetectSentimentShifts flags topics whose negative sentiment share exceeds
// the threshold over a meaningful volume.
func (d *Detector) DetectSentimentShifts(snap *aggregate.Snapshot) []contracts.Signal {
	type topicSentiment struct {
		topic     string
		breakdown []contracts.SentimentCount
		total     int
		negative  int
	}

	var ordered []*topicSentiment
	index := make(map[string]*topicSentiment)
	for _, row := range snap.TopicSentiment {
		ts, ok := index[row.Topic]
		if !ok {
			ts = &topicSentiment{topic: row.Topic}
			index[row.Topic] = ts
			ordered = append(ordered, ts)
		}
		ts.breakdown = append(ts.breakdown, contracts.SentimentCount{Sentiment: row.Sentiment, Count: row.Count})
		ts.total += row.Count
		if d.negative[row.Sentiment] {
			ts.negative += row.Count
		}
	}

	var signals []contracts.Signal
	for _, ts := range ordered {
		if ts.total <= d.cfg.MinSentimentVolume {
			continue
		}
		negativePct := float64(ts.negative) / float64(ts.total) * 100
		if negativePct <= d.cfg.NegativePctThreshold {
			continue
		}

		urgency := contracts.UrgencyMedium
		if negativePct >= 75 {
			urgency = contracts.UrgencyHigh
		}

		signals = append(signals, contracts.Signal{
			ID:    uuid.NewString(),
			Kind:  contracts.SignalSentimentShift,
			Topic: ts.topic,
			Description: fmt.Sprintf("Negative sentiment detected: %s (%.0f%% negative out of %d mentions)",
				ts.topic, negativePct, ts.total),
			Urgency:     urgency,
			Confidence:  80,
			SourceCount: ts.total,
			FirstSeen:   snap.TakenAt.Add(-windowDuration(snap)),
			LastSeen:    snap.TakenAt,
			Sentiment: &contracts.SentimentDetails{
				Breakdown:   ts.breakdown,
				NegativePct: negativePct,
			},
		})
	}

	return signals
}
