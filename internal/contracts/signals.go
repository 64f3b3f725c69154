package contracts

import "time"

type SignalKind string

const (
	SignalSpike          SignalKind = "spike"
	SignalTrend          SignalKind = "trend"
	SignalHotspot        SignalKind = "geographic_hotspot"
	SignalSentimentShift SignalKind = "sentiment_shift"
)

// SpikeDetails carries the baseline context a spike was detected against.
type SpikeDetails struct {
	BaselineAvg     float64 `json:"baseline_avg"`
	ActualCount     int     `json:"actual_count"`
	Multiplier      float64 `json:"multiplier"`
	StdDev          float64 `json:"std_dev"`
	InherentUrgency Urgency `json:"inherent_urgency"`
}

// TrendDetails carries the short-vs-long window comparison behind a trend.
type TrendDetails struct {
	Velocity     float64 `json:"velocity"`
	RecentAvg    float64 `json:"recent_avg"`
	OlderAvg     float64 `json:"older_avg"`
	HourlyCounts []int   `json:"hourly_counts"`
}

// HotspotDetails identifies the location behind a geographic hotspot.
type HotspotDetails struct {
	Location     string   `json:"location"`
	Topics       []string `json:"topics"`
	UrgencyLevel Urgency  `json:"urgency_level"`
}

type SentimentCount struct {
	Sentiment string `json:"sentiment"`
	Count     int    `json:"count"`
}

// SentimentDetails carries the breakdown behind a sentiment shift.
type SentimentDetails struct {
	Breakdown   []SentimentCount `json:"breakdown"`
	NegativePct float64          `json:"negative_percentage"`
}

// Signal is one detected anomaly or pattern instance. Signals are created by
// the detectors and read-only downstream; Confidence is always within
// [0,100] and LastSeen never precedes FirstSeen.
type Signal struct {
	ID          string     `json:"id"`
	Kind        SignalKind `json:"kind"`
	Topic       string     `json:"topic"`
	Description string     `json:"description"`
	Urgency     Urgency    `json:"urgency"`
	Confidence  float64    `json:"confidence"`
	SourceCount int        `json:"source_count"`
	FirstSeen   time.Time  `json:"first_seen"`
	LastSeen    time.Time  `json:"last_seen"`

	// Kind-specific details; exactly one is set per signal.
	Spike     *SpikeDetails     `json:"spike,omitempty"`
	Trend     *TrendDetails     `json:"trend,omitempty"`
	Hotspot   *HotspotDetails   `json:"hotspot,omitempty"`
	Sentiment *SentimentDetails `json:"sentiment,omitempty"`
}

// Location reports the geographic context of the signal, if it has one.
func (s Signal) Location() string {
	if s.Hotspot != nil {
		return s.Hotspot.Location
	}
	return ""
}

// ScoredSignal pairs a signal with its 0-100 priority score. Ranked
// collections sort on Score descending, ties kept in discovery order.
type ScoredSignal struct {
	Signal Signal  `json:"signal"`
	Score  float64 `json:"score"`
}
