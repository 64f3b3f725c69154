package contracts

import "time"

type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Rank orders urgencies from low (0) to critical (3). Unknown values rank
// below low so they never win a max comparison.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyLow:
		return 0
	case UrgencyMedium:
		return 1
	case UrgencyHigh:
		return 2
	case UrgencyCritical:
		return 3
	default:
		return -1
	}
}

func (u Urgency) AtLeast(other Urgency) bool {
	return u.Rank() >= other.Rank()
}

// MaxUrgency returns the highest-ranked urgency in the list, or UrgencyLow
// for an empty list.
func MaxUrgency(urgencies []Urgency) Urgency {
	max := UrgencyLow
	for _, u := range urgencies {
		if u.Rank() > max.Rank() {
			max = u
		}
	}
	return max
}

// Event is one categorized item from the collection layer: a news article or
// social post already tagged with topic, urgency, sentiment and an optional
// location. Events are read-only to this module; the collectors own them.
type Event struct {
	Topic       string    `json:"topic"`
	Urgency     Urgency   `json:"urgency"`
	Sentiment   string    `json:"sentiment"`
	Location    string    `json:"location,omitempty"`
	SourceCount int       `json:"source_count"`
	Timestamp   time.Time `json:"timestamp"`
}
