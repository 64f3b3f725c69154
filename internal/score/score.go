// Package score assigns a 0-100 priority score to detected signals and
// ranks them. Scoring is a pure function of the signal's fields.
package score

import (
	"fmt"
	"math"
	"sort"

	"github.com/Mitheesha/situational-awareness/internal/contracts"
)

type Weights struct {
	Urgency map[contracts.Urgency]float64
	Kind    map[contracts.SignalKind]float64
}

func DefaultWeights() Weights {
	return Weights{
		Urgency: map[contracts.Urgency]float64{
			contracts.UrgencyCritical: 100,
			contracts.UrgencyHigh:     75,
			contracts.UrgencyMedium:   50,
			contracts.UrgencyLow:      25,
		},
		Kind: map[contracts.SignalKind]float64{
			contracts.SignalSpike:          1.2,
			contracts.SignalTrend:          0.9,
			contracts.SignalSentimentShift: 1.1,
			contracts.SignalHotspot:        1.0,
		},
	}
}

func (w Weights) Validate() error {
	if len(w.Urgency) == 0 {
		return fmt.Errorf("score: urgency weights are required")
	}
	for urgency, weight := range w.Urgency {
		if weight < 0 {
			return fmt.Errorf("score: urgency weight for %s must be non-negative, got %.2f", urgency, weight)
		}
	}
	for kind, weight := range w.Kind {
		if weight <= 0 {
			return fmt.Errorf("score: kind weight for %s must be positive, got %.2f", kind, weight)
		}
	}
	return nil
}

type Scorer struct {
	weights Weights
}

func New(weights Weights) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: weights}, nil
}

// Score combines urgency, signal kind, confidence and mention volume into a
// single 0-100 priority.
func (s *Scorer) Score(signal contracts.Signal) float64 {
	base, ok := s.weights.Urgency[signal.Urgency]
	if !ok {
		base = 25
	}

	kindMult, ok := s.weights.Kind[signal.Kind]
	if !ok {
		kindMult = 1.0
	}

	// Confidence scales 0.5-1.0, volume boosts logarithmically up to 1.5x.
	confidenceFactor := 0.5 + signal.Confidence/200
	volumeFactor := math.Min(1.5, 1+math.Log10(math.Max(1, float64(signal.SourceCount)))/10)

	return clamp(base*kindMult*confidenceFactor*volumeFactor, 0, 100)
}

// Rank returns the signals scored and sorted by score descending. The sort
// is stable: equal scores keep discovery order.
func (s *Scorer) Rank(signals []contracts.Signal) []contracts.ScoredSignal {
	scored := make([]contracts.ScoredSignal, 0, len(signals))
	for _, signal := range signals {
		scored = append(scored, contracts.ScoredSignal{Signal: signal, Score: s.Score(signal)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// FilterByThreshold returns only signals scoring at or above the threshold,
// in their original order.
func (s *Scorer) FilterByThreshold(signals []contracts.Signal, threshold float64) []contracts.Signal {
	filtered := make([]contracts.Signal, 0, len(signals))
	for _, signal := range signals {
		if s.Score(signal) >= threshold {
			filtered = append(filtered, signal)
		}
	}
	return filtered
}

// Top returns the n highest-priority signals.
func (s *Scorer) Top(signals []contracts.Signal, n int) []contracts.Signal {
	ranked := s.Rank(signals)
	if n > len(ranked) {
		n = len(ranked)
	}
	top := make([]contracts.Signal, 0, n)
	for _, scored := range ranked[:n] {
		top = append(top, scored.Signal)
	}
	return top
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
