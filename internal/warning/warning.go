// Package warning synthesizes prioritized early warnings from detected
// signals and velocity data. Five independent rule families run over the
// full signal set; each may contribute zero or more warnings, and the final
// list is ordered by priority.
package warning

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Mitheesha/situational-awareness/internal/contracts"
	"github.com/Mitheesha/situational-awareness/internal/rules"
	"github.com/Mitheesha/situational-awareness/internal/velocity"
)

type Config struct {
	// PersistenceFloor is the aggregate mention count above which a topic
	// is flagged as a persistent issue.
	PersistenceFloor int
	// ProjectionHours is how far ahead the acceleration rule projects the
	// current rate.
	ProjectionHours float64
}

func DefaultConfig() Config {
	return Config{PersistenceFloor: 50, ProjectionHours: 6}
}

func (c Config) Validate() error {
	if c.PersistenceFloor < 1 {
		return fmt.Errorf("warning: persistence floor must be positive, got %d", c.PersistenceFloor)
	}
	if c.ProjectionHours <= 0 {
		return fmt.Errorf("warning: projection hours must be positive, got %.1f", c.ProjectionHours)
	}
	return nil
}

type Engine struct {
	cfg    Config
	tables rules.Tables
}

func New(tables rules.Tables, cfg Config) (*Engine, error) {
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, tables: tables}, nil
}

// Generate runs all five rule families and returns the warnings sorted by
// priority, stable within a priority.
func (e *Engine) Generate(signals []contracts.Signal, velocities *velocity.Set) []contracts.Warning {
	var warnings []contracts.Warning
	warnings = append(warnings, e.accelerationWarnings(signals, velocities)...)
	warnings = append(warnings, e.correlationWarnings(signals)...)
	warnings = append(warnings, e.geographicWarnings(signals)...)
	warnings = append(warnings, e.persistenceWarnings(signals)...)
	warnings = append(warnings, e.cascadeWarnings(signals)...)

	sort.SliceStable(warnings, func(i, j int) bool {
		return warnings[i].Priority.Rank() < warnings[j].Priority.Rank()
	})
	return warnings
}

// accelerationWarnings flags high-urgency signals whose topic volume is
// still climbing, with a linear projection of the current rate.
func (e *Engine) accelerationWarnings(signals []contracts.Signal, velocities *velocity.Set) []contracts.Warning {
	var warnings []contracts.Warning

	for _, signal := range signals {
		if !signal.Urgency.AtLeast(contracts.UrgencyHigh) {
			continue
		}
		rec, ok := velocities.ForTopic(signal.Topic)
		if !ok {
			continue
		}
		if rec.Band != contracts.BandAccelerating && rec.Band != contracts.BandGrowing {
			continue
		}

		predicted := rec.RecentAvg + rec.Rate*e.cfg.ProjectionHours
		warnings = append(warnings, contracts.Warning{
			Kind:     contracts.WarningAcceleration,
			Priority: contracts.PriorityCritical,
			TopicKey: signal.Topic,
			Label:    "alert",
			Title:    fmt.Sprintf("Accelerating: %s", titleCase(signal.Topic)),
			Message: fmt.Sprintf("%s is rapidly intensifying (velocity: +%.1f/hour)",
				titleCase(signal.Topic), rec.Rate),
			Prediction: fmt.Sprintf("If trend continues: ~%.0f mentions in %.0f hours",
				predicted, e.cfg.ProjectionHours),
			Confidence:        math.Min(95, signal.Confidence+10),
			RecommendedAction: fmt.Sprintf("Monitor %s closely. Prepare response plans.", signal.Topic),
			TimeHorizon:       fmt.Sprintf("%.0f hours", e.cfg.ProjectionHours),
			CurrentUrgency:    signal.Urgency,
			Details: contracts.WarningDetails{
				Velocity:      rec.Rate,
				CurrentRate:   rec.RecentAvg,
				PredictedRate: predicted,
			},
		})
	}

	return warnings
}

// correlationWarnings emits one warning per cluster with at least two
// matching signals.
func (e *Engine) correlationWarnings(signals []contracts.Signal) []contracts.Warning {
	var warnings []contracts.Warning

	for _, cluster := range e.tables.Clusters {
		var matched []contracts.Signal
		for _, s := range signals {
			if rules.MatchesAny(s.Topic, cluster.Keywords) {
				matched = append(matched, s)
			}
		}
		if len(matched) < 2 {
			continue
		}

		highCount := 0
		for _, s := range matched {
			if s.Urgency.AtLeast(contracts.UrgencyHigh) {
				highCount++
			}
		}

		priority := contracts.PriorityHigh
		if cluster.DowngradeWithoutHighUrgency && highCount == 0 {
			priority = contracts.PriorityMedium
		}

		topics := distinctTopics(matched, len(matched))
		warnings = append(warnings, contracts.Warning{
			Kind:              contracts.WarningCorrelation,
			Priority:          priority,
			TopicKey:          cluster.Key,
			Label:             "watch",
			Title:             cluster.Title,
			Message:           fmt.Sprintf(cluster.Message, strings.Join(topics, ", ")),
			Prediction:        cluster.Prediction,
			Confidence:        cluster.Confidence,
			RecommendedAction: cluster.Action,
			TimeHorizon:       cluster.TimeHorizon,
			CurrentUrgency:    contracts.UrgencyHigh,
			Details: contracts.WarningDetails{
				SignalCount: len(matched),
				Topics:      topics,
			},
		})
	}

	return warnings
}

// geographicWarnings flags locations concentrating three or more signals
// with at least two of them high urgency.
func (e *Engine) geographicWarnings(signals []contracts.Signal) []contracts.Warning {
	type locationGroup struct {
		location string
		signals  []contracts.Signal
	}

	var ordered []*locationGroup
	index := make(map[string]*locationGroup)
	for _, s := range signals {
		location := s.Location()
		if location == "" {
			continue
		}
		group, ok := index[location]
		if !ok {
			group = &locationGroup{location: location}
			index[location] = group
			ordered = append(ordered, group)
		}
		group.signals = append(group.signals, s)
	}

	var warnings []contracts.Warning
	for _, group := range ordered {
		if len(group.signals) < 3 {
			continue
		}
		highCount := 0
		for _, s := range group.signals {
			if s.Urgency.AtLeast(contracts.UrgencyHigh) {
				highCount++
			}
		}
		if highCount < 2 {
			continue
		}

		topics := distinctTopics(group.signals, 3)
		warnings = append(warnings, contracts.Warning{
			Kind:     contracts.WarningGeographic,
			Priority: contracts.PriorityHigh,
			TopicKey: group.location + "_hotspot",
			Label:    "hotspot",
			Title:    fmt.Sprintf("Hotspot Alert: %s", group.location),
			Message: fmt.Sprintf("Concentrated activity in %s: %s",
				group.location, strings.Join(topics, ", ")),
			Prediction: fmt.Sprintf("Localized disruptions likely in %s. Consider alternative routes/locations.",
				group.location),
			Confidence:        85,
			RecommendedAction: fmt.Sprintf("Avoid %s if possible. Monitor local developments closely.", group.location),
			TimeHorizon:       "12-24 hours",
			CurrentUrgency:    contracts.UrgencyHigh,
			Details: contracts.WarningDetails{
				Location:        group.location,
				SignalCount:     len(group.signals),
				HighUrgencyHits: highCount,
			},
		})
	}

	return warnings
}

// persistenceWarnings flags topics whose aggregate mention volume across
// all signals clears the floor: the issue is not going away.
func (e *Engine) persistenceWarnings(signals []contracts.Signal) []contracts.Warning {
	type topicVolume struct {
		topic   string
		volume  int
		signals []contracts.Signal
	}

	var ordered []*topicVolume
	index := make(map[string]*topicVolume)
	for _, s := range signals {
		tv, ok := index[s.Topic]
		if !ok {
			tv = &topicVolume{topic: s.Topic}
			index[s.Topic] = tv
			ordered = append(ordered, tv)
		}
		tv.volume += s.SourceCount
		tv.signals = append(tv.signals, s)
	}

	var warnings []contracts.Warning
	for _, tv := range ordered {
		if tv.volume <= e.cfg.PersistenceFloor {
			continue
		}

		urgencies := make([]contracts.Urgency, 0, len(tv.signals))
		for _, s := range tv.signals {
			urgencies = append(urgencies, s.Urgency)
		}

		warnings = append(warnings, contracts.Warning{
			Kind:              contracts.WarningPersistence,
			Priority:          contracts.PriorityMedium,
			TopicKey:          tv.topic,
			Label:             "notice",
			Title:             fmt.Sprintf("Persistent Issue: %s", titleCase(tv.topic)),
			Message:           fmt.Sprintf("%s remains active with %d mentions", titleCase(tv.topic), tv.volume),
			Prediction:        "Issue not resolving quickly. Plan for extended impact.",
			Confidence:        70,
			RecommendedAction: fmt.Sprintf("Develop long-term mitigation strategy for %s.", tv.topic),
			TimeHorizon:       "1 week+",
			CurrentUrgency:    contracts.MaxUrgency(urgencies),
			Details: contracts.WarningDetails{
				TotalMentions: tv.volume,
				SignalCount:   len(tv.signals),
			},
		})
	}

	return warnings
}

// cascadeWarnings fires when a chain's trigger topics and effect topics are
// both present among the signals: a second-order disruption is assumed
// under way.
func (e *Engine) cascadeWarnings(signals []contracts.Signal) []contracts.Warning {
	var warnings []contracts.Warning

	for _, chain := range e.tables.Cascades {
		var triggers, effects []contracts.Signal
		for _, s := range signals {
			if rules.MatchesAny(s.Topic, chain.Triggers) {
				triggers = append(triggers, s)
			}
			if rules.MatchesAny(s.Topic, chain.Effects) {
				effects = append(effects, s)
			}
		}
		if len(triggers) == 0 || len(effects) == 0 {
			continue
		}

		triggerTopics := distinctTopics(triggers, len(triggers))
		effectTopics := distinctTopics(effects, len(effects))
		warnings = append(warnings, contracts.Warning{
			Kind:     contracts.WarningCascade,
			Priority: contracts.PriorityCritical,
			TopicKey: rules.TopicKey(chain.Title),
			Label:    "cascade",
			Title:    chain.Title,
			Message:  chain.Message,
			Prediction: fmt.Sprintf("Trigger: %s -> Effects: %s",
				strings.Join(triggerTopics, ", "), strings.Join(effectTopics, ", ")),
			Confidence:        75,
			RecommendedAction: "Prepare for multi-system disruption. Review full business continuity plan.",
			TimeHorizon:       "24-48 hours",
			CurrentUrgency:    contracts.UrgencyCritical,
			Details: contracts.WarningDetails{
				Triggers: triggerTopics,
				Effects:  effectTopics,
			},
		})
	}

	return warnings
}

// distinctTopics returns the unique topics of the first limit signals, in
// discovery order.
func distinctTopics(signals []contracts.Signal, limit int) []string {
	if limit > len(signals) {
		limit = len(signals)
	}
	seen := make(map[string]bool, limit)
	topics := make([]string, 0, limit)
	for _, s := range signals[:limit] {
		if seen[s.Topic] {
			continue
		}
		seen[s.Topic] = true
		topics = append(topics, s.Topic)
	}
	return topics
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
