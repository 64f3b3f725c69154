// Package insight converts ranked signals into narrative, recommendation
// bearing insights for human decision-makers. Recommendations come from the
// injected rule tables with a templated fallback.
package insight

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Mitheesha/situational-awareness/internal/contracts"
	"github.com/Mitheesha/situational-awareness/internal/rules"
)

const (
	operationalValidity = 48 * time.Hour
	awarenessValidity   = 24 * time.Hour
	economicValidity    = 7 * 24 * time.Hour
	infraValidity       = 3 * 24 * time.Hour
)

type Generator struct {
	tables rules.Tables
}

func New(tables rules.Tables) (*Generator, error) {
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	return &Generator{tables: tables}, nil
}

// Generate groups the ranked signals by topic and produces one insight per
// topic, plus up to two cross-topic insights. Topic order follows signal
// discovery order.
func (g *Generator) Generate(signals []contracts.Signal) []contracts.Insight {
	type topicGroup struct {
		topic   string
		signals []contracts.Signal
	}

	var ordered []*topicGroup
	index := make(map[string]*topicGroup)
	for _, s := range signals {
		group, ok := index[s.Topic]
		if !ok {
			group = &topicGroup{topic: s.Topic}
			index[s.Topic] = group
			ordered = append(ordered, group)
		}
		group.signals = append(group.signals, s)
	}

	now := time.Now().UTC()

	var insights []contracts.Insight
	for _, group := range ordered {
		hasHighUrgency := false
		for _, s := range group.signals {
			if s.Urgency.AtLeast(contracts.UrgencyHigh) {
				hasHighUrgency = true
				break
			}
		}

		if hasHighUrgency {
			insights = append(insights, g.operationalRiskInsight(group.topic, group.signals, now))
		} else {
			insights = append(insights, g.awarenessInsight(group.topic, group.signals, now))
		}
	}

	insights = append(insights, g.crossTopicInsights(signals, now)...)
	return insights
}

func (g *Generator) operationalRiskInsight(topic string, signals []contracts.Signal, now time.Time) contracts.Insight {
	severity := contracts.SeverityWarning
	for _, s := range signals {
		if s.Urgency.AtLeast(contracts.UrgencyHigh) {
			severity = contracts.SeverityCritical
			break
		}
	}

	var areas []string
	seen := make(map[string]bool)
	for _, s := range signals {
		location := s.Location()
		if location == "" || seen[location] {
			continue
		}
		seen[location] = true
		areas = append(areas, location)
	}
	if len(areas) == 0 {
		areas = []string{"National"}
	}

	total := 0.0
	for _, s := range signals {
		total += s.Confidence
	}

	validUntil := now.Add(operationalValidity)
	return contracts.Insight{
		ID:    uuid.NewString(),
		Kind:  contracts.InsightOperationalRisk,
		Title: fmt.Sprintf("Operational Risk: %s", titleCase(topic)),
		Description: fmt.Sprintf("Detected %d signals indicating %s requires attention. This may impact business operations in the near term.",
			len(signals), topic),
		Severity:          severity,
		AffectedAreas:     areas,
		Recommendation:    g.recommendation(topic),
		SupportingSignals: signals,
		Confidence:        total / float64(len(signals)),
		CreatedAt:         now,
		ValidUntil:        &validUntil,
	}
}

func (g *Generator) awarenessInsight(topic string, signals []contracts.Signal, now time.Time) contracts.Insight {
	totalMentions := 0
	for _, s := range signals {
		totalMentions += s.SourceCount
	}

	validUntil := now.Add(awarenessValidity)
	return contracts.Insight{
		ID:    uuid.NewString(),
		Kind:  contracts.InsightSituationalAwareness,
		Title: fmt.Sprintf("Public Attention: %s", titleCase(topic)),
		Description: fmt.Sprintf("%s mentioned %d times across sources. Monitor for potential business implications.",
			titleCase(topic), totalMentions),
		Severity:          contracts.SeverityInfo,
		AffectedAreas:     []string{"National"},
		Recommendation:    fmt.Sprintf("Continue monitoring %s. No immediate action required.", topic),
		SupportingSignals: signals,
		Confidence:        70,
		CreatedAt:         now,
		ValidUntil:        &validUntil,
	}
}

// crossTopicInsights looks for clusters of related topics: two or more
// economic topics suggest broad economic pressure, two or more
// infrastructure topics suggest systemic stress. Membership is exact topic
// match.
func (g *Generator) crossTopicInsights(signals []contracts.Signal, now time.Time) []contracts.Insight {
	var insights []contracts.Insight

	economic := signalsWithTopics(signals, g.tables.EconomicInsightTopics)
	if len(economic) >= 2 {
		validUntil := now.Add(economicValidity)
		insights = append(insights, contracts.Insight{
			ID:    uuid.NewString(),
			Kind:  contracts.InsightEconomicPressure,
			Title: "Economic Pressure Indicators",
			Description: fmt.Sprintf("Multiple economic indicators showing activity: %s. Suggests broader economic challenges.",
				strings.Join(distinctTopics(economic), ", ")),
			Severity:      contracts.SeverityWarning,
			AffectedAreas: []string{"National"},
			Recommendation: "Review pricing strategies, cost management, and cash flow projections. " +
				"Consider hedging against currency fluctuations if applicable.",
			SupportingSignals: economic,
			Confidence:        80,
			CreatedAt:         now,
			ValidUntil:        &validUntil,
		})
	}

	infra := signalsWithTopics(signals, g.tables.InfrastructureInsightTopics)
	if len(infra) >= 2 {
		validUntil := now.Add(infraValidity)
		insights = append(insights, contracts.Insight{
			ID:    uuid.NewString(),
			Kind:  contracts.InsightInfrastructureStress,
			Title: "Infrastructure Challenges Detected",
			Description: fmt.Sprintf("Multiple infrastructure issues reported: %s. May affect operations and logistics.",
				strings.Join(distinctTopics(infra), ", ")),
			Severity:      contracts.SeverityWarning,
			AffectedAreas: []string{"National"},
			Recommendation: "Prepare contingency plans for operational disruptions. " +
				"Consider alternative work arrangements and delivery schedules.",
			SupportingSignals: infra,
			Confidence:        75,
			CreatedAt:         now,
			ValidUntil:        &validUntil,
		})
	}

	return insights
}

func (g *Generator) recommendation(topic string) string {
	if rec, ok := g.tables.Recommendations[topic]; ok {
		return rec
	}
	return fmt.Sprintf("Monitor %s closely. Assess potential impact on operations and prepare mitigation strategies.", topic)
}

func signalsWithTopics(signals []contracts.Signal, topics []string) []contracts.Signal {
	member := make(map[string]bool, len(topics))
	for _, t := range topics {
		member[t] = true
	}
	var matched []contracts.Signal
	for _, s := range signals {
		if member[s.Topic] {
			matched = append(matched, s)
		}
	}
	return matched
}

func distinctTopics(signals []contracts.Signal) []string {
	seen := make(map[string]bool, len(signals))
	topics := make([]string, 0, len(signals))
	for _, s := range signals {
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
