// Package indices folds scored signals into four business-facing risk
// indices (0-100) and one overall weighted risk score. Category membership
// comes from the injected rule tables.
package indices

import (
	"fmt"
	"math"

	"github.com/Mitheesha/situational-awareness/internal/contracts"
	"github.com/Mitheesha/situational-awareness/internal/rules"
)

// DefaultCategoryWeights favours economic and operational pressure in the
// overall score.
func DefaultCategoryWeights() map[contracts.RiskCategory]float64 {
	return map[contracts.RiskCategory]float64{
		contracts.CategoryEconomicStress:  0.35,
		contracts.CategoryOperationalRisk: 0.35,
		contracts.CategoryWeatherImpact:   0.15,
		contracts.CategorySocialUnrest:    0.15,
	}
}

type Calculator struct {
	tables        rules.Tables
	weights       map[contracts.RiskCategory]float64
	urgencyScores map[contracts.Urgency]float64
}

func New(tables rules.Tables, weights map[contracts.RiskCategory]float64) (*Calculator, error) {
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	sum := 0.0
	for _, category := range contracts.Categories() {
		w, ok := weights[category]
		if !ok {
			return nil, fmt.Errorf("indices: missing weight for category %s", category)
		}
		if w < 0 {
			return nil, fmt.Errorf("indices: weight for %s must be non-negative, got %.2f", category, w)
		}
		sum += w
	}
	if math.Abs(sum-1) > 1e-9 {
		return nil, fmt.Errorf("indices: category weights must sum to 1, got %.4f", sum)
	}

	return &Calculator{
		tables:  tables,
		weights: weights,
		urgencyScores: map[contracts.Urgency]float64{
			contracts.UrgencyCritical: 100,
			contracts.UrgencyHigh:     75,
			contracts.UrgencyMedium:   50,
			contracts.UrgencyLow:      25,
		},
	}, nil
}

// Index computes one category's composite index from the signals whose
// topics match the category's keyword list.
func (c *Calculator) Index(category contracts.RiskCategory, signals []contracts.Signal) contracts.CompositeIndex {
	keywords := c.tables.CategoryKeywords[category]

	var contributing []contracts.Signal
	for _, s := range signals {
		if rules.MatchesAny(s.Topic, keywords) {
			contributing = append(contributing, s)
		}
	}

	if len(contributing) == 0 {
		return contracts.CompositeIndex{
			Category:    category,
			Score:       0,
			Level:       contracts.LevelLow,
			Description: emptyDescription(category),
		}
	}

	boost, denomFactor := categoryShape(category)

	total := 0.0
	for _, s := range contributing {
		contribution := c.urgencyScores[s.Urgency] * (s.Confidence / 100)
		if boost != nil {
			contribution *= boost(s)
		}
		total += contribution
	}

	maxPossible := float64(len(contributing)) * 100 * denomFactor
	index := total / maxPossible * 100
	level := contracts.LevelForScore(index)

	return contracts.CompositeIndex{
		Category:    category,
		Score:       round1(index),
		Level:       level,
		SignalCount: len(contributing),
		Description: levelDescription(category, level),
		TopTopics:   topTopics(contributing),
	}
}

// categoryShape returns the per-signal volume boost and the denominator
// factor a category normalizes against. Operational risk boosts modestly by
// volume; social unrest weighs volume heavily (spreading protests matter)
// against a doubled denominator.
func categoryShape(category contracts.RiskCategory) (func(contracts.Signal) float64, float64) {
	switch category {
	case contracts.CategoryOperationalRisk:
		return func(s contracts.Signal) float64 {
			return math.Min(1.5, 1+float64(s.SourceCount)/100)
		}, 1.5
	case contracts.CategorySocialUnrest:
		return func(s contracts.Signal) float64 {
			return 1 + float64(s.SourceCount)/50
		}, 2.0
	default:
		return nil, 1.0
	}
}

// Indices computes all four category indices.
func (c *Calculator) Indices(signals []contracts.Signal) map[contracts.RiskCategory]contracts.CompositeIndex {
	out := make(map[contracts.RiskCategory]contracts.CompositeIndex, 4)
	for _, category := range contracts.Categories() {
		out[category] = c.Index(category, signals)
	}
	return out
}

// Overall combines the four category indices with the configured weights
// into the master risk score and its recommended action.
func (c *Calculator) Overall(signals []contracts.Signal) contracts.OverallRisk {
	all := c.Indices(signals)

	overall := 0.0
	components := make(map[contracts.RiskCategory]float64, len(all))
	for _, category := range contracts.Categories() {
		idx := all[category]
		components[category] = idx.Score
		overall += idx.Score * c.weights[category]
	}

	level := contracts.LevelForScore(overall)
	return contracts.OverallRisk{
		Score:             round1(overall),
		Level:             level,
		RecommendedAction: actionForLevel(level),
		ComponentScores:   components,
	}
}

func actionForLevel(level contracts.RiskLevel) string {
	switch level {
	case contracts.LevelCritical:
		return "Activate full business continuity plan. Senior leadership should convene."
	case contracts.LevelHigh:
		return "Heightened alert. Review all contingency plans and prepare for disruption."
	case contracts.LevelMedium:
		return "Monitor situation closely. Brief teams on potential developments."
	default:
		return "Maintain normal operations. Continue routine monitoring."
	}
}

// topTopics keeps the distinct topics of the first three contributing
// signals, in discovery order.
func topTopics(signals []contracts.Signal) []string {
	limit := 3
	if len(signals) < limit {
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

func emptyDescription(category contracts.RiskCategory) string {
	switch category {
	case contracts.CategoryEconomicStress:
		return "No economic stress detected"
	case contracts.CategoryOperationalRisk:
		return "No operational risks detected"
	case contracts.CategoryWeatherImpact:
		return "No weather concerns"
	default:
		return "Social environment stable"
	}
}

func levelDescription(category contracts.RiskCategory, level contracts.RiskLevel) string {
	switch category {
	case contracts.CategoryEconomicStress:
		switch level {
		case contracts.LevelCritical:
			return "Severe economic pressure detected. Review pricing, costs, and cash flow urgently."
		case contracts.LevelHigh:
			return "Elevated economic concerns. Monitor closely and prepare contingency plans."
		case contracts.LevelMedium:
			return "Moderate economic activity. Stay informed of developments."
		default:
			return "Economic conditions relatively stable."
		}
	case contracts.CategoryOperationalRisk:
		switch level {
		case contracts.LevelCritical:
			return "Major operational disruptions likely. Activate contingency plans."
		case contracts.LevelHigh:
			return "Significant operational challenges. Prepare backup systems."
		case contracts.LevelMedium:
			return "Some operational risks present. Monitor infrastructure status."
		default:
			return "Operations likely to proceed normally."
		}
	case contracts.CategoryWeatherImpact:
		switch level {
		case contracts.LevelCritical:
			return "Severe weather threat. Secure assets and review supply chains."
		case contracts.LevelHigh:
			return "Significant weather concerns. Prepare for potential disruptions."
		case contracts.LevelMedium:
			return "Weather may affect operations. Stay alert."
		default:
			return "Weather conditions manageable."
		}
	default:
		switch level {
		case contracts.LevelCritical:
			return "High social unrest. Avoid affected areas, consider remote work."
		case contracts.LevelHigh:
			return "Elevated social activity. Monitor for transport disruptions."
		case contracts.LevelMedium:
			return "Some social unrest. Stay informed of developments."
		default:
			return "Social environment relatively calm."
		}
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
