// Package rules holds the fixed keyword tables the scoring, index, warning
// and insight stages share: category memberships, correlation clusters, the
// cascade trigger/effect graph and the recommendation templates. Tables are
// plain values injected at construction so tests and operators can swap them
// without touching the stages.
package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Mitheesha/situational-awareness/internal/contracts"
)

// Cluster is a named keyword set the correlation rule matches topics
// against, plus the warning copy emitted when the cluster fires. Message is
// a format string receiving the matched topic list.
type Cluster struct {
	Key         string   `yaml:"key"`
	Title       string   `yaml:"title"`
	Keywords    []string `yaml:"keywords"`
	Message     string   `yaml:"message"`
	Prediction  string   `yaml:"prediction"`
	Action      string   `yaml:"action"`
	TimeHorizon string   `yaml:"time_horizon"`
	Confidence  float64  `yaml:"confidence"`
	// DowngradeWithoutHighUrgency drops the warning to MEDIUM priority when
	// no matched signal is high or critical.
	DowngradeWithoutHighUrgency bool `yaml:"downgrade_without_high_urgency"`
}

// CascadeChain is one directed trigger->effect relationship: when signals
// match both sides, a second-order disruption is assumed imminent.
type CascadeChain struct {
	Triggers []string `yaml:"triggers"`
	Effects  []string `yaml:"effects"`
	Title    string   `yaml:"title"`
	Message  string   `yaml:"message"`
}

// Tables is the full immutable rule configuration.
type Tables struct {
	CategoryKeywords map[contracts.RiskCategory][]string `yaml:"category_keywords"`
	Clusters         []Cluster                           `yaml:"clusters"`
	Cascades         []CascadeChain                      `yaml:"cascades"`
	// Recommendations maps topic -> operational-risk recommendation text.
	Recommendations map[string]string `yaml:"recommendations"`
	// Cross-topic insight memberships use exact topic match, not substring.
	EconomicInsightTopics       []string `yaml:"economic_insight_topics"`
	InfrastructureInsightTopics []string `yaml:"infrastructure_insight_topics"`
}

// Defaults returns the built-in rule tables. The keyword lists mirror the
// topic taxonomy of the upstream categorizer; they are working defaults, not
// calibrated values.
func Defaults() Tables {
	return Tables{
		CategoryKeywords: map[contracts.RiskCategory][]string{
			contracts.CategoryEconomicStress: {
				"fuel prices", "inflation", "rupee exchange rate",
				"economy", "salary", "cost",
			},
			contracts.CategoryOperationalRisk: {
				"power cut", "road conditions", "public transport",
				"water shortage", "electricity", "transport",
			},
			contracts.CategoryWeatherImpact: {
				"monsoon rain", "flood warning", "drought",
				"weather", "rainfall", "cyclone",
			},
			contracts.CategorySocialUnrest: {
				"protest", "government policy", "election",
				"parliament", "demonstration",
			},
		},
		Clusters: []Cluster{
			{
				Key:                         "economic_cluster",
				Title:                       "Economic Pressure Indicators",
				Keywords:                    []string{"fuel prices", "inflation", "rupee exchange rate", "economy", "cost"},
				Message:                     "Multiple economic factors active: %s",
				Prediction:                  "Potential broader economic impact. Businesses should review financial resilience.",
				Action:                      "Review pricing strategy, cash reserves, and cost management plans.",
				TimeHorizon:                 "1-2 weeks",
				Confidence:                  80,
				DowngradeWithoutHighUrgency: true,
			},
			{
				Key:         "infrastructure_cluster",
				Title:       "Infrastructure Stress Detected",
				Keywords:    []string{"power cut", "road conditions", "transport", "water shortage", "electricity"},
				Message:     "Multiple infrastructure issues: %s",
				Prediction:  "Operational disruptions likely. Supply chains may be affected.",
				Action:      "Activate business continuity plans. Prepare for service disruptions.",
				TimeHorizon: "2-3 days",
				Confidence:  75,
			},
		},
		Cascades: []CascadeChain{
			{
				Triggers: []string{"fuel prices", "rupee exchange rate"},
				Effects:  []string{"inflation", "cost", "transport"},
				Title:    "Economic Cascade",
				Message:  "Fuel/currency issues may trigger broader inflation and transport costs",
			},
			{
				Triggers: []string{"flood warning", "monsoon rain"},
				Effects:  []string{"road conditions", "power cut", "water shortage"},
				Title:    "Weather Cascade",
				Message:  "Severe weather may cause infrastructure failures",
			},
			{
				Triggers: []string{"power cut"},
				Effects:  []string{"water shortage", "public transport"},
				Title:    "Infrastructure Cascade",
				Message:  "Power outages can disrupt water supply and transport systems",
			},
		},
		Recommendations: map[string]string{
			"fuel prices":   "Monitor fuel procurement costs and adjust delivery schedules. Consider advance purchases if trend continues.",
			"power cut":     "Prepare backup power systems. Adjust operational hours to minimize impact on critical processes.",
			"flood warning": "Secure ground-floor inventory. Review supply chain routes for weather-related disruptions.",
			"protest":       "Monitor locations for potential transport delays. Consider remote work options for affected areas.",
		},
		EconomicInsightTopics:       []string{"fuel prices", "inflation", "rupee exchange rate"},
		InfrastructureInsightTopics: []string{"power cut", "road conditions", "public transport", "water shortage"},
	}
}

// Load reads a YAML rule-table file and overlays it on Defaults. Only the
// sections present in the file replace their defaults, so a file may
// override just the clusters or just the recommendations.
func Load(path string) (Tables, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read rules file: %w", err)
	}

	var override Tables
	if err := yaml.Unmarshal(body, &override); err != nil {
		return Tables{}, fmt.Errorf("parse rules file %s: %w", path, err)
	}

	merged := Defaults()
	if len(override.CategoryKeywords) > 0 {
		merged.CategoryKeywords = override.CategoryKeywords
	}
	if len(override.Clusters) > 0 {
		merged.Clusters = override.Clusters
	}
	if len(override.Cascades) > 0 {
		merged.Cascades = override.Cascades
	}
	if len(override.Recommendations) > 0 {
		merged.Recommendations = override.Recommendations
	}
	if len(override.EconomicInsightTopics) > 0 {
		merged.EconomicInsightTopics = override.EconomicInsightTopics
	}
	if len(override.InfrastructureInsightTopics) > 0 {
		merged.InfrastructureInsightTopics = override.InfrastructureInsightTopics
	}

	if err := merged.Validate(); err != nil {
		return Tables{}, fmt.Errorf("rules file %s: %w", path, err)
	}
	return merged, nil
}

// Validate rejects tables that would make a stage misbehave at runtime.
func (t Tables) Validate() error {
	for _, category := range contracts.Categories() {
		if len(t.CategoryKeywords[category]) == 0 {
			return fmt.Errorf("category %s has no keywords", category)
		}
	}
	for _, cluster := range t.Clusters {
		if cluster.Key == "" || len(cluster.Keywords) == 0 {
			return fmt.Errorf("cluster %q must have a key and keywords", cluster.Key)
		}
	}
	for _, chain := range t.Cascades {
		if len(chain.Triggers) == 0 || len(chain.Effects) == 0 {
			return fmt.Errorf("cascade %q must have triggers and effects", chain.Title)
		}
	}
	return nil
}

// MatchesAny reports whether topic contains any of the keywords,
// case-insensitively.
func MatchesAny(topic string, keywords []string) bool {
	lowered := strings.ToLower(topic)
	for _, keyword := range keywords {
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// TopicKey normalizes a rule title into a stable topic key, e.g.
// "Economic Cascade" -> "economic_cascade".
func TopicKey(title string) string {
	return strings.ReplaceAll(strings.ToLower(title), " ", "_")
}
