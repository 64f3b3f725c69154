package contracts

import "time"

type TrendBand string

const (
	BandAccelerating TrendBand = "ACCELERATING"
	BandGrowing      TrendBand = "GROWING"
	BandStable       TrendBand = "STABLE"
	BandDeclining    TrendBand = "DECLINING"
	BandFading       TrendBand = "FADING"
)

// VelocityRecord describes the rate of change of one topic's mention volume
// in mentions per hour. Band is a pure function of Rate.
type VelocityRecord struct {
	Topic       string    `json:"topic"`
	Rate        float64   `json:"rate"`
	Band        TrendBand `json:"trend_band"`
	Description string    `json:"description"`
	RecentAvg   float64   `json:"recent_avg"`
	OlderAvg    float64   `json:"older_avg"`
	Momentum    float64   `json:"momentum"`
	SampleCount int       `json:"sample_count"`
	LatestCount int       `json:"latest_count"`
}

type RiskCategory string

const (
	CategoryEconomicStress  RiskCategory = "economic_stress"
	CategoryOperationalRisk RiskCategory = "operational_risk"
	CategoryWeatherImpact   RiskCategory = "weather_impact"
	CategorySocialUnrest    RiskCategory = "social_unrest"
)

// Categories lists the four composite index categories in reporting order.
func Categories() []RiskCategory {
	return []RiskCategory{
		CategoryEconomicStress,
		CategoryOperationalRisk,
		CategoryWeatherImpact,
		CategorySocialUnrest,
	}
}

type RiskLevel string

const (
	LevelLow      RiskLevel = "LOW"
	LevelMedium   RiskLevel = "MEDIUM"
	LevelHigh     RiskLevel = "HIGH"
	LevelCritical RiskLevel = "CRITICAL"
)

// LevelForScore maps a 0-100 score onto a risk level with the fixed
// thresholds used by every index: >=70 CRITICAL, >=50 HIGH, >=30 MEDIUM.
func LevelForScore(score float64) RiskLevel {
	switch {
	case score >= 70:
		return LevelCritical
	case score >= 50:
		return LevelHigh
	case score >= 30:
		return LevelMedium
	default:
		return LevelLow
	}
}

// CompositeIndex is a 0-100 aggregate of the signals contributing to one
// risk category.
type CompositeIndex struct {
	Category    RiskCategory `json:"category"`
	Score       float64      `json:"score"`
	Level       RiskLevel    `json:"level"`
	SignalCount int          `json:"contributing_signal_count"`
	Description string       `json:"description"`
	TopTopics   []string     `json:"top_topics"`
}

// OverallRisk is the fixed-weight combination of the four category indices.
type OverallRisk struct {
	Score             float64                  `json:"overall_score"`
	Level             RiskLevel                `json:"level"`
	RecommendedAction string                   `json:"recommended_action"`
	ComponentScores   map[RiskCategory]float64 `json:"component_scores"`
}

type WarningKind string

const (
	WarningAcceleration WarningKind = "acceleration"
	WarningCorrelation  WarningKind = "correlation"
	WarningGeographic   WarningKind = "geographic"
	WarningPersistence  WarningKind = "persistence"
	WarningCascade      WarningKind = "cascade"
)

type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityLow      Priority = "LOW"
)

// Rank orders priorities from most urgent (0) to least (3); unknown values
// sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// WarningDetails carries the rule-family-specific context behind a warning.
type WarningDetails struct {
	Velocity        float64  `json:"velocity,omitempty"`
	CurrentRate     float64  `json:"current_rate,omitempty"`
	PredictedRate   float64  `json:"predicted_rate,omitempty"`
	SignalCount     int      `json:"signal_count,omitempty"`
	Topics          []string `json:"topics,omitempty"`
	Location        string   `json:"location,omitempty"`
	HighUrgencyHits int      `json:"high_urgency_count,omitempty"`
	TotalMentions   int      `json:"total_mentions,omitempty"`
	Triggers        []string `json:"triggers,omitempty"`
	Effects         []string `json:"effects,omitempty"`
}

// Warning is a prioritized, rule-derived alert. Warnings are regenerated on
// every pipeline run and never persisted here.
type Warning struct {
	Kind              WarningKind    `json:"kind"`
	Priority          Priority       `json:"priority"`
	TopicKey          string         `json:"topic_key"`
	Label             string         `json:"label"`
	Title             string         `json:"title"`
	Message           string         `json:"message"`
	Prediction        string         `json:"prediction"`
	Confidence        float64        `json:"confidence"`
	RecommendedAction string         `json:"recommended_action"`
	TimeHorizon       string         `json:"time_horizon"`
	CurrentUrgency    Urgency        `json:"current_urgency"`
	Details           WarningDetails `json:"details"`
}

type InsightKind string

const (
	InsightOperationalRisk      InsightKind = "operational_risk"
	InsightSituationalAwareness InsightKind = "situational_awareness"
	InsightEconomicPressure     InsightKind = "economic_pressure"
	InsightInfrastructureStress InsightKind = "infrastructure_stress"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Insight is a narrative, recommendation-bearing output for a human
// decision-maker.
type Insight struct {
	ID                string      `json:"id"`
	Kind              InsightKind `json:"kind"`
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	Severity          Severity    `json:"severity"`
	AffectedAreas     []string    `json:"affected_areas"`
	Recommendation    string      `json:"recommendation"`
	SupportingSignals []Signal    `json:"supporting_signals"`
	Confidence        float64     `json:"confidence"`
	CreatedAt         time.Time   `json:"created_at"`
	ValidUntil        *time.Time  `json:"valid_until,omitempty"`
}
