package contracts

import "time"

// GroupBy selects the grouping dimension of an aggregate count query.
type GroupBy string

const (
	GroupByTopicUrgency   GroupBy = "topic_urgency"
	GroupByTopicSentiment GroupBy = "topic_sentiment"
	GroupByLocation       GroupBy = "location"
)

// HourlyCount is one (topic, hour bucket, count) row of the hourly count
// query, ordered by topic then hour.
type HourlyCount struct {
	Topic string    `json:"topic"`
	Hour  time.Time `json:"hour"`
	Count int       `json:"count"`
}

// GroupedRow is one row of a grouped count query. Which fields are set
// depends on the GroupBy dimension: topic+urgency, topic+sentiment, or
// location+urgency (with the distinct topics seen there).
type GroupedRow struct {
	Topic     string   `json:"topic,omitempty"`
	Urgency   Urgency  `json:"urgency,omitempty"`
	Sentiment string   `json:"sentiment,omitempty"`
	Location  string   `json:"location,omitempty"`
	Topics    []string `json:"topics,omitempty"`
	Count     int      `json:"count"`
}
