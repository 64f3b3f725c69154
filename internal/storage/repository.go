package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mitheesha/situational-awareness/internal/contracts"
)

// Repository is the module's only boundary with the event store. The
// detection stages use just the two aggregate count queries; the writers
// exist for the pipeline runner and the query API.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// HourlyCounts returns per-topic mention counts bucketed by hour over the
// trailing window, ordered by topic then hour. Pass topic "" for all topics.
func (r *Repository) HourlyCounts(ctx context.Context, topic string, hours int) ([]contracts.HourlyCount, error) {
	if hours <= 0 {
		hours = 24
	}
	interval := fmt.Sprintf("%d hours", hours)

	rows, err := r.pool.Query(ctx, `
        SELECT topic, DATE_TRUNC('hour', created_at) AS hour, SUM(source_count)::int AS count
        FROM events
        WHERE created_at > NOW() - $1::interval
          AND ($2 = '' OR topic = $2)
        GROUP BY topic, DATE_TRUNC('hour', created_at)
        ORDER BY topic, hour
    `, interval, topic)
	if err != nil {
		return nil, fmt.Errorf("query hourly counts: %w", err)
	}
	defer rows.Close()

	counts := make([]contracts.HourlyCount, 0, 64)
	for rows.Next() {
		var c contracts.HourlyCount
		if err := rows.Scan(&c.Topic, &c.Hour, &c.Count); err != nil {
			return nil, fmt.Errorf("scan hourly count: %w", err)
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}

// GroupedCounts returns mention counts grouped by the requested dimension
// over the trailing window.
func (r *Repository) GroupedCounts(ctx context.Context, groupBy contracts.GroupBy, hours int) ([]contracts.GroupedRow, error) {
	if hours <= 0 {
		hours = 24
	}
	interval := fmt.Sprintf("%d hours", hours)

	switch groupBy {
	case contracts.GroupByTopicUrgency:
		return r.topicUrgencyCounts(ctx, interval)
	case contracts.GroupByTopicSentiment:
		return r.topicSentimentCounts(ctx, interval)
	case contracts.GroupByLocation:
		return r.locationCounts(ctx, interval)
	default:
		return nil, fmt.Errorf("unsupported group by %q", groupBy)
	}
}

func (r *Repository) topicUrgencyCounts(ctx context.Context, interval string) ([]contracts.GroupedRow, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT topic, urgency, SUM(source_count)::int AS count
        FROM events
        WHERE created_at > NOW() - $1::interval
        GROUP BY topic, urgency
        ORDER BY topic, urgency
    `, interval)
	if err != nil {
		return nil, fmt.Errorf("query topic/urgency counts: %w", err)
	}
	defer rows.Close()

	result := make([]contracts.GroupedRow, 0, 32)
	for rows.Next() {
		var row contracts.GroupedRow
		if err := rows.Scan(&row.Topic, &row.Urgency, &row.Count); err != nil {
			return nil, fmt.Errorf("scan topic/urgency count: %w", err)
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

func (r *Repository) topicSentimentCounts(ctx context.Context, interval string) ([]contracts.GroupedRow, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT topic, sentiment, SUM(source_count)::int AS count
        FROM events
        WHERE created_at > NOW() - $1::interval
        GROUP BY topic, sentiment
        ORDER BY topic, sentiment
    `, interval)
	if err != nil {
		return nil, fmt.Errorf("query topic/sentiment counts: %w", err)
	}
	defer rows.Close()

	result := make([]contracts.GroupedRow, 0, 32)
	for rows.Next() {
		var row contracts.GroupedRow
		if err := rows.Scan(&row.Topic, &row.Sentiment, &row.Count); err != nil {
			return nil, fmt.Errorf("scan topic/sentiment count: %w", err)
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

func (r *Repository) locationCounts(ctx context.Context, interval string) ([]contracts.GroupedRow, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT
            location,
            urgency,
            SUM(source_count)::int AS count,
            ARRAY_AGG(DISTINCT topic) AS topics
        FROM events
        WHERE created_at > NOW() - $1::interval
          AND location IS NOT NULL AND location <> ''
          AND urgency IN ('high', 'medium')
        GROUP BY location, urgency
        ORDER BY count DESC, location, urgency
    `, interval)
	if err != nil {
		return nil, fmt.Errorf("query location counts: %w", err)
	}
	defer rows.Close()

	result := make([]contracts.GroupedRow, 0, 16)
	for rows.Next() {
		var row contracts.GroupedRow
		if err := rows.Scan(&row.Location, &row.Urgency, &row.Count, &row.Topics); err != nil {
			return nil, fmt.Errorf("scan location count: %w", err)
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

func (r *Repository) InsertSignal(ctx context.Context, signal contracts.Signal) error {
	details, err := json.Marshal(signalDetails(signal))
	if err != nil {
		return fmt.Errorf("marshal signal details: %w", err)
	}

	if signal.ID == "" {
		signal.ID = uuid.NewString()
	}

	_, err = r.pool.Exec(ctx, `
        INSERT INTO signals
            (id, kind, topic, description, urgency, confidence, source_count, first_seen, last_seen, details)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb)
        ON CONFLICT (id) DO NOTHING
    `, signal.ID, signal.Kind, signal.Topic, signal.Description, signal.Urgency,
		signal.Confidence, signal.SourceCount, signal.FirstSeen, signal.LastSeen, string(details))
	if err != nil {
		return fmt.Errorf("insert signal: %w", err)
	}

	return nil
}

func signalDetails(signal contracts.Signal) any {
	switch {
	case signal.Spike != nil:
		return signal.Spike
	case signal.Trend != nil:
		return signal.Trend
	case signal.Hotspot != nil:
		return signal.Hotspot
	case signal.Sentiment != nil:
		return signal.Sentiment
	default:
		return map[string]any{}
	}
}

func (r *Repository) InsertInsight(ctx context.Context, insight contracts.Insight) error {
	supportingIDs := make([]string, 0, len(insight.SupportingSignals))
	for _, s := range insight.SupportingSignals {
		supportingIDs = append(supportingIDs, s.ID)
	}
	supporting, err := json.Marshal(supportingIDs)
	if err != nil {
		return fmt.Errorf("marshal supporting signals: %w", err)
	}

	if insight.ID == "" {
		insight.ID = uuid.NewString()
	}

	_, err = r.pool.Exec(ctx, `
        INSERT INTO insights
            (id, kind, title, description, severity, affected_areas, recommendation, confidence, supporting, created_at, valid_until)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10, $11)
        ON CONFLICT (id) DO NOTHING
    `, insight.ID, insight.Kind, insight.Title, insight.Description, insight.Severity,
		insight.AffectedAreas, insight.Recommendation, insight.Confidence, string(supporting),
		insight.CreatedAt, insight.ValidUntil)
	if err != nil {
		return fmt.Errorf("insert insight: %w", err)
	}

	return nil
}

// StoredSignal is a persisted signal row without the kind-specific details
// decoded.
type StoredSignal struct {
	ID          string               `json:"id"`
	Kind        contracts.SignalKind `json:"kind"`
	Topic       string               `json:"topic"`
	Description string               `json:"description"`
	Urgency     contracts.Urgency    `json:"urgency"`
	Confidence  float64              `json:"confidence"`
	SourceCount int                  `json:"source_count"`
	FirstSeen   time.Time            `json:"first_seen"`
	LastSeen    time.Time            `json:"last_seen"`
	CreatedAt   time.Time            `json:"created_at"`
}

func (r *Repository) ListSignals(ctx context.Context, urgency string, limit int) ([]StoredSignal, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
        SELECT id, kind, topic, description, urgency, confidence, source_count, first_seen, last_seen, created_at
        FROM signals
        WHERE ($1 = '' OR urgency = $1)
        ORDER BY created_at DESC
        LIMIT $2
    `, urgency, limit)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	signals := make([]StoredSignal, 0, limit)
	for rows.Next() {
		var s StoredSignal
		if err := rows.Scan(
			&s.ID, &s.Kind, &s.Topic, &s.Description, &s.Urgency,
			&s.Confidence, &s.SourceCount, &s.FirstSeen, &s.LastSeen, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		signals = append(signals, s)
	}

	return signals, rows.Err()
}

// StoredInsight is a persisted insight row; supporting signals are kept as
// IDs only.
type StoredInsight struct {
	ID             string                `json:"id"`
	Kind           contracts.InsightKind `json:"kind"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Severity       contracts.Severity    `json:"severity"`
	AffectedAreas  []string              `json:"affected_areas"`
	Recommendation string                `json:"recommendation"`
	Confidence     float64               `json:"confidence"`
	CreatedAt      time.Time             `json:"created_at"`
	ValidUntil     *time.Time            `json:"valid_until,omitempty"`
}

func (r *Repository) ListInsights(ctx context.Context, severity string, limit int) ([]StoredInsight, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
        SELECT id, kind, title, description, severity, affected_areas, recommendation, confidence, created_at, valid_until
        FROM insights
        WHERE ($1 = '' OR severity = $1)
        ORDER BY created_at DESC
        LIMIT $2
    `, severity, limit)
	if err != nil {
		return nil, fmt.Errorf("query insights: %w", err)
	}
	defer rows.Close()

	insights := make([]StoredInsight, 0, limit)
	for rows.Next() {
		var i StoredInsight
		if err := rows.Scan(
			&i.ID, &i.Kind, &i.Title, &i.Description, &i.Severity,
			&i.AffectedAreas, &i.Recommendation, &i.Confidence, &i.CreatedAt, &i.ValidUntil,
		); err != nil {
			return nil, fmt.Errorf("scan insight: %w", err)
		}
		insights = append(insights, i)
	}

	return insights, rows.Err()
}

// Summary is the grouped results overview the query API serves.
type Summary struct {
	SignalsByUrgency   map[string]int `json:"signals_by_urgency"`
	InsightsBySeverity map[string]int `json:"insights_by_severity"`
	LatestRunAt        *time.Time     `json:"latest_run_at,omitempty"`
}

func (r *Repository) ResultsSummary(ctx context.Context) (Summary, error) {
	summary := Summary{
		SignalsByUrgency:   make(map[string]int),
		InsightsBySeverity: make(map[string]int),
	}

	rows, err := r.pool.Query(ctx, `SELECT urgency, COUNT(*) FROM signals GROUP BY urgency`)
	if err != nil {
		return Summary{}, fmt.Errorf("query signal summary: %w", err)
	}
	for rows.Next() {
		var urgency string
		var count int
		if err := rows.Scan(&urgency, &count); err != nil {
			rows.Close()
			return Summary{}, fmt.Errorf("scan signal summary: %w", err)
		}
		summary.SignalsByUrgency[urgency] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Summary{}, err
	}

	rows, err = r.pool.Query(ctx, `SELECT severity, COUNT(*) FROM insights GROUP BY severity`)
	if err != nil {
		return Summary{}, fmt.Errorf("query insight summary: %w", err)
	}
	for rows.Next() {
		var severity string
		var count int
		if err := rows.Scan(&severity, &count); err != nil {
			rows.Close()
			return Summary{}, fmt.Errorf("scan insight summary: %w", err)
		}
		summary.InsightsBySeverity[severity] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Summary{}, err
	}

	var latest *time.Time
	if err := r.pool.QueryRow(ctx, `SELECT MAX(created_at) FROM signals`).Scan(&latest); err != nil {
		return Summary{}, fmt.Errorf("query latest run: %w", err)
	}
	summary.LatestRunAt = latest

	return summary, nil
}
