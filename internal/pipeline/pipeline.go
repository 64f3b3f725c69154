// Package pipeline runs the full analysis cycle: aggregate raw events into a
// snapshot, detect signals, track velocity, rank by priority, compute risk
// indices, raise warnings, and generate insights. Only the aggregation stage
// touches the database; everything after it is pure computation over the
// snapshot.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/Mitheesha/situational-awareness/internal/aggregate"
	"github.com/Mitheesha/situational-awareness/internal/config"
	"github.com/Mitheesha/situational-awareness/internal/contracts"
	"github.com/Mitheesha/situational-awareness/internal/detect"
	"github.com/Mitheesha/situational-awareness/internal/indices"
	"github.com/Mitheesha/situational-awareness/internal/insight"
	"github.com/Mitheesha/situational-awareness/internal/mq"
	"github.com/Mitheesha/situational-awareness/internal/rules"
	"github.com/Mitheesha/situational-awareness/internal/score"
	"github.com/Mitheesha/situational-awareness/internal/velocity"
	"github.com/Mitheesha/situational-awareness/internal/warning"
)

// ResultStore persists analysis outputs. A nil store disables persistence.
type ResultStore interface {
	InsertSignal(ctx context.Context, signal contracts.Signal) error
	InsertInsight(ctx context.Context, insight contracts.Insight) error
}

// Result is the complete output of one analysis run.
type Result struct {
	TakenAt     time.Time                                           `json:"taken_at"`
	WindowHours int                                                 `json:"window_hours"`
	Signals     []contracts.ScoredSignal                            `json:"signals"`
	Velocities  []contracts.VelocityRecord                          `json:"velocities"`
	Indices     map[contracts.RiskCategory]contracts.CompositeIndex `json:"indices"`
	Overall     contracts.OverallRisk                               `json:"overall"`
	Warnings    []contracts.Warning                                 `json:"warnings"`
	Insights    []contracts.Insight                                 `json:"insights"`
}

// Deps collects the runner's collaborators. Results and Writer may be nil,
// in which case persistence and publication are skipped.
type Deps struct {
	Log     *logrus.Entry
	Source  aggregate.Querier
	Results ResultStore
	Writer  *kafka.Writer
	Tables  rules.Tables
	Config  config.Config
	Metrics *Metrics
}

type Runner struct {
	log        *logrus.Entry
	aggregator *aggregate.Aggregator
	detector   *detect.Detector
	tracker    *velocity.Tracker
	scorer     *score.Scorer
	calculator *indices.Calculator
	warnings   *warning.Engine
	insights   *insight.Generator
	results    ResultStore
	writer     *kafka.Writer
	topN       int
	metrics    *Metrics
}

func New(deps Deps) (*Runner, error) {
	// The velocity tracker compares the older and newer halves of the
	// window, so it needs twice the velocity window of history.
	windowHours := deps.Config.LookbackHours
	if 2*deps.Config.VelocityWindowHours > windowHours {
		windowHours = 2 * deps.Config.VelocityWindowHours
	}

	aggregator, err := aggregate.New(deps.Source, windowHours)
	if err != nil {
		return nil, fmt.Errorf("build aggregator: %w", err)
	}

	detectCfg := detect.DefaultConfig()
	detectCfg.SpikeMultiplier = deps.Config.SpikeMultiplier
	detectCfg.TrendRatio = deps.Config.TrendRatio
	detector, err := detect.New(detectCfg)
	if err != nil {
		return nil, fmt.Errorf("build detector: %w", err)
	}

	tracker, err := velocity.New(velocity.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("build velocity tracker: %w", err)
	}

	scorer, err := score.New(score.DefaultWeights())
	if err != nil {
		return nil, fmt.Errorf("build scorer: %w", err)
	}

	calculator, err := indices.New(deps.Tables, indices.DefaultCategoryWeights())
	if err != nil {
		return nil, fmt.Errorf("build index calculator: %w", err)
	}

	warner, err := warning.New(deps.Tables, warning.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("build warning engine: %w", err)
	}

	generator, err := insight.New(deps.Tables)
	if err != nil {
		return nil, fmt.Errorf("build insight generator: %w", err)
	}

	log := deps.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Runner{
		log:        log,
		aggregator: aggregator,
		detector:   detector,
		tracker:    tracker,
		scorer:     scorer,
		calculator: calculator,
		warnings:   warner,
		insights:   generator,
		results:    deps.Results,
		writer:     deps.Writer,
		topN:       deps.Config.PriorityTopN,
		metrics:    deps.Metrics,
	}, nil
}

// Run executes one analysis cycle. A stage failure aborts the run; signals
// detected before the failure are discarded rather than partially published.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	started := time.Now()

	snap, err := r.aggregator.Collect(ctx)
	if err != nil {
		r.observeRun(started, "error")
		return nil, fmt.Errorf("collect snapshot: %w", err)
	}

	signals := r.detector.DetectAll(snap)
	velocities := r.tracker.Track(snap)

	ranked := r.scorer.Rank(signals)
	top := r.scorer.Top(signals, r.topN)

	result := &Result{
		TakenAt:     snap.TakenAt,
		WindowHours: snap.WindowHours,
		Signals:     ranked,
		Velocities:  velocities.Records(),
		Indices:     r.calculator.Indices(signals),
		Overall:     r.calculator.Overall(signals),
		Warnings:    r.warnings.Generate(signals, velocities),
		Insights:    r.insights.Generate(top),
	}

	if err := r.persist(ctx, signals, result.Insights); err != nil {
		r.observeRun(started, "error")
		return nil, err
	}
	if err := r.publish(ctx, result.Warnings); err != nil {
		r.observeRun(started, "error")
		return nil, err
	}

	r.observeRun(started, "ok")
	if r.metrics != nil {
		r.metrics.SignalsDetected.Set(float64(len(signals)))
		r.metrics.WarningsIssued.Add(float64(len(result.Warnings)))
	}

	r.log.WithFields(logrus.Fields{
		"signals":    len(signals),
		"warnings":   len(result.Warnings),
		"insights":   len(result.Insights),
		"risk_score": result.Overall.Score,
		"risk_level": result.Overall.Level,
		"duration":   time.Since(started).String(),
	}).Info("analysis run complete")

	return result, nil
}

func (r *Runner) persist(ctx context.Context, signals []contracts.Signal, insights []contracts.Insight) error {
	if r.results == nil {
		return nil
	}
	for _, signal := range signals {
		if err := r.results.InsertSignal(ctx, signal); err != nil {
			return fmt.Errorf("persist signal %s/%s: %w", signal.Kind, signal.Topic, err)
		}
	}
	for _, ins := range insights {
		if err := r.results.InsertInsight(ctx, ins); err != nil {
			return fmt.Errorf("persist insight %s: %w", ins.ID, err)
		}
	}
	return nil
}

func (r *Runner) publish(ctx context.Context, warnings []contracts.Warning) error {
	if r.writer == nil {
		return nil
	}
	for _, w := range warnings {
		key := w.TopicKey
		if key == "" {
			key = string(w.Kind)
		}
		if err := mq.PublishJSON(ctx, r.writer, key, w); err != nil {
			return fmt.Errorf("publish warning %s: %w", key, err)
		}
	}
	return nil
}

func (r *Runner) observeRun(started time.Time, status string) {
	if r.metrics == nil {
		return
	}
	r.metrics.Runs.WithLabelValues(status).Inc()
	r.metrics.RunDuration.Observe(time.Since(started).Seconds())
}
