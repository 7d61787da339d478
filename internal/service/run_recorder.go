package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/leave-planner-api/internal/models"
	"github.com/noah-isme/leave-planner-api/pkg/jobs"
)

const runJobType = "planner.run"

type runWriter interface {
	Create(ctx context.Context, run *models.PlannerRun) error
}

// RecorderConfig sizes the background queue.
type RecorderConfig struct {
	Workers    int
	Retries    int
	RetryDelay time.Duration
}

// RunRecorder persists planner runs in the background so history writes
// never delay a response.
type RunRecorder struct {
	repo    runWriter
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
}

// NewRunRecorder constructs a recorder. Call Start before Record.
func NewRunRecorder(repo runWriter, cfg RecorderConfig, metrics *MetricsService, logger *zap.Logger) *RunRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &RunRecorder{repo: repo, metrics: metrics, logger: logger}
	r.queue = jobs.NewQueue("planner-runs", r.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return r
}

// Start launches the workers.
func (r *RunRecorder) Start(ctx context.Context) {
	r.queue.Start(ctx)
}

// Stop flushes buffered runs and stops the workers.
func (r *RunRecorder) Stop() {
	r.queue.Stop()
}

// Stats reports the recorder queue counters. A nil recorder reports zeros.
func (r *RunRecorder) Stats() jobs.Stats {
	if r == nil {
		return jobs.Stats{}
	}
	return r.queue.Stats()
}

// Record queues run for persistence. A full queue drops the run.
func (r *RunRecorder) Record(run models.PlannerRun) {
	if r == nil || r.repo == nil {
		return
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if err := r.queue.TryEnqueue(jobs.Job{ID: run.ID, Type: runJobType, Payload: run}); err != nil {
		r.logger.Warn("planner run not recorded", zap.String("run_id", run.ID), zap.Error(err))
		r.metrics.RecordRunPersisted(err)
	}
}

func (r *RunRecorder) handle(ctx context.Context, job jobs.Job) error {
	run, ok := job.Payload.(models.PlannerRun)
	if !ok {
		return fmt.Errorf("unexpected payload %T", job.Payload)
	}
	err := r.repo.Create(ctx, &run)
	r.metrics.RecordRunPersisted(err)
	return err
}
