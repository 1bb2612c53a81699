// Package scheduler runs periodic retraining of the relevance predictor.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler triggers the retraining job on a cron schedule
type Scheduler struct {
	cron     *cron.Cron
	job      *RetrainJob
	schedule string
	timeout  time.Duration
	log      zerolog.Logger
}

// NewScheduler creates a scheduler. Each run is bounded by timeout.
func NewScheduler(job *RetrainJob, schedule string, timeout time.Duration, log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	cl := cronLogger{log: log}
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		job:      job,
		schedule: schedule,
		timeout:  timeout,
		log:      log,
	}
}

// Start registers the retraining job and starts the cron loop
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runRetrain); err != nil {
		return fmt.Errorf("invalid retrain schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.log.Info().Str("schedule", s.schedule).Msg("Retraining scheduled")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn().Msg("Timed out waiting for retraining to finish")
	}
}

func (s *Scheduler) runRetrain() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.job.Run(ctx); err != nil {
		s.log.Error().Err(err).Msg("Scheduled retraining failed")
	}
}

// cronLogger routes cron's internal logging to zerolog
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
