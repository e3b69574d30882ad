// Package scheduler runs the periodic booking sync and digest jobs.
package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	service     *Service
	serviceOnce sync.Once
	serviceErr  error
)

var (
	ErrNotInitialized = errors.New("scheduler not initialized")
	ErrEmptyJobName   = errors.New("job name is required")
	ErrEmptyCronExpr  = errors.New("cron expression is required")
	ErrNilTask        = errors.New("job task is required")
)

// Task is one run of a scheduled job. ctx carries the run's logger and is
// cancelled on timeout or when the scheduler stops.
type Task func(ctx context.Context)

// Service wraps a gocron scheduler. Jobs run under a base context that Stop
// cancels, so in-flight syncs and digests abort instead of blocking shutdown.
type Service struct {
	scheduler gocron.Scheduler
	logger    zerolog.Logger
	baseCtx   context.Context
	cancel    context.CancelFunc
	stopOnce  sync.Once
	stopErr   error
}

// Init initializes the scheduler singleton.
func Init() error {
	serviceOnce.Do(func() {
		svc, err := newService()
		if err != nil {
			serviceErr = err
			return
		}
		service = svc
		svc.logger.Info().Msg("Scheduler initialized")
	})
	return serviceErr
}

func newService() (*Service, error) {
	logger := log.With().Str("component", "scheduler").Logger()
	sched, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					logger.Error().
						Str("job_id", jobID.String()).
						Str("job_name", jobName).
						Interface("panic", recoverData).
						Msg("Scheduler job panicked")
				}),
			),
		),
	)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{scheduler: sched, logger: logger, baseCtx: ctx, cancel: cancel}, nil
}

// ServiceInstance returns the initialized scheduler singleton.
func ServiceInstance() (*Service, error) {
	if service == nil && serviceErr == nil {
		return nil, ErrNotInitialized
	}
	return service, serviceErr
}

// Start begins running scheduled jobs on the singleton scheduler.
func Start() error {
	svc, err := ServiceInstance()
	if err != nil {
		return err
	}
	svc.Start()
	return nil
}

// Stop shuts down the singleton scheduler.
func Stop() error {
	svc, err := ServiceInstance()
	if err != nil {
		return err
	}
	return svc.Stop()
}

// AddJob registers a cron job with the singleton scheduler. A zero timeout
// leaves runs bounded only by Stop.
func AddJob(name, cronExpr string, timeout time.Duration, task Task, opts ...gocron.JobOption) (gocron.Job, error) {
	svc, err := ServiceInstance()
	if err != nil {
		return nil, err
	}
	return svc.AddJob(name, cronExpr, timeout, task, opts...)
}

// Start begins running scheduled jobs.
func (s *Service) Start() {
	if s == nil {
		log.Error().Str("component", "scheduler").Msg("Scheduler start requested before initialization")
		return
	}
	s.logger.Info().Int("jobs", len(s.scheduler.Jobs())).Msg("Scheduler starting")
	s.scheduler.Start()
}

// Stop cancels running jobs and shuts the scheduler down.
func (s *Service) Stop() error {
	if s == nil {
		return ErrNotInitialized
	}
	s.stopOnce.Do(func() {
		s.logger.Info().Msg("Scheduler stopping")
		s.cancel()
		s.stopErr = s.scheduler.Shutdown()
	})
	return s.stopErr
}

// AddJob registers a cron job with the scheduler.
func (s *Service) AddJob(name, cronExpr string, timeout time.Duration, task Task, opts ...gocron.JobOption) (gocron.Job, error) {
	if s == nil {
		return nil, ErrNotInitialized
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyJobName
	}
	if strings.TrimSpace(cronExpr) == "" {
		return nil, ErrEmptyCronExpr
	}
	if task == nil {
		return nil, ErrNilTask
	}
	jobLogger := s.logger.With().Str("job_name", name).Str("cron", cronExpr).Logger()

	jobOpts := append([]gocron.JobOption{gocron.WithName(name)}, opts...)
	job, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(s.wrapTask(name, timeout, task)),
		jobOpts...,
	)
	if err != nil {
		jobLogger.Error().Err(err).Msg("Failed to register scheduler job")
		return nil, err
	}
	jobLogger.Info().Dur("timeout", timeout).Msg("Scheduler job registered")
	return job, nil
}

// wrapTask gives each run its own context, logger and run ID.
func (s *Service) wrapTask(name string, timeout time.Duration, task Task) func() {
	return func() {
		runLogger := s.logger.With().
			Str("job_name", name).
			Str("run_id", uuid.NewString()).
			Logger()

		ctx, cancel := s.baseCtx, context.CancelFunc(func() {})
		if timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, timeout)
		}
		defer cancel()
		ctx = runLogger.WithContext(ctx)

		if err := ctx.Err(); err != nil {
			runLogger.Debug().Err(err).Msg("Scheduler job skipped: scheduler stopping")
			return
		}

		started := time.Now()
		runLogger.Debug().Msg("Scheduler job started")
		task(ctx)

		event := runLogger.Debug()
		if err := ctx.Err(); err != nil {
			event = runLogger.Warn().Err(err)
		}
		event.Dur("duration", time.Since(started)).Msg("Scheduler job completed")
	}
}
