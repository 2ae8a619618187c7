package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/amaumene/cinesync/internal/controllers"
	"github.com/amaumene/cinesync/internal/errs"
	"github.com/amaumene/cinesync/internal/services/tmdb"
	"github.com/cenkalti/backoff/v4"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Syncer runs one TMDB sync
type Syncer interface {
	SyncPopular(ctx context.Context, creds tmdb.Credentials, pages int) (*controllers.SyncResult, error)
}

// Options controls the background sync jobs
type Options struct {
	Credentials    tmdb.Credentials
	Pages          int
	OnStartup      bool
	Schedule       string // cron expression, empty disables the periodic job
	StartupRetries uint64
}

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron       *cron.Cron
	syncer     Syncer
	opts       Options
	logger     *logrus.Logger
	newBackOff func() backoff.BackOff

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a new scheduler
func NewScheduler(syncer Syncer, opts Options, logger *logrus.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.PrintfLogger(logger)),
			cron.SkipIfStillRunning(cron.PrintfLogger(logger)),
		)),
		syncer: syncer,
		opts:   opts,
		logger: logger,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 5 * time.Second
			b.MaxElapsedTime = 5 * time.Minute
			return b
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start registers the periodic sync and launches the startup sync.
// Neither ever stops the process: failures are logged.
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	if s.opts.Schedule != "" {
		_, err := s.cron.AddFunc(s.opts.Schedule, func() {
			s.runSync()
		})
		if err != nil {
			return fmt.Errorf("failed to add sync job: %w", err)
		}
		s.logger.WithField("schedule", s.opts.Schedule).Info("Periodic TMDB sync scheduled")
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	if s.opts.OnStartup {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runStartupSync()
		}()
	}

	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()
}

// runSync executes the sync job
func (s *Scheduler) runSync() {
	s.logger.Info("Running scheduled sync")

	result, err := s.syncer.SyncPopular(s.ctx, s.opts.Credentials, s.opts.Pages)
	if err != nil {
		s.logger.WithError(err).Error("Sync job failed")
		return
	}
	s.logger.WithField("synced", result.Synced).Info(result.Message)
}

// runStartupSync retries transient failures with exponential backoff.
// Missing credentials and invalid input are not retried.
func (s *Scheduler) runStartupSync() {
	s.logger.Info("Running startup sync")

	var result *controllers.SyncResult
	operation := func() error {
		var err error
		result, err = s.syncer.SyncPopular(s.ctx, s.opts.Credentials, s.opts.Pages)
		if err != nil && isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		s.logger.WithError(err).WithField("retry_in", wait).Warn("Startup sync failed, retrying")
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), s.opts.StartupRetries), s.ctx)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		s.logger.WithError(err).Error("Startup sync failed, continuing without it")
		return
	}
	s.logger.WithField("synced", result.Synced).Info(result.Message)
}

func isPermanent(err error) bool {
	var validationErr *errs.ValidationError
	return errs.IsConfiguration(err) || errors.As(err, &validationErr)
}
