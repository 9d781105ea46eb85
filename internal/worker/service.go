package worker

import (
	"context"
	"errors"
	"time"

	"github.com/tourshop/internal/config"
	"github.com/tourshop/internal/constants"
	"github.com/tourshop/internal/logger"
	"github.com/tourshop/internal/queue"
	"github.com/tourshop/internal/service"

	"github.com/hibiken/asynq"
)

const defaultPendingCleanupInterval = 10 * time.Minute

// Service runs the asynq server, when the queue is enabled, plus the
// pending-record cleanup and scheduled catalog sync loops.
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer

	cleanupInterval time.Duration
	syncInterval    time.Duration
	now             func() time.Time
}

// NewService creates the worker.
func NewService(queueCfg *config.QueueConfig, workerCfg config.WorkerConfig, consumer *Consumer) (*Service, error) {
	if consumer == nil || consumer.Container == nil {
		return nil, errors.New("consumer is nil")
	}
	s := &Service{
		name:            "worker",
		consumer:        consumer,
		cleanupInterval: time.Duration(workerCfg.PendingCleanupIntervalSeconds) * time.Second,
		syncInterval:    time.Duration(workerCfg.CatalogSyncIntervalMinutes) * time.Minute,
		now:             time.Now,
	}
	if s.cleanupInterval <= 0 {
		s.cleanupInterval = defaultPendingCleanupInterval
	}
	if queueCfg != nil && queueCfg.Enabled {
		opt, serverCfg := queue.BuildServerConfig(queueCfg)
		s.server = asynq.NewServer(opt, serverCfg)
		s.mux = asynq.NewServeMux()
		consumer.Register(s.mux)
	} else {
		logger.Warnw("worker_queue_disabled", "loops_only", true)
	}
	return s, nil
}

// Name service name
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start runs until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.consumer == nil {
		return errors.New("worker not initialized")
	}
	if s.server != nil {
		if err := s.server.Start(s.mux); err != nil {
			return err
		}
	}
	if s.consumer.BookingService != nil {
		go s.runLoop(ctx, "pending_cleanup", s.cleanupInterval, s.expireOrphans)
	}
	if s.syncInterval > 0 && s.consumer.CatalogSyncService.Configured() {
		go s.runLoop(ctx, "catalog_sync", s.syncInterval, s.scheduleCatalogSync)
	}
	<-ctx.Done()
	return nil
}

// Stop shuts the asynq server down.
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	return nil
}

func (s *Service) runLoop(ctx context.Context, name string, interval time.Duration, fn func(context.Context)) {
	logger.Infow("worker_loop_start", "loop", name, "interval", interval.String())
	fn(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

func (s *Service) expireOrphans(ctx context.Context) {
	if _, err := s.consumer.BookingService.ExpireOrphans(ctx, s.now()); err != nil && ctx.Err() == nil {
		logger.Warnw("worker_pending_cleanup_failed", "error", err)
	}
}

func (s *Service) scheduleCatalogSync(ctx context.Context) {
	_, err := s.consumer.CatalogSyncService.Trigger(ctx, service.SyncInput{Trigger: constants.SyncTriggerSchedule})
	switch {
	case err == nil:
	case errors.Is(err, service.ErrSyncRunning):
		logger.Debugw("worker_catalog_sync_already_running")
	case ctx.Err() != nil:
	default:
		logger.Warnw("worker_catalog_sync_schedule_failed", "error", err)
	}
}
