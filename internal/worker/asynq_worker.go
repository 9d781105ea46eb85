package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/tourshop/internal/logger"
	"github.com/tourshop/internal/provider"
	"github.com/tourshop/internal/queue"
	"github.com/tourshop/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer asynq task handlers.
type Consumer struct {
	*provider.Container
}

// NewConsumer creates the consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{Container: c}
}

// Register binds every task type to its handler.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCatalogSync, c.handleCatalogSync)
	mux.HandleFunc(queue.TaskBookingConfirmed, c.handleBookingConfirmed)
}

func (c *Consumer) handleCatalogSync(ctx context.Context, task *asynq.Task) error {
	var payload queue.CatalogSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_catalog_sync_unmarshal_failed", "error", err)
		return errors.Join(err, asynq.SkipRetry)
	}
	if c.CatalogSyncService == nil || !c.CatalogSyncService.Configured() {
		logger.Warnw("worker_catalog_sync_skip_not_configured", "trigger", payload.Trigger)
		return nil
	}
	result, err := c.CatalogSyncService.Run(ctx, service.SyncInput{
		ProductIDs: payload.ProductIDs,
		Trigger:    payload.Trigger,
		BrandID:    payload.BrandID,
	})
	if err != nil {
		logger.Warnw("worker_catalog_sync_failed", "trigger", payload.Trigger, "error", err)
		return err
	}
	logger.Infow("worker_catalog_sync_done",
		"run_id", result.RunID,
		"trigger", payload.Trigger,
		"success", result.Success,
		"failed", result.Failed,
	)
	return nil
}

func (c *Consumer) handleBookingConfirmed(ctx context.Context, task *asynq.Task) error {
	var payload queue.BookingConfirmedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_booking_confirmed_unmarshal_failed", "error", err)
		return errors.Join(err, asynq.SkipRetry)
	}
	if payload.SessionID == "" {
		logger.Debugw("worker_booking_confirmed_skip_invalid_payload", "order_type", payload.OrderType)
		return nil
	}
	return c.NotificationService.Dispatch(ctx, payload)
}
