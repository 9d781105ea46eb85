package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tourshop/internal/cache"
	"github.com/tourshop/internal/config"
	"github.com/tourshop/internal/constants"
	"github.com/tourshop/internal/logger"
	"github.com/tourshop/internal/models"
	"github.com/tourshop/internal/queue"
	"github.com/tourshop/internal/repository"
)

const (
	notifyDedupeTTL       = 24 * time.Hour
	defaultNotifyTimeout  = 10 * time.Second
	notifyEventBooking    = "booking.confirmed"
	notifyEventWebshop    = "webshop_order.completed"
	notifyResponsePreview = 512
)

// BookingNotification body posted to the automation webhook.
type BookingNotification struct {
	Event        string               `json:"event"`
	SessionID    string               `json:"session_id"`
	Booking      *models.Booking      `json:"booking,omitempty"`
	WebshopOrder *models.WebshopOrder `json:"webshop_order,omitempty"`
	SentAt       time.Time            `json:"sent_at"`
}

// NotificationService posts confirmed bookings and webshop orders to the
// configured automation webhook.
type NotificationService struct {
	url         string
	httpClient  *http.Client
	bookingRepo repository.BookingRepository
	orderRepo   repository.WebshopOrderRepository
	now         func() time.Time
}

// NewNotificationService creates the service; an empty URL turns Dispatch into a no-op.
func NewNotificationService(cfg config.NotifyConfig, bookingRepo repository.BookingRepository, orderRepo repository.WebshopOrderRepository) *NotificationService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	return &NotificationService{
		url:         strings.TrimSpace(cfg.BookingWebhookURL),
		httpClient:  &http.Client{Timeout: timeout},
		bookingRepo: bookingRepo,
		orderRepo:   orderRepo,
		now:         time.Now,
	}
}

// Enabled reports whether a webhook URL is configured.
func (s *NotificationService) Enabled() bool {
	return s != nil && s.url != ""
}

// Dispatch loads the record named by the payload and posts it. Each session
// is delivered at most once per dedupe window; a failed post releases the
// window so the queue retry can deliver it.
func (s *NotificationService) Dispatch(ctx context.Context, payload queue.BookingConfirmedPayload) error {
	if !s.Enabled() {
		return nil
	}
	body, err := s.buildNotification(payload)
	if err != nil {
		return err
	}
	if body == nil {
		logger.Debugw("booking_notify_skip_missing_record", "session_id", payload.SessionID, "order_type", payload.OrderType)
		return nil
	}

	dedupeKey := "notify:booking:" + strings.TrimSpace(payload.SessionID)
	acquired, err := cache.SetNX(ctx, dedupeKey, "1", notifyDedupeTTL)
	if err != nil {
		logger.Warnw("booking_notify_dedupe_failed", "session_id", payload.SessionID, "error", err)
	} else if !acquired {
		logger.Debugw("booking_notify_skip_duplicate", "session_id", payload.SessionID)
		return nil
	}

	if err := s.post(ctx, body); err != nil {
		_ = cache.Del(ctx, dedupeKey)
		logger.Warnw("booking_notify_failed", "session_id", payload.SessionID, "event", body.Event, "error", err)
		return err
	}
	logger.Infow("booking_notify_sent", "session_id", payload.SessionID, "event", body.Event)
	return nil
}

func (s *NotificationService) buildNotification(payload queue.BookingConfirmedPayload) (*BookingNotification, error) {
	notification := &BookingNotification{SessionID: payload.SessionID, SentAt: s.now().UTC()}
	switch payload.OrderType {
	case constants.OrderTypeWebshop:
		order, err := s.orderRepo.GetByID(payload.WebshopOrderID)
		if err != nil || order == nil {
			return nil, err
		}
		notification.Event = notifyEventWebshop
		notification.WebshopOrder = order
	default:
		booking, err := s.bookingRepo.GetByID(payload.BookingID)
		if err != nil || booking == nil {
			return nil, err
		}
		notification.Event = notifyEventBooking
		notification.Booking = booking
	}
	return notification, nil
}

func (s *NotificationService) post(ctx context.Context, notification *BookingNotification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, notifyResponsePreview))
		return fmt.Errorf("%w: webhook returned HTTP %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(preview)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
