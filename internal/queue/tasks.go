package queue

import (
	"encoding/json"

	"github.com/tourshop/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCatalogSync mirrors payment processor products into the inventory platform
	TaskCatalogSync = constants.TaskCatalogSync
	// TaskBookingConfirmed posts a confirmed booking or webshop order to the automation webhook
	TaskBookingConfirmed = constants.TaskBookingConfirmed
)

// CatalogSyncPayload catalog sync task payload
type CatalogSyncPayload struct {
	ProductIDs []string `json:"product_ids,omitempty"`
	Trigger    string   `json:"trigger"`
	BrandID    string   `json:"brand_id,omitempty"`
}

// BookingConfirmedPayload confirmation notify payload
type BookingConfirmedPayload struct {
	OrderType      string `json:"order_type"` // tour / webshop
	BookingID      uint   `json:"booking_id,omitempty"`
	WebshopOrderID string `json:"webshop_order_id,omitempty"`
	SessionID      string `json:"session_id"`
}

// NewCatalogSyncTask creates a catalog sync task.
func NewCatalogSyncTask(payload CatalogSyncPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogSync, body), nil
}

// NewBookingConfirmedTask creates a confirmation notify task.
func NewBookingConfirmedTask(payload BookingConfirmedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBookingConfirmed, body), nil
}
