package public

import (
	"errors"
	"io"
	"time"

	"github.com/tourshop/internal/http/response"
	"github.com/tourshop/internal/payment/stripe"
	"github.com/tourshop/internal/service"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 20

var webhookErrorRules = []mappedHandlerError{
	{Target: service.ErrPendingNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
	{Target: service.ErrGiftCardConflict, Code: response.CodeConflict, Key: "error.gift_card_conflict"},
}

// StripeWebhook verifies the signature and promotes paid checkout sessions.
// Non-2xx replies make the processor retry.
func (h *Handler) StripeWebhook(c *gin.Context) {
	log := requestLog(c)
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	event, err := h.StripeClient.VerifyWebhook(c.GetHeader("Stripe-Signature"), body, time.Now())
	if err != nil {
		log.Warnw("stripe_webhook_verify_failed", "client_ip", c.ClientIP(), "body_size", len(body), "error", err)
		if errors.Is(err, stripe.ErrConfigInvalid) {
			respondError(c, response.CodeInternal, "error.internal_error", err)
			return
		}
		respondError(c, response.CodeBadRequest, "error.webhook_signature", nil)
		return
	}
	log.Infow("stripe_webhook_received", "event_id", event.ID, "event_type", event.Type)

	result, err := h.BookingService.HandleEvent(c.Request.Context(), event)
	if err != nil {
		log.Warnw("stripe_webhook_handle_failed", "event_id", event.ID, "event_type", event.Type, "error", err)
		respondWithMappedError(c, err, webhookErrorRules, response.CodeInternal, "error.internal_error")
		return
	}
	reply := gin.H{"received": true, "event_type": event.Type}
	if result != nil {
		reply["order_type"] = result.OrderType
		reply["already_processed"] = result.AlreadyProcessed
		reply["ignored"] = result.Ignored
		reply["merged_into_slot"] = result.MergedIntoSlot
	}
	response.Success(c, reply)
}
