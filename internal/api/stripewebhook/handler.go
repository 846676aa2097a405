package stripewebhooks

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"exam-portal/internal/api/shared"
	"exam-portal/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	stripeapi "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
)

const maxBodyBytes = 65536

// Recorder counts processed events by type and outcome.
type Recorder interface {
	RecordWebhook(eventType, outcome string)
}

type Handler struct {
	deps     *shared.Deps
	stripe   stripe.Gateway
	secret   string
	recorder Recorder
}

func NewHandler(d *shared.Deps, gw stripe.Gateway, endpointSecret string, rec Recorder) *Handler {
	return &Handler{deps: d, stripe: gw, secret: endpointSecret, recorder: rec}
}

func (h *Handler) record(eventType, outcome string) {
	if h.recorder != nil {
		h.recorder.RecordWebhook(eventType, outcome)
	}
}

// Handle serves POST /webhook.
func (h *Handler) Handle(c *gin.Context) {
	if h.secret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "STRIPE_WEBHOOK_SECRET not configured"})
		return
	}
	ctx := c.Request.Context()

	payload, err := readStripeBody(c, maxBodyBytes)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		h.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		h.deps.Log.WarnContext(ctx, "stripe signature verification failed", slog.Any("error", err))
		h.record("unknown", "bad_signature")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	eventType := string(event.Type)
	var outcome string
	switch eventType {
	case "checkout.session.completed":
		var session stripeapi.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			h.record(eventType, "bad_payload")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse session"})
			return
		}
		outcome, err = h.checkoutCompleted(ctx, &session)

	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripeapi.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			h.record(eventType, "bad_payload")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse subscription"})
			return
		}
		outcome, err = h.applySubscription(ctx, &sub, "")

	default:
		// acknowledged so Stripe stops retrying
		h.record(eventType, "ignored")
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if err != nil {
		h.deps.Log.ErrorContext(ctx, "stripe webhook failed",
			slog.String("event_id", event.ID), slog.String("type", eventType), slog.Any("error", err))
		h.record(eventType, "error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
		return
	}

	h.deps.Log.InfoContext(ctx, "stripe webhook processed",
		slog.String("event_id", event.ID), slog.String("type", eventType), slog.String("outcome", outcome))
	h.record(eventType, outcome)
	c.JSON(http.StatusOK, gin.H{"status": "received", "outcome": outcome})
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
