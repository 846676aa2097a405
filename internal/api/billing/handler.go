package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"exam-portal/internal/api/shared"
	"exam-portal/internal/domain/exams"
	"exam-portal/internal/domain/plans"
	"exam-portal/internal/domain/students"
	"exam-portal/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	deps   *shared.Deps
	stripe stripe.Gateway
	appURL string
}

// NewHandler returns billing handlers. A nil gateway means Stripe is not
// configured and every endpoint that needs it answers 503.
func NewHandler(d *shared.Deps, gw stripe.Gateway, appURL string) *Handler {
	return &Handler{deps: d, stripe: gw, appURL: strings.TrimRight(appURL, "/")}
}

func (h *Handler) configured(c *gin.Context) bool {
	if h.stripe == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Stripe not configured"})
		return false
	}
	return true
}

// ensureCustomer returns the link's Stripe customer, creating and storing one
// on first use.
func (h *Handler) ensureCustomer(ctx context.Context, linkID string) (string, error) {
	var link students.Link
	if err := h.deps.DB.WithContext(ctx).Where("id = ?", linkID).First(&link).Error; err != nil {
		return "", fmt.Errorf("load link: %w", err)
	}
	if link.StripeCustomerID != nil && *link.StripeCustomerID != "" {
		return *link.StripeCustomerID, nil
	}

	customerID, err := h.stripe.CreateCustomer(ctx, link.Correo, link.ID)
	if err != nil {
		return "", err
	}
	if err := h.deps.DB.WithContext(ctx).Model(&students.Link{}).
		Where("id = ?", link.ID).
		Update("stripe_customer_id", customerID).Error; err != nil {
		return "", fmt.Errorf("save stripe customer: %w", err)
	}
	return customerID, nil
}

type proCheckoutRequest struct {
	PriceID string `json:"price_id" binding:"required,nonblank"`
}

// CheckoutPro serves POST /checkout/pro.
func (h *Handler) CheckoutPro(c *gin.Context) {
	var body proCheckoutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid price_id"})
		return
	}
	if !h.configured(c) {
		return
	}
	ctx := c.Request.Context()

	linkID, ok := h.deps.LinkID(c)
	if !ok {
		return
	}

	var plan plans.Plan
	err := h.deps.DB.WithContext(ctx).Where("stripe_price_id = ?", body.PriceID).First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Plan not found (run /admin/sync-plans)"})
		return
	}
	if err != nil {
		h.deps.InternalError(c, "load plan failed", err, slog.String("price_id", body.PriceID))
		return
	}

	active, err := h.deps.Gate.IsActive(ctx, linkID)
	if err != nil {
		h.deps.InternalError(c, "subscription check failed", err, slog.String("link_id", linkID))
		return
	}
	if active {
		c.JSON(http.StatusConflict, gin.H{"error": "An active pro plan already exists. Use the billing portal to change it."})
		return
	}

	customerID, err := h.ensureCustomer(ctx, linkID)
	if err != nil {
		h.deps.InternalError(c, "ensure stripe customer failed", err, slog.String("link_id", linkID))
		return
	}

	sess, err := h.stripe.CreateCheckout(ctx, stripe.CheckoutRequest{
		Mode:              stripe.ModeSubscription,
		CustomerID:        customerID,
		PriceID:           plan.StripePriceID,
		ClientReferenceID: linkID,
		Metadata:          map[string]string{"link_id": linkID},
		SuccessURL:        h.appURL + "/billing/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         h.appURL + "/billing/cancel",
	})
	if err != nil {
		h.deps.InternalError(c, "create checkout failed", err, slog.String("link_id", linkID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": sess.URL, "session_id": sess.ID})
}

// CheckoutEvaluation serves POST /checkout/evaluations/:id for a one-off
// purchase of a paid evaluation.
func (h *Handler) CheckoutEvaluation(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	ctx := c.Request.Context()

	linkID, ok := h.deps.LinkID(c)
	if !ok {
		return
	}

	var ev exams.Evaluation
	err := h.deps.DB.WithContext(ctx).Where("id = ? AND published = ?", c.Param("id"), true).First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Evaluation not found"})
		return
	}
	if err != nil {
		h.deps.InternalError(c, "load evaluation failed", err, slog.String("evaluation_id", c.Param("id")))
		return
	}
	if ev.Access != exams.AccessPaid || ev.PriceEUR <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Evaluation is not sold separately"})
		return
	}

	viewer, err := h.deps.Viewer(ctx, linkID)
	if err != nil {
		h.deps.InternalError(c, "load viewer failed", err, slog.String("link_id", linkID))
		return
	}
	if viewer.ForEvaluation(ev).Allowed() {
		c.JSON(http.StatusConflict, gin.H{"error": "Evaluation already available"})
		return
	}

	customerID, err := h.ensureCustomer(ctx, linkID)
	if err != nil {
		h.deps.InternalError(c, "ensure stripe customer failed", err, slog.String("link_id", linkID))
		return
	}

	req := stripe.CheckoutRequest{
		Mode:              stripe.ModePayment,
		CustomerID:        customerID,
		AmountCents:       int64(math.Round(ev.PriceEUR * 100)),
		ProductName:       ev.Titulo,
		ClientReferenceID: linkID,
		Metadata:          map[string]string{"link_id": linkID, "evaluation_id": ev.ID},
		SuccessURL:        h.appURL + "/market?purchased=" + ev.ID,
		CancelURL:         h.appURL + "/market",
	}
	if ev.StripePriceID != nil {
		req.PriceID = *ev.StripePriceID
	}
	sess, err := h.stripe.CreateCheckout(ctx, req)
	if err != nil {
		h.deps.InternalError(c, "create checkout failed", err, slog.String("link_id", linkID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": sess.URL, "session_id": sess.ID})
}

// Portal serves POST /billing-portal.
func (h *Handler) Portal(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	linkID, ok := h.deps.LinkID(c)
	if !ok {
		return
	}

	var link students.Link
	if err := h.deps.DB.WithContext(c.Request.Context()).Where("id = ?", linkID).First(&link).Error; err != nil {
		h.deps.InternalError(c, "load link failed", err, slog.String("link_id", linkID))
		return
	}
	if link.StripeCustomerID == nil || *link.StripeCustomerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No Stripe customer for this account"})
		return
	}

	url, err := h.stripe.CreatePortal(c.Request.Context(), *link.StripeCustomerID, h.appURL+"/account")
	if err != nil {
		h.deps.InternalError(c, "create billing portal failed", err, slog.String("link_id", linkID))
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

type PurchaseDTO struct {
	ID              string    `json:"id"`
	EvaluationID    string    `json:"evaluation_id"`
	EvaluationTitle string    `json:"evaluation_title"`
	AmountEUR       float64   `json:"amount_eur"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// Purchases serves GET /purchases.
func (h *Handler) Purchases(c *gin.Context) {
	linkID, ok := h.deps.LinkID(c)
	if !ok {
		return
	}

	var rows []exams.Purchase
	if err := h.deps.DB.WithContext(c.Request.Context()).
		Preload("Evaluation").
		Where("usuario_estudiante_id = ?", linkID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		h.deps.InternalError(c, "load purchases failed", err, slog.String("link_id", linkID))
		return
	}

	out := make([]PurchaseDTO, 0, len(rows))
	for _, p := range rows {
		dto := PurchaseDTO{
			ID:           p.ID,
			EvaluationID: p.EvaluacionID,
			AmountEUR:    p.AmountEUR,
			Status:       p.Status,
			CreatedAt:    p.CreatedAt,
		}
		if p.Evaluation != nil {
			dto.EvaluationTitle = p.Evaluation.Titulo
		}
		out = append(out, dto)
	}
	c.JSON(http.StatusOK, out)
}
