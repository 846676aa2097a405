package plans

import (
	"errors"
	"log/slog"
	"net/http"

	"exam-portal/internal/api/shared"
	"exam-portal/internal/domain/plans"
	"exam-portal/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	deps      *shared.Deps
	stripe    stripe.Gateway
	productID string
}

// NewHandler lists and syncs the pro plans. productID, when set, restricts
// both to a single Stripe product.
func NewHandler(d *shared.Deps, gw stripe.Gateway, productID string) *Handler {
	return &Handler{deps: d, stripe: gw, productID: productID}
}

// List serves GET /plans, cheapest first.
func (h *Handler) List(c *gin.Context) {
	q := h.deps.DB.WithContext(c.Request.Context()).Model(&plans.Plan{})
	if h.productID != "" {
		q = q.Where("stripe_product_id = ?", h.productID)
	}

	var list []plans.Plan
	if err := q.Order("price_eur ASC").Find(&list).Error; err != nil {
		h.deps.InternalError(c, "load plans failed", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Sync serves POST /admin/sync-plans: every active recurring EUR price is
// created or refreshed by its Stripe price id.
func (h *Handler) Sync(c *gin.Context) {
	if h.stripe == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Stripe not configured"})
		return
	}
	ctx := c.Request.Context()

	prices, err := h.stripe.ActivePrices(ctx, h.productID)
	if err != nil {
		h.deps.InternalError(c, "fetch stripe prices failed", err)
		return
	}

	created, updated := 0, 0
	for _, p := range prices {
		var existing plans.Plan
		err := h.deps.DB.WithContext(ctx).Where("stripe_price_id = ?", p.ID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			plan := plans.Plan{
				Name:            p.Name,
				PriceEUR:        p.AmountEUR,
				StripePriceID:   p.ID,
				StripeProductID: p.ProductID,
				Interval:        p.Interval,
			}
			if err := h.deps.DB.WithContext(ctx).Create(&plan).Error; err != nil {
				h.deps.InternalError(c, "create plan failed", err, slog.String("price_id", p.ID))
				return
			}
			created++
		case err != nil:
			h.deps.InternalError(c, "load plan failed", err, slog.String("price_id", p.ID))
			return
		default:
			existing.Name = p.Name
			existing.PriceEUR = p.AmountEUR
			existing.StripeProductID = p.ProductID
			existing.Interval = p.Interval
			if err := h.deps.DB.WithContext(ctx).Save(&existing).Error; err != nil {
				h.deps.InternalError(c, "update plan failed", err, slog.String("price_id", p.ID))
				return
			}
			updated++
		}
	}

	h.deps.Log.InfoContext(ctx, "plans synced", slog.Int("created", created), slog.Int("updated", updated))
	c.JSON(http.StatusOK, gin.H{"synced": created + updated, "created": created, "updated": updated})
}
