package stripewebhooks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"exam-portal/internal/domain/plans"
	"exam-portal/internal/domain/students"
	"exam-portal/internal/infra/stripe"

	stripeapi "github.com/stripe/stripe-go/v75"
	"gorm.io/gorm"
)

// Outcomes reported to the recorder and in the response.
const (
	outcomeApplied   = "applied"
	outcomeIgnored   = "ignored"
	outcomeDuplicate = "duplicate"
)

// applySubscription upserts the suscripcion row keyed by the Stripe
// subscription id. Events whose owner cannot be found are acknowledged and
// ignored.
func (h *Handler) applySubscription(ctx context.Context, sub *stripeapi.Subscription, linkHint string) (string, error) {
	if sub == nil || sub.ID == "" {
		return outcomeIgnored, nil
	}
	db := h.deps.DB.WithContext(ctx)

	var existing students.Subscription
	err := db.Where("stripe_subscription_id = ?", sub.ID).First(&existing).Error
	found := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("load subscription %s: %w", sub.ID, err)
	}

	ownerID, err := h.subscriptionOwner(ctx, sub, linkHint)
	if err != nil {
		return "", err
	}
	if ownerID == "" && found {
		ownerID = existing.UsuarioEstudianteID
	}
	if ownerID == "" {
		return outcomeIgnored, nil
	}

	var planID *uint
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		var plan plans.Plan
		err := db.Where("stripe_price_id = ?", sub.Items.Data[0].Price.ID).First(&plan).Error
		switch {
		case err == nil:
			planID = &plan.ID
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return "", fmt.Errorf("load plan: %w", err)
		}
	}

	status := stripe.SubscriptionStatus(string(sub.Status))
	expiresAt := time.Unix(sub.CurrentPeriodEnd, 0).UTC()

	if !found {
		stripeID := sub.ID
		row := students.Subscription{
			UsuarioEstudianteID:  ownerID,
			Status:               status,
			ExpiresAt:            expiresAt,
			PlanID:               planID,
			StripeSubscriptionID: &stripeID,
		}
		if err := db.Create(&row).Error; err != nil {
			return "", fmt.Errorf("create subscription %s: %w", sub.ID, err)
		}
		return outcomeApplied, nil
	}

	updates := map[string]interface{}{
		"usuario_estudiante_id": ownerID,
		"status":                status,
		"expires_at":            expiresAt,
	}
	if planID != nil {
		updates["plan_id"] = *planID
	}
	if err := db.Model(&students.Subscription{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
		return "", fmt.Errorf("update subscription %s: %w", sub.ID, err)
	}
	return outcomeApplied, nil
}

// subscriptionOwner finds the usuario-estudiante a Stripe subscription
// belongs to: metadata link_id, then the checkout hint, then the customer.
func (h *Handler) subscriptionOwner(ctx context.Context, sub *stripeapi.Subscription, linkHint string) (string, error) {
	candidates := []string{sub.Metadata["link_id"], linkHint}
	for _, id := range candidates {
		if id == "" {
			continue
		}
		ok, err := h.linkExists(ctx, "id = ?", id)
		if err != nil {
			return "", err
		}
		if ok {
			return id, nil
		}
	}

	if sub.Customer == nil || sub.Customer.ID == "" {
		return "", nil
	}
	var ids []string
	if err := h.deps.DB.WithContext(ctx).Model(&students.Link{}).
		Where("stripe_customer_id = ?", sub.Customer.ID).
		Limit(1).
		Pluck("id", &ids).Error; err != nil {
		return "", fmt.Errorf("find link by customer: %w", err)
	}
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}

func (h *Handler) linkExists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var n int64
	if err := h.deps.DB.WithContext(ctx).Model(&students.Link{}).Where(query, args...).Count(&n).Error; err != nil {
		return false, fmt.Errorf("find link: %w", err)
	}
	return n > 0, nil
}
