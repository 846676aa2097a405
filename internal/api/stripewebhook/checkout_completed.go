package stripewebhooks

import (
	"context"
	"errors"
	"fmt"

	"exam-portal/internal/domain/exams"
	"exam-portal/internal/domain/students"

	stripeapi "github.com/stripe/stripe-go/v75"
	"gorm.io/gorm/clause"
)

func (h *Handler) checkoutCompleted(ctx context.Context, session *stripeapi.CheckoutSession) (string, error) {
	linkID := session.Metadata["link_id"]
	if linkID == "" {
		linkID = session.ClientReferenceID
	}

	if session.Customer != nil && session.Customer.ID != "" && linkID != "" {
		if err := h.deps.DB.WithContext(ctx).Model(&students.Link{}).
			Where("id = ? AND stripe_customer_id IS NULL", linkID).
			Update("stripe_customer_id", session.Customer.ID).Error; err != nil {
			return "", fmt.Errorf("store stripe customer: %w", err)
		}
	}

	switch session.Mode {
	case stripeapi.CheckoutSessionModePayment:
		return h.recordPurchase(ctx, session, linkID)
	case stripeapi.CheckoutSessionModeSubscription:
		if session.Subscription == nil || session.Subscription.ID == "" {
			return "", errors.New("checkout session missing subscription")
		}
		if h.stripe == nil {
			return "", errors.New("stripe not configured")
		}
		sub, err := h.stripe.GetSubscription(ctx, session.Subscription.ID)
		if err != nil {
			return "", err
		}
		return h.applySubscription(ctx, sub, linkID)
	default:
		return outcomeIgnored, nil
	}
}

// recordPurchase stores a compra row once per checkout session.
func (h *Handler) recordPurchase(ctx context.Context, session *stripeapi.CheckoutSession, linkID string) (string, error) {
	evaluationID := session.Metadata["evaluation_id"]
	if linkID == "" || evaluationID == "" {
		return outcomeIgnored, nil
	}
	if session.PaymentStatus != stripeapi.CheckoutSessionPaymentStatusPaid {
		return outcomeIgnored, nil
	}

	p := exams.Purchase{
		UsuarioEstudianteID: linkID,
		EvaluacionID:        evaluationID,
		StripeSessionID:     session.ID,
		AmountEUR:           float64(session.AmountTotal) / 100.0,
		Status:              exams.PurchasePaid,
		CreatedAt:           h.deps.Clock(),
	}
	// concurrent retries of one session insert at most once
	res := h.deps.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "stripe_session_id"}}, DoNothing: true}).
		Create(&p)
	if res.Error != nil {
		return "", fmt.Errorf("create purchase: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return outcomeDuplicate, nil
	}
	return outcomeApplied, nil
}
