package stripe

import (
	"strings"

	"exam-portal/internal/domain/students"
)

// SubscriptionStatus maps a Stripe subscription status onto the portal's enum.
// Only ACTIVE grants the pro plan.
func SubscriptionStatus(s string) students.SubscriptionStatus {
	switch strings.TrimSpace(s) {
	case "active", "trialing":
		return students.StatusActive
	case "past_due", "unpaid":
		return students.StatusPastDue
	case "canceled":
		return students.StatusCanceled
	case "incomplete_expired":
		return students.StatusExpired
	default:
		return students.StatusIncomplete
	}
}
