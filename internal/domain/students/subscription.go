package students

import (
	"time"

	"exam-portal/internal/domain/plans"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionStatus string

const (
	StatusActive     SubscriptionStatus = "ACTIVE"
	StatusPastDue    SubscriptionStatus = "PAST_DUE"
	StatusCanceled   SubscriptionStatus = "CANCELED"
	StatusExpired    SubscriptionStatus = "EXPIRED"
	StatusIncomplete SubscriptionStatus = "INCOMPLETE"
)

// Subscription is one plan purchase for a Link. Renewals update the row that
// carries the same Stripe subscription id; a student may hold several rows over time.
type Subscription struct {
	ID                  string             `gorm:"type:uuid;primaryKey"`
	UsuarioEstudianteID string             `gorm:"type:text;not null;index:idx_suscripcion_owner_status"`
	Status              SubscriptionStatus `gorm:"type:varchar(20);not null;index:idx_suscripcion_owner_status"`
	ExpiresAt           time.Time          `gorm:"column:expires_at;not null"`

	PlanID *uint
	Plan   *plans.Plan

	StripeSubscriptionID *string `gorm:"column:stripe_subscription_id;uniqueIndex:idx_suscripcion_stripe_subscription_id"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Subscription) TableName() string { return "suscripcion" }

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
