package exams

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const PurchasePaid = "paid"

// Purchase (compra) records a one-off Stripe payment for a single evaluation.
type Purchase struct {
	ID                  string      `gorm:"type:uuid;primaryKey"`
	UsuarioEstudianteID string      `gorm:"type:text;not null;index"`
	EvaluacionID        string      `gorm:"type:uuid;not null;index"`
	Evaluation          *Evaluation `gorm:"foreignKey:EvaluacionID"`
	StripeSessionID     string      `gorm:"uniqueIndex"`
	AmountEUR           float64
	Status              string
	CreatedAt           time.Time
}

func (Purchase) TableName() string { return "compra" }

func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
