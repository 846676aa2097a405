package exams

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Access modes for an evaluation in the market.
const (
	AccessFree = "free"
	AccessPro  = "pro"
	AccessPaid = "paid"
)

type Evaluation struct {
	ID            string `gorm:"type:uuid;primaryKey"`
	Titulo        string `gorm:"not null"`
	Descripcion   string
	Area          string  `gorm:"index"`
	PriceEUR      float64 `gorm:"column:price_eur;not null;default:0"`
	StripePriceID *string `gorm:"column:stripe_price_id"`
	Access        string  `gorm:"type:varchar(10);not null;default:'pro'"`
	Published     bool    `gorm:"not null;default:false;index"`

	Questions []Question `gorm:"foreignKey:EvaluacionID;constraint:OnDelete:CASCADE;"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Evaluation) TableName() string { return "evaluacion" }

func (e *Evaluation) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
