package students

import "time"

// Link is the usuario-estudiante row: it correlates an authentication
// identity (provider subject or local account) with a student profile.
type Link struct {
	ID               string  `gorm:"type:text;primaryKey"`
	Correo           string  `gorm:"not null;uniqueIndex:idx_usuario_estudiante_correo"`
	EstudianteID     *string `gorm:"type:text;index"`
	PasswordHash     *string `gorm:"column:password_hash"`
	GoogleSub        *string `gorm:"uniqueIndex:idx_usuario_estudiante_google_sub"`
	Role             string  `gorm:"type:varchar(20);not null;default:'student'"`
	StripeCustomerID *string `gorm:"column:stripe_customer_id;uniqueIndex:idx_usuario_estudiante_stripe_customer_id"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Link) TableName() string { return "usuario_estudiante" }
