package practice

import (
	"time"

	"exam-portal/internal/domain/exams"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attempt (intento) is one graded submission of an evaluation by a student.
type Attempt struct {
	ID           string            `gorm:"type:uuid;primaryKey"`
	EstudianteID string            `gorm:"type:text;not null;index"`
	EvaluacionID string            `gorm:"type:uuid;not null;index"`
	Evaluation   *exams.Evaluation `gorm:"foreignKey:EvaluacionID"`
	Total        int
	Correct      int
	Score        float64
	CreatedAt    time.Time
}

func (Attempt) TableName() string { return "intento" }

func (a *Attempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Failed (pregunta fallada) is a question answered wrong, or left blank, in an attempt.
type Failed struct {
	ID           string          `gorm:"type:uuid;primaryKey"`
	EstudianteID string          `gorm:"type:text;not null;index:idx_fallada_student_question"`
	PreguntaID   string          `gorm:"type:uuid;not null;index:idx_fallada_student_question"`
	Question     *exams.Question `gorm:"foreignKey:PreguntaID"`
	IntentoID    string          `gorm:"type:uuid;not null;index"`
	Elegida      *int            `gorm:"column:elegida"`
	ReviewedAt   *time.Time      `gorm:"column:reviewed_at"`
	CreatedAt    time.Time
}

func (Failed) TableName() string { return "pregunta_fallada" }

func (f *Failed) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
