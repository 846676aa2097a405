package exams

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Options is the ordered list of answer choices, stored as a JSON array.
type Options []string

func (o Options) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(o))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (o *Options) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*o = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("options: unsupported type %T", src)
	}
	return json.Unmarshal(raw, (*[]string)(o))
}

type Question struct {
	ID           string  `gorm:"type:uuid;primaryKey"`
	EvaluacionID string  `gorm:"type:uuid;not null;index"`
	Enunciado    string  `gorm:"not null"`
	Opciones     Options `gorm:"type:jsonb;not null"`
	Correcta     int     `gorm:"not null"`
	Explicacion  string
	SortIndex    int `gorm:"not null;default:0"`
}

func (Question) TableName() string { return "pregunta" }

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}
