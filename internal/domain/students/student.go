package students

import "time"

// Student is the academic identity (estudiante). It is reached directly by id
// or through the Link that points at it.
type Student struct {
	ID       string `gorm:"type:text;primaryKey"`
	Nombre   string
	Apellido string
	Link     *Link `gorm:"foreignKey:EstudianteID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Student) TableName() string { return "estudiante" }
