// Package store implements the identity and subscription read capabilities on gorm.
package store

import (
	"errors"

	"exam-portal/internal/domain/students"

	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return students.ErrNotFound
	}
	return err
}
