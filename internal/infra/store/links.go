package store

import (
	"context"

	"exam-portal/internal/domain/students"
)

func (s *Store) LinkByID(ctx context.Context, id string) (*students.Link, error) {
	var l students.Link
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

// LinkByEmail relies on the unique index on correo.
func (s *Store) LinkByEmail(ctx context.Context, email string) (*students.Link, error) {
	var l students.Link
	if err := s.db.WithContext(ctx).Where("correo = ?", email).First(&l).Error; err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

func (s *Store) StudentByID(ctx context.Context, id string) (*students.Student, error) {
	var st students.Student
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&st).Error; err != nil {
		return nil, translate(err)
	}
	return &st, nil
}

func (s *Store) StudentByLinkEmail(ctx context.Context, email string) (*students.Student, error) {
	var st students.Student
	err := s.db.WithContext(ctx).
		Joins("JOIN usuario_estudiante ON usuario_estudiante.estudiante_id = estudiante.id").
		Where("usuario_estudiante.correo = ?", email).
		First(&st).Error
	if err != nil {
		return nil, translate(err)
	}
	return &st, nil
}
