package store

import (
	"context"
	"time"

	"exam-portal/internal/domain/students"
)

func (s *Store) SubscriptionExists(ctx context.Context, ownerID string, status students.SubscriptionStatus, notBefore time.Time) (bool, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&students.Subscription{}).
		Where("usuario_estudiante_id = ? AND status = ? AND expires_at >= ?", ownerID, status, notBefore).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

func (s *Store) LatestSubscription(ctx context.Context, ownerID string) (*students.Subscription, error) {
	var sub students.Subscription
	err := s.db.WithContext(ctx).
		Preload("Plan").
		Where("usuario_estudiante_id = ?", ownerID).
		Order("expires_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, translate(err)
	}
	return &sub, nil
}
