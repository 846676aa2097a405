package identity

import (
	"context"
	"errors"

	"exam-portal/internal/domain/students"
)

// Strategy is one step of the fallback chain. Lookup returns "" on a miss
// and an error only when the store itself failed.
type Strategy struct {
	Name   string
	Lookup func(ctx context.Context, store Store, s Session) (string, error)
}

var (
	LinkByID = Strategy{Name: "link_by_id", Lookup: func(ctx context.Context, store Store, s Session) (string, error) {
		if s.UserID == "" {
			return "", nil
		}
		l, err := store.LinkByID(ctx, s.UserID)
		if err != nil {
			return miss(err)
		}
		return l.ID, nil
	}}

	LinkByEmail = Strategy{Name: "link_by_email", Lookup: func(ctx context.Context, store Store, s Session) (string, error) {
		if s.Email == "" {
			return "", nil
		}
		l, err := store.LinkByEmail(ctx, s.Email)
		if err != nil {
			return miss(err)
		}
		return l.ID, nil
	}}

	// StudentViaLinkID follows the link found by id to its estudiante, if it has one.
	StudentViaLinkID = Strategy{Name: "student_via_link_id", Lookup: func(ctx context.Context, store Store, s Session) (string, error) {
		if s.UserID == "" {
			return "", nil
		}
		l, err := store.LinkByID(ctx, s.UserID)
		if err != nil {
			return miss(err)
		}
		if l.EstudianteID == nil {
			return "", nil
		}
		return *l.EstudianteID, nil
	}}

	StudentByID = Strategy{Name: "student_by_id", Lookup: func(ctx context.Context, store Store, s Session) (string, error) {
		if s.UserID == "" {
			return "", nil
		}
		st, err := store.StudentByID(ctx, s.UserID)
		if err != nil {
			return miss(err)
		}
		return st.ID, nil
	}}

	StudentByLinkEmail = Strategy{Name: "student_by_link_email", Lookup: func(ctx context.Context, store Store, s Session) (string, error) {
		if s.Email == "" {
			return "", nil
		}
		st, err := store.StudentByLinkEmail(ctx, s.Email)
		if err != nil {
			return miss(err)
		}
		return st.ID, nil
	}}
)

// Strategies returns the lookup chain for target in priority order.
func Strategies(target Target) []Strategy {
	switch target {
	case TargetLink:
		return []Strategy{LinkByID, LinkByEmail}
	case TargetStudent:
		return []Strategy{StudentViaLinkID, StudentByID, StudentByLinkEmail}
	default:
		return nil
	}
}

func miss(err error) (string, error) {
	if errors.Is(err, students.ErrNotFound) {
		return "", nil
	}
	return "", err
}
