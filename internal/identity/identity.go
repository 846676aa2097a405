// Package identity maps a verified session (user id and/or email) onto the
// internal id of a student record. It only reads.
package identity

import (
	"context"
	"strings"

	"exam-portal/internal/domain/students"
)

// Target selects which record the resolver returns the id of.
type Target string

const (
	// TargetLink resolves to the usuario-estudiante row.
	TargetLink Target = "usuario_estudiante"
	// TargetStudent resolves to the estudiante row, with a direct-id fallback.
	TargetStudent Target = "estudiante"
)

// Session is the identity handed over by the authentication layer.
// Either field may be empty.
type Session struct {
	UserID string
	Email  string
}

// NewSession trims both fields; blank values become absent.
func NewSession(userID, email string) Session {
	return Session{
		UserID: strings.TrimSpace(userID),
		Email:  strings.TrimSpace(email),
	}
}

func (s Session) Empty() bool {
	return s.UserID == "" && s.Email == ""
}

// Store is the persistence capability the resolver reads from.
// Lookups that match nothing return students.ErrNotFound.
type Store interface {
	LinkByID(ctx context.Context, id string) (*students.Link, error)
	LinkByEmail(ctx context.Context, email string) (*students.Link, error)
	StudentByID(ctx context.Context, id string) (*students.Student, error)
	StudentByLinkEmail(ctx context.Context, email string) (*students.Student, error)
}
