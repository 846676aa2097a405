package identity

import (
	"context"

	"exam-portal/internal/domain/students"
)

// memStore is an in-memory Store that records every call it receives.
type memStore struct {
	links    map[string]students.Link
	students map[string]students.Student
	calls    []string
}

func newMemStore() *memStore {
	return &memStore{
		links:    map[string]students.Link{},
		students: map[string]students.Student{},
	}
}

func (m *memStore) addLink(l students.Link)       { m.links[l.ID] = l }
func (m *memStore) addStudent(s students.Student) { m.students[s.ID] = s }

func (m *memStore) LinkByID(_ context.Context, id string) (*students.Link, error) {
	m.calls = append(m.calls, "LinkByID:"+id)
	if l, ok := m.links[id]; ok {
		return &l, nil
	}
	return nil, students.ErrNotFound
}

func (m *memStore) LinkByEmail(_ context.Context, email string) (*students.Link, error) {
	m.calls = append(m.calls, "LinkByEmail:"+email)
	for _, l := range m.links {
		if l.Correo == email {
			return &l, nil
		}
	}
	return nil, students.ErrNotFound
}

func (m *memStore) StudentByID(_ context.Context, id string) (*students.Student, error) {
	m.calls = append(m.calls, "StudentByID:"+id)
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, students.ErrNotFound
}

func (m *memStore) StudentByLinkEmail(_ context.Context, email string) (*students.Student, error) {
	m.calls = append(m.calls, "StudentByLinkEmail:"+email)
	for _, l := range m.links {
		if l.Correo != email || l.EstudianteID == nil {
			continue
		}
		if s, ok := m.students[*l.EstudianteID]; ok {
			return &s, nil
		}
	}
	return nil, students.ErrNotFound
}

type countingRecorder struct {
	outcomes []string
}

func (c *countingRecorder) RecordResolution(target, outcome string) {
	c.outcomes = append(c.outcomes, target+":"+outcome)
}
