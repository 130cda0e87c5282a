package todo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// InMemoryStore implements Repository and SettingsStore without
// persistence. Used by tests and quick local runs.
type InMemoryStore struct {
	mu        sync.Mutex
	seq       int64
	store     map[int64]Todo
	recipient string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{store: make(map[int64]Todo)}
}

func (s *InMemoryStore) Create(_ context.Context, input CreateInput) (Todo, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Todo{}, ErrTitleRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := Todo{
		ID:               s.seq,
		Title:            title,
		NotifyOnComplete: input.NotifyOnComplete,
		CreatedAt:        time.Now().UTC(),
	}
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		t.Notes = &notes
	}
	if input.DueDate != "" {
		due := input.DueDate
		t.DueDate = &due
	}
	s.store[t.ID] = t
	return t, nil
}

func (s *InMemoryStore) List(_ context.Context, status Status) ([]Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Todo, 0, len(s.store))
	for _, t := range s.store {
		switch status {
		case StatusActive:
			if t.Completed {
				continue
			}
		case StatusCompleted:
			if !t.Completed {
				continue
			}
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id int64) (Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.store[id]
	if !ok {
		return Todo{}, ErrNotFound
	}
	return t, nil
}

func (s *InMemoryStore) SetCompleted(_ context.Context, id int64, completed bool) (Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.store[id]
	if !ok {
		return Todo{}, ErrNotFound
	}
	t.Completed = completed
	if completed {
		now := time.Now().UTC()
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
	s.store[id] = t
	return t, nil
}

func (s *InMemoryStore) UpdateDetails(_ context.Context, id int64, title, notes string) (Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Todo{}, ErrTitleRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.store[id]
	if !ok {
		return Todo{}, ErrNotFound
	}
	t.Title = title
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		t.Notes = &trimmed
	} else {
		t.Notes = nil
	}
	s.store[id] = t
	return t, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.store[id]; !ok {
		return ErrNotFound
	}
	delete(s.store, id)
	return nil
}

func (s *InMemoryStore) CompletedInRange(_ context.Context, start, end time.Time) ([]Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Todo
	for _, t := range s.store {
		if !t.Completed || t.CompletedAt == nil {
			continue
		}
		at := *t.CompletedAt
		if at.Before(start) || !at.Before(end) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.Before(*out[j].CompletedAt) })
	return out, nil
}

func (s *InMemoryStore) EmailRecipient(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recipient, nil
}

func (s *InMemoryStore) SetEmailRecipient(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipient = email
	return nil
}

// SetCompletedAt pins a completion timestamp directly. Test helper for
// report range assertions.
func (s *InMemoryStore) SetCompletedAt(id int64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.store[id]
	if !ok {
		return
	}
	t.Completed = true
	t.CompletedAt = &at
	s.store[id] = t
}
