package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayush/exercise-tracker/internal/models"
)

// MemoryStore is a process-local backend for development and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	users     []models.User
	byID      map[string]int
	exercises map[string][]models.Exercise
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:      make(map[string]int),
		exercises: make(map[string][]models.Exercise),
	}
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }

func (s *MemoryStore) CreateUser(_ context.Context, username string) (*models.User, error) {
	u := models.User{ID: uuid.NewString(), Username: username}
	s.mu.Lock()
	s.byID[u.ID] = len(s.users)
	s.users = append(s.users, u)
	s.mu.Unlock()
	return &u, nil
}

func (s *MemoryStore) ListUsers(context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	u := s.users[i]
	return &u, nil
}

func (s *MemoryStore) AddExercise(_ context.Context, ex *models.Exercise) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[ex.UserID]; !ok {
		return ErrNotFound
	}
	ex.ID = uuid.NewString()
	ex.CreatedAt = time.Now().UTC()
	s.exercises[ex.UserID] = append(s.exercises[ex.UserID], *ex)
	return nil
}

func (s *MemoryStore) ListExercises(_ context.Context, userID string, f models.LogFilter) ([]models.Exercise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.byID[userID]; !ok {
		return nil, ErrNotFound
	}
	out := []models.Exercise{}
	for _, ex := range s.exercises[userID] {
		if f.From != nil && ex.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && ex.Date.After(*f.To) {
			continue
		}
		out = append(out, ex)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}
