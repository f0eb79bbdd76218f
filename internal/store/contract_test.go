package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ayush/exercise-tracker/internal/models"
)

type backend interface {
	CreateUser(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	AddExercise(ctx context.Context, ex *models.Exercise) error
	ListExercises(ctx context.Context, userID string, f models.LogFilter) ([]models.Exercise, error)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// runContract exercises the behaviour every backend must share. The backend must start empty.
func runContract(t *testing.T, s backend) {
	t.Helper()
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if alice.ID == "" || alice.Username != "alice" {
		t.Fatalf("unexpected user: %+v", alice)
	}
	bob, err := s.CreateUser(ctx, "bob")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 || users[0].ID != alice.ID || users[1].ID != bob.ID {
		t.Fatalf("ListUsers: unexpected %+v", users)
	}

	got, err := s.GetUser(ctx, bob.ID)
	if err != nil || got.Username != "bob" {
		t.Fatalf("GetUser: got %+v, %v", got, err)
	}
	if _, err := s.GetUser(ctx, "not-an-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUser(malformed): got %v, want ErrNotFound", err)
	}

	// Inserted out of date order on purpose: logs come back in creation order.
	dates := []time.Time{day(2024, 1, 20), day(2024, 1, 10), day(2024, 1, 15)}
	for i, d := range dates {
		ex := &models.Exercise{UserID: alice.ID, Description: "run", Duration: 10 * (i + 1), Date: d}
		if err := s.AddExercise(ctx, ex); err != nil {
			t.Fatalf("AddExercise: %v", err)
		}
		if ex.ID == "" {
			t.Fatal("AddExercise did not set ID")
		}
	}

	all, err := s.ListExercises(ctx, alice.ID, models.LogFilter{})
	if err != nil {
		t.Fatalf("ListExercises: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListExercises: got %d, want 3", len(all))
	}
	for i, ex := range all {
		if !ex.Date.Equal(dates[i]) {
			t.Errorf("entry %d: date %v, want %v", i, ex.Date, dates[i])
		}
		if ex.Duration != 10*(i+1) {
			t.Errorf("entry %d: duration %d", i, ex.Duration)
		}
	}

	from, to := day(2024, 1, 15), day(2024, 1, 15)
	ranged, err := s.ListExercises(ctx, alice.ID, models.LogFilter{From: &from, To: &to})
	if err != nil {
		t.Fatalf("ListExercises(range): %v", err)
	}
	if len(ranged) != 1 || !ranged[0].Date.Equal(from) {
		t.Errorf("ListExercises(range): got %+v", ranged)
	}

	limited, err := s.ListExercises(ctx, alice.ID, models.LogFilter{From: &from, Limit: 1})
	if err != nil {
		t.Fatalf("ListExercises(limit): %v", err)
	}
	if len(limited) != 1 || !limited[0].Date.Equal(day(2024, 1, 20)) {
		t.Errorf("ListExercises(limit): got %+v", limited)
	}

	empty, err := s.ListExercises(ctx, bob.ID, models.LogFilter{})
	if err != nil {
		t.Fatalf("ListExercises(bob): %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("ListExercises(bob): want empty non-nil slice, got %#v", empty)
	}
}
