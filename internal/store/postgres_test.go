package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayush/exercise-tracker/internal/models"
)

func TestLogQuery(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		filter   models.LogFilter
		wantSQL  string
		wantArgs int
	}{
		{
			name:     "no filter",
			wantSQL:  `SELECT id, user_id, description, duration, date, created_at FROM exercises WHERE user_id = $1 ORDER BY seq`,
			wantArgs: 1,
		},
		{
			name:     "range and limit",
			filter:   models.LogFilter{From: &from, To: &to, Limit: 5},
			wantSQL:  `SELECT id, user_id, description, duration, date, created_at FROM exercises WHERE user_id = $1 AND date >= $2 AND date <= $3 ORDER BY seq LIMIT $4`,
			wantArgs: 4,
		},
		{
			name:     "to and limit",
			filter:   models.LogFilter{To: &to, Limit: 2},
			wantSQL:  `SELECT id, user_id, description, duration, date, created_at FROM exercises WHERE user_id = $1 AND date <= $2 ORDER BY seq LIMIT $3`,
			wantArgs: 3,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sql, args := logQuery("u1", tc.filter)
			if sql != tc.wantSQL {
				t.Errorf("sql:\n got %s\nwant %s", sql, tc.wantSQL)
			}
			if len(args) != tc.wantArgs {
				t.Errorf("args: got %d, want %d", len(args), tc.wantArgs)
			}
		})
	}
}

// Runs against a scratch database when TEST_POSTGRES_DSN is set. Tables are dropped first.
func TestPostgresStore_Contract(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pgxpool.New: %v", err)
	}
	defer pool.Close()
	if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS exercises; DROP TABLE IF EXISTS users;`); err != nil {
		t.Fatalf("drop: %v", err)
	}
	s := NewPostgresStore(pool)
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	runContract(t, s)
}
