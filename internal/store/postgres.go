package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayush/exercise-tracker/internal/models"
)

// PostgresStore is the relational backend. Rows keep a bigserial seq for creation order.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the users and exercises tables if they don't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         UUID PRIMARY KEY,
			seq        BIGSERIAL    NOT NULL,
			username   TEXT         NOT NULL,
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS exercises (
			id          UUID PRIMARY KEY,
			seq         BIGSERIAL   NOT NULL,
			user_id     UUID        NOT NULL REFERENCES users(id),
			description TEXT        NOT NULL,
			duration    INTEGER     NOT NULL,
			date        DATE        NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS exercises_user_date_idx ON exercises (user_id, date);
	`)
	if err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, username string) (*models.User, error) {
	u := models.User{ID: uuid.NewString()}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, username) VALUES ($1, $2) RETURNING username`,
		u.ID, username,
	).Scan(&u.Username)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, username FROM users ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// AddExercise inserts ex and fills in its ID and CreatedAt.
func (s *PostgresStore) AddExercise(ctx context.Context, ex *models.Exercise) error {
	if _, err := uuid.Parse(ex.UserID); err != nil {
		return ErrNotFound
	}
	id := uuid.NewString()
	var created time.Time
	err := s.pool.QueryRow(ctx,
		`INSERT INTO exercises (id, user_id, description, duration, date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		id, ex.UserID, ex.Description, ex.Duration, ex.Date,
	).Scan(&created)
	if err != nil {
		return fmt.Errorf("insert exercise: %w", err)
	}
	ex.ID = id
	ex.CreatedAt = created
	return nil
}

// ListExercises applies the date range in SQL, then the limit, in insertion order.
func (s *PostgresStore) ListExercises(ctx context.Context, userID string, f models.LogFilter) ([]models.Exercise, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrNotFound
	}
	query, args := logQuery(userID, f)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	defer rows.Close()

	out := []models.Exercise{}
	for rows.Next() {
		var ex models.Exercise
		if err := rows.Scan(&ex.ID, &ex.UserID, &ex.Description, &ex.Duration, &ex.Date, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		ex.Date = ex.Date.UTC()
		out = append(out, ex)
	}
	return out, rows.Err()
}

func logQuery(userID string, f models.LogFilter) (string, []any) {
	query := `SELECT id, user_id, description, duration, date, created_at FROM exercises WHERE user_id = $1`
	args := []any{userID}
	if f.From != nil {
		args = append(args, *f.From)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " ORDER BY seq"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return query, args
}
