// Package tracker implements the exercise-tracker HTTP handlers.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ayush/exercise-tracker/internal/errs"
	"github.com/ayush/exercise-tracker/internal/models"
	"github.com/ayush/exercise-tracker/internal/parse"
	"github.com/ayush/exercise-tracker/internal/store"
)

// Store defines the persistence the handlers need.
type Store interface {
	CreateUser(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	AddExercise(ctx context.Context, ex *models.Exercise) error
	ListExercises(ctx context.Context, userID string, f models.LogFilter) ([]models.Exercise, error)
}

// Handler holds the user and exercise HTTP handlers.
type Handler struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock replaces time.Now as the source of the default exercise date.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

func NewHandler(s Store, log zerolog.Logger, opts ...Option) *Handler {
	h := &Handler{store: s, log: log, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes mounts the API under the given router, e.g. at /api/users.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.CreateUser)
	r.Get("/", h.ListUsers)
	r.Post("/{id}/exercises", h.AddExercise)
	r.Get("/{id}/logs", h.GetLogs)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.StatusOf(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("store failure")
	}
	writeJSON(w, status, map[string]string{"error": errs.PublicMessage(err)})
}

// lookupUser maps store.ErrNotFound to a 404 and anything else to a 500.
func (h *Handler) lookupUser(ctx context.Context, id string) (*models.User, error) {
	user, err := h.store.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errs.NotFound("unknown user id")
	}
	if err != nil {
		return nil, errs.Store("get user", err)
	}
	return user, nil
}

// CreateUser persists a new user.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	f, err := readFields(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req := models.CreateUserRequest{Username: f.get("username")}
	if err := validateRequest(req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.store.CreateUser(r.Context(), req.Username)
	if err != nil {
		h.fail(w, r, errs.Store("create user", err))
		return
	}
	writeJSON(w, http.StatusOK, user.Response())
}

// ListUsers returns every user in creation order.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.fail(w, r, errs.Store("list users", err))
		return
	}
	out := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.Response())
	}
	writeJSON(w, http.StatusOK, out)
}

// AddExercise logs an exercise for the user in the path. Unknown users are
// rejected before the body is read.
func (h *Handler) AddExercise(w http.ResponseWriter, r *http.Request) {
	user, err := h.lookupUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	f, err := readFields(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req := models.AddExerciseRequest{
		Description: f.get("description"),
		Duration:    f.get("duration"),
		Date:        f.get("date"),
	}
	ex, err := h.newExercise(user.ID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.store.AddExercise(r.Context(), ex); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.fail(w, r, errs.NotFound("unknown user id"))
			return
		}
		h.fail(w, r, errs.Store("add exercise", err))
		return
	}

	writeJSON(w, http.StatusOK, models.ExerciseResponse{
		ID:          user.ID,
		Username:    user.Username,
		Date:        parse.FormatDay(ex.Date),
		Duration:    ex.Duration,
		Description: ex.Description,
	})
}

func (h *Handler) newExercise(userID string, req models.AddExerciseRequest) (*models.Exercise, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	duration, err := parse.Duration(req.Duration)
	if err != nil {
		return nil, err
	}
	date, ok, err := parse.OptionalDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	if !ok {
		date = parse.Day(h.now())
	}
	return &models.Exercise{
		UserID:      userID,
		Description: req.Description,
		Duration:    duration,
		Date:        date,
	}, nil
}

// GetLogs returns a user's exercises, optionally bounded by from/to and capped by limit.
func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	user, err := h.lookupUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	q := r.URL.Query()
	filter, err := logFilter(models.LogQuery{From: q.Get("from"), To: q.Get("to"), Limit: q.Get("limit")})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	exercises, err := h.store.ListExercises(r.Context(), user.ID, filter)
	if err != nil {
		h.fail(w, r, errs.Store("list exercises", err))
		return
	}

	entries := make([]models.LogEntry, 0, len(exercises))
	for _, ex := range exercises {
		entries = append(entries, models.LogEntry{
			Description: ex.Description,
			Duration:    ex.Duration,
			Date:        parse.FormatDay(ex.Date),
		})
	}
	writeJSON(w, http.StatusOK, models.LogResponse{
		ID:       user.ID,
		Username: user.Username,
		Count:    len(entries),
		Log:      entries,
	})
}

func logFilter(q models.LogQuery) (models.LogFilter, error) {
	var f models.LogFilter
	if from, ok, err := parse.OptionalDate("from", q.From); err != nil {
		return f, err
	} else if ok {
		f.From = &from
	}
	if to, ok, err := parse.OptionalDate("to", q.To); err != nil {
		return f, err
	} else if ok {
		f.To = &to
	}
	limit, err := parse.Limit(q.Limit)
	if err != nil {
		return f, err
	}
	f.Limit = limit
	return f, nil
}
