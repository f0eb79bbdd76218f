package models

import "time"

// Exercise is a single logged activity. Date is midnight UTC of the calendar day.
type Exercise struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Description string    `json:"description"`
	Duration    int       `json:"duration"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

// LogFilter narrows a user's exercise log. Zero values mean "unbounded".
type LogFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

// AddExerciseRequest is the body for POST /api/users/{id}/exercises.
// Fields stay strings until parsed so type errors become 400s with a field name.
type AddExerciseRequest struct {
	Description string `json:"description" form:"description" validate:"required"`
	Duration    string `json:"duration" form:"duration" validate:"required"`
	Date        string `json:"date" form:"date"`
}

// LogQuery holds the raw query parameters for GET /api/users/{id}/logs.
type LogQuery struct {
	From  string `form:"from"`
	To    string `form:"to"`
	Limit string `form:"limit"`
}

// ExerciseResponse is returned after adding an exercise. ID is the user's id.
type ExerciseResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Date        string `json:"date"`
	Duration    int    `json:"duration"`
	Description string `json:"description"`
}

// LogEntry is one row of a log response.
type LogEntry struct {
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
}

// LogResponse is returned by GET /api/users/{id}/logs.
type LogResponse struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Count    int        `json:"count"`
	Log      []LogEntry `json:"log"`
}
