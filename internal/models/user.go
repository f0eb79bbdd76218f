package models

// User is a person exercises are logged against.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// CreateUserRequest is the body for POST /api/users.
type CreateUserRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
}

// UserResponse is the shape returned by create and list.
type UserResponse struct {
	Username string `json:"username"`
	ID       string `json:"id"`
}

func (u User) Response() UserResponse {
	return UserResponse{Username: u.Username, ID: u.ID}
}
