package api

import "github.com/nhle/todoboard/internal/model"

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token issued on successful login.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
}

// MessageResponse is the generic `{message}` body used by the backend
// for logout acknowledgements and error payloads.
type MessageResponse struct {
	Message string `json:"message"`
}

// TodoPage is the paginated response of GET /todos.
type TodoPage struct {
	Data     []model.Todo `json:"data"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
	Count    int          `json:"count"`
}
