package model

// User is the identity record of the authenticated administrator,
// populated by the identity-confirmation call after login or on startup.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}
