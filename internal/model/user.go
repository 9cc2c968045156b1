package model

// User is a dashboard account. Email is the unique key; the password is kept
// as entered.
type User struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"pass"`
}
