package models

// User is an account in the admin/customer user store. PasswordHash is never
// serialized.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Status   string `json:"status"`

	PasswordHash string `json:"-"`
}
