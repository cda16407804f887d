package dto

// LoginRequest is the POST /login payload. Both fields must be present;
// empty strings are valid and simply fail verification.
type LoginRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// Valid reports whether both fields were supplied.
func (r LoginRequest) Valid() bool {
	return r.Username != nil && r.Password != nil
}
