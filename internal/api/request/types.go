package request

// RegisterRequest is the request body for POST /register
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// LoginRequest is the request body for POST /login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
