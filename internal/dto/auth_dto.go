package dto

import "time"

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email string `json:"email" binding:"required,email,max=254"`
}

// LoginResponse represents the response for a successful login.
// The session token itself travels only in the httpOnly cookie.
type LoginResponse struct {
	MemberID  string    `json:"memberId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}
