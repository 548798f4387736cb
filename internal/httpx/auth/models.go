package auth

// TokenResponse represents an access token response
// swagger:model TokenResponse
type TokenResponse struct {
	AccessToken string `json:"access_token" example:"<JWT>"`
	TokenType   string `json:"token_type" example:"Bearer"`
	ExpiresIn   int    `json:"expires_in" example:"3600"`
	UserID      string `json:"user_id" example:"8a0d1b7c-..."`
}

// LoginRequest represents the password login request body
// swagger:model LoginRequest
type LoginRequest struct {
	Username string `json:"username" example:"ana"`
	Password string `json:"password" example:"Secretp@ssw0rd"`
}
