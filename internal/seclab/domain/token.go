package domain

// TokenPair is what a successful login returns: the short-lived access token
// (JWT) and the long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"` // typically "bearer"
}
