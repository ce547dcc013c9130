package httpapi

// UserProvider resolves a bearer token to a user ID.
type UserProvider interface {
	// UserForToken returns the user ID for the token, or ok=false when the
	// token is unknown.
	UserForToken(token string) (userID string, ok bool)
}

// TokenTableProvider is the development provider: a static token table
// loaded from configuration.
type TokenTableProvider struct {
	tokens map[string]string
}

// NewTokenTableProvider creates a provider over a token -> user ID table.
func NewTokenTableProvider(tokens map[string]string) *TokenTableProvider {
	return &TokenTableProvider{tokens: tokens}
}

// UserForToken looks the token up in the table.
func (p *TokenTableProvider) UserForToken(token string) (string, bool) {
	userID, ok := p.tokens[token]
	return userID, ok
}
