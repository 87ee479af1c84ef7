package entity

import "time"

// Account is the credential record owned by the external identity provider.
// The orchestrator never mutates it directly; it holds the provider-assigned
// id and reads the rest back through the provider's admin API.
type Account struct {
	ID            string    // Provider-assigned identifier.
	Email         string    // Login email, doubles as the provider username.
	Enabled       bool      // Whether the account can authenticate.
	EmailVerified bool      // Pre-verified at registration time.
	Roles         []string  // Realm-level role names assigned to the account.
	CreatedAt     time.Time // Provider-side creation timestamp.
}

// TokenBundle is the transient result of a successful password or refresh
// grant. It is returned to the caller and never persisted.
type TokenBundle struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // Access token lifetime in seconds.
	TokenType    string `json:"token_type"` // Always "Bearer" in practice.
}

// Principal is the internal representation of an authenticated caller,
// produced by mapping verified access-token claims.
type Principal struct {
	Subject string   // Provider account id (the token's sub claim).
	Email   string   // Email claim, when present.
	Roles   []string // Realm role names carried by the token.
}

// HasRole reports whether the principal carries the given role.
func (p *Principal) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role.String() {
			return true
		}
	}

	return false
}
