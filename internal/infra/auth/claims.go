package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"enroll/internal/domain/entity"
)

// realmClaims is the subset of the realm's access-token claims the service
// consumes. Roles usually live under realm_access; a flat roles claim is
// honored as a fallback for tokens minted by simpler issuers.
type realmClaims struct {
	jwt.RegisteredClaims

	Email       string      `json:"email"`
	RealmAccess realmAccess `json:"realm_access"`
	Roles       []string    `json:"roles"`
}

type realmAccess struct {
	Roles []string `json:"roles"`
}

func (c *realmClaims) toPrincipal() *entity.Principal {
	roles := c.RealmAccess.Roles
	if len(roles) == 0 {
		roles = c.Roles
	}

	return &entity.Principal{
		Subject: c.Subject,
		Email:   c.Email,
		Roles:   roles,
	}
}
