package service

import "github.com/iliyamo/event-reservation-api/internal/model"

// Identity is the authenticated caller of an operation.  The zero value
// is an anonymous caller.
type Identity struct {
	UserID  string
	Role    string
	TokenID string // jti of the bearer token used for this request
}

// Authenticated reports whether the identity belongs to a logged-in user.
func (id Identity) Authenticated() bool { return id.UserID != "" }

// IsAdmin reports whether the identity holds the admin role.
func (id Identity) IsAdmin() bool { return id.Role == model.RoleAdmin }

// RequireRole returns Unauthorized for an anonymous identity and
// Forbidden when the identity's role is not among roles.  With no roles
// it only requires authentication.
func RequireRole(id Identity, roles ...string) error {
	if !id.Authenticated() {
		return Unauthorized("Unauthenticated.")
	}
	if len(roles) == 0 {
		return nil
	}
	for _, r := range roles {
		if id.Role == r {
			return nil
		}
	}
	return Forbidden("You are not allowed to perform this action.")
}
