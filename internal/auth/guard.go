package auth

import "github.com/malawadd/qisati/pkg/apperr"

// RequireOwner is the binary ownership check: ids either match or the caller
// is forbidden. There are no roles and no admin override.
func RequireOwner(p *Principal, ownerID string) error {
	if p == nil {
		return apperr.ErrUnauthenticated
	}
	if p.User.ID != ownerID {
		return apperr.ErrForbidden
	}
	return nil
}
