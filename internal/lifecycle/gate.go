package lifecycle

import "clubsite/internal/domain"

// RequireActor returns the authenticated actor of session or
// domain.ErrAuthenticationRequired.
func RequireActor(session domain.SessionContext) (*domain.Actor, error) {
	if session.Actor == nil || session.Actor.UserID == "" {
		return nil, domain.ErrAuthenticationRequired
	}
	return session.Actor, nil
}
