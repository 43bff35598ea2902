package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// SessionCookie is the cookie that identifies a page session.
const SessionCookie = "trip_session"

type sessionKey struct{}

// NewSessionHandler returns a middleware that assigns every client a page
// session. The session ID is read from SessionCookie; when the cookie is
// missing or does not hold a UUID, a new ID is generated and the cookie is
// set on the response. The cookie has no Max-Age, so it lasts as long as the
// browser session.
//
// Set secure in production so the cookie is only sent over HTTPS.
func NewSessionHandler(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(SessionCookie); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), id)))
		})
	}
}

// WithSessionID returns a copy of ctx carrying the page session ID.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionID returns the page session ID stored by NewSessionHandler, or ""
// when the request did not pass through it.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
