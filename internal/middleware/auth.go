package middleware

import (
	"net/http"
	"strings"

	"openmat-france/backend/internal/authctx"

	"firebase.google.com/go/v4/auth"
)

// AuthUser is the verified identity attached to a request.
type AuthUser struct {
	UID    string
	Email  string
	Claims map[string]any
}

// WithAuth verifies the Firebase ID token from the Authorization header
// and stores the resulting identity in the request context. Requests
// without a valid Bearer token are rejected with 401.
func WithAuth(authClient *auth.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
				http.Error(w, "missing Authorization: Bearer <token>", http.StatusUnauthorized)
				return
			}
			idToken := strings.TrimSpace(h[len("Bearer "):])

			tok, err := authClient.VerifyIDToken(r.Context(), idToken)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := authctx.WithUID(r.Context(), tok.UID)
			ctx = authctx.WithClaims(ctx, tok.Claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAuthUser reconstructs the verified identity from the context.
func GetAuthUser(r *http.Request) (*AuthUser, bool) {
	uid, ok := authctx.UID(r.Context())
	if !ok {
		return nil, false
	}
	au := &AuthUser{UID: uid}
	if claims, ok := authctx.Claims(r.Context()); ok {
		au.Claims = claims
		if v, ok := claims["email"].(string); ok {
			au.Email = v
		}
	}
	return au, true
}
