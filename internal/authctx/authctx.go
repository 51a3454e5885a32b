// Package authctx carries the verified user identity through request contexts.
package authctx

import "context"

type ctxKey string

const (
	uidKey    ctxKey = "uid"
	claimsKey ctxKey = "claims"
)

func WithUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, uidKey, uid)
}

// UID returns the authenticated user id, if any.
func UID(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(uidKey).(string)
	return uid, ok && uid != ""
}

func WithClaims(ctx context.Context, claims map[string]any) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func Claims(ctx context.Context) (map[string]any, bool) {
	claims, ok := ctx.Value(claimsKey).(map[string]any)
	return claims, ok
}
