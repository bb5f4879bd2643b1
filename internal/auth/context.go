package auth

import "context"

type claimsKey struct{}

// WithClaims attaches the verified caller to ctx.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFrom returns the caller attached by the middleware. A nil entry
// counts as absent.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	claims, _ := ctx.Value(claimsKey{}).(*Claims)
	return claims, claims != nil
}

// Subject names the caller for audit logs, or "anonymous".
func Subject(ctx context.Context) string {
	if claims, ok := ClaimsFrom(ctx); ok && claims.Subject != "" {
		return claims.Subject
	}
	return "anonymous"
}
