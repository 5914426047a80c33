package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
)

// principalKey is the key used to store the authenticated caller in the request context.
const principalKey = contextKey("principal")

// eventPropsKey is the Gin context key under which handlers leave extra
// analytics properties for the request.
const eventPropsKey = contextKey("posthog_event_props")

// WithPrincipal returns a copy of ctx carrying the authenticated caller.
func WithPrincipal(ctx context.Context, principal domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// PrincipalFromCtx retrieves the authenticated caller from a standard context.
func PrincipalFromCtx(ctx context.Context) (domain.Principal, bool) {
	principal, ok := ctx.Value(principalKey).(domain.Principal)
	return principal, ok
}

// GetPrincipal retrieves the authenticated caller of a Gin request.
func GetPrincipal(c *gin.Context) (domain.Principal, bool) {
	return PrincipalFromCtx(c.Request.Context())
}

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	principal, ok := GetPrincipal(c)
	if !ok || principal.UserID == "" {
		return "", false
	}
	return principal.UserID, true
}

// SetEventProps merges props into the analytics properties recorded for the request.
func SetEventProps(c *gin.Context, props map[string]any) {
	merged := GetEventProps(c)
	if merged == nil {
		merged = make(map[string]any, len(props))
	}
	for k, v := range props {
		merged[k] = v
	}
	c.Set(string(eventPropsKey), merged)
}

// GetEventProps returns the analytics properties handlers set for the request, or nil.
func GetEventProps(c *gin.Context) map[string]any {
	val, exists := c.Get(string(eventPropsKey))
	if !exists {
		return nil
	}
	props, _ := val.(map[string]any)
	return props
}
