// Package middleware provides HTTP access middleware backed by the access
// matrix.
package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/xraph/forge"

	"github.com/xraph/accessmatrix"
)

// Require allows the request only if the authenticated user holds
// permission on module, directly or through their role.
func Require(svc *accessmatrix.Service, module, permission string) forge.Middleware {
	return RequireAny(svc, module, permission)
}

// RequireAny allows the request if the authenticated user holds ANY of the
// given permissions on module.
func RequireAny(svc *accessmatrix.Service, module string, permissions ...string) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			userID, ok := resolveUser(ctx)
			if !ok {
				return denyResponse(ctx)
			}
			for _, perm := range permissions {
				allowed, err := svc.HasAccess(ctx.Context(), userID, module, perm)
				if err == nil && allowed {
					return next(ctx)
				}
			}
			return denyResponse(ctx)
		}
	}
}

// resolveUser extracts the numeric user ID set by the authentication layer.
func resolveUser(ctx forge.Context) (int64, bool) {
	return parseUserID(forge.UserIDFromContext(ctx.Context()))
}

func parseUserID(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return 0, false
	}
	return userID, true
}

func denyResponse(ctx forge.Context) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(http.StatusForbidden)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": "access denied"})
}
