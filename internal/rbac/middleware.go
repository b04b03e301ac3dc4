package rbac

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/salesdesk/salesdesk/internal/shared"
)

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Resolver Resolver
	Logger   *slog.Logger
}

// RequireAny ensures the current operator has at least one of the required permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return m.require(perms, hasAnyPermission)
}

// RequireAll ensures the current operator has all required permissions.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return m.require(perms, hasAllPermissions)
}

func (m Middleware) require(perms []string, check func(granted, required map[string]struct{}) bool) func(http.Handler) http.Handler {
	required := permissionSet(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			op, ok := shared.OperatorFromContext(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			granted, err := m.Resolver.EffectivePermissions(r.Context(), op.ID)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
					return
				}
				if m.Logger != nil {
					m.Logger.Error("rbac resolve permissions", slog.Int64("operator_id", op.ID), slog.Any("error", err))
				}
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if check(permissionSet(granted), required) {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

func hasAnyPermission(granted, required map[string]struct{}) bool {
	for p := range required {
		if _, ok := granted[p]; ok {
			return true
		}
	}
	return false
}

func hasAllPermissions(granted, required map[string]struct{}) bool {
	for p := range required {
		if _, ok := granted[p]; !ok {
			return false
		}
	}
	return true
}
