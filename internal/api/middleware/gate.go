package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/phrazzld/silabas-api/internal/api/shared"
	"github.com/phrazzld/silabas-api/internal/domain"
)

// gatedPrefixes are page paths that need an authenticated session.
var gatedPrefixes = []string{"/admin", "/teacher", "/profile", "/activities", "/progress"}

// roleRule limits a path prefix to some roles.
type roleRule struct {
	prefix string
	roles  []domain.Role
}

var roleRules = []roleRule{
	{prefix: "/admin", roles: []domain.Role{domain.RoleAdmin}},
	{prefix: "/teacher", roles: []domain.Role{domain.RoleTeacher, domain.RoleAdmin}},
}

// RouteGate protects frontend pages. Anonymous callers of a gated path are
// redirected to /?redirect=<path> and callers lacking the role are redirected
// to /. API routes are never gated. It must run after the identity middleware.
func RouteGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if strings.HasPrefix(path, "/api/") || !matchesAny(path, gatedPrefixes) {
			next.ServeHTTP(w, r)
			return
		}

		caller, ok := domain.AsAuthenticated(shared.SessionFromContext(r.Context()))
		if !ok {
			http.Redirect(w, r, "/?redirect="+url.QueryEscape(path), http.StatusTemporaryRedirect)
			return
		}

		for _, rule := range roleRules {
			if hasPrefix(path, rule.prefix) && !hasRole(caller.Role, rule.roles) {
				http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func matchesAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if hasPrefix(path, p) {
			return true
		}
	}
	return false
}

// hasPrefix matches prefix itself and its sub-paths, so /adminx is not /admin.
func hasPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
