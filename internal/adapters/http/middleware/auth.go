package middleware

import (
	"cmp"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-finder/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-finder/internal/platform/config"
)

// ContextKeyClaims is the gin key holding the caller's Claims.
const ContextKeyClaims = "claims"

const (
	defaultSubjectHeader = "X-User-ID"
	defaultRolesHeader   = "X-User-Roles"
	defaultScopesHeader  = "X-User-Scopes"
)

// Claims describe the caller. The gateway in front of the finder validates
// credentials and forwards them as headers.
type Claims struct {
	Subject string
	Roles   []string
	Scopes  []string
}

// HasRole reports whether the caller has role.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// HasScope reports whether the caller was granted scope.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// ExtractClaims reads claims from the configured headers. Roles are comma
// separated, scopes space separated.
func ExtractClaims(c *gin.Context, cfg *config.AuthConfig) *Claims {
	subjectHeader, rolesHeader, scopesHeader := defaultSubjectHeader, defaultRolesHeader, defaultScopesHeader

	if cfg != nil {
		subjectHeader = cmp.Or(cfg.SubjectHeader, subjectHeader)
		rolesHeader = cmp.Or(cfg.RolesHeader, rolesHeader)
		scopesHeader = cmp.Or(cfg.ScopesHeader, scopesHeader)
	}

	claims := &Claims{Subject: strings.TrimSpace(c.GetHeader(subjectHeader))}

	for role := range strings.SplitSeq(c.GetHeader(rolesHeader), ",") {
		if role = strings.TrimSpace(role); role != "" {
			claims.Roles = append(claims.Roles, role)
		}
	}

	claims.Scopes = strings.Fields(c.GetHeader(scopesHeader))

	return claims
}

// GetClaims returns the claims stored by an auth middleware, or nil.
func GetClaims(c *gin.Context) *Claims {
	if v, ok := c.Get(ContextKeyClaims); ok {
		if claims, ok := v.(*Claims); ok {
			return claims
		}
	}

	return nil
}

// RequireAuth rejects callers without a subject with 401.
func RequireAuth(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFor(c, cfg)
		if claims.Subject == "" {
			abortWith(c, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "authentication required")
			return
		}

		c.Next()
	}
}

// RequireRole rejects callers without role with 403.
func RequireRole(cfg *config.AuthConfig, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !claimsFor(c, cfg).HasRole(role) {
			abortWith(c, http.StatusForbidden, dto.ErrorCodeForbidden, "role "+role+" required")
			return
		}

		c.Next()
	}
}

// RequireAdmin guards admin routes with RequireAuth and RequireRole for the
// configured admin role. With auth disabled it lets every request through.
func RequireAdmin(cfg *config.AuthConfig) []gin.HandlerFunc {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	return []gin.HandlerFunc{RequireAuth(cfg), RequireRole(cfg, cfg.AdminRole)}
}

func claimsFor(c *gin.Context, cfg *config.AuthConfig) *Claims {
	if claims := GetClaims(c); claims != nil {
		return claims
	}

	claims := ExtractClaims(c, cfg)
	c.Set(ContextKeyClaims, claims)

	return claims
}
