package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
)

// ContextKey is the gin context key the middleware stores the principal
// under.
const ContextKey = "principal"

// CasdoorConfig wires the identity provider. When Endpoint is empty the
// middleware runs in permissive development mode and injects a teacher
// principal.
type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Certificate  string
	Organization string
	Application  string
}

func (c CasdoorConfig) Enabled() bool {
	return c.Endpoint != ""
}

// Init registers the casdoor SDK globals. Call once at startup.
func Init(cfg CasdoorConfig) {
	casdoorsdk.InitConfig(cfg.Endpoint, cfg.ClientID, cfg.ClientSecret, cfg.Certificate, cfg.Organization, cfg.Application)
}

// Middleware resolves the bearer token into a Principal and stores it on the
// request context.
func Middleware(cfg CasdoorConfig, logger *slog.Logger) gin.HandlerFunc {
	if !cfg.Enabled() {
		logger.Warn("Identity provider not configured, running with development principal")
		return func(c *gin.Context) {
			setPrincipal(c, &Principal{ID: "dev-user", Name: "Development User", Role: RoleTeacher})
			c.Next()
		}
	}

	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
			return
		}

		claims, err := casdoorsdk.ParseJwtToken(token)
		if err != nil {
			logger.Warn("Token verification failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}

		setPrincipal(c, principalFromClaims(claims))
		c.Next()
	}
}

// PrincipalFromContext returns the principal stored by the middleware.
func PrincipalFromContext(c *gin.Context) (*Principal, bool) {
	value, exists := c.Get(ContextKey)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*Principal)
	return principal, ok
}

func setPrincipal(c *gin.Context, principal *Principal) {
	c.Set(ContextKey, principal)
	c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), principal))
}

func principalFromClaims(claims *casdoorsdk.Claims) *Principal {
	role := RoleStudent
	switch {
	case claims.User.IsAdmin:
		role = RoleAdmin
	case claims.User.Tag == string(RoleTeacher):
		role = RoleTeacher
	}
	return &Principal{
		ID:    claims.User.Id,
		Name:  claims.User.Name,
		Email: claims.User.Email,
		Role:  role,
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
