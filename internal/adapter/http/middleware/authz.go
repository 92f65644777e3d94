package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/mahmudalamin/zbooksapp-sub000/configs"
)

// userIDKey is where the resolved caller identity lives in the gin context.
// Handlers read it via UserID(c) and pass it explicitly into use cases; core
// logic never looks at ambient session state.
const userIDKey = "auth_user_id"

type Authz struct {
	cfg configs.Config
}

func NewAuthz(cfg configs.Config) *Authz {
	return &Authz{cfg: cfg}
}

// UserID returns the authenticated caller id set by Require, or "".
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// Require checks the bearer JWT, ensures all required permissions are
// present, and resolves the subject claim into the request context.
func (a *Authz) Require(requiredPerms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			unauth(c, "invalid_request", "missing bearer token")
			return
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(a.cfg.Security.JWTSecret), nil
		}, jwt.WithLeeway(30*time.Second)) // small clock skew

		if err != nil || !token.Valid {
			unauth(c, "invalid_token", "invalid jwt")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			unauth(c, "invalid_token", "claims parsing error")
			return
		}

		if claims["iss"] != a.cfg.Security.Issuer || claims["aud"] != a.cfg.Security.Audience {
			unauth(c, "invalid_token", "iss/aud mismatch")
			return
		}

		if !hasAll(extractPerms(claims), requiredPerms) {
			forbidden(c, "insufficient_scope", "missing required permissions")
			return
		}

		if sub, ok := claims["sub"].(string); ok {
			c.Set(userIDKey, sub)
		}

		c.Next()
	}
}

func extractPerms(claims jwt.MapClaims) map[string]struct{} {
	out := map[string]struct{}{}
	if arr, ok := claims["perms"].([]any); ok {
		for _, v := range arr {
			if s, ok := v.(string); ok && s != "" {
				out[s] = struct{}{}
			}
		}
	}
	return out
}

func hasAll(have map[string]struct{}, req []string) bool {
	for _, r := range req {
		if _, ok := have[r]; !ok {
			return false
		}
	}
	return true
}

func unauth(c *gin.Context, code, desc string) {
	c.Header("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": code, "error_description": desc})
}

func forbidden(c *gin.Context, code, desc string) {
	c.Header("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": code, "error_description": desc})
}
