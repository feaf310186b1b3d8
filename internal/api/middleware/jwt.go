package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/octavia-ai/octavia/internal/models"
	"github.com/octavia-ai/octavia/internal/utils"
)

type apiError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

// AuthConfig holds the HS256 verification settings of the identity backend.
// Issuer and Audience are optional.
type AuthConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

type identityClaims struct {
	jwt.RegisteredClaims
	Email         string         `json:"email"`
	Role          string         `json:"role"`
	InstitutionID string         `json:"institution_id"`
	AppMetadata   map[string]any `json:"app_metadata"`
}

// role prefers app_metadata.role, then the top-level claim, then student.
func (c *identityClaims) role() models.UserRole {
	if c.AppMetadata != nil {
		if s, ok := c.AppMetadata["role"].(string); ok && s != "" {
			return models.UserRole(strings.ToLower(s))
		}
	}
	switch r := models.UserRole(strings.ToLower(c.Role)); r {
	case models.RoleAdmin, models.RoleInstitutionAdmin, models.RoleStudent:
		return r
	}
	return models.RoleStudent
}

func (c *identityClaims) institution() string {
	if c.AppMetadata != nil {
		if s, ok := c.AppMetadata["institution_id"].(string); ok && s != "" {
			return s
		}
	}
	return c.InstitutionID
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{Code: utils.CodeUnauthorized, Message: msg})
}

func JWTAuth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{
				Code:    utils.CodeInternal,
				Message: "AUTH_JWT_SECRET is not set",
			})
			return
		}

		raw := bearerToken(c)
		if raw == "" {
			unauthorized(c, "missing bearer token")
			return
		}

		claims := &identityClaims{}
		tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			return []byte(cfg.Secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil || tok == nil || !tok.Valid {
			unauthorized(c, "invalid token")
			return
		}

		if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
			unauthorized(c, "invalid token issuer")
			return
		}

		if cfg.Audience != "" {
			valid := false
			for _, aud := range claims.Audience {
				if aud == cfg.Audience {
					valid = true
					break
				}
			}
			if !valid {
				unauthorized(c, "invalid token audience")
				return
			}
		}

		if claims.Subject == "" {
			unauthorized(c, "missing subject")
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("email", claims.Email)
		c.Set("role", string(claims.role()))
		c.Set("institution_id", claims.institution())
		c.Next()
	}
}

// bearerToken reads the Authorization header, or the access_token query
// parameter for WebSocket upgrades where browsers cannot set headers.
func bearerToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if c.IsWebsocket() {
		return strings.TrimSpace(c.Query("access_token"))
	}
	return ""
}
