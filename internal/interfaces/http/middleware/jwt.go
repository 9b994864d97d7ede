package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/infrastructure/auth"
	"github.com/fintermediary/backoffice/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	JWTUserIDKey  = "jwt_user_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
	// DevUserHeader names the acting user when authentication is disabled
	DevUserHeader = "X-User-ID"
)

// TokenValidator validates access tokens, including revocation checks
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, token string) (*auth.Claims, error)
}

// JWTConfig configures JWTAuth
type JWTConfig struct {
	Validator TokenValidator
	Logger    *zap.Logger
	// Disabled trusts the X-User-ID header instead of a token. Development only.
	Disabled bool
}

// JWTAuth requires a valid bearer token and stores its claims on the context
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if cfg.Disabled {
			userID, err := uuid.Parse(c.GetHeader(DevUserHeader))
			if err != nil {
				abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "X-User-ID header is required when authentication is disabled")
				return
			}
			setClaims(c, &auth.Claims{UserID: userID.String()})
			c.Next()
			return
		}

		header := c.GetHeader(AuthHeaderKey)
		if !strings.HasPrefix(header, BearerPrefix) {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
		if token == "" {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}

		claims, err := cfg.Validator.ValidateAccessToken(c.Request.Context(), token)
		if err != nil {
			code, message := "UNAUTHORIZED", "Authentication required"
			var de *shared.DomainError
			if errors.As(err, &de) {
				code, message = de.Code, de.Message
			} else {
				log.Error("Token validation failed", zap.Error(err))
			}
			log.Debug("JWT authentication failed",
				zap.String("code", code),
				zap.String("path", c.Request.URL.Path),
			)
			abort(c, http.StatusUnauthorized, code, message)
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(JWTUserIDKey, claims.UserID)
	c.Set(logger.GinUserIDKey, claims.UserID)

	ctx := c.Request.Context()
	ctx, _ = logger.WithUserID(ctx, claims.UserID)
	c.Request = c.Request.WithContext(ctx)
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetUserID returns the authenticated user's id
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(JWTUserIDKey))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
