package middleware

import (
	"context"
	"errors"
	"net/http"

	appidentity "github.com/fintermediary/backoffice/internal/application/identity"
	"github.com/fintermediary/backoffice/internal/domain/identity"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/infrastructure/logger"
	"github.com/fintermediary/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Organization context keys
const (
	OrganizationIDKey     = "org_id"
	OrganizationAccessKey = "organization_access"
)

// OrganizationAuthorizer resolves a user's access to an organization
type OrganizationAuthorizer interface {
	Authorize(ctx context.Context, userID, orgID uuid.UUID) (*appidentity.Access, error)
}

// OrganizationScopeConfig configures OrganizationScope
type OrganizationScopeConfig struct {
	Authorizer OrganizationAuthorizer
	Logger     *zap.Logger
	// AllowInactive lets members reach a suspended organization (to view or reactivate it)
	AllowInactive bool
	// Disabled skips the membership lookup and grants owner access. Development only.
	Disabled bool
}

// OrganizationScope resolves :orgId, checks the caller's membership and
// stores the organization id and access on the context. Must run after JWTAuth.
func OrganizationScope(cfg OrganizationScopeConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		orgID, err := uuid.Parse(c.Param("orgId"))
		if err != nil {
			abort(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Invalid organization ID format")
			return
		}

		var access *appidentity.Access
		if cfg.Disabled {
			access = &appidentity.Access{OrganizationID: orgID, Role: identity.MemberRoleOwner, Active: true}
		} else {
			userID, ok := GetUserID(c)
			if !ok {
				abort(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
				return
			}
			access, err = cfg.Authorizer.Authorize(c.Request.Context(), userID, orgID)
			if err != nil {
				var de *shared.DomainError
				switch {
				case errors.As(err, &de):
					abort(c, dto.GetHTTPStatus(de.Code), de.Code, de.Message)
				default:
					log.Error("Organization authorization failed", zap.String("organization_id", orgID.String()), zap.Error(err))
					abort(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
				}
				return
			}
		}

		if !access.Active && !cfg.AllowInactive {
			abort(c, http.StatusForbidden, "ORGANIZATION_INACTIVE", "Organization is suspended")
			return
		}

		c.Set(OrganizationIDKey, orgID)
		c.Set(OrganizationAccessKey, access)
		c.Set(logger.GinOrganizationIDKey, orgID.String())
		ctx := c.Request.Context()
		ctx, _ = logger.WithOrganizationID(ctx, orgID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireApprover allows only owners and admins through
func RequireApprover() gin.HandlerFunc {
	return func(c *gin.Context) {
		access := GetOrganizationAccess(c)
		if access == nil || !access.Role.CanApprove() {
			abort(c, http.StatusForbidden, dto.ErrCodeForbidden, "Only organization owners and admins can perform this action")
			return
		}
		c.Next()
	}
}

// GetOrganizationID returns the organization resolved by OrganizationScope
func GetOrganizationID(c *gin.Context) (uuid.UUID, bool) {
	if v, ok := c.Get(OrganizationIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

// GetOrganizationAccess returns the caller's access resolved by OrganizationScope
func GetOrganizationAccess(c *gin.Context) *appidentity.Access {
	if v, ok := c.Get(OrganizationAccessKey); ok {
		if a, ok := v.(*appidentity.Access); ok {
			return a
		}
	}
	return nil
}
