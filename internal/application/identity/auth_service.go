// Package identity provides application services for sign-in and organizations.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/identity"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // Maximum failed login attempts before lockout
	LockDuration     time.Duration // Duration to lock account after max attempts
	RevocationTTL    time.Duration // How long a password-change revocation is remembered
}

// DefaultAuthServiceConfig returns default auth service configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
		RevocationTTL:    7 * 24 * time.Hour,
	}
}

// AuthService handles registration, login, token refresh and logout
type AuthService struct {
	userRepo       identity.UserRepository
	membershipRepo identity.MembershipRepository
	orgs           *OrganizationService
	jwtService     *auth.JWTService
	blacklist      auth.TokenBlacklist
	config         AuthServiceConfig
	logger         *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo identity.UserRepository,
	membershipRepo identity.MembershipRepository,
	orgs *OrganizationService,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		orgs:           orgs,
		jwtService:     jwtService,
		blacklist:      blacklist,
		config:         config,
		logger:         logger,
	}
}

// Register creates a user and signs them in without an active organization
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An account with this email already exists")
	}

	user, err := identity.NewUser(req.Email, req.Name, req.Password)
	if err != nil {
		return nil, err
	}
	user.RecordLoginSuccess()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return s.issue(user, nil)
}

// Login authenticates a user and issues tokens scoped to one of their organizations
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := normalizeEmail(req.Email)
	s.logger.Info("Login attempt", zap.String("email", email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login failed: user not found", zap.String("email", email))
			return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
		}
		return nil, err
	}

	if user.Status == identity.UserStatusDeactivated {
		s.logger.Warn("Login failed: user deactivated", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}
	if user.IsLocked() {
		s.logger.Warn("Login failed: user locked", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is temporarily locked. Please try again later")
	}

	if !user.VerifyPassword(req.Password) {
		locked := user.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.userRepo.Save(ctx, user); err != nil {
			s.logger.Error("Failed to update user after login failure", zap.Error(err))
		}
		if locked {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("user_id", user.ID.String()),
				zap.Int("attempts", s.config.MaxLoginAttempts))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Account has been locked")
		}
		s.logger.Warn("Invalid password attempt",
			zap.String("user_id", user.ID.String()),
			zap.Int("failed_attempts", user.FailedAttempts))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	membership, err := s.activeMembership(ctx, user.ID, req.OrganizationID)
	if err != nil {
		return nil, err
	}

	user.RecordLoginSuccess()
	if err := s.userRepo.Save(ctx, user); err != nil {
		// A failed bookkeeping write does not fail the login
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.logger.Info("User logged in successfully", zap.String("user_id", user.ID.String()))
	return s.issue(user, membership)
}

// Refresh exchanges a refresh token for a new pair and revokes the old refresh token
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	userID, err := claims.UserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("User not found during token refresh", zap.String("user_id", userID.String()))
		return nil, shared.NewDomainError("TOKEN_INVALID", "User no longer exists")
	}
	if !user.CanLogin() {
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
	}

	orgID, err := claims.OrganizationUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid organization in token")
	}
	if orgID != uuid.Nil {
		if _, err := s.membershipRepo.FindByUserAndOrganization(ctx, userID, orgID); err != nil {
			s.logger.Warn("Token refresh for revoked membership",
				zap.String("user_id", userID.String()),
				zap.String("organization_id", orgID.String()))
			return nil, shared.NewDomainError("FORBIDDEN", "Membership in the organization no longer exists")
		}
	}

	pair, err := s.jwtService.RefreshTokenPair(req.RefreshToken, user.Email)
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	// Refresh tokens are single use
	if claims.ID != "" {
		if err := s.blacklist.RevokeToken(ctx, claims.ID, claims.RemainingTTL()); err != nil {
			s.logger.Error("Failed to revoke used refresh token", zap.Error(err))
		}
	}

	resp := toTokenResponse(pair)
	return &resp, nil
}

// Logout revokes the access token identified by claims and, when given, the refresh token
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims, req LogoutRequest) error {
	if claims.ID != "" {
		if err := s.blacklist.RevokeToken(ctx, claims.ID, claims.RemainingTTL()); err != nil {
			return err
		}
	}
	if req.RefreshToken != "" {
		refresh, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
		if err == nil && refresh.UserID == claims.UserID && refresh.ID != "" {
			if err := s.blacklist.RevokeToken(ctx, refresh.ID, refresh.RemainingTTL()); err != nil {
				return err
			}
		}
	}
	s.logger.Info("User logged out",
		zap.String("user_id", claims.UserID),
		zap.String("organization_id", claims.OrganizationID))
	return nil
}

// Me returns the caller's profile and organizations
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*CurrentUserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	orgs, err := s.orgs.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &CurrentUserResponse{
		User:          ToUserResponse(user),
		Organizations: orgs,
	}, nil
}

// ChangePassword changes the caller's password and revokes every token issued so far
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to update user after password change", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to update password")
	}
	if err := s.blacklist.RevokeUser(ctx, userID.String(), s.config.RevocationTTL); err != nil {
		s.logger.Error("Failed to revoke tokens after password change", zap.Error(err))
		return err
	}

	s.logger.Info("User password changed", zap.String("user_id", userID.String()))
	return nil
}

// ValidateAccessToken parses an access token and rejects revoked tokens
func (s *AuthService) ValidateAccessToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateAccessToken(token)
	if err != nil {
		return nil, mapTokenError(err)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	if claims.ID != "" {
		revoked, err := s.blacklist.IsTokenRevoked(ctx, claims.ID)
		if err != nil {
			return err
		}
		if revoked {
			return shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
		}
	}
	revoked, err := s.blacklist.IsUserRevoked(ctx, claims.UserID, claims.IssuedAtTime())
	if err != nil {
		return err
	}
	if revoked {
		return shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked. Please log in again")
	}
	return nil
}

// activeMembership picks the requested organization or the user's first membership.
// Users without memberships sign in without an organization.
func (s *AuthService) activeMembership(ctx context.Context, userID uuid.UUID, requested *uuid.UUID) (*identity.Membership, error) {
	if requested != nil && *requested != uuid.Nil {
		m, err := s.membershipRepo.FindByUserAndOrganization(ctx, userID, *requested)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("FORBIDDEN", "You are not a member of this organization")
			}
			return nil, err
		}
		return m, nil
	}

	memberships, err := s.membershipRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return nil, nil
	}
	return &memberships[0], nil
}

func (s *AuthService) issue(user *identity.User, membership *identity.Membership) (*LoginResponse, error) {
	input := auth.GenerateTokenInput{UserID: user.ID, Email: user.Email}
	if membership != nil {
		input.OrganizationID = membership.OrganizationID
		input.Role = string(membership.Role)
	}

	pair, err := s.jwtService.GenerateTokenPair(input)
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	resp := &LoginResponse{
		TokenResponse: toTokenResponse(pair),
		User:          ToUserResponse(user),
	}
	if membership != nil {
		orgID := membership.OrganizationID
		resp.OrganizationID = &orgID
		resp.Role = string(membership.Role)
	}
	return resp, nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	default:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid token")
	}
}
