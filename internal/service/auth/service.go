package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medrecruit/onboard-api/internal/apperror"
	"github.com/medrecruit/onboard-api/internal/identity"
	"github.com/medrecruit/onboard-api/internal/model"
	"github.com/medrecruit/onboard-api/internal/repository"
	"github.com/medrecruit/onboard-api/pkg/auth"
)

// Service owns session issue and teardown. Credentials are verified by the
// identity gateway; this service only deals in tokens and user rows.
type Service struct {
	users   repository.UserRepository
	tokens  repository.TokenRepository
	gateway identity.Gateway
	jwtSvc  auth.JWTService
}

func NewService(users repository.UserRepository, tokens repository.TokenRepository, gateway identity.Gateway, jwtSvc auth.JWTService) *Service {
	return &Service{
		users:   users,
		tokens:  tokens,
		gateway: gateway,
		jwtSvc:  jwtSvc,
	}
}

// Login authenticates against the identity gateway and issues a token pair.
// A user row missing after successful external authentication is created on
// the spot with the patient role.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, *model.TokenPair, error) {
	externalID, err := s.gateway.Authenticate(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if apperror.Is(err, apperror.KindNotFound) {
		user = &model.User{
			ExternalID: externalID,
			Email:      email,
			Role:       model.RolePatient,
			Status:     model.UserStatusActive,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, nil, fmt.Errorf("failed to create user on first login: %w", err)
		}
	} else if err != nil {
		return nil, nil, err
	}

	if user.Status == model.UserStatusInactive {
		return nil, nil, apperror.Auth("account is inactive")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		log.Warn().Err(err).Stringer("user_id", user.ID).Msg("failed to record login time")
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// IssueSession mints a token pair for an already-authenticated user, used by
// the set-permanent-credential auto-login.
func (s *Service) IssueSession(ctx context.Context, user *model.User) (*model.TokenPair, error) {
	return s.issueTokens(user)
}

// ValidateSession verifies the access token and checks it has not been
// revoked by a logout.
func (s *Service) ValidateSession(ctx context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.tokens.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, apperror.External(err, "session store unavailable")
	}
	if revoked {
		return nil, apperror.Auth("session has been revoked")
	}

	return claims, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. There is no
// automatic rotation; expiry of both tokens forces a new login.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.User, *model.TokenPair, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, err
	}

	revoked, err := s.tokens.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, nil, apperror.External(err, "session store unavailable")
	}
	if revoked {
		return nil, nil, apperror.Auth("session has been revoked")
	}

	user, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Logout revokes both tokens of the pair until they would have expired.
func (s *Service) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if claims, err := s.jwtSvc.ValidateAccessToken(accessToken); err == nil {
		if err := s.tokens.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
			return apperror.External(err, "session store unavailable")
		}
	}
	if refreshToken != "" {
		if claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken); err == nil {
			if err := s.tokens.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
				return apperror.External(err, "session store unavailable")
			}
		}
	}
	return nil
}

func (s *Service) issueTokens(user *model.User) (*model.TokenPair, error) {
	access, accessClaims, err := s.jwtSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	refresh, _, err := s.jwtSvc.GenerateRefreshToken(user)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    accessClaims.ExpiresAt,
	}, nil
}
