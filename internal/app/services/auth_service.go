package services

import (
	"context"

	"github.com/tsegaye25/load-tracking/internal/app/models"
	"github.com/tsegaye25/load-tracking/internal/app/models/dto"
	"github.com/tsegaye25/load-tracking/internal/pkg/apperrors"
	"github.com/tsegaye25/load-tracking/internal/pkg/auth"
	"github.com/tsegaye25/load-tracking/internal/pkg/logger"
)

// AuthUserStore is the user access the auth service needs.
type AuthUserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// TokenStore persists refresh tokens.
type TokenStore interface {
	Store(ctx context.Context, token *models.RefreshToken) error
	GetByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	DeleteByUserID(ctx context.Context, userID int64) error
}

// AuthService handles registration, login and token refresh.
type AuthService struct {
	users  AuthUserStore
	tokens TokenStore
	jwt    *auth.JWTService
}

// NewAuthService creates a new auth service
func NewAuthService(users AuthUserStore, tokens TokenStore, jwt *auth.JWTService) *AuthService {
	return &AuthService{users: users, tokens: tokens, jwt: jwt}
}

// Register creates a new account. Self-registration always yields an
// instructor; elevated roles are assigned by an admin afterwards.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	role := models.RoleInstructor
	if req.Role != "" {
		role = models.Role(req.Role)
		if !role.Valid() {
			return nil, apperrors.NewValidationError("role", "unknown role")
		}
		if role != models.RoleInstructor {
			return nil, apperrors.NewPermissionDeniedError("self-registration is limited to the instructor role")
		}
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:      req.Email,
		Password:   hashed,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Role:       role,
		Department: req.Department,
		School:     req.School,
		IsActive:   true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info().
		Int64("userId", user.ID).
		Str("email", user.Email).
		Msg("User registered")

	return user, nil
}

// Login verifies credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, *models.User, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		// The same answer whether the account exists or the password is wrong.
		return nil, nil, apperrors.ErrInvalidCredentials
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, apperrors.ErrAccountDisabled
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return tokens, user, nil
}

// Refresh exchanges a refresh token for a new token pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	stored, err := s.tokens.GetByToken(ctx, refreshToken)
	if err != nil {
		return nil, apperrors.ErrTokenInvalid
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, apperrors.ErrTokenInvalid
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes the caller's refresh token
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	return s.tokens.DeleteByUserID(ctx, userID)
}

// CurrentUser loads the account behind validated claims
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}
	return user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwt.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}

	err = s.tokens.Store(ctx, &models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: s.jwt.GetRefreshTokenExpiry(),
	})
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresIn:        expiresIn,
		RefreshExpiresIn: refreshExpiresIn,
		TokenType:        "Bearer",
	}, nil
}
