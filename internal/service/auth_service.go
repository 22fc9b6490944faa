package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/edusync/edusync-portal/internal/config"
	"github.com/edusync/edusync-portal/internal/edusync"
	"github.com/edusync/edusync-portal/internal/model"
	"github.com/edusync/edusync-portal/internal/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Claims extends JWT standard claims with the portal user. The token id
// (jti) is also the key of the server-side session record.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// AuthService handles login against EduSync, portal JWTs, and sessions.
type AuthService struct {
	cfg      *config.Config
	api      Upstream
	sessions session.Store
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, api Upstream, sessions session.Store, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:      cfg,
		api:      api,
		sessions: sessions,
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

// Login verifies credentials with EduSync, stores the session, and issues a
// portal token bound to it.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	u, err := s.api.As("").Login(ctx, edusync.LoginRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		if edusync.IsStatus(err, http.StatusUnauthorized) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return nil, err
	}

	user := session.FromAPI(u)
	if user.Email == "" {
		user.Email = req.Email
	}

	jti := uuid.New().String()
	sc := session.NewContext(s.sessions, jti, s.log)
	if err := sc.Login(ctx, user); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	token, err := s.issueToken(jti, user)
	if err != nil {
		_ = sc.Logout(ctx)
		return nil, err
	}

	s.log.Info().Str("user_id", user.UserID).Str("role", user.Role).Msg("User logged in")
	return &model.LoginResponse{Token: token, User: model.NewUserProfile(user)}, nil
}

func (s *AuthService) issueToken(jti string, u session.User) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   u.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		UserID: u.UserID,
		Name:   u.Name,
		Role:   u.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// OpenSession initialises the session context behind a token. A logged-out
// or expired record yields ErrSessionInvalidated.
func (s *AuthService) OpenSession(ctx context.Context, claims *Claims) (*session.Context, error) {
	sc := session.NewContext(s.sessions, claims.ID, s.log)
	if err := sc.Init(ctx); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	u, ok := sc.Current()
	if !ok || u.UserID != claims.UserID {
		return nil, ErrSessionInvalidated
	}
	return sc, nil
}

// Logout clears the session; the token stops working immediately.
func (s *AuthService) Logout(ctx context.Context, sc *session.Context) error {
	return sc.Logout(ctx)
}

// Register creates an account upstream. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.UserProfile, error) {
	u, err := s.api.As("").Register(ctx, edusync.RegisterRequest{
		Name: req.Name, Email: req.Email, Password: req.Password, Role: req.Role,
	})
	if err != nil {
		return nil, err
	}
	profile := model.UserProfile{UserID: u.UserID, Name: u.Name, Email: u.Email, Role: u.Role}
	if profile.Name == "" {
		profile.Name = req.Name
	}
	if profile.Email == "" {
		profile.Email = req.Email
	}
	if profile.Role == "" {
		profile.Role = req.Role
	}
	return &profile, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, req model.ForgotPasswordRequest) (*edusync.MessageResponse, error) {
	return s.api.As("").ForgotPassword(ctx, edusync.ForgotPasswordRequest{Email: req.Email})
}

// ResetPassword refuses mismatched passwords before any network call.
func (s *AuthService) ResetPassword(ctx context.Context, req model.ResetPasswordRequest) (*edusync.MessageResponse, error) {
	if req.NewPassword != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	return s.api.As("").ResetPassword(ctx, edusync.ResetPasswordRequest{
		Token: req.Token, NewPassword: req.NewPassword, ConfirmPassword: req.ConfirmPassword,
	})
}
