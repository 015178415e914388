package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/lingobridge-backend/internal/data/repos"
	"github.com/yungbote/lingobridge-backend/internal/domain"
	pkgerrors "github.com/yungbote/lingobridge-backend/internal/pkg/errors"
	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
	"github.com/yungbote/lingobridge-backend/internal/requestdata"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, user *domain.User) error
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	Refresh(ctx context.Context) (accessToken, refreshToken string, err error)
	Logout(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	AccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) Register(ctx context.Context, user *domain.User) error {
	user.Email = normalizeEmail(user.Email)
	user.FirstName = strings.TrimSpace(user.FirstName)
	user.LastName = strings.TrimSpace(user.LastName)

	if user.Email == "" || !strings.Contains(user.Email, "@") {
		return fmt.Errorf("valid email required: %w", pkgerrors.ErrInvalidArgument)
	}
	if len(user.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", pkgerrors.ErrInvalidArgument)
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, user.Email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if exists {
		return fmt.Errorf("email already registered: %w", pkgerrors.ErrConflict)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hashed)

	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user.ID = uuid.New()
		if err := as.userRepo.Create(ctx, tx, []*domain.User{user}); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
}

func (as *authService) Login(ctx context.Context, email, password string) (string, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", "", fmt.Errorf("email and password required: %w", pkgerrors.ErrInvalidArgument)
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", "", fmt.Errorf("load user by email: %w", err)
	}
	if len(users) == 0 {
		return "", "", fmt.Errorf("invalid credentials: %w", pkgerrors.ErrUnauthorized)
	}
	user := users[0]

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", fmt.Errorf("invalid credentials: %w", pkgerrors.ErrUnauthorized)
	}

	var accessToken, refreshToken string
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := as.userTokenRepo.DeleteExpired(ctx, tx, time.Now()); err != nil {
			return fmt.Errorf("prune expired tokens: %w", err)
		}
		tok, err := as.issueTokenPair(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		accessToken = tok.AccessToken
		refreshToken = tok.RefreshToken
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) Refresh(ctx context.Context) (string, string, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.RefreshToken == "" {
		return "", "", fmt.Errorf("refresh token missing: %w", pkgerrors.ErrUnauthorized)
	}

	var accessToken, refreshToken string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := as.userTokenRepo.GetByRefreshTokens(ctx, tx, []string{rd.RefreshToken})
		if err != nil {
			return fmt.Errorf("load refresh token: %w", err)
		}
		if len(existing) == 0 {
			return fmt.Errorf("unknown refresh token: %w", pkgerrors.ErrUnauthorized)
		}
		current := existing[0]
		if current.ExpiresAt.Before(time.Now()) {
			if err := as.userTokenRepo.SoftDeleteByRefreshTokens(ctx, tx, []string{current.RefreshToken}); err != nil {
				return fmt.Errorf("delete expired token: %w", err)
			}
			return fmt.Errorf("refresh token expired: %w", pkgerrors.ErrUnauthorized)
		}

		tok, err := as.issueTokenPair(ctx, tx, current.UserID)
		if err != nil {
			return err
		}
		if err := as.userTokenRepo.SoftDeleteByRefreshTokens(ctx, tx, []string{current.RefreshToken}); err != nil {
			return fmt.Errorf("rotate refresh token: %w", err)
		}
		accessToken = tok.AccessToken
		refreshToken = tok.RefreshToken
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) Logout(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return fmt.Errorf("no session token in context: %w", pkgerrors.ErrUnauthorized)
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := as.userTokenRepo.SoftDeleteByAccessTokens(ctx, tx, []string{rd.TokenString}); err != nil {
			return fmt.Errorf("revoke session: %w", err)
		}
		return nil
	})
}

// SetContextFromToken verifies the JWT, checks the session row still exists
// and attaches the caller to the context for downstream services.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, fmt.Errorf("token required: %w", pkgerrors.ErrUnauthorized)
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("parse token: %w: %w", pkgerrors.ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, fmt.Errorf("invalid token: %w", pkgerrors.ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid subject in token: %w", pkgerrors.ErrUnauthorized)
	}

	sessions, err := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
	if err != nil {
		return ctx, fmt.Errorf("load session: %w", err)
	}
	if len(sessions) == 0 {
		return ctx, fmt.Errorf("session revoked: %w", pkgerrors.ErrUnauthorized)
	}

	rd := &requestdata.RequestData{
		TokenString:  tokenString,
		RefreshToken: sessions[0].RefreshToken,
		UserID:       userID,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) AccessTTL() time.Duration {
	return as.accessTTL
}

func (as *authService) issueTokenPair(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*domain.UserToken, error) {
	access, err := as.signAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	token := &domain.UserToken{
		ID:           uuid.New(),
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: uuid.New().String(),
		ExpiresAt:    time.Now().Add(as.refreshTTL),
	}
	if err := as.userTokenRepo.Create(ctx, tx, []*domain.UserToken{token}); err != nil {
		return nil, fmt.Errorf("store token pair: %w", err)
	}
	return token, nil
}

func (as *authService) signAccessToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
