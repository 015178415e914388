package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/lingobridge-backend/internal/data/repos"
	"github.com/yungbote/lingobridge-backend/internal/data/repos/testutil"
	"github.com/yungbote/lingobridge-backend/internal/domain"
	pkgerrors "github.com/yungbote/lingobridge-backend/internal/pkg/errors"
	"github.com/yungbote/lingobridge-backend/internal/requestdata"
)

func newAuthFixture(t *testing.T) (AuthService, *fakeUserRepo, *fakeUserTokenRepo) {
	t.Helper()
	users := newFakeUserRepo()
	tokens := &fakeUserTokenRepo{}
	svc := NewAuthService(nil, testLogger(t), users, tokens, "test-secret", 15*time.Minute, 24*time.Hour)
	return svc, users, tokens
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	users.add("taken@example.com", nil)

	cases := []struct {
		name string
		user domain.User
		want error
	}{
		{"missing email", domain.User{Email: "   ", Password: "longenough"}, pkgerrors.ErrInvalidArgument},
		{"not an email", domain.User{Email: "nobody", Password: "longenough"}, pkgerrors.ErrInvalidArgument},
		{"short password", domain.User{Email: "ana@example.com", Password: "short"}, pkgerrors.ErrInvalidArgument},
		{"duplicate email", domain.User{Email: "Taken@Example.COM ", Password: "longenough"}, pkgerrors.ErrConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := tc.user
			err := svc.Register(context.Background(), &u)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	svc, users, _ := newAuthFixture(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("expected hash, got error %v", err)
	}
	known := users.add("ana@example.com", nil)
	known.Password = string(hash)

	if _, _, err := svc.Login(context.Background(), "", ""); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for empty credentials, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "correct-horse"); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown email, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "ana@example.com", "wrong-horse"); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong password, got %v", err)
	}
}

func TestAuthServiceRefreshRequiresContext(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	if _, _, err := svc.Refresh(context.Background()); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without request data, got %v", err)
	}
	if err := svc.Logout(context.Background()); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without request data, got %v", err)
	}
}

func TestAuthServiceSetContextFromToken(t *testing.T) {
	svc, _, tokens := newAuthFixture(t)
	as := svc.(*authService)

	userID := uuid.New()
	access, err := as.signAccessToken(userID)
	if err != nil {
		t.Fatalf("expected signed token, got error %v", err)
	}
	tokens.tokens = append(tokens.tokens, &domain.UserToken{
		ID:           uuid.New(),
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(time.Hour),
	})

	ctx, err := svc.SetContextFromToken(context.Background(), access)
	if err != nil {
		t.Fatalf("expected context, got error %v", err)
	}
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		t.Fatalf("expected request data on context, got nil")
	}
	if rd.UserID != userID {
		t.Fatalf("expected user %s, got %s", userID, rd.UserID)
	}
	if rd.TokenString != access {
		t.Fatalf("expected access token carried through, got %q", rd.TokenString)
	}
	if rd.RefreshToken != "refresh-1" {
		t.Fatalf("expected refresh token refresh-1, got %q", rd.RefreshToken)
	}
}

func TestAuthServiceSetContextRejectsBadTokens(t *testing.T) {
	svc, _, tokens := newAuthFixture(t)
	as := svc.(*authService)
	userID := uuid.New()

	otherUsers := newFakeUserRepo()
	other := NewAuthService(nil, testLogger(t), otherUsers, &fakeUserTokenRepo{}, "other-secret", 15*time.Minute, 24*time.Hour).(*authService)
	foreign, err := other.signAccessToken(userID)
	if err != nil {
		t.Fatalf("expected signed token, got error %v", err)
	}

	expiredSvc := NewAuthService(nil, testLogger(t), newFakeUserRepo(), tokens, "test-secret", -time.Minute, 24*time.Hour).(*authService)
	expired, err := expiredSvc.signAccessToken(userID)
	if err != nil {
		t.Fatalf("expected signed token, got error %v", err)
	}

	revoked, err := as.signAccessToken(userID)
	if err != nil {
		t.Fatalf("expected signed token, got error %v", err)
	}

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"wrong signature", foreign},
		{"expired", expired},
		{"revoked session", revoked},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.SetContextFromToken(context.Background(), tc.token); !errors.Is(err, pkgerrors.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Ana@Example.COM ", "ana@example.com"},
		{"plain@example.com", "plain@example.com"},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := normalizeEmail(tc.in); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

// TestAuthServiceLifecycle drives register, login, refresh rotation and
// logout against a real database.
func TestAuthServiceLifecycle(t *testing.T) {
	tx := testutil.Tx(t)
	log := testutil.Logger(t)
	userRepo := repos.NewUserRepo(tx, log)
	tokenRepo := repos.NewUserTokenRepo(tx, log)
	svc := NewAuthService(tx, log, userRepo, tokenRepo, "lifecycle-secret", 15*time.Minute, 24*time.Hour)
	ctx := context.Background()

	email := fmt.Sprintf("lifecycle-%s@example.com", uuid.NewString())
	user := &domain.User{Email: " " + email + " ", Password: "hunter2secret", FirstName: "Ana", LastName: "García"}
	if err := svc.Register(ctx, user); err != nil {
		t.Fatalf("expected registration to succeed, got %v", err)
	}
	if user.Email != email {
		t.Fatalf("expected normalized email %q, got %q", email, user.Email)
	}
	if user.Password == "hunter2secret" {
		t.Fatalf("expected password to be hashed, got plaintext")
	}

	access, refresh, err := svc.Login(ctx, email, "hunter2secret")
	if err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatalf("expected token pair, got %q / %q", access, refresh)
	}

	authed, err := svc.SetContextFromToken(ctx, access)
	if err != nil {
		t.Fatalf("expected token to authenticate, got %v", err)
	}
	if got := requestdata.UserID(authed); got != user.ID {
		t.Fatalf("expected user %s on context, got %s", user.ID, got)
	}

	access2, refresh2, err := svc.Refresh(authed)
	if err != nil {
		t.Fatalf("expected refresh to succeed, got %v", err)
	}
	if access2 == access || refresh2 == refresh {
		t.Fatalf("expected rotated token pair, got same values back")
	}

	stale := requestdata.WithRequestData(ctx, &requestdata.RequestData{RefreshToken: refresh, UserID: user.ID})
	if _, _, err := svc.Refresh(stale); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("expected rotated-out refresh token to be rejected, got %v", err)
	}

	authed2, err := svc.SetContextFromToken(ctx, access2)
	if err != nil {
		t.Fatalf("expected new access token to authenticate, got %v", err)
	}
	if err := svc.Logout(authed2); err != nil {
		t.Fatalf("expected logout to succeed, got %v", err)
	}
	if _, err := svc.SetContextFromToken(ctx, access2); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("expected revoked session to be rejected, got %v", err)
	}
}
