package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/msaleh-dev/catalog-backend/pkg/auth"
	"github.com/msaleh-dev/catalog-backend/pkg/config"
	"github.com/msaleh-dev/catalog-backend/pkg/db/models"
	pkgerrors "github.com/msaleh-dev/catalog-backend/pkg/errors"
	"github.com/msaleh-dev/catalog-backend/pkg/security"
)

type fakeUserRepo struct {
	byEmail map[string]*models.User
	findErr error
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "catalog-backend",
		ExpirationMinutes: 60,
	}
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func TestLogin_Success(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Name:         "Login Tester",
		Email:        "login@example.com",
		PasswordHash: mustHash(t, "correct horse"),
		IsAdmin:      true,
	}
	svc, err := NewService(ServiceParams{
		UserRepo:  &fakeUserRepo{byEmail: map[string]*models.User{user.Email: user}},
		JWTConfig: testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "Login@Example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}
	if resp.User.ID != user.ID || resp.User.Name != "Login Tester" || !resp.User.IsAdmin {
		t.Fatalf("unexpected user projection: %+v", resp.User)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLogin_UnknownEmailIsNotFound(t *testing.T) {
	svc, err := NewService(ServiceParams{
		UserRepo:  &fakeUserRepo{byEmail: map[string]*models.User{}},
		JWTConfig: testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	var typed *pkgerrors.Error
	if !errors.As(err, &typed) || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if typed.Message() != "user not found" {
		t.Fatalf("unexpected message: %s", typed.Message())
	}
}

func TestLogin_WrongPasswordIsUnauthorized(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "login@example.com",
		PasswordHash: mustHash(t, "right"),
	}
	svc, err := NewService(ServiceParams{
		UserRepo:  &fakeUserRepo{byEmail: map[string]*models.User{user.Email: user}},
		JWTConfig: testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "login@example.com", Password: "wrong"})
	var typed *pkgerrors.Error
	if !errors.As(err, &typed) || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if typed.Message() != "wrong password" {
		t.Fatalf("unexpected message: %s", typed.Message())
	}
}

func TestLogin_MissingFields(t *testing.T) {
	svc, err := NewService(ServiceParams{
		UserRepo:  &fakeUserRepo{},
		JWTConfig: testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	for _, req := range []LoginRequest{
		{Email: "", Password: "x"},
		{Email: "a@example.com", Password: ""},
	} {
		_, err := svc.Login(context.Background(), req)
		var typed *pkgerrors.Error
		if !errors.As(err, &typed) || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %+v, got %v", req, err)
		}
	}
}

func TestLogin_RepoFailureIsInternal(t *testing.T) {
	svc, err := NewService(ServiceParams{
		UserRepo:  &fakeUserRepo{findErr: errors.New("connection refused")},
		JWTConfig: testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "x"})
	var typed *pkgerrors.Error
	if !errors.As(err, &typed) || typed.Code() != pkgerrors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}
