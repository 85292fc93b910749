package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/msaleh-dev/catalog-backend/internal/users"
	"github.com/msaleh-dev/catalog-backend/pkg/config"
	"github.com/msaleh-dev/catalog-backend/pkg/db/models"
	pkgerrors "github.com/msaleh-dev/catalog-backend/pkg/errors"
	"github.com/msaleh-dev/catalog-backend/pkg/security"
)

type fakeRegisterRepo struct {
	created   []users.CreateUserDTO
	createErr error
}

func (f *fakeRegisterRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, dto)
	return dto.ToModel(), nil
}

func newRegisterService(t *testing.T, repo *fakeRegisterRepo) RegisterService {
	t.Helper()
	svc, err := NewRegisterService(RegisterServiceParams{
		UserRepo:       repo,
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("new register service: %v", err)
	}
	return svc
}

func TestRegister_HashesPasswordAndLowercasesEmail(t *testing.T) {
	repo := &fakeRegisterRepo{}
	svc := newRegisterService(t, repo)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "New User",
		Email:    "New.User@Example.COM",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.Message == "" {
		t.Fatal("expected acknowledgement message")
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(repo.created))
	}
	dto := repo.created[0]
	if dto.Email != "new.user@example.com" {
		t.Fatalf("email not normalized: %s", dto.Email)
	}
	if dto.PasswordHash == "hunter22" || !strings.HasPrefix(dto.PasswordHash, "$argon2id$") {
		t.Fatalf("password not hashed: %s", dto.PasswordHash)
	}
	ok, err := security.VerifyPassword("hunter22", dto.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify, ok=%v err=%v", ok, err)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	svc := newRegisterService(t, &fakeRegisterRepo{})

	for _, req := range []RegisterRequest{
		{Name: "", Email: "a@example.com", Password: "x"},
		{Name: "A", Email: "", Password: "x"},
		{Name: "A", Email: "a@example.com", Password: ""},
	} {
		_, err := svc.Register(context.Background(), req)
		var typed *pkgerrors.Error
		if !errors.As(err, &typed) || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %+v, got %v", req, err)
		}
	}
}

func TestRegister_DuplicateEmailIsConflict(t *testing.T) {
	repo := &fakeRegisterRepo{createErr: errors.New(`duplicate key value violates unique constraint "users_email_key"`)}
	svc := newRegisterService(t, repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Dup",
		Email:    "dup@example.com",
		Password: "x",
	})
	var typed *pkgerrors.Error
	if !errors.As(err, &typed) || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}
