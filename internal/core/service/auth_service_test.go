package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/haulmatch/dispatch-api/internal/core/domain"
	"github.com/haulmatch/dispatch-api/internal/core/ports"
)

type stubAuthRepo struct {
	users map[string]*domain.User
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubAuthRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	if user.TruckID != "" {
		if _, err := r.FindByTruckID(context.Background(), user.TruckID); err == nil {
			return nil, domain.ErrTruckClaimed
		}
	}
	r.users[user.Username] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubAuthRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubAuthRepo) FindByTruckID(_ context.Context, truckID string) (*domain.User, error) {
	for _, u := range r.users {
		if u.TruckID == truckID {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func TestAuthService_Register_Success(t *testing.T) {
	svc := NewAuthService(newStubAuthRepo(), "secret", time.Hour)

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice", Password: "pass123", Email: "alice@example.com", Role: domain.RoleShipper,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected generated id")
	}
	if user.PasswordHash == "pass123" {
		t.Fatal("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.TruckID != "" {
		t.Fatalf("shipper must not carry a truck id, got %q", user.TruckID)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := NewAuthService(newStubAuthRepo(), "secret", time.Hour)

	cases := []struct {
		name string
		in   ports.RegisterInput
	}{
		{"missing username", ports.RegisterInput{Password: "p", Role: domain.RoleShipper}},
		{"missing password", ports.RegisterInput{Username: "u", Role: domain.RoleShipper}},
		{"unknown role", ports.RegisterInput{Username: "u", Password: "p", Role: "client"}},
		{"truck without truck id", ports.RegisterInput{Username: "u", Password: "p", Role: domain.RoleTruck}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tc.in); !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc := NewAuthService(newStubAuthRepo(), "secret", time.Hour)
	in := ports.RegisterInput{Username: "bob", Password: "pass", Role: domain.RoleShipper}

	_, _ = svc.Register(context.Background(), in)
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_TruckAlreadyClaimed(t *testing.T) {
	repo := newStubAuthRepo()
	svc := NewAuthService(repo, "secret", time.Hour)

	owner := ports.RegisterInput{Username: "driver", Password: "pass123", Role: domain.RoleTruck, TruckID: "t1"}
	if _, err := svc.Register(context.Background(), owner); err != nil {
		t.Fatalf("first claimant: %v", err)
	}

	intruder := ports.RegisterInput{Username: "intruder", Password: "pass123", Role: domain.RoleTruck, TruckID: "t1"}
	if _, err := svc.Register(context.Background(), intruder); !errors.Is(err, domain.ErrTruckClaimed) {
		t.Fatalf("expected ErrTruckClaimed, got %v", err)
	}
	if _, err := repo.FindByUsername(context.Background(), "intruder"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Error("second claimant must not be stored")
	}

	other := ports.RegisterInput{Username: "driver2", Password: "pass123", Role: domain.RoleTruck, TruckID: "t2"}
	if _, err := svc.Register(context.Background(), other); err != nil {
		t.Fatalf("a different truck must register: %v", err)
	}
}

type failingTruckLookupRepo struct {
	*stubAuthRepo
}

func (failingTruckLookupRepo) FindByTruckID(context.Context, string) (*domain.User, error) {
	return nil, domain.WrapStore("find user by truck", errors.New("timeout"))
}

func TestAuthService_Register_TruckLookupError(t *testing.T) {
	svc := NewAuthService(failingTruckLookupRepo{newStubAuthRepo()}, "secret", time.Hour)

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "driver", Password: "pass123", Role: domain.RoleTruck, TruckID: "t1",
	})
	var se *domain.StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}

func TestAuthService_Login_TruckClaims(t *testing.T) {
	svc := NewAuthService(newStubAuthRepo(), "secret", time.Hour)

	registered, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "carol", Password: "s3cret", Role: domain.RoleTruck, TruckID: "truck-7",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "carol", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.Username != "carol" {
		t.Fatalf("unexpected user: %+v", user)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sub"] != registered.ID {
		t.Errorf("expected sub %s, got %v", registered.ID, claims["sub"])
	}
	if claims["role"] != domain.RoleTruck {
		t.Errorf("expected role truck, got %v", claims["role"])
	}
	if claims["truck_id"] != "truck-7" {
		t.Errorf("expected truck_id truck-7, got %v", claims["truck_id"])
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc := NewAuthService(newStubAuthRepo(), "secret", time.Hour)

	_, _ = svc.Register(context.Background(), ports.RegisterInput{Username: "dave", Password: "goodpass", Role: domain.RoleShipper})
	if _, _, err := svc.Login(context.Background(), "dave", "badpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	svc := NewAuthService(newStubAuthRepo(), "secret", time.Hour)

	if _, _, err := svc.Login(context.Background(), "ghost", "pass"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
