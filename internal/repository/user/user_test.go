package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/dbtest"
	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"
)

func TestPostgres_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	repo := NewPostgres(pool, nil)

	u, err := repo.Create(ctx, domain.User{
		Username:     "Henry",
		Email:        "Henry@Example.com",
		PasswordHash: "hash",
		Role:         domain.RoleUser,
		Status:       domain.UserPending,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Email != "henry@example.com" {
		t.Fatalf("expected lower-cased email, got %s", u.Email)
	}

	if _, err := repo.Create(ctx, domain.User{Username: "henry", Email: "other@example.com", PasswordHash: "x", Role: domain.RoleUser, Status: domain.UserPending}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for duplicate username, got %v", err)
	}

	byEmail, err := repo.GetByEmail(ctx, "HENRY@example.com")
	if err != nil || byEmail.ID != u.ID {
		t.Fatalf("GetByEmail: %v %+v", err, byEmail)
	}
	byName, err := repo.GetByUsername(ctx, "HENRY")
	if err != nil || byName.ID != u.ID {
		t.Fatalf("GetByUsername: %v %+v", err, byName)
	}
	if _, err := repo.GetByUsername(ctx, "henry@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected username lookup to ignore emails, got %v", err)
	}

	if err := repo.SetStatus(ctx, u.ID, domain.UserActive); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	got, _ := repo.GetByID(ctx, u.ID)
	if got.Status != domain.UserActive {
		t.Fatalf("expected Active, got %s", got.Status)
	}
}

func TestPostgres_Tokens(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	userID := dbtest.InsertUser(ctx, t, pool, "ivy")
	tokens := tokenrepo.NewPostgres(pool)

	tok := tokenrepo.Token{Token: "abc", UserID: userID, Kind: tokenrepo.KindVerify, ExpiresAt: time.Now().Add(time.Hour)}
	if err := tokens.Create(ctx, tok); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := tokens.Create(ctx, tok); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if _, err := tokens.Get(ctx, "abc", tokenrepo.KindReset); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected kind mismatch to be ErrNotFound, got %v", err)
	}
	got, err := tokens.Get(ctx, "abc", tokenrepo.KindVerify)
	if err != nil || got.UserID != userID {
		t.Fatalf("Get: %v %+v", err, got)
	}
	if err := tokens.DeleteForUser(ctx, userID, tokenrepo.KindVerify); err != nil {
		t.Fatalf("DeleteForUser: %v", err)
	}
	if err := tokens.Delete(ctx, "abc"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after purge, got %v", err)
	}
}
