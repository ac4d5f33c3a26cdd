package main

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/auth"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/models"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/session"
)

// staticAccounts serves sign-in for -memory runs, where there is no users
// table. It holds the single seeded admin.
type staticAccounts struct {
	user *models.User
}

func seededUsers() (*staticAccounts, error) {
	email := strings.TrimSpace(os.Getenv("SEED_ADMIN_EMAIL"))
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil, errors.New("-memory needs SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &staticAccounts{user: &models.User{
		ID:           1,
		Name:         os.Getenv("SEED_ADMIN_NAME"),
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}}, nil
}

func (a *staticAccounts) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if strings.EqualFold(email, a.user.Email) {
		u := *a.user
		return &u, nil
	}
	return nil, pgx.ErrNoRows
}

func (a *staticAccounts) GetRole(_ context.Context, userID int) (string, error) {
	if userID == a.user.ID {
		return string(session.RoleAdmin), nil
	}
	return "", pgx.ErrNoRows
}
