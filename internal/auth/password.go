package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/solarworks/solarworks/internal/models"
	"github.com/solarworks/solarworks/internal/store"
)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NormalizeEmail lower-cases and trims an address before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EnsureAdmin creates the bootstrap admin, or resets its name and password if
// it already exists.
func EnsureAdmin(ctx context.Context, admins store.AdminStore, email, password, name string) (*models.Admin, error) {
	email = NormalizeEmail(email)

	if email == "" || password == "" {
		return nil, errors.New("admin email and password are required")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.Admin{Email: email, Password: hash, Name: name}

	if err := admins.UpsertAdmin(ctx, admin); err != nil {
		return nil, fmt.Errorf("upsert admin: %w", err)
	}

	return admin, nil
}
