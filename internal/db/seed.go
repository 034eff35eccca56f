package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/nats-backoffice/internal/config"
	"github.com/diewo77/nats-backoffice/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrSeedCredentials is returned when ADMIN_EMAIL or ADMIN_PASSWORD is missing.
var ErrSeedCredentials = errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set to seed an admin")

// SeedAdmin creates the admin account described by cfg unless a user with
// that email already exists. It reports whether a user was created.
func SeedAdmin(db *gorm.DB, cfg config.SeedConfig, cost int) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" || cfg.AdminPassword == "" {
		return false, ErrSeedCredentials
	}
	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("lookup admin: %w", err)
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), cost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{Email: email, Name: cfg.AdminName, PasswordHash: string(hash), Role: models.RoleAdmin}
	if err := db.Create(&user).Error; err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
