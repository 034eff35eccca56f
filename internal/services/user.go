package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/diewo77/nats-backoffice/auth"
	"github.com/diewo77/nats-backoffice/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = &Error{http.StatusUnauthorized, "Invalid email or password"}

// dummyHash is compared against when the email is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Authenticate checks credentials and returns the matching user.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, storeErr("lookup user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// LookupSession loads the session view of a user, (nil, nil) when the user
// no longer exists. It satisfies auth.Lookup.
func (s *UserService) LookupSession(ctx context.Context, userID string) (*auth.Session, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("lookup session user", err)
	}
	return &auth.Session{UserID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role}, nil
}

// Me returns the user behind the current session.
func (s *UserService) Me(ctx context.Context) (*models.User, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	var user models.User
	err = s.db.WithContext(ctx).First(&user, "id = ?", sess.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, storeErr("get user", err)
	}
	return &user, nil
}
