package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/go-commandes/auth"
	"github.com/diewo77/go-commandes/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
)

// Users looks up and authenticates back office accounts.
type Users struct {
	db *gorm.DB
}

func NewUsers(gdb *gorm.DB) *Users { return &Users{db: gdb} }

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create hashes password and stores a new user.
func (u *Users) Create(ctx context.Context, email, name, password string) (models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return models.User{}, errors.New("email and password are required")
	}
	var n int64
	if err := u.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return models.User{}, err
	}
	if n > 0 {
		return models.User{}, ErrUserExists
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{Email: email, Name: name, Password: hash}
	if err := u.db.WithContext(ctx).Create(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Authenticate returns the user matching email and password.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (u *Users) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if !auth.CheckPassword(user.Password, password) {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (u *Users) Get(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).First(&user, id).Error
	return user, err
}

// Exists backs auth.SetUserVerifier.
func (u *Users) Exists(ctx context.Context, id uint) bool {
	var n int64
	if err := u.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false
	}
	return n > 0
}
