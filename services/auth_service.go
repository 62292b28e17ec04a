package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"barberqueue-backend/models"
	"barberqueue-backend/queue"
	"barberqueue-backend/utils"

	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAdminExists        = errors.New("email already registered")
)

type AuthService struct {
	db            *gorm.DB
	tokens        *utils.TokenManager
	logger        *slog.Logger
	now           func() time.Time
	checkPassword func(password, hash string) bool
}

// dummyHash is compared against when the email is unknown so both failure
// paths pay for one bcrypt comparison.
var dummyHash = sync.OnceValue(func() string {
	hash, err := utils.HashPassword("barberqueue-dummy-password")
	if err != nil {
		panic("failed to hash dummy password")
	}
	return hash
})

type LoginResult struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Session   utils.Session `json:"session"`
}

func NewAuthService(db *gorm.DB, tokens *utils.TokenManager, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		db:            db,
		tokens:        tokens,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
		checkPassword: utils.CheckPasswordHash,
	}
}

// Login checks the credentials and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var admin models.Admin
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.checkPassword(password, dummyHash())
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("load admin: %w", err)
	}
	if !s.checkPassword(password, admin.Password) {
		return LoginResult{}, ErrInvalidCredentials
	}

	now := s.now()
	session := utils.Session{
		ID:      admin.ID.String(),
		Email:   admin.Email,
		Name:    admin.Name,
		Role:    admin.Role,
		LoginAt: now,
	}
	token, expires, err := s.tokens.GenerateToken(session)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign token: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&admin).Update("last_login", &now).Error; err != nil {
		s.logger.Warn("last login update failed",
			slog.String("admin", admin.ID.String()),
			slog.String("error", err.Error()))
	}
	return LoginResult{Token: token, ExpiresAt: expires, Session: session}, nil
}

// CreateAdmin registers an operator account. The password is hashed by the
// model hook.
func (s *AuthService) CreateAdmin(ctx context.Context, email, name, password, role string) (models.Admin, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return models.Admin{}, queue.ValidationError{Message: "a valid email is required"}
	}
	if len(password) < 8 {
		return models.Admin{}, queue.ValidationError{Message: "password must have at least 8 characters"}
	}
	name = utils.NormalizeName(name)
	if name == "" {
		name = email
	}
	switch role {
	case "":
		role = "admin"
	case "admin", "staff":
	default:
		return models.Admin{}, queue.ValidationError{Message: "role must be admin or staff"}
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Admin{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return models.Admin{}, fmt.Errorf("check admin: %w", err)
	}
	if count > 0 {
		return models.Admin{}, ErrAdminExists
	}

	admin := models.Admin{Email: email, Name: name, Password: password, Role: role}
	if err := s.db.WithContext(ctx).Create(&admin).Error; err != nil {
		return models.Admin{}, fmt.Errorf("create admin: %w", err)
	}
	return admin, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
