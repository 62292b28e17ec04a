// utils/auth.go
package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor used for admin passwords.
var BcryptCost = 12

const sessionContextKey = "session"

// Generate JWT secret key (run once initially)
func GenerateJWTSecret() string {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("failed to generate JWT secret")
	}
	return base64.StdEncoding.EncodeToString(key)
}

// Hash password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

// Check password
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Session is the admin session carried inside the signed token.
type Session struct {
	ID      string    `json:"id"`
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	Role    string    `json:"role"`
	LoginAt time.Time `json:"loginAt"`
}

type sessionClaims struct {
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	Role    string    `json:"role"`
	LoginAt time.Time `json:"loginAt"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies admin session tokens.
type TokenManager struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

var ErrInvalidToken = errors.New("invalid token")

// Generate JWT token
func (m *TokenManager) GenerateToken(s Session) (string, time.Time, error) {
	if m == nil || len(m.Secret) == 0 {
		return "", time.Time{}, errors.New("JWT_SECRET not set")
	}
	ttl := m.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	expiresAt := s.LoginAt.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Email:   s.Email,
		Name:    s.Name,
		Role:    s.Role,
		LoginAt: s.LoginAt,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.ID,
			Issuer:    m.Issuer,
			IssuedAt:  jwt.NewNumericDate(s.LoginAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(m.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken verifies signature and expiry and returns the session.
func (m *TokenManager) ParseToken(tokenString string) (Session, error) {
	if m == nil || len(m.Secret) == 0 {
		return Session{}, ErrInvalidToken
	}
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	})
	if err != nil || !token.Valid {
		return Session{}, ErrInvalidToken
	}
	return Session{
		ID:      claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Role:    claims.Role,
		LoginAt: claims.LoginAt,
	}, nil
}

// Auth middleware
func AuthMiddleware(m *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			if cookie, err := c.Cookie("token"); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			RespondWithError(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		if len(tokenString) > 7 && strings.ToUpper(tokenString[0:6]) == "BEARER" {
			tokenString = tokenString[7:]
		}

		session, err := m.ParseToken(tokenString)
		if err != nil {
			RespondWithError(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		c.Set("adminId", session.ID)
		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// SessionFromContext returns the session stored by AuthMiddleware.
func SessionFromContext(c *gin.Context) (Session, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return Session{}, false
	}
	s, ok := v.(Session)
	return s, ok
}
