package service

import (
	"errors"
	"time"

	"creatememe/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidSession = errors.New("invalid session token")

// Session is the identity carried by a signed session token.
type Session struct {
	UserID int64
	Role   domain.Role
}

func (s Session) IsAdmin() bool {
	return s.Role == domain.RoleAdmin
}

// Sessions issues and parses HS256 session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *Sessions) Issue(userID int64, role domain.Role) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     now.Add(s.ttl).Unix(),
		"iat":     now.Unix(),
		"nbf":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Sessions) Parse(tokenString string) (Session, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return Session{}, ErrInvalidSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, ErrInvalidSession
	}

	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return Session{}, ErrInvalidSession
	}
	role, _ := claims["role"].(string)
	if role == "" {
		role = string(domain.RoleUser)
	}

	return Session{UserID: int64(userID), Role: domain.Role(role)}, nil
}
