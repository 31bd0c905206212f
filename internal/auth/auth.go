// Package auth holds the ephemeral user store and token issuing. Users
// live only for the process lifetime; nothing is persisted.
package auth

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type user struct {
	id           string
	email        string
	passwordHash []byte
}

type Session struct {
	UserID string
	Token  string
}

type Service struct {
	mu       sync.Mutex
	byEmail  map[string]*user
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

func New(secret []byte) *Service {
	return &Service{
		byEmail:  make(map[string]*user),
		secret:   secret,
		tokenTTL: 24 * time.Hour,
		now:      time.Now,
	}
}

func (s *Service) Signup(email, password, confirm string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if _, exists := s.byEmail[email]; exists {
		s.mu.Unlock()
		return nil, ErrEmailTaken
	}
	u := &user{id: uuid.NewString(), email: email, passwordHash: hash}
	s.byEmail[email] = u
	s.mu.Unlock()

	return s.session(u)
}

func (s *Service) Login(email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validEmail(email) || len(password) < 6 {
		return nil, ErrInvalidCredentials
	}

	s.mu.Lock()
	u, ok := s.byEmail[email]
	s.mu.Unlock()
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.session(u)
}

func (s *Service) session(u *user) (*Session, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   u.id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: u.id, Token: token}, nil
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(email, " \t")
}
