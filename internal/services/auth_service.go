package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"sodastock/internal/repos"
)

var ErrBadPass = errors.New("invalid passphrase")

// AuthService gates mutating routes behind a single operator passphrase.
// With no passphrase configured the gate is disabled and the app runs
// open, matching a one-person deployment.
type AuthService struct {
	Sessions *repos.SessionRepo
	hash     []byte
}

func NewAuthService(sessions *repos.SessionRepo, passphrase string) *AuthService {
	s := &AuthService{Sessions: sessions}
	if passphrase != "" {
		h, _ := bcrypt.GenerateFromPassword([]byte(passphrase), 12)
		s.hash = h
	}
	return s
}

func (s *AuthService) Enabled() bool { return len(s.hash) > 0 }

func (s *AuthService) Login(sid, passphrase string) error {
	if !s.Enabled() {
		return nil
	}
	if bcrypt.CompareHashAndPassword(s.hash, []byte(passphrase)) != nil {
		return ErrBadPass
	}
	return s.Sessions.Bind(sid)
}

func (s *AuthService) Logout(sid string) error {
	return s.Sessions.Unbind(sid)
}

func (s *AuthService) IsOperator(sid string) bool {
	if !s.Enabled() {
		return true
	}
	if sid == "" {
		return false
	}
	ok, err := s.Sessions.IsOperator(sid)
	return err == nil && ok
}
