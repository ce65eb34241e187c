// Package session holds the identity stores of one running storefront and
// answers "who is acting" for the stores that need it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fjod/sweetshop/internal/auth"
	"github.com/fjod/sweetshop/internal/domain"
	"github.com/fjod/sweetshop/internal/logger"
)

type Session struct {
	Users  *auth.UserStore
	Admins *auth.AdminStore
	log    *slog.Logger
}

func New(users *auth.UserStore, admins *auth.AdminStore, log *slog.Logger) *Session {
	return &Session{Users: users, Admins: admins, log: logger.OrNop(log)}
}

// Init rehydrates both identities from their slots. An empty slot is not an
// error; storage failures are.
func (s *Session) Init(ctx context.Context) error {
	var errs []error
	if u, err := s.Users.Restore(ctx); err == nil {
		s.log.InfoContext(ctx, "restored user session", "username", u.Username)
	} else if !errors.Is(err, domain.ErrNotFound) {
		errs = append(errs, fmt.Errorf("restore user: %w", err))
	}
	if a, err := s.Admins.Restore(ctx); err == nil {
		s.log.InfoContext(ctx, "restored admin session", "username", a.Username)
	} else if !errors.Is(err, domain.ErrNotFound) {
		errs = append(errs, fmt.Errorf("restore admin: %w", err))
	}
	return errors.Join(errs...)
}

// Teardown logs both identities out.
func (s *Session) Teardown(ctx context.Context) error {
	return errors.Join(s.Users.Logout(ctx), s.Admins.Logout(ctx))
}

// Actor returns the logged-in user, or the guest placeholder.
func (s *Session) Actor() domain.Actor {
	u, ok := s.Users.Current()
	if !ok {
		return domain.Guest()
	}
	name := u.Nickname
	if name == "" {
		name = u.Username
	}
	return domain.Actor{ID: u.ID, DisplayName: name, Avatar: u.Avatar, Authenticated: true}
}

func (s *Session) IsAdmin() bool {
	return s.Admins.IsAuthenticated()
}
