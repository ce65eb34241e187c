package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fjod/sweetshop/internal/domain"
	"github.com/fjod/sweetshop/internal/latency"
	"github.com/fjod/sweetshop/internal/logger"
	"github.com/fjod/sweetshop/internal/slot"
)

type AdminStore struct {
	id  identityStore[domain.Admin]
	cfg Config
}

func NewAdminStore(s slot.Slot, cfg Config, log *slog.Logger) *AdminStore {
	return &AdminStore{
		id: identityStore[domain.Admin]{
			kind:  AdminSlotKey,
			slot:  s,
			valid: func(a domain.Admin) bool { return a.ID != "" && a.Username != "" },
			log:   logger.OrNop(log),
		},
		cfg: cfg,
	}
}

func (s *AdminStore) Login(ctx context.Context, username, password string) (domain.Admin, error) {
	done := s.id.track()
	defer done()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.Admin{}, domain.Invalid("username and password are required")
	}
	if err := latency.Wait(ctx, s.cfg.LoginDelay); err != nil {
		return domain.Admin{}, err
	}

	a := domain.Admin{
		ID:       "1",
		Username: username,
		Name:     "Administrator",
		Role:     domain.AdminRoleSuper,
	}
	if err := s.id.adopt(ctx, a); err != nil {
		return domain.Admin{}, err
	}
	s.id.log.InfoContext(ctx, "admin logged in", "username", username)
	return a, nil
}

func (s *AdminStore) Logout(ctx context.Context) error {
	return s.id.clear(ctx)
}

// Restore is the admin-info lookup: it reads the slot and, when a record is
// stored, adopts it as the current admin.
func (s *AdminStore) Restore(ctx context.Context) (domain.Admin, error) {
	done := s.id.track()
	defer done()
	return s.id.restore(ctx, s.cfg.RestoreDelay)
}

func (s *AdminStore) Current() (domain.Admin, bool) {
	return s.id.get()
}

func (s *AdminStore) IsAuthenticated() bool {
	_, ok := s.id.get()
	return ok
}

func (s *AdminStore) Busy() bool {
	return s.id.busy.Load() > 0
}
