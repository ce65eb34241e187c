package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fjod/sweetshop/internal/domain"
	"github.com/fjod/sweetshop/internal/latency"
	"github.com/fjod/sweetshop/internal/logger"
	"github.com/fjod/sweetshop/internal/slot"
	"github.com/google/uuid"
)

const (
	UserSlotKey  = "user"
	AdminSlotKey = "admin"
)

// userNamespace scopes the name-based ids of logged-in shoppers.
var userNamespace = uuid.MustParse("6f1c1a52-3c0e-4d8b-9a57-2b3f5d7e8a41")

// UserID is the stable id of the shopper logging in as username. It never
// equals domain.GuestID.
func UserID(username string) string {
	return uuid.NewSHA1(userNamespace, []byte(strings.ToLower(username))).String()
}

// Config holds the simulated latencies of the identity operations.
type Config struct {
	LoginDelay    time.Duration
	RegisterDelay time.Duration
	RestoreDelay  time.Duration
}

// UserStore is the shopper identity. Passwords are accepted unchecked; any
// non-empty credential logs in.
type UserStore struct {
	id  identityStore[domain.User]
	cfg Config
}

func NewUserStore(s slot.Slot, cfg Config, log *slog.Logger) *UserStore {
	return &UserStore{
		id: identityStore[domain.User]{
			kind:  UserSlotKey,
			slot:  s,
			valid: func(u domain.User) bool { return u.ID != "" && u.Username != "" },
			log:   logger.OrNop(log),
		},
		cfg: cfg,
	}
}

func (s *UserStore) Login(ctx context.Context, username, password string) (domain.User, error) {
	done := s.id.track()
	defer done()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.User{}, domain.Invalid("username and password are required")
	}
	if err := latency.Wait(ctx, s.cfg.LoginDelay); err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:       UserID(username),
		Username: username,
		Email:    username + "@example.com",
		Phone:    "13800138000",
		Nickname: username,
		Gender:   domain.GenderOther,
	}
	if err := s.id.adopt(ctx, u); err != nil {
		return domain.User{}, err
	}
	s.id.log.InfoContext(ctx, "user logged in", "username", username)
	return u, nil
}

func (s *UserStore) Register(ctx context.Context, req domain.RegisterRequest) (domain.User, error) {
	done := s.id.track()
	defer done()

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return domain.User{}, domain.Invalid("username and password are required")
	}
	if req.Gender == "" {
		req.Gender = domain.GenderOther
	}
	if !req.Gender.Valid() {
		return domain.User{}, domain.Invalid("unknown gender %q", req.Gender)
	}
	if err := latency.Wait(ctx, s.cfg.RegisterDelay); err != nil {
		return domain.User{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return domain.User{}, err
	}
	nickname := req.Nickname
	if nickname == "" {
		nickname = req.Username
	}
	u := domain.User{
		ID:       id.String(),
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Nickname: nickname,
		Gender:   req.Gender,
	}
	if err := s.id.adopt(ctx, u); err != nil {
		return domain.User{}, err
	}
	s.id.log.InfoContext(ctx, "user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

func (s *UserStore) Logout(ctx context.Context) error {
	return s.id.clear(ctx)
}

// Restore adopts the identity saved by an earlier process, if any.
func (s *UserStore) Restore(ctx context.Context) (domain.User, error) {
	done := s.id.track()
	defer done()
	return s.id.restore(ctx, s.cfg.RestoreDelay)
}

// UpdateUser merges patch into the current user and persists the result.
func (s *UserStore) UpdateUser(ctx context.Context, patch domain.UserPatch) (domain.User, error) {
	done := s.id.track()
	defer done()

	if patch.Username != nil && strings.TrimSpace(*patch.Username) == "" {
		return domain.User{}, domain.Invalid("username cannot be empty")
	}
	if patch.Gender != nil && !patch.Gender.Valid() {
		return domain.User{}, domain.Invalid("unknown gender %q", *patch.Gender)
	}
	return s.id.update(ctx, func(u domain.User) (domain.User, error) {
		return patch.Apply(u), nil
	})
}

func (s *UserStore) Current() (domain.User, bool) {
	return s.id.get()
}

// Busy reports whether any operation is in flight. It is advisory only.
func (s *UserStore) Busy() bool {
	return s.id.busy.Load() > 0
}
