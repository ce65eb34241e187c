package comment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fjod/sweetshop/internal/domain"
	"github.com/fjod/sweetshop/internal/latency"
	"github.com/fjod/sweetshop/internal/logger"
	"github.com/google/uuid"
)

type Config struct {
	ListDelay   time.Duration
	AddDelay    time.Duration
	LikeDelay   time.Duration
	DeleteDelay time.Duration
}

// Actors tells the store who is commenting and who may delete.
type Actors interface {
	Actor() domain.Actor
	IsAdmin() bool
}

type Store struct {
	repo   Repository
	actors Actors
	cfg    Config
	log    *slog.Logger
	now    func() time.Time
	busy   atomic.Int32
}

func NewStore(repo Repository, actors Actors, cfg Config, log *slog.Logger) *Store {
	return &Store{
		repo:   repo,
		actors: actors,
		cfg:    cfg,
		log:    logger.OrNop(log),
		now:    time.Now,
	}
}

func (s *Store) track() func() {
	s.busy.Add(1)
	return func() { s.busy.Add(-1) }
}

func (s *Store) GetCommentsByProductID(ctx context.Context, productID string) ([]domain.Comment, error) {
	done := s.track()
	defer done()

	if err := latency.Wait(ctx, s.cfg.ListDelay); err != nil {
		return nil, err
	}
	comments, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		s.log.ErrorContext(ctx, "list comments failed", "product_id", productID, "error", err)
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// AddComment posts a comment as the current actor.
func (s *Store) AddComment(ctx context.Context, productID string, rating int, body string) (domain.Comment, error) {
	done := s.track()
	defer done()

	productID = strings.TrimSpace(productID)
	body = strings.TrimSpace(body)
	switch {
	case productID == "":
		return domain.Comment{}, domain.Invalid("product id is required")
	case rating < domain.MinRating || rating > domain.MaxRating:
		return domain.Comment{}, domain.Invalid("rating must be between %d and %d, got %d", domain.MinRating, domain.MaxRating, rating)
	case body == "":
		return domain.Comment{}, domain.Invalid("comment body is empty")
	}
	if err := latency.Wait(ctx, s.cfg.AddDelay); err != nil {
		return domain.Comment{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return domain.Comment{}, err
	}
	actor := s.actors.Actor()
	c := domain.Comment{
		ID:          id.String(),
		ProductID:   productID,
		AuthorID:    actor.ID,
		DisplayName: actor.DisplayName,
		Avatar:      actor.Avatar,
		Rating:      rating,
		Body:        body,
		// BSON dates carry milliseconds
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.repo.Insert(ctx, c); err != nil {
		s.log.ErrorContext(ctx, "add comment failed", "product_id", productID, "error", err)
		return domain.Comment{}, fmt.Errorf("add comment: %w", err)
	}
	s.log.InfoContext(ctx, "comment added", "comment_id", c.ID, "product_id", productID, "author_id", c.AuthorID)
	return c, nil
}

func (s *Store) LikeComment(ctx context.Context, id string) (domain.Comment, error) {
	done := s.track()
	defer done()

	if err := latency.Wait(ctx, s.cfg.LikeDelay); err != nil {
		return domain.Comment{}, err
	}
	c, err := s.repo.ToggleLike(ctx, id)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("like comment: %w", err)
	}
	return c, nil
}

// DeleteComment removes a comment. Only its author or an admin may do so.
func (s *Store) DeleteComment(ctx context.Context, id string) error {
	done := s.track()
	defer done()

	if err := latency.Wait(ctx, s.cfg.DeleteDelay); err != nil {
		return err
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	actor := s.actors.Actor()
	isAuthor := actor.Authenticated && actor.ID == c.AuthorID
	if !isAuthor && !s.actors.IsAdmin() {
		s.log.WarnContext(ctx, "comment delete refused", "comment_id", id, "actor_id", actor.ID)
		return fmt.Errorf("delete comment %s: %w", id, domain.ErrForbidden)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	s.log.InfoContext(ctx, "comment deleted", "comment_id", id, "actor_id", actor.ID)
	return nil
}

func (s *Store) Busy() bool {
	return s.busy.Load() > 0
}
