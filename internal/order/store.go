package order

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fjod/sweetshop/internal/domain"
	"github.com/fjod/sweetshop/internal/events"
	"github.com/fjod/sweetshop/internal/latency"
	"github.com/fjod/sweetshop/internal/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Config holds the simulated latencies of the order operations.
type Config struct {
	CreateDelay time.Duration
	GetDelay    time.Duration
	ListDelay   time.Duration
	UpdateDelay time.Duration
}

// Actors tells the store whose orders it is working with.
type Actors interface {
	Actor() domain.Actor
}

type Store struct {
	repo   Repository
	actors Actors
	pub    events.Publisher
	cfg    Config
	log    *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	current *domain.Order
	busy    atomic.Int32
}

type Option func(*Store)

func WithPublisher(p events.Publisher) Option {
	return func(s *Store) { s.pub = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(repo Repository, actors Actors, cfg Config, log *slog.Logger, opts ...Option) *Store {
	s := &Store{
		repo:   repo,
		actors: actors,
		pub:    events.NopPublisher{},
		cfg:    cfg,
		log:    logger.OrNop(log),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) track() func() {
	s.busy.Add(1)
	return func() { s.busy.Add(-1) }
}

// timestamp is truncated to what every backend can store.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func validateLines(lines []domain.OrderLine, total decimal.Decimal) error {
	if len(lines) == 0 {
		return domain.Invalid("order has no lines")
	}
	for _, l := range lines {
		if strings.TrimSpace(l.ItemID) == "" {
			return domain.Invalid("order line without item id")
		}
		if l.Quantity < 1 {
			return domain.Invalid("quantity of %s must be at least 1", l.ItemID)
		}
		if l.UnitPrice.IsNegative() {
			return domain.Invalid("price of %s is negative", l.ItemID)
		}
	}
	if sum := domain.SumLines(lines); !sum.Equal(total) {
		return domain.Invalid("total %s does not match lines %s", total, sum)
	}
	return nil
}

// CreateOrder records a pending order for the current actor and makes it the
// current order. The lines are copied.
func (s *Store) CreateOrder(ctx context.Context, lines []domain.OrderLine, total decimal.Decimal, addr *domain.ShippingAddress) (domain.Order, error) {
	done := s.track()
	defer done()

	if err := validateLines(lines, total); err != nil {
		return domain.Order{}, err
	}
	if err := latency.Wait(ctx, s.cfg.CreateDelay); err != nil {
		return domain.Order{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return domain.Order{}, err
	}
	at := s.timestamp()
	o := domain.Order{
		ID:        "ORD-" + strings.ToUpper(id.String()),
		UserID:    s.actors.Actor().ID,
		Lines:     append([]domain.OrderLine(nil), lines...),
		Total:     total,
		Status:    domain.OrderStatusPending,
		CreatedAt: at,
		UpdatedAt: at,
	}
	if addr != nil {
		a := *addr
		o.ShippingAddress = &a
	}

	if err := s.repo.Insert(ctx, o); err != nil {
		s.log.ErrorContext(ctx, "create order failed", "error", err)
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}
	s.setCurrent(o)
	s.log.InfoContext(ctx, "order created", "order_id", o.ID, "user_id", o.UserID, "total", o.Total.String())
	s.publish(ctx, events.Created(o))
	return o.Clone(), nil
}

// GetOrderByID loads an order and makes it the current order.
func (s *Store) GetOrderByID(ctx context.Context, id string) (domain.Order, error) {
	done := s.track()
	defer done()

	if err := latency.Wait(ctx, s.cfg.GetDelay); err != nil {
		return domain.Order{}, err
	}
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	s.setCurrent(o)
	return o, nil
}

// GetOrders lists the current actor's orders, newest first.
func (s *Store) GetOrders(ctx context.Context) ([]domain.Order, error) {
	done := s.track()
	defer done()

	if err := latency.Wait(ctx, s.cfg.ListDelay); err != nil {
		return nil, err
	}
	orders, err := s.repo.ListByUser(ctx, s.actors.Actor().ID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	done := s.track()
	defer done()

	if !status.Valid() {
		return domain.Order{}, domain.Invalid("unknown order status %q", status)
	}
	if err := latency.Wait(ctx, s.cfg.UpdateDelay); err != nil {
		return domain.Order{}, err
	}

	o, prev, err := s.repo.UpdateStatus(ctx, id, status, s.timestamp())
	if err != nil {
		s.log.WarnContext(ctx, "order status update rejected", "order_id", id, "status", status, "error", err)
		return domain.Order{}, err
	}
	s.mirror(o)
	s.log.InfoContext(ctx, "order status changed", "order_id", id, "from", prev, "to", o.Status)
	s.publish(ctx, events.StatusChanged(o, prev))
	return o, nil
}

func (s *Store) CancelOrder(ctx context.Context, id string) (domain.Order, error) {
	return s.UpdateOrderStatus(ctx, id, domain.OrderStatusCancelled)
}

// RecordPayment moves a pending order to paid and stores how it was paid.
func (s *Store) RecordPayment(ctx context.Context, id string, method domain.PaymentMethod, transactionID string) (domain.Order, error) {
	done := s.track()
	defer done()

	if !method.Valid() {
		return domain.Order{}, domain.Invalid("unknown payment method %q", method)
	}
	if transactionID == "" {
		return domain.Order{}, domain.Invalid("transaction id is required")
	}
	if err := latency.Wait(ctx, s.cfg.UpdateDelay); err != nil {
		return domain.Order{}, err
	}

	o, err := s.repo.RecordPayment(ctx, id, method, transactionID, s.timestamp())
	if err != nil {
		s.log.WarnContext(ctx, "record payment rejected", "order_id", id, "error", err)
		return domain.Order{}, err
	}
	s.mirror(o)
	s.log.InfoContext(ctx, "order paid", "order_id", id, "transaction_id", transactionID)
	s.publish(ctx, events.StatusChanged(o, domain.OrderStatusPending))
	return o, nil
}

func (s *Store) CurrentOrder() (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.Order{}, false
	}
	return s.current.Clone(), true
}

// Busy reports whether any operation is in flight. It is advisory only.
func (s *Store) Busy() bool {
	return s.busy.Load() > 0
}

func (s *Store) setCurrent(o domain.Order) {
	c := o.Clone()
	s.mu.Lock()
	s.current = &c
	s.mu.Unlock()
}

// mirror refreshes the current order when it is the one that changed.
func (s *Store) mirror(o domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.ID == o.ID {
		c := o.Clone()
		s.current = &c
	}
}

func (s *Store) publish(ctx context.Context, e events.Event) {
	if err := s.pub.Publish(ctx, e); err != nil {
		s.log.ErrorContext(ctx, "publish order event failed", "event_type", e.Type, "order_id", e.OrderID, "error", err)
	}
}
