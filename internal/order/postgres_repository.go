package order

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/sweetshop/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const orderColumns = `id, user_id, lines, total, status, shipping_address, payment_method, transaction_id, created_at, updated_at`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(cred *Credentials) (*PostgresRepository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	return &PostgresRepository{db: db}, nil
}

// RunMigrations applies the embedded schema.
func (r *PostgresRepository) RunMigrations() error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "orders_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Insert(ctx context.Context, o domain.Order) error {
	linesJSON, err := json.Marshal(o.Lines)
	if err != nil {
		return fmt.Errorf("failed to marshal order lines: %w", err)
	}
	// a nil interface, not a nil slice, is what lib/pq sends as NULL
	var addr any
	if o.ShippingAddress != nil {
		addrJSON, err := json.Marshal(o.ShippingAddress)
		if err != nil {
			return fmt.Errorf("failed to marshal shipping address: %w", err)
		}
		addr = addrJSON
	}

	query := `INSERT INTO orders (` + orderColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.db.ExecContext(ctx, query,
		o.ID,
		o.UserID,
		linesJSON,
		o.Total,
		string(o.Status),
		addr,
		string(o.PaymentMethod),
		o.TransactionID,
		o.CreatedAt,
		o.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.Invalid("order %s already exists", o.ID)
		}
		return fmt.Errorf("insert order: %w", storageErr(err))
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("query order by id: %w", err)
	}
	return o, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
	          WHERE user_id = $1 ORDER BY created_at DESC, seq DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", storageErr(err))
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return orders, nil
}

// UpdateStatus is a single conditional write: the row is locked, its status
// checked against the legal sources of status and updated in one statement.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, at time.Time) (domain.Order, domain.OrderStatus, error) {
	query := `WITH prev AS (
	              SELECT id, status FROM orders WHERE id = $1 FOR UPDATE
	          )
	          UPDATE orders o SET status = $2, updated_at = $3
	          FROM prev
	          WHERE o.id = prev.id AND prev.status = ANY($4)
	          RETURNING prev.status, o.id, o.user_id, o.lines, o.total, o.status, o.shipping_address,
	                    o.payment_method, o.transaction_id, o.created_at, o.updated_at`

	var prev string
	o, err := scanOrderWith(r.db.QueryRowContext(ctx, query, id, string(status), at, pq.Array(sources(status))), &prev)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, "", r.rejected(ctx, id, status)
	}
	if err != nil {
		return domain.Order{}, "", fmt.Errorf("update order status: %w", err)
	}
	return o, domain.OrderStatus(prev), nil
}

func (r *PostgresRepository) RecordPayment(ctx context.Context, id string, method domain.PaymentMethod, transactionID string, at time.Time) (domain.Order, error) {
	query := `UPDATE orders SET status = $2, payment_method = $3, transaction_id = $4, updated_at = $5
	          WHERE id = $1 AND status = $6
	          RETURNING ` + orderColumns

	o, err := scanOrder(r.db.QueryRowContext(ctx, query,
		id,
		string(domain.OrderStatusPaid),
		string(method),
		transactionID,
		at,
		string(domain.OrderStatusPending)))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, r.rejected(ctx, id, domain.OrderStatusPaid)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("record payment: %w", err)
	}
	return o, nil
}

// rejected explains why a conditional update touched no row.
func (r *PostgresRepository) rejected(ctx context.Context, id string, to domain.OrderStatus) error {
	var current string
	err := r.db.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("query order status: %w", storageErr(err))
	}
	return fmt.Errorf("order %s %s -> %s: %w", id, current, to, domain.ErrIllegalTransition)
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return storageErr(err)
	}
	return nil
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

func sources(to domain.OrderStatus) []string {
	var out []string
	for _, s := range domain.TransitionSources(to) {
		out = append(out, string(s))
	}
	return out
}

// storageErr tags connection-level failures; constraint errors pass through.
func storageErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	return scanOrderWith(row)
}

// scanOrderWith scans extra leading columns into lead before the order columns.
func scanOrderWith(row rowScanner, lead ...any) (domain.Order, error) {
	var (
		o         domain.Order
		status    string
		method    string
		linesJSON []byte
		addrJSON  []byte
	)
	dest := append(lead,
		&o.ID,
		&o.UserID,
		&linesJSON,
		&o.Total,
		&status,
		&addrJSON,
		&method,
		&o.TransactionID,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("scan order row: %w", storageErr(err))
	}
	o.Status = domain.OrderStatus(status)
	o.PaymentMethod = domain.PaymentMethod(method)
	if err := json.Unmarshal(linesJSON, &o.Lines); err != nil {
		return domain.Order{}, fmt.Errorf("unmarshal order lines: %w", err)
	}
	if len(addrJSON) > 0 {
		var addr domain.ShippingAddress
		if err := json.Unmarshal(addrJSON, &addr); err != nil {
			return domain.Order{}, fmt.Errorf("unmarshal shipping address: %w", err)
		}
		o.ShippingAddress = &addr
	}
	return o, nil
}
