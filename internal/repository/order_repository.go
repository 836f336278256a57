package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pizzeria-api/internal/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, user_id, lines, order_type, payment_method, delivery_address,
	delivery_distance_centimiles, subtotal_cents, delivery_fee_cents, tax_cents, total_cents,
	status, special_instructions, estimated_ready_at, created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	sb     sq.StatementBuilderType
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		sb:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Create inserts an order as a single row.
func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	lines, err := json.Marshal(order.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode order lines: %w", err)
	}

	var address []byte
	if order.DeliveryAddress != nil {
		if address, err = json.Marshal(order.DeliveryAddress); err != nil {
			return fmt.Errorf("failed to encode delivery address: %w", err)
		}
	}

	var cents [5]int64
	for i, amount := range []decimal.Decimal{
		order.DeliveryDistanceMiles, order.Subtotal, order.DeliveryFee, order.Tax, order.Total,
	} {
		if cents[i], err = toCents(amount); err != nil {
			return fmt.Errorf("failed to encode order amounts: %w", err)
		}
	}

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err = r.pool.Exec(ctx, query,
		order.ID,
		order.UserID,
		lines,
		string(order.OrderType),
		string(order.PaymentMethod),
		address,
		cents[0],
		cents[1],
		cents[2],
		cents[3],
		cents[4],
		string(order.Status),
		order.SpecialInstructions,
		order.EstimatedReadyAt,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// GetByID retrieves an order by its ID.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return order, nil
}

// List returns orders matching filter, newest first.
func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	builder := r.sb.Select(orderColumns).
		From("orders").
		OrderBy("created_at DESC")

	if filter.UserID != nil {
		builder = builder.Where(sq.Eq{"user_id": *filter.UserID})
	}
	if filter.Status != nil {
		builder = builder.Where(sq.Eq{"status": string(*filter.Status)})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build order query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus sets the status of an order within the provided transaction.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus, at time.Time) error {
	query, args, err := r.sb.Update("orders").
		Set("status", string(status)).
		Set("updated_at", at).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build status update: %w", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	return nil
}

// InsertStatusChange records a transition within the provided transaction.
func (r *orderRepository) InsertStatusChange(ctx context.Context, tx pgx.Tx, change *model.StatusChange) error {
	query, args, err := r.sb.Insert("order_status_history").
		Columns("id", "order_id", "from_status", "to_status", "changed_by", "changed_at").
		Values(change.ID, change.OrderID, string(change.FromStatus), string(change.ToStatus), change.ChangedBy, change.ChangedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build status history insert: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		r.logger.Error().Err(err).Str("order_id", change.OrderID.String()).Msg("failed to record status change")
		return fmt.Errorf("failed to record status change: %w", err)
	}

	return nil
}

// History returns the transitions of an order, oldest first.
func (r *orderRepository) History(ctx context.Context, orderID uuid.UUID) ([]model.StatusChange, error) {
	query := `
		SELECT id, order_id, from_status, to_status, changed_by, changed_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY changed_at, id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query status history")
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	changes := []model.StatusChange{}
	for rows.Next() {
		var c model.StatusChange
		var from, to string
		if err := rows.Scan(&c.ID, &c.OrderID, &from, &to, &c.ChangedBy, &c.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status change: %w", err)
		}
		c.FromStatus = model.OrderStatus(from)
		c.ToStatus = model.OrderStatus(to)
		changes = append(changes, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status history: %w", err)
	}

	return changes, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o                                        model.Order
		lines, address                           []byte
		orderType, paymentMethod, status         string
		distance, subtotal, fee, tax, totalCents int64
	)

	err := row.Scan(
		&o.ID,
		&o.UserID,
		&lines,
		&orderType,
		&paymentMethod,
		&address,
		&distance,
		&subtotal,
		&fee,
		&tax,
		&totalCents,
		&status,
		&o.SpecialInstructions,
		&o.EstimatedReadyAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(lines, &o.Lines); err != nil {
		return nil, fmt.Errorf("failed to decode order lines: %w", err)
	}
	if address != nil {
		o.DeliveryAddress = &model.Address{}
		if err := json.Unmarshal(address, o.DeliveryAddress); err != nil {
			return nil, fmt.Errorf("failed to decode delivery address: %w", err)
		}
	}

	o.OrderType = model.OrderType(orderType)
	o.PaymentMethod = model.PaymentMethod(paymentMethod)
	o.Status = model.OrderStatus(status)
	o.DeliveryDistanceMiles = fromCents(distance)
	o.Subtotal = fromCents(subtotal)
	o.DeliveryFee = fromCents(fee)
	o.Tax = fromCents(tax)
	o.Total = fromCents(totalCents)

	return &o, nil
}
