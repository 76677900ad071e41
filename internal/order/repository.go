package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// StatusGuard decides whether an order currently in status current may move on.
type StatusGuard func(current OrderStatus) error

type Repository interface {
	// CreateFromCart empties the owner's cart and stores o with the consumed
	// lines as its items, all in one transaction.
	CreateFromCart(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ListByStatus(ctx context.Context, status OrderStatus) ([]Order, error)
	// UpdateStatus sets the status. With a guard, the current row is locked
	// and the guard runs before the write.
	UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus, guard StatusGuard) (*Order, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}

	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic_value", p).Msg("Panic recovered inside transaction, rolling back")
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("Failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("Failed to rollback transaction")
			}
		} else if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	return fn(tx)
}

func (r *postgresRepository) CreateFromCart(ctx context.Context, o *Order) error {
	if o.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate order id: %w", err)
		}
		o.ID = id
	}

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		consumeCart := `
			WITH d AS (
				DELETE FROM cart_items
				WHERE user_id = $1
				RETURNING product_id, quantity, price, created_at
			)
			SELECT d.product_id, COALESCE(p.name, ''), d.quantity, d.price
			FROM d
			LEFT JOIN products p ON p.id = d.product_id
			ORDER BY d.created_at, d.product_id
		`
		rows, err := tx.Query(ctx, consumeCart, o.UserID)
		if err != nil {
			return fmt.Errorf("repository: failed to consume cart for user %s: %w", o.UserID, err)
		}
		items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Item, error) {
			var it Item
			err := row.Scan(&it.ProductID, &it.ProductName, &it.Quantity, &it.Price)
			return it, err
		})
		if err != nil {
			return fmt.Errorf("repository: failed to scan consumed cart lines for user %s: %w", o.UserID, err)
		}

		insertOrder := `
			INSERT INTO orders (id, user_id, total_amount, shipping_address, payment_method, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at, updated_at
		`
		err = tx.QueryRow(ctx, insertOrder,
			o.ID,
			o.UserID,
			o.TotalAmount,
			o.ShippingAddress,
			o.PaymentMethod,
			string(o.Status),
		).Scan(&o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
				return ErrUserNotFound
			}
			return fmt.Errorf("repository: failed to insert order: %w", err)
		}

		insertItem := `
			INSERT INTO order_items (id, order_id, product_id, product_name, quantity, price, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		for i := range items {
			it := &items[i]
			itemID, genErr := uuid.NewV4()
			if genErr != nil {
				return fmt.Errorf("repository: failed to generate order item id: %w", genErr)
			}
			it.ID = itemID
			it.OrderID = o.ID
			it.CreatedAt = o.CreatedAt

			if _, err := tx.Exec(ctx, insertItem, it.ID, it.OrderID, it.ProductID, it.ProductName, it.Quantity, it.Price, it.CreatedAt); err != nil {
				return fmt.Errorf("repository: failed to insert order item for order %s: %w", o.ID, err)
			}
		}

		o.Items = items
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Stringer("order_id_attempted", o.ID).Msg("repository: create order from cart rolled back")
		return err
	}

	return nil
}

const orderColumns = `id, user_id, status, total_amount, shipping_address, payment_method, created_at, updated_at`

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&o.TotalAmount,
		&o.ShippingAddress,
		&o.PaymentMethod,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var o Order
	err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id), &o)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	if err := r.attachItems(ctx, []*Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	return r.list(ctx, `WHERE user_id = $1`, userID)
}

func (r *postgresRepository) ListByStatus(ctx context.Context, status OrderStatus) ([]Order, error) {
	return r.list(ctx, `WHERE status = $1`, string(status))
}

func (r *postgresRepository) list(ctx context.Context, where string, arg any) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ` + where + ` ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		o.Items = make([]Item, 0)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating orders: %w", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	ptrs := make([]*Order, len(orders))
	for i := range orders {
		ptrs[i] = &orders[i]
	}
	if err := r.attachItems(ctx, ptrs); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *postgresRepository) attachItems(ctx context.Context, orders []*Order) error {
	byID := make(map[uuid.UUID]*Order, len(orders))
	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		o.Items = make([]Item, 0)
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	query := `
		SELECT id, order_id, product_id, product_name, quantity, price, created_at
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.Price, &it.CreatedAt)
		if err != nil {
			return fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("repository: failed iterating order items: %w", err)
	}

	return nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus, guard StatusGuard) (*Order, error) {
	update := `
		UPDATE orders
		SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING ` + orderColumns

	var o Order
	if guard == nil {
		if err := scanOrder(r.db.QueryRow(ctx, update, string(status), id), &o); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrOrderNotFound
			}
			return nil, fmt.Errorf("repository: failed to update order status %s: %w", id, err)
		}
	} else {
		err := r.withTx(ctx, func(tx pgx.Tx) error {
			err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id), &o)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return ErrOrderNotFound
				}
				return fmt.Errorf("repository: failed to lock order %s: %w", id, err)
			}

			if err := guard(o.Status); err != nil {
				return err
			}
			if o.Status == status {
				return nil
			}

			if err := scanOrder(tx.QueryRow(ctx, update, string(status), id), &o); err != nil {
				return fmt.Errorf("repository: failed to update order status %s: %w", id, err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if err := r.attachItems(ctx, []*Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}
