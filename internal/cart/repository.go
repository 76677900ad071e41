package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

type Repository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Line, error)
	// Upsert adds quantity to the user's line for the product, creating the
	// line with the given price when none exists.
	Upsert(ctx context.Context, userID, productID uuid.UUID, quantity int, price decimal.Decimal) (*Line, error)
	UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int) (*Line, error)
	Delete(ctx context.Context, lineID uuid.UUID) (bool, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repository struct {
	db DB
}

func NewRepository(db DB) Repository {
	return &repository{db: db}
}

const lineSelect = `
	SELECT c.id, c.user_id, c.product_id, p.name, c.quantity, c.price, c.created_at, c.updated_at
`

func scanLine(row pgx.Row, l *Line) error {
	return row.Scan(
		&l.ID,
		&l.UserID,
		&l.ProductID,
		&l.ProductName,
		&l.Quantity,
		&l.Price,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	query := lineSelect + `
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at, c.id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query cart for user %s: %w", userID, err)
	}
	defer rows.Close()

	lines := make([]Line, 0)
	for rows.Next() {
		var l Line
		if err := scanLine(rows, &l); err != nil {
			return nil, fmt.Errorf("repository: failed to scan cart line for user %s: %w", userID, err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating cart for user %s: %w", userID, err)
	}

	return lines, nil
}

func (r *repository) Upsert(ctx context.Context, userID, productID uuid.UUID, quantity int, price decimal.Decimal) (*Line, error) {
	lineID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("repository: failed to generate cart line id: %w", err)
	}

	// The existing price survives a merge.
	query := `
		WITH c AS (
			INSERT INTO cart_items (id, user_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT ON CONSTRAINT uq_cart_items_user_product
			DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
			RETURNING id, user_id, product_id, quantity, price, created_at, updated_at
		)
	` + lineSelect + `
		FROM c
		JOIN products p ON p.id = c.product_id
	`

	var l Line
	err = scanLine(r.db.QueryRow(ctx, query, lineID, userID, productID, quantity, price), &l)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.ForeignKeyViolation:
				if pgErr.ConstraintName == "cart_items_user_id_fkey" {
					return nil, ErrUserNotFound
				}
				return nil, ErrProductNotFound
			case pgerrcode.NumericValueOutOfRange:
				return nil, fmt.Errorf("%w: merged quantity exceeds %d", ErrInvalidQuantity, MaxQuantity)
			}
		}
		return nil, fmt.Errorf("repository: failed to upsert cart line for user %s product %s: %w", userID, productID, err)
	}

	return &l, nil
}

func (r *repository) UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int) (*Line, error) {
	query := `
		WITH c AS (
			UPDATE cart_items
			SET quantity = $1, updated_at = now()
			WHERE id = $2
			RETURNING id, user_id, product_id, quantity, price, created_at, updated_at
		)
	` + lineSelect + `
		FROM c
		JOIN products p ON p.id = c.product_id
	`

	var l Line
	if err := scanLine(r.db.QueryRow(ctx, query, quantity, lineID), &l); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.NumericValueOutOfRange {
			return nil, fmt.Errorf("%w: must be at most %d", ErrInvalidQuantity, MaxQuantity)
		}
		return nil, fmt.Errorf("repository: failed to update cart line %s: %w", lineID, err)
	}

	return &l, nil
}

func (r *repository) Delete(ctx context.Context, lineID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, lineID)
	if err != nil {
		return false, fmt.Errorf("repository: failed to delete cart line %s: %w", lineID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("repository: failed to clear cart for user %s: %w", userID, err)
	}
	return nil
}
