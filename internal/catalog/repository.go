package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
}

type PlatformRepository interface {
	List(ctx context.Context) ([]Platform, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Platform, error)
	Create(ctx context.Context, p *Platform) error
	Update(ctx context.Context, p *Platform) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type productRepository struct {
	db DB
}

func NewProductRepository(db DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, brand, category, unit, price, image_url, in_stock, created_at`

func scanProduct(row pgx.Row, p *Product) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Brand,
		&p.Category,
		&p.Unit,
		&p.Price,
		&p.ImageURL,
		&p.InStock,
		&p.CreatedAt,
	)
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var args []any

	switch {
	case filter.Search != "":
		query += ` WHERE name ILIKE $1 ESCAPE '\' OR brand ILIKE $1 ESCAPE '\' OR category ILIKE $1 ESCAPE '\'`
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	case filter.Category != "":
		query += ` WHERE lower(category) = lower($1::text)`
		args = append(args, filter.Category)
	case filter.Brand != "":
		query += ` WHERE lower(brand) = lower($1::text)`
		args = append(args, filter.Brand)
	}
	query += ` ORDER BY name, id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating products: %w", err)
	}

	return products, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by id %s: %w", id, err)
	}

	return &p, nil
}

type platformRepository struct {
	db DB
}

func NewPlatformRepository(db DB) PlatformRepository {
	return &platformRepository{db: db}
}

const platformColumns = `id, name, logo_url, base_delivery_fee, free_delivery_threshold, avg_delivery_minutes, website_url, created_at`

func scanPlatform(row pgx.Row, p *Platform) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.LogoURL,
		&p.BaseDeliveryFee,
		&p.FreeDeliveryThreshold,
		&p.AvgDeliveryMinutes,
		&p.WebsiteURL,
		&p.CreatedAt,
	)
}

func (r *platformRepository) List(ctx context.Context) ([]Platform, error) {
	rows, err := r.db.Query(ctx, `SELECT `+platformColumns+` FROM platforms ORDER BY avg_delivery_minutes ASC, name`)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query platforms: %w", err)
	}
	defer rows.Close()

	platforms := make([]Platform, 0)
	for rows.Next() {
		var p Platform
		if err := scanPlatform(rows, &p); err != nil {
			return nil, fmt.Errorf("repository: failed to scan platform: %w", err)
		}
		platforms = append(platforms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating platforms: %w", err)
	}

	return platforms, nil
}

func (r *platformRepository) GetByID(ctx context.Context, id uuid.UUID) (*Platform, error) {
	var p Platform
	err := scanPlatform(r.db.QueryRow(ctx, `SELECT `+platformColumns+` FROM platforms WHERE id = $1`, id), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlatformNotFound
		}
		return nil, fmt.Errorf("repository: failed to select platform by id %s: %w", id, err)
	}

	return &p, nil
}

func (r *platformRepository) Create(ctx context.Context, p *Platform) error {
	if p.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate platform id: %w", err)
		}
		p.ID = id
	}

	query := `
		INSERT INTO platforms (id, name, logo_url, base_delivery_fee, free_delivery_threshold, avg_delivery_minutes, website_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		p.ID,
		p.Name,
		p.LogoURL,
		p.BaseDeliveryFee,
		p.FreeDeliveryThreshold,
		p.AvgDeliveryMinutes,
		p.WebsiteURL,
	).Scan(&p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPlatformExists
		}
		return fmt.Errorf("repository: failed to insert platform: %w", err)
	}

	return nil
}

func (r *platformRepository) Update(ctx context.Context, p *Platform) error {
	query := `
		UPDATE platforms
		SET name = $1, logo_url = $2, base_delivery_fee = $3, free_delivery_threshold = $4,
		    avg_delivery_minutes = $5, website_url = $6
		WHERE id = $7
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		p.Name,
		p.LogoURL,
		p.BaseDeliveryFee,
		p.FreeDeliveryThreshold,
		p.AvgDeliveryMinutes,
		p.WebsiteURL,
		p.ID,
	).Scan(&p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPlatformNotFound
		}
		if isUniqueViolation(err) {
			return ErrPlatformExists
		}
		return fmt.Errorf("repository: failed to update platform %s: %w", p.ID, err)
	}

	return nil
}

func (r *platformRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM platforms WHERE id = $1`, id); err != nil {
		return fmt.Errorf("repository: failed to delete platform %s: %w", id, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
