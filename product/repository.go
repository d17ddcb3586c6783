package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals that the product does not exist.
	ErrNotFound = errors.New("product: not found")
	// ErrProviderMissing signals that the referenced provider does not exist.
	ErrProviderMissing = errors.New("product: provider not found")
)

// Repository handles data access for products.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, params CreateParams) (Product, error)
	Update(ctx context.Context, id int64, params UpdateParams) (Product, error)
	Delete(ctx context.Context, id int64) error
	SetImageURL(ctx context.Context, id int64, url string) (Product, error)
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL-backed product repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const productColumns = `id, name, description, price, stock_quantity, product_image_url, provider_id`

func (r *PGRepository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM product ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("product: list: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("product: list scan: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("product: list rows: %w", err)
	}

	return products, nil
}

func (r *PGRepository) GetByID(ctx context.Context, id int64) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM product WHERE id = $1`, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("product: get by id: %w", err)
	}

	return p, nil
}

func (r *PGRepository) Create(ctx context.Context, params CreateParams) (Product, error) {
	const insertSQL = `
		INSERT INTO product (name, description, price, stock_quantity, provider_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + productColumns

	p, err := scanProduct(r.pool.QueryRow(ctx, insertSQL,
		params.Name, params.Description, params.Price, params.StockQuantity, params.ProviderID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Product{}, ErrProviderMissing
		}
		return Product{}, fmt.Errorf("product: create: %w", err)
	}

	return p, nil
}

func (r *PGRepository) Update(ctx context.Context, id int64, params UpdateParams) (Product, error) {
	const updateSQL = `
		UPDATE product
		SET name = $2, description = $3, price = $4, stock_quantity = $5
		WHERE id = $1
		RETURNING ` + productColumns

	p, err := scanProduct(r.pool.QueryRow(ctx, updateSQL,
		id, params.Name, params.Description, params.Price, params.StockQuantity))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("product: update: %w", err)
	}

	return p, nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM product WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("product: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) SetImageURL(ctx context.Context, id int64, url string) (Product, error) {
	const updateSQL = `
		UPDATE product SET product_image_url = $2 WHERE id = $1
		RETURNING ` + productColumns

	p, err := scanProduct(r.pool.QueryRow(ctx, updateSQL, id, url))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("product: set image url: %w", err)
	}

	return p, nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity, &p.ProductImageURL, &p.ProviderID)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}
