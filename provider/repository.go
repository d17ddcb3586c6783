package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals that the provider does not exist.
	ErrNotFound = errors.New("provider: not found")
	// ErrUserMissing signals that the referenced user does not exist.
	ErrUserMissing = errors.New("provider: linked user not found")
)

// Repository handles data access for providers.
type Repository interface {
	List(ctx context.Context) ([]Provider, error)
	GetByID(ctx context.Context, id int64) (Provider, error)
	Create(ctx context.Context, params CreateParams) (Provider, error)
	Update(ctx context.Context, id int64, params UpdateParams) (Provider, error)
	Delete(ctx context.Context, id int64) error
	SetImageURL(ctx context.Context, id int64, url string) (Provider, error)
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL-backed provider repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const providerColumns = `id, user_id, name, email, phone, profile_image_url`

func (r *PGRepository) List(ctx context.Context) ([]Provider, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+providerColumns+` FROM provider ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("provider: list: %w", err)
	}
	defer rows.Close()

	providers := []Provider{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("provider: list scan: %w", err)
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("provider: list rows: %w", err)
	}

	return providers, nil
}

func (r *PGRepository) GetByID(ctx context.Context, id int64) (Provider, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+providerColumns+` FROM provider WHERE id = $1`, id)

	p, err := scanProvider(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Provider{}, ErrNotFound
		}
		return Provider{}, fmt.Errorf("provider: get by id: %w", err)
	}

	return p, nil
}

func (r *PGRepository) Create(ctx context.Context, params CreateParams) (Provider, error) {
	const insertSQL = `
		INSERT INTO provider (user_id, name, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + providerColumns

	p, err := scanProvider(r.pool.QueryRow(ctx, insertSQL, params.UserID, params.Name, params.Email, params.Phone))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Provider{}, ErrUserMissing
		}
		return Provider{}, fmt.Errorf("provider: create: %w", err)
	}

	return p, nil
}

func (r *PGRepository) Update(ctx context.Context, id int64, params UpdateParams) (Provider, error) {
	const updateSQL = `
		UPDATE provider
		SET name = $2, email = $3, phone = $4,
		    profile_image_url = COALESCE($5, profile_image_url)
		WHERE id = $1
		RETURNING ` + providerColumns

	p, err := scanProvider(r.pool.QueryRow(ctx, updateSQL, id, params.Name, params.Email, params.Phone, params.ProfileImageURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Provider{}, ErrNotFound
		}
		return Provider{}, fmt.Errorf("provider: update: %w", err)
	}

	return p, nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM provider WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("provider: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) SetImageURL(ctx context.Context, id int64, url string) (Provider, error) {
	const updateSQL = `
		UPDATE provider SET profile_image_url = $2 WHERE id = $1
		RETURNING ` + providerColumns

	p, err := scanProvider(r.pool.QueryRow(ctx, updateSQL, id, url))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Provider{}, ErrNotFound
		}
		return Provider{}, fmt.Errorf("provider: set image url: %w", err)
	}

	return p, nil
}

func scanProvider(row pgx.Row) (Provider, error) {
	var p Provider
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Email, &p.Phone, &p.ProfileImageURL)
	if err != nil {
		return Provider{}, err
	}
	return p, nil
}
