package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrUserNotFound signals that the principal does not exist.
	ErrUserNotFound = errors.New("auth: user not found")
	// ErrDuplicateUsername signals that the username is already registered.
	ErrDuplicateUsername = errors.New("auth: username already exists")
)

// Repository handles data access for principals and their roles.
type Repository interface {
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByID(ctx context.Context, userID int64) (User, error)
	Create(ctx context.Context, params CreateUserParams) (User, error)
	// CreateIfAbsent provisions a principal unless one already exists for
	// the username. The bool reports whether a row was created.
	CreateIfAbsent(ctx context.Context, params CreateUserParams) (User, bool, error)
	GrantRole(ctx context.Context, userID int64, role string) error
}

// CreateUserParams contains write parameters for creating principals.
type CreateUserParams struct {
	Username     string
	PasswordHash string
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL-backed auth repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const selectUserSQL = `
	SELECT u.id, u.username, u.password_hash, u.created_at, u.updated_at,
	       p.id,
	       COALESCE(array_agg(r.name ORDER BY r.name) FILTER (WHERE r.name IS NOT NULL), '{}')
	FROM app_user u
	LEFT JOIN provider p ON p.user_id = u.id
	LEFT JOIN user_role ur ON ur.user_id = u.id
	LEFT JOIN role r ON r.id = ur.role_id
`

// GetByUsername retrieves a principal with its role set and linked
// provider, if any.
func (r *PGRepository) GetByUsername(ctx context.Context, username string) (User, error) {
	query := selectUserSQL + ` WHERE u.username = $1 GROUP BY u.id, p.id`

	user, err := scanUser(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("auth: get user by username: %w", err)
	}

	return user, nil
}

// GetByID retrieves a principal by ID.
func (r *PGRepository) GetByID(ctx context.Context, userID int64) (User, error) {
	query := selectUserSQL + ` WHERE u.id = $1 GROUP BY u.id, p.id`

	user, err := scanUser(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("auth: get user by id: %w", err)
	}

	return user, nil
}

// Create inserts a new principal with an empty role set.
func (r *PGRepository) Create(ctx context.Context, params CreateUserParams) (User, error) {
	const insertSQL = `
		INSERT INTO app_user (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, username, password_hash, created_at, updated_at
	`

	var user User
	err := r.pool.QueryRow(ctx, insertSQL, params.Username, params.PasswordHash).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrDuplicateUsername
		}
		return User{}, fmt.Errorf("auth: create user: %w", err)
	}

	user.Roles = []string{}
	return user, nil
}

// CreateIfAbsent inserts a principal and, when the username is already
// taken, falls back to reloading the existing row. Concurrent callers for
// the same new username both succeed; the store's uniqueness constraint
// decides which insert wins.
func (r *PGRepository) CreateIfAbsent(ctx context.Context, params CreateUserParams) (User, bool, error) {
	user, err := r.Create(ctx, params)
	if err == nil {
		return user, true, nil
	}
	if !errors.Is(err, ErrDuplicateUsername) {
		return User{}, false, err
	}

	existing, err := r.GetByUsername(ctx, params.Username)
	if err != nil {
		return User{}, false, err
	}
	return existing, false, nil
}

// GrantRole associates a named role with the principal. Granting an
// already-held role is a no-op.
func (r *PGRepository) GrantRole(ctx context.Context, userID int64, role string) error {
	const grantSQL = `
		INSERT INTO user_role (user_id, role_id)
		SELECT $1, id FROM role WHERE name = $2
		ON CONFLICT DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, grantSQL, userID, role)
	if err != nil {
		return fmt.Errorf("auth: grant role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the role name is unknown or the grant already exists;
		// verify the role exists so typos do not pass silently.
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM role WHERE name = $1)`, role).Scan(&exists); err != nil {
			return fmt.Errorf("auth: verify role: %w", err)
		}
		if !exists {
			return fmt.Errorf("auth: unknown role %q", role)
		}
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		user       User
		providerID *int64
		roles      []string
	)
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
		&providerID,
		&roles,
	)
	if err != nil {
		return User{}, err
	}

	user.ProviderID = providerID
	user.Roles = roles
	return user, nil
}
