package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Search(ctx context.Context, query string) ([]domain.User, error)
	UpdateBatch(ctx context.Context, id string, batch domain.Batch) (*domain.User, error)
}

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

const userColumns = `id, name, email, squad, batch, role, password_hash, created_at`

func (r *PGUserRepository) Create(ctx context.Context, user *domain.User) error {
	err := r.db.QueryRow(ctx, `INSERT INTO users (id, name, email, squad, batch, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`, user.ID, user.Name, user.Email, user.Squad, string(user.Batch), string(user.Role), user.PasswordHash).
		Scan(&user.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return domain.ErrEmailTaken
	}
	return err
}

func (r *PGUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *PGUserRepository) Search(ctx context.Context, query string) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'
		ORDER BY name`, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *PGUserRepository) UpdateBatch(ctx context.Context, id string, batch domain.Batch) (*domain.User, error) {
	return r.getOne(ctx, `UPDATE users SET batch=$1 WHERE id=$2 RETURNING `+userColumns, string(batch), id)
}

func (r *PGUserRepository) getOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	return u, err
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var batch, role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Squad, &batch, &role, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Batch = domain.Batch(batch)
	u.Role = domain.Role(role)
	return &u, nil
}

var _ UserRepository = (*PGUserRepository)(nil)
