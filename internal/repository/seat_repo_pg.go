package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SeatRepository interface {
	List(ctx context.Context) ([]domain.Seat, error)
	GetByID(ctx context.Context, id string) (*domain.Seat, error)
	GetByLabel(ctx context.Context, label string) (*domain.Seat, error)
	GetByOwner(ctx context.Context, ownerID string) (*domain.Seat, error)
	UpdateOwner(ctx context.Context, id string, ownerID *string) (*domain.Seat, error)
	Insert(ctx context.Context, seats []domain.Seat) error
	Count(ctx context.Context) (int, error)
}

type PGSeatRepository struct {
	db *pgxpool.Pool
}

func NewSeatRepository(db *pgxpool.Pool) SeatRepository {
	return &PGSeatRepository{db: db}
}

const seatColumns = `id, label, kind, number, owner_id`

func (r *PGSeatRepository) List(ctx context.Context) ([]domain.Seat, error) {
	rows, err := r.db.Query(ctx, `SELECT `+seatColumns+` FROM seats ORDER BY kind = 'floater', number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.Seat, 0)
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, *s)
	}
	return seats, rows.Err()
}

func (r *PGSeatRepository) GetByID(ctx context.Context, id string) (*domain.Seat, error) {
	return r.getOne(ctx, `SELECT `+seatColumns+` FROM seats WHERE id=$1`, id)
}

func (r *PGSeatRepository) GetByLabel(ctx context.Context, label string) (*domain.Seat, error) {
	return r.getOne(ctx, `SELECT `+seatColumns+` FROM seats WHERE label=$1`, strings.ToUpper(label))
}

func (r *PGSeatRepository) GetByOwner(ctx context.Context, ownerID string) (*domain.Seat, error) {
	return r.getOne(ctx, `SELECT `+seatColumns+` FROM seats WHERE owner_id=$1 ORDER BY number LIMIT 1`, ownerID)
}

func (r *PGSeatRepository) UpdateOwner(ctx context.Context, id string, ownerID *string) (*domain.Seat, error) {
	return r.getOne(ctx, `UPDATE seats SET owner_id=$1 WHERE id=$2 RETURNING `+seatColumns, ownerID, id)
}

func (r *PGSeatRepository) Insert(ctx context.Context, seats []domain.Seat) error {
	rows := make([][]any, 0, len(seats))
	for _, s := range seats {
		rows = append(rows, []any{s.ID, s.Label, string(s.Kind), s.Number, s.OwnerID})
	}
	_, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"seats"},
		[]string{"id", "label", "kind", "number", "owner_id"},
		pgx.CopyFromRows(rows),
	)
	return err
}

func (r *PGSeatRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM seats`).Scan(&n)
	return n, err
}

func (r *PGSeatRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Seat, error) {
	s, err := scanSeat(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return s, err
}

func scanSeat(row pgx.Row) (*domain.Seat, error) {
	var s domain.Seat
	var kind string
	if err := row.Scan(&s.ID, &s.Label, &kind, &s.Number, &s.OwnerID); err != nil {
		return nil, err
	}
	s.Kind = domain.SeatKind(kind)
	return &s, nil
}

var _ SeatRepository = (*PGSeatRepository)(nil)
