package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AssignmentRepository stores per-(seat, day) state. Get returns a zero Assignment
// for keys with no row; Save removes the row when the assignment carries no state.
type AssignmentRepository interface {
	Get(ctx context.Context, seatID string, day time.Time) (domain.Assignment, error)
	ListByDate(ctx context.Context, day time.Time) ([]domain.Assignment, error)
	ListByRange(ctx context.Context, from, to time.Time) ([]domain.Assignment, error)
	ListByHolder(ctx context.Context, holderID string, from, to time.Time) ([]domain.Assignment, error)
	Save(ctx context.Context, a domain.Assignment) error
}

type PGAssignmentRepository struct {
	db *pgxpool.Pool
}

func NewAssignmentRepository(db *pgxpool.Pool) AssignmentRepository {
	return &PGAssignmentRepository{db: db}
}

const assignmentColumns = `seat_id, day, coalesce(holder_id, ''), released`

func (r *PGAssignmentRepository) Get(ctx context.Context, seatID string, day time.Time) (domain.Assignment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM seat_assignments WHERE seat_id=$1 AND day=$2`, seatID, day)
	a, err := scanAssignment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Assignment{SeatID: seatID, Date: day}, nil
	}
	return a, err
}

func (r *PGAssignmentRepository) ListByDate(ctx context.Context, day time.Time) ([]domain.Assignment, error) {
	return r.list(ctx, `SELECT `+assignmentColumns+` FROM seat_assignments WHERE day=$1`, day)
}

func (r *PGAssignmentRepository) ListByRange(ctx context.Context, from, to time.Time) ([]domain.Assignment, error) {
	return r.list(ctx, `SELECT `+assignmentColumns+` FROM seat_assignments WHERE day BETWEEN $1 AND $2 ORDER BY day, seat_id`, from, to)
}

func (r *PGAssignmentRepository) ListByHolder(ctx context.Context, holderID string, from, to time.Time) ([]domain.Assignment, error) {
	return r.list(ctx, `SELECT `+assignmentColumns+` FROM seat_assignments WHERE holder_id=$1 AND day BETWEEN $2 AND $3 ORDER BY day`, holderID, from, to)
}

func (r *PGAssignmentRepository) Save(ctx context.Context, a domain.Assignment) error {
	if a.IsZero() {
		_, err := r.db.Exec(ctx, `DELETE FROM seat_assignments WHERE seat_id=$1 AND day=$2`, a.SeatID, a.Date)
		return err
	}

	var holder *string
	if a.HolderID != "" {
		holder = &a.HolderID
	}
	_, err := r.db.Exec(ctx, `
        INSERT INTO seat_assignments (seat_id, day, holder_id, released, updated_at)
        VALUES ($1, $2, $3, $4, now())
        ON CONFLICT (seat_id, day) DO UPDATE
        SET holder_id = EXCLUDED.holder_id,
            released = EXCLUDED.released,
            updated_at = now()
    `, a.SeatID, a.Date, holder, a.Released)
	return err
}

func (r *PGAssignmentRepository) list(ctx context.Context, query string, args ...any) ([]domain.Assignment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAssignment(row pgx.Row) (domain.Assignment, error) {
	var a domain.Assignment
	if err := row.Scan(&a.SeatID, &a.Date, &a.HolderID, &a.Released); err != nil {
		return domain.Assignment{}, err
	}
	a.Date = a.Date.UTC()
	return a, nil
}

var _ AssignmentRepository = (*PGAssignmentRepository)(nil)
