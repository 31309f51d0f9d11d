package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScheduleRepository persists the batch schedule. Load returns nil when nothing is stored.
type ScheduleRepository interface {
	Load(ctx context.Context) (domain.BatchSchedule, error)
	Replace(ctx context.Context, schedule domain.BatchSchedule) error
}

type PGScheduleRepository struct {
	db *pgxpool.Pool
}

func NewScheduleRepository(db *pgxpool.Pool) ScheduleRepository {
	return &PGScheduleRepository{db: db}
}

func (r *PGScheduleRepository) Load(ctx context.Context) (domain.BatchSchedule, error) {
	rows, err := r.db.Query(ctx, `SELECT batch_id, week_parity, day FROM batch_schedule WHERE in_office ORDER BY batch_id, week_parity, day`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedule domain.BatchSchedule
	for rows.Next() {
		var batch, parity string
		var day int
		if err := rows.Scan(&batch, &parity, &day); err != nil {
			return nil, err
		}
		if schedule == nil {
			schedule = make(domain.BatchSchedule)
		}
		b := domain.Batch(batch)
		if schedule[b] == nil {
			schedule[b] = make(map[domain.WeekParity][]time.Weekday)
		}
		schedule[b][domain.WeekParity(parity)] = append(schedule[b][domain.WeekParity(parity)], time.Weekday(day))
	}
	return schedule, rows.Err()
}

func (r *PGScheduleRepository) Replace(ctx context.Context, schedule domain.BatchSchedule) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM batch_schedule`); err != nil {
		return err
	}

	var rows [][]any
	for batch := range schedule {
		for _, parity := range domain.Parities {
			for day := time.Monday; day <= time.Friday; day++ {
				rows = append(rows, []any{string(batch), string(parity), int(day), schedule.IsOfficeDay(batch, parity, day)})
			}
		}
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"batch_schedule"},
		[]string{"batch_id", "week_parity", "day", "in_office"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

var _ ScheduleRepository = (*PGScheduleRepository)(nil)
