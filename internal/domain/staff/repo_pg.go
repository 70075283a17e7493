package staff

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotify/slotify/internal/platform/apperr"
	"github.com/slotify/slotify/internal/platform/db"
	"github.com/slotify/slotify/pkg/pagination"
	"github.com/slotify/slotify/pkg/timeofday"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const staffCols = `id, full_name, email, phone, role, bio, is_active, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, s *Staff) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO staff (id, full_name, email, phone, role, bio, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		s.ID, s.FullName, s.Email, s.Phone, s.Role, s.Bio, s.Active, s.CreatedAt, s.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Conflict("a staff member with that email already exists")
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return scanStaff(r.conn(ctx).QueryRow(ctx, `SELECT `+staffCols+` FROM staff WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Staff, error) {
	return scanStaff(r.conn(ctx).QueryRow(ctx, `SELECT `+staffCols+` FROM staff WHERE email = $1`, email))
}

func (r *repoPG) Update(ctx context.Context, s *Staff) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE staff SET full_name=$2, email=$3, phone=$4, role=$5, bio=$6, is_active=$7, updated_at=$8
		WHERE id = $1`,
		s.ID, s.FullName, s.Email, s.Phone, s.Role, s.Bio, s.Active, s.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("staff member not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, activeOnly bool, p pagination.Params) ([]*Staff, int, error) {
	where := ""
	if activeOnly {
		where = " WHERE is_active"
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM staff`+where).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+staffCols+` FROM staff`+where+` ORDER BY full_name LIMIT $1 OFFSET $2`,
		p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var members []*Staff
	for rows.Next() {
		var s Staff
		if err := rows.Scan(&s.ID, &s.FullName, &s.Email, &s.Phone, &s.Role, &s.Bio, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		members = append(members, &s)
	}
	return members, total, rows.Err()
}

func scanStaff(row pgx.Row) (*Staff, error) {
	var s Staff
	err := row.Scan(&s.ID, &s.FullName, &s.Email, &s.Phone, &s.Role, &s.Bio, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("staff member not found")
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

const schedCols = `id, staff_id, day_of_week, start_minute, end_minute, is_available, created_at, updated_at`

func (r *repoPG) UpsertSchedule(ctx context.Context, e *ScheduleEntry) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO staff_schedule (id, staff_id, day_of_week, start_minute, end_minute, is_available, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (staff_id, day_of_week) DO UPDATE SET
			start_minute = EXCLUDED.start_minute,
			end_minute = EXCLUDED.end_minute,
			is_available = EXCLUDED.is_available,
			updated_at = EXCLUDED.updated_at`,
		e.ID, e.StaffID, e.DayOfWeek, int(e.Start), int(e.End), e.Available, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

func (r *repoPG) GetSchedule(ctx context.Context, staffID uuid.UUID) ([]*ScheduleEntry, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+schedCols+` FROM staff_schedule WHERE staff_id = $1 ORDER BY day_of_week`, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*ScheduleEntry
	for rows.Next() {
		e, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repoPG) GetScheduleDay(ctx context.Context, staffID uuid.UUID, dayOfWeek int) (*ScheduleEntry, error) {
	e, err := scanSchedule(r.conn(ctx).QueryRow(ctx,
		`SELECT `+schedCols+` FROM staff_schedule WHERE staff_id = $1 AND day_of_week = $2`,
		staffID, dayOfWeek))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("no schedule for that day")
	}
	return e, err
}

func (r *repoPG) DeleteScheduleDay(ctx context.Context, staffID uuid.UUID, dayOfWeek int) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM staff_schedule WHERE staff_id = $1 AND day_of_week = $2`, staffID, dayOfWeek)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSchedule(row rowScanner) (*ScheduleEntry, error) {
	var (
		e          ScheduleEntry
		start, end int
	)
	err := row.Scan(&e.ID, &e.StaffID, &e.DayOfWeek, &start, &end, &e.Available, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Start = timeofday.TimeOfDay(start)
	e.End = timeofday.TimeOfDay(end)
	return &e, nil
}
