package booking

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

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

func NewRepo(pool *pgxpool.Pool) AppointmentRepository {
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

const apptCols = `id, staff_id, service_id, customer_name, customer_phone, customer_email,
	appointment_date, start_minute, end_minute, status, total_price, notes,
	created_at, updated_at, confirmed_at, completed_at, cancelled_at`

// Serialize runs fn inside one transaction holding a per-(staff,date)
// advisory lock, so two concurrent bookings on the same staff-day cannot
// interleave between conflict check and insert. The lock is released on
// commit or rollback.
func (r *repoPG) Serialize(ctx context.Context, staffID uuid.UUID, date time.Time, fn func(ctx context.Context) error) error {
	var beginner interface {
		Begin(ctx context.Context) (pgx.Tx, error)
	} = r.pool
	if c := db.ConnFromContext(ctx); c != nil {
		beginner = c
	}

	tx, err := beginner.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, slotLockKey(staffID, date)); err != nil {
		return fmt.Errorf("advisory lock: %w", err)
	}

	if err := fn(db.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return asConflict(err)
	}
	return nil
}

// slotLockKey hashes (staff, date) into the advisory lock keyspace.
func slotLockKey(staffID uuid.UUID, date time.Time) int64 {
	h := fnv.New64a()
	h.Write(staffID[:])
	h.Write([]byte(date.Format("2006-01-02")))
	return int64(h.Sum64())
}

// asConflict maps a unique-violation on the active-slot index to a
// KindConflict error; everything else passes through.
func asConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Conflict("slot is already taken")
	}
	return err
}

func (r *repoPG) FindActive(ctx context.Context, staffID uuid.UUID, date time.Time) ([]ActiveWindow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, start_minute, end_minute, status FROM appointment
		WHERE staff_id = $1 AND appointment_date = $2 AND status IN ('PENDING','CONFIRMED')
		ORDER BY start_minute`, staffID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []ActiveWindow
	for rows.Next() {
		var (
			w          ActiveWindow
			start, end int
		)
		if err := rows.Scan(&w.ID, &start, &end, &w.Status); err != nil {
			return nil, err
		}
		w.Window = Window{Start: timeofday.TimeOfDay(start), End: timeofday.TimeOfDay(end)}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

func (r *repoPG) Insert(ctx context.Context, a *Appointment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (
			id, staff_id, service_id, customer_name, customer_phone, customer_email,
			appointment_date, start_minute, end_minute, status, total_price, notes,
			created_at, updated_at, confirmed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		a.ID, a.StaffID, a.ServiceID, a.CustomerName, a.CustomerPhone, a.CustomerEmail,
		a.Date, int(a.Start), int(a.End), a.Status, a.TotalPrice, a.Notes,
		a.CreatedAt, a.UpdatedAt, a.ConfirmedAt,
	)
	return asConflict(err)
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET
			customer_name=$2, customer_phone=$3, customer_email=$4,
			appointment_date=$5, start_minute=$6, end_minute=$7, status=$8,
			total_price=$9, notes=$10, updated_at=$11,
			confirmed_at=$12, completed_at=$13, cancelled_at=$14
		WHERE id = $1`,
		a.ID, a.CustomerName, a.CustomerPhone, a.CustomerEmail,
		a.Date, int(a.Start), int(a.End), a.Status,
		a.TotalPrice, a.Notes, a.UpdatedAt,
		a.ConfirmedAt, a.CompletedAt, a.CancelledAt,
	)
	if err != nil {
		return asConflict(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("appointment not found")
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppt(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) ListByDate(ctx context.Context, date time.Time) ([]*Appointment, error) {
	return r.queryAppts(ctx, `SELECT `+apptCols+` FROM appointment
		WHERE appointment_date = $1 ORDER BY start_minute`, date)
}

func (r *repoPG) ListByStaffDate(ctx context.Context, staffID uuid.UUID, date time.Time) ([]*Appointment, error) {
	return r.queryAppts(ctx, `SELECT `+apptCols+` FROM appointment
		WHERE staff_id = $1 AND appointment_date = $2 ORDER BY start_minute`, staffID, date)
}

func (r *repoPG) ListByDateRange(ctx context.Context, from, to time.Time) ([]*Appointment, error) {
	return r.queryAppts(ctx, `SELECT `+apptCols+` FROM appointment
		WHERE appointment_date BETWEEN $1 AND $2
		ORDER BY appointment_date, start_minute`, from, to)
}

func (r *repoPG) ListByCustomerPhone(ctx context.Context, phone string) ([]*Appointment, error) {
	return r.queryAppts(ctx, `SELECT `+apptCols+` FROM appointment
		WHERE customer_phone = $1 ORDER BY appointment_date DESC, start_minute DESC`, phone)
}

func (r *repoPG) ListUpcomingByCustomerEmail(ctx context.Context, email string, from time.Time) ([]*Appointment, error) {
	return r.queryAppts(ctx, `SELECT `+apptCols+` FROM appointment
		WHERE customer_email = $1 AND appointment_date >= $2 AND status IN ('PENDING','CONFIRMED')
		ORDER BY appointment_date, start_minute`, email, from)
}

func (r *repoPG) ListUpcoming(ctx context.Context, from time.Time, p pagination.Params) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM appointment
		WHERE appointment_date >= $1 AND status IN ('PENDING','CONFIRMED')`, from).Scan(&total); err != nil {
		return nil, 0, err
	}
	appts, err := r.queryAppts(ctx, `SELECT `+apptCols+` FROM appointment
		WHERE appointment_date >= $1 AND status IN ('PENDING','CONFIRMED')
		ORDER BY appointment_date, start_minute LIMIT $2 OFFSET $3`, from, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	return appts, total, nil
}

func (r *repoPG) List(ctx context.Context, filter ListFilter, p pagination.Params) ([]*Appointment, int, error) {
	where := ""
	args := []interface{}{}
	add := func(clause string, val interface{}) {
		args = append(args, val)
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(clause, len(args))
	}
	if filter.StaffID != nil {
		add("staff_id = $%d", *filter.StaffID)
	}
	if filter.ServiceID != nil {
		add("service_id = $%d", *filter.ServiceID)
	}
	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}
	if filter.From != nil {
		add("appointment_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("appointment_date <= $%d", *filter.To)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+apptCols+` FROM appointment%s
		ORDER BY appointment_date DESC, start_minute LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	appts, err := r.queryAppts(ctx, query, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	return appts, total, nil
}

const countCols = `
	COUNT(*),
	COUNT(*) FILTER (WHERE status = 'PENDING'),
	COUNT(*) FILTER (WHERE status = 'CONFIRMED'),
	COUNT(*) FILTER (WHERE status = 'COMPLETED'),
	COUNT(*) FILTER (WHERE status = 'CANCELLED'),
	COUNT(*) FILTER (WHERE status = 'NO_SHOW'),
	COALESCE(SUM(total_price) FILTER (WHERE status = 'COMPLETED'), 0)`

func (r *repoPG) CountByStatus(ctx context.Context) (*StatusCounts, error) {
	return scanCounts(r.conn(ctx).QueryRow(ctx, `SELECT`+countCols+` FROM appointment`))
}

func (r *repoPG) CountByStatusForStaff(ctx context.Context, staffID uuid.UUID) (*StatusCounts, error) {
	return scanCounts(r.conn(ctx).QueryRow(ctx,
		`SELECT`+countCols+` FROM appointment WHERE staff_id = $1`, staffID))
}

func scanCounts(row pgx.Row) (*StatusCounts, error) {
	var c StatusCounts
	err := row.Scan(&c.Total, &c.Pending, &c.Confirmed, &c.Completed, &c.Cancelled, &c.NoShow, &c.CompletedRevenue)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repoPG) queryAppts(ctx context.Context, query string, args ...interface{}) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []*Appointment
	for rows.Next() {
		a, err := scanApptRow(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppt(row pgx.Row) (*Appointment, error) {
	a, err := scanApptRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("appointment not found")
	}
	return a, err
}

func scanApptRow(row rowScanner) (*Appointment, error) {
	var (
		a          Appointment
		start, end int
	)
	err := row.Scan(
		&a.ID, &a.StaffID, &a.ServiceID, &a.CustomerName, &a.CustomerPhone, &a.CustomerEmail,
		&a.Date, &start, &end, &a.Status, &a.TotalPrice, &a.Notes,
		&a.CreatedAt, &a.UpdatedAt, &a.ConfirmedAt, &a.CompletedAt, &a.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	a.Start = timeofday.TimeOfDay(start)
	a.End = timeofday.TimeOfDay(end)
	return &a, nil
}
