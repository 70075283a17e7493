package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotify/slotify/internal/platform/apperr"
	"github.com/slotify/slotify/pkg/pagination"
	"github.com/slotify/slotify/pkg/timeofday"
)

// repoPG reads and writes shared.tenant directly through the pool: tenant
// rows are platform-level and never live behind a tenant-pinned connection.
type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const tenantCols = `id, name, slug, email, phone, address, timezone,
	slot_duration_minutes, advance_booking_days, auto_confirm,
	working_hours_start, working_hours_end, is_active, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, t *Tenant) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO shared.tenant (
			id, name, slug, email, phone, address, timezone,
			slot_duration_minutes, advance_booking_days, auto_confirm,
			working_hours_start, working_hours_end, is_active, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		t.ID, t.Name, t.Slug, t.Email, t.Phone, t.Address, t.Timezone,
		t.SlotDurationMinutes, t.AdvanceBookingDays, t.AutoConfirm,
		int(t.WorkingHoursStart), int(t.WorkingHoursEnd), t.Active, t.CreatedAt, t.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Conflict("a tenant with that slug already exists")
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	return scanTenant(r.pool.QueryRow(ctx, `SELECT `+tenantCols+` FROM shared.tenant WHERE id = $1`, id))
}

func (r *repoPG) GetBySlug(ctx context.Context, slug string) (*Tenant, error) {
	return scanTenant(r.pool.QueryRow(ctx, `SELECT `+tenantCols+` FROM shared.tenant WHERE slug = $1`, slug))
}

func (r *repoPG) Update(ctx context.Context, t *Tenant) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE shared.tenant SET
			name=$2, email=$3, phone=$4, address=$5, timezone=$6,
			slot_duration_minutes=$7, advance_booking_days=$8, auto_confirm=$9,
			working_hours_start=$10, working_hours_end=$11, is_active=$12, updated_at=$13
		WHERE id = $1`,
		t.ID, t.Name, t.Email, t.Phone, t.Address, t.Timezone,
		t.SlotDurationMinutes, t.AdvanceBookingDays, t.AutoConfirm,
		int(t.WorkingHoursStart), int(t.WorkingHoursEnd), t.Active, t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("tenant not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, p pagination.Params) ([]*Tenant, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM shared.tenant`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+tenantCols+` FROM shared.tenant ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tenants []*Tenant
	for rows.Next() {
		t, err := scanTenantRow(rows)
		if err != nil {
			return nil, 0, err
		}
		tenants = append(tenants, t)
	}
	return tenants, total, rows.Err()
}

func (r *repoPG) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM shared.tenant WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

func (r *repoPG) ActiveSlugs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT slug FROM shared.tenant WHERE is_active ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		slugs = append(slugs, s)
	}
	return slugs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTenant(row pgx.Row) (*Tenant, error) {
	t, err := scanTenantRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("tenant not found")
	}
	return t, err
}

func scanTenantRow(row rowScanner) (*Tenant, error) {
	var (
		t          Tenant
		start, end int
	)
	err := row.Scan(
		&t.ID, &t.Name, &t.Slug, &t.Email, &t.Phone, &t.Address, &t.Timezone,
		&t.SlotDurationMinutes, &t.AdvanceBookingDays, &t.AutoConfirm,
		&start, &end, &t.Active, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.WorkingHoursStart = timeofday.TimeOfDay(start)
	t.WorkingHoursEnd = timeofday.TimeOfDay(end)
	return &t, nil
}
