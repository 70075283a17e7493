package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/slotify/slotify/internal/platform/db"
)

// SlugSource lists the tenants a sweep visits.
type SlugSource interface {
	ActiveSlugs(ctx context.Context) ([]string, error)
}

// Reminder periodically sweeps every active tenant for appointments coming
// up within the lead window and emits a reminder log line for each.
// Delivery (mail, SMS) hangs off these log events downstream.
type Reminder struct {
	pool      *pgxpool.Pool
	tenants   SlugSource
	leadHours int
	spec      string
	log       zerolog.Logger
	cron      *cron.Cron
}

func NewReminder(pool *pgxpool.Pool, tenants SlugSource, spec string, leadHours int, log zerolog.Logger) *Reminder {
	return &Reminder{
		pool:      pool,
		tenants:   tenants,
		leadHours: leadHours,
		spec:      spec,
		log:       log.With().Str("component", "reminder").Logger(),
	}
}

// Start schedules the sweep. Returns an error for an invalid cron spec.
func (r *Reminder) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(r.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		r.Sweep(ctx)
	}); err != nil {
		return fmt.Errorf("schedule reminder sweep: %w", err)
	}
	c.Start()
	r.cron = c

	r.log.Info().Str("spec", r.spec).Int("lead_hours", r.leadHours).Msg("reminder sweep scheduled")
	return nil
}

func (r *Reminder) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

// Sweep visits every active tenant once. A failing tenant is logged and
// skipped; one bad schema must not starve the rest.
func (r *Reminder) Sweep(ctx context.Context) {
	slugs, err := r.tenants.ActiveSlugs(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("list active tenants")
		return
	}

	total := 0
	for _, slug := range slugs {
		n, err := r.sweepTenant(ctx, slug)
		if err != nil {
			r.log.Error().Err(err).Str("tenant", slug).Msg("reminder sweep failed for tenant")
			continue
		}
		total += n
	}
	r.log.Info().Int("tenants", len(slugs)).Int("reminders", total).Msg("reminder sweep finished")
}

func (r *Reminder) sweepTenant(ctx context.Context, slug string) (int, error) {
	schema := db.SchemaName(slug)

	now := time.Now().UTC()
	until := now.Add(time.Duration(r.leadHours) * time.Hour)

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT id, customer_name, customer_email, appointment_date, start_minute
		FROM %s.appointment
		WHERE status IN ('PENDING','CONFIRMED')
		  AND appointment_date BETWEEN $1 AND $2
		ORDER BY appointment_date, start_minute`, schema),
		now.Format("2006-01-02"), until.Format("2006-01-02"))
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var (
			id, name, email string
			date            time.Time
			startMinute     int
		)
		if err := rows.Scan(&id, &name, &email, &date, &startMinute); err != nil {
			return n, err
		}

		startsAt := date.Add(time.Duration(startMinute) * time.Minute)
		if startsAt.Before(now) || startsAt.After(until) {
			continue
		}

		r.log.Info().
			Str("tenant", slug).
			Str("appointment_id", id).
			Str("customer", name).
			Str("email", email).
			Time("starts_at", startsAt).
			Msg("appointment reminder due")
		n++
	}
	return n, rows.Err()
}
