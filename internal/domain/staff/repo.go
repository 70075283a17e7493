package staff

import (
	"context"

	"github.com/google/uuid"

	"github.com/slotify/slotify/pkg/pagination"
)

// Repository is tenant-scoped staff storage. The pgx implementation relies
// on the schema pinned to the context connection.
type Repository interface {
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	GetByEmail(ctx context.Context, email string) (*Staff, error)
	Update(ctx context.Context, s *Staff) error
	List(ctx context.Context, activeOnly bool, p pagination.Params) ([]*Staff, int, error)

	// UpsertSchedule replaces the entry for (staff, day) or creates it.
	UpsertSchedule(ctx context.Context, e *ScheduleEntry) error
	GetSchedule(ctx context.Context, staffID uuid.UUID) ([]*ScheduleEntry, error)
	GetScheduleDay(ctx context.Context, staffID uuid.UUID, dayOfWeek int) (*ScheduleEntry, error)
	DeleteScheduleDay(ctx context.Context, staffID uuid.UUID, dayOfWeek int) error
}
