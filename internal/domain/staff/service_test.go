package staff

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/slotify/slotify/internal/platform/apperr"
	"github.com/slotify/slotify/internal/platform/auth"
	"github.com/slotify/slotify/pkg/pagination"
	"github.com/slotify/slotify/pkg/timeofday"
)

type mockRepo struct {
	members   map[uuid.UUID]*Staff
	schedules map[uuid.UUID]map[int]*ScheduleEntry
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		members:   make(map[uuid.UUID]*Staff),
		schedules: make(map[uuid.UUID]map[int]*ScheduleEntry),
	}
}

func (m *mockRepo) Create(_ context.Context, s *Staff) error {
	for _, existing := range m.members {
		if existing.Email == s.Email {
			return apperr.Conflict("a staff member with that email already exists")
		}
	}
	m.members[s.ID] = s
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Staff, error) {
	s, ok := m.members[id]
	if !ok {
		return nil, apperr.NotFound("staff member not found")
	}
	return s, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*Staff, error) {
	for _, s := range m.members {
		if s.Email == email {
			return s, nil
		}
	}
	return nil, apperr.NotFound("staff member not found")
}

func (m *mockRepo) Update(_ context.Context, s *Staff) error {
	if _, ok := m.members[s.ID]; !ok {
		return apperr.NotFound("staff member not found")
	}
	m.members[s.ID] = s
	return nil
}

func (m *mockRepo) List(_ context.Context, activeOnly bool, _ pagination.Params) ([]*Staff, int, error) {
	var out []*Staff
	for _, s := range m.members {
		if activeOnly && !s.Active {
			continue
		}
		out = append(out, s)
	}
	return out, len(out), nil
}

func (m *mockRepo) UpsertSchedule(_ context.Context, e *ScheduleEntry) error {
	if m.schedules[e.StaffID] == nil {
		m.schedules[e.StaffID] = make(map[int]*ScheduleEntry)
	}
	m.schedules[e.StaffID][e.DayOfWeek] = e
	return nil
}

func (m *mockRepo) GetSchedule(_ context.Context, staffID uuid.UUID) ([]*ScheduleEntry, error) {
	var out []*ScheduleEntry
	for _, e := range m.schedules[staffID] {
		out = append(out, e)
	}
	return out, nil
}

func (m *mockRepo) GetScheduleDay(_ context.Context, staffID uuid.UUID, dow int) (*ScheduleEntry, error) {
	e, ok := m.schedules[staffID][dow]
	if !ok {
		return nil, apperr.NotFound("no schedule for that day")
	}
	return e, nil
}

func (m *mockRepo) DeleteScheduleDay(_ context.Context, staffID uuid.UUID, dow int) error {
	delete(m.schedules[staffID], dow)
	return nil
}

func managerCtx() context.Context {
	return context.WithValue(context.Background(), auth.UserRolesKey, []string{auth.RoleManager})
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, zerolog.Nop()), repo
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService()

	member, err := svc.Create(managerCtx(), CreateRequest{
		FullName: "Maria Garcia",
		Email:    "Maria@Example.com",
		Role:     "staff",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !member.Active {
		t.Error("new staff should be active")
	}
	if member.Email != "maria@example.com" {
		t.Errorf("email not normalized: %q", member.Email)
	}
}

func TestCreate_RequiresManager(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateRequest{FullName: "X", Email: "x@y.z"})
	if !apperr.IsKind(err, apperr.KindAccessDenied) {
		t.Fatalf("expected access denied, got %v", err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := managerCtx()

	if _, err := svc.Create(ctx, CreateRequest{FullName: "A", Email: "a@b.c"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, CreateRequest{FullName: "B", Email: "a@b.c"})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}
}

func TestCreate_UnknownRole(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(managerCtx(), CreateRequest{FullName: "A", Email: "a@b.c", Role: "janitor"})
	if !apperr.IsKind(err, apperr.KindInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestDeactivate(t *testing.T) {
	svc, repo := newTestService()
	ctx := managerCtx()

	member, err := svc.Create(ctx, CreateRequest{FullName: "A", Email: "a@b.c"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Deactivate(ctx, member.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if repo.members[member.ID].Active {
		t.Error("member still active after deactivation")
	}

	// Deactivated members drop out of the active listing but stay fetchable.
	active, _, _ := svc.List(ctx, true, pagination.Params{Limit: 10})
	if len(active) != 0 {
		t.Errorf("active list = %d members, want 0", len(active))
	}
	if _, err := svc.Get(ctx, member.ID); err != nil {
		t.Errorf("deactivated member should still resolve: %v", err)
	}
}

func TestSetScheduleDay(t *testing.T) {
	svc, _ := newTestService()
	ctx := managerCtx()

	member, err := svc.Create(ctx, CreateRequest{FullName: "A", Email: "a@b.c"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	start, _ := timeofday.Parse("09:00")
	end, _ := timeofday.Parse("17:00")
	entry, err := svc.SetScheduleDay(ctx, member.ID, ScheduleDayInput{
		DayOfWeek: 1, Start: start, End: end, Available: true,
	})
	if err != nil {
		t.Fatalf("set schedule: %v", err)
	}
	if entry.DayOfWeek != 1 || !entry.Available {
		t.Errorf("entry = %+v", entry)
	}

	// Upsert replaces the same day.
	newEnd, _ := timeofday.Parse("18:00")
	if _, err := svc.SetScheduleDay(ctx, member.ID, ScheduleDayInput{
		DayOfWeek: 1, Start: start, End: newEnd, Available: true,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := svc.ScheduleDay(ctx, member.ID, 1)
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	if got.End != newEnd {
		t.Errorf("end = %s, want 18:00", got.End)
	}
}

func TestSetScheduleDay_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := managerCtx()

	member, err := svc.Create(ctx, CreateRequest{FullName: "A", Email: "a@b.c"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	start, _ := timeofday.Parse("09:00")
	end, _ := timeofday.Parse("17:00")

	_, err = svc.SetScheduleDay(ctx, member.ID, ScheduleDayInput{DayOfWeek: 0, Start: start, End: end, Available: true})
	if !apperr.IsKind(err, apperr.KindInvalidInput) {
		t.Errorf("day 0: expected invalid input, got %v", err)
	}
	_, err = svc.SetScheduleDay(ctx, member.ID, ScheduleDayInput{DayOfWeek: 8, Start: start, End: end, Available: true})
	if !apperr.IsKind(err, apperr.KindInvalidInput) {
		t.Errorf("day 8: expected invalid input, got %v", err)
	}
	_, err = svc.SetScheduleDay(ctx, member.ID, ScheduleDayInput{DayOfWeek: 1, Start: end, End: start, Available: true})
	if !apperr.IsKind(err, apperr.KindInvalidInput) {
		t.Errorf("inverted window: expected invalid input, got %v", err)
	}

	// An unavailable day may carry a zero window.
	if _, err := svc.SetScheduleDay(ctx, member.ID, ScheduleDayInput{DayOfWeek: 7, Available: false}); err != nil {
		t.Errorf("unavailable day with zero window: %v", err)
	}
}

func TestSetWeeklySchedule_DuplicateDay(t *testing.T) {
	svc, _ := newTestService()
	ctx := managerCtx()

	member, err := svc.Create(ctx, CreateRequest{FullName: "A", Email: "a@b.c"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	start, _ := timeofday.Parse("09:00")
	end, _ := timeofday.Parse("17:00")
	_, err = svc.SetWeeklySchedule(ctx, member.ID, []ScheduleDayInput{
		{DayOfWeek: 1, Start: start, End: end, Available: true},
		{DayOfWeek: 1, Start: start, End: end, Available: true},
	})
	if !apperr.IsKind(err, apperr.KindInvalidInput) {
		t.Fatalf("expected invalid input for duplicate day, got %v", err)
	}
}
