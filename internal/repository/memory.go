package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/officeseats/internal/domain"
)

// MemorySeatRepository keeps seats in process memory.
type MemorySeatRepository struct {
	mu    sync.RWMutex
	seats map[string]domain.Seat
}

func NewMemorySeatRepository() *MemorySeatRepository {
	return &MemorySeatRepository{seats: make(map[string]domain.Seat)}
}

func (r *MemorySeatRepository) List(_ context.Context) ([]domain.Seat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seats := make([]domain.Seat, 0, len(r.seats))
	for _, s := range r.seats {
		seats = append(seats, copySeat(s))
	}
	sort.Slice(seats, func(i, j int) bool {
		if seats[i].Kind != seats[j].Kind {
			return seats[i].Kind == domain.SeatKindDesignated
		}
		return seats[i].Number < seats[j].Number
	})
	return seats, nil
}

func (r *MemorySeatRepository) GetByID(_ context.Context, id string) (*domain.Seat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.seats[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	s = copySeat(s)
	return &s, nil
}

func (r *MemorySeatRepository) GetByLabel(ctx context.Context, label string) (*domain.Seat, error) {
	return r.find(func(s domain.Seat) bool { return strings.EqualFold(s.Label, label) })
}

func (r *MemorySeatRepository) GetByOwner(ctx context.Context, ownerID string) (*domain.Seat, error) {
	return r.find(func(s domain.Seat) bool { return s.OwnedBy(ownerID) })
}

func (r *MemorySeatRepository) UpdateOwner(_ context.Context, id string, ownerID *string) (*domain.Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.seats[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	s.OwnerID = copyString(ownerID)
	r.seats[id] = s

	s = copySeat(s)
	return &s, nil
}

func (r *MemorySeatRepository) Insert(_ context.Context, seats []domain.Seat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range seats {
		r.seats[s.ID] = copySeat(s)
	}
	return nil
}

func (r *MemorySeatRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.seats), nil
}

func (r *MemorySeatRepository) find(match func(domain.Seat) bool) (*domain.Seat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *domain.Seat
	for _, s := range r.seats {
		if match(s) && (found == nil || s.Number < found.Number) {
			c := copySeat(s)
			found = &c
		}
	}
	if found == nil {
		return nil, domain.ErrNotFound
	}
	return found, nil
}

func copySeat(s domain.Seat) domain.Seat {
	s.OwnerID = copyString(s.OwnerID)
	return s
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type assignmentKey struct {
	seatID string
	day    string
}

// MemoryAssignmentRepository keeps seat assignments in process memory.
type MemoryAssignmentRepository struct {
	mu   sync.RWMutex
	rows map[assignmentKey]domain.Assignment
}

func NewMemoryAssignmentRepository() *MemoryAssignmentRepository {
	return &MemoryAssignmentRepository{rows: make(map[assignmentKey]domain.Assignment)}
}

func (r *MemoryAssignmentRepository) Get(_ context.Context, seatID string, day time.Time) (domain.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if a, ok := r.rows[assignmentKey{seatID, domain.FormatDay(day)}]; ok {
		return a, nil
	}
	return domain.Assignment{SeatID: seatID, Date: day}, nil
}

func (r *MemoryAssignmentRepository) ListByDate(ctx context.Context, day time.Time) ([]domain.Assignment, error) {
	return r.ListByRange(ctx, day, day)
}

func (r *MemoryAssignmentRepository) ListByRange(_ context.Context, from, to time.Time) ([]domain.Assignment, error) {
	return r.filter(func(a domain.Assignment) bool {
		return !a.Date.Before(from) && !a.Date.After(to)
	}), nil
}

func (r *MemoryAssignmentRepository) ListByHolder(_ context.Context, holderID string, from, to time.Time) ([]domain.Assignment, error) {
	return r.filter(func(a domain.Assignment) bool {
		return a.HolderID == holderID && !a.Date.Before(from) && !a.Date.After(to)
	}), nil
}

func (r *MemoryAssignmentRepository) Save(_ context.Context, a domain.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := assignmentKey{a.SeatID, domain.FormatDay(a.Date)}
	if a.IsZero() {
		delete(r.rows, key)
		return nil
	}
	r.rows[key] = a
	return nil
}

func (r *MemoryAssignmentRepository) filter(match func(domain.Assignment) bool) []domain.Assignment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Assignment
	for _, a := range r.rows {
		if match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].SeatID < out[j].SeatID
	})
	return out
}

// MemoryUserRepository keeps users in process memory.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
	now   func() time.Time
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]domain.User), now: time.Now}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrEmailTaken
		}
	}
	user.CreatedAt = r.now().UTC()
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) Search(_ context.Context, query string) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(query)
	users := make([]domain.User, 0)
	for _, u := range r.users {
		if q == "" || strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Email), q) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (r *MemoryUserRepository) UpdateBatch(_ context.Context, id string, batch domain.Batch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Batch = batch
	r.users[id] = u
	return &u, nil
}

// MemoryScheduleRepository keeps the batch schedule in process memory.
type MemoryScheduleRepository struct {
	mu       sync.RWMutex
	schedule domain.BatchSchedule
}

func NewMemoryScheduleRepository() *MemoryScheduleRepository {
	return &MemoryScheduleRepository{}
}

func (r *MemoryScheduleRepository) Load(_ context.Context) (domain.BatchSchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.schedule, nil
}

func (r *MemoryScheduleRepository) Replace(_ context.Context, schedule domain.BatchSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schedule = schedule
	return nil
}

var (
	_ SeatRepository       = (*MemorySeatRepository)(nil)
	_ AssignmentRepository = (*MemoryAssignmentRepository)(nil)
	_ UserRepository       = (*MemoryUserRepository)(nil)
	_ ScheduleRepository   = (*MemoryScheduleRepository)(nil)
)
