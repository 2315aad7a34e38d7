package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/event-gate/internal/domain"
)

// MemoryStore is a process-local backing store used when no Postgres DSN is
// configured and by tests. One mutex guards users and events so that event
// renames and registrations observe a consistent view.
type MemoryStore struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	events map[string]*domain.Event
	now    func() time.Time
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[string]*domain.User),
		events: make(map[string]*domain.Event),
		now:    time.Now,
	}
}

// Users returns the user repository view of the store.
func (s *MemoryStore) Users() UserRepository {
	return &memoryUserRepository{s: s}
}

// Events returns the event repository view of the store.
func (s *MemoryStore) Events() EventRepository {
	return &memoryEventRepository{s: s}
}

type memoryUserRepository struct {
	s *MemoryStore
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.users[user.ID]; exists {
		return ErrDuplicate
	}
	for _, u := range r.s.users {
		if u.Email == user.Email || (user.ReferralCode != "" && u.ReferralCode == user.ReferralCode) {
			return ErrDuplicate
		}
	}
	now := r.s.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Events == nil {
		user.Events = []string{}
	}
	r.s.users[user.ID] = user.Clone()
	return nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u, ok := r.s.users[id]; ok {
		return u.Clone(), nil
	}
	return nil, ErrNotFound
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return u.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUserRepository) List(_ context.Context) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		result = append(result, *u.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *memoryUserRepository) ConditionallyAdmit(_ context.Context, id string, at time.Time) (*domain.User, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, false, ErrNotFound
	}
	if u.HasEntered {
		return u.Clone(), false, nil
	}
	entry := at
	u.HasEntered = true
	u.EntryTime = &entry
	u.UpdatedAt = r.s.now()
	return u.Clone(), true, nil
}

func (r *memoryUserRepository) AppendEventRegistration(_ context.Context, id, eventName string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return ErrNotFound
	}
	if u.HasEvent(eventName) {
		return ErrAlreadyRegistered
	}
	u.Events = append(u.Events, eventName)
	u.UpdatedAt = r.s.now()
	return nil
}

func (r *memoryUserRepository) IncrementReferralCount(_ context.Context, referralCode string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.ReferralCode == referralCode {
			u.ReferralCount++
			u.UpdatedAt = r.s.now()
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryUserRepository) SetAdmin(_ context.Context, email string, admin bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			u.IsAdmin = admin
			u.UpdatedAt = r.s.now()
			return nil
		}
	}
	return ErrNotFound
}

type memoryEventRepository struct {
	s *MemoryStore
}

func (r *memoryEventRepository) Create(_ context.Context, event *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.events[event.ID]; exists {
		return ErrDuplicate
	}
	if r.nameTakenLocked(event.Name, "") {
		return ErrDuplicate
	}
	now := r.s.now()
	event.CreatedAt = now
	event.UpdatedAt = now
	cp := *event
	r.s.events[event.ID] = &cp
	return nil
}

func (r *memoryEventRepository) Update(_ context.Context, event *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.events[event.ID]
	if !ok {
		return ErrNotFound
	}
	if r.nameTakenLocked(event.Name, event.ID) {
		return ErrDuplicate
	}
	oldName := existing.Name
	event.CreatedAt = existing.CreatedAt
	event.UpdatedAt = r.s.now()
	cp := *event
	r.s.events[event.ID] = &cp

	if oldName != event.Name {
		for _, u := range r.s.users {
			for i, name := range u.Events {
				if name == oldName {
					u.Events[i] = event.Name
				}
			}
		}
	}
	return nil
}

func (r *memoryEventRepository) GetByID(_ context.Context, id string) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if e, ok := r.s.events[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (r *memoryEventRepository) GetByName(_ context.Context, name string) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, e := range r.s.events {
		if e.Name == name {
			cp := *e
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryEventRepository) List(_ context.Context) ([]domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]domain.Event, 0, len(r.s.events))
	for _, e := range r.s.events {
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].Name < result[j].Name
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *memoryEventRepository) nameTakenLocked(name, exceptID string) bool {
	for id, e := range r.s.events {
		if id != exceptID && e.Name == name {
			return true
		}
	}
	return false
}
