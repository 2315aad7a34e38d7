package repository

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups the stores a process needs.
type Repositories struct {
	Users  UserRepository
	Events EventRepository
	Memory bool
}

// NewRepositories returns Postgres repositories for a pool, or a fresh
// in-memory store when pool is nil.
func NewRepositories(pool *pgxpool.Pool) Repositories {
	if pool == nil {
		store := NewMemoryStore()
		return Repositories{Users: store.Users(), Events: store.Events(), Memory: true}
	}
	return Repositories{
		Users:  NewUserRepository(pool),
		Events: NewEventRepository(pool),
	}
}
