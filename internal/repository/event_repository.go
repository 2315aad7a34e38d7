package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/event-gate/internal/domain"
)

// EventRepository encapsulates event catalogue persistence.
// Names are unique: users reference events by name.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	// Update replaces the editable fields. A rename is carried over to every
	// user's registered event set in the same transaction.
	Update(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	GetByName(ctx context.Context, name string) (*domain.Event, error)
	List(ctx context.Context) ([]domain.Event, error)
}

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository instantiates repository.
func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool}
}

const eventColumns = `id, name, coordinator, mobile, date, timings, whatsapp_link, link, rules,
        image, description, prize, category, capacity, created_at, updated_at`

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	const query = `
        INSERT INTO events (id, name, coordinator, mobile, date, timings, whatsapp_link, link, rules,
            image, description, prize, category, capacity)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		event.ID,
		event.Name,
		event.Coordinator,
		event.Mobile,
		event.Date,
		event.Timings,
		event.WhatsappLink,
		event.Link,
		event.Rules,
		event.Image,
		event.Description,
		event.Prize,
		event.Category,
		event.Capacity,
	).Scan(&event.CreatedAt, &event.UpdatedAt)
	return translate(err)
}

func (r *eventRepository) Update(ctx context.Context, event *domain.Event) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var oldName string
	if err = tx.QueryRow(ctx, `SELECT name FROM events WHERE id=$1 FOR UPDATE`, event.ID).Scan(&oldName); err != nil {
		return translate(err)
	}

	const query = `
        UPDATE events SET name=$1, coordinator=$2, mobile=$3, date=$4, timings=$5, whatsapp_link=$6,
            link=$7, rules=$8, image=$9, description=$10, prize=$11, category=$12, capacity=$13, updated_at=NOW()
        WHERE id=$14
        RETURNING created_at, updated_at`
	if err = tx.QueryRow(ctx, query,
		event.Name,
		event.Coordinator,
		event.Mobile,
		event.Date,
		event.Timings,
		event.WhatsappLink,
		event.Link,
		event.Rules,
		event.Image,
		event.Description,
		event.Prize,
		event.Category,
		event.Capacity,
		event.ID,
	).Scan(&event.CreatedAt, &event.UpdatedAt); err != nil {
		return translate(err)
	}

	if oldName != event.Name {
		if _, err = tx.Exec(ctx, `
            UPDATE users SET events=array_replace(events, $1, $2), updated_at=NOW()
            WHERE $1 = ANY(events)`, oldName, event.Name); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id=$1`
	return scanEvent(r.pool.QueryRow(ctx, query, id))
}

func (r *eventRepository) GetByName(ctx context.Context, name string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE name=$1`
	return scanEvent(r.pool.QueryRow(ctx, query, name))
}

func (r *eventRepository) List(ctx context.Context) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *event)
	}
	return result, rows.Err()
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var event domain.Event
	if err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Coordinator,
		&event.Mobile,
		&event.Date,
		&event.Timings,
		&event.WhatsappLink,
		&event.Link,
		&event.Rules,
		&event.Image,
		&event.Description,
		&event.Prize,
		&event.Category,
		&event.Capacity,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &event, nil
}
