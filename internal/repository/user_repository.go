package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/event-gate/internal/domain"
)

// UserRepository defines persistence access for attendees.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	// ConditionallyAdmit flips the admission flag iff it is still unset, in
	// one statement. admitted is false on replay; the returned user then
	// carries the original entry time.
	ConditionallyAdmit(ctx context.Context, id string, at time.Time) (user *domain.User, admitted bool, err error)
	AppendEventRegistration(ctx context.Context, id, eventName string) error
	IncrementReferralCount(ctx context.Context, referralCode string) (bool, error)
	SetAdmin(ctx context.Context, email string, admin bool) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, events, referral_code, referral_count,
        credential_ref, is_validated, has_entered, entry_time, is_admin, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (id, name, email, password_hash, events, referral_code, credential_ref, is_validated, is_admin)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING created_at, updated_at`

	events := user.Events
	if events == nil {
		events = []string{}
	}
	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		events,
		user.ReferralCode,
		user.CredentialRef,
		user.IsValidated,
		user.IsAdmin,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	return translate(err)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func (r *userRepository) ConditionallyAdmit(ctx context.Context, id string, at time.Time) (*domain.User, bool, error) {
	query := `
        UPDATE users SET has_entered=TRUE, entry_time=$2, updated_at=NOW()
        WHERE id=$1 AND has_entered=FALSE
        RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, id, at))
	if err == nil {
		return user, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	// Zero rows: either the id is unknown or the flag was already set.
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *userRepository) AppendEventRegistration(ctx context.Context, id, eventName string) error {
	const query = `
        UPDATE users SET events=array_append(events, $2), updated_at=NOW()
        WHERE id=$1 AND NOT ($2 = ANY(events))`

	cmd, err := r.pool.Exec(ctx, query, id, eventName)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrAlreadyRegistered
}

func (r *userRepository) IncrementReferralCount(ctx context.Context, referralCode string) (bool, error) {
	const query = `
        UPDATE users SET referral_count=referral_count+1, updated_at=NOW()
        WHERE referral_code=$1`

	cmd, err := r.pool.Exec(ctx, query, referralCode)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *userRepository) SetAdmin(ctx context.Context, email string, admin bool) error {
	const query = `UPDATE users SET is_admin=$2, updated_at=NOW() WHERE email=$1`

	cmd, err := r.pool.Exec(ctx, query, email, admin)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Events,
		&user.ReferralCode,
		&user.ReferralCount,
		&user.CredentialRef,
		&user.IsValidated,
		&user.HasEntered,
		&user.EntryTime,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
