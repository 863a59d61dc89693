package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"hackhub/internal/platform/postgres"
	"hackhub/internal/registration/models"
	id "hackhub/pkg/domain"
	"hackhub/pkg/platform/sentinel"
)

// PostgresStore persists registrations in PostgreSQL. The
// registrations_user_event_key constraint is the authoritative duplicate guard.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const registrationColumns = `id, user_id, event_id, status, team_name, registered_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, r *models.Registration) error {
	_, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO registrations (`+registrationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.UUID(r.ID), uuid.UUID(r.UserID), uuid.UUID(r.EventID), string(r.Status), r.TeamName, r.RegisteredAt, r.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("create registration (%s): %w", postgres.ConstraintName(err), sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, regID id.RegistrationID) (*models.Registration, error) {
	return s.findOne(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, uuid.UUID(regID))
}

func (s *PostgresStore) FindForUpdate(ctx context.Context, regID id.RegistrationID) (*models.Registration, error) {
	return s.findOne(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE id = $1 FOR UPDATE`, uuid.UUID(regID))
}

func (s *PostgresStore) FindByUserAndEvent(ctx context.Context, userID id.UserID, eventID id.EventID) (*models.Registration, error) {
	return s.findOne(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE user_id = $1 AND event_id = $2`,
		uuid.UUID(userID), uuid.UUID(eventID))
}

// FindByUserAndEventForUpdate locks the caller's registration so it cannot
// be cancelled while a submission is in flight.
func (s *PostgresStore) FindByUserAndEventForUpdate(ctx context.Context, userID id.UserID, eventID id.EventID) (*models.Registration, error) {
	return s.findOne(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE user_id = $1 AND event_id = $2 FOR UPDATE`,
		uuid.UUID(userID), uuid.UUID(eventID))
}

func (s *PostgresStore) findOne(ctx context.Context, query string, args ...any) (*models.Registration, error) {
	r, err := scanRegistration(postgres.Conn(ctx, s.db).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, r *models.Registration) error {
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx,
		`UPDATE registrations SET status = $2, updated_at = $3 WHERE id = $1`,
		uuid.UUID(r.ID), string(r.Status), r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountActive(ctx context.Context, eventID id.EventID) (int, error) {
	var n int
	err := postgres.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND status <> $2`,
		uuid.UUID(eventID), string(models.StatusCancelled)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Registration, error) {
	return s.list(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE event_id = $1 ORDER BY registered_at, id`,
		uuid.UUID(eventID))
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Registration, error) {
	return s.list(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE user_id = $1 ORDER BY registered_at, id`,
		uuid.UUID(userID))
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := postgres.Conn(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.Registration, error) {
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Registration, 0)
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row scanner) (*models.Registration, error) {
	var (
		r       models.Registration
		regID   uuid.UUID
		userID  uuid.UUID
		eventID uuid.UUID
		status  string
	)
	if err := row.Scan(&regID, &userID, &eventID, &status, &r.TeamName, &r.RegisteredAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.ID = id.RegistrationID(regID)
	r.UserID = id.UserID(userID)
	r.EventID = id.EventID(eventID)
	r.Status = models.Status(status)
	return &r, nil
}
