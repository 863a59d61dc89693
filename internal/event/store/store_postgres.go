package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"hackhub/internal/event/models"
	"hackhub/internal/platform/postgres"
	id "hackhub/pkg/domain"
	"hackhub/pkg/platform/sentinel"
)

// PostgresStore persists events in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const eventColumns = `id, name, description, location, start_date, end_date, max_participants,
	prize_amount, status, organizer_id, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, e *models.Event) error {
	_, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, uuid.UUID(e.ID), e.Name, e.Description, e.Location, e.StartDate, e.EndDate, e.MaxParticipants,
		e.PrizeAmount, string(e.Status), uuid.UUID(e.OrganizerID), e.CreatedAt, e.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("create event %s: %w", e.ID, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	return s.findOne(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, eventID)
}

// FindForUpdate locks the event row until the surrounding transaction ends.
// Every admission for the event queues behind this lock.
func (s *PostgresStore) FindForUpdate(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	return s.findOne(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, eventID)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, eventID id.EventID) (*models.Event, error) {
	e, err := scanEvent(postgres.Conn(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(eventID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) Update(ctx context.Context, e *models.Event) error {
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE events SET name = $2, description = $3, location = $4, start_date = $5, end_date = $6,
			max_participants = $7, prize_amount = $8, status = $9, updated_at = $10
		WHERE id = $1
	`, uuid.UUID(e.ID), e.Name, e.Description, e.Location, e.StartDate, e.EndDate,
		e.MaxParticipants, e.PrizeAmount, string(e.Status), e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.Event, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if !filter.OrganizerID.IsNil() {
		args = append(args, uuid.UUID(filter.OrganizerID))
		where = append(where, fmt.Sprintf("organizer_id = $%d", len(args)))
	}
	query := `SELECT ` + eventColumns + ` FROM events`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY start_date, created_at, id`

	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []*models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, `SELECT status, COUNT(*) FROM events GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Status]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan event count: %w", err)
		}
		counts[models.Status(status)] = n
	}
	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*models.Event, error) {
	var (
		e           models.Event
		eventID     uuid.UUID
		organizerID uuid.UUID
		status      string
	)
	if err := row.Scan(&eventID, &e.Name, &e.Description, &e.Location, &e.StartDate, &e.EndDate,
		&e.MaxParticipants, &e.PrizeAmount, &status, &organizerID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.ID = id.EventID(eventID)
	e.OrganizerID = id.UserID(organizerID)
	e.Status = models.Status(status)
	return &e, nil
}
