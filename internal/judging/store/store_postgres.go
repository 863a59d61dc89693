package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"hackhub/internal/judging/models"
	"hackhub/internal/platform/postgres"
	id "hackhub/pkg/domain"
	"hackhub/pkg/platform/sentinel"
)

// PostgresStore persists judge assignments in PostgreSQL. The
// judge_assignments_workload_check constraint backs the workload cap.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const assignmentColumns = `id, user_id, event_id, expertise, evaluations_performed, assigned_at`

func (s *PostgresStore) Create(ctx context.Context, a *models.Assignment) error {
	_, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO judge_assignments (`+assignmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(a.ID), uuid.UUID(a.UserID), uuid.UUID(a.EventID), a.Expertise, a.EvaluationsPerformed, a.AssignedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("assign judge %s: %w", a.UserID, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("assign judge: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByUserAndEvent(ctx context.Context, userID id.UserID, eventID id.EventID) (*models.Assignment, error) {
	return s.findOne(ctx, `SELECT `+assignmentColumns+` FROM judge_assignments WHERE user_id = $1 AND event_id = $2`,
		userID, eventID)
}

// FindForUpdate locks the assignment so concurrent evaluations by the same
// judge see each other's counter increments.
func (s *PostgresStore) FindForUpdate(ctx context.Context, userID id.UserID, eventID id.EventID) (*models.Assignment, error) {
	return s.findOne(ctx, `SELECT `+assignmentColumns+` FROM judge_assignments WHERE user_id = $1 AND event_id = $2 FOR UPDATE`,
		userID, eventID)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, userID id.UserID, eventID id.EventID) (*models.Assignment, error) {
	a, err := scanAssignment(postgres.Conn(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(userID), uuid.UUID(eventID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) IsAssigned(ctx context.Context, userID id.UserID, eventID id.EventID) (bool, error) {
	var exists bool
	err := postgres.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM judge_assignments WHERE user_id = $1 AND event_id = $2)`,
		uuid.UUID(userID), uuid.UUID(eventID)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check assignment: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) UpdateWorkload(ctx context.Context, a *models.Assignment) error {
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx,
		`UPDATE judge_assignments SET evaluations_performed = $2 WHERE id = $1`,
		uuid.UUID(a.ID), a.EvaluationsPerformed)
	if err != nil {
		return fmt.Errorf("update workload: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Assignment, error) {
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx,
		`SELECT `+assignmentColumns+` FROM judge_assignments WHERE event_id = $1 ORDER BY assigned_at, id`,
		uuid.UUID(eventID))
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAssignment(row scanner) (*models.Assignment, error) {
	var (
		a            models.Assignment
		assignmentID uuid.UUID
		userID       uuid.UUID
		eventID      uuid.UUID
	)
	if err := row.Scan(&assignmentID, &userID, &eventID, &a.Expertise, &a.EvaluationsPerformed, &a.AssignedAt); err != nil {
		return nil, err
	}
	a.ID = id.AssignmentID(assignmentID)
	a.UserID = id.UserID(userID)
	a.EventID = id.EventID(eventID)
	return &a, nil
}
