package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"hackhub/internal/platform/postgres"
	"hackhub/internal/project/models"
	id "hackhub/pkg/domain"
	"hackhub/pkg/platform/sentinel"
)

// PostgresStore persists projects in PostgreSQL. The
// projects_submitter_event_key constraint is the authoritative duplicate guard.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const projectColumns = `id, event_id, submitter_id, title, description, tech_stack, github_url, demo_url,
	score, status, feedback, evaluator_id, submitted_at, evaluated_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, p *models.Project) error {
	_, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, uuid.UUID(p.ID), uuid.UUID(p.EventID), uuid.UUID(p.SubmitterID), p.Title, p.Description, p.TechStack,
		p.GithubURL, p.DemoURL, p.Score, string(p.Status), p.Feedback, nullableUser(p.EvaluatorID),
		p.SubmittedAt, nullableTime(p), p.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("create project (%s): %w", postgres.ConstraintName(err), sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, projectID id.ProjectID) (*models.Project, error) {
	return s.findOne(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, uuid.UUID(projectID))
}

// FindForUpdate locks the project row so concurrent evaluations apply one
// after the other.
func (s *PostgresStore) FindForUpdate(ctx context.Context, projectID id.ProjectID) (*models.Project, error) {
	return s.findOne(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1 FOR UPDATE`, uuid.UUID(projectID))
}

func (s *PostgresStore) FindBySubmitterAndEvent(ctx context.Context, submitter id.UserID, eventID id.EventID) (*models.Project, error) {
	return s.findOne(ctx, `SELECT `+projectColumns+` FROM projects WHERE submitter_id = $1 AND event_id = $2`,
		uuid.UUID(submitter), uuid.UUID(eventID))
}

func (s *PostgresStore) findOne(ctx context.Context, query string, args ...any) (*models.Project, error) {
	p, err := scanProject(postgres.Conn(ctx, s.db).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Project) error {
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE projects SET title = $2, description = $3, tech_stack = $4, github_url = $5, demo_url = $6,
			score = $7, status = $8, feedback = $9, evaluator_id = $10, evaluated_at = $11, updated_at = $12
		WHERE id = $1
	`, uuid.UUID(p.ID), p.Title, p.Description, p.TechStack, p.GithubURL, p.DemoURL,
		p.Score, string(p.Status), p.Feedback, nullableUser(p.EvaluatorID), nullableTime(p), p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountByEvent(ctx context.Context, eventID id.EventID) (int, error) {
	var n int
	if err := postgres.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM projects WHERE event_id = $1`, uuid.UUID(eventID)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := postgres.Conn(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Project, error) {
	return s.list(ctx, `SELECT `+projectColumns+` FROM projects WHERE event_id = $1 ORDER BY submitted_at, id`,
		uuid.UUID(eventID))
}

func (s *PostgresStore) ListBySubmitter(ctx context.Context, submitter id.UserID) ([]*models.Project, error) {
	return s.list(ctx, `SELECT `+projectColumns+` FROM projects WHERE submitter_id = $1 ORDER BY submitted_at, id`,
		uuid.UUID(submitter))
}

// Ranked returns projects in leaderboard order. A nil eventID ranks across
// all events; limit <= 0 means no limit.
func (s *PostgresStore) Ranked(ctx context.Context, eventID id.EventID, limit int) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects
		WHERE ($1::uuid IS NULL OR event_id = $1)
		ORDER BY score DESC, submitted_at ASC, id ASC`
	var eventArg any
	if !eventID.IsNil() {
		eventArg = uuid.UUID(eventID)
	}
	args := []any{eventArg}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	return s.list(ctx, query, args...)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.Project, error) {
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*models.Project, error) {
	var (
		p           models.Project
		projectID   uuid.UUID
		eventID     uuid.UUID
		submitterID uuid.UUID
		evaluatorID uuid.NullUUID
		evaluatedAt sql.NullTime
		status      string
	)
	if err := row.Scan(&projectID, &eventID, &submitterID, &p.Title, &p.Description, &p.TechStack,
		&p.GithubURL, &p.DemoURL, &p.Score, &status, &p.Feedback, &evaluatorID,
		&p.SubmittedAt, &evaluatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.ID = id.ProjectID(projectID)
	p.EventID = id.EventID(eventID)
	p.SubmitterID = id.UserID(submitterID)
	p.Status = models.Status(status)
	if evaluatorID.Valid {
		p.EvaluatorID = id.UserID(evaluatorID.UUID)
	}
	if evaluatedAt.Valid {
		t := evaluatedAt.Time
		p.EvaluatedAt = &t
	}
	return &p, nil
}

func nullableUser(userID id.UserID) uuid.NullUUID {
	return uuid.NullUUID{UUID: uuid.UUID(userID), Valid: !userID.IsNil()}
}

func nullableTime(p *models.Project) sql.NullTime {
	if p.EvaluatedAt == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *p.EvaluatedAt, Valid: true}
}
