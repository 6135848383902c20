package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ezzabuzaid/iworked/internal/db"
	"github.com/ezzabuzaid/iworked/internal/domain"
)

// ProjectRepo is a SQLite implementation of ProjectRepository
type ProjectRepo struct {
	db *db.DB
}

// NewProjectRepo creates a new ProjectRepo
func NewProjectRepo(database *db.DB) *ProjectRepo {
	return &ProjectRepo{db: database}
}

// Create inserts a new project into the database
func (r *ProjectRepo) Create(ctx context.Context, project *domain.Project) error {
	if err := project.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO projects (user_id, client_id, name, description, hourly_rate, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		project.UserID,
		project.ClientID,
		project.Name,
		project.Description,
		project.HourlyRate,
		project.CreatedAt.Format(timeLayout),
		project.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		if isUniqueViolation(err, "projects") {
			return domain.NewErrorf(domain.CodeDuplicateProjectName, "project name already exists",
				"a project named %q already exists for this client", project.Name)
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get project ID: %w", err)
	}

	project.ID = id
	return nil
}

// GetByID retrieves a project by ID, scoped to the owning user
func (r *ProjectRepo) GetByID(ctx context.Context, userID, id int64) (*domain.Project, error) {
	query := `
		SELECT id, user_id, client_id, name, description, hourly_rate, created_at, updated_at
		FROM projects
		WHERE id = ? AND user_id = ?
	`

	project := &domain.Project{}
	var createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&project.ID,
		&project.UserID,
		&project.ClientID,
		&project.Name,
		&project.Description,
		&project.HourlyRate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound("project", id)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if project.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if project.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return project, nil
}

// List retrieves the user's projects, optionally filtered by client
func (r *ProjectRepo) List(ctx context.Context, userID int64, clientID *int64) ([]*domain.Project, error) {
	query := `
		SELECT id, user_id, client_id, name, description, hourly_rate, created_at, updated_at
		FROM projects
		WHERE user_id = ?
	`
	args := []interface{}{userID}

	if clientID != nil {
		query += " AND client_id = ?"
		args = append(args, *clientID)
	}

	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*domain.Project, 0)
	for rows.Next() {
		project := &domain.Project{}
		var createdAt, updatedAt string

		err := rows.Scan(
			&project.ID,
			&project.UserID,
			&project.ClientID,
			&project.Name,
			&project.Description,
			&project.HourlyRate,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}

		if project.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if project.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}

		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

// Update updates an existing project. Changing the hourly rate never touches
// existing invoice lines; they hold their own rate snapshot.
func (r *ProjectRepo) Update(ctx context.Context, project *domain.Project) error {
	if err := project.Validate(); err != nil {
		return err
	}

	project.UpdatedAt = time.Now()

	query := `
		UPDATE projects
		SET name = ?, description = ?, hourly_rate = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		project.Name,
		project.Description,
		project.HourlyRate,
		project.UpdatedAt.Format(timeLayout),
		project.ID,
		project.UserID,
	)
	if err != nil {
		if isUniqueViolation(err, "projects") {
			return domain.NewErrorf(domain.CodeDuplicateProjectName, "project name already exists",
				"a project named %q already exists for this client", project.Name)
		}
		return fmt.Errorf("failed to update project: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound("project", project.ID)
	}

	return nil
}

// CountByName counts one client's projects with the given name,
// case-insensitively, excluding excludeID (pass 0 to exclude nothing)
func (r *ProjectRepo) CountByName(ctx context.Context, userID, clientID int64, name string, excludeID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM projects
		WHERE user_id = ? AND client_id = ? AND name = ? COLLATE NOCASE AND id != ?
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, userID, clientID, strings.TrimSpace(name), excludeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects by name: %w", err)
	}

	return count, nil
}
