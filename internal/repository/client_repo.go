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

// ClientRepo is a SQLite implementation of ClientRepository
type ClientRepo struct {
	db *db.DB
}

// NewClientRepo creates a new ClientRepo
func NewClientRepo(database *db.DB) *ClientRepo {
	return &ClientRepo{db: database}
}

// Create inserts a new client into the database
func (r *ClientRepo) Create(ctx context.Context, client *domain.Client) error {
	if err := client.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO clients (user_id, name, email, notes, is_archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		client.UserID,
		client.Name,
		client.Email,
		client.Notes,
		client.IsArchived,
		client.CreatedAt.Format(timeLayout),
		client.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		if isUniqueViolation(err, "clients") {
			return domain.NewErrorf(domain.CodeDuplicateClientName, "client name already exists",
				"a client named %q already exists", client.Name)
		}
		return fmt.Errorf("failed to create client: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get client ID: %w", err)
	}

	client.ID = id
	return nil
}

// GetByID retrieves a client by ID, scoped to the owning user
func (r *ClientRepo) GetByID(ctx context.Context, userID, id int64) (*domain.Client, error) {
	query := `
		SELECT id, user_id, name, email, notes, is_archived, created_at, updated_at
		FROM clients
		WHERE id = ? AND user_id = ?
	`

	client := &domain.Client{}
	var createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&client.ID,
		&client.UserID,
		&client.Name,
		&client.Email,
		&client.Notes,
		&client.IsArchived,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound("client", id)
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	if client.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if client.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return client, nil
}

// GetByName retrieves a client by name, case-insensitively
func (r *ClientRepo) GetByName(ctx context.Context, userID int64, name string) (*domain.Client, error) {
	query := `
		SELECT id, user_id, name, email, notes, is_archived, created_at, updated_at
		FROM clients
		WHERE user_id = ? AND name = ? COLLATE NOCASE
	`

	client := &domain.Client{}
	var createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx, query, userID, strings.TrimSpace(name)).Scan(
		&client.ID,
		&client.UserID,
		&client.Name,
		&client.Email,
		&client.Notes,
		&client.IsArchived,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewErrorf(domain.CodeEntityNotFound, "client not found",
				"no client named %q", name)
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	if client.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if client.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return client, nil
}

// List retrieves the user's clients, optionally including archived ones
func (r *ClientRepo) List(ctx context.Context, userID int64, includeArchived bool) ([]*domain.Client, error) {
	query := `
		SELECT id, user_id, name, email, notes, is_archived, created_at, updated_at
		FROM clients
		WHERE user_id = ? AND (is_archived = 0 OR ? = 1)
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query, userID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	clients := make([]*domain.Client, 0)
	for rows.Next() {
		client := &domain.Client{}
		var createdAt, updatedAt string

		err := rows.Scan(
			&client.ID,
			&client.UserID,
			&client.Name,
			&client.Email,
			&client.Notes,
			&client.IsArchived,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}

		if client.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if client.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}

		clients = append(clients, client)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	return clients, nil
}

// Update updates an existing client
func (r *ClientRepo) Update(ctx context.Context, client *domain.Client) error {
	if err := client.Validate(); err != nil {
		return err
	}

	client.UpdatedAt = time.Now()

	query := `
		UPDATE clients
		SET name = ?, email = ?, notes = ?, is_archived = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		client.Name,
		client.Email,
		client.Notes,
		client.IsArchived,
		client.UpdatedAt.Format(timeLayout),
		client.ID,
		client.UserID,
	)
	if err != nil {
		if isUniqueViolation(err, "clients") {
			return domain.NewErrorf(domain.CodeDuplicateClientName, "client name already exists",
				"a client named %q already exists", client.Name)
		}
		return fmt.Errorf("failed to update client: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound("client", client.ID)
	}

	return nil
}

// CountByName counts clients with the given name, case-insensitively,
// excluding excludeID (pass 0 to exclude nothing)
func (r *ClientRepo) CountByName(ctx context.Context, userID int64, name string, excludeID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM clients
		WHERE user_id = ? AND name = ? COLLATE NOCASE AND id != ?
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, userID, strings.TrimSpace(name), excludeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count clients by name: %w", err)
	}

	return count, nil
}

// Archive marks a client as archived
func (r *ClientRepo) Archive(ctx context.Context, userID, id int64) error {
	return r.setArchived(ctx, userID, id, true)
}

// Unarchive marks a client as active
func (r *ClientRepo) Unarchive(ctx context.Context, userID, id int64) error {
	return r.setArchived(ctx, userID, id, false)
}

func (r *ClientRepo) setArchived(ctx context.Context, userID, id int64, archived bool) error {
	query := `
		UPDATE clients
		SET is_archived = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, archived, formatTime(), id, userID)
	if err != nil {
		return fmt.Errorf("failed to update client archive state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound("client", id)
	}

	return nil
}
