package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ezzabuzaid/iworked/internal/db"
	"github.com/ezzabuzaid/iworked/internal/domain"
)

// InvoiceRepo is a SQLite implementation of InvoiceRepository
type InvoiceRepo struct {
	db *db.DB
}

// NewInvoiceRepo creates a new InvoiceRepo
func NewInvoiceRepo(database *db.DB) *InvoiceRepo {
	return &InvoiceRepo{db: database}
}

// ErrNumberConflict is returned when the allocated invoice number lost a race
// to another insert. The caller re-reads the counter and retries once.
var ErrNumberConflict = errors.New("invoice number already taken")

// CreateWithLines atomically inserts the invoice with its lines and locks the
// billed entries to it. Each lock is a guarded UPDATE; if any entry turned
// out to be locked already, the whole transaction rolls back.
func (r *InvoiceRepo) CreateWithLines(ctx context.Context, invoice *domain.Invoice, entryIDs []int64) error {
	if err := invoice.Validate(); err != nil {
		return err
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO invoices (user_id, client_id, invoice_number, status, date_from, date_to, pdf_path, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			invoice.UserID,
			invoice.ClientID,
			invoice.InvoiceNumber,
			invoice.Status,
			invoice.DateFrom.UTC().Format(timeLayout),
			invoice.DateTo.UTC().Format(timeLayout),
			invoice.PDFPath,
			invoice.CreatedAt.UTC().Format(timeLayout),
			invoice.UpdatedAt.UTC().Format(timeLayout),
		)
		if err != nil {
			if isUniqueViolation(err, "invoices") {
				return ErrNumberConflict
			}
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get invoice ID: %w", err)
		}
		invoice.ID = id

		for _, line := range invoice.Lines {
			if err := insertLine(ctx, tx, id, line); err != nil {
				return err
			}
		}

		for _, entryID := range entryIDs {
			result, err := tx.ExecContext(ctx, `
				UPDATE time_entries
				SET locked_by_invoice_id = ?, updated_at = ?
				WHERE id = ? AND user_id = ? AND locked_by_invoice_id IS NULL
			`, id, formatTime(), entryID, invoice.UserID)
			if err != nil {
				return fmt.Errorf("failed to lock entry %d: %w", entryID, err)
			}

			rows, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			if rows == 0 {
				return domain.NewErrorf(domain.CodeTimeEntryLocked, "time entry is locked",
					"entry #%d is already billed by another invoice", entryID)
			}
		}

		return nil
	})
}

// GetByID retrieves an invoice with its lines, scoped to the owning user
func (r *InvoiceRepo) GetByID(ctx context.Context, userID, id int64) (*domain.Invoice, error) {
	query := `
		SELECT id, user_id, client_id, invoice_number, status, date_from, date_to,
		       sent_at, paid_at, paid_amount, pdf_path, created_at, updated_at
		FROM invoices
		WHERE id = ? AND user_id = ?
	`

	invoice, err := scanInvoiceRow(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound("invoice", id)
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if invoice.Lines, err = r.GetLines(ctx, invoice.ID); err != nil {
		return nil, err
	}

	return invoice, nil
}

// List retrieves invoices with optional client and status filters
func (r *InvoiceRepo) List(ctx context.Context, userID int64, clientID *int64, status *domain.InvoiceStatus) ([]*domain.Invoice, error) {
	query := `
		SELECT id, user_id, client_id, invoice_number, status, date_from, date_to,
		       sent_at, paid_at, paid_amount, pdf_path, created_at, updated_at
		FROM invoices
		WHERE user_id = ?
	`
	args := []interface{}{userID}

	if clientID != nil {
		query += " AND client_id = ?"
		args = append(args, *clientID)
	}

	if status != nil {
		query += " AND status = ?"
		args = append(args, *status)
	}

	query += " ORDER BY invoice_number DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]*domain.Invoice, 0)
	for rows.Next() {
		invoice, err := scanInvoiceRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}

	return invoices, nil
}

// UpdatePeriod changes the billing period of a draft invoice
func (r *InvoiceRepo) UpdatePeriod(ctx context.Context, userID, id int64, dateFrom, dateTo time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE invoices
		SET date_from = ?, date_to = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND status = 'draft'
	`,
		dateFrom.UTC().Format(timeLayout),
		dateTo.UTC().Format(timeLayout),
		formatTime(),
		id,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice period: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound("draft invoice", id)
	}

	return nil
}

// UpdateStatus persists a status transition with its timestamps. The WHERE
// clause pins the status the caller transitioned from, so a writer acting on
// a stale read cannot rewind a transition that already happened.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, invoice *domain.Invoice, from domain.InvoiceStatus) error {
	var sentAt, paidAt interface{}
	if invoice.SentAt != nil {
		sentAt = invoice.SentAt.UTC().Format(timeLayout)
	}
	if invoice.PaidAt != nil {
		paidAt = invoice.PaidAt.UTC().Format(timeLayout)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE invoices
		SET status = ?, sent_at = ?, paid_at = ?, paid_amount = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND status = ?
	`,
		invoice.Status,
		sentAt,
		paidAt,
		invoice.PaidAmount,
		formatTime(),
		invoice.ID,
		invoice.UserID,
		from,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NewErrorf(domain.CodeInvalidStatusTransition, "invoice status changed concurrently",
			"invoice %s is no longer %s", invoice.InvoiceNumber, from)
	}

	return nil
}

// GetLines retrieves the lines of an invoice
func (r *InvoiceRepo) GetLines(ctx context.Context, invoiceID int64) ([]*domain.InvoiceLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, invoice_id, project_id, description, hours, rate, amount
		FROM invoice_lines
		WHERE invoice_id = ?
		ORDER BY id
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice lines: %w", err)
	}
	defer rows.Close()

	lines := make([]*domain.InvoiceLine, 0)
	for rows.Next() {
		line := &domain.InvoiceLine{}
		err := rows.Scan(
			&line.ID,
			&line.InvoiceID,
			&line.ProjectID,
			&line.Description,
			&line.Hours,
			&line.Rate,
			&line.Amount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice lines: %w", err)
	}

	return lines, nil
}

// AddLine appends a line to an invoice
func (r *InvoiceRepo) AddLine(ctx context.Context, invoiceID int64, line *domain.InvoiceLine) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		return insertLine(ctx, tx, invoiceID, line)
	})
}

// UpdateLine rewrites an existing line
func (r *InvoiceRepo) UpdateLine(ctx context.Context, invoiceID int64, line *domain.InvoiceLine) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE invoice_lines
		SET description = ?, hours = ?, rate = ?, amount = ?
		WHERE id = ? AND invoice_id = ?
	`,
		line.Description,
		line.Hours,
		line.Rate,
		line.Amount,
		line.ID,
		invoiceID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice line: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound("invoice line", line.ID)
	}

	return nil
}

// DeleteLine removes a line from an invoice
func (r *InvoiceRepo) DeleteLine(ctx context.Context, invoiceID, lineID int64) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM invoice_lines WHERE id = ? AND invoice_id = ?",
		lineID, invoiceID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete invoice line: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound("invoice line", lineID)
	}

	return nil
}

// DeleteDraft atomically unlocks every entry locked by the invoice and
// deletes the invoice with its lines. The delete is guarded on draft status
// so a concurrently-sent invoice survives.
func (r *InvoiceRepo) DeleteDraft(ctx context.Context, userID, id int64) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE time_entries
			SET locked_by_invoice_id = NULL, updated_at = ?
			WHERE locked_by_invoice_id = ? AND user_id = ?
		`, formatTime(), id, userID); err != nil {
			return fmt.Errorf("failed to unlock entries: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM invoice_lines WHERE invoice_id = ?", id,
		); err != nil {
			return fmt.Errorf("failed to delete invoice lines: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			"DELETE FROM invoices WHERE id = ? AND user_id = ? AND status = 'draft'",
			id, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return domain.ErrNotFound("draft invoice", id)
		}

		return nil
	})
}

// LastNumberForYear returns the greatest invoice number starting with
// INV-{year}- for the user, or "" if none exists. Numbers are zero-padded to
// a fixed width, so MAX over the text column orders correctly.
func (r *InvoiceRepo) LastNumberForYear(ctx context.Context, userID int64, year int) (string, error) {
	var number sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT MAX(invoice_number)
		FROM invoices
		WHERE user_id = ? AND invoice_number LIKE ?
	`, userID, fmt.Sprintf("INV-%04d-%%", year)).Scan(&number)
	if err != nil {
		return "", fmt.Errorf("failed to get last invoice number: %w", err)
	}

	if !number.Valid {
		return "", nil
	}
	return number.String, nil
}

// insertLine inserts one invoice line inside a transaction
func insertLine(ctx context.Context, tx *sql.Tx, invoiceID int64, line *domain.InvoiceLine) error {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO invoice_lines (invoice_id, project_id, description, hours, rate, amount)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		invoiceID,
		line.ProjectID,
		line.Description,
		line.Hours,
		line.Rate,
		line.Amount,
	)
	if err != nil {
		return fmt.Errorf("failed to create invoice line: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get invoice line ID: %w", err)
	}

	line.ID = id
	line.InvoiceID = invoiceID
	return nil
}

// scanInvoiceRow parses one invoice row
func scanInvoiceRow(row rowScanner) (*domain.Invoice, error) {
	invoice := &domain.Invoice{}
	var dateFrom, dateTo, createdAt, updatedAt string
	var sentAt, paidAt sql.NullString
	var paidAmount sql.NullFloat64
	var pdfPath sql.NullString

	err := row.Scan(
		&invoice.ID,
		&invoice.UserID,
		&invoice.ClientID,
		&invoice.InvoiceNumber,
		&invoice.Status,
		&dateFrom,
		&dateTo,
		&sentAt,
		&paidAt,
		&paidAmount,
		&pdfPath,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if invoice.DateFrom, err = parseTime(dateFrom); err != nil {
		return nil, fmt.Errorf("failed to parse date_from: %w", err)
	}
	if invoice.DateTo, err = parseTime(dateTo); err != nil {
		return nil, fmt.Errorf("failed to parse date_to: %w", err)
	}
	if invoice.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if invoice.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	if sentAt.Valid {
		t, err := parseTime(sentAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse sent_at: %w", err)
		}
		invoice.SentAt = &t
	}
	if paidAt.Valid {
		t, err := parseTime(paidAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse paid_at: %w", err)
		}
		invoice.PaidAt = &t
	}
	if paidAmount.Valid {
		invoice.PaidAmount = &paidAmount.Float64
	}
	if pdfPath.Valid {
		invoice.PDFPath = pdfPath.String
	}

	invoice.Lines = make([]*domain.InvoiceLine, 0)
	return invoice, nil
}
