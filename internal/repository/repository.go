package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/finsight/invoice-analytics/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO billing.users (username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at::text, updated_at::text`
	err := r.db.QueryRow(query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at::text, updated_at::text
		FROM billing.users
		WHERE email = $1`
	err := r.db.QueryRow(query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(id int64) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at::text, updated_at::text
		FROM billing.users
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CreateInvoice creates a new invoice in the database
func (r *Repository) CreateInvoice(inv *models.InvoiceRecord) error {
	query := `
		INSERT INTO billing.invoices (id, user_id, number, client_id, amount, currency, issue_date, due_date, status, hmac, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at::text, updated_at::text`
	err := r.db.QueryRow(query, inv.ID, inv.UserID, inv.Number, inv.ClientID, inv.Amount,
		inv.Currency, inv.IssueDate, inv.DueDate, inv.Status, inv.HMAC).
		Scan(&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

// FindInvoiceByID retrieves an invoice owned by the given user
func (r *Repository) FindInvoiceByID(id string, userID int64) (*models.InvoiceRecord, error) {
	inv := &models.InvoiceRecord{}
	query := `
		SELECT id, user_id, number, client_id, amount, currency, issue_date::text, due_date::text, status, hmac, created_at::text, updated_at::text
		FROM billing.invoices
		WHERE id = $1 AND user_id = $2`
	err := r.db.QueryRow(query, id, userID).
		Scan(&inv.ID, &inv.UserID, &inv.Number, &inv.ClientID, &inv.Amount, &inv.Currency,
			&inv.IssueDate, &inv.DueDate, &inv.Status, &inv.HMAC, &inv.CreatedAt, &inv.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invoice %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find invoice: %w", err)
	}
	return inv, nil
}

// ListInvoices retrieves the user's invoices issued within [from, to].
// Empty bounds leave the corresponding side open.
func (r *Repository) ListInvoices(userID int64, from, to string) ([]models.InvoiceRecord, error) {
	query := `
		SELECT id, user_id, number, client_id, amount, currency, issue_date::text, due_date::text, status, hmac, created_at::text, updated_at::text
		FROM billing.invoices
		WHERE user_id = $1
		  AND ($2 = '' OR issue_date >= $2::date)
		  AND ($3 = '' OR issue_date <= $3::date)
		ORDER BY issue_date, number`
	rows, err := r.db.Query(query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []models.InvoiceRecord
	for rows.Next() {
		var inv models.InvoiceRecord
		if err := rows.Scan(&inv.ID, &inv.UserID, &inv.Number, &inv.ClientID, &inv.Amount, &inv.Currency,
			&inv.IssueDate, &inv.DueDate, &inv.Status, &inv.HMAC, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}
	return invoices, nil
}

// UpdateInvoiceStatus updates the status of an invoice
func (r *Repository) UpdateInvoiceStatus(id, status string) error {
	query := `
		UPDATE billing.invoices
		SET status = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	res, err := r.db.Exec(query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update invoice status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check invoice update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("invoice %s: %w", id, ErrNotFound)
	}
	return nil
}

// CreatePayment creates a new payment in the database
func (r *Repository) CreatePayment(p *models.PaymentRecord) error {
	query := `
		INSERT INTO billing.payments (id, user_id, invoice_id, amount, date, method, status, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, CURRENT_TIMESTAMP)
		RETURNING created_at::text`
	err := r.db.QueryRow(query, p.ID, p.UserID, p.InvoiceID, p.Amount, p.Date, p.Method, p.Status).
		Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// ListPayments retrieves the user's payments received within [from, to].
// Empty bounds leave the corresponding side open.
func (r *Repository) ListPayments(userID int64, from, to string) ([]models.PaymentRecord, error) {
	query := `
		SELECT id, user_id, COALESCE(invoice_id, ''), amount, date::text, method, status, created_at::text
		FROM billing.payments
		WHERE user_id = $1
		  AND ($2 = '' OR date >= $2::date)
		  AND ($3 = '' OR date <= $3::date)
		ORDER BY date, id`
	rows, err := r.db.Query(query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.PaymentRecord
	for rows.Next() {
		var p models.PaymentRecord
		if err := rows.Scan(&p.ID, &p.UserID, &p.InvoiceID, &p.Amount, &p.Date, &p.Method, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return payments, nil
}

// SumPaymentsForInvoice returns the total amount received against an invoice
func (r *Repository) SumPaymentsForInvoice(invoiceID string) (float64, error) {
	var total float64
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM billing.payments
		WHERE invoice_id = $1`
	if err := r.db.QueryRow(query, invoiceID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum payments: %w", err)
	}
	return total, nil
}

// ClientHistory retrieves a client's prior invoices with their settlement
// dates, excluding the invoice under assessment. The paid date is the
// earliest payment recorded against each invoice.
func (r *Repository) ClientHistory(userID int64, clientID, excludeInvoiceID string) ([]models.HistoryEntry, error) {
	query := `
		SELECT i.amount, i.issue_date::text, COALESCE(MIN(p.date)::text, ''), i.status
		FROM billing.invoices i
		LEFT JOIN billing.payments p ON p.invoice_id = i.id
		WHERE i.user_id = $1 AND i.client_id = $2 AND i.id <> $3
		GROUP BY i.id, i.amount, i.issue_date, i.status
		ORDER BY i.issue_date`
	rows, err := r.db.Query(query, userID, clientID, excludeInvoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client history: %w", err)
	}
	defer rows.Close()

	var history []models.HistoryEntry
	for rows.Next() {
		var h models.HistoryEntry
		if err := rows.Scan(&h.Amount, &h.IssuedDate, &h.PaidDate, &h.Status); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return history, nil
}

// ListPendingDueBefore retrieves pending or overdue invoices across all
// users whose due date is strictly before the cutoff, for the reminder job.
func (r *Repository) ListPendingDueBefore(cutoff string) ([]models.InvoiceRecord, error) {
	query := `
		SELECT id, user_id, number, client_id, amount, currency, issue_date::text, due_date::text, status, hmac, created_at::text, updated_at::text
		FROM billing.invoices
		WHERE status IN ($1, $2) AND due_date < $3::date
		ORDER BY due_date, number`
	rows, err := r.db.Query(query, models.InvoiceStatusPending, models.InvoiceStatusOverdue, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list due invoices: %w", err)
	}
	defer rows.Close()

	var invoices []models.InvoiceRecord
	for rows.Next() {
		var inv models.InvoiceRecord
		if err := rows.Scan(&inv.ID, &inv.UserID, &inv.Number, &inv.ClientID, &inv.Amount, &inv.Currency,
			&inv.IssueDate, &inv.DueDate, &inv.Status, &inv.HMAC, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}
	return invoices, nil
}
