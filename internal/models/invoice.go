package models

// Invoice statuses.
const (
	InvoiceStatusPending   = "pending"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusCancelled = "cancelled"
)

// InvoiceRecord represents an issued invoice
type InvoiceRecord struct {
	ID        string  `json:"id"`
	UserID    int64   `json:"user_id"`
	Number    string  `json:"number"`
	ClientID  string  `json:"client_id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	IssueDate string  `json:"issue_date"` // Format: YYYY-MM-DD
	DueDate   string  `json:"due_date"`   // Format: YYYY-MM-DD
	Status    string  `json:"status"`
	HMAC      string  `json:"hmac"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}
