package models

// PaymentRecord represents a received payment, optionally tied to an invoice
type PaymentRecord struct {
	ID        string  `json:"id"`
	UserID    int64   `json:"user_id"`
	InvoiceID string  `json:"invoice_id,omitempty"`
	Amount    float64 `json:"amount"`
	Date      string  `json:"date"` // Format: YYYY-MM-DD
	Method    string  `json:"method"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
}

// HistoryEntry is one prior invoice of a client, used for risk scoring
type HistoryEntry struct {
	Amount     float64 `json:"amount"`
	IssuedDate string  `json:"issued_date"`
	PaidDate   string  `json:"paid_date,omitempty"`
	Status     string  `json:"status"`
}
