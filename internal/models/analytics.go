package models

// Flag types raised by the risk rules.
const (
	FlagOverdue         = "overdue"
	FlagAmountVariation = "amount_variation"
)

// Flag severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Flag marks one risk rule that fired for an invoice
type Flag struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// PaymentPrediction estimates when an invoice will be settled
type PaymentPrediction struct {
	PredictedPayDate string `json:"predicted_pay_date"` // Format: YYYY-MM-DD
	Confidence       int    `json:"confidence"`
}

// RiskAssessment is the result of scoring a single invoice
type RiskAssessment struct {
	RiskScore         int                `json:"risk_score"`
	Flags             []Flag             `json:"flags"`
	Suggestions       []string           `json:"suggestions"`
	PaymentPrediction *PaymentPrediction `json:"payment_prediction,omitempty"`
}

// MonthTotal represents one month's accumulated amount
type MonthTotal struct {
	Month  string  `json:"month"` // Format: YYYY-MM
	Label  string  `json:"label"` // e.g. "Jan 2024"
	Amount float64 `json:"amount"`
}

// FinancialSummary represents aggregated invoice and payment totals
type FinancialSummary struct {
	TotalInvoiced  float64            `json:"total_invoiced"`
	TotalPaid      float64            `json:"total_paid"`
	Outstanding    float64            `json:"outstanding"` // TotalInvoiced - TotalPaid
	ByClient       map[string]float64 `json:"by_client"`
	ByMonth        []MonthTotal       `json:"by_month"`
	PaymentMethods map[string]float64 `json:"payment_methods"`
}

// ForecastPoint is one month in a payment trend series
type ForecastPoint struct {
	Month        string  `json:"month"` // Format: YYYY-MM
	Amount       float64 `json:"amount"`
	IsPrediction bool    `json:"is_prediction"`
}
