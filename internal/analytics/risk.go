package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/finsight/invoice-analytics/internal/models"
)

// Risk rule parameters.
const (
	overdueScorePerDay = 2
	overdueScoreCap    = 50

	variationMultiplier = 1.5
	variationScore      = 20

	// ReminderThreshold is the risk score above which a payment reminder
	// is suggested.
	ReminderThreshold   = 30
	escalationThreshold = 60

	maxConfidence = 95
)

// Suggestions appended by the scoring rules.
const (
	SuggestionReminder = "Consider sending a payment reminder"
	SuggestionEscalate = "Recommend following up with a phone call"
)

// AssessRisk scores a single invoice against the client's payment history.
// Rules run in a fixed order and contribute to the score independently,
// so flags appear in rule-evaluation order. The reference time is
// injected, never sampled, which keeps assessments deterministic.
func AssessRisk(invoice models.InvoiceRecord, history []models.HistoryEntry, now time.Time) models.RiskAssessment {
	assessment := models.RiskAssessment{
		Flags:       []models.Flag{},
		Suggestions: []string{},
	}

	// Overdue rule. Day differences round down, so an invoice due within
	// the last 24 hours is not yet overdue.
	if due, err := time.Parse(DateLayout, invoice.DueDate); err == nil {
		daysOverdue := int(math.Floor(now.Sub(due).Hours() / 24))
		if daysOverdue > 0 {
			contribution := daysOverdue * overdueScorePerDay
			if contribution > overdueScoreCap {
				contribution = overdueScoreCap
			}
			assessment.RiskScore += contribution
			assessment.Flags = append(assessment.Flags, models.Flag{
				Type:     models.FlagOverdue,
				Message:  fmt.Sprintf("Invoice is %d days overdue", daysOverdue),
				Severity: models.SeverityHigh,
			})
		}
	}

	// Amount variation against the historical mean, only with history to
	// compare against.
	if len(history) > 0 {
		var sum float64
		for _, h := range history {
			sum += h.Amount
		}
		avg := sum / float64(len(history))
		if invoice.Amount > avg*variationMultiplier {
			assessment.RiskScore += variationScore
			assessment.Flags = append(assessment.Flags, models.Flag{
				Type:     models.FlagAmountVariation,
				Message:  fmt.Sprintf("Invoice amount %.2f is more than 50%% above the client average of %.2f", invoice.Amount, avg),
				Severity: models.SeverityMedium,
			})
		}
	}

	assessment.PaymentPrediction = predictPaymentDate(invoice, history)

	// Suggestions are cumulative: a score above the escalation threshold
	// carries both.
	if assessment.RiskScore > ReminderThreshold {
		assessment.Suggestions = append(assessment.Suggestions, SuggestionReminder)
	}
	if assessment.RiskScore > escalationThreshold {
		assessment.Suggestions = append(assessment.Suggestions, SuggestionEscalate)
	}

	return assessment
}

// predictPaymentDate estimates when the invoice will be settled from the
// client's paid history. Days-to-pay rounds up: a payment half a day
// after issue counts as one full day. Confidence shrinks with history
// length and is intentionally not clamped below zero.
func predictPaymentDate(invoice models.InvoiceRecord, history []models.HistoryEntry) *models.PaymentPrediction {
	issued, err := time.Parse(DateLayout, invoice.IssueDate)
	if err != nil {
		return nil
	}

	var totalDays float64
	paid := 0
	for _, h := range history {
		if h.Status != models.InvoiceStatusPaid || h.PaidDate == "" {
			continue
		}
		issuedAt, err := time.Parse(DateLayout, h.IssuedDate)
		if err != nil {
			continue
		}
		paidAt, err := time.Parse(DateLayout, h.PaidDate)
		if err != nil {
			continue
		}
		totalDays += math.Ceil(paidAt.Sub(issuedAt).Hours() / 24)
		paid++
	}
	if paid == 0 {
		return nil
	}

	avgDaysToPay := int(math.Ceil(totalDays / float64(paid)))
	confidence := 100 - 2*len(history)
	if confidence > maxConfidence {
		confidence = maxConfidence
	}

	return &models.PaymentPrediction{
		PredictedPayDate: issued.AddDate(0, 0, avgDaysToPay).Format(DateLayout),
		Confidence:       confidence,
	}
}
