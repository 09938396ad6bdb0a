package analytics

import (
	"testing"
	"time"

	"github.com/finsight/invoice-analytics/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAssessRiskOverdueScoring(t *testing.T) {
	tests := []struct {
		name      string
		dueDate   string
		now       string
		wantScore int
		wantFlag  bool
	}{
		{"due today", "2024-01-15", "2024-01-15", 0, false},
		{"due tomorrow", "2024-01-16", "2024-01-15", 0, false},
		{"10 days overdue", "2024-01-05", "2024-01-15", 20, true},
		{"25 days overdue caps at 50", "2024-01-05", "2024-01-30", 50, true},
		{"30 days overdue caps at 50", "2024-01-05", "2024-02-04", 50, true},
		{"100 days overdue still capped", "2024-01-05", "2024-04-14", 50, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoice := models.InvoiceRecord{
				Amount:    1000,
				IssueDate: "2024-01-01",
				DueDate:   tt.dueDate,
			}

			assessment := AssessRisk(invoice, nil, date(tt.now))

			assert.Equal(t, tt.wantScore, assessment.RiskScore)
			if tt.wantFlag {
				require.Len(t, assessment.Flags, 1)
				assert.Equal(t, models.FlagOverdue, assessment.Flags[0].Type)
				assert.Equal(t, models.SeverityHigh, assessment.Flags[0].Severity)
			} else {
				assert.Empty(t, assessment.Flags)
			}
		})
	}
}

func TestAssessRiskOverdueMessage(t *testing.T) {
	invoice := models.InvoiceRecord{
		Amount:    1000,
		IssueDate: "2023-12-01",
		DueDate:   "2024-01-01",
	}

	assessment := AssessRisk(invoice, nil, date("2024-01-15"))

	assert.Equal(t, 28, assessment.RiskScore)
	require.Len(t, assessment.Flags, 1)
	assert.Equal(t, models.Flag{
		Type:     models.FlagOverdue,
		Message:  "Invoice is 14 days overdue",
		Severity: models.SeverityHigh,
	}, assessment.Flags[0])
}

func TestAssessRiskAmountVariation(t *testing.T) {
	history := []models.HistoryEntry{
		{Amount: 100, IssuedDate: "2023-10-01", Status: models.InvoiceStatusPaid, PaidDate: "2023-10-20"},
		{Amount: 300, IssuedDate: "2023-11-01", Status: models.InvoiceStatusPaid, PaidDate: "2023-11-25"},
	}
	// mean = 200, threshold = 300

	t.Run("at threshold does not fire", func(t *testing.T) {
		invoice := models.InvoiceRecord{Amount: 300, IssueDate: "2024-01-01", DueDate: "2024-02-01"}
		assessment := AssessRisk(invoice, history, date("2024-01-10"))
		assert.Equal(t, 0, assessment.RiskScore)
		assert.Empty(t, assessment.Flags)
	})

	t.Run("above threshold fires", func(t *testing.T) {
		invoice := models.InvoiceRecord{Amount: 301, IssueDate: "2024-01-01", DueDate: "2024-02-01"}
		assessment := AssessRisk(invoice, history, date("2024-01-10"))
		assert.Equal(t, 20, assessment.RiskScore)
		require.Len(t, assessment.Flags, 1)
		assert.Equal(t, models.FlagAmountVariation, assessment.Flags[0].Type)
		assert.Equal(t, models.SeverityMedium, assessment.Flags[0].Severity)
	})

	t.Run("empty history never fires", func(t *testing.T) {
		invoice := models.InvoiceRecord{Amount: 1e9, IssueDate: "2024-01-01", DueDate: "2024-02-01"}
		assessment := AssessRisk(invoice, nil, date("2024-01-10"))
		assert.Empty(t, assessment.Flags)
	})
}

func TestAssessRiskFlagOrder(t *testing.T) {
	// Both rules fire: overdue flag must precede the variation flag.
	history := []models.HistoryEntry{
		{Amount: 100, IssuedDate: "2023-10-01", Status: models.InvoiceStatusPaid, PaidDate: "2023-10-10"},
	}
	invoice := models.InvoiceRecord{Amount: 500, IssueDate: "2023-12-01", DueDate: "2024-01-01"}

	assessment := AssessRisk(invoice, history, date("2024-01-20"))

	require.Len(t, assessment.Flags, 2)
	assert.Equal(t, models.FlagOverdue, assessment.Flags[0].Type)
	assert.Equal(t, models.FlagAmountVariation, assessment.Flags[1].Type)
	assert.Equal(t, 38+20, assessment.RiskScore)
}

func TestAssessRiskSuggestions(t *testing.T) {
	t.Run("moderate score yields one suggestion", func(t *testing.T) {
		// 20 days overdue -> score 40.
		invoice := models.InvoiceRecord{Amount: 100, IssueDate: "2023-12-01", DueDate: "2024-01-01"}
		assessment := AssessRisk(invoice, nil, date("2024-01-21"))

		assert.Equal(t, 40, assessment.RiskScore)
		assert.Equal(t, []string{SuggestionReminder}, assessment.Suggestions)
	})

	t.Run("high score yields both suggestions", func(t *testing.T) {
		// Capped overdue (50) plus amount variation (20) -> score 70.
		history := []models.HistoryEntry{
			{Amount: 10, IssuedDate: "2023-10-01", Status: models.InvoiceStatusPaid, PaidDate: "2023-10-15"},
		}
		invoice := models.InvoiceRecord{Amount: 1000, IssueDate: "2023-10-01", DueDate: "2023-11-01"}
		assessment := AssessRisk(invoice, history, date("2024-03-01"))

		assert.Equal(t, 70, assessment.RiskScore)
		assert.Equal(t, []string{SuggestionReminder, SuggestionEscalate}, assessment.Suggestions)
	})

	t.Run("low score yields none", func(t *testing.T) {
		invoice := models.InvoiceRecord{Amount: 100, IssueDate: "2024-01-01", DueDate: "2024-02-01"}
		assessment := AssessRisk(invoice, nil, date("2024-01-10"))

		assert.Empty(t, assessment.Suggestions)
	})
}

func TestAssessRiskPaymentPrediction(t *testing.T) {
	t.Run("averages days to pay over settled entries", func(t *testing.T) {
		history := []models.HistoryEntry{
			{Amount: 100, IssuedDate: "2023-10-01", PaidDate: "2023-10-11", Status: models.InvoiceStatusPaid}, // 10 days
			{Amount: 100, IssuedDate: "2023-11-01", PaidDate: "2023-11-21", Status: models.InvoiceStatusPaid}, // 20 days
			{Amount: 100, IssuedDate: "2023-12-01", Status: models.InvoiceStatusPending},
		}
		invoice := models.InvoiceRecord{Amount: 100, IssueDate: "2024-01-01", DueDate: "2024-02-01"}

		assessment := AssessRisk(invoice, history, date("2024-01-10"))

		require.NotNil(t, assessment.PaymentPrediction)
		// avg 15 days after the January 1 issue date.
		assert.Equal(t, "2024-01-16", assessment.PaymentPrediction.PredictedPayDate)
		// Confidence counts the whole history, not just settled entries.
		assert.Equal(t, 94, assessment.PaymentPrediction.Confidence)
	})

	t.Run("confidence caps at 95 for short histories", func(t *testing.T) {
		history := []models.HistoryEntry{
			{Amount: 100, IssuedDate: "2023-10-01", PaidDate: "2023-10-05", Status: models.InvoiceStatusPaid},
		}
		invoice := models.InvoiceRecord{Amount: 100, IssueDate: "2024-01-01", DueDate: "2024-02-01"}

		assessment := AssessRisk(invoice, history, date("2024-01-10"))

		require.NotNil(t, assessment.PaymentPrediction)
		assert.Equal(t, 95, assessment.PaymentPrediction.Confidence)
	})

	t.Run("confidence has no lower bound", func(t *testing.T) {
		history := make([]models.HistoryEntry, 60)
		for i := range history {
			history[i] = models.HistoryEntry{
				Amount:     100,
				IssuedDate: "2023-10-01",
				PaidDate:   "2023-10-11",
				Status:     models.InvoiceStatusPaid,
			}
		}
		invoice := models.InvoiceRecord{Amount: 100, IssueDate: "2024-01-01", DueDate: "2024-02-01"}

		assessment := AssessRisk(invoice, history, date("2024-01-10"))

		require.NotNil(t, assessment.PaymentPrediction)
		assert.Equal(t, -20, assessment.PaymentPrediction.Confidence)
	})

	t.Run("no settled history yields no prediction", func(t *testing.T) {
		history := []models.HistoryEntry{
			{Amount: 100, IssuedDate: "2023-10-01", Status: models.InvoiceStatusPending},
		}
		invoice := models.InvoiceRecord{Amount: 100, IssueDate: "2024-01-01", DueDate: "2024-02-01"}

		assessment := AssessRisk(invoice, history, date("2024-01-10"))

		assert.Nil(t, assessment.PaymentPrediction)
	})

	t.Run("prediction does not change the score", func(t *testing.T) {
		history := []models.HistoryEntry{
			{Amount: 100, IssuedDate: "2023-10-01", PaidDate: "2023-10-11", Status: models.InvoiceStatusPaid},
		}
		invoice := models.InvoiceRecord{Amount: 100, IssueDate: "2024-01-01", DueDate: "2024-02-01"}

		assessment := AssessRisk(invoice, history, date("2024-01-10"))

		assert.Equal(t, 0, assessment.RiskScore)
		require.NotNil(t, assessment.PaymentPrediction)
	})
}

func TestAssessRiskUnparsableDueDate(t *testing.T) {
	invoice := models.InvoiceRecord{Amount: 100, IssueDate: "2024-01-01", DueDate: "garbage"}

	assessment := AssessRisk(invoice, nil, date("2024-06-01"))

	assert.Equal(t, 0, assessment.RiskScore)
	assert.Empty(t, assessment.Flags)
}
