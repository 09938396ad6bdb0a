// Package analytics implements the financial analytics engine: summary
// aggregation, invoice risk scoring and payment trend forecasting.
//
// Every function is pure and reentrant. Nothing here reads the system
// clock, touches storage or keeps state between calls; time-sensitive
// logic takes an explicit reference time so results are reproducible and
// callers can run computations concurrently without coordination.
package analytics

import (
	"sort"
	"time"

	"github.com/finsight/invoice-analytics/internal/models"
)

// DateLayout is the wire format for all record dates.
const DateLayout = "2006-01-02"

const monthLayout = "2006-01"

// monthKey returns the YYYY-MM grouping key for a record date, or "" when
// the date cannot be parsed.
func monthKey(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return ""
	}
	return t.Format(monthLayout)
}

// monthLabel renders a YYYY-MM key as short month plus full year, e.g.
// "Jan 2024". time.Format month names are fixed English, so labels do not
// drift with the host locale.
func monthLabel(key string) string {
	t, err := time.Parse(monthLayout, key)
	if err != nil {
		return key
	}
	return t.Format("Jan 2006")
}

// Aggregate folds invoices and payments into per-client, per-month and
// per-method totals. Accumulation is tolerant: a record with an
// unparsable issue date still counts toward the totals, it is only left
// out of the month grouping. Empty inputs yield zero totals and empty
// groupings. The returned summary shares no memory with the inputs.
func Aggregate(invoices []models.InvoiceRecord, payments []models.PaymentRecord) models.FinancialSummary {
	summary := models.FinancialSummary{
		ByClient:       make(map[string]float64),
		ByMonth:        []models.MonthTotal{},
		PaymentMethods: make(map[string]float64),
	}

	byMonth := make(map[string]float64)
	for _, inv := range invoices {
		summary.TotalInvoiced += inv.Amount
		summary.ByClient[inv.ClientID] += inv.Amount
		if key := monthKey(inv.IssueDate); key != "" {
			byMonth[key] += inv.Amount
		}
	}

	for _, p := range payments {
		summary.TotalPaid += p.Amount
		summary.PaymentMethods[p.Method] += p.Amount
	}

	// Not clamped: an overpaid book yields a negative outstanding.
	summary.Outstanding = summary.TotalInvoiced - summary.TotalPaid

	// Emit months in chronological order, never map iteration order, so
	// downstream charts stay correct. Lexicographic sort on YYYY-MM keys
	// is chronological.
	keys := make([]string, 0, len(byMonth))
	for key := range byMonth {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		summary.ByMonth = append(summary.ByMonth, models.MonthTotal{
			Month:  key,
			Label:  monthLabel(key),
			Amount: byMonth[key],
		})
	}

	return summary
}
