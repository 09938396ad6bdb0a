package analytics

import (
	"sort"
	"time"

	"github.com/finsight/invoice-analytics/internal/models"
)

// Forecast parameters.
const (
	// DefaultForecastMonths is used when the caller passes a non-positive
	// horizon.
	DefaultForecastMonths = 3

	movingAverageWindow = 3
	monthlyGrowthRate   = 0.05
)

// Forecast smooths historical monthly payment totals with a trailing
// moving average and extrapolates monthsToPredict future months. The
// returned series holds the historical months followed by the predicted
// ones, both chronological. Fewer than two distinct months of history
// yields a nil series, the insufficient-data signal; that is distinct
// from a series whose amounts happen to be zero.
//
// The reference time is part of the contract shared with AssessRisk; the
// forecast horizon itself is anchored to the last historical month.
func Forecast(payments []models.PaymentRecord, monthsToPredict int, now time.Time) []models.ForecastPoint {
	if monthsToPredict <= 0 {
		monthsToPredict = DefaultForecastMonths
	}

	// Payments without a parseable date or a non-zero amount carry no
	// trend signal and are dropped.
	totals := make(map[string]float64)
	for _, p := range payments {
		if p.Amount == 0 {
			continue
		}
		key := monthKey(p.Date)
		if key == "" {
			continue
		}
		totals[key] += p.Amount
	}

	keys := make([]string, 0, len(totals))
	for key := range totals {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if len(keys) < 2 {
		return nil
	}

	window := movingAverageWindow
	if len(keys) < window {
		window = len(keys)
	}

	// Trailing moving average: the first window-1 months produce no
	// smoothed value. The last smoothed value is the forecast baseline.
	var smoothed []float64
	for i := window - 1; i < len(keys); i++ {
		var sum float64
		for j := i - window + 1; j <= i; j++ {
			sum += totals[keys[j]]
		}
		smoothed = append(smoothed, sum/float64(window))
	}
	if len(smoothed) == 0 {
		return nil
	}
	baseline := smoothed[len(smoothed)-1]

	series := make([]models.ForecastPoint, 0, len(keys)+monthsToPredict)
	for _, key := range keys {
		series = append(series, models.ForecastPoint{
			Month:  key,
			Amount: totals[key],
		})
	}

	// Each prediction scales off the baseline independently; predictions
	// are not compounded against each other.
	lastMonth, _ := time.Parse(monthLayout, keys[len(keys)-1])
	for i := 1; i <= monthsToPredict; i++ {
		series = append(series, models.ForecastPoint{
			Month:        lastMonth.AddDate(0, i, 0).Format(monthLayout),
			Amount:       baseline * (1 + monthlyGrowthRate*float64(i)),
			IsPrediction: true,
		})
	}

	return series
}
