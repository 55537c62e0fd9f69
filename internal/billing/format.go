package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"billmate/internal/models"
)

// FormatCurrency renders an amount as a dollar string with two decimal
// places, e.g. "$100.00".
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// FormatDate renders a due date like "Jan 2, 2006". Unparseable input is
// returned unchanged.
func FormatDate(dueDate string) string {
	d, err := time.Parse(DateLayout, dueDate)
	if err != nil {
		return dueDate
	}
	return d.Format("Jan 2, 2006")
}

// FrequencyLabel returns the display label for a frequency.
func FrequencyLabel(f models.Frequency) string {
	switch f {
	case models.FrequencyOneTime:
		return "One-time"
	case models.FrequencyWeekly:
		return "Weekly"
	case models.FrequencyMonthly:
		return "Monthly"
	default:
		return string(f)
	}
}
