package domain

import (
	"fmt"
	"time"
)

// monthKeyLayout is the canonical storage format for month keys ("2024-03").
const monthKeyLayout = "2006-01"

// MonthKey identifies a calendar month ("YYYY-MM"). All historical values are
// bucketed at this granularity.
type MonthKey string

// MonthKeyOf returns the MonthKey of the month containing t.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey(t.Format(monthKeyLayout))
}

// FirstDay returns midnight UTC on the first calendar day of the month.
// Returns an error if the key is not in YYYY-MM form.
func (m MonthKey) FirstDay() (time.Time, error) {
	t, err := time.Parse(monthKeyLayout, string(m))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month key %q: %w", m, err)
	}
	return t, nil
}

// Validate ensures the month key parses.
func (m MonthKey) Validate() error {
	_, err := m.FirstDay()
	return err
}

// TrailingMonthKeys returns the n month keys ending at (and including) the
// month containing ref, ordered oldest first.
func TrailingMonthKeys(ref time.Time, n int) []MonthKey {
	keys := make([]MonthKey, 0, n)
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := n - 1; i >= 0; i-- {
		keys = append(keys, MonthKeyOf(first.AddDate(0, -i, 0)))
	}
	return keys
}

// MonthsBetween returns the number of whole calendar months from the month
// containing `from` to the month containing `to`, ignoring the day of month.
// Negative when `to` precedes `from`.
func MonthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}
