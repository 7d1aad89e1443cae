package tools

import (
	"fmt"
	"time"
)

// Date-filter names accepted by the reporting tools.
const (
	FilterCurrentMonth  = "currentmonth"
	FilterPreviousMonth = "previousmonth"
	FilterCurrentYear   = "currentyear"
	FilterLastYear      = "lastyear"
)

// DateRange is a half-open interval [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

// rangeForFilter resolves a date-filter name to a concrete range relative to
// now. Unrecognized filters fall back to the previous month, the safest
// default for "recent data" questions.
func rangeForFilter(filter string, now time.Time) DateRange {
	y, m, _ := now.Date()
	monthStart := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)

	switch filter {
	case FilterCurrentMonth:
		return DateRange{Start: monthStart, End: monthStart.AddDate(0, 1, 0)}
	case FilterCurrentYear:
		dayStart := time.Date(y, m, now.Day(), 0, 0, 0, 0, time.UTC)
		return DateRange{
			Start: time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   dayStart.AddDate(0, 0, 1),
		}
	case FilterLastYear:
		return DateRange{
			Start: time.Date(y-1, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC),
		}
	default:
		return DateRange{Start: monthStart.AddDate(0, -1, 0), End: monthStart}
	}
}

// monthsForFilter resolves a date-filter name to the list of year-month keys
// (YYYY-MM) used by tables partitioned on a year_month column.
func monthsForFilter(filter string, now time.Time) []string {
	y, m, _ := now.Date()

	switch filter {
	case FilterCurrentMonth:
		return []string{yearMonth(y, int(m))}
	case FilterCurrentYear:
		months := make([]string, 0, int(m))
		for i := 1; i <= int(m); i++ {
			months = append(months, yearMonth(y, i))
		}
		return months
	case FilterLastYear:
		months := make([]string, 0, 12)
		for i := 1; i <= 12; i++ {
			months = append(months, yearMonth(y-1, i))
		}
		return months
	default:
		prev := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
		return []string{yearMonth(prev.Year(), int(prev.Month()))}
	}
}

// expandMonthRange expands an inclusive MM-YYYY..MM-YYYY range into year-month
// keys (YYYY-MM).
func expandMonthRange(startMonth, endMonth string) ([]string, error) {
	start, err := time.Parse("01-2006", startMonth)
	if err != nil {
		return nil, fmt.Errorf("invalid startMonth %q: expected MM-YYYY", startMonth)
	}
	end, err := time.Parse("01-2006", endMonth)
	if err != nil {
		return nil, fmt.Errorf("invalid endMonth %q: expected MM-YYYY", endMonth)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("endMonth %q precedes startMonth %q", endMonth, startMonth)
	}

	var months []string
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 1, 0) {
		months = append(months, cur.Format("2006-01"))
	}
	return months, nil
}

// monthRangeToDates converts an inclusive MM-YYYY..MM-YYYY range into a
// half-open date range covering the full months.
func monthRangeToDates(startMonth, endMonth string) (DateRange, error) {
	start, err := time.Parse("01-2006", startMonth)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid startMonth %q: expected MM-YYYY", startMonth)
	}
	end, err := time.Parse("01-2006", endMonth)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid endMonth %q: expected MM-YYYY", endMonth)
	}
	if end.Before(start) {
		return DateRange{}, fmt.Errorf("endMonth %q precedes startMonth %q", endMonth, startMonth)
	}
	return DateRange{Start: start, End: end.AddDate(0, 1, 0)}, nil
}

func yearMonth(year, month int) string {
	return fmt.Sprintf("%d-%02d", year, month)
}

func formatDay(t time.Time) string {
	return t.Format("2006-01-02")
}
