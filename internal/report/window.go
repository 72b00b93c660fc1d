package report

import "time"

// StartOfDay returns local midnight of the day containing now, in now's location.
func StartOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// StartOfWeek returns local midnight of the Monday of the week containing now. On a
// Sunday that is six days earlier.
func StartOfWeek(now time.Time) time.Time {
	day := StartOfDay(now)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// Window is a half-open time interval [From, To).
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

func DayWindow(now time.Time) Window {
	from := StartOfDay(now)
	return Window{From: from, To: from.AddDate(0, 0, 1)}
}

func WeekWindow(now time.Time) Window {
	from := StartOfWeek(now)
	return Window{From: from, To: from.AddDate(0, 0, 7)}
}
