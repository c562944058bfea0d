package citas

import "time"

// Clinic hours: the agenda grid shows one row per hour from 08:00 through
// 19:00 inclusive.
const (
	AgendaStartHour = 8
	AgendaEndHour   = 19
)

// AgendaHours returns the grid's hour rows: 8 through 19.
func AgendaHours() []int {
	hours := make([]int, 0, AgendaEndHour-AgendaStartHour+1)
	for h := AgendaStartHour; h <= AgendaEndHour; h++ {
		hours = append(hours, h)
	}
	return hours
}

// WeekStart returns midnight of the Sunday on or before ref, in ref's
// location. Weeks run Sunday through Saturday.
func WeekStart(ref time.Time) time.Time {
	midnight := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	return midnight.AddDate(0, 0, -int(midnight.Weekday()))
}

// WeekEnd returns the last instant of the Saturday that closes the week
// containing ref, so [WeekStart, WeekEnd] is an inclusive window.
func WeekEnd(ref time.Time) time.Time {
	return WeekStart(ref).AddDate(0, 0, 7).Add(-time.Nanosecond)
}

// Slot identifies one cell of the weekly agenda grid.
type Slot struct {
	Day  time.Time `json:"day"` // midnight, local
	Hour int       `json:"hour"`
}

// InSlot reports whether the cita starts inside the given day/hour cell.
// Membership is decided by the start time's local calendar day and hour
// only; duration never spills a cita into later cells.
func InSlot(c Cita, day time.Time, hour int) bool {
	t := c.FechaHora.In(day.Location())
	return t.Year() == day.Year() &&
		t.Month() == day.Month() &&
		t.Day() == day.Day() &&
		t.Hour() == hour
}

// AgendaDay is one column of the weekly grid.
type AgendaDay struct {
	Day   time.Time      `json:"day"`
	Slots map[int][]Cita `json:"slots"` // hour -> citas starting in that hour
}

// BucketWeek distributes citas into the Sunday-to-Saturday grid containing
// ref. A cita may appear in at most one cell; citas outside clinic hours or
// outside the week are dropped from the grid (they remain listable).
func BucketWeek(all []Cita, ref time.Time) []AgendaDay {
	start := WeekStart(ref)
	days := make([]AgendaDay, 7)
	for i := range days {
		days[i] = AgendaDay{
			Day:   start.AddDate(0, 0, i),
			Slots: make(map[int][]Cita),
		}
	}
	for _, c := range all {
		for i := range days {
			placed := false
			for _, h := range AgendaHours() {
				if InSlot(c, days[i].Day, h) {
					days[i].Slots[h] = append(days[i].Slots[h], c)
					placed = true
					break
				}
			}
			if placed {
				break
			}
		}
	}
	return days
}
