package citas

import (
	"testing"
	"time"
)

func TestWeekStartIsSunday(t *testing.T) {
	cases := []struct {
		name string
		ref  string
		want string
	}{
		{"wednesday", "2026-03-04T15:30:00Z", "2026-03-01T00:00:00Z"},
		{"sunday itself", "2026-03-01T08:00:00Z", "2026-03-01T00:00:00Z"},
		{"saturday", "2026-03-07T23:00:00Z", "2026-03-01T00:00:00Z"},
		{"month boundary", "2026-04-01T09:00:00Z", "2026-03-29T00:00:00Z"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := WeekStart(mustTime(t, tc.ref))
			if !got.Equal(mustTime(t, tc.want)) {
				t.Fatalf("WeekStart(%s) = %v, want %v", tc.ref, got, tc.want)
			}
			if got.Weekday() != time.Sunday {
				t.Fatalf("week must start on Sunday, got %v", got.Weekday())
			}
		})
	}
}

func TestWeekEndClosesSaturday(t *testing.T) {
	end := WeekEnd(mustTime(t, "2026-03-04T15:30:00Z"))
	if end.Weekday() != time.Saturday {
		t.Fatalf("expected Saturday, got %v", end.Weekday())
	}
	if !end.Before(mustTime(t, "2026-03-08T00:00:00Z")) {
		t.Fatalf("week end must precede next Sunday, got %v", end)
	}
}

func TestAgendaHours(t *testing.T) {
	hours := AgendaHours()
	if len(hours) != 12 {
		t.Fatalf("expected 12 hour rows, got %d", len(hours))
	}
	if hours[0] != 8 || hours[len(hours)-1] != 19 {
		t.Fatalf("expected rows 8..19, got %v..%v", hours[0], hours[len(hours)-1])
	}
}

func TestInSlotMatchesStartHourOnly(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	c := Cita{FechaHora: time.Date(2026, 3, 2, 9, 45, 0, 0, time.UTC), DuracionMinutos: 90}

	if !InSlot(c, day, 9) {
		t.Fatal("cita starting 09:45 belongs to the 9:00 slot")
	}
	// Duration spills past 10:00 and 11:00 but never into those cells.
	if InSlot(c, day, 10) || InSlot(c, day, 11) {
		t.Fatal("duration must not spread a cita across cells")
	}
	if InSlot(c, day.AddDate(0, 0, 1), 9) {
		t.Fatal("wrong day must not match")
	}
}

func TestBucketWeekPlacesEachCitaOnce(t *testing.T) {
	ref := mustTime(t, "2026-03-04T12:00:00Z")
	all := []Cita{
		{ID: 1, FechaHora: mustTime(t, "2026-03-02T09:15:00Z")}, // monday 9
		{ID: 2, FechaHora: mustTime(t, "2026-03-02T09:45:00Z")}, // monday 9, same cell
		{ID: 3, FechaHora: mustTime(t, "2026-03-06T19:00:00Z")}, // friday 19, last row
		{ID: 4, FechaHora: mustTime(t, "2026-03-02T07:30:00Z")}, // before clinic hours
		{ID: 5, FechaHora: mustTime(t, "2026-03-11T09:00:00Z")}, // next week
	}

	days := BucketWeek(all, ref)
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	if days[0].Day.Weekday() != time.Sunday {
		t.Fatalf("grid must open on Sunday, got %v", days[0].Day.Weekday())
	}

	monday := days[1]
	if got := len(monday.Slots[9]); got != 2 {
		t.Fatalf("expected citas 1 and 2 sharing monday 9:00, got %d", got)
	}
	friday := days[5]
	if got := len(friday.Slots[19]); got != 1 {
		t.Fatalf("expected cita 3 in friday 19:00, got %d", got)
	}

	total := 0
	for _, d := range days {
		for _, cell := range d.Slots {
			total += len(cell)
		}
	}
	// Citas 4 and 5 fall outside the grid.
	if total != 3 {
		t.Fatalf("expected 3 placed citas, got %d", total)
	}
}

func TestBucketWeekLocalTimezone(t *testing.T) {
	loc := time.FixedZone("UTC-6", -6*60*60)
	ref := time.Date(2026, 3, 4, 12, 0, 0, 0, loc)
	// 01:00Z on the 3rd is 19:00 local on the 2nd (monday).
	c := Cita{ID: 1, FechaHora: time.Date(2026, 3, 3, 1, 0, 0, 0, time.UTC)}

	days := BucketWeek([]Cita{c}, ref)
	monday := days[1]
	if got := len(monday.Slots[19]); got != 1 {
		t.Fatalf("slot membership must use the grid's local time, got %v", monday.Slots)
	}
}
