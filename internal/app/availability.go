package app

import (
	"fmt"
	"strings"
	"time"

	"mosbookings/internal/domain"
)

// DateLayout is the calendar-date format used on the wire and in room calendars.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, s)
	}
	return t, nil
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

type Availability int

const (
	Bookable Availability = iota
	Unavailable
	PastDate
	InvalidDate
)

func (a Availability) String() string {
	switch a {
	case Bookable:
		return "bookable"
	case Unavailable:
		return "unavailable"
	case PastDate:
		return "past_date"
	case InvalidDate:
		return "invalid_date"
	}
	return "unknown"
}

// Message is the user-facing text for an outcome on date.
func (a Availability) Message(date string) string {
	switch a {
	case Bookable:
		return "Available on " + date
	case Unavailable:
		return "Room unavailable on " + date
	case PastDate:
		return "Cannot book for a past date"
	default:
		return fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD", date)
	}
}

// CheckAvailability decides whether room can be booked on date, relative to now.
// A past date is rejected before set membership is considered.
func CheckAvailability(room domain.Room, date string, now time.Time) (Availability, error) {
	d, err := ParseDate(date, now.Location())
	if err != nil {
		return InvalidDate, err
	}
	if d.Before(startOfDay(now)) {
		return PastDate, nil
	}
	if unavailableSet(room)[d.Format(DateLayout)] {
		return Unavailable, nil
	}
	return Bookable, nil
}

func IsBookable(room domain.Room, date string, now time.Time) bool {
	a, err := CheckAvailability(room, date, now)
	return err == nil && a == Bookable
}

// AvailableToday reports whether today's date is free in the room calendar.
func AvailableToday(room domain.Room, now time.Time) bool {
	return !unavailableSet(room)[now.Format(DateLayout)]
}

// AvailabilityLabel is the tag shown on room cards and details.
func AvailabilityLabel(room domain.Room, now time.Time) string {
	if AvailableToday(room, now) {
		return "Available"
	}
	return "Booked today"
}

// unavailableSet normalizes the calendar into a set. Entries that do not parse
// are kept verbatim so they still never match a valid date.
func unavailableSet(room domain.Room) map[string]bool {
	set := make(map[string]bool, len(room.UnavailableDates))
	for _, s := range room.UnavailableDates {
		s = strings.TrimSpace(s)
		if t, err := time.Parse(DateLayout, s); err == nil {
			s = t.Format(DateLayout)
		}
		set[s] = true
	}
	return set
}
