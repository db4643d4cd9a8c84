package app

import (
	"strings"
	"time"

	"mosbookings/internal/domain"
)

// Category is a filter chip. Unknown values act as a room-type substring.
type Category string

const (
	CategoryAll           Category = "All"
	CategorySuites        Category = "Suites"
	CategoryEnSuite       Category = "En Suite"
	CategoryOneBedroom    Category = "One Bedroom"
	CategoryTwoBedrooms   Category = "Two Bedrooms"
	CategoryThreeBedrooms Category = "Three Bedrooms"
	CategoryConference    Category = "Conference"
)

var Categories = []Category{
	CategoryAll, CategorySuites, CategoryEnSuite, CategoryOneBedroom,
	CategoryTwoBedrooms, CategoryThreeBedrooms, CategoryConference,
}

var categoryKeywords = map[Category][]string{
	CategorySuites:        {"suite"},
	CategoryEnSuite:       {"en suite"},
	CategoryOneBedroom:    {"one bedroom", "1 bedroom", "single bedroom"},
	CategoryTwoBedrooms:   {"two bedroom", "2 bedroom", "double bedroom"},
	CategoryThreeBedrooms: {"three bedroom", "3 bedroom", "triple bedroom"},
	CategoryConference:    {"conference"},
}

// ParseCategory maps user input onto a known chip, case-insensitively.
// "", "all rooms" and "all bookings" mean All.
func ParseCategory(s string) Category {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "all", "all rooms", "all bookings":
		return CategoryAll
	}
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c
		}
	}
	return Category(s)
}

func (c Category) matchRoom(r domain.Room) bool {
	if c == CategoryAll || c == "" {
		return true
	}
	typ := strings.ToLower(r.Type)
	kws, known := categoryKeywords[c]
	if !known {
		return strings.Contains(typ, strings.ToLower(string(c)))
	}
	for _, kw := range kws {
		if strings.Contains(typ, kw) {
			return true
		}
	}
	if c == CategoryConference {
		for _, a := range r.Amenities {
			if strings.Contains(strings.ToLower(a), "conference") {
				return true
			}
		}
	}
	return false
}

type Filter struct {
	Category Category `json:"category"`
	Query    string   `json:"query,omitempty"`
}

func (f Filter) String() string {
	c := f.Category
	if c == "" {
		c = CategoryAll
	}
	if f.Query == "" {
		return string(c)
	}
	return string(c) + ` matching "` + f.Query + `"`
}

func containsFold(s, q string) bool {
	return strings.Contains(strings.ToLower(s), q)
}

// FilterRooms keeps rooms matching the category and, when set, the query
// against name, type or location. Input order is preserved.
func FilterRooms(rooms []domain.Room, f Filter) []domain.Room {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]domain.Room, 0, len(rooms))
	for _, r := range rooms {
		if !f.Category.matchRoom(r) {
			continue
		}
		if q != "" && !containsFold(r.Name, q) && !containsFold(r.Type, q) && !containsFold(r.Location, q) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// BookingFields selects which booking fields a free-text query searches.
type BookingFields int

const (
	SearchOwnBookings BookingFields = iota // room name or date
	SearchAllBookings                      // room name or user
)

// FilterBookings resolves each booking's room through rooms for the category.
// A booking whose room is unknown only passes All.
func FilterBookings(bookings []domain.Booking, rooms map[string]domain.Room, f Filter, fields BookingFields) []domain.Booking {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if f.Category != CategoryAll && f.Category != "" {
			r, ok := rooms[b.RoomID]
			if !ok || !f.Category.matchRoom(r) {
				continue
			}
		}
		if q != "" {
			second := b.Date
			if fields == SearchAllBookings {
				second = b.User
			}
			if !containsFold(b.RoomName, q) && !containsFold(second, q) {
				continue
			}
		}
		out = append(out, b)
	}
	return out
}

// AvailableRooms keeps rooms free today whose name or location matches query.
func AvailableRooms(rooms []domain.Room, query string, now time.Time) []domain.Room {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.Room, 0, len(rooms))
	for _, r := range rooms {
		if !AvailableToday(r, now) {
			continue
		}
		if q != "" && !containsFold(r.Name, q) && !containsFold(r.Location, q) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Listing is a filtered list plus an explicit "no matches" state.
type Listing[T any] struct {
	Items   []T    `json:"items"`
	Empty   bool   `json:"empty"`
	Message string `json:"message,omitempty"`
}

func NewListing[T any](items []T, noun string, f Filter) Listing[T] {
	if items == nil {
		items = []T{}
	}
	l := Listing[T]{Items: items}
	if len(items) == 0 {
		l.Empty = true
		l.Message = "No " + noun + " found for " + f.String()
	}
	return l
}
