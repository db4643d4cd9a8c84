package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"mosbookings/internal/domain"
)

// ErrBookingRejected is returned by RoomDetails.Book when the local
// availability check fails; the outcome says why.
var ErrBookingRejected = errors.New("booking rejected")

// Services is what screens need from the rest of the application.
type Services struct {
	Repo     *RoomRepository
	Sessions *SessionService
	Now      func() time.Time
}

func (s Services) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// screen carries the scope shared by every screen.
type screen struct {
	svc   Services
	scope *Scope
}

func newScreen(ctx context.Context, svc Services) screen {
	return screen{svc: svc, scope: NewScope(ctx)}
}

// Close cancels in-flight loads; later results are dropped.
func (s *screen) Close() { s.scope.Close() }

// ---- Home ----

type HomeScreen struct {
	screen
	rooms  []domain.Room
	filter Filter
}

func NewHomeScreen(ctx context.Context, svc Services) *HomeScreen {
	return &HomeScreen{screen: newScreen(ctx, svc), filter: Filter{Category: CategoryAll}}
}

func (h *HomeScreen) Load() error {
	var rooms []domain.Room
	err := h.scope.Run(func(ctx context.Context) error {
		var err error
		rooms, err = h.svc.Repo.Rooms(ctx)
		return err
	})
	h.scope.Update(func() { h.rooms = rooms })
	return err
}

func (h *HomeScreen) SetFilter(f Filter) {
	h.scope.Update(func() { h.filter = f })
}

func (h *HomeScreen) View() Listing[domain.Room] {
	var l Listing[domain.Room]
	h.scope.Read(func() { l = NewListing(FilterRooms(h.rooms, h.filter), "rooms", h.filter) })
	return l
}

// ---- Room details ----

type RoomView struct {
	Room         domain.Room `json:"room"`
	Availability string      `json:"availability"`
}

type RoomDetailsScreen struct {
	screen
	id   string
	room *domain.Room
}

func NewRoomDetailsScreen(ctx context.Context, svc Services, roomID string) *RoomDetailsScreen {
	return &RoomDetailsScreen{screen: newScreen(ctx, svc), id: roomID}
}

func (d *RoomDetailsScreen) Load() error {
	var room *domain.Room
	err := d.scope.Run(func(ctx context.Context) error {
		var err error
		room, err = d.svc.Repo.Room(ctx, d.id)
		return err
	})
	d.scope.Update(func() { d.room = room })
	return err
}

// View returns nil until a room has been loaded.
func (d *RoomDetailsScreen) View() *RoomView {
	var v *RoomView
	d.scope.Read(func() {
		if d.room != nil {
			v = &RoomView{Room: *d.room, Availability: AvailabilityLabel(*d.room, d.svc.now())}
		}
	})
	return v
}

// Book checks the date locally, books it, and reloads the room so its
// calendar reflects the new booking.
func (d *RoomDetailsScreen) Book(date string) (Availability, error) {
	var room *domain.Room
	d.scope.Read(func() { room = d.room })
	if room == nil {
		return InvalidDate, fmt.Errorf("room %s not loaded", d.id)
	}
	a, err := CheckAvailability(*room, date, d.svc.now())
	if err != nil {
		return a, err
	}
	if a != Bookable {
		return a, fmt.Errorf("%w: %s", ErrBookingRejected, a.Message(date))
	}
	var ok bool
	err = d.scope.Run(func(ctx context.Context) error {
		var err error
		ok, err = d.svc.Repo.Book(ctx, room.ID, date)
		return err
	})
	if err != nil || !ok {
		return a, err
	}
	if err := d.Load(); err != nil {
		log.Warn().Err(err).Str("room", d.id).Msg("refresh after booking failed")
	}
	return Bookable, nil
}

// ---- My bookings ----

// BookingView is a booking joined with its room when the room is known.
type BookingView struct {
	domain.Booking
	RoomType string `json:"roomType"`
	Location string `json:"roomLocation,omitempty"`
	Price    string `json:"price"`
}

func bookingViews(bs []domain.Booking, rooms map[string]domain.Room) []BookingView {
	out := make([]BookingView, 0, len(bs))
	for _, b := range bs {
		v := BookingView{Booking: b, RoomType: b.RoomName, Price: "Price not available"}
		if r, ok := rooms[b.RoomID]; ok {
			if r.Type != "" {
				v.RoomType = r.Type
			}
			v.Location = r.Location
			v.Price = fmt.Sprintf("%.2f", r.Price)
		}
		out = append(out, v)
	}
	return out
}

type MyBookingsScreen struct {
	screen
	bookings []domain.Booking
	rooms    map[string]domain.Room
	filter   Filter
}

func NewMyBookingsScreen(ctx context.Context, svc Services) *MyBookingsScreen {
	return &MyBookingsScreen{screen: newScreen(ctx, svc), filter: Filter{Category: CategoryAll}}
}

// Load fetches own bookings and the room catalog concurrently. A failure of
// either clears both.
func (m *MyBookingsScreen) Load() error {
	var (
		bookings []domain.Booking
		rooms    []domain.Room
	)
	err := m.scope.Run(
		func(ctx context.Context) error {
			var err error
			bookings, err = m.svc.Repo.MyBookings(ctx)
			return err
		},
		func(ctx context.Context) error {
			var err error
			rooms, err = m.svc.Repo.Rooms(ctx)
			return err
		},
	)
	m.scope.Update(func() {
		if err != nil {
			m.bookings, m.rooms = nil, nil
			return
		}
		m.bookings, m.rooms = bookings, domain.RoomsByID(rooms)
	})
	return err
}

func (m *MyBookingsScreen) SetFilter(f Filter) {
	m.scope.Update(func() { m.filter = f })
}

func (m *MyBookingsScreen) View() Listing[BookingView] {
	var l Listing[BookingView]
	m.scope.Read(func() {
		bs := FilterBookings(m.bookings, m.rooms, m.filter, SearchOwnBookings)
		l = NewListing(bookingViews(bs, m.rooms), "bookings", m.filter)
	})
	return l
}

func (m *MyBookingsScreen) Cancel(roomID, date string) error {
	var ok bool
	err := m.scope.Run(func(ctx context.Context) error {
		var err error
		ok, err = m.svc.Repo.Cancel(ctx, roomID, date)
		return err
	})
	if err != nil || !ok {
		return err
	}
	return m.Load()
}

// ---- Admin: all bookings ----

type AdminBookingsScreen struct {
	screen
	rng      domain.DateRange
	bookings []domain.Booking
	query    string
}

func NewAdminBookingsScreen(ctx context.Context, svc Services) *AdminBookingsScreen {
	return &AdminBookingsScreen{screen: newScreen(ctx, svc)}
}

// Load lists all bookings in rng. Either bound may be empty.
func (a *AdminBookingsScreen) Load(rng domain.DateRange) error {
	for _, d := range []string{rng.Start, rng.End} {
		if d == "" {
			continue
		}
		if _, err := ParseDate(d, a.svc.now().Location()); err != nil {
			return err
		}
	}
	if _, err := a.svc.Sessions.RequireAdmin(a.scope.Context()); err != nil {
		a.scope.Update(func() { a.bookings = nil })
		return err
	}
	var bookings []domain.Booking
	err := a.scope.Run(func(ctx context.Context) error {
		var err error
		bookings, err = a.svc.Repo.AllBookings(ctx, rng)
		return err
	})
	a.scope.Update(func() { a.rng, a.bookings = rng, bookings })
	return err
}

func (a *AdminBookingsScreen) Search(q string) {
	a.scope.Update(func() { a.query = q })
}

func (a *AdminBookingsScreen) View() Listing[domain.Booking] {
	var l Listing[domain.Booking]
	a.scope.Read(func() {
		f := Filter{Category: CategoryAll, Query: a.query}
		l = NewListing(FilterBookings(a.bookings, nil, f, SearchAllBookings), "bookings", f)
	})
	return l
}

// ---- Admin: rooms free today ----

type AvailableScreen struct {
	screen
	rooms []domain.Room
	query string
}

func NewAvailableScreen(ctx context.Context, svc Services) *AvailableScreen {
	return &AvailableScreen{screen: newScreen(ctx, svc)}
}

func (a *AvailableScreen) Load() error {
	var rooms []domain.Room
	err := a.scope.Run(func(ctx context.Context) error {
		var err error
		rooms, err = a.svc.Repo.Rooms(ctx)
		return err
	})
	a.scope.Update(func() { a.rooms = rooms })
	return err
}

func (a *AvailableScreen) Search(q string) {
	a.scope.Update(func() { a.query = q })
}

func (a *AvailableScreen) View() Listing[domain.Room] {
	var l Listing[domain.Room]
	a.scope.Read(func() {
		l = NewListing(AvailableRooms(a.rooms, a.query, a.svc.now()), "available rooms", Filter{Category: CategoryAll, Query: a.query})
	})
	return l
}

// ---- Reports ----

type ReportView struct {
	Summary Summary             `json:"summary"`
	Items   []domain.ReportItem `json:"items"`
	Empty   bool                `json:"empty"`
	Message string              `json:"message,omitempty"`
}

type ReportsScreen struct {
	screen
	summary *Summary
}

func NewReportsScreen(ctx context.Context, svc Services) *ReportsScreen {
	return &ReportsScreen{screen: newScreen(ctx, svc)}
}

// Load fetches all bookings and rooms concurrently and aggregates them.
func (r *ReportsScreen) Load() error {
	sess, err := r.svc.Sessions.Require(r.scope.Context())
	if err != nil {
		r.scope.Update(func() { r.summary = nil })
		return err
	}
	var (
		bookings []domain.Booking
		rooms    []domain.Room
	)
	err = r.scope.Run(
		func(ctx context.Context) error {
			var err error
			bookings, err = r.svc.Repo.AllBookings(ctx, domain.DateRange{})
			return err
		},
		func(ctx context.Context) error {
			var err error
			rooms, err = r.svc.Repo.Rooms(ctx)
			return err
		},
	)
	r.scope.Update(func() {
		if err != nil {
			r.summary = nil
			return
		}
		s := Aggregate(bookings, domain.RoomsByID(rooms), sess, r.svc.now())
		r.summary = &s
	})
	return err
}

// Summary returns the last aggregate, or nil when nothing has loaded.
func (r *ReportsScreen) Summary() *Summary {
	var s *Summary
	r.scope.Read(func() { s = r.summary })
	return s
}

func (r *ReportsScreen) View() ReportView {
	s := r.Summary()
	if s == nil {
		return ReportView{Empty: true, Message: "No report data available", Items: []domain.ReportItem{}}
	}
	v := ReportView{Summary: *s, Items: s.Items()}
	if s.Total == 0 {
		v.Empty = true
		v.Message = "No bookings yet"
	}
	return v
}
