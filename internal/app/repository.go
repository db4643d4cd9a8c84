package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"mosbookings/internal/adapters/observability"
	"mosbookings/internal/domain"
)

// RoomRepository is the single gateway to the booking backend. Every method is
// one round trip. On failure it returns the empty value (nil room, empty list,
// false) together with an error that says why.
type RoomRepository struct {
	api      domain.BookingAPI
	sessions *SessionService
	now      func() time.Time
}

func NewRoomRepository(api domain.BookingAPI, sessions *SessionService) *RoomRepository {
	return &RoomRepository{api: api, sessions: sessions, now: time.Now}
}

func (r *RoomRepository) token(ctx context.Context, op string, admin bool) (string, error) {
	var (
		sess domain.Session
		err  error
	)
	if admin {
		sess, err = r.sessions.RequireAdmin(ctx)
	} else {
		sess, err = r.sessions.Require(ctx)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNoSession) {
			err = &domain.APIError{Kind: domain.KindNoSession, Op: op, Err: err}
		}
		r.fail(op, err)
		return "", err
	}
	return sess.Token, nil
}

func (r *RoomRepository) fail(op string, err error) {
	observability.ObserveFailure(op, err)
	ev := log.Warn()
	if domain.KindOf(err) == domain.KindTransport {
		ev = log.Error()
	}
	ev.Err(err).Str("op", op).Str("kind", domain.KindOf(err).String()).Msg("booking api call failed")
}

func (r *RoomRepository) Rooms(ctx context.Context) ([]domain.Room, error) {
	start := r.now()
	rooms, err := r.api.ListRooms(ctx)
	if err != nil {
		r.fail("list_rooms", err)
		return []domain.Room{}, err
	}
	log.Debug().Int("rooms", len(rooms)).Dur("took", r.now().Sub(start)).Msg("rooms loaded")
	return rooms, nil
}

func (r *RoomRepository) Room(ctx context.Context, id string) (*domain.Room, error) {
	room, err := r.api.GetRoom(ctx, id)
	if err != nil {
		r.fail("get_room", err)
		return nil, err
	}
	return &room, nil
}

// CreateRoom validates the draft locally before anything is sent.
func (r *RoomRepository) CreateRoom(ctx context.Context, d domain.RoomDraft) (*domain.Room, error) {
	if err := Validate(d); err != nil {
		return nil, err
	}
	tok, err := r.token(ctx, "create_room", true)
	if err != nil {
		return nil, err
	}
	room, err := r.api.CreateRoom(ctx, tok, d)
	if err != nil {
		r.fail("create_room", err)
		return nil, err
	}
	log.Info().Str("room", room.ID).Str("name", room.Name).Int("images", len(d.Images)).Msg("room created")
	return &room, nil
}

func (r *RoomRepository) UpdateRoom(ctx context.Context, room domain.Room) (*domain.Room, error) {
	tok, err := r.token(ctx, "update_room", true)
	if err != nil {
		return nil, err
	}
	out, err := r.api.UpdateRoom(ctx, tok, room)
	if err != nil {
		r.fail("update_room", err)
		return nil, err
	}
	return &out, nil
}

// EditRoom applies e to the room as the backend currently has it and saves
// the result. Validation and the admin check run before any round trip.
func (r *RoomRepository) EditRoom(ctx context.Context, id string, e RoomEdit) (*domain.Room, error) {
	if e.Empty() {
		return nil, ErrEmptyEdit
	}
	if err := Validate(e); err != nil {
		return nil, err
	}
	if _, err := r.token(ctx, "update_room", true); err != nil {
		return nil, err
	}
	cur, err := r.Room(ctx, id)
	if err != nil {
		return nil, err
	}
	room, err := r.UpdateRoom(ctx, e.Apply(*cur))
	if err != nil {
		return nil, err
	}
	log.Info().Str("room", room.ID).Msg("room updated")
	return room, nil
}

func (r *RoomRepository) DeleteRoom(ctx context.Context, id string) (bool, error) {
	tok, err := r.token(ctx, "delete_room", true)
	if err != nil {
		return false, err
	}
	if err := r.api.DeleteRoom(ctx, tok, id); err != nil {
		r.fail("delete_room", err)
		return false, err
	}
	log.Info().Str("room", id).Msg("room deleted")
	return true, nil
}

func (r *RoomRepository) Book(ctx context.Context, roomID, date string) (bool, error) {
	tok, err := r.token(ctx, "book", false)
	if err != nil {
		return false, err
	}
	if err := r.api.Book(ctx, tok, roomID, date); err != nil {
		r.fail("book", err)
		return false, err
	}
	log.Info().Str("room", roomID).Str("date", date).Msg("room booked")
	return true, nil
}

func (r *RoomRepository) Cancel(ctx context.Context, roomID, date string) (bool, error) {
	tok, err := r.token(ctx, "cancel", false)
	if err != nil {
		return false, err
	}
	if err := r.api.Cancel(ctx, tok, roomID, date); err != nil {
		r.fail("cancel", err)
		return false, err
	}
	log.Info().Str("room", roomID).Str("date", date).Msg("booking cancelled")
	return true, nil
}

func (r *RoomRepository) MyBookings(ctx context.Context) ([]domain.Booking, error) {
	tok, err := r.token(ctx, "my_bookings", false)
	if err != nil {
		return []domain.Booking{}, err
	}
	raw, err := r.api.MyBookings(ctx, tok)
	if err != nil {
		r.fail("my_bookings", err)
		return []domain.Booking{}, err
	}
	out := mapBookings(raw, mapOwnBooking)
	log.Debug().Int("raw", len(raw)).Int("bookings", len(out)).Msg("own bookings loaded")
	return out, nil
}

// AllBookings lists every booking; either end of the range may be empty.
func (r *RoomRepository) AllBookings(ctx context.Context, rng domain.DateRange) ([]domain.Booking, error) {
	tok, err := r.token(ctx, "all_bookings", false)
	if err != nil {
		return []domain.Booking{}, err
	}
	raw, err := r.api.AllBookings(ctx, tok, rng)
	if err != nil {
		r.fail("all_bookings", err)
		return []domain.Booking{}, err
	}
	out := mapBookings(raw, mapAdminBooking)
	log.Debug().Int("raw", len(raw)).Int("bookings", len(out)).Str("start", rng.Start).Str("end", rng.End).Msg("all bookings loaded")
	return out, nil
}
