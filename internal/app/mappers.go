package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"mosbookings/internal/domain"
)

// The bookings endpoints return loosely shaped objects: roomId may be a plain id
// or a populated room document, userId a plain id or a populated user.

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// stringify renders scalars the way they read; nil and objects give "".
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// firstString returns the first non-empty string among paths.
func firstString(m map[string]any, paths ...string) string {
	for _, p := range paths {
		if s := stringify(lookupAny(m, p)); s != "" {
			return s
		}
	}
	return ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// roomRef extracts the room id from a string or an object carrying _id/id.
func roomRef(m map[string]any) string {
	switch v := m["roomId"].(type) {
	case string:
		return v
	case map[string]any:
		return firstString(v, "_id", "id")
	}
	return ""
}

// mapOwnBooking maps an entry of the caller's own bookings. ok is false when
// the entry has no room reference.
func mapOwnBooking(m map[string]any) (domain.Booking, bool) {
	id := roomRef(m)
	if id == "" {
		log.Warn().Interface("booking", m).Msg("skipping booking without roomId")
		return domain.Booking{}, false
	}
	user := ""
	switch v := m["userId"].(type) {
	case map[string]any:
		user = firstString(v, "_id", "id")
	default:
		user = stringify(v)
	}
	return domain.Booking{
		RoomID:   id,
		RoomName: orDash(firstString(m, "roomName", "roomId.roomName")),
		Date:     orDash(stringify(m["date"])),
		User:     orDash(user),
	}, true
}

// mapAdminBooking maps an entry of the all-bookings listing, where the user is
// shown by email, falling back to name.
func mapAdminBooking(m map[string]any) (domain.Booking, bool) {
	id := roomRef(m)
	if id == "" {
		log.Warn().Interface("booking", m).Msg("skipping booking without roomId")
		return domain.Booking{}, false
	}
	user := ""
	switch v := m["userId"].(type) {
	case string:
		user = v
	case map[string]any:
		user = firstString(v, "email", "name")
	default:
		log.Warn().Interface("userId", v).Msg("unknown user format")
	}
	return domain.Booking{
		RoomID:   id,
		RoomName: orDash(firstString(m, "roomName", "roomId.roomName")),
		Date:     orDash(stringify(m["date"])),
		User:     orDash(user),
	}, true
}

func mapBookings(raw []map[string]any, mapOne func(map[string]any) (domain.Booking, bool)) []domain.Booking {
	out := make([]domain.Booking, 0, len(raw))
	for _, m := range raw {
		if b, ok := mapOne(m); ok {
			out = append(out, b)
		}
	}
	return out
}
