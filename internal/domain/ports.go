package domain

import "context"

// BookingAPI is the remote booking backend. Booking listings come back as loose
// JSON objects because roomId and userId may be either strings or nested objects.
type BookingAPI interface {
	Register(ctx context.Context, r Registration) (AuthResult, error)
	Login(ctx context.Context, c Credentials) (AuthResult, error)

	ListRooms(ctx context.Context) ([]Room, error)
	GetRoom(ctx context.Context, id string) (Room, error)
	CreateRoom(ctx context.Context, token string, d RoomDraft) (Room, error)
	UpdateRoom(ctx context.Context, token string, r Room) (Room, error)
	DeleteRoom(ctx context.Context, token, id string) error

	Book(ctx context.Context, token, roomID, date string) error
	Cancel(ctx context.Context, token, roomID, date string) error
	MyBookings(ctx context.Context, token string) ([]map[string]any, error)
	AllBookings(ctx context.Context, token string, r DateRange) ([]map[string]any, error)
}

type SessionStore interface {
	Load(ctx context.Context) (Session, bool, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}

type PreferenceStore interface {
	Load(ctx context.Context) (Preferences, error)
	Save(ctx context.Context, p Preferences) error
}

// ExportLog remembers generated report files.
type ExportLog interface {
	Record(ctx context.Context, r ExportRecord) (int64, error)
	Recent(ctx context.Context, limit int) ([]ExportRecord, error)
}
