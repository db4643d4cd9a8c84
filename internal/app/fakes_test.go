package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"mosbookings/internal/app"
	"mosbookings/internal/domain"
)

// ---- fakes ----

type fakeAPI struct {
	mu sync.Mutex

	auth    domain.AuthResult
	authErr error

	rooms    []domain.Room
	roomsErr error
	room     domain.Room
	roomErr  error

	mine    []map[string]any
	all     []map[string]any
	listErr error

	bookErr   error
	updateErr error
	updated   []domain.Room
	calls   []string
	tokens  []string
	booked  [][2]string
	created []domain.RoomDraft
	ranges  []domain.DateRange
}

func (f *fakeAPI) record(call, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if token != "" {
		f.tokens = append(f.tokens, token)
	}
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) Register(ctx context.Context, r domain.Registration) (domain.AuthResult, error) {
	f.record("register", "")
	return f.auth, f.authErr
}

func (f *fakeAPI) Login(ctx context.Context, c domain.Credentials) (domain.AuthResult, error) {
	f.record("login", "")
	return f.auth, f.authErr
}

func (f *fakeAPI) ListRooms(ctx context.Context) ([]domain.Room, error) {
	f.record("list_rooms", "")
	if f.roomsErr != nil {
		return nil, f.roomsErr
	}
	return append([]domain.Room(nil), f.rooms...), nil
}

func (f *fakeAPI) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	f.record("get_room", "")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.room, f.roomErr
}

func (f *fakeAPI) CreateRoom(ctx context.Context, token string, d domain.RoomDraft) (domain.Room, error) {
	f.record("create_room", token)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bookErr != nil {
		return domain.Room{}, f.bookErr
	}
	f.created = append(f.created, d)
	return domain.Room{ID: "new-" + d.Name, Name: d.Name}, nil
}

func (f *fakeAPI) UpdateRoom(ctx context.Context, token string, r domain.Room) (domain.Room, error) {
	f.record("update_room", token)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return domain.Room{}, f.updateErr
	}
	f.updated = append(f.updated, r)
	return r, nil
}

func (f *fakeAPI) DeleteRoom(ctx context.Context, token, id string) error {
	f.record("delete_room", token)
	return nil
}

func (f *fakeAPI) Book(ctx context.Context, token, roomID, date string) error {
	f.record("book", token)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bookErr != nil {
		return f.bookErr
	}
	f.booked = append(f.booked, [2]string{roomID, date})
	f.room.UnavailableDates = append(f.room.UnavailableDates, date)
	return nil
}

func (f *fakeAPI) Cancel(ctx context.Context, token, roomID, date string) error {
	f.record("cancel", token)
	return f.bookErr
}

func (f *fakeAPI) MyBookings(ctx context.Context, token string) ([]map[string]any, error) {
	f.record("my_bookings", token)
	return f.mine, f.listErr
}

func (f *fakeAPI) AllBookings(ctx context.Context, token string, r domain.DateRange) ([]map[string]any, error) {
	f.record("all_bookings", token)
	f.mu.Lock()
	f.ranges = append(f.ranges, r)
	f.mu.Unlock()
	return f.all, f.listErr
}

type memSessions struct {
	mu   sync.Mutex
	sess *domain.Session
}

func (m *memSessions) Load(ctx context.Context) (domain.Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return domain.Session{}, false, nil
	}
	return *m.sess, true, nil
}

func (m *memSessions) Save(ctx context.Context, s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = &s
	return nil
}

func (m *memSessions) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	return nil
}

type memPrefs struct{ p domain.Preferences }

func (m *memPrefs) Load(ctx context.Context) (domain.Preferences, error) { return m.p, nil }
func (m *memPrefs) Save(ctx context.Context, p domain.Preferences) error {
	m.p = p
	return nil
}

// ---- helpers ----

// fixedNow is mid-June so the six-month window stays inside one year.
var fixedNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func userSession(id string, role domain.Role) *domain.Session {
	return &domain.Session{Token: "opaque-token", User: &domain.User{ID: id, Name: "Test " + id, Role: role, Email: id + "@example.com"}}
}

type env struct {
	api      *fakeAPI
	sessions *memSessions
	svc      app.Services
}

func newEnv(t *testing.T, api *fakeAPI, sess *domain.Session) env {
	t.Helper()
	store := &memSessions{sess: sess}
	ss := app.NewSessionService(api, store, &memPrefs{}, clock)
	return env{
		api:      api,
		sessions: store,
		svc:      app.Services{Repo: app.NewRoomRepository(api, ss), Sessions: ss, Now: clock},
	}
}

func statusErr(op string, code int) error {
	return &domain.APIError{Kind: domain.KindStatus, Op: op, Status: code}
}
