package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mosbookings/internal/adapters/export"
	server "mosbookings/internal/adapters/http_server"
	"mosbookings/internal/app"
	"mosbookings/internal/domain"
)

// ---- fakes ----

type stubAPI struct {
	auth     domain.AuthResult
	authErr  error
	rooms    []domain.Room
	roomsErr error
	mine     []map[string]any
	all      []map[string]any
	booked   []string
	updated  []domain.Room
}

func (s *stubAPI) Register(ctx context.Context, r domain.Registration) (domain.AuthResult, error) {
	return s.auth, s.authErr
}
func (s *stubAPI) Login(ctx context.Context, c domain.Credentials) (domain.AuthResult, error) {
	return s.auth, s.authErr
}
func (s *stubAPI) ListRooms(ctx context.Context) ([]domain.Room, error) { return s.rooms, s.roomsErr }
func (s *stubAPI) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	for _, r := range s.rooms {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Room{}, &domain.APIError{Kind: domain.KindStatus, Op: "get_room", Status: 404}
}
func (s *stubAPI) CreateRoom(ctx context.Context, token string, d domain.RoomDraft) (domain.Room, error) {
	return domain.Room{}, nil
}
func (s *stubAPI) UpdateRoom(ctx context.Context, token string, r domain.Room) (domain.Room, error) {
	s.updated = append(s.updated, r)
	return r, nil
}
func (s *stubAPI) DeleteRoom(ctx context.Context, token, id string) error { return nil }
func (s *stubAPI) Book(ctx context.Context, token, roomID, date string) error {
	s.booked = append(s.booked, roomID+"@"+date)
	return nil
}
func (s *stubAPI) Cancel(ctx context.Context, token, roomID, date string) error { return nil }
func (s *stubAPI) MyBookings(ctx context.Context, token string) ([]map[string]any, error) {
	return s.mine, nil
}
func (s *stubAPI) AllBookings(ctx context.Context, token string, r domain.DateRange) ([]map[string]any, error) {
	return s.all, nil
}

type stubSessions struct {
	mu   sync.Mutex
	sess *domain.Session
}

func (s *stubSessions) Load(ctx context.Context) (domain.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return domain.Session{}, false, nil
	}
	return *s.sess, true, nil
}
func (s *stubSessions) Save(ctx context.Context, sess domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = &sess
	return nil
}
func (s *stubSessions) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = nil
	return nil
}

type stubPrefs struct{ p domain.Preferences }

func (s *stubPrefs) Load(ctx context.Context) (domain.Preferences, error) { return s.p, nil }
func (s *stubPrefs) Save(ctx context.Context, p domain.Preferences) error {
	s.p = p
	return nil
}

// ---- helpers ----

var now = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func newHandler(t *testing.T, api *stubAPI, sess *domain.Session) http.Handler {
	t.Helper()
	clock := func() time.Time { return now }
	ss := app.NewSessionService(api, &stubSessions{sess: sess}, &stubPrefs{}, clock)
	svc := app.Services{Repo: app.NewRoomRepository(api, ss), Sessions: ss, Now: clock}

	srv := server.New(false)
	srv.MountHandlers(&server.Handlers{
		Svc:     svc,
		Exports: app.NewExportService(t.TempDir(), nil, export.PDF{}, export.XLSX{}),
	})
	return srv.Mux()
}

func do(t *testing.T, h http.Handler, method, path, body string, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

type problemBody struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func problemOf(t *testing.T, rr *httptest.ResponseRecorder) problemBody {
	t.Helper()
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	var p problemBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	return p
}

var rooms = []domain.Room{
	{ID: "r1", Name: "Garden Suite", Type: "Suite", Location: "Block A", Price: 120},
	{ID: "r2", Name: "Board", Type: "Conference Hall", Location: "Block B", UnavailableDates: []string{"2025-06-20"}},
}

func user() *domain.Session {
	return &domain.Session{Token: "tok", User: &domain.User{ID: "u1", Name: "Ann", Role: domain.RoleUser}}
}

// ---- tests ----

func TestHealthz(t *testing.T) {
	rr := do(t, newHandler(t, &stubAPI{}, nil), "GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestRooms_FilterAndETag(t *testing.T) {
	h := newHandler(t, &stubAPI{rooms: rooms}, nil)

	rr := do(t, h, "GET", "/v1/rooms?category=conference", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var l app.Listing[domain.Room]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &l))
	require.Len(t, l.Items, 1)
	assert.Equal(t, "r2", l.Items[0].ID)

	etag := rr.Header().Get("ETag")
	require.NotEmpty(t, etag)
	rr = do(t, h, "GET", "/v1/rooms?category=conference", "", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, rr.Code)

	rr = do(t, h, "GET", "/v1/rooms?q=nowhere", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &l))
	assert.True(t, l.Empty)
	assert.Contains(t, l.Message, "No rooms found")
}

func TestRooms_BackendFailureIsGeneric(t *testing.T) {
	api := &stubAPI{roomsErr: &domain.APIError{Kind: domain.KindTransport, Op: "list_rooms"}}
	rr := do(t, newHandler(t, api, nil), "GET", "/v1/rooms", "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, "Operation failed", problemOf(t, rr).Title)
}

func TestMyBookings_RequiresLogin(t *testing.T) {
	rr := do(t, newHandler(t, &stubAPI{rooms: rooms}, nil), "GET", "/v1/bookings/mine", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Login required", problemOf(t, rr).Title)
}

func TestBookRoom(t *testing.T) {
	api := &stubAPI{rooms: rooms}
	h := newHandler(t, api, user())

	rr := do(t, h, "POST", "/v1/rooms/r2/bookings", `{"date":"2025-06-20"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, problemOf(t, rr).Detail, "Room unavailable on 2025-06-20")

	rr = do(t, h, "POST", "/v1/rooms/r2/bookings", `{"date":"2025-06-01"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, problemOf(t, rr).Detail, "past date")

	rr = do(t, h, "POST", "/v1/rooms/r2/bookings", `{"date":"20-06-2025"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, "POST", "/v1/rooms/missing/bookings", `{"date":"2025-06-21"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, "POST", "/v1/rooms/r2/bookings", `{"date":"2025-06-21"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, []string{"r2@2025-06-21"}, api.booked)
}

func TestLogin(t *testing.T) {
	api := &stubAPI{authErr: &domain.APIError{Kind: domain.KindStatus, Op: "login", Status: 401}}
	rr := do(t, newHandler(t, api, nil), "POST", "/v1/session/login", `{"email":"a@example.com","password":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Login failed", problemOf(t, rr).Title)

	api = &stubAPI{auth: domain.AuthResult{Token: "tok", User: &domain.User{ID: "u1", Name: "Ann", Role: domain.RoleUser}}}
	h := newHandler(t, api, nil)
	rr = do(t, h, "POST", "/v1/session/login", `{"email":"a@example.com","password":"x","admin":true}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(t, h, "POST", "/v1/session/login", `{"email":"a@example.com","password":"x"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"label":"Ann (user)"`)

	rr = do(t, h, "GET", "/v1/session", "")
	assert.Contains(t, rr.Body.String(), `"logged_in":true`)
	rr = do(t, h, "DELETE", "/v1/session", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = do(t, h, "GET", "/v1/session", "")
	assert.Contains(t, rr.Body.String(), `"logged_in":false`)
}

func TestAdminRoutesNeedAdmin(t *testing.T) {
	h := newHandler(t, &stubAPI{rooms: rooms}, user())
	assert.Equal(t, http.StatusForbidden, do(t, h, "GET", "/v1/admin/bookings", "").Code)
	assert.Equal(t, http.StatusForbidden, do(t, h, "GET", "/v1/admin/available", "").Code)

	admin := &domain.Session{Token: "tok", User: &domain.User{ID: "a1", Role: domain.RoleAdmin}}
	h = newHandler(t, &stubAPI{rooms: rooms}, admin)
	rr := do(t, h, "GET", "/v1/admin/available?q=block", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var l app.Listing[domain.Room]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &l))
	assert.Len(t, l.Items, 2)

	assert.Equal(t, http.StatusBadRequest, do(t, h, "GET", "/v1/admin/bookings?start=yesterday", "").Code)
}

func TestReportAndFile(t *testing.T) {
	api := &stubAPI{rooms: rooms, all: []map[string]any{
		{"roomId": "r1", "roomName": "Garden Suite", "date": "2025-06-14", "userId": "u1"},
	}}
	h := newHandler(t, api, user())

	rr := do(t, h, "GET", "/v1/reports", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var v app.ReportView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	assert.Equal(t, 1, v.Summary.Total)
	assert.Equal(t, 100, v.Summary.OwnSharePct)

	rr = do(t, h, "GET", "/v1/reports/file?format=pdf", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "MosBookings_Report_20250615_100000.pdf")
	assert.True(t, strings.HasPrefix(rr.Body.String(), "%PDF-"))

	rr = do(t, h, "GET", "/v1/reports/file?format=doc", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, "POST", "/v1/reports/exports", `{"format":"xlsx"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var rec domain.ExportRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, "xlsx", rec.Format)
	assert.FileExists(t, rec.Path)
}

func TestPrefs(t *testing.T) {
	h := newHandler(t, &stubAPI{}, nil)
	rr := do(t, h, "PUT", "/v1/prefs", `{"notifications":true,"dark_mode":false}`)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, h, "GET", "/v1/prefs", "")
	assert.JSONEq(t, `{"notifications":true,"dark_mode":false}`, rr.Body.String())

	rr = do(t, h, "PUT", "/v1/prefs", `{"unknown":1}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLocalOnly(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := server.LocalOnly(ok)

	cases := []struct {
		name   string
		remote string
		xff    string
		want   int
	}{
		{"loopback v4", "127.0.0.1:5555", "", http.StatusNoContent},
		{"loopback v6", "[::1]:5555", "", http.StatusNoContent},
		{"remote", "192.0.2.1:5555", "", http.StatusForbidden},
		{"spoofed forwarding header", "192.0.2.1:5555", "127.0.0.1", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.RemoteAddr = tc.remote
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestAdminUpdateRoom(t *testing.T) {
	api := &stubAPI{rooms: rooms}
	h := newHandler(t, api, user())
	assert.Equal(t, http.StatusForbidden, do(t, h, "PUT", "/v1/admin/rooms/"+rooms[0].ID, `{"price":99}`).Code)
	assert.Empty(t, api.updated)

	admin := &domain.Session{Token: "tok", User: &domain.User{ID: "a1", Role: domain.RoleAdmin}}
	h = newHandler(t, api, admin)

	rr := do(t, h, "PUT", "/v1/admin/rooms/"+rooms[0].ID, `{"price":99,"roomName":"Renamed"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var got domain.Room
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, 99.0, got.Price)
	assert.Equal(t, rooms[0].Location, got.Location)
	require.Len(t, api.updated, 1)

	assert.Equal(t, http.StatusUnprocessableEntity, do(t, h, "PUT", "/v1/admin/rooms/"+rooms[0].ID, `{"price":-1}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "PUT", "/v1/admin/rooms/"+rooms[0].ID, `{}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, "PUT", "/v1/admin/rooms/missing", `{"price":10}`).Code)
	assert.Len(t, api.updated, 1)
}
