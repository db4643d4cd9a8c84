// internal/adapters/http_server/handlers.go
package httpserver

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"mosbookings/internal/app"
	"mosbookings/internal/domain"
)

// Handlers serve each screen's view model to a local front end. Every request
// opens the screen, loads it, renders it and closes it again.
type Handlers struct {
	Svc     app.Services
	Exports *app.ExportService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/session", h.currentSession)
		r.Post("/session/login", h.login)
		r.Post("/session/register", h.register)
		r.Delete("/session", h.logout)

		r.Get("/prefs", h.getPrefs)
		r.Put("/prefs", h.putPrefs)

		r.Get("/rooms", h.listRooms)
		r.Get("/rooms/{id}", h.getRoom)
		r.Post("/rooms/{id}/bookings", h.bookRoom)

		r.Get("/bookings/mine", h.myBookings)
		r.Post("/bookings/cancel", h.cancelBooking)

		r.Get("/admin/bookings", h.adminBookings)
		r.Get("/admin/available", h.adminAvailable)
		r.Put("/admin/rooms/{id}", h.adminUpdateRoom)

		r.Get("/reports", h.report)
		r.Get("/reports/file", h.reportFile)
		r.Post("/reports/exports", h.saveReport)
		r.Get("/reports/exports", h.exportHistory)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps application errors onto problems. Backend failures of any
// kind share one generic message; a missing session asks the user to log in.
func writeError(w http.ResponseWriter, err error) {
	var ve *app.ValidationError
	switch {
	case errors.Is(err, domain.ErrNoSession):
		writeProblem(w, http.StatusUnauthorized, "Login required", "please log in to continue")
	case errors.Is(err, domain.ErrNotAdmin), errors.Is(err, app.ErrAdminRegistration):
		writeProblem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.As(err, &ve):
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid input", ve.Error())
	case errors.Is(err, domain.ErrInvalidDate), errors.Is(err, app.ErrMissingCredentials), errors.Is(err, app.ErrUnknownFormat),
		errors.Is(err, app.ErrEmptyEdit):
		writeProblem(w, http.StatusBadRequest, "Bad request", err.Error())
	case errors.Is(err, app.ErrBookingRejected):
		writeProblem(w, http.StatusConflict, "Booking rejected", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "not found")
	case domain.KindOf(err) != 0:
		writeProblem(w, http.StatusBadGateway, "Operation failed", "the operation failed, please try again")
	default:
		log.Error().Err(err).Msg("unexpected handler error")
		writeProblem(w, http.StatusInternalServerError, "Internal error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

// writeView sends v as JSON with a weak ETag and honours If-None-Match.
func writeView(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal error", "")
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return false
	}
	return true
}

func filterFrom(r *http.Request) app.Filter {
	q := r.URL.Query()
	return app.Filter{Category: app.ParseCategory(q.Get("category")), Query: q.Get("q")}
}

// ---- session ----

type sessionView struct {
	LoggedIn bool         `json:"logged_in"`
	Label    string       `json:"label"`
	User     *domain.User `json:"user,omitempty"`
}

func viewOf(s domain.Session, ok bool) sessionView {
	if !ok {
		s = domain.Session{}
	}
	return sessionView{LoggedIn: ok, Label: s.Label(), User: s.User}
}

func (h *Handlers) currentSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.Svc.Sessions.Require(r.Context())
	if errors.Is(err, domain.ErrNoSession) {
		writeJSON(w, http.StatusOK, viewOf(domain.Session{}, false))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s, true))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Admin    bool   `json:"admin"`
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	c := domain.Credentials{Email: req.Email, Password: req.Password}
	var (
		s   domain.Session
		err error
	)
	if req.Admin {
		s, err = h.Svc.Sessions.AdminLogin(r.Context(), c)
	} else {
		s, err = h.Svc.Sessions.Login(r.Context(), c)
	}
	if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusUnauthorized, "Login failed", "invalid email or password")
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s, true))
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}
	s, loggedIn, err := h.Svc.Sessions.Register(r.Context(), domain.Registration(req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(s, loggedIn))
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Sessions.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) getPrefs(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.Sessions.Preferences(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) putPrefs(w http.ResponseWriter, r *http.Request) {
	var p domain.Preferences
	if !decode(w, r, &p) {
		return
	}
	if err := h.Svc.Sessions.SetPreferences(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ---- rooms ----

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	home := app.NewHomeScreen(r.Context(), h.Svc)
	defer home.Close()
	if err := home.Load(); err != nil {
		writeError(w, err)
		return
	}
	home.SetFilter(filterFrom(r))
	writeView(w, r, home.View())
}

func (h *Handlers) getRoom(w http.ResponseWriter, r *http.Request) {
	d := app.NewRoomDetailsScreen(r.Context(), h.Svc, chi.URLParam(r, "id"))
	defer d.Close()
	if err := d.Load(); err != nil {
		writeError(w, err)
		return
	}
	writeView(w, r, d.View())
}

type bookRequest struct {
	Date string `json:"date"`
}

type bookResponse struct {
	Outcome string `json:"outcome"`
	Message string `json:"message"`
}

func (h *Handlers) bookRoom(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if !decode(w, r, &req) {
		return
	}
	d := app.NewRoomDetailsScreen(r.Context(), h.Svc, chi.URLParam(r, "id"))
	defer d.Close()
	if err := d.Load(); err != nil {
		writeError(w, err)
		return
	}
	a, err := d.Book(req.Date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookResponse{Outcome: a.String(), Message: "Room booked for " + req.Date})
}

// ---- bookings ----

func (h *Handlers) myBookings(w http.ResponseWriter, r *http.Request) {
	m := app.NewMyBookingsScreen(r.Context(), h.Svc)
	defer m.Close()
	if err := m.Load(); err != nil {
		writeError(w, err)
		return
	}
	m.SetFilter(filterFrom(r))
	writeView(w, r, m.View())
}

type cancelRequest struct {
	RoomID string `json:"roomId"`
	Date   string `json:"date"`
}

func (h *Handlers) cancelBooking(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if !decode(w, r, &req) {
		return
	}
	if req.RoomID == "" || req.Date == "" {
		writeProblem(w, http.StatusBadRequest, "Bad request", "roomId and date are required")
		return
	}
	m := app.NewMyBookingsScreen(r.Context(), h.Svc)
	defer m.Close()
	if err := m.Cancel(req.RoomID, req.Date); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m.View())
}

func (h *Handlers) adminBookings(w http.ResponseWriter, r *http.Request) {
	a := app.NewAdminBookingsScreen(r.Context(), h.Svc)
	defer a.Close()
	q := r.URL.Query()
	if err := a.Load(domain.DateRange{Start: q.Get("start"), End: q.Get("end")}); err != nil {
		writeError(w, err)
		return
	}
	a.Search(q.Get("q"))
	writeView(w, r, a.View())
}

func (h *Handlers) adminAvailable(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Svc.Sessions.RequireAdmin(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	a := app.NewAvailableScreen(r.Context(), h.Svc)
	defer a.Close()
	if err := a.Load(); err != nil {
		writeError(w, err)
		return
	}
	a.Search(r.URL.Query().Get("q"))
	writeView(w, r, a.View())
}

// ---- reports ----

func (h *Handlers) adminUpdateRoom(w http.ResponseWriter, r *http.Request) {
	var e app.RoomEdit
	if !decode(w, r, &e) {
		return
	}
	room, err := h.Svc.Repo.EditRoom(r.Context(), chi.URLParam(r, "id"), e)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *Handlers) loadReport(w http.ResponseWriter, r *http.Request) (*app.Summary, bool) {
	rs := app.NewReportsScreen(r.Context(), h.Svc)
	defer rs.Close()
	if err := rs.Load(); err != nil {
		writeError(w, err)
		return nil, false
	}
	sum := rs.Summary()
	if sum == nil {
		writeProblem(w, http.StatusServiceUnavailable, "Operation failed", "report not available")
		return nil, false
	}
	return sum, true
}

func (h *Handlers) report(w http.ResponseWriter, r *http.Request) {
	rs := app.NewReportsScreen(r.Context(), h.Svc)
	defer rs.Close()
	if err := rs.Load(); err != nil {
		writeError(w, err)
		return
	}
	writeView(w, r, rs.View())
}

var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// reportFile streams the report as a download without keeping a copy.
func (h *Handlers) reportFile(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "pdf"
	}
	sum, ok := h.loadReport(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.Exports.WriteTo(&buf, *sum, format); err != nil {
		writeError(w, err)
		return
	}
	ct := contentTypes[format]
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", `attachment; filename="`+app.ExportFileName(sum.GeneratedAt, format)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Error().Err(err).Msg("failed to write report file")
	}
}

type exportRequest struct {
	Format string `json:"format"`
}

func (h *Handlers) saveReport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := h.Svc.Sessions.Require(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	sum, ok := h.loadReport(w, r)
	if !ok {
		return
	}
	rec, err := h.Exports.Export(r.Context(), *sum, sess, req.Format)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handlers) exportHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recs, err := h.Exports.History(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
