package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"mosbookings/internal/domain"
)

var (
	ErrMissingCredentials = errors.New("please enter both email and password")
	ErrAdminRegistration  = errors.New("admin registration not allowed here, please contact administrator")
)

// SessionService owns login state and the preference toggles.
type SessionService struct {
	api   domain.BookingAPI
	store domain.SessionStore
	prefs domain.PreferenceStore
	now   func() time.Time
}

func NewSessionService(api domain.BookingAPI, store domain.SessionStore, prefs domain.PreferenceStore, now func() time.Time) *SessionService {
	if now == nil {
		now = time.Now
	}
	return &SessionService{api: api, store: store, prefs: prefs, now: now}
}

// Login authenticates and persists the session.
func (s *SessionService) Login(ctx context.Context, c domain.Credentials) (domain.Session, error) {
	res, err := s.authenticate(ctx, c)
	if err != nil {
		return domain.Session{}, err
	}
	return s.persist(ctx, res)
}

// AdminLogin is Login restricted to administrators; other roles are not persisted.
func (s *SessionService) AdminLogin(ctx context.Context, c domain.Credentials) (domain.Session, error) {
	res, err := s.authenticate(ctx, c)
	if err != nil {
		return domain.Session{}, err
	}
	if res.User == nil || !strings.EqualFold(string(res.User.Role), string(domain.RoleAdmin)) {
		log.Warn().Str("email", c.Email).Msg("non-admin attempted admin login")
		return domain.Session{}, domain.ErrNotAdmin
	}
	return s.persist(ctx, res)
}

func (s *SessionService) authenticate(ctx context.Context, c domain.Credentials) (domain.AuthResult, error) {
	c.Email = strings.TrimSpace(c.Email)
	c.Password = strings.TrimSpace(c.Password)
	if c.Email == "" || c.Password == "" {
		return domain.AuthResult{}, ErrMissingCredentials
	}
	res, err := s.api.Login(ctx, c)
	if err != nil {
		log.Warn().Err(err).Str("email", c.Email).Msg("login failed")
		return domain.AuthResult{}, err
	}
	return res, nil
}

// Register creates an account. loggedIn is false when the backend accepted the
// registration without issuing a token; the user then has to log in.
func (s *SessionService) Register(ctx context.Context, r domain.Registration) (sess domain.Session, loggedIn bool, err error) {
	if err := Validate(r); err != nil {
		return domain.Session{}, false, err
	}
	res, err := s.api.Register(ctx, r)
	if err != nil {
		log.Warn().Err(err).Str("email", r.Email).Msg("register failed")
		return domain.Session{}, false, err
	}
	if res.User != nil && strings.EqualFold(string(res.User.Role), string(domain.RoleAdmin)) {
		return domain.Session{}, false, ErrAdminRegistration
	}
	if res.Token == "" {
		return domain.Session{}, false, nil
	}
	if res.User != nil {
		res.User.Phone = r.Phone
	}
	sess, err = s.persist(ctx, res)
	return sess, err == nil, err
}

func (s *SessionService) persist(ctx context.Context, res domain.AuthResult) (domain.Session, error) {
	sess := domain.Session{Token: res.Token, User: res.User}
	if sess.User != nil {
		sess.User.Role = domain.Role(strings.ToLower(string(sess.User.Role)))
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}
	log.Info().Str("user", sess.UserID()).Str("role", roleOf(sess)).Msg("session saved")
	return sess, nil
}

func (s *SessionService) Logout(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// Current returns the stored session without checking expiry.
func (s *SessionService) Current(ctx context.Context) (domain.Session, bool, error) {
	return s.store.Load(ctx)
}

// Require returns a usable session or an error matching domain.ErrNoSession.
// A JWT whose exp has passed counts as no session.
func (s *SessionService) Require(ctx context.Context) (domain.Session, error) {
	sess, ok, err := s.store.Load(ctx)
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return domain.Session{}, domain.ErrNoSession
	}
	if tokenExpired(sess.Token, s.now()) {
		return domain.Session{}, fmt.Errorf("%w: token expired", domain.ErrNoSession)
	}
	return sess, nil
}

func (s *SessionService) RequireAdmin(ctx context.Context) (domain.Session, error) {
	sess, err := s.Require(ctx)
	if err != nil {
		return sess, err
	}
	if !sess.IsAdmin() {
		return domain.Session{}, domain.ErrNotAdmin
	}
	return sess, nil
}

func (s *SessionService) Preferences(ctx context.Context) (domain.Preferences, error) {
	return s.prefs.Load(ctx)
}

func (s *SessionService) SetPreferences(ctx context.Context, p domain.Preferences) error {
	return s.prefs.Save(ctx, p)
}

// tokenExpired peeks at the exp claim without verifying the signature; the
// backend stays the authority. Opaque tokens never expire client-side.
func tokenExpired(tok string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

func roleOf(s domain.Session) string {
	if s.User == nil {
		return ""
	}
	return string(s.User.Role)
}
