// internal/adapters/mosapi/client.go
package mosapi

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"mosbookings/internal/adapters/observability"
	"mosbookings/internal/domain"
)

// Client talks to the booking backend. It paces requests client-side and,
// when configured with retries > 0, retries 429 and transient 5xx responses.
type Client struct {
	base    string
	hc      *http.Client
	rl      *rate.Limiter
	retries int
	now     func() time.Time
}

type Options struct {
	RPS     int
	Retries int // extra attempts after the first; 0 disables retrying
	Timeout time.Duration
}

func New(base string, o Options) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", base)
	}
	if o.RPS <= 0 {
		o.RPS = 5
	}
	if o.Timeout <= 0 {
		o.Timeout = 20 * time.Second
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	return &Client{
		base:    strings.TrimRight(base, "/"),
		hc:      &http.Client{Timeout: o.Timeout},
		rl:      rate.NewLimiter(rate.Limit(o.RPS), o.RPS),
		retries: o.Retries,
		now:     time.Now,
	}, nil
}

// ---- Public API ----

func (c *Client) Register(ctx context.Context, r domain.Registration) (domain.AuthResult, error) {
	var out domain.AuthResult
	err := c.do(ctx, call{
		op: "auth.register", method: http.MethodPost, path: "/api/auth/register",
		body: jsonBody(map[string]string{
			"name": r.Name, "email": r.Email, "phone": r.Phone, "password": r.Password,
		}),
	}, &out)
	return out, err
}

func (c *Client) Login(ctx context.Context, cr domain.Credentials) (domain.AuthResult, error) {
	var out domain.AuthResult
	err := c.do(ctx, call{
		op: "auth.login", method: http.MethodPost, path: "/api/auth/login",
		body: jsonBody(map[string]string{"email": cr.Email, "password": cr.Password}),
	}, &out)
	if err == nil && out.Token == "" {
		err = &domain.APIError{Kind: domain.KindDecode, Op: "auth.login", Status: http.StatusOK, Err: errors.New("response has no token")}
	}
	return out, err
}

func (c *Client) ListRooms(ctx context.Context) ([]domain.Room, error) {
	var out []domain.Room
	return out, c.do(ctx, call{op: "rooms.list", method: http.MethodGet, path: "/api/rooms"}, &out)
}

func (c *Client) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	var out domain.Room
	return out, c.do(ctx, call{op: "rooms.get", method: http.MethodGet, path: "/api/rooms/" + url.PathEscape(id)}, &out)
}

func (c *Client) CreateRoom(ctx context.Context, token string, d domain.RoomDraft) (domain.Room, error) {
	var out domain.Room
	stamp := c.now().UnixMilli()
	err := c.do(ctx, call{
		op: "rooms.create", method: http.MethodPost, path: "/api/rooms", token: token,
		body: func() (io.Reader, string, error) { return roomMultipart(d, stamp) },
	}, &out)
	return out, err
}

func (c *Client) UpdateRoom(ctx context.Context, token string, r domain.Room) (domain.Room, error) {
	var out domain.Room
	err := c.do(ctx, call{
		op: "rooms.update", method: http.MethodPut, path: "/api/rooms/" + url.PathEscape(r.ID), token: token,
		body: jsonBody(r),
	}, &out)
	return out, err
}

func (c *Client) DeleteRoom(ctx context.Context, token, id string) error {
	return c.do(ctx, call{op: "rooms.delete", method: http.MethodDelete, path: "/api/rooms/" + url.PathEscape(id), token: token}, nil)
}

func (c *Client) Book(ctx context.Context, token, roomID, date string) error {
	return c.do(ctx, call{
		op: "bookings.book", method: http.MethodPost, path: "/api/bookings/book", token: token,
		body: jsonBody(map[string]string{"roomId": roomID, "date": date}),
	}, nil)
}

func (c *Client) Cancel(ctx context.Context, token, roomID, date string) error {
	return c.do(ctx, call{
		op: "bookings.cancel", method: http.MethodPost, path: "/api/bookings/cancel", token: token,
		body: jsonBody(map[string]string{"roomId": roomID, "date": date}),
	}, nil)
}

func (c *Client) MyBookings(ctx context.Context, token string) ([]map[string]any, error) {
	var out []map[string]any
	return out, c.do(ctx, call{op: "bookings.my", method: http.MethodGet, path: "/api/bookings/my", token: token}, &out)
}

func (c *Client) AllBookings(ctx context.Context, token string, r domain.DateRange) ([]map[string]any, error) {
	q := url.Values{}
	if r.Start != "" {
		q.Set("startDate", r.Start)
	}
	if r.End != "" {
		q.Set("endDate", r.End)
	}
	var out []map[string]any
	return out, c.do(ctx, call{op: "bookings.all", method: http.MethodGet, path: "/api/bookings/all", query: q, token: token}, &out)
}

// ---- Internals ----

type call struct {
	op     string
	method string
	path   string
	query  url.Values
	token  string
	// body builds a fresh request body per attempt; nil means no body.
	body func() (io.Reader, string, error)
}

func jsonBody(v any) func() (io.Reader, string, error) {
	return func() (io.Reader, string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(b), "application/json", nil
	}
}

// do performs one logical call and decodes JSON into out. Every attempt,
// retries included, waits on the rate limiter. Every failure comes back as a
// *domain.APIError.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	u := c.base + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}

	var lastErr error
	for i := 0; i <= c.retries; i++ {
		if err := c.rl.Wait(ctx); err != nil {
			return &domain.APIError{Kind: domain.KindTransport, Op: cl.op, Err: err}
		}

		// build a fresh request each attempt
		var body io.Reader
		var ctype string
		if cl.body != nil {
			b, ct, err := cl.body()
			if err != nil {
				return &domain.APIError{Kind: domain.KindTransport, Op: cl.op, Err: fmt.Errorf("encode request: %w", err)}
			}
			body, ctype = b, ct
		}
		req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
		if err != nil {
			return &domain.APIError{Kind: domain.KindTransport, Op: cl.op, Err: fmt.Errorf("build request: %w", err)}
		}
		if ctype != "" {
			req.Header.Set("Content-Type", ctype)
		}
		if cl.token != "" {
			req.Header.Set("Authorization", "Bearer "+cl.token)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "mosbookings/1.0")
		req.Header.Set("X-Request-ID", uuid.NewString())

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(cl.op, 0, time.Since(start))
			lastErr = &domain.APIError{Kind: domain.KindTransport, Op: cl.op, Err: err}
			if ctx.Err() != nil {
				return &domain.APIError{Kind: domain.KindTransport, Op: cl.op, Err: ctx.Err()}
			}
			if i < c.retries && sleepCtx(ctx, backoff(i)) {
				continue
			}
			return lastErr
		}
		observability.ObserveExternal(cl.op, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			defer resp.Body.Close()
			if out == nil {
				io.Copy(io.Discard, resp.Body)
				return nil
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return &domain.APIError{Kind: domain.KindDecode, Op: cl.op, Status: resp.StatusCode, Err: err}
			}
			return nil

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			lastErr = statusError(cl.op, resp)
			if wait == 0 {
				wait = backoff(i)
			}
			if i < c.retries && sleepCtx(ctx, wait) {
				continue
			}
			return lastErr

		default:
			return statusError(cl.op, resp)
		}
	}
	return lastErr
}

// statusError reads a small error body for diagnostics and closes resp.
func statusError(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
	return &domain.APIError{
		Kind:   domain.KindStatus,
		Op:     op,
		Status: resp.StatusCode,
		Body:   serverMessage(b),
	}
}

// serverMessage prefers {"message": "..."} / {"error": "..."} over the raw body.
func serverMessage(b []byte) string {
	var m map[string]any
	if json.Unmarshal(b, &m) == nil {
		for _, k := range []string{"message", "error", "msg"} {
			if s, ok := m[k].(string); ok && s != "" {
				return s
			}
		}
	}
	return strings.TrimSpace(string(b))
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns 200ms, 400ms, 800ms... with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
