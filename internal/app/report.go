package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"mosbookings/internal/domain"
)

// Summary is the folded view of a booking list. It is recomputed on every view.
type Summary struct {
	GeneratedAt time.Time `json:"generated_at"`
	ReportFor   string    `json:"report_for"`

	Total     int `json:"total"`
	Own       int `json:"own"`
	Others    int `json:"others"`
	ThisMonth int `json:"this_month"`
	Last7Days int `json:"last_7_days"`
	AvgPerDay int `json:"avg_per_day"`

	OwnThisMonth int `json:"own_this_month"`
	OwnLast7Days int `json:"own_last_7_days"`
	OwnSharePct  int `json:"own_share_pct"`

	MostPopular *domain.Count `json:"most_popular,omitempty"`
	OwnFavorite *domain.Count `json:"own_favorite,omitempty"`

	ByRoomType []domain.Count `json:"by_room_type"`
	Monthly    []domain.Count `json:"monthly"`
}

// Aggregate folds bookings into a Summary for the session's user at now.
// A booking is the user's own when its user matches the session's id or email.
// With no user id every booking counts as the user's own.
func Aggregate(bookings []domain.Booking, rooms map[string]domain.Room, sess domain.Session, now time.Time) Summary {
	s := Summary{GeneratedAt: now, ReportFor: sess.Label(), Total: len(bookings)}

	uid := sess.UserID()
	email := ""
	if sess.User != nil {
		email = sess.User.Email
	}
	month := now.Format("2006-01")
	today := startOfDay(now)
	weekStart := today.AddDate(0, 0, -6)

	own := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		isOwn := uid == "" || b.User == uid || (email != "" && strings.EqualFold(b.User, email))
		if isOwn {
			own = append(own, b)
		}
		inMonth := strings.HasPrefix(b.Date, month)
		inWeek := false
		if d, err := ParseDate(b.Date, now.Location()); err == nil {
			inWeek = !d.Before(weekStart) && !d.After(today)
		}
		if inMonth {
			s.ThisMonth++
		}
		if inWeek {
			s.Last7Days++
		}
		if isOwn && inMonth {
			s.OwnThisMonth++
		}
		if isOwn && inWeek {
			s.OwnLast7Days++
		}
	}
	s.Own = len(own)
	s.Others = s.Total - s.Own
	if s.Total > 0 {
		s.OwnSharePct = s.Own * 100 / s.Total
	}
	s.MostPopular = MostFrequentRoom(bookings)
	s.OwnFavorite = MostFrequentRoom(own)
	s.AvgPerDay = avgPerDay(bookings, now)
	s.ByRoomType = countByRoomType(bookings, rooms)
	s.Monthly = lastMonths(bookings, now, 6)
	return s
}

// MostFrequentRoom returns the most booked room name, or nil for no bookings.
// Ties go to the name seen first in a single left-to-right scan.
func MostFrequentRoom(bookings []domain.Booking) *domain.Count {
	counts := tally(bookings, func(b domain.Booking) string { return b.RoomName })
	var best *domain.Count
	for i := range counts {
		if best == nil || counts[i].Count > best.Count {
			best = &counts[i]
		}
	}
	if best == nil {
		return nil
	}
	c := *best
	return &c
}

// tally counts keys in first-seen order.
func tally(bookings []domain.Booking, key func(domain.Booking) string) []domain.Count {
	idx := map[string]int{}
	out := []domain.Count{}
	for _, b := range bookings {
		k := key(b)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, domain.Count{Label: k})
		}
		out[i].Count++
	}
	return out
}

// countByRoomType uses the room's type when the room is known, else the booking's room name.
func countByRoomType(bookings []domain.Booking, rooms map[string]domain.Room) []domain.Count {
	return tally(bookings, func(b domain.Booking) string {
		if r, ok := rooms[b.RoomID]; ok && r.Type != "" {
			return r.Type
		}
		return b.RoomName
	})
}

// lastMonths counts bookings for the n calendar months ending with now's month, oldest first.
func lastMonths(bookings []domain.Booking, now time.Time, n int) []domain.Count {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	out := make([]domain.Count, n)
	idx := make(map[string]int, n)
	for i := 0; i < n; i++ {
		m := first.AddDate(0, i-(n-1), 0)
		out[i].Label = m.Format("Jan")
		idx[m.Format("2006-01")] = i
	}
	for _, b := range bookings {
		if len(b.Date) < 7 {
			continue
		}
		if i, ok := idx[b.Date[:7]]; ok {
			out[i].Count++
		}
	}
	return out
}

// avgPerDay divides the total by whole days since the earliest parseable
// booking date.
func avgPerDay(bookings []domain.Booking, now time.Time) int {
	var earliest time.Time
	for _, b := range bookings {
		d, err := ParseDate(b.Date, now.Location())
		if err != nil {
			continue
		}
		if earliest.IsZero() || d.Before(earliest) {
			earliest = d
		}
	}
	if earliest.IsZero() {
		return 0
	}
	days := int(now.Sub(earliest) / (24 * time.Hour))
	if days <= 0 {
		return 0
	}
	return len(bookings) / days
}

func countLabel(c *domain.Count) string {
	return fmt.Sprintf("%s (%d)", c.Label, c.Count)
}

// Items renders the summary as report rows, system-wide first.
func (s Summary) Items() []domain.ReportItem {
	items := []domain.ReportItem{
		{Label: "Total System Bookings", Value: strconv.Itoa(s.Total), Icon: "calendar"},
	}
	if s.MostPopular != nil {
		items = append(items, domain.ReportItem{Label: "Most Popular Room", Value: countLabel(s.MostPopular), Icon: "location"})
	}
	items = append(items,
		domain.ReportItem{Label: "System This Month", Value: strconv.Itoa(s.ThisMonth), Icon: "clock"},
		domain.ReportItem{Label: "System Last 7 Days", Value: strconv.Itoa(s.Last7Days), Icon: "edit"},
		domain.ReportItem{Label: "System Avg/Day", Value: strconv.Itoa(s.AvgPerDay), Icon: "clock"},
		domain.ReportItem{Label: "You are logged in as", Value: s.ReportFor, Icon: "user"},
		domain.ReportItem{Label: "Your Total Bookings", Value: strconv.Itoa(s.Own), Icon: "calendar"},
		domain.ReportItem{Label: "Your This Month", Value: strconv.Itoa(s.OwnThisMonth), Icon: "clock"},
	)
	if s.OwnFavorite != nil {
		items = append(items, domain.ReportItem{Label: "Your Favorite Room", Value: countLabel(s.OwnFavorite), Icon: "location"})
	}
	items = append(items,
		domain.ReportItem{Label: "Your Last 7 Days", Value: strconv.Itoa(s.OwnLast7Days), Icon: "edit"},
		domain.ReportItem{Label: "Your Share of Bookings", Value: strconv.Itoa(s.OwnSharePct) + "%", Icon: "user"},
	)
	return items
}

// Document lays the summary out for export.
func (s Summary) Document() domain.ReportDocument {
	return domain.ReportDocument{
		Title:       "MosBookings - Reports & Analytics",
		GeneratedAt: s.GeneratedAt,
		ReportFor:   s.ReportFor,
		Summary: []domain.ReportItem{
			{Label: "Total System Bookings", Value: strconv.Itoa(s.Total)},
			{Label: "Your Total Bookings", Value: strconv.Itoa(s.Own)},
			{Label: "System This Month", Value: strconv.Itoa(s.ThisMonth)},
			{Label: "Your This Month", Value: strconv.Itoa(s.OwnThisMonth)},
		},
		Details:   s.Items(),
		RoomTypes: s.ByRoomType,
		Footer:    "This report was generated by MosBookings App",
	}
}
