package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mosbookings/internal/app"
	"mosbookings/internal/domain"
)

func TestAggregate_Empty(t *testing.T) {
	s := app.Aggregate(nil, nil, *userSession("u1", domain.RoleUser), fixedNow)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.Own)
	assert.Zero(t, s.Others)
	assert.Zero(t, s.ThisMonth)
	assert.Zero(t, s.Last7Days)
	assert.Zero(t, s.OwnSharePct)
	assert.Zero(t, s.AvgPerDay)
	assert.Nil(t, s.MostPopular)
	assert.Nil(t, s.OwnFavorite)
	assert.Empty(t, s.ByRoomType)
	require.Len(t, s.Monthly, 6)
	for _, m := range s.Monthly {
		assert.Zero(t, m.Count)
	}
}

func TestAggregate_CountsAndPartition(t *testing.T) {
	rooms := domain.RoomsByID([]domain.Room{
		{ID: "a", Name: "Alpha", Type: "Suite"},
		{ID: "b", Name: "Beta", Type: "Conference"},
	})
	bookings := []domain.Booking{
		{RoomID: "a", RoomName: "Alpha", Date: "2025-06-15", User: "u1"}, // today
		{RoomID: "b", RoomName: "Beta", Date: "2025-06-09", User: "u2"},  // today-6
		{RoomID: "a", RoomName: "Alpha", Date: "2025-06-08", User: "u1"}, // today-7
		{RoomID: "b", RoomName: "Beta", Date: "2025-05-30", User: "u2"},
		{RoomID: "x", RoomName: "Gone", Date: "2025-06-30", User: "u1"}, // future, this month
		{RoomID: "b", RoomName: "Beta", Date: "-", User: "u3"},
	}
	s := app.Aggregate(bookings, rooms, *userSession("u1", domain.RoleUser), fixedNow)

	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 3, s.Own)
	assert.Equal(t, s.Total, s.Own+s.Others)
	assert.Equal(t, 4, s.ThisMonth)
	assert.Equal(t, 2, s.Last7Days)
	assert.Equal(t, 3, s.OwnThisMonth)
	assert.Equal(t, 1, s.OwnLast7Days)
	assert.Equal(t, 50, s.OwnSharePct)

	require.NotNil(t, s.MostPopular)
	assert.Equal(t, domain.Count{Label: "Beta", Count: 3}, *s.MostPopular)
	require.NotNil(t, s.OwnFavorite)
	assert.Equal(t, domain.Count{Label: "Alpha", Count: 2}, *s.OwnFavorite)

	assert.Equal(t, []domain.Count{{Label: "Suite", Count: 2}, {Label: "Conference", Count: 3}, {Label: "Gone", Count: 1}}, s.ByRoomType)

	require.Len(t, s.Monthly, 6)
	assert.Equal(t, "Jan", s.Monthly[0].Label)
	assert.Equal(t, domain.Count{Label: "May", Count: 1}, s.Monthly[4])
	assert.Equal(t, domain.Count{Label: "Jun", Count: 4}, s.Monthly[5])
}

func TestAggregate_ShareTruncates(t *testing.T) {
	bookings := []domain.Booking{
		{RoomName: "A", Date: "2025-06-01", User: "u1"},
		{RoomName: "A", Date: "2025-06-01", User: "u2"},
		{RoomName: "A", Date: "2025-06-01", User: "u2"},
	}
	s := app.Aggregate(bookings, nil, *userSession("u1", domain.RoleUser), fixedNow)
	assert.Equal(t, 33, s.OwnSharePct)
}

func TestAggregate_NoUserCountsEverythingAsOwn(t *testing.T) {
	bookings := []domain.Booking{{RoomName: "A", Date: "2025-06-01", User: "u1"}, {RoomName: "B", Date: "2025-06-02", User: "u2"}}
	s := app.Aggregate(bookings, nil, domain.Session{}, fixedNow)
	assert.Equal(t, 2, s.Own)
	assert.Zero(t, s.Others)
	assert.Equal(t, "Not logged in", s.ReportFor)
}

func TestMostFrequentRoom_TieGoesToFirstSeen(t *testing.T) {
	bookings := []domain.Booking{
		{RoomName: "B"}, {RoomName: "A"}, {RoomName: "A"}, {RoomName: "B"}, {RoomName: "C"},
	}
	got := app.MostFrequentRoom(bookings)
	require.NotNil(t, got)
	assert.Equal(t, "B", got.Label)
	assert.Equal(t, 2, got.Count)

	// Reordering changes the winner only through first appearance.
	got = app.MostFrequentRoom([]domain.Booking{{RoomName: "A"}, {RoomName: "B"}, {RoomName: "B"}, {RoomName: "A"}})
	assert.Equal(t, "A", got.Label)

	assert.Nil(t, app.MostFrequentRoom(nil))
}

func TestSummary_ItemsAndDocument(t *testing.T) {
	bookings := []domain.Booking{{RoomID: "a", RoomName: "Alpha", Date: "2025-06-14", User: "u1"}}
	s := app.Aggregate(bookings, nil, *userSession("u1", domain.RoleAdmin), fixedNow)

	items := s.Items()
	labels := make([]string, 0, len(items))
	for _, it := range items {
		labels = append(labels, it.Label)
	}
	assert.Contains(t, labels, "Most Popular Room")
	assert.Contains(t, labels, "Your Favorite Room")
	assert.Equal(t, "Total System Bookings", items[0].Label)
	assert.Equal(t, "1", items[0].Value)

	doc := s.Document()
	assert.Equal(t, "MosBookings - Reports & Analytics", doc.Title)
	assert.Equal(t, "Test u1 (admin)", doc.ReportFor)
	assert.Len(t, doc.Summary, 4)
	assert.Equal(t, items, doc.Details)
	assert.Equal(t, []domain.Count{{Label: "Alpha", Count: 1}}, doc.RoomTypes)
}

func TestSummary_ItemsOmitMissingFavorites(t *testing.T) {
	s := app.Aggregate(nil, nil, domain.Session{}, fixedNow)
	for _, it := range s.Items() {
		assert.NotEqual(t, "Most Popular Room", it.Label)
		assert.NotEqual(t, "Your Favorite Room", it.Label)
	}
}

func TestAggregate_AvgPerDaySkipsBadDates(t *testing.T) {
	bookings := []domain.Booking{{RoomName: "A", Date: "-"}}
	for i := 0; i < 20; i++ {
		bookings = append(bookings, domain.Booking{RoomName: "A", Date: "2025-06-05"})
	}
	s := app.Aggregate(bookings, nil, domain.Session{}, fixedNow)
	assert.Equal(t, 2, s.AvgPerDay)
}

func TestAggregate_OwnMatchesEmail(t *testing.T) {
	bookings := []domain.Booking{{RoomName: "A", Date: "2025-06-01", User: "U1@Example.com"}, {RoomName: "B", Date: "2025-06-02", User: "u2@example.com"}}
	s := app.Aggregate(bookings, nil, *userSession("u1", domain.RoleUser), fixedNow)
	assert.Equal(t, 1, s.Own)
	assert.Equal(t, 1, s.Others)
}
