package domain

type Booking struct {
	RoomID   string `json:"roomId"`
	RoomName string `json:"roomName"` // denormalized by the backend
	Date     string `json:"date"`
	User     string `json:"user"` // user id for own bookings, email (or name) for admin listings
}

// DateRange narrows the admin booking listing. Empty bounds are omitted.
type DateRange struct {
	Start string
	End   string
}
