package domain

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

type Room struct {
	ID               string   `json:"id"`
	Images           []string `json:"images"`
	Name             string   `json:"roomName"`
	Type             string   `json:"roomType"` // Suite, En Suite, One Bedroom, Conference...
	Location         string   `json:"roomLocation"`
	Price            float64  `json:"price"`
	Amenities        []string `json:"amenities"`
	Rating           float64  `json:"rating"`
	Description      string   `json:"description"`
	UnavailableDates []string `json:"unavailableDates"` // YYYY-MM-DD, treated as a set
}

// UnmarshalJSON accepts both "id" and the backend's "_id".
func (r *Room) UnmarshalJSON(b []byte) error {
	type plain Room
	var aux struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = Room(aux.plain)
	if r.ID == "" {
		r.ID = aux.MongoID
	}
	return nil
}

// RoomsByID indexes rooms by identifier. Later duplicates win.
func RoomsByID(rooms []Room) map[string]Room {
	out := make(map[string]Room, len(rooms))
	for _, r := range rooms {
		out[r.ID] = r
	}
	return out
}

// Image is one file attached to a room upload.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImageContentType derives an image MIME type from a file name. Anything
// that is not .png is sent as jpeg.
func ImageContentType(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".png") {
		return "image/png"
	}
	return "image/jpeg"
}

// RoomDraft is what an administrator fills in before uploading a room.
type RoomDraft struct {
	Name             string   `yaml:"name" validate:"required"`
	Type             string   `yaml:"type" validate:"required"`
	Location         string   `yaml:"location" validate:"required"`
	Price            float64  `yaml:"price" validate:"gt=0"`
	Amenities        []string `yaml:"amenities"`
	Rating           float64  `yaml:"rating" validate:"gte=0,lte=5"`
	Description      string   `yaml:"description" validate:"required"`
	UnavailableDates []string `yaml:"unavailable_dates" validate:"dive,isodate"`
	ImagePaths       []string `yaml:"images" validate:"-"`
	Images           []Image  `yaml:"-" validate:"min=1"`
}
