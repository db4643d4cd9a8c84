package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	"gopkg.in/yaml.v3"

	"mosbookings/internal/domain"
)

// Manifest lists rooms for a bulk upload. Image paths are relative to the
// manifest's directory.
type Manifest struct {
	Rooms []domain.RoomDraft `yaml:"rooms"`
}

func ReadManifest(r io.Reader) (Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}

// LoadImages reads image files from disk, resolving relative paths against dir.
func LoadImages(dir string, paths []string) ([]domain.Image, error) {
	out := make([]domain.Image, 0, len(paths))
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		out = append(out, domain.Image{Filename: filepath.Base(p), ContentType: domain.ImageContentType(p), Data: b})
	}
	return out, nil
}

// ErrEmptyEdit rejects an edit that sets no field.
var ErrEmptyEdit = errors.New("nothing to update")

// RoomEdit changes selected fields of an existing room. Nil fields keep the
// room's current value; non-nil slices replace the current list.
type RoomEdit struct {
	Name             *string  `json:"roomName,omitempty" validate:"omitempty,min=1"`
	Type             *string  `json:"roomType,omitempty" validate:"omitempty,min=1"`
	Location         *string  `json:"roomLocation,omitempty" validate:"omitempty,min=1"`
	Description      *string  `json:"description,omitempty"`
	Price            *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Rating           *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	Amenities        []string `json:"amenities,omitempty"`
	UnavailableDates []string `json:"unavailableDates,omitempty" validate:"omitempty,dive,isodate"`
}

func (e RoomEdit) Empty() bool {
	return e.Name == nil && e.Type == nil && e.Location == nil && e.Description == nil &&
		e.Price == nil && e.Rating == nil && e.Amenities == nil && e.UnavailableDates == nil
}

// Apply returns room with the edit's fields set.
func (e RoomEdit) Apply(room domain.Room) domain.Room {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&room.Name, e.Name)
	set(&room.Type, e.Type)
	set(&room.Location, e.Location)
	set(&room.Description, e.Description)
	if e.Price != nil {
		room.Price = *e.Price
	}
	if e.Rating != nil {
		room.Rating = *e.Rating
	}
	if e.Amenities != nil {
		room.Amenities = append([]string{}, e.Amenities...)
	}
	if e.UnavailableDates != nil {
		room.UnavailableDates = append([]string{}, e.UnavailableDates...)
	}
	return room
}

type UploadResult struct {
	Index  int
	Name   string
	RoomID string
	Err    error
}

// UploadService creates rooms from drafts with a bounded number of concurrent uploads.
type UploadService struct {
	repo    *RoomRepository
	workers int64
}

func NewUploadService(repo *RoomRepository, workers int) *UploadService {
	if workers <= 0 {
		workers = 1
	}
	return &UploadService{repo: repo, workers: int64(workers)}
}

// UploadAll uploads every draft and returns one result per draft, in input
// order. A failed draft does not stop the others.
func (s *UploadService) UploadAll(ctx context.Context, dir string, drafts []domain.RoomDraft) []UploadResult {
	results := make([]UploadResult, len(drafts))
	sem := semaphore.NewWeighted(s.workers)
	var wg sync.WaitGroup

	for i, d := range drafts {
		results[i] = UploadResult{Index: i, Name: d.Name}

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i].Err = err
			continue
		}
		wg.Add(1)
		go func(i int, d domain.RoomDraft) {
			defer wg.Done()
			defer sem.Release(1)

			room, err := s.uploadOne(ctx, dir, d)
			if err != nil {
				log.Warn().Int("index", i).Str("room", d.Name).Err(err).Msg("upload failed")
				results[i].Err = err
				return
			}
			results[i].RoomID = room.ID
			log.Info().Int("index", i).Str("room", d.Name).Str("id", room.ID).Msg("upload ok")
		}(i, d)
	}
	wg.Wait()
	return results
}

func (s *UploadService) uploadOne(ctx context.Context, dir string, d domain.RoomDraft) (*domain.Room, error) {
	if len(d.Images) == 0 && len(d.ImagePaths) > 0 {
		imgs, err := LoadImages(dir, d.ImagePaths)
		if err != nil {
			return nil, err
		}
		d.Images = imgs
	}
	return s.repo.CreateRoom(ctx, d)
}
