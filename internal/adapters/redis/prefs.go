package redisad

import (
	"context"

	"github.com/redis/go-redis/v9"

	"mosbookings/internal/adapters/observability"
	"mosbookings/internal/domain"
)

const (
	fieldNotifications = "notifications"
	fieldDarkMode      = "dark_mode"
)

// PreferenceStore keeps the UI toggles in one hash, "<namespace>:settings".
// Missing fields read as false.
type PreferenceStore struct {
	c  *redis.Client
	ns string
}

func NewPreferenceStore(c *redis.Client, namespace string) *PreferenceStore {
	return &PreferenceStore{c: c, ns: namespace}
}

func (s *PreferenceStore) key() string { return s.ns + ":settings" }

func (s *PreferenceStore) Load(ctx context.Context) (domain.Preferences, error) {
	m, err := s.c.HGetAll(ctx, s.key()).Result()
	if err != nil {
		return domain.Preferences{}, err
	}
	if len(m) == 0 {
		observability.ObserveStore("prefs", "miss")
	} else {
		observability.ObserveStore("prefs", "hit")
	}
	return domain.Preferences{
		Notifications: m[fieldNotifications] == "1",
		DarkMode:      m[fieldDarkMode] == "1",
	}, nil
}

func (s *PreferenceStore) Save(ctx context.Context, p domain.Preferences) error {
	observability.ObserveStore("prefs", "save")
	return s.c.HSet(ctx, s.key(),
		fieldNotifications, flag(p.Notifications),
		fieldDarkMode, flag(p.DarkMode),
	).Err()
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
