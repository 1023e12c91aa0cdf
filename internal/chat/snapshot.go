package chat

import (
	"fmt"

	"github.com/xaenox/dank-times-bot/internal/models"
	"github.com/xaenox/dank-times-bot/internal/settings"
)

// Snapshot is the plain structural form of a chat that persistence stores
// and restores. Random dank times are deliberately absent: they are
// regenerated on every load.
type Snapshot struct {
	ID         int64             `json:"id"`
	LastHour   int               `json:"last_hour"`
	LastMinute int               `json:"last_minute"`
	Users      []models.User     `json:"users"`
	DankTimes  []models.DankTime `json:"dank_times"`
	Settings   map[string]string `json:"settings"`
}

// Snapshot captures the chat's persistent state.
func (c *Chat) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	users := make([]models.User, 0, len(c.users))
	for _, u := range c.users {
		users = append(users, *u)
	}
	return Snapshot{
		ID:         c.id,
		LastHour:   c.lastHour,
		LastMinute: c.lastMinute,
		Users:      users,
		DankTimes:  append([]models.DankTime(nil), c.dankTimes...),
		Settings:   c.settings.Snapshot(),
	}
}

// FromSnapshot reconstructs a chat. Validation mirrors construction: a
// corrupt slot cache or dank time is rejected rather than restored.
func FromSnapshot(snapshot Snapshot) (*Chat, error) {
	if snapshot.LastHour < -1 || snapshot.LastHour > 23 {
		return nil, fmt.Errorf("chat %d: last hour %d out of range", snapshot.ID, snapshot.LastHour)
	}
	if snapshot.LastMinute < -1 || snapshot.LastMinute > 59 {
		return nil, fmt.Errorf("chat %d: last minute %d out of range", snapshot.ID, snapshot.LastMinute)
	}
	chatSettings, err := settings.FromSnapshot(snapshot.Settings)
	if err != nil {
		return nil, fmt.Errorf("chat %d: %w", snapshot.ID, err)
	}

	c := New(snapshot.ID)
	c.lastHour = snapshot.LastHour
	c.lastMinute = snapshot.LastMinute
	c.settings = chatSettings
	for _, u := range snapshot.Users {
		user := u
		c.users[user.ID] = &user
	}
	for _, dankTime := range snapshot.DankTimes {
		validated, err := models.NewDankTime(dankTime.Hour, dankTime.Minute, dankTime.Points, dankTime.Texts)
		if err != nil {
			return nil, fmt.Errorf("chat %d: %w", snapshot.ID, err)
		}
		c.AddDankTime(validated)
	}
	return c, nil
}
