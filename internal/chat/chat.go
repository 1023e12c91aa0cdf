package chat

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xaenox/dank-times-bot/internal/models"
	"github.com/xaenox/dank-times-bot/internal/settings"
)

// noResetPending is the sentinel for awaitingResetConfirmation.
const noResetPending int64 = -1

// Chat owns the scoring state machine for a single group chat. All exported
// methods lock, so an inbound message and a firing timer never observe
// partial state. The lastHour/lastMinute pair is the slot cache: it records
// the most recently opened slot and is the only state needed to tell a
// first caller apart from a repeat caller.
type Chat struct {
	mu                        sync.Mutex
	id                        int64
	lastHour                  int
	lastMinute                int
	users                     map[int64]*models.User
	dankTimes                 []models.DankTime
	randomDankTimes           []models.DankTime
	awaitingResetConfirmation int64
	settings                  *settings.ChatSettings
	lastLeaderboard           *models.Leaderboard

	// now is injectable for tests.
	now func() time.Time
}

func New(id int64) *Chat {
	return &Chat{
		id:                        id,
		lastHour:                  -1,
		lastMinute:                -1,
		users:                     make(map[int64]*models.User),
		awaitingResetConfirmation: noResetPending,
		settings:                  settings.New(),
		now:                       time.Now,
	}
}

func (c *Chat) ID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

func (c *Chat) Settings() *settings.ChatSettings {
	return c.settings
}

// ProcessMessage runs the scoring state machine for one inbound message and
// returns the reply text, or "" when no reply is needed.
func (c *Chat) ProcessMessage(userID int64, userName, text string, sentAt int64) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().In(c.settings.TimezoneLocation())

	// Delayed delivery must not produce false matches.
	if now.Unix()-sentAt >= 60 {
		return ""
	}
	text = models.CleanText(text)

	if c.awaitingResetConfirmation == userID {
		c.awaitingResetConfirmation = noResetPending
		if strings.EqualFold(text, "yes") {
			// Render the final board before wiping it.
			reply := "The leaderboard has been reset!\n\n" + c.generateLeaderboardLocked(true)
			for _, u := range c.users {
				u.ResetScore()
			}
			return reply
		}
	}

	if !c.settings.Running() {
		return ""
	}

	candidates := c.dankTimesByTextLocked(text)
	if len(candidates) == 0 {
		return ""
	}

	user, ok := c.users[userID]
	if !ok {
		user = models.NewUser(userID, userName)
		c.users[userID] = user
	}
	if user.Name != userName {
		user.Name = userName
	}

	subtractBy := 0
	for _, dankTime := range candidates {
		if now.Hour() == dankTime.Hour && now.Minute() == dankTime.Minute {
			if c.lastHour != dankTime.Hour || c.lastMinute != dankTime.Minute {
				// First valid call of a new slot: reset the cache and award
				// modifier-scaled points.
				for _, u := range c.users {
					u.Called = false
				}
				c.lastHour = dankTime.Hour
				c.lastMinute = dankTime.Minute
				award := int(math.Round(float64(dankTime.Points) * c.settings.Modifier()))
				user.AddToScore(award, now.Unix())
				user.Called = true
				if c.settings.FirstNotifications() {
					return user.Name + " was the first to score!"
				}
			} else if user.Called {
				user.AddToScore(-dankTime.Points, now.Unix())
			} else {
				user.AddToScore(dankTime.Points, now.Unix())
				user.Called = true
			}
			return ""
		}
		if dankTime.Points > subtractBy {
			subtractBy = dankTime.Points
		}
	}

	// Text matched only slots that don't match the current time: punish by
	// the largest matching candidate's value.
	user.AddToScore(-subtractBy, now.Unix())
	return ""
}

// AddDankTime inserts a normal dank time, evicting any prior occupant of the
// same slot and keeping the list sorted by hour, then minute.
func (c *Chat) AddDankTime(dankTime models.DankTime) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeDankTimeLocked(dankTime.Hour, dankTime.Minute)
	c.dankTimes = append(c.dankTimes, dankTime)
	sort.Slice(c.dankTimes, func(i, j int) bool {
		return c.dankTimes[i].Before(c.dankTimes[j])
	})
}

// RemoveDankTime removes the normal dank time occupying the given slot and
// reports whether one was found.
func (c *Chat) RemoveDankTime(hour, minute int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeDankTimeLocked(hour, minute)
}

func (c *Chat) removeDankTimeLocked(hour, minute int) bool {
	for i, dankTime := range c.dankTimes {
		if dankTime.SameSlot(hour, minute) {
			c.dankTimes = append(c.dankTimes[:i], c.dankTimes[i+1:]...)
			return true
		}
	}
	return false
}

// GenerateRandomDankTimes replaces the chat's random dank times with a fresh
// set. Each entry gets a uniformly random slot in the chat's timezone and a
// trigger text equal to the zero-padded HHMM of that slot; collisions across
// entries are accepted. The new set is returned.
func (c *Chat) GenerateRandomDankTimes() []models.DankTime {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := c.settings.RandomTimeFrequency()
	points := c.settings.RandomTimePoints()
	c.randomDankTimes = make([]models.DankTime, 0, count)
	for i := 0; i < count; i++ {
		hour := rand.Intn(24)
		minute := rand.Intn(60)
		text := fmt.Sprintf("%02d%02d", hour, minute)
		dankTime, err := models.NewDankTime(hour, minute, points, []string{text})
		if err != nil {
			// Unreachable: generated values are always in range.
			continue
		}
		c.randomDankTimes = append(c.randomDankTimes, dankTime)
	}
	return append([]models.DankTime(nil), c.randomDankTimes...)
}

// DankTimes returns a copy of the normal dank times.
func (c *Chat) DankTimes() []models.DankTime {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.DankTime(nil), c.dankTimes...)
}

// RandomDankTimes returns a copy of today's random dank times.
func (c *Chat) RandomDankTimes() []models.DankTime {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.DankTime(nil), c.randomDankTimes...)
}

// GenerateLeaderboard renders the current ranking, diffed against the
// previously generated board, and resets every user's last score change.
func (c *Chat) GenerateLeaderboard(final bool) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generateLeaderboardLocked(final)
}

func (c *Chat) generateLeaderboardLocked(final bool) string {
	users := make([]*models.User, 0, len(c.users))
	for _, u := range c.users {
		users = append(users, u)
	}
	prev := c.lastLeaderboard
	board := models.NewLeaderboard(users)
	c.lastLeaderboard = board

	header := "<b>--- LEADERBOARD ---</b>"
	if final {
		header = "<b>--- FINAL LEADERBOARD ---</b>"
	}
	text := header + board.Render(prev)

	for _, u := range c.users {
		u.ResetLastScoreChange()
	}
	return text
}

// LeaderboardChanged reports whether any score changed since the last
// generated leaderboard.
func (c *Chat) LeaderboardChanged() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range c.users {
		if u.LastScoreChange != 0 {
			return true
		}
	}
	return false
}

// HardcoreModeCheck punishes users that have not scored in the past 24 hours
// by 10 points, if hardcore mode is enabled and the deduction would not push
// them below zero. The caller is responsible for the once-daily cadence.
func (c *Chat) HardcoreModeCheck(now int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.settings.HardcoreMode() {
		return
	}
	const day = 24 * 60 * 60
	const punishBy = 10
	for _, u := range c.users {
		if now-u.LastScoreTimestamp >= day && u.Score-punishBy >= 0 {
			u.AddToScore(-punishBy, now)
		}
	}
}

// ArmReset arms the reset confirmation: the next message from userID decides
// whether the scores are wiped.
func (c *Chat) ArmReset(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.awaitingResetConfirmation = userID
}

func (c *Chat) dankTimesByTextLocked(text string) []models.DankTime {
	var found []models.DankTime
	for _, dankTime := range c.dankTimes {
		if dankTime.HasText(text) {
			found = append(found, dankTime)
		}
	}
	for _, dankTime := range c.randomDankTimes {
		if dankTime.HasText(text) {
			found = append(found, dankTime)
		}
	}
	return found
}
