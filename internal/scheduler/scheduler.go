package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xaenox/dank-times-bot/internal/chat"
	"github.com/xaenox/dank-times-bot/internal/metrics"
)

// Notifier sends a message to a chat. The Telegram bot implements it.
type Notifier interface {
	SendMessage(chatID int64, text string)
}

type jobKind int

const (
	kindDankTime jobKind = iota
	kindRandomDankTime
	kindAutoLeaderboard
)

// Auto-leaderboards fire this long after their slot, so scoring has settled.
const autoLeaderboardDelay = time.Minute

// jobKey identifies one timer: a chat, a slot, and what the timer does.
type jobKey struct {
	chatID int64
	hour   int
	minute int
	kind   jobKind
}

type job struct {
	id    uuid.UUID
	timer *time.Timer
}

// Scheduler owns one cancellable timer per (chat, dank time) pair plus the
// daily rollover. Every job carries a uuid; a fire that does not find its own
// uuid in the arena lost a cancellation race and is a no-op.
type Scheduler struct {
	mu       sync.Mutex
	notifier Notifier
	logger   *zap.Logger
	jobs     map[jobKey]*job

	// now is injectable for tests.
	now func() time.Time
}

func New(notifier Notifier, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		notifier: notifier,
		logger:   logger,
		jobs:     make(map[jobKey]*job),
		now:      time.Now,
	}
}

// ScheduleAllOfChat programs every timer for the chat: normal dank-time
// notifications (if enabled), random dank-time notifications, and
// auto-leaderboards (if enabled).
func (s *Scheduler) ScheduleAllOfChat(c *chat.Chat) {
	if c.Settings().Notifications() {
		s.ScheduleDankTimesOfChat(c)
	}
	s.ScheduleRandomDankTimesOfChat(c)
	if c.Settings().AutoLeaderboards() {
		s.ScheduleAutoLeaderboardsOfChat(c)
	}
}

// ScheduleDankTimesOfChat programs notification timers for the chat's normal
// dank times.
func (s *Scheduler) ScheduleDankTimesOfChat(c *chat.Chat) {
	chatID := c.ID()
	for _, dankTime := range c.DankTimes() {
		text := fmt.Sprintf("It's dank o'clock! Type '%s' for points!", strings.Join(dankTime.Texts, "' or '"))
		s.schedule(jobKey{chatID, dankTime.Hour, dankTime.Minute, kindDankTime}, c, 0, func() {
			s.notifier.SendMessage(chatID, text)
		})
	}
}

// ScheduleRandomDankTimesOfChat programs notification timers for today's
// random dank times. These always announce: the message text is the only way
// players learn the slot exists.
func (s *Scheduler) ScheduleRandomDankTimesOfChat(c *chat.Chat) {
	chatID := c.ID()
	for _, dankTime := range c.RandomDankTimes() {
		text := fmt.Sprintf("Surprise dank time! Type '%s' for points!", dankTime.Texts[0])
		s.schedule(jobKey{chatID, dankTime.Hour, dankTime.Minute, kindRandomDankTime}, c, 0, func() {
			s.notifier.SendMessage(chatID, text)
		})
	}
}

// ScheduleAutoLeaderboardsOfChat programs a leaderboard post shortly after
// every normal and random dank time, sent only if any score changed.
func (s *Scheduler) ScheduleAutoLeaderboardsOfChat(c *chat.Chat) {
	chatID := c.ID()
	dankTimes := append(c.DankTimes(), c.RandomDankTimes()...)
	for _, dankTime := range dankTimes {
		s.schedule(jobKey{chatID, dankTime.Hour, dankTime.Minute, kindAutoLeaderboard}, c, autoLeaderboardDelay, func() {
			if !c.LeaderboardChanged() {
				return
			}
			s.notifier.SendMessage(chatID, c.GenerateLeaderboard(false))
			metrics.LeaderboardsPosted.Inc()
		})
	}
}

func (s *Scheduler) UnscheduleDankTimesOfChat(c *chat.Chat) {
	s.unscheduleKind(c.ID(), kindDankTime)
}

func (s *Scheduler) UnscheduleRandomDankTimesOfChat(c *chat.Chat) {
	s.unscheduleKind(c.ID(), kindRandomDankTime)
}

func (s *Scheduler) UnscheduleAutoLeaderboardsOfChat(c *chat.Chat) {
	s.unscheduleKind(c.ID(), kindAutoLeaderboard)
}

// UnscheduleAllOfChat cancels every timer belonging to the chat.
func (s *Scheduler) UnscheduleAllOfChat(c *chat.Chat) {
	chatID := c.ID()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, j := range s.jobs {
		if key.chatID == chatID {
			j.timer.Stop()
			delete(s.jobs, key)
		}
	}
}

// RescheduleAllOfChat cancels and reprograms every timer of the chat, used
// after its dank times or settings changed.
func (s *Scheduler) RescheduleAllOfChat(c *chat.Chat) {
	s.UnscheduleAllOfChat(c)
	if c.Settings().Running() {
		s.ScheduleAllOfChat(c)
	}
}

// RunDailyUpdates blocks until ctx is done, performing the daily rollover at
// every process-local midnight: regenerate random dank times for all running
// chats and apply the hardcore-mode punishment.
func (s *Scheduler) RunDailyUpdates(ctx context.Context, registry *chat.Registry) {
	for {
		next := nextMidnight(s.now())
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
		}
		s.logger.Info("running daily update")
		s.DailyUpdate(registry)
	}
}

// DailyUpdate performs one rollover pass. Stale timers are unscheduled
// before the random set they reference is replaced.
func (s *Scheduler) DailyUpdate(registry *chat.Registry) {
	now := s.now().Unix()
	for _, c := range registry.All() {
		if !c.Settings().Running() {
			continue
		}
		s.UnscheduleRandomDankTimesOfChat(c)
		s.UnscheduleAutoLeaderboardsOfChat(c)
		c.GenerateRandomDankTimes()
		s.ScheduleRandomDankTimesOfChat(c)
		if c.Settings().AutoLeaderboards() {
			s.ScheduleAutoLeaderboardsOfChat(c)
		}
		c.HardcoreModeCheck(now)
	}
}

// schedule programs (or replaces) the timer for key, firing at the next
// occurrence of the slot in the chat's timezone plus offset, and daily
// thereafter.
func (s *Scheduler) schedule(key jobKey, c *chat.Chat, offset time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.jobs[key]; ok {
		existing.timer.Stop()
	}
	id := uuid.New()
	j := &job{id: id}
	fireAt := nextOccurrence(s.now(), key.hour, key.minute, c.Settings().TimezoneLocation(), offset)
	j.timer = time.AfterFunc(time.Until(fireAt), func() {
		s.fire(key, id, c, offset, fn)
	})
	s.jobs[key] = j
}

// fire runs one timer expiry: verify the job is still current, reprogram it
// for tomorrow, then run the handler outside the lock.
func (s *Scheduler) fire(key jobKey, id uuid.UUID, c *chat.Chat, offset time.Duration, fn func()) {
	s.mu.Lock()
	j, ok := s.jobs[key]
	if !ok || j.id != id {
		// The job was cancelled or replaced after this timer was armed.
		s.mu.Unlock()
		return
	}
	fireAt := nextOccurrence(s.now(), key.hour, key.minute, c.Settings().TimezoneLocation(), offset)
	j.timer = time.AfterFunc(time.Until(fireAt), func() {
		s.fire(key, id, c, offset, fn)
	})
	s.mu.Unlock()

	metrics.TimersFired.Inc()
	fn()
}

func (s *Scheduler) unscheduleKind(chatID int64, kind jobKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, j := range s.jobs {
		if key.chatID == chatID && key.kind == kind {
			j.timer.Stop()
			delete(s.jobs, key)
		}
	}
}

// scheduledCount reports how many timers of the kind exist for the chat.
func (s *Scheduler) scheduledCount(chatID int64, kind jobKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for key := range s.jobs {
		if key.chatID == chatID && key.kind == kind {
			count++
		}
	}
	return count
}

// nextOccurrence computes the next moment the slot occurs in loc, today if
// it has not yet passed, otherwise tomorrow.
func nextOccurrence(now time.Time, hour, minute int, loc *time.Location, offset time.Duration) time.Time {
	n := now.In(loc)
	next := time.Date(n.Year(), n.Month(), n.Day(), hour, minute, 0, 0, loc).Add(offset)
	if !next.After(n) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func nextMidnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
}
