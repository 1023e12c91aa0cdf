package models

import (
	"fmt"
	"sort"
	"strings"
)

// Entry is a single ranked row of a leaderboard.
type Entry struct {
	ID              int64
	Name            string
	Score           int
	LastScoreChange int
}

// Leaderboard is an ephemeral ranked snapshot of a chat's users, sorted by
// score descending with the user id as a stable tie-break. A previous board
// can be supplied when rendering to show rank and score movement.
type Leaderboard struct {
	Entries []Entry
}

func NewLeaderboard(users []*User) *Leaderboard {
	entries := make([]Entry, 0, len(users))
	for _, u := range users {
		entries = append(entries, Entry{
			ID:              u.ID,
			Name:            u.Name,
			Score:           u.Score,
			LastScoreChange: u.LastScoreChange,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].ID < entries[j].ID
	})
	return &Leaderboard{Entries: entries}
}

// Render formats the board, one row per user. When prev is non-nil, rows show
// rank movement relative to it; users absent from prev get no arrow.
func (l *Leaderboard) Render(prev *Leaderboard) string {
	var b strings.Builder
	for i, e := range l.Entries {
		b.WriteString(fmt.Sprintf("\n<b>%d.</b>    %s    %d", i+1, e.Name, e.Score))
		if e.LastScoreChange > 0 {
			b.WriteString(fmt.Sprintf(" (+%d)", e.LastScoreChange))
		} else if e.LastScoreChange < 0 {
			b.WriteString(fmt.Sprintf(" (%d)", e.LastScoreChange))
		}
		if prev != nil {
			if oldRank, ok := prev.rankOf(e.ID); ok {
				if oldRank > i {
					b.WriteString(" ⬆️")
				} else if oldRank < i {
					b.WriteString(" ⬇️")
				}
			}
		}
	}
	return b.String()
}

func (l *Leaderboard) rankOf(id int64) (int, bool) {
	for i, e := range l.Entries {
		if e.ID == id {
			return i, true
		}
	}
	return 0, false
}
