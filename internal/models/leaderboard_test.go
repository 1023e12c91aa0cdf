package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLeaderboardOrdersByScore(t *testing.T) {
	users := []*User{
		{ID: 0, Name: "user0", Score: 15},
		{ID: 1, Name: "user1", Score: 5},
		{ID: 2, Name: "user2", Score: 20},
		{ID: 3, Name: "user3", Score: 10},
	}

	leaderboard := NewLeaderboard(users)

	assert.Equal(t, int64(2), leaderboard.Entries[0].ID)
	assert.Equal(t, int64(0), leaderboard.Entries[1].ID)
	assert.Equal(t, int64(3), leaderboard.Entries[2].ID)
	assert.Equal(t, int64(1), leaderboard.Entries[3].ID)
}

func TestNewLeaderboardBreaksTiesByID(t *testing.T) {
	users := []*User{
		{ID: 9, Name: "user9", Score: 10},
		{ID: 3, Name: "user3", Score: 10},
		{ID: 7, Name: "user7", Score: 10},
	}

	leaderboard := NewLeaderboard(users)

	assert.Equal(t, int64(3), leaderboard.Entries[0].ID)
	assert.Equal(t, int64(7), leaderboard.Entries[1].ID)
	assert.Equal(t, int64(9), leaderboard.Entries[2].ID)
}

func TestRenderShowsScoreChanges(t *testing.T) {
	leaderboard := NewLeaderboard([]*User{
		{ID: 1, Name: "winner", Score: 20, LastScoreChange: 10},
		{ID: 2, Name: "loser", Score: -5, LastScoreChange: -5},
		{ID: 3, Name: "idle", Score: 0},
	})

	text := leaderboard.Render(nil)

	assert.Contains(t, text, "winner    20 (+10)")
	assert.Contains(t, text, "loser    -5 (-5)")
	assert.Contains(t, text, "idle    0")
	assert.NotContains(t, text, "idle    0 (")
}

func TestRenderShowsRankMovement(t *testing.T) {
	prev := NewLeaderboard([]*User{
		{ID: 1, Name: "a", Score: 20},
		{ID: 2, Name: "b", Score: 10},
	})
	current := NewLeaderboard([]*User{
		{ID: 1, Name: "a", Score: 20},
		{ID: 2, Name: "b", Score: 30, LastScoreChange: 20},
		{ID: 3, Name: "c", Score: 5},
	})

	text := current.Render(prev)

	assert.Contains(t, text, "b    30 (+20) ⬆️")
	assert.Contains(t, text, "a    20 ⬇️")
	// New entries get no arrow.
	assert.NotContains(t, text, "c    5 ⬆️")
	assert.NotContains(t, text, "c    5 ⬇️")
}
