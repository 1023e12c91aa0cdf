package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddToScore(t *testing.T) {
	user := NewUser(1, "user1")

	user.AddToScore(10, 100)
	user.AddToScore(-3, 200)

	assert.Equal(t, 7, user.Score)
	assert.Equal(t, 7, user.LastScoreChange)
	assert.Equal(t, int64(200), user.LastScoreTimestamp)
}

func TestResetScore(t *testing.T) {
	user := NewUser(1, "user1")
	user.AddToScore(15, 100)
	user.Called = true

	user.ResetScore()

	assert.Equal(t, 0, user.Score)
	assert.False(t, user.Called)
	assert.Equal(t, 0, user.LastScoreChange)
}

func TestResetLastScoreChangeKeepsScore(t *testing.T) {
	user := NewUser(1, "user1")
	user.AddToScore(15, 100)

	user.ResetLastScoreChange()

	assert.Equal(t, 15, user.Score)
	assert.Equal(t, 0, user.LastScoreChange)
}
