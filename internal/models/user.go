package models

// User is a single chat participant's score record.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	// Score may go negative through penalties.
	Score int `json:"score"`
	// Called is true if this user already scored in the currently open slot.
	Called bool `json:"called"`
	// LastScoreChange accumulates the signed delta since the last leaderboard
	// generation.
	LastScoreChange int `json:"last_score_change"`
	// LastScoreTimestamp is the unix time of the last score mutation, used by
	// the hardcore-mode inactivity punishment.
	LastScoreTimestamp int64 `json:"last_score_timestamp"`
}

func NewUser(id int64, name string) *User {
	return &User{ID: id, Name: name}
}

// AddToScore applies a signed delta and records when it happened.
func (u *User) AddToScore(delta int, now int64) {
	u.Score += delta
	u.LastScoreChange += delta
	u.LastScoreTimestamp = now
}

// ResetScore zeroes the score and all per-slot bookkeeping.
func (u *User) ResetScore() {
	u.Score = 0
	u.Called = false
	u.LastScoreChange = 0
}

func (u *User) ResetLastScoreChange() {
	u.LastScoreChange = 0
}
