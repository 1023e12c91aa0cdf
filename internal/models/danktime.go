package models

import (
	"fmt"
	"strings"
	"unicode"
)

// DankTime describes a single scoring opportunity: an hour and minute of the
// day, the trigger texts that call it out, and the points it is worth. Two
// dank times occupy the same slot iff hour and minute are equal.
type DankTime struct {
	Hour   int      `json:"hour"`
	Minute int      `json:"minute"`
	Points int      `json:"points"`
	Texts  []string `json:"texts"`
}

// NewDankTime validates and creates a dank time. Trigger texts are normalized
// with CleanText so that matching against incoming messages stays consistent.
func NewDankTime(hour, minute, points int, texts []string) (DankTime, error) {
	if hour < 0 || hour > 23 {
		return DankTime{}, fmt.Errorf("the hour must be a number between 0 and 23")
	}
	if minute < 0 || minute > 59 {
		return DankTime{}, fmt.Errorf("the minute must be a number between 0 and 59")
	}
	if points < 1 {
		return DankTime{}, fmt.Errorf("the points must be a number greater than 0")
	}
	cleaned := make([]string, 0, len(texts))
	for _, text := range texts {
		if t := CleanText(text); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return DankTime{}, fmt.Errorf("at least one trigger text is required")
	}
	return DankTime{Hour: hour, Minute: minute, Points: points, Texts: cleaned}, nil
}

// HasText reports whether the supplied text triggers this dank time. The text
// is expected to already be normalized with CleanText.
func (d DankTime) HasText(text string) bool {
	for _, t := range d.Texts {
		if t == text {
			return true
		}
	}
	return false
}

// SameSlot reports whether this dank time occupies the given slot.
func (d DankTime) SameSlot(hour, minute int) bool {
	return d.Hour == hour && d.Minute == minute
}

// Before orders dank times by hour, then minute.
func (d DankTime) Before(other DankTime) bool {
	if d.Hour != other.Hour {
		return d.Hour < other.Hour
	}
	return d.Minute < other.Minute
}

// CleanText normalizes message and trigger text for matching: everything but
// letters and digits is stripped, and the rest is lowercased.
func CleanText(text string) string {
	var b strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
