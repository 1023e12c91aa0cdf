package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDankTimeValidation(t *testing.T) {
	tests := []struct {
		name    string
		hour    int
		minute  int
		points  int
		texts   []string
		wantErr bool
	}{
		{name: "valid", hour: 13, minute: 37, points: 10, texts: []string{"1337"}},
		{name: "hour too low", hour: -1, minute: 0, points: 10, texts: []string{"x"}, wantErr: true},
		{name: "hour too high", hour: 24, minute: 0, points: 10, texts: []string{"x"}, wantErr: true},
		{name: "minute too low", hour: 0, minute: -1, points: 10, texts: []string{"x"}, wantErr: true},
		{name: "minute too high", hour: 0, minute: 60, points: 10, texts: []string{"x"}, wantErr: true},
		{name: "zero points", hour: 0, minute: 0, points: 0, texts: []string{"x"}, wantErr: true},
		{name: "no texts", hour: 0, minute: 0, points: 10, texts: nil, wantErr: true},
		{name: "only empty texts", hour: 0, minute: 0, points: 10, texts: []string{"!!!", " "}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDankTime(tt.hour, tt.minute, tt.points, tt.texts)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewDankTimeNormalizesTexts(t *testing.T) {
	dankTime, err := NewDankTime(16, 20, 10, []string{"Blaze It!", "420"})
	require.NoError(t, err)
	assert.Equal(t, []string{"blazeit", "420"}, dankTime.Texts)
	assert.True(t, dankTime.HasText("blazeit"))
	assert.True(t, dankTime.HasText("420"))
	assert.False(t, dankTime.HasText("blaze it"))
}

func TestSameSlot(t *testing.T) {
	dankTime, err := NewDankTime(13, 37, 10, []string{"1337"})
	require.NoError(t, err)
	assert.True(t, dankTime.SameSlot(13, 37))
	assert.False(t, dankTime.SameSlot(13, 38))
	assert.False(t, dankTime.SameSlot(14, 37))
}

func TestBefore(t *testing.T) {
	early, _ := NewDankTime(11, 11, 5, []string{"1111"})
	midday, _ := NewDankTime(12, 34, 5, []string{"1234"})
	sameHour, _ := NewDankTime(12, 50, 5, []string{"1250"})

	assert.True(t, early.Before(midday))
	assert.True(t, midday.Before(sameHour))
	assert.False(t, sameHour.Before(midday))
	assert.False(t, midday.Before(midday))
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1337", "1337"},
		{"13:37", "1337"},
		{"  YES  ", "yes"},
		{"Dank Time!", "danktime"},
		{"🔥1337🔥", "1337"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanText(tt.in), "CleanText(%q)", tt.in)
	}
}
