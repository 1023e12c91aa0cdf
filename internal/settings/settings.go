package settings

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"
)

// Setting names, stable across persistence snapshots.
const (
	Running             = "running"
	Timezone            = "timezone"
	Modifier            = "modifier"
	RandomTimeFrequency = "randomtimefrequency"
	RandomTimePoints    = "randomtimepoints"
	Notifications       = "notifications"
	FirstNotifications  = "firstnotifications"
	AutoLeaderboards    = "autoleaderboards"
	HardcoreMode        = "hardcoremode"
)

// template describes one setting: its default and how to coerce and validate
// a string value supplied by a chat admin or a persistence snapshot.
type template struct {
	defaultValue any
	coerce       func(string) (any, error)
}

var templates = map[string]template{
	Running:  {false, coerceBool},
	Timezone: {"Europe/Amsterdam", coerceTimezone},
	Modifier: {2.0, coerceModifier},
	RandomTimeFrequency: {1, func(v string) (any, error) {
		return coerceIntInRange(v, 0, 24, "the number of random times must be between 0 and 24")
	}},
	RandomTimePoints: {10, func(v string) (any, error) {
		return coerceIntInRange(v, 1, 1000, "the points must be between 1 and 1000")
	}},
	Notifications:      {true, coerceBool},
	FirstNotifications: {true, coerceBool},
	AutoLeaderboards:   {true, coerceBool},
	HardcoreMode:       {false, coerceBool},
}

// ChatSettings holds a single chat's configuration, keyed by setting name.
// The scoring engine and scheduler only read; mutation happens through
// TrySetFromString from the command layer or a restored snapshot.
type ChatSettings struct {
	mu       sync.RWMutex
	values   map[string]any
	location *time.Location
}

func New() *ChatSettings {
	values := make(map[string]any, len(templates))
	for name, t := range templates {
		values[name] = t.defaultValue
	}
	loc, _ := time.LoadLocation(values[Timezone].(string))
	return &ChatSettings{values: values, location: loc}
}

// FromSnapshot restores settings from their persisted string form. Unknown
// keys are ignored so snapshots survive removed settings.
func FromSnapshot(snapshot map[string]string) (*ChatSettings, error) {
	s := New()
	for name, value := range snapshot {
		if _, known := templates[name]; !known {
			continue
		}
		if err := s.TrySetFromString(name, value); err != nil {
			return nil, fmt.Errorf("setting %q: %w", name, err)
		}
	}
	return s, nil
}

// TrySetFromString coerces and validates value for the named setting and, on
// success, applies it. The previous value is untouched on failure.
func (s *ChatSettings) TrySetFromString(name, value string) error {
	t, ok := templates[name]
	if !ok {
		return fmt.Errorf("there is no setting named %q", name)
	}
	coerced, err := t.coerce(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = coerced
	if name == Timezone {
		// Already validated by the coercer.
		s.location, _ = time.LoadLocation(coerced.(string))
	}
	return nil
}

// Names returns all setting names, sorted.
func Names() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot renders every setting to its string form for persistence.
func (s *ChatSettings) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]string, len(s.values))
	for name, value := range s.values {
		snapshot[name] = fmt.Sprintf("%v", value)
	}
	return snapshot
}

func (s *ChatSettings) Running() bool            { return s.boolValue(Running) }
func (s *ChatSettings) Notifications() bool      { return s.boolValue(Notifications) }
func (s *ChatSettings) FirstNotifications() bool { return s.boolValue(FirstNotifications) }
func (s *ChatSettings) AutoLeaderboards() bool   { return s.boolValue(AutoLeaderboards) }
func (s *ChatSettings) HardcoreMode() bool       { return s.boolValue(HardcoreMode) }

func (s *ChatSettings) Modifier() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[Modifier].(float64)
}

func (s *ChatSettings) RandomTimeFrequency() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[RandomTimeFrequency].(int)
}

func (s *ChatSettings) RandomTimePoints() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[RandomTimePoints].(int)
}

// TimezoneLocation returns the chat's resolved IANA timezone.
func (s *ChatSettings) TimezoneLocation() *time.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.location
}

func (s *ChatSettings) boolValue(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[name].(bool)
}

func coerceBool(value string) (any, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, fmt.Errorf("this setting requires a value of 'true' or 'false'")
	}
	return b, nil
}

func coerceTimezone(value string) (any, error) {
	if _, err := time.LoadLocation(value); err != nil {
		return nil, fmt.Errorf("invalid timezone, examples: 'Europe/Amsterdam', 'UTC'")
	}
	return value, nil
}

func coerceModifier(value string) (any, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f <= 0 {
		return nil, fmt.Errorf("the modifier must be a number greater than 0")
	}
	return f, nil
}

func coerceIntInRange(value string, min, max int, msg string) (any, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < min || n > max {
		return nil, errors.New(msg)
	}
	return n, nil
}
