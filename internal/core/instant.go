package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// instantLayouts are tried in order when parsing client supplied instants.
// Values without a zone are read as UTC.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Instant is a time.Time that accepts ISO dates with or without a zone.
type Instant struct {
	time.Time
}

// NewInstant wraps t.
func NewInstant(t time.Time) Instant {
	return Instant{Time: t}
}

// ParseInstant parses s with the accepted layouts.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid instant %q", s)
}

func (i *Instant) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("instant must be a string: %w", err)
	}
	t, err := ParseInstant(s)
	if err != nil {
		return err
	}
	i.Time = t
	return nil
}

func (i Instant) MarshalJSON() ([]byte, error) {
	return i.Time.MarshalJSON()
}

// Ptr returns a pointer to the wrapped time, or nil for a nil receiver.
func (i *Instant) Ptr() *time.Time {
	if i == nil {
		return nil
	}
	t := i.Time
	return &t
}
