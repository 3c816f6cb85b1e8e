package models

import (
	"fmt"
	"strings"
)

// Status is the self-assessed recall grade of a card.
type Status int

const (
	StatusUnknown Status = iota
	StatusKnown
	StatusPartial
)

var statusNames = [...]string{
	StatusUnknown: "unknown",
	StatusKnown:   "known",
	StatusPartial: "partial",
}

func (s Status) String() string {
	if s.IsValid() {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// IsValid reports whether s is one of the defined statuses.
func (s Status) IsValid() bool {
	return s >= StatusUnknown && s <= StatusPartial
}

// ParseStatus parses "known", "partial" or "unknown" (case-insensitive).
func ParseStatus(v string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "known":
		return StatusKnown, nil
	case "partial":
		return StatusPartial, nil
	case "unknown":
		return StatusUnknown, nil
	}
	return StatusUnknown, fmt.Errorf("invalid status %q", v)
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Card is one question/answer unit of a deck. SideA and SideB are fixed at
// load time; only Status changes afterwards.
type Card struct {
	ID     int    `json:"id"`
	SideA  string `json:"side_a"`
	SideB  string `json:"side_b"`
	Status Status `json:"status"`
}

// RawEntry is a word list entry after field-name normalisation.
type RawEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
