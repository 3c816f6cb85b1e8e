package models

import (
	"fmt"
	"strings"
	"time"
)

// Filter selects which cards of a deck are navigated.
type Filter string

const (
	FilterAll     Filter = "all"
	FilterPartial Filter = "partial"
	FilterUnknown Filter = "unknown"
)

// ParseFilter accepts "all", "partial" or "unknown".
func ParseFilter(v string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(v))); f {
	case FilterAll, FilterPartial, FilterUnknown:
		return f, nil
	}
	return "", fmt.Errorf("invalid filter %q", v)
}

// Matches reports whether a card with status s belongs to the filtered view.
func (f Filter) Matches(s Status) bool {
	switch f {
	case FilterPartial:
		return s == StatusPartial
	case FilterUnknown:
		return s == StatusUnknown
	default:
		return true
	}
}

// Mode is the navigation policy of a session.
type Mode string

const (
	ModeLinear Mode = "linear"
	ModeRandom Mode = "random"
)

// ParseMode accepts "linear" or "random".
func ParseMode(v string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(v))); m {
	case ModeLinear, ModeRandom:
		return m, nil
	}
	return "", fmt.Errorf("invalid navigation mode %q", v)
}

// Direction of a navigation step.
type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

// ParseDirection accepts "forward"/"next" and "backward"/"previous".
func ParseDirection(v string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "forward", "next":
		return Forward, nil
	case "backward", "previous", "prev":
		return Backward, nil
	}
	return "", fmt.Errorf("invalid direction %q", v)
}

// Feedback is the transient acknowledgment shown after a grade.
type Feedback struct {
	Status    Status    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
}

// View is everything a renderer needs to draw a session.
type View struct {
	SessionID   string    `json:"session_id,omitempty"`
	DatasetID   string    `json:"dataset_id,omitempty"`
	Loading     bool      `json:"loading"`
	Empty       bool      `json:"empty"`
	Front       string    `json:"front"`
	Back        string    `json:"back"`
	Flipped     bool      `json:"flipped"`
	Position    int       `json:"position"`
	Total       int       `json:"total"`
	Label       string    `json:"label"`
	CanNavigate bool      `json:"can_navigate"`
	Filter      Filter    `json:"filter"`
	Mode        Mode      `json:"mode"`
	Stats       Stats     `json:"stats"`
	Band        Band      `json:"band"`
	Feedback    *Feedback `json:"feedback,omitempty"`
	Error       string    `json:"error,omitempty"`
}
