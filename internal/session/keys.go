package session

import (
	"strings"

	"github.com/vytor/wordflash/internal/models"
)

// Key codes of the keyboard surface, named after DOM KeyboardEvent.code.
const (
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeySpace      = "Space"
	KeyDigit1     = "Digit1"
	KeyDigit2     = "Digit2"
	KeyDigit3     = "Digit3"
)

var gradeKeys = map[string]models.Status{
	strings.ToLower(KeyDigit1): models.StatusKnown,
	strings.ToLower(KeyDigit2): models.StatusPartial,
	strings.ToLower(KeyDigit3): models.StatusUnknown,
}

// Press dispatches a key code to the matching operation. handled is false
// for keys that have no binding.
func (s *Session) Press(code string) (handled bool, err error) {
	key := strings.ToLower(strings.TrimSpace(code))
	switch key {
	case strings.ToLower(KeyArrowLeft):
		return true, s.Advance(models.Backward)
	case strings.ToLower(KeyArrowRight):
		return true, s.Advance(models.Forward)
	case strings.ToLower(KeySpace):
		return true, s.Flip()
	}
	if status, ok := gradeKeys[key]; ok {
		return true, s.Grade(status)
	}
	return false, nil
}
