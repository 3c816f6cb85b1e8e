package services

import (
	"time"

	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/session"
)

// StudyConfig holds the settings every new session is created with
type StudyConfig struct {
	Mode       models.Mode
	GradeDelay time.Duration
	// SessionOptions are appended after Mode and GradeDelay.
	SessionOptions []session.Option
}
