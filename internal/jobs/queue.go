package jobs

import (
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/session"
)

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	// EnqueueLoad fetches ds into s. s must already be in its loading state;
	// the job calls FinishLoad when it is done.
	EnqueueLoad(s *session.Session, ds models.Dataset) error
}
