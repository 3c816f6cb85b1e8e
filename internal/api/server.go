package api

import (
	"net/http"

	"github.com/vytor/wordflash/internal/services"
)

type Server struct {
	StudyService services.StudyService
	// Pinger reports database health for /readyz. Optional.
	Pinger Pinger
	// Metrics serves /metrics. Optional.
	Metrics http.Handler
}
