package http

import (
	"net/http"

	"github.com/shiftly-hr/attendance-backend-go/internal/domain/stats"
	"github.com/shiftly-hr/attendance-backend-go/internal/handler/http/response"
)

type StatsHandler interface {
	Dashboard(w http.ResponseWriter, r *http.Request)
}

type statsHandlerImpl struct {
	statsService stats.Service
}

func NewStatsHandler(statsService stats.Service) StatsHandler {
	return &statsHandlerImpl{
		statsService: statsService,
	}
}

// Dashboard implements StatsHandler.
func (h *statsHandlerImpl) Dashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.statsService.Dashboard(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
