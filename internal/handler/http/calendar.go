package http

import (
	"net/http"
	"time"

	"github.com/shiftly-hr/attendance-backend-go/internal/domain/calendar"
	"github.com/shiftly-hr/attendance-backend-go/internal/handler/http/response"
	"github.com/shiftly-hr/attendance-backend-go/internal/pkg/validator"
)

type CalendarHandler interface {
	Events(w http.ResponseWriter, r *http.Request)
}

type calendarHandlerImpl struct {
	calendarService calendar.Service
}

func NewCalendarHandler(calendarService calendar.Service) CalendarHandler {
	return &calendarHandlerImpl{
		calendarService: calendarService,
	}
}

// Events implements CalendarHandler. The visible window comes from the
// client; end is exclusive.
func (h *calendarHandlerImpl) Events(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var errs validator.ValidationErrors

	start, ok := validator.IsValidDate(query.Get("start_date"))
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	end, ok := validator.IsValidDate(query.Get("end_date"))
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	if !end.After(start) {
		response.BadRequest(w, "end_date must be after start_date", nil)
		return
	}
	if end.Sub(start) > 92*24*time.Hour {
		response.BadRequest(w, "Date range must not exceed three months", nil)
		return
	}

	events, err := h.calendarService.Compose(r.Context(), start, end)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, events)
}
