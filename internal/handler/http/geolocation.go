package http

import (
	"encoding/json"
	"net/http"

	"github.com/shiftly-hr/attendance-backend-go/internal/domain/geolocation"
	"github.com/shiftly-hr/attendance-backend-go/internal/handler/http/response"
	"github.com/shiftly-hr/attendance-backend-go/internal/pkg/jwt"
	"github.com/shiftly-hr/attendance-backend-go/internal/pkg/validator"
)

type GeolocationHandler interface {
	PermissionChanged(w http.ResponseWriter, r *http.Request)
	State(w http.ResponseWriter, r *http.Request)
}

type geolocationHandlerImpl struct {
	resolver geolocation.Resolver
}

func NewGeolocationHandler(resolver geolocation.Resolver) GeolocationHandler {
	return &geolocationHandlerImpl{
		resolver: resolver,
	}
}

type permissionChangedRequest struct {
	Permission string `json:"permission"`
}

// PermissionChanged implements GeolocationHandler. A granted or prompt
// state lifts the denial short-circuit so the next punch attempts
// acquisition again.
func (h *geolocationHandlerImpl) PermissionChanged(w http.ResponseWriter, r *http.Request) {
	employeeID, err := jwt.EmployeeIDFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var req permissionChangedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	valid := []string{
		string(geolocation.PermissionPrompt),
		string(geolocation.PermissionGranted),
		string(geolocation.PermissionDenied),
	}
	if !validator.IsInSlice(req.Permission, valid) {
		response.HandleError(w, validator.ValidationErrors{{
			Field:   "permission",
			Message: "permission must be one of prompt, granted, denied",
		}})
		return
	}

	h.resolver.PermissionChanged(employeeID, geolocation.Permission(req.Permission))

	response.SuccessWithMessage(w, "Permission state updated", nil)
}

type stateResponse struct {
	Supported  bool    `json:"supported"`
	Permission string  `json:"permission"`
	LastError  *string `json:"last_error,omitempty"`
}

// State implements GeolocationHandler.
func (h *geolocationHandlerImpl) State(w http.ResponseWriter, r *http.Request) {
	employeeID, err := jwt.EmployeeIDFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	st := h.resolver.StateFor(employeeID)

	resp := stateResponse{
		Supported:  st.Supported,
		Permission: string(st.Permission),
	}
	if st.LastError != nil {
		kind := string(*st.LastError)
		resp.LastError = &kind
	}

	response.Success(w, resp)
}
