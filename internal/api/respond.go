package api

import (
	"encoding/json"
	"errors"
	"net/http"
	apierrors "parkdesk/internal/errors"
	"parkdesk/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps service and parking service errors onto response codes.
func statusFor(err error) int {
	var verrs service.ValidationErrors
	switch {
	case errors.Is(err, service.ErrFormNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrBusy), errors.Is(err, service.ErrFormClosed):
		return http.StatusConflict
	case errors.Is(err, service.ErrSlotRequired), errors.As(err, &verrs):
		return http.StatusUnprocessableEntity
	case apierrors.StatusCode(err) != 0:
		return apierrors.StatusCode(err)
	case errors.Is(err, apierrors.ErrUnavailable):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func errorResponse(err error) ErrorResponse {
	var verrs service.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return ErrorResponse{Error: verrs.Message(), Fields: verrs}
	case errors.Is(err, service.ErrSlotRequired):
		return ErrorResponse{Error: service.MsgSlotRequired}
	}
	return ErrorResponse{Error: apierrors.Message(err)}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse(err))
}

// writeFormError reports err along with the form it left behind, so the page
// can redraw without a second request.
func writeFormError(w http.ResponseWriter, err error, view service.FormView) {
	resp := errorResponse(err)
	if view.ID != "" {
		resp.Form = &view
	}
	writeJSON(w, statusFor(err), resp)
}
