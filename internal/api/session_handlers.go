package api

import (
	"net/http"
	"net/url"
	"parkdesk/internal/entities"
	"parkdesk/internal/service"
	"parkdesk/internal/utils"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type SessionsPage struct {
	Page
	Sessions []entities.ParkingSession
	Status   string
	Query    string
}

type SessionHandler struct {
	Service *service.SessionService
	render  *Renderer
	logger  *zap.Logger
}

func NewSessionHandler(svc *service.SessionService, render *Renderer, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{Service: svc, render: render, logger: logger}
}

// ListSessions shows parking sessions, optionally narrowed by status and a
// plate search. An unknown status shows all sessions.
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := SessionsPage{
		Page:  Page{Title: "Sessions", Nav: "sessions", Notice: q.Get("notice"), Error: q.Get("error")},
		Query: utils.NormalizePlate(q.Get("q")),
	}
	filter := entities.SessionFilter{NumberPlate: data.Query}
	if st, err := entities.ParseSessionStatus(q.Get("status")); err == nil {
		filter.Status = st
		data.Status = st.String()
	}

	sessions, err := h.Service.ListSessions(r.Context(), filter)
	if err != nil {
		h.logger.Warn("Listing sessions failed", zap.Error(err))
		data.Error = errorResponse(err).Error
		h.render.Render(w, statusFor(err), "sessions.html", data)
		return
	}
	data.Sessions = sessions
	h.render.Render(w, http.StatusOK, "sessions.html", data)
}

func (h *SessionHandler) ExitVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	params := url.Values{}
	res, err := h.Service.ExitVehicle(r.Context(), id)
	if err != nil {
		h.logger.Info("Vehicle exit rejected", zap.Int("session_id", id), zap.Error(err))
		params.Set("error", errorResponse(err).Error)
	} else {
		params.Set("notice", res.Message)
	}
	http.Redirect(w, r, "/sessions?"+params.Encode(), http.StatusSeeOther)
}
