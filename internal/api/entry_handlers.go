package api

import (
	"encoding/json"
	"net/http"
	"parkdesk/internal/service"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type EntryFormHandler struct {
	Service *service.EntryService
	logger  *zap.Logger
}

func NewEntryFormHandler(svc *service.EntryService, logger *zap.Logger) *EntryFormHandler {
	return &EntryFormHandler{Service: svc, logger: logger}
}

func (h *EntryFormHandler) OpenForm(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.OpenForm(r.Context())
	if err != nil {
		h.logger.Error("Opening entry form failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *EntryFormHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	form, err := h.Service.Form(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form.View())
}

func (h *EntryFormHandler) SelectVehicleType(w http.ResponseWriter, r *http.Request) {
	var req VehicleTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	view, err := h.Service.SelectVehicleType(r.Context(), mux.Vars(r)["id"], req.VehicleType)
	if err != nil {
		writeFormError(w, err, view)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *EntryFormHandler) OverrideSlot(w http.ResponseWriter, r *http.Request) {
	var req SlotOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	view, err := h.Service.OverrideSlot(mux.Vars(r)["id"], req.SlotInput)
	if err != nil {
		writeFormError(w, err, view)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *EntryFormHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	view, err := h.Service.UpdateDraft(mux.Vars(r)["id"], req.NumberPlate, req.BillingType)
	if err != nil {
		writeFormError(w, err, view)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *EntryFormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.Submit(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeFormError(w, err, view)
		return
	}
	msg := service.MsgEntryRecorded
	if view.Result != nil && view.Result.Message != "" {
		msg = view.Result.Message
	}
	writeJSON(w, http.StatusCreated, SubmitResponse{Message: msg, Form: view})
}

func (h *EntryFormHandler) CloseForm(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.CloseForm(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
