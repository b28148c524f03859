package api

import (
	"fmt"
	"net/http"
	"net/url"
	"parkdesk/internal/entities"
	"parkdesk/internal/service"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type SlotsPage struct {
	Page
	Slots []entities.Slot
}

type SlotEditPage struct {
	Page
	Slot     entities.Slot
	Statuses []entities.SlotStatus
	Locked   bool
}

type SlotHandler struct {
	Service *service.SlotService
	render  *Renderer
	logger  *zap.Logger
}

func NewSlotHandler(svc *service.SlotService, render *Renderer, logger *zap.Logger) *SlotHandler {
	return &SlotHandler{Service: svc, render: render, logger: logger}
}

func (h *SlotHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	data := SlotsPage{Page: Page{Title: "Slots", Nav: "slots", Notice: r.URL.Query().Get("notice")}}
	slots, err := h.Service.ListSlots(r.Context())
	if err != nil {
		h.logger.Warn("Listing slots failed", zap.Error(err))
		data.Error = errorResponse(err).Error
		h.render.Render(w, statusFor(err), "slots.html", data)
		return
	}
	data.Slots = slots
	h.render.Render(w, http.StatusOK, "slots.html", data)
}

func (h *SlotHandler) EditSlot(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	slot, err := h.Service.GetSlot(r.Context(), id)
	if err != nil {
		h.render.Render(w, statusFor(err), "slots.html", SlotsPage{
			Page: Page{Title: "Slots", Nav: "slots", Error: errorResponse(err).Error},
		})
		return
	}
	h.render.Render(w, http.StatusOK, "slot_edit.html", h.editPage(*slot, ""))
}

// UpdateSlot handles the edit form. Browsers post it with _method=PUT.
func (h *SlotHandler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	status, parseErr := entities.ParseSlotStatus(r.PostFormValue("status"))
	var updated *entities.Slot
	if parseErr == nil {
		updated, err = h.Service.UpdateStatus(r.Context(), id, status)
	}
	if parseErr != nil || err != nil {
		slot, getErr := h.Service.GetSlot(r.Context(), id)
		if getErr != nil {
			h.render.Render(w, statusFor(getErr), "slots.html", SlotsPage{
				Page: Page{Title: "Slots", Nav: "slots", Error: errorResponse(getErr).Error},
			})
			return
		}
		code, msg := http.StatusUnprocessableEntity, "Choose Available or Maintenance."
		if parseErr == nil {
			code, msg = statusFor(err), errorResponse(err).Error
		}
		h.render.Render(w, code, "slot_edit.html", h.editPage(*slot, msg))
		return
	}

	notice := fmt.Sprintf("Slot %s is now %s.", updated.SlotNumber, updated.Status.Label())
	http.Redirect(w, r, "/slots?"+url.Values{"notice": {notice}}.Encode(), http.StatusSeeOther)
}

func (h *SlotHandler) editPage(slot entities.Slot, errMsg string) SlotEditPage {
	return SlotEditPage{
		Page:     Page{Title: "Edit slot " + slot.SlotNumber, Nav: "slots", Error: errMsg},
		Slot:     slot,
		Statuses: service.EditableStatuses,
		Locked:   slot.Status == entities.SlotOccupied,
	}
}
