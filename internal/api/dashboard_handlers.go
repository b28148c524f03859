package api

import (
	"net/http"
	"parkdesk/internal/entities"
	"parkdesk/internal/service"
	"parkdesk/internal/utils"

	"go.uber.org/zap"
)

type DashboardPage struct {
	Page
	Summary *entities.SummarySnapshot
	Rows    []utils.GridRow
	Filter  string
	Filters []string
}

type DashboardHandler struct {
	Dashboard *service.DashboardService
	Entries   *service.EntryService
	render    *Renderer
	logger    *zap.Logger
}

func NewDashboardHandler(dashboard *service.DashboardService, entries *service.EntryService, render *Renderer, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{Dashboard: dashboard, Entries: entries, render: render, logger: logger}
}

// Index shows the occupancy counters and the slot grid. Either part may fail
// on its own; the page still renders what it has.
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	data := DashboardPage{
		Page:    Page{Title: "Dashboard", Nav: "dashboard"},
		Filters: utils.FilterCategories,
	}
	if snap, err := h.Dashboard.Summary(r.Context()); err != nil {
		h.logger.Warn("Dashboard summary unavailable", zap.Error(err))
		data.Error = errorResponse(err).Error
	} else {
		data.Summary = &snap
	}

	rows, filter, err := h.Dashboard.Grid(r.Context(), r.URL.Query().Get("filter"))
	data.Filter = filter
	if err != nil {
		h.logger.Warn("Slot grid unavailable", zap.Error(err))
		data.Error = errorResponse(err).Error
	}
	data.Rows = rows
	h.render.Render(w, http.StatusOK, "dashboard.html", data)
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Dashboard.Summary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *DashboardHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", OpenForms: h.Entries.OpenForms()})
}

type EntryPage struct {
	Page
	VehicleTypes []entities.VehicleType
	BillingTypes []entities.BillingType
	// SlotInvalid is shown by the page's local override check.
	SlotInvalid  string
}

// Entry serves the vehicle entry screen; the form itself is driven by the
// JSON API.
func (h *DashboardHandler) Entry(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "entry.html", EntryPage{
		Page:         Page{Title: "Vehicle Entry", Nav: "entry"},
		VehicleTypes: entities.VehicleTypes,
		BillingTypes: entities.BillingTypes,
		SlotInvalid:  service.MsgSlotInvalid,
	})
}
