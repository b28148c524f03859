package entities

import "time"

type DashboardSummary struct {
	TotalSlots       int `json:"total_slots"`
	AvailableSlots   int `json:"available_slots"`
	OccupiedSlots    int `json:"occupied_slots"`
	MaintenanceSlots int `json:"maintenance_slots"`
}

// SummarySnapshot is the last summary fetched together with when it was fetched.
type SummarySnapshot struct {
	Summary   DashboardSummary `json:"summary"`
	FetchedAt time.Time        `json:"fetched_at"`
	Stale     bool             `json:"stale"`
}
