package api

import (
	"parkdesk/internal/entities"
	"parkdesk/internal/service"
)

// Entry form
type VehicleTypeRequest struct {
	VehicleType entities.VehicleType `json:"vehicle_type"`
}

type SlotOverrideRequest struct {
	SlotInput string `json:"slot_input"`
}

type DraftRequest struct {
	NumberPlate string               `json:"number_plate"`
	BillingType entities.BillingType `json:"billing_type"`
}

type SubmitResponse struct {
	Message string           `json:"message"`
	Form    service.FormView `json:"form"`
}

// Errors
type ErrorResponse struct {
	Error  string                    `json:"error"`
	Fields []service.ValidationError `json:"fields,omitempty"`
	Form   *service.FormView         `json:"form,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	OpenForms int    `json:"open_forms"`
}
