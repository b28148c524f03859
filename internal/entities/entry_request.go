package entities

// EntryRequest is the body of a vehicle entry creation.
type EntryRequest struct {
	NumberPlate string      `json:"number_plate" validate:"required,max=20"`
	VehicleType VehicleType `json:"vehicle_type" validate:"enum"`
	BillingType BillingType `json:"billing_type" validate:"enum"`
	SlotID      int         `json:"slot_id" validate:"required,gt=0"`
}

type EntryResult struct {
	Message      string         `json:"message"`
	Session      ParkingSession `json:"session"`
	AssignedSlot Slot           `json:"assigned_slot"`
}
