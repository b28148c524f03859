package entities

// Slot is a physical parking space as reported by the parking service.
type Slot struct {
	ID         int        `json:"id"`
	SlotNumber string     `json:"slot_number"`
	SlotType   SlotType   `json:"slot_type"`
	Status     SlotStatus `json:"status"`
	HasCharger bool       `json:"has_charger"`
}

func (s Slot) Available() bool {
	return s.Status == SlotAvailable
}

// SlotFilter narrows a slot listing. Zero values mean "any".
type SlotFilter struct {
	Type   SlotType
	Status SlotStatus
}

type SlotStatusUpdate struct {
	Status SlotStatus `json:"status" validate:"enum"`
}
