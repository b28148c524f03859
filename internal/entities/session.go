package entities

// ParkingSession is one stay of a vehicle in a slot.
type ParkingSession struct {
	ID            int           `json:"id"`
	NumberPlate   string        `json:"vehicle_number_plate"`
	SlotID        int           `json:"slot_id"`
	EntryTime     Timestamp     `json:"entry_time"`
	ExitTime      *Timestamp    `json:"exit_time"`
	Status        SessionStatus `json:"status"`
	BillingType   BillingType   `json:"billing_type"`
	BillingAmount *float64      `json:"billing_amount"`
}

type SessionFilter struct {
	Status      SessionStatus
	NumberPlate string
}

type ExitResult struct {
	Message string         `json:"message"`
	Session ParkingSession `json:"session"`
}
