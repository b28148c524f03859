package entities

import (
	"fmt"
	"strings"
)

// enumTable is the single mapping between an enum's Go value and its wire
// string. Aliases are extra spellings accepted on parse only.
type enumTable[T ~int] struct {
	name    string
	wire    map[T]string
	aliases map[string]T
}

func (t enumTable[T]) format(v T) string {
	if s, ok := t.wire[v]; ok {
		return s
	}
	return fmt.Sprintf("%s(%d)", t.name, int(v))
}

func (t enumTable[T]) parse(s string) (T, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for v, w := range t.wire {
		if strings.ToLower(w) == key {
			return v, nil
		}
	}
	if v, ok := t.aliases[key]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("unknown %s %q", t.name, s)
}

// VehicleType is the kind of vehicle entering the lot.
type VehicleType int

const (
	VehicleCar VehicleType = iota + 1
	VehicleBike
	VehicleEV
	VehicleAccessible
)

// VehicleTypes lists every vehicle type in display order.
var VehicleTypes = []VehicleType{VehicleCar, VehicleBike, VehicleEV, VehicleAccessible}

var vehicleTypeTable = enumTable[VehicleType]{
	name: "vehicle type",
	wire: map[VehicleType]string{
		VehicleCar:        "Car",
		VehicleBike:       "Bike",
		VehicleEV:         "EV",
		VehicleAccessible: "Handicap Accessible",
	},
	aliases: map[string]VehicleType{
		"accessibility": VehicleAccessible,
		"accesibility":  VehicleAccessible,
		"handicap":      VehicleAccessible,
		"regular":       VehicleCar,
	},
}

func ParseVehicleType(s string) (VehicleType, error) { return vehicleTypeTable.parse(s) }

func (v VehicleType) String() string { return vehicleTypeTable.format(v) }

func (v VehicleType) Valid() bool {
	_, ok := vehicleTypeTable.wire[v]
	return ok
}

func (v VehicleType) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("invalid vehicle type %d", int(v))
	}
	return []byte(v.String()), nil
}

func (v *VehicleType) UnmarshalText(b []byte) error {
	parsed, err := ParseVehicleType(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// SlotType is the physical kind of a parking slot.
type SlotType int

const (
	SlotRegular SlotType = iota + 1
	SlotCompact
	SlotEV
	SlotAccessible
	SlotBike
)

var slotTypeTable = enumTable[SlotType]{
	name: "slot type",
	wire: map[SlotType]string{
		SlotRegular:    "Regular",
		SlotCompact:    "Compact",
		SlotEV:         "EV",
		SlotAccessible: "Handicap Accessible",
		SlotBike:       "Bike",
	},
	aliases: map[string]SlotType{
		"handicap":      SlotAccessible,
		"accessibility": SlotAccessible,
	},
}

func ParseSlotType(s string) (SlotType, error) { return slotTypeTable.parse(s) }

func (t SlotType) String() string { return slotTypeTable.format(t) }

func (t SlotType) Valid() bool {
	_, ok := slotTypeTable.wire[t]
	return ok
}

func (t SlotType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid slot type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *SlotType) UnmarshalText(b []byte) error {
	parsed, err := ParseSlotType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// SlotStatus is the occupancy state of a slot.
type SlotStatus int

const (
	SlotAvailable SlotStatus = iota + 1
	SlotOccupied
	SlotMaintenance
)

var slotStatusTable = enumTable[SlotStatus]{
	name: "slot status",
	wire: map[SlotStatus]string{
		SlotAvailable:   "Available",
		SlotOccupied:    "Occupied",
		SlotMaintenance: "Maintenance",
	},
}

func ParseSlotStatus(s string) (SlotStatus, error) { return slotStatusTable.parse(s) }

func (s SlotStatus) String() string { return slotStatusTable.format(s) }

func (s SlotStatus) Valid() bool {
	_, ok := slotStatusTable.wire[s]
	return ok
}

// Label is the human form used in pages, e.g. "Available".
func (s SlotStatus) Label() string {
	return s.String()
}

func (s SlotStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid slot status %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *SlotStatus) UnmarshalText(b []byte) error {
	parsed, err := ParseSlotStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// BillingType selects how a session is charged.
type BillingType int

const (
	BillingHourly BillingType = iota + 1
	BillingDayPass
)

// BillingTypes lists every billing type in display order.
var BillingTypes = []BillingType{BillingHourly, BillingDayPass}

var billingTypeTable = enumTable[BillingType]{
	name: "billing type",
	wire: map[BillingType]string{
		BillingHourly:  "Hourly",
		BillingDayPass: "Day Pass",
	},
	aliases: map[string]BillingType{
		"day_pass": BillingDayPass,
		"daypass":  BillingDayPass,
	},
}

func ParseBillingType(s string) (BillingType, error) { return billingTypeTable.parse(s) }

func (b BillingType) String() string { return billingTypeTable.format(b) }

func (b BillingType) Valid() bool {
	_, ok := billingTypeTable.wire[b]
	return ok
}

func (b BillingType) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("invalid billing type %d", int(b))
	}
	return []byte(b.String()), nil
}

func (b *BillingType) UnmarshalText(text []byte) error {
	parsed, err := ParseBillingType(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// SessionStatus is the lifecycle state of a parking session.
type SessionStatus int

const (
	SessionActive SessionStatus = iota + 1
	SessionCompleted
)

var sessionStatusTable = enumTable[SessionStatus]{
	name: "session status",
	wire: map[SessionStatus]string{
		SessionActive:    "Active",
		SessionCompleted: "Completed",
	},
}

func ParseSessionStatus(s string) (SessionStatus, error) { return sessionStatusTable.parse(s) }

func (s SessionStatus) String() string { return sessionStatusTable.format(s) }

func (s SessionStatus) Valid() bool {
	_, ok := sessionStatusTable.wire[s]
	return ok
}

func (s SessionStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid session status %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *SessionStatus) UnmarshalText(b []byte) error {
	parsed, err := ParseSessionStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
