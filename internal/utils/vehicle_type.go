package utils

import (
	"parkdesk/internal/entities"
	"strings"
)

// FilterCategories are the grid filter choices offered to operators, in display order.
var FilterCategories = []string{"All", "Car", "Bike", "EV", "Accessibility"}

// SlotTypeForFilter maps a grid filter category to the slot type sent to the
// parking service. "All" and unknown categories return ok=false (no filter).
func SlotTypeForFilter(category string) (entities.SlotType, bool) {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "car":
		return entities.SlotRegular, true
	case "bike":
		return entities.SlotBike, true
	case "ev":
		return entities.SlotEV, true
	case "accessibility", "accesibility":
		return entities.SlotAccessible, true
	}
	return 0, false
}

// NormalizeFilter returns the canonical category name, defaulting to "All".
func NormalizeFilter(category string) string {
	for _, c := range FilterCategories {
		if strings.EqualFold(c, strings.TrimSpace(category)) {
			return c
		}
	}
	if strings.EqualFold(strings.TrimSpace(category), "accesibility") {
		return "Accessibility"
	}
	return "All"
}

// NormalizePlate uppercases a number plate and strips surrounding blanks.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}
