package repository

import (
	"context"
	"fmt"
	"net/url"
	"parkdesk/internal/entities"
)

type SlotRepository struct {
	API *Client
}

func NewSlotRepository(api *Client) *SlotRepository {
	return &SlotRepository{API: api}
}

// ListSlots returns slots matching filter. Zero filter fields are omitted.
func (r *SlotRepository) ListSlots(ctx context.Context, filter entities.SlotFilter) ([]entities.Slot, error) {
	query := url.Values{}
	if filter.Status.Valid() {
		query.Set("status", filter.Status.String())
	}
	if filter.Type.Valid() {
		query.Set("slot_type", filter.Type.String())
	}

	var slots []entities.Slot
	if err := r.API.getJSON(ctx, "/dashboard/slots", query, &slots); err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

func (r *SlotRepository) UpdateSlotStatus(ctx context.Context, slotID int, status entities.SlotStatus) (*entities.Slot, error) {
	var slot entities.Slot
	path := fmt.Sprintf("/slots/%d/status", slotID)
	if err := r.API.sendJSON(ctx, "PUT", path, entities.SlotStatusUpdate{Status: status}, &slot); err != nil {
		return nil, fmt.Errorf("update slot %d status: %w", slotID, err)
	}
	return &slot, nil
}
