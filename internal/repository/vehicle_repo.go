package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"parkdesk/internal/entities"
	apierrors "parkdesk/internal/errors"
)

type VehicleRepository struct {
	API *Client
}

func NewVehicleRepository(api *Client) *VehicleRepository {
	return &VehicleRepository{API: api}
}

// SuggestSlot asks the parking service for a slot for vehicleType. It returns
// a nil slot when the service has none (404 or an empty body).
func (r *VehicleRepository) SuggestSlot(ctx context.Context, vehicleType entities.VehicleType) (*entities.Slot, error) {
	query := url.Values{}
	query.Set("vehicle_type", vehicleType.String())

	var raw json.RawMessage
	err := r.API.getJSON(ctx, "/vehicles/suggest-slot", query, &raw)
	if err != nil {
		var httpErr *apierrors.HTTPError
		if errors.As(err, &httpErr) && httpErr.Code == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("suggest slot for %s: %w", vehicleType, err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var slot entities.Slot
	if err := json.Unmarshal(trimmed, &slot); err != nil {
		return nil, fmt.Errorf("suggest slot for %s: %w: %v", vehicleType, apierrors.ErrUnavailable, err)
	}
	if slot.ID == 0 {
		return nil, nil
	}
	return &slot, nil
}

func (r *VehicleRepository) CreateEntry(ctx context.Context, req entities.EntryRequest) (*entities.EntryResult, error) {
	var res entities.EntryResult
	if err := r.API.sendJSON(ctx, "POST", "/vehicles/entry", req, &res); err != nil {
		return nil, fmt.Errorf("create entry for %s: %w", req.NumberPlate, err)
	}
	return &res, nil
}

func (r *VehicleRepository) ExitVehicle(ctx context.Context, sessionID int) (*entities.ExitResult, error) {
	var res entities.ExitResult
	path := fmt.Sprintf("/vehicles/exit/%d", sessionID)
	if err := r.API.sendJSON(ctx, "PUT", path, nil, &res); err != nil {
		return nil, fmt.Errorf("exit session %d: %w", sessionID, err)
	}
	return &res, nil
}
