package repository

import (
	"context"
	"fmt"
	"net/url"
	"parkdesk/internal/entities"
	"strings"
)

type DashboardRepository struct {
	API *Client
}

func NewDashboardRepository(api *Client) *DashboardRepository {
	return &DashboardRepository{API: api}
}

func (r *DashboardRepository) GetSummary(ctx context.Context) (*entities.DashboardSummary, error) {
	var summary entities.DashboardSummary
	if err := r.API.getJSON(ctx, "/dashboard/summary", nil, &summary); err != nil {
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}
	return &summary, nil
}

// ListSessions returns parking sessions; NumberPlate matches case-insensitively
// on the parking service side.
func (r *DashboardRepository) ListSessions(ctx context.Context, filter entities.SessionFilter) ([]entities.ParkingSession, error) {
	query := url.Values{}
	if filter.Status.Valid() {
		query.Set("status", filter.Status.String())
	}
	if plate := strings.TrimSpace(filter.NumberPlate); plate != "" {
		query.Set("number_plate", plate)
	}

	var sessions []entities.ParkingSession
	if err := r.API.getJSON(ctx, "/dashboard/sessions", query, &sessions); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}
