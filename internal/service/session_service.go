package service

import (
	"context"
	"parkdesk/internal/entities"

	"go.uber.org/zap"
)

type SessionLister interface {
	ListSessions(ctx context.Context, filter entities.SessionFilter) ([]entities.ParkingSession, error)
}

type VehicleExiter interface {
	ExitVehicle(ctx context.Context, sessionID int) (*entities.ExitResult, error)
}

type SessionService struct {
	sessions SessionLister
	vehicles VehicleExiter
	logger   *zap.Logger
	onChange func(context.Context)
}

func NewSessionService(sessions SessionLister, vehicles VehicleExiter, logger *zap.Logger, onChange func(context.Context)) *SessionService {
	return &SessionService{sessions: sessions, vehicles: vehicles, logger: logger, onChange: onChange}
}

func (s *SessionService) ListSessions(ctx context.Context, filter entities.SessionFilter) ([]entities.ParkingSession, error) {
	return s.sessions.ListSessions(ctx, filter)
}

func (s *SessionService) ExitVehicle(ctx context.Context, sessionID int) (*entities.ExitResult, error) {
	res, err := s.vehicles.ExitVehicle(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Vehicle exited",
		zap.Int("session_id", sessionID),
		zap.String("number_plate", res.Session.NumberPlate),
	)
	if s.onChange != nil {
		s.onChange(ctx)
	}
	return res, nil
}
