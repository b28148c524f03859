package service

import (
	"context"
	"fmt"
	"net/http"
	"parkdesk/internal/entities"
	apierrors "parkdesk/internal/errors"
	"sort"

	"go.uber.org/zap"
)

// Refusals are HTTPErrors so pages show their message as is.
var (
	ErrSlotNotFound     = apierrors.ErrNotFound("Slot not found.")
	ErrSlotLocked       = apierrors.ErrConflict("Status cannot be changed while a slot is occupied.")
	ErrStatusUnchanged  = apierrors.ErrConflict("The slot already has that status.")
	ErrStatusNotAllowed = apierrors.NewHTTPError(http.StatusUnprocessableEntity, "Only Available or Maintenance can be set manually.")
)

// EditableStatuses are the statuses an operator may set by hand.
var EditableStatuses = []entities.SlotStatus{entities.SlotAvailable, entities.SlotMaintenance}

type SlotUpdater interface {
	SlotLister
	UpdateSlotStatus(ctx context.Context, slotID int, status entities.SlotStatus) (*entities.Slot, error)
}

type SlotService struct {
	repo      SlotUpdater
	validator *Validator
	logger    *zap.Logger
	onChange  func(context.Context)
}

func NewSlotService(repo SlotUpdater, v *Validator, logger *zap.Logger, onChange func(context.Context)) *SlotService {
	return &SlotService{repo: repo, validator: v, logger: logger, onChange: onChange}
}

// ListSlots returns every slot ordered by slot number.
func (s *SlotService) ListSlots(ctx context.Context) ([]entities.Slot, error) {
	slots, err := s.repo.ListSlots(ctx, entities.SlotFilter{})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].SlotNumber < slots[j].SlotNumber
	})
	return slots, nil
}

// GetSlot looks a slot up by id. The parking service has no single-slot read,
// so this scans the full listing.
func (s *SlotService) GetSlot(ctx context.Context, id int) (*entities.Slot, error) {
	slots, err := s.repo.ListSlots(ctx, entities.SlotFilter{})
	if err != nil {
		return nil, err
	}
	for i := range slots {
		if slots[i].ID == id {
			return &slots[i], nil
		}
	}
	return nil, ErrSlotNotFound
}

// UpdateStatus changes a slot between Available and Maintenance. Occupied
// slots and no-op changes are refused without calling the parking service.
func (s *SlotService) UpdateStatus(ctx context.Context, id int, status entities.SlotStatus) (*entities.Slot, error) {
	if err := s.validator.Struct(entities.SlotStatusUpdate{Status: status}); err != nil {
		return nil, err
	}
	editable := false
	for _, st := range EditableStatuses {
		if st == status {
			editable = true
		}
	}
	if !editable {
		return nil, ErrStatusNotAllowed
	}

	slot, err := s.GetSlot(ctx, id)
	if err != nil {
		return nil, err
	}
	if slot.Status == entities.SlotOccupied {
		return nil, ErrSlotLocked
	}
	if slot.Status == status {
		return nil, ErrStatusUnchanged
	}

	updated, err := s.repo.UpdateSlotStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update slot %s: %w", slot.SlotNumber, err)
	}
	s.logger.Info("Slot status updated",
		zap.String("slot_number", slot.SlotNumber),
		zap.Stringer("from", slot.Status),
		zap.Stringer("to", status),
	)
	if s.onChange != nil {
		s.onChange(ctx)
	}
	return updated, nil
}
