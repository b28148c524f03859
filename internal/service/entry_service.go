package service

import (
	"context"
	"fmt"
	"parkdesk/internal/entities"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EntryService keeps the open vehicle-entry forms and routes operator events
// to them.
type EntryService struct {
	slots     SlotLister
	vehicles  EntryGateway
	validator *Validator
	logger    *zap.Logger
	now       func() time.Time

	// onCreated is told about every recorded entry so summaries can refresh.
	onCreated func(context.Context, *entities.EntryResult)

	mu    sync.Mutex
	forms map[string]*EntryForm
}

func NewEntryService(slots SlotLister, vehicles EntryGateway, v *Validator, logger *zap.Logger, onCreated func(context.Context, *entities.EntryResult)) *EntryService {
	return &EntryService{
		slots:     slots,
		vehicles:  vehicles,
		validator: v,
		logger:    logger,
		now:       time.Now,
		onCreated: onCreated,
		forms:     make(map[string]*EntryForm),
	}
}

// OpenForm creates a form, loads its slot cache and fetches the suggestion
// for the default vehicle type.
func (s *EntryService) OpenForm(ctx context.Context) (FormView, error) {
	form := newEntryForm(uuid.NewString(), s.slots, s.vehicles, s.validator, s.logger, s.now)

	s.mu.Lock()
	s.forms[form.ID] = form
	s.mu.Unlock()

	form.LoadSlotCache(ctx)
	view, err := form.SelectVehicleType(ctx, form.View().VehicleType)
	if err != nil {
		return view, fmt.Errorf("open entry form: %w", err)
	}
	s.logger.Debug("Entry form opened", zap.String("form_id", form.ID))
	return view, nil
}

func (s *EntryService) Form(id string) (*EntryForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	form, ok := s.forms[id]
	if !ok {
		return nil, ErrFormNotFound
	}
	return form, nil
}

func (s *EntryService) SelectVehicleType(ctx context.Context, id string, vt entities.VehicleType) (FormView, error) {
	form, err := s.Form(id)
	if err != nil {
		return FormView{}, err
	}
	return form.SelectVehicleType(ctx, vt)
}

func (s *EntryService) OverrideSlot(id, text string) (FormView, error) {
	form, err := s.Form(id)
	if err != nil {
		return FormView{}, err
	}
	return form.OverrideSlot(text)
}

func (s *EntryService) UpdateDraft(id, plate string, billing entities.BillingType) (FormView, error) {
	form, err := s.Form(id)
	if err != nil {
		return FormView{}, err
	}
	return form.UpdateDraft(plate, billing)
}

// Submit records the entry. A successful submit closes and forgets the form
// and notifies the listener.
func (s *EntryService) Submit(ctx context.Context, id string) (FormView, error) {
	form, err := s.Form(id)
	if err != nil {
		return FormView{}, err
	}
	view, err := form.Submit(ctx)
	if err != nil {
		return view, err
	}
	s.forget(id)
	if s.onCreated != nil && view.Result != nil {
		s.onCreated(ctx, view.Result)
	}
	return view, nil
}

// CloseForm discards the form and its draft.
func (s *EntryService) CloseForm(id string) error {
	form, err := s.Form(id)
	if err != nil {
		return err
	}
	form.close()
	s.forget(id)
	return nil
}

// EvictIdleForms drops forms with no activity for longer than ttl and
// returns how many were dropped.
func (s *EntryService) EvictIdleForms(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	var idle []*EntryForm
	for id, form := range s.forms {
		if form.idleSince().Before(cutoff) {
			idle = append(idle, form)
			delete(s.forms, id)
		}
	}
	s.mu.Unlock()

	for _, form := range idle {
		form.close()
	}
	return len(idle)
}

func (s *EntryService) OpenForms() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.forms)
}

func (s *EntryService) forget(id string) {
	s.mu.Lock()
	delete(s.forms, id)
	s.mu.Unlock()
}
