package service

import (
	"context"
	"errors"
	"fmt"
	"parkdesk/internal/entities"
	apierrors "parkdesk/internal/errors"
	"parkdesk/internal/utils"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FormState is where an entry form is in the assignment flow.
type FormState string

const (
	StateIdle               FormState = "idle"
	StateFetchingSuggestion FormState = "fetching_suggestion"
	StateSuggested          FormState = "suggested"
	StateNotFound           FormState = "not_found"
	StateFetchError         FormState = "fetch_error"
	StateValidated          FormState = "validated"
	StateInvalid            FormState = "invalid"
	StateEmpty              FormState = "empty"
	StateSubmitting         FormState = "submitting"
	StateSubmitError        FormState = "submit_error"
	StateClosed             FormState = "closed"
)

const (
	NoSlotFoundText  = "No slot found"
	MsgCacheWarning  = "Could not load available slots; manual override may not work."
	MsgSlotInvalid   = "Slot not found or not available."
	MsgSlotRequired  = "Please select a valid slot before submitting."
	MsgEntryRecorded = "Vehicle entry recorded."
)

var (
	ErrFormNotFound = errors.New("entry form not found")
	ErrFormClosed   = errors.New("entry form is closed")
	ErrBusy         = errors.New("entry form has a request in flight")
	ErrSlotRequired = errors.New("no slot selected")
)

type SlotLister interface {
	ListSlots(ctx context.Context, filter entities.SlotFilter) ([]entities.Slot, error)
}

type EntryGateway interface {
	SuggestSlot(ctx context.Context, vehicleType entities.VehicleType) (*entities.Slot, error)
	CreateEntry(ctx context.Context, req entities.EntryRequest) (*entities.EntryResult, error)
}

// Draft is the operator's in-progress vehicle entry.
type Draft struct {
	NumberPlate    string
	VehicleType    entities.VehicleType
	BillingType    entities.BillingType
	SlotInput      string
	ResolvedSlotID *int
}

// FormView is a point-in-time copy of a form, safe to render or encode.
type FormView struct {
	ID              string                `json:"id"`
	State           FormState             `json:"state"`
	NumberPlate     string                `json:"number_plate"`
	VehicleType     entities.VehicleType  `json:"vehicle_type"`
	BillingType     entities.BillingType  `json:"billing_type"`
	SlotInput       string                `json:"slot_input"`
	ResolvedSlotID  *int                  `json:"resolved_slot_id"`
	Loading         bool                  `json:"loading"`
	Submitting      bool                  `json:"submitting"`
	CanSubmit       bool                  `json:"can_submit"`
	Warning         string                `json:"warning,omitempty"`
	ValidationError string                `json:"validation_error,omitempty"`
	Error           string                `json:"error,omitempty"`
	AvailableSlots  []string              `json:"available_slots"`
	Result          *entities.EntryResult `json:"result,omitempty"`
}

// EntryForm holds one operator's vehicle-entry flow. HTTP events for the same
// form may arrive concurrently, so every field below mu is guarded by it and
// network calls are made with mu released.
type EntryForm struct {
	ID string

	slots     SlotLister
	vehicles  EntryGateway
	validator *Validator
	logger    *zap.Logger
	now       func() time.Time

	mu              sync.Mutex
	cache           []entities.Slot
	draft           Draft
	state           FormState
	loading         bool
	submitting      bool
	suggestSeq      uint64
	warning         string
	validationError string
	err             string
	result          *entities.EntryResult
	lastActive      time.Time
}

func newEntryForm(id string, slots SlotLister, vehicles EntryGateway, v *Validator, logger *zap.Logger, now func() time.Time) *EntryForm {
	return &EntryForm{
		ID:         id,
		slots:      slots,
		vehicles:   vehicles,
		validator:  v,
		logger:     logger.With(zap.String("form_id", id)),
		now:        now,
		state:      StateIdle,
		draft:      Draft{VehicleType: entities.VehicleCar, BillingType: entities.BillingHourly},
		lastActive: now(),
	}
}

// LoadSlotCache replaces the cache with the currently available slots. A
// failure leaves the cache empty and only sets a warning.
func (f *EntryForm) LoadSlotCache(ctx context.Context) {
	slots, err := f.slots.ListSlots(ctx, entities.SlotFilter{Status: entities.SlotAvailable})

	f.mu.Lock()
	defer f.mu.Unlock()
	f.touch()
	if err != nil {
		f.logger.Warn("Loading available slots failed", zap.Error(err))
		f.cache = nil
		f.warning = MsgCacheWarning
		return
	}
	f.cache = slots
	f.warning = ""
}

// SelectVehicleType sets the vehicle type and fetches a suggested slot for it.
// Only the response to the most recent request is applied.
func (f *EntryForm) SelectVehicleType(ctx context.Context, vt entities.VehicleType) (FormView, error) {
	if !vt.Valid() {
		return f.View(), ValidationErrors{{Field: "vehicle_type", Message: "Vehicle type is not a supported value."}}
	}

	f.mu.Lock()
	if err := f.editable(); err != nil {
		f.mu.Unlock()
		return f.View(), err
	}
	f.touch()
	f.draft.VehicleType = vt
	f.suggestSeq++
	seq := f.suggestSeq
	f.loading = true
	f.validationError = ""
	f.err = ""
	f.state = StateFetchingSuggestion
	f.mu.Unlock()

	slot, err := f.vehicles.SuggestSlot(ctx, vt)

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.suggestSeq || f.state == StateClosed {
		f.logger.Debug("Discarding stale slot suggestion",
			zap.Uint64("seq", seq),
			zap.Uint64("latest", f.suggestSeq),
			zap.Stringer("vehicle_type", vt),
		)
		return f.viewLocked(), nil
	}
	f.loading = false

	switch {
	case err == nil && slot != nil:
		id := slot.ID
		f.draft.SlotInput = slot.SlotNumber
		f.draft.ResolvedSlotID = &id
		f.state = StateSuggested
	case err == nil || apierrors.StatusCode(err) != 0:
		if err != nil {
			f.logger.Info("Slot suggestion rejected", zap.Error(err))
		}
		f.draft.SlotInput = NoSlotFoundText
		f.draft.ResolvedSlotID = nil
		f.state = StateNotFound
	default:
		f.logger.Warn("Slot suggestion failed", zap.Error(err))
		f.draft.SlotInput = ""
		f.draft.ResolvedSlotID = nil
		f.err = apierrors.ConnectivityMessage
		f.state = StateFetchError
	}
	return f.viewLocked(), nil
}

// OverrideSlot validates operator-typed text against the slot cache. It runs
// locally and supersedes any suggestion still in flight.
func (f *EntryForm) OverrideSlot(text string) (FormView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editable(); err != nil {
		return f.viewLocked(), err
	}
	f.touch()
	f.suggestSeq++
	f.loading = false
	f.err = ""
	f.draft.SlotInput = text

	wanted := strings.TrimSpace(text)
	if wanted == "" {
		f.draft.ResolvedSlotID = nil
		f.validationError = ""
		f.state = StateEmpty
		return f.viewLocked(), nil
	}
	for _, s := range f.cache {
		if strings.EqualFold(s.SlotNumber, wanted) && s.Available() {
			id := s.ID
			f.draft.ResolvedSlotID = &id
			f.validationError = ""
			f.state = StateValidated
			return f.viewLocked(), nil
		}
	}
	f.draft.ResolvedSlotID = nil
	f.validationError = MsgSlotInvalid
	f.state = StateInvalid
	return f.viewLocked(), nil
}

// UpdateDraft sets the plate and billing type. The plate is stored uppercased.
func (f *EntryForm) UpdateDraft(plate string, billing entities.BillingType) (FormView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editable(); err != nil {
		return f.viewLocked(), err
	}
	f.touch()
	f.draft.NumberPlate = utils.NormalizePlate(plate)
	if billing.Valid() {
		f.draft.BillingType = billing
	}
	return f.viewLocked(), nil
}

// Submit sends the entry to the parking service. It refuses to send anything
// while a request is in flight or no slot is resolved. On failure the form
// stays open with its resolved slot unchanged.
func (f *EntryForm) Submit(ctx context.Context) (FormView, error) {
	f.mu.Lock()
	if f.state == StateClosed {
		f.mu.Unlock()
		return f.View(), ErrFormClosed
	}
	if f.loading || f.submitting {
		f.mu.Unlock()
		return f.View(), ErrBusy
	}
	f.touch()
	if f.draft.ResolvedSlotID == nil {
		f.validationError = MsgSlotRequired
		f.mu.Unlock()
		return f.View(), ErrSlotRequired
	}
	req := entities.EntryRequest{
		NumberPlate: f.draft.NumberPlate,
		VehicleType: f.draft.VehicleType,
		BillingType: f.draft.BillingType,
		SlotID:      *f.draft.ResolvedSlotID,
	}
	if err := f.validator.Struct(req); err != nil {
		var verrs ValidationErrors
		if errors.As(err, &verrs) {
			f.err = verrs.Message()
		} else {
			f.err = err.Error()
		}
		f.mu.Unlock()
		return f.View(), err
	}
	f.submitting = true
	f.err = ""
	f.validationError = ""
	f.state = StateSubmitting
	f.mu.Unlock()

	res, err := f.vehicles.CreateEntry(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		f.logger.Info("Vehicle entry rejected",
			zap.String("number_plate", req.NumberPlate),
			zap.Int("slot_id", req.SlotID),
			zap.Error(err),
		)
		f.err = apierrors.Message(err)
		f.state = StateSubmitError
		return f.viewLocked(), fmt.Errorf("submit entry: %w", err)
	}
	f.result = res
	f.state = StateClosed
	f.logger.Info("Vehicle entry recorded",
		zap.String("number_plate", req.NumberPlate),
		zap.Int("slot_id", req.SlotID),
	)
	return f.viewLocked(), nil
}

func (f *EntryForm) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateClosed
	f.suggestSeq++
	f.loading = false
}

// View returns a snapshot of the form.
func (f *EntryForm) View() FormView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked()
}

func (f *EntryForm) idleSince() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastActive
}

func (f *EntryForm) viewLocked() FormView {
	v := FormView{
		ID:              f.ID,
		State:           f.state,
		NumberPlate:     f.draft.NumberPlate,
		VehicleType:     f.draft.VehicleType,
		BillingType:     f.draft.BillingType,
		SlotInput:       f.draft.SlotInput,
		Loading:         f.loading,
		Submitting:      f.submitting,
		Warning:         f.warning,
		ValidationError: f.validationError,
		Error:           f.err,
		Result:          f.result,
		AvailableSlots:  make([]string, 0, len(f.cache)),
	}
	if f.draft.ResolvedSlotID != nil {
		id := *f.draft.ResolvedSlotID
		v.ResolvedSlotID = &id
	}
	v.CanSubmit = v.ResolvedSlotID != nil && !f.loading && !f.submitting && f.state != StateClosed
	for _, s := range f.cache {
		v.AvailableSlots = append(v.AvailableSlots, s.SlotNumber)
	}
	return v
}

func (f *EntryForm) editable() error {
	if f.state == StateClosed {
		return ErrFormClosed
	}
	if f.submitting {
		return ErrBusy
	}
	return nil
}

func (f *EntryForm) touch() {
	f.lastActive = f.now()
}
