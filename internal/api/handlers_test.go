package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"parkdesk/internal/entities"
	"parkdesk/internal/repository"
	"parkdesk/internal/service"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// fakeParkingService mimics the FastAPI backend closely enough for the pages
// and the entry form API.
type fakeParkingService struct {
	mu       sync.Mutex
	slots    []entities.Slot
	entries  []map[string]any
	statuses []string
	exits    []string
}

func newFakeParkingService() *fakeParkingService {
	return &fakeParkingService{slots: []entities.Slot{
		{ID: 12, SlotNumber: "A5", SlotType: entities.SlotRegular, Status: entities.SlotAvailable},
		{ID: 7, SlotNumber: "B2", SlotType: entities.SlotBike, Status: entities.SlotAvailable},
		{ID: 30, SlotNumber: "D1", SlotType: entities.SlotRegular, Status: entities.SlotOccupied},
	}}
}

func (f *fakeParkingService) handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/dashboard/slots", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		out := []entities.Slot{}
		for _, s := range f.slots {
			if st := r.URL.Query().Get("status"); st != "" && s.Status.String() != st {
				continue
			}
			out = append(out, s)
		}
		json.NewEncoder(w).Encode(out)
	}).Methods("GET")
	r.HandleFunc("/dashboard/summary", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"total_slots":3,"available_slots":2,"occupied_slots":1,"maintenance_slots":0}`)
	}).Methods("GET")
	r.HandleFunc("/dashboard/sessions", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id":7,"vehicle_number_plate":"KA01AB1234","slot_id":30,"entry_time":"2026-10-18T09:30:00","exit_time":null,"status":"Active","billing_type":"Hourly","billing_amount":null}]`)
	}).Methods("GET")
	r.HandleFunc("/vehicles/suggest-slot", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("vehicle_type") != "Car" {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"detail":"No available slot found"}`)
			return
		}
		io.WriteString(w, `{"id":12,"slot_number":"A5","slot_type":"Regular","status":"Available","has_charger":false}`)
	}).Methods("GET")
	r.HandleFunc("/vehicles/entry", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.entries = append(f.entries, body)
		f.mu.Unlock()
		if body["number_plate"] == "DUP1" {
			w.WriteHeader(http.StatusConflict)
			io.WriteString(w, `{"detail":"Slot already occupied"}`)
			return
		}
		fmt.Fprintf(w, `{"message":"Vehicle '%s' entered. Assigned to slot A5.","session":{"id":9,"vehicle_number_plate":%q,"slot_id":12,"entry_time":"2026-10-18T10:00:00","status":"Active","billing_type":"Hourly"},"assigned_slot":{"id":12,"slot_number":"A5","slot_type":"Regular","status":"Occupied","has_charger":false}}`, body["number_plate"], body["number_plate"])
	}).Methods("POST")
	r.HandleFunc("/vehicles/exit/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		f.mu.Lock()
		f.exits = append(f.exits, id)
		f.mu.Unlock()
		if id != "7" {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"detail":"Active parking session not found"}`)
			return
		}
		io.WriteString(w, `{"message":"Vehicle 'KA01AB1234' exited. Total amount: 40.00 INR.","session":{"id":7,"vehicle_number_plate":"KA01AB1234","slot_id":30,"entry_time":"2026-10-18T09:30:00","exit_time":"2026-10-18T10:30:00","status":"Completed","billing_type":"Hourly","billing_amount":40}}`)
	}).Methods("PUT")
	r.HandleFunc("/slots/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Status string `json:"status"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.statuses = append(f.statuses, mux.Vars(r)["id"]+"="+body.Status)
		fmt.Fprintf(w, `{"id":%s,"slot_number":"A5","slot_type":"Regular","status":%q,"has_charger":false}`, mux.Vars(r)["id"], body.Status)
	}).Methods("PUT")
	return r
}

func newTestServer(t *testing.T, backend *fakeParkingService) *httptest.Server {
	t.Helper()
	parking := httptest.NewServer(backend.handler())
	t.Cleanup(parking.Close)

	logger := zaptest.NewLogger(t)
	client := repository.NewClient(repository.ClientConfig{
		BaseURL: parking.URL,
		Timeout: 2 * time.Second,
		RPS:     1000,
		Burst:   100,
		Retry:   repository.RetryPolicy{MaxAttempts: 1, BaseDelay: time.Millisecond},
	}, logger)
	slotRepo := repository.NewSlotRepository(client)
	vehicleRepo := repository.NewVehicleRepository(client)
	dashboardRepo := repository.NewDashboardRepository(client)

	validator := service.NewValidator()
	// Refreshes triggered by a submit can outlive the test.
	dashboard := service.NewDashboardService(dashboardRepo, slotRepo, zap.NewNop())
	entries := service.NewEntryService(slotRepo, vehicleRepo, validator, logger, func(ctx context.Context, _ *entities.EntryResult) {
		dashboard.Notify(ctx)
	})
	slots := service.NewSlotService(slotRepo, validator, logger, nil)
	sessions := service.NewSessionService(dashboardRepo, vehicleRepo, logger, nil)

	render, err := NewRenderer(logger)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	router := NewRouter(
		NewEntryFormHandler(entries, logger),
		NewDashboardHandler(dashboard, entries, render, logger),
		NewSlotHandler(slots, render, logger),
		NewSessionHandler(sessions, render, logger),
	)
	srv := httptest.NewServer(Wrap(router, logger))
	t.Cleanup(srv.Close)
	return srv
}

func noRedirect(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

func doJSON(t *testing.T, method, target string, body any, out any) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = strings.NewReader(string(b))
	}
	req, _ := http.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, target, err)
		}
	}
	return resp.StatusCode
}

func TestEntryFormSubmitsSuggestedSlot(t *testing.T) {
	backend := newFakeParkingService()
	srv := newTestServer(t, backend)

	var form service.FormView
	if code := doJSON(t, "POST", srv.URL+"/api/entry-forms", nil, &form); code != http.StatusCreated {
		t.Fatalf("open status = %d", code)
	}
	if form.SlotInput != "A5" || form.ResolvedSlotID == nil || *form.ResolvedSlotID != 12 {
		t.Fatalf("form = %+v", form)
	}
	if diff := cmp.Diff([]string{"A5", "B2"}, form.AvailableSlots); diff != "" {
		t.Errorf("available slots mismatch (-want +got):\n%s", diff)
	}

	formURL := srv.URL + "/api/entry-forms/" + form.ID
	doJSON(t, "PUT", formURL+"/draft", DraftRequest{NumberPlate: "ka01ab1234", BillingType: entities.BillingHourly}, nil)

	var resp SubmitResponse
	if code := doJSON(t, "POST", formURL+"/submit", nil, &resp); code != http.StatusCreated {
		t.Fatalf("submit status = %d", code)
	}
	if resp.Message != "Vehicle 'KA01AB1234' entered. Assigned to slot A5." {
		t.Errorf("message = %q", resp.Message)
	}

	want := []map[string]any{{
		"number_plate": "KA01AB1234",
		"vehicle_type": "Car",
		"billing_type": "Hourly",
		"slot_id":      float64(12),
	}}
	if diff := cmp.Diff(want, backend.entries); diff != "" {
		t.Errorf("entry body mismatch (-want +got):\n%s", diff)
	}

	if code := doJSON(t, "GET", formURL, nil, nil); code != http.StatusNotFound {
		t.Errorf("closed form status = %d, want 404", code)
	}
}

func TestEntryFormRejections(t *testing.T) {
	backend := newFakeParkingService()
	srv := newTestServer(t, backend)

	var form service.FormView
	doJSON(t, "POST", srv.URL+"/api/entry-forms", nil, &form)
	formURL := srv.URL + "/api/entry-forms/" + form.ID

	doJSON(t, "PUT", formURL+"/draft", DraftRequest{NumberPlate: "dup1", BillingType: entities.BillingHourly}, nil)
	var errResp ErrorResponse
	if code := doJSON(t, "POST", formURL+"/submit", nil, &errResp); code != http.StatusConflict {
		t.Fatalf("submit status = %d, want 409", code)
	}
	if errResp.Error != "Slot already occupied" || errResp.Form == nil || !errResp.Form.CanSubmit {
		t.Errorf("response = %+v", errResp)
	}

	var bike service.FormView
	doJSON(t, "PUT", formURL+"/vehicle-type", VehicleTypeRequest{VehicleType: entities.VehicleBike}, &bike)
	if bike.SlotInput != service.NoSlotFoundText || bike.CanSubmit {
		t.Errorf("bike form = %+v", bike)
	}

	errResp = ErrorResponse{}
	if code := doJSON(t, "POST", formURL+"/submit", nil, &errResp); code != http.StatusUnprocessableEntity {
		t.Fatalf("submit without slot status = %d, want 422", code)
	}
	if errResp.Error != service.MsgSlotRequired {
		t.Errorf("error = %q", errResp.Error)
	}
	if len(backend.entries) != 1 {
		t.Errorf("entries sent = %d, want 1", len(backend.entries))
	}

	var override service.FormView
	doJSON(t, "PUT", formURL+"/slot", SlotOverrideRequest{SlotInput: "d1"}, &override)
	if override.ValidationError != service.MsgSlotInvalid {
		t.Errorf("override of occupied slot = %+v", override)
	}

	if code := doJSON(t, "DELETE", formURL, nil, nil); code != http.StatusNoContent {
		t.Errorf("close status = %d", code)
	}
	if code := doJSON(t, "PUT", formURL+"/slot", SlotOverrideRequest{SlotInput: "B2"}, nil); code != http.StatusNotFound {
		t.Errorf("override after close status = %d, want 404", code)
	}
}

func TestEntryFormBadVehicleType(t *testing.T) {
	srv := newTestServer(t, newFakeParkingService())

	var form service.FormView
	doJSON(t, "POST", srv.URL+"/api/entry-forms", nil, &form)
	code := doJSON(t, "PUT", srv.URL+"/api/entry-forms/"+form.ID+"/vehicle-type", map[string]string{"vehicle_type": "Truck"}, nil)
	if code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
}

func TestUpdateSlotStatusForm(t *testing.T) {
	tests := []struct {
		name         string
		id           int
		status       string
		wantCode     int
		wantLocation string
		wantBody     string
		wantStatuses []string
	}{
		{
			name:         "maintenance",
			id:           12,
			status:       "MAINTENANCE",
			wantCode:     http.StatusSeeOther,
			wantLocation: "/slots?" + url.Values{"notice": {"Slot A5 is now Maintenance."}}.Encode(),
			wantStatuses: []string{"12=Maintenance"},
		},
		{
			name:     "occupied slot",
			id:       30,
			status:   "MAINTENANCE",
			wantCode: http.StatusConflict,
			wantBody: "Status cannot be changed while a slot is occupied.",
		},
		{
			name:     "unchanged",
			id:       12,
			status:   "AVAILABLE",
			wantCode: http.StatusConflict,
			wantBody: "The slot already has that status.",
		},
		{
			name:     "unknown status",
			id:       12,
			status:   "BROKEN",
			wantCode: http.StatusUnprocessableEntity,
			wantBody: "Choose Available or Maintenance.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeParkingService()
			srv := newTestServer(t, backend)
			client := &http.Client{CheckRedirect: noRedirect}

			form := url.Values{"_method": {"PUT"}, "status": {tt.status}}
			resp, err := client.PostForm(fmt.Sprintf("%s/slots/%d", srv.URL, tt.id), form)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			if resp.StatusCode != tt.wantCode {
				t.Fatalf("status = %d, want %d\n%s", resp.StatusCode, tt.wantCode, body)
			}
			if got := resp.Header.Get("Location"); got != tt.wantLocation {
				t.Errorf("location = %q, want %q", got, tt.wantLocation)
			}
			if tt.wantBody != "" && !strings.Contains(string(body), tt.wantBody) {
				t.Errorf("body does not contain %q", tt.wantBody)
			}
			if diff := cmp.Diff(tt.wantStatuses, backend.statuses); diff != "" {
				t.Errorf("status updates mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPages(t *testing.T) {
	srv := newTestServer(t, newFakeParkingService())

	tests := []struct {
		path string
		want []string
	}{
		{path: "/", want: []string{"Total slots", `class="cell status-available" href="/slots/12"`, "status-occupied", "status-unknown"}},
		{path: "/?filter=bike", want: []string{`<option value="Bike" selected>`}},
		{path: "/slots", want: []string{"A5", "B2", "Occupied", `href="/slots/30"`}},
		{path: "/slots/30", want: []string{"Status cannot be changed while a slot is occupied."}},
		{path: "/sessions?status=active&q=ka01", want: []string{"KA01AB1234", `action="/sessions/7/exit"`, `value="KA01"`}},
		{path: "/entry", want: []string{
			`<option value="Handicap Accessible">`,
			`<option value="Day Pass">`,
			`data-invalid="Slot not found or not available."`,
			// Suggestion and override responses are sequenced separately from draft saves.
			`const latest = {"vehicle-type": 0, "slot": 0};`,
			`call("PUT", ` + "`/api/entry-forms/${formId}/draft`" + `, draft())`,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d\n%s", resp.StatusCode, body)
			}
			for _, w := range tt.want {
				if !strings.Contains(string(body), w) {
					t.Errorf("page does not contain %q", w)
				}
			}
		})
	}
}

func TestSlotNotFoundPage(t *testing.T) {
	srv := newTestServer(t, newFakeParkingService())
	resp, err := http.Get(srv.URL + "/slots/999")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestExitVehicle(t *testing.T) {
	tests := []struct {
		id    string
		param string
		want  string
	}{
		{id: "7", param: "notice", want: "Vehicle 'KA01AB1234' exited. Total amount: 40.00 INR."},
		{id: "8", param: "error", want: "Active parking session not found"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			backend := newFakeParkingService()
			srv := newTestServer(t, backend)
			client := &http.Client{CheckRedirect: noRedirect}

			resp, err := client.Post(srv.URL+"/sessions/"+tt.id+"/exit", "application/x-www-form-urlencoded", nil)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusSeeOther {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			loc, _ := url.Parse(resp.Header.Get("Location"))
			if loc.Path != "/sessions" || loc.Query().Get(tt.param) != tt.want {
				t.Errorf("location = %s", loc)
			}
		})
	}
}

func TestSummaryAndHealth(t *testing.T) {
	srv := newTestServer(t, newFakeParkingService())

	var snap entities.SummarySnapshot
	if code := doJSON(t, "GET", srv.URL+"/api/summary", nil, &snap); code != http.StatusOK {
		t.Fatalf("summary status = %d", code)
	}
	if snap.Summary.OccupiedSlots != 1 || snap.Stale {
		t.Errorf("snapshot = %+v", snap)
	}

	var health HealthResponse
	doJSON(t, "POST", srv.URL+"/api/entry-forms", nil, nil)
	if code := doJSON(t, "GET", srv.URL+"/healthz", nil, &health); code != http.StatusOK {
		t.Fatalf("health status = %d", code)
	}
	if diff := cmp.Diff(HealthResponse{Status: "ok", OpenForms: 1}, health); diff != "" {
		t.Errorf("health mismatch (-want +got):\n%s", diff)
	}
}
