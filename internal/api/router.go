package api

import (
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func NewRouter(entry *EntryFormHandler, dashboard *DashboardHandler, slots *SlotHandler, sessions *SessionHandler) *mux.Router {
	r := mux.NewRouter()

	// Pages
	r.HandleFunc("/", dashboard.Index).Methods("GET")
	r.HandleFunc("/entry", dashboard.Entry).Methods("GET")
	r.HandleFunc("/slots", slots.ListSlots).Methods("GET")
	r.HandleFunc("/slots/{id:[0-9]+}", slots.EditSlot).Methods("GET")
	r.HandleFunc("/slots/{id:[0-9]+}", slots.UpdateSlot).Methods("PUT", "POST")
	r.HandleFunc("/sessions", sessions.ListSessions).Methods("GET")
	r.HandleFunc("/sessions/{id:[0-9]+}/exit", sessions.ExitVehicle).Methods("POST")

	// Entry form API
	forms := r.PathPrefix("/api/entry-forms").Subrouter()
	forms.HandleFunc("", entry.OpenForm).Methods("POST")
	forms.HandleFunc("/{id}", entry.GetForm).Methods("GET")
	forms.HandleFunc("/{id}", entry.CloseForm).Methods("DELETE")
	forms.HandleFunc("/{id}/vehicle-type", entry.SelectVehicleType).Methods("PUT")
	forms.HandleFunc("/{id}/slot", entry.OverrideSlot).Methods("PUT")
	forms.HandleFunc("/{id}/draft", entry.UpdateDraft).Methods("PUT")
	forms.HandleFunc("/{id}/submit", entry.Submit).Methods("POST")

	r.HandleFunc("/api/summary", dashboard.Summary).Methods("GET")
	r.HandleFunc("/healthz", dashboard.Health).Methods("GET")
	return r
}

// Wrap adds the server-wide middleware: access log, panic recovery, gzip and
// the _method form override used by the slot edit page.
func Wrap(h http.Handler, logger *zap.Logger) http.Handler {
	recoveryLog, _ := zap.NewStdLogAt(logger, zap.ErrorLevel)
	h = handlers.HTTPMethodOverrideHandler(h)
	h = handlers.CompressHandler(h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLog), handlers.PrintRecoveryStack(true))(h)
	return handlers.CombinedLoggingHandler(accessLog(logger), h)
}

func accessLog(logger *zap.Logger) io.Writer {
	return zap.NewStdLog(logger.Named("access")).Writer()
}
