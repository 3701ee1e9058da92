// Package server exposes the lifecycle-hook HTTP surface the host calls on
// record mutations. Handlers always acknowledge: a delivery problem is an
// operational concern, never the host's.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/webtense/btr-automation-whatsapp/internal/workorder"
	"github.com/webtense/btr-automation-whatsapp/pkg/logx"
)

// Dispatcher is the gate as the server sees it.
type Dispatcher interface {
	HandleCreated(ctx context.Context, o workorder.WorkOrder)
	HandleUpdated(ctx context.Context, o workorder.WorkOrder, prev, next string)
}

type createdHook struct {
	Order workorder.WorkOrder `json:"order"`
}

type updatedHook struct {
	Order workorder.WorkOrder `json:"order"`
	// Changed lists the field names touched by the update. Only the presence
	// of "stage" matters here; every other field change is a no-op for us.
	Changed       []string `json:"changed"`
	PreviousStage string   `json:"previous_stage"`
	NewStage      string   `json:"new_stage"`
}

type Server struct {
	gate Dispatcher
	log  logx.Logger
}

func New(gate Dispatcher, log logx.Logger) *Server {
	return &Server{gate: gate, log: log}
}

// Router builds the hook routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/hooks/work-orders/created", s.handleCreated)
	r.Post("/hooks/work-orders/updated", s.handleUpdated)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func (s *Server) handleCreated(w http.ResponseWriter, r *http.Request) {
	var hook createdHook
	if err := json.NewDecoder(r.Body).Decode(&hook); err != nil {
		s.log.Warn("created hook: bad payload", logx.Err(err))
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	s.gate.HandleCreated(r.Context(), hook.Order)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdated(w http.ResponseWriter, r *http.Request) {
	var hook updatedHook
	if err := json.NewDecoder(r.Body).Decode(&hook); err != nil {
		s.log.Warn("updated hook: bad payload", logx.Err(err))
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if !stageChanged(hook) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.gate.HandleUpdated(r.Context(), hook.Order, hook.PreviousStage, hook.NewStage)
	w.WriteHeader(http.StatusNoContent)
}

// stageChanged mirrors the host-side hook condition: the stage field must be
// part of the update and the before/after names must differ.
func stageChanged(h updatedHook) bool {
	present := len(h.Changed) == 0 // an omitted list means "assume present"
	for _, f := range h.Changed {
		if f == "stage" {
			present = true
			break
		}
	}
	return present && h.PreviousStage != h.NewStage
}
