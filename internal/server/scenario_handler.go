package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/penplan/pension-planner/internal/config"
	"github.com/penplan/pension-planner/internal/domain"
	"github.com/penplan/pension-planner/internal/engine"
	"github.com/penplan/pension-planner/internal/store"
)

// ScenarioHandler serves scenario CRUD under /api/v1/scenarios and a
// convenience projection of a saved scenario.
type ScenarioHandler struct {
	store  store.ScenarioStore
	engine *engine.Engine
	logger engine.Logger
}

func (h *ScenarioHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/scenarios")
	path = strings.Trim(path, "/")

	switch {
	case path == "" && r.Method == http.MethodPost:
		h.handleSave(w, r)
	case path == "" && r.Method == http.MethodGet:
		h.handleList(w, r)
	case path != "":
		h.handleByID(w, r, path)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ScenarioHandler) handleSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID   string           `json:"id"`
		Name string           `json:"name"`
		Plan domain.PlanInput `json:"plan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if req.Name == "" {
		writeJSONError(w, http.StatusBadRequest, "scenario name is required")
		return
	}
	if err := config.ValidatePlan(&req.Plan); err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, verr)
			return
		}
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.store.Save(r.Context(), domain.ScenarioRecord{
		ID:     req.ID,
		Name:   req.Name,
		Plan:   req.Plan,
		Source: "remote",
	})
	if err != nil {
		h.logger.Errorf("save scenario: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to save scenario")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *ScenarioHandler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Errorf("list scenarios: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to list scenarios")
		return
	}
	if records == nil {
		records = []domain.ScenarioRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *ScenarioHandler) handleByID(w http.ResponseWriter, r *http.Request, path string) {
	id := path
	wantProjection := false
	if rest, ok := strings.CutSuffix(path, "/projection"); ok {
		id = rest
		wantProjection = true
	}

	switch {
	case r.Method == http.MethodGet && !wantProjection:
		record, err := h.store.Load(r.Context(), id)
		if err != nil {
			h.respondLoadError(w, id, err)
			return
		}
		writeJSON(w, http.StatusOK, record)

	case r.Method == http.MethodGet && wantProjection:
		record, err := h.store.Load(r.Context(), id)
		if err != nil {
			h.respondLoadError(w, id, err)
			return
		}
		result := h.engine.Project(&record.Plan)
		writeJSON(w, http.StatusOK, map[string]any{
			"result":  result,
			"summary": engine.Summarize(record.Name, &record.Plan, result),
		})

	case r.Method == http.MethodDelete && !wantProjection:
		if err := h.store.Delete(r.Context(), id); err != nil {
			h.respondLoadError(w, id, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ScenarioHandler) respondLoadError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "scenario not found: "+id)
		return
	}
	h.logger.Errorf("scenario %s: %v", id, err)
	writeJSONError(w, http.StatusInternalServerError, "scenario store error")
}
