package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/penplan/pension-planner/internal/config"
	"github.com/penplan/pension-planner/internal/domain"
	"github.com/penplan/pension-planner/internal/engine"
)

// ProjectHandler serves POST /api/v1/project: the remote half of the
// dual-execution contract. Validation failures name the offending field so
// the client can surface them; any other outcome is a full projection.
type ProjectHandler struct {
	engine *engine.Engine
	logger engine.Logger
}

func (h *ProjectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input domain.PlanInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	if err := config.ValidatePlan(&input); err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, verr)
			return
		}
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := h.engine.Project(&input)
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeValidationError(w http.ResponseWriter, verr *config.ValidationError) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error":      verr.Error(),
		"field":      verr.Field,
		"constraint": verr.Constraint,
	})
}
