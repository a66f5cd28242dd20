// File path: internal/api/generate_handler.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/common"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/common/telemetry"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/flow"
)

func (s *Server) handleGenerateJSON(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("api: generate decode failed", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	out, err := s.generator.Generate(r.Context(), req.Prompt)
	if err != nil {
		s.writeGenerateError(w, err)
		return
	}
	logger.Info("api: generation complete", "provider", out.Provider, "cached", out.Cached, "warnings", len(out.Warnings))
	writeJSON(w, http.StatusOK, out)
}

// writeGenerateError maps compiler failures onto HTTP statuses. Empty-logic
// prompts are the caller's to fix and keep their message; malformed graphs
// are internal faults and only the log retains the detail.
func (s *Server) writeGenerateError(w http.ResponseWriter, err error) {
	logger := common.Logger()
	var emptyErr *flow.EmptyLogicError
	if errors.As(err, &emptyErr) {
		writeError(w, http.StatusUnprocessableEntity, emptyErr)
		return
	}
	var graphErr *flow.MalformedGraphError
	if errors.As(err, &graphErr) {
		logger.Error("api: graph construction failed", "reason", graphErr.Reason)
		writeError(w, http.StatusInternalServerError, fmt.Errorf("could not generate a flowchart"))
		return
	}
	var memErr telemetry.MemoryLimitError
	if errors.As(err, &memErr) {
		writeError(w, http.StatusServiceUnavailable, memErr)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}
