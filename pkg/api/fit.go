package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/overflow/pkg/cache"
	"github.com/matzehuels/overflow/pkg/errors"
	"github.com/matzehuels/overflow/pkg/scenario"
)

// handleFit runs a posted scenario. Results are cached by fingerprint and
// the fingerprint is returned as a strong ETag.
func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	var sc scenario.Scenario
	if err := decodeJSON(w, r, &sc); err != nil {
		s.writeError(w, err)
		return
	}
	s.serveResult(w, r, &sc)
}

func (s *Server) serveResult(w http.ResponseWriter, r *http.Request, sc *scenario.Scenario) {
	if err := sc.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	fp := sc.Fingerprint()
	etag := strconv.Quote(fp)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	ctx := r.Context()
	key := s.keyer.ResultKey(fp, s.version)
	// Cached results are shared by scenarios with the same fingerprint, so
	// the name is filled in per request.
	var res scenario.Result
	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("cache read failed", "err", err)
	} else if ok && json.Unmarshal(data, &res) == nil {
		res.Scenario = sc.Name
		w.Header().Set("X-Cache", "hit")
		writeJSON(w, http.StatusOK, &res)
		return
	}

	fresh, err := scenario.Run(ctx, sc)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if data, err := json.Marshal(fresh); err == nil {
		if err := s.cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
			s.logger.Warn("cache write failed", "err", err)
		}
	}

	w.Header().Set("X-Cache", "miss")
	writeJSON(w, http.StatusOK, fresh)
}

type scenarioList struct {
	Stored  []string `json:"stored"`
	Builtin []string `json:"builtin"`
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	stored, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	list := scenarioList{Stored: stored, Builtin: []string{}}
	for _, b := range scenario.Builtin() {
		list.Builtin = append(list.Builtin, b.Name)
	}
	writeJSON(w, http.StatusOK, list)
}

// lookupScenario consults the store first and falls back to the built-ins.
func (s *Server) lookupScenario(r *http.Request) (*scenario.Scenario, error) {
	name := chi.URLParam(r, "name")
	sc, err := s.store.Get(r.Context(), name)
	if errors.Is(err, errors.ErrCodeScenarioNotFound) {
		return scenario.Lookup(name)
	}
	return sc, err
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	sc, err := s.lookupScenario(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) handlePutScenario(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := errors.ValidateScenarioName(name); err != nil {
		s.writeError(w, err)
		return
	}

	var sc scenario.Scenario
	if err := decodeJSON(w, r, &sc); err != nil {
		s.writeError(w, err)
		return
	}
	if sc.Name != "" && sc.Name != name {
		s.writeError(w, errors.New(errors.ErrCodeInvalidScenario,
			"body name %q does not match %q", sc.Name, name))
		return
	}
	sc.Name = name

	if err := s.store.Put(r.Context(), &sc); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &sc)
}

func (s *Server) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRunScenario(w http.ResponseWriter, r *http.Request) {
	sc, err := s.lookupScenario(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.serveResult(w, r, sc)
}
