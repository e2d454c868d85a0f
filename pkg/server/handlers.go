package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/netconfd/panos-driver/pkg/driver"
	"github.com/netconfd/panos-driver/pkg/driver/lock"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
}

// statusForError maps the driver's error kinds onto HTTP statuses. Lock
// conflicts and staging/commit failures are client-resolvable conditions,
// channel failures are gateway problems.
func statusForError(err error) int {
	var (
		aerr *lock.AcquisitionError
		rerr *lock.ReleaseError
		cerr *driver.ConnectionError
		per  *driver.ReplaceConfigError
		merr *driver.MergeConfigError
	)
	switch {
	case errors.As(err, &aerr), errors.As(err, &rerr):
		return http.StatusLocked
	case errors.As(err, &cerr):
		return http.StatusBadGateway
	case errors.As(err, &per), errors.As(err, &merr):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// openDriver fetches the open session for the request's device, or reports
// the failure itself.
func (s *Server) openDriver(w http.ResponseWriter, r *http.Request) (ConfigDriver, string, bool) {
	name := mux.Vars(r)["device"]
	d, ok := s.driverFor(name)
	if !ok {
		writeJSON(w, http.StatusConflict, errorResponse{Error: fmt.Sprintf("no open session for device %q", name)})
		return nil, name, false
	}
	return d, name, true
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["device"]
	cfg := s.deviceConfig(name)
	if cfg == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("unknown device %q", name)})
		return
	}

	s.md.Lock()
	defer s.md.Unlock()
	if _, ok := s.drivers[name]; ok {
		writeJSON(w, http.StatusConflict, errorResponse{Error: fmt.Sprintf("session to %q already open", name)})
		return
	}

	start := time.Now()
	d := s.newDriver(cfg)
	err := d.Open(r.Context())
	s.metrics.observe(name, "open", start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	s.drivers[name] = d
	log.Infof("opened session to %s", name)
	writeJSON(w, http.StatusCreated, nil)
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["device"]

	s.md.Lock()
	defer s.md.Unlock()
	d, ok := s.drivers[name]
	if !ok {
		writeJSON(w, http.StatusConflict, errorResponse{Error: fmt.Sprintf("no open session for device %q", name)})
		return
	}

	start := time.Now()
	err := d.Close(r.Context())
	s.metrics.observe(name, "close", start, err)
	// the session is gone either way; a close error only tells the operator
	// the locks may need manual cleanup
	delete(s.drivers, name)
	if err != nil {
		writeError(w, err)
		return
	}
	log.Infof("closed session to %s", name)
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleAlive(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["device"]
	d, ok := s.driverFor(name)
	alive := ok && d.IsAlive()
	writeJSON(w, http.StatusOK, map[string]bool{"is_alive": alive})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	d, name, ok := s.openDriver(w, r)
	if !ok {
		return
	}
	scope := r.URL.Query().Get("scope")
	if scope == "" {
		scope = driver.ScopeAll
	}

	start := time.Now()
	cfgs, err := d.GetConfig(r.Context(), scope)
	s.metrics.observe(name, "get-config", start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfgs)
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	d, name, ok := s.openDriver(w, r)
	if !ok {
		return
	}
	var req struct {
		File string `json:"file"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	start := time.Now()
	err := d.LoadReplaceCandidate(r.Context(), req.File)
	s.metrics.observe(name, "load-replace", start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	d, name, ok := s.openDriver(w, r)
	if !ok {
		return
	}
	var req struct {
		File    string `json:"file"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	start := time.Now()
	err := d.LoadMergeCandidate(r.Context(), req.File, req.Content)
	s.metrics.observe(name, "load-merge", start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	d, name, ok := s.openDriver(w, r)
	if !ok {
		return
	}

	start := time.Now()
	diff, err := d.CompareConfig(r.Context())
	s.metrics.observe(name, "compare", start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"diff": diff})
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	d, name, ok := s.openDriver(w, r)
	if !ok {
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
	}

	start := time.Now()
	err := d.CommitConfig(r.Context(), req.Message)
	s.metrics.observe(name, "commit", start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	d, name, ok := s.openDriver(w, r)
	if !ok {
		return
	}

	start := time.Now()
	err := d.DiscardConfig(r.Context())
	s.metrics.observe(name, "discard", start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleRollback(w http.ResponseWriter, r *http.Request) {
	d, name, ok := s.openDriver(w, r)
	if !ok {
		return
	}

	start := time.Now()
	err := d.Rollback(r.Context())
	s.metrics.observe(name, "rollback", start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
