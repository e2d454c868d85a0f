package server

import (
	"net/http"
	"time"
)

func (s *Server) handleFacts(w http.ResponseWriter, r *http.Request) {
	d, name, ok := s.openDriver(w, r)
	if !ok {
		return
	}

	start := time.Now()
	facts, err := d.GetFacts(r.Context())
	s.metrics.observe(name, "get-facts", start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, facts)
}

func (s *Server) handleInterfaces(w http.ResponseWriter, r *http.Request) {
	d, name, ok := s.openDriver(w, r)
	if !ok {
		return
	}

	start := time.Now()
	ifaces, err := d.GetInterfaces(r.Context())
	s.metrics.observe(name, "get-interfaces", start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ifaces)
}

func (s *Server) handleInterfacesIP(w http.ResponseWriter, r *http.Request) {
	d, name, ok := s.openDriver(w, r)
	if !ok {
		return
	}

	start := time.Now()
	ips, err := d.GetInterfacesIP(r.Context())
	s.metrics.observe(name, "get-interfaces-ip", start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ips)
}

func (s *Server) handleLLDPNeighbors(w http.ResponseWriter, r *http.Request) {
	d, name, ok := s.openDriver(w, r)
	if !ok {
		return
	}

	start := time.Now()
	neighbors, err := d.GetLLDPNeighbors(r.Context())
	s.metrics.observe(name, "get-lldp-neighbors", start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, neighbors)
}

func (s *Server) handleRouteTo(w http.ResponseWriter, r *http.Request) {
	d, name, ok := s.openDriver(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	start := time.Now()
	routes, err := d.GetRouteTo(r.Context(), q.Get("destination"), q.Get("protocol"))
	s.metrics.observe(name, "get-route-to", start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, routes)
}
