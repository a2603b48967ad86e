package server

import (
	"net/http"

	"github.com/charmbracelet/log"
)

type healthStatus struct {
	Status string `json:"status"`
	Hosts  int64  `json:"hosts"`
}

func (s *server) getHealth(w http.ResponseWriter, r *http.Request) {
	if s.hosts == nil {
		writeError(w, "store not configured", http.StatusServiceUnavailable)
		return
	}

	if err := s.hosts.Ping(r.Context()); err != nil {
		log.Warn("Health check: store unreachable", "error", err)
		writeError(w, "store unreachable", http.StatusServiceUnavailable)
		return
	}

	count, err := s.hosts.CountHosts(r.Context())
	if err != nil {
		log.Warn("Health check: count failed", "error", err)
		writeError(w, "store query failed", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, healthStatus{Status: "ok", Hosts: count})
}
