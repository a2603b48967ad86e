package server

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"allowhost/internal/domain"
	"allowhost/internal/matcher"
)

const maxRequestBodyBytes = 1 << 20

type indexPage struct {
	Hostname string
	Result   *domain.CheckResult
	Error    string
}

func (s *server) getIndex(w http.ResponseWriter, _ *http.Request) {
	renderIndex(w, http.StatusOK, indexPage{})
}

func (s *server) postIndex(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	hostname := r.PostFormValue("hostname")

	result, err := s.evaluate(r.Context(), hostname)
	if err != nil {
		renderIndex(w, http.StatusInternalServerError, indexPage{
			Hostname: hostname,
			Error:    "The allow-list is unavailable right now. Please try again later.",
		})
		return
	}

	renderIndex(w, http.StatusOK, indexPage{Hostname: hostname, Result: &result})
}

func renderIndex(w http.ResponseWriter, status int, page indexPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTemplate.Execute(w, page); err != nil {
		log.Error("render index page", "error", err)
	}
}

func (s *server) apiCheck(w http.ResponseWriter, r *http.Request) {
	hostname := hostnameFromRequest(w, r)

	result, err := s.evaluate(r.Context(), hostname)
	if err != nil {
		writeError(w, "allow-list lookup failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// hostnameFromRequest reads "hostname" from the query string (GET), a JSON body or
// form data (POST). Anything unreadable counts as an empty hostname.
func hostnameFromRequest(w http.ResponseWriter, r *http.Request) string {
	if r.Method != http.MethodPost {
		return r.URL.Query().Get("hostname")
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	if isJSONRequest(r) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			log.Debug("ignoring unreadable JSON body", "error", err)
			return ""
		}
		hostname, _ := payload["hostname"].(string)
		return hostname
	}

	return r.PostFormValue("hostname")
}

func isJSONRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json" ||
		(strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json"))
}

// evaluate runs the check and records its metrics.
func (s *server) evaluate(ctx context.Context, hostname string) (domain.CheckResult, error) {
	start := time.Now()
	result, err := s.checker.Evaluate(ctx, hostname)
	s.metrics.observe(result, err, time.Since(start))

	if err != nil {
		if errors.Is(err, matcher.ErrLookupFailed) {
			log.Error("Allow-list lookup failed", "hostname", hostname, "error", err)
		} else {
			log.Error("Hostname check failed", "hostname", hostname, "error", err)
		}
		return domain.CheckResult{}, err
	}

	log.Debug("Hostname checked",
		"hostname", hostname,
		"mode", result.Mode,
		"allowed", result.Allowed,
		"matches", result.MatchCount,
	)
	return result, nil
}
