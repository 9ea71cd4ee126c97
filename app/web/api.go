package web

import (
	"encoding/json"
	"net/http"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/jobdash/app/backend"
	"github.com/umputun/jobdash/app/enums"
)

// APIStatusResponse is the JSON response for /api/v1/status
type APIStatusResponse struct {
	User       backend.User   `json:"user"`
	Stats      *backend.Stats `json:"stats"`
	StatsError string         `json:"stats_error,omitempty"`
	Categories []APICategory  `json:"categories"`
	Timestamp  time.Time      `json:"timestamp"`
}

// APICategory is the job list of a single category
type APICategory struct {
	Category enums.Category `json:"category"`
	Title    string         `json:"title"`
	Jobs     []backend.Job  `json:"jobs"`
	Error    string         `json:"error,omitempty"`
}

// handleAPIStatus returns stats and jobs of all categories - designed for CLI/jq consumption
func (s *Server) handleAPIStatus(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	ov := s.fetchOverview(r.Context(), sess.Token)
	if err := ov.authErr(); err != nil && s.handleBackendAuthError(w, r, sess, err) {
		return
	}

	resp := APIStatusResponse{User: sess.User, Categories: []APICategory{}, Timestamp: time.Now()}
	if ov.statsErr != nil {
		resp.StatsError = "failed to fetch dashboard stats"
	} else {
		stats := ov.stats
		resp.Stats = &stats
	}

	for _, cat := range enums.Categories() {
		item := APICategory{Category: cat, Title: cat.Title(), Jobs: []backend.Job{}}
		if ov.listErrs[cat] != nil {
			item.Error = "failed to fetch " + cat.Noun() + " jobs"
		} else if ov.lists[cat] != nil {
			item.Jobs = ov.lists[cat]
		}
		resp.Categories = append(resp.Categories, item)
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[WARN] failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes a JSON error response
func (s *Server) writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("[WARN] failed to encode JSON error response: %v", err)
	}
}
