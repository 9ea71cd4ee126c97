package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/jobdash/app/backend"
	"github.com/umputun/jobdash/app/enums"
	"github.com/umputun/jobdash/app/notify"
)

// job form messages
const (
	msgFieldsRequired = "All fields are required"
	msgJobAdded       = "Job added successfully"
	msgAddFailed      = "Failed to add job"
	msgToggleFailed   = "Failed to toggle job status"
)

// handleCreateJob validates the creation form and appends the created job row to the table
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	cat, err := enums.ParseCategory(r.PathValue("category"))
	if err != nil {
		http.Error(w, "Unknown job category", http.StatusNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	req, ok := parseJobForm(r)
	if !ok {
		s.renderToast(w, http.StatusBadRequest, errorToast(msgFieldsRequired))
		return
	}

	sess, _ := sessionFrom(r.Context())
	job, err := s.pages.Get(sess.ID, sess.Token, cat).Add(r.Context(), req)
	if err != nil {
		if s.handleBackendAuthError(w, r, sess, err) {
			return
		}
		log.Printf("[WARN] %s job %q not created: %v", cat, req.JobName, err)
		s.renderToast(w, http.StatusBadGateway, errorToast(msgAddFailed))
		return
	}

	log.Printf("[INFO] %s job %d %q created by %s", cat, job.ID, job.JobName, sess.User.Email)
	s.auditor.Publish(notify.Event{Action: notify.ActionCreated, Category: cat.String(), JobID: job.ID,
		JobName: job.JobName, Status: job.Status, User: sess.User.Email})

	// resets and closes the form on the client
	w.Header().Set("HX-Trigger", "job-created")
	s.renderFragments(w, http.StatusOK,
		fragment{name: "job-row", data: newJobRow(job, cat, dateLayout(r))},
		fragment{name: "jobs-empty-delete"},
		fragment{name: "toast-oob", data: successToast(msgJobAdded)},
	)
}

// handleToggleJob flips job status on the backend and replaces the row with the server response
func (s *Server) handleToggleJob(w http.ResponseWriter, r *http.Request) {
	cat, err := enums.ParseCategory(r.PathValue("category"))
	if err != nil {
		http.Error(w, "Unknown job category", http.StatusNotFound)
		return
	}
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid job ID", http.StatusBadRequest)
		return
	}

	sess, _ := sessionFrom(r.Context())
	job, err := s.pages.Get(sess.ID, sess.Token, cat).Toggle(r.Context(), id)
	if err != nil {
		if s.handleBackendAuthError(w, r, sess, err) {
			return
		}
		log.Printf("[WARN] %s job %d not toggled: %v", cat, id, err)
		s.renderToast(w, http.StatusBadGateway, errorToast(msgToggleFailed))
		return
	}

	action := notify.ActionResumed
	if job.IsPaused() {
		action = notify.ActionPaused
	}
	log.Printf("[INFO] %s job %d %s by %s", cat, job.ID, action, sess.User.Email)
	s.auditor.Publish(notify.Event{Action: action, Category: cat.String(), JobID: job.ID,
		JobName: job.JobName, Status: job.Status, User: sess.User.Email})

	s.renderFragments(w, http.StatusOK,
		fragment{name: "job-row", data: newJobRow(job, cat, dateLayout(r))},
		fragment{name: "toast-oob", data: successToast("Job " + action + " successfully")},
	)
}

// parseJobForm reads the five required job fields, all must be non-empty after trimming
func parseJobForm(r *http.Request) (backend.CreateJobRequest, bool) {
	req := backend.CreateJobRequest{
		JobName:      strings.TrimSpace(r.FormValue("jobName")),
		Schedule:     strings.TrimSpace(r.FormValue("schedule")),
		ServerName:   strings.TrimSpace(r.FormValue("serverName")),
		FileLocation: strings.TrimSpace(r.FormValue("fileLocation")),
		FilePattern:  strings.TrimSpace(r.FormValue("filePattern")),
	}
	for _, v := range []string{req.JobName, req.Schedule, req.ServerName, req.FileLocation, req.FilePattern} {
		if v == "" {
			return req, false
		}
	}
	return req, true
}

func isAuthErr(err error) bool {
	return errors.Is(err, backend.ErrUnauthorized) || errors.Is(err, backend.ErrForbidden)
}
