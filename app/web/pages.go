package web

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/syncs"

	"github.com/umputun/jobdash/app/backend"
	"github.com/umputun/jobdash/app/enums"
)

// statsView is the dashboard stats cards data
type statsView struct {
	backend.Stats
	LastSuccessful string
	Available      bool
}

// overview is a read-only snapshot of stats and job lists of all categories
type overview struct {
	stats    backend.Stats
	statsErr error
	lists    map[enums.Category][]backend.Job
	listErrs map[enums.Category]error
}

// authErr returns the first auth related error of the snapshot, if any
func (o overview) authErr() error {
	errs := []error{o.statsErr}
	for _, cat := range enums.Categories() {
		errs = append(errs, o.listErrs[cat])
	}
	for _, err := range errs {
		if isAuthErr(err) {
			return err
		}
	}
	return nil
}

// fetchOverview loads stats and all category lists concurrently
func (s *Server) fetchOverview(ctx context.Context, token string) overview {
	res := overview{lists: map[enums.Category][]backend.Job{}, listErrs: map[enums.Category]error{}}
	var mu sync.Mutex

	wg := syncs.NewErrSizedGroup(len(enums.Categories()) + 1)
	wg.Go(func() error {
		stats, err := s.backend.Stats(ctx, token)
		mu.Lock()
		res.stats, res.statsErr = stats, err
		mu.Unlock()
		return err
	})
	for _, cat := range enums.Categories() {
		wg.Go(func() error {
			list, err := s.backend.ListJobs(ctx, token, cat)
			mu.Lock()
			res.lists[cat], res.listErrs[cat] = list, err
			mu.Unlock()
			return err
		})
	}
	if err := wg.Wait(); err != nil {
		log.Printf("[WARN] dashboard fetch incomplete: %v", err)
	}
	return res
}

// handleDashboard renders stats cards and failed jobs of all categories
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	ov := s.fetchOverview(r.Context(), sess.Token)
	if err := ov.authErr(); err != nil && s.handleBackendAuthError(w, r, sess, err) {
		return
	}

	layout := dateLayout(r)
	data := s.newTemplateData(r, "Dashboard")

	if ov.statsErr != nil {
		data.Toasts = append(data.Toasts, errorToast("Failed to fetch dashboard stats"))
	} else {
		data.Stats = statsView{Stats: ov.stats, Available: true,
			LastSuccessful: formatTimestamp(ov.stats.LastSuccessfulRun, layout)}
	}

	data.Attention = []jobRow{}
	for _, cat := range enums.Categories() {
		if ov.listErrs[cat] != nil {
			data.Toasts = append(data.Toasts, errorToast(fmt.Sprintf("Failed to fetch %s jobs", cat.Noun())))
			continue
		}
		for _, j := range ov.lists[cat] {
			if j.Status == backend.StatusFailed {
				data.Attention = append(data.Attention, newJobRow(j, cat, layout))
			}
		}
	}

	s.render(w, http.StatusOK, "dashboard", data)
}

// handleJobsPage mounts the page controller of the category and renders its list
func (s *Server) handleJobsPage(cat enums.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := sessionFrom(r.Context())
		ctrl := s.pages.Get(sess.ID, sess.Token, cat)

		data := s.newTemplateData(r, cat.Title())
		data.Category = cat
		if err := ctrl.Mount(r.Context()); err != nil {
			if s.handleBackendAuthError(w, r, sess, err) {
				return
			}
			log.Printf("[WARN] %v", err)
			data.Toasts = append(data.Toasts, errorToast(fmt.Sprintf("Failed to fetch %s jobs", cat.Noun())))
		}
		data.Jobs = newJobRows(ctrl.Jobs(), cat, dateLayout(r))
		s.render(w, http.StatusOK, "jobs", data)
	}
}
