// Package jobs keeps per-session page state for job category pages.
//
// A Controller holds the job list for one category and one session. Mount loads the list from the
// backend, Add appends a created job, Toggle replaces the toggled job in place. Toggles on the same
// job are not serialized, the response that completes last determines the row state.
package jobs

import (
	"context"
	"fmt"
	"sync"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/jobdash/app/backend"
	"github.com/umputun/jobdash/app/enums"
)

//go:generate moq -out mocks/api.go -pkg mocks -skip-ensure -fmt goimports . API

// API is the subset of backend client used by job pages
type API interface {
	ListJobs(ctx context.Context, token string, cat enums.Category) ([]backend.Job, error)
	CreateJob(ctx context.Context, token string, cat enums.Category, req backend.CreateJobRequest) (backend.Job, error)
	ToggleJob(ctx context.Context, token string, cat enums.Category, id int) (backend.Job, error)
}

// State of the page
type State int

// page states
const (
	StateLoading State = iota
	StateReady
)

func (s State) String() string {
	if s == StateReady {
		return "ready"
	}
	return "loading"
}

// Controller is the page state of a single category for a single session
type Controller struct {
	category enums.Category
	api      API
	token    string

	mu    sync.RWMutex
	state State
	jobs  []backend.Job
}

// NewController makes a controller in loading state
func NewController(api API, token string, cat enums.Category) *Controller {
	return &Controller{category: cat, api: api, token: token, state: StateLoading, jobs: []backend.Job{}}
}

// Category returns the controller category
func (c *Controller) Category() enums.Category { return c.category }

// Mount fetches the job list. On failure the list is empty, the state is ready and the error returned
// for the caller to report.
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	c.state = StateLoading
	c.mu.Unlock()

	list, err := c.api.ListJobs(ctx, c.token, c.category)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateReady
	if err != nil {
		c.jobs = []backend.Job{}
		return fmt.Errorf("failed to fetch %s jobs: %w", c.category.Noun(), err)
	}
	if list == nil {
		list = []backend.Job{}
	}
	c.jobs = list
	log.Printf("[DEBUG] mounted %s page, %d jobs", c.category, len(list))
	return nil
}

// Add creates a job on the backend and appends it to the end of the list.
// The list is left unchanged on failure.
func (c *Controller) Add(ctx context.Context, req backend.CreateJobRequest) (backend.Job, error) {
	job, err := c.api.CreateJob(ctx, c.token, c.category, req)
	if err != nil {
		return backend.Job{}, fmt.Errorf("failed to add job: %w", err)
	}

	c.mu.Lock()
	c.jobs = append(c.jobs, job)
	c.mu.Unlock()
	return job, nil
}

// Toggle asks the backend to flip the job status and replaces the job with the same id in place.
// If the job is no longer in the list the returned job is not added.
func (c *Controller) Toggle(ctx context.Context, id int) (backend.Job, error) {
	job, err := c.api.ToggleJob(ctx, c.token, c.category, id)
	if err != nil {
		return backend.Job{}, fmt.Errorf("failed to toggle job %d: %w", id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.jobs {
		if c.jobs[i].ID == job.ID {
			c.jobs[i] = job
			return job, nil
		}
	}
	log.Printf("[DEBUG] toggled job %d not in %s list", job.ID, c.category)
	return job, nil
}

// Jobs returns a copy of the current list
func (c *Controller) Jobs() []backend.Job {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res := make([]backend.Job, len(c.jobs))
	copy(res, c.jobs)
	return res
}

// Job returns the job with id from the current list
func (c *Controller) Job(id int) (backend.Job, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, j := range c.jobs {
		if j.ID == id {
			return j, true
		}
	}
	return backend.Job{}, false
}

// State returns the page state
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}
