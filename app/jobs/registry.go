package jobs

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/umputun/jobdash/app/enums"
)

// Registry keeps controllers per session and category. Idle controllers expire.
type Registry struct {
	api   API
	mu    sync.Mutex
	cache *cache.Cache
}

// NewRegistry makes a registry, controllers not accessed for idle are dropped
func NewRegistry(api API, idle time.Duration) *Registry {
	if idle <= 0 {
		idle = time.Hour
	}
	return &Registry{api: api, cache: cache.New(idle, idle/2)}
}

// Get returns the controller for session and category, making a new one if needed.
// A controller made for a different token is replaced.
func (r *Registry) Get(sid, token string, cat enums.Category) *Controller {
	key := sid + "/" + cat.String()
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.cache.Get(key); ok {
		if c, ok := v.(*Controller); ok && c.token == token {
			r.cache.SetDefault(key, c) // extend idle expiration
			return c
		}
	}
	c := NewController(r.api, token, cat)
	r.cache.SetDefault(key, c)
	return c
}

// Drop removes all controllers of the session
func (r *Registry) Drop(sid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cat := range enums.Categories() {
		r.cache.Delete(sid + "/" + cat.String())
	}
}

// Len returns number of live controllers
func (r *Registry) Len() int {
	return r.cache.ItemCount()
}
