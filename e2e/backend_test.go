//go:build e2e

package e2e

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

type job struct {
	ID                    int     `json:"id"`
	JobName               string  `json:"jobName"`
	Schedule              string  `json:"schedule"`
	ServerName            string  `json:"serverName"`
	FileLocation          string  `json:"fileLocation"`
	FilePattern           string  `json:"filePattern"`
	LastSuccessfulAttempt *string `json:"lastSuccessfulAttempt"`
	LastSensingAttempt    *string `json:"lastSensingAttempt"`
	Status                string  `json:"status"`
}

type user struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	HasAccess bool   `json:"hasAccess"`
}

// fakeBackend serves the job management API from memory, reset restores the seed data
type fakeBackend struct {
	mu   sync.Mutex
	jobs map[string][]job
	fail map[string]int
}

var users = map[string]user{
	"admin":    {ID: 1, Email: "admin@company.com", Name: "Admin User", HasAccess: true},
	"user":     {ID: 2, Email: "user@company.com", Name: "Regular User", HasAccess: true},
	"noaccess": {ID: 3, Email: "noaccess@company.com", Name: "No Access User", HasAccess: false},
}

func ts(s string) *string { return &s }

func newFakeBackend() *fakeBackend {
	f := &fakeBackend{}
	f.reset()
	return f
}

func (f *fakeBackend) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = map[string]int{}
	f.jobs = map[string][]job{
		"file-sensing": {
			{ID: 1, JobName: "Customer Data Import", Schedule: "0 6 * * *", ServerName: "prod-server-01",
				FileLocation: "/data/imports/customers", FilePattern: "customer_*.csv",
				LastSuccessfulAttempt: ts("2025-01-07T06:00:15"), LastSensingAttempt: ts("2025-01-07T06:00:15"), Status: "running"},
			{ID: 2, JobName: "Order Processing", Schedule: "*/15 * * * *", ServerName: "prod-server-02",
				FileLocation: "/data/orders", FilePattern: "orders_*.json",
				LastSuccessfulAttempt: ts("2025-01-07T14:15:00"), LastSensingAttempt: ts("2025-01-07T14:30:00"), Status: "failed"},
			{ID: 3, JobName: "Inventory Updates", Schedule: "0 */2 * * *", ServerName: "prod-server-03",
				FileLocation: "/data/inventory", FilePattern: "inventory_*.xml",
				LastSuccessfulAttempt: ts("2025-01-07T12:00:00"), LastSensingAttempt: ts("2025-01-07T14:00:00"), Status: "paused"},
		},
		"filtering": {
			{ID: 1, JobName: "Email Sanitization", Schedule: "0 */4 * * *", ServerName: "filter-server-01",
				FileLocation: "/data/emails", FilePattern: "emails_*.txt",
				LastSuccessfulAttempt: ts("2025-01-07T12:00:00"), LastSensingAttempt: ts("2025-01-07T16:00:00"), Status: "running"},
			{ID: 2, JobName: "Log Cleaning", Schedule: "0 2 * * *", ServerName: "filter-server-02",
				FileLocation: "/logs/application", FilePattern: "app_*.log",
				LastSuccessfulAttempt: ts("2025-01-07T02:00:00"), LastSensingAttempt: ts("2025-01-07T02:00:00"), Status: "running"},
		},
	}
}

func (f *fakeBackend) setFail(key string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[key] = code
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := r.Method + " " + r.URL.Path
	if code, ok := f.fail[key]; ok {
		http.Error(w, `{"detail":"forced failure"}`, code)
		return
	}

	if key == "POST /api/auth/sso-login" {
		var req struct {
			Token string `json:"token"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		name := strings.TrimPrefix(req.Token, "mock-sso-token-")
		u, ok := users[name]
		if !ok {
			http.Error(w, `{"detail":"Invalid SSO token"}`, http.StatusUnauthorized)
			return
		}
		reply(w, map[string]any{"token": "jwt-" + name, "user": u})
		return
	}

	u, ok := users[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer jwt-")]
	if !ok {
		http.Error(w, `{"detail":"Invalid token"}`, http.StatusUnauthorized)
		return
	}
	if key == "GET /api/auth/me" {
		reply(w, map[string]any{"user": u})
		return
	}
	if !u.HasAccess {
		http.Error(w, `{"detail":"Access denied"}`, http.StatusForbidden)
		return
	}
	if key == "GET /api/dashboard/stats" {
		reply(w, f.stats())
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 3 || parts[2] != "jobs" {
		http.NotFound(w, r)
		return
	}
	list, ok := f.jobs[parts[1]]
	if !ok {
		http.NotFound(w, r)
		return
	}
	switch {
	case len(parts) == 3 && r.Method == http.MethodGet:
		reply(w, list)
	case len(parts) == 3 && r.Method == http.MethodPost:
		var j job
		_ = json.NewDecoder(r.Body).Decode(&j)
		j.ID, j.Status = len(list)+1, "running"
		f.jobs[parts[1]] = append(list, j)
		reply(w, j)
	case len(parts) == 5 && parts[4] == "toggle":
		id, _ := strconv.Atoi(parts[3])
		for i := range list {
			if list[i].ID == id {
				if list[i].Status == "paused" {
					list[i].Status = "running"
				} else {
					list[i].Status = "paused"
				}
				reply(w, list[i])
				return
			}
		}
		http.Error(w, `{"detail":"Job not found"}`, http.StatusNotFound)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeBackend) stats() map[string]any {
	var total, running, failed, paused int
	var last string
	for _, list := range f.jobs {
		for _, j := range list {
			total++
			switch j.Status {
			case "running":
				running++
			case "failed":
				failed++
			case "paused":
				paused++
			}
			if j.LastSuccessfulAttempt != nil && *j.LastSuccessfulAttempt > last {
				last = *j.LastSuccessfulAttempt
			}
		}
	}
	return map[string]any{"total": total, "running": running, "failed": failed, "paused": paused,
		"lastSuccessfulRun": last, "averageSuccessRate": 85.7}
}

func reply(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
