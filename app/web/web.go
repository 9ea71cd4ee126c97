// Package web implements the dashboard web server: pages, HTMX endpoints and the access shell.
//
// All job data comes from the backend on behalf of the logged in identity. The server keeps no job
// state of its own beyond the per-session page controllers provided by the jobs package.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/didip/tollbooth/v8"
	"github.com/didip/tollbooth/v8/limiter"
	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/jobdash/app/backend"
	"github.com/umputun/jobdash/app/config"
	"github.com/umputun/jobdash/app/enums"
	"github.com/umputun/jobdash/app/hoststat"
	"github.com/umputun/jobdash/app/jobs"
	"github.com/umputun/jobdash/app/notify"
	"github.com/umputun/jobdash/app/session"
)

//go:embed templates/*.html templates/partials/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Sessions is the session store used by the access shell
type Sessions interface {
	Login(ctx context.Context, ssoToken string) (session.Session, error)
	Logout(sid string) error
	Current(ctx context.Context, sid string) (session.Session, error)
	Pending(sid string) bool
}

// Pages provides page controllers per session and category
type Pages interface {
	Get(sid, token string, cat enums.Category) *jobs.Controller
	Drop(sid string)
}

// Backend is the subset of backend client used for read-only views
type Backend interface {
	Stats(ctx context.Context, token string) (backend.Stats, error)
	ListJobs(ctx context.Context, token string, cat enums.Category) ([]backend.Job, error)
}

// Auditor receives job mutation events
type Auditor interface {
	Publish(ev notify.Event)
}

// Server represents the web server
type Server struct {
	sessions     Sessions
	pages        Pages
	backend      Backend
	auditor      Auditor
	app          *config.Config
	templates    map[string]*template.Template
	baseURL      string // base URL path for reverse proxy (e.g., /jobs), empty for root
	hostname     string // hostname to display in UI
	version      string
	loginTTL     time.Duration
	secureCookie bool
	settingsInfo SettingsInfo
	csrf         *http.CrossOriginProtection
	loginLimiter *limiter.Limiter
}

// Config holds server configuration
type Config struct {
	Sessions     Sessions
	Pages        Pages
	Backend      Backend
	Auditor      Auditor        // optional
	App          *config.Config // title and login personas, defaults if nil
	BaseURL      string         // base URL path for reverse proxy, empty for root
	Hostname     string         // hostname to display in UI
	Version      string
	LoginTTL     time.Duration // session cookie lifetime, defaults to 24h
	SecureCookie bool          // set Secure flag on session cookie
	Settings     SettingsInfo  // runtime configuration for settings/about modal
}

// SettingsInfo holds safe-to-display runtime configuration for settings/about modal
type SettingsInfo struct {
	Version   string
	StartTime time.Time

	WebAddress  string
	WebHostname string
	BaseURL     string
	DBPath      string
	ConfigPath  string

	BackendURL     string
	BackendTimeout time.Duration
	LoginTTL       time.Duration

	WebhookCount    int
	WebhookAttempts int

	LoggingEnabled bool
	DebugMode      bool
	LogFilePath    string
	LogMaxSize     int
	LogMaxAge      int
	LogMaxBackups  int
}

// TemplateData holds data for page templates
type TemplateData struct {
	Title       string // dashboard title
	PageTitle   string
	BaseURL     string
	Hostname    string
	Version     string
	Theme       enums.Theme
	CurrentYear int
	User        backend.User
	Active      string // active navigation path
	Categories  []enums.Category
	Toasts      []toast

	// job pages
	Category enums.Category
	Jobs     []jobRow

	// dashboard
	Stats     statsView
	Attention []jobRow

	// login
	Personas []config.Persona
	Email    string
	Error    string
}

// New creates a new web server
func New(cfg Config) (*Server, error) {
	if cfg.Sessions == nil || cfg.Pages == nil || cfg.Backend == nil {
		return nil, errors.New("web server initialization failed: sessions, pages and backend are required")
	}

	app := cfg.App
	if app == nil {
		app = config.Default()
	}

	loginTTL := cfg.LoginTTL
	if loginTTL <= 0 {
		loginTTL = 24 * time.Hour
	}

	// 5 login attempts per minute per ip
	lmt := tollbooth.NewLimiter(5.0/60.0, nil)
	lmt.SetBurst(5)
	lmt.SetIPLookup(limiter.IPLookup{Name: "RemoteAddr"})
	lmt.SetMessage("Too many login attempts, try again later")
	lmt.SetMessageContentType("text/plain; charset=utf-8")

	s := &Server{
		sessions:     cfg.Sessions,
		pages:        cfg.Pages,
		backend:      cfg.Backend,
		auditor:      cfg.Auditor,
		app:          app,
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		hostname:     cfg.Hostname,
		version:      cfg.Version,
		loginTTL:     loginTTL,
		secureCookie: cfg.SecureCookie,
		settingsInfo: cfg.Settings,
		csrf:         http.NewCrossOriginProtection(),
		loginLimiter: lmt,
	}
	if s.auditor == nil {
		s.auditor = (*notify.Auditor)(nil)
	}

	templates, err := s.parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("web server initialization failed: failed to parse HTML templates: %w", err)
	}
	s.templates = templates
	return s, nil
}

// Run starts the web server
func (s *Server) Run(ctx context.Context, address string) error {
	server := &http.Server{
		Addr:              address,
		Handler:           s.handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] failed to shutdown server: %v", err)
		}
	}()

	log.Printf("[INFO] starting web server on %s", address)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server failed: %w", err)
	}
	return nil
}

// handler returns the http.Handler with base URL wrapping applied
func (s *Server) handler() http.Handler {
	routes := s.routes()
	if s.baseURL == "" {
		return routes
	}

	mux := http.NewServeMux()
	mux.HandleFunc(s.baseURL, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, s.baseURL+"/", http.StatusMovedPermanently)
	})
	mux.Handle(s.baseURL+"/", http.StripPrefix(s.baseURL, routes))
	return mux
}

// routes returns the http.Handler with all routes configured
func (s *Server) routes() http.Handler {
	router := routegroup.New(http.NewServeMux())

	router.Use(
		rest.RealIP,
		rest.Recoverer(log.Default()),
		rest.Throttle(1000),
		rest.AppInfo("jobdash", "umputun", s.version),
		rest.Ping,
		rest.Trace,
		rest.SizeLimit(64*1024), // 64KB max request size
		logger.New(logger.Log(log.Default()), logger.Prefix("[DEBUG]")).Handler,
		s.authMiddleware,
	)

	// access shell
	router.HandleFunc("GET /login", s.handleLoginForm)
	router.With(s.csrf.Handler, tollbooth.HTTPMiddleware(s.loginLimiter)).HandleFunc("POST /login", s.handleLogin)
	router.HandleFunc("GET /logout", s.handleLogout)

	// pages
	router.HandleFunc("GET /{$}", s.handleDashboard)
	for _, cat := range enums.Categories() {
		router.HandleFunc("GET "+cat.Path(), s.handleJobsPage(cat))
	}

	// HTMX endpoints
	router.Mount("/api").Route(func(api *routegroup.Bundle) {
		api.Use(rest.NoCache, s.csrf.Handler)
		api.HandleFunc("POST /jobs/{category}", s.handleCreateJob)
		api.HandleFunc("POST /jobs/{category}/{id}/toggle", s.handleToggleJob)
		api.HandleFunc("POST /theme", s.handleThemeToggle)
		api.HandleFunc("GET /settings/modal", s.handleSettingsModal)
	})

	// JSON API for CLI/programmatic access
	router.Mount("/api/v1").Route(func(api *routegroup.Bundle) {
		api.Use(rest.NoCache)
		api.HandleFunc("GET /status", s.handleAPIStatus)
	})

	fsys, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Printf("[ERROR] failed to create static file system: %v", err)
		router.Handle("GET /static/", http.FileServer(http.FS(staticFS)))
	} else {
		router.HandleFiles("/static/", http.FS(fsys))
	}

	// unknown pages go to the dashboard
	router.HandleFunc("/", s.handleUnknown)

	return router
}

// newTemplateData creates a TemplateData with common fields populated from request
func (s *Server) newTemplateData(r *http.Request, pageTitle string) TemplateData {
	data := TemplateData{
		Title:       s.app.Title,
		PageTitle:   pageTitle,
		BaseURL:     s.baseURL,
		Hostname:    s.hostname,
		Version:     shortVersion(s.version),
		Theme:       s.getTheme(r),
		CurrentYear: time.Now().Year(),
		Categories:  enums.Categories(),
		Active:      r.URL.Path,
	}
	if sess, ok := sessionFrom(r.Context()); ok {
		data.User = sess.User
	}
	return data
}

// render renders a full page template with status
func (s *Server) render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, ok := s.templates[page]
	if !ok {
		log.Printf("[WARN] template %s not found", page)
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, page+".html", data); err != nil {
		log.Printf("[WARN] failed to execute template %s: %v", page, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	s.writeHTML(w, status, buf)
}

// fragment is a named partial with its data
type fragment struct {
	name string
	data any
}

// renderFragments renders one or more partials into a single HTMX response
func (s *Server) renderFragments(w http.ResponseWriter, status int, parts ...fragment) {
	tmpl := s.templates["partials"]
	buf := new(bytes.Buffer)
	for _, p := range parts {
		if err := tmpl.ExecuteTemplate(buf, p.name, p.data); err != nil {
			log.Printf("[WARN] failed to execute partial %s: %v", p.name, err)
			http.Error(w, "Template error", http.StatusInternalServerError)
			return
		}
	}
	s.writeHTML(w, status, buf)
}

// renderToast sends a single toast, retargeted into the toasts container regardless of the
// requesting element target
func (s *Server) renderToast(w http.ResponseWriter, status int, t toast) {
	w.Header().Set("HX-Retarget", "#toasts")
	w.Header().Set("HX-Reswap", "beforeend")
	s.renderFragments(w, status, fragment{name: "toast", data: t})
}

func (s *Server) writeHTML(w http.ResponseWriter, status int, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[WARN] failed to write response: %v", err)
	}
}

// parseTemplates parses page templates, each page gets its own set with all partials
func (s *Server) parseTemplates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template)

	funcMap := template.FuncMap{
		"url":           s.url,
		"humanBytes":    hoststat.HumanBytes,
		"humanDuration": humanDuration,
		"since":         time.Since,
	}

	// pages using the sidebar layout
	for _, page := range []string{"dashboard", "jobs"} {
		t, err := template.New(page+".html").Funcs(funcMap).ParseFS(templatesFS,
			"templates/base.html", "templates/"+page+".html", "templates/partials/*.html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", page, err)
		}
		templates[page] = t
	}

	// standalone pages
	for _, page := range []string{"login", "access_denied", "loading"} {
		t, err := template.New(page+".html").Funcs(funcMap).ParseFS(templatesFS,
			"templates/"+page+".html", "templates/partials/*.html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", page, err)
		}
		templates[page] = t
	}

	partials, err := template.New("partials").Funcs(funcMap).ParseFS(templatesFS, "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse partials: %w", err)
	}
	templates["partials"] = partials

	return templates, nil
}

func (s *Server) getTheme(r *http.Request) enums.Theme {
	cookie, err := r.Cookie("theme")
	if err != nil {
		return enums.ThemeLight
	}
	theme, err := enums.ParseTheme(cookie.Value)
	if err != nil {
		log.Printf("[WARN] invalid theme %q: %v", cookie.Value, err)
		return enums.ThemeLight
	}
	return theme
}

// handleThemeToggle toggles the theme
// handleUnknown redirects page requests for unknown paths to the dashboard
func (s *Server) handleUnknown(w http.ResponseWriter, r *http.Request) {
	if (r.Method != http.MethodGet && r.Method != http.MethodHead) || isAPI(r) || isHTMX(r) {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, s.url("/"), http.StatusSeeOther)
}

func (s *Server) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "theme",
		Value:    s.getTheme(r).Toggle().String(),
		Path:     s.cookiePath(),
		MaxAge:   365 * 24 * 60 * 60, // 1 year
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	// trigger full page refresh for theme change
	w.Header().Set("HX-Refresh", "true")
	w.WriteHeader(http.StatusOK)
}

// handleSettingsModal renders settings/about modal with host metrics
func (s *Server) handleSettingsModal(w http.ResponseWriter, _ *http.Request) {
	data := struct {
		SettingsInfo
		Host hoststat.Stats
	}{
		SettingsInfo: s.settingsInfo,
		Host:         hoststat.Snapshot(""),
	}
	s.renderFragments(w, http.StatusOK, fragment{name: "settings-modal", data: data})
}

// url prepends the base URL to a path for reverse proxy support
func (s *Server) url(path string) string {
	return s.baseURL + path
}

// cookiePath returns the cookie path with base URL support
func (s *Server) cookiePath() string {
	if s.baseURL == "" {
		return "/"
	}
	return s.baseURL + "/"
}

func humanDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}

// shortVersion extracts a short version string from full version
// for version like "v1.7.0-abc1234-20241225", returns "v1.7.0"
func shortVersion(fullVer string) string {
	if fullVer == "" || fullVer == "unknown" {
		return fullVer
	}
	if idx := strings.Index(fullVer, "-"); idx > 0 {
		return fullVer[:idx]
	}
	return fullVer
}
