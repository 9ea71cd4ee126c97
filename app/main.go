package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/joho/godotenv"
	"github.com/umputun/go-flags"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/umputun/jobdash/app/backend"
	"github.com/umputun/jobdash/app/config"
	"github.com/umputun/jobdash/app/jobs"
	"github.com/umputun/jobdash/app/notify"
	"github.com/umputun/jobdash/app/session"
	"github.com/umputun/jobdash/app/session/persistence"
	"github.com/umputun/jobdash/app/web"
)

var opts struct {
	Config string `short:"c" long:"config" env:"JOBDASH_CONFIG" description:"yaml config with title and login personas"`
	Dbg    bool   `long:"dbg" env:"JOBDASH_DEBUG" description:"debug mode"`

	Backend struct {
		URL     string        `long:"url" env:"URL" default:"http://localhost:8000" description:"backend base URL"`
		Timeout time.Duration `long:"timeout" env:"TIMEOUT" default:"10s" description:"backend request timeout"`
	} `group:"backend" namespace:"backend" env-namespace:"JOBDASH_BACKEND"`

	Web struct {
		Address      string        `long:"address" env:"ADDRESS" default:":8080" description:"web server listen address"`
		BaseURL      string        `long:"base-url" env:"BASE_URL" description:"base URL path for reverse proxy (e.g., /jobs)"`
		Hostname     string        `long:"hostname" env:"HOSTNAME" description:"hostname to display in UI"`
		DBPath       string        `long:"db" env:"DB" default:"jobdash.db" description:"sessions database path"`
		LoginTTL     time.Duration `long:"login-ttl" env:"LOGIN_TTL" default:"24h" description:"session lifetime"`
		SecureCookie bool          `long:"secure-cookie" env:"SECURE_COOKIE" description:"set Secure flag on session cookie"`
	} `group:"web" namespace:"web" env-namespace:"JOBDASH_WEB"`

	Notify struct {
		Webhooks []string      `long:"webhook" env:"WEBHOOK" env-delim:"," description:"audit webhook url(s)"`
		Timeout  time.Duration `long:"timeout" env:"TIMEOUT" default:"5s" description:"webhook request timeout"`
		Attempts int           `long:"attempts" env:"ATTEMPTS" default:"3" description:"webhook delivery attempts"`
		Delay    time.Duration `long:"delay" env:"DELAY" default:"1s" description:"initial delay between attempts"`
	} `group:"notify" namespace:"notify" env-namespace:"JOBDASH_NOTIFY"`

	Log struct {
		Enabled         bool   `long:"enabled" env:"ENABLED" description:"enable logging to file"`
		Filename        string `long:"filename" env:"FILENAME" default:"jobdash.log" description:"file to log to"`
		MaxSize         int    `long:"max-size" env:"MAX_SIZE" default:"100" description:"maximum size in megabytes of the log file before it gets rotated"`
		MaxBackups      int    `long:"max-backups" env:"MAX_BACKUPS" default:"7" description:"maximum number of old log files to retain"`
		MaxAge          int    `long:"max-age" env:"MAX_AGE" default:"0" description:"maximum number of days to retain old log files"`
		EnabledCompress bool   `long:"enabled-compress" env:"ENABLED_COMPRESS" description:"compress rotated log files"`
	} `group:"log" namespace:"log" env-namespace:"JOBDASH_LOG"`
}

var revision = "unknown"

func main() {
	fmt.Printf("jobdash %s\n", revision)

	// optional .env, real environment wins
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("failed to load .env: %v\n", err)
	}

	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(2)
	}
	setupLogger(setupLogs(), opts.Dbg)

	defer func() {
		if x := recover(); x != nil {
			log.Printf("[WARN] run time panic:\n%v", x)
			panic(x)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals(cancel) // handle SIGQUIT and SIGTERM

	if err := run(ctx); err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	appCfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	client := backend.New(backend.Params{BaseURL: opts.Backend.URL, Timeout: opts.Backend.Timeout})

	slots, err := persistence.NewSQLiteStore(opts.Web.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open sessions database: %w", err)
	}
	defer func() {
		if err := slots.Close(); err != nil {
			log.Printf("[WARN] failed to close sessions database: %v", err)
		}
	}()

	sessions := session.New(client, slots, opts.Web.LoginTTL)
	go func() {
		// requests of sessions not yet resolved see the loading page until this completes
		if err := sessions.Restore(ctx); err != nil {
			log.Printf("[WARN] failed to restore sessions: %v", err)
		}
	}()

	auditor := makeAuditor()
	defer auditor.Close()

	srv, err := web.New(web.Config{
		Sessions:     sessions,
		Pages:        jobs.NewRegistry(client, opts.Web.LoginTTL),
		Backend:      client,
		Auditor:      auditor,
		App:          appCfg,
		BaseURL:      validateBaseURL(opts.Web.BaseURL),
		Hostname:     makeHostName(),
		Version:      revision,
		LoginTTL:     sessions.TTL(),
		SecureCookie: opts.Web.SecureCookie,
		Settings:     makeSettingsInfo(auditor),
	})
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}
	return srv.Run(ctx, opts.Web.Address)
}

// makeAuditor returns nil if no webhooks configured, nil auditor drops events
func makeAuditor() *notify.Auditor {
	return notify.NewAuditor(notify.Params{
		Webhooks: opts.Notify.Webhooks,
		Timeout:  opts.Notify.Timeout,
		Attempts: opts.Notify.Attempts,
		Delay:    opts.Notify.Delay,
		Host:     makeHostName(),
	})
}

func makeSettingsInfo(auditor *notify.Auditor) web.SettingsInfo {
	res := web.SettingsInfo{
		Version:        revision,
		StartTime:      time.Now(),
		WebAddress:     opts.Web.Address,
		WebHostname:    makeHostName(),
		BaseURL:        validateBaseURL(opts.Web.BaseURL),
		DBPath:         opts.Web.DBPath,
		ConfigPath:     opts.Config,
		BackendURL:     opts.Backend.URL,
		BackendTimeout: opts.Backend.Timeout,
		LoginTTL:       opts.Web.LoginTTL,
		LoggingEnabled: opts.Log.Enabled,
		DebugMode:      opts.Dbg,
		LogFilePath:    opts.Log.Filename,
		LogMaxSize:     opts.Log.MaxSize,
		LogMaxAge:      opts.Log.MaxAge,
		LogMaxBackups:  opts.Log.MaxBackups,
	}
	if auditor != nil {
		res.WebhookCount, res.WebhookAttempts = auditor.Summary()
	}
	return res
}

func makeHostName() string {
	if opts.Web.Hostname != "" {
		return opts.Web.Hostname
	}
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return host
}

// validateBaseURL normalizes base URL path, "/" and "" both mean root
func validateBaseURL(u string) string {
	u = strings.TrimSuffix(strings.TrimSpace(u), "/")
	if u != "" && !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return u
}

// setupLogs returns log destination, rotated file if enabled, stdout otherwise
func setupLogs() io.Writer {
	if !opts.Log.Enabled {
		return os.Stdout
	}
	if dir := filepath.Dir(opts.Log.Filename); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			fmt.Printf("failed to create log directory %s: %v\n", dir, err)
			return os.Stdout
		}
	}
	return &lumberjack.Logger{
		Filename:   opts.Log.Filename,
		MaxSize:    opts.Log.MaxSize,
		MaxBackups: opts.Log.MaxBackups,
		MaxAge:     opts.Log.MaxAge,
		Compress:   opts.Log.EnabledCompress,
	}
}

func setupLogger(out io.Writer, dbg bool) {
	if dbg {
		log.Setup(log.Debug, log.Msec, log.CallerFunc, log.CallerPkg, log.CallerFile, log.Out(out), log.Err(out))
		return
	}
	log.Setup(log.Msec, log.Out(out), log.Err(out))
}

func signals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	go func() {
		stacktrace := make([]byte, 8192)
		for sig := range sigChan {
			if sig == syscall.SIGQUIT { // catch SIGQUIT and print stack traces
				length := runtime.Stack(stacktrace, true)
				fmt.Println(string(stacktrace[:length]))
				continue
			}
			cancel() // terminate on SIGTERM and SIGINT
		}
	}()
	signal.Notify(sigChan, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
}
