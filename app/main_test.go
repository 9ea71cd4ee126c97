package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func Test_makeHostName(t *testing.T) {
	opts.Web.Hostname = "test"
	assert.Equal(t, "test", makeHostName())

	opts.Web.Hostname = ""
	exp, err := os.Hostname()
	require.NoError(t, err)
	assert.Equal(t, exp, makeHostName())
}

func Test_makeAuditor(t *testing.T) {
	opts.Notify.Webhooks = nil
	assert.Nil(t, makeAuditor())

	opts.Notify.Webhooks = []string{"http://example.com/hook1", "http://example.com/hook2"}
	opts.Notify.Attempts = 4
	opts.Notify.Timeout = time.Second
	defer func() { opts.Notify.Webhooks = nil }()

	auditor := makeAuditor()
	require.NotNil(t, auditor)
	hooks, attempts := auditor.Summary()
	assert.Equal(t, 2, hooks)
	assert.Equal(t, 4, attempts)
}

func Test_makeSettingsInfo(t *testing.T) {
	opts.Backend.URL = "http://backend:8000"
	opts.Backend.Timeout = 3 * time.Second
	opts.Web.Address = ":9090"
	opts.Web.BaseURL = "/jobs/"
	opts.Web.DBPath = "/srv/var/jobdash.db"
	opts.Web.LoginTTL = 12 * time.Hour

	info := makeSettingsInfo(nil)
	assert.Equal(t, "http://backend:8000", info.BackendURL)
	assert.Equal(t, 3*time.Second, info.BackendTimeout)
	assert.Equal(t, ":9090", info.WebAddress)
	assert.Equal(t, "/jobs", info.BaseURL)
	assert.Equal(t, "/srv/var/jobdash.db", info.DBPath)
	assert.Equal(t, 12*time.Hour, info.LoginTTL)
	assert.Zero(t, info.WebhookCount)
	assert.WithinDuration(t, time.Now(), info.StartTime, time.Minute)
}

func Test_setupLogsWithLogsDisabled(t *testing.T) {
	opts.Log.Enabled = false
	assert.Equal(t, os.Stdout, setupLogs())
}

func Test_setupLogsToFile(t *testing.T) {
	dir := t.TempDir()

	opts.Log.Enabled = true
	opts.Log.Filename = filepath.Join(dir, "logs", "jobdash.log")
	opts.Log.MaxSize = 100
	opts.Log.MaxBackups = 7
	opts.Log.MaxAge = 0
	opts.Log.EnabledCompress = false
	defer func() { opts.Log.Enabled = false }()

	out := setupLogs()
	assert.IsType(t, &lumberjack.Logger{}, out)

	logger := out.(*lumberjack.Logger)
	assert.Equal(t, opts.Log.Filename, logger.Filename)
	assert.Equal(t, 100, logger.MaxSize)
	assert.Equal(t, 7, logger.MaxBackups)
	assert.Equal(t, 0, logger.MaxAge)
	assert.False(t, logger.Compress)
	assert.DirExists(t, filepath.Join(dir, "logs"))
}

func Test_validateBaseURL(t *testing.T) {
	tests := []struct{ name, input, want string }{
		{"empty string", "", ""},
		{"root path", "/", ""},
		{"path without trailing slash", "/jobs", "/jobs"},
		{"path with trailing slash", "/jobs/", "/jobs"},
		{"multi-segment path", "/app/jobs", "/app/jobs"},
		{"multi-segment with trailing slash", "/app/jobs/", "/app/jobs"},
		{"missing leading slash", "jobs", "/jobs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validateBaseURL(tt.input))
		})
	}
}
