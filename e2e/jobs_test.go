//go:build e2e

package e2e

import (
	"net/http"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openJobs(t *testing.T, page playwright.Page, path string) {
	t.Helper()
	_, err := page.Goto(baseURL + path)
	require.NoError(t, err)
	waitVisible(t, page.Locator(".jobs-table"))
}

func TestJobs_ListInServerOrder(t *testing.T) {
	fake.reset()
	page := newPage(t)
	loginAs(t, page, "admin@company.com")
	openJobs(t, page, "/file-sensing")

	names, err := page.Locator(".job-row .job-name").AllTextContents()
	require.NoError(t, err)
	assert.Equal(t, []string{"Customer Data Import", "Order Processing", "Inventory Updates"}, names)

	badges, err := page.Locator(".job-row .badge").AllTextContents()
	require.NoError(t, err)
	assert.Equal(t, []string{"Running", "Failed", "Paused"}, badges)

	text, err := page.Locator("#job-file-sensing-1 .ts").First().TextContent()
	require.NoError(t, err)
	assert.Equal(t, "1/7/2025, 6:00:15 AM", text)
}

func TestJobs_Toggle(t *testing.T) {
	fake.reset()
	page := newPage(t)
	loginAs(t, page, "admin@company.com")
	openJobs(t, page, "/file-sensing")
	acceptDialogs(page)

	row := page.Locator("#job-file-sensing-1")
	require.NoError(t, row.Locator(".toggle-btn").Click())
	waitVisible(t, page.Locator("#job-file-sensing-1 .badge:has-text('Paused')"))

	label, err := page.Locator("#job-file-sensing-1 .btn-label").TextContent()
	require.NoError(t, err)
	assert.Equal(t, "Resume", label)
	waitVisible(t, page.Locator(".toast-success:has-text('Job paused successfully')"))

	// state is server side, survives reload
	openJobs(t, page, "/file-sensing")
	waitVisible(t, page.Locator("#job-file-sensing-1 .badge:has-text('Paused')"))

	require.NoError(t, page.Locator("#job-file-sensing-1 .toggle-btn").Click())
	waitVisible(t, page.Locator("#job-file-sensing-1 .badge:has-text('Running')"))
}

func TestJobs_ToggleCanceled(t *testing.T) {
	fake.reset()
	page := newPage(t)
	loginAs(t, page, "admin@company.com")
	openJobs(t, page, "/filtering")

	// no dialog handler, the confirmation is dismissed
	require.NoError(t, page.Locator("#job-filtering-1 .toggle-btn").Click())

	badge, err := page.Locator("#job-filtering-1 .badge").TextContent()
	require.NoError(t, err)
	assert.Equal(t, "Running", badge)
}

func TestJobs_ToggleFailure(t *testing.T) {
	fake.reset()
	page := newPage(t)
	loginAs(t, page, "admin@company.com")
	openJobs(t, page, "/filtering")
	acceptDialogs(page)

	fake.setFail("POST /api/filtering/jobs/2/toggle", http.StatusInternalServerError)
	require.NoError(t, page.Locator("#job-filtering-2 .toggle-btn").Click())
	waitVisible(t, page.Locator(".toast-error:has-text('Failed to toggle job status')"))

	badge, err := page.Locator("#job-filtering-2 .badge").TextContent()
	require.NoError(t, err)
	assert.Equal(t, "Running", badge)
}

func fillJobForm(t *testing.T, page playwright.Page) {
	t.Helper()
	for field, value := range map[string]string{
		"jobName":      "Weekly Export",
		"schedule":     "0 3 * * 1",
		"serverName":   "prod-server-09",
		"fileLocation": "/data/exports",
		"filePattern":  "export_*.csv",
	} {
		require.NoError(t, page.Locator("#add-job-form input[name='"+field+"']").Fill(value))
	}
}

func TestJobs_Create(t *testing.T) {
	fake.reset()
	page := newPage(t)
	loginAs(t, page, "admin@company.com")
	openJobs(t, page, "/filtering")

	require.NoError(t, page.Locator("button:has-text('Add Job')").First().Click())
	waitVisible(t, page.Locator("#add-job-dialog"))
	fillJobForm(t, page)
	require.NoError(t, page.Locator("#add-job-form button[type='submit']").Click())

	waitVisible(t, page.Locator("#job-filtering-3"))
	names, err := page.Locator(".job-row .job-name").AllTextContents()
	require.NoError(t, err)
	assert.Equal(t, []string{"Email Sanitization", "Log Cleaning", "Weekly Export"}, names)
	waitVisible(t, page.Locator(".toast-success:has-text('Job added successfully')"))

	// dialog closed and form reset
	require.NoError(t, page.Locator("#add-job-dialog").WaitFor(playwright.LocatorWaitForOptions{
		State: playwright.WaitForSelectorStateHidden}))
	value, err := page.Locator("#add-job-form input[name='jobName']").InputValue()
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestJobs_CreateFailure(t *testing.T) {
	fake.reset()
	page := newPage(t)
	loginAs(t, page, "admin@company.com")
	openJobs(t, page, "/file-sensing")

	fake.setFail("POST /api/file-sensing/jobs", http.StatusInternalServerError)
	require.NoError(t, page.Locator("button:has-text('Add Job')").First().Click())
	fillJobForm(t, page)
	require.NoError(t, page.Locator("#add-job-form button[type='submit']").Click())
	waitVisible(t, page.Locator(".toast-error:has-text('Failed to add job')"))

	// form stays open with input intact, rows unchanged
	visible, err := page.Locator("#add-job-dialog").IsVisible()
	require.NoError(t, err)
	assert.True(t, visible)
	value, err := page.Locator("#add-job-form input[name='jobName']").InputValue()
	require.NoError(t, err)
	assert.Equal(t, "Weekly Export", value)
	count, err := page.Locator(".job-row").Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
