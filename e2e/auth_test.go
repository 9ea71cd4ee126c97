//go:build e2e

package e2e

import (
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_LoginPageDisplays(t *testing.T) {
	page := newPage(t)
	_, err := page.Goto(baseURL + "/login")
	require.NoError(t, err)

	title, err := page.Title()
	require.NoError(t, err)
	assert.Equal(t, "Login - Job Management", title)

	visible, err := page.Locator(".login-card").IsVisible()
	require.NoError(t, err)
	assert.True(t, visible, "login card should be visible")

	count, err := page.Locator("select[name='email'] option").Count()
	require.NoError(t, err)
	assert.Equal(t, 4, count, "placeholder and three personas")
}

func TestAuth_RedirectsToLogin(t *testing.T) {
	page := newPage(t)
	for _, path := range []string{"/", "/file-sensing", "/filtering"} {
		_, err := page.Goto(baseURL + path)
		require.NoError(t, err)
		assert.Equal(t, baseURL+"/login", page.URL(), path)
	}
}

func TestAuth_EmptySelection(t *testing.T) {
	page := newPage(t)
	_, err := page.Goto(baseURL + "/login")
	require.NoError(t, err)
	require.NoError(t, page.Locator("button[type='submit']").Click())

	waitVisible(t, page.Locator(".alert-error"))
	text, err := page.Locator(".alert-error").TextContent()
	require.NoError(t, err)
	assert.Contains(t, text, "Please select a user to simulate SSO login.")
}

func TestAuth_LoginLogout(t *testing.T) {
	fake.reset()
	page := newPage(t)
	loginAs(t, page, "admin@company.com")

	text, err := page.Locator(".user-name").TextContent()
	require.NoError(t, err)
	assert.Equal(t, "Admin User", text)

	// authenticated visit to login goes back to dashboard
	_, err = page.Goto(baseURL + "/login")
	require.NoError(t, err)
	assert.Equal(t, baseURL+"/", page.URL())

	// session survives reload
	_, err = page.Reload()
	require.NoError(t, err)
	waitVisible(t, page.Locator("#stat-total"))

	require.NoError(t, page.Locator("a:has-text('Logout')").Click())
	require.NoError(t, page.WaitForURL(baseURL+"/login"))

	_, err = page.Goto(baseURL + "/file-sensing")
	require.NoError(t, err)
	assert.Equal(t, baseURL+"/login", page.URL())
}

func TestAuth_NoAccess(t *testing.T) {
	page := newPage(t)
	_, err := page.Goto(baseURL + "/login")
	require.NoError(t, err)
	_, err = page.Locator("select[name='email']").SelectOption(playwright.SelectOptionValues{
		Values: &[]string{"noaccess@company.com"}})
	require.NoError(t, err)
	require.NoError(t, page.Locator("button[type='submit']").Click())

	waitVisible(t, page.Locator("h1:has-text('Access Denied')"))

	for _, path := range []string{"/file-sensing", "/filtering"} {
		_, err = page.Goto(baseURL + path)
		require.NoError(t, err)
		waitVisible(t, page.Locator("h1:has-text('Access Denied')"))
		count, err := page.Locator(".jobs-table").Count()
		require.NoError(t, err)
		assert.Zero(t, count, "no job table on %s", path)
	}

	require.NoError(t, page.Locator("a:has-text('Logout')").Click())
	require.NoError(t, page.WaitForURL(baseURL+"/login"))
}
