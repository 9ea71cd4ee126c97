//go:build e2e

package e2e

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- theme tests ---

func TestTheme_ToggleDarkLight(t *testing.T) {
	page := newPage(t)
	loginAs(t, page, "user@company.com")

	theme, err := page.Locator("html").GetAttribute("data-theme")
	require.NoError(t, err)
	assert.Equal(t, "light", theme)

	require.NoError(t, page.Locator("button:has-text('Theme')").Click())
	waitVisible(t, page.Locator("html[data-theme='dark'] .sidebar"))

	require.NoError(t, page.Locator("button:has-text('Theme')").Click())
	waitVisible(t, page.Locator("html[data-theme='light'] .sidebar"))
}

// --- about modal tests ---

func TestAboutModal_Opens(t *testing.T) {
	page := newPage(t)
	loginAs(t, page, "user@company.com")

	require.NoError(t, page.Locator("button:has-text('About')").Click())
	waitVisible(t, page.Locator("#modal dialog"))

	text, err := page.Locator("#modal dialog").TextContent()
	require.NoError(t, err)
	assert.Contains(t, text, "Backend")
	assert.Contains(t, text, "127.0.0.1:18091")
	assert.Contains(t, text, "e2e-test")
}
