package notification

import (
	"html"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func TestRenderConfirmation(t *testing.T) {
	c := testConsultation()
	c.Company = "Analytical Engines Ltd"
	c.Message = "We need an assistant for support tickets"

	body, err := renderConfirmation(c, "https://axioniz.com", "hello@axioniz.com", fixedNow)
	require.NoError(t, err)

	assert.Contains(t, body, "Hello Ada!")
	assert.Contains(t, body, "#42")
	assert.Contains(t, body, "2026-11-02")
	assert.Contains(t, body, "10:00 AM")
	assert.Contains(t, body, "Analytical Engines Ltd")
	assert.Contains(t, body, "AI Integration")
	assert.Contains(t, body, "Server Maintenance")
	assert.Contains(t, body, "We need an assistant for support tickets")
	assert.Contains(t, body, "What happens next?")
	assert.Contains(t, body, "mailto:hello@axioniz.com")
	assert.Contains(t, body, "&copy; 2026 Axioniz")
}

func TestRenderConfirmation_OmitsOptionalSections(t *testing.T) {
	body, err := renderConfirmation(testConsultation(), "https://axioniz.com", "hello@axioniz.com", fixedNow)
	require.NoError(t, err)

	assert.NotContains(t, body, ">Company<")
	assert.NotContains(t, body, "Your Message")
}

func TestRenderConfirmation_EscapesUserInput(t *testing.T) {
	c := testConsultation()
	c.FirstName = "<script>alert(1)</script>"
	c.Message = `<img src=x onerror="steal()">`

	body, err := renderConfirmation(c, "https://axioniz.com", "hello@axioniz.com", fixedNow)
	require.NoError(t, err)

	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.NotContains(t, body, "<img src=x")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestRenderTeamNotification(t *testing.T) {
	rendered, err := renderTeamNotification(testConsultation(), fixedNow)
	require.NoError(t, err)

	// html/template entity-encodes characters such as '+' in the phone number.
	assert.NotContains(t, rendered, "+442079460958")
	body := html.UnescapeString(rendered)

	assert.Contains(t, body, "Ada Lovelace")
	assert.Contains(t, body, "ada@example.com")
	assert.Contains(t, body, "+442079460958")
	assert.Contains(t, body, "Not specified")
	for _, step := range teamChecklist {
		assert.Contains(t, body, step)
	}
	assert.Contains(t, body, "#42")
	assert.Contains(t, body, "Oct 15, 2026 09:30 UTC")
}

func TestRenderTest(t *testing.T) {
	body, err := renderTest("smtp.zoho.eu:587", fixedNow)
	require.NoError(t, err)
	assert.Contains(t, body, "smtp.zoho.eu:587")
}
