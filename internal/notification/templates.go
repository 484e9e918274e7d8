package notification

import (
	"bytes"
	"embed"
	"html/template"
	"time"

	"github.com/axioniz/axioniz-api/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// teamChecklist is the follow-up routine included in every team alert.
var teamChecklist = []string{
	"Review client requirements and services requested",
	"Check calendar availability for preferred date/time",
	"Contact client within 24 hours to confirm consultation",
	"Prepare consultation agenda based on requested services",
	"Send calendar invite with meeting details",
}

type confirmationView struct {
	Consultation *models.Consultation
	Services     []string
	WebsiteURL   string
	ContactEmail string
	Year         int
}

type teamView struct {
	Consultation *models.Consultation
	Services     []string
	Checklist    []string
	Submitted    string
	Year         int
}

type testView struct {
	Sent  string
	Relay string
}

func renderConfirmation(c *models.Consultation, websiteURL, contactEmail string, now time.Time) (string, error) {
	return render("confirmation.html", confirmationView{
		Consultation: c,
		Services:     models.ServiceDisplayNames(c.Services),
		WebsiteURL:   websiteURL,
		ContactEmail: contactEmail,
		Year:         now.Year(),
	})
}

func renderTeamNotification(c *models.Consultation, now time.Time) (string, error) {
	submitted := c.CreatedAt
	if submitted.IsZero() {
		submitted = now
	}
	return render("team_notification.html", teamView{
		Consultation: c,
		Services:     models.ServiceDisplayNames(c.Services),
		Checklist:    teamChecklist,
		Submitted:    submitted.UTC().Format("Jan 2, 2006 15:04 MST"),
		Year:         now.Year(),
	})
}

func renderTest(relay string, now time.Time) (string, error) {
	return render("test.html", testView{
		Sent:  now.UTC().Format(time.RFC1123),
		Relay: relay,
	})
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
