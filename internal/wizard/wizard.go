// Package wizard drives the four-step consultation form: service selection,
// scheduling, contact details and free text, then submission to the API.
package wizard

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/axioniz/axioniz-api/internal/models"
	"github.com/axioniz/axioniz-api/pkg/logger"
	"go.uber.org/zap"
)

type Step int

const (
	StepServices Step = iota + 1
	StepSchedule
	StepContact
	StepDetails
)

func (s Step) String() string {
	switch s {
	case StepServices:
		return "Services"
	case StepSchedule:
		return "Schedule"
	case StepContact:
		return "Contact"
	case StepDetails:
		return "Details"
	default:
		return "Unknown"
	}
}

// Form holds everything the visitor entered so far.
type Form struct {
	Services    []string
	Date        string
	Time        string
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Company     string
	Message     string
	GDPRConsent bool
}

// ToggleService selects id, or deselects it when already selected.
func (f *Form) ToggleService(id string) {
	if i := slices.Index(f.Services, id); i >= 0 {
		f.Services = slices.Delete(f.Services, i, i+1)
		return
	}
	f.Services = append(f.Services, id)
}

// Request converts the form into the API payload.
func (f Form) Request() models.ConsultationRequest {
	return models.ConsultationRequest{
		Services:    slices.Clone(f.Services),
		Date:        f.Date,
		Time:        f.Time,
		FirstName:   strings.TrimSpace(f.FirstName),
		LastName:    strings.TrimSpace(f.LastName),
		Email:       strings.TrimSpace(f.Email),
		Phone:       strings.TrimSpace(f.Phone),
		Company:     strings.TrimSpace(f.Company),
		Message:     strings.TrimSpace(f.Message),
		GDPRConsent: f.GDPRConsent,
	}
}

// Confirmation summarizes an accepted submission.
type Confirmation struct {
	ID                int64
	Services          []string
	Date              string
	Time              string
	Email             string
	EstimatedResponse string
	EmailSent         bool
}

// Submitter delivers a request to the consultation API.
type Submitter interface {
	Submit(ctx context.Context, req models.ConsultationRequest) (*models.SubmissionData, error)
}

// Wizard is the form state machine. It is meant for a single user session
// and is not safe for concurrent use.
type Wizard struct {
	Form Form

	step         Step
	err          string
	confirmation *Confirmation
	submitter    Submitter
	today        func() time.Time
}

func New(submitter Submitter) *Wizard {
	return NewWithClock(submitter, time.Now)
}

// NewWithClock lets tests pin the date used by the schedule guard.
func NewWithClock(submitter Submitter, today func() time.Time) *Wizard {
	return &Wizard{step: StepServices, submitter: submitter, today: today}
}

func (w *Wizard) Step() Step { return w.step }

// Error is the message currently shown to the visitor, if any.
func (w *Wizard) Error() string { return w.err }

func (w *Wizard) ClearError() { w.err = "" }

// Submitted reports whether the wizard reached its terminal state.
func (w *Wizard) Submitted() bool { return w.confirmation != nil }

func (w *Wizard) Confirmation() *Confirmation { return w.confirmation }

// Next advances one step when the current step's guard passes.
func (w *Wizard) Next() bool {
	if w.Submitted() {
		return false
	}
	w.err = ""

	if r := Validate(w.Form, Continuing, w.today(), w.step); !r.Ok() {
		w.err = r.Message
		return false
	}
	if w.step < StepDetails {
		w.step++
	}
	return true
}

// Previous goes back one step without validation.
func (w *Wizard) Previous() {
	if w.Submitted() {
		return
	}
	w.err = ""
	if w.step > StepServices {
		w.step--
	}
}

// Submit re-checks every guard, jumping back to the first failing step, and
// sends the form. On failure the entered data is kept for a retry.
func (w *Wizard) Submit(ctx context.Context) bool {
	if w.Submitted() {
		return false
	}
	w.err = ""

	r := Validate(w.Form, Submitting, w.today(), StepServices, StepSchedule, StepContact)
	if !r.Ok() {
		w.step = r.Step
		w.err = r.Message
		return false
	}

	req := w.Form.Request()
	data, err := w.submitter.Submit(ctx, req)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			message := apiErr.Message
			if message == "" {
				message = "Please try again."
			}
			w.err = "Failed to submit consultation request: " + message
		} else {
			w.err = "An error occurred. Please try again."
		}
		logger.Warn("Consultation submission failed", zap.Error(err))
		return false
	}

	w.confirmation = &Confirmation{
		ID:                data.ID,
		Services:          models.ServiceDisplayNames(req.Services),
		Date:              req.Date,
		Time:              req.Time,
		Email:             req.Email,
		EstimatedResponse: data.EstimatedResponse,
		EmailSent:         data.EmailSent,
	}
	return true
}

// Reset returns to the first step with every field cleared.
func (w *Wizard) Reset() {
	w.Form = Form{}
	w.step = StepServices
	w.err = ""
	w.confirmation = nil
}
