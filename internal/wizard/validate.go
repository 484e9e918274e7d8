package wizard

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/axioniz/axioniz-api/internal/models"
)

const dateLayout = "2006-01-02"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Action selects the wording of guard messages.
type Action int

const (
	Continuing Action = iota
	Submitting
)

func (a Action) verb() string {
	if a == Submitting {
		return "submitting"
	}
	return "continuing"
}

// Result is the outcome of a guard: Ok, or the first step that failed.
type Result struct {
	Step    Step
	Message string
}

// Ok reports whether every checked step passed.
func (r Result) Ok() bool {
	return r.Step == 0
}

func ok() Result { return Result{} }

func failedAt(step Step, message string) Result {
	return Result{Step: step, Message: message}
}

// Validate runs the guards of the given steps in order and returns the first
// failure. Steps without a guard always pass.
func Validate(f Form, action Action, today time.Time, steps ...Step) Result {
	for _, step := range steps {
		var r Result
		switch step {
		case StepServices:
			r = validateServices(f, action)
		case StepSchedule:
			r = validateSchedule(f, action, today)
		case StepContact:
			r = validateContact(f)
		}
		if !r.Ok() {
			return r
		}
	}
	return ok()
}

func validateServices(f Form, action Action) Result {
	if len(f.Services) == 0 {
		return failedAt(StepServices, "Please select at least one service before "+action.verb()+".")
	}
	for _, id := range f.Services {
		if !models.IsKnownService(id) {
			return failedAt(StepServices, "Please select services from the list.")
		}
	}
	return ok()
}

func validateSchedule(f Form, action Action, today time.Time) Result {
	if f.Date == "" || f.Time == "" {
		return failedAt(StepSchedule, "Please select both a date and time before "+action.verb()+".")
	}

	date, err := time.Parse(dateLayout, f.Date)
	if err != nil {
		return failedAt(StepSchedule, "Please select a valid date.")
	}
	y, m, d := today.Date()
	if date.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)) {
		return failedAt(StepSchedule, "Please select a date that is not in the past.")
	}

	if !models.IsValidTimeSlot(f.Time) {
		return failedAt(StepSchedule, "Please select one of the available time slots.")
	}
	return ok()
}

func validateContact(f Form) Result {
	firstName := strings.TrimSpace(f.FirstName)
	lastName := strings.TrimSpace(f.LastName)
	email := strings.TrimSpace(f.Email)
	phone := strings.TrimSpace(f.Phone)

	if firstName == "" || lastName == "" || email == "" || phone == "" {
		return failedAt(StepContact, "Please fill in all required contact information (First Name, Last Name, Email, Phone).")
	}
	if !emailPattern.MatchString(email) {
		return failedAt(StepContact, "Please enter a valid email address.")
	}
	if utf8.RuneCountInString(firstName) < 2 {
		return failedAt(StepContact, "First name must be at least 2 characters")
	}
	if utf8.RuneCountInString(lastName) < 2 {
		return failedAt(StepContact, "Last name must be at least 2 characters")
	}
	if utf8.RuneCountInString(phone) < 10 {
		return failedAt(StepContact, "Please enter a valid phone number")
	}
	return ok()
}
