package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ConsultationStatus is the admin-managed lifecycle label of a consultation.
// Transitions between statuses are unconstrained.
type ConsultationStatus string

const (
	StatusPending   ConsultationStatus = "pending"
	StatusContacted ConsultationStatus = "contacted"
	StatusScheduled ConsultationStatus = "scheduled"
	StatusCompleted ConsultationStatus = "completed"
)

// AllStatuses lists the statuses in workflow order.
var AllStatuses = []ConsultationStatus{StatusPending, StatusContacted, StatusScheduled, StatusCompleted}

// IsValid reports whether s is one of the known statuses.
func (s ConsultationStatus) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ServiceList is the set of requested services. It is persisted as a JSON
// array (TEXT in SQLite, JSONB in PostgreSQL).
type ServiceList []string

// Value implements driver.Valuer.
func (l ServiceList) Value() (driver.Value, error) {
	if l == nil {
		l = ServiceList{}
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *ServiceList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = ServiceList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ServiceList", src)
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("invalid services JSON: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}

// Consultation is a stored consultation request.
type Consultation struct {
	ID          int64              `json:"id" db:"id"`
	Services    ServiceList        `json:"services" db:"services"`
	Date        string             `json:"date" db:"date"`
	Time        string             `json:"time" db:"time"`
	FirstName   string             `json:"firstName" db:"first_name"`
	LastName    string             `json:"lastName" db:"last_name"`
	Email       string             `json:"email" db:"email"`
	Phone       string             `json:"phone" db:"phone"`
	Company     string             `json:"company,omitempty" db:"company"`
	Message     string             `json:"message,omitempty" db:"message"`
	GDPRConsent bool               `json:"gdprConsent" db:"gdpr_consent"`
	Status      ConsultationStatus `json:"status" db:"status"`
	CreatedAt   time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time          `json:"updatedAt" db:"updated_at"`
}

// FullName returns "First Last".
func (c *Consultation) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Clone returns a deep copy so callers cannot mutate stored records.
func (c *Consultation) Clone() *Consultation {
	if c == nil {
		return nil
	}
	out := *c
	out.Services = append(ServiceList{}, c.Services...)
	return &out
}

// ConsultationRequest is the validated submission payload.
type ConsultationRequest struct {
	Services    []string `json:"services" binding:"required,min=1,max=4,unique,dive,service"`
	Date        string   `json:"date" binding:"required,datetime=2006-01-02"`
	Time        string   `json:"time" binding:"required,timeslot"`
	FirstName   string   `json:"firstName" binding:"required,min=2,max=100"`
	LastName    string   `json:"lastName" binding:"required,min=2,max=100"`
	Email       string   `json:"email" binding:"required,email,max=255"`
	Phone       string   `json:"phone" binding:"required,min=10,max=32"`
	Company     string   `json:"company" binding:"omitempty,max=200"`
	Message     string   `json:"message" binding:"omitempty,max=5000"`
	GDPRConsent bool     `json:"gdprConsent"`
}

// UpdateStatusRequest is the admin status change payload. Presence of both
// fields is checked by the handler so it can answer with a specific message.
type UpdateStatusRequest struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// SubmissionData is the payload of a successful submission response.
type SubmissionData struct {
	ID                int64              `json:"id"`
	Status            ConsultationStatus `json:"status"`
	EstimatedResponse string             `json:"estimatedResponse"`
	EmailSent         bool               `json:"emailSent"`
}

// SubmissionResponse is returned by POST /api/consultation.
type SubmissionResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    *SubmissionData `json:"data,omitempty"`
}

// FieldError names one invalid field of a rejected submission.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the uniform failure envelope of the consultation API.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// ConsultationListResponse is returned by GET /api/admin/consultations.
type ConsultationListResponse struct {
	Success       bool                       `json:"success"`
	Consultations []*Consultation            `json:"consultations"`
	Count         int                        `json:"count"`
	Counts        map[ConsultationStatus]int `json:"counts"`
}

// CountByStatus tallies consultations per status, always including every known status.
func CountByStatus(consultations []*Consultation) map[ConsultationStatus]int {
	counts := make(map[ConsultationStatus]int, len(AllStatuses))
	for _, s := range AllStatuses {
		counts[s] = 0
	}
	for _, c := range consultations {
		counts[c.Status]++
	}
	return counts
}
