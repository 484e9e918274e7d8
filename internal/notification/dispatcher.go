package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/axioniz/axioniz-api/internal/models"
	"github.com/axioniz/axioniz-api/pkg/logger"
	"github.com/axioniz/axioniz-api/pkg/metrics"
	"github.com/axioniz/axioniz-api/pkg/tracing"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const (
	kindConfirmation = "confirmation"
	kindTeam         = "team_notification"
	kindTest         = "test"

	msgNotConfigured     = "Email service not configured"
	msgTeamNotConfigured = "Team notification not configured"

	confirmationSubject = "Consultation Request Confirmed - Axioniz"
)

// Result is the outcome of a single send. Dispatch failures are reported
// here and never surface as errors or panics.
type Result struct {
	Success   bool
	MessageID string
	Recipient string
	Message   string
	Err       error
}

// Error returns the failure reason for logs and API answers.
func (r Result) Error() string {
	switch {
	case r.Err != nil:
		return r.Err.Error()
	case r.Message != "":
		return r.Message
	default:
		return ""
	}
}

// Config holds the mail identity and recipients.
type Config struct {
	FromEmail  string
	FromName   string
	Password   string
	TeamEmail  string
	WebsiteURL string
	Relay      string
}

// Dispatcher composes and sends the consultation e-mails.
type Dispatcher struct {
	cfg    Config
	sender Sender
	now    func() time.Time
}

// NewDispatcher creates a dispatcher. With no sender or no credentials every
// send reports "Email service not configured".
func NewDispatcher(cfg Config, sender Sender) *Dispatcher {
	if cfg.FromName == "" {
		cfg.FromName = "Axioniz"
	}
	return &Dispatcher{cfg: cfg, sender: sender, now: time.Now}
}

// Configured reports whether outbound mail is possible.
func (d *Dispatcher) Configured() bool {
	return d.sender != nil && d.cfg.FromEmail != "" && d.cfg.Password != ""
}

// TeamEmail is the internal recipient of alerts and test messages.
func (d *Dispatcher) TeamEmail() string {
	return d.cfg.TeamEmail
}

// SendConfirmation e-mails the visitor a summary of their request.
func (d *Dispatcher) SendConfirmation(ctx context.Context, c *models.Consultation) Result {
	if !d.Configured() {
		logger.Warn("Email service not configured, skipping confirmation email",
			zap.Int64("consultation_id", c.ID))
		return d.skipped(kindConfirmation, c.Email, msgNotConfigured)
	}

	body, err := renderConfirmation(c, d.cfg.WebsiteURL, d.cfg.FromEmail, d.now())
	if err != nil {
		return d.failed(kindConfirmation, c.Email, fmt.Errorf("failed to render confirmation email: %w", err))
	}

	return d.send(ctx, kindConfirmation, c.Email, confirmationSubject, body,
		zap.Int64("consultation_id", c.ID))
}

// SendTeamNotification alerts the internal team about a new request.
func (d *Dispatcher) SendTeamNotification(ctx context.Context, c *models.Consultation) Result {
	if !d.Configured() || d.cfg.TeamEmail == "" {
		logger.Warn("Email service or team email not configured, skipping team notification",
			zap.Int64("consultation_id", c.ID))
		return d.skipped(kindTeam, d.cfg.TeamEmail, msgTeamNotConfigured)
	}

	body, err := renderTeamNotification(c, d.now())
	if err != nil {
		return d.failed(kindTeam, d.cfg.TeamEmail, fmt.Errorf("failed to render team notification: %w", err))
	}

	subject := fmt.Sprintf("New Consultation Request - %s %s", c.FirstName, c.LastName)
	return d.send(ctx, kindTeam, d.cfg.TeamEmail, subject, body,
		zap.Int64("consultation_id", c.ID))
}

// SendTest delivers a short message to the team address to verify the relay.
func (d *Dispatcher) SendTest(ctx context.Context) Result {
	if !d.Configured() {
		return d.skipped(kindTest, d.cfg.TeamEmail, msgNotConfigured)
	}
	if d.cfg.TeamEmail == "" {
		return d.skipped(kindTest, "", msgTeamNotConfigured)
	}

	body, err := renderTest(d.cfg.Relay, d.now())
	if err != nil {
		return d.failed(kindTest, d.cfg.TeamEmail, fmt.Errorf("failed to render test email: %w", err))
	}

	return d.send(ctx, kindTest, d.cfg.TeamEmail, "Axioniz email test", body)
}

func (d *Dispatcher) send(ctx context.Context, kind, to, subject, body string, fields ...zap.Field) Result {
	ctx, span := tracing.StartSpan(ctx, "email."+kind)
	defer span.End()

	start := time.Now()
	messageID := d.newMessageID()

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", d.cfg.FromEmail, d.cfg.FromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetHeader("Message-ID", messageID)
	msg.SetDateHeader("Date", d.now())
	msg.SetBody("text/html", body)

	err := d.safeSend(ctx, msg)
	duration := metrics.MeasureDuration(start)

	fields = append(fields,
		zap.String("kind", kind),
		zap.String("message_id", messageID),
		logger.MaskedEmail("recipient", to))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		metrics.RecordEmail(kind, "error", duration)
		logger.LogAPICall("smtp", kind, "error", duration, append(fields, zap.Error(err))...)
		return Result{Recipient: to, Err: err}
	}

	metrics.RecordEmail(kind, "success", duration)
	logger.LogAPICall("smtp", kind, "success", duration, fields...)
	return Result{Success: true, MessageID: messageID, Recipient: to}
}

func (d *Dispatcher) safeSend(ctx context.Context, msg *gomail.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("email sender panicked: %v", r)
		}
	}()
	return d.sender.Send(ctx, msg)
}

func (d *Dispatcher) skipped(kind, to, message string) Result {
	metrics.RecordEmail(kind, "disabled", 0)
	return Result{Recipient: to, Message: message}
}

func (d *Dispatcher) failed(kind, to string, err error) Result {
	metrics.RecordEmail(kind, "error", 0)
	logger.Error("Email composition failed", zap.String("kind", kind), zap.Error(err))
	return Result{Recipient: to, Err: err}
}

func (d *Dispatcher) newMessageID() string {
	domain := "axioniz.local"
	if at := strings.LastIndex(d.cfg.FromEmail, "@"); at >= 0 && at < len(d.cfg.FromEmail)-1 {
		domain = d.cfg.FromEmail[at+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}
