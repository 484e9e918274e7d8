package notification

import (
	"context"
	"fmt"

	"github.com/axioniz/axioniz-api/pkg/circuitbreaker"
	"gopkg.in/gomail.v2"
)

// Sender delivers a composed message.
type Sender interface {
	Send(ctx context.Context, msg *gomail.Message) error
}

// SMTPSender delivers through an SMTP relay (STARTTLS on 587). Every send
// opens a fresh connection; repeated failures open the circuit breaker and
// later sends fail fast until the relay recovers.
type SMTPSender struct {
	dialer  *gomail.Dialer
	breaker *circuitbreaker.Breaker
}

// NewSMTPSender creates a sender for host:port authenticated as username.
func NewSMTPSender(host string, port int, username, password string) *SMTPSender {
	return &SMTPSender{
		dialer:  gomail.NewDialer(host, port, username, password),
		breaker: circuitbreaker.New(circuitbreaker.SMTPConfig()),
	}
}

// Relay returns host:port.
func (s *SMTPSender) Relay() string {
	return fmt.Sprintf("%s:%d", s.dialer.Host, s.dialer.Port)
}

func (s *SMTPSender) Send(ctx context.Context, msg *gomail.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := circuitbreaker.Execute(s.breaker, func() (struct{}, error) {
		return struct{}{}, s.dialer.DialAndSend(msg)
	})
	return err
}
