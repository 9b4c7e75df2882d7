package email

import (
	"context"
	"time"

	gomail "gopkg.in/gomail.v2"

	"github.com/orvium/orvium-api/pkg/circuitbreaker"
	"github.com/orvium/orvium-api/pkg/errors"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
	cb     *circuitbreaker.CircuitBreaker
}

// NewSMTPService creates a mail transport over SMTP. A circuit breaker
// fails sends fast while the relay is down instead of holding dispatches
// on connection timeouts.
func NewSMTPService(cfg SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "smtp",
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		}),
	}
}

func (s *smtpService) Send(ctx context.Context, to, subject, html string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	err := s.cb.Execute(func() error {
		return s.dialer.DialAndSend(msg)
	})
	if err != nil {
		return errors.TransportFailure("email", err)
	}
	return nil
}
