package infra

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"time"

	"atasrp/internal/config"

	"github.com/jordan-wright/email"
	"golang.org/x/time/rate"
)

// Attachment is an in-memory file attached to a Mail.
type Attachment struct {
	Nome        string `json:"nome"`
	ContentType string `json:"content_type"`
	Conteudo    []byte `json:"conteudo"`
}

type Mail struct {
	Para    []string     `json:"para"`
	Assunto string       `json:"assunto"`
	Corpo   string       `json:"corpo"`
	Anexos  []Attachment `json:"anexos,omitempty"`
}

// SendFunc delivers a built message. Production uses (*email.Email).Send;
// tests swap it for a recorder.
type SendFunc func(e *email.Email, addr string, auth smtp.Auth) error

func smtpSend(e *email.Email, addr string, auth smtp.Auth) error { return e.Send(addr, auth) }

// Mailer wraps SMTP configuration, a per-minute send budget and a breaker
// so a relay outage fails fast instead of timing out once per ata.
type Mailer struct {
	from    string
	addr    string
	auth    smtp.Auth
	limiter *rate.Limiter
	breaker *CircuitBreaker
	send    SendFunc
}

func NewMailer(cfg *config.Config) *Mailer {
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	from := cfg.EmailFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		from:    from,
		addr:    fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		auth:    auth,
		limiter: newLimiter(cfg.SMTPRatePerMinute),
		breaker: NewCircuitBreaker(DefaultCBConfig("smtp")),
		send:    smtpSend,
	}
}

// WithSender replaces the delivery function. Used by tests.
func (m *Mailer) WithSender(fn SendFunc) *Mailer {
	m.send = fn
	return m
}

// Breaker exposes the breaker state for health checks.
func (m *Mailer) Breaker() *CircuitBreaker { return m.breaker }

// newLimiter allows perMinute messages per minute; ≤ 0 disables throttling.
func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}

// Send waits for a slot in the rate budget, then delivers through the breaker.
func (m *Mailer) Send(ctx context.Context, msg Mail) error {
	if len(msg.Para) == 0 {
		return fmt.Errorf("mailer: nenhum destinatário")
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("mailer: rate limit: %w", err)
	}

	e := email.NewEmail()
	e.From = m.from
	e.To = msg.Para
	e.Subject = msg.Assunto
	e.Text = []byte(msg.Corpo)
	for _, a := range msg.Anexos {
		if _, err := e.Attach(bytes.NewReader(a.Conteudo), a.Nome, a.ContentType); err != nil {
			return fmt.Errorf("mailer: attach %s: %w", a.Nome, err)
		}
	}

	return m.breaker.Execute(func() error {
		if err := m.send(e, m.addr, m.auth); err != nil {
			return fmt.Errorf("mailer: send: %w", err)
		}
		return nil
	})
}
