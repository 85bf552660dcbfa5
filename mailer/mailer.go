// Package mailer submits rendered mails to the configured SMTP server.
//
// All connections are dialed and authenticated up front; a failure there is
// a ConnectionError and nothing is sent. Once sending has begun, a rejected
// recipient only produces a recorded failure and the run continues.
package mailer

import (
	"context"
	"io"
	"log/slog"
	"sync"

	mail "github.com/wneessen/go-mail"
	"golang.org/x/sync/errgroup"

	"github.com/jtuomist/massmail/types"
)

type Mailer struct {
	cfg       types.SMTPConfig
	from      string
	replyTo   string
	logger    *slog.Logger
	tlsPolicy mail.TLSPolicy
	workers   int
}

type OptionFunc func(*Mailer) (*Mailer, error)

func WithLogger(logger *slog.Logger) OptionFunc {
	return func(m *Mailer) (*Mailer, error) {
		if logger == nil {
			logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
		m.logger = logger
		return m, nil
	}
}

// WithTLSPolicy overrides the mandatory-STARTTLS default. Tests use it to
// talk to a plaintext local server.
func WithTLSPolicy(policy mail.TLSPolicy) OptionFunc {
	return func(m *Mailer) (*Mailer, error) {
		m.tlsPolicy = policy
		return m, nil
	}
}

func WithWorkers(n int) OptionFunc {
	return func(m *Mailer) (*Mailer, error) {
		if n < 1 {
			n = 1
		}
		m.workers = n
		return m, nil
	}
}

func New(cfg *types.SMTPConfig, msg *types.Message, options ...OptionFunc) (*Mailer, error) {
	m := &Mailer{
		cfg:       *cfg,
		from:      msg.From,
		replyTo:   msg.ReplyTo,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		tlsPolicy: mail.TLSMandatory,
		workers:   cfg.Workers(),
	}
	for _, option := range options {
		var err error
		m, err = option(m)
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Failure records one recipient whose delivery was refused.
type Failure struct {
	Recipient string
	Err       error
}

// Report summarizes one sending run.
type Report struct {
	Sent     int
	Failures []Failure
}

func (m *Mailer) newClient() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPortPolicy(m.tlsPolicy),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Credential()),
		)
	}
	return mail.NewClient(m.cfg.Server, opts...)
}

func (m *Mailer) compose(rm types.RenderedMail) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, err
	}
	name := rm.Recipient.Firstname() + " " + rm.Recipient.Lastname()
	if err := msg.AddToFormat(name, rm.Recipient.Email()); err != nil {
		return nil, err
	}
	if m.replyTo != "" {
		if err := msg.ReplyTo(m.replyTo); err != nil {
			return nil, err
		}
	}
	msg.Subject(rm.Subject)
	msg.SetBodyString(mail.TypeTextPlain, rm.Body)
	return msg, nil
}

// SendAll delivers every mail, one recipient at a time per worker. The
// returned error is a ConnectionError and means nothing was sent; individual
// refusals end up in the Report instead.
func (m *Mailer) SendAll(ctx context.Context, mails []types.RenderedMail) (*Report, error) {
	clients := make([]*mail.Client, m.workers)
	for i := range clients {
		c, err := m.newClient()
		if err == nil {
			err = c.DialWithContext(ctx)
		}
		if err != nil {
			for _, dialed := range clients[:i] {
				dialed.Close()
			}
			return nil, &types.ConnectionError{Host: m.cfg.Server, Err: err}
		}
		clients[i] = c
	}

	var (
		mu     sync.Mutex
		report Report
	)
	queue := make(chan types.RenderedMail)
	g, ctx := errgroup.WithContext(ctx)
	for i, c := range clients {
		i, c := i, c
		g.Go(func() error {
			defer c.Close()
			logger := m.logger.With(slog.Int("worker", i+1))
			for rm := range queue {
				err := m.send(c, rm)
				mu.Lock()
				if err != nil {
					report.Failures = append(report.Failures, Failure{Recipient: rm.Recipient.Email(), Err: err})
				} else {
					report.Sent++
				}
				mu.Unlock()
				if err != nil {
					logger.Error("delivery failed", slog.String("recipient", rm.Recipient.Email()), slog.Any("error", err))
				} else {
					logger.Info("sent", slog.String("recipient", rm.Recipient.Email()))
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(queue)
		for _, rm := range mails {
			select {
			case queue <- rm:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return &report, err
	}
	return &report, nil
}

func (m *Mailer) send(c *mail.Client, rm types.RenderedMail) error {
	msg, err := m.compose(rm)
	if err != nil {
		return &types.DeliveryError{Recipient: rm.Recipient.Email(), Err: err}
	}
	if err := c.Send(msg); err != nil {
		return &types.DeliveryError{Recipient: rm.Recipient.Email(), Err: err}
	}
	return nil
}
