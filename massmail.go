// Package massmail sends a templated message to every recipient of a CSV
// address list over authenticated SMTP, after an interactive confirmation.
package massmail

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/jtuomist/massmail/mailer"
	"github.com/jtuomist/massmail/recipients"
	"github.com/jtuomist/massmail/render"
	"github.com/jtuomist/massmail/types"
)

// ErrCancelled is returned by Run when the operator declines the
// confirmation prompt. Nothing has been sent at that point.
var ErrCancelled = errors.New("cancelled by operator")

// Sender delivers rendered mails. mailer.Mailer is the real implementation;
// tests inject fakes.
type Sender interface {
	SendAll(ctx context.Context, mails []types.RenderedMail) (*mailer.Report, error)
}

type Pipeline struct {
	msg       *types.Message
	logger    *slog.Logger
	confirmer Confirmer
	sender    Sender
}

type OptionFunc func(*Pipeline) (*Pipeline, error)

func WithLogger(logger *slog.Logger) OptionFunc {
	return func(p *Pipeline) (*Pipeline, error) {
		if logger == nil {
			logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
		p.logger = logger
		return p, nil
	}
}

func WithConfirmer(confirmer Confirmer) OptionFunc {
	return func(p *Pipeline) (*Pipeline, error) {
		p.confirmer = confirmer
		return p, nil
	}
}

func WithSender(sender Sender) OptionFunc {
	return func(p *Pipeline) (*Pipeline, error) {
		p.sender = sender
		return p, nil
	}
}

// NewPipeline assembles a sending run for one message definition. Unless
// overridden, mails go out through a mailer built from cfg and the prompt is
// read from the terminal.
func NewPipeline(cfg *types.SMTPConfig, msg *types.Message, options ...OptionFunc) (*Pipeline, error) {
	p := &Pipeline{
		msg:    msg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		var err error
		p, err = option(p)
		if err != nil {
			return nil, err
		}
	}
	if p.sender == nil {
		m, err := mailer.New(cfg, msg, mailer.WithLogger(p.logger))
		if err != nil {
			return nil, err
		}
		p.sender = m
	}
	if p.confirmer == nil {
		p.confirmer = StdioConfirmer()
	}
	return p, nil
}

// Run executes the whole pipeline against the recipient CSV at path: load,
// filter, render, confirm, send. Every recipient that reaches the sender has
// passed the address shape check and all filter rules. Rendering happens
// before the prompt, so a TemplateError aborts with nothing sent.
func (p *Pipeline) Run(ctx context.Context, path string) (*mailer.Report, error) {
	recs, err := recipients.Load(path)
	if err != nil {
		return nil, err
	}
	surviving := recipients.Filter(recs, p.msg.Filters, p.logger)
	p.logger.Info("recipients loaded",
		slog.Int("total", len(recs)), slog.Int("surviving", len(surviving)))

	renderer, err := render.New(p.msg)
	if err != nil {
		return nil, err
	}
	mails, err := renderer.RenderAll(surviving)
	if err != nil {
		return nil, err
	}

	preview := Preview{
		Subject: p.msg.Subject,
		From:    p.msg.From,
		Count:   len(mails),
	}
	if len(mails) > 0 {
		preview.Subject = mails[0].Subject
		preview.Sample = mails[0]
	}
	ok, err := p.confirmer(preview)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCancelled
	}
	if len(mails) == 0 {
		p.logger.Info("no recipients to send to")
		return &mailer.Report{}, nil
	}

	report, err := p.sender.SendAll(ctx, mails)
	if err != nil {
		return report, err
	}
	p.logger.Info("run finished",
		slog.Int("sent", report.Sent), slog.Int("failed", len(report.Failures)))
	return report, nil
}
