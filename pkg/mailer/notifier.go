package mailer

import (
	"context"
	"errors"

	"github.com/oksasatya/go-task-manager/pkg/mailer/templates"
)

// Notifier hands an email job to a delivery mechanism.
type Notifier interface {
	Notify(ctx context.Context, job EmailJob) error
}

// Publisher is satisfied by helpers.RabbitQueue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueNotifier enqueues jobs for cmd/email_worker.
type QueueNotifier struct {
	Pub Publisher
}

func (n QueueNotifier) Notify(ctx context.Context, job EmailJob) error {
	if n.Pub == nil {
		return errors.New("email queue not configured")
	}
	return n.Pub.PublishJSON(ctx, job)
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// DirectNotifier renders and sends in-process.
type DirectNotifier struct {
	Sender Sender
}

func (n DirectNotifier) Notify(ctx context.Context, job EmailJob) error {
	if n.Sender == nil {
		return errors.New("email sender not configured")
	}
	return Deliver(ctx, n.Sender, job)
}

// NopNotifier drops every job; used when sending is disabled.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, EmailJob) error { return nil }

// Deliver renders job (when it names a template) and sends it through s.
func Deliver(ctx context.Context, s Sender, job EmailJob) error {
	if job.To == "" {
		return errors.New("email job without recipient")
	}
	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		var err error
		subject, text, html, err = templates.Render(job.Template, job.Data)
		if err != nil {
			return err
		}
	}
	if subject == "" || (text == "" && html == "") {
		return errors.New("email job without content")
	}
	return s.Send(ctx, job.To, subject, text, html)
}
