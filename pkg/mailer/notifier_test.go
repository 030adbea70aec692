package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-task-manager/pkg/mailer/templates"
)

type recordingSender struct {
	to, subject, text, html string
	err                     error
}

func (s *recordingSender) Send(_ context.Context, to, subject, text, html string) error {
	s.to, s.subject, s.text, s.html = to, subject, text, html
	return s.err
}

type recordingPublisher struct {
	got any
	err error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.got = body
	return p.err
}

func TestDeliver_Template(t *testing.T) {
	s := &recordingSender{}
	job := EmailJob{To: "ann@x.com", Template: templates.Welcome, Data: templates.NewWelcomeData(nil, "Ann", "ann@x.com")}

	require.NoError(t, Deliver(context.Background(), s, job))

	assert.Equal(t, "ann@x.com", s.to)
	assert.Equal(t, "Welcome to Task Manager App!", s.subject)
	assert.Contains(t, s.text, "Hi Ann")
	assert.NotEmpty(t, s.html)
}

func TestDeliver_Raw(t *testing.T) {
	s := &recordingSender{}
	require.NoError(t, Deliver(context.Background(), s, EmailJob{To: "a@x.com", Subject: "hi", Text: "body"}))
	assert.Equal(t, "hi", s.subject)
}

func TestDeliver_Invalid(t *testing.T) {
	s := &recordingSender{}
	assert.Error(t, Deliver(context.Background(), s, EmailJob{Subject: "hi", Text: "x"}))
	assert.Error(t, Deliver(context.Background(), s, EmailJob{To: "a@x.com"}))
	assert.Error(t, Deliver(context.Background(), s, EmailJob{To: "a@x.com", Template: "missing"}))
}

func TestQueueNotifier(t *testing.T) {
	p := &recordingPublisher{}
	job := EmailJob{To: "a@x.com", Template: templates.AccountDeleted}

	require.NoError(t, QueueNotifier{Pub: p}.Notify(context.Background(), job))
	assert.Equal(t, job, p.got)

	p.err = errors.New("broker down")
	assert.Error(t, QueueNotifier{Pub: p}.Notify(context.Background(), job))
	assert.Error(t, QueueNotifier{}.Notify(context.Background(), job))
}

func TestDirectNotifier(t *testing.T) {
	s := &recordingSender{err: errors.New("mailgun 500")}
	err := DirectNotifier{Sender: s}.Notify(context.Background(), EmailJob{To: "a@x.com", Subject: "s", Text: "t"})
	assert.EqualError(t, err, "mailgun 500")

	assert.Error(t, DirectNotifier{}.Notify(context.Background(), EmailJob{To: "a@x.com"}))
	assert.NoError(t, NopNotifier{}.Notify(context.Background(), EmailJob{}))
}

func TestMailgunConfigured(t *testing.T) {
	assert.False(t, (*Mailgun)(nil).Configured())
	assert.False(t, NewMailgun("d", "", "s").Configured())
	assert.True(t, NewMailgun("d", "k", "s").Configured())
}
