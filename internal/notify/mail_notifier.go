package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gympoint/gympoint-api/pkg/mail"
	"github.com/gympoint/gympoint-api/pkg/queue"
)

const enrollmentTemplate = `<p>Hello, {{.StudentName}}!</p>
<p>Your Gympoint enrollment is confirmed.</p>
<ul>
  <li><strong>Plan:</strong> {{.PlanTitle}}</li>
  <li><strong>Total price:</strong> {{.TotalPrice}}</li>
  <li><strong>Valid until:</strong> {{.EndDate.Format "January 2, 2006"}}</li>
</ul>
<p>See you at the gym!</p>`

const answerTemplate = `<p>Hello, {{.StudentName}}!</p>
<p>Your question has been answered.</p>
<p><strong>Question:</strong> {{.Question}}</p>
<p><strong>Answer:</strong> {{.Answer}}</p>`

type sender interface {
	Send(ctx context.Context, msg mail.Message) error
}

type observer interface {
	ObserveNotification(kind string, success bool)
}

// MailNotifier renders notification payloads into emails and hands them
// to an async queue for delivery.
type MailNotifier struct {
	queue      *queue.Queue
	logger     *zap.Logger
	enrollTmpl *template.Template
	answerTmpl *template.Template
}

// NewMailNotifier wires a mail sender behind a worker queue. The queue
// must be started and stopped by the caller.
func NewMailNotifier(mailer sender, cfg queue.Config, metrics observer, logger *zap.Logger) *MailNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}

	n := &MailNotifier{
		logger:     logger,
		enrollTmpl: template.Must(template.New("enrollment").Parse(enrollmentTemplate)),
		answerTmpl: template.Must(template.New("answer").Parse(answerTemplate)),
	}

	n.queue = queue.New("notifications", func(ctx context.Context, task queue.Task) error {
		msg, ok := task.Payload.(mail.Message)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", task.Payload)
		}
		err := mailer.Send(ctx, msg)
		if metrics != nil {
			metrics.ObserveNotification(task.Kind, err == nil)
		}
		return err
	}, cfg)

	return n
}

// Start launches the delivery workers.
func (n *MailNotifier) Start(ctx context.Context) { n.queue.Start(ctx) }

// Stop drains the delivery workers.
func (n *MailNotifier) Stop() { n.queue.Stop() }

// Notify renders the payload and enqueues the email. An unknown kind or
// payload shape is an error; enqueue failures are returned so the caller
// can log them, but callers never propagate those to their own callers.
func (n *MailNotifier) Notify(ctx context.Context, kind Kind, payload interface{}) error {
	var msg mail.Message

	switch kind {
	case KindEnrollmentCreated:
		data, ok := payload.(EnrollmentCreated)
		if !ok {
			return fmt.Errorf("enrollment_created: unexpected payload %T", payload)
		}
		body, err := n.render(n.enrollTmpl, data)
		if err != nil {
			return err
		}
		msg = mail.Message{
			To:      fmt.Sprintf("%s <%s>", data.StudentName, data.StudentEmail),
			Subject: "Gympoint enrollment",
			HTML:    body,
		}
	case KindHelpOrderAnswered:
		data, ok := payload.(HelpOrderAnswered)
		if !ok {
			return fmt.Errorf("help_order_answered: unexpected payload %T", payload)
		}
		body, err := n.render(n.answerTmpl, data)
		if err != nil {
			return err
		}
		msg = mail.Message{
			To:      fmt.Sprintf("%s <%s>", data.StudentName, data.StudentEmail),
			Subject: "Gympoint help order answered",
			HTML:    body,
		}
	default:
		return fmt.Errorf("unknown notification kind %q", kind)
	}

	return n.queue.Enqueue(queue.Task{
		ID:      uuid.NewString(),
		Kind:    string(kind),
		Payload: msg,
	})
}

func (n *MailNotifier) render(tmpl *template.Template, data interface{}) (string, error) {
	buf := &bytes.Buffer{}
	if err := tmpl.Execute(buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
