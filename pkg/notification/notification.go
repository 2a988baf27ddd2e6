// Package notification delivers operator notifications over mail and
// webhook channels.
//
// Define a Notification:
//
//	type OrderPlaced struct{ Order models.Order }
//	func (n OrderPlaced) Via() []string { return []string{"mail", "webhook"} }
//	func (n OrderPlaced) ToMail() notification.MailData {
//	    return notification.MailData{Subject: "New order", Body: "<h1>...</h1>"}
//	}
//
// Send it synchronously when the caller needs the outcome, or Dispatch it
// on the worker pool when delivery is best-effort:
//
//	err := notifier.Send(ctx, OrderPlaced{o})
//	notifier.Dispatch(ctx, OrderPlaced{o}, "order_id", o.ID)
package notification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpc "github.com/asadazo/asadazo/pkg/http"
	"github.com/asadazo/asadazo/pkg/logger"
	"github.com/asadazo/asadazo/pkg/mail"
	"github.com/asadazo/asadazo/pkg/metrics"
	"github.com/asadazo/asadazo/pkg/workerpool"
)

// ------------------- Channel data structs -------------------

// MailData carries the data needed to send an email notification.
type MailData struct {
	To      string // defaults to the operator inbox
	Subject string
	Body    string // HTML
}

// WebhookData carries a JSON payload to POST to a URL.
type WebhookData struct {
	URL     string // defaults to the configured webhook
	Payload interface{}
	Headers map[string]string
}

// ------------------- Notification interface -------------------

// Notification is the interface every notification must satisfy.
type Notification interface {
	// Via returns the channel names: "mail", "webhook".
	Via() []string
}

// Mailable can be implemented to support the mail channel.
type Mailable interface {
	ToMail() MailData
}

// Webhookable can be implemented to support the webhook channel.
type Webhookable interface {
	ToWebhook() WebhookData
}

// ------------------- Notifier -------------------

// Options configures a Notifier.
type Options struct {
	Mailer     mail.Mailer
	Pool       *workerpool.Pool // nil runs Dispatch inline
	Operator   string           // default mail recipient
	WebhookURL string           // empty disables the webhook channel unless a notification names a URL
	Client     *http.Client

	// WebhookAttempts bounds delivery tries per webhook; 5xx and transport
	// errors are retried. Default 1.
	WebhookAttempts int
}

// Notifier routes notifications to their channels.
type Notifier struct {
	mailer     mail.Mailer
	pool       *workerpool.Pool
	operator   string
	webhookURL string
	client     *http.Client

	webhookAttempts int
}

func New(opts Options) *Notifier {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Notifier{
		mailer:     opts.Mailer,
		pool:       opts.Pool,
		operator:   opts.Operator,
		webhookURL: opts.WebhookURL,
		client:     client,

		webhookAttempts: max(opts.WebhookAttempts, 1),
	}
}

// Operator returns the default mail recipient.
func (n *Notifier) Operator() string { return n.operator }

// Send delivers through every channel in Via and joins the failures.
func (n *Notifier) Send(ctx context.Context, note Notification) error {
	var errs []error
	for _, channel := range note.Via() {
		err := n.dispatch(ctx, channel, note)
		switch {
		case errors.Is(err, errSkipped):
			continue
		case err != nil:
			metrics.RecordNotification(channel, "failed")
			errs = append(errs, fmt.Errorf("%s: %w", channel, err))
		default:
			metrics.RecordNotification(channel, "ok")
		}
	}
	return errors.Join(errs...)
}

// Dispatch sends in the background. Failures are logged with attrs and
// never reach the caller. When the pool is saturated the notification is
// dropped and counted.
func (n *Notifier) Dispatch(ctx context.Context, note Notification, attrs ...any) {
	log := logger.WithCtx(ctx).With(attrs...)
	ctx = context.WithoutCancel(ctx)

	task := func() {
		if err := n.Send(ctx, note); err != nil {
			log.Error("notification failed", "notification", fmt.Sprintf("%T", note), "error", err)
		}
	}

	if n.pool == nil {
		task()
		return
	}
	if err := n.pool.Submit(task); err != nil {
		for _, channel := range note.Via() {
			metrics.RecordNotification(channel, "dropped")
		}
		log.Error("notification dropped", "notification", fmt.Sprintf("%T", note), "error", err)
	}
}

var errSkipped = errors.New("notification: channel not configured")

func (n *Notifier) dispatch(ctx context.Context, channel string, note Notification) error {
	switch channel {
	case "mail":
		m, ok := note.(Mailable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Mailable", note)
		}
		return n.sendMail(ctx, m.ToMail())

	case "webhook":
		wh, ok := note.(Webhookable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Webhookable", note)
		}
		return n.sendWebhook(ctx, wh.ToWebhook())

	default:
		return fmt.Errorf("notification: unknown channel %q", channel)
	}
}

// ------------------- Mail channel -------------------

func (n *Notifier) sendMail(ctx context.Context, d MailData) error {
	if n.mailer == nil {
		return errSkipped
	}
	to := d.To
	if to == "" {
		to = n.operator
	}
	return n.mailer.Send(ctx, to, d.Subject, d.Body)
}

// ------------------- Webhook channel -------------------

func (n *Notifier) sendWebhook(ctx context.Context, d WebhookData) error {
	url := d.URL
	if url == "" {
		url = n.webhookURL
	}
	if url == "" {
		return errSkipped
	}

	resp, err := httpc.Post(url).
		WithContext(ctx).
		Client(n.client).
		Headers(d.Headers).
		Body(d.Payload).
		Retry(n.webhookAttempts, 200*time.Millisecond).
		Send()
	if err != nil {
		return fmt.Errorf("notification: webhook send: %w", err)
	}
	if err := resp.Throw(); err != nil {
		return fmt.Errorf("notification: webhook returned %w", err)
	}
	return nil
}
