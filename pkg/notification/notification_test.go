package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asadazo/asadazo/pkg/mail"
	"github.com/asadazo/asadazo/pkg/notification"
	"github.com/asadazo/asadazo/pkg/workerpool"
)

type ping struct{ id string }

func (ping) Via() []string { return []string{"mail", "webhook"} }

func (p ping) ToMail() notification.MailData {
	return notification.MailData{Subject: "Ping " + p.id, Body: "<p>" + p.id + "</p>"}
}

func (p ping) ToWebhook() notification.WebhookData {
	return notification.WebhookData{Payload: map[string]string{"id": p.id}}
}

type mailOnly struct{}

func (mailOnly) Via() []string { return []string{"mail"} }

func TestSendMailDefaultsToOperator(t *testing.T) {
	rec := &mail.Recorder{}
	n := notification.New(notification.Options{Mailer: rec, Operator: "info@asadazo.nl"})

	require.NoError(t, n.Send(context.Background(), ping{id: "1"}))

	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "info@asadazo.nl", msgs[0].To)
	assert.Equal(t, "Ping 1", msgs[0].Subject)
}

func TestSendPostsWebhook(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := notification.New(notification.Options{Mailer: &mail.Recorder{}, WebhookURL: srv.URL})
	require.NoError(t, n.Send(context.Background(), ping{id: "7"}))
	assert.Equal(t, "7", got["id"])
}

func TestSendWebhookErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := notification.New(notification.Options{Mailer: &mail.Recorder{}, WebhookURL: srv.URL})
	err := n.Send(context.Background(), ping{id: "7"})
	assert.ErrorContains(t, err, "HTTP 502")
}

func TestSendRetriesWebhook(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := notification.New(notification.Options{
		Mailer:          &mail.Recorder{},
		WebhookURL:      srv.URL,
		Client:          srv.Client(),
		WebhookAttempts: 2,
	})
	require.NoError(t, n.Send(context.Background(), ping{id: "7"}))
	assert.EqualValues(t, 2, hits.Load())
}

func TestSendReportsMailFailure(t *testing.T) {
	n := notification.New(notification.Options{Mailer: &mail.Recorder{Fail: errors.New("smtp down")}})
	err := n.Send(context.Background(), ping{id: "1"})
	assert.ErrorContains(t, err, "smtp down")
}

func TestSendRejectsMissingChannelImpl(t *testing.T) {
	n := notification.New(notification.Options{Mailer: &mail.Recorder{}})
	assert.ErrorContains(t, n.Send(context.Background(), mailOnly{}), "does not implement Mailable")
}

func TestDispatchSwallowsFailures(t *testing.T) {
	pool := workerpool.New(1)
	n := notification.New(notification.Options{
		Mailer: &mail.Recorder{Fail: errors.New("smtp down")},
		Pool:   pool,
	})

	assert.NotPanics(t, func() { n.Dispatch(context.Background(), ping{id: "1"}, "order_id", "1") })
	pool.Shutdown()
}

func TestDispatchRunsOnPool(t *testing.T) {
	rec := &mail.Recorder{}
	pool := workerpool.New(2)
	n := notification.New(notification.Options{Mailer: rec, Pool: pool, Operator: "ops@asadazo.nl"})

	n.Dispatch(context.Background(), ping{id: "a"})
	n.Dispatch(context.Background(), ping{id: "b"})
	pool.Shutdown()

	assert.Len(t, rec.Messages(), 2)
}
