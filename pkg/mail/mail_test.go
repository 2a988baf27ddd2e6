package mail_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asadazo/asadazo/pkg/mail"
)

func TestSendWithoutCredentialsFails(t *testing.T) {
	m := mail.NewSMTPMailerWith(mail.SMTP{Host: "localhost", Port: "2525"})
	err := m.Send(context.Background(), "info@asadazo.nl", "Hi", "<p>x</p>")
	assert.ErrorContains(t, err, "MAIL_USERNAME")
}

func TestSendHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := mail.NewSMTPMailerWith(mail.SMTP{Host: "localhost", Port: "2525", Username: "u"})
	assert.ErrorIs(t, m.Send(ctx, "a@b.nl", "s", "b"), context.Canceled)
}

func TestRecorder(t *testing.T) {
	var r mail.Recorder
	require.NoError(t, r.Send(context.Background(), "info@asadazo.nl", "Subject", "<p>body</p>"))

	msgs := r.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Subject", msgs[0].Subject)

	r.Fail = errors.New("smtp down")
	assert.Error(t, r.Send(context.Background(), "x@y.nl", "s", "b"))
	assert.Len(t, r.Messages(), 1)

	r.Reset()
	assert.Empty(t, r.Messages())
}
