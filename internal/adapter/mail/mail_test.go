package mail

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []Message
	err  error
	errs []error
}

func (s *recordingSender) Send(ctx context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	s.errs = append(s.errs, ctx.Err())
	return s.err
}

func TestComposeVerificationMail(t *testing.T) {
	msg := NewComposer("https").ComposeVerificationMail("a@b.co", "api.example.com", "tok.en.value")

	assert.Equal(t, "a@b.co", msg.RecipientEmail)
	assert.Equal(t, "Email verification", msg.Subject)
	assert.Equal(t,
		"<a href='https://api.example.com/api/v1/users/verifyEmail/tok.en.value'>Verify Your Email</a>",
		msg.Body,
	)
}

func TestComposeVerificationMail_DefaultScheme(t *testing.T) {
	assert.Contains(t, NewComposer("").ComposeVerificationMail("a@b.co", "localhost:8080", "t").Body, "http://localhost:8080/")
	assert.Contains(t, Composer{}.ComposeVerificationMail("a@b.co", "localhost:8080", "t").Body, "http://localhost:8080/")
}

func TestDispatcher_DeliversInBackground(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, time.Second, zaptest.NewLogger(t))

	// the request is already finished by the time the mail goes out
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Dispatch(ctx, Message{RecipientEmail: "a@b.co", Subject: "s"})
	d.Wait()

	require.Len(t, sender.msgs, 1)
	assert.Equal(t, "a@b.co", sender.msgs[0].RecipientEmail)
	require.Len(t, sender.errs, 1)
	assert.NoError(t, sender.errs[0])
}

func TestDispatcher_FailureIsSwallowed(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(sender, 0, zaptest.NewLogger(t))

	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), Message{RecipientEmail: "a@b.co"})
		d.Wait()
	})
	assert.Len(t, sender.msgs, 1)
	assert.Equal(t, DefaultSendTimeout, d.timeout)
}

func TestNopSender(t *testing.T) {
	assert.NoError(t, NewNopSender(zaptest.NewLogger(t)).Send(context.Background(), Message{RecipientEmail: "a@b.co"}))
}

func TestSMTPSender_RequiresRecipient(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 2525, From: "noreply@example.com"}, zaptest.NewLogger(t))
	assert.Error(t, s.Send(context.Background(), Message{Subject: "s"}))
}

func TestSMTPSender_HonoursContext(t *testing.T) {
	// 192.0.2.0/24 is reserved for documentation, so the dial hangs or fails
	s := NewSMTPSender(SMTPConfig{Host: "192.0.2.1", Port: 25, From: "noreply@example.com"}, zaptest.NewLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.Error(t, s.Send(ctx, Message{RecipientEmail: "a@b.co", Subject: "s", Body: "b"}))
}
