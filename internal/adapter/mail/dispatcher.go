package mail

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultSendTimeout bounds a single background delivery.
const DefaultSendTimeout = 30 * time.Second

// Dispatcher sends messages in the background so request handlers never wait on SMTP.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	log     *zap.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. A non-positive timeout falls back to DefaultSendTimeout.
func NewDispatcher(sender Sender, timeout time.Duration, log *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return &Dispatcher{sender: sender, timeout: timeout, log: log}
}

// Dispatch sends msg on a new goroutine. The send outlives ctx's cancellation
// but keeps its values, and failures are only logged.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()

		if err := d.sender.Send(sendCtx, msg); err != nil {
			d.log.Error("failed to send mail",
				zap.String("to", msg.RecipientEmail),
				zap.String("subject", msg.Subject),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until every dispatched message has been handled.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
