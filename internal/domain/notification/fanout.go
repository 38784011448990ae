package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"propcare/internal/metrics"
	"propcare/internal/pkg/apperr"
)

type Notifier interface {
	Notify(ctx context.Context, recipientID, message string) error
}

// Multi delivers to every sink and reports all failures together.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, recipientID, message string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, recipientID, message); err != nil {
			errs = append(errs, err)
		}
	}
	return apperr.External("notify", errors.Join(errs...))
}

// Async hands deliveries to a goroutine so callers never wait on a broker.
// Failures are logged and counted.
type Async struct {
	next    Notifier
	timeout time.Duration
	metrics metrics.Recorder
	log     *zap.Logger
	wg      sync.WaitGroup
}

func NewAsync(next Notifier, timeout time.Duration, rec metrics.Recorder, log *zap.Logger) *Async {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Async{next: next, timeout: timeout, metrics: rec, log: log}
}

func (a *Async) Notify(ctx context.Context, recipientID, message string) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		if err := a.next.Notify(ctx, recipientID, message); err != nil {
			a.metrics.NotificationFailed("async")
			a.log.Warn("notification delivery failed",
				zap.String("recipient_id", recipientID),
				zap.Error(err),
			)
		}
	}()
	return nil
}

// Wait blocks until in-flight deliveries finish.
func (a *Async) Wait() {
	a.wg.Wait()
}
