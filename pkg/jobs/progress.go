package jobs

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Notifier receives running message counts while a job collects.
type Notifier interface {
	Notify(ctx context.Context, count int) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, count int) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, count int) error {
	return f(ctx, count)
}

// progressPump decouples the collector from a slow notifier. It holds at most
// one pending count, newer counts replace older ones, and nothing is sent
// after stop returns.
type progressPump struct {
	updates chan int
	done    chan struct{}
	cancel  context.CancelFunc
}

func startProgress(ctx context.Context, notifier Notifier, log *logrus.Entry) *progressPump {
	ctx, cancel := context.WithCancel(ctx)
	p := &progressPump{
		updates: make(chan int, 1),
		done:    make(chan struct{}),
		cancel:  cancel,
	}

	go func() {
		defer close(p.done)
		for count := range p.updates {
			if ctx.Err() != nil {
				continue
			}
			if err := notifier.Notify(ctx, count); err != nil {
				log.WithError(err).WithField("count", count).Warn("Progress notification failed")
			}
		}
	}()

	return p
}

// report never blocks. It must be called from a single goroutine.
func (p *progressPump) report(count int) {
	for {
		select {
		case p.updates <- count:
			return
		default:
		}
		select {
		case <-p.updates:
		default:
		}
	}
}

func (p *progressPump) stop() {
	p.cancel()
	close(p.updates)
	<-p.done
}
