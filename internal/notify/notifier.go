// Package notify delivers state transitions to side channels that are
// independent from the stats display.
package notify

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/pterostats/internal/domain"
	"github.com/MrSnakeDoc/pterostats/internal/logger"
)

const DefaultSendTimeout = 10 * time.Second

// Sink delivers one transition. Implementations do not retry.
type Sink interface {
	Name() string
	Send(ctx context.Context, t domain.StateTransition) error
}

// Notifier fans a transition out to every configured sink. With no sinks it
// is a no-op. Delivery failures are logged and dropped.
type Notifier struct {
	sinks   []Sink
	timeout time.Duration
	log     logger.Logger
}

func New(log logger.Logger, sinks ...Sink) *Notifier {
	return &Notifier{
		sinks:   sinks,
		timeout: DefaultSendTimeout,
		log:     log,
	}
}

// Enabled reports whether at least one sink is configured.
func (n *Notifier) Enabled() bool {
	return len(n.sinks) > 0
}

// Notify sends t to each sink under its own timeout.
func (n *Notifier) Notify(ctx context.Context, t domain.StateTransition) {
	for _, sink := range n.sinks {
		sctx, cancel := context.WithTimeout(ctx, n.timeout)
		err := sink.Send(sctx, t)
		cancel()

		if err != nil {
			n.log.Warn("transition notification failed",
				logger.String("sink", sink.Name()),
				logger.String("server_id", t.ServerID),
				logger.String("kind", string(t.Kind)),
				logger.Error(err))
			continue
		}
		n.log.Debug("transition notification sent",
			logger.String("sink", sink.Name()),
			logger.String("server_id", t.ServerID),
			logger.String("kind", string(t.Kind)))
	}
}
