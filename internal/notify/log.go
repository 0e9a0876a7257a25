package notify

import (
	"context"

	"github.com/MrSnakeDoc/pterostats/internal/domain"
	"github.com/MrSnakeDoc/pterostats/internal/logger"
)

// LogSink writes every transition to the process log. It is always on,
// independent of notifier settings.
type LogSink struct {
	log logger.Logger
}

func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Notify(_ context.Context, t domain.StateTransition) {
	s.log.Info("server state changed",
		logger.String("server_id", t.ServerID),
		logger.String("server_name", t.ServerName),
		logger.String("kind", string(t.Kind)),
		logger.String("from", string(t.From)),
		logger.String("to", string(t.To)))
}
