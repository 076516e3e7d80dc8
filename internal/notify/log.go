package notify

import (
	"context"
	"log/slog"
)

// LogSender writes notifications to the structured log. It is used when no
// chat channel is configured so alerts still reach the console.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger.With(slog.String("component", "notify_log"))}
}

func (l *LogSender) Send(ctx context.Context, title, message string) error {
	l.logger.InfoContext(ctx, title, slog.String("message", message))
	return nil
}

func (l *LogSender) Name() string {
	return "log"
}
