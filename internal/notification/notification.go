package notification

import (
	"context"
	"log/slog"
)

const (
	// KindTransferSubmitted indicates a token transfer was broadcast.
	KindTransferSubmitted = "transfer_submitted"
)

// Message describes a notification payload.
type Message struct {
	Kind        string `json:"kind"`
	Destination string `json:"destination"`
	Body        string `json:"body"`
	Reference   string `json:"reference,omitempty"`
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger. The destination is a
// phone number, so only its tail is logged.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		slog.String("kind", message.Kind),
		slog.String("destination", tail(message.Destination)),
		slog.String("reference", message.Reference),
	)
	return nil
}

func tail(s string) string {
	if len(s) <= 4 {
		return s
	}
	return "***" + s[len(s)-4:]
}
