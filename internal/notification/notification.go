package notification

import (
	"context"
	"fmt"
	"log/slog"
)

// Notifier delivers one-time verification codes to a mobile number. The
// core treats delivery as fire-and-forget: a Send error is logged by the
// caller, never surfaced as a protocol failure.
type Notifier interface {
	Send(ctx context.Context, mobileNumber string, code int) error
}

// LoggerNotifier stands in for a real SMS gateway and writes the code to
// the structured logger instead.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the code to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, mobileNumber string, code int) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("sms verification code",
		slog.String("mobile_number", mobileNumber),
		slog.String("code", fmt.Sprintf("%06d", code)),
	)
	return nil
}
