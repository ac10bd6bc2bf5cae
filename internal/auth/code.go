package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/shoplight/shoplight/internal/notification"
)

// Six-digit code range.
const (
	codeMin = 123456
	codeMax = 987654
)

// CodeGenerator draws one-time verification codes and hands them to the
// notification channel. Delivery is fire-and-forget: a failed send is
// logged and the protocol proceeds.
type CodeGenerator struct {
	ttl      time.Duration
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewCodeGenerator builds a generator producing codes valid for ttl.
func NewCodeGenerator(ttl time.Duration, notifier notification.Notifier, logger *slog.Logger) *CodeGenerator {
	return &CodeGenerator{ttl: ttl, notifier: notifier, logger: logger}
}

// Generate draws a uniform six-digit code, dispatches it to the mobile
// number and returns the code with its absolute expiry.
func (g *CodeGenerator) Generate(ctx context.Context, mobileNumber string) (int, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin))
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("draw verification code: %w", err)
	}
	code := codeMin + int(n.Int64())
	expiresAt := time.Now().Add(g.ttl)

	if g.notifier != nil {
		if err := g.notifier.Send(ctx, mobileNumber, code); err != nil && g.logger != nil {
			g.logger.Warn("verification code delivery failed",
				slog.String("mobile_number", mobileNumber),
				slog.Any("error", err),
			)
		}
	}

	return code, expiresAt, nil
}
