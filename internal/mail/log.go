package mail

import (
	"context"
	"log/slog"
)

// LogSender prints codes to the log instead of sending them. Development
// only; config refuses it in production.
type LogSender struct {
	Logger *slog.Logger
}

func (l LogSender) SendVerificationCode(ctx context.Context, to, code string) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.WarnContext(ctx, "verification code (log mailer)", "to", to, "code", code)
	return nil
}
