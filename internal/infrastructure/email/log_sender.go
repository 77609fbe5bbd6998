package email

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender replaces SMTP in development: it writes the mail to the log
// instead of delivering it. Only the dev config selects it, so the code is
// printed there and nowhere else.
type LogSender struct {
	lg zerolog.Logger
}

func NewLogSender(lg zerolog.Logger) *LogSender {
	return &LogSender{lg: lg.With().Str("component", "log_sender").Logger()}
}

func (s *LogSender) SendVerificationCode(ctx context.Context, to, name, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.lg.Info().
		Str("to", to).
		Str("name", name).
		Str("code", code).
		Msg("DEV send verification code")
	return nil
}
