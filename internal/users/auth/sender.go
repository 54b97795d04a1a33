// Copyright (c) 2026 Critica. All rights reserved.

package auth

import (
	"context"
	"log/slog"
)

// # Code Delivery

// Sender delivers a confirmation code to a user out-of-band.
type Sender interface {
	Send(context context.Context, email, code string) error
}

// LogSender writes confirmation codes to the structured log instead of an
// outbound mail channel. It stands in for an SMTP integration; operators read
// codes from the log stream in every current environment.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender constructs a [LogSender].
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the code against the destination address.
func (sender *LogSender) Send(context context.Context, email, code string) error {
	sender.logger.Info("confirmation_code_delivery",
		slog.String("email", email),
		slog.String("code", code),
	)
	return nil
}
