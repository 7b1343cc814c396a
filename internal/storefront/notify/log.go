package notify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// LogDispatcher writes messages to the log instead of delivering them. It is
// meant for development, where no mail relay is available.
type LogDispatcher struct {
	Logger *slog.Logger
}

func (d LogDispatcher) Dispatch(ctx context.Context, address, message string) error {
	if strings.TrimSpace(address) == "" {
		return ErrNoRecipient
	}

	logger := d.Logger
	if logger == nil {
		logger = slogx.FromContext(ctx)
	}
	logger.InfoContext(ctx, "notification_logged",
		slog.String("to", address),
		slog.String("subject", Subject),
		slog.String("body", message),
	)
	return nil
}
