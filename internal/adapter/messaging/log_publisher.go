package messaging

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/srgjo27/hotel_booking/internal/core/domain"
	"github.com/srgjo27/hotel_booking/internal/core/ports"
)

// LogPublisher writes every domain event as a structured log line.
// Confirmed-but-unrecorded payments are logged at ERROR so they can be
// alerted on and reconciled by hand.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.Event) error {
	attrs := []any{
		"event", string(event.Type),
		"booking_id", event.BookingID,
		"occurred_at", event.OccurredAt,
	}
	if event.UserID != uuid.Nil {
		attrs = append(attrs, "user_id", event.UserID)
	}
	if event.OrderID != "" {
		attrs = append(attrs, "order_id", event.OrderID)
	}
	if event.AmountCents != 0 {
		attrs = append(attrs, "amount_cents", event.AmountCents)
	}
	if event.Reason != "" {
		attrs = append(attrs, "reason", event.Reason)
	}

	switch {
	case event.RequiresReconciliation():
		attrs = append(attrs, "reconciliation_required", true)
		p.logger.ErrorContext(ctx, "payment captured but booking not confirmed", attrs...)
	case event.Type == domain.EventCaptureFailed:
		p.logger.WarnContext(ctx, "payment capture failed", attrs...)
	default:
		p.logger.InfoContext(ctx, "booking event", attrs...)
	}

	return nil
}

var _ ports.EventPublisher = (*LogPublisher)(nil)
