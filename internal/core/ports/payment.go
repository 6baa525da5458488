package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/srgjo27/hotel_booking/internal/core/domain"
)

type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountCents int64, currency string, bookingID uuid.UUID) (string, error)
	// CaptureOrder reports whether the provider settled the order opened for
	// bookingID. An error means the outcome is unknown, or the order belongs
	// to another booking, and is treated as not captured.
	CaptureOrder(ctx context.Context, bookingID uuid.UUID, orderID string) (bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}
