package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventBookingCreated             EventType = "booking.created"
	EventBookingConfirmed           EventType = "booking.confirmed"
	EventBookingCancelled           EventType = "booking.cancelled"
	EventBookingCompleted           EventType = "booking.completed"
	EventBookingDeleted             EventType = "booking.deleted"
	EventPaymentOrderCreated        EventType = "payment.order_created"
	EventCaptureFailed              EventType = "payment.capture_failed"
	EventConfirmedPaymentUnrecorded EventType = "payment.confirmed_unrecorded"
)

// Event is a structured record of a decision taken by the booking core.
type Event struct {
	Type        EventType `json:"type"`
	BookingID   uuid.UUID `json:"booking_id"`
	UserID      uuid.UUID `json:"user_id,omitempty"`
	OrderID     string    `json:"order_id,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// RequiresReconciliation marks events that signal a money/state mismatch.
func (e Event) RequiresReconciliation() bool {
	return e.Type == EventConfirmedPaymentUnrecorded
}

type Actor struct {
	UserID uuid.UUID
	Admin  bool
}

func (a Actor) CanAccess(b *Booking) bool {
	return a.Admin || b.IsOwnedBy(a.UserID)
}
