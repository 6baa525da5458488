package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/hotel_booking/internal/core/domain"
	"github.com/srgjo27/hotel_booking/internal/core/ports"
)

type CaptureOutcome string

const (
	CaptureConfirmed        CaptureOutcome = "CONFIRMED"
	CaptureAlreadyConfirmed CaptureOutcome = "ALREADY_CONFIRMED"
)

type PaymentOrder struct {
	BookingID   uuid.UUID `json:"booking_id"`
	OrderID     string    `json:"order_id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
}

type PaymentService struct {
	bookingRepo    ports.BookingRepository
	gateway        ports.PaymentGateway
	events         ports.EventPublisher
	currency       string
	captureTimeout time.Duration
}

func NewPaymentService(bookingRepo ports.BookingRepository, gateway ports.PaymentGateway, events ports.EventPublisher, currency string, captureTimeout time.Duration) *PaymentService {
	if currency == "" {
		currency = "USD"
	}
	if captureTimeout <= 0 {
		captureTimeout = 30 * time.Second
	}
	return &PaymentService{
		bookingRepo:    bookingRepo,
		gateway:        gateway,
		events:         events,
		currency:       currency,
		captureTimeout: captureTimeout,
	}
}

// CreatePaymentOrder opens a provider order for the full price of a Pending booking.
func (s *PaymentService) CreatePaymentOrder(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (*PaymentOrder, error) {
	booking, err := s.authorized(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status != domain.BookingPending {
		return nil, &domain.TransitionError{From: booking.Status, To: domain.BookingConfirmed, Reason: "only pending bookings can be paid"}
	}

	amount := booking.TotalPriceCents()
	orderID, err := s.gateway.CreateOrder(ctx, amount, s.currency, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("create payment order for booking %s: %w", booking.ID, err)
	}

	s.emit(ctx, domain.Event{
		Type:        domain.EventPaymentOrderCreated,
		BookingID:   booking.ID,
		UserID:      booking.UserID,
		OrderID:     orderID,
		AmountCents: amount,
		OccurredAt:  time.Now().UTC(),
	})

	return &PaymentOrder{
		BookingID:   booking.ID,
		OrderID:     orderID,
		AmountCents: amount,
		Currency:    s.currency,
	}, nil
}

// CapturePayment settles orderID with the provider in a single round trip
// and feeds the result to OnCaptureResult. A booking that is already
// Confirmed is reported as such without contacting the provider again.
func (s *PaymentService) CapturePayment(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, orderID string) (CaptureOutcome, error) {
	if orderID == "" {
		return "", fmt.Errorf("%w: missing order id", domain.ErrCaptureFailed)
	}

	booking, err := s.authorized(ctx, actor, bookingID)
	if err != nil {
		return "", err
	}

	switch booking.Status {
	case domain.BookingConfirmed:
		return CaptureAlreadyConfirmed, nil
	case domain.BookingPending:
	default:
		return "", &domain.TransitionError{From: booking.Status, To: domain.BookingConfirmed}
	}

	captureCtx, cancel := context.WithTimeout(ctx, s.captureTimeout)
	defer cancel()

	captured, err := s.gateway.CaptureOrder(captureCtx, bookingID, orderID)
	if err != nil {
		captured = false
	}

	return s.OnCaptureResult(ctx, bookingID, orderID, captured)
}

// OnCaptureResult drives the booking forward after a capture attempt. A
// failed capture leaves the booking Pending. A successful capture that
// cannot be recorded yields *domain.PaymentUnrecordedError.
func (s *PaymentService) OnCaptureResult(ctx context.Context, bookingID uuid.UUID, orderID string, captured bool) (CaptureOutcome, error) {
	now := time.Now()

	if !captured {
		s.emit(ctx, domain.Event{
			Type:       domain.EventCaptureFailed,
			BookingID:  bookingID,
			OrderID:    orderID,
			OccurredAt: now.UTC(),
		})
		return "", fmt.Errorf("%w: order %s", domain.ErrCaptureFailed, orderID)
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return "", s.unrecorded(ctx, bookingID, orderID, err)
	}

	changed, err := booking.Confirm(now)
	if err != nil {
		return "", s.unrecorded(ctx, bookingID, orderID, err)
	}
	if !changed {
		return CaptureAlreadyConfirmed, nil
	}

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		if errors.Is(err, domain.ErrConcurrentModification) && s.confirmedElsewhere(ctx, bookingID) {
			return CaptureAlreadyConfirmed, nil
		}
		return "", s.unrecorded(ctx, bookingID, orderID, err)
	}

	s.emit(ctx, domain.Event{
		Type:        domain.EventBookingConfirmed,
		BookingID:   booking.ID,
		UserID:      booking.UserID,
		OrderID:     orderID,
		AmountCents: booking.TotalPriceCents(),
		OccurredAt:  now.UTC(),
	})

	return CaptureConfirmed, nil
}

func (s *PaymentService) confirmedElsewhere(ctx context.Context, bookingID uuid.UUID) bool {
	current, err := s.bookingRepo.GetByID(ctx, bookingID)
	return err == nil && current.Status == domain.BookingConfirmed
}

func (s *PaymentService) unrecorded(ctx context.Context, bookingID uuid.UUID, orderID string, cause error) error {
	s.emit(ctx, domain.Event{
		Type:       domain.EventConfirmedPaymentUnrecorded,
		BookingID:  bookingID,
		OrderID:    orderID,
		Reason:     cause.Error(),
		OccurredAt: time.Now().UTC(),
	})
	return &domain.PaymentUnrecordedError{BookingID: bookingID, OrderID: orderID, Err: cause}
}

func (s *PaymentService) authorized(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			return nil, err
		}
		return nil, domain.Storage("get booking", err)
	}

	if !actor.CanAccess(booking) {
		return nil, domain.ErrUnauthorized
	}

	return booking, nil
}

func (s *PaymentService) emit(ctx context.Context, event domain.Event) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, event)
}
