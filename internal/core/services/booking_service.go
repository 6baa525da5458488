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

const completionBatchSize = 100

// SystemActor drives scheduled transitions such as stay completion.
var SystemActor = domain.Actor{Admin: true}

type BookingService struct {
	bookingRepo  ports.BookingRepository
	availability *AvailabilityService
	events       ports.EventPublisher
}

func NewBookingService(roomRepo ports.RoomRepository, bookingRepo ports.BookingRepository, events ports.EventPublisher) *BookingService {
	return &BookingService{
		bookingRepo:  bookingRepo,
		availability: NewAvailabilityService(roomRepo, bookingRepo),
		events:       events,
	}
}

// CreateBookingFromCart validates the whole cart before writing anything and
// stores a Pending booking with each room's current price captured per line.
// Clearing the cart is left to the caller.
func (s *BookingService) CreateBookingFromCart(ctx context.Context, userID uuid.UUID, cart *domain.CartSnapshot) (uuid.UUID, error) {
	if cart.IsEmpty() {
		return uuid.Nil, domain.ErrEmptyCart
	}

	checkIn, checkOut, err := cart.StayDates()
	if err != nil {
		return uuid.Nil, err
	}

	if !checkIn.Before(checkOut) {
		return uuid.Nil, domain.ErrInvalidDateRange
	}

	requested := make(map[uuid.UUID]int, len(cart.Lines))
	items := make([]domain.BookingItem, 0, len(cart.Lines))

	for _, line := range cart.Lines {
		if line.Quantity <= 0 {
			return uuid.Nil, &domain.RoomUnavailableError{RoomID: line.RoomID, Quantity: line.Quantity}
		}

		// Lines for the same room draw on the same units.
		requested[line.RoomID] += line.Quantity

		room, ok, err := s.availability.check(ctx, line.RoomID, checkIn, checkOut, requested[line.RoomID])
		if err != nil {
			return uuid.Nil, fmt.Errorf("check availability of room %s: %w", line.RoomID, err)
		}

		if !ok {
			return uuid.Nil, &domain.RoomUnavailableError{RoomID: line.RoomID, Quantity: line.Quantity}
		}

		items = append(items, domain.BookingItem{
			RoomID:             line.RoomID,
			Quantity:           line.Quantity,
			PricePerNightCents: room.PriceCents,
		})
	}

	now := time.Now()
	booking, err := domain.NewBooking(userID, checkIn, checkOut, items, now)
	if err != nil {
		return uuid.Nil, err
	}

	if err := s.bookingRepo.CreateBooking(ctx, booking); err != nil {
		return uuid.Nil, domain.Storage("create booking", err)
	}

	s.emit(ctx, domain.Event{
		Type:        domain.EventBookingCreated,
		BookingID:   booking.ID,
		UserID:      booking.UserID,
		AmountCents: booking.TotalPriceCents(),
		OccurredAt:  now.UTC(),
	})

	return booking.ID, nil
}

func (s *BookingService) GetBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (*domain.Booking, error) {
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !actor.CanAccess(booking) {
		return nil, domain.ErrUnauthorized
	}

	return booking, nil
}

func (s *BookingService) ListUserBookings(ctx context.Context, userID uuid.UUID, filter domain.BookingFilter) ([]domain.Booking, error) {
	bookings, err := s.bookingRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.Storage("list user bookings", err)
	}

	now := time.Now()
	matched := make([]domain.Booking, 0, len(bookings))
	for i := range bookings {
		if filter.Match(&bookings[i], now) {
			matched = append(matched, bookings[i])
		}
	}

	return matched, nil
}

func (s *BookingService) ListAllBookings(ctx context.Context, actor domain.Actor) ([]domain.Booking, error) {
	if !actor.Admin {
		return nil, domain.ErrUnauthorized
	}

	bookings, err := s.bookingRepo.ListAll(ctx)
	if err != nil {
		return nil, domain.Storage("list bookings", err)
	}

	return bookings, nil
}

func (s *BookingService) ListBookingsByRoom(ctx context.Context, actor domain.Actor, roomID uuid.UUID) ([]domain.Booking, error) {
	if !actor.Admin {
		return nil, domain.ErrUnauthorized
	}

	bookings, err := s.bookingRepo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, domain.Storage("list room bookings", err)
	}

	return bookings, nil
}

// CancelBooking releases the booking's units for future availability checks.
func (s *BookingService) CancelBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) error {
	booking, err := s.GetBooking(ctx, actor, bookingID)
	if err != nil {
		return err
	}

	now := time.Now()
	if err := booking.Cancel(now); err != nil {
		return err
	}

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return storageOrConflict("cancel booking", err)
	}

	s.emit(ctx, domain.Event{
		Type:       domain.EventBookingCancelled,
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		OccurredAt: now.UTC(),
	})

	return nil
}

// DeleteBooking hard-removes a Pending booking together with its lines.
func (s *BookingService) DeleteBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) error {
	booking, err := s.GetBooking(ctx, actor, bookingID)
	if err != nil {
		return err
	}

	if err := booking.CanDelete(); err != nil {
		return err
	}

	if err := s.bookingRepo.Delete(ctx, booking.ID); err != nil {
		return storageOrConflict("delete booking", err)
	}

	s.emit(ctx, domain.Event{
		Type:       domain.EventBookingDeleted,
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		OccurredAt: time.Now().UTC(),
	})

	return nil
}

// CompleteBooking moves a Confirmed booking whose stay has ended to
// Completed. Repeating it on a Completed booking is a no-op.
func (s *BookingService) CompleteBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, now time.Time) error {
	if !actor.Admin {
		return domain.ErrUnauthorized
	}

	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return err
	}

	changed, err := booking.Complete(now)
	if err != nil || !changed {
		return err
	}

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return storageOrConflict("complete booking", err)
	}

	s.emit(ctx, domain.Event{
		Type:       domain.EventBookingCompleted,
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		OccurredAt: now.UTC(),
	})

	return nil
}

// CompleteElapsedBookings completes every Confirmed booking whose check-out
// is at or before now. It keeps going past individual failures and reports
// them joined.
func (s *BookingService) CompleteElapsedBookings(ctx context.Context, now time.Time) (int, error) {
	// Check-out dates are UTC calendar days, so the cutoff is too.
	cutoff := domain.NormalizeDate(now.UTC())

	ids, err := s.bookingRepo.ListConfirmedEndedBy(ctx, cutoff, completionBatchSize)
	if err != nil {
		return 0, domain.Storage("list elapsed bookings", err)
	}

	completed := 0
	var errs []error
	for _, id := range ids {
		if err := s.CompleteBooking(ctx, SystemActor, id, now); err != nil {
			errs = append(errs, fmt.Errorf("complete booking %s: %w", id, err))
			continue
		}
		completed++
	}

	return completed, errors.Join(errs...)
}

func (s *BookingService) load(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			return nil, err
		}
		return nil, domain.Storage("get booking", err)
	}

	return booking, nil
}

func (s *BookingService) emit(ctx context.Context, event domain.Event) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, event)
}

func storageOrConflict(op string, err error) error {
	if errors.Is(err, domain.ErrConcurrentModification) || errors.Is(err, domain.ErrBookingNotFound) {
		return err
	}
	return domain.Storage(op, err)
}
