package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/hotel_booking/internal/core/domain"
)

type RoomRepository interface {
	GetByID(ctx context.Context, roomID uuid.UUID) (*domain.Room, error)
	Delete(ctx context.Context, roomID uuid.UUID) error
}

// ReservedLine is a booking line joined with its parent's status and dates.
type ReservedLine struct {
	BookingID uuid.UUID
	RoomID    uuid.UUID
	Quantity  int
	Status    domain.BookingStatus
	CheckIn   time.Time
	CheckOut  time.Time
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error)
	// Update persists status changes of the whole aggregate. It fails with
	// domain.ErrConcurrentModification when booking.Version is stale and
	// bumps booking.Version on success.
	Update(ctx context.Context, booking *domain.Booking) error
	Delete(ctx context.Context, bookingID uuid.UUID) error
	ListOverlapping(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time) ([]ReservedLine, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error)
	ListAll(ctx context.Context) ([]domain.Booking, error)
	ListByRoom(ctx context.Context, roomID uuid.UUID) ([]domain.Booking, error)
	ListConfirmedEndedBy(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)
	CountActiveByRoom(ctx context.Context, roomID uuid.UUID) (int, error)
}

type CartRepository interface {
	GetSnapshot(ctx context.Context, userID uuid.UUID) (*domain.CartSnapshot, error)
	AddLine(ctx context.Context, userID uuid.UUID, line domain.CartLine) error
	// RemoveLine and UpdateQuantity fail with domain.ErrCartLineNotFound when
	// the line does not exist or belongs to another user.
	RemoveLine(ctx context.Context, userID uuid.UUID, lineID int64) error
	UpdateQuantity(ctx context.Context, userID uuid.UUID, lineID int64, quantity int) error
	// UpdateDates moves every line of the cart to the same stay. It fails
	// with domain.ErrEmptyCart when there is nothing to update.
	UpdateDates(ctx context.Context, userID uuid.UUID, checkIn, checkOut time.Time) error
	Clear(ctx context.Context, userID uuid.UUID) error
}
