package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/hotel_booking/internal/core/domain"
	"github.com/srgjo27/hotel_booking/internal/core/ports"
)

type AvailabilityService struct {
	roomRepo    ports.RoomRepository
	bookingRepo ports.BookingRepository
}

func NewAvailabilityService(roomRepo ports.RoomRepository, bookingRepo ports.BookingRepository) *AvailabilityService {
	return &AvailabilityService{
		roomRepo:    roomRepo,
		bookingRepo: bookingRepo,
	}
}

// IsAvailable reports whether quantity units of the room are free for the
// stay. Invalid input and unknown rooms yield false without an error; only
// storage failures are returned.
func (s *AvailabilityService) IsAvailable(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, quantity int) (bool, error) {
	_, ok, err := s.check(ctx, roomID, checkIn, checkOut, quantity)
	return ok, err
}

// FreeUnits returns how many units of the room are unreserved for the whole stay.
func (s *AvailabilityService) FreeUnits(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time) (int, error) {
	checkIn, checkOut = domain.NormalizeDate(checkIn), domain.NormalizeDate(checkOut)
	if !checkIn.Before(checkOut) {
		return 0, domain.ErrInvalidDateRange
	}

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return 0, err
		}
		return 0, domain.Storage("get room", err)
	}

	booked, err := s.bookedUnits(ctx, roomID, checkIn, checkOut)
	if err != nil {
		return 0, err
	}

	free := room.TotalUnits - booked
	if free < 0 {
		free = 0
	}
	return free, nil
}

func (s *AvailabilityService) check(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, quantity int) (*domain.Room, bool, error) {
	checkIn, checkOut = domain.NormalizeDate(checkIn), domain.NormalizeDate(checkOut)
	if !checkIn.Before(checkOut) || quantity <= 0 {
		return nil, false, nil
	}

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return nil, false, nil
		}
		return nil, false, domain.Storage("get room", err)
	}

	if !room.HasCapacity(quantity) {
		return room, false, nil
	}

	booked, err := s.bookedUnits(ctx, roomID, checkIn, checkOut)
	if err != nil {
		return room, false, err
	}

	return room, room.TotalUnits-booked >= quantity, nil
}

func (s *AvailabilityService) bookedUnits(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time) (int, error) {
	lines, err := s.bookingRepo.ListOverlapping(ctx, roomID, checkIn, checkOut)
	if err != nil {
		return 0, domain.Storage("list overlapping bookings", err)
	}

	booked := 0
	for _, line := range lines {
		// Completed stays keep counting; only a cancellation frees units.
		if !line.Status.HoldsCapacity() {
			continue
		}
		if line.CheckIn.Before(checkOut) && line.CheckOut.After(checkIn) {
			booked += line.Quantity
		}
	}
	return booked, nil
}
