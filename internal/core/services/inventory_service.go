package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/srgjo27/hotel_booking/internal/core/domain"
	"github.com/srgjo27/hotel_booking/internal/core/ports"
)

type InventoryService struct {
	roomRepo    ports.RoomRepository
	bookingRepo ports.BookingRepository
}

func NewInventoryService(roomRepo ports.RoomRepository, bookingRepo ports.BookingRepository) *InventoryService {
	return &InventoryService{
		roomRepo:    roomRepo,
		bookingRepo: bookingRepo,
	}
}

// DeleteRoom removes a room only when no Pending or Confirmed booking still
// references it. Terminal bookings keep the room id for history.
func (s *InventoryService) DeleteRoom(ctx context.Context, actor domain.Actor, roomID uuid.UUID) error {
	if !actor.Admin {
		return domain.ErrUnauthorized
	}

	active, err := s.bookingRepo.CountActiveByRoom(ctx, roomID)
	if err != nil {
		return domain.Storage("count active bookings", err)
	}

	if active > 0 {
		return domain.ErrRoomInUse
	}

	if err := s.roomRepo.Delete(ctx, roomID); err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return err
		}
		return domain.Storage("delete room", err)
	}

	return nil
}
