package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/hotel_booking/internal/core/domain"
	"github.com/srgjo27/hotel_booking/internal/core/ports"
)

type CartService struct {
	cartRepo ports.CartRepository
	roomRepo ports.RoomRepository
}

func NewCartService(cartRepo ports.CartRepository, roomRepo ports.RoomRepository) *CartService {
	return &CartService{
		cartRepo: cartRepo,
		roomRepo: roomRepo,
	}
}

// AddLine puts a room into the user's cart. No units are held: availability
// is only decided at checkout.
func (s *CartService) AddLine(ctx context.Context, userID uuid.UUID, line domain.CartLine) error {
	if line.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	if _, err := s.roomRepo.GetByID(ctx, line.RoomID); err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return err
		}
		return domain.Storage("get room", err)
	}

	line.CheckIn = domain.NormalizeDate(line.CheckIn)
	line.CheckOut = domain.NormalizeDate(line.CheckOut)

	if err := s.cartRepo.AddLine(ctx, userID, line); err != nil {
		return domain.Storage("add cart line", err)
	}

	return nil
}

func (s *CartService) Snapshot(ctx context.Context, userID uuid.UUID) (*domain.CartSnapshot, error) {
	cart, err := s.cartRepo.GetSnapshot(ctx, userID)
	if err != nil {
		return nil, domain.Storage("get cart", err)
	}

	return cart, nil
}

func (s *CartService) RemoveLine(ctx context.Context, userID uuid.UUID, lineID int64) error {
	if err := s.cartRepo.RemoveLine(ctx, userID, lineID); err != nil {
		return cartError("remove cart line", err)
	}

	return nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID uuid.UUID, lineID int64, quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	if err := s.cartRepo.UpdateQuantity(ctx, userID, lineID, quantity); err != nil {
		return cartError("update cart line", err)
	}

	return nil
}

// UpdateAllDates moves every line to one stay, which is how a cart with
// mismatched dates becomes checkout-ready again.
func (s *CartService) UpdateAllDates(ctx context.Context, userID uuid.UUID, checkIn, checkOut time.Time) error {
	checkIn, checkOut = domain.NormalizeDate(checkIn), domain.NormalizeDate(checkOut)
	if !checkIn.Before(checkOut) {
		return domain.ErrInvalidDateRange
	}

	if err := s.cartRepo.UpdateDates(ctx, userID, checkIn, checkOut); err != nil {
		return cartError("update cart dates", err)
	}

	return nil
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		return domain.Storage("clear cart", err)
	}

	return nil
}

func cartError(op string, err error) error {
	if errors.Is(err, domain.ErrCartLineNotFound) || errors.Is(err, domain.ErrEmptyCart) {
		return err
	}
	return domain.Storage(op, err)
}
