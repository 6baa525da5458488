package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/hotel_booking/internal/core/domain"
	"github.com/srgjo27/hotel_booking/internal/core/ports"
)

// memoryStore is an in-process RoomRepository and BookingRepository used by
// scenario tests that need real overlap bookkeeping.
type memoryStore struct {
	mu       sync.Mutex
	rooms    map[uuid.UUID]domain.Room
	bookings map[uuid.UUID]domain.Booking
}

func newMemoryStore(rooms ...domain.Room) *memoryStore {
	s := &memoryStore{
		rooms:    make(map[uuid.UUID]domain.Room),
		bookings: make(map[uuid.UUID]domain.Booking),
	}
	for _, r := range rooms {
		s.rooms[r.ID] = r
	}
	return s
}

func (s *memoryStore) GetByIDRoom(roomID uuid.UUID) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return &r, nil
}

func (s *memoryStore) put(b domain.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = b
}

func (s *memoryStore) CreateBooking(_ context.Context, booking *domain.Booking) error {
	s.put(clone(*booking))
	return nil
}

func (s *memoryStore) GetByID(_ context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	c := clone(b)
	return &c, nil
}

func (s *memoryStore) Update(_ context.Context, booking *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.bookings[booking.ID]
	if !ok {
		return domain.ErrBookingNotFound
	}
	if current.Version != booking.Version {
		return domain.ErrConcurrentModification
	}
	current.Status = booking.Status
	current.UpdatedAt = booking.UpdatedAt
	current.Version++
	booking.Version = current.Version
	s.bookings[booking.ID] = current
	return nil
}

func (s *memoryStore) Delete(_ context.Context, bookingID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok || b.Status != domain.BookingPending {
		return domain.ErrBookingNotFound
	}
	delete(s.bookings, bookingID)
	return nil
}

func (s *memoryStore) ListOverlapping(_ context.Context, roomID uuid.UUID, checkIn, checkOut time.Time) ([]ports.ReservedLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var lines []ports.ReservedLine
	for _, b := range s.bookings {
		if b.Status == domain.BookingCancelled || !b.Overlaps(checkIn, checkOut) {
			continue
		}
		for _, item := range b.Items {
			if item.RoomID == roomID {
				lines = append(lines, ports.ReservedLine{
					BookingID: b.ID,
					RoomID:    roomID,
					Quantity:  item.Quantity,
					Status:    b.Status,
					CheckIn:   b.CheckIn,
					CheckOut:  b.CheckOut,
				})
			}
		}
	}
	return lines, nil
}

func (s *memoryStore) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	return s.filter(func(b domain.Booking) bool { return b.UserID == userID }), nil
}

func (s *memoryStore) ListAll(_ context.Context) ([]domain.Booking, error) {
	return s.filter(func(domain.Booking) bool { return true }), nil
}

func (s *memoryStore) ListByRoom(_ context.Context, roomID uuid.UUID) ([]domain.Booking, error) {
	return s.filter(func(b domain.Booking) bool {
		for _, item := range b.Items {
			if item.RoomID == roomID {
				return true
			}
		}
		return false
	}), nil
}

func (s *memoryStore) ListConfirmedEndedBy(_ context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, b := range s.filter(func(b domain.Booking) bool {
		return b.Status == domain.BookingConfirmed && !b.CheckOut.After(cutoff)
	}) {
		if len(ids) == limit {
			break
		}
		ids = append(ids, b.ID)
	}
	return ids, nil
}

func (s *memoryStore) CountActiveByRoom(ctx context.Context, roomID uuid.UUID) (int, error) {
	bookings, _ := s.ListByRoom(ctx, roomID)
	n := 0
	for _, b := range bookings {
		if !b.Status.IsTerminal() {
			n++
		}
	}
	return n, nil
}

func (s *memoryStore) filter(keep func(domain.Booking) bool) []domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Booking
	for _, b := range s.bookings {
		if keep(b) {
			out = append(out, clone(b))
		}
	}
	return out
}

func clone(b domain.Booking) domain.Booking {
	b.Items = append([]domain.BookingItem(nil), b.Items...)
	return b
}

// roomView adapts memoryStore to ports.RoomRepository; the method names
// collide with the booking side otherwise.
type roomView struct{ s *memoryStore }

func (v roomView) GetByID(_ context.Context, roomID uuid.UUID) (*domain.Room, error) {
	return v.s.GetByIDRoom(roomID)
}

func (v roomView) Delete(_ context.Context, roomID uuid.UUID) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.rooms[roomID]; !ok {
		return domain.ErrRoomNotFound
	}
	delete(v.s.rooms, roomID)
	return nil
}

var (
	_ ports.BookingRepository = (*memoryStore)(nil)
	_ ports.RoomRepository    = roomView{}
)
