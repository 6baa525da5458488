package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/hotel_booking/internal/core/domain"
	"github.com/srgjo27/hotel_booking/internal/core/ports"
	"github.com/srgjo27/hotel_booking/internal/core/ports/mocks"
	"github.com/srgjo27/hotel_booking/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 0, 0, 0, 0, time.UTC)
}

func eventOfType(t domain.EventType) interface{} {
	return mock.MatchedBy(func(e domain.Event) bool { return e.Type == t })
}

func TestCreateBookingFromCart_Success(t *testing.T) {
	mockRoomRepo := mocks.NewRoomRepository(t)
	mockBookingRepo := mocks.NewBookingRepository(t)
	mockEvents := mocks.NewEventPublisher(t)

	service := services.NewBookingService(mockRoomRepo, mockBookingRepo, mockEvents)

	ctx := context.Background()
	userID := uuid.New()
	roomID := uuid.New()
	checkIn, checkOut := day(time.June, 1), day(time.June, 4)

	room := &domain.Room{ID: roomID, Type: "Deluxe", PriceCents: 12000, TotalUnits: 3}

	cart := &domain.CartSnapshot{
		UserID: userID,
		Lines:  []domain.CartLine{{RoomID: roomID, Quantity: 2, CheckIn: checkIn, CheckOut: checkOut}},
	}

	mockRoomRepo.On("GetByID", ctx, roomID).Return(room, nil)
	mockBookingRepo.On("ListOverlapping", ctx, roomID, checkIn, checkOut).Return([]ports.ReservedLine{
		{RoomID: roomID, Quantity: 1, Status: domain.BookingConfirmed, CheckIn: day(time.June, 3), CheckOut: day(time.June, 5)},
	}, nil)

	var stored *domain.Booking
	mockBookingRepo.On("CreateBooking", ctx, mock.AnythingOfType("*domain.Booking")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.Booking) }).
		Return(nil)
	mockEvents.On("Publish", ctx, eventOfType(domain.EventBookingCreated)).Return(nil)

	id, err := service.CreateBookingFromCart(ctx, userID, cart)

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, stored.ID, id)
	assert.Equal(t, domain.BookingPending, stored.Status)
	assert.Equal(t, userID, stored.UserID)
	assert.Equal(t, 3, stored.NumberOfNights())
	if assert.Len(t, stored.Items, 1) {
		assert.Equal(t, int64(12000), stored.Items[0].PricePerNightCents)
		assert.Equal(t, id, stored.Items[0].BookingID)
	}
	assert.Equal(t, int64(12000*2*3), stored.TotalPriceCents())
}

func TestCreateBookingFromCart_EmptyCart(t *testing.T) {
	mockRoomRepo := mocks.NewRoomRepository(t)
	mockBookingRepo := mocks.NewBookingRepository(t)

	service := services.NewBookingService(mockRoomRepo, mockBookingRepo, nil)

	_, err := service.CreateBookingFromCart(context.Background(), uuid.New(), &domain.CartSnapshot{})
	assert.ErrorIs(t, err, domain.ErrEmptyCart)

	_, err = service.CreateBookingFromCart(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestCreateBookingFromCart_InconsistentDates(t *testing.T) {
	mockRoomRepo := mocks.NewRoomRepository(t)
	mockBookingRepo := mocks.NewBookingRepository(t)

	service := services.NewBookingService(mockRoomRepo, mockBookingRepo, nil)

	cart := &domain.CartSnapshot{Lines: []domain.CartLine{
		{RoomID: uuid.New(), Quantity: 1, CheckIn: day(time.June, 1), CheckOut: day(time.June, 3)},
		{RoomID: uuid.New(), Quantity: 1, CheckIn: day(time.June, 1), CheckOut: day(time.June, 4)},
	}}

	_, err := service.CreateBookingFromCart(context.Background(), uuid.New(), cart)

	assert.ErrorIs(t, err, domain.ErrInconsistentDates)
	mockBookingRepo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestCreateBookingFromCart_InvalidDateRange(t *testing.T) {
	mockRoomRepo := mocks.NewRoomRepository(t)
	mockBookingRepo := mocks.NewBookingRepository(t)

	service := services.NewBookingService(mockRoomRepo, mockBookingRepo, nil)

	cart := &domain.CartSnapshot{Lines: []domain.CartLine{
		{RoomID: uuid.New(), Quantity: 1, CheckIn: day(time.June, 3), CheckOut: day(time.June, 3)},
	}}

	_, err := service.CreateBookingFromCart(context.Background(), uuid.New(), cart)

	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestCreateBookingFromCart_SecondLineUnavailable(t *testing.T) {
	mockRoomRepo := mocks.NewRoomRepository(t)
	mockBookingRepo := mocks.NewBookingRepository(t)

	service := services.NewBookingService(mockRoomRepo, mockBookingRepo, nil)

	ctx := context.Background()
	freeRoom := &domain.Room{ID: uuid.New(), PriceCents: 5000, TotalUnits: 5}
	fullRoom := &domain.Room{ID: uuid.New(), PriceCents: 9000, TotalUnits: 1}
	checkIn, checkOut := day(time.July, 10), day(time.July, 12)

	cart := &domain.CartSnapshot{Lines: []domain.CartLine{
		{RoomID: freeRoom.ID, Quantity: 1, CheckIn: checkIn, CheckOut: checkOut},
		{RoomID: fullRoom.ID, Quantity: 1, CheckIn: checkIn, CheckOut: checkOut},
	}}

	mockRoomRepo.On("GetByID", ctx, freeRoom.ID).Return(freeRoom, nil)
	mockRoomRepo.On("GetByID", ctx, fullRoom.ID).Return(fullRoom, nil)
	mockBookingRepo.On("ListOverlapping", ctx, freeRoom.ID, checkIn, checkOut).Return(nil, nil)
	mockBookingRepo.On("ListOverlapping", ctx, fullRoom.ID, checkIn, checkOut).Return([]ports.ReservedLine{
		{RoomID: fullRoom.ID, Quantity: 1, Status: domain.BookingPending, CheckIn: checkIn, CheckOut: checkOut},
	}, nil)

	_, err := service.CreateBookingFromCart(ctx, uuid.New(), cart)

	var unavailable *domain.RoomUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.ErrorIs(t, err, domain.ErrRoomUnavailable)
	assert.Equal(t, fullRoom.ID, unavailable.RoomID)
	assert.Equal(t, 1, unavailable.Quantity)
	mockBookingRepo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestCreateBookingFromCart_DuplicateRoomLinesShareCapacity(t *testing.T) {
	room := domain.Room{ID: uuid.New(), PriceCents: 7000, TotalUnits: 3}
	store := newMemoryStore(room)
	service := services.NewBookingService(roomView{store}, store, nil)

	checkIn, checkOut := day(time.August, 1), day(time.August, 2)
	cart := &domain.CartSnapshot{Lines: []domain.CartLine{
		{RoomID: room.ID, Quantity: 2, CheckIn: checkIn, CheckOut: checkOut},
		{RoomID: room.ID, Quantity: 2, CheckIn: checkIn, CheckOut: checkOut},
	}}

	_, err := service.CreateBookingFromCart(context.Background(), uuid.New(), cart)

	assert.ErrorIs(t, err, domain.ErrRoomUnavailable)
	all, _ := store.ListAll(context.Background())
	assert.Empty(t, all)
}

func TestCreateBookingFromCart_StorageFailure(t *testing.T) {
	mockRoomRepo := mocks.NewRoomRepository(t)
	mockBookingRepo := mocks.NewBookingRepository(t)

	service := services.NewBookingService(mockRoomRepo, mockBookingRepo, nil)

	ctx := context.Background()
	room := &domain.Room{ID: uuid.New(), PriceCents: 100, TotalUnits: 1}
	checkIn, checkOut := day(time.June, 1), day(time.June, 2)

	mockRoomRepo.On("GetByID", ctx, room.ID).Return(room, nil)
	mockBookingRepo.On("ListOverlapping", ctx, room.ID, checkIn, checkOut).Return(nil, nil)
	mockBookingRepo.On("CreateBooking", ctx, mock.Anything).Return(errors.New("connection reset"))

	_, err := service.CreateBookingFromCart(ctx, uuid.New(), &domain.CartSnapshot{Lines: []domain.CartLine{
		{RoomID: room.ID, Quantity: 1, CheckIn: checkIn, CheckOut: checkOut},
	}})

	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestCheckoutScenario_CancellationFreesCapacity(t *testing.T) {
	room := domain.Room{ID: uuid.New(), Type: "Suite", PriceCents: 25000, TotalUnits: 2}
	store := newMemoryStore(room)
	service := services.NewBookingService(roomView{store}, store, nil)

	ctx := context.Background()
	owner := uuid.New()

	existing, err := domain.NewBooking(owner, day(time.June, 1), day(time.June, 3), []domain.BookingItem{
		{RoomID: room.ID, Quantity: 2, PricePerNightCents: 20000},
	}, time.Now())
	require.NoError(t, err)
	existing.Status = domain.BookingConfirmed
	store.put(*existing)

	guest := uuid.New()
	cart := &domain.CartSnapshot{UserID: guest, Lines: []domain.CartLine{
		{RoomID: room.ID, Quantity: 1, CheckIn: day(time.June, 2), CheckOut: day(time.June, 4)},
	}}

	_, err = service.CreateBookingFromCart(ctx, guest, cart)
	require.ErrorIs(t, err, domain.ErrRoomUnavailable)

	require.NoError(t, service.CancelBooking(ctx, domain.Actor{UserID: owner}, existing.ID))

	id, err := service.CreateBookingFromCart(ctx, guest, cart)
	require.NoError(t, err)

	created, err := service.GetBooking(ctx, domain.Actor{UserID: guest}, id)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, created.Status)
	assert.Equal(t, int64(25000), created.Items[0].PricePerNightCents)
	assert.Equal(t, int64(25000*1*2), created.TotalPriceCents())
}

func TestCancelBooking_Unauthorized(t *testing.T) {
	store := newMemoryStore()
	service := services.NewBookingService(roomView{store}, store, nil)

	b, _ := domain.NewBooking(uuid.New(), day(time.June, 1), day(time.June, 2), nil, time.Now())
	store.put(*b)

	err := service.CancelBooking(context.Background(), domain.Actor{UserID: uuid.New()}, b.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	err = service.CancelBooking(context.Background(), domain.Actor{UserID: uuid.New(), Admin: true}, b.ID)
	assert.NoError(t, err)
}

func TestCancelBooking_TerminalStatusRejected(t *testing.T) {
	store := newMemoryStore()
	service := services.NewBookingService(roomView{store}, store, nil)

	owner := uuid.New()
	b, _ := domain.NewBooking(owner, day(time.June, 1), day(time.June, 2), nil, time.Now())
	b.Status = domain.BookingCompleted
	store.put(*b)

	err := service.CancelBooking(context.Background(), domain.Actor{UserID: owner}, b.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}

func TestDeleteBooking(t *testing.T) {
	mockRoomRepo := mocks.NewRoomRepository(t)
	mockBookingRepo := mocks.NewBookingRepository(t)
	mockEvents := mocks.NewEventPublisher(t)

	service := services.NewBookingService(mockRoomRepo, mockBookingRepo, mockEvents)

	ctx := context.Background()
	owner := uuid.New()

	pending, _ := domain.NewBooking(owner, day(time.June, 1), day(time.June, 2), []domain.BookingItem{{RoomID: uuid.New(), Quantity: 1}}, time.Now())
	confirmed, _ := domain.NewBooking(owner, day(time.June, 1), day(time.June, 2), nil, time.Now())
	confirmed.Status = domain.BookingConfirmed

	mockBookingRepo.On("GetByID", ctx, pending.ID).Return(pending, nil)
	mockBookingRepo.On("GetByID", ctx, confirmed.ID).Return(confirmed, nil)
	mockBookingRepo.On("Delete", ctx, pending.ID).Return(nil).Once()
	mockEvents.On("Publish", ctx, eventOfType(domain.EventBookingDeleted)).Return(nil).Once()

	err := service.DeleteBooking(ctx, domain.Actor{UserID: owner}, confirmed.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	err = service.DeleteBooking(ctx, domain.Actor{UserID: owner}, pending.ID)
	assert.NoError(t, err)
}

func TestDeleteBooking_RemovesLines(t *testing.T) {
	room := domain.Room{ID: uuid.New(), PriceCents: 100, TotalUnits: 1}
	store := newMemoryStore(room)
	service := services.NewBookingService(roomView{store}, store, nil)
	ctx := context.Background()

	owner := uuid.New()
	cart := &domain.CartSnapshot{Lines: []domain.CartLine{
		{RoomID: room.ID, Quantity: 1, CheckIn: day(time.May, 1), CheckOut: day(time.May, 2)},
	}}

	id, err := service.CreateBookingFromCart(ctx, owner, cart)
	require.NoError(t, err)

	require.NoError(t, service.DeleteBooking(ctx, domain.Actor{UserID: owner}, id))

	_, err = service.GetBooking(ctx, domain.Actor{UserID: owner}, id)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)

	lines, _ := store.ListOverlapping(ctx, room.ID, day(time.May, 1), day(time.May, 2))
	assert.Empty(t, lines)
}

func TestGetBooking_NotFound(t *testing.T) {
	mockBookingRepo := mocks.NewBookingRepository(t)
	service := services.NewBookingService(mocks.NewRoomRepository(t), mockBookingRepo, nil)

	ctx := context.Background()
	id := uuid.New()
	mockBookingRepo.On("GetByID", ctx, id).Return(nil, domain.ErrBookingNotFound)

	_, err := service.GetBooking(ctx, domain.Actor{Admin: true}, id)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	assert.NotErrorIs(t, err, domain.ErrStorageFailure)
}

func TestListUserBookings_Filter(t *testing.T) {
	store := newMemoryStore()
	service := services.NewBookingService(roomView{store}, store, nil)

	user := uuid.New()
	now := time.Now()
	future := domain.NormalizeDate(now.AddDate(0, 1, 0))
	past := domain.NormalizeDate(now.AddDate(0, -1, 0))

	mk := func(status domain.BookingStatus, in time.Time) {
		b, _ := domain.NewBooking(user, in, in.AddDate(0, 0, 2), nil, now)
		b.Status = status
		store.put(*b)
	}
	mk(domain.BookingPending, future)
	mk(domain.BookingConfirmed, future)
	mk(domain.BookingConfirmed, past)
	mk(domain.BookingCompleted, past)
	mk(domain.BookingCancelled, future)

	cases := map[domain.BookingFilter]int{
		domain.FilterAll:       5,
		domain.FilterPending:   1,
		domain.FilterActive:    1,
		domain.FilterPast:      2,
		domain.FilterCancelled: 1,
	}

	for filter, want := range cases {
		got, err := service.ListUserBookings(context.Background(), user, filter)
		require.NoError(t, err)
		assert.Len(t, got, want, "filter %s", filter)
	}
}

func TestListAllBookings_RequiresAdmin(t *testing.T) {
	store := newMemoryStore()
	service := services.NewBookingService(roomView{store}, store, nil)

	_, err := service.ListAllBookings(context.Background(), domain.Actor{UserID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = service.ListBookingsByRoom(context.Background(), domain.Actor{UserID: uuid.New()}, uuid.New())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCompleteElapsedBookings(t *testing.T) {
	store := newMemoryStore()
	service := services.NewBookingService(roomView{store}, store, nil)
	ctx := context.Background()

	now := day(time.June, 10)
	ended, _ := domain.NewBooking(uuid.New(), day(time.June, 1), day(time.June, 5), nil, now)
	ended.Status = domain.BookingConfirmed
	ongoing, _ := domain.NewBooking(uuid.New(), day(time.June, 8), day(time.June, 12), nil, now)
	ongoing.Status = domain.BookingConfirmed
	unpaid, _ := domain.NewBooking(uuid.New(), day(time.June, 1), day(time.June, 5), nil, now)
	store.put(*ended)
	store.put(*ongoing)
	store.put(*unpaid)

	n, err := service.CompleteElapsedBookings(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, _ := store.GetByID(ctx, ended.ID)
	assert.Equal(t, domain.BookingCompleted, got.Status)
	got, _ = store.GetByID(ctx, ongoing.ID)
	assert.Equal(t, domain.BookingConfirmed, got.Status)
	got, _ = store.GetByID(ctx, unpaid.ID)
	assert.Equal(t, domain.BookingPending, got.Status)

	// A second sweep finds nothing left and a direct repeat is accepted.
	n, err = service.CompleteElapsedBookings(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, service.CompleteBooking(ctx, services.SystemActor, ended.ID, now))
}

func TestCompleteBooking_RequiresAdmin(t *testing.T) {
	store := newMemoryStore()
	service := services.NewBookingService(roomView{store}, store, nil)

	err := service.CompleteBooking(context.Background(), domain.Actor{UserID: uuid.New()}, uuid.New(), time.Now())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCompleteElapsedBookings_CutoffIsUTCDay(t *testing.T) {
	mockBookingRepo := mocks.NewBookingRepository(t)
	service := services.NewBookingService(mocks.NewRoomRepository(t), mockBookingRepo, nil)
	ctx := context.Background()

	// 05:00 in Tokyo on June 10 is still June 9 in UTC.
	tokyo := time.FixedZone("JST", 9*60*60)
	now := time.Date(2026, time.June, 10, 5, 0, 0, 0, tokyo)

	mockBookingRepo.On("ListConfirmedEndedBy", ctx, day(time.June, 9), mock.AnythingOfType("int")).Return(nil, nil)

	n, err := service.CompleteElapsedBookings(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)
}
