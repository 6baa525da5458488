package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/hotel_booking/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)

	require.NoError(t, RunMigrations(db, "./migrations"))

	cleanup := func() {
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return db, cleanup
}

func date(d int) time.Time {
	return time.Date(2026, time.June, d, 0, 0, 0, 0, time.UTC)
}

func seedRoom(t *testing.T, rooms *RoomRepository, units int) *domain.Room {
	t.Helper()
	room := &domain.Room{ID: uuid.New(), Type: "Deluxe", PriceCents: 12000, TotalUnits: units}
	require.NoError(t, rooms.Create(context.Background(), room))
	return room
}

func TestRepositories(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	rooms := NewRoomRepository(db)
	bookings := NewBookingRepository(db)
	carts := NewCartRepository(db)

	t.Run("room lookup and delete", func(t *testing.T) {
		room := seedRoom(t, rooms, 3)

		got, err := rooms.GetByID(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, room, got)

		require.NoError(t, rooms.Delete(ctx, room.ID))
		_, err = rooms.GetByID(ctx, room.ID)
		assert.ErrorIs(t, err, domain.ErrRoomNotFound)
		assert.ErrorIs(t, rooms.Delete(ctx, room.ID), domain.ErrRoomNotFound)
	})

	t.Run("booking round trip and overlap", func(t *testing.T) {
		room := seedRoom(t, rooms, 2)
		userID := uuid.New()

		b, err := domain.NewBooking(userID, date(1), date(4), []domain.BookingItem{
			{RoomID: room.ID, Quantity: 2, PricePerNightCents: room.PriceCents},
		}, time.Now().UTC())
		require.NoError(t, err)
		require.NoError(t, bookings.CreateBooking(ctx, b))

		got, err := bookings.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingPending, got.Status)
		assert.True(t, got.CheckIn.Equal(date(1)))
		require.Len(t, got.Items, 1)
		assert.Equal(t, int64(12000), got.Items[0].PricePerNightCents)

		lines, err := bookings.ListOverlapping(ctx, room.ID, date(3), date(5))
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, 2, lines[0].Quantity)

		lines, err = bookings.ListOverlapping(ctx, room.ID, date(4), date(6))
		require.NoError(t, err)
		assert.Empty(t, lines, "check-out day is free again")

		n, err := bookings.CountActiveByRoom(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		mine, err := bookings.ListByUser(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, mine, 1)

		byRoom, err := bookings.ListByRoom(ctx, room.ID)
		require.NoError(t, err)
		assert.Len(t, byRoom, 1)
	})

	t.Run("version check", func(t *testing.T) {
		room := seedRoom(t, rooms, 1)
		b, err := domain.NewBooking(uuid.New(), date(10), date(12), []domain.BookingItem{
			{RoomID: room.ID, Quantity: 1, PricePerNightCents: room.PriceCents},
		}, time.Now().UTC())
		require.NoError(t, err)
		require.NoError(t, bookings.CreateBooking(ctx, b))

		stale, err := bookings.GetByID(ctx, b.ID)
		require.NoError(t, err)

		_, err = b.Confirm(time.Now().UTC())
		require.NoError(t, err)
		require.NoError(t, bookings.Update(ctx, b))
		assert.Equal(t, 1, b.Version)

		require.NoError(t, stale.Cancel(time.Now().UTC()))
		assert.ErrorIs(t, bookings.Update(ctx, stale), domain.ErrConcurrentModification)

		ids, err := bookings.ListConfirmedEndedBy(ctx, date(12), 10)
		require.NoError(t, err)
		assert.Contains(t, ids, b.ID)

		assert.ErrorIs(t, bookings.Delete(ctx, b.ID), domain.ErrBookingNotFound, "confirmed bookings stay")

		require.NoError(t, b.Cancel(time.Now().UTC()))
		require.NoError(t, bookings.Update(ctx, b))

		lines, err := bookings.ListOverlapping(ctx, room.ID, date(10), date(12))
		require.NoError(t, err)
		assert.Empty(t, lines, "cancelled bookings free their units")
	})

	t.Run("delete pending cascades lines", func(t *testing.T) {
		room := seedRoom(t, rooms, 1)
		b, err := domain.NewBooking(uuid.New(), date(20), date(21), []domain.BookingItem{
			{RoomID: room.ID, Quantity: 1},
		}, time.Now().UTC())
		require.NoError(t, err)
		require.NoError(t, bookings.CreateBooking(ctx, b))

		require.NoError(t, bookings.Delete(ctx, b.ID))

		var n int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM booking_items WHERE booking_id = $1`, b.ID).Scan(&n))
		assert.Zero(t, n)
	})

	t.Run("cart", func(t *testing.T) {
		room := seedRoom(t, rooms, 1)
		userID := uuid.New()

		require.NoError(t, carts.AddLine(ctx, userID, domain.CartLine{RoomID: room.ID, Quantity: 1, CheckIn: date(5), CheckOut: date(7)}))
		require.NoError(t, carts.AddLine(ctx, userID, domain.CartLine{RoomID: room.ID, Quantity: 2, CheckIn: date(5), CheckOut: date(7)}))

		cart, err := carts.GetSnapshot(ctx, userID)
		require.NoError(t, err)
		require.Len(t, cart.Lines, 2)
		assert.Equal(t, 2, cart.Lines[1].Quantity)
		assert.True(t, cart.Lines[0].CheckOut.Equal(date(7)))

		require.NoError(t, carts.Clear(ctx, userID))
		cart, err = carts.GetSnapshot(ctx, userID)
		require.NoError(t, err)
		assert.True(t, cart.IsEmpty())
	})

	t.Run("booking items keep their order", func(t *testing.T) {
		first := seedRoom(t, rooms, 1)
		second := seedRoom(t, rooms, 1)
		third := seedRoom(t, rooms, 1)

		b, err := domain.NewBooking(uuid.New(), date(24), date(26), []domain.BookingItem{
			{RoomID: third.ID, Quantity: 1, PricePerNightCents: 300},
			{RoomID: first.ID, Quantity: 1, PricePerNightCents: 100},
			{RoomID: second.ID, Quantity: 1, PricePerNightCents: 200},
		}, time.Now().UTC())
		require.NoError(t, err)
		require.NoError(t, bookings.CreateBooking(ctx, b))

		got, err := bookings.GetByID(ctx, b.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 3)
		for i := range b.Items {
			assert.Equal(t, b.Items[i].ID, got.Items[i].ID)
			assert.Equal(t, b.Items[i].RoomID, got.Items[i].RoomID)
		}
	})

	t.Run("zero capacity room", func(t *testing.T) {
		room := seedRoom(t, rooms, 0)

		got, err := rooms.GetByID(ctx, room.ID)
		require.NoError(t, err)
		assert.Zero(t, got.TotalUnits)
	})

	t.Run("completion cutoff is a UTC day", func(t *testing.T) {
		room := seedRoom(t, rooms, 1)
		b, err := domain.NewBooking(uuid.New(), date(27), date(28), []domain.BookingItem{
			{RoomID: room.ID, Quantity: 1},
		}, time.Now().UTC())
		require.NoError(t, err)
		require.NoError(t, bookings.CreateBooking(ctx, b))
		_, err = b.Confirm(time.Now().UTC())
		require.NoError(t, err)
		require.NoError(t, bookings.Update(ctx, b))

		// June 28 05:00 in UTC+9 is June 27 in UTC: the stay has not ended.
		tokyo := time.FixedZone("JST", 9*60*60)
		ids, err := bookings.ListConfirmedEndedBy(ctx, time.Date(2026, time.June, 28, 5, 0, 0, 0, tokyo), 10)
		require.NoError(t, err)
		assert.NotContains(t, ids, b.ID)

		ids, err = bookings.ListConfirmedEndedBy(ctx, date(28), 10)
		require.NoError(t, err)
		assert.Contains(t, ids, b.ID)
	})

	t.Run("cart edits", func(t *testing.T) {
		room := seedRoom(t, rooms, 2)
		userID := uuid.New()
		other := uuid.New()

		require.NoError(t, carts.AddLine(ctx, userID, domain.CartLine{RoomID: room.ID, Quantity: 1, CheckIn: date(5), CheckOut: date(7)}))
		require.NoError(t, carts.AddLine(ctx, userID, domain.CartLine{RoomID: room.ID, Quantity: 1, CheckIn: date(6), CheckOut: date(8)}))

		cart, err := carts.GetSnapshot(ctx, userID)
		require.NoError(t, err)
		require.Len(t, cart.Lines, 2)
		_, _, err = cart.StayDates()
		assert.ErrorIs(t, err, domain.ErrInconsistentDates)

		require.NoError(t, carts.UpdateDates(ctx, userID, date(9), date(11)))
		require.NoError(t, carts.UpdateQuantity(ctx, userID, cart.Lines[0].ID, 2))
		assert.ErrorIs(t, carts.UpdateQuantity(ctx, other, cart.Lines[0].ID, 1), domain.ErrCartLineNotFound)
		assert.ErrorIs(t, carts.RemoveLine(ctx, other, cart.Lines[1].ID), domain.ErrCartLineNotFound)
		require.NoError(t, carts.RemoveLine(ctx, userID, cart.Lines[1].ID))
		assert.ErrorIs(t, carts.RemoveLine(ctx, userID, cart.Lines[1].ID), domain.ErrCartLineNotFound)

		cart, err = carts.GetSnapshot(ctx, userID)
		require.NoError(t, err)
		require.Len(t, cart.Lines, 1)
		assert.Equal(t, 2, cart.Lines[0].Quantity)
		in, out, err := cart.StayDates()
		require.NoError(t, err)
		assert.True(t, in.Equal(date(9)))
		assert.True(t, out.Equal(date(11)))

		assert.ErrorIs(t, carts.UpdateDates(ctx, other, date(9), date(11)), domain.ErrEmptyCart)
	})
}
