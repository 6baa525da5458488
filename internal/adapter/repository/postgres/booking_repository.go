package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/srgjo27/hotel_booking/internal/core/domain"
	"github.com/srgjo27/hotel_booking/internal/core/ports"
)

const bookingColumns = `id, user_id, check_in, check_out, booking_date, status, version, updated_at`

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	queryHeader := `
	INSERT INTO bookings (id, user_id, check_in, check_out, booking_date, status, version, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = tx.ExecContext(ctx, queryHeader, booking.ID, booking.UserID, booking.CheckIn, booking.CheckOut,
		booking.BookingDate, booking.Status, booking.Version, booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert booking header: %w", err)
	}

	queryItem := `
	INSERT INTO booking_items (id, booking_id, room_id, quantity, price_per_night_cents, position)
	VALUES ($1, $2, $3, $4, $5, $6)
	`

	stmt, err := tx.PrepareContext(ctx, queryItem)
	if err != nil {
		return fmt.Errorf("failed to prepare item statement: %w", err)
	}

	defer stmt.Close()

	for i, item := range booking.Items {
		_, err := stmt.ExecContext(ctx, item.ID, booking.ID, item.RoomID, item.Quantity, item.PricePerNightCents, i)
		if err != nil {
			return fmt.Errorf("failed to insert booking item room %s: %w", item.RoomID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	bookings, err := r.query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, bookingID)
	if err != nil {
		return nil, err
	}

	if len(bookings) == 0 {
		return nil, domain.ErrBookingNotFound
	}

	return &bookings[0], nil
}

// Update writes the status under an optimistic version check. Zero affected
// rows on an existing booking means a concurrent writer got there first.
func (r *BookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	query := `
	UPDATE bookings
	SET status = $1,
		updated_at = $2,
		version = version + 1
	WHERE id = $3 AND version = $4
	`

	result, err := r.db.ExecContext(ctx, query, booking.Status, booking.UpdatedAt, booking.ID, booking.Version)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, booking.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrBookingNotFound
		}
		return domain.ErrConcurrentModification
	}

	booking.Version++

	return nil
}

// Delete removes a Pending booking together with its lines.
func (r *BookingRepository) Delete(ctx context.Context, bookingID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1 AND status = $2`, bookingID, domain.BookingPending)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrBookingNotFound
	}

	return nil
}

func (r *BookingRepository) ListOverlapping(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time) ([]ports.ReservedLine, error) {
	query := `
	SELECT b.id, bi.room_id, bi.quantity, b.status, b.check_in, b.check_out
	FROM booking_items bi
	JOIN bookings b ON b.id = bi.booking_id
	WHERE bi.room_id = $1
		AND b.status <> $2
		AND b.check_in < $4
		AND b.check_out > $3
	`

	rows, err := r.db.QueryContext(ctx, query, roomID, domain.BookingCancelled, checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var lines []ports.ReservedLine
	for rows.Next() {
		var line ports.ReservedLine
		if err := rows.Scan(&line.BookingID, &line.RoomID, &line.Quantity, &line.Status, &line.CheckIn, &line.CheckOut); err != nil {
			return nil, err
		}

		line.CheckIn = domain.NormalizeDate(line.CheckIn)
		line.CheckOut = domain.NormalizeDate(line.CheckOut)
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	return r.query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY booking_date DESC`, userID)
}

func (r *BookingRepository) ListAll(ctx context.Context) ([]domain.Booking, error) {
	return r.query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY booking_date DESC`)
}

func (r *BookingRepository) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]domain.Booking, error) {
	query := `
	SELECT ` + bookingColumns + `
	FROM bookings
	WHERE id IN (SELECT booking_id FROM booking_items WHERE room_id = $1)
	ORDER BY check_in
	`

	return r.query(ctx, query, roomID)
}

// ListConfirmedEndedBy compares check_out against the UTC calendar day of
// cutoff, independent of the session time zone.
func (r *BookingRepository) ListConfirmedEndedBy(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	query := `
	SELECT id FROM bookings
	WHERE status = $1 AND check_out <= $2::date
	ORDER BY check_out
	LIMIT $3
	`

	day := cutoff.UTC().Format("2006-01-02")
	rows, err := r.db.QueryContext(ctx, query, domain.BookingConfirmed, day, limit)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *BookingRepository) CountActiveByRoom(ctx context.Context, roomID uuid.UUID) (int, error) {
	query := `
	SELECT COUNT(DISTINCT b.id)
	FROM bookings b
	JOIN booking_items bi ON bi.booking_id = b.id
	WHERE bi.room_id = $1 AND b.status IN ($2, $3)
	`

	var n int
	err := r.db.QueryRowContext(ctx, query, roomID, domain.BookingPending, domain.BookingConfirmed).Scan(&n)

	return n, err
}

// query loads booking headers and then all of their lines in one round trip.
func (r *BookingRepository) query(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var bookings []domain.Booking
	index := make(map[uuid.UUID]int)
	var ids []string

	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.CheckIn, &b.CheckOut, &b.BookingDate, &b.Status, &b.Version, &b.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}

		b.CheckIn = domain.NormalizeDate(b.CheckIn)
		b.CheckOut = domain.NormalizeDate(b.CheckOut)
		index[b.ID] = len(bookings)
		ids = append(ids, b.ID.String())
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(bookings) == 0 {
		return nil, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
	SELECT id, booking_id, room_id, quantity, price_per_night_cents
	FROM booking_items
	WHERE booking_id = ANY($1::uuid[])
	ORDER BY booking_id, position
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}

	defer itemRows.Close()

	for itemRows.Next() {
		var item domain.BookingItem
		if err := itemRows.Scan(&item.ID, &item.BookingID, &item.RoomID, &item.Quantity, &item.PricePerNightCents); err != nil {
			return nil, err
		}

		i, ok := index[item.BookingID]
		if !ok {
			continue
		}
		bookings[i].Items = append(bookings[i].Items, item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

var (
	_ ports.BookingRepository = (*BookingRepository)(nil)
	_ ports.RoomRepository    = (*RoomRepository)(nil)
	_ ports.CartRepository    = (*CartRepository)(nil)
)
