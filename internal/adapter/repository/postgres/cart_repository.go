package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/hotel_booking/internal/core/domain"
)

type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) GetSnapshot(ctx context.Context, userID uuid.UUID) (*domain.CartSnapshot, error) {
	query := `
	SELECT id, room_id, quantity, check_in, check_out
	FROM cart_items
	WHERE user_id = $1
	ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	cart := &domain.CartSnapshot{UserID: userID}
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ID, &line.RoomID, &line.Quantity, &line.CheckIn, &line.CheckOut); err != nil {
			return nil, err
		}

		line.CheckIn = domain.NormalizeDate(line.CheckIn)
		line.CheckOut = domain.NormalizeDate(line.CheckOut)
		cart.Lines = append(cart.Lines, line)
	}

	return cart, rows.Err()
}

func (r *CartRepository) AddLine(ctx context.Context, userID uuid.UUID, line domain.CartLine) error {
	query := `
	INSERT INTO cart_items (user_id, room_id, quantity, check_in, check_out)
	VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query, userID, line.RoomID, line.Quantity, line.CheckIn, line.CheckOut)

	return err
}

func (r *CartRepository) RemoveLine(ctx context.Context, userID uuid.UUID, lineID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, lineID, userID)
	if err != nil {
		return err
	}

	return expectRows(result, domain.ErrCartLineNotFound)
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, userID uuid.UUID, lineID int64, quantity int) error {
	query := `
	UPDATE cart_items
	SET quantity = $1
	WHERE id = $2 AND user_id = $3
	`

	result, err := r.db.ExecContext(ctx, query, quantity, lineID, userID)
	if err != nil {
		return err
	}

	return expectRows(result, domain.ErrCartLineNotFound)
}

func (r *CartRepository) UpdateDates(ctx context.Context, userID uuid.UUID, checkIn, checkOut time.Time) error {
	query := `
	UPDATE cart_items
	SET check_in = $1, check_out = $2
	WHERE user_id = $3
	`

	result, err := r.db.ExecContext(ctx, query, checkIn, checkOut, userID)
	if err != nil {
		return err
	}

	return expectRows(result, domain.ErrEmptyCart)
}

func (r *CartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)

	return err
}

func expectRows(result sql.Result, none error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return none
	}

	return nil
}
