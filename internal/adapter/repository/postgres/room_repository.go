package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/srgjo27/hotel_booking/internal/core/domain"
)

type RoomRepository struct {
	db *sql.DB
}

func NewRoomRepository(db *sql.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) GetByID(ctx context.Context, roomID uuid.UUID) (*domain.Room, error) {
	query := `
	SELECT id, type, description, price_cents, total_units
	FROM rooms
	WHERE id = $1
	`

	var room domain.Room
	err := r.db.QueryRowContext(ctx, query, roomID).Scan(
		&room.ID,
		&room.Type,
		&room.Description,
		&room.PriceCents,
		&room.TotalUnits,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}

		return nil, err
	}

	return &room, nil
}

// Create is used by seeding and tests; rooms are managed outside the booking flow.
func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	query := `
	INSERT INTO rooms (id, type, description, price_cents, total_units)
	VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query, room.ID, room.Type, room.Description, room.PriceCents, room.TotalUnits)

	return err
}

func (r *RoomRepository) Delete(ctx context.Context, roomID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, roomID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrRoomNotFound
	}

	return nil
}
