package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/srgjo27/hotel_booking/internal/core/domain"
	"github.com/srgjo27/hotel_booking/internal/core/ports"
)

// RoomCache is a read-through cache in front of a RoomRepository. Only the
// room record is cached; occupancy is always read from the booking store.
type RoomCache struct {
	next   ports.RoomRepository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRoomCache(next ports.RoomRepository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *RoomCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RoomCache{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *RoomCache) GetByID(ctx context.Context, roomID uuid.UUID) (*domain.Room, error) {
	key := roomKey(roomID)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var room domain.Room
		if err := json.Unmarshal(data, &room); err == nil {
			return &room, nil
		}
		c.logger.Warn("discarding unreadable cached room", "room_id", roomID)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("room cache unavailable", "room_id", roomID, "error", err)
	}

	room, err := c.next.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if err := c.set(ctx, room); err != nil {
		c.logger.Warn("failed to cache room", "room_id", roomID, "error", err)
	}

	return room, nil
}

func (c *RoomCache) Delete(ctx context.Context, roomID uuid.UUID) error {
	if err := c.next.Delete(ctx, roomID); err != nil {
		return err
	}

	if err := c.client.Del(ctx, roomKey(roomID)).Err(); err != nil {
		c.logger.Warn("failed to evict room", "room_id", roomID, "error", err)
	}

	return nil
}

func (c *RoomCache) set(ctx context.Context, room *domain.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("marshal room failed: %w", err)
	}

	if err := c.client.Set(ctx, roomKey(room.ID), string(data), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func roomKey(roomID uuid.UUID) string {
	return fmt.Sprintf("room:%s", roomID)
}

var _ ports.RoomRepository = (*RoomCache)(nil)
