package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartLine is one room entry in a user's cart. Dates are validated at
// checkout, not when the line is added.
type CartLine struct {
	ID       int64     `json:"id"`
	RoomID   uuid.UUID `json:"room_id"`
	Quantity int       `json:"quantity"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

type CartSnapshot struct {
	UserID uuid.UUID
	Lines  []CartLine
}

func (c *CartSnapshot) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

// StayDates returns the check-in/check-out pair shared by every line.
func (c *CartSnapshot) StayDates() (time.Time, time.Time, error) {
	if c.IsEmpty() {
		return time.Time{}, time.Time{}, ErrEmptyCart
	}

	checkIn := NormalizeDate(c.Lines[0].CheckIn)
	checkOut := NormalizeDate(c.Lines[0].CheckOut)

	for _, line := range c.Lines[1:] {
		if !NormalizeDate(line.CheckIn).Equal(checkIn) || !NormalizeDate(line.CheckOut).Equal(checkOut) {
			return time.Time{}, time.Time{}, ErrInconsistentDates
		}
	}

	return checkIn, checkOut, nil
}
