package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

func (s BookingStatus) IsTerminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

// HoldsCapacity reports whether a booking in this status still consumes
// room units. Only a cancellation frees them.
func (s BookingStatus) HoldsCapacity() bool {
	return s != BookingCancelled
}

func (s BookingStatus) String() string {
	return string(s)
}

var transitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

func CanTransitionTo(from, to BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Booking struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	CheckIn     time.Time
	CheckOut    time.Time
	BookingDate time.Time
	Status      BookingStatus
	Version     int
	UpdatedAt   time.Time
	Items       []BookingItem
}

type BookingItem struct {
	ID                 uuid.UUID
	BookingID          uuid.UUID
	RoomID             uuid.UUID
	Quantity           int
	PricePerNightCents int64
}

// NewBooking builds a Pending booking. Lines are copied so later changes to
// the caller's slice cannot reach the aggregate.
func NewBooking(userID uuid.UUID, checkIn, checkOut time.Time, items []BookingItem, now time.Time) (*Booking, error) {
	checkIn = NormalizeDate(checkIn)
	checkOut = NormalizeDate(checkOut)
	if !checkIn.Before(checkOut) {
		return nil, ErrInvalidDateRange
	}

	id := uuid.New()
	lines := make([]BookingItem, len(items))
	for i, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.BookingID = id
		lines[i] = item
	}

	return &Booking{
		ID:          id,
		UserID:      userID,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		BookingDate: now.UTC(),
		Status:      BookingPending,
		UpdatedAt:   now.UTC(),
		Items:       lines,
	}, nil
}

func (b *Booking) NumberOfNights() int {
	return Nights(b.CheckIn, b.CheckOut)
}

func (b *Booking) ItemTotalCents(item BookingItem) int64 {
	return item.PricePerNightCents * int64(item.Quantity) * int64(b.NumberOfNights())
}

func (b *Booking) TotalPriceCents() int64 {
	var total int64
	for _, item := range b.Items {
		total += b.ItemTotalCents(item)
	}
	return total
}

func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.UserID == userID
}

// Overlaps uses half-open intervals: a stay ending on day D does not clash
// with one starting on day D.
func (b *Booking) Overlaps(checkIn, checkOut time.Time) bool {
	return b.CheckIn.Before(checkOut) && b.CheckOut.After(checkIn)
}

// Confirm moves a Pending booking to Confirmed. Confirming an already
// Confirmed booking reports changed=false and no error.
func (b *Booking) Confirm(now time.Time) (changed bool, err error) {
	if b.Status == BookingConfirmed {
		return false, nil
	}
	if err := b.transition(BookingConfirmed, now); err != nil {
		return false, err
	}
	return true, nil
}

func (b *Booking) Cancel(now time.Time) error {
	return b.transition(BookingCancelled, now)
}

// Complete marks a Confirmed stay as finished once checkOut has passed.
// Completing an already Completed booking is a no-op.
func (b *Booking) Complete(now time.Time) (changed bool, err error) {
	if b.Status == BookingCompleted {
		return false, nil
	}
	if b.Status == BookingConfirmed && now.Before(b.CheckOut) {
		return false, &TransitionError{From: b.Status, To: BookingCompleted, Reason: "stay has not ended"}
	}
	if err := b.transition(BookingCompleted, now); err != nil {
		return false, err
	}
	return true, nil
}

func (b *Booking) CanDelete() error {
	if b.Status != BookingPending {
		return &TransitionError{From: b.Status, To: "DELETED", Reason: "only pending bookings can be deleted"}
	}
	return nil
}

func (b *Booking) transition(to BookingStatus, now time.Time) error {
	if !CanTransitionTo(b.Status, to) {
		return &TransitionError{From: b.Status, To: to}
	}
	b.Status = to
	b.UpdatedAt = now.UTC()
	return nil
}

func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Nights(checkIn, checkOut time.Time) int {
	return int(NormalizeDate(checkOut).Sub(NormalizeDate(checkIn)).Hours() / 24)
}

type BookingFilter string

const (
	FilterAll       BookingFilter = "all"
	FilterActive    BookingFilter = "active"
	FilterPending   BookingFilter = "pending"
	FilterPast      BookingFilter = "past"
	FilterCancelled BookingFilter = "cancelled"
)

func ParseBookingFilter(s string) (BookingFilter, bool) {
	switch f := BookingFilter(s); f {
	case "":
		return FilterAll, true
	case FilterAll, FilterActive, FilterPending, FilterPast, FilterCancelled:
		return f, true
	}
	return "", false
}

func (f BookingFilter) Match(b *Booking, now time.Time) bool {
	switch f {
	case FilterActive:
		return b.Status == BookingConfirmed && !b.CheckOut.Before(NormalizeDate(now))
	case FilterPending:
		return b.Status == BookingPending
	case FilterPast:
		return (b.Status == BookingConfirmed && b.CheckOut.Before(NormalizeDate(now))) || b.Status == BookingCompleted
	case FilterCancelled:
		return b.Status == BookingCancelled
	}
	return true
}
