package handler

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/srgjo27/hotel_booking/internal/core/domain"
)

const dateLayout = "2006-01-02"

type AddCartItemRequestDTO struct {
	RoomID   uuid.UUID `json:"room_id"`
	Quantity int       `json:"quantity"`
	CheckIn  string    `json:"check_in"`
	CheckOut string    `json:"check_out"`
}

func (r AddCartItemRequestDTO) toLine() (domain.CartLine, error) {
	checkIn, err := parseDate(r.CheckIn)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("check_in: %w", err)
	}
	checkOut, err := parseDate(r.CheckOut)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("check_out: %w", err)
	}
	return domain.CartLine{RoomID: r.RoomID, Quantity: r.Quantity, CheckIn: checkIn, CheckOut: checkOut}, nil
}

type UpdateCartItemRequestDTO struct {
	Quantity int `json:"quantity"`
}

type UpdateCartDatesRequestDTO struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

type CaptureRequestDTO struct {
	OrderID string `json:"order_id"`
}

type CartLineDTO struct {
	ID       int64     `json:"id"`
	RoomID   uuid.UUID `json:"room_id"`
	Quantity int       `json:"quantity"`
	CheckIn  string    `json:"check_in"`
	CheckOut string    `json:"check_out"`
}

type CartDTO struct {
	Lines []CartLineDTO `json:"lines"`
}

func toCartDTO(cart *domain.CartSnapshot) CartDTO {
	dto := CartDTO{Lines: []CartLineDTO{}}
	if cart == nil {
		return dto
	}
	for _, l := range cart.Lines {
		dto.Lines = append(dto.Lines, CartLineDTO{
			ID:       l.ID,
			RoomID:   l.RoomID,
			Quantity: l.Quantity,
			CheckIn:  l.CheckIn.Format(dateLayout),
			CheckOut: l.CheckOut.Format(dateLayout),
		})
	}
	return dto
}

type BookingItemDTO struct {
	RoomID             uuid.UUID `json:"room_id"`
	Quantity           int       `json:"quantity"`
	PricePerNightCents int64     `json:"price_per_night_cents"`
	TotalCents         int64     `json:"total_cents"`
}

type BookingDTO struct {
	ID              uuid.UUID        `json:"id"`
	UserID          uuid.UUID        `json:"user_id"`
	CheckIn         string           `json:"check_in"`
	CheckOut        string           `json:"check_out"`
	BookingDate     time.Time        `json:"booking_date"`
	Status          string           `json:"status"`
	NumberOfNights  int              `json:"number_of_nights"`
	TotalPriceCents int64            `json:"total_price_cents"`
	Items           []BookingItemDTO `json:"items"`
}

func toBookingDTO(b *domain.Booking) BookingDTO {
	dto := BookingDTO{
		ID:              b.ID,
		UserID:          b.UserID,
		CheckIn:         b.CheckIn.Format(dateLayout),
		CheckOut:        b.CheckOut.Format(dateLayout),
		BookingDate:     b.BookingDate,
		Status:          b.Status.String(),
		NumberOfNights:  b.NumberOfNights(),
		TotalPriceCents: b.TotalPriceCents(),
		Items:           make([]BookingItemDTO, 0, len(b.Items)),
	}
	for _, item := range b.Items {
		dto.Items = append(dto.Items, BookingItemDTO{
			RoomID:             item.RoomID,
			Quantity:           item.Quantity,
			PricePerNightCents: item.PricePerNightCents,
			TotalCents:         b.ItemTotalCents(item),
		})
	}
	return dto
}

func toBookingDTOs(bookings []domain.Booking) []BookingDTO {
	out := make([]BookingDTO, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingDTO(&bookings[i]))
	}
	return out
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD, got %q", s)
	}
	return t, nil
}
