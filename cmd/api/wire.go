package main

import (
	"time"

	"github.com/srgjo27/hotel_booking/internal/core/ports"
	"github.com/srgjo27/hotel_booking/internal/core/services"
)

type appServices struct {
	availability *services.AvailabilityService
	bookings     *services.BookingService
	payments     *services.PaymentService
	carts        *services.CartService
	inventory    *services.InventoryService
}

// newServices wires the core services. rooms must read the store directly:
// checkout prices lines and counts capacity from it. roomView may be cached
// and only backs lookups that never write a booking.
func newServices(
	rooms ports.RoomRepository,
	roomView ports.RoomRepository,
	bookingRepo ports.BookingRepository,
	cartRepo ports.CartRepository,
	gateway ports.PaymentGateway,
	events ports.EventPublisher,
	currency string,
	paymentTimeout time.Duration,
) appServices {
	return appServices{
		availability: services.NewAvailabilityService(roomView, bookingRepo),
		bookings:     services.NewBookingService(rooms, bookingRepo, events),
		payments:     services.NewPaymentService(bookingRepo, gateway, events, currency, paymentTimeout),
		carts:        services.NewCartService(cartRepo, roomView),
		inventory:    services.NewInventoryService(roomView, bookingRepo),
	}
}
