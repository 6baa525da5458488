package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	JWTSecret      string
	RequestTimeout time.Duration
}

func NewRouter(h *BookingHandler, cfg RouterConfig, logger *slog.Logger) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/rooms/{id}/availability", h.RoomAvailability)

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(cfg.JWTSecret))

		r.Delete("/rooms/{id}", h.DeleteRoom)
		r.Get("/rooms/{id}/bookings", h.ListRoomBookings)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Put("/dates", h.UpdateCartDates)
			r.Post("/items", h.AddCartItem)
			r.Put("/items/{itemID}", h.UpdateCartItem)
			r.Delete("/items/{itemID}", h.RemoveCartItem)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", h.Checkout)
			r.Get("/", h.ListMyBookings)
			r.Get("/all", h.ListAllBookings)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetBooking)
				r.Delete("/", h.DeleteBooking)
				r.Post("/cancel", h.CancelBooking)
				r.Post("/complete", h.CompleteBooking)
				r.Post("/payment/order", h.CreatePaymentOrder)
				r.Post("/payment/capture", h.CapturePayment)
			})
		})
	})

	return r
}
