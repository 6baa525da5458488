package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/srgjo27/hotel_booking/internal/core/domain"
	"github.com/srgjo27/hotel_booking/internal/core/services"
)

type BookingHandler struct {
	bookings     *services.BookingService
	payments     *services.PaymentService
	carts        *services.CartService
	inventory    *services.InventoryService
	availability *services.AvailabilityService
	logger       *slog.Logger
}

func NewBookingHandler(
	bookings *services.BookingService,
	payments *services.PaymentService,
	carts *services.CartService,
	inventory *services.InventoryService,
	availability *services.AvailabilityService,
	logger *slog.Logger,
) *BookingHandler {
	return &BookingHandler{
		bookings:     bookings,
		payments:     payments,
		carts:        carts,
		inventory:    inventory,
		availability: availability,
		logger:       logger,
	}
}

func (h *BookingHandler) RoomAvailability(w http.ResponseWriter, r *http.Request) {
	roomID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	q := r.URL.Query()
	checkIn, err := parseDate(q.Get("check_in"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_check_in", err.Error())
		return
	}
	checkOut, err := parseDate(q.Get("check_out"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_check_out", err.Error())
		return
	}

	quantity := 1
	if raw := q.Get("quantity"); raw != "" {
		if quantity, err = strconv.Atoi(raw); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be an integer")
			return
		}
	}

	available, err := h.availability.IsAvailable(r.Context(), roomID, checkIn, checkOut, quantity)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"room_id":   roomID,
		"check_in":  checkIn.Format(dateLayout),
		"check_out": checkOut.Format(dateLayout),
		"quantity":  quantity,
		"available": available,
	})
}

func (h *BookingHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	roomID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.inventory.DeleteRoom(r.Context(), actor, roomID); err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *BookingHandler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req AddCartItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	line, err := req.toLine()
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_date", err.Error())
		return
	}

	if err := h.carts.AddLine(r.Context(), actor.UserID, line); err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	h.respondCart(w, r, actor.UserID, http.StatusCreated)
}

func (h *BookingHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	lineID, ok := h.pathLineID(w, r)
	if !ok {
		return
	}

	var req UpdateCartItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.carts.UpdateQuantity(r.Context(), actor.UserID, lineID, req.Quantity); err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	h.respondCart(w, r, actor.UserID, http.StatusOK)
}

func (h *BookingHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	lineID, ok := h.pathLineID(w, r)
	if !ok {
		return
	}

	if err := h.carts.RemoveLine(r.Context(), actor.UserID, lineID); err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	h.respondCart(w, r, actor.UserID, http.StatusOK)
}

// UpdateCartDates sets one stay on every line of the caller's cart.
func (h *BookingHandler) UpdateCartDates(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req UpdateCartDatesRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	checkIn, err := parseDate(req.CheckIn)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_check_in", err.Error())
		return
	}
	checkOut, err := parseDate(req.CheckOut)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_check_out", err.Error())
		return
	}

	if err := h.carts.UpdateAllDates(r.Context(), actor.UserID, checkIn, checkOut); err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	h.respondCart(w, r, actor.UserID, http.StatusOK)
}

func (h *BookingHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	if err := h.carts.Clear(r.Context(), actor.UserID); err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *BookingHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	h.respondCart(w, r, actor.UserID, http.StatusOK)
}

// Checkout turns the caller's cart into a Pending booking and empties the
// cart once the booking is stored.
func (h *BookingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	cart, err := h.carts.Snapshot(r.Context(), actor.UserID)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	bookingID, err := h.bookings.CreateBookingFromCart(r.Context(), actor.UserID, cart)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	if err := h.carts.Clear(r.Context(), actor.UserID); err != nil {
		h.logger.WarnContext(r.Context(), "failed to clear cart after checkout", "user_id", actor.UserID, "booking_id", bookingID, "error", err)
	}

	respondJSON(w, http.StatusCreated, map[string]any{"booking_id": bookingID})
}

func (h *BookingHandler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	filter, ok := domain.ParseBookingFilter(r.URL.Query().Get("filter"))
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_filter", "filter must be one of all, active, pending, past, cancelled")
		return
	}

	bookings, err := h.bookings.ListUserBookings(r.Context(), actor.UserID, filter)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toBookingDTOs(bookings))
}

func (h *BookingHandler) ListAllBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	bookings, err := h.bookings.ListAllBookings(r.Context(), actor)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toBookingDTOs(bookings))
}

func (h *BookingHandler) ListRoomBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	roomID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	bookings, err := h.bookings.ListBookingsByRoom(r.Context(), actor, roomID)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toBookingDTOs(bookings))
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	actor, bookingID, ok := h.actorAndBooking(w, r)
	if !ok {
		return
	}

	booking, err := h.bookings.GetBooking(r.Context(), actor, bookingID)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toBookingDTO(booking))
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	actor, bookingID, ok := h.actorAndBooking(w, r)
	if !ok {
		return
	}

	if err := h.bookings.CancelBooking(r.Context(), actor, bookingID); err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"booking_id": bookingID, "status": domain.BookingCancelled})
}

func (h *BookingHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	actor, bookingID, ok := h.actorAndBooking(w, r)
	if !ok {
		return
	}

	if err := h.bookings.DeleteBooking(r.Context(), actor, bookingID); err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *BookingHandler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	actor, bookingID, ok := h.actorAndBooking(w, r)
	if !ok {
		return
	}

	if err := h.bookings.CompleteBooking(r.Context(), actor, bookingID, time.Now()); err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"booking_id": bookingID, "status": domain.BookingCompleted})
}

func (h *BookingHandler) CreatePaymentOrder(w http.ResponseWriter, r *http.Request) {
	actor, bookingID, ok := h.actorAndBooking(w, r)
	if !ok {
		return
	}

	order, err := h.payments.CreatePaymentOrder(r.Context(), actor, bookingID)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

func (h *BookingHandler) CapturePayment(w http.ResponseWriter, r *http.Request) {
	actor, bookingID, ok := h.actorAndBooking(w, r)
	if !ok {
		return
	}

	var req CaptureRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "order_id is required")
		return
	}

	outcome, err := h.payments.CapturePayment(r.Context(), actor, bookingID, req.OrderID)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"booking_id": bookingID, "result": outcome})
}

func (h *BookingHandler) respondCart(w http.ResponseWriter, r *http.Request, userID uuid.UUID, status int) {
	cart, err := h.carts.Snapshot(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	respondJSON(w, status, toCartDTO(cart))
}

func (h *BookingHandler) actor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
	}
	return actor, ok
}

func (h *BookingHandler) pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", param+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *BookingHandler) pathLineID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_id", "itemID must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *BookingHandler) actorAndBooking(w http.ResponseWriter, r *http.Request) (domain.Actor, uuid.UUID, bool) {
	actor, ok := h.actor(w, r)
	if !ok {
		return domain.Actor{}, uuid.Nil, false
	}
	bookingID, ok := h.pathID(w, r, "id")
	return actor, bookingID, ok
}
