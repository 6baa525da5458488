package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/srgjo27/hotel_booking/internal/core/domain"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondServiceError maps core errors onto HTTP statuses. The unrecorded
// payment case is checked first because it wraps other sentinels.
func respondServiceError(w http.ResponseWriter, logger *slog.Logger, r *http.Request, err error) {
	var unrecorded *domain.PaymentUnrecordedError
	var unavailable *domain.RoomUnavailableError

	switch {
	case errors.As(err, &unrecorded):
		logger.ErrorContext(r.Context(), "payment captured but booking not confirmed",
			"booking_id", unrecorded.BookingID, "order_id", unrecorded.OrderID, "error", err)
		respondJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "payment was received but the booking could not be updated; support has been notified",
			Code:    "payment_unrecorded",
			Details: unrecorded.OrderID,
		})
	case errors.Is(err, domain.ErrCaptureFailed):
		respondError(w, http.StatusPaymentRequired, "capture_failed", "payment could not be captured")
	case errors.As(err, &unavailable):
		respondJSON(w, http.StatusConflict, ErrorResponse{
			Error:   "room is not available for the requested dates",
			Code:    "room_unavailable",
			Details: unavailable.RoomID.String(),
		})
	case errors.Is(err, domain.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, domain.ErrInconsistentDates):
		respondError(w, http.StatusBadRequest, "inconsistent_dates", err.Error())
	case errors.Is(err, domain.ErrInvalidDateRange):
		respondError(w, http.StatusBadRequest, "invalid_date_range", err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, domain.ErrRoomNotFound):
		respondError(w, http.StatusNotFound, "room_not_found", err.Error())
	case errors.Is(err, domain.ErrCartLineNotFound):
		respondError(w, http.StatusNotFound, "cart_item_not_found", err.Error())
	case errors.Is(err, domain.ErrBookingNotFound):
		respondError(w, http.StatusNotFound, "booking_not_found", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		respondError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domain.ErrRoomInUse):
		respondError(w, http.StatusConflict, "room_in_use", err.Error())
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		respondError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, domain.ErrConcurrentModification):
		respondError(w, http.StatusConflict, "concurrent_modification", err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}
