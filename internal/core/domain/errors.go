package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart                  = errors.New("cart is empty, nothing to checkout")
	ErrInconsistentDates          = errors.New("all cart items must share the same check-in and check-out dates")
	ErrInvalidDateRange           = errors.New("check-out date must be after check-in date")
	ErrInvalidQuantity            = errors.New("quantity must be at least 1")
	ErrCartLineNotFound           = errors.New("cart item not found")
	ErrRoomUnavailable            = errors.New("room is not available for the selected dates")
	ErrRoomNotFound               = errors.New("room not found")
	ErrRoomInUse                  = errors.New("room has active bookings")
	ErrBookingNotFound            = errors.New("booking not found")
	ErrUnauthorized               = errors.New("not allowed to access this booking")
	ErrInvalidStatusTransition    = errors.New("invalid booking status transition")
	ErrConcurrentModification     = errors.New("booking was modified by another transaction")
	ErrCaptureFailed              = errors.New("payment capture failed")
	ErrConfirmedPaymentUnrecorded = errors.New("payment captured but booking status was not recorded")
	ErrStorageFailure             = errors.New("storage failure")
)

type RoomUnavailableError struct {
	RoomID   uuid.UUID
	Quantity int
}

func (e *RoomUnavailableError) Error() string {
	return fmt.Sprintf("room %s is not available for the selected dates with quantity %d", e.RoomID, e.Quantity)
}

func (e *RoomUnavailableError) Is(target error) bool {
	return target == ErrRoomUnavailable
}

type TransitionError struct {
	From   BookingStatus
	To     BookingStatus
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot move booking from %s to %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("cannot move booking from %s to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidStatusTransition
}

// PaymentUnrecordedError means money moved at the provider but the booking
// was not confirmed. It needs manual reconciliation and must never be
// retried automatically.
type PaymentUnrecordedError struct {
	BookingID uuid.UUID
	OrderID   string
	Err       error
}

func (e *PaymentUnrecordedError) Error() string {
	return fmt.Sprintf("payment order %s captured but booking %s not confirmed: %v", e.OrderID, e.BookingID, e.Err)
}

func (e *PaymentUnrecordedError) Is(target error) bool {
	return target == ErrConfirmedPaymentUnrecorded
}

func (e *PaymentUnrecordedError) Unwrap() error {
	return e.Err
}

type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorageFailure
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Storage wraps err as a StorageError unless it already carries a domain
// meaning (not found, conflict) that callers branch on.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
