package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/srgjo27/hotel_booking/internal/core/ports"
)

const (
	SandboxURL = "https://api-m.sandbox.paypal.com"
	LiveURL    = "https://api-m.paypal.com"

	statusCompleted = "COMPLETED"
)

type Config struct {
	Mode         string
	BaseURL      string
	ClientID     string
	ClientSecret string
	// ReturnBaseURL is where the buyer is sent back after approving or
	// abandoning the order.
	ReturnBaseURL string
	HTTPClient    *http.Client
}

// APIError is a non-2xx answer from the Orders API.
type APIError struct {
	StatusCode int
	Name       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paypal: %d %s: %s", e.StatusCode, e.Name, e.Message)
}

// ErrOrderMismatch means the order was opened for a different booking.
var ErrOrderMismatch = errors.New("paypal: order does not belong to booking")

type Client struct {
	baseURL       string
	returnBaseURL string
	http          *http.Client
	breaker       *gobreaker.CircuitBreaker[[]byte]
	logger        *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = SandboxURL
		if cfg.Mode == "live" {
			baseURL = LiveURL
		}
	}
	baseURL = strings.TrimRight(baseURL, "/")

	ctx := context.Background()
	if cfg.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, cfg.HTTPClient)
	}

	creds := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     baseURL + "/v1/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "paypal",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			return err == nil || (errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		baseURL:       baseURL,
		returnBaseURL: strings.TrimRight(cfg.ReturnBaseURL, "/"),
		http:          creds.Client(ctx),
		breaker:       breaker,
		logger:        logger,
	}
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	ReferenceID string `json:"reference_id"`
	CustomID    string `json:"custom_id"`
	Amount      amount `json:"amount"`
}

type applicationContext struct {
	ReturnURL string `json:"return_url,omitempty"`
	CancelURL string `json:"cancel_url,omitempty"`
}

type orderRequest struct {
	Intent             string             `json:"intent"`
	PurchaseUnits      []purchaseUnit     `json:"purchase_units"`
	ApplicationContext applicationContext `json:"application_context"`
}

type orderResponse struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

func (o orderResponse) belongsTo(bookingID uuid.UUID) bool {
	for _, unit := range o.PurchaseUnits {
		if unit.ReferenceID == bookingID.String() {
			return true
		}
	}
	return false
}

func (c *Client) CreateOrder(ctx context.Context, amountCents int64, currency string, bookingID uuid.UUID) (string, error) {
	req := orderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			ReferenceID: bookingID.String(),
			CustomID:    bookingID.String(),
			Amount:      amount{CurrencyCode: currency, Value: FormatAmount(amountCents)},
		}},
	}
	if c.returnBaseURL != "" {
		req.ApplicationContext = applicationContext{
			ReturnURL: fmt.Sprintf("%s/bookings/%s/payment/success", c.returnBaseURL, bookingID),
			CancelURL: fmt.Sprintf("%s/bookings/%s/payment/cancelled", c.returnBaseURL, bookingID),
		}
	}

	c.logger.Info("creating paypal order", "booking_id", bookingID, "amount_cents", amountCents, "currency", currency)

	body, err := c.do(ctx, http.MethodPost, "/v2/checkout/orders", req)
	if err != nil {
		c.logger.Error("paypal order creation failed", "booking_id", bookingID, "error", err)
		return "", err
	}

	var order orderResponse
	if err := json.Unmarshal(body, &order); err != nil {
		return "", fmt.Errorf("paypal: decode order: %w", err)
	}
	if order.ID == "" {
		return "", errors.New("paypal: order response without id")
	}

	c.logger.Info("paypal order created", "booking_id", bookingID, "order_id", order.ID)

	return order.ID, nil
}

// CaptureOrder reports true only when the order reached COMPLETED. The
// order is looked up first and must carry bookingID as its reference, so an
// order opened for one booking cannot settle another. Any transport
// failure, non-2xx answer or other status is a failed capture.
func (c *Client) CaptureOrder(ctx context.Context, bookingID uuid.UUID, orderID string) (bool, error) {
	path := "/v2/checkout/orders/" + url.PathEscape(orderID)

	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		c.logger.Error("paypal order lookup failed", "booking_id", bookingID, "order_id", orderID, "error", err)
		return false, err
	}

	var order orderResponse
	if err := json.Unmarshal(body, &order); err != nil {
		return false, fmt.Errorf("paypal: decode order: %w", err)
	}
	if !order.belongsTo(bookingID) {
		c.logger.Warn("paypal order belongs to another booking", "booking_id", bookingID, "order_id", orderID)
		return false, fmt.Errorf("%w: order %s, booking %s", ErrOrderMismatch, orderID, bookingID)
	}

	c.logger.Info("capturing paypal order", "booking_id", bookingID, "order_id", orderID)

	body, err = c.do(ctx, http.MethodPost, path+"/capture", struct{}{})
	if err != nil {
		c.logger.Error("paypal capture failed", "booking_id", bookingID, "order_id", orderID, "error", err)
		return false, err
	}

	order = orderResponse{}
	if err := json.Unmarshal(body, &order); err != nil {
		return false, fmt.Errorf("paypal: decode capture: %w", err)
	}

	completed := order.Status == statusCompleted
	c.logger.Info("paypal capture result", "booking_id", bookingID, "order_id", orderID, "status", order.Status, "completed", completed)

	return completed, nil
}

// do sends payload as JSON; a nil payload sends no body.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var data []byte
	if payload != nil {
		var err error
		if data, err = json.Marshal(payload); err != nil {
			return nil, err
		}
	}

	return c.breaker.Execute(func() ([]byte, error) {
		var reqBody io.Reader
		if data != nil {
			reqBody = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return nil, err
		}
		if data != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Prefer", "return=representation")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := &APIError{StatusCode: resp.StatusCode}
			_ = json.Unmarshal(body, &struct {
				Name    *string `json:"name"`
				Message *string `json:"message"`
			}{&apiErr.Name, &apiErr.Message})
			return nil, apiErr
		}

		return body, nil
	})
}

// FormatAmount renders cents as the decimal string the Orders API expects.
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

var _ ports.PaymentGateway = (*Client)(nil)
