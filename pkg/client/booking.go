package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"gameden/internal/bookings/pricing"
	"gameden/pkg/model"
)

const IdempotencyHeader = "Idempotency-Key"

// APIError is returned for any non-2xx response of the bookings API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bookings api: status %d: %s", e.StatusCode, e.Message)
}

type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseURL string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseURL),
	}
}

type envelope[T any] struct {
	Data T `json:"data"`
}

func decode[T any](resp *Response, want int) (T, error) {
	var out envelope[T]
	if resp.StatusCode != want {
		return out.Data, &APIError{StatusCode: resp.StatusCode, Message: GetErrorMessage(resp)}
	}
	if err := resp.DecodeJSON(&out); err != nil {
		return out.Data, fmt.Errorf("failed to decode response: %w", err)
	}
	return out.Data, nil
}

// Create books a slot. A non-empty idempotencyKey makes retries replay the
// first successful response.
func (c *BookingClient) Create(ctx context.Context, req *model.BookingRequest, idempotencyKey string) (*model.Booking, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{IdempotencyHeader: idempotencyKey}
	}
	resp, err := c.httpClient.POST(ctx, "/api/v1/bookings", req, headers)
	if err != nil {
		return nil, err
	}
	return decode[*model.Booking](resp, http.StatusCreated)
}

func (c *BookingClient) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/bookings/id/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	return decode[*model.Booking](resp, http.StatusOK)
}

func (c *BookingClient) Cancel(ctx context.Context, id string) error {
	resp, err := c.httpClient.DELETE(ctx, "/api/v1/bookings/id/"+url.PathEscape(id))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNoContent {
		return &APIError{StatusCode: resp.StatusCode, Message: GetErrorMessage(resp)}
	}
	return nil
}

func (c *BookingClient) List(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	q := url.Values{}
	if filter.Date != "" {
		q.Set("date", filter.Date)
	}
	if filter.Email != "" {
		q.Set("email", filter.Email)
	}
	if filter.Phone != "" {
		q.Set("phone", filter.Phone)
	}
	path := "/api/v1/bookings"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, err
	}
	return decode[[]*model.Booking](resp, http.StatusOK)
}

func (c *BookingClient) Availability(ctx context.Context, rt model.ResourceType, date string) (*model.Availability, error) {
	q := url.Values{}
	q.Set("resource_type", string(rt))
	q.Set("date", date)
	resp, err := c.httpClient.GET(ctx, "/api/v1/availability?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return decode[*model.Availability](resp, http.StatusOK)
}

func (c *BookingClient) Quote(ctx context.Context, rt model.ResourceType, duration, partySize int) (*pricing.Quote, error) {
	q := url.Values{}
	q.Set("resource_type", string(rt))
	q.Set("duration", strconv.Itoa(duration))
	q.Set("party_size", strconv.Itoa(partySize))
	resp, err := c.httpClient.GET(ctx, "/api/v1/pricing/quote?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return decode[*pricing.Quote](resp, http.StatusOK)
}

func (c *BookingClient) Slots(ctx context.Context) ([]string, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/slots")
	if err != nil {
		return nil, err
	}
	return decode[[]string](resp, http.StatusOK)
}
