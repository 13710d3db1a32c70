package notify

//go:generate mockgen -source=sender.go -destination=mocks/sender.go -package=mocks Sender

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Response captures the subscriber's answer to one delivery attempt.
type Response struct {
	StatusCode int
	Body       string
}

// Success reports whether the subscriber acknowledged the delivery.
func (r Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Sender performs one synchronous delivery to a subscriber endpoint. A nil
// error means the request completed and a response was read, successful or
// not; transport failures and timeouts return an error.
type Sender interface {
	Send(ctx context.Context, url, event, signature string, payload []byte) (Response, error)
}

// maxResponseBody bounds how much of a subscriber response is recorded.
const maxResponseBody = 4 << 10

// HTTPSender delivers webhook payloads over HTTP POST with the signature and
// event type as headers.
type HTTPSender struct {
	client *http.Client
}

// NewHTTPSender builds a sender whose requests are bounded by timeout.
func NewHTTPSender(timeout time.Duration) *HTTPSender {
	return &HTTPSender{client: &http.Client{Timeout: timeout}}
}

func (s *HTTPSender) Send(ctx context.Context, url, event, signature string, payload []byte) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", signature)
	req.Header.Set("X-Event", event)

	resp, err := s.client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return Response{}, fmt.Errorf("read webhook response: %w", err)
	}
	return Response{StatusCode: resp.StatusCode, Body: string(body)}, nil
}
