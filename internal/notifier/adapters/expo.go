package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"pooja-supplies/internal/notifier/domain"
)

// expoBatchSize is the most messages Expo accepts per request
const expoBatchSize = 100

// ExpoSender sends notifications through the Expo push service
type ExpoSender struct {
	url    string
	client *http.Client
}

// NewExpoSender creates a sender posting to url
func NewExpoSender(url string, timeout time.Duration) *ExpoSender {
	return &ExpoSender{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type expoResponse struct {
	Data []struct {
		Status  string `json:"status"`
		ID      string `json:"id"`
		Message string `json:"message"`
		Details struct {
			Error string `json:"error"`
		} `json:"details"`
	} `json:"data"`
}

// Send posts messages in batches and returns one ticket per message
func (s *ExpoSender) Send(ctx context.Context, messages []domain.Message) ([]domain.Ticket, error) {
	tickets := make([]domain.Ticket, 0, len(messages))
	for start := 0; start < len(messages); start += expoBatchSize {
		batch := messages[start:min(start+expoBatchSize, len(messages))]
		got, err := s.sendBatch(ctx, batch)
		if err != nil {
			return tickets, err
		}
		tickets = append(tickets, got...)
	}
	return tickets, nil
}

func (s *ExpoSender) sendBatch(ctx context.Context, batch []domain.Message) ([]domain.Ticket, error) {
	body, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal push messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("expo push request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("expo push returned %d: %s", resp.StatusCode, snippet)
	}

	var parsed expoResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode expo response: %w", err)
	}
	if len(parsed.Data) != len(batch) {
		return nil, fmt.Errorf("expo returned %d tickets for %d messages", len(parsed.Data), len(batch))
	}

	tickets := make([]domain.Ticket, len(batch))
	for i, d := range parsed.Data {
		tickets[i] = domain.Ticket{
			Token:               batch[i].To,
			OK:                  d.Status == "ok",
			DeviceNotRegistered: d.Details.Error == "DeviceNotRegistered",
			Error:               d.Message,
		}
	}
	return tickets, nil
}
