package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/acme/product-importer/internal/store"
	"github.com/acme/product-importer/pkg/metrics"
)

const deliveryTimeout = 5 * time.Second

type DeliveryStatus string

const (
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
)

// DeliveryResult records the outcome of one outbound callback. Failures
// are reported back to the caller for observability but are never
// retried and never affect the triggering job's outcome.
type DeliveryResult struct {
	WebhookID  uint
	Url        string
	Status     DeliveryStatus
	StatusCode int
	Err        error
}

type WebhookNotifier struct {
	store  store.Store
	client *http.Client
}

func NewWebhookNotifier(store store.Store) *WebhookNotifier {
	return &WebhookNotifier{
		store:  store,
		client: &http.Client{Timeout: deliveryTimeout},
	}
}

// Notify performs a best-effort delivery to every active registration
// for the event. The returned slice carries one result per registration
// in store order.
func (n *WebhookNotifier) Notify(ctx context.Context, event string, payload any) []DeliveryResult {
	logger := zap.S().Named("notifier")

	webhooks, err := n.store.Webhook().ListActiveByEvent(ctx, event)
	if err != nil {
		logger.Errorw("failed to list webhooks", "event", event, "error", err)
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logger.Errorw("failed to encode payload", "event", event, "error", err)
		return nil
	}

	results := make([]DeliveryResult, 0, len(webhooks))
	for _, webhook := range webhooks {
		result := n.deliver(ctx, webhook.ID, webhook.Url, body)
		metrics.IncreaseWebhookDeliveries(string(result.Status))
		if result.Status == DeliveryFailed {
			logger.Warnw("webhook delivery failed",
				"event", event, "url", webhook.Url, "error", result.Err)
		}
		results = append(results, result)
	}
	return results
}

// Deliver posts the payload to a single URL with the delivery timeout
// and reports the upstream status code. Any received response counts,
// healthy or not; only transport failures are errors. Used by the
// registry's test-fire endpoint.
func (n *WebhookNotifier) Deliver(ctx context.Context, url string, payload any) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}

func (n *WebhookNotifier) deliver(ctx context.Context, id uint, url string, body []byte) DeliveryResult {
	result := DeliveryResult{WebhookID: id, Url: url, Status: DeliveryDelivered}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		result.Status = DeliveryFailed
		result.Err = err
		return result
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		result.Status = DeliveryFailed
		result.Err = err
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		result.Status = DeliveryFailed
		result.Err = fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return result
}
