package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/daehwan-kim/retail-order-service/internal/models"
)

// DataPlatformNotifier posts completed orders to the external analytics
// collector. No retries here; retry policy belongs to the caller or the
// platform's own ingestion layer.
type DataPlatformNotifier struct {
	endpoint string
	client   *http.Client
}

func NewDataPlatformNotifier(endpoint string) *DataPlatformNotifier {
	return &DataPlatformNotifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type orderPayload struct {
	OrderID            int64     `json:"order_id"`
	UserID             int64     `json:"user_id"`
	TotalProductsPrice int64     `json:"total_products_price"`
	DiscountedPrice    int64     `json:"discounted_price"`
	PurchasedPrice     int64     `json:"purchased_price"`
	OrderedAt          time.Time `json:"ordered_at"`
}

func (n *DataPlatformNotifier) SendOrder(ctx context.Context, order *models.Order) error {
	payload := orderPayload{
		OrderID:            order.ID,
		UserID:             order.UserID,
		TotalProductsPrice: order.TotalProductsPrice,
		DiscountedPrice:    order.DiscountedPrice,
		PurchasedPrice:     order.PurchasedPrice(),
		OrderedAt:          order.OrderedAt,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build data platform request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send order to data platform: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("data platform responded %d", resp.StatusCode)
	}
	return nil
}

// NoopNotifier is the stand-in used when no data platform is configured.
type NoopNotifier struct{}

func (NoopNotifier) SendOrder(ctx context.Context, order *models.Order) error {
	slog.DebugContext(ctx, "data platform not configured, dropping order event", "order_id", order.ID)
	return nil
}
