package packages

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/omarhijazi/souqline-backend/pkg/config"
	"github.com/omarhijazi/souqline-backend/pkg/db/models"
)

type httpCarrier struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPCarrier builds the default carrier client. Returns nil when no base
// URL is configured, which disables carrier registration.
func NewHTTPCarrier(cfg config.CarrierConfig) CarrierClient {
	if cfg.BaseURL == "" {
		return nil
	}
	return &httpCarrier{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type carrierRequest struct {
	PackageID       string  `json:"package_id"`
	OrderNumber     string  `json:"order_number"`
	ShippingCompany *string `json:"shipping_company,omitempty"`
	ShippingCity    *string `json:"shipping_city,omitempty"`
	ShippingVillage *string `json:"shipping_village,omitempty"`
}

type carrierResponse struct {
	TrackingNumber string `json:"tracking_number"`
}

func (c *httpCarrier) Register(ctx context.Context, order *models.Order, pkg *models.ShippingPackage) (string, error) {
	body, err := json.Marshal(carrierRequest{
		PackageID:       pkg.ID.String(),
		OrderNumber:     order.OrderNumber,
		ShippingCompany: order.ShippingCompany,
		ShippingCity:    order.ShippingCity,
		ShippingVillage: order.ShippingVillage,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/packages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("carrier returned status %d", resp.StatusCode)
	}

	var out carrierResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.TrackingNumber, nil
}
