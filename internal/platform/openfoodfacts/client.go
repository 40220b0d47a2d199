package openfoodfacts

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"cooksmart/internal/recipe"
)

const defaultBaseURL = "https://world.openfoodfacts.org"

// Client resolves scanned barcodes to product records. Capture itself
// happens on the device; this service only sees the barcode string.
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient builds an OpenFoodFacts client. baseURL is overridable for
// tests.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http:    resty.New(),
		baseURL: baseURL,
	}
}

type productResponse struct {
	Status  int            `json:"status"`
	Product recipe.Product `json:"product"`
}

// LookupBarcode fetches the product record for a barcode. A status of 0
// means the barcode is unknown.
func (c *Client) LookupBarcode(ctx context.Context, barcode string) (*recipe.Product, error) {
	var out productResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, barcode))
	if err != nil {
		return nil, fmt.Errorf("openfoodfacts request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("openfoodfacts returned status %d", resp.StatusCode())
	}
	if out.Status == 0 {
		return nil, fmt.Errorf("product not found for barcode %s", barcode)
	}
	return &out.Product, nil
}
