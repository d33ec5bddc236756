// Package shopify talks to the external catalog: a thin admin-API client and
// the reconciler that mirrors catalog variants into local items.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"smartshelf/internal/apperrors"
)

const apiVersion = "2024-01"

type Client struct {
	baseURL     string
	accessToken string
	http        *http.Client
}

func NewClient(storeURL, accessToken string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(storeURL, "/"),
		accessToken: accessToken,
		http:        &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any, out any) error {
	endpoint := fmt.Sprintf("%s/admin/api/%s%s", c.baseURL, apiVersion, path)
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NewUpstream("shopify request failed", err.Error())
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := strings.TrimSpace(string(respBody))
		return apperrors.NewUpstream(fmt.Sprintf("shopify api error %d", resp.StatusCode), detail)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return apperrors.NewUpstream("failed to decode shopify response", err.Error())
		}
	}
	return nil
}

// ListProducts fetches one page of products with their variants.
func (c *Client) ListProducts(ctx context.Context, limit, page int) ([]Product, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}
	if page > 0 {
		params.Set("page", fmt.Sprintf("%d", page))
	}

	var parsed productsResponse
	if err := c.do(ctx, http.MethodGet, "/products.json", params, nil, &parsed); err != nil {
		return nil, err
	}
	return parsed.Products, nil
}

// GetVariant resolves a single variant, including its inventory-item handle.
func (c *Client) GetVariant(ctx context.Context, variantID string) (*Variant, error) {
	var parsed variantResponse
	if err := c.do(ctx, http.MethodGet, "/variants/"+variantID+".json", nil, nil, &parsed); err != nil {
		return nil, err
	}
	return &parsed.Variant, nil
}

// ListLocations returns the store's stock locations.
func (c *Client) ListLocations(ctx context.Context) ([]Location, error) {
	var parsed locationsResponse
	if err := c.do(ctx, http.MethodGet, "/locations.json", nil, nil, &parsed); err != nil {
		return nil, err
	}
	return parsed.Locations, nil
}

// SetInventoryLevel sets the absolute available quantity for an
// (inventory item, location) pair.
func (c *Client) SetInventoryLevel(ctx context.Context, locationID, inventoryItemID int64, available int) error {
	payload := inventoryLevelRequest{
		LocationID:      locationID,
		InventoryItemID: inventoryItemID,
		Available:       available,
	}
	return c.do(ctx, http.MethodPost, "/inventory_levels/set.json", nil, payload, nil)
}
