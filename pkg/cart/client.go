package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const defaultCartEndpoint = "http://localhost:8090/api/cart"

// AddItem is one row of a batched add request.
type AddItem struct {
	Id       uint `json:"id"`
	Quantity int  `json:"quantity"`
}

type AddRequest struct {
	Items []AddItem `json:"items"`
	// Sections asks the cart service for pre-rendered drawer markup.
	Sections []string `json:"sections,omitempty"`
}

type AddResponse struct {
	Status      int               `json:"status,omitempty"`
	Message     string            `json:"message,omitempty"`
	Description string            `json:"description,omitempty"`
	Sections    map[string]string `json:"sections,omitempty"`
}

// SnapshotItem is one line of the cart as the cart service reports it.
type SnapshotItem struct {
	Id       uint   `json:"id"`
	Title    string `json:"title,omitempty"`
	Price    int    `json:"price,omitempty"`
	Quantity int    `json:"quantity"`
}

// Snapshot is the cart state returned by the read-cart operation and
// broadcast on the event bus after a successful submission.
type Snapshot struct {
	ItemCount  int            `json:"item_count"`
	TotalPrice int            `json:"total_price,omitempty"`
	Items      []SnapshotItem `json:"items,omitempty"`
}

// Client talks to the external cart service.
type Client struct {
	Endpoint   string
	Sections   []string
	HttpClient *http.Client
}

// NewClient creates a cart service client with default configuration.
func NewClient() *Client {
	return &Client{
		Endpoint:   defaultCartEndpoint,
		HttpClient: &http.Client{},
	}
}

// NewClientWithConfig creates a cart service client with a custom
// endpoint and optional drawer sections to request on every add.
func NewClientWithConfig(endpoint string, sections []string) *Client {
	if endpoint == "" {
		endpoint = defaultCartEndpoint
	}
	return &Client{
		Endpoint:   endpoint,
		Sections:   sections,
		HttpClient: &http.Client{},
	}
}

// AddItems sends one batched add-to-cart call.
func (c *Client) AddItems(ctx context.Context, items []AddItem) (*AddResponse, error) {
	reqBody := AddRequest{
		Items:    items,
		Sections: c.Sections,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshaling add request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.Endpoint+"/add", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("error creating add request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending add request to cart service: %w", err)
	}
	defer resp.Body.Close()

	var addResp AddResponse
	if err := json.NewDecoder(resp.Body).Decode(&addResp); err != nil && resp.StatusCode == http.StatusOK {
		return nil, fmt.Errorf("error decoding cart service response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("add rejected: %s",
			addResp.rejectionReason(fmt.Sprintf("cart service returned %d", resp.StatusCode)))
	}
	// some cart services answer 200 and carry the failure in the body
	if addResp.Status != 0 && addResp.Status != http.StatusOK {
		return nil, fmt.Errorf("add rejected: %s",
			addResp.rejectionReason(fmt.Sprintf("cart service status %d", addResp.Status)))
	}
	return &addResp, nil
}

func (r *AddResponse) rejectionReason(fallback string) string {
	if r.Description != "" {
		return r.Description
	}
	if r.Message != "" {
		return r.Message
	}
	return fallback
}

// ReadCart fetches the current cart snapshot.
func (c *Client) ReadCart(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating read request: %w", err)
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error reading cart: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-OK response from cart service: %d", resp.StatusCode)
	}
	var snapshot Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("error decoding cart snapshot: %w", err)
	}
	return &snapshot, nil
}
