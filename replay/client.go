package replay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Client talks to a replay-buffer service.
type Client struct {
	endpoint string
	hc       *http.Client
}

// NewClient makes a client for the given host:port endpoint.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		hc:       &http.Client{Timeout: 30 * time.Second},
	}
}

// Store submits one trajectory. Duplicate IDs are accepted and reported,
// not stored twice.
func (c *Client) Store(req StoreRequest) (*StoreResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "marshal store request")
	}
	url := fmt.Sprintf("http://%s/v1/store", c.endpoint)
	resp, err := c.hc.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "post store request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Errorf("replay: store returned %s: %s", resp.Status, msg)
	}
	var out StoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "decode store response")
	}
	return &out, nil
}

// Sample fetches a uniform batch of buffered positions.
func (c *Client) Sample(batch int) (*SampleResponse, error) {
	url := fmt.Sprintf("http://%s/v1/sample?batch=%d", c.endpoint, batch)
	resp, err := c.hc.Get(url)
	if err != nil {
		return nil, errors.Wrap(err, "get sample")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Errorf("replay: sample returned %s: %s", resp.Status, msg)
	}
	var out SampleResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "decode sample response")
	}
	return &out, nil
}
