package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"hatbazar/internal/demand-service/core/ports"
	"hatbazar/internal/mylogger"
)

// Client calls the external tag classifier over HTTP. The service layer
// treats any error here as a soft failure and falls back to the
// requester's manual tags.
type Client struct {
	url    string
	mylog  mylogger.Logger
	client *http.Client
}

var _ ports.ITagClassifier = (*Client)(nil)

func New(url string, mylog mylogger.Logger) *Client {
	return &Client{
		url:    url,
		mylog:  mylog,
		client: &http.Client{},
	}
}

type classifyRequest struct {
	Text  string `json:"text"`
	Photo string `json:"photo,omitempty"`
}

type classifyResponse struct {
	Tags []string `json:"tags"`
}

func (c *Client) GenerateTags(ctx context.Context, text, photo string) ([]string, error) {
	body, err := json.Marshal(classifyRequest{Text: text, Photo: photo})
	if err != nil {
		return nil, fmt.Errorf("marshal classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call classifier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var out classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode classifier response: %w", err)
	}
	return out.Tags, nil
}
