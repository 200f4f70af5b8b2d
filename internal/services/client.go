// HTTP client for the TextQL playbook service RPC endpoints
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tqlx/internal/shared"
)

const (
	playbookServicePath  = "/rpc/public/textql.rpc.public.playbook.PlaybookService"
	connectorServicePath = "/rpc/public/textql.rpc.public.connector.ConnectorService"

	CreatePlaybookPath = playbookServicePath + "/CreatePlaybook"
	UpdatePlaybookPath = playbookServicePath + "/UpdatePlaybook"
	GetConnectorsPath  = connectorServicePath + "/GetConnectors"

	authScheme = "ApiKey"
)

// ClientConfig holds the settings a [Client] is built from. It is copied at construction.
type ClientConfig struct {
	APIKey     string
	BaseURL    string       // Defaults to [shared.DefaultBaseURL]
	HTTPClient *http.Client // Defaults to [http.DefaultClient]; no timeout is configured
	Logger     *log.Logger  // Defaults to a discarding logger
}

// Client performs authenticated JSON requests against the playbook service.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates a client for the playbook service. An empty API key is rejected.
func NewClient(cfg ClientConfig) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, shared.ErrMissingAPIKey
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = shared.DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}, nil
}

// BaseURL returns the origin requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// call POSTs body as JSON to path and decodes a 2xx response into out (if non-nil).
//
// Every failure is returned as an [*APIError].
func (c *Client) call(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &APIError{Message: fmt.Sprintf("failed to marshal request: %v", err), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return newTransportError(err)
	}
	req.Header.Set("Authorization", authScheme+" "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("rpc request", "path", path, "bytes", len(payload))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("rpc transport failure", "path", path, "error", err)
		return newTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return newTransportError(fmt.Errorf("failed to read response: %w", err))
	}

	c.logger.Debug("rpc response", "path", path, "status", resp.StatusCode, "bytes", len(raw))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseErrorResponse(resp.StatusCode, resp.Status, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{
			Message: fmt.Sprintf("failed to decode response: %v", err),
			Code:    CodeMalformedResponse,
			Status:  resp.StatusCode,
			Err:     err,
		}
	}
	return nil
}
