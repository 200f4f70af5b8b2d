package services

import (
	"context"
	"strings"

	"github.com/desertthunder/tqlx/internal/models"
)

// GetConnectorsResponse is the connector listing envelope.
type GetConnectorsResponse struct {
	Connectors []models.Connector `json:"connectors"`
}

// GetConnectors retrieves all connectors visible to the API key. The request body is empty.
func (c *Client) GetConnectors(ctx context.Context) (*GetConnectorsResponse, error) {
	var resp GetConnectorsResponse
	if err := c.call(ctx, GetConnectorsPath, struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListConnectors returns the connectors in the order the service sent them.
func (c *Client) ListConnectors(ctx context.Context) ([]models.Connector, error) {
	resp, err := c.GetConnectors(ctx)
	if err != nil {
		return nil, err
	}
	return resp.Connectors, nil
}

// FindConnectorByName lists connectors and returns the first whose name contains name, ignoring case.
//
// Returns (nil, nil) when nothing matches and the listing error when the listing fails.
func (c *Client) FindConnectorByName(ctx context.Context, name string) (*models.Connector, error) {
	connectors, err := c.ListConnectors(ctx)
	if err != nil {
		return nil, err
	}
	return MatchConnector(connectors, name), nil
}

// MatchConnector is the matching rule of [Client.FindConnectorByName]: first case-insensitive
// substring match in list order. A blank name matches nothing.
func MatchConnector(connectors []models.Connector, name string) *models.Connector {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil
	}

	for i := range connectors {
		if strings.Contains(strings.ToLower(connectors[i].Name), needle) {
			return &connectors[i]
		}
	}
	return nil
}
