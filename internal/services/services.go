// package services defines interface PlaybookAPI for the TextQL playbook service
// and its HTTP implementation [Client]
package services

import (
	"context"

	"github.com/desertthunder/tqlx/internal/models"
)

// PlaybookAPI is the set of operations the command interface needs from the playbook service.
type PlaybookAPI interface {
	// CreatePlaybook allocates a bare playbook shell identified by playbookID.
	CreatePlaybook(ctx context.Context, playbookID string) (*CreatePlaybookResponse, error)

	// UpdatePlaybook replaces every field of an existing playbook.
	UpdatePlaybook(ctx context.Context, req models.UpdatePlaybookRequest) (*models.Playbook, error)

	// GetConnectors retrieves the connectors visible to the API key.
	GetConnectors(ctx context.Context) (*GetConnectorsResponse, error)

	// ListConnectors is GetConnectors without the response envelope.
	ListConnectors(ctx context.Context) ([]models.Connector, error)

	// FindConnectorByName returns the first connector whose name contains name, ignoring case.
	// Returns nil without error when nothing matches.
	FindConnectorByName(ctx context.Context, name string) (*models.Connector, error)

	// CreateCompletePlaybook creates a playbook and then configures it with a full update.
	CreateCompletePlaybook(ctx context.Context, params models.CompletePlaybookParams) (*models.Playbook, error)
}

var _ PlaybookAPI = (*Client)(nil)
