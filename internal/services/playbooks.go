package services

import (
	"context"
	"encoding/json"

	"github.com/desertthunder/tqlx/internal/models"
)

// CreatePlaybookResponse carries the identifier of a newly allocated playbook.
type CreatePlaybookResponse struct {
	ID string `json:"id"`
}

type createPlaybookRequest struct {
	Playbook struct {
		ID string `json:"id"`
	} `json:"playbook"`
}

// CreatePlaybook asks the service to allocate a bare playbook shell carrying only playbookID.
//
// The service may answer with {"id"} or {"playbook":{"id"}}; when it returns no id, the caller's id is used.
func (c *Client) CreatePlaybook(ctx context.Context, playbookID string) (*CreatePlaybookResponse, error) {
	var body createPlaybookRequest
	body.Playbook.ID = playbookID

	var resp struct {
		ID       string                  `json:"id"`
		Playbook *CreatePlaybookResponse `json:"playbook"`
	}
	if err := c.call(ctx, CreatePlaybookPath, body, &resp); err != nil {
		return nil, err
	}

	id := resp.ID
	if id == "" && resp.Playbook != nil {
		id = resp.Playbook.ID
	}
	if id == "" {
		id = playbookID
	}

	return &CreatePlaybookResponse{ID: id}, nil
}

// UpdatePlaybook replaces the playbook identified by req.PlaybookID with req.
//
// The response may be the playbook itself or wrapped as {"playbook":{...}}. An empty acknowledgement
// yields the submitted record.
func (c *Client) UpdatePlaybook(ctx context.Context, req models.UpdatePlaybookRequest) (*models.Playbook, error) {
	var raw json.RawMessage
	if err := c.call(ctx, UpdatePlaybookPath, req, &raw); err != nil {
		return nil, err
	}

	playbook, err := decodePlaybook(raw)
	if err != nil {
		return nil, &APIError{Message: "failed to decode playbook: " + err.Error(), Code: CodeMalformedResponse, Err: err}
	}
	if playbook.PlaybookID == "" && playbook.ID == "" {
		playbook = playbookFromRequest(req)
	}

	return playbook, nil
}

// CreateCompletePlaybook creates a playbook and configures it with a full update.
//
// A failed create is returned as-is and the update is never attempted; otherwise the update outcome is returned verbatim.
func (c *Client) CreateCompletePlaybook(ctx context.Context, params models.CompletePlaybookParams) (*models.Playbook, error) {
	created, err := c.CreatePlaybook(ctx, params.PlaybookID)
	if err != nil {
		c.logger.Debug("create failed, skipping update", "playbook", params.PlaybookID, "error", err)
		return nil, err
	}

	c.logger.Debug("playbook created", "playbook", params.PlaybookID, "id", created.ID)

	return c.UpdatePlaybook(ctx, params.UpdateRequest())
}

func decodePlaybook(raw json.RawMessage) (*models.Playbook, error) {
	var playbook models.Playbook
	if len(raw) == 0 {
		return &playbook, nil
	}

	var wrapped struct {
		Playbook *models.Playbook `json:"playbook"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Playbook != nil {
		return wrapped.Playbook, nil
	}

	if err := json.Unmarshal(raw, &playbook); err != nil {
		return nil, err
	}
	return &playbook, nil
}

func playbookFromRequest(req models.UpdatePlaybookRequest) *models.Playbook {
	return &models.Playbook{
		PlaybookID:      req.PlaybookID,
		Prompt:          req.Prompt,
		Name:            req.Name,
		EmailAddresses:  req.EmailAddresses,
		Status:          req.Status,
		ParadigmType:    req.ParadigmType,
		ParadigmOptions: req.ParadigmOptions,
		TriggerType:     req.TriggerType,
		CronString:      req.CronString,
	}
}
