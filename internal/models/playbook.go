package models

import (
	"fmt"
	"strings"
	"time"
)

// PlaybookStatus is the activation state of a playbook.
type PlaybookStatus string

const (
	StatusActive   PlaybookStatus = "ACTIVE"
	StatusInactive PlaybookStatus = "INACTIVE"
)

// ParadigmType classifies how a playbook is executed. Only SQL is used.
type ParadigmType string

const ParadigmSQL ParadigmType = "SQL"

// TriggerType classifies what fires a playbook. Only CRON is used.
type TriggerType string

const TriggerCron TriggerType = "CRON"

// DefaultCronString is the schedule used when neither a flag nor a persisted default supplies one.
const DefaultCronString = "0 0 * * *"

// ParseStatus converts user input into a [PlaybookStatus], ignoring case and surrounding space.
//
// An empty string yields [StatusActive].
func ParseStatus(s string) (PlaybookStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(StatusActive):
		return StatusActive, nil
	case string(StatusInactive):
		return StatusInactive, nil
	default:
		return "", fmt.Errorf("unknown playbook status %q (want ACTIVE or INACTIVE)", s)
	}
}

// ParadigmOptions holds the data source a SQL playbook runs against.
type ParadigmOptions struct {
	ConnectorID int `json:"connectorId"`
}

// Playbook is a scheduled, parameterized SQL query bound to a connector, a cron trigger and a notification list.
type Playbook struct {
	ID              string          `json:"id,omitempty"`
	PlaybookID      string          `json:"playbookId,omitempty"`
	Prompt          string          `json:"prompt,omitempty"`
	Name            string          `json:"name,omitempty"`
	EmailAddresses  []string        `json:"emailAddresses,omitempty"`
	Status          PlaybookStatus  `json:"status,omitempty"`
	ParadigmType    ParadigmType    `json:"paradigmType,omitempty"`
	ParadigmOptions ParadigmOptions `json:"paradigmOptions"`
	TriggerType     TriggerType     `json:"triggerType,omitempty"`
	CronString      string          `json:"cronString,omitempty"`
}

// UpdatePlaybookRequest is the full-replace payload for an existing playbook identified by PlaybookID.
//
// Every field is sent; omitted values overwrite the server state.
type UpdatePlaybookRequest struct {
	PlaybookID      string          `json:"playbookId"`
	Prompt          string          `json:"prompt"`
	Name            string          `json:"name"`
	EmailAddresses  []string        `json:"emailAddresses"`
	Status          PlaybookStatus  `json:"status"`
	ParadigmType    ParadigmType    `json:"paradigmType"`
	ParadigmOptions ParadigmOptions `json:"paradigmOptions"`
	TriggerType     TriggerType     `json:"triggerType"`
	CronString      string          `json:"cronString"`
}

// CompletePlaybookParams are the inputs for creating and fully configuring a playbook in one workflow.
type CompletePlaybookParams struct {
	PlaybookID     string
	Prompt         string
	Name           string
	EmailAddresses []string
	ConnectorID    int
	CronString     string         // Defaults to [DefaultCronString]
	Status         PlaybookStatus // Defaults to [StatusActive]
}

// UpdateRequest builds the update payload for p, filling the cron string and status defaults
// and fixing the paradigm and trigger types to SQL/CRON. A nil email list is sent as an empty list.
func (p CompletePlaybookParams) UpdateRequest() UpdatePlaybookRequest {
	cron := p.CronString
	if cron == "" {
		cron = DefaultCronString
	}
	status := p.Status
	if status == "" {
		status = StatusActive
	}
	emails := p.EmailAddresses
	if emails == nil {
		emails = []string{}
	}

	return UpdatePlaybookRequest{
		PlaybookID:      p.PlaybookID,
		Prompt:          p.Prompt,
		Name:            p.Name,
		EmailAddresses:  emails,
		Status:          status,
		ParadigmType:    ParadigmSQL,
		ParadigmOptions: ParadigmOptions{ConnectorID: p.ConnectorID},
		TriggerType:     TriggerCron,
		CronString:      cron,
	}
}

// Connector is a registered reference to an external database or data source.
type Connector struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}
