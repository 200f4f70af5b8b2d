package models

import (
	"fmt"
	"time"
)

// HistoryOperation names the command that produced a [HistoryEntry].
type HistoryOperation string

const (
	OperationCreate HistoryOperation = "create"
	OperationUpdate HistoryOperation = "update"
)

// HistoryEntry records the outcome of a playbook create or update against the service.
type HistoryEntry struct {
	id         string
	sequence   int
	operation  HistoryOperation
	playbookID string
	success    bool
	message    string
	createdAt  time.Time
}

var _ Model = (*HistoryEntry)(nil)

// NewHistoryEntry creates an entry stamped with the current time. The ID is assigned on insert.
func NewHistoryEntry(op HistoryOperation, playbookID string, success bool, message string) *HistoryEntry {
	return &HistoryEntry{
		operation:  op,
		playbookID: playbookID,
		success:    success,
		message:    message,
		createdAt:  time.Now().UTC(),
	}
}

// RestoreHistoryEntry rebuilds an entry read back from storage.
func RestoreHistoryEntry(id string, sequence int, op HistoryOperation, playbookID string, success bool, message string, createdAt time.Time) *HistoryEntry {
	return &HistoryEntry{
		id:         id,
		sequence:   sequence,
		operation:  op,
		playbookID: playbookID,
		success:    success,
		message:    message,
		createdAt:  createdAt,
	}
}

func (h *HistoryEntry) ID() string                  { return h.id }
func (h *HistoryEntry) SetID(id string)             { h.id = id }
func (h *HistoryEntry) Sequence() int               { return h.sequence }
func (h *HistoryEntry) SetSequence(seq int)         { h.sequence = seq }
func (h *HistoryEntry) Operation() HistoryOperation { return h.operation }
func (h *HistoryEntry) PlaybookID() string          { return h.playbookID }
func (h *HistoryEntry) Success() bool               { return h.success }
func (h *HistoryEntry) Message() string             { return h.message }
func (h *HistoryEntry) CreatedAt() time.Time        { return h.createdAt }

// Validate checks the operation kind and the playbook identifier.
func (h *HistoryEntry) Validate() error {
	switch h.operation {
	case OperationCreate, OperationUpdate:
	default:
		return fmt.Errorf("invalid history operation %q", h.operation)
	}
	if h.playbookID == "" {
		return fmt.Errorf("playbook id is required")
	}
	return nil
}
