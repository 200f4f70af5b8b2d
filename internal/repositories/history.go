package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tqlx/internal/models"
	"github.com/desertthunder/tqlx/internal/shared"
)

const historyColumns = "id, sequence, operation, playbook_id, success, message, created_at"

// HistoryRepository implements models.Repository[*models.HistoryEntry].
type HistoryRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.HistoryEntry] = (*HistoryRepository)(nil)

// NewHistoryRepository creates a new HistoryRepository with the given database connection
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create inserts entry with a generated ID and sequence
func (r *HistoryRepository) Create(entry *models.HistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "history")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO history (` + historyColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		string(entry.Operation()),
		entry.PlaybookID(),
		entry.Success(),
		entry.Message(),
		entry.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}

	entry.SetID(id)
	entry.SetSequence(sequence)
	return nil
}

// Get retrieves an entry by ID
func (r *HistoryRepository) Get(id string) (*models.HistoryEntry, error) {
	row := r.db.QueryRow("SELECT "+historyColumns+" FROM history WHERE id = ?", id)

	entry, err := scanHistory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrHistoryNotFound, id)
	}
	return entry, err
}

// Delete removes an entry by ID
func (r *HistoryRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM history WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrHistoryNotFound, id)
	}

	return nil
}

// List retrieves entries newest first.
//
// Supported criteria: "playbook_id" (string), "operation" ([models.HistoryOperation] or string),
// "limit" (int, ignored when not positive).
func (r *HistoryRepository) List(criteria map[string]any) ([]*models.HistoryEntry, error) {
	query := "SELECT " + historyColumns + " FROM history WHERE 1 = 1"
	args := []any{}

	if playbookID, ok := criteria["playbook_id"].(string); ok && playbookID != "" {
		query += " AND playbook_id = ?"
		args = append(args, playbookID)
	}

	switch op := criteria["operation"].(type) {
	case models.HistoryOperation:
		query += " AND operation = ?"
		args = append(args, string(op))
	case string:
		if op != "" {
			query += " AND operation = ?"
			args = append(args, op)
		}
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []*models.HistoryEntry
	for rows.Next() {
		entry, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Record is a convenience wrapper that creates an entry from an operation outcome.
func (r *HistoryRepository) Record(op models.HistoryOperation, playbookID string, opErr error) (*models.HistoryEntry, error) {
	var message string
	if opErr != nil {
		message = opErr.Error()
	}

	entry := models.NewHistoryEntry(op, playbookID, opErr == nil, message)

	if err := r.Create(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHistory(s scanner) (*models.HistoryEntry, error) {
	var (
		id         string
		sequence   int
		operation  string
		playbookID string
		success    bool
		message    string
		createdAt  time.Time
	)

	if err := s.Scan(&id, &sequence, &operation, &playbookID, &success, &message, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan history entry: %w", err)
	}

	return models.RestoreHistoryEntry(id, sequence, models.HistoryOperation(operation), playbookID, success, message, createdAt), nil
}
