package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/tqlx/internal/formatter"
	"github.com/desertthunder/tqlx/internal/models"
	"github.com/desertthunder/tqlx/internal/shared"
	"github.com/urfave/cli/v3"
)

// historyView is the JSON shape of a history entry.
type historyView struct {
	ID         string                  `json:"id"`
	Sequence   int                     `json:"sequence"`
	Operation  models.HistoryOperation `json:"operation"`
	PlaybookID string                  `json:"playbookId"`
	Success    bool                    `json:"success"`
	Message    string                  `json:"message,omitempty"`
	CreatedAt  string                  `json:"createdAt"`
}

// History lists recorded create/update outcomes, newest first, or erases them with --clear.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	limit := int(cmd.Int("limit"))
	if limit < 0 {
		return fmt.Errorf("%w: --limit must not be negative", shared.ErrInvalidArgument)
	}

	repo, err := r.historyRepo()
	if err != nil {
		return err
	}

	if cmd.Bool("clear") {
		if err := shared.ResetDatabase(r.historyDB); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		r.logger.Info("history cleared")
		if r.jsonOutput {
			return writeResult(r, []historyView{}, nil)
		}
		return r.writePlain("%s History cleared\n", r.palette.OK("✓"))
	}

	entries, err := repo.List(map[string]any{
		"limit":       limit,
		"playbook_id": cmd.String("playbook"),
	})
	if err != nil {
		return err
	}

	if r.jsonOutput {
		views := make([]historyView, 0, len(entries))
		for _, e := range entries {
			views = append(views, historyView{
				ID:         e.ID(),
				Sequence:   e.Sequence(),
				Operation:  e.Operation(),
				PlaybookID: e.PlaybookID(),
				Success:    e.Success(),
				Message:    e.Message(),
				CreatedAt:  e.CreatedAt().UTC().Format(time.RFC3339),
			})
		}
		return writeResult(r, views, nil)
	}

	return r.writeBytes(formatter.HistoryToText(entries))
}
