package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/notegrove/notegrove/internal/entity"
)

func (r *Repo) AppendHistory(ctx context.Context, entry entity.HistoryEntry) (entity.HistoryEntry, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO note_history (note_id, author_id, changes)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		entry.NoteID, entry.AuthorID, entry.Changes,
	)

	if err := row.Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return entity.HistoryEntry{}, fmt.Errorf("append history: %v", err)
	}

	return entry, nil
}

// ListHistory returns a note's history entries in chronological order.
func (r *Repo) ListHistory(ctx context.Context, noteID uuid.UUID) ([]entity.HistoryEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, note_id, author_id, changes, created_at
		 FROM note_history
		 WHERE note_id = $1
		 ORDER BY created_at, id`,
		noteID,
	)
	if err != nil {
		return nil, fmt.Errorf("list history: %v", err)
	}
	defer rows.Close()

	var entries []entity.HistoryEntry
	for rows.Next() {
		var e entity.HistoryEntry
		if err := rows.Scan(&e.ID, &e.NoteID, &e.AuthorID, &e.Changes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %v", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
