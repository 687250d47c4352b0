package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/notegrove/notegrove/internal/entity"
)

const noteColumns = `id, title, icon, icon_color, content, parent_id, owner_id, group_id, created_at, updated_at`

func scanNote(row pgx.Row) (entity.Note, error) {
	var n entity.Note
	err := row.Scan(
		&n.ID, &n.Title, &n.Icon, &n.IconColor, &n.Content,
		&n.ParentID, &n.OwnerID, &n.GroupID, &n.CreatedAt, &n.UpdatedAt,
	)

	return n, err
}

func (r *Repo) CreateNote(ctx context.Context, note entity.Note) (entity.Note, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO notes (title, icon, icon_color, content, parent_id, owner_id, group_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+noteColumns,
		note.Title, note.Icon, note.IconColor, note.Content,
		note.ParentID, note.OwnerID, note.GroupID,
	)

	created, err := scanNote(row)
	if err != nil {
		return entity.Note{}, fmt.Errorf("create note: %v", err)
	}

	return created, nil
}

func (r *Repo) GetNote(ctx context.Context, id uuid.UUID) (entity.Note, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1`, id)

	note, err := scanNote(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.Note{}, entity.ErrNotFound
		}
		return entity.Note{}, fmt.Errorf("get note: %v", err)
	}

	return note, nil
}

// ListNotesForUser returns every note owned by the user or belonging
// to one of the user's groups.
func (r *Repo) ListNotesForUser(ctx context.Context, userID uuid.UUID, groupIDs []uuid.UUID) ([]entity.Note, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+noteColumns+` FROM notes
		 WHERE owner_id = $1 OR group_id = ANY($2::uuid[])
		 ORDER BY created_at`,
		userID, groupIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes for user: %v", err)
	}
	defer rows.Close()

	var notes []entity.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %v", err)
		}
		notes = append(notes, note)
	}

	return notes, rows.Err()
}

// ListNotesByGroup returns every note belonging to the group.
func (r *Repo) ListNotesByGroup(ctx context.Context, groupID uuid.UUID) ([]entity.Note, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE group_id = $1 ORDER BY created_at`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes by group: %v", err)
	}
	defer rows.Close()

	var notes []entity.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %v", err)
		}
		notes = append(notes, note)
	}

	return notes, rows.Err()
}

// UpdateNoteFields persists the mutable fields of the note.
func (r *Repo) UpdateNoteFields(ctx context.Context, note entity.Note) error {
	_, err := r.db.Exec(ctx,
		`UPDATE notes
		 SET title = $2, icon = $3, icon_color = $4, content = $5, updated_at = now()
		 WHERE id = $1`,
		note.ID, note.Title, note.Icon, note.IconColor, note.Content,
	)
	if err != nil {
		return fmt.Errorf("update note fields: %v", err)
	}

	return nil
}

// ListChildIDs returns the ids of the direct children of any of the
// given notes. One call covers a whole tree level.
func (r *Repo) ListChildIDs(ctx context.Context, parentIDs []uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM notes WHERE parent_id = ANY($1::uuid[])`, parentIDs)
	if err != nil {
		return nil, fmt.Errorf("list child ids: %v", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan child id: %v", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *Repo) DeleteNote(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete note: %v", err)
	}

	return nil
}
