package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/notegrove/notegrove/internal/entity"
)

func (r *Repo) CreateFile(ctx context.Context, file entity.File) (entity.File, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO note_files (note_id, file_name, mime_type, size)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		file.NoteID, file.FileName, file.MimeType, file.Size,
	)

	if err := row.Scan(&file.ID, &file.CreatedAt); err != nil {
		return entity.File{}, fmt.Errorf("create file: %v", err)
	}

	return file, nil
}

func (r *Repo) GetFile(ctx context.Context, id uuid.UUID) (entity.File, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, note_id, file_name, mime_type, size, created_at
		 FROM note_files WHERE id = $1`, id)

	var f entity.File
	if err := row.Scan(&f.ID, &f.NoteID, &f.FileName, &f.MimeType, &f.Size, &f.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.File{}, entity.ErrNotFound
		}
		return entity.File{}, fmt.Errorf("get file: %v", err)
	}

	return f, nil
}

func (r *Repo) ListFilesByNote(ctx context.Context, noteID uuid.UUID) ([]entity.File, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, note_id, file_name, mime_type, size, created_at
		 FROM note_files WHERE note_id = $1 ORDER BY created_at`,
		noteID,
	)
	if err != nil {
		return nil, fmt.Errorf("list files by note: %v", err)
	}
	defer rows.Close()

	var files []entity.File
	for rows.Next() {
		var f entity.File
		if err := rows.Scan(&f.ID, &f.NoteID, &f.FileName, &f.MimeType, &f.Size, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan file: %v", err)
		}
		files = append(files, f)
	}

	return files, rows.Err()
}

func (r *Repo) DeleteFile(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM note_files WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete file: %v", err)
	}

	return nil
}
