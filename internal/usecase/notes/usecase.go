package notes

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/notegrove/notegrove/internal/entity"
	"github.com/notegrove/notegrove/pkg/diffx"
	"github.com/notegrove/notegrove/pkg/logger/slogx"
)

type notesRepository interface {
	CreateNote(ctx context.Context, note entity.Note) (entity.Note, error)
	GetNote(ctx context.Context, id uuid.UUID) (entity.Note, error)
	ListNotesForUser(ctx context.Context, userID uuid.UUID, groupIDs []uuid.UUID) ([]entity.Note, error)
	UpdateNoteFields(ctx context.Context, note entity.Note) error
	ListChildIDs(ctx context.Context, parentIDs []uuid.UUID) ([]uuid.UUID, error)
	DeleteNote(ctx context.Context, id uuid.UUID) error
}

type historyRepository interface {
	AppendHistory(ctx context.Context, entry entity.HistoryEntry) (entity.HistoryEntry, error)
	ListHistory(ctx context.Context, noteID uuid.UUID) ([]entity.HistoryEntry, error)
}

type filesRepository interface {
	CreateFile(ctx context.Context, file entity.File) (entity.File, error)
	GetFile(ctx context.Context, id uuid.UUID) (entity.File, error)
	ListFilesByNote(ctx context.Context, noteID uuid.UUID) ([]entity.File, error)
	DeleteFile(ctx context.Context, id uuid.UUID) error
}

type usersRepository interface {
	GetUser(ctx context.Context, id uuid.UUID) (entity.User, error)
}

type notifier interface {
	NoteUpdated(ctx context.Context, note entity.Note, contentPatch string)
	NoteRemoved(ctx context.Context, note entity.Note)
	FileUpdated(ctx context.Context, note entity.Note, file entity.File)
	FileRemoved(ctx context.Context, note entity.Note, fileID uuid.UUID)
}

type transactor interface {
	RunInTx(ctx context.Context, f func(context.Context) error) error
}

//go:generate go run github.com/kazhuravlev/options-gen/cmd/options-gen@v0.55.2 -out-filename=usecase_options.gen.go -from-struct=Options
type Options struct {
	repo     notesRepository   `option:"mandatory" validate:"required"`
	history  historyRepository `option:"mandatory" validate:"required"`
	files    filesRepository   `option:"mandatory" validate:"required"`
	users    usersRepository   `option:"mandatory" validate:"required"`
	notifier notifier          `option:"mandatory" validate:"required"`
	tx       transactor        `option:"mandatory" validate:"required"`
}

type Usecase struct {
	Options
}

func New(opts Options) (*Usecase, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("validate notes usecase options: %v", err)
	}

	return &Usecase{Options: opts}, nil
}

// CreateParams carries the fields of a new note.
type CreateParams struct {
	Title     string
	Icon      string
	IconColor string
	Content   string
	ParentID  *uuid.UUID
	GroupID   *uuid.UUID
}

// CreateNote creates a note owned by the user, or by a group. A note
// under a group-owned parent always inherits the parent's group, even
// when the request names a different one; a personally owned parent
// only accepts personally owned children.
func (u *Usecase) CreateNote(ctx context.Context, userID uuid.UUID, params CreateParams) (entity.Note, error) {
	user, err := u.users.GetUser(ctx, userID)
	if err != nil {
		return entity.Note{}, fmt.Errorf("usecase create note: %w", err)
	}

	groupID := params.GroupID

	if params.ParentID != nil {
		parent, err := u.visibleNote(ctx, &user, *params.ParentID)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				return entity.Note{}, entity.NewValidationError("parentId", "parent note not found")
			}
			return entity.Note{}, fmt.Errorf("usecase create note: %w", err)
		}

		if parent.GroupID != nil {
			groupID = parent.GroupID
		} else if groupID != nil {
			// A personally owned parent cannot hold a group-owned
			// child; ownership follows the parent.
			return entity.Note{}, entity.NewValidationError("groupId", "parent note is not shared")
		}
	}

	note := entity.Note{
		Title:     params.Title,
		Icon:      params.Icon,
		IconColor: params.IconColor,
		Content:   params.Content,
		ParentID:  params.ParentID,
	}

	if groupID != nil {
		if _, ok := user.RoleIn(*groupID); !ok {
			return entity.Note{}, entity.NewValidationError("groupId", "group not found")
		}
		note.GroupID = groupID
	} else {
		note.OwnerID = &user.ID
	}

	created, err := u.repo.CreateNote(ctx, note)
	if err != nil {
		return entity.Note{}, fmt.Errorf("usecase create note: %w", err)
	}

	u.notifier.NoteUpdated(ctx, created, "")

	slogx.Info(ctx, "note created", slogx.NoteID(created.ID.String()), slogx.UserID(userID.String()))

	return created, nil
}

// GetNote returns the note when the user may see it; an invisible note
// is indistinguishable from a missing one.
func (u *Usecase) GetNote(ctx context.Context, userID, noteID uuid.UUID) (entity.Note, error) {
	user, err := u.users.GetUser(ctx, userID)
	if err != nil {
		return entity.Note{}, fmt.Errorf("usecase get note: %w", err)
	}

	note, err := u.visibleNote(ctx, &user, noteID)
	if err != nil {
		return entity.Note{}, fmt.Errorf("usecase get note: %w", err)
	}

	files, err := u.files.ListFilesByNote(ctx, noteID)
	if err != nil {
		return entity.Note{}, fmt.Errorf("usecase get note: %w", err)
	}
	for _, f := range files {
		note.FileIDs = append(note.FileIDs, f.ID)
	}

	return note, nil
}

// ListNotes returns every note visible to the user.
func (u *Usecase) ListNotes(ctx context.Context, userID uuid.UUID) ([]entity.Note, error) {
	user, err := u.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("usecase list notes: %w", err)
	}

	notes, err := u.repo.ListNotesForUser(ctx, userID, user.GroupIDs())
	if err != nil {
		return nil, fmt.Errorf("usecase list notes: %w", err)
	}

	return notes, nil
}

// UpdateParams carries a partial note update. Nil fields are left
// untouched. ContentPatch is a patch against the client's last known
// content, not replacement text.
type UpdateParams struct {
	Title        *string
	Icon         *string
	IconColor    *string
	ContentPatch *string
}

// UpdateNote applies a partial update. A content patch that no longer
// fits the stored text aborts the whole update with a conflict and
// persists nothing; the client is expected to resynchronize.
//
// Two racing updates to the same note are not serialized here: the
// loser's patch fails against the winner's committed text, which is
// the engine's only (best-effort) concurrency guard.
func (u *Usecase) UpdateNote(ctx context.Context, userID, noteID uuid.UUID, params UpdateParams) (entity.Note, error) {
	user, err := u.users.GetUser(ctx, userID)
	if err != nil {
		return entity.Note{}, fmt.Errorf("usecase update note: %w", err)
	}

	note, err := u.visibleNote(ctx, &user, noteID)
	if err != nil {
		return entity.Note{}, fmt.Errorf("usecase update note: %w", err)
	}

	if !note.EditableBy(&user) {
		return entity.Note{}, entity.ErrForbidden
	}

	// Previous values are captured before assignment; the entity has
	// no staged copy.
	var changes []entity.FieldChange
	track := func(field, prev, next string) {
		if prev != next {
			changes = append(changes, entity.FieldChange{Field: field, Diff: diffx.Diff(prev, next)})
		}
	}

	if params.Title != nil {
		track("title", note.Title, *params.Title)
		note.Title = *params.Title
	}
	if params.Icon != nil {
		track("icon", note.Icon, *params.Icon)
		note.Icon = *params.Icon
	}
	if params.IconColor != nil {
		track("iconColor", note.IconColor, *params.IconColor)
		note.IconColor = *params.IconColor
	}

	var appliedPatch string
	if params.ContentPatch != nil {
		result, ok := diffx.ApplyPatch(*params.ContentPatch, note.Content)
		if !ok {
			return entity.Note{}, fmt.Errorf("apply content patch: %w", entity.ErrConflict)
		}

		track("content", note.Content, result)
		note.Content = result
		appliedPatch = *params.ContentPatch
	}

	err = u.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := u.repo.UpdateNoteFields(ctx, note); err != nil {
			return err
		}

		// No tracked field changed, nothing to record.
		if len(changes) == 0 {
			return nil
		}

		_, err := u.history.AppendHistory(ctx, entity.HistoryEntry{
			NoteID:   note.ID,
			AuthorID: userID,
			Changes:  changes,
		})

		return err
	})
	if err != nil {
		return entity.Note{}, fmt.Errorf("usecase update note: %w", err)
	}

	u.notifier.NoteUpdated(ctx, note, appliedPatch)

	slogx.Info(ctx, "note updated", slogx.NoteID(note.ID.String()), slogx.UserID(userID.String()))

	return note, nil
}

// DescendantIDs walks the parent edges downward breadth-first, one
// query per tree level. Arbitrary depth is fine: there is no
// recursion, and a seen-set guards against malformed cycles.
func (u *Usecase) DescendantIDs(ctx context.Context, noteID uuid.UUID) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]struct{}{noteID: {}}

	var descendants []uuid.UUID
	frontier := []uuid.UUID{noteID}

	for len(frontier) > 0 {
		children, err := u.repo.ListChildIDs(ctx, frontier)
		if err != nil {
			return nil, fmt.Errorf("descendant ids: %w", err)
		}

		frontier = frontier[:0]
		for _, id := range children {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			descendants = append(descendants, id)
			frontier = append(frontier, id)
		}
	}

	return descendants, nil
}

// DeleteNote removes the note and its whole subtree. Each note is
// removed individually, deepest first, so attached files are released
// and a removal event goes out per note rather than once per subtree.
func (u *Usecase) DeleteNote(ctx context.Context, userID, noteID uuid.UUID) error {
	user, err := u.users.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("usecase delete note: %w", err)
	}

	note, err := u.visibleNote(ctx, &user, noteID)
	if err != nil {
		return fmt.Errorf("usecase delete note: %w", err)
	}

	if !note.EditableBy(&user) {
		return entity.ErrForbidden
	}

	descendants, err := u.DescendantIDs(ctx, note.ID)
	if err != nil {
		return fmt.Errorf("usecase delete note: %w", err)
	}

	// Children before parents: descendants are in BFS order, so the
	// reverse order never deletes a note before its subtree.
	ids := append([]uuid.UUID{note.ID}, descendants...)
	for i := len(ids) - 1; i >= 0; i-- {
		if err := u.removeOne(ctx, ids[i]); err != nil {
			return fmt.Errorf("usecase delete note: %w", err)
		}
	}

	slogx.Info(ctx, "note subtree removed",
		slogx.NoteID(note.ID.String()),
		slogx.UserID(userID.String()),
	)

	return nil
}

func (u *Usecase) removeOne(ctx context.Context, id uuid.UUID) error {
	note, err := u.repo.GetNote(ctx, id)
	if err != nil {
		return err
	}

	files, err := u.files.ListFilesByNote(ctx, id)
	if err != nil {
		return err
	}

	for _, f := range files {
		if err := u.files.DeleteFile(ctx, f.ID); err != nil {
			return err
		}
		u.notifier.FileRemoved(ctx, note, f.ID)
	}

	if err := u.repo.DeleteNote(ctx, id); err != nil {
		return err
	}

	u.notifier.NoteRemoved(ctx, note)

	return nil
}

// History returns the note's change log in chronological order; the
// slice index addresses entries for the detail view.
func (u *Usecase) History(ctx context.Context, userID, noteID uuid.UUID) ([]entity.HistoryEntry, error) {
	user, err := u.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("usecase history: %w", err)
	}

	if _, err := u.visibleNote(ctx, &user, noteID); err != nil {
		return nil, fmt.Errorf("usecase history: %w", err)
	}

	entries, err := u.history.ListHistory(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("usecase history: %w", err)
	}

	return entries, nil
}

// HistoryDetail builds the before/after view for one history entry.
func (u *Usecase) HistoryDetail(ctx context.Context, userID, noteID uuid.UUID, index int) (entity.HistoryDetail, error) {
	entries, err := u.History(ctx, userID, noteID)
	if err != nil {
		return entity.HistoryDetail{}, err
	}

	detail, ok := entity.DetailAt(entries, index)
	if !ok {
		return entity.HistoryDetail{}, entity.ErrNotFound
	}

	return detail, nil
}

// AttachFileRef registers an uploaded file's metadata on the note.
// The blob itself lives with the external file service.
func (u *Usecase) AttachFileRef(ctx context.Context, userID, noteID uuid.UUID, fileName, mimeType string, size int64) (entity.File, error) {
	user, err := u.users.GetUser(ctx, userID)
	if err != nil {
		return entity.File{}, fmt.Errorf("usecase attach file: %w", err)
	}

	note, err := u.visibleNote(ctx, &user, noteID)
	if err != nil {
		return entity.File{}, fmt.Errorf("usecase attach file: %w", err)
	}

	if !note.EditableBy(&user) {
		return entity.File{}, entity.ErrForbidden
	}

	file, err := u.files.CreateFile(ctx, entity.File{
		NoteID:   noteID,
		FileName: fileName,
		MimeType: mimeType,
		Size:     size,
	})
	if err != nil {
		return entity.File{}, fmt.Errorf("usecase attach file: %w", err)
	}

	u.notifier.FileUpdated(ctx, note, file)

	return file, nil
}

// RemoveFileRef detaches a file from the note.
func (u *Usecase) RemoveFileRef(ctx context.Context, userID, noteID, fileID uuid.UUID) error {
	user, err := u.users.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("usecase remove file: %w", err)
	}

	note, err := u.visibleNote(ctx, &user, noteID)
	if err != nil {
		return fmt.Errorf("usecase remove file: %w", err)
	}

	if !note.EditableBy(&user) {
		return entity.ErrForbidden
	}

	file, err := u.files.GetFile(ctx, fileID)
	if err != nil {
		return fmt.Errorf("usecase remove file: %w", err)
	}
	if file.NoteID != noteID {
		return entity.ErrNotFound
	}

	if err := u.files.DeleteFile(ctx, fileID); err != nil {
		return fmt.Errorf("usecase remove file: %w", err)
	}

	u.notifier.FileRemoved(ctx, note, fileID)

	return nil
}

// visibleNote loads a note and hides its existence from users who may
// not see it.
func (u *Usecase) visibleNote(ctx context.Context, user *entity.User, noteID uuid.UUID) (entity.Note, error) {
	note, err := u.repo.GetNote(ctx, noteID)
	if err != nil {
		return entity.Note{}, err
	}

	if !note.VisibleTo(user) {
		return entity.Note{}, entity.ErrNotFound
	}

	return note, nil
}
