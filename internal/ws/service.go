package ws

import (
	"context"

	"github.com/google/uuid"

	"github.com/notegrove/notegrove/internal/ctxtr"
	"github.com/notegrove/notegrove/internal/entity"
	"github.com/notegrove/notegrove/pkg/logger/slogx"
)

type memberLister interface {
	ListGroupMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
}

// Service fans entity events out to the live sessions of the involved
// users. Delivery is unordered and best-effort: a failed or missing
// recipient never affects the mutation that triggered the event, and a
// disconnected client misses the event for good.
type Service struct {
	registry *Registry
	members  memberLister
}

func NewService(registry *Registry, members memberLister) *Service {
	return &Service{registry: registry, members: members}
}

type notePatchPayload struct {
	NoteID    uuid.UUID `json:"noteId"`
	NotePatch string    `json:"notePatch"`
	IsPatch   bool      `json:"isPatch"`
}

type noteIndexPayload struct {
	Note entity.NoteIndexView `json:"note"`
}

type noteRemovedPayload struct {
	NoteID uuid.UUID `json:"noteId"`
}

type fileUpdatedPayload struct {
	NoteID uuid.UUID            `json:"noteId"`
	File   entity.FileIndexView `json:"file"`
}

type fileRemovedPayload struct {
	NoteID uuid.UUID `json:"noteId"`
	FileID uuid.UUID `json:"fileId"`
}

type groupUpdatedPayload struct {
	Group entity.GroupIndexView `json:"group"`
}

type groupRemovedPayload struct {
	GroupID uuid.UUID `json:"groupId"`
}

// NoteUpdated pushes a changed or created note. Sessions subscribed to
// the note receive the content patch; everyone else gets the index
// view. When no content patch exists, subscribers fall back to the
// index view too.
func (s *Service) NoteUpdated(ctx context.Context, note entity.Note, contentPatch string) {
	userIDs, err := s.involvedUsers(ctx, note)
	if err != nil {
		slogx.Warn(ctx, "resolve involved users", slogx.NoteID(note.ID.String()), slogx.Err(err))
		return
	}

	s.publish(ctx, EventNoteUpdated, userIDs, func(sess *entity.Session) any {
		if contentPatch != "" && sess.SubscribedTo(note.ID) {
			return notePatchPayload{NoteID: note.ID, NotePatch: contentPatch, IsPatch: true}
		}
		return noteIndexPayload{Note: note.IndexView()}
	})
}

// NoteRemoved pushes the removal of a single note. Cascading deletes
// call this once per deleted note.
func (s *Service) NoteRemoved(ctx context.Context, note entity.Note) {
	userIDs, err := s.involvedUsers(ctx, note)
	if err != nil {
		slogx.Warn(ctx, "resolve involved users", slogx.NoteID(note.ID.String()), slogx.Err(err))
		return
	}

	s.publish(ctx, EventNoteRemoved, userIDs, func(*entity.Session) any {
		return noteRemovedPayload{NoteID: note.ID}
	})
}

func (s *Service) FileUpdated(ctx context.Context, note entity.Note, file entity.File) {
	userIDs, err := s.involvedUsers(ctx, note)
	if err != nil {
		slogx.Warn(ctx, "resolve involved users", slogx.NoteID(note.ID.String()), slogx.Err(err))
		return
	}

	s.publish(ctx, EventFileUpdated, userIDs, func(*entity.Session) any {
		return fileUpdatedPayload{NoteID: note.ID, File: file.IndexView()}
	})
}

func (s *Service) FileRemoved(ctx context.Context, note entity.Note, fileID uuid.UUID) {
	userIDs, err := s.involvedUsers(ctx, note)
	if err != nil {
		slogx.Warn(ctx, "resolve involved users", slogx.NoteID(note.ID.String()), slogx.Err(err))
		return
	}

	s.publish(ctx, EventFileRemoved, userIDs, func(*entity.Session) any {
		return fileRemovedPayload{NoteID: note.ID, FileID: fileID}
	})
}

// GroupUpdated pushes a group change to all members, shaping the
// payload per recipient because each member sees their own role.
func (s *Service) GroupUpdated(ctx context.Context, group entity.Group, members []entity.User) {
	userIDs := make([]uuid.UUID, 0, len(members))
	rolesByUser := make(map[uuid.UUID]entity.Role, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.ID)
		if role, ok := m.RoleIn(group.ID); ok {
			rolesByUser[m.ID] = role
		}
	}

	s.publish(ctx, EventGroupUpdated, userIDs, func(sess *entity.Session) any {
		return groupUpdatedPayload{Group: group.IndexView(rolesByUser[sess.UserID])}
	})
}

func (s *Service) GroupRemoved(ctx context.Context, groupID uuid.UUID, memberIDs []uuid.UUID) {
	s.publish(ctx, EventGroupRemoved, memberIDs, func(*entity.Session) any {
		return groupRemovedPayload{GroupID: groupID}
	})
}

// involvedUsers resolves the audience of a note: group members for a
// group note, the owner alone for an owned note, nobody for an orphan.
func (s *Service) involvedUsers(ctx context.Context, note entity.Note) ([]uuid.UUID, error) {
	if note.GroupID != nil {
		return s.members.ListGroupMemberIDs(ctx, *note.GroupID)
	}

	if note.OwnerID != nil {
		return []uuid.UUID{*note.OwnerID}, nil
	}

	return nil, nil
}

func (s *Service) publish(ctx context.Context, event string, userIDs []uuid.UUID, build func(*entity.Session) any) {
	skip := ctxtr.SessionID(ctx)

	for _, sess := range s.registry.sessionsForUsers(userIDs, skip) {
		msg := Message{Event: event, Data: build(&sess.Session)}
		if err := sess.conn.Send(msg); err != nil {
			slogx.Warn(ctx, "drop realtime event",
				slogx.SessionID(sess.ID),
				slogx.Err(err),
			)
		}
	}
}
