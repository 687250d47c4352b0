// Package api exposes the service over JSON HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/notegrove/notegrove/internal/entity"
	notesuc "github.com/notegrove/notegrove/internal/usecase/notes"
)

type notesUsecase interface {
	CreateNote(ctx context.Context, userID uuid.UUID, params notesuc.CreateParams) (entity.Note, error)
	GetNote(ctx context.Context, userID, noteID uuid.UUID) (entity.Note, error)
	ListNotes(ctx context.Context, userID uuid.UUID) ([]entity.Note, error)
	UpdateNote(ctx context.Context, userID, noteID uuid.UUID, params notesuc.UpdateParams) (entity.Note, error)
	DeleteNote(ctx context.Context, userID, noteID uuid.UUID) error
	History(ctx context.Context, userID, noteID uuid.UUID) ([]entity.HistoryEntry, error)
	HistoryDetail(ctx context.Context, userID, noteID uuid.UUID, index int) (entity.HistoryDetail, error)
	AttachFileRef(ctx context.Context, userID, noteID uuid.UUID, fileName, mimeType string, size int64) (entity.File, error)
	RemoveFileRef(ctx context.Context, userID, noteID, fileID uuid.UUID) error
}

type groupsUsecase interface {
	ListGroups(ctx context.Context, userID uuid.UUID) ([]entity.GroupIndexView, error)
	CreateGroup(ctx context.Context, userID uuid.UUID, title string) (entity.Group, error)
	UpdateGroup(ctx context.Context, userID, groupID uuid.UUID, title string) (entity.Group, error)
	DeleteGroup(ctx context.Context, userID, groupID uuid.UUID) error
	GenerateInviteCode(ctx context.Context, userID, groupID uuid.UUID, role *entity.Role) (entity.InviteCode, error)
	JoinGroup(ctx context.Context, userID, groupID uuid.UUID, code string) (entity.GroupIndexView, error)
}

// Handler bundles the HTTP surface: the JSON API plus the realtime
// upgrade endpoint.
type Handler struct {
	notes  notesUsecase
	groups groupsUsecase
	ws     http.Handler
	secret []byte
}

func NewHandler(notes notesUsecase, groups groupsUsecase, ws http.Handler, secret []byte) *Handler {
	return &Handler{notes: notes, groups: groups, ws: ws, secret: secret}
}

// Router mounts all routes. The websocket endpoint authenticates in
// its own handshake and sits outside the bearer middleware.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()

	r.Handle("/ws", h.ws).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(h.authMiddleware)

	api.HandleFunc("/notes", h.listNotes).Methods(http.MethodGet)
	api.HandleFunc("/notes", h.createNote).Methods(http.MethodPost)
	api.HandleFunc("/notes/{note}", h.getNote).Methods(http.MethodGet)
	api.HandleFunc("/notes/{note}", h.updateNote).Methods(http.MethodPatch)
	api.HandleFunc("/notes/{note}", h.deleteNote).Methods(http.MethodDelete)
	api.HandleFunc("/notes/{note}/history", h.noteHistory).Methods(http.MethodGet)
	api.HandleFunc("/notes/{note}/history/{index}", h.noteHistoryDetail).Methods(http.MethodGet)
	api.HandleFunc("/notes/{note}/files", h.attachFile).Methods(http.MethodPost)
	api.HandleFunc("/notes/{note}/files/{file}", h.removeFile).Methods(http.MethodDelete)

	api.HandleFunc("/groups", h.listGroups).Methods(http.MethodGet)
	api.HandleFunc("/groups", h.createGroup).Methods(http.MethodPost)
	api.HandleFunc("/groups/join", h.joinGroup).Methods(http.MethodPost)
	api.HandleFunc("/groups/{group}", h.updateGroup).Methods(http.MethodPatch)
	api.HandleFunc("/groups/{group}", h.deleteGroup).Methods(http.MethodDelete)
	api.HandleFunc("/groups/{group}/invite", h.generateInvite).Methods(http.MethodPost)

	return r
}

// pathID extracts and parses a uuid path variable. A malformed id maps
// to ErrNotFound so the route behaves like a miss, not a server fault.
func pathID(req *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(req)[name])
	if err != nil {
		return uuid.Nil, entity.ErrNotFound
	}

	return id, nil
}
