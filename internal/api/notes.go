package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/notegrove/notegrove/internal/ctxtr"
	"github.com/notegrove/notegrove/internal/entity"
	notesuc "github.com/notegrove/notegrove/internal/usecase/notes"
)

type createNoteRequest struct {
	Title     string     `json:"title"`
	Icon      string     `json:"icon"`
	IconColor string     `json:"iconColor"`
	Content   string     `json:"content"`
	ParentID  *uuid.UUID `json:"parentId"`
	GroupID   *uuid.UUID `json:"groupId"`
}

// updateNoteRequest is a partial update; absent fields stay untouched.
// Content carries a patch against the client's last known text, not
// the new text itself.
type updateNoteRequest struct {
	Title     *string `json:"title"`
	Icon      *string `json:"icon"`
	IconColor *string `json:"iconColor"`
	Content   *string `json:"content"`
}

type attachFileRequest struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

type historySummaryItem struct {
	AuthorID  uuid.UUID `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Handler) listNotes(w http.ResponseWriter, req *http.Request) {
	userID, err := ctxtr.UserID(req.Context())
	if err != nil {
		respondError(w, req, err)
		return
	}

	notes, err := h.notes.ListNotes(req.Context(), userID)
	if err != nil {
		respondError(w, req, err)
		return
	}

	views := make([]entity.NoteIndexView, 0, len(notes))
	for i := range notes {
		views = append(views, notes[i].IndexView())
	}

	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) createNote(w http.ResponseWriter, req *http.Request) {
	userID, err := ctxtr.UserID(req.Context())
	if err != nil {
		respondError(w, req, err)
		return
	}

	var body createNoteRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, req, entity.NewValidationError("body", "malformed json"))
		return
	}

	note, err := h.notes.CreateNote(req.Context(), userID, notesuc.CreateParams{
		Title:     body.Title,
		Icon:      body.Icon,
		IconColor: body.IconColor,
		Content:   body.Content,
		ParentID:  body.ParentID,
		GroupID:   body.GroupID,
	})
	if err != nil {
		respondError(w, req, err)
		return
	}

	respondJSON(w, http.StatusCreated, note.View())
}

func (h *Handler) getNote(w http.ResponseWriter, req *http.Request) {
	userID, err := ctxtr.UserID(req.Context())
	if err != nil {
		respondError(w, req, err)
		return
	}

	noteID, err := pathID(req, "note")
	if err != nil {
		respondError(w, req, err)
		return
	}

	note, err := h.notes.GetNote(req.Context(), userID, noteID)
	if err != nil {
		respondError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, note.View())
}

func (h *Handler) updateNote(w http.ResponseWriter, req *http.Request) {
	userID, err := ctxtr.UserID(req.Context())
	if err != nil {
		respondError(w, req, err)
		return
	}

	noteID, err := pathID(req, "note")
	if err != nil {
		respondError(w, req, err)
		return
	}

	var body updateNoteRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, req, entity.NewValidationError("body", "malformed json"))
		return
	}

	note, err := h.notes.UpdateNote(req.Context(), userID, noteID, notesuc.UpdateParams{
		Title:        body.Title,
		Icon:         body.Icon,
		IconColor:    body.IconColor,
		ContentPatch: body.Content,
	})
	if err != nil {
		respondError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, note.View())
}

func (h *Handler) deleteNote(w http.ResponseWriter, req *http.Request) {
	userID, err := ctxtr.UserID(req.Context())
	if err != nil {
		respondError(w, req, err)
		return
	}

	noteID, err := pathID(req, "note")
	if err != nil {
		respondError(w, req, err)
		return
	}

	if err := h.notes.DeleteNote(req.Context(), userID, noteID); err != nil {
		respondError(w, req, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) noteHistory(w http.ResponseWriter, req *http.Request) {
	userID, err := ctxtr.UserID(req.Context())
	if err != nil {
		respondError(w, req, err)
		return
	}

	noteID, err := pathID(req, "note")
	if err != nil {
		respondError(w, req, err)
		return
	}

	entries, err := h.notes.History(req.Context(), userID, noteID)
	if err != nil {
		respondError(w, req, err)
		return
	}

	items := make([]historySummaryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, historySummaryItem{AuthorID: e.AuthorID, CreatedAt: e.CreatedAt})
	}

	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) noteHistoryDetail(w http.ResponseWriter, req *http.Request) {
	userID, err := ctxtr.UserID(req.Context())
	if err != nil {
		respondError(w, req, err)
		return
	}

	noteID, err := pathID(req, "note")
	if err != nil {
		respondError(w, req, err)
		return
	}

	index, err := strconv.Atoi(mux.Vars(req)["index"])
	if err != nil {
		respondError(w, req, entity.ErrNotFound)
		return
	}

	detail, err := h.notes.HistoryDetail(req.Context(), userID, noteID, index)
	if err != nil {
		respondError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

func (h *Handler) attachFile(w http.ResponseWriter, req *http.Request) {
	userID, err := ctxtr.UserID(req.Context())
	if err != nil {
		respondError(w, req, err)
		return
	}

	noteID, err := pathID(req, "note")
	if err != nil {
		respondError(w, req, err)
		return
	}

	var body attachFileRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, req, entity.NewValidationError("body", "malformed json"))
		return
	}

	file, err := h.notes.AttachFileRef(req.Context(), userID, noteID, body.FileName, body.MimeType, body.Size)
	if err != nil {
		respondError(w, req, err)
		return
	}

	respondJSON(w, http.StatusCreated, file.IndexView())
}

func (h *Handler) removeFile(w http.ResponseWriter, req *http.Request) {
	userID, err := ctxtr.UserID(req.Context())
	if err != nil {
		respondError(w, req, err)
		return
	}

	noteID, err := pathID(req, "note")
	if err != nil {
		respondError(w, req, err)
		return
	}

	fileID, err := pathID(req, "file")
	if err != nil {
		respondError(w, req, err)
		return
	}

	if err := h.notes.RemoveFileRef(req.Context(), userID, noteID, fileID); err != nil {
		respondError(w, req, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
