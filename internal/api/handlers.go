package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/quire/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

func noteID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes, optionally filtered
//	@Tags			notes
//	@Produce		json
//	@Param			q			query		string	false	"Case-insensitive search over title, content and tags"
//	@Param			category	query		string	false	"Restrict to one category"
//	@Success		200			{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	notes := h.svc.ListNotes(r.Context(), q.Get("q"), q.Get("category"))
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	models.Note
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	note, err := h.svc.GetNote(r.Context(), id)
	if err != nil {
		writeError(w, "get note", id, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNoteRequest	false	"Initial fields"
//	@Success		201		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	note, err := h.svc.CreateNote(r.Context(), noteservice.Draft{
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
		Category: req.Category,
	})
	if err != nil {
		writeError(w, "create note", "", err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PUT /api/notes/{id}.
//
//	@Summary		Update note fields
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Note id"
//	@Param			body	body		UpdateNoteRequest	true	"Fields to change"
//	@Success		200		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	var req UpdateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	note, err := h.svc.UpdateNote(r.Context(), id, req.Patch, req.Glossary)
	if err != nil {
		writeError(w, "update note", id, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id}.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Param			id	path	string	true	"Note id"
//	@Success		204	"Note deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	if err := h.svc.DeleteNote(r.Context(), id); err != nil {
		writeError(w, "delete note", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PinNote handles POST /api/notes/{id}/pin.
func (h *Handler) PinNote(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	note, err := h.svc.PinNote(r.Context(), id)
	if err != nil {
		writeError(w, "pin note", id, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DuplicateNote handles POST /api/notes/{id}/duplicate.
func (h *Handler) DuplicateNote(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	note, err := h.svc.DuplicateNote(r.Context(), id)
	if err != nil {
		writeError(w, "duplicate note", id, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// Categories handles GET /api/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: h.svc.Categories(r.Context())})
}

// Stats handles GET /api/stats.
//
//	@Summary		Collection statistics
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	models.Stats
//	@Security		BearerAuth
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Stats(r.Context()))
}
