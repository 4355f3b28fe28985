package api

import (
	"net/http"
	"strconv"
)

// EncryptNote handles POST /api/notes/{id}/encrypt.
//
//	@Summary		Encrypt a note with a passphrase
//	@Tags			encryption
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Note id"
//	@Param			body	body		EncryptRequest	true	"Passphrase and confirmation"
//	@Success		200		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/encrypt [post]
func (h *Handler) EncryptNote(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	var req EncryptRequest
	if !decodeBody(w, r, &req) {
		return
	}
	note, err := h.svc.EncryptNote(r.Context(), id, req.Passphrase, req.Confirm)
	if err != nil {
		writeError(w, "encrypt note", id, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DecryptNote handles POST /api/notes/{id}/decrypt and unlocks the note
// permanently.
//
//	@Summary		Decrypt a note permanently
//	@Tags			encryption
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Note id"
//	@Param			body	body		PassphraseRequest	true	"Passphrase"
//	@Success		200		{object}	models.Note
//	@Failure		403		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/decrypt [post]
func (h *Handler) DecryptNote(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	var req PassphraseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	note, err := h.svc.DecryptNote(r.Context(), id, req.Passphrase)
	if err != nil {
		writeError(w, "decrypt note", id, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// RevealNote handles POST /api/notes/{id}/reveal. The note stays locked.
func (h *Handler) RevealNote(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	var req PassphraseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	content, err := h.svc.RevealNote(r.Context(), id, req.Passphrase)
	if err != nil {
		writeError(w, "reveal note", id, err)
		return
	}
	writeJSON(w, http.StatusOK, RevealResponse{Content: content})
}

// RemoveEncryption handles DELETE /api/notes/{id}/encryption?confirm=true.
// The optional body carries the content to keep.
func (h *Handler) RemoveEncryption(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	if ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm")); !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("confirm=true is required"))
		return
	}
	var req RemoveEncryptionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	note, err := h.svc.RemoveEncryption(r.Context(), id, req.Content)
	if err != nil {
		writeError(w, "remove encryption", id, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// CheckPassphrase handles POST /api/passphrase/check.
func (h *Handler) CheckPassphrase(w http.ResponseWriter, r *http.Request) {
	var req PassphraseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.CheckPassphrase(req.Passphrase))
}
