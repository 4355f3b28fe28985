package api

import "net/http"

// Insights handles POST /api/notes/{id}/insights. Locked notes need their
// passphrase in the body.
//
//	@Summary		Reading time, complexity, keywords, sentiment and summary
//	@Tags			analysis
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Note id"
//	@Param			body	body		PassphraseRequest	false	"Passphrase for encrypted notes"
//	@Success		200		{object}	analyzer.Report
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/insights [post]
func (h *Handler) Insights(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	var req PassphraseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	report, err := h.svc.Insights(r.Context(), id, req.Passphrase)
	if err != nil {
		writeError(w, "insights", id, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Grammar handles POST /api/notes/{id}/grammar.
func (h *Handler) Grammar(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	var req PassphraseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	issues, err := h.svc.Grammar(r.Context(), id, req.Passphrase)
	if err != nil {
		writeError(w, "grammar", id, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"issues": issues})
}
