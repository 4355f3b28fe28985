package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/noteservice"
	"github.com/starford/quire/internal/sse"
	"github.com/starford/quire/internal/testutil"
)

// testEnv sets up an in-memory service and router. An empty token disables auth.
func testEnv(t *testing.T, authToken string) (*noteservice.Service, http.Handler) {
	t.Helper()
	svc, _ := testutil.TestService(t)
	return svc, NewRouter(svc, authToken != "", authToken, nil)
}

func do(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func createNote(t *testing.T, router http.Handler, req CreateNoteRequest) models.Note {
	t.Helper()
	w := do(t, router, http.MethodPost, "/notes", req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	return decode[models.Note](t, w)
}

func TestCreateAndGetNote(t *testing.T) {
	_, router := testEnv(t, "")

	created := createNote(t, router, CreateNoteRequest{Title: "Hello", Content: "<p>World</p>"})
	if created.ID == "" {
		t.Fatal("created note has no id")
	}

	w := do(t, router, http.MethodGet, "/notes/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	note := decode[models.Note](t, w)
	if note.Title != "Hello" || note.Content != "<p>World</p>" || note.Category != models.DefaultCategory {
		t.Errorf("note = %+v", note)
	}
}

func TestCreateNote_EmptyBody(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/notes", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d", w.Code)
	}
	if n := decode[models.Note](t, w); n.Title != models.DefaultTitle {
		t.Errorf("title = %q", n.Title)
	}
}

func TestCreateNote_InvalidJSON(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/notes", "{nope")
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid body = %d, want 400", w.Code)
	}
}

func TestUpdateNote_KeepsOmittedFields(t *testing.T) {
	_, router := testEnv(t, "")
	n := createNote(t, router, CreateNoteRequest{Title: "keep", Content: "<p>old</p>"})

	w := do(t, router, http.MethodPut, "/notes/"+n.ID, `{"content":"<p>a database note</p>","glossary":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	got := decode[models.Note](t, w)
	if got.Title != "keep" {
		t.Errorf("title = %q", got.Title)
	}
	if !strings.Contains(got.Content, `class="glossary-term"`) {
		t.Errorf("glossary not applied: %s", got.Content)
	}
	if !got.CreatedAt.Equal(n.CreatedAt) {
		t.Errorf("createdAt changed: %v -> %v", n.CreatedAt, got.CreatedAt)
	}
}

func TestUpdateNote_NotFound(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPut, "/notes/ghost", `{"title":"x"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
}

func TestDeleteNote(t *testing.T) {
	_, router := testEnv(t, "")
	n := createNote(t, router, CreateNoteRequest{Title: "bye"})

	if w := do(t, router, http.MethodDelete, "/notes/"+n.ID, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/notes/"+n.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/notes/"+n.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestListNotes_Filters(t *testing.T) {
	_, router := testEnv(t, "")
	createNote(t, router, CreateNoteRequest{Title: "Go tips", Category: "programming"})
	createNote(t, router, CreateNoteRequest{Title: "Bread", Content: "<p>flour</p>", Category: "home"})

	resp := decode[NoteListResponse](t, do(t, router, http.MethodGet, "/notes", nil))
	if resp.Total != 2 || len(resp.Notes) != 2 {
		t.Errorf("all = %+v", resp)
	}
	resp = decode[NoteListResponse](t, do(t, router, http.MethodGet, "/notes?q=FLOUR", nil))
	if resp.Total != 1 || resp.Notes[0].Title != "Bread" {
		t.Errorf("search = %+v", resp)
	}
	resp = decode[NoteListResponse](t, do(t, router, http.MethodGet, "/notes?category=programming", nil))
	if resp.Total != 1 || resp.Notes[0].Title != "Go tips" {
		t.Errorf("category = %+v", resp)
	}

	cats := decode[CategoriesResponse](t, do(t, router, http.MethodGet, "/categories", nil))
	if strings.Join(cats.Categories, ",") != "home,programming" {
		t.Errorf("categories = %v", cats.Categories)
	}
}

func TestPinAndDuplicate(t *testing.T) {
	_, router := testEnv(t, "")
	a := createNote(t, router, CreateNoteRequest{Title: "a"})
	createNote(t, router, CreateNoteRequest{Title: "b"})

	w := do(t, router, http.MethodPost, "/notes/"+a.ID+"/pin", nil)
	if w.Code != http.StatusOK || !decode[models.Note](t, w).IsPinned {
		t.Fatalf("pin = %d %s", w.Code, w.Body.String())
	}
	list := decode[NoteListResponse](t, do(t, router, http.MethodGet, "/notes", nil))
	if list.Notes[0].ID != a.ID {
		t.Errorf("pinned note not first")
	}

	w = do(t, router, http.MethodPost, "/notes/"+a.ID+"/duplicate", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("duplicate = %d", w.Code)
	}
	if dup := decode[models.Note](t, w); dup.Title != "a (Copy)" || dup.ID == a.ID {
		t.Errorf("dup = %+v", dup)
	}
}

func TestEncryptionFlow(t *testing.T) {
	_, router := testEnv(t, "")
	n := createNote(t, router, CreateNoteRequest{Content: "<p>private</p>"})
	base := "/notes/" + n.ID

	if w := do(t, router, http.MethodPost, base+"/encrypt", EncryptRequest{Passphrase: "abcd", Confirm: "abce"}); w.Code != http.StatusBadRequest {
		t.Errorf("mismatch = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodPost, base+"/encrypt", EncryptRequest{Passphrase: "ab", Confirm: "ab"}); w.Code != http.StatusBadRequest {
		t.Errorf("too short = %d, want 400", w.Code)
	}

	w := do(t, router, http.MethodPost, base+"/encrypt", EncryptRequest{Passphrase: "Str0ng!", Confirm: "Str0ng!"})
	if w.Code != http.StatusOK {
		t.Fatalf("encrypt = %d %s", w.Code, w.Body.String())
	}
	locked := decode[models.Note](t, w)
	if !locked.IsEncrypted || locked.Content != "" {
		t.Fatalf("locked = %+v", locked)
	}
	if w := do(t, router, http.MethodPost, base+"/encrypt", EncryptRequest{Passphrase: "Str0ng!", Confirm: "Str0ng!"}); w.Code != http.StatusConflict {
		t.Errorf("double encrypt = %d, want 409", w.Code)
	}

	if w := do(t, router, http.MethodPost, base+"/reveal", PassphraseRequest{Passphrase: "bad"}); w.Code != http.StatusForbidden {
		t.Errorf("wrong passphrase = %d, want 403", w.Code)
	}
	w = do(t, router, http.MethodPost, base+"/reveal", PassphraseRequest{Passphrase: "Str0ng!"})
	if w.Code != http.StatusOK || decode[RevealResponse](t, w).Content != "<p>private</p>" {
		t.Fatalf("reveal = %d %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodPost, base+"/decrypt", PassphraseRequest{Passphrase: "Str0ng!"})
	if w.Code != http.StatusOK {
		t.Fatalf("decrypt = %d", w.Code)
	}
	if open := decode[models.Note](t, w); open.IsEncrypted || open.Content != "<p>private</p>" {
		t.Errorf("open = %+v", open)
	}
}

func TestRemoveEncryption_RequiresConfirm(t *testing.T) {
	_, router := testEnv(t, "")
	n := createNote(t, router, CreateNoteRequest{Content: "x"})
	base := "/notes/" + n.ID
	do(t, router, http.MethodPost, base+"/encrypt", EncryptRequest{Passphrase: "abcd", Confirm: "abcd"})

	if w := do(t, router, http.MethodDelete, base+"/encryption", nil); w.Code != http.StatusBadRequest {
		t.Errorf("without confirm = %d, want 400", w.Code)
	}
	w := do(t, router, http.MethodDelete, base+"/encryption?confirm=true", RemoveEncryptionRequest{Content: "kept"})
	if w.Code != http.StatusOK {
		t.Fatalf("remove = %d %s", w.Code, w.Body.String())
	}
	if got := decode[models.Note](t, w); got.IsEncrypted || got.Content != "kept" {
		t.Errorf("note = %+v", got)
	}
	if w := do(t, router, http.MethodDelete, base+"/encryption?confirm=true", nil); w.Code != http.StatusConflict {
		t.Errorf("remove on plaintext = %d, want 409", w.Code)
	}
}

func TestInsightsAndGrammar(t *testing.T) {
	_, router := testEnv(t, "")
	n := createNote(t, router, CreateNoteRequest{Content: "<p>teh plan is great.</p>"})

	w := do(t, router, http.MethodPost, "/notes/"+n.ID+"/insights", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("insights = %d %s", w.Code, w.Body.String())
	}
	report := decode[map[string]any](t, w)
	if report["sentiment"] != "Positive" || report["complexity"] != "Simple" {
		t.Errorf("report = %v", report)
	}

	w = do(t, router, http.MethodPost, "/notes/"+n.ID+"/grammar", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("grammar = %d", w.Code)
	}
	var resp struct {
		Issues []struct {
			Type string `json:"type"`
		} `json:"issues"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Issues) != 1 || resp.Issues[0].Type != "spelling" {
		t.Errorf("issues = %+v", resp.Issues)
	}
}

func TestInsights_LockedWithoutPassphrase(t *testing.T) {
	_, router := testEnv(t, "")
	n := createNote(t, router, CreateNoteRequest{Content: "x"})
	do(t, router, http.MethodPost, "/notes/"+n.ID+"/encrypt", EncryptRequest{Passphrase: "abcd", Confirm: "abcd"})

	if w := do(t, router, http.MethodPost, "/notes/"+n.ID+"/insights", nil); w.Code != http.StatusConflict {
		t.Errorf("locked insights = %d, want 409", w.Code)
	}
}

func TestStats(t *testing.T) {
	_, router := testEnv(t, "")
	createNote(t, router, CreateNoteRequest{Content: "<p>one two</p>"})

	st := decode[models.Stats](t, do(t, router, http.MethodGet, "/stats", nil))
	if st.Total != 1 || st.TotalWords != 2 || st.Recent != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestExportImport(t *testing.T) {
	_, src := testEnv(t, "")
	createNote(t, src, CreateNoteRequest{Title: "exported"})

	w := do(t, src, http.MethodGet, "/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export = %d", w.Code)
	}
	cd := w.Header().Get("Content-Disposition")
	if !strings.HasPrefix(cd, `attachment; filename="shareable-notes-`) {
		t.Errorf("Content-Disposition = %q", cd)
	}
	exported := w.Body.String()

	_, dst := testEnv(t, "")
	w = do(t, dst, http.MethodPost, "/import", exported)
	if w.Code != http.StatusOK {
		t.Fatalf("import = %d %s", w.Code, w.Body.String())
	}
	if res := decode[noteservice.ImportResult](t, w); !res.Success || res.Imported != 1 {
		t.Errorf("result = %+v", res)
	}

	w = do(t, dst, http.MethodPost, "/import", `{"not":"an array"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad import = %d, want 400", w.Code)
	}
	if res := decode[noteservice.ImportResult](t, w); res.Success || res.Error == "" {
		t.Errorf("bad result = %+v", res)
	}
}

func TestCheckPassphrase(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/passphrase/check", PassphraseRequest{Passphrase: "Ab1!"})
	if w.Code != http.StatusOK {
		t.Fatalf("check = %d", w.Code)
	}
	got := decode[map[string]any](t, w)
	if got["strength"] != "Strong" || got["isValid"] != true {
		t.Errorf("strength = %v", got)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(`{"title":"auth"}`))
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("authed create = %d, want 201", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	if w := do(t, router, http.MethodGet, "/notes", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
	if got := w.Header().Get("WWW-Authenticate"); !strings.HasPrefix(got, "Bearer") {
		t.Errorf("WWW-Authenticate = %q", got)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/notes", nil); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

func testEnvWithSSE(t *testing.T, authEnabled bool, token string) http.Handler {
	t.Helper()
	svc, _ := testutil.TestService(t)
	broker := sse.NewBroker(time.Second)
	t.Cleanup(broker.Close)
	return NewRouter(svc, authEnabled, token, broker)
}

func TestSSEEvents_AuthProtected(t *testing.T) {
	router := testEnvWithSSE(t, true, "secret")
	if w := do(t, router, http.MethodGet, "/events", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	router := testEnvWithSSE(t, true, "tok")

	// The handler blocks until the request context ends.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with valid token = %d, want 200", w.Code)
	}
}

func TestSSEEvents_QueryToken(t *testing.T) {
	router := testEnvWithSSE(t, true, "tok")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events?access_token=tok", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with query token = %d, want 200", w.Code)
	}

	if w := do(t, router, http.MethodGet, "/events?access_token=nope", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE with bad query token = %d, want 401", w.Code)
	}
}

func TestSeed(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/seed", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("seed = %d %s", w.Code, w.Body.String())
	}
	if res := decode[noteservice.ImportResult](t, w); res.Imported != 5 {
		t.Errorf("imported = %d, want 5", res.Imported)
	}

	list := decode[NoteListResponse](t, do(t, router, http.MethodGet, "/notes", nil))
	if list.Total != 5 || !list.Notes[0].IsPinned {
		t.Errorf("list after seed: total=%d first pinned=%v", list.Total, list.Notes[0].IsPinned)
	}

	if w := do(t, router, http.MethodPost, "/seed", nil); w.Code != http.StatusConflict {
		t.Errorf("second seed = %d, want 409", w.Code)
	}
}
