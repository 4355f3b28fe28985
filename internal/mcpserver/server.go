// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Quire tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/markup"
	"github.com/starford/quire/internal/noteservice"
)

const previewLength = 120

// Server wraps the MCP server with Quire tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all Quire tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Quire",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Case-insensitive search over note titles, content and tags. "+
			"Returns id, title, category and a short text preview per hit."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search term")),
		mcp.WithString("category", mcp.Description("Optional category to restrict the search to")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a full note record by id. Encrypted notes return their "+
			"plaintext only when the passphrase is given."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("passphrase", mcp.Description("Passphrase for an encrypted note")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note. Content MUST be an HTML fragment following the "+
			"note format contract (get_note_contract tool or the quire://note-format resource)."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Plain-text title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("HTML content")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
		mcp.WithString("category", mcp.Description("Category, defaults to general")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the Quire note format contract. "+
			"Call this before creating notes to ensure correct structure."),
	), s.getNoteContract)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the categories in use, one per line."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("analyze_note",
		mcp.WithDescription("Writing insights for a note: reading time, complexity, keywords, "+
			"sentiment, summary and suggestions."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("passphrase", mcp.Description("Passphrase for an encrypted note")),
	), s.analyzeNote)

	s.mcp.AddTool(mcp.NewTool("check_passphrase",
		mcp.WithDescription("Rate a candidate passphrase and list what would make it stronger."),
		mcp.WithString("passphrase", mcp.Required(), mcp.Description("Candidate passphrase")),
	), s.checkPassphrase)

	s.mcp.AddResource(
		mcp.NewResource(NoteFormatURI, "Note Format Contract",
			mcp.WithResourceDescription("Shape and content rules of Quire notes."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func toolError(id string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found: " + id)
	case errors.Is(err, apperr.ErrLocked):
		return mcp.NewToolResultError("note is encrypted; pass its passphrase")
	case errors.Is(err, apperr.ErrWrongPassphrase):
		return mcp.NewToolResultError(apperr.ErrWrongPassphrase.Error())
	}
	return mcp.NewToolResultError(err.Error())
}

type searchHit struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Preview  string `json:"preview"`
	Pinned   bool   `json:"isPinned"`
	Locked   bool   `json:"isEncrypted"`
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes := s.svc.ListNotes(ctx, query, req.GetString("category", ""))
	hits := make([]searchHit, len(notes))
	for i, n := range notes {
		hits[i] = searchHit{
			ID:       n.ID,
			Title:    n.Title,
			Category: n.Category,
			Preview:  markup.Preview(n.Content, previewLength),
			Pinned:   n.IsPinned,
			Locked:   n.IsEncrypted,
		}
	}
	return jsonResult(hits), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.GetNote(ctx, id)
	if err != nil {
		return toolError(id, err), nil
	}
	if pass := req.GetString("passphrase", ""); note.IsEncrypted && pass != "" {
		pt, err := s.svc.RevealNote(ctx, id, pass)
		if err != nil {
			return toolError(id, err), nil
		}
		note.Content = pt
	}
	return jsonResult(note), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var tags []string
	for _, t := range strings.Split(req.GetString("tags", ""), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	note, err := s.svc.CreateNote(ctx, noteservice.Draft{
		Title:    title,
		Content:  content,
		Tags:     tags,
		Category: req.GetString("category", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(note), nil
}

func (s *Server) getNoteContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      NoteFormatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}

func (s *Server) listCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cats := s.svc.Categories(ctx)
	if len(cats) == 0 {
		return mcp.NewToolResultText("no categories"), nil
	}
	return mcp.NewToolResultText(strings.Join(cats, "\n")), nil
}

func (s *Server) analyzeNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report, err := s.svc.Insights(ctx, id, req.GetString("passphrase", ""))
	if err != nil {
		return toolError(id, err), nil
	}
	return jsonResult(report), nil
}

func (s *Server) checkPassphrase(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pass, err := req.RequireString("passphrase")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.CheckPassphrase(pass)), nil
}
