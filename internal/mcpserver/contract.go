package mcpserver

// NoteFormatURI is the resource URI of NoteFormatContract.
const NoteFormatURI = "quire://note-format"

// NoteFormatContract describes the note record that LLM consumers read and
// create through the tools.
const NoteFormatContract = `# Quire Note Format Contract

Notes are JSON records. Tools return them in this shape:

` + "```" + `json
{
  "id": "0b6f7c1e-3d41-4c1a-9a51-7d3f2a0c9e11",
  "title": "Weekly standup",
  "content": "<h2>Done</h2><p>Shipped the export.</p>",
  "createdAt": "2025-01-20T09:00:00Z",
  "updatedAt": "2025-01-20T09:30:00Z",
  "isPinned": false,
  "isEncrypted": false,
  "encryptedContent": null,
  "tags": ["meeting-notes"],
  "category": "work"
}
` + "```" + `

## Rules

1. **content is an HTML fragment.** Use <p>, <h1>-<h3>, <ul>/<ol>/<li>,
   <strong>, <em> and <u>. No <script> or inline event handlers.
2. **title** is plain text. An empty title is stored as "Untitled Note".
3. **category** is a single lowercase word; it defaults to "general".
4. **tags** are lowercase, kebab-case (e.g. ` + "`" + `project-x` + "`" + `).
5. **Encrypted notes** have ` + "`" + `isEncrypted: true` + "`" + `, an empty content and
   the ciphertext in encryptedContent. Their text is only available with the
   passphrase (read_note and analyze_note accept one).
6. Technical terms such as "machine learning" or "database" may appear wrapped
   in <span class="glossary-term" data-definition="...">. Keep these spans
   intact when quoting content.
`
