package markup

import (
	"strings"
	"testing"
)

func TestStripTags(t *testing.T) {
	got := StripTags("<p>Fish &amp; <b>chips</b></p>")
	if got != "Fish & chips" {
		t.Errorf("StripTags = %q", got)
	}
}

func TestWordCount(t *testing.T) {
	if n := WordCount("<p>one two</p>\n<p>three</p>"); n != 3 {
		t.Errorf("WordCount = %d, want 3", n)
	}
	if n := WordCount("<br>"); n != 0 {
		t.Errorf("WordCount(empty) = %d", n)
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("<p></p>", 10); got != EmptyPreview {
		t.Errorf("empty preview = %q", got)
	}
	if got := Preview("<p>short</p>", 10); got != "short" {
		t.Errorf("short preview = %q", got)
	}
	if got := Preview("<p>hello   wide world</p>", 10); got != "hello wide..." {
		t.Errorf("truncated preview = %q", got)
	}
}

func TestHighlightSearch(t *testing.T) {
	got := HighlightSearch("Go go GO", "go")
	if got != "<mark>Go</mark> <mark>go</mark> <mark>GO</mark>" {
		t.Errorf("HighlightSearch = %q", got)
	}
	if got := HighlightSearch("a+b", "+"); got != "a<mark>+</mark>b" {
		t.Errorf("metacharacters not quoted: %q", got)
	}
	if got := HighlightSearch("text", " "); got != "text" {
		t.Errorf("blank term changed text: %q", got)
	}
}

func TestHighlightGlossary_WrapsWholeWords(t *testing.T) {
	got := HighlightGlossary("<p>React uses state, not statement.</p>")
	if !strings.Contains(got, `<span class="glossary-term" data-definition="A JavaScript library`) {
		t.Errorf("react not wrapped: %s", got)
	}
	if !strings.Contains(got, `>React</span>`) || !strings.Contains(got, `>state</span>`) {
		t.Errorf("original casing lost: %s", got)
	}
	if strings.Count(got, "glossary-term") != 2 {
		t.Errorf("statement should not match: %s", got)
	}
}

func TestHighlightGlossary_PrefersLongerTerm(t *testing.T) {
	got := HighlightGlossary("Deep Learning is fun")
	if strings.Count(got, "glossary-term") != 1 || !strings.Contains(got, ">Deep Learning</span>") {
		t.Errorf("HighlightGlossary = %s", got)
	}
}

func TestHighlightGlossary_SkipsTagsAndIsIdempotent(t *testing.T) {
	in := `<a href="/api/state">an api link</a>`
	once := HighlightGlossary(in)
	if !strings.Contains(once, `<a href="/api/state">`) {
		t.Errorf("tag attributes rewritten: %s", once)
	}
	if strings.Count(once, "glossary-term") != 1 {
		t.Errorf("expected one term: %s", once)
	}
	if twice := HighlightGlossary(once); twice != once {
		t.Errorf("not idempotent:\n%s\n%s", once, twice)
	}
}

func TestHighlightGlossary_CarriesDefinition(t *testing.T) {
	got := HighlightGlossary("javascript")
	if !strings.Contains(got, `data-definition="A high-level, interpreted programming language that conforms to the ECMAScript specification."`) {
		t.Errorf("definition missing: %s", got)
	}
}

func TestHighlightGlossary_QuotedAngleInAttribute(t *testing.T) {
	in := `<a title="x>api state">see the api</a>`
	got := HighlightGlossary(in)
	if !strings.HasPrefix(got, `<a title="x>api state">`) {
		t.Errorf("attribute rewritten: %s", got)
	}
	if strings.Count(got, "glossary-term") != 1 || !strings.Contains(got, `>api</span></a>`) {
		t.Errorf("HighlightGlossary = %s", got)
	}
}

func TestHighlightGlossary_LeavesCommentsAndEntities(t *testing.T) {
	in := `<!-- api --><p>a &lt;b&gt; database</p>`
	got := HighlightGlossary(in)
	if !strings.HasPrefix(got, `<!-- api --><p>a &lt;b&gt; `) {
		t.Errorf("comment or entities changed: %s", got)
	}
	if strings.Count(got, "glossary-term") != 1 {
		t.Errorf("expected only database wrapped: %s", got)
	}
}
