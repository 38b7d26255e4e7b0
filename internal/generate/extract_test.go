package generate

import "testing"

func TestExtractFilesStripsProse(t *testing.T) {
	raw := "Here is the code:\n{\"files\":[{\"path\":\"a.tsx\",\"content\":\"x\"}]}\nEnjoy"
	files, err := extractFiles(raw)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(files) != 1 || files[0].Path != "a.tsx" || files[0].Content != "x" {
		t.Fatalf("unexpected files %#v", files)
	}
}

func TestExtractFilesBracesInsideStrings(t *testing.T) {
	raw := `{"files":[{"path":"App.tsx","content":"function App() { return <div>{}</div>; }"}]}`
	files, err := extractFiles(raw)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	if files[0].Content != "function App() { return <div>{}</div>; }" {
		t.Fatalf("content mangled: %q", files[0].Content)
	}
}

func TestExtractFilesEscapedQuotes(t *testing.T) {
	raw := `noise {"files":[{"path":"a.ts","content":"const s = \"}\";"}]} noise`
	files, err := extractFiles(raw)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(files) != 1 || files[0].Content != `const s = "}";` {
		t.Fatalf("unexpected files %#v", files)
	}
}

func TestExtractFilesNoObject(t *testing.T) {
	if _, err := extractFiles("no json here at all"); err == nil {
		t.Fatal("expected error for text without an object")
	}
}

func TestExtractFilesUnbalanced(t *testing.T) {
	if _, err := extractFiles(`{"files": [`); err == nil {
		t.Fatal("expected error for unbalanced object")
	}
}

func TestExtractFilesMissingFilesArray(t *testing.T) {
	if _, err := extractFiles(`{"answer": 42}`); err == nil {
		t.Fatal("expected error when files is missing")
	}
	if _, err := extractFiles(`{"files": "nope"}`); err == nil {
		t.Fatal("expected error when files is not an array")
	}
}

func TestExtractFilesDropsNonconformingEntries(t *testing.T) {
	raw := `{"files":[
		{"path":"ok.tsx","content":"a"},
		{"path":"","content":"missing path"},
		{"path":"no-content.tsx"},
		{"path":"bad-content.tsx","content":42},
		{"path":"also-ok.tsx","content":""}
	]}`
	files, err := extractFiles(raw)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 conforming files, got %d: %#v", len(files), files)
	}
	if files[0].Path != "ok.tsx" || files[1].Path != "also-ok.tsx" {
		t.Fatalf("unexpected files %#v", files)
	}
}

func TestExtractFilesTakesFirstObject(t *testing.T) {
	raw := `{"files":[{"path":"first.tsx","content":"1"}]} {"files":[{"path":"second.tsx","content":"2"}]}`
	files, err := extractFiles(raw)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(files) != 1 || files[0].Path != "first.tsx" {
		t.Fatalf("expected first object to win, got %#v", files)
	}
}
