package io

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/errors"
)

const jsonDoc = `{
  "blocks": [
    {"id": "h1", "type": "heading", "props": {"text": "Hello", "level": "h1"}},
    {"id": "s1", "type": "section", "props": {"children": [
      {"id": "c1", "type": "column", "props": {"children": [
        {"id": "t1", "type": "text", "props": {"content": "Nested"}}
      ]}}
    ]}}
  ]
}`

const yamlDoc = `
blocks:
  - id: h1
    type: heading
    props:
      text: Hello
      level: h1
  - id: sp
    type: spacer
    props:
      height: 48
`

func TestReadDocument(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		format  Format
		wantLen int
		wantErr errors.Code
	}{
		{"wrapped json", jsonDoc, FormatJSON, 2, ""},
		{"bare array", `[{"id": "a", "type": "text"}]`, FormatJSON, 1, ""},
		{"legacy attributes", `[{"id": "a", "type": "text", "attributes": {"content": "x"}}]`, FormatJSON, 1, ""},
		{"yaml", yamlDoc, FormatYAML, 2, ""},
		{"empty blocks", `{"blocks": []}`, FormatJSON, 0, ""},
		{"null blocks", `{"blocks": null}`, FormatJSON, 0, ""},
		{"missing blocks key", `{"items": []}`, FormatJSON, 0, errors.ErrCodeInvalidDocument},
		{"blocks not a list", `{"blocks": {}}`, FormatJSON, 0, errors.ErrCodeInvalidDocument},
		{"scalar", `42`, FormatJSON, 0, errors.ErrCodeInvalidDocument},
		{"malformed", `{"blocks": [`, FormatJSON, 0, errors.ErrCodeInvalidDocument},
		{"block not an object", `["text"]`, FormatJSON, 0, errors.ErrCodeInvalidBlock},
		{"type not a string", `[{"id": "a", "type": 3}]`, FormatJSON, 0, errors.ErrCodeInvalidBlock},
		{"missing type kept", `[{"id": "a"}]`, FormatJSON, 1, ""},
		{"missing id kept", `[{"type": "text"}]`, FormatJSON, 1, ""},
		{"duplicate id kept", `[{"id": "a", "type": "text"}, {"id": "a", "type": "text"}]`, FormatJSON, 2, ""},
		{"toml", `blocks = []`, FormatTOML, 0, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := ReadDocument(strings.NewReader(tt.input), tt.format)
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want code %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(tree) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(tree), tt.wantLen)
			}
		})
	}
}

func TestReadDocumentNestedAndTyped(t *testing.T) {
	tree, err := ReadDocument(strings.NewReader(jsonDoc), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if b, ok := block.Find(tree, "t1"); !ok || b.Props.String("content", "") != "Nested" {
		t.Errorf("nested block not found: %+v", b)
	}

	tree, err = ReadDocument(strings.NewReader(yamlDoc), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	if h := tree[1].Props.Int("height", 0); h != 48 {
		t.Errorf("yaml height = %d, want 48", h)
	}
}

func TestReadDocumentTooLarge(t *testing.T) {
	defer func(n int64) { MaxInputSize = n }(MaxInputSize)
	MaxInputSize = 16
	_, err := ReadDocument(strings.NewReader(jsonDoc), FormatJSON)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	orig, err := ReadDocument(strings.NewReader(jsonDoc), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	for _, name := range []string{"doc.json", "doc.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := ExportDocument(orig, path); err != nil {
				t.Fatal(err)
			}
			got, err := ImportDocument(path)
			if err != nil {
				t.Fatal(err)
			}
			if len(block.Flatten(got)) != len(block.Flatten(orig)) {
				t.Errorf("round trip lost blocks: %d vs %d", len(block.Flatten(got)), len(block.Flatten(orig)))
			}
			if b, _ := block.Find(got, "t1"); b.Props.String("content", "") != "Nested" {
				t.Error("nested props lost")
			}
		})
	}
}

func TestWriteJSONKeepsMarkup(t *testing.T) {
	var buf bytes.Buffer
	tree := block.Tree{{ID: "a", Type: "text", Props: block.Props{"content": "<b>bold</b>"}}}
	if err := WriteJSON(tree, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"<b>bold</b>"`) {
		t.Errorf("markup should not be escaped: %s", buf.String())
	}
	if !strings.HasPrefix(buf.String(), "{\n  \"blocks\"") {
		t.Errorf("want wrapped, indented output: %s", buf.String())
	}
}

func TestImportDocumentErrors(t *testing.T) {
	if _, err := ImportDocument(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: %v", err)
	}
	if _, err := ImportDocument("doc.txt"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad extension: %v", err)
	}
}

func TestReadSettings(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
	}{
		{"json", `{"contentWidth": 640, "backgroundColor": "#f4f4f4"}`, FormatJSON},
		{"yaml", "contentWidth: 640\nbackgroundColor: \"#f4f4f4\"\n", FormatYAML},
		{"toml", "contentWidth = 640\nbackgroundColor = \"#f4f4f4\"\n", FormatTOML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ReadSettings(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatal(err)
			}
			if s.Int("contentWidth", 0) != 640 || s.String("backgroundColor", "") != "#f4f4f4" {
				t.Errorf("settings = %v", s)
			}
		})
	}

	s, err := ReadSettings(strings.NewReader("  \n"), FormatTOML)
	if err != nil || len(s) != 0 {
		t.Errorf("empty input: %v, %v", s, err)
	}
	if _, err := ReadSettings(strings.NewReader("a = "), FormatTOML); !errors.Is(err, errors.ErrCodeInvalidSettings) {
		t.Errorf("malformed toml: %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"a.json": FormatJSON,
		"a.YAML": FormatYAML,
		"a.yml":  FormatYAML,
		"a.toml": FormatTOML,
	}
	for path, want := range tests {
		if got, err := FormatFromPath(path); err != nil || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v", path, got, err)
		}
	}
	if _, err := FormatFromPath("a.xml"); err == nil {
		t.Error("xml should be rejected")
	}
}
