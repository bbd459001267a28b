package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/blockpress/internal/config"
	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/cache"
	"github.com/matzehuels/blockpress/pkg/errors"
	bpio "github.com/matzehuels/blockpress/pkg/io"
	"github.com/matzehuels/blockpress/pkg/pipeline"
	"github.com/matzehuels/blockpress/pkg/registry"
)

// runCLI executes the root command with args in an isolated environment.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.Execute()
}

const sampleDoc = `{"blocks":[
	{"id":"h1","type":"heading","props":{"text":"Spring sale","level":"h1"}},
	{"id":"toc","type":"toc","props":{"minLevel":1}},
	{"id":"t1","type":"text","props":{"content":"Everything is 20% off."}}
]}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRenderCommand(t *testing.T) {
	doc := writeFile(t, "doc.json", sampleDoc)

	tests := []struct {
		name     string
		args     []string
		contains []string
		absent   []string
	}{
		{
			name:     "email",
			args:     []string{"--context", "email"},
			contains: []string{"<!DOCTYPE", "Spring sale"},
			absent:   []string{"bp-toc"},
		},
		{
			name:     "page fragment",
			args:     []string{"--context", "page"},
			contains: []string{`data-block-type="toc"`},
		},
		{
			name:     "finalized standalone page",
			args:     []string{"--context", "page", "--finalize", "--standalone"},
			contains: []string{"<!DOCTYPE html>", `id="spring-sale-h1"`, `href="#spring-sale-h1"`},
			absent:   []string{"data-block-type"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out.html")
			args := append([]string{"render", doc, "-o", out, "--no-cache"}, tt.args...)
			if err := runCLI(t, args...); err != nil {
				t.Fatalf("render error = %v", err)
			}
			data, err := os.ReadFile(out)
			if err != nil {
				t.Fatal(err)
			}
			html := string(data)
			for _, s := range tt.contains {
				if !strings.Contains(html, s) {
					t.Errorf("output missing %q", s)
				}
			}
			for _, s := range tt.absent {
				if strings.Contains(html, s) {
					t.Errorf("output should not contain %q", s)
				}
			}
		})
	}
}

func TestRenderCommandErrors(t *testing.T) {
	doc := writeFile(t, "doc.json", sampleDoc)

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"render", filepath.Join(t.TempDir(), "nope.json")}},
		{"finalize email", []string{"render", doc, "--context", "email", "--finalize", "--no-cache"}},
		{"unknown context", []string{"render", doc, "--context", "sms", "--no-cache"}},
		{"bad config", []string{"render", doc, "--config", writeFile(t, "c.toml", "[cache]\nbackend = \"tape\"\n")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := runCLI(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestFinalizeCommand(t *testing.T) {
	fragment := writeFile(t, "page.html",
		`<div class="bp-content"><div data-block-type="heading" data-block-id="h1" data-props="{&#34;text&#34;:&#34;Hi&#34;}"></div></div>`)
	out := filepath.Join(t.TempDir(), "final.html")

	if err := runCLI(t, "finalize", fragment, "-o", out, "--no-cache"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "data-block-type") || !strings.Contains(string(data), "Hi") {
		t.Errorf("finalized = %s", data)
	}
}

func TestNewCommandAppend(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "doc.yaml")

	if err := runCLI(t, "new", "heading", "--props", `{"text":"First"}`, "--append", doc); err != nil {
		t.Fatal(err)
	}
	if err := runCLI(t, "new", "divider", "--append", doc); err != nil {
		t.Fatal(err)
	}

	tree, err := bpio.ImportDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(tree) != 2 || tree[0].Type != "heading" || tree[1].Type != "divider" {
		t.Fatalf("tree = %+v", tree)
	}
	if tree[0].Props.String("text", "") != "First" || tree[0].ID == tree[1].ID {
		t.Errorf("blocks = %+v", tree)
	}

	if err := runCLI(t, "new", "nope"); err == nil {
		t.Error("unknown type should fail")
	}
	if err := runCLI(t, "new", "heading", "--props", "{bad"); err == nil {
		t.Error("bad props should fail")
	}
}

func TestInspectCommandDOT(t *testing.T) {
	doc := writeFile(t, "doc.json", sampleDoc)
	out := filepath.Join(t.TempDir(), "outline.dot")

	if err := runCLI(t, "inspect", doc, "--context", "email", "--format", "dot", "-o", out); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"block:toc"`) || !strings.Contains(string(data), "not rendered in email") {
		t.Errorf("dot = %s", data)
	}
	if err := runCLI(t, "inspect", doc, "--format", "png"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestInspectCommandBlock(t *testing.T) {
	doc := writeFile(t, "doc.json", sampleDoc)

	if err := runCLI(t, "inspect", doc, "--block", "h1", "--context", "page"); err != nil {
		t.Fatal(err)
	}
	err := runCLI(t, "inspect", doc, "--block", "nope")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing block: err = %v, want %s", err, errors.ErrCodeNotFound)
	}
	if err := runCLI(t, "inspect", doc, "--block", "h1", "--context", "sms"); err == nil {
		t.Error("unknown context should fail")
	}
}

func TestMalformedDocumentStillRenders(t *testing.T) {
	doc := writeFile(t, "doc.json", `{"blocks":[
		{"id":"t1","type":"text","props":{"content":"kept"}},
		{"id":"t1","type":"text","props":{"content":"also kept"}},
		{"id":"x"}
	]}`)
	out := filepath.Join(t.TempDir(), "out.html")

	if err := runCLI(t, "render", doc, "--context", "email", "--no-cache", "-o", out); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "also kept") {
		t.Errorf("output = %s", data)
	}
	if err := runCLI(t, "inspect", doc, "--context", "email"); err != nil {
		t.Errorf("inspect summary: %v", err)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blockpress.toml")
	if err := runCLI(t, "--config", path, "config", "init"); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
	if err := runCLI(t, "--config", path, "config", "init"); err == nil {
		t.Error("init over an existing file should fail")
	}
}

func TestNewRunnerAppliesConfiguredSettings(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.Config.Settings = map[string]block.Settings{
		registry.ContextEmail: {"contentWidth": 480},
	}
	runner, err := c.newRunner(t.Context(), true)
	if err != nil {
		t.Fatal(err)
	}
	a, err := runner.Adapters.Get(registry.ContextEmail)
	if err != nil {
		t.Fatal(err)
	}
	if got := a.DefaultSettings().Int("contentWidth", 0); got != 480 {
		t.Errorf("contentWidth default = %d, want 480", got)
	}
	if _, err := runner.Adapters.Get(registry.ContextPage); err != nil {
		t.Errorf("page adapter missing: %v", err)
	}
}

func TestNewRunnerScopesCacheKeys(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.Config.Cache.Namespace = "site-a"
	runner, err := c.newRunner(t.Context(), true)
	if err != nil {
		t.Fatal(err)
	}
	key := runner.Keyer.RenderKey("abc", cache.RenderKeyOpts{Context: registry.ContextEmail})
	if !strings.HasPrefix(key, "site-a:") {
		t.Errorf("RenderKey() = %q, want site-a: prefix", key)
	}

	c.Config.Cache.Namespace = ""
	plain, err := c.newRunner(t.Context(), true)
	if err != nil {
		t.Fatal(err)
	}
	if got := plain.Keyer.RenderKey("abc", cache.RenderKeyOpts{Context: registry.ContextEmail}); strings.HasPrefix(got, "site-a:") {
		t.Errorf("unscoped RenderKey() = %q", got)
	}
}

func TestAssetBaseRewritesImageSources(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"root relative", "/uploads/a.png", `src="https://cdn.example.com/uploads/a.png"`},
		{"absolute", "https://img.example.org/b.png", `src="https://img.example.org/b.png"`},
		{"protocol relative", "//img.example.org/c.png", `src="//img.example.org/c.png"`},
	}
	c := New(io.Discard, LogInfo)
	c.Config.Render.AssetBase = "https://cdn.example.com/"
	runner, err := c.newRunner(t.Context(), true)
	if err != nil {
		t.Fatal(err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := runner.Execute(t.Context(), pipeline.Options{
				Context: registry.ContextEmail,
				Tree:    block.Tree{{ID: "img", Type: "image", Props: block.Props{"src": tt.src}}},
			})
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(res.HTML, tt.want) {
				t.Errorf("html missing %s:\n%s", tt.want, res.HTML)
			}
		})
	}
}

func TestBlockTable(t *testing.T) {
	c := New(io.Discard, LogInfo)
	reg, err := c.newRegistry()
	if err != nil {
		t.Fatal(err)
	}
	out := blockTable(reg.All())
	for _, typ := range []string{"heading", "countdown", "toc"} {
		if !strings.Contains(out, typ) {
			t.Errorf("table missing %s", typ)
		}
	}

	d, _ := reg.Get("countdown")
	if flags := blockFlags(d); !strings.Contains(flags, "volatile") || !strings.Contains(flags, "deferred") {
		t.Errorf("countdown flags = %q", flags)
	}
}

func TestBlockPicker(t *testing.T) {
	c := New(io.Discard, LogInfo)
	reg, err := c.newRegistry()
	if err != nil {
		t.Fatal(err)
	}

	var m tea.Model = NewBlockPickerModel(reg.All())
	for _, r := range "timer" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	picker := m.(BlockPickerModel)
	if got := picker.visible(); len(got) != 1 || got[0].Type != "countdown" {
		t.Fatalf("filtered = %v", got)
	}
	if !strings.Contains(picker.View(), "countdown") {
		t.Error("view should list the match")
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Error("enter should quit")
	}
	if sel := m.(BlockPickerModel).Selected; sel == nil || sel.Type != "countdown" {
		t.Errorf("selected = %v", sel)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if m.(BlockPickerModel).Filter != "time" {
		t.Errorf("filter after backspace = %q", m.(BlockPickerModel).Filter)
	}
}

func TestParseProps(t *testing.T) {
	tests := []struct {
		in      string
		want    block.Props
		wantErr bool
	}{
		{"", nil, false},
		{"  ", nil, false},
		{`{"text":"x"}`, block.Props{"text": "x"}, false},
		{`[1]`, nil, true},
	}
	for _, tt := range tests {
		got, err := parseProps(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseProps(%q) error = %v", tt.in, err)
			continue
		}
		if len(got) != len(tt.want) || got.String("text", "") != tt.want.String("text", "") {
			t.Errorf("parseProps(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int]string{
		12:      "12 B",
		2048:    "2.0 KB",
		3 << 20: "3.0 MB",
	}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestPrintRenderResult(t *testing.T) {
	var buf bytes.Buffer
	orig := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = orig })

	tests := []struct {
		name   string
		res    pipeline.Result
		want   []string
		absent []string
	}{
		{
			name: "skipped blocks",
			res:  pipeline.Result{Context: "email", Stats: pipeline.Stats{Blocks: 3, Skipped: 1, Bytes: 2048}},
			want: []string{"Rendered email", "3 blocks · 1 skipped · 2.0 KB · fresh", "blockpress inspect doc.json --context email", "out.html"},
		},
		{
			name:   "cache hit",
			res:    pipeline.Result{Context: "page", CacheHit: true, Stats: pipeline.Stats{Blocks: 2, Bytes: 10}},
			want:   []string{"2 blocks · 10 B · cached"},
			absent: []string{"skipped", "inspect"},
		},
		{
			name: "volatile",
			res:  pipeline.Result{Context: "email", Volatile: true, Stats: pipeline.Stats{Blocks: 1, Bytes: 10}},
			want: []string{"uncached"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			printRenderResult(tt.res, "doc.json", "out.html")
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output missing %q:\n%s", w, buf.String())
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(buf.String(), a) {
					t.Errorf("output should not contain %q:\n%s", a, buf.String())
				}
			}
		})
	}
}
