package msgcat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedDefaults(t *testing.T) {
	c, err := New("")
	if err != nil { t.Fatalf("New: %v", err) }
	if got := c.Text("play.not_in_game"); got == "play.not_in_game" || got == "" {
		t.Fatalf("embedded key missing: %q", got)
	}
}

func TestTextFallsBackToKey(t *testing.T) {
	c, err := New("")
	if err != nil { t.Fatalf("New: %v", err) }
	if got := c.Text("no.such.key"); got != "no.such.key" {
		t.Fatalf("fallback = %q", got)
	}
}

func TestRenderWithData(t *testing.T) {
	c, err := New("")
	if err != nil { t.Fatalf("New: %v", err) }
	out, err := c.Render("list.footer", map[string]string{"Prefix": "!game"})
	if err != nil { t.Fatalf("Render: %v", err) }
	if !strings.Contains(out, "!game") { t.Fatalf("footer = %q", out) }
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	override := "play:\n  not_in_game: \"custom text\"\n"
	if err := os.WriteFile(filepath.Join(dir, "override.yaml"), []byte(override), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}
	c, err := New(dir)
	if err != nil { t.Fatalf("New: %v", err) }
	if got := c.Text("play.not_in_game"); got != "custom text" { t.Fatalf("override = %q", got) }
	if got := c.Text("play.canceled_game"); got == "play.canceled_game" {
		t.Fatalf("untouched keys must keep defaults")
	}
}

func TestDuplicateOverrideKeyRejected(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yaml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("play:\n  not_in_game: \"x\"\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("duplicate key across override files should fail")
	}
}
