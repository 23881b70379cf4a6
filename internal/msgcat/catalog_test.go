package msgcat

import (
	"strings"
	"testing"
)

func TestRenderEmbeddedDefaults(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	out, err := c.Render("common.pong", nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "pong" {
		t.Fatalf("Render = %q", out)
	}
}

func TestRenderWithTemplateData(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	out, err := c.Render("backfill.done", map[string]any{
		"RunID": "r1", "Scanned": 50, "Parsed": 40, "Inserted": 35, "Records": 90,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{"r1", "50", "40", "35", "90"} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered message missing %q: %s", want, out)
		}
	}
}

func TestRenderUnknownKeyFails(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	if _, err := c.Render("nope.missing", nil); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestRenderMissingFieldFails(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	if _, err := c.Render("player.not_found", map[string]any{}); err == nil {
		t.Fatalf("expected missingkey error")
	}
}
