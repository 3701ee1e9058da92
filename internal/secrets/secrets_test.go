package secrets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/webtense/btr-automation-whatsapp/pkg/logx"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadPrimary(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "secrets.yaml"), `
wa_to: "1203-group@g.us"
wa_timeout_sec: 30
`)

	s := Load(dir, logx.Nop())
	if s.To != "1203-group@g.us" {
		t.Fatalf("To = %q", s.To)
	}
	if s.Timeout != 30*time.Second {
		t.Fatalf("Timeout = %v, want 30s", s.Timeout)
	}
	// Unset keys keep defaults.
	if s.TextCmd != defaultTextCmd {
		t.Fatalf("TextCmd = %q, want default", s.TextCmd)
	}
	if s.SummaryTimeout != defaultSummaryTimeout {
		t.Fatalf("SummaryTimeout = %v, want default", s.SummaryTimeout)
	}
}

func TestLoadFallsBackToExample(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "secrets.yaml.example"), `wa_to: "example@g.us"`)

	s := Load(dir, logx.Nop())
	if s.To != "example@g.us" {
		t.Fatalf("To = %q, want example fallback value", s.To)
	}
	if Path(dir) != filepath.Join(dir, "secrets.yaml.example") {
		t.Fatalf("Path should resolve to the example file")
	}
}

func TestLoadMissingAndCorrupt(t *testing.T) {
	t.Parallel()

	// Missing: both files absent.
	s := Load(t.TempDir(), logx.Nop())
	if s != Defaults() {
		t.Fatalf("missing secrets should yield defaults, got %+v", s)
	}

	// Corrupt: unparseable yaml degrades to defaults, never errors.
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "secrets.yaml"), "wa_to: [unclosed")
	s = Load(dir, logx.Nop())
	if s != Defaults() {
		t.Fatalf("corrupt secrets should yield defaults, got %+v", s)
	}
	if s.To != "" {
		t.Fatalf("defaults must disable sending, To = %q", s.To)
	}
}

func TestManagerReload(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "secrets.yaml"), `wa_to: "before@g.us"`)

	m := NewManager(dir, logx.Nop())
	if m.Current().To != "before@g.us" {
		t.Fatalf("Current().To = %q", m.Current().To)
	}

	writeFile(t, filepath.Join(dir, "secrets.yaml"), `wa_to: "after@g.us"`)
	if got := m.Reload().To; got != "after@g.us" {
		t.Fatalf("Reload().To = %q", got)
	}
	if m.Current().To != "after@g.us" {
		t.Fatalf("Current() should observe the reload")
	}
}
