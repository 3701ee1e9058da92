package transport

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/webtense/btr-automation-whatsapp/internal/secrets"
	"github.com/webtense/btr-automation-whatsapp/pkg/logx"
)

func snapshotWith(mut func(*secrets.Snapshot)) ConfigFunc {
	s := secrets.Defaults()
	if mut != nil {
		mut(&s)
	}
	return func() secrets.Snapshot { return s }
}

func TestBuildArgv(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		template string
		values   map[string]string
		want     []string
	}{
		{
			name:     "text template",
			template: "npx mudslide@latest send {to} {text}",
			values:   map[string]string{"to": "g@g.us", "text": "hola mundo"},
			want:     []string{"npx", "mudslide@latest", "send", "g@g.us", "hola mundo"},
		},
		{
			name:     "placeholder inside word",
			template: "wa-cli --to={to} --msg={text}",
			values:   map[string]string{"to": "g", "text": "x"},
			want:     []string{"wa-cli", "--to=g", "--msg=x"},
		},
		{
			name:     "shell metacharacters stay inert",
			template: "send {to} {text}",
			values:   map[string]string{"to": "g", "text": "a; rm -rf / && $(reboot)"},
			want:     []string{"send", "g", "a; rm -rf / && $(reboot)"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := buildArgv(tt.template, tt.values); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("buildArgv() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSendTextEmptyDestination(t *testing.T) {
	t.Parallel()
	marker := filepath.Join(t.TempDir(), "invoked")
	e := NewExec(snapshotWith(func(s *secrets.Snapshot) {
		s.To = ""
		s.TextCmd = "touch " + marker
	}), logx.Nop())

	err := e.SendText(context.Background(), "hola")
	if !errors.Is(err, ErrNoDestination) {
		t.Fatalf("err = %v, want ErrNoDestination", err)
	}
	if _, statErr := os.Stat(marker); !os.IsNotExist(statErr) {
		t.Fatal("command must not run when destination is empty")
	}
}

func TestSendTextSuccess(t *testing.T) {
	t.Parallel()
	e := NewExec(snapshotWith(func(s *secrets.Snapshot) {
		s.To = "group@g.us"
		s.TextCmd = "true {to} {text}"
	}), logx.Nop())

	if err := e.SendText(context.Background(), "hola"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
}

func TestSendTextTimeout(t *testing.T) {
	t.Parallel()
	e := NewExec(snapshotWith(func(s *secrets.Snapshot) {
		s.To = "group@g.us"
		s.TextCmd = "sleep 5"
		s.Timeout = 100 * time.Millisecond
	}), logx.Nop())

	err := e.SendText(context.Background(), "hola")
	var terr *TimeoutError
	if !errors.As(err, &terr) {
		t.Fatalf("err = %v, want *TimeoutError", err)
	}
	if terr.Timeout != 100*time.Millisecond {
		t.Fatalf("TimeoutError.Timeout = %v", terr.Timeout)
	}
}

func TestSendTextNonZeroExit(t *testing.T) {
	t.Parallel()
	e := NewExec(snapshotWith(func(s *secrets.Snapshot) {
		s.To = "group@g.us"
		s.TextCmd = "false {to} {text}"
	}), logx.Nop())

	err := e.SendText(context.Background(), "hola")
	var xerr *ExitError
	if !errors.As(err, &xerr) {
		t.Fatalf("err = %v, want *ExitError", err)
	}
	if xerr.Code == 0 {
		t.Fatalf("ExitError.Code = %d, want non-zero", xerr.Code)
	}
}

func TestSendTextMissingBinary(t *testing.T) {
	t.Parallel()
	e := NewExec(snapshotWith(func(s *secrets.Snapshot) {
		s.To = "group@g.us"
		s.TextCmd = "definitely-not-a-real-binary-xyz {to} {text}"
	}), logx.Nop())

	err := e.SendText(context.Background(), "hola")
	if err == nil {
		t.Fatal("expected an error for a missing binary")
	}
	var terr *TimeoutError
	var xerr *ExitError
	if errors.As(err, &terr) || errors.As(err, &xerr) {
		t.Fatalf("missing binary must be the generic failure, got %T", err)
	}
}

func TestSendImageWritesAndRemovesTempFile(t *testing.T) {
	t.Parallel()
	capture := filepath.Join(t.TempDir(), "seen-path")
	e := NewExec(snapshotWith(func(s *secrets.Snapshot) {
		s.To = "group@g.us"
		// cp stands in for the image client: it proves the temp file existed
		// with the payload at invocation time.
		s.ImageCmd = "cp {file} " + capture
	}), logx.Nop())

	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	if err := e.SendImage(context.Background(), "foto.jpeg", payload); err != nil {
		t.Fatalf("SendImage: %v", err)
	}

	got, err := os.ReadFile(capture)
	if err != nil {
		t.Fatalf("image command did not receive the staged file: %v", err)
	}
	if !reflect.DeepEqual(got, payload) {
		t.Fatalf("payload mismatch: %v", got)
	}

	// The staged temp file must be gone after the send.
	entries, err := os.ReadDir(os.TempDir())
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	for _, ent := range entries {
		if strings.HasPrefix(ent.Name(), "otnotify-") && strings.HasSuffix(ent.Name(), ".jpeg") {
			info, err := ent.Info()
			if err == nil && info.ModTime().After(time.Now().Add(-time.Minute)) {
				t.Fatalf("staged temp file leaked: %s", ent.Name())
			}
		}
	}
}

func TestWriteTempImageDefaultsExtension(t *testing.T) {
	t.Parallel()
	path, err := writeTempImage("no-extension", []byte("x"))
	if err != nil {
		t.Fatalf("writeTempImage: %v", err)
	}
	defer os.Remove(path)
	if filepath.Ext(path) != ".jpg" {
		t.Fatalf("ext = %q, want .jpg", filepath.Ext(path))
	}
}
