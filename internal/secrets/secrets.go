// Package secrets resolves the outbound-delivery configuration from a
// secrets.yaml file, falling back to secrets.yaml.example and finally to
// built-in defaults. Loading never fails: a broken or missing file degrades
// delivery, it must not break the record mutation that triggered a send.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "go.yaml.in/yaml/v3"

	"github.com/webtense/btr-automation-whatsapp/pkg/logx"
)

const (
	primaryFile  = "secrets.yaml"
	fallbackFile = "secrets.yaml.example"

	defaultTextCmd        = "npx mudslide@latest send {to} {text}"
	defaultImageCmd       = "npx mudslide@latest send {to} --image {file}"
	defaultTimeout        = 120 * time.Second
	defaultSummaryTimeout = 180 * time.Second
)

// Snapshot is one resolved read of the secrets file. Destination empty means
// sending is disabled.
type Snapshot struct {
	To             string
	TextCmd        string
	ImageCmd       string
	Timeout        time.Duration
	SummaryTimeout time.Duration

	// Telegram transport (used only when the alternate transport is selected).
	TelegramToken  string
	TelegramChatID int64
}

// raw matches the file's key-value layout. All keys optional.
type raw struct {
	To                string `yaml:"wa_to"`
	TextCmd           string `yaml:"wa_text_cmd"`
	ImageCmd          string `yaml:"wa_image_cmd"`
	TimeoutSec        int    `yaml:"wa_timeout_sec"`
	SummaryTimeoutSec int    `yaml:"wa_summary_timeout_sec"`
	TelegramToken     string `yaml:"tg_token"`
	TelegramChatID    int64  `yaml:"tg_chat_id"`
}

// Defaults returns the all-defaults Snapshot (empty destination).
func Defaults() Snapshot {
	return Snapshot{
		TextCmd:        defaultTextCmd,
		ImageCmd:       defaultImageCmd,
		Timeout:        defaultTimeout,
		SummaryTimeout: defaultSummaryTimeout,
	}
}

// Load reads secrets from dir. Resolution order: secrets.yaml if present,
// else secrets.yaml.example. Missing keys take defaults; read or parse
// failures are logged and yield the all-defaults Snapshot.
func Load(dir string, log logx.Logger) Snapshot {
	path := Path(dir)
	b, err := os.ReadFile(path)
	if err != nil {
		log.Warn("secrets unavailable, using defaults", logx.String("path", path), logx.Err(err))
		return Defaults()
	}

	var r raw
	if err := yaml.Unmarshal(b, &r); err != nil {
		log.Warn("secrets unparseable, using defaults", logx.String("path", path), logx.Err(err))
		return Defaults()
	}

	s := Defaults()
	if r.To != "" {
		s.To = r.To
	}
	if r.TextCmd != "" {
		s.TextCmd = r.TextCmd
	}
	if r.ImageCmd != "" {
		s.ImageCmd = r.ImageCmd
	}
	if r.TimeoutSec > 0 {
		s.Timeout = time.Duration(r.TimeoutSec) * time.Second
	}
	if r.SummaryTimeoutSec > 0 {
		s.SummaryTimeout = time.Duration(r.SummaryTimeoutSec) * time.Second
	}
	s.TelegramToken = r.TelegramToken
	s.TelegramChatID = r.TelegramChatID
	return s
}

// Path returns the file Load would read from dir: the primary secrets.yaml
// when it exists, else the documented example fallback.
func Path(dir string) string {
	primary := filepath.Join(dir, primaryFile)
	if _, err := os.Stat(primary); err == nil {
		return primary
	}
	return filepath.Join(dir, fallbackFile)
}

// String renders the snapshot for debug logs with the destination redacted.
func (s Snapshot) String() string {
	to := "(unset)"
	if s.To != "" {
		to = "(set)"
	}
	return fmt.Sprintf("secrets{to=%s timeout=%s summary_timeout=%s}", to, s.Timeout, s.SummaryTimeout)
}
