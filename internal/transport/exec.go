package transport

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/webtense/btr-automation-whatsapp/internal/secrets"
	"github.com/webtense/btr-automation-whatsapp/pkg/logx"
)

// ConfigFunc supplies a fresh secrets snapshot per send, so destination and
// timeout edits take effect without restarting anything.
type ConfigFunc func() secrets.Snapshot

// Exec delivers messages by running the configured external command once per
// send. Command templates are split into an argument vector before the
// placeholder values are substituted, so user-controlled text (descriptions,
// notes) never reaches a shell.
type Exec struct {
	config  ConfigFunc
	log     logx.Logger
	limiter *rate.Limiter
	timeout func(secrets.Snapshot) time.Duration
}

type ExecOption func(*Exec)

// WithRateLimit caps the outbound invocation rate.
func WithRateLimit(l *rate.Limiter) ExecOption {
	return func(e *Exec) { e.limiter = l }
}

// WithSummaryTimeout makes the sender use the longer periodic-summary timeout.
func WithSummaryTimeout() ExecOption {
	return func(e *Exec) { e.timeout = func(s secrets.Snapshot) time.Duration { return s.SummaryTimeout } }
}

func NewExec(config ConfigFunc, log logx.Logger, opts ...ExecOption) *Exec {
	e := &Exec{
		config:  config,
		log:     log,
		timeout: func(s secrets.Snapshot) time.Duration { return s.Timeout },
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Exec) SendText(ctx context.Context, text string) error {
	cfg := e.config()
	if cfg.To == "" {
		e.log.Error("destination address empty in secrets.yaml(.example), text not sent")
		return ErrNoDestination
	}
	argv := buildArgv(cfg.TextCmd, map[string]string{"to": cfg.To, "text": text})
	if err := e.run(ctx, argv, e.timeout(cfg)); err != nil {
		return err
	}
	e.log.Info("text message delivered")
	return nil
}

func (e *Exec) SendImage(ctx context.Context, filename string, data []byte) error {
	cfg := e.config()
	if cfg.To == "" {
		e.log.Error("destination address empty in secrets.yaml(.example), image not sent")
		return ErrNoDestination
	}

	path, err := writeTempImage(filename, data)
	if err != nil {
		e.log.Error("image payload could not be staged", logx.String("filename", filename), logx.Err(err))
		return err
	}
	defer os.Remove(path)

	argv := buildArgv(cfg.ImageCmd, map[string]string{"to": cfg.To, "file": path})
	if err := e.run(ctx, argv, e.timeout(cfg)); err != nil {
		return err
	}
	e.log.Info("image delivered", logx.String("filename", filename))
	return nil
}

func (e *Exec) run(ctx context.Context, argv []string, timeout time.Duration) error {
	if len(argv) == 0 {
		e.log.Error("delivery command template is empty")
		return errors.New("transport: empty command template")
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			e.log.Error("delivery aborted while rate-limited", logx.Err(err))
			return err
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Stderr = &stderr

	err := cmd.Run()
	switch {
	case err == nil:
		return nil
	case runCtx.Err() == context.DeadlineExceeded:
		terr := &TimeoutError{Timeout: timeout}
		e.log.Error("delivery timed out", logx.String("cmd", argv[0]), logx.Duration("timeout", timeout))
		return terr
	default:
		var xerr *exec.ExitError
		if errors.As(err, &xerr) {
			derr := &ExitError{Code: xerr.ExitCode(), Stderr: strings.TrimSpace(stderr.String())}
			e.log.Error("delivery command failed",
				logx.String("cmd", argv[0]),
				logx.Int("exit_code", derr.Code),
				logx.String("stderr", derr.Stderr))
			return derr
		}
		e.log.Error("delivery command could not run", logx.String("cmd", argv[0]), logx.Err(err))
		return err
	}
}

// buildArgv splits the template into words first and substitutes placeholder
// values afterwards, inside individual argv elements. Values therefore can
// never add, remove, or join arguments, and no shell is involved.
func buildArgv(template string, values map[string]string) []string {
	words := strings.Fields(template)
	argv := make([]string, 0, len(words))
	for _, w := range words {
		for k, v := range values {
			w = strings.ReplaceAll(w, "{"+k+"}", v)
		}
		argv = append(argv, w)
	}
	return argv
}

// writeTempImage stages the payload in a uniquely named temp file keeping the
// original extension so the delivery client can sniff the media type.
func writeTempImage(filename string, data []byte) (string, error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}
	path := filepath.Join(os.TempDir(), "otnotify-"+uuid.NewString()+ext)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
