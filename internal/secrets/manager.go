package secrets

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/webtense/btr-automation-whatsapp/pkg/logx"
)

// Manager keeps a cached Snapshot refreshed whenever the secrets file
// changes on disk. One-shot callers should use Load directly; the daemon
// uses a Manager so hot edits of the destination or timeout take effect
// without a restart.
type Manager struct {
	dir string
	log logx.Logger

	mu  sync.RWMutex
	cur Snapshot
}

func NewManager(dir string, log logx.Logger) *Manager {
	m := &Manager{dir: dir, log: log}
	m.cur = Load(dir, log)
	return m
}

// Current returns the cached snapshot.
func (m *Manager) Current() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur
}

// Reload re-reads the secrets file immediately.
func (m *Manager) Reload() Snapshot {
	s := Load(m.dir, m.log)
	m.mu.Lock()
	m.cur = s
	m.mu.Unlock()
	return s
}

// Watch starts watching the secrets directory until ctx is cancelled.
// Watching the directory (not the file) survives the rename-and-replace
// pattern editors and config pushes use.
func (m *Manager) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(m.dir); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !m.relevant(ev) {
					continue
				}
				s := m.Reload()
				m.log.Info("secrets reloaded", logx.String("file", filepath.Base(ev.Name)), logx.String("snapshot", s.String()))
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				m.log.Warn("secrets watch error", logx.Err(err))
			}
		}
	}()
	return nil
}

func (m *Manager) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	name := filepath.Base(ev.Name)
	return strings.EqualFold(name, primaryFile) || strings.EqualFold(name, fallbackFile)
}
