package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"quotebot/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ChangeListener fires when the watched config file is reloaded successfully.
type ChangeListener func(*Config)

// Watcher reloads strategy parameters when the config file changes on disk.
// Only the strategy section is hot-swappable; exchange credentials and loop
// intervals require a restart.
type Watcher struct {
	path string
	v    *viper.Viper

	mu        sync.RWMutex
	current   *Config
	listeners []ChangeListener
}

// NewWatcher loads the config file and starts watching it for changes.
func NewWatcher(path string) (*Watcher, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config watcher: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetConfigFile(abs)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config watcher: read failed: %w", err)
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	w := &Watcher{path: abs, v: v, current: cfg}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := w.reload(); err != nil {
			logger.Errorf("config reload failed: %v", err)
			return
		}
		logger.Infof("config reloaded (%s)", evt.Name)
	})
	v.WatchConfig()
	return w, nil
}

func (w *Watcher) reload() error {
	if err := w.v.ReadInConfig(); err != nil {
		return err
	}
	cfg, err := decode(w.v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.current = cfg
	listeners := append([]ChangeListener(nil), w.listeners...)
	w.mu.Unlock()
	for _, fn := range listeners {
		fn(cfg)
	}
	return nil
}

// Current returns the most recently loaded config.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a listener invoked after each successful reload.
func (w *Watcher) OnChange(fn ChangeListener) {
	if fn == nil {
		return
	}
	w.mu.Lock()
	w.listeners = append(w.listeners, fn)
	w.mu.Unlock()
}
