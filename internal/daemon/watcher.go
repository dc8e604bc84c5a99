package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/doccpub/internal/logfields"
)

// ConfigWatcher monitors the configuration file and triggers daemon reloads.
type ConfigWatcher struct {
	configPath   string
	reload       func() error
	watcher      *fsnotify.Watcher
	stopChan     chan struct{}
	reloadChan   chan struct{}
	debounceTime time.Duration
}

// NewConfigWatcher creates a watcher that calls reload after the config file
// changes settle.
func NewConfigWatcher(configPath string, reload func() error) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	return &ConfigWatcher{
		configPath:   absPath,
		reload:       reload,
		watcher:      watcher,
		stopChan:     make(chan struct{}),
		reloadChan:   make(chan struct{}, 1),
		debounceTime: 2 * time.Second,
	}, nil
}

// Start begins monitoring the configuration file.
func (cw *ConfigWatcher) Start(ctx context.Context) error {
	// Watching the directory survives editors that replace the file.
	configDir := filepath.Dir(cw.configPath)
	if err := cw.watcher.Add(configDir); err != nil {
		return fmt.Errorf("failed to watch config directory %s: %w", configDir, err)
	}

	slog.Info("Starting configuration watcher", logfields.Path(cw.configPath))

	go cw.watchLoop(ctx)
	go cw.reloadLoop(ctx)
	return nil
}

// Stop stops the configuration watcher.
func (cw *ConfigWatcher) Stop(ctx context.Context) error {
	slog.Info("Stopping configuration watcher")
	close(cw.stopChan)
	if err := cw.watcher.Close(); err != nil {
		slog.Error("Error closing file watcher", logfields.Error(err))
	}
	return nil
}

func (cw *ConfigWatcher) watchLoop(ctx context.Context) {
	configFile := filepath.Base(cw.configPath)

	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stopChan:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != configFile {
				continue
			}

			switch {
			case event.Op.Has(fsnotify.Write), event.Op.Has(fsnotify.Create):
				slog.Debug("Config file change detected", logfields.Path(event.Name))
				cw.triggerReload()
			case event.Op.Has(fsnotify.Remove):
				slog.Warn("Config file removed", logfields.Path(event.Name))
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Config watcher error", logfields.Error(err))
		}
	}
}

// triggerReload coalesces rapid change bursts into one pending reload.
func (cw *ConfigWatcher) triggerReload() {
	select {
	case cw.reloadChan <- struct{}{}:
	default:
	}
}

func (cw *ConfigWatcher) reloadLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stopChan:
			return
		case <-cw.reloadChan:
			time.Sleep(cw.debounceTime)
			// Drain anything that arrived during the debounce window.
			select {
			case <-cw.reloadChan:
			default:
			}

			slog.Info("Reloading configuration", logfields.Path(cw.configPath))
			if err := cw.reload(); err != nil {
				slog.Error("Configuration reload failed, keeping previous configuration", logfields.Error(err))
			}
		}
	}
}
