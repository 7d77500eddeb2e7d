// config_watcher.go: Hot-reload of DevOptions via argus file watching
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/argus"
	"gopkg.in/yaml.v3"
)

// DevOptionsWatcherOptions configures the behavior of the dev-options
// config watcher.
type DevOptionsWatcherOptions struct {
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`
	CacheTTL     time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
	ErrorHandler func(error, string)
}

// DefaultDevOptionsWatcherOptions returns defaults tuned for a dev-options
// file that changes rarely relative to source files.
func DefaultDevOptionsWatcherOptions() DevOptionsWatcherOptions {
	return DevOptionsWatcherOptions{
		PollInterval: 2 * time.Second,
		CacheTTL:     1 * time.Second,
	}
}

// DevOptionsWatcher hot-reloads a DevOptions file and applies the latest
// value onto a DevEnvironment's running configuration.
type DevOptionsWatcher struct {
	env        *DevEnvironment
	logger     Logger
	watcher    *argus.Watcher
	configPath string
	options    DevOptionsWatcherOptions

	mutex   sync.Mutex
	enabled atomic.Bool
	stopped atomic.Bool
	stopOnce sync.Once

	current atomic.Pointer[DevOptions]
}

// NewDevOptionsWatcher creates a watcher that keeps env's DevOptions in
// sync with configPath.
func NewDevOptionsWatcher(env *DevEnvironment, configPath string, options DevOptionsWatcherOptions, logger Logger) *DevOptionsWatcher {
	argusConfig := argus.Config{
		PollInterval:         options.PollInterval,
		CacheTTL:             options.CacheTTL,
		MaxWatchedFiles:      1,
		OptimizationStrategy: argus.OptimizationSingleEvent,
		ErrorHandler: func(err error, filepath string) {
			if options.ErrorHandler != nil {
				options.ErrorHandler(err, filepath)
			} else {
				logger.Error("dev options file watching error", "error", err, "file", filepath)
			}
		},
	}

	return &DevOptionsWatcher{
		env:        env,
		logger:     logger,
		watcher:    argus.New(argusConfig),
		configPath: configPath,
		options:    options,
	}
}

// Start loads the initial dev options, applies them, and begins watching
// configPath for changes.
func (w *DevOptionsWatcher) Start() error {
	if w.stopped.Load() {
		return NewConfigWatcherError("dev options watcher has been stopped and cannot be restarted", nil)
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	if !w.enabled.CompareAndSwap(false, true) {
		return NewConfigWatcherError("dev options watcher is already running", nil)
	}

	opts, err := w.loadFromFile(w.configPath)
	if err != nil {
		w.enabled.Store(false)
		return NewConfigWatcherError("failed to load initial dev options", err)
	}
	w.current.Store(&opts)
	w.env.ApplyDevOptions(opts)

	if err := w.watcher.Watch(w.configPath, w.handleChange); err != nil {
		w.enabled.Store(false)
		return NewConfigWatcherError("failed to watch dev options file", err)
	}
	if err := w.watcher.Start(); err != nil {
		w.enabled.Store(false)
		return NewConfigWatcherError("failed to start argus watcher for dev options", err)
	}

	w.logger.Info("dev options watcher started", "config_path", w.configPath)
	return nil
}

// Stop permanently stops the watcher; it cannot be restarted.
func (w *DevOptionsWatcher) Stop() error {
	if w.stopped.Load() {
		return NewConfigWatcherError("dev options watcher is already stopped", nil)
	}

	var stopErr error
	w.stopOnce.Do(func() {
		w.mutex.Lock()
		defer w.mutex.Unlock()

		if !w.enabled.CompareAndSwap(true, false) {
			stopErr = NewConfigWatcherError("dev options watcher is not running", nil)
			return
		}
		w.stopped.Store(true)

		if err := w.watcher.Stop(); err != nil {
			w.enabled.Store(true)
			stopErr = NewConfigWatcherError("failed to stop argus watcher", err)
			return
		}
		w.logger.Info("dev options watcher stopped")
	})
	return stopErr
}

// Current returns the most recently applied DevOptions, or nil if Start
// has not yet succeeded.
func (w *DevOptionsWatcher) Current() *DevOptions {
	return w.current.Load()
}

func (w *DevOptionsWatcher) handleChange(event argus.ChangeEvent) {
	if event.IsDelete {
		w.logger.Warn("dev options file was deleted, skipping reload", "path", event.Path)
		return
	}

	opts, err := w.loadFromFile(event.Path)
	if err != nil {
		w.logger.Error("failed to load updated dev options", "error", err, "path", event.Path)
		return
	}
	w.current.Store(&opts)
	w.env.ApplyDevOptions(opts)
	w.logger.Info("dev options reloaded", "path", event.Path)
}

func (w *DevOptionsWatcher) loadFromFile(path string) (DevOptions, error) {
	var opts DevOptions

	cleanPath := path
	info, err := os.Stat(cleanPath)
	if err != nil {
		return opts, NewConfigNotFoundError(path)
	}
	if !info.Mode().IsRegular() || info.Size() > 1*1024*1024 {
		return opts, NewConfigValidationError("dev options file invalid or too large", nil)
	}

	raw, err := os.ReadFile(cleanPath) // #nosec G304 -- path is operator-supplied at startup, not request-derived
	if err != nil {
		return opts, NewConfigParseError(path, err)
	}

	format := argus.DetectFormat(path)
	switch format {
	case argus.FormatJSON:
		err = json.Unmarshal(raw, &opts)
	case argus.FormatYAML:
		err = yaml.Unmarshal(raw, &opts)
	default:
		return opts, NewConfigParseError(path, NewConfigValidationError("unsupported dev options format", nil))
	}
	if err != nil {
		return opts, NewConfigParseError(path, err)
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}
