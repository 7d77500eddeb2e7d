// config.go: Resolved configuration types for the dev environment
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	"time"
)

// ResolveOptions controls how bare import specifiers are turned into
// absolute module ids before a resolveId hook ever runs.
//
// Example:
//
//	opts := ResolveOptions{
//		MainFields:  []string{"browser", "module", "main"},
//		Conditions:  []string{"import", "module", "browser"},
//		Extensions:  []string{".mjs", ".js", ".ts", ".jsx", ".tsx", ".json"},
//		Dedupe:      []string{"react", "react-dom"},
//		PreserveSymlinks: false,
//	}
type ResolveOptions struct {
	MainFields       []string `json:"main_fields,omitempty" yaml:"main_fields,omitempty"`
	Conditions       []string `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Extensions       []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	Dedupe           []string `json:"dedupe,omitempty" yaml:"dedupe,omitempty"`
	PreserveSymlinks bool     `json:"preserve_symlinks,omitempty" yaml:"preserve_symlinks,omitempty"`
}

// DefaultResolveOptions returns the conventional JS-ecosystem resolve
// defaults.
func DefaultResolveOptions() ResolveOptions {
	return ResolveOptions{
		MainFields: []string{"browser", "module", "main"},
		Conditions: []string{"import", "module", "browser", "default"},
		Extensions: []string{".mjs", ".js", ".mts", ".ts", ".jsx", ".tsx", ".json"},
	}
}

// OptimizeDepsOptions configures the deps-optimizer selection policy
// described in spec.md §4.6.
type OptimizeDepsOptions struct {
	NoDiscovery bool     `json:"no_discovery,omitempty" yaml:"no_discovery,omitempty"`
	Include     []string `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude     []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// DevOptions are the dev-server settings a DevOptionsWatcher can reload:
// the crawl-idle debounce window, the warmup request list, and
// recoverability. Broader build configuration is an external collaborator
// per spec.md §1. Of these fields only Recoverable is read: Init passes it
// to the container once, and TransformRequest checks the current value on
// every call. The crawl-end finder always uses its fixed 50ms window and
// does not read CrawlEndDebounce, and nothing reads WarmupEntries.
type DevOptions struct {
	CrawlEndDebounce time.Duration `json:"crawl_end_debounce,omitempty" yaml:"crawl_end_debounce,omitempty"`
	WarmupEntries    []string      `json:"warmup_entries,omitempty" yaml:"warmup_entries,omitempty"`
	Recoverable      bool          `json:"recoverable,omitempty" yaml:"recoverable,omitempty"`
}

// Validate checks DevOptions for internal consistency.
func (o *DevOptions) Validate() error {
	if o.CrawlEndDebounce < 0 {
		return NewConfigValidationError("crawl_end_debounce must not be negative", nil)
	}
	return nil
}

// DefaultDevOptions returns the spec.md §4.7 default: a 50ms crawl-idle
// debounce and no warmup entries.
func DefaultDevOptions() DevOptions {
	return DevOptions{
		CrawlEndDebounce: 50 * time.Millisecond,
	}
}

// ResolvedConfig is the environment-facing configuration bundle: root path,
// logger, resolve options, and dev options. It is the Go binding of
// spec.md §3's "resolved configuration" field on Environment.
type ResolvedConfig struct {
	Root           string          `json:"root" yaml:"root"`
	Mode           string          `json:"mode,omitempty" yaml:"mode,omitempty"`
	Logger         Logger          `json:"-" yaml:"-"`
	Resolve        ResolveOptions  `json:"resolve,omitempty" yaml:"resolve,omitempty"`
	Dev            DevOptions      `json:"dev,omitempty" yaml:"dev,omitempty"`
	OptimizeDeps   OptimizeDepsOptions `json:"optimize_deps,omitempty" yaml:"optimize_deps,omitempty"`
}

// Validate checks the resolved configuration for internal consistency.
func (c *ResolvedConfig) Validate() error {
	if c.Root == "" {
		return NewConfigValidationError("root must not be empty", nil)
	}
	if c.Mode == "" {
		c.Mode = "dev"
	}
	return c.Dev.Validate()
}

// DefaultResolvedConfig returns a ResolvedConfig with dev-mode defaults and
// a NoOpLogger, ready for a caller to override fields on.
func DefaultResolvedConfig(root string) ResolvedConfig {
	return ResolvedConfig{
		Root:    root,
		Mode:    "dev",
		Logger:  DefaultLogger(),
		Resolve: DefaultResolveOptions(),
		Dev:     DefaultDevOptions(),
	}
}
