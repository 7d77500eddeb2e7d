// errors.go: structured error definitions for the go-devserver plugin container
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	stderrors "errors"

	"github.com/agilira/go-errors"
)

// Error codes for the go-devserver plugin container.
const (
	// Container lifecycle errors (3000-3099). ClosedServer carries the
	// fixed code ERR_CLOSED_SERVER instead of a numbered one.
	ErrCodeClosedServer       = "ERR_CLOSED_SERVER"
	ErrCodeContainerNotInited = "CONTAINER_3002"
	ErrCodeEnvironmentClosed  = "CONTAINER_3003"

	// Hook-driver errors (3100-3199)
	ErrCodePluginError         = "HOOK_3101"
	ErrCodeModuleInfoMissing   = "HOOK_3102"
	ErrCodeUnsupportedContext  = "HOOK_3103"
	ErrCodeResolveIDFailed     = "HOOK_3104"
	ErrCodeLoadFailed          = "HOOK_3105"
	ErrCodeTransformFailed     = "HOOK_3106"

	// Source-map errors (3200-3299)
	ErrCodeSourceMapDecode  = "SOURCEMAP_3201"
	ErrCodeSourceMapCombine = "SOURCEMAP_3202"

	// Crawl-end errors (3300-3399)
	ErrCodeCrawlEndAlreadyFired = "CRAWL_3301"

	// Deps optimizer errors. OutdatedOptimizedDep carries the fixed code
	// ERR_OUTDATED_OPTIMIZED_DEP instead of a numbered one.
	ErrCodeOutdatedOptimizedDep = "ERR_OUTDATED_OPTIMIZED_DEP"

	// Environment / configuration errors (3500-3599)
	ErrCodeInvalidEnvironmentName = "ENV_3501"
	ErrCodeConfigNotFound         = "ENV_3502"
	ErrCodeConfigParseError       = "ENV_3503"
	ErrCodeConfigValidationError  = "ENV_3504"
	ErrCodeConfigWatcherError     = "ENV_3505"
)

// Container lifecycle error constructors

// NewClosedServerError reports that a hook was invoked after the container
// or environment finished closing and recoverable mode was not enabled.
func NewClosedServerError(hook string) *errors.Error {
	return errors.New(ErrCodeClosedServer, "plugin container is closed").
		WithUserMessage("The dev server is shutting down; retry the request").
		WithContext("hook", hook).
		WithSeverity("warning").
		AsRetryable()
}

// NewContainerNotInitedError reports access to a container before Init ran.
func NewContainerNotInitedError(environment string) *errors.Error {
	return errors.New(ErrCodeContainerNotInited, "plugin container accessed before init").
		WithUserMessage("The environment must be initialized before serving requests").
		WithContext("environment", environment).
		WithSeverity("error")
}

// Hook-driver error constructors

// NewPluginError enriches a plugin-originated error with attribution.
// PluginContext.Error builds it from the ErrorFormatter's output; callers
// should not construct this directly.
func NewPluginError(cause error, plugin, id string) *errors.Error {
	return errors.Wrap(cause, ErrCodePluginError, "plugin hook failed").
		WithUserMessage("A plugin reported an error while processing this module").
		WithContext("plugin", plugin).
		WithContext("id", id).
		WithSeverity("error")
}

// NewModuleInfoMissingError reports that the module graph could not produce
// a node for the given id, making this.load unable to proceed.
func NewModuleInfoMissingError(id string) *errors.Error {
	return errors.New(ErrCodeModuleInfoMissing, "module info unavailable").
		WithUserMessage("The requested module could not be resolved into the module graph").
		WithContext("id", id).
		WithSeverity("error")
}

// NewUnsupportedContextMethodError is non-fatal: it surfaces as a logged
// warning when a plugin calls emitFile/setAssetSource/getFileName, which
// are not supported in serve mode.
func NewUnsupportedContextMethodError(method, plugin string) *errors.Error {
	return errors.New(ErrCodeUnsupportedContext, "unsupported context method in serve mode").
		WithUserMessage("This operation is only available for production builds").
		WithContext("method", method).
		WithContext("plugin", plugin).
		WithSeverity("warning")
}

func NewResolveIDFailedError(id, importer string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeResolveIDFailed, "resolveId failed").
		WithUserMessage("Failed to resolve the requested module").
		WithContext("id", id).
		WithContext("importer", importer).
		WithSeverity("error")
}

func NewLoadFailedError(id string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeLoadFailed, "load failed").
		WithUserMessage("Failed to load the requested module").
		WithContext("id", id).
		WithSeverity("error")
}

func NewTransformFailedError(id string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeTransformFailed, "transform failed").
		WithUserMessage("Failed to transform the requested module").
		WithContext("id", id).
		WithSeverity("error")
}

// Source-map error constructors

func NewSourceMapDecodeError(cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeSourceMapDecode, "source map decode failed").
		WithUserMessage("A plugin returned a malformed source map").
		WithSeverity("warning")
}

func NewSourceMapCombineError(cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeSourceMapCombine, "source map combine failed").
		WithUserMessage("Failed to chain intermediate source maps").
		WithSeverity("warning")
}

// Crawl-end error constructors

func NewCrawlEndAlreadyFiredError(environment string) *errors.Error {
	return errors.New(ErrCodeCrawlEndAlreadyFired, "crawl-end callback already fired").
		WithUserMessage("The initial crawl has already completed for this environment").
		WithContext("environment", environment).
		WithSeverity("warning")
}

// Deps optimizer error constructors

// NewOutdatedOptimizedDepError is raised when the optimizer invalidates a
// dependency mid-transform; warmup and idle callers treat it as expected
// and swallow it silently.
func NewOutdatedOptimizedDepError(id string) *errors.Error {
	return errors.New(ErrCodeOutdatedOptimizedDep, "optimized dependency is outdated").
		WithUserMessage("The dependency cache was invalidated; retry the request").
		WithContext("id", id).
		WithSeverity("warning").
		AsRetryable()
}

// Environment / configuration error constructors

func NewInvalidEnvironmentNameError(name string) *errors.Error {
	return errors.New(ErrCodeInvalidEnvironmentName, "invalid environment name").
		WithUserMessage("Environment name must be unique and non-empty").
		WithContext("name", name).
		WithSeverity("error")
}

func NewConfigNotFoundError(path string) *errors.Error {
	return errors.New(ErrCodeConfigNotFound, "configuration file not found").
		WithUserMessage("The dev options file could not be found").
		WithContext("config_path", path).
		WithSeverity("error")
}

func NewConfigParseError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeConfigParseError, "configuration parse error").
		WithUserMessage("Failed to parse the dev options file").
		WithContext("config_path", path).
		WithSeverity("error")
}

func NewConfigValidationError(message string, cause error) *errors.Error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeConfigValidationError, "configuration validation error: "+message).
			WithUserMessage("Dev options validation failed").
			WithSeverity("error")
	}
	return errors.New(ErrCodeConfigValidationError, "configuration validation error: "+message).
		WithUserMessage("Dev options validation failed").
		WithSeverity("error")
}

func NewConfigWatcherError(message string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeConfigWatcherError, "configuration watcher error: "+message).
		WithUserMessage("Dev options hot reload failed").
		WithSeverity("error")
}

// IsClosedServer reports whether err is (or wraps) the ClosedServer sentinel.
func IsClosedServer(err error) bool {
	return hasCode(err, ErrCodeClosedServer)
}

// IsOutdatedOptimizedDep reports whether err is (or wraps) the
// OutdatedOptimizedDep sentinel.
func IsOutdatedOptimizedDep(err error) bool {
	return hasCode(err, ErrCodeOutdatedOptimizedDep)
}

func hasCode(err error, code string) bool {
	var agilErr *errors.Error
	if stderrors.As(err, &agilErr) {
		return string(agilErr.ErrorCode()) == code
	}
	return false
}
