// environment_close.go: phased environment shutdown
//
// The phase order (stop accepting -> drain -> close collaborators) is
// grounded on shutdown_coordinator.go's GracefulShutdown; the
// Recoverable flag resolves Open Question 1 (spec.md §9) by making the
// post-close behavior of resolveId/load/transform a construction-time
// choice rather than a guess — see DESIGN.md.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	"context"
)

// Close shuts the environment down in order: set the closing flag (so no
// new hot event is processed against a dying graph), close the hot
// channel, cancel the crawl-end finder, abort and await every pending
// request, then close the container and the deps optimizer.
func (e *DevEnvironment) Close(ctx context.Context) error {
	if !e.closing.CompareAndSwap(false, true) {
		return nil
	}

	if err := e.hotChannel.Close(); err != nil {
		e.logger().Warn("hot channel close failed", "error", err)
	}

	e.crawlEnd.Cancel()

	e.pending.Range(func(key, value any) bool {
		pending := value.(*PendingRequest)
		if pending.Abort != nil {
			pending.Abort()
		}
		<-pending.Done
		return true
	})

	var containerErr error
	e.mu.Lock()
	if e.container != nil {
		containerErr = e.container.Close(nil)
	}
	e.mu.Unlock()
	if containerErr != nil {
		e.logger().Error("container close failed", "error", containerErr)
	}

	if e.optimizer != nil {
		if err := e.optimizer.Close(ctx); err != nil {
			e.logger().Warn("deps optimizer close failed", "error", err)
		}
	}

	return containerErr
}
