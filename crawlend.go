// crawlend.go: the crawl-idle detector
//
// The mutex-guarded set bookkeeping is grounded on request_tracker.go's
// RequestTracker (per-plugin counters behind sync.Mutex, a ticking drain
// wait); the debounce timer replaces its polling ticker with a single
// time.AfterFunc restarted on every settle, since the finder only ever
// needs one pending deadline rather than a poll loop — see DESIGN.md.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	"sync"
	"time"
)

// crawlEndDebounce is the quiescence window that coalesces bursts of
// micro-imports between chained transforms before firing onCrawlEnd
// (spec.md §4.7).
const crawlEndDebounce = 50 * time.Millisecond

// CrawlEndResult is returned by WaitForRequestsIdle, resolving Open
// Question 2: cancellation is reported rather than left to hang forever.
type CrawlEndResult struct {
	Cancelled bool
}

// CrawlEndFinder tracks the initial wave of in-flight requests and fires
// a one-shot callback once every registered id has settled and a 50ms
// debounce has elapsed with no further registrations.
type CrawlEndFinder struct {
	mu sync.Mutex

	registered map[string]struct{}
	seen       map[string]struct{}

	callbacks []func()
	waiters   []chan CrawlEndResult

	timer     *time.Timer
	cancelled bool
	called    bool
}

// NewCrawlEndFinder constructs an empty finder.
func NewCrawlEndFinder() *CrawlEndFinder {
	return &CrawlEndFinder{
		registered: make(map[string]struct{}),
		seen:       make(map[string]struct{}),
	}
}

// RegisterRequestProcessing registers id as in-flight unless it has
// already been seen (idempotent per id), invokes doneFn to kick off the
// work, and arranges for MarkIDAsDone to run once doneFn settles
// regardless of outcome.
func (f *CrawlEndFinder) RegisterRequestProcessing(id string, doneFn func() error) {
	f.mu.Lock()
	if _, ok := f.seen[id]; ok {
		f.mu.Unlock()
		return
	}
	f.seen[id] = struct{}{}
	f.registered[id] = struct{}{}
	f.mu.Unlock()

	go func() {
		_ = doneFn()
		f.MarkIDAsDone(id)
	}()
}

// WaitForRequestsIdle returns once every registered request has settled
// and the debounce window has elapsed, or once the finder is cancelled.
// A non-empty ignoredId is marked seen-and-done first, releasing a
// caller that would otherwise wait on its own in-flight request.
func (f *CrawlEndFinder) WaitForRequestsIdle(ignoredID string) (CrawlEndResult, error) {
	if ignoredID != "" {
		f.mu.Lock()
		f.seen[ignoredID] = struct{}{}
		delete(f.registered, ignoredID)
		f.mu.Unlock()
		f.maybeArmDebounce()
	}

	ch := make(chan CrawlEndResult, 1)

	f.mu.Lock()
	if f.called {
		f.mu.Unlock()
		return CrawlEndResult{}, nil
	}
	if f.cancelled {
		f.mu.Unlock()
		return CrawlEndResult{Cancelled: true}, nil
	}
	f.waiters = append(f.waiters, ch)
	f.mu.Unlock()

	result := <-ch
	return result, nil
}

// OnCrawlEnd registers cb to run exactly once, the moment the crawl
// quiesces.
func (f *CrawlEndFinder) OnCrawlEnd(cb func()) {
	f.mu.Lock()
	if f.called {
		f.mu.Unlock()
		cb()
		return
	}
	f.callbacks = append(f.callbacks, cb)
	f.mu.Unlock()
}

// MarkIDAsDone removes id from the registered set; if that empties the
// set and the finder is not cancelled, it (re)starts the 50ms debounce
// timer.
func (f *CrawlEndFinder) MarkIDAsDone(id string) {
	f.mu.Lock()
	delete(f.registered, id)
	f.mu.Unlock()
	f.maybeArmDebounce()
}

func (f *CrawlEndFinder) maybeArmDebounce() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancelled || f.called {
		return
	}
	if len(f.registered) != 0 {
		if f.timer != nil {
			f.timer.Stop()
			f.timer = nil
		}
		return
	}
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(crawlEndDebounce, f.fire)
}

func (f *CrawlEndFinder) fire() {
	f.mu.Lock()
	if f.cancelled || f.called || len(f.registered) != 0 {
		f.mu.Unlock()
		return
	}
	f.called = true
	callbacks := f.callbacks
	f.callbacks = nil
	waiters := f.waiters
	f.waiters = nil
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
	for _, ch := range waiters {
		ch <- CrawlEndResult{}
	}
}

// Cancel prevents the callback from firing after this call, used at
// environment shutdown so a late debounce fire does not run against a
// closed environment.
func (f *CrawlEndFinder) Cancel() {
	f.mu.Lock()
	f.cancelled = true
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	waiters := f.waiters
	f.waiters = nil
	f.mu.Unlock()

	for _, ch := range waiters {
		ch <- CrawlEndResult{Cancelled: true}
	}
}
