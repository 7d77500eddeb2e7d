// crawlend_test.go: crawl-idle detector uniqueness and debounce behavior
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCrawlEndFinder_FiresOnceAfterDebounce(t *testing.T) {
	finder := NewCrawlEndFinder()

	var calls int
	finder.OnCrawlEnd(func() { calls++ })

	finder.RegisterRequestProcessing("a", func() error { return nil })
	finder.RegisterRequestProcessing("b", func() error { return nil })

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, calls)

	finder.RegisterRequestProcessing("c", func() error { return nil })
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, calls, "a late registration after the callback fired must not re-fire it")
}

func TestCrawlEndFinder_RegisterIsIdempotentPerID(t *testing.T) {
	finder := NewCrawlEndFinder()

	var runs int
	finder.RegisterRequestProcessing("a", func() error {
		runs++
		return nil
	})
	finder.RegisterRequestProcessing("a", func() error {
		runs++
		return nil
	})

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, runs)
}

func TestCrawlEndFinder_WaitForRequestsIdleIgnoresSelf(t *testing.T) {
	finder := NewCrawlEndFinder()

	done := make(chan CrawlEndResult, 1)
	go func() {
		result, err := finder.WaitForRequestsIdle("self")
		assert.NoError(t, err)
		done <- result
	}()

	select {
	case result := <-done:
		assert.False(t, result.Cancelled)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("WaitForRequestsIdle did not resolve after ignoring the only id")
	}
}

func TestCrawlEndFinder_CancelUnblocksWaiters(t *testing.T) {
	finder := NewCrawlEndFinder()
	finder.RegisterRequestProcessing("a", func() error {
		time.Sleep(time.Hour)
		return nil
	})

	done := make(chan CrawlEndResult, 1)
	go func() {
		result, _ := finder.WaitForRequestsIdle("")
		done <- result
	}()

	time.Sleep(10 * time.Millisecond)
	finder.Cancel()

	select {
	case result := <-done:
		assert.True(t, result.Cancelled)
	case <-time.After(time.Second):
		t.Fatal("cancel did not unblock a waiter")
	}
}
