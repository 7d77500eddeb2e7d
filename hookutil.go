// hookutil.go: Stable hook sorting and handler extraction
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

// sortedEntry pairs a plugin with the order tier its handler for one
// specific hook requested, so HookUtilities can sort plugins per-hook
// rather than globally.
type sortedEntry[T any] struct {
	plugin *Plugin
	order  HookOrder
	hook   T
}

// sortHooks stably sorts entries so that OrderPre precedes OrderDefault
// precedes OrderPost, preserving input order within each tier. This is the
// single place the container's pre/default/post ordering guarantee (§8
// invariant 1) is implemented.
func sortHooks[T any](entries []sortedEntry[T]) []sortedEntry[T] {
	pre := make([]sortedEntry[T], 0, len(entries))
	def := make([]sortedEntry[T], 0, len(entries))
	post := make([]sortedEntry[T], 0, len(entries))

	for _, e := range entries {
		switch e.order {
		case OrderPre:
			pre = append(pre, e)
		case OrderPost:
			post = append(post, e)
		default:
			def = append(def, e)
		}
	}

	out := make([]sortedEntry[T], 0, len(entries))
	out = append(out, pre...)
	out = append(out, def...)
	out = append(out, post...)
	return out
}

// sortedOptionsHooks returns the plugins' OptionsHooks in pre/default/post
// order.
func sortedOptionsHooks(plugins []*Plugin) []sortedEntry[*OptionsHook] {
	entries := make([]sortedEntry[*OptionsHook], 0, len(plugins))
	for _, p := range plugins {
		if p.Options == nil {
			continue
		}
		entries = append(entries, sortedEntry[*OptionsHook]{plugin: p, order: p.Options.Order, hook: p.Options})
	}
	return sortHooks(entries)
}

func sortedBuildStartHooks(plugins []*Plugin) []sortedEntry[*BuildStartHook] {
	entries := make([]sortedEntry[*BuildStartHook], 0, len(plugins))
	for _, p := range plugins {
		if p.BuildStart == nil {
			continue
		}
		entries = append(entries, sortedEntry[*BuildStartHook]{plugin: p, order: p.BuildStart.Order, hook: p.BuildStart})
	}
	return sortHooks(entries)
}

func sortedResolveIDHooks(plugins []*Plugin) []sortedEntry[*ResolveIDHook] {
	entries := make([]sortedEntry[*ResolveIDHook], 0, len(plugins))
	for _, p := range plugins {
		if p.ResolveID == nil {
			continue
		}
		entries = append(entries, sortedEntry[*ResolveIDHook]{plugin: p, order: p.ResolveID.Order, hook: p.ResolveID})
	}
	return sortHooks(entries)
}

func sortedLoadHooks(plugins []*Plugin) []sortedEntry[*LoadHook] {
	entries := make([]sortedEntry[*LoadHook], 0, len(plugins))
	for _, p := range plugins {
		if p.Load == nil {
			continue
		}
		entries = append(entries, sortedEntry[*LoadHook]{plugin: p, order: p.Load.Order, hook: p.Load})
	}
	return sortHooks(entries)
}

func sortedTransformHooks(plugins []*Plugin) []sortedEntry[*TransformHook] {
	entries := make([]sortedEntry[*TransformHook], 0, len(plugins))
	for _, p := range plugins {
		if p.Transform == nil {
			continue
		}
		entries = append(entries, sortedEntry[*TransformHook]{plugin: p, order: p.Transform.Order, hook: p.Transform})
	}
	return sortHooks(entries)
}

func sortedWatchChangeHooks(plugins []*Plugin) []sortedEntry[*WatchChangeHook] {
	entries := make([]sortedEntry[*WatchChangeHook], 0, len(plugins))
	for _, p := range plugins {
		if p.WatchChange == nil {
			continue
		}
		entries = append(entries, sortedEntry[*WatchChangeHook]{plugin: p, order: p.WatchChange.Order, hook: p.WatchChange})
	}
	return sortHooks(entries)
}

func sortedBuildEndHooks(plugins []*Plugin) []sortedEntry[*BuildEndHook] {
	entries := make([]sortedEntry[*BuildEndHook], 0, len(plugins))
	for _, p := range plugins {
		if p.BuildEnd == nil {
			continue
		}
		entries = append(entries, sortedEntry[*BuildEndHook]{plugin: p, order: p.BuildEnd.Order, hook: p.BuildEnd})
	}
	return sortHooks(entries)
}

func sortedCloseBundleHooks(plugins []*Plugin) []sortedEntry[*CloseBundleHook] {
	entries := make([]sortedEntry[*CloseBundleHook], 0, len(plugins))
	for _, p := range plugins {
		if p.CloseBundle == nil {
			continue
		}
		entries = append(entries, sortedEntry[*CloseBundleHook]{plugin: p, order: p.CloseBundle.Order, hook: p.CloseBundle})
	}
	return sortHooks(entries)
}
