// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package poll schedules one-shot delayed refetches that can be cancelled.
package poll

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Poller runs a function once after a delay unless cancelled first.
type Poller interface {
	// Schedule arranges for fn to run after delay. Scheduling again
	// replaces any pending run. fn never runs once ctx is done or the
	// returned cancel (or Cancel) has been called.
	Schedule(ctx context.Context, delay time.Duration, fn func()) (cancel func())
	// Cancel drops the pending run, if any.
	Cancel()
	// Pending reports whether a run is scheduled.
	Pending() bool
}

// CmdPoller is a Poller that can hand its run to bubbletea as a command.
type CmdPoller interface {
	Poller
	// Cmd schedules a run like Schedule and returns a command that
	// delivers msg when it fires, or nil if it is cancelled or replaced.
	Cmd(ctx context.Context, delay time.Duration, msg tea.Msg) tea.Cmd
}

// DelayedPoller is a Poller backed by time.AfterFunc. At most one run is
// pending at a time. Use it as a pointer; it holds a mutex.
type DelayedPoller struct {
	mu      sync.Mutex
	seq     uint64
	pending bool
	stop    func()
}

// NewDelayedPoller creates an idle poller.
func NewDelayedPoller() *DelayedPoller {
	return &DelayedPoller{}
}

var _ CmdPoller = (*DelayedPoller)(nil)

// Schedule implements Poller.
func (p *DelayedPoller) Schedule(ctx context.Context, delay time.Duration, fn func()) func() {
	return p.schedule(ctx, delay, fn, nil)
}

// Cmd schedules a run and returns a command that delivers msg when it
// fires. If the run is cancelled or replaced the command returns nil.
func (p *DelayedPoller) Cmd(ctx context.Context, delay time.Duration, msg tea.Msg) tea.Cmd {
	fired := make(chan struct{})
	aborted := make(chan struct{})
	p.schedule(ctx, delay, func() { close(fired) }, func() { close(aborted) })

	return func() tea.Msg {
		select {
		case <-fired:
			return msg
		case <-aborted:
			return nil
		}
	}
}

func (p *DelayedPoller) schedule(ctx context.Context, delay time.Duration, fn, onCancel func()) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cancelLocked()
	p.seq++
	id := p.seq

	var stopCtx func() bool
	timer := time.AfterFunc(delay, func() {
		if !p.claim(id) {
			return
		}
		stopCtx()
		if ctx.Err() != nil {
			if onCancel != nil {
				onCancel()
			}
			return
		}
		fn()
	})
	stopCtx = context.AfterFunc(ctx, func() { p.cancelIf(id) })

	p.pending = true
	p.stop = func() {
		timer.Stop()
		stopCtx()
		if onCancel != nil {
			onCancel()
		}
	}
	return func() { p.cancelIf(id) }
}

// claim marks run id as fired if it is still the current one.
func (p *DelayedPoller) claim(id uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id != p.seq || !p.pending {
		return false
	}
	p.pending = false
	p.stop = nil
	return true
}

func (p *DelayedPoller) cancelIf(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id == p.seq {
		p.cancelLocked()
	}
}

// Cancel implements Poller.
func (p *DelayedPoller) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelLocked()
}

func (p *DelayedPoller) cancelLocked() {
	if p.stop != nil {
		p.stop()
		p.stop = nil
	}
	p.pending = false
}

// Pending implements Poller.
func (p *DelayedPoller) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}
