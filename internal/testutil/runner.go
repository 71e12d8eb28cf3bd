// Package testutil provides shared helpers for exercising simulator
// adapters without spawning real tool processes.
package testutil

import (
	"context"
	"path/filepath"
	"sync"
)

// Call records one process invocation observed by the FakeRunner.
type Call struct {
	Argv []string
	Cwd  string
}

// FakeRunner implements sim.Runner and records every invocation instead of
// spawning a process. FailOn, when set, decides which invocations report a
// non-zero exit.
type FakeRunner struct {
	mu     sync.Mutex
	calls  []Call
	FailOn func(argv []string) bool
}

// Run records the invocation and reports success unless FailOn matches.
func (r *FakeRunner) Run(ctx context.Context, argv []string, cwd string) bool {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Argv: argv, Cwd: cwd})
	r.mu.Unlock()

	if r.FailOn != nil && r.FailOn(argv) {
		return false
	}
	return true
}

// Calls returns a copy of the recorded invocations.
func (r *FakeRunner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Binaries returns the base name of argv[0] for every recorded invocation,
// in order.
func (r *FakeRunner) Binaries() []string {
	calls := r.Calls()
	out := make([]string, 0, len(calls))
	for _, call := range calls {
		out = append(out, filepath.Base(call.Argv[0]))
	}
	return out
}
