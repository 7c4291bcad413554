package repository

import (
	"context"
	"sync"
)

type afterCommitKey struct{}

type afterCommitHooks struct {
	mu  sync.Mutex
	fns []func(ctx context.Context)
}

// WithAfterCommit returns a ctx that collects hooks registered through
// AfterCommit, and a func that runs them in registration order. A
// TransactionManager calls run only once the transaction has committed.
func WithAfterCommit(ctx context.Context) (context.Context, func(ctx context.Context)) {
	h := &afterCommitHooks{}
	run := func(ctx context.Context) {
		h.mu.Lock()
		fns := h.fns
		h.fns = nil
		h.mu.Unlock()
		for _, fn := range fns {
			fn(ctx)
		}
	}
	return context.WithValue(ctx, afterCommitKey{}, h), run
}

// AfterCommit defers fn until the surrounding transaction commits. Outside
// a transaction scope fn runs immediately. Hooks of a rolled back
// transaction are dropped.
func AfterCommit(ctx context.Context, fn func(ctx context.Context)) {
	h, ok := ctx.Value(afterCommitKey{}).(*afterCommitHooks)
	if !ok {
		fn(ctx)
		return
	}
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}
