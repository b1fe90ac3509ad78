package ledger

import (
	"context"
	"sync"

	"donnote/internal/core"
)

// Guarded serializes all mutations per user id, so an append can never
// race an undo's read-modify-write on the same ledger. Mutations for
// different users proceed independently. Snapshots are not serialized;
// backends must never expose a partially applied mutation.
type Guarded struct {
	inner Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Guard wraps a store with per-user mutual exclusion.
func Guard(s Store) *Guarded {
	return &Guarded{
		inner: s,
		locks: make(map[string]*sync.Mutex),
	}
}

func (g *Guarded) userLock(userID string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		g.locks[userID] = l
	}
	return l
}

func (g *Guarded) Append(ctx context.Context, userID string, e core.Entry) error {
	l := g.userLock(userID)
	l.Lock()
	defer l.Unlock()
	return g.inner.Append(ctx, userID, e)
}

func (g *Guarded) UndoLast(ctx context.Context, userID string) (core.Entry, error) {
	l := g.userLock(userID)
	l.Lock()
	defer l.Unlock()
	return g.inner.UndoLast(ctx, userID)
}

func (g *Guarded) Snapshot(ctx context.Context, userID string) ([]core.Entry, error) {
	return g.inner.Snapshot(ctx, userID)
}
