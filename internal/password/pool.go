package password

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many Argon2 computations run at once so that a burst of
// signups or logins cannot pin every CPU and starve the rest of the server.
type Pool struct {
	hasher Hasher
	sem    *semaphore.Weighted
}

// NewPool wraps h. workers <= 0 means GOMAXPROCS.
func NewPool(h Hasher, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{hasher: h, sem: semaphore.NewWeighted(int64(workers))}
}

// Hash waits for a free slot (or ctx) and hashes pw.
func (p *Pool) Hash(ctx context.Context, pw string) (string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer p.sem.Release(1)
	return p.hasher.Hash(pw)
}

// Verify waits for a free slot (or ctx) and checks pw against hash.
// The error is only ever the context's.
func (p *Pool) Verify(ctx context.Context, hash, pw string) (bool, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer p.sem.Release(1)
	return p.hasher.Verify(hash, pw), nil
}

func (p *Pool) NeedsRehash(hash string) bool {
	return p.hasher.NeedsRehash(hash)
}
