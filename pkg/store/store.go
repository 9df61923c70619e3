// Package store provides in-memory reference implementations of the
// generator's storage collaborators: the collision store and the revocation
// list. Both are safe for concurrent use and suitable for tests and
// single-process deployments; durable backends belong to the host
// application and only need to satisfy the interfaces in pkg/idgen.
package store

import (
	"context"
	"sync"

	"github.com/idforge/idforge/pkg/idgen"
)

// MemoryCollisionStore is a concurrent-safe in-memory set of issued
// identifiers.
type MemoryCollisionStore struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewMemoryCollisionStore creates an empty collision store.
func NewMemoryCollisionStore() *MemoryCollisionStore {
	return &MemoryCollisionStore{seen: make(map[string]struct{})}
}

// Has reports whether id was recorded before.
func (s *MemoryCollisionStore) Has(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[id]
	return ok, nil
}

// Add records id as issued.
func (s *MemoryCollisionStore) Add(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[id] = struct{}{}
	return nil
}

// Remove forgets id.
func (s *MemoryCollisionStore) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, id)
	return nil
}

// Len reports the number of recorded identifiers.
func (s *MemoryCollisionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}

var _ idgen.CollisionStore = (*MemoryCollisionStore)(nil)

// MemoryRevocationList is a concurrent-safe in-memory set of revoked
// identifier hashes.
type MemoryRevocationList struct {
	mu      sync.RWMutex
	revoked map[string]struct{}
}

// NewMemoryRevocationList creates an empty revocation list.
func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{revoked: make(map[string]struct{})}
}

// IsRevoked reports whether idHash is on the list.
func (l *MemoryRevocationList) IsRevoked(ctx context.Context, idHash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.revoked[idHash]
	return ok, nil
}

// Revoke adds idHash to the list. Revoking twice is a no-op.
func (l *MemoryRevocationList) Revoke(ctx context.Context, idHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked[idHash] = struct{}{}
	return nil
}

// Unrevoke removes idHash from the list.
func (l *MemoryRevocationList) Unrevoke(ctx context.Context, idHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.revoked, idHash)
	return nil
}

var _ idgen.RevocationList = (*MemoryRevocationList)(nil)
