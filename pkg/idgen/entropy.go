package idgen

import (
	"crypto/rand"
	"sync"
)

// Entropy pool tuning. The pool is purely a latency optimization: a miss
// falls through to a direct CSPRNG read, never to weaker randomness.
const (
	entropyBlockSize  = 64
	defaultPoolBlocks = 32
)

// EntropyPool buffers pre-drawn random blocks so generation calls avoid a
// CSPRNG round trip on the hot path. It is safe for concurrent use.
//
// The pool size always stays within [0, max]; Refill is idempotent and safe
// to invoke redundantly.
type EntropyPool struct {
	mu       sync.Mutex
	blocks   [][]byte
	max      int
	refillAt int
}

// NewEntropyPool creates a pool holding up to max 64-byte blocks, pre-filled
// to capacity. max <= 0 selects the default size.
func NewEntropyPool(max int) *EntropyPool {
	if max <= 0 {
		max = defaultPoolBlocks
	}
	refillAt := max / 4
	if refillAt < 1 {
		refillAt = 1
	}
	p := &EntropyPool{max: max, refillAt: refillAt}
	p.Refill()
	return p
}

// Draw returns n random bytes, served from pooled blocks when possible and
// topped up with a direct CSPRNG read otherwise.
func (p *EntropyPool) Draw(n int) ([]byte, error) {
	out := make([]byte, 0, n)

	p.mu.Lock()
	for len(out) < n && len(p.blocks) > 0 {
		last := len(p.blocks) - 1
		block := p.blocks[last]
		p.blocks = p.blocks[:last]
		need := n - len(out)
		if need >= len(block) {
			out = append(out, block...)
		} else {
			out = append(out, block[:need]...)
			// Return the unused remainder to the pool.
			p.blocks = append(p.blocks, block[need:])
		}
	}
	low := len(p.blocks) < p.refillAt
	p.mu.Unlock()

	if len(out) < n {
		direct := make([]byte, n-len(out))
		if _, err := rand.Read(direct); err != nil {
			return nil, err
		}
		out = append(out, direct...)
	}
	if low {
		// Best effort; the next Draw falls back to direct reads if this
		// refill failed.
		_ = p.Refill()
	}
	return out, nil
}

// Refill tops the pool back up to its maximum. Invoking it when the pool is
// already full is a no-op.
func (p *EntropyPool) Refill() error {
	p.mu.Lock()
	missing := p.max - len(p.blocks)
	p.mu.Unlock()
	if missing <= 0 {
		return nil
	}

	fresh := make([][]byte, 0, missing)
	for i := 0; i < missing; i++ {
		block := make([]byte, entropyBlockSize)
		if _, err := rand.Read(block); err != nil {
			return err
		}
		fresh = append(fresh, block)
	}

	p.mu.Lock()
	for _, block := range fresh {
		if len(p.blocks) >= p.max {
			break
		}
		p.blocks = append(p.blocks, block)
	}
	p.mu.Unlock()
	return nil
}

// Size reports the current number of pooled blocks.
func (p *EntropyPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.blocks)
}
