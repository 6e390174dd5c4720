package youtube

import (
	"log"
	"sync"
)

// KeyPool rotates through a set of YouTube Data API keys. When one key
// burns through its daily quota the enricher advances to the next; once
// every key is spent the pool reports exhaustion until Reset.
type KeyPool struct {
	mu   sync.Mutex
	keys []string
	idx  int
}

// NewKeyPool builds a pool over the given keys. Empty keys are dropped.
func NewKeyPool(keys []string) *KeyPool {
	p := &KeyPool{}
	for _, k := range keys {
		if k != "" {
			p.keys = append(p.keys, k)
		}
	}
	return p
}

// Current returns the active key, or "" when the pool is empty or exhausted.
func (p *KeyPool) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.idx >= len(p.keys) {
		return ""
	}
	return p.keys[p.idx]
}

// Next advances to the following key and returns it, or "" when none remain.
func (p *KeyPool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idx++
	if p.idx >= len(p.keys) {
		log.Printf("youtube: all %d api keys exhausted", len(p.keys))
		return ""
	}
	log.Printf("youtube: switching to api key %d/%d", p.idx+1, len(p.keys))
	return p.keys[p.idx]
}

// Exhausted reports whether every key has been consumed.
func (p *KeyPool) Exhausted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idx >= len(p.keys)
}

// Reset rewinds the pool to the first key, for a new quota day.
func (p *KeyPool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idx = 0
}

// Size returns the number of usable keys.
func (p *KeyPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}
