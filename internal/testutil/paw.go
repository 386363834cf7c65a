package testutil

import "sync"

// FixedPawGenerator returns predetermined agent paws in order.
//
// Tests that create agents without a paw get known tokens back, so the
// resulting views are byte-identical across runs.
//
// Thread-safety: FixedPawGenerator is safe for concurrent use via internal mutex.
type FixedPawGenerator struct {
	mu   sync.Mutex
	paws []string
	idx  int
}

// NewFixedPawGenerator creates a generator that returns paws in order.
//
// Example:
//
//	gen := NewFixedPawGenerator("paw-1", "paw-2")
//	gen.Generate() // "paw-1"
//	gen.Generate() // "paw-2"
//	gen.Generate() // panic: all paws exhausted
func NewFixedPawGenerator(paws ...string) *FixedPawGenerator {
	return &FixedPawGenerator{paws: paws}
}

// Generate returns the next predetermined paw.
//
// Panics if all paws have been consumed, which means the test created more
// agents than it planned for.
func (g *FixedPawGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.paws) {
		panic("FixedPawGenerator: all paws exhausted")
	}
	paw := g.paws[g.idx]
	g.idx++
	return paw
}
