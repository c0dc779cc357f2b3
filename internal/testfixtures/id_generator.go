package testfixtures

import (
	"fmt"
	"sync"
)

// IDGenerator hands out sequential "prefix-N" identifiers so tests can
// predict the ids assigned to rooms, seed bookings and their occurrences.
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewIDGenerator constructs a generator for the given prefix, defaulting to
// "id" when the prefix is empty.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next hands out the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}

// NextFunc adapts the generator to the id-func shape the services accept. A
// nil generator yields empty identifiers.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// SetPrefix swaps the identifier prefix for subsequent calls.
func (g *IDGenerator) SetPrefix(prefix string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prefix = prefix
}

// SetCounter rewinds or forwards the sequence so a test can reset between
// phases.
func (g *IDGenerator) SetCounter(counter uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter = counter
}
