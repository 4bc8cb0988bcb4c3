// Package iban hands out test IBANs per country without repeating a value
// until every candidate for that country has been issued once.
package iban

import (
	"crypto/rand"
	"math/big"
	"strings"
	"sync"
)

// NA is returned when no candidates exist for a country code.
const NA = "N/A"

// pool is the shuffled candidate list for one country and the offset of the
// next value to hand out. 0 <= cursor <= len(order).
type pool struct {
	order  []string
	cursor int
}

// Allocator is a session-scoped source of IBANs. It is safe for concurrent use.
type Allocator struct {
	mu         sync.Mutex
	candidates map[string][]string
	pools      map[string]*pool
}

// New creates an allocator over the built-in IBAN lists.
func New() *Allocator {
	return NewWithPools(predefined)
}

// NewWithPools creates an allocator over caller-supplied candidate lists keyed
// by country code. The lists are copied.
func NewWithPools(candidates map[string][]string) *Allocator {
	c := make(map[string][]string, len(candidates))
	for code, list := range candidates {
		c[strings.ToUpper(code)] = append([]string(nil), list...)
	}
	return &Allocator{
		candidates: c,
		pools:      make(map[string]*pool),
	}
}

// Next returns the next IBAN for code. Within one cycle every candidate is
// returned exactly once; an exhausted pool is reshuffled before reuse.
// Unknown codes and empty lists yield NA.
func (a *Allocator) Next(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))

	a.mu.Lock()
	defer a.mu.Unlock()

	list := a.candidates[code]
	if len(list) == 0 {
		return NA
	}

	p, ok := a.pools[code]
	if !ok || p.cursor >= len(p.order) {
		p = &pool{order: shuffled(list)}
		a.pools[code] = p
	}

	v := p.order[p.cursor]
	p.cursor++
	return v
}

// Remaining reports how many values are left in the current cycle for code.
// A country with no pool yet reports its full candidate count.
func (a *Allocator) Remaining(code string) int {
	code = strings.ToUpper(strings.TrimSpace(code))

	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.pools[code]
	if !ok {
		return len(a.candidates[code])
	}
	return len(p.order) - p.cursor
}

// Reset discards all pools so the next call for any country starts a fresh cycle.
func (a *Allocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pools = make(map[string]*pool)
}

// shuffled returns a Fisher-Yates shuffled copy of s.
func shuffled(s []string) []string {
	out := append([]string(nil), s...)
	for i := len(out) - 1; i > 0; i-- {
		j := randIntn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// randIntn returns a cryptographically random int in [0, n).
func randIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("crypto/rand: " + err.Error())
	}
	return int(v.Int64())
}
