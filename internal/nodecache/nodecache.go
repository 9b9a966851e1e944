// Package nodecache provides a content-addressed intern table for
// multiset.Node subtrees, giving the persistent BST in package multiset
// the "structural sharing with reference counting" implementation strategy
// design note §9 allows as an alternative to an arena+index scheme:
// structurally-identical subtrees produced across repeated Insert/Remove
// calls are interned to the same pointer instead of living as separate
// allocations.
package nodecache

import (
	"encoding/binary"
	"sync"

	"github.com/dchest/siphash"

	"github.com/ha1tch/msc/pkg/multiset"
)

// Cache interns multiset.Node[S] subtrees for one symbol type S. Encode
// must produce a stable byte encoding of a symbol (used only to key the
// structural hash, never to order symbols).
type Cache[S any] struct {
	k0, k1 uint64
	encode func(s S) []byte

	mu       sync.Mutex
	hashOf   map[*multiset.Node[S]]uint64
	interned map[uint64]*multiset.Node[S]
}

// New creates an empty cache. k0/k1 are the siphash key; pass any fixed
// pair for reproducible hashing within a process, or two process-random
// values if cross-run hash stability does not matter.
func New[S any](k0, k1 uint64, encode func(s S) []byte) *Cache[S] {
	return &Cache[S]{
		k0:       k0,
		k1:       k1,
		encode:   encode,
		hashOf:   make(map[*multiset.Node[S]]uint64),
		interned: make(map[uint64]*multiset.Node[S]),
	}
}

// Intern returns a node structurally equal to n (same count, symbol, and
// structurally-equal children), reusing a previously interned pointer when
// one exists, and registering n otherwise. Passing nil is a no-op: the
// empty multiset has only one representation already.
func (c *Cache[S]) Intern(n *multiset.Node[S]) *multiset.Node[S] {
	if n == nil {
		return nil
	}
	h := c.hash(n)

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.interned[h]; ok {
		return existing
	}
	c.interned[h] = n
	return n
}

// Len reports how many distinct subtrees are currently interned.
func (c *Cache[S]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.interned)
}

// hash computes (and memoizes, keyed by pointer identity) the structural
// hash of n. Memoizing by pointer means re-hashing an already-interned
// subtree reachable from a freshly rebuilt path costs O(1), not O(subtree
// size) — the common case, since Insert/Remove only rebuild nodes on the
// path to the edited symbol.
func (c *Cache[S]) hash(n *multiset.Node[S]) uint64 {
	if n == nil {
		return 0
	}

	c.mu.Lock()
	if h, ok := c.hashOf[n]; ok {
		c.mu.Unlock()
		return h
	}
	c.mu.Unlock()

	leftHash := c.hash(n.Left)
	rightHash := c.hash(n.Right)

	var buf []byte
	buf = binary.BigEndian.AppendUint32(buf, n.Count)
	buf = append(buf, c.encode(n.Symbol)...)
	buf = binary.BigEndian.AppendUint64(buf, leftHash)
	buf = binary.BigEndian.AppendUint64(buf, rightHash)
	h := siphash.Hash(c.k0, c.k1, buf)

	c.mu.Lock()
	c.hashOf[n] = h
	c.mu.Unlock()
	return h
}
