// Package multiset implements a persistent, count-augmented binary search
// tree over symbols with repetition: the data structure that gives the
// rANS-based codecs in package codec their two rank queries,
// ForwardLookup and ReverseLookup.
//
// A tree is either empty (the nil *Node[S]) or a node holding one distinct
// symbol, its subtree sizes and its own implicit multiplicity folded into
// Count. Every mutating operation (Insert, Remove) returns a new tree;
// unchanged subtrees are shared with the input, never mutated.
package multiset

import (
	"errors"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Error taxonomy, see spec §7.
var (
	ErrSymbolNotPresent = errors.New("multiset: symbol not present")
	ErrIndexOutOfRange  = errors.New("multiset: index out of range")
)

// Less reports whether a sorts strictly before b. Implementations need
// only this comparator; no symbol type is required to support Go's
// built-in ordering operators.
type Less[S any] func(a, b S) bool

// Ordered returns the natural '<' ordering as a Less, for any symbol type
// constraints.Ordered admits (the integer, float and string kinds). This
// is the default path spec §3 describes; a symbol type without a native
// '<', or one wanting a different order, supplies its own Less instead.
func Ordered[S constraints.Ordered]() Less[S] {
	return func(a, b S) bool { return a < b }
}

// Node is a multiset value: either nil (empty) or a 4-tuple of Count,
// Symbol, Left and Right per spec §3.
type Node[S any] struct {
	Count  uint32
	Symbol S
	Left   *Node[S]
	Right  *Node[S]
}

// Interval is the (start, freq) cumulative-count pair ANS-shaped lookups
// produce and consume.
type Interval struct {
	Start uint32
	Freq  uint32
}

// Run is one (symbol, multiplicity) pair, the unit Flatten/Unflatten and
// Build operate on.
type Run[S any] struct {
	Symbol S
	Mult   uint32
}

// Size returns the total element count (with multiplicity) in m. Size(nil)
// is 0.
func Size[S any](m *Node[S]) uint32 {
	if m == nil {
		return 0
	}
	return m.Count
}

func multiplicity[S any](m *Node[S]) uint32 {
	return m.Count - Size(m.Left) - Size(m.Right)
}

// Build constructs a multiset from seq, sorting first (stable order among
// equal elements is irrelevant) and then inserting in bisection-median
// order so the resulting tree has depth O(log M). This is the only
// balancing step the package performs; Insert and Remove do not rebalance
// (spec §4.2, design note §9).
func Build[S any](seq []S, less Less[S]) *Node[S] {
	if len(seq) == 0 {
		return nil
	}
	sorted := make([]S, len(seq))
	copy(sorted, seq)
	slices.SortFunc(sorted, less)
	return Unflatten(groupRuns(sorted, less))
}

func groupRuns[S any](sorted []S, less Less[S]) []Run[S] {
	var runs []Run[S]
	i := 0
	for i < len(sorted) {
		j := i + 1
		for j < len(sorted) && !less(sorted[i], sorted[j]) {
			j++
		}
		runs = append(runs, Run[S]{Symbol: sorted[i], Mult: uint32(j - i)})
		i = j
	}
	return runs
}

// Unflatten rebuilds a balanced multiset from ascending, already-grouped
// (symbol, multiplicity) runs — the inverse of Flatten.
func Unflatten[S any](runs []Run[S]) *Node[S] {
	if len(runs) == 0 {
		return nil
	}
	mid := len(runs) / 2
	left := Unflatten(runs[:mid])
	right := Unflatten(runs[mid+1:])
	return &Node[S]{
		Symbol: runs[mid].Symbol,
		Count:  Size(left) + Size(right) + runs[mid].Mult,
		Left:   left,
		Right:  right,
	}
}

// Flatten returns m's elements as ascending (symbol, multiplicity) runs —
// an in-order traversal, which is ascending by construction. Used by
// Equal and by callers that want to serialize or rebalance a multiset.
func Flatten[S any](m *Node[S]) []Run[S] {
	var out []Run[S]
	var walk func(n *Node[S])
	walk = func(n *Node[S]) {
		if n == nil {
			return
		}
		walk(n.Left)
		out = append(out, Run[S]{Symbol: n.Symbol, Mult: multiplicity(n)})
		walk(n.Right)
	}
	walk(m)
	return out
}

// Interner is satisfied by a content-addressed cache (see package
// internal/nodecache) that can intern a freshly built node, returning a
// canonical pointer shared with any structurally-equal node already seen.
// Insert/Remove accept one as an optional trailing argument; package
// multiset never needs to import the cache itself to use it.
type Interner[S any] interface {
	Intern(n *Node[S]) *Node[S]
}

func intern[S any](n *Node[S], cache []Interner[S]) *Node[S] {
	if len(cache) == 0 || cache[0] == nil {
		return n
	}
	return cache[0].Intern(n)
}

// Insert returns a new multiset containing every element of m plus one
// more occurrence of s. Every node on the path to s's position is
// rebuilt; unchanged subtrees are shared with m (spec §4.2). If cache is
// given, every rebuilt node is interned through it, so repeated
// Insert/Remove calls across a run physically share structurally-equal
// subtrees instead of reallocating them.
func Insert[S any](m *Node[S], s S, less Less[S], cache ...Interner[S]) *Node[S] {
	if m == nil {
		return intern(&Node[S]{Symbol: s, Count: 1}, cache)
	}
	switch {
	case less(s, m.Symbol):
		return intern(&Node[S]{Symbol: m.Symbol, Count: m.Count + 1, Left: Insert(m.Left, s, less, cache...), Right: m.Right}, cache)
	case less(m.Symbol, s):
		return intern(&Node[S]{Symbol: m.Symbol, Count: m.Count + 1, Left: m.Left, Right: Insert(m.Right, s, less, cache...)}, cache)
	default:
		return intern(&Node[S]{Symbol: m.Symbol, Count: m.Count + 1, Left: m.Left, Right: m.Right}, cache)
	}
}

// Remove returns a new multiset with one occurrence of s removed. If s's
// multiplicity at its node is greater than one, only the count is
// decremented; otherwise the node is spliced out, promoting the merge of
// its children. Fails with ErrSymbolNotPresent if s is absent. cache
// behaves as in Insert.
func Remove[S any](m *Node[S], s S, less Less[S], cache ...Interner[S]) (*Node[S], error) {
	if m == nil {
		return nil, ErrSymbolNotPresent
	}
	switch {
	case less(s, m.Symbol):
		left, err := Remove(m.Left, s, less, cache...)
		if err != nil {
			return nil, err
		}
		return intern(&Node[S]{Symbol: m.Symbol, Count: m.Count - 1, Left: left, Right: m.Right}, cache), nil
	case less(m.Symbol, s):
		right, err := Remove(m.Right, s, less, cache...)
		if err != nil {
			return nil, err
		}
		return intern(&Node[S]{Symbol: m.Symbol, Count: m.Count - 1, Left: m.Left, Right: right}, cache), nil
	default:
		if multiplicity(m) > 1 {
			return intern(&Node[S]{Symbol: m.Symbol, Count: m.Count - 1, Left: m.Left, Right: m.Right}, cache), nil
		}
		return mergeChildren(m.Left, m.Right, cache...), nil
	}
}

// extracted is a node's symbol and own multiplicity, detached from its
// subtree links — the payload popLeftmost promotes during a splice.
type extracted[S any] struct {
	symbol S
	mult   uint32
}

// popLeftmost removes the leftmost node of m and returns its
// symbol/multiplicity plus the remainder of m with that node spliced out.
func popLeftmost[S any](m *Node[S], cache []Interner[S]) (extracted[S], *Node[S]) {
	if m.Left == nil {
		return extracted[S]{symbol: m.Symbol, mult: m.Count - Size(m.Right)}, m.Right
	}
	ex, newLeft := popLeftmost(m.Left, cache)
	return ex, intern(&Node[S]{Symbol: m.Symbol, Count: m.Count - ex.mult, Left: newLeft, Right: m.Right}, cache)
}

// mergeChildren joins two subtrees known to be disjoint in range
// (everything in left is less than everything in right) into one,
// promoting right's leftmost element to the new root.
func mergeChildren[S any](left, right *Node[S], cache ...Interner[S]) *Node[S] {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	ex, rightRest := popLeftmost(right, cache)
	return intern(&Node[S]{
		Symbol: ex.symbol,
		Count:  Size(left) + Size(rightRest) + ex.mult,
		Left:   left,
		Right:  rightRest,
	}, cache)
}

// ForwardLookup walks the tree for s and returns the cumulative interval
// (start, freq) of s's occurrences among all elements in ascending order.
func ForwardLookup[S any](m *Node[S], s S, less Less[S]) (Interval, error) {
	var acc uint32
	for m != nil {
		switch {
		case less(s, m.Symbol):
			m = m.Left
		case less(m.Symbol, s):
			acc += m.Count - Size(m.Right)
			m = m.Right
		default:
			return Interval{Start: acc + Size(m.Left), Freq: multiplicity(m)}, nil
		}
	}
	return Interval{}, ErrSymbolNotPresent
}

// ReverseLookup walks the tree for the element at cumulative index idx
// (precondition: 0 <= idx < Size(m)) and returns both its interval and
// its symbol.
func ReverseLookup[S any](m *Node[S], idx uint32) (Interval, S, error) {
	var start uint32
	for m != nil {
		ls := Size(m.Left)
		mult := multiplicity(m)
		switch {
		case idx < ls:
			m = m.Left
		case idx < ls+mult:
			return Interval{Start: start + ls, Freq: mult}, m.Symbol, nil
		default:
			idx -= ls + mult
			start += ls + mult
			m = m.Right
		}
	}
	var zero S
	return Interval{}, zero, ErrIndexOutOfRange
}

// Equal reports multiset equality: every symbol has the same multiplicity
// in a and b, irrespective of tree shape (spec §6.2).
func Equal[S any](a, b *Node[S], less Less[S]) bool {
	ra, rb := Flatten(a), Flatten(b)
	if len(ra) != len(rb) {
		return false
	}
	for i := range ra {
		if ra[i].Mult != rb[i].Mult {
			return false
		}
		if less(ra[i].Symbol, rb[i].Symbol) || less(rb[i].Symbol, ra[i].Symbol) {
			return false
		}
	}
	return true
}
