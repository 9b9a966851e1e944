package nodecache

import (
	"testing"

	"github.com/ha1tch/msc/pkg/multiset"
)

var byteLess = multiset.Ordered[byte]()

func byteEncode(b byte) []byte { return []byte{b} }

func TestInternSharesStructurallyEqualSubtrees(t *testing.T) {
	c := New[byte](1, 2, byteEncode)

	a := multiset.Build([]byte("mississippi"), byteLess)
	b := multiset.Build([]byte("mississippi"), byteLess)

	ia := c.Intern(a)
	ib := c.Intern(b)

	if ia != ib {
		t.Fatalf("structurally equal subtrees were not interned to the same pointer")
	}
	if c.Len() == 0 {
		t.Fatalf("expected at least one interned entry")
	}
}

func TestInternDistinguishesDifferentMultisets(t *testing.T) {
	c := New[byte](1, 2, byteEncode)

	a := multiset.Build([]byte("aab"), byteLess)
	b := multiset.Build([]byte("aabb"), byteLess)

	ia := c.Intern(a)
	ib := c.Intern(b)
	if ia == ib {
		t.Fatalf("distinct multisets must not collapse to the same interned node")
	}
}

func TestInternNil(t *testing.T) {
	c := New[byte](1, 2, byteEncode)
	if got := c.Intern(nil); got != nil {
		t.Fatalf("Intern(nil) = %v, want nil", got)
	}
	if c.Len() != 0 {
		t.Fatalf("interning nil must not register an entry")
	}
}

// TestCacheWiredIntoInsertRemove exercises the cache the way
// pkg/codec.SWOR does: passed straight through to multiset.Insert and
// multiset.Remove. Two independent build-then-edit paths that end up at
// the same multiset must end up at the same node pointer. Build does not
// intern, so the base root is interned first for the cache to know it.
func TestCacheWiredIntoInsertRemove(t *testing.T) {
	c := New[byte](1, 2, byteEncode)

	base := c.Intern(multiset.Build([]byte("mississippi"), byteLess))

	a := multiset.Insert(base, 'z', byteLess, c)
	a, err := multiset.Remove(a, 'z', byteLess, c)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}

	b := multiset.Insert(base, 'q', byteLess, c)
	b, err = multiset.Remove(b, 'q', byteLess, c)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if a != b {
		t.Fatalf("Insert+Remove through a shared cache did not converge to the same pointer")
	}
	if a != base {
		t.Fatalf("Insert+Remove round trip did not intern back to the original root pointer")
	}
}
