package multiset

import (
	"math/rand"
	"testing"
)

var byteLess = Ordered[byte]()

func seqOf(s string) []byte { return []byte(s) }

func TestS3BSTShape(t *testing.T) {
	if empty := Build(seqOf(""), byteLess); empty != nil {
		t.Fatalf("empty build must be nil, got %v", empty)
	}

	m := Build([]byte{'b', 'a', 'b', 'c'}, byteLess)

	if m.Symbol != 'b' || m.Count != 4 {
		t.Fatalf("root = (%d, %q), want (4, 'b')", m.Count, m.Symbol)
	}
	if m.Left == nil || m.Left.Symbol != 'a' || m.Left.Count != 1 || m.Left.Left != nil || m.Left.Right != nil {
		t.Fatalf("left child wrong: %+v", m.Left)
	}
	if m.Right == nil || m.Right.Symbol != 'c' || m.Right.Count != 1 || m.Right.Left != nil || m.Right.Right != nil {
		t.Fatalf("right child wrong: %+v", m.Right)
	}

	after, err := Remove(m, 'a', byteLess)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if after.Symbol != 'b' || after.Count != 3 || after.Left != nil {
		t.Fatalf("after remove('a') = %+v, want (3, 'b', nil, ...)", after)
	}
	if after.Right == nil || after.Right.Symbol != 'c' || after.Right.Count != 1 {
		t.Fatalf("after remove('a') right child wrong: %+v", after.Right)
	}
}

func TestS4Lookups(t *testing.T) {
	m := Build([]byte("abbcccde"), byteLess)

	iv, err := ForwardLookup(m, 'c', byteLess)
	if err != nil {
		t.Fatalf("ForwardLookup: %v", err)
	}
	if iv.Start != 3 || iv.Freq != 3 {
		t.Errorf("ForwardLookup(m,'c') = %+v, want (3,3)", iv)
	}

	iv2, sym, err := ReverseLookup(m, 2)
	if err != nil {
		t.Fatalf("ReverseLookup: %v", err)
	}
	if iv2.Start != 1 || iv2.Freq != 2 || sym != 'b' {
		t.Errorf("ReverseLookup(m,2) = (%+v,%q), want ((1,2),'b')", iv2, sym)
	}
}

func TestForwardLookupMissing(t *testing.T) {
	m := Build([]byte("abc"), byteLess)
	if _, err := ForwardLookup(m, 'z', byteLess); err != ErrSymbolNotPresent {
		t.Errorf("got %v, want ErrSymbolNotPresent", err)
	}
}

func TestReverseLookupOutOfRange(t *testing.T) {
	m := Build([]byte("abc"), byteLess)
	if _, _, err := ReverseLookup(m, 3); err != ErrIndexOutOfRange {
		t.Errorf("got %v, want ErrIndexOutOfRange", err)
	}
	if _, _, err := ReverseLookup[byte](nil, 0); err != ErrIndexOutOfRange {
		t.Errorf("empty tree: got %v, want ErrIndexOutOfRange", err)
	}
}

func TestRemoveMissing(t *testing.T) {
	m := Build([]byte("abc"), byteLess)
	if _, err := Remove(m, 'z', byteLess); err != ErrSymbolNotPresent {
		t.Errorf("got %v, want ErrSymbolNotPresent", err)
	}
}

func TestInsertRemoveSizeSymmetry(t *testing.T) {
	m := Build([]byte("hello world"), byteLess)
	base := Size(m)

	inserted := Insert(m, 'z', byteLess)
	if Size(inserted) != base+1 {
		t.Errorf("Size(Insert(m,s)) = %d, want %d", Size(inserted), base+1)
	}

	removed, err := Remove(inserted, 'z', byteLess)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if Size(removed) != base {
		t.Errorf("Size(Remove(...)) = %d, want %d", Size(removed), base)
	}
	if !Equal(removed, m, byteLess) {
		t.Errorf("remove(insert(m,s),s) != m (multiset equality)")
	}
}

func TestInsertRemoveSymmetryRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(40)
		seq := make([]byte, n)
		for i := range seq {
			seq[i] = byte('a' + rng.Intn(6))
		}
		m := Build(seq, byteLess)
		s := byte('a' + rng.Intn(6))

		got, err := Remove(Insert(m, s, byteLess), s, byteLess)
		if err != nil {
			t.Fatalf("Remove: %v", err)
		}
		if !Equal(got, m, byteLess) {
			t.Fatalf("trial %d: remove(insert(m,%q),%q) != m; seq=%q", trial, s, s, seq)
		}
	}
}

func TestForwardReverseDuality(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(50)
		seq := make([]byte, n)
		for i := range seq {
			seq[i] = byte('a' + rng.Intn(10))
		}
		m := Build(seq, byteLess)
		size := Size(m)
		idx := uint32(rng.Intn(int(size)))

		iv, sym, err := ReverseLookup(m, idx)
		if err != nil {
			t.Fatalf("ReverseLookup: %v", err)
		}
		if idx < iv.Start || idx >= iv.Start+iv.Freq {
			t.Fatalf("idx %d not in reverse interval %+v", idx, iv)
		}

		fwd, err := ForwardLookup(m, sym, byteLess)
		if err != nil {
			t.Fatalf("ForwardLookup: %v", err)
		}
		if fwd.Freq != iv.Freq {
			t.Fatalf("forward freq %d != reverse freq %d", fwd.Freq, iv.Freq)
		}
		if fwd.Start > iv.Start || iv.Start >= fwd.Start+fwd.Freq {
			t.Fatalf("forward interval %+v does not contain reverse start %d", fwd, iv.Start)
		}
	}
}

func TestCountConsistency(t *testing.T) {
	input := []byte("the quick brown fox jumps over the lazy dog")
	occurrences := make(map[byte]uint32)
	for _, b := range input {
		occurrences[b]++
	}
	var check func(n *Node[byte]) uint32
	check = func(n *Node[byte]) uint32 {
		if n == nil {
			return 0
		}
		left := check(n.Left)
		right := check(n.Right)
		if n.Count != left+right+occurrences[n.Symbol] {
			t.Fatalf("count inconsistency at %+v", n)
		}
		return n.Count
	}
	m := Build(input, byteLess)
	check(m)
}

func TestFlattenUnflattenRoundtrip(t *testing.T) {
	m := Build([]byte("mississippi"), byteLess)
	runs := Flatten(m)
	rebuilt := Unflatten(runs)
	if !Equal(m, rebuilt, byteLess) {
		t.Errorf("Unflatten(Flatten(m)) != m")
	}
}

func TestEqualIgnoresShape(t *testing.T) {
	a := Build([]byte("aabbc"), byteLess)
	var b *Node[byte]
	for _, ch := range []byte("cbaba") { // different insertion order than Build's balanced layout
		b = Insert(b, ch, byteLess)
	}
	if !Equal(a, b, byteLess) {
		t.Errorf("Equal should ignore tree shape, only multiplicities")
	}
	c, _ := Remove(b, 'c', byteLess)
	if Equal(a, c, byteLess) {
		t.Errorf("Equal should distinguish different multisets")
	}
}
