package crypto

import "testing"

func TestHashOnceIsDeterministic(t *testing.T) {
	a := HashOnce(Hash{1})
	b := HashOnce(Hash{1})
	if a != b {
		t.Fatalf("HashOnce is not deterministic: %x != %x", a, b)
	}
	if a == (Hash{1}) {
		t.Fatal("HashOnce returned its input unchanged")
	}
}

func TestHashNMatchesRepeatedHashOnce(t *testing.T) {
	start := Hash{9}
	want := start
	for i := 0; i < 5; i++ {
		want = HashOnce(want)
	}
	got := HashN(start, 5)
	if got != want {
		t.Fatalf("HashN(5) = %x, want %x", got, want)
	}
}

func TestHashNZeroIsIdentity(t *testing.T) {
	start := Hash{3}
	if got := HashN(start, 0); got != start {
		t.Fatalf("HashN(0) = %x, want %x", got, start)
	}
}

func TestHashAppendDependsOnBothInputs(t *testing.T) {
	prev := Hash{1}
	a := HashAppend(prev, Hash{2})
	b := HashAppend(prev, Hash{3})
	if a == b {
		t.Fatal("HashAppend ignored its payload argument")
	}
	c := HashAppend(Hash{4}, Hash{2})
	if a == c {
		t.Fatal("HashAppend ignored its prev argument")
	}
}

func TestHashIsZero(t *testing.T) {
	if !(Hash{}).IsZero() {
		t.Fatal("zero-value Hash reported as non-zero")
	}
	if (Hash{1}).IsZero() {
		t.Fatal("non-zero Hash reported as zero")
	}
}
