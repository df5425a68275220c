package randutil

import "testing"

func TestNewDeterministic(t *testing.T) {
	t.Parallel()
	a, b := New(42), New(42)
	for i := 0; i < 100; i++ {
		if x, y := a.Uint64(), b.Uint64(); x != y {
			t.Fatalf("draw %d differs: %d vs %d", i, x, y)
		}
	}
}

func TestSplitStreamsDiffer(t *testing.T) {
	t.Parallel()
	streams := Split(7, 4)
	if len(streams) != 4 {
		t.Fatalf("expected 4 streams, got %d", len(streams))
	}
	first := make(map[uint64]int)
	for i, r := range streams {
		v := r.Uint64()
		if j, ok := first[v]; ok {
			t.Fatalf("streams %d and %d start with the same value", j, i)
		}
		first[v] = i
	}

	for i, r := range Split(7, 4) {
		if idx, ok := first[r.Uint64()]; !ok || idx != i {
			t.Fatalf("stream %d is not reproducible", i)
		}
	}
	if Derive(7, 0) == Derive(8, 0) {
		t.Error("different parent seeds should derive different children")
	}
}
