package queue

import "testing"

func TestNestable_E2E3DepthAwareDequeue(t *testing.T) {
	clock := &fakeClock{now: 0}
	q := NewNestable[string](clock)

	q.PushNonNestableItem("N1")
	q.PushItem("K1")
	q.PushNonNestableItem("N2")
	q.PushItem("K2")

	got, ok := q.GetNext(2)
	if !ok || got != "K1" {
		t.Fatalf("GetNext(2) = (%q, %v), want (K1, true)", got, ok)
	}
	got, ok = q.GetNext(2)
	if !ok || got != "K2" {
		t.Fatalf("GetNext(2) = (%q, %v), want (K2, true)", got, ok)
	}
	if _, ok := q.GetNext(2); ok {
		t.Fatalf("GetNext(2) should find no further nestable entries")
	}
	got, ok = q.GetNext(0)
	if !ok || got != "N1" {
		t.Fatalf("GetNext(0) = (%q, %v), want (N1, true)", got, ok)
	}
	got, ok = q.GetNext(0)
	if !ok || got != "N2" {
		t.Fatalf("GetNext(0) = (%q, %v), want (N2, true)", got, ok)
	}
}

func TestNestable_DepthZeroPreservesFIFOOrderAcrossLanes(t *testing.T) {
	clock := &fakeClock{now: 0}
	q := NewNestable[string](clock)
	q.PushItem("a")
	q.PushNonNestableItem("b")
	q.PushItem("c")

	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.GetNext(0)
		if !ok || got != want {
			t.Fatalf("GetNext(0) = (%q, %v), want (%q, true)", got, ok, want)
		}
	}
}

func TestNestable_DelayedEntriesRespectNestability(t *testing.T) {
	clock := &fakeClock{now: 0}
	q := NewNestable[string](clock)
	q.PushNonNestableItemDelayed(1, "delayed-nonnestable")

	clock.now = 2
	if _, ok := q.GetNext(5); ok {
		t.Fatalf("non-nestable entry should not surface at nonzero depth")
	}
	got, ok := q.GetNext(0)
	if !ok || got != "delayed-nonnestable" {
		t.Fatalf("expected delayed non-nestable entry at depth 0")
	}
}
