package externalref

import "testing"

func TestRegister_DeduplicatesAndStartsAtOne(t *testing.T) {
	tbl := New()

	i1, err := tbl.Register(Ref(0x1000))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if i1 != 1 {
		t.Fatalf("first registered ref should get index 1 (0 is the sentinel), got %d", i1)
	}

	i2, err := tbl.Register(Ref(0x1000))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if i2 != i1 {
		t.Errorf("re-registering the same ref should return the same index")
	}

	i3, err := tbl.Register(Ref(0x2000))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if i3 != 2 {
		t.Errorf("second distinct ref should get index 2, got %d", i3)
	}
}

func TestRegister_RejectsSentinelValue(t *testing.T) {
	tbl := New()
	if _, err := tbl.Register(Ref(0)); err == nil {
		t.Errorf("registering the sentinel value 0 should be rejected")
	}
}

func TestAt_SentinelAlwaysAtZero(t *testing.T) {
	tbl := New()
	ref, ok := tbl.At(0)
	if !ok || ref != 0 {
		t.Errorf("At(0) = %v, %v, want 0, true", ref, ok)
	}
}

func TestFromEntries_RoundTrips(t *testing.T) {
	tbl := New()
	tbl.Register(Ref(0x10))
	tbl.Register(Ref(0x20))

	rebuilt, err := FromEntries(tbl.Entries())
	if err != nil {
		t.Fatalf("FromEntries: %v", err)
	}
	if rebuilt.Len() != 2 {
		t.Errorf("Len() = %d, want 2", rebuilt.Len())
	}
	idx, ok := rebuilt.IndexOf(Ref(0x20))
	if !ok || idx != 2 {
		t.Errorf("IndexOf(0x20) = %d, %v, want 2, true", idx, ok)
	}
}

func TestFromEntries_RejectsMissingSentinel(t *testing.T) {
	if _, err := FromEntries([]Ref{0x10, 0x20}); err == nil {
		t.Errorf("expected an error for an entry list missing the leading sentinel")
	}
}

func TestFromEntries_RejectsDuplicateEntries(t *testing.T) {
	if _, err := FromEntries([]Ref{0, 0x10, 0x10}); err == nil {
		t.Errorf("expected an error for a duplicate entry")
	}
}
