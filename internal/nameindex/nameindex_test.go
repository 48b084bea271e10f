package nameindex

import "testing"

func TestIntern_AssignsStableSequentialIndexes(t *testing.T) {
	tbl := New()

	i1, err := tbl.Intern("alpha")
	if err != nil {
		t.Fatalf("Intern: %v", err)
	}
	i2, err := tbl.Intern("beta")
	if err != nil {
		t.Fatalf("Intern: %v", err)
	}
	if i1 != 0 || i2 != 1 {
		t.Fatalf("indexes = %d, %d, want 0, 1", i1, i2)
	}

	again, err := tbl.Intern("alpha")
	if err != nil {
		t.Fatalf("Intern: %v", err)
	}
	if again != i1 {
		t.Errorf("re-interning alpha returned %d, want original %d", again, i1)
	}
}

func TestName_RoundTrips(t *testing.T) {
	tbl := New()
	idx, _ := tbl.Intern("gamma")

	name, ok := tbl.Name(idx)
	if !ok || name != "gamma" {
		t.Errorf("Name(%d) = %q, %v", idx, name, ok)
	}

	if _, ok := tbl.Name(idx + 1); ok {
		t.Errorf("Name of an unassigned index should report false")
	}
}

func TestFreeze_RejectsNewNamesButAllowsKnownOnes(t *testing.T) {
	tbl := New()
	idx, _ := tbl.Intern("alpha")
	tbl.Freeze()

	if again, err := tbl.Intern("alpha"); err != nil || again != idx {
		t.Errorf("Intern of a known name on a frozen table should still succeed: got %d, %v", again, err)
	}

	if _, err := tbl.Intern("never-seen"); err == nil {
		t.Errorf("Intern of a new name on a frozen table should error")
	}
}

func TestFromNames_RebuildsFrozenTable(t *testing.T) {
	tbl := FromNames([]string{"a", "b", "c"})

	if !tbl.Frozen() {
		t.Errorf("FromNames should produce a frozen table")
	}
	if idx, ok := tbl.Lookup("b"); !ok || idx != 1 {
		t.Errorf("Lookup(b) = %d, %v, want 1, true", idx, ok)
	}
	if tbl.Len() != 3 {
		t.Errorf("Len() = %d, want 3", tbl.Len())
	}
}
