package hostthread

import "testing"

func TestIntToPriority_RoundTrips(t *testing.T) {
	tests := []struct {
		n    int
		want Priority
	}{
		{0, Default},
		{1, BestEffort},
		{2, UserVisible},
		{3, UserBlocking},
		{99, BestEffort},
		{-1, BestEffort},
	}
	for _, tt := range tests {
		if got := IntToPriority(tt.n); got != tt.want {
			t.Errorf("IntToPriority(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestPriorityToInt(t *testing.T) {
	tests := []struct {
		p    Priority
		want int
	}{
		{Default, 0},
		{BestEffort, 1},
		{UserVisible, 2},
		{UserBlocking, 3},
	}
	for _, tt := range tests {
		if got := PriorityToInt(tt.p); got != tt.want {
			t.Errorf("PriorityToInt(%v) = %d, want %d", tt.p, got, tt.want)
		}
	}
}

func TestClampWorkerCount(t *testing.T) {
	cores := HardwareCores()
	if cores <= 0 {
		t.Fatalf("HardwareCores() = %d, want > 0", cores)
	}

	if got := ClampWorkerCount(-1); got != cores {
		t.Errorf("ClampWorkerCount(-1) = %d, want %d (hardware cores)", got, cores)
	}
	if got := ClampWorkerCount(0); got != 1 {
		t.Errorf("ClampWorkerCount(0) = %d, want 1", got)
	}
	if got := ClampWorkerCount(cores + 100); got != cores {
		t.Errorf("ClampWorkerCount(cores+100) = %d, want %d", got, cores)
	}
	if got := ClampWorkerCount(1); got != 1 {
		t.Errorf("ClampWorkerCount(1) = %d, want 1", got)
	}
}

func TestThread_RunExecutesFn(t *testing.T) {
	th := New("worker-0", BestEffort)
	ran := false
	th.Run(func() { ran = true })
	if !ran {
		t.Errorf("Run did not execute fn")
	}
	if th.Name != "worker-0" {
		t.Errorf("Name = %q, want worker-0", th.Name)
	}
}

func TestNew_AssignsUniqueIDs(t *testing.T) {
	a := New("a", Default)
	b := New("b", Default)
	if a.ID == b.ID {
		t.Errorf("expected distinct thread IDs, got %d twice", a.ID)
	}
}
