package embederr

import (
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "error without underlying error",
			err:  New(KindUsage, "negative delay"),
			want: "[usage] negative delay",
		},
		{
			name: "error with underlying error",
			err:  Wrap(KindResource, "open snapshot", errors.New("permission denied")),
			want: "[resource] open snapshot: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	underlying := errors.New("boom")
	err := Wrap(KindSerialization, "decode failed", underlying)

	if got := err.Unwrap(); got != underlying {
		t.Errorf("Unwrap() = %v, want %v", got, underlying)
	}
}

func TestError_WithDetails(t *testing.T) {
	err := New(KindValidation, "bad path").WithDetails("path", "../etc").WithDetails("root", "/opt/app")

	if len(err.Details) != 2 {
		t.Fatalf("Details length = %d, want 2", len(err.Details))
	}
	if err.Details["path"] != "../etc" {
		t.Errorf("Details[path] = %v, want ../etc", err.Details["path"])
	}
}

func TestIs(t *testing.T) {
	err := PathEscapesRoot("../etc/passwd")

	if !Is(err, KindValidation) {
		t.Errorf("Is(err, KindValidation) = false, want true")
	}
	if Is(err, KindResource) {
		t.Errorf("Is(err, KindResource) = true, want false")
	}
	if Is(errors.New("plain"), KindValidation) {
		t.Errorf("Is(plain error) = true, want false")
	}
}
