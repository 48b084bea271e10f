package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/R3E-Network/embedcore/internal/semver"
)

func mustParseVersion(t *testing.T, raw string) semver.Version {
	t.Helper()
	v, err := semver.Parse(raw)
	if err != nil {
		t.Fatalf("semver.Parse(%q): %v", raw, err)
	}
	return v
}

func mkAppRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"js", "modules", "resources"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("MkdirAll(%s): %v", dir, err)
		}
	}
	return root
}

func TestSetAppRootPath_Succeeds(t *testing.T) {
	root := mkAppRoot(t)
	r := New()
	if err := r.SetAppRootPath(root); err != nil {
		t.Fatalf("SetAppRootPath: %v", err)
	}
	if !r.Initialized() {
		t.Errorf("Initialized() = false after successful set")
	}
}

func TestSetAppRootPath_RejectsDoubleInit(t *testing.T) {
	root := mkAppRoot(t)
	r := New()
	if err := r.SetAppRootPath(root); err != nil {
		t.Fatalf("first SetAppRootPath: %v", err)
	}
	if err := r.SetAppRootPath(root); err == nil {
		t.Errorf("expected error on second SetAppRootPath call")
	}
}

func TestSetAppRootPath_RejectsMissingSubdir(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "js"), 0o755); err != nil {
		t.Fatal(err)
	}
	r := New()
	if err := r.SetAppRootPath(root); err == nil {
		t.Errorf("expected error for app root missing modules/ and resources/")
	}
}

func TestSetAppRootPath_ScansModuleVersions(t *testing.T) {
	root := mkAppRoot(t)
	modDir := filepath.Join(root, "modules", "widgets")
	for _, v := range []string{"1.0.0", "1.2.0", "not-a-version", "2.0.0-alpha"} {
		if err := os.MkdirAll(filepath.Join(modDir, v), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	r := New()
	if err := r.SetAppRootPath(root); err != nil {
		t.Fatalf("SetAppRootPath: %v", err)
	}

	if got := r.FindModuleRootPath("widgets"); got == "" {
		t.Errorf("FindModuleRootPath(widgets) should be registered")
	}

	v, ok := r.GetModulesLatestVersion("widgets")
	if !ok {
		t.Fatalf("expected a latest version to be tracked")
	}
	if v.String() != "2.0.0-alpha" {
		t.Errorf("latest version = %s, want 2.0.0-alpha (major 2 outranks 1.2.0 even as a pre-release)", v.String())
	}
}

func TestAddRemoveModuleRootPath(t *testing.T) {
	r := New()
	r.AddModuleRootPath("widgets", "/approot/modules/widgets")
	if got := r.FindModuleRootPath("widgets"); got != "/approot/modules/widgets" {
		t.Errorf("FindModuleRootPath = %q", got)
	}
	r.RemoveModuleRootPath("widgets")
	if got := r.FindModuleRootPath("widgets"); got != "" {
		t.Errorf("FindModuleRootPath after remove = %q, want empty", got)
	}
}

func TestSetGetRemoveModulesLatestVersion(t *testing.T) {
	r := New()
	v := mustParseVersion(t, "3.1.4")
	r.SetModulesLatestVersion("widgets", v)

	got, ok := r.GetModulesLatestVersion("widgets")
	if !ok || got.String() != "3.1.4" {
		t.Errorf("GetModulesLatestVersion = %v, %v", got, ok)
	}

	r.RemoveModulesLatestVersion("widgets")
	if _, ok := r.GetModulesLatestVersion("widgets"); ok {
		t.Errorf("expected no latest version after remove")
	}
}

func TestNormalizeSeparators(t *testing.T) {
	if got := normalizeSeparators(`a\b\c`); got != "a/b/c" {
		t.Errorf("normalizeSeparators = %q", got)
	}
}
