package semver

import "testing"

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		raw                string
		major, minor, patch int
		pre, build         string
	}{
		{"1.2.3", 1, 2, 3, "", ""},
		{"0.0.1", 0, 0, 1, "", ""},
		{"1.0.0-alpha", 1, 0, 0, "alpha", ""},
		{"1.0.0-alpha.1", 1, 0, 0, "alpha.1", ""},
		{"1.0.0+build.5", 1, 0, 0, "", "build.5"},
		{"1.0.0-beta+exp.sha.5114f85", 1, 0, 0, "beta", "exp.sha.5114f85"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.raw, err)
			}
			if !v.Valid {
				t.Fatalf("Parse(%q).Valid = false", tt.raw)
			}
			if v.Major != tt.major || v.Minor != tt.minor || v.Patch != tt.patch {
				t.Errorf("Parse(%q) = %d.%d.%d, want %d.%d.%d", tt.raw, v.Major, v.Minor, v.Patch, tt.major, tt.minor, tt.patch)
			}
			if v.Pre != tt.pre {
				t.Errorf("Parse(%q).Pre = %q, want %q", tt.raw, v.Pre, tt.pre)
			}
			if v.Build != tt.build {
				t.Errorf("Parse(%q).Build = %q, want %q", tt.raw, v.Build, tt.build)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []string{
		"",
		"1.2",
		"1.2.x",
		"01.2.3",
		"1.2.3-",
		"1.2.3+",
		"1.2.3-alpha..1",
		"NotAVersion",
	}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			v, err := Parse(raw)
			if err == nil {
				t.Fatalf("Parse(%q) expected error, got %+v", raw, v)
			}
			if v.Valid {
				t.Errorf("Parse(%q).Valid = true on error", raw)
			}
		})
	}
}

func TestMustParse_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("MustParse did not panic on invalid input")
		}
	}()
	MustParse("not-a-version")
}

func TestCompare_SemverPrecedenceChain(t *testing.T) {
	chain := []string{
		"1.0.0-alpha",
		"1.0.0-alpha.1",
		"1.0.0-alpha.beta",
		"1.0.0-beta",
		"1.0.0-beta.2",
		"1.0.0-beta.11",
		"1.0.0-rc.1",
		"1.0.0",
	}

	for i := 0; i < len(chain)-1; i++ {
		a := MustParse(chain[i])
		b := MustParse(chain[i+1])
		if !LessThan(a, b) {
			t.Errorf("expected %s < %s", chain[i], chain[i+1])
		}
		if Compare(b, a) <= 0 {
			t.Errorf("expected %s > %s", chain[i+1], chain[i])
		}
		if Compare(a, a) != 0 {
			t.Errorf("expected %s == %s", chain[i], chain[i])
		}
	}
}

func TestCompare_BuildMetadataIgnored(t *testing.T) {
	a := MustParse("1.0.0+build.1")
	b := MustParse("1.0.0+build.2")
	if Compare(a, b) != 0 {
		t.Errorf("build metadata should not affect ordering")
	}
}

func TestString_Roundtrip(t *testing.T) {
	for _, raw := range []string{"1.2.3", "1.0.0-alpha.1", "1.0.0+build.5", "1.0.0-beta+exp.sha.5114f85"} {
		v := MustParse(raw)
		if v.String() != raw {
			t.Errorf("String() = %q, want %q", v.String(), raw)
		}
	}
}
