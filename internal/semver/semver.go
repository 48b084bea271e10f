// Package semver parses and compares semantic version strings of the
// form M.m.p[-pre][+build], used to tag module directories under the
// asset tree and to stamp snapshot headers.
package semver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/R3E-Network/embedcore/infrastructure/embederr"
)

// Version is a parsed semantic version per SemVer 2.0.0 §11.
type Version struct {
	Valid bool
	Major int
	Minor int
	Patch int
	Pre   string
	Build string
	Raw   string
}

// Parse parses a version string. Invalid input returns an invalid
// Version (Raw set, plus any components parsed before the error) and a
// *embederr.Error with KindValidation.
func Parse(raw string) (Version, error) {
	v := Version{Raw: raw}

	hasBuild := strings.Contains(raw, "+")
	core, build, _ := strings.Cut(raw, "+")
	if hasBuild && build == "" {
		return v, invalid(raw, "empty build metadata after +")
	}

	core, pre, hasPre := strings.Cut(core, "-")

	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return v, invalid(raw, "expected major.minor.patch")
	}

	nums := make([]int, 3)
	for i, p := range parts {
		if p == "" || !isDigits(p) {
			return v, invalid(raw, "non-numeric version component %q", p)
		}
		if len(p) > 1 && p[0] == '0' {
			return v, invalid(raw, "leading zero in version component %q", p)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return v, invalid(raw, "version component overflow %q", p)
		}
		nums[i] = n
	}

	if hasPre {
		if pre == "" {
			return v, invalid(raw, "empty pre-release after -")
		}
		for _, ident := range strings.Split(pre, ".") {
			if ident == "" {
				return v, invalid(raw, "empty pre-release identifier")
			}
		}
	}
	if build != "" {
		for _, ident := range strings.Split(build, ".") {
			if ident == "" {
				return v, invalid(raw, "empty build identifier")
			}
		}
	}

	v.Valid = true
	v.Major, v.Minor, v.Patch = nums[0], nums[1], nums[2]
	v.Pre = pre
	v.Build = build
	return v, nil
}

// MustParse parses raw and panics on error; intended for version
// literals baked into code (tests, constants), never for host input.
func MustParse(raw string) Version {
	v, err := Parse(raw)
	if err != nil {
		panic(fmt.Sprintf("semver.MustParse(%q): %v", raw, err))
	}
	return v
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func invalid(raw, format string, args ...any) error {
	return embederr.InvalidSemver(raw).WithDetails("reason", fmt.Sprintf(format, args...))
}

// String renders the version back to its canonical M.m.p[-pre][+build] form.
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Pre != "" {
		s += "-" + v.Pre
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}

// Compare returns -1, 0, or 1 per SemVer §11 precedence rules. Build
// metadata is ignored for ordering purposes, as the spec requires.
func Compare(a, b Version) int {
	if c := cmpInt(a.Major, b.Major); c != 0 {
		return c
	}
	if c := cmpInt(a.Minor, b.Minor); c != 0 {
		return c
	}
	if c := cmpInt(a.Patch, b.Patch); c != 0 {
		return c
	}
	return comparePre(a.Pre, b.Pre)
}

// LessThan reports whether a orders strictly before b.
func LessThan(a, b Version) bool { return Compare(a, b) < 0 }

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// comparePre implements SemVer §11 pre-release precedence: no
// pre-release outranks any pre-release; otherwise identifiers are
// compared left to right, numeric < alphanumeric, shorter list loses
// when the common prefix is equal.
func comparePre(a, b string) int {
	if a == "" && b == "" {
		return 0
	}
	if a == "" {
		return 1
	}
	if b == "" {
		return -1
	}

	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")

	n := len(aParts)
	if len(bParts) < n {
		n = len(bParts)
	}

	for i := 0; i < n; i++ {
		if c := compareIdent(aParts[i], bParts[i]); c != 0 {
			return c
		}
	}
	return cmpInt(len(aParts), len(bParts))
}

func compareIdent(a, b string) int {
	aNum, aIsNum := identNumeric(a)
	bNum, bIsNum := identNumeric(b)

	switch {
	case aIsNum && bIsNum:
		return cmpInt(aNum, bNum)
	case aIsNum && !bIsNum:
		return -1
	case !aIsNum && bIsNum:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func identNumeric(s string) (int, bool) {
	if !isDigits(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
