package assets

import (
	"path"
	"strings"

	"github.com/R3E-Network/embedcore/internal/semver"
)

// Kind classifies a resolved module by content, either inferred from
// the specifier's extension or declared explicitly via an import
// attribute.
type Kind int

const (
	// KindUnknown means no extension and no explicit "type" attribute
	// were present; the specifier path is resolved as written, with no
	// extension probing.
	KindUnknown Kind = iota
	KindJavaScript
	KindJSON
	// KindNative marks a .vbin module: a natively-compiled binary
	// loaded instead of interpreted script or parsed JSON.
	KindNative
	// KindInvalid marks a specifier whose declared and inferred kinds
	// conflict, or whose explicit "type" attribute value is
	// unrecognized; any module graph reachable from it is poisoned and
	// must fail resolution rather than guess.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindJavaScript:
		return "javascript"
	case KindJSON:
		return "json"
	case KindNative:
		return "native"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// kindFromExtension infers a Kind from a specifier's file extension.
// Returns KindUnknown if the extension isn't recognized.
func kindFromExtension(specifier string) Kind {
	switch strings.ToLower(path.Ext(specifier)) {
	case ".js", ".mjs", ".cjs":
		return KindJavaScript
	case ".json":
		return KindJSON
	case ".vbin":
		return KindNative
	default:
		return KindUnknown
	}
}

// kindFromAttribute maps an explicit "type" import attribute value to
// a Kind. Returns KindUnknown for an absent value; callers must treat
// a non-empty, unrecognized value as KindInvalid rather than calling
// this helper (see ResolveKind).
func kindFromAttribute(typeAttr string) Kind {
	switch strings.ToLower(typeAttr) {
	case "javascript", "js":
		return KindJavaScript
	case "json":
		return KindJSON
	case "native":
		return KindNative
	default:
		return KindUnknown
	}
}

// Attributes carries the parsed import-attribute clause accompanying
// a module specifier: `import x from "y" with { type: "json" }`-style
// metadata, plus an optional explicit module name and version used to
// redirect resolution into modules/<module>/<version>/.
type Attributes struct {
	Type    string
	Module  string
	Version string
}

// ResolveKind reconciles the extension-inferred kind against any
// explicit "type" attribute. An unrecognized value for the "type"
// attribute poisons the result to KindInvalid outright, per §6 ("an
// invalid value for a known key poisons the attributes"); a
// recognized attribute type that disagrees with a recognized
// extension also yields KindInvalid. No "type" attribute at all
// yields the extension-inferred kind (KindUnknown if the extension
// isn't recognized either).
func ResolveKind(specifier string, attrs Attributes) Kind {
	extKind := kindFromExtension(specifier)
	if attrs.Type == "" {
		return extKind
	}
	attrKind := kindFromAttribute(attrs.Type)
	if attrKind == KindUnknown {
		return KindInvalid
	}
	if extKind != KindUnknown && extKind != attrKind {
		return KindInvalid
	}
	return attrKind
}

// ParsedVersion returns the attribute's Version parsed as a semver
// Version, and true if it was present and valid. An empty Version
// attribute reports (zero, false) without error — most specifiers
// carry no explicit version and fall back to the module's latest.
func (a Attributes) ParsedVersion() (semver.Version, bool) {
	if a.Version == "" {
		return semver.Version{}, false
	}
	v, err := semver.Parse(a.Version)
	if err != nil {
		return semver.Version{}, false
	}
	return v, true
}
