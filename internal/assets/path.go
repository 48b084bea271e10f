package assets

import (
	"path"
	"strings"
)

// expandToken replaces a leading path token with its expansion.
// Embedded tokens elsewhere in the string are left verbatim, matching
// the source's textual-replace-of-the-leading-segment-only rule.
func (r *Roots) expandToken(p string) string {
	switch {
	case strings.HasPrefix(p, tokenAppRoot):
		return r.appRoot + strings.TrimPrefix(p, tokenAppRoot)
	case strings.HasPrefix(p, tokenJS):
		return path.Join(r.appRoot, dirJS) + strings.TrimPrefix(p, tokenJS)
	case strings.HasPrefix(p, tokenModules):
		return path.Join(r.appRoot, dirModules) + strings.TrimPrefix(p, tokenModules)
	case strings.HasPrefix(p, tokenResources):
		return path.Join(r.appRoot, dirResources) + strings.TrimPrefix(p, tokenResources)
	default:
		return p
	}
}

// MakeAbsolutePath expands tokens and joins p under the app root
// without enforcing containment; used internally before the
// containment check runs.
func (r *Roots) MakeAbsolutePath(p string) string {
	p = normalizeSeparators(p)
	p = r.expandToken(p)
	if path.IsAbs(p) {
		return path.Clean(p)
	}
	return path.Clean(path.Join(r.appRoot, p))
}

// MakeAbsolutePathChecked resolves p to an absolute path under the app
// root, applying token expansion and the containment check. Returns
// "" if p escapes the app root after ".." normalization, matches the
// root itself exactly as "/", or is empty.
func (r *Roots) MakeAbsolutePathChecked(p string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.makeAbsolutePathCheckedLocked(p)
}

func (r *Roots) makeAbsolutePathCheckedLocked(p string) string {
	if p == "" || p == "/" {
		return ""
	}
	abs := r.MakeAbsolutePath(p)
	if !r.containedLocked(abs) {
		return ""
	}
	return abs
}

// containedLocked reports whether abs lexically resolves under the
// app root after Clean-style ".." normalization.
func (r *Roots) containedLocked(abs string) bool {
	if r.appRoot == "" {
		return false
	}
	rel, err := relLexical(r.appRoot, abs)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "../") && rel != "..")
}

// MakeRelativePathToAppRoot returns p's path relative to the app root,
// or "" if p escapes the app root after ".." normalization.
func (r *Roots) MakeRelativePathToAppRoot(p string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.makeRelativePathToRootLocked(p, r.appRoot)
}

// MakeRelativePathToRoot is the general form of
// MakeRelativePathToAppRoot against an arbitrary root.
func (r *Roots) MakeRelativePathToRoot(p, root string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.makeRelativePathToRootLocked(p, root)
}

func (r *Roots) makeRelativePathToRootLocked(p, root string) string {
	if p == "" || root == "" {
		return ""
	}
	abs := p
	if !path.IsAbs(abs) {
		abs = path.Clean(path.Join(root, normalizeSeparators(p)))
	} else {
		abs = path.Clean(normalizeSeparators(abs))
	}

	rel, err := relLexical(root, abs)
	if err != nil {
		return ""
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return ""
	}
	return rel
}

// relLexical computes a lexical (non-symlink-aware) relative path from
// base to target, operating purely on "/"-joined path strings so it
// works identically regardless of host OS.
func relLexical(base, target string) (string, error) {
	base = path.Clean(normalizeSeparators(base))
	target = path.Clean(normalizeSeparators(target))

	baseParts := splitNonEmpty(base)
	targetParts := splitNonEmpty(target)

	common := 0
	for common < len(baseParts) && common < len(targetParts) && baseParts[common] == targetParts[common] {
		common++
	}

	ups := len(baseParts) - common
	var out []string
	for i := 0; i < ups; i++ {
		out = append(out, "..")
	}
	out = append(out, targetParts[common:]...)

	if len(out) == 0 {
		return ".", nil
	}
	return strings.Join(out, "/"), nil
}

func splitNonEmpty(p string) []string {
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
