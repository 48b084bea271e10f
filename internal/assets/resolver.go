package assets

import (
	"path"
	"strings"
	"sync"

	"github.com/R3E-Network/embedcore/infrastructure/embederr"
	"github.com/R3E-Network/embedcore/infrastructure/metrics"
	"github.com/R3E-Network/embedcore/internal/semver"
)

// cacheKey is the resolution cache key. The attribute version is part
// of the key, not a conflict with an unversioned lookup of the same
// specifier: "foo@1.0.0" and "foo" (latest) are distinct entries even
// when they happen to resolve to the same path.
type cacheKey struct {
	specifier string
	kind      Kind
	version   string
}

// Resolution is the result of resolving an import specifier to an
// on-disk module.
type Resolution struct {
	Path    string
	Kind    Kind
	Module  string
	Version semver.Version
}

// Resolver resolves import specifiers against a Roots tree, caching
// results per (specifier, kind, version).
type Resolver struct {
	roots *Roots

	mu    sync.RWMutex
	cache map[cacheKey]Resolution

	service string
	metrics *metrics.Metrics
}

// NewResolver builds a Resolver over roots. m may be nil.
func NewResolver(roots *Roots, service string, m *metrics.Metrics) *Resolver {
	return &Resolver{
		roots:   roots,
		cache:   make(map[cacheKey]Resolution),
		service: service,
		metrics: m,
	}
}

// Resolve implements the specifier resolution algorithm:
//
//  1. Determine the content kind by reconciling the specifier's
//     extension against any explicit "type" attribute; a conflict
//     poisons resolution (KindInvalid) and fails outright.
//  2. If attrs carries an explicit module name, resolution is
//     module-relative: look up (or default to latest) that module's
//     version directory under modules/, then join the remaining
//     specifier path under it.
//  3. Otherwise resolution is specifier-relative to fromPath: a
//     specifier starting with "./" or "../" resolves next to fromPath,
//     or against the app root when fromPath is empty; any other bare specifier is treated as a top-level module name
//     matched against the registered module roots.
//  4. A leading path token (%APPROOT%, %JS%, %MODULES%, %RESOURCES%)
//     is expanded before containment is checked.
//  5. The final path must lie within the app root after ".."
//     normalization; an escape is rejected rather than silently
//     clamped.
func (r *Resolver) Resolve(specifier, fromPath string, attrs Attributes) (Resolution, error) {
	kind := ResolveKind(specifier, attrs)
	if kind == KindInvalid {
		return Resolution{}, embederr.InvalidAttribute("type", attrs.Type).WithDetails("specifier", specifier)
	}

	versionKey := attrs.Version
	key := cacheKey{specifier: specifier, kind: kind, version: versionKey}

	r.mu.RLock()
	if res, ok := r.cache[key]; ok {
		r.mu.RUnlock()
		r.recordResolution("resolved", true)
		return res, nil
	}
	r.mu.RUnlock()

	res, err := r.resolveUncached(specifier, fromPath, kind, attrs)
	if err != nil {
		r.recordResolution("error", false)
		return Resolution{}, err
	}

	r.mu.Lock()
	r.cache[key] = res
	r.mu.Unlock()

	r.recordResolution("resolved", false)
	return res, nil
}

func (r *Resolver) recordResolution(status string, hit bool) {
	if r.metrics == nil {
		return
	}
	r.metrics.RecordModuleResolution(r.service, status, hit, 0)
}

func (r *Resolver) resolveUncached(specifier, fromPath string, kind Kind, attrs Attributes) (Resolution, error) {
	if attrs.Module != "" {
		return r.resolveModuleRelative(specifier, kind, attrs)
	}
	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") {
		return r.resolveSpecifierRelative(specifier, fromPath, kind)
	}
	if strings.HasPrefix(specifier, "%") {
		return r.resolveTokenPath(specifier, kind)
	}
	return r.resolveTopLevelModule(specifier, kind)
}

func (r *Resolver) resolveModuleRelative(specifier string, kind Kind, attrs Attributes) (Resolution, error) {
	version, versionDir, err := r.moduleVersionDir(attrs.Module, attrs)
	if err != nil {
		return Resolution{}, err
	}

	abs := path.Clean(path.Join(versionDir, specifier))
	checked := r.roots.MakeAbsolutePathChecked(r.roots.MakeRelativePathToAppRoot(abs))
	if checked == "" {
		return Resolution{}, embederr.PathEscapesRoot(specifier)
	}

	return Resolution{Path: checked, Kind: kind, Module: attrs.Module, Version: version}, nil
}

func (r *Resolver) moduleVersionDir(moduleName string, attrs Attributes) (semver.Version, string, error) {
	base := r.roots.FindModuleRootPath(moduleName)
	if base == "" {
		return semver.Version{}, "", embederr.MissingRootDir(moduleName)
	}

	if v, ok := attrs.ParsedVersion(); ok {
		return v, path.Join(base, v.String()), nil
	}

	v, ok := r.roots.GetModulesLatestVersion(moduleName)
	if !ok {
		return semver.Version{}, "", embederr.MissingRootDir(moduleName)
	}
	return v, path.Join(base, v.String()), nil
}

func (r *Resolver) resolveSpecifierRelative(specifier, fromPath string, kind Kind) (Resolution, error) {
	dir := r.roots.AppRoot()
	if fromPath != "" {
		dir = path.Dir(fromPath)
	}
	if dir == "" {
		return Resolution{}, embederr.Validation("relative specifier requires a fromPath or an app root")
	}
	abs := path.Clean(path.Join(dir, specifier))

	checked := r.roots.MakeAbsolutePathChecked(r.roots.MakeRelativePathToAppRoot(abs))
	if checked == "" {
		return Resolution{}, embederr.PathEscapesRoot(specifier)
	}
	return Resolution{Path: checked, Kind: kind}, nil
}

func (r *Resolver) resolveTokenPath(specifier string, kind Kind) (Resolution, error) {
	abs := r.roots.MakeAbsolutePath(specifier)
	rel := r.roots.MakeRelativePathToAppRoot(abs)
	checked := r.roots.MakeAbsolutePathChecked(rel)
	if checked == "" {
		return Resolution{}, embederr.PathEscapesRoot(specifier)
	}
	return Resolution{Path: checked, Kind: kind}, nil
}

func (r *Resolver) resolveTopLevelModule(specifier string, kind Kind) (Resolution, error) {
	parts := strings.SplitN(specifier, "/", 2)
	moduleName := parts[0]

	base := r.roots.FindModuleRootPath(moduleName)
	if base == "" {
		return Resolution{}, embederr.MissingRootDir(moduleName)
	}

	version, ok := r.roots.GetModulesLatestVersion(moduleName)
	if !ok {
		return Resolution{}, embederr.MissingRootDir(moduleName)
	}
	versionDir := path.Join(base, version.String())

	rest := ""
	if len(parts) == 2 {
		rest = parts[1]
	}
	abs := path.Clean(path.Join(versionDir, rest))

	checked := r.roots.MakeAbsolutePathChecked(r.roots.MakeRelativePathToAppRoot(abs))
	if checked == "" {
		return Resolution{}, embederr.PathEscapesRoot(specifier)
	}

	return Resolution{Path: checked, Kind: kind, Module: moduleName, Version: version}, nil
}

// InvalidateCache drops every cached resolution. Useful after a
// module root is added, removed, or its latest version changes.
func (r *Resolver) InvalidateCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[cacheKey]Resolution)
}

// CacheLen reports the number of cached resolutions, for tests.
func (r *Resolver) CacheLen() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}
