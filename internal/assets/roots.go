// Package assets implements the application asset-roots manager and
// module resolver: discovering the js/modules/resources tree, tracking
// per-module versions, and resolving import specifiers to on-disk
// paths with path-containment enforcement.
package assets

import (
	"os"
	"path"
	"strings"
	"sync"

	"github.com/R3E-Network/embedcore/infrastructure/embederr"
	"github.com/R3E-Network/embedcore/internal/semver"
)

const (
	dirJS        = "js"
	dirModules   = "modules"
	dirResources = "resources"
)

// Path tokens expand only when they are the leading path segment.
const (
	tokenAppRoot   = "%APPROOT%"
	tokenJS        = "%JS%"
	tokenModules   = "%MODULES%"
	tokenResources = "%RESOURCES%"
)

// Roots discovers and holds the application's asset tree: the app
// root, per-module root paths, and each module's latest known version.
// The app root may be set successfully at most once.
type Roots struct {
	mu sync.RWMutex

	appRoot       string
	initialized   bool
	moduleRoots   map[string]string
	latestVersion map[string]semver.Version

	// statDir is swappable for tests that want to exercise the
	// directory-scan logic without a real filesystem.
	statDir func(dir string) ([]os.DirEntry, error)
}

// New creates an empty Roots manager.
func New() *Roots {
	return &Roots{
		moduleRoots:   make(map[string]string),
		latestVersion: make(map[string]semver.Version),
		statDir:       os.ReadDir,
	}
}

// AppRoot returns the configured app root, or "" if never set.
func (r *Roots) AppRoot() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.appRoot
}

// Initialized reports whether SetAppRootPath has succeeded.
func (r *Roots) Initialized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized
}

// SetAppRootPath sets the application root exactly once. It validates
// that js/, modules/, and resources/ exist under root, then scans
// modules/ to discover module version directories. A second
// successful call is rejected; so is a root missing a required
// directory.
func (r *Roots) SetAppRootPath(root string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return embederr.DoubleInit("asset roots")
	}

	root = normalizeSeparators(strings.TrimRight(normalizeSeparators(root), "/"))

	for _, dir := range []string{dirJS, dirModules, dirResources} {
		info, err := os.Stat(path.Join(root, dir))
		if err != nil || !info.IsDir() {
			return embederr.MissingRootDir(dir)
		}
	}

	if err := r.scanModulesLocked(root); err != nil {
		return err
	}

	r.appRoot = root
	r.initialized = true
	return nil
}

func (r *Roots) scanModulesLocked(root string) error {
	modulesDir := path.Join(root, dirModules)
	moduleEntries, err := r.statDir(modulesDir)
	if err != nil {
		return embederr.FileIO("readdir", modulesDir, err)
	}

	for _, modEntry := range moduleEntries {
		if !modEntry.IsDir() {
			continue
		}
		moduleName := modEntry.Name()
		versionDir := path.Join(modulesDir, moduleName)

		r.moduleRoots[moduleName] = versionDir

		versionEntries, err := r.statDir(versionDir)
		if err != nil {
			continue
		}
		var latest semver.Version
		hasLatest := false
		for _, vEntry := range versionEntries {
			if !vEntry.IsDir() {
				continue
			}
			v, err := semver.Parse(vEntry.Name())
			if err != nil {
				continue
			}
			if !hasLatest || semver.LessThan(latest, v) {
				latest = v
				hasLatest = true
			}
		}
		if hasLatest {
			r.latestVersion[moduleName] = latest
		}
	}
	return nil
}

// AddModuleRootPath registers (or overwrites) the root path for a
// module name, used when a module root is known out of band (e.g. a
// statically-linked production build).
func (r *Roots) AddModuleRootPath(moduleName, p string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moduleRoots[moduleName] = normalizeSeparators(p)
}

// FindModuleRootPath returns the registered root path for a module
// name, or "" if unknown.
func (r *Roots) FindModuleRootPath(moduleName string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.moduleRoots[moduleName]
}

// RemoveModuleRootPath deregisters a module's root path.
func (r *Roots) RemoveModuleRootPath(moduleName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.moduleRoots, moduleName)
}

// SetModulesLatestVersion records the latest known version for a module.
func (r *Roots) SetModulesLatestVersion(moduleName string, v semver.Version) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latestVersion[moduleName] = v
}

// GetModulesLatestVersion returns the latest known version for a
// module, and false if none is recorded.
func (r *Roots) GetModulesLatestVersion(moduleName string) (semver.Version, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.latestVersion[moduleName]
	return v, ok
}

// RemoveModulesLatestVersion deregisters a module's latest version.
func (r *Roots) RemoveModulesLatestVersion(moduleName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.latestVersion, moduleName)
}

// normalizeSeparators converts Windows-style backslashes to forward
// slashes; this is total and applies to every path this package
// produces or accepts.
func normalizeSeparators(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
