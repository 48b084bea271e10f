// Package isolate wraps a goja.Runtime — this module's stand-in for
// the embedded JavaScript engine black box §1 treats as an external
// collaborator — as the "Isolate" the rest of the runtime schedules
// and resolves modules for. Per Design Notes §9, this package is a
// thin boundary layer: it installs a foreground task runner, wires
// module resolution to internal/assets, and registers the isolate's
// companion native state for snapshotting, but holds no scheduling,
// resolution, or serialization policy of its own.
package isolate

import (
	"context"
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"github.com/R3E-Network/embedcore/infrastructure/embederr"
	"github.com/R3E-Network/embedcore/infrastructure/logging"
	"github.com/R3E-Network/embedcore/internal/assets"
	"github.com/R3E-Network/embedcore/internal/buffer"
	"github.com/R3E-Network/embedcore/internal/foreground"
	"github.com/R3E-Network/embedcore/internal/hostthread"
	"github.com/R3E-Network/embedcore/internal/platform"
	"github.com/R3E-Network/embedcore/internal/queue"
	"github.com/R3E-Network/embedcore/internal/snapshot"
)

// nativeFieldTypeName is the type name an Isolate registers its own
// companion state under in the snapshot type registry, mirroring the
// per-context back-pointer slot §4.H describes.
const nativeFieldTypeName = "embedcore.Isolate.companionState"

func init() {
	snapshot.RegisterType(nativeFieldTypeName, serializeCompanion, deserializeCompanion)
}

// companionState is the per-isolate native data persisted across a
// snapshot round-trip: the set of module specifiers this isolate had
// already resolved, so a reloaded isolate can warm its resolver cache
// without re-walking the filesystem.
type companionState struct {
	ResolvedSpecifiers []string
}

func serializeCompanion(w *buffer.Writer, obj any) error {
	cs, ok := obj.(*companionState)
	if !ok {
		return embederr.Serialization("isolate companion state has an unexpected runtime type")
	}
	buffer.WriteUint32(w, uint32(len(cs.ResolvedSpecifiers)))
	for _, s := range cs.ResolvedSpecifiers {
		buffer.WriteString(w, s)
	}
	return nil
}

func deserializeCompanion(r *buffer.Reader) (any, error) {
	n, err := buffer.ReadUint32(r)
	if err != nil {
		return nil, err
	}
	cs := &companionState{ResolvedSpecifiers: make([]string, 0, n)}
	for i := uint32(0); i < n; i++ {
		s, err := buffer.ReadString(r)
		if err != nil {
			return nil, err
		}
		cs.ResolvedSpecifiers = append(cs.ResolvedSpecifiers, s)
	}
	return cs, nil
}

// Isolate is one independent execution environment: its own goja
// runtime, its own foreground task runner, and its own module
// resolver state (per §4.G, resolver state is never shared cross-isolate).
type Isolate struct {
	ID       string
	vm       *goja.Runtime
	runner   *foreground.Runner
	resolver *assets.Resolver
	log      *logging.Logger

	mu        sync.Mutex
	companion *companionState
}

// New creates an Isolate identified by id, scheduled against clock for
// delayed-task promotion and resolving modules through resolver.
func New(id string, clock queue.Clock, resolver *assets.Resolver, log *logging.Logger) *Isolate {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.UncapFieldNameMapper())

	iso := &Isolate{
		ID:        id,
		vm:        vm,
		runner:    foreground.New(clock),
		resolver:  resolver,
		log:       log,
		companion: &companionState{},
	}
	iso.installGlobals()
	return iso
}

// installGlobals exposes the host-provided `require` hook the engine
// uses to trigger module resolution, mirroring the engine's dynamic
// import callback contract from §4.G's resolution algorithm.
func (iso *Isolate) installGlobals() {
	_ = iso.vm.Set("require", func(call goja.FunctionCall) goja.Value {
		specifier := call.Argument(0).String()
		res, err := iso.resolver.Resolve(specifier, "", assets.Attributes{})
		if iso.log != nil {
			ctx := logging.WithIsolateID(context.Background(), iso.ID)
			iso.log.LogModuleResolved(ctx, specifier, res.Path, err)
		}
		if err != nil {
			panic(iso.vm.ToValue(err.Error()))
		}
		iso.mu.Lock()
		iso.companion.ResolvedSpecifiers = append(iso.companion.ResolvedSpecifiers, specifier)
		iso.mu.Unlock()
		return iso.vm.ToValue(res.Path)
	})
}

// Runner returns this isolate's foreground task runner, the object a
// platform.Adapter's IsolateHelper should return from ForegroundRunner.
func (iso *Isolate) Runner() *foreground.Runner { return iso.runner }

// RunScript compiles and runs src under name on the calling goroutine.
// Callers are responsible for having entered a foreground.TaskRunScope
// first if this call happens from inside another task (§4.E nesting).
func (iso *Isolate) RunScript(name, src string) (goja.Value, error) {
	prog, err := goja.Compile(name, src, false)
	if err != nil {
		return nil, fmt.Errorf("isolate %s: compile %s: %w", iso.ID, name, err)
	}
	v, err := iso.vm.RunProgram(prog)
	if err != nil {
		return nil, fmt.Errorf("isolate %s: run %s: %w", iso.ID, name, err)
	}
	return v, nil
}

// VM exposes the underlying goja runtime for callers that need to set
// additional globals or export values; kept separate from the
// constructor so installGlobals runs first.
func (iso *Isolate) VM() *goja.Runtime { return iso.vm }

// MakeSnapshot implements snapshot.AppSnapshotter: it writes this
// isolate's companion state through the registered type serializer,
// exercising the same type-name + instance-slot path §4.H's
// internal-field serializer uses for embedder-wrapped objects.
func (iso *Isolate) MakeSnapshot(w *buffer.Writer) error {
	iso.mu.Lock()
	defer iso.mu.Unlock()

	buffer.WriteString(w, nativeFieldTypeName)
	ser, ok := snapshot.Global().Serializer(nativeFieldTypeName)
	if !ok {
		return embederr.UnknownTypeTag(nativeFieldTypeName)
	}
	return ser(w, iso.companion)
}

// LoadSnapshot implements snapshot.AppLoader: the inverse of
// MakeSnapshot, restoring the resolved-specifier warm list.
func (iso *Isolate) LoadSnapshot(r *buffer.Reader) error {
	typeName, err := buffer.ReadString(r)
	if err != nil {
		return err
	}
	deser, ok := snapshot.Global().Deserializer(typeName)
	if !ok {
		return embederr.UnknownTypeTag(typeName)
	}
	obj, err := deser(r)
	if err != nil {
		return err
	}
	cs, ok := obj.(*companionState)
	if !ok {
		return embederr.Serialization("deserialized isolate companion state has an unexpected type")
	}

	iso.mu.Lock()
	iso.companion = cs
	iso.mu.Unlock()
	return nil
}

// Helper adapts a map of live isolates to platform.IsolateHelper,
// the seam the platform adapter uses to look up a foreground runner
// by isolate ID without owning the isolate itself.
type Helper struct {
	mu       sync.RWMutex
	isolates map[string]*Isolate
}

// NewHelper creates an empty isolate registry.
func NewHelper() *Helper {
	return &Helper{isolates: make(map[string]*Isolate)}
}

// Register adds iso under its ID, replacing any prior isolate
// registered under the same ID.
func (h *Helper) Register(iso *Isolate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.isolates[iso.ID] = iso
}

// Unregister removes the isolate with the given ID, if present.
func (h *Helper) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.isolates, id)
}

// ForegroundRunner implements platform.IsolateHelper.
func (h *Helper) ForegroundRunner(isolateID string, _ hostthread.Priority) *foreground.Runner {
	h.mu.RLock()
	defer h.mu.RUnlock()
	iso, ok := h.isolates[isolateID]
	if !ok {
		return nil
	}
	return iso.Runner()
}

var _ platform.IsolateHelper = (*Helper)(nil)
