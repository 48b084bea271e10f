// Package snapshot implements the host snapshot create/load protocol:
// a header identifying the host and runtime version, followed by an
// app-supplied opaque body written and read through the shared byte
// buffer codec.
package snapshot

import (
	"os"
	"sync"

	"github.com/R3E-Network/embedcore/infrastructure/embederr"
	"github.com/R3E-Network/embedcore/internal/buffer"
)

// HostMagic identifies this runtime's snapshot producer, distinct
// from any engine-native blob (which always leads with a non-zero
// engine_magic; the host always writes zero there).
const HostMagic uint32 = 0x45435253 // "ECRS"

// RuntimeVersion is the host runtime version stamped into every
// snapshot header.
type RuntimeVersion struct {
	Major, Minor, Patch, Build uint32
}

// Header is the fixed leading portion of every snapshot file.
type Header struct {
	HostMagic      uint32
	Version        RuntimeVersion
	PlatformArch   string
	AppClassTag    string
}

// AppSnapshotter is implemented by the application object passed to
// Create; it writes its recoverable state as the snapshot's opaque body.
type AppSnapshotter interface {
	MakeSnapshot(w *buffer.Writer) error
}

// AppLoader is implemented by the application object passed to Load;
// it reconstitutes state from the opaque body written by MakeSnapshot.
type AppLoader interface {
	LoadSnapshot(r *buffer.Reader) error
}

// Create writes header plus the app's opaque body to path. On any
// failure — the app's MakeSnapshot, or the file write — no file is
// produced (the target is written only after the whole buffer is
// composed successfully in memory).
func Create(path string, platformArch, appClassTag string, version RuntimeVersion, app AppSnapshotter) (int, error) {
	w := buffer.NewWriter(buffer.LittleEndian)

	buffer.WriteUint32(w, 0) // engine_magic: always zero for host blobs
	buffer.WriteUint32(w, HostMagic)
	buffer.WriteUint32(w, version.Major)
	buffer.WriteUint32(w, version.Minor)
	buffer.WriteUint32(w, version.Patch)
	buffer.WriteUint32(w, version.Build)
	buffer.WriteString(w, platformArch)
	buffer.WriteString(w, appClassTag)

	if err := app.MakeSnapshot(w); err != nil {
		return 0, embederr.Serialization("application snapshot body failed").WithDetails("cause", err.Error())
	}
	if w.HasErrored() {
		return 0, embederr.Serialization("snapshot buffer entered an error state while composing the body")
	}

	data := w.Bytes()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, embederr.FileIO("write", path, err)
	}
	return len(data), nil
}

// Load reads path, validates the header, and hands the remaining
// opaque body to app via LoadSnapshot.
func Load(path string, app AppLoader) (Header, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Header{}, 0, embederr.FileIO("read", path, err)
	}

	r := buffer.NewReader(data, buffer.LittleEndian)

	engineMagic, _ := buffer.ReadUint32(r)
	if r.HasErrored() {
		return Header{}, 0, embederr.ShortRead(4, len(data))
	}
	if engineMagic != 0 {
		return Header{}, 0, embederr.Serialization("snapshot is an engine-native blob, not a host snapshot").WithDetails("engine_magic", engineMagic)
	}

	hdr := Header{}
	hdr.HostMagic, _ = buffer.ReadUint32(r)
	hdr.Version.Major, _ = buffer.ReadUint32(r)
	hdr.Version.Minor, _ = buffer.ReadUint32(r)
	hdr.Version.Patch, _ = buffer.ReadUint32(r)
	hdr.Version.Build, _ = buffer.ReadUint32(r)
	hdr.PlatformArch, _ = buffer.ReadString(r)
	hdr.AppClassTag, _ = buffer.ReadString(r)

	if r.HasErrored() {
		return Header{}, 0, embederr.Serialization("snapshot header is truncated or malformed")
	}

	if err := app.LoadSnapshot(r); err != nil {
		return Header{}, 0, embederr.Serialization("application snapshot body failed to load").WithDetails("cause", err.Error())
	}
	if r.HasErrored() {
		return Header{}, 0, embederr.Serialization("snapshot buffer entered an error state while loading the body")
	}

	return hdr, len(data), nil
}

// TypeSerializer writes an object's recoverable state.
type TypeSerializer func(w *buffer.Writer, obj any) error

// TypeDeserializer reconstitutes an object's recoverable state,
// returning the new native object value to install.
type TypeDeserializer func(r *buffer.Reader) (any, error)

// typeEntry is a native type's registered serialization triple.
type typeEntry struct {
	Name         string
	Serialize    TypeSerializer
	Deserialize  TypeDeserializer
}

// TypeRegistry is the process-wide registration table for embedder
// wrapped types, mirroring the source's static { type_name,
// serializer, deserializer } registration protocol. An unregistered
// type name fails deserialization for the affected object only.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[string]typeEntry
}

var globalRegistry = &TypeRegistry{types: make(map[string]typeEntry)}

// Global returns the process-wide type registry used by RegisterType.
func Global() *TypeRegistry { return globalRegistry }

// RegisterType registers a native type's serialization triple on the
// global registry. Intended to be called from a package's init().
func RegisterType(name string, ser TypeSerializer, deser TypeDeserializer) {
	globalRegistry.Register(name, ser, deser)
}

// Register adds name's serialization triple to this registry.
// Re-registering the same name overwrites the prior entry.
func (tr *TypeRegistry) Register(name string, ser TypeSerializer, deser TypeDeserializer) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.types[name] = typeEntry{Name: name, Serialize: ser, Deserialize: deser}
}

// Serializer returns the registered serializer for name.
func (tr *TypeRegistry) Serializer(name string) (TypeSerializer, bool) {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	e, ok := tr.types[name]
	if !ok {
		return nil, false
	}
	return e.Serialize, true
}

// Deserializer returns the registered deserializer for name.
func (tr *TypeRegistry) Deserializer(name string) (TypeDeserializer, bool) {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	e, ok := tr.types[name]
	if !ok {
		return nil, false
	}
	return e.Deserialize, true
}

// SerializeInternalField is the internal-field serializer: the
// type-info slot writes the type name; the instance slot delegates to
// the type's registered serializer; any other slot writes nothing.
func (tr *TypeRegistry) SerializeInternalField(w *buffer.Writer, slot int, typeName string, obj any) error {
	const (
		slotTypeInfo = 0
		slotInstance = 1
	)
	switch slot {
	case slotTypeInfo:
		buffer.WriteString(w, typeName)
		return nil
	case slotInstance:
		ser, ok := tr.Serializer(typeName)
		if !ok {
			return embederr.UnknownTypeTag(typeName)
		}
		return ser(w, obj)
	default:
		return nil
	}
}

// DeserializeInternalField is the companion load-side deserializer.
// For the type-info slot it returns the type name read from the
// buffer; for the instance slot it looks up and invokes the type's
// registered deserializer by the typeName learned from the prior slot.
func (tr *TypeRegistry) DeserializeInternalField(r *buffer.Reader, slot int, typeName string) (any, error) {
	const (
		slotTypeInfo = 0
		slotInstance = 1
	)
	switch slot {
	case slotTypeInfo:
		name, err := buffer.ReadString(r)
		if err != nil {
			return nil, err
		}
		return name, nil
	case slotInstance:
		deser, ok := tr.Deserializer(typeName)
		if !ok {
			return nil, embederr.UnknownTypeTag(typeName)
		}
		return deser(r)
	default:
		return nil, nil
	}
}
