package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/R3E-Network/embedcore/internal/buffer"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	greeting string
	count    uint32
}

func (a *testApp) MakeSnapshot(w *buffer.Writer) error {
	buffer.WriteString(w, a.greeting)
	buffer.WriteUint32(w, a.count)
	return nil
}

func (a *testApp) LoadSnapshot(r *buffer.Reader) error {
	greeting, err := buffer.ReadString(r)
	if err != nil {
		return err
	}
	count, err := buffer.ReadUint32(r)
	if err != nil {
		return err
	}
	a.greeting = greeting
	a.count = count
	return nil
}

func TestCreateThenLoad_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.bin")

	version := RuntimeVersion{Major: 1, Minor: 2, Patch: 3, Build: 4}
	app := &testApp{greeting: "hello world", count: 42}

	n, err := Create(path, "linux-amd64", "demo-app", version, app)
	require.NoError(t, err)
	require.Greater(t, n, 0)

	loaded := &testApp{}
	hdr, readN, err := Load(path, loaded)
	require.NoError(t, err)
	require.Equal(t, n, readN)
	require.Equal(t, HostMagic, hdr.HostMagic)
	require.Equal(t, version, hdr.Version)
	require.Equal(t, "linux-amd64", hdr.PlatformArch)
	require.Equal(t, "demo-app", hdr.AppClassTag)
	require.Equal(t, "hello world", loaded.greeting)
	require.Equal(t, uint32(42), loaded.count)
}

type failingApp struct{}

func (failingApp) MakeSnapshot(w *buffer.Writer) error {
	return errSnapshotBody
}

var errSnapshotBody = &stubErr{"body failed"}

type stubErr struct{ msg string }

func (e *stubErr) Error() string { return e.msg }

func TestCreate_AbortsWithoutWritingFileOnAppFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.bin")

	_, err := Create(path, "linux-amd64", "demo-app", RuntimeVersion{}, failingApp{})
	require.Error(t, err)

	_, statErr := filepath.Glob(path)
	require.NoError(t, statErr)
	require.NoFileExists(t, path)
}

func TestLoad_RejectsEngineNativeBlob(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.bin")

	w := buffer.NewWriter(buffer.LittleEndian)
	buffer.WriteUint32(w, 0xDEADBEEF) // non-zero engine_magic
	require.NoError(t, writeFile(path, w.Bytes()))

	_, _, err := Load(path, &testApp{})
	require.Error(t, err)
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func TestTypeRegistry_RoundTripsSerializerByName(t *testing.T) {
	tr := &TypeRegistry{types: make(map[string]typeEntry)}
	tr.Register("widget", func(w *buffer.Writer, obj any) error {
		buffer.WriteString(w, obj.(string))
		return nil
	}, func(r *buffer.Reader) (any, error) {
		return buffer.ReadString(r)
	})

	w := buffer.NewWriter(buffer.LittleEndian)
	require.NoError(t, tr.SerializeInternalField(w, 0, "widget", nil))
	require.NoError(t, tr.SerializeInternalField(w, 1, "widget", "payload"))

	r := buffer.NewReader(w.Bytes(), buffer.LittleEndian)
	typeName, err := tr.DeserializeInternalField(r, 0, "")
	require.NoError(t, err)
	require.Equal(t, "widget", typeName)

	val, err := tr.DeserializeInternalField(r, 1, typeName.(string))
	require.NoError(t, err)
	require.Equal(t, "payload", val)
}

func TestSerializeInternalField_UnknownTypeErrors(t *testing.T) {
	tr := &TypeRegistry{types: make(map[string]typeEntry)}
	w := buffer.NewWriter(buffer.LittleEndian)
	err := tr.SerializeInternalField(w, 1, "never-registered", nil)
	require.Error(t, err)
}
