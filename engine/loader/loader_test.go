package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// minimalGLTF is the smallest document the importer accepts: one scene with a
// single unadorned node.
const minimalGLTF = `{
	"asset": {"version": "2.0"},
	"scenes": [{"nodes": [0]}],
	"nodes": [{"name": "root"}]
}`

func writeAsset(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCachesByPath(t *testing.T) {
	path := writeAsset(t, "scene.gltf", minimalGLTF)

	l := NewLoader(BackendTypeGLTF)
	first, err := l.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	second, err := l.Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if first != second {
		t.Error("expected the cached model on the second load")
	}
	if got := l.Get(path); got != first {
		t.Error("Get did not return the cached model")
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)
	if _, err := l.Load("model.obj"); err == nil {
		t.Fatal("expected an error for an unsupported extension")
	}
}

func TestLoadReaderCachesByName(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	m, err := l.LoadReader("embedded", strings.NewReader(minimalGLTF), false)
	if err != nil {
		t.Fatalf("LoadReader failed: %v", err)
	}
	if got := l.Get("embedded"); got != m {
		t.Error("LoadReader result not cached under its name")
	}
}

func TestLoadAllFailureIsolation(t *testing.T) {
	good := writeAsset(t, "good.gltf", minimalGLTF)
	bad := writeAsset(t, "bad.glb", "not a glb file at all")

	l := NewLoader(BackendTypeGLTF, WithLoadWorkers(2))
	results, err := l.LoadAll([]string{good, bad})

	if err == nil {
		t.Fatal("expected the joined error to report the bad asset")
	}
	if _, ok := results[good]; !ok {
		t.Error("good asset missing from results; one bad asset sank the batch")
	}
	if _, ok := results[bad]; ok {
		t.Error("bad asset present in results")
	}
}

func TestLoadAllEmpty(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)
	results, err := l.LoadAll(nil)
	if err != nil {
		t.Fatalf("LoadAll(nil) failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty results, got %d", len(results))
	}
}

func TestLoadCyclicGraphIsFormatError(t *testing.T) {
	cyclic := `{
		"asset": {"version": "2.0"},
		"scenes": [{"nodes": [0]}],
		"nodes": [{"children": [1]}, {"children": [0]}]
	}`

	l := NewLoader(BackendTypeGLTF)
	_, err := l.LoadReader("cyclic", strings.NewReader(cyclic), false)
	if err == nil {
		t.Fatal("expected cyclic node graph to fail")
	}

	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Errorf("expected a *FormatError, got %T: %v", err, err)
	}
}

func TestLoadNamesModelsByPathNotSceneName(t *testing.T) {
	// Blender exports name every default scene "Scene"; two such assets must
	// not collide under one model name.
	doc := `{
		"asset": {"version": "2.0"},
		"scene": 0,
		"scenes": [{"name": "Scene", "nodes": [0]}],
		"nodes": [{"name": "root"}]
	}`

	a := writeAsset(t, "a.gltf", doc)
	b := writeAsset(t, "b.gltf", doc)

	l := NewLoader(BackendTypeGLTF)
	ma, err := l.Load(a)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	mb, err := l.Load(b)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if ma.Name() != a || mb.Name() != b {
		t.Errorf("model names should be the load paths: got %q and %q", ma.Name(), mb.Name())
	}
	if ma.Name() == mb.Name() {
		t.Error("distinct assets share one model name")
	}
}

func TestLoadReaderNamesModelByCacheKey(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)
	m, err := l.LoadReader("streamed", strings.NewReader(minimalGLTF), false)
	if err != nil {
		t.Fatalf("LoadReader failed: %v", err)
	}
	if m.Name() != "streamed" {
		t.Errorf("model name: got %q, want the cache key", m.Name())
	}
}

func TestLoadMissingFileIsResourceError(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)
	_, err := l.Load(filepath.Join(t.TempDir(), "absent.gltf"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}

	var re *ResourceError
	if !errors.As(err, &re) {
		t.Errorf("expected a *ResourceError, got %T: %v", err, err)
	}
}
