package io

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/squaremap/pkg/errors"
	"github.com/matzehuels/squaremap/pkg/hierarchy"
)

func sampleTree(t *testing.T, aggregate bool) *hierarchy.Tree {
	t.Helper()
	tr := hierarchy.New()
	root, _ := tr.AddRoot("/srv")
	logs, _ := tr.AddDir(root, "logs")
	_, _ = tr.AddFile(logs, "app.log", 4096)
	_, _ = tr.AddFile(logs, "err.log", 1024)
	_, _ = tr.AddDir(root, "empty")
	_, _ = tr.AddFile(root, "index.html", 512)
	if aggregate {
		hierarchy.Aggregate(tr)
	}
	return tr
}

func TestRoundTrip(t *testing.T) {
	for _, aggregated := range []bool{false, true} {
		name := "raw"
		if aggregated {
			name = "aggregated"
		}
		t.Run(name, func(t *testing.T) {
			orig := sampleTree(t, aggregated)

			var buf bytes.Buffer
			if err := WriteJSON(orig, &buf); err != nil {
				t.Fatalf("WriteJSON() error = %v", err)
			}
			got, err := ReadJSON(&buf)
			if err != nil {
				t.Fatalf("ReadJSON() error = %v", err)
			}

			if got.Len() != orig.Len() {
				t.Fatalf("Len() = %d, want %d", got.Len(), orig.Len())
			}
			if got.Aggregated() != aggregated {
				t.Errorf("Aggregated() = %v, want %v", got.Aggregated(), aggregated)
			}
			for i := 0; i < orig.Len(); i++ {
				id := hierarchy.NodeID(i)
				a, _ := orig.Node(id)
				b, _ := got.Node(id)
				if a.Name != b.Name || a.Parent != b.Parent || a.Leaf != b.Leaf || a.Size != b.Size {
					t.Errorf("node %d = %+v, want %+v", i, b, a)
				}
			}
		})
	}
}

func TestMarshalTreeDeterministic(t *testing.T) {
	a, err := MarshalTree(sampleTree(t, true))
	if err != nil {
		t.Fatal(err)
	}
	b, _ := MarshalTree(sampleTree(t, true))
	if !bytes.Equal(a, b) {
		t.Error("MarshalTree is not deterministic")
	}
	tr, err := UnmarshalTree(a)
	if err != nil {
		t.Fatalf("UnmarshalTree() error = %v", err)
	}
	if tr.Size(tr.Root()) != 5632 {
		t.Errorf("root size = %g, want 5632", tr.Size(tr.Root()))
	}
}

func TestReadJSONIgnoresDirectorySizes(t *testing.T) {
	in := `{"root":"r","aggregated":true,"nodes":[
		{"name":"r","parent":-1,"size":999},
		{"name":"f","parent":0,"leaf":true,"size":3}
	]}`
	tr, err := ReadJSON(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if tr.Size(tr.Root()) != 3 {
		t.Errorf("root size = %g, want 3", tr.Size(tr.Root()))
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
	}{
		{"malformed", `{"nodes":[`, errors.ErrCodeInvalidFormat},
		{"no nodes", `{"nodes":[]}`, errors.ErrCodeInvalidFormat},
		{"second root", `{"nodes":[{"name":"a","parent":-1},{"name":"b","parent":-1}]}`, errors.ErrCodeInvalidStructure},
		{"forward parent", `{"nodes":[{"name":"a","parent":-1},{"name":"b","parent":2},{"name":"c","parent":0}]}`, errors.ErrCodeInvalidStructure},
		{"self parent", `{"nodes":[{"name":"a","parent":-1},{"name":"b","parent":1}]}`, errors.ErrCodeInvalidStructure},
		{"leaf parent", `{"nodes":[{"name":"a","parent":-1},{"name":"f","parent":0,"leaf":true},{"name":"g","parent":1}]}`, errors.ErrCodeInvalidStructure},
		{"negative size", `{"nodes":[{"name":"a","parent":-1},{"name":"f","parent":0,"leaf":true,"size":-4}]}`, errors.ErrCodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.in))
			if !errors.Is(err, tt.code) {
				t.Errorf("ReadJSON() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestImportExportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	if err := ExportJSON(sampleTree(t, true), path); err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	tr, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}
	if tr.Len() != 6 {
		t.Errorf("Len() = %d, want 6", tr.Len())
	}

	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ImportJSON(missing) error = %v", err)
	}
}
