package asset

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalResource(t *testing.T) {
	sceneFile := filepath.Join(t.TempDir(), "scene.JSON")
	if err := os.WriteFile(sceneFile, []byte(`{"spheres": []}`), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := NewResource(sceneFile)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	if res.IsRemote() {
		t.Fatal("expected a local resource")
	}
	if res.Ext() != ".json" {
		t.Fatalf("expected extension .json; got %s", res.Ext())
	}
	data, err := io.ReadAll(res)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"spheres": []}` {
		t.Fatalf("unexpected resource contents %q", data)
	}

	if _, err = NewResource(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist; got %v", err)
	}
}

func TestHttpResource(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "scene.zip"), []byte("zipdata"), 0644); err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.FileServer(http.Dir(dir)))
	defer server.Close()

	res, err := NewResource(server.URL + "/scene.zip?rev=2")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	if !res.IsRemote() {
		t.Fatal("expected a remote resource")
	}
	if res.Ext() != ".zip" {
		t.Fatalf("expected extension .zip; got %s", res.Ext())
	}
	data, err := io.ReadAll(res)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "zipdata" {
		t.Fatalf("unexpected resource contents %q", data)
	}

	_, err = NewResource(server.URL + "/file-not-found.json")
	if !errors.Is(err, ErrFetchFailed) || !strings.Contains(err.Error(), "status 404") {
		t.Fatalf("expected a 404 fetch error; got %v", err)
	}
}

func TestHttpResourceCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewResourceContext(ctx, server.URL+"/scene.json")
	if !errors.Is(err, ErrFetchFailed) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected a cancelled fetch; got %v", err)
	}
}

func TestUnsupportedResourceScheme(t *testing.T) {
	_, err := NewResource("gopher://digging.go/scene.json")
	if !errors.Is(err, ErrUnsupportedScheme) {
		t.Fatalf("expected ErrUnsupportedScheme; got %v", err)
	}
}

func TestResourceFromStream(t *testing.T) {
	res := NewResourceFromStream("embedded.zip", strings.NewReader("payload"))
	defer res.Close()

	if res.IsRemote() {
		t.Fatal("expected stream resource to be local")
	}
	if res.Path() != "embedded.zip" || res.Ext() != ".zip" {
		t.Fatalf("unexpected resource path %s", res.Path())
	}
}
