package reader

import (
	"fmt"

	"github.com/achilleasa/spheretracer/asset"
	"github.com/achilleasa/spheretracer/scene"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// Read scene from a local file or an http(s) URL. The reader is selected
// based on the file extension and the loaded scene is validated.
func ReadScene(filename string) (*scene.Scene, error) {
	res, err := asset.NewResource(filename)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return Read(res)
}

// Read scene from a resource using the reader that matches its extension.
func Read(res *asset.Resource) (*scene.Scene, error) {
	var reader Reader
	switch res.Ext() {
	case ".json":
		reader = newJSONSceneReader()
	case ".zip":
		reader = newZipSceneReader()
	default:
		return nil, fmt.Errorf("readScene: unsupported file format %q", res.Ext())
	}

	sc, err := reader.Read(res)
	if err != nil {
		return nil, err
	}
	if err = sc.Validate(); err != nil {
		return nil, fmt.Errorf("readScene: %s: %w", res.Path(), err)
	}
	return sc, nil
}
