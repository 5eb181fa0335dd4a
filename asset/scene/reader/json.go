package reader

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/achilleasa/spheretracer/asset"
	"github.com/achilleasa/spheretracer/log"
	"github.com/achilleasa/spheretracer/scene"
)

type jsonSceneReader struct {
	logger log.Logger
}

// Create a new json scene reader
func newJSONSceneReader() *jsonSceneReader {
	return &jsonSceneReader{
		logger: log.New("json reader"),
	}
}

// Read scene definition from a json document.
func (p *jsonSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	p.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	sc := scene.NewScene()
	decoder := json.NewDecoder(sceneRes)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(sc); err != nil {
		return nil, fmt.Errorf("jsonSceneReader: failed to parse %s: %w", sceneRes.Path(), err)
	}

	p.logger.Noticef("loaded scene with %d spheres in %s", len(sc.Spheres), time.Since(start))
	return sc, nil
}
