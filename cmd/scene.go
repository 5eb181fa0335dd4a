package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/achilleasa/spheretracer/asset/scene/reader"
	"github.com/achilleasa/spheretracer/asset/scene/writer"
	"github.com/achilleasa/spheretracer/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Compile json scene descriptions to the binary zip format.
func CompileScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() == 0 {
		return errors.New("missing scene file argument")
	}

	for idx := 0; idx < ctx.NArg(); idx++ {
		sceneFile := ctx.Args().Get(idx)
		if !strings.EqualFold(filepath.Ext(sceneFile), ".json") {
			logger.Warningf("skipping unsupported file %s", sceneFile)
			continue
		}

		logger.Noticef("parsing and compiling scene: %s", sceneFile)
		sc, err := reader.ReadScene(sceneFile)
		if err != nil {
			return err
		}

		// Display compiled scene info
		logger.Noticef("scene information:\n%s", sceneInfo(sc))

		zipFile := strings.TrimSuffix(sceneFile, filepath.Ext(sceneFile)) + ".zip"
		if err = writer.WriteScene(sc, zipFile); err != nil {
			return err
		}
	}

	return nil
}

// Display scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, err := loadScene(ctx)
	if err != nil {
		return err
	}

	logger.Noticef("scene information:\n%s", sceneInfo(sc))
	return nil
}

func sceneInfo(sc *scene.Scene) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n", sc.Camera)

	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"#", "Center", "Radius", "Albedo", "Material"})
	for idx, sphere := range sc.Spheres {
		material := "diffuse"
		if sphere.Material.IsMirror {
			material = "mirror"
		}
		table.Append([]string{
			fmt.Sprintf("%d", idx),
			fmt.Sprintf("(%.2f, %.2f, %.2f)", sphere.Center[0], sphere.Center[1], sphere.Center[2]),
			fmt.Sprintf("%.2f", sphere.Radius),
			fmt.Sprintf("(%.2f, %.2f, %.2f)", sphere.Material.Albedo[0], sphere.Material.Albedo[1], sphere.Material.Albedo[2]),
			material,
		})
	}
	table.SetFooter([]string{"", "", "", "SPHERES", fmt.Sprintf("%d", len(sc.Spheres))})
	table.Render()

	return buf.String()
}
