package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/achilleasa/spheretracer/tracer/cpu"
	"github.com/achilleasa/spheretracer/tracer/gpu"
	"github.com/achilleasa/spheretracer/types"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Compile the compute kernel to SPIR-V and display its binding layout.
func CompileShader(ctx *cli.Context) error {
	setupLogging(ctx)

	spirv, err := gpu.CompileKernel()
	if err != nil {
		return err
	}
	words, err := gpu.SPIRVWords(spirv)
	if err != nil {
		return err
	}

	out := ctx.String("out")
	if err = os.WriteFile(out, spirv, 0644); err != nil {
		return err
	}
	logger.Noticef("wrote %d SPIR-V words for entrypoint %q to %s", len(words), gpu.EntryPoint, out)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Binding", "Buffer", "Type", "Usage flags"})
	for _, entry := range gpu.BindGroupLayout() {
		table.Append([]string{
			fmt.Sprintf("%d", entry.Binding),
			gpu.BindingLabel(entry.Binding),
			fmt.Sprintf("%v", entry.Buffer.Type),
			fmt.Sprintf("%v", gpu.BufferUsage(entry.Binding)),
		})
	}
	if w, h := ctx.Int("width"), ctx.Int("height"); w > 0 && h > 0 {
		table.SetFooter([]string{"", "", "ACCUM BYTES", fmt.Sprintf("%d", gpu.AccumulationBufferSize(uint32(w), uint32(h)))})
	}
	table.Render()
	logger.Noticef("kernel bind group layout\n%s", buf.String())

	return nil
}

// Convert a raw RGBA16F accumulation buffer readback to a tonemapped png.
func DecodeAccumulation(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() == 0 {
		return errors.New("missing accumulation buffer argument")
	}

	width, height := ctx.Int("width"), ctx.Int("height")
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid frame dims %dx%d", width, height)
	}

	data, err := os.ReadFile(ctx.Args().First())
	if err != nil {
		return err
	}

	img, err := decodeAccumulation(data, uint32(width), uint32(height), float32(ctx.Float64("exposure")), float32(ctx.Float64("gamma")))
	if err != nil {
		return err
	}

	f, err := os.Create(ctx.String("out"))
	if err != nil {
		return err
	}
	defer f.Close()

	logger.Noticef("writing decoded %dx%d frame to %s", width, height, ctx.String("out"))
	return png.Encode(f, img)
}

func decodeAccumulation(data []byte, width, height uint32, exposure, gamma float32) (*image.RGBA, error) {
	texels, err := gpu.DecodeRGBA16F(data, width, height)
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	for y := 0; y < int(height); y++ {
		for x := 0; x < int(width); x++ {
			offset := 4 * (y*int(width) + x)
			c := types.XYZ(texels[offset], texels[offset+1], texels[offset+2])
			img.SetRGBA(x, y, cpu.Tonemap(c, exposure, gamma))
		}
	}
	return img, nil
}
