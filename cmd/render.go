package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/achilleasa/spheretracer/renderer"
	"github.com/achilleasa/spheretracer/tracer"
	"github.com/achilleasa/spheretracer/tracer/cpu"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render a still frame, progressively accumulating the requested number of frames.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	opts, err := renderOptions(ctx)
	if err != nil {
		return err
	}

	pipeline := cpu.DefaultPipeline(cpu.Off, "", opts.Exposure, opts.Gamma)
	return render(ctx, opts, pipeline)
}

// Render a frame and dump the requested debug buffers.
func RenderDebug(ctx *cli.Context) error {
	setupLogging(ctx)

	opts, err := renderOptions(ctx)
	if err != nil {
		return err
	}

	// Each tracer dumps its own debug images; use a single tracer unless
	// explicitly told otherwise so every dump covers the whole frame
	if ctx.Int("tracers") == 0 {
		opts.NumTracers = 1
	}

	var debugFlags cpu.DebugFlag
	if ctx.Bool("depth") {
		debugFlags |= cpu.PrimaryRayIntersectionDepth
	}
	if ctx.Bool("normals") {
		debugFlags |= cpu.PrimaryRayIntersectionNormals
	}
	if ctx.Bool("accumulator") {
		debugFlags |= cpu.Accumulator
	}
	if ctx.Bool("frame-buffer") {
		debugFlags |= cpu.FrameBuffer
	}
	if debugFlags == cpu.Off {
		logger.Warning("no debug outputs selected")
	}

	debugDir := ctx.String("debug-dir")
	if err = os.MkdirAll(debugDir, 0755); err != nil {
		return err
	}

	pipeline := cpu.DefaultPipeline(debugFlags, debugDir, opts.Exposure, opts.Gamma)
	return render(ctx, opts, pipeline)
}

func render(ctx *cli.Context, opts renderer.Options, pipeline *cpu.Pipeline) error {
	sc, err := loadScene(ctx)
	if err != nil {
		return err
	}

	var scheduler tracer.BlockScheduler
	switch ctx.String("scheduler") {
	case "naive":
		scheduler = tracer.NaiveScheduler()
	case "perfect", "":
		scheduler = tracer.PerfectScheduler()
	default:
		return fmt.Errorf("unknown block scheduler %q", ctx.String("scheduler"))
	}

	r, err := renderer.NewDefault(sc, scheduler, pipeline, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	renderCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	numFrames := ctx.Int("frames")
	logger.Noticef("rendering %d frame(s) at %dx%d with %d spp", numFrames, opts.FrameW, opts.FrameH, opts.SamplesPerPixel)
	for frame := 0; frame < numFrames; frame++ {
		if _, err = r.Render(renderCtx); err != nil {
			return err
		}
		logger.Infof("frame %d/%d done in %s", frame+1, numFrames, r.Stats().RenderTime)
	}

	if err = r.SaveFrameBuffer(ctx.String("out")); err != nil {
		return err
	}

	// Display stats
	displayFrameStats(r.Stats())
	return nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tracer", "Primary", "Block height", "% of frame", "Render time"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%t", stat.IsPrimary),
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			stat.RenderTime.String(),
		})
	}
	table.SetFooter([]string{"", "", fmt.Sprintf("FRAME %d", stats.FrameCount), "TOTAL", stats.RenderTime.String()})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
