package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/spheretracer/cmd"
	"github.com/urfave/cli"
)

// Flags shared by the render subcommands.
func renderFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:   "width",
			Value:  512,
			Usage:  "frame width",
			EnvVar: "SPHERETRACER_WIDTH",
		},
		cli.IntFlag{
			Name:   "height",
			Value:  512,
			Usage:  "frame height",
			EnvVar: "SPHERETRACER_HEIGHT",
		},
		cli.IntFlag{
			Name:   "spp",
			Value:  100,
			Usage:  "samples per pixel",
			EnvVar: "SPHERETRACER_SPP",
		},
		cli.IntFlag{
			Name:   "num-bounces",
			Value:  150,
			Usage:  "max number of bounces per path",
			EnvVar: "SPHERETRACER_NUM_BOUNCES",
		},
		cli.StringFlag{
			Name:   "policy",
			Value:  "ambient",
			Usage:  "scatter policy (ambient, direct)",
			EnvVar: "SPHERETRACER_POLICY",
		},
		cli.StringFlag{
			Name:   "light",
			Value:  "8,0,-10",
			Usage:  "point light position used by the direct policy",
			EnvVar: "SPHERETRACER_LIGHT",
		},
		cli.IntFlag{
			Name:   "tracers",
			Usage:  "number of cpu tracers; 0 uses one per cpu",
			EnvVar: "SPHERETRACER_TRACERS",
		},
		cli.StringFlag{
			Name:   "scheduler",
			Value:  "perfect",
			Usage:  "block scheduler (naive, perfect)",
			EnvVar: "SPHERETRACER_SCHEDULER",
		},
		cli.IntFlag{
			Name:   "frames",
			Value:  1,
			Usage:  "number of frames to accumulate",
			EnvVar: "SPHERETRACER_FRAMES",
		},
		cli.Float64Flag{
			Name:   "exposure",
			Value:  1.0,
			Usage:  "camera exposure for tone-mapping",
			EnvVar: "SPHERETRACER_EXPOSURE",
		},
		cli.Float64Flag{
			Name:   "gamma",
			Value:  2.2,
			Usage:  "gamma for tone-mapping",
			EnvVar: "SPHERETRACER_GAMMA",
		},
		cli.Int64Flag{
			Name:   "seed",
			Usage:  "seed for the per-frame random seed generator",
			EnvVar: "SPHERETRACER_SEED",
		},
		cli.StringFlag{
			Name:  "out, o",
			Value: "frame.png",
			Usage: "image filename for the rendered frame",
		},
	}
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "spheretracer"
	app.Usage = "render sphere scenes using progressive path tracing"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "log level (debug, info, notice, warning, error)",
			EnvVar: "SPHERETRACER_LOG_LEVEL",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "compile json scene descriptions into a binary compressed format",
			Description: `
Parse and validate a json scene description and package its camera and spheres
into a zip archive which can be supplied as an argument to the render command.`,
			ArgsUsage: "scene_file1.json scene_file2.json ...",
			Action:    cmd.CompileScene,
		},
		{
			Name:      "scene",
			Usage:     "display scene information",
			ArgsUsage: "[scene_file]",
			Action:    cmd.ShowSceneInfo,
		},
		{
			Name:   "render",
			Usage:  "render scene",
			Action: nil,
			Subcommands: []cli.Command{
				{
					Name:  "frame",
					Usage: "render single frame",
					Description: `
Render a frame of the supplied scene (or the built-in scene if no scene file is
specified), accumulating the requested number of progressive frames.`,
					ArgsUsage: "[scene_file]",
					Flags:     renderFlags(),
					Action:    cmd.RenderFrame,
				},
				{
					Name:  "debug",
					Usage: "render a frame and dump intermediate buffers",
					Description: `
Render a frame using a single tracer (unless --tracers is specified) and dump
the selected intermediate buffers as png images.`,
					ArgsUsage: "[scene_file]",
					Flags: append(renderFlags(),
						cli.BoolFlag{
							Name:  "depth",
							Usage: "dump primary ray intersection depth",
						},
						cli.BoolFlag{
							Name:  "normals",
							Usage: "dump primary ray intersection normals",
						},
						cli.BoolFlag{
							Name:  "accumulator",
							Usage: "dump the accumulation buffer",
						},
						cli.BoolFlag{
							Name:  "frame-buffer",
							Usage: "dump the tonemapped frame buffer",
						},
						cli.StringFlag{
							Name:  "debug-dir",
							Value: "debug",
							Usage: "folder for debug images",
						},
					),
					Action: cmd.RenderDebug,
				},
			},
		},
		{
			Name:  "shader",
			Usage: "compile the compute kernel to SPIR-V",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Value: "kernel.spv",
					Usage: "filename for the SPIR-V module",
				},
				cli.IntFlag{
					Name:  "width",
					Usage: "frame width used to report accumulation buffer sizes",
				},
				cli.IntFlag{
					Name:  "height",
					Usage: "frame height used to report accumulation buffer sizes",
				},
			},
			Action: cmd.CompileShader,
		},
		{
			Name:      "decode",
			Usage:     "convert a raw RGBA16F accumulation buffer to png",
			ArgsUsage: "accumulation_file",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 512,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 512,
					Usage: "frame height",
				},
				cli.Float64Flag{
					Name:  "exposure",
					Value: 1.0,
					Usage: "camera exposure for tone-mapping",
				},
				cli.Float64Flag{
					Name:  "gamma",
					Value: 2.2,
					Usage: "gamma for tone-mapping",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the decoded frame",
				},
			},
			Action: cmd.DecodeAccumulation,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
