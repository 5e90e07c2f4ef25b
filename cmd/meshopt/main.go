// meshopt is a CLI utility that runs the mesh optimizations over
// procedural meshes and reports their effect.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/akmonengine/meshopt"
	"github.com/akmonengine/meshopt/geom"
	"github.com/akmonengine/meshopt/internal/config"
	"github.com/akmonengine/meshopt/internal/logger"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "stats":
		err = execute("stats", args, cmdStats[uint16], cmdStats[uint32])
	case "optimize", "opt":
		err = execute("optimize", args, cmdOptimize[uint16], cmdOptimize[uint32])
	case "meshlets":
		err = execute("meshlets", args, cmdMeshlets[uint16], cmdMeshlets[uint32])
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshopt - triangle mesh optimization utility

Usage:
  meshopt <command> [options]

Commands:
  stats                 Show vertex cache statistics of a mesh
  optimize              Weld, reorder and compact a mesh
  meshlets              Optimize a mesh and split it into meshlets
  config [path]         Write the effective config as YAML

Options:
  -config <file>        Config file (default ./meshopt.yaml)
  -shape <name>         cube, sharedcube, sphere, cylinder or torus
  -tess <n>             Tessellation
  -index16              Use 16-bit indices
  -cache <n>            Simulated vertex cache size, 0 for strip order
  -no-weld              Keep coincident vertices apart
  -max-verts <n>        Meshlet vertex cap
  -max-prims <n>        Meshlet primitive cap
  -split                Keep normal axes in separate meshlets
  -workers <n>          Cull data workers
  -debug                Enable debug logging

Examples:
  meshopt stats -shape torus -tess 32
  meshopt optimize -shape sphere -cache 0
  meshopt meshlets -shape cube -split -max-prims 2`)
}

type runner[T meshopt.Index] func(cfg *config.Config, b buffers[T]) error

// execute loads the config for a mesh command, builds the mesh and
// runs the variant matching the configured index width.
func execute(name string, args []string, run16 runner[uint16], run32 runner[uint32]) error {
	cfg, err := setup(name, args)
	if err != nil {
		return err
	}
	defer logger.Sync()

	mesh, err := buildMesh(cfg.Mesh)
	if err != nil {
		return err
	}
	logger.Info("built mesh",
		zap.String("shape", cfg.Mesh.Shape),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("faces", mesh.FaceCount()),
		zap.Bool("index16", cfg.Mesh.Index16))

	start := time.Now()
	defer func() {
		logger.Sugar.Debugf("%s finished in %v", name, time.Since(start))
	}()

	if cfg.Mesh.Index16 {
		ib, err := mesh.Indices16()
		if err != nil {
			return err
		}
		return run16(cfg, buffers[uint16]{Positions: mesh.Positions, Indices: ib})
	}
	return run32(cfg, buffers[uint32]{Positions: mesh.Positions, Indices: mesh.Indices})
}

func setup(name string, args []string) (*config.Config, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

func cmdStats[T meshopt.Index](cfg *config.Config, b buffers[T]) error {
	s, err := statsOf(b, simulatedCache(cfg.Optimize))
	if err != nil {
		return err
	}
	fmt.Printf("Shape:    %s\n", cfg.Mesh.Shape)
	printStats(s, simulatedCache(cfg.Optimize))
	return nil
}

func cmdOptimize[T meshopt.Index](cfg *config.Config, b buffers[T]) error {
	cache := simulatedCache(cfg.Optimize)
	before, err := statsOf(b, cache)
	if err != nil {
		return err
	}

	opt, err := optimize(b, cfg.Optimize)
	if err != nil {
		return err
	}
	after, err := statsOf(opt, cache)
	if err != nil {
		return err
	}
	if after.ACMR > before.ACMR {
		logger.Warn("face order raised the cache miss rate",
			zap.Float32("acmr_before", before.ACMR),
			zap.Float32("acmr_after", after.ACMR))
	}
	logger.Info("optimized mesh",
		zap.Int("vertices", after.Vertices),
		zap.Float32("acmr_before", before.ACMR),
		zap.Float32("acmr_after", after.ACMR))

	fmt.Println("Before:")
	printStats(before, cache)
	fmt.Println()
	fmt.Println("After:")
	printStats(after, cache)
	return nil
}

func cmdMeshlets[T meshopt.Index](cfg *config.Config, b buffers[T]) error {
	opt, err := optimize(b, cfg.Optimize)
	if err != nil {
		return err
	}
	c, err := buildMeshlets(opt, cfg.Optimize.Epsilon, cfg.Meshlet)
	if err != nil {
		return err
	}
	logger.Info("built meshlets", zap.Int("meshlets", len(c.Meshlets)), zap.Int("subsets", len(c.Subsets)))

	var verts, prims uint32
	degenerate := 0
	for k, m := range c.Meshlets {
		verts += m.VertCount
		prims += m.PrimCount
		if c.CullData[k].NormalCone.IsDegenerate() {
			degenerate++
		}
	}
	n := float64(len(c.Meshlets))

	fmt.Printf("Meshlets:   %d in %d subsets\n", len(c.Meshlets), len(c.Subsets))
	fmt.Printf("Limits:     %d vertices, %d primitives\n", cfg.Meshlet.MaxVerts, cfg.Meshlet.MaxPrims)
	fmt.Printf("Average:    %.1f vertices, %.1f primitives\n", float64(verts)/n, float64(prims)/n)
	fmt.Printf("No cone:    %d\n", degenerate)

	pairs := len(c.Meshlets) * (len(c.Meshlets) - 1) / 2
	fmt.Printf("Overlaps:   %d of %d pairs\n", overlappingPairs(opt.Positions, c.Result), pairs)

	bounds := geom.BoundsOf(opt.Positions)
	views := axisViews(bounds.Center(), bounds.Size().Len()*2)
	fmt.Println("Backfacing from:")
	for i, culled := range backfacingFrom(c.CullData, bounds, views) {
		view := views[i]
		if culled < 0 {
			fmt.Printf("  (%6.2f, %6.2f, %6.2f)  inside the mesh bounds\n", view.X(), view.Y(), view.Z())
			continue
		}
		fmt.Printf("  (%6.2f, %6.2f, %6.2f)  %d of %d\n", view.X(), view.Y(), view.Z(), culled, len(c.Meshlets))
	}
	return nil
}

func cmdConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return cfg.Save()
	}
	return cfg.SaveTo(fs.Arg(0))
}

func printStats(s meshStats, cache int) {
	fmt.Printf("Vertices: %d\n", s.Vertices)
	fmt.Printf("Faces:    %d\n", s.Faces)
	if s.Bounds.IsEmpty() {
		fmt.Println("Bounds:   empty")
	} else {
		fmt.Printf("Bounds:   %v - %v\n", s.Bounds.Min, s.Bounds.Max)
	}
	fmt.Printf("ACMR:     %.3f (cache %d)\n", s.ACMR, cache)
	fmt.Printf("ATVR:     %.3f\n", s.ATVR)
	if s.LooseNormals > 0 {
		fmt.Printf("No normal: %d vertices\n", s.LooseNormals)
	}
}
