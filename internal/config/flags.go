package config

import "flag"

// Flags holds the command-line overrides registered on a flag set.
// Zero values leave the loaded config untouched.
type Flags struct {
	config       *string
	debug        *bool
	shape        *string
	tessellation *int
	index16      *bool
	noWeld       *bool
	vertexCache  *int
	maxVerts     *int
	maxPrims     *int
	workers      *int
	split        *bool
}

// RegisterFlags defines the config flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		config:       fs.String("config", "", "Path to config file"),
		debug:        fs.Bool("debug", false, "Enable debug logging"),
		shape:        fs.String("shape", "", "Procedural mesh: cube, sharedcube, sphere, cylinder, torus"),
		tessellation: fs.Int("tess", 0, "Mesh tessellation"),
		index16:      fs.Bool("index16", false, "Use 16-bit indices"),
		noWeld:       fs.Bool("no-weld", false, "Skip welding coincident vertices"),
		vertexCache:  fs.Int("cache", -1, "Simulated vertex cache size (0 = strip order)"),
		maxVerts:     fs.Int("max-verts", 0, "Maximum vertices per meshlet"),
		maxPrims:     fs.Int("max-prims", 0, "Maximum primitives per meshlet"),
		workers:      fs.Int("workers", 0, "Cull data workers (0 = config value)"),
		split:        fs.Bool("split", false, "Keep faces of different normal axes in separate meshlets"),
	}
}

// ConfigPath returns the explicit config path if provided via --config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.config
}

// apply applies the flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if *f.debug {
		cfg.Logging.Level = "debug"
	}
	if *f.shape != "" {
		cfg.Mesh.Shape = *f.shape
	}
	if *f.tessellation > 0 {
		cfg.Mesh.Tessellation = *f.tessellation
	}
	if *f.index16 {
		cfg.Mesh.Index16 = true
	}
	if *f.noWeld {
		cfg.Optimize.Weld = false
	}
	if *f.vertexCache >= 0 {
		cfg.Optimize.VertexCache = *f.vertexCache
	}
	if *f.maxVerts > 0 {
		cfg.Meshlet.MaxVerts = *f.maxVerts
	}
	if *f.maxPrims > 0 {
		cfg.Meshlet.MaxPrims = *f.maxPrims
	}
	if *f.workers > 0 {
		cfg.Meshlet.Workers = *f.workers
	}
	if *f.split {
		cfg.Meshlet.Split = true
	}
}
