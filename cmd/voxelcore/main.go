// Command voxelcore is a headless driver for the voxel world core: it
// streams chunks around a moving viewer, applies a few edits through the
// raycast path, and can persist chunks and export meshes for inspection.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"voxelcore/internal/config"
	"voxelcore/internal/meshing"
	"voxelcore/internal/persistence"
	"voxelcore/internal/physics"
	"voxelcore/internal/profiling"
	"voxelcore/internal/registry"
	"voxelcore/internal/stream"
	"voxelcore/internal/world"
	"voxelcore/pkg/meshexport"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		ticks      = flag.Int("ticks", 60, "streamer ticks to run")
		seed       = flag.Int64("seed", 0, "world seed override (0 keeps config value)")
		dbPath     = flag.String("db", "", "chunk archive path (overrides config)")
		exportDir  = flag.String("export", "", "directory to write .glb chunk meshes into")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *dbPath != "" {
		cfg.Database = *dbPath
	}

	if err := initBlocks(cfg); err != nil {
		log.Fatalf("init block registry: %v", err)
	}

	gen := world.NewTunedNoiseGenerator(cfg.Seed, world.NoiseParams{
		Scale:       cfg.Terrain.Scale,
		BaseHeight:  cfg.Terrain.BaseHeight,
		Amplitude:   cfg.Terrain.Amplitude,
		Octaves:     cfg.Terrain.Octaves,
		Persistence: cfg.Terrain.Persistence,
		Lacunarity:  cfg.Terrain.Lacunarity,
	})
	store := world.NewStore(cfg.ChunkSize, cfg.Seed, gen)

	if cfg.Database != "" {
		archive, err := persistence.Open(cfg.Database, cfg.Seed)
		if err != nil {
			log.Fatalf("open chunk archive: %v", err)
		}
		defer archive.Close()
		store.SetArchive(archive)
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = max(runtime.NumCPU(), 1)
	}
	pool := meshing.NewPool(workers, 4096, store)
	streamer := stream.New(store, pool, cfg.LoadRadius, cfg.UnloadMargin)
	defer streamer.Close()

	viewer := mgl32.Vec3{0.5, float32(cfg.Terrain.BaseHeight) + 8, 0.5}

	start := time.Now()
	for t := 0; t < *ticks; t++ {
		profiling.ResetTick()
		streamer.Tick(viewer)
		viewer = viewer.Add(mgl32.Vec3{1, 0, 0}) // drift east one block per tick
		time.Sleep(10 * time.Millisecond)
	}
	// let outstanding loads settle
	for i := 0; i < 500 && streamer.Pending(); i++ {
		streamer.Tick(viewer)
		time.Sleep(5 * time.Millisecond)
	}

	digBelowViewer(store, viewer)
	streamer.Tick(viewer) // pick up the re-mesh

	counts := streamer.CountByState()
	log.Printf("streamed %d ticks in %v: %d chunks loaded, %d ready, %d loading",
		*ticks, time.Since(start).Round(time.Millisecond),
		store.Len(), counts[stream.StateReady], counts[stream.StateLoading])
	log.Printf("hot sections: %s", profiling.TopN(5))

	if *exportDir != "" {
		if err := exportMeshes(streamer, *exportDir); err != nil {
			log.Fatalf("export meshes: %v", err)
		}
	}
}

// initBlocks installs the configured block set, or the defaults when the
// config does not declare one.
func initBlocks(cfg config.Config) error {
	if len(cfg.Blocks) == 0 {
		registry.InitDefaults()
		return nil
	}
	defs := make([]registry.BlockDefinition, len(cfg.Blocks))
	for i, b := range cfg.Blocks {
		defs[i] = registry.BlockDefinition{
			ID:       world.BlockType(i),
			Name:     b.Name,
			Opaque:   b.Opaque,
			Textures: b.Textures,
		}
	}
	return registry.Init(defs)
}

// digBelowViewer fires one downward ray and breaks the surface block it
// hits, exercising the edit path end to end.
func digBelowViewer(store *world.Store, viewer mgl32.Vec3) {
	r := physics.Raycast(viewer, mgl32.Vec3{0, -1, 0}, 0, 64, store)
	if !r.Hit {
		log.Printf("edit: no ground under viewer within reach")
		return
	}
	bt := store.BlockAt(r.HitPosition[0], r.HitPosition[1], r.HitPosition[2])
	def, err := registry.Lookup(bt)
	if err != nil {
		log.Printf("edit: %v", err)
		return
	}
	if err := store.SetBlockAt(r.HitPosition[0], r.HitPosition[1], r.HitPosition[2], world.BlockTypeAir); err != nil {
		log.Printf("edit: break at %v: %v", r.HitPosition, err)
		return
	}
	log.Printf("edit: broke %s at %v", def.Name, r.HitPosition)
}

// exportMeshes writes every non-empty ready mesh as one .glb per chunk.
func exportMeshes(streamer *stream.Streamer, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	meshes := streamer.Meshes()
	coords := make([]world.ChunkCoord, 0, len(meshes))
	for c := range meshes {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })

	exported := 0
	for _, c := range coords {
		m := meshes[c]
		if m == nil || m.Empty() {
			continue
		}
		name := fmt.Sprintf("chunk_%d_%d_%d", c.X, c.Y, c.Z)
		if err := meshexport.SaveGLB(m, name, filepath.Join(dir, name+".glb")); err != nil {
			return err
		}
		exported++
	}
	log.Printf("exported %d chunk meshes to %s", exported, dir)
	return nil
}
