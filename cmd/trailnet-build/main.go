// Package main is the entry point for the trailnet graph builder: it reads
// input trails, runs them through the nine-stage topology pipeline, and
// checkpoints the finished routing graph.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	"github.com/ali01/trailnet/internal/cache"
	"github.com/ali01/trailnet/internal/config"
	"github.com/ali01/trailnet/internal/graph"
	"github.com/ali01/trailnet/internal/pipeline"
	"github.com/ali01/trailnet/internal/store"
	"github.com/ali01/trailnet/internal/topology/bridger"
	"github.com/ali01/trailnet/internal/topology/bridging"
	"github.com/ali01/trailnet/internal/topology/compactor"
	"github.com/ali01/trailnet/internal/topology/connector"
	"github.com/ali01/trailnet/internal/topology/dedup"
	"github.com/ali01/trailnet/internal/topology/noder"
	"github.com/ali01/trailnet/internal/topology/preprocess"
	"github.com/ali01/trailnet/internal/topology/pruner"
	"github.com/ali01/trailnet/internal/topology/welder"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("build panic recovered: %v", r)
			log.Printf("stack trace:\n%s", debug.Stack())
			os.Exit(1)
		}
	}()

	configPath := "config.yaml"
	watch := false
	for _, arg := range os.Args[1:] {
		if arg == "-watch" || arg == "--watch" {
			watch = true
			continue
		}
		configPath = arg
	}

	cfg, err := config.LoadFromYAML(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := store.Open(cfg.Database)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("warning: error closing database: %v", err)
		}
	}()

	if err := db.InitializeSchema(); err != nil {
		log.Fatalf("failed to initialize schema: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		log.Println("interrupt received, cancelling run...")
		cancel()
	}()

	geomCache := cache.New(cfg.Redis)
	defer func() {
		if err := geomCache.Close(); err != nil {
			log.Printf("warning: error closing geometry cache: %v", err)
		}
	}()

	var runMu sync.Mutex
	runOnce := func(cfg *config.Config) {
		runMu.Lock()
		defer runMu.Unlock()

		ws, err := loadWorkingSet(ctx, db)
		if err != nil {
			log.Printf("failed to load input trails: %v", err)
			return
		}
		log.Printf("loaded %d input trails", len(ws.Trails))

		pl := buildPipeline(cfg, geomCache)
		pl.Persister = store.NewPersister(db)

		start := time.Now()
		rep, err := pl.Run(ctx, ws)
		if err != nil {
			log.Printf("pipeline run failed after %s: %v", time.Since(start), err)
			return
		}

		log.Printf("pipeline run finished in %s", time.Since(start))
		log.Print(rep.String())
	}

	runOnce(cfg)

	if !watch {
		return
	}

	w, err := config.NewWatcher(configPath, runOnce)
	if err != nil {
		log.Fatalf("failed to watch %s: %v", configPath, err)
	}
	defer w.Close()

	log.Printf("watching %s for tunable changes, rebuilding on each save", configPath)
	go w.Watch()
	<-ctx.Done()
}

// loadWorkingSet reads every input trail and seeds a fresh working set,
// mirroring what the Noder will later split into vertices and edges.
func loadWorkingSet(ctx context.Context, db *store.DB) (*graph.WorkingSet, error) {
	trails, err := store.NewTrailSource(db).Trails(ctx)
	if err != nil {
		return nil, err
	}
	ws := graph.New()
	for _, t := range trails {
		ws.AddTrail(t)
	}
	return ws, nil
}

// buildPipeline wires the nine topology stages in spec order, each
// constructed from the loaded TopologyConfig.
func buildPipeline(cfg *config.Config, geomCache *cache.GeometryCache) *pipeline.Pipeline {
	t := cfg.Topology
	return pipeline.New(
		preprocess.New(preprocess.Config{
			MaxPasses:          t.MaxPasses,
			MinLengthMeters:    t.MinTrailLengthMeters,
			SimplifyToleranceM: t.SimplifyToleranceMeters,
		}),
		bridging.New(bridging.Config{
			ToleranceMeters: t.TrailBridgeMeters,
			SnapMeters:      t.SnapMeters,
		}),
		noder.New(noder.Config{
			SnapMeters: t.SnapMeters,
			Cache:      geomCache,
		}),
		welder.New(welder.Config{
			ToleranceMeters: t.VertexMergeMeters,
		}),
		bridger.New(bridger.Config{
			ToleranceMeters: t.GapBridgeMeters,
		}),
		connector.New(connector.Config{
			ToleranceMeters: t.ConnectorToleranceMeters,
			NamePatterns:    t.ConnectorNamePatterns,
		}),
		dedup.New(dedup.Config{
			Policy:     dedup.Policy(t.DedupPolicy),
			SnapMeters: t.SnapMeters,
		}),
		pruner.New(pruner.Config{
			MaxConnectorLengthMeters: t.MaxConnectorLengthMeters,
			NamePatterns:             t.ConnectorNamePatterns,
		}),
		compactor.New(compactor.Config{
			ChainJoinMeters: t.ChainJoinMeters,
			MaxChainEdges:   t.MaxChainEdges,
		}),
	)
}
