package build

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/seamui/seam/internal/config"
	"github.com/seamui/seam/internal/directive"
	"github.com/seamui/seam/internal/logger"
	"github.com/seamui/seam/internal/manifest"
	"github.com/seamui/seam/internal/modgraph"
	"github.com/seamui/seam/internal/rewrite"
)

// Stage names, in execution order.
const (
	StageAnalyze      = "analyze"
	StageSharedChunks = "shared-chunks"
	StageServerBuild  = "server-build"
	StageClientBuild  = "client-build"
)

// Output subdirectories under the build out dir.
const (
	ChunksDir = "chunks"
	ServerDir = "server"
	ClientDir = "client"
)

// EntryChunkName is the deterministic file name of the server and client
// entry chunks within their bundle directories.
const EntryChunkName = "entry.mjs"

// StageFailure reports a failed orchestrator stage. Any stage failing
// aborts the whole build: stage 2's manifest records are a hard input to
// stages 3 and 4, so stages are not independently retryable.
type StageFailure struct {
	Stage string
	Err   error
}

func (e *StageFailure) Error() string {
	return fmt.Sprintf("build stage %q failed: %v", e.Stage, e.Err)
}

func (e *StageFailure) Unwrap() error {
	return e.Err
}

// IsStageFailure reports whether err is a StageFailure.
func IsStageFailure(err error) bool {
	var sf *StageFailure
	return errors.As(err, &sf)
}

// StageResult contains statistics for one completed stage.
type StageResult struct {
	Stage    string
	Modules  int
	Duration time.Duration
}

// Result contains statistics and artifacts of a completed build.
type Result struct {
	StartedAt        time.Time
	CompletedAt      time.Time
	Duration         time.Duration
	Stages           []StageResult
	Graph            *modgraph.Graph
	ClientComponents int
	ServerActions    int
	Manifests        *manifest.Set
}

// Orchestrator coordinates the four build stages. The stages run strictly
// sequentially; each depends on the accumulated state of the previous one.
type Orchestrator struct {
	cfg     *config.Config
	log     *logger.Logger
	bundler Bundler
	bctx    *Context
}

// NewOrchestrator creates a build orchestrator for the given configuration.
func NewOrchestrator(cfg *config.Config, log *logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Orchestrator{
		cfg:     cfg,
		log:     log,
		bundler: NewChunkBundler(cfg.App.Root, cfg.Build.Parallelism),
		bctx:    NewContext(),
	}
}

// Run executes the full build: analyze, shared chunks, server bundle,
// client bundle. Fail-fast: the first failing stage aborts the invocation
// and no manifest is written.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	result := &Result{StartedAt: time.Now()}

	// Classification sets are per-invocation; never inherit a previous
	// build's registrations.
	o.bctx.Reset()

	outDir := o.cfg.Build.OutDir
	emitter := manifest.NewEmitter()

	var graph *modgraph.Graph
	err := o.runStage(ctx, result, StageAnalyze, func() (int, error) {
		g, err := o.analyze()
		if err != nil {
			return 0, err
		}
		graph = g
		return g.ModuleCount(), nil
	})
	if err != nil {
		return nil, err
	}
	result.Graph = graph
	result.ClientComponents = len(o.bctx.ClientModules())
	result.ServerActions = len(o.bctx.ServerModules())

	var sharedChunks map[string]string
	err = o.runStage(ctx, result, StageSharedChunks, func() (int, error) {
		chunks, err := o.buildSharedChunks(ctx, graph, outDir, emitter)
		if err != nil {
			return 0, err
		}
		sharedChunks = chunks
		return len(chunks), nil
	})
	if err != nil {
		return nil, err
	}

	err = o.runStage(ctx, result, StageServerBuild, func() (int, error) {
		return o.buildServerBundle(ctx, graph, outDir)
	})
	if err != nil {
		return nil, err
	}

	err = o.runStage(ctx, result, StageClientBuild, func() (int, error) {
		return o.buildClientBundle(ctx, graph, outDir, sharedChunks)
	})
	if err != nil {
		return nil, err
	}

	// The manifests are the build's terminal artifact: written only once
	// every stage has succeeded, so a failed build leaves no partial one.
	if err := emitter.WriteFiles(outDir); err != nil {
		return nil, &StageFailure{Stage: StageClientBuild, Err: err}
	}
	result.Manifests = emitter.Set()

	result.CompletedAt = time.Now()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)
	o.log.Infow("Build complete",
		"modules", graph.ModuleCount(),
		"client_components", result.ClientComponents,
		"server_actions", result.ServerActions,
		"duration", result.Duration,
	)
	return result, nil
}

// runStage executes one stage with timing, logging, and failure wrapping.
func (o *Orchestrator) runStage(ctx context.Context, result *Result, stage string, fn func() (int, error)) error {
	if err := ctx.Err(); err != nil {
		return &StageFailure{Stage: stage, Err: err}
	}

	log := o.log.WithStage(stage)
	log.Debugw("Stage starting")
	start := time.Now()

	modules, err := fn()
	if err != nil {
		log.Errorw("Stage failed", "error", err)
		return &StageFailure{Stage: stage, Err: err}
	}

	duration := time.Since(start)
	result.Stages = append(result.Stages, StageResult{Stage: stage, Modules: modules, Duration: duration})
	log.Infow("Stage complete", "modules", modules, "duration", duration)
	return nil
}

// analyze builds the full module graph with no output emission, solely to
// populate the classification sets. Each module is classified exactly once
// even when reachable via multiple import paths.
func (o *Orchestrator) analyze() (*modgraph.Graph, error) {
	builder := modgraph.NewBuilder(o.cfg.App.Root)
	graph, err := builder.Build(o.cfg.App.ServerEntry, o.cfg.App.ClientEntry)
	if err != nil {
		return nil, err
	}

	for _, id := range graph.Order {
		mod := graph.GetModule(id)
		switch mod.Kind {
		case directive.KindClient:
			o.bctx.RegisterClient(mod)
		case directive.KindServer:
			o.bctx.RegisterServer(mod)
		}
	}
	return graph, nil
}

// entryNames derives the combined entry-name mapping (module id -> entry
// name) for the discovered client components and server actions.
func (o *Orchestrator) entryNames() (map[string]string, error) {
	names := make(map[string]string)

	clientIDs := moduleIDs(o.bctx.ClientModules())
	clientEntries, err := DeriveEntries(ClientEntryPrefix, clientIDs)
	if err != nil {
		return nil, err
	}
	for entry, id := range clientEntries {
		names[id] = entry
	}

	actionIDs := moduleIDs(o.bctx.ServerModules())
	actionEntries, err := DeriveEntries(ActionEntryPrefix, actionIDs)
	if err != nil {
		return nil, err
	}
	for entry, id := range actionEntries {
		names[id] = entry
	}
	return names, nil
}

// buildSharedChunks emits one independently loadable chunk per module and
// records the manifest associations for client components and actions.
func (o *Orchestrator) buildSharedChunks(ctx context.Context, graph *modgraph.Graph, outDir string, emitter *manifest.Emitter) (map[string]string, error) {
	entryNames, err := o.entryNames()
	if err != nil {
		return nil, err
	}

	res, err := o.bundler.Bundle(ctx, &Request{
		Graph:      graph,
		Modules:    graph.EmitOrder(),
		OutDir:     filepath.Join(outDir, ChunksDir),
		Condition:  ConditionClient,
		EntryNames: entryNames,
	})
	if err != nil {
		return nil, err
	}

	for _, mod := range o.bctx.ClientModules() {
		emitter.RecordClientComponent(mod.ID, res.Chunks[mod.ID])
	}
	for _, mod := range o.bctx.ServerModules() {
		emitter.RecordAction(mod.ID, res.Chunks[mod.ID])
	}
	return res.Chunks, nil
}

// buildServerBundle compiles the server entry under the server condition
// with client modules stubbed out: the bundle contains real server logic
// plus client-component placeholders that throw if invoked.
func (o *Orchestrator) buildServerBundle(ctx context.Context, graph *modgraph.Graph, outDir string) (int, error) {
	modules := graph.ReachableFrom(o.cfg.App.ServerEntry)
	res, err := o.bundler.Bundle(ctx, &Request{
		Graph:     graph,
		Modules:   modules,
		OutDir:    filepath.Join(outDir, ServerDir),
		Condition: ConditionServer,
		Transform: func(mod *modgraph.Module, src []byte) []byte {
			out, _ := rewrite.Rewrite(mod, src, rewrite.TargetServer)
			return out
		},
		Names: map[string]string{o.cfg.App.ServerEntry: EntryChunkName},
	})
	if err != nil {
		return 0, err
	}
	return len(res.Chunks), nil
}

// buildClientBundle compiles the client entry under the client condition
// with server modules stubbed out. Client components keep their stage-2
// chunk names so each one stays addressable by the id recorded in the
// manifests.
func (o *Orchestrator) buildClientBundle(ctx context.Context, graph *modgraph.Graph, outDir string, sharedChunks map[string]string) (int, error) {
	names := map[string]string{o.cfg.App.ClientEntry: EntryChunkName}
	for _, mod := range o.bctx.ClientModules() {
		if chunk, ok := sharedChunks[mod.ID]; ok {
			names[mod.ID] = chunk
		}
	}

	modules := graph.ReachableFrom(o.cfg.App.ClientEntry)
	res, err := o.bundler.Bundle(ctx, &Request{
		Graph:     graph,
		Modules:   modules,
		OutDir:    filepath.Join(outDir, ClientDir),
		Condition: ConditionClient,
		Transform: func(mod *modgraph.Module, src []byte) []byte {
			out, _ := rewrite.Rewrite(mod, src, rewrite.TargetClient)
			return out
		},
		Names: names,
	})
	if err != nil {
		return 0, err
	}
	return len(res.Chunks), nil
}

func moduleIDs(mods []*modgraph.Module) []string {
	ids := make([]string, 0, len(mods))
	for _, m := range mods {
		ids = append(ids, m.ID)
	}
	return ids
}
