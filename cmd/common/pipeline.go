package common

import (
	"fmt"

	"github.com/jonesrussell/flightwatch/internal/fetcher"
	"github.com/jonesrussell/flightwatch/internal/logger"
	"github.com/jonesrussell/flightwatch/internal/parser"
	"github.com/jonesrussell/flightwatch/internal/runner"
	"github.com/jonesrussell/flightwatch/internal/seenstore"
	"github.com/jonesrussell/flightwatch/internal/sink"
	"github.com/jonesrussell/flightwatch/internal/snapshot"
)

// Pipeline bundles a fully wired runner with the connections it owns.
type Pipeline struct {
	Runner *runner.Runner

	store seenstore.Store
	sink  sink.Sink
	log   logger.Interface
}

// Close releases the pipeline's external connections.
func (p *Pipeline) Close() {
	if err := p.sink.Close(); err != nil {
		p.log.Error("failed to close sink", "error", err.Error())
	}
	if err := p.store.Close(); err != nil {
		p.log.Error("failed to close seen-set store", "error", err.Error())
	}
}

// BuildPipeline constructs the fetch/parse/dedupe/emit pipeline from
// configuration. The caller must Close the result.
func BuildPipeline(deps CommandDeps) (*Pipeline, error) {
	scraperCfg := deps.Config.GetScraperConfig()

	store, err := seenstore.New(deps.Config.GetSeenSetConfig(), deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("create seen-set store: %w", err)
	}

	flightSink, err := sink.NewElasticsearchSink(deps.Config.GetElasticsearchConfig(), deps.Logger)
	if err != nil {
		if closeErr := store.Close(); closeErr != nil {
			deps.Logger.Error("failed to close seen-set store", "error", closeErr.Error())
		}
		return nil, fmt.Errorf("create sink: %w", err)
	}

	run := runner.New(
		scraperCfg,
		fetcher.New(scraperCfg, deps.Logger),
		parser.New(scraperCfg, deps.Logger),
		store,
		flightSink,
		snapshot.New(scraperCfg.SnapshotDir, deps.Logger),
		deps.Logger,
	)

	return &Pipeline{
		Runner: run,
		store:  store,
		sink:   flightSink,
		log:    deps.Logger,
	}, nil
}
