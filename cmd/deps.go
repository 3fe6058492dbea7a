package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/citypulse/harvester/internal/enrich"
	"github.com/citypulse/harvester/internal/extract"
	"github.com/citypulse/harvester/internal/fetch"
	"github.com/citypulse/harvester/internal/source"
	"github.com/citypulse/harvester/internal/store"
	anthropicpkg "github.com/citypulse/harvester/pkg/anthropic"
)

// initStore opens the configured backend.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	return st, nil
}

// newEnricher builds the extraction stack. Without an Anthropic key the LLM
// fallback is disabled and use_llm profiles run without it.
func newEnricher() *enrich.Enricher {
	var llm extract.Extractor
	if cfg.Anthropic.Key != "" {
		client := anthropicpkg.NewClient(cfg.Anthropic.Key)
		llm = extract.NewLLMExtractor(client, cfg.Anthropic.Model)
	} else {
		zap.L().Info("no anthropic key configured, LLM fallback disabled")
	}
	return enrich.New(llm)
}

// newFetcher builds the shared fetch layer from global config.
func newFetcher() *fetch.Fetcher {
	return fetch.New(fetch.Options{
		UserAgent:   cfg.Fetch.UserAgent,
		RatePerHost: cfg.Fetch.RatePerHost,
		Burst:       cfg.Fetch.Burst,
	})
}

// loadRegistry loads and validates the source profile registry.
func loadRegistry() (*source.Registry, error) {
	reg, err := source.Load(cfg.Sources.File)
	if err != nil {
		return nil, eris.Wrap(err, "load source registry")
	}
	return reg, nil
}
