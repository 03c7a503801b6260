package main

import (
	"context"

	"github.com/jonathan/job-verifier/internal/config"
	"github.com/jonathan/job-verifier/internal/fetch"
	"github.com/jonathan/job-verifier/internal/llm"
	"github.com/jonathan/job-verifier/internal/pipeline"
	"github.com/jonathan/job-verifier/internal/research"
	"github.com/jonathan/job-verifier/internal/search"
	"github.com/jonathan/job-verifier/internal/server"
)

// newVerifier builds the production pipeline from cfg. The returned func releases the
// model client. Tests replace it with a stub.
var newVerifier = func(ctx context.Context, cfg *config.Config, opts ...pipeline.Option) (server.Verifier, func(), error) {
	gw := llm.NewGatewayFromConfig(ctx, cfg)
	runner, err := pipeline.New(pipeline.Dependencies{
		Fetcher:  fetch.NewFetcher(cfg.Fetch),
		Search:   search.NewFromConfig(ctx, cfg.Search),
		LLM:      gw,
		Research: research.Options{Timeout: cfg.Fetch.ProbeTimeout},
	}, opts...)
	if err != nil {
		_ = gw.Close()
		return nil, nil, err
	}
	return runner, func() { _ = gw.Close() }, nil
}
