// Package llmtest provides a scriptable llm.Gateway for tests.
package llmtest

import (
	"context"
	"strings"
	"sync"

	"github.com/jonathan/job-verifier/internal/llm"
)

// Gateway is a fake llm.Gateway. Unset funcs reply ok=false.
type Gateway struct {
	Up         bool
	ChatFunc   func(req llm.ChatRequest) (string, bool)
	StructFunc func(req llm.ChatRequest) (map[string]any, bool)

	mu    sync.Mutex
	calls []llm.ChatRequest
}

var _ llm.Gateway = (*Gateway)(nil)

// Down returns a gateway that reports unavailable and answers nothing.
func Down() *Gateway {
	return &Gateway{}
}

// Available implements llm.Gateway
func (g *Gateway) Available(context.Context) bool {
	return g.Up
}

// Chat implements llm.Gateway
func (g *Gateway) Chat(_ context.Context, req llm.ChatRequest) (string, bool) {
	g.record(req)
	if !g.Up || g.ChatFunc == nil {
		return "", false
	}
	return g.ChatFunc(req)
}

// StructuredChat implements llm.Gateway
func (g *Gateway) StructuredChat(_ context.Context, req llm.ChatRequest) (map[string]any, bool) {
	g.record(req)
	if !g.Up || g.StructFunc == nil {
		return nil, false
	}
	return g.StructFunc(req)
}

// Calls returns every request seen so far.
func (g *Gateway) Calls() []llm.ChatRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]llm.ChatRequest, len(g.calls))
	copy(out, g.calls)
	return out
}

// CallsMatching counts requests whose prompt or system prompt contains substr.
func (g *Gateway) CallsMatching(substr string) int {
	n := 0
	for _, c := range g.Calls() {
		if strings.Contains(c.SystemPrompt, substr) || strings.Contains(c.Prompt, substr) {
			n++
		}
	}
	return n
}

func (g *Gateway) record(req llm.ChatRequest) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
}
