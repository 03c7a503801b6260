package llm

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ChatRequest is a best-effort completion request made by a pipeline stage
type ChatRequest struct {
	Prompt       string
	SystemPrompt string
	// Model names a provider model directly and takes precedence over Tier.
	Model        string
	Tier         ModelTier
	Temperature  float32
	MaxTokens    int
}

// Gateway is the capability the verification stages use to reach a language model.
// Every call is best-effort: failures are reported as ok=false, never as errors.
type Gateway interface {
	// Chat returns free text, or ok=false when the model could not answer.
	Chat(ctx context.Context, req ChatRequest) (text string, ok bool)
	// StructuredChat returns a JSON object, or ok=false when the reply was missing or not an object.
	StructuredChat(ctx context.Context, req ChatRequest) (obj map[string]any, ok bool)
	// Available reports whether it is worth attempting a call. It does not make a network round trip.
	Available(ctx context.Context) bool
}

const (
	defaultCallTimeout   = 30 * time.Second
	defaultProbeCooldown = time.Minute
)

// ClientGateway adapts a provider Client into a Gateway.
// After a failed call the gateway reports unavailable until the cooldown expires.
type ClientGateway struct {
	client   Client
	timeout  time.Duration
	cooldown time.Duration
	now      func() time.Time

	mu        sync.Mutex
	downUntil time.Time
}

// GatewayOption configures a ClientGateway
type GatewayOption func(*ClientGateway)

// WithCallTimeout bounds each provider call.
func WithCallTimeout(d time.Duration) GatewayOption {
	return func(g *ClientGateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithProbeCooldown sets how long a failure keeps the gateway unavailable.
func WithProbeCooldown(d time.Duration) GatewayOption {
	return func(g *ClientGateway) {
		if d >= 0 {
			g.cooldown = d
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) GatewayOption {
	return func(g *ClientGateway) {
		g.now = now
	}
}

// NewGateway wraps client. A nil client yields a permanently unavailable gateway.
func NewGateway(client Client, opts ...GatewayOption) *ClientGateway {
	g := &ClientGateway{
		client:   client,
		timeout:  defaultCallTimeout,
		cooldown: defaultProbeCooldown,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Unavailable returns a gateway that never calls a model.
func Unavailable() *ClientGateway {
	return NewGateway(nil)
}

// Available reports whether a client is configured and not cooling down after a failure.
func (g *ClientGateway) Available(_ context.Context) bool {
	if g.client == nil {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.now().Before(g.downUntil)
}

// Chat sends a free-text request.
func (g *ClientGateway) Chat(ctx context.Context, req ChatRequest) (string, bool) {
	text, ok := g.call(ctx, req, false)
	if !ok {
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}

// StructuredChat sends a request expecting a JSON object reply.
func (g *ClientGateway) StructuredChat(ctx context.Context, req ChatRequest) (map[string]any, bool) {
	text, ok := g.call(ctx, req, true)
	if !ok {
		return nil, false
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(CleanJSONBlock(text)), &obj); err != nil {
		zap.L().Debug("llm: reply is not a JSON object", zap.Error(err))
		return nil, false
	}
	if obj == nil {
		return nil, false
	}
	return obj, true
}

// Close releases the underlying client.
func (g *ClientGateway) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *ClientGateway) call(ctx context.Context, req ChatRequest, wantJSON bool) (string, bool) {
	if strings.TrimSpace(req.Prompt) == "" {
		zap.L().Debug("llm: empty prompt rejected")
		return "", false
	}
	if !g.Available(ctx) {
		return "", false
	}
	if req.Tier == "" {
		req.Tier = TierStandard
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	providerReq := Request(req)
	var (
		text string
		err  error
	)
	if wantJSON {
		text, err = g.client.GenerateJSON(callCtx, providerReq)
	} else {
		text, err = g.client.GenerateContent(callCtx, providerReq)
	}
	if err != nil {
		// The caller's own cancellation says nothing about the provider.
		if ctx.Err() == nil {
			g.markDown()
		}
		zap.L().Debug("llm: call failed",
			zap.String("model", modelName(req, g.client)),
			zap.Error(err))
		return "", false
	}
	return text, true
}

func modelName(req ChatRequest, client Client) string {
	if req.Model != "" {
		return req.Model
	}
	return client.GetModel(req.Tier)
}

func (g *ClientGateway) markDown() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.downUntil = g.now().Add(g.cooldown)
}
