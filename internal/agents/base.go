// Package agents implements the Agent Plugin capability abstraction: a
// uniform initialize/evaluate/execute/cleanup surface over role-specialized
// reasoners that act as Swarm Coordinator peers.
package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/ajitpratap0/solana-guardian/internal/llm"
	"github.com/ajitpratap0/solana-guardian/internal/metrics"
)

const (
	pluginShutdownTimeout = 5 * time.Second
	mcpToolCallTimeout    = 60 * time.Second

	// DefaultEvaluateTimeout is the §4.3 default for Evaluate.
	DefaultEvaluateTimeout = 30 * time.Second
)

// MCPServerConfig holds configuration for a single MCP tool server a
// plugin connects to for market data, indicators, or execution tools.
type MCPServerConfig struct {
	Name    string
	Type    string // "internal" (stdio) or "external" (HTTP/SSE)
	Command string
	Args    []string
	Env     map[string]string
	URL     string
}

// PluginConfig holds the construction-time configuration for a BasePlugin.
type PluginConfig struct {
	ID         string
	Role       Role
	Version    string
	MCPServers []MCPServerConfig
	Timeout    time.Duration
}

// BasePlugin provides the shared scaffolding every role implementation
// embeds: MCP tool sessions, an LLM oracle, metrics, and a halt switch
// driven by eventbus control messages. Role types embed *BasePlugin and
// supply their own Evaluate/Execute semantics.
type BasePlugin struct {
	id      string
	role    Role
	version string
	timeout time.Duration

	mcpClient   *mcp.Client
	mcpSessions map[string]*mcp.ClientSession
	serverCfgs  []MCPServerConfig

	oracle *llm.Oracle

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	halted      bool
	haltedMutex sync.RWMutex
	natsConn    *nats.Conn
	controlSub  *nats.Subscription

	log     zerolog.Logger
	metrics *pluginMetrics
}

type pluginMetrics struct {
	EvaluationsTotal prometheus.Counter
	EvaluateDuration prometheus.Histogram
	MCPCallsTotal    prometheus.Counter
	MCPErrorsTotal   prometheus.Counter
	MCPCallDuration  prometheus.Histogram
	Status           prometheus.Gauge
}

// NewBasePlugin builds a BasePlugin; it does not connect to anything
// until Initialize is called.
func NewBasePlugin(cfg PluginConfig, oracle *llm.Oracle, log zerolog.Logger) *BasePlugin {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultEvaluateTimeout
	}

	pluginLog := log.With().Str("agent", cfg.ID).Str("role", string(cfg.Role)).Logger()

	m := &pluginMetrics{
		EvaluationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("guardian_agent_%s_evaluations_total", cfg.ID),
			Help: fmt.Sprintf("Total evaluate() calls for agent %s", cfg.ID),
		}),
		EvaluateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    fmt.Sprintf("guardian_agent_%s_evaluate_duration_seconds", cfg.ID),
			Help:    fmt.Sprintf("Duration of evaluate() for agent %s", cfg.ID),
			Buckets: prometheus.DefBuckets,
		}),
		MCPCallsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("guardian_agent_%s_mcp_calls_total", cfg.ID),
			Help: fmt.Sprintf("Total MCP tool calls for agent %s", cfg.ID),
		}),
		MCPErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("guardian_agent_%s_mcp_errors_total", cfg.ID),
			Help: fmt.Sprintf("Total MCP tool call errors for agent %s", cfg.ID),
		}),
		MCPCallDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    fmt.Sprintf("guardian_agent_%s_mcp_call_duration_seconds", cfg.ID),
			Help:    fmt.Sprintf("Duration of MCP tool calls for agent %s", cfg.ID),
			Buckets: prometheus.DefBuckets,
		}),
		Status: promauto.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("guardian_agent_%s_status", cfg.ID),
			Help: fmt.Sprintf("Status of agent %s (1=initialized, 0=stopped)", cfg.ID),
		}),
	}

	return &BasePlugin{
		id:          cfg.ID,
		role:        cfg.Role,
		version:     cfg.Version,
		timeout:     timeout,
		mcpClient:   mcp.NewClient(&mcp.Implementation{Name: cfg.ID, Version: cfg.Version}, nil),
		mcpSessions: make(map[string]*mcp.ClientSession),
		serverCfgs:  cfg.MCPServers,
		oracle:      oracle,
		log:         pluginLog,
		metrics:     m,
	}
}

func (p *BasePlugin) ID() string   { return p.id }
func (p *BasePlugin) Role() Role   { return p.role }
func (p *BasePlugin) Logger() zerolog.Logger { return p.log }
func (p *BasePlugin) Oracle() *llm.Oracle    { return p.oracle }
func (p *BasePlugin) Timeout() time.Duration { return p.timeout }

// Initialize connects to every configured MCP server. Idempotent: calling
// it again after a successful connect is a no-op per server already
// connected.
func (p *BasePlugin) Initialize(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for _, serverCfg := range p.serverCfgs {
		if _, ok := p.mcpSessions[serverCfg.Name]; ok {
			continue
		}

		var session *mcp.ClientSession
		var err error
		switch serverCfg.Type {
		case "internal":
			session, err = p.connectStdio(p.ctx, serverCfg)
		case "external":
			session, err = p.connectHTTP(p.ctx, serverCfg)
		default:
			return fmt.Errorf("agents: unknown MCP server type %q for %s", serverCfg.Type, serverCfg.Name)
		}
		if err != nil {
			return fmt.Errorf("agents: connect MCP server %s: %w", serverCfg.Name, err)
		}
		p.mcpSessions[serverCfg.Name] = session
	}

	p.metrics.Status.Set(1)
	p.log.Info().Int("mcp_servers", len(p.mcpSessions)).Msg("plugin initialized")
	return nil
}

func (p *BasePlugin) connectStdio(ctx context.Context, cfg MCPServerConfig) (*mcp.ClientSession, error) {
	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...) // #nosec G204 -- command sourced from validated plugin config
	for key, val := range cfg.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, val))
	}
	return p.mcpClient.Connect(ctx, &mcp.CommandTransport{Command: cmd}, nil)
}

func (p *BasePlugin) connectHTTP(ctx context.Context, cfg MCPServerConfig) (*mcp.ClientSession, error) {
	return p.mcpClient.Connect(ctx, &mcp.SSEClientTransport{Endpoint: cfg.URL}, nil)
}

// CallMCPTool invokes a tool on a named MCP server with a bounded timeout.
func (p *BasePlugin) CallMCPTool(ctx context.Context, serverName, toolName string, arguments map[string]any) (*mcp.CallToolResult, error) {
	start := time.Now()
	defer func() {
		p.metrics.MCPCallDuration.Observe(time.Since(start).Seconds())
		p.metrics.MCPCallsTotal.Inc()
	}()

	session, ok := p.mcpSessions[serverName]
	if !ok {
		p.metrics.MCPErrorsTotal.Inc()
		return nil, fmt.Errorf("agents: MCP server %q not connected", serverName)
	}

	toolCtx, cancel := context.WithTimeout(ctx, mcpToolCallTimeout)
	defer cancel()

	result, err := session.CallTool(toolCtx, &mcp.CallToolParams{Name: toolName, Arguments: arguments})
	if err != nil {
		p.metrics.MCPErrorsTotal.Inc()
		return nil, fmt.Errorf("agents: tool call %s/%s failed: %w", serverName, toolName, err)
	}
	return result, nil
}

// RecordEvaluation tracks one evaluate() call's outcome in metrics; role
// implementations call this from their own Evaluate.
func (p *BasePlugin) RecordEvaluation(duration time.Duration) {
	p.metrics.EvaluationsTotal.Inc()
	p.metrics.EvaluateDuration.Observe(duration.Seconds())
}

// Cleanup closes every MCP session, the NATS control subscription, and
// releases the internal context. Idempotent.
func (p *BasePlugin) Cleanup(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	if p.controlSub != nil {
		if err := p.controlSub.Unsubscribe(); err != nil {
			p.log.Error().Err(err).Msg("error unsubscribing from control topic")
		}
		p.controlSub = nil
	}
	if p.natsConn != nil {
		p.natsConn.Close()
		p.natsConn = nil
	}

	for name, session := range p.mcpSessions {
		if err := session.Close(); err != nil {
			p.log.Error().Err(err).Str("server", name).Msg("error closing MCP session")
		}
		delete(p.mcpSessions, name)
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	shutdownCtx, cancel := context.WithTimeout(ctx, pluginShutdownTimeout)
	defer cancel()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		p.metrics.Status.Set(0)
		return shutdownCtx.Err()
	}

	p.metrics.Status.Set(0)
	return nil
}

// SubscribeHaltControl connects to NATS and listens for emergency halt /
// resume events published by the guardian loop or an operator tool —
// the eventbus-driven equivalent of a kill switch.
func (p *BasePlugin) SubscribeHaltControl(natsURL, controlTopic string) error {
	if p.natsConn == nil {
		nc, err := nats.Connect(natsURL)
		if err != nil {
			return fmt.Errorf("agents: connect NATS: %w", err)
		}
		p.natsConn = nc
	}

	sub, err := p.natsConn.Subscribe(controlTopic, p.handleControlEvent)
	if err != nil {
		return fmt.Errorf("agents: subscribe control topic %s: %w", controlTopic, err)
	}
	p.controlSub = sub
	p.log.Info().Str("topic", controlTopic).Msg("subscribed to halt control events")
	return nil
}

func (p *BasePlugin) handleControlEvent(msg *nats.Msg) {
	var event struct {
		Event  string `json:"event"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		p.log.Error().Err(err).Msg("malformed control event")
		return
	}

	switch event.Event {
	case "halt":
		p.haltedMutex.Lock()
		p.halted = true
		p.haltedMutex.Unlock()
		p.log.Warn().Str("reason", event.Reason).Msg("plugin halted by control event")
	case "resume":
		p.haltedMutex.Lock()
		p.halted = false
		p.haltedMutex.Unlock()
		p.log.Info().Msg("plugin resumed by control event")
	default:
		p.log.Debug().Str("event", event.Event).Msg("unrecognized control event")
	}
}

// Halted reports whether an operator or the guardian loop has halted
// this plugin's non-idempotent actions.
func (p *BasePlugin) Halted() bool {
	p.haltedMutex.RLock()
	defer p.haltedMutex.RUnlock()
	return p.halted
}
