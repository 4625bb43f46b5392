// Command market-data runs a Model Context Protocol server over stdio that
// exposes the guardian's price aggregator as MCP tools, so an Agent
// Plugin's reasoner can pull live market context without importing
// internal/market directly.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ajitpratap0/solana-guardian/internal/config"
	"github.com/ajitpratap0/solana-guardian/internal/market"
	"github.com/ajitpratap0/solana-guardian/internal/metrics"
)

const serverName = "market-data"

// MCPRequest represents an MCP tool call request.
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// MCPResponse represents an MCP response.
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents an MCP error.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MCPServer handles MCP protocol over stdio.
type MCPServer struct {
	service *MarketDataServer
}

// MarketDataServer exposes the shared market aggregator as MCP tools.
type MarketDataServer struct {
	aggregator *market.Aggregator
	logger     zerolog.Logger
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	logger := log.With().Str("server", serverName).Logger()
	logger.Info().Msg("starting market-data MCP server")

	cfg, err := config.Load("")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	metricsServer := metrics.NewServer(9201, logger)
	if err := metricsServer.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start metrics server")
	}

	sources := make([]market.Source, 0, len(cfg.Market.Sources))
	for _, s := range cfg.Market.Sources {
		sources = append(sources, market.Source(s))
	}
	rateLimits := make([]market.SourceRateLimit, 0, len(cfg.Market.RateLimits))
	for _, rl := range cfg.Market.RateLimits {
		rateLimits = append(rateLimits, market.SourceRateLimit{
			Source:              market.Source(rl.Source),
			OperationsPerMinute: rl.OperationsPerMinute,
			Priority:            rl.Priority,
		})
	}

	aggregator, err := market.New(market.Config{
		Sources:         sources,
		RateLimits:      rateLimits,
		PriceCacheTTL:   cfg.Market.PriceCacheTTL,
		DexCacheTTL:     cfg.Market.DexCacheTTL,
		CoinGeckoAPIKey: cfg.Market.CoinGeckoAPIKey,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build market aggregator")
	}

	mcpServer := &MCPServer{
		service: &MarketDataServer{aggregator: aggregator, logger: logger},
	}

	logger.Info().Msg("market-data MCP server ready, listening on stdio")

	if err := mcpServer.Run(); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}

// Run starts the MCP server with stdio transport.
func (s *MCPServer) Run() error {
	decoder := json.NewDecoder(os.Stdin)
	encoder := json.NewEncoder(os.Stdout)

	for {
		var request MCPRequest
		if err := decoder.Decode(&request); err != nil {
			if err.Error() == "EOF" {
				s.service.logger.Info().Msg("client disconnected")
				return nil
			}
			s.service.logger.Error().Err(err).Msg("failed to decode request")
			continue
		}

		response := s.handleRequest(&request)

		if err := encoder.Encode(response); err != nil {
			s.service.logger.Error().Err(err).Msg("failed to encode response")
			return err
		}
	}
}

func (s *MCPServer) handleRequest(req *MCPRequest) *MCPResponse {
	response := &MCPResponse{JSONRPC: "2.0", ID: req.ID}

	switch req.Method {
	case "initialize":
		response.Result = s.handleInitialize()
		return response

	case "tools/list":
		response.Result = s.listTools()
		return response

	case "tools/call":
		var toolParams struct {
			Name      string                 `json:"name"`
			Arguments map[string]interface{} `json:"arguments"`
		}
		if err := json.Unmarshal(req.Params, &toolParams); err != nil {
			response.Error = &MCPError{Code: -32602, Message: fmt.Sprintf("invalid params: %v", err)}
			return response
		}

		result, err := s.callTool(toolParams.Name, toolParams.Arguments)
		if err != nil {
			response.Error = &MCPError{Code: -32000, Message: err.Error()}
		} else {
			response.Result = result
		}
		return response

	default:
		response.Error = &MCPError{Code: -32601, Message: fmt.Sprintf("method not found: %s", req.Method)}
		return response
	}
}

func (s *MCPServer) handleInitialize() interface{} {
	return map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"serverInfo":      map[string]interface{}{"name": serverName, "version": "1.0.0"},
		"capabilities":    map[string]interface{}{"tools": map[string]interface{}{}},
	}
}

func (s *MCPServer) listTools() interface{} {
	return map[string]interface{}{
		"tools": []map[string]interface{}{
			{
				"name":        "get_price",
				"description": "Get the current aggregated price for a token symbol",
				"inputSchema": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"symbol": map[string]interface{}{
							"type":        "string",
							"description": "Token symbol, e.g. SOL or USDC",
						},
					},
					"required": []string{"symbol"},
				},
			},
			{
				"name":        "get_market_overview",
				"description": "Get a snapshot across configured symbols and DEX venues",
				"inputSchema": map[string]interface{}{
					"type":       "object",
					"properties": map[string]interface{}{},
				},
			},
		},
	}
}

func (s *MCPServer) callTool(name string, args map[string]interface{}) (interface{}, error) {
	start := time.Now()
	ctx := context.Background()

	var result interface{}
	var err error

	switch name {
	case "get_price":
		result, err = s.service.handleGetPrice(ctx, args)
	case "get_market_overview":
		result, err = s.service.handleGetMarketOverview(ctx)
	default:
		err = fmt.Errorf("unknown tool: %s", name)
	}

	metrics.RecordMCPToolCall(name, serverName, float64(time.Since(start).Milliseconds()))
	return result, err
}

func (s *MarketDataServer) handleGetPrice(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	symbol, ok := args["symbol"].(string)
	if !ok || symbol == "" {
		return nil, fmt.Errorf("symbol must be a non-empty string")
	}

	rec, err := s.aggregator.GetTokenPrice(ctx, symbol)
	if err != nil {
		s.logger.Error().Err(err).Str("symbol", symbol).Msg("get_price failed")
		return nil, fmt.Errorf("failed to get price: %w", err)
	}

	return map[string]interface{}{
		"symbol":    rec.Symbol,
		"price":     rec.Price.String(),
		"source":    string(rec.Source),
		"timestamp": rec.Timestamp.Unix(),
	}, nil
}

func (s *MarketDataServer) handleGetMarketOverview(ctx context.Context) (interface{}, error) {
	overview := s.aggregator.MarketOverview(ctx)
	return overview, nil
}
