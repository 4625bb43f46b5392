package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleGetPrice_MissingSymbol(t *testing.T) {
	s := &MarketDataServer{logger: zerolog.Nop()}

	_, err := s.handleGetPrice(context.Background(), map[string]interface{}{})

	require.Error(t, err)
}

func TestHandleGetPrice_InvalidSymbolType(t *testing.T) {
	s := &MarketDataServer{logger: zerolog.Nop()}

	_, err := s.handleGetPrice(context.Background(), map[string]interface{}{"symbol": 42})

	require.Error(t, err)
}

func TestListTools_IncludesPriceAndOverview(t *testing.T) {
	srv := &MCPServer{service: &MarketDataServer{logger: zerolog.Nop()}}

	result := srv.listTools().(map[string]interface{})
	tools := result["tools"].([]map[string]interface{})

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool["name"].(string))
	}

	assert.Contains(t, names, "get_price")
	assert.Contains(t, names, "get_market_overview")
}

func TestHandleRequest_UnknownMethod(t *testing.T) {
	srv := &MCPServer{service: &MarketDataServer{logger: zerolog.Nop()}}

	resp := srv.handleRequest(&MCPRequest{ID: 1, Method: "nonexistent"})

	require.NotNil(t, resp.Error)
	assert.Equal(t, -32601, resp.Error.Code)
}

func TestHandleRequest_ToolsCallInvalidParams(t *testing.T) {
	srv := &MCPServer{service: &MarketDataServer{logger: zerolog.Nop()}}

	resp := srv.handleRequest(&MCPRequest{ID: 2, Method: "tools/call", Params: json.RawMessage(`not json`)})

	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
}

func TestHandleInitialize_ReportsServerName(t *testing.T) {
	srv := &MCPServer{service: &MarketDataServer{logger: zerolog.Nop()}}

	result := srv.handleInitialize().(map[string]interface{})
	info := result["serverInfo"].(map[string]interface{})

	assert.Equal(t, serverName, info["name"])
}
