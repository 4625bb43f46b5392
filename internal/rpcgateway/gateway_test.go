package rpcgateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRPCResult(t *testing.T, w http.ResponseWriter, result any) {
	t.Helper()
	resp := jsonRPCResponse{JSONRPC: "2.0", ID: 1}
	raw, err := json.Marshal(result)
	require.NoError(t, err)
	resp.Result = raw
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func TestGetBalance_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeRPCResult(t, w, map[string]any{"context": map[string]int{"slot": 1}, "value": 1_500_000_000})
	}))
	defer srv.Close()

	gw := New(Config{
		PrimaryURL:        srv.URL,
		Commitment:        "confirmed",
		Timeout:           5 * time.Second,
		MaxRetries:        3,
		RequestsPerSecond: 100,
	}, nil, zerolog.Nop(), nil)

	bal, err := gw.GetBalance(context.Background(), "SomeAddress")
	require.NoError(t, err)
	assert.True(t, bal.Equal(mustDecimal(t, "1.5")))
}

func TestGetBalance_FailoverToBackup(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer primary.Close()

	backup := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeRPCResult(t, w, map[string]any{"value": 1_500_000_000})
	}))
	defer backup.Close()

	gw := New(Config{
		PrimaryURL:        primary.URL,
		BackupURLs:        []string{backup.URL},
		Commitment:        "confirmed",
		Timeout:           5 * time.Second,
		MaxRetries:        3,
		RequestsPerSecond: 100,
	}, nil, zerolog.Nop(), nil)

	bal, err := gw.GetBalance(context.Background(), "SomeAddress")
	require.NoError(t, err)
	assert.True(t, bal.Equal(mustDecimal(t, "1.5")))
}

func TestGetAccountInfo_AbsentIsNilNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeRPCResult(t, w, map[string]any{"value": nil})
	}))
	defer srv.Close()

	gw := New(Config{
		PrimaryURL:        srv.URL,
		Commitment:        "confirmed",
		Timeout:           5 * time.Second,
		MaxRetries:        1,
		RequestsPerSecond: 100,
	}, nil, zerolog.Nop(), nil)

	info, err := gw.GetAccountInfo(context.Background(), "NoSuchAccount")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestTransfer_NonIdempotentDoesNotRetryAcrossClients(t *testing.T) {
	var sendCount int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req jsonRPCRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Method == "getLatestBlockhash" {
			writeRPCResult(t, w, map[string]any{"value": map[string]string{"blockhash": "abc"}})
			return
		}
		sendCount++
		resp := jsonRPCResponse{JSONRPC: "2.0", ID: 1, Error: &jsonRPCError{Code: -32002, Message: "Transaction simulation failed: insufficient funds"}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	kp := testKeypair(t)

	gw := New(Config{
		PrimaryURL:        srv.URL,
		Commitment:        "confirmed",
		Timeout:           5 * time.Second,
		MaxRetries:        3,
		RequestsPerSecond: 100,
	}, kp, zerolog.Nop(), nil)

	_, err := gw.Transfer(context.Background(), "Recipient", mustDecimal(t, "1.0"))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 1, sendCount)
}

func TestTransfer_NonIdempotentDoesNotRetryAcrossClientsOnTransportError(t *testing.T) {
	var primarySendCount int
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req jsonRPCRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Method == "getLatestBlockhash" {
			writeRPCResult(t, w, map[string]any{"value": map[string]string{"blockhash": "abc"}})
			return
		}
		primarySendCount++
		// Abruptly close the connection instead of responding, which the
		// client observes as an EOF/transport failure rather than a
		// definitive RPC error.
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		conn.Close()
	}))
	defer primary.Close()

	var backupSendCount int
	backup := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req jsonRPCRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Method == "getLatestBlockhash" {
			writeRPCResult(t, w, map[string]any{"value": map[string]string{"blockhash": "abc"}})
			return
		}
		backupSendCount++
		writeRPCResult(t, w, "signature-from-backup")
	}))
	defer backup.Close()

	kp := testKeypair(t)

	gw := New(Config{
		PrimaryURL:        primary.URL,
		BackupURLs:        []string{backup.URL},
		Commitment:        "confirmed",
		Timeout:           5 * time.Second,
		MaxRetries:        3,
		RequestsPerSecond: 100,
	}, kp, zerolog.Nop(), nil)

	_, err := gw.Transfer(context.Background(), "Recipient", mustDecimal(t, "1.0"))
	require.Error(t, err)
	assert.Equal(t, 1, primarySendCount, "sendTransaction must be attempted at most once across the whole invocation")
	assert.Equal(t, 0, backupSendCount, "a non-idempotent send must never fail over to a backup endpoint")
}

func TestHealthCheck_CachedWithinInterval(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeRPCResult(t, w, 12345)
	}))
	defer srv.Close()

	gw := New(Config{
		PrimaryURL:          srv.URL,
		Commitment:          "confirmed",
		Timeout:             5 * time.Second,
		MaxRetries:          1,
		RequestsPerSecond:   100,
		HealthCheckInterval: time.Minute,
	}, nil, zerolog.Nop(), nil)

	assert.True(t, gw.HealthCheck(context.Background()))
	assert.True(t, gw.HealthCheck(context.Background()))
	assert.Equal(t, 1, calls)
}
