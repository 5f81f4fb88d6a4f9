package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/juju/loggo/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chaininsight/pkg/config"
	"chaininsight/pkg/models"
	"chaininsight/pkg/network"
	"chaininsight/pkg/rpc"
)

// chainIDServer answers eth_chainId with chainID.
func chainIDServer(t *testing.T, chainID string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if req.Method == "eth_chainId" {
			resp["result"] = chainID
		} else {
			resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunSelfTest_Healthy(t *testing.T) {
	mainnet := chainIDServer(t, "0x2105")
	sepolia := chainIDServer(t, "0x14a34")

	cfg := config.Default()
	cfg.RPCOverrides = map[string]string{
		"base":         mainnet.URL,
		"base-sepolia": sepolia.URL,
	}

	report := runSelfTest(context.Background(), "/tmp/cfg.json", cfg, rpc.DialEthClient)
	assert.True(t, report.Healthy)
	assert.Empty(t, report.Mismatches)
	require.Len(t, report.Endpoints, 2)
	assert.Equal(t, "ok", report.Endpoints[0].Status)
	assert.Equal(t, network.BaseMainnetChainID, report.Endpoints[0].ObservedChainID)
	assert.Equal(t, mainnet.URL, report.Endpoints[0].URL)
	assert.Equal(t, network.BaseSepoliaChainID, report.Endpoints[1].ObservedChainID)

	var out bytes.Buffer
	printReport(&out, report)
	assert.Contains(t, out.String(), "Testing configuration at: /tmp/cfg.json")
	assert.Contains(t, out.String(), "OK (ChainID: 8453")
	assert.Contains(t, out.String(), "All endpoints healthy.")
}

func TestRunSelfTest_Mismatch(t *testing.T) {
	wrong := chainIDServer(t, "0x1")

	cfg := config.Default()
	cfg.RPCOverrides = map[string]string{
		"base":         wrong.URL,
		"base-sepolia": wrong.URL,
	}

	report := runSelfTest(context.Background(), "cfg.json", cfg, rpc.DialEthClient)
	assert.False(t, report.Healthy)
	assert.Equal(t, []string{"base", "base-sepolia"}, report.Mismatches)
	for _, r := range report.Endpoints {
		assert.Equal(t, "error", r.Status)
		assert.Equal(t, int64(1), r.ObservedChainID)
	}

	var out bytes.Buffer
	printReport(&out, report)
	assert.Contains(t, out.String(), "WARNING: Chain ID mismatch detected!")
	assert.NotContains(t, out.String(), "All endpoints healthy.")
}

func TestRunSelfTest_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := config.Default()
	cfg.RPCOverrides = map[string]string{"base": url, "base-sepolia": url}

	report := runSelfTest(context.Background(), "cfg.json", cfg, rpc.DialEthClient)
	assert.False(t, report.Healthy)
	assert.Empty(t, report.Mismatches)
	for _, r := range report.Endpoints {
		assert.Equal(t, "error", r.Status)
		assert.NotEmpty(t, r.Error)
	}
}

func TestReportJSON(t *testing.T) {
	report := models.TestReport{
		ConfigPath: "cfg.json",
		Endpoints:  []models.EndpointResult{{Network: "Base Sepolia", Status: "ok", ExpectedChainID: 84532}},
		Healthy:    true,
	}
	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"config_path": "cfg.json",
		"endpoints": [{"network": "Base Sepolia", "url": "", "status": "ok", "expected_chain_id": 84532}],
		"healthy": true
	}`, string(data))
}

func TestNewController(t *testing.T) {
	cfg := config.Default()
	cfg.StartNetwork = "base"
	cfg.RPCOverrides = map[string]string{"base": "http://127.0.0.1:1"}

	ctrl := newController(cfg)
	defer ctrl.Close()

	st := ctrl.State()
	assert.Equal(t, "base", st.Network.Key)
	assert.Equal(t, "http://127.0.0.1:1", st.Network.RPCURL)
	assert.False(t, st.Connected)
	assert.Equal(t, "Ready.", st.Display.Lines[0])
}

func TestRedirectLogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chaininsight.log")

	f, err := redirectLogs(path)
	require.NoError(t, err)
	defer func() {
		_, _ = loggo.ReplaceDefaultWriter(loggo.NewSimpleWriter(os.Stderr, loggo.DefaultFormatter))
		_ = f.Close()
	}()

	log.Warningf("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestRunExitCodes(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "chaininsight.json")

	assert.Equal(t, 0, run([]string{"-version"}))
	assert.Equal(t, 2, run([]string{"-no-such-flag"}))

	assert.Equal(t, 1, run([]string{"-config", cfgPath, "-restore"}))
	assert.Equal(t, 0, run([]string{"-config", cfgPath, "-init"}))
	assert.Equal(t, 0, run([]string{"-config", cfgPath, "-init"}))
	assert.Equal(t, 0, run([]string{"-config", cfgPath, "-restore"}))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	assert.Equal(t, 1, run([]string{"-config", bad}))
}

func TestRunSelfTestMode(t *testing.T) {
	mainnet := chainIDServer(t, "0x2105")
	sepolia := chainIDServer(t, "0x14a34")
	dir := t.TempDir()

	cfg := config.Default()
	cfg.RPCOverrides = map[string]string{"base": mainnet.URL, "base-sepolia": sepolia.URL}
	good := filepath.Join(dir, "good.json")
	require.NoError(t, config.SaveConfig(cfg, good))
	assert.Equal(t, 0, run([]string{"-config", good, "-test", "-json"}))

	cfg.RPCOverrides["base"] = sepolia.URL
	mismatched := filepath.Join(dir, "mismatched.json")
	require.NoError(t, config.SaveConfig(cfg, mismatched))
	assert.Equal(t, 1, run([]string{"-config", mismatched, "-t"}))
}
