package models

import (
	"math/big"
	"time"
)

// Session is the locally held record of a successful wallet connection.
type Session struct {
	Address string `json:"address"`
	ChainID int64  `json:"chain_id"`
}

// AccountSnapshot is the result of reading an account's balance together
// with the current block height.
type AccountSnapshot struct {
	BlockNumber uint64
	Balance     *big.Int
}

// BlockStats holds metadata of the latest block.
type BlockStats struct {
	Number    uint64 `json:"number"`
	Timestamp uint64 `json:"timestamp"`
	GasUsed   uint64 `json:"gas_used"`
}

// Display is the ordered list of lines currently shown in the output pane.
type Display struct {
	Lines     []string  `json:"lines"`
	Pending   bool      `json:"pending"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EndpointResult holds the self-test result for one network endpoint.
type EndpointResult struct {
	Network         string `json:"network"`
	URL             string `json:"url"`
	Status          string `json:"status"` // "ok" or "error"
	ExpectedChainID int64  `json:"expected_chain_id"`
	ObservedChainID int64  `json:"observed_chain_id,omitempty"`
	LatencyMillis   int64  `json:"latency_ms,omitempty"`
	Error           string `json:"error,omitempty"`
}

// TestReport holds the results of the endpoint self-test.
type TestReport struct {
	ConfigPath string           `json:"config_path"`
	WalletURL  string           `json:"wallet_url,omitempty"`
	Endpoints  []EndpointResult `json:"endpoints"`
	Mismatches []string         `json:"mismatches,omitempty"`
	Healthy    bool             `json:"healthy"`
}
