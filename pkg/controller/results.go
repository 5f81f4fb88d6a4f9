package controller

import (
	"fmt"
	"math/big"

	"chaininsight/pkg/models"
	"chaininsight/pkg/network"
	"chaininsight/pkg/utils"
)

// Result is the outcome of a successful action.
type Result interface {
	Lines() []string
}

type ConnectResult struct {
	Network  network.Descriptor
	Session  models.Session
	Snapshot models.AccountSnapshot
}

func (r *ConnectResult) Lines() []string {
	return []string{
		"Connected",
		fmt.Sprintf("Network: %s", r.Network.Label),
		fmt.Sprintf("chainId: %d", r.Session.ChainID),
		fmt.Sprintf("Address: %s", r.Session.Address),
		fmt.Sprintf("ETH balance: %s ETH", utils.FormatEther(r.Snapshot.Balance)),
		fmt.Sprintf("Latest block: %d", r.Snapshot.BlockNumber),
		fmt.Sprintf("Explorer: %s", r.Network.AddressURL(r.Session.Address)),
	}
}

type ToggleResult struct {
	Network network.Descriptor
}

func (r *ToggleResult) Lines() []string {
	return []string{fmt.Sprintf("Network switched to %s. Reconnect wallet.", r.Network.Label)}
}

type BlockResult struct {
	Network network.Descriptor
	Stats   models.BlockStats
}

func (r *BlockResult) Lines() []string {
	return []string{
		"Block Stats",
		fmt.Sprintf("Network: %s", r.Network.Label),
		fmt.Sprintf("Block number: %d", r.Stats.Number),
		fmt.Sprintf("Timestamp: %d", r.Stats.Timestamp),
		fmt.Sprintf("Gas used: %d", r.Stats.GasUsed),
		fmt.Sprintf("Explorer: %s", r.Network.BlockURL(r.Stats.Number)),
	}
}

type BalanceResult struct {
	Network network.Descriptor
	Address string
	Balance *big.Int
}

func (r *BalanceResult) Lines() []string {
	return []string{
		"Address Balance",
		fmt.Sprintf("Network: %s", r.Network.Label),
		fmt.Sprintf("Address: %s", r.Address),
		fmt.Sprintf("ETH balance: %s ETH", utils.FormatEther(r.Balance)),
		fmt.Sprintf("Explorer: %s", r.Network.AddressURL(r.Address)),
	}
}

// ReadyLines is the initial display.
func ReadyLines(net network.Descriptor) []string {
	return []string{
		"Ready.",
		fmt.Sprintf("Active network: %s (chainId %d)", net.Label, net.ChainID),
		"Connect wallet to begin.",
	}
}

// PendingLines is shown while action is in flight.
func PendingLines(action Action) []string {
	switch action {
	case ActionConnect:
		return []string{"Connecting wallet…"}
	case ActionBlockStats:
		return []string{"Fetching block stats…"}
	case ActionBalance:
		return []string{"Reading address balance…"}
	}
	return nil
}

// Render turns an action outcome into display lines. Any error becomes a
// single "Error: <message>" line.
func Render(res Result, err error) []string {
	if err != nil {
		return []string{fmt.Sprintf("Error: %s", err.Error())}
	}
	if res == nil {
		return nil
	}
	return res.Lines()
}

// ExplorerLink returns the explorer URL a result points at, if any.
func ExplorerLink(res Result) string {
	switch r := res.(type) {
	case *ConnectResult:
		return r.Network.AddressURL(r.Session.Address)
	case *BlockResult:
		return r.Network.BlockURL(r.Stats.Number)
	case *BalanceResult:
		return r.Network.AddressURL(r.Address)
	}
	return ""
}
