package network

import (
	"fmt"
	"math/big"
	"strings"
)

const (
	BaseMainnetChainID int64 = 8453
	BaseSepoliaChainID int64 = 84532
)

// Descriptor describes one selectable network.
type Descriptor struct {
	Key         string `json:"key"`
	ChainID     int64  `json:"chain_id"`
	RPCURL      string `json:"rpc_url"`
	ExplorerURL string `json:"explorer_url"`
	Label       string `json:"label"`
	Symbol      string `json:"symbol"`
}

var networks = [2]Descriptor{
	{
		Key:         "base",
		ChainID:     BaseMainnetChainID,
		RPCURL:      "https://mainnet.base.org",
		ExplorerURL: "https://basescan.org",
		Label:       "Base Mainnet",
		Symbol:      "ETH",
	},
	{
		Key:         "base-sepolia",
		ChainID:     BaseSepoliaChainID,
		RPCURL:      "https://sepolia.base.org",
		ExplorerURL: "https://sepolia.basescan.org",
		Label:       "Base Sepolia",
		Symbol:      "ETH",
	},
}

// Networks returns the fixed, ordered network list.
func Networks() []Descriptor {
	out := make([]Descriptor, len(networks))
	copy(out, networks[:])
	return out
}

// Default is the network selected at startup.
func Default() Descriptor {
	return networks[1]
}

// Toggle returns the other of the two networks. It alternates on chain id,
// it is not a rotation over the list.
func Toggle(current Descriptor) Descriptor {
	if current.ChainID == BaseSepoliaChainID {
		return networks[0]
	}
	return networks[1]
}

// ByKey looks up a network by its chain identity key.
func ByKey(key string) (Descriptor, error) {
	for _, n := range networks {
		if strings.EqualFold(n.Key, strings.TrimSpace(key)) {
			return n, nil
		}
	}
	return Descriptor{}, fmt.Errorf("unknown network %q", key)
}

// WithRPC returns a copy of d using rpcURL as its endpoint. An empty url
// leaves d unchanged.
func (d Descriptor) WithRPC(rpcURL string) Descriptor {
	if u := strings.TrimSpace(rpcURL); u != "" {
		d.RPCURL = u
	}
	return d
}

func (d Descriptor) ChainIDBig() *big.Int {
	return big.NewInt(d.ChainID)
}

func (d Descriptor) AddressURL(address string) string {
	return fmt.Sprintf("%s/address/%s", strings.TrimRight(d.ExplorerURL, "/"), address)
}

func (d Descriptor) BlockURL(number uint64) string {
	return fmt.Sprintf("%s/block/%d", strings.TrimRight(d.ExplorerURL, "/"), number)
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s (chainId %d)", d.Label, d.ChainID)
}
