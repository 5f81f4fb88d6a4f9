package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworks(t *testing.T) {
	nets := Networks()
	require.Len(t, nets, 2)
	assert.Equal(t, BaseMainnetChainID, nets[0].ChainID)
	assert.Equal(t, BaseSepoliaChainID, nets[1].ChainID)
	assert.NotEqual(t, nets[0].ChainID, nets[1].ChainID)

	// Callers must not be able to mutate the registry.
	nets[0].Label = "changed"
	assert.Equal(t, "Base Mainnet", Networks()[0].Label)
}

func TestDefault(t *testing.T) {
	assert.Equal(t, "Base Sepolia", Default().Label)
}

func TestToggleAlternates(t *testing.T) {
	cur := Default()
	seen := map[int64]int{}
	for i := 0; i < 9; i++ {
		next := Toggle(cur)
		assert.NotEqual(t, cur.ChainID, next.ChainID)
		seen[next.ChainID]++
		cur = next
	}
	assert.Len(t, seen, 2)
	assert.Equal(t, 5, seen[BaseMainnetChainID])
	assert.Equal(t, 4, seen[BaseSepoliaChainID])
}

func TestToggleUnknownFallsBackToSepolia(t *testing.T) {
	assert.Equal(t, BaseSepoliaChainID, Toggle(Descriptor{ChainID: 1}).ChainID)
}

func TestByKey(t *testing.T) {
	d, err := ByKey("BASE")
	require.NoError(t, err)
	assert.Equal(t, BaseMainnetChainID, d.ChainID)

	_, err = ByKey("optimism")
	assert.Error(t, err)
}

func TestExplorerURLs(t *testing.T) {
	d := Default()
	assert.Equal(t, "https://sepolia.basescan.org/block/12345", d.BlockURL(12345))
	assert.Equal(t, "https://sepolia.basescan.org/address/0xabc", d.AddressURL("0xabc"))

	d.ExplorerURL = "https://example.org/"
	assert.Equal(t, "https://example.org/block/1", d.BlockURL(1))
}

func TestWithRPC(t *testing.T) {
	d := Default()
	assert.Equal(t, d.RPCURL, d.WithRPC("  ").RPCURL)

	o := d.WithRPC("http://localhost:8545")
	assert.Equal(t, "http://localhost:8545", o.RPCURL)
	assert.Equal(t, d.ChainID, o.ChainID)
	assert.Equal(t, "https://sepolia.base.org", Default().RPCURL)
}
