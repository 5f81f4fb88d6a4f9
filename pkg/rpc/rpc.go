package rpc

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/juju/loggo/v2"
	"golang.org/x/sync/errgroup"

	"chaininsight/pkg/metrics"
	"chaininsight/pkg/models"
	"chaininsight/pkg/network"
)

var log = loggo.GetLogger("chaininsight.rpc")

// ValidationError is returned for malformed input before any network call.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

var ErrInvalidAddress = &ValidationError{Msg: "Invalid address"}

// ErrReaderClosed is returned by a Reader after Close.
var ErrReaderClosed = errors.New("chain reader closed")

// Client is the subset of *ethclient.Client the reader needs.
type Client interface {
	BlockNumber(ctx context.Context) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

// Dialer opens a Client for an RPC endpoint.
type Dialer func(ctx context.Context, url string) (Client, error)

// DialEthClient is the default Dialer.
func DialEthClient(ctx context.Context, url string) (Client, error) {
	c, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Reader issues read-only queries against one network. The underlying
// client is dialed on first use and reused until Close.
type Reader struct {
	net  network.Descriptor
	dial Dialer

	mu     sync.Mutex
	client Client
	closed bool
}

func NewReader(net network.Descriptor, dial Dialer) *Reader {
	if dial == nil {
		dial = DialEthClient
	}
	return &Reader{net: net, dial: dial}
}

func (r *Reader) Network() network.Descriptor {
	return r.net
}

func (r *Reader) clientFor(ctx context.Context) (Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrReaderClosed
	}
	if r.client != nil {
		return r.client, nil
	}
	c, err := r.dial(ctx, r.net.RPCURL)
	if err != nil {
		return nil, err
	}
	log.Debugf("dialed %v for %v", r.net.RPCURL, r.net.Label)
	r.client = c
	return c, nil
}

// Close releases the cached client. Reads on a closed reader fail with
// ErrReaderClosed and never dial again.
func (r *Reader) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.client != nil {
		r.client.Close()
		r.client = nil
	}
}

// ReadAccountSnapshot fetches the block height and the balance of address
// concurrently. Both must succeed.
func (r *Reader) ReadAccountSnapshot(ctx context.Context, address string) (models.AccountSnapshot, error) {
	c, err := r.clientFor(ctx)
	if err != nil {
		return models.AccountSnapshot{}, err
	}
	account := common.HexToAddress(address)

	var (
		blockNumber uint64
		balance     *big.Int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		n, err := c.BlockNumber(gctx)
		metrics.ObserveRPC("eth_blockNumber", start, err)
		blockNumber = n
		return err
	})
	g.Go(func() error {
		start := time.Now()
		b, err := c.BalanceAt(gctx, account, nil)
		metrics.ObserveRPC("eth_getBalance", start, err)
		balance = b
		return err
	})
	if err := g.Wait(); err != nil {
		return models.AccountSnapshot{}, err
	}
	return models.AccountSnapshot{BlockNumber: blockNumber, Balance: balance}, nil
}

// ReadLatestBlock returns number, timestamp and gas used of the latest block.
func (r *Reader) ReadLatestBlock(ctx context.Context) (models.BlockStats, error) {
	c, err := r.clientFor(ctx)
	if err != nil {
		return models.BlockStats{}, err
	}
	start := time.Now()
	h, err := c.HeaderByNumber(ctx, nil)
	metrics.ObserveRPC("eth_getBlockByNumber", start, err)
	if err != nil {
		return models.BlockStats{}, err
	}
	return models.BlockStats{
		Number:    h.Number.Uint64(),
		Timestamp: h.Time,
		GasUsed:   h.GasUsed,
	}, nil
}

// ReadAddressBalance validates address and returns its balance in wei.
func (r *Reader) ReadAddressBalance(ctx context.Context, address string) (*big.Int, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}
	c, err := r.clientFor(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	bal, err := c.BalanceAt(ctx, common.HexToAddress(address), nil)
	metrics.ObserveRPC("eth_getBalance", start, err)
	return bal, err
}

// ValidateAddress accepts 0x-prefixed 20-byte hex addresses that are either
// all lowercase or carry a valid EIP-55 checksum.
func ValidateAddress(address string) error {
	if len(address) != 2+2*common.AddressLength || address[:2] != "0x" || !common.IsHexAddress(address) {
		return ErrInvalidAddress
	}
	if strings.ToLower(address) == address {
		return nil
	}
	if common.HexToAddress(address).Hex() != address {
		return ErrInvalidAddress
	}
	return nil
}

// CheckEndpoint dials net's RPC URL, measures the eth_chainId round trip and
// compares the answer with the descriptor.
func CheckEndpoint(ctx context.Context, net network.Descriptor, dial Dialer) models.EndpointResult {
	if dial == nil {
		dial = DialEthClient
	}
	res := models.EndpointResult{
		Network:         net.Label,
		URL:             net.RPCURL,
		ExpectedChainID: net.ChainID,
	}
	start := time.Now()
	c, err := dial(ctx, net.RPCURL)
	if err != nil {
		res.Status = "error"
		res.Error = err.Error()
		return res
	}
	defer c.Close()

	id, err := c.ChainID(ctx)
	metrics.ObserveRPC("eth_chainId", start, err)
	if err != nil {
		res.Status = "error"
		res.Error = err.Error()
		return res
	}
	res.LatencyMillis = time.Since(start).Milliseconds()
	res.ObservedChainID = id.Int64()
	if id.Cmp(net.ChainIDBig()) != 0 {
		res.Status = "error"
		res.Error = "chain id mismatch"
		return res
	}
	res.Status = "ok"
	return res
}
