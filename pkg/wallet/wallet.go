// Package wallet connects to an EIP-1193 style wallet endpoint and turns the
// answer into a session.
package wallet

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/juju/loggo/v2"

	"chaininsight/pkg/config"
	"chaininsight/pkg/metrics"
	"chaininsight/pkg/models"
	"chaininsight/pkg/network"
)

var log = loggo.GetLogger("chaininsight.wallet")

// ConnectionError reports a wallet that answered but gave no usable account.
type ConnectionError struct {
	Msg string
}

func (e *ConnectionError) Error() string { return e.Msg }

var ErrNoAddress = &ConnectionError{Msg: "No address returned from wallet"}

// Provider is the wallet capability consumed by Connect.
type Provider interface {
	RequestAccounts(ctx context.Context) ([]string, error)
	ChainID(ctx context.Context) (string, error)
	Close()
}

// Factory builds a fresh provider for one connection attempt.
type Factory func(ctx context.Context, app config.AppIdentity, net network.Descriptor) (Provider, error)

// RPCProvider talks to a wallet over JSON-RPC.
type RPCProvider struct {
	client  *rpc.Client
	chainID int64
}

// NewRPCFactory returns a Factory dialing walletURL, or the network's own RPC
// endpoint when walletURL is empty.
func NewRPCFactory(walletURL string) Factory {
	return func(ctx context.Context, app config.AppIdentity, net network.Descriptor) (Provider, error) {
		url := walletURL
		if url == "" {
			url = net.RPCURL
		}
		return DialRPCProvider(ctx, url, app, net.ChainID)
	}
}

func DialRPCProvider(ctx context.Context, url string, app config.AppIdentity, chainID int64) (*RPCProvider, error) {
	c, err := rpc.DialOptions(ctx, url,
		rpc.WithHeader("X-App-Name", app.Name),
		rpc.WithHeader("X-App-Logo", app.LogoURL),
		rpc.WithHeader("X-Chain-Id", strconv.FormatInt(chainID, 10)),
	)
	if err != nil {
		return nil, err
	}
	log.Debugf("wallet provider dialed %v for chain %v", url, chainID)
	return &RPCProvider{client: c, chainID: chainID}, nil
}

func (p *RPCProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	start := time.Now()
	var accounts []string
	err := p.client.CallContext(ctx, &accounts, "eth_requestAccounts")
	metrics.ObserveRPC("eth_requestAccounts", start, err)
	return accounts, err
}

func (p *RPCProvider) ChainID(ctx context.Context) (string, error) {
	start := time.Now()
	var id string
	err := p.client.CallContext(ctx, &id, "eth_chainId")
	metrics.ObserveRPC("eth_chainId", start, err)
	return id, err
}

// ConfiguredChainID is the chain the provider was constructed for.
func (p *RPCProvider) ConfiguredChainID() int64 {
	return p.chainID
}

func (p *RPCProvider) Close() {
	p.client.Close()
}

// Connect requests account access and reads the wallet's chain id. The
// reported chain id is not checked against net.
func Connect(ctx context.Context, factory Factory, app config.AppIdentity, net network.Descriptor) (models.Session, error) {
	p, err := factory(ctx, app, net)
	if err != nil {
		return models.Session{}, err
	}
	defer p.Close()

	accounts, err := p.RequestAccounts(ctx)
	if err != nil {
		return models.Session{}, err
	}
	if len(accounts) == 0 || accounts[0] == "" {
		return models.Session{}, ErrNoAddress
	}

	hexID, err := p.ChainID(ctx)
	if err != nil {
		return models.Session{}, err
	}
	chainID, err := ParseChainID(hexID)
	if err != nil {
		return models.Session{}, err
	}

	if chainID != net.ChainID {
		log.Warningf("wallet reports chain %d while %v is active", chainID, net)
	}
	log.Infof("connected %v on chain %d", accounts[0], chainID)
	return models.Session{Address: accounts[0], ChainID: chainID}, nil
}

// ParseChainID parses a hex chain id, with or without 0x prefix. Leading
// zeros are accepted.
func ParseChainID(s string) (int64, error) {
	h := strings.TrimSpace(s)
	h = strings.TrimPrefix(strings.TrimPrefix(h, "0x"), "0X")
	if h == "" {
		return 0, fmt.Errorf("invalid chain id %q", s)
	}
	id, err := strconv.ParseInt(h, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chain id %q", s)
	}
	return id, nil
}
