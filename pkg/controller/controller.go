// Package controller owns the application state (active network, wallet
// session, display) and exposes each user action as a method.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/juju/loggo/v2"

	"chaininsight/pkg/config"
	"chaininsight/pkg/metrics"
	"chaininsight/pkg/models"
	"chaininsight/pkg/network"
	"chaininsight/pkg/rpc"
	"chaininsight/pkg/wallet"
)

var log = loggo.GetLogger("chaininsight.controller")

// Action names a user action.
type Action string

const (
	ActionConnect    Action = "connect"
	ActionToggle     Action = "toggle"
	ActionBlockStats Action = "block_stats"
	ActionBalance    Action = "balance"
)

var (
	ErrNoAddressProvided = errors.New("No address provided")
	ErrNotConnected      = errors.New("Wallet not connected")
	ErrNetworkChanged    = errors.New("Network changed while connecting")
)

// State is a point-in-time copy of the controller state.
type State struct {
	Network   network.Descriptor `json:"network"`
	Session   *models.Session    `json:"session,omitempty"`
	Connected bool               `json:"connected"`
	Display   models.Display     `json:"display"`
}

// Options configures a Controller.
type Options struct {
	App          config.AppIdentity
	Start        network.Descriptor
	RPCOverrides map[string]string
	Wallets      wallet.Factory
	Dial         rpc.Dialer
}

// Controller implements the connect / toggle / query state machine.
type Controller struct {
	app       config.AppIdentity
	overrides map[string]string
	wallets   wallet.Factory
	dial      rpc.Dialer

	mu      sync.RWMutex
	active  network.Descriptor
	session *models.Session
	epoch   uint64 // bumped on every network toggle
	reader  *rpc.Reader
	display models.Display

	subMu       sync.RWMutex
	subscribers []Subscriber
}

func New(opts Options) *Controller {
	if opts.Wallets == nil {
		opts.Wallets = wallet.NewRPCFactory("")
	}
	if opts.Start.ChainID == 0 {
		opts.Start = network.Default()
	}
	c := &Controller{
		app:       opts.App,
		overrides: opts.RPCOverrides,
		wallets:   opts.Wallets,
		dial:      opts.Dial,
	}
	c.active = c.withOverride(opts.Start)
	c.reader = rpc.NewReader(c.active, c.dial)
	c.display = models.Display{Lines: ReadyLines(c.active), UpdatedAt: time.Now()}
	return c
}

func (c *Controller) withOverride(d network.Descriptor) network.Descriptor {
	return d.WithRPC(c.overrides[d.Key])
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	s := State{
		Network:   c.active,
		Connected: c.session != nil,
		Display:   c.display,
	}
	s.Display.Lines = append([]string(nil), c.display.Lines...)
	if c.session != nil {
		sess := *c.session
		s.Session = &sess
	}
	return s
}

// Connected reports whether block stats and balance actions are enabled.
func (c *Controller) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session != nil
}

func (c *Controller) Network() network.Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// Networks returns the registry with RPC overrides applied.
func (c *Controller) Networks() []network.Descriptor {
	nets := network.Networks()
	for i := range nets {
		nets[i] = c.withOverride(nets[i])
	}
	return nets
}

func (c *Controller) Display() models.Display {
	return c.State().Display
}

func (c *Controller) snapshot() (network.Descriptor, *rpc.Reader, uint64, *models.Session) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var sess *models.Session
	if c.session != nil {
		s := *c.session
		sess = &s
	}
	return c.active, c.reader, c.epoch, sess
}

// Connect opens a wallet session on the active network and reads the
// account's balance and the block height. The session is stored only when
// both steps succeed and the network was not toggled in the meantime.
func (c *Controller) Connect(ctx context.Context) (*ConnectResult, error) {
	net, reader, epoch, _ := c.snapshot()

	sess, err := wallet.Connect(ctx, c.wallets, c.app, net)
	if err != nil {
		return nil, err
	}
	snap, err := reader.ReadAccountSnapshot(ctx, sess.Address)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return nil, ErrNetworkChanged
	}
	if err != nil {
		return nil, err
	}
	c.session = &sess
	metrics.Connected.Set(1)

	return &ConnectResult{Network: net, Session: sess, Snapshot: snap}, nil
}

// ToggleNetwork switches to the other network, drops the session and the
// cached chain client. It never fails.
func (c *Controller) ToggleNetwork() *ToggleResult {
	c.mu.Lock()
	c.active = c.withOverride(network.Toggle(c.active))
	c.session = nil
	c.epoch++
	old := c.reader
	c.reader = rpc.NewReader(c.active, c.dial)
	net := c.active
	metrics.Connected.Set(0)
	c.mu.Unlock()

	old.Close()
	log.Infof("network switched to %v", net)
	return &ToggleResult{Network: net}
}

// BlockStats reads the latest block of the active network.
func (c *Controller) BlockStats(ctx context.Context) (*BlockResult, error) {
	net, reader, _, sess := c.snapshot()
	if sess == nil {
		return nil, ErrNotConnected
	}
	stats, err := reader.ReadLatestBlock(ctx)
	if err != nil {
		return nil, err
	}
	return &BlockResult{Network: net, Stats: stats}, nil
}

// ResolveTarget picks the address a balance query applies to: the trimmed
// input if any, otherwise the session address.
func (c *Controller) ResolveTarget(input string) (string, error) {
	if target := strings.TrimSpace(input); target != "" {
		return target, nil
	}
	_, _, _, sess := c.snapshot()
	if sess == nil || sess.Address == "" {
		return "", ErrNoAddressProvided
	}
	return sess.Address, nil
}

// CheckBalance reads the balance of input, or of the session address when
// input is empty. It requires a session either way.
func (c *Controller) CheckBalance(ctx context.Context, input string) (*BalanceResult, error) {
	target, err := c.ResolveTarget(input)
	if err != nil {
		return nil, err
	}
	net, reader, _, sess := c.snapshot()
	if sess == nil {
		return nil, ErrNotConnected
	}
	bal, err := reader.ReadAddressBalance(ctx, target)
	if err != nil {
		return nil, err
	}
	return &BalanceResult{Network: net, Address: target, Balance: bal}, nil
}

// Dispatch runs action, replaces the display with its rendered outcome and
// notifies subscribers. Results of an action that was overtaken by a network
// toggle are dropped.
func (c *Controller) Dispatch(ctx context.Context, action Action, input string) models.Display {
	_, _, epoch, _ := c.snapshot()

	if action == ActionToggle {
		res := c.ToggleNetwork()
		metrics.ObserveAction(string(action), nil)
		_, _, epoch, _ = c.snapshot()
		return c.publish(epoch, Event{Type: EventNetworkChanged, Action: action}, Render(res, nil), false)
	}

	if action == ActionBalance {
		_, err := c.ResolveTarget(input)
		if err == nil && !c.Connected() {
			err = ErrNotConnected
		}
		if err != nil {
			metrics.ObserveAction(string(action), err)
			return c.publish(epoch, Event{Type: EventDisplayUpdated, Action: action}, Render(nil, err), false)
		}
	}

	if pending := PendingLines(action); pending != nil {
		c.publish(epoch, Event{Type: EventDisplayUpdated, Action: action}, pending, true)
	}

	var (
		res Result
		err error
	)
	ev := Event{Type: EventDisplayUpdated, Action: action}
	switch action {
	case ActionConnect:
		var r *ConnectResult
		if r, err = c.Connect(ctx); err == nil {
			res = r
			ev.Type = EventConnected
		}
	case ActionBlockStats:
		var r *BlockResult
		if r, err = c.BlockStats(ctx); err == nil {
			res = r
			stats := r.Stats
			ev.Block = &stats
		}
	case ActionBalance:
		var r *BalanceResult
		if r, err = c.CheckBalance(ctx, input); err == nil {
			res = r
		}
	default:
		err = fmt.Errorf("unknown action %q", action)
	}
	metrics.ObserveAction(string(action), err)
	if err != nil {
		log.Errorf("%v: %v", action, err)
	} else {
		ev.Link = ExplorerLink(res)
	}

	return c.publish(epoch, ev, Render(res, err), false)
}

// publish replaces the display if the network epoch still matches and sends
// ev to subscribers. It returns the display in effect afterwards.
func (c *Controller) publish(epoch uint64, ev Event, lines []string, pending bool) models.Display {
	c.mu.Lock()
	if c.epoch != epoch {
		d := c.display
		c.mu.Unlock()
		log.Debugf("dropping stale %v result", ev.Action)
		return d
	}
	c.display = models.Display{
		Lines:     append([]string(nil), lines...),
		Pending:   pending,
		UpdatedAt: time.Now(),
	}
	ev.State = c.stateLocked()
	c.mu.Unlock()

	ev.ID = newEventID()
	c.notify(ev)
	return ev.State.Display
}

// Close releases the cached chain client and closes all subscribers.
func (c *Controller) Close() {
	c.mu.Lock()
	r := c.reader
	c.mu.Unlock()
	r.Close()

	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, sub := range c.subscribers {
		close(sub)
	}
	c.subscribers = nil
}
