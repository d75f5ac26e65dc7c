// Package node implements the peer synchronization protocol. A node knows
// its own url and a set of peers and reconciles its chain with the blocks
// and transactions the peers share with it.
package node

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/ardanlabs/coin/foundation/blockchain/peer"
	"github.com/ardanlabs/coin/foundation/blockchain/state"
)

// defaultTimeout bounds every request made to a peer.
const defaultTimeout = 5 * time.Second

// EventHandler defines a function that is called when events occur in the
// processing of peer exchanges.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start the node.
type Config struct {
	Self      string
	State     *state.State
	Timeout   time.Duration
	EvHandler EventHandler
}

// Node manages the peers of the blockchain and the exchanges with them.
type Node struct {
	self      peer.Peer
	state     *state.State
	peers     *peer.PeerSet
	client    http.Client
	evHandler EventHandler

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// New constructs a node for the state. Peer exchanges are bound to a base
// context that Shutdown cancels.
func New(cfg Config) (*Node, error) {
	if cfg.Self == "" {
		return nil, errors.New("node url is required")
	}
	if cfg.State == nil {
		return nil, errors.New("state is required")
	}

	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	n := Node{
		self:      peer.New(cfg.Self),
		state:     cfg.State,
		peers:     peer.NewPeerSet(),
		client:    http.Client{Timeout: timeout},
		evHandler: ev,
		ctx:       ctx,
		cancel:    cancel,
	}

	return &n, nil
}

// Self returns the peer value that identifies this node.
func (n *Node) Self() peer.Peer {
	return n.self
}

// State returns the blockchain managed by the node.
func (n *Node) State() *state.State {
	return n.state
}

// Peers returns the known peers, never including this node.
func (n *Node) Peers() []peer.Peer {
	return n.peers.Copy(n.self.URL)
}

// AddPeer registers the peer without any exchange. It reports false when
// the peer is known or is this node.
func (n *Node) AddPeer(pr peer.Peer) bool {
	if pr.URL == "" || pr.Match(n.self.URL) {
		return false
	}

	return n.peers.Add(pr)
}

// Wait blocks until every exchange started so far has completed.
func (n *Node) Wait() {
	n.wg.Wait()
}

// Shutdown abandons the exchanges in flight and waits for them to return.
// No new exchange is started after it is called.
func (n *Node) Shutdown() {
	n.evHandler("node: shutdown: started")
	defer n.evHandler("node: shutdown: completed")

	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()

	n.cancel()
	n.wg.Wait()
}

// =============================================================================

// async runs the exchange in its own goroutine. Failures are logged and
// never reach the caller.
func (n *Node) async(name string, f func(ctx context.Context) error) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.wg.Add(1)
	n.mu.Unlock()

	go func() {
		defer n.wg.Done()

		if err := f(n.ctx); err != nil {
			n.evHandler("node: %s: WARNING: %s", name, err)
		}
	}()
}

// broadcast runs the exchange against every known peer except the ones
// specified.
func (n *Node) broadcast(name string, f func(ctx context.Context, pr peer.Peer) error, except ...peer.Peer) {
	for _, pr := range n.Peers() {
		if skip(pr, except) {
			continue
		}

		pr := pr
		n.async(name+": peer["+pr.URL+"]", func(ctx context.Context) error {
			return f(ctx, pr)
		})
	}
}

func skip(pr peer.Peer, except []peer.Peer) bool {
	for _, e := range except {
		if pr.Match(e.URL) {
			return true
		}
	}
	return false
}
