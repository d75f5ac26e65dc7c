package node

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
	"github.com/ardanlabs/coin/foundation/blockchain/peer"
)

// Outcome describes what reconciling received blocks did to the chain.
type Outcome int

// Set of possible outcomes.
const (
	Ignored Outcome = iota
	Appended
	Requested
	Replaced
)

// String implements the fmt.Stringer interface.
func (o Outcome) String() string {
	switch o {
	case Appended:
		return "appended"
	case Requested:
		return "requested"
	case Replaced:
		return "replaced"
	default:
		return "ignored"
	}
}

// =============================================================================

// CheckReceivedBlocks reconciles blocks received from a peer with the local
// chain. Blocks not ahead of the local tip are ignored. A direct successor
// of the tip is appended. A lone block further ahead triggers a request
// for the full chains of the peers without touching the local chain.
// Anything else is treated as a competing chain and replaces the local one
// when it is valid. Validation failures are returned.
func (n *Node) CheckReceivedBlocks(blocks []database.Block) (Outcome, error) {
	if len(blocks) == 0 {
		return Ignored, nil
	}

	sorted := make([]database.Block, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	received := sorted[len(sorted)-1]

	held, err := n.state.LatestBlock()
	if err != nil {
		return Ignored, err
	}

	if received.Index <= held.Index {
		n.evHandler("node: CheckReceivedBlocks: not longer than the local chain: received[%d]: held[%d]", received.Index, held.Index)
		return Ignored, nil
	}

	if held.Hash == received.PreviousHash {
		n.evHandler("node: CheckReceivedBlocks: append successor: blk[%s]", received)
		if err := n.state.AddBlock(received); err != nil {
			return Ignored, err
		}
		return Appended, nil
	}

	if len(sorted) == 1 {
		n.evHandler("node: CheckReceivedBlocks: lone block ahead, request chains: received[%d]: held[%d]", received.Index, held.Index)
		n.RequestChains()
		return Requested, nil
	}

	n.evHandler("node: CheckReceivedBlocks: replace chain: blocks[%d]", len(sorted))
	if err := n.state.ReplaceChain(sorted); err != nil {
		return Ignored, err
	}

	return Replaced, nil
}

// ConnectToPeers registers every peer that is neither known nor this node.
// Each new peer is told about this node, asked for its latest block and
// pending transactions, and introduced to the other known peers. It returns
// the number of peers registered.
func (n *Node) ConnectToPeers(peers []peer.Peer) int {
	var added int

	for _, p := range peers {
		pr := peer.New(p.URL)

		if !n.AddPeer(pr) {
			continue
		}
		added++

		n.evHandler("node: ConnectToPeers: new peer[%s]", pr.URL)

		n.async("ConnectToPeers: peer["+pr.URL+"]", func(ctx context.Context) error {
			if err := n.announce(ctx, pr); err != nil {
				n.evHandler("node: ConnectToPeers: announce: peer[%s]: WARNING: %s", pr.URL, err)
			}
			return n.pull(ctx, pr)
		})

		n.BroadcastPeer(pr)
	}

	return added
}

// SyncPeers pulls the latest block and the pending transactions of every
// known peer.
func (n *Node) SyncPeers() {
	n.evHandler("node: SyncPeers: peers[%d]", len(n.Peers()))

	n.broadcast("SyncPeers", n.pull)
}

// SyncTransactions adds the transactions whose ids are not pending yet.
// Transactions failing validation are logged and skipped. It returns the
// number of transactions added.
func (n *Node) SyncTransactions(txs []database.Transaction) int {
	var added int

	for _, tx := range txs {
		if _, err := n.state.PendingTransaction(tx.ID); err == nil {
			continue
		}

		if err := n.state.AddTransaction(tx); err != nil {
			n.evHandler("node: SyncTransactions: tx[%s]: WARNING: %s", tx, err)
			continue
		}
		added++
	}

	return added
}

// Confirmations counts the nodes holding the transaction in their chain:
// one for this node when it has it plus one per peer that confirms it.
// Peers that fail to answer do not count.
func (n *Node) Confirmations(ctx context.Context, id string) int {
	var count int64
	if _, err := n.state.TransactionFromBlocks(id); err == nil {
		count = 1
	}

	var wg sync.WaitGroup
	for _, pr := range n.Peers() {
		wg.Add(1)
		go func(pr peer.Peer) {
			defer wg.Done()

			if _, err := n.blockTransaction(ctx, pr, id); err != nil {
				n.evHandler("node: Confirmations: peer[%s]: tx[%s]: %s", pr.URL, id, err)
				return
			}
			atomic.AddInt64(&count, 1)
		}(pr)
	}
	wg.Wait()

	return int(count)
}

// =============================================================================

// pull reconciles the latest block and pending transactions of the peer.
func (n *Node) pull(ctx context.Context, pr peer.Peer) error {
	latest, err := n.latestBlock(ctx, pr)
	if err != nil {
		return err
	}

	outcome, err := n.CheckReceivedBlocks([]database.Block{latest})
	if err != nil {
		n.evHandler("node: pull: peer[%s]: latest block: WARNING: %s", pr.URL, err)
	} else {
		n.evHandler("node: pull: peer[%s]: latest block: %s", pr.URL, outcome)
	}

	txs, err := n.pendingTransactions(ctx, pr)
	if err != nil {
		return err
	}

	added := n.SyncTransactions(txs)
	n.evHandler("node: pull: peer[%s]: pending[%d]: added[%d]", pr.URL, len(txs), added)

	return nil
}
