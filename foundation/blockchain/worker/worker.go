// Package worker implements mining, peer updates, and block and transaction
// sharing for the blockchain.
package worker

import (
	"sync"
	"time"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
	"github.com/ardanlabs/coin/foundation/blockchain/node"
	"github.com/ardanlabs/coin/foundation/blockchain/state"
)

// defaultSyncInterval represents the interval of pulling the latest block
// and the pending transactions of every peer.
const defaultSyncInterval = time.Minute

// maxShareRequests represents the max number of pending network share
// requests of each kind that can be outstanding before share requests are
// dropped.
const maxShareRequests = 100

// Config represents the configuration of the background operations.
type Config struct {
	SyncInterval  time.Duration
	RewardAddress []byte
	EvHandler     state.EventHandler
}

// =============================================================================

// Worker manages the background workflows for the node.
type Worker struct {
	node          *node.Node
	state         *state.State
	rewardAddress []byte
	wg            sync.WaitGroup
	ticker        *time.Ticker
	shut          chan struct{}
	startMining   chan bool
	cancelMining  chan bool
	txSharing     chan database.Transaction
	blockSharing  chan database.Block
	evHandler     state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes. Mining only runs when a reward
// address is configured.
func Run(n *node.Node, cfg Config) {
	ev := cfg.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	interval := cfg.SyncInterval
	if interval <= 0 {
		interval = defaultSyncInterval
	}

	w := Worker{
		node:          n,
		state:         n.State(),
		rewardAddress: cfg.RewardAddress,
		ticker:        time.NewTicker(interval),
		shut:          make(chan struct{}),
		startMining:   make(chan bool, 1),
		cancelMining:  make(chan bool, 1),
		txSharing:     make(chan database.Transaction, maxShareRequests),
		blockSharing:  make(chan database.Block, maxShareRequests),
		evHandler:     ev,
	}

	// Register this worker with the state package.
	w.state.Worker = &w

	// Update this node before starting any support G's.
	w.node.SyncPeers()

	// Peers behind this node request its chain once they see its tip.
	w.node.BroadcastLatestBlock()

	// Load the set of operations we need to run.
	operations := []func(){
		w.syncOperations,
		w.shareTxOperations,
		w.shareBlockOperations,
	}
	if w.isMining() {
		operations = append(operations, w.miningOperations)
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}

	// Pending transactions from a previous run are mined right away.
	if n, err := w.state.MineableTransactions(); err == nil && n > 0 {
		w.SignalStartMining()
	}
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutines performing work and abandons the
// exchanges with peers in flight.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: stop ticker")
	w.ticker.Stop()

	w.evHandler("worker: shutdown: signal cancel mining")
	w.SignalCancelMining()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()

	w.evHandler("worker: shutdown: stop peer exchanges")
	w.node.Shutdown()
}

// SignalShareBlock queues a block added to the chain to be proposed to the
// peers. Any mining in progress is building on a stale tip, so it is
// cancelled.
func (w *Worker) SignalShareBlock(block database.Block) {
	w.SignalCancelMining()

	select {
	case w.blockSharing <- block:
		w.evHandler("worker: SignalShareBlock: share block signaled")
	default:
		w.evHandler("worker: SignalShareBlock: queue full, block won't be shared.")
	}
}

// SignalShareTx signals a share transaction operation. If maxShareRequests
// signals exist in the channel, we won't send these. A new transaction
// also signals mining.
func (w *Worker) SignalShareTx(tx database.Transaction) {
	select {
	case w.txSharing <- tx:
		w.evHandler("worker: SignalShareTx: share Tx signaled")
	default:
		w.evHandler("worker: SignalShareTx: queue full, transactions won't be shared.")
	}

	w.SignalStartMining()
}

// =============================================================================

// SignalStartMining starts a mining operation. If there is already a signal
// pending in the channel, just return since a mining operation will start.
func (w *Worker) SignalStartMining() {
	if !w.isMining() {
		return
	}

	select {
	case w.startMining <- true:
	default:
	}
	w.evHandler("worker: SignalStartMining: mining signaled")
}

// SignalCancelMining signals the G executing the runMiningOperation function
// to stop immediately.
func (w *Worker) SignalCancelMining() {
	if !w.isMining() {
		return
	}

	select {
	case w.cancelMining <- true:
	default:
	}
	w.evHandler("worker: SignalCancelMining: MINING: CANCEL: signaled")
}

// =============================================================================

// isMining reports whether this node mines blocks on its own.
func (w *Worker) isMining() bool {
	return len(w.rewardAddress) > 0
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
