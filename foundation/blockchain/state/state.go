// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
	"github.com/ardanlabs/coin/foundation/blockchain/genesis"
	"github.com/ardanlabs/coin/foundation/blockchain/pow"
	"github.com/ardanlabs/coin/foundation/blockchain/signature"
)

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for sharing new blocks and transactions with
// the network.
type Worker interface {
	Shutdown()
	SignalShareBlock(block database.Block)
	SignalShareTx(tx database.Transaction)
}

// noWorker is used until a worker registers itself with the state.
type noWorker struct{}

func (noWorker) Shutdown()                          {}
func (noWorker) SignalShareBlock(database.Block)    {}
func (noWorker) SignalShareTx(database.Transaction) {}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Genesis     genesis.Genesis
	BlockStore  database.BlockStore
	TxStore     database.TransactionStore
	ProofOfWork pow.ProofOfWork
	Scheme      signature.Scheme
	EvHandler   EventHandler
}

// State manages the blockchain database.
type State struct {
	mu sync.Mutex

	genesis   genesis.Genesis
	blocks    database.BlockStore
	pool      database.TransactionStore
	pow       pow.ProofOfWork
	scheme    signature.Scheme
	evHandler EventHandler

	Worker Worker
}

// New constructs a new blockchain for data management and initializes the
// stores with the genesis block when they are empty.
func New(cfg Config) (*State, error) {
	if cfg.BlockStore == nil || cfg.TxStore == nil {
		return nil, errors.New("block store and transaction store are required")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	proof := cfg.ProofOfWork
	if proof == nil {
		var err error
		if proof, err = pow.New(cfg.Genesis.ProofOfWork, ev); err != nil {
			return nil, err
		}
	}

	scheme := cfg.Scheme
	if scheme == nil {
		var err error
		if scheme, err = signature.SchemeByName(cfg.Genesis.SignatureScheme); err != nil {
			return nil, err
		}
	}

	state := State{
		genesis:   cfg.Genesis,
		blocks:    cfg.BlockStore,
		pool:      cfg.TxStore,
		pow:       proof,
		scheme:    scheme,
		evHandler: ev,
		Worker:    noWorker{},
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	if err := state.Init(); err != nil {
		return nil, err
	}

	return &state, nil
}

// Init writes the genesis block when the chain is empty, confirms the stored
// root matches the configured genesis block otherwise, and drops pending
// transactions that can never be mined on the stored chain.
func (s *State) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	gen := s.genesis.GenesisBlock.Seal()

	length, err := s.blocks.Length()
	if err != nil {
		return err
	}

	switch length {
	case 0:
		s.evHandler("state: Init: write genesis block: blk[%s]", gen.Hash)
		if err := s.blocks.Add(gen); err != nil {
			return fmt.Errorf("writing genesis block: %w", err)
		}

	default:
		root, err := s.blocks.ByIndex(0)
		if err != nil {
			return fmt.Errorf("reading genesis block: %w", err)
		}
		if root.ComputeHash() != gen.Hash {
			return database.NewChainError("stored genesis block does not match, got %s, exp %s", root.ComputeHash(), gen.Hash)
		}
	}

	l, err := s.storedLedger()
	if err != nil {
		return err
	}

	return s.purgePool(l, "Init")
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	s.Worker.Shutdown()

	// Make sure the database is properly closed.
	return s.blocks.Close()
}

// =============================================================================

// ledger is a view of the recorded transactions and spent outputs of a
// chain that transactions are checked against.
type ledger struct {
	txIDs map[string]struct{}
	spent map[string]struct{}
}

// newLedger constructs the view for the specified blocks.
func newLedger(blocks ...database.Block) ledger {
	l := ledger{
		txIDs: make(map[string]struct{}),
		spent: make(map[string]struct{}),
	}
	for _, b := range blocks {
		l.add(b)
	}
	return l
}

// add records the transactions and inputs of the block.
func (l ledger) add(block database.Block) {
	for _, tx := range block.Transactions {
		l.txIDs[tx.ID] = struct{}{}
		for _, in := range tx.Data.Inputs {
			l.spent[in.Key()] = struct{}{}
		}
	}
}

// storedLedger builds the view of the stored chain.
func (s *State) storedLedger() (ledger, error) {
	blocks, err := s.readChain()
	if err != nil {
		return ledger{}, err
	}

	return newLedger(blocks...), nil
}

// readChain reads every stored block in order.
func (s *State) readChain() ([]database.Block, error) {
	var blocks []database.Block

	iter := s.blocks.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	return blocks, nil
}
