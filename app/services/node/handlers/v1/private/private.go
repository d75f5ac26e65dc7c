// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ardanlabs/coin/business/sys/validate"
	"github.com/ardanlabs/coin/business/web/errs"
	"github.com/ardanlabs/coin/foundation/blockchain/database"
	"github.com/ardanlabs/coin/foundation/blockchain/node"
	"github.com/ardanlabs/coin/foundation/blockchain/peer"
	"github.com/ardanlabs/coin/foundation/web"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log  *zap.SugaredLogger
	Node *node.Node
}

// Blocks returns the full chain.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks, err := h.Node.State().Blocks()
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// LatestBlock returns the tip of the chain.
func (h Handlers) LatestBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.Node.State().LatestBlock()
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// ProposeBlock takes a block received from a peer and reconciles it with
// the local chain.
func (h Handlers) ProposeBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var block database.Block
	if err := web.Decode(r, &block); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	outcome, err := h.Node.CheckReceivedBlocks([]database.Block{block})
	if err != nil {
		return trusted(err)
	}

	h.Log.Infow("propose block", "traceid", v.TraceID, "index", block.Index, "hash", block.Hash, "outcome", outcome)

	switch outcome {
	case node.Appended, node.Replaced:
		return web.Respond(ctx, w, block, http.StatusOK)

	case node.Requested:
		resp := struct {
			Status string `json:"status"`
		}{
			Status: "block ahead of the local chain, chains requested from peers",
		}
		return web.Respond(ctx, w, resp, http.StatusAccepted)

	default:
		return errs.NewTrusted(fmt.Errorf("block %d is not ahead of the local chain", block.Index), http.StatusConflict)
	}
}

// BlockByIndex returns the block at the specified index.
func (h Handlers) BlockByIndex(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	index, err := strconv.ParseUint(web.Param(r, "index"), 10, 64)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid index: %w", err), http.StatusBadRequest)
	}

	block, err := h.Node.State().BlockByIndex(index)
	if err != nil {
		return trusted(err)
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// BlockByHash returns the block with the specified hash.
func (h Handlers) BlockByHash(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.Node.State().BlockByHash(web.Param(r, "hash"))
	if err != nil {
		return trusted(err)
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// BlockTransaction returns a transaction recorded in the chain.
func (h Handlers) BlockTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	tx, err := h.Node.State().TransactionFromBlocks(web.Param(r, "id"))
	if err != nil {
		return trusted(err)
	}

	return web.Respond(ctx, w, tx, http.StatusOK)
}

// PendingTransactions returns the transactions waiting to be mined.
func (h Handlers) PendingTransactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	txs, err := h.Node.State().PendingTransactions()
	if err != nil {
		return err
	}

	if txs == nil {
		txs = []database.Transaction{}
	}

	return web.Respond(ctx, w, txs, http.StatusOK)
}

// AddTransaction adds a transaction to the pending pool.
func (h Handlers) AddTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tx database.Transaction
	if err := web.Decode(r, &tx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("add tran", "traceid", v.TraceID, "tx", tx.ID, "type", tx.Type, "inputs", len(tx.Data.Inputs), "outputs", len(tx.Data.Outputs))

	if err := h.Node.State().AddTransaction(tx); err != nil {
		return trusted(err)
	}

	return web.Respond(ctx, w, tx, http.StatusCreated)
}

// UnspentOutputs returns the outputs of the address not spent in the chain.
func (h Handlers) UnspentOutputs(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address, err := hexutil.Decode(web.Param(r, "address"))
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid address: %w", err), http.StatusBadRequest)
	}

	utxo, err := h.Node.State().UnspentOutputsForAddress(address)
	if err != nil {
		return err
	}

	if utxo == nil {
		utxo = []database.TransactionItem{}
	}

	return web.Respond(ctx, w, utxo, http.StatusOK)
}

// Peers returns the known peers.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Node.Peers(), http.StatusOK)
}

// ConnectPeer registers a peer announcing itself or introduced by another
// peer.
func (h Handlers) ConnectPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var pr peer.Peer
	if err := web.Decode(r, &pr); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(pr); err != nil {
		return err
	}

	added := h.Node.ConnectToPeers([]peer.Peer{pr})

	h.Log.Infow("connect peer", "traceid", v.TraceID, "peer", pr.URL, "added", added)

	resp := struct {
		Added int `json:"added"`
	}{
		Added: added,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

// trusted maps the errors of the ledger to the status the client sees.
func trusted(err error) error {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return errs.NewTrusted(err, http.StatusNotFound)
	case database.IsChainError(err), database.IsBlockError(err):
		return errs.NewTrusted(err, http.StatusConflict)
	case database.IsTxError(err):
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return err
}
