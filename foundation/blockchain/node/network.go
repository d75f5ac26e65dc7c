package node

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
	"github.com/ardanlabs/coin/foundation/blockchain/peer"
)

// Routes of the private api every node exposes to its peers.
const (
	routeLatestBlock      = "/v1/blockchain/blocks/latest"
	routeBlocks           = "/v1/blockchain/blocks"
	routeBlockTransaction = "/v1/blockchain/blocks/transactions/%s"
	routeTransactions     = "/v1/blockchain/transactions"
	routePeers            = "/v1/node/peers"
)

// BroadcastBlock proposes the block to every known peer as its new latest
// block.
func (n *Node) BroadcastBlock(block database.Block) {
	n.evHandler("node: BroadcastBlock: blk[%s]", block)

	n.broadcast("BroadcastBlock", func(ctx context.Context, pr peer.Peer) error {
		return n.send(ctx, http.MethodPut, pr.URL+routeLatestBlock, block, nil)
	})
}

// BroadcastLatestBlock proposes the local latest block to every known peer.
func (n *Node) BroadcastLatestBlock() {
	latest, err := n.state.LatestBlock()
	if err != nil {
		n.evHandler("node: BroadcastLatestBlock: WARNING: %s", err)
		return
	}

	n.BroadcastBlock(latest)
}

// BroadcastTransaction shares the transaction with every known peer.
func (n *Node) BroadcastTransaction(tx database.Transaction) {
	n.evHandler("node: BroadcastTransaction: tx[%s]", tx)

	n.broadcast("BroadcastTransaction", func(ctx context.Context, pr peer.Peer) error {
		return n.send(ctx, http.MethodPost, pr.URL+routeTransactions, tx, nil)
	})
}

// BroadcastPeer introduces the peer to every other known peer.
func (n *Node) BroadcastPeer(newPeer peer.Peer) {
	n.evHandler("node: BroadcastPeer: peer[%s]", newPeer.URL)

	n.broadcast("BroadcastPeer", func(ctx context.Context, pr peer.Peer) error {
		return n.send(ctx, http.MethodPost, pr.URL+routePeers, newPeer, nil)
	}, newPeer)
}

// RequestChains asks every known peer for its full chain and reconciles
// each answer with the local chain.
func (n *Node) RequestChains() {
	n.evHandler("node: RequestChains: started")

	n.broadcast("RequestChains", func(ctx context.Context, pr peer.Peer) error {
		var blocks []database.Block
		if err := n.send(ctx, http.MethodGet, pr.URL+routeBlocks, nil, &blocks); err != nil {
			return err
		}

		outcome, err := n.CheckReceivedBlocks(blocks)
		if err != nil {
			return err
		}

		n.evHandler("node: RequestChains: peer[%s]: blocks[%d]: %s", pr.URL, len(blocks), outcome)
		return nil
	})
}

// =============================================================================

// announce registers this node with the peer.
func (n *Node) announce(ctx context.Context, pr peer.Peer) error {
	return n.send(ctx, http.MethodPost, pr.URL+routePeers, n.self, nil)
}

// latestBlock asks the peer for its latest block.
func (n *Node) latestBlock(ctx context.Context, pr peer.Peer) (database.Block, error) {
	var block database.Block
	if err := n.send(ctx, http.MethodGet, pr.URL+routeLatestBlock, nil, &block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// pendingTransactions asks the peer for its pending transactions.
func (n *Node) pendingTransactions(ctx context.Context, pr peer.Peer) ([]database.Transaction, error) {
	var txs []database.Transaction
	if err := n.send(ctx, http.MethodGet, pr.URL+routeTransactions, nil, &txs); err != nil {
		return nil, err
	}

	return txs, nil
}

// blockTransaction asks the peer for a transaction recorded in its chain.
func (n *Node) blockTransaction(ctx context.Context, pr peer.Peer, id string) (database.Transaction, error) {
	var tx database.Transaction
	if err := n.send(ctx, http.MethodGet, pr.URL+fmt.Sprintf(routeBlockTransaction, id), nil, &tx); err != nil {
		return database.Transaction{}, err
	}

	return tx, nil
}

// send is a helper function to send an HTTP request to a node. Any status
// outside the 2xx range is returned as an error carrying the response body.
func (n *Node) send(ctx context.Context, method string, url string, dataSend any, dataRecv any) error {
	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if dataSend != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if err != nil {
			return err
		}
		return fmt.Errorf("%s %s: status %d: %s", method, url, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if dataRecv == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
		return fmt.Errorf("decoding response from %s: %w", url, err)
	}

	return nil
}
