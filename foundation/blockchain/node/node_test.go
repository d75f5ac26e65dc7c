package node_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
	"github.com/ardanlabs/coin/foundation/blockchain/database/storage/memory"
	"github.com/ardanlabs/coin/foundation/blockchain/genesis"
	"github.com/ardanlabs/coin/foundation/blockchain/mempool"
	"github.com/ardanlabs/coin/foundation/blockchain/node"
	"github.com/ardanlabs/coin/foundation/blockchain/peer"
	"github.com/ardanlabs/coin/foundation/blockchain/signature"
	"github.com/ardanlabs/coin/foundation/blockchain/state"
	"github.com/ardanlabs/coin/foundation/blockchain/txbuilder"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const self = "http://localhost:9080"

func newState(t *testing.T) *state.State {
	t.Helper()

	gen := genesis.Default()
	gen.ProofOfWork.Mode = genesis.ModeBypass

	st, err := state.New(state.Config{
		Genesis:    gen,
		BlockStore: memory.NewBlocks(),
		TxStore:    mempool.New(),
	})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %s", err)
	}

	return st
}

func newNode(t *testing.T, st *state.State, ev node.EventHandler) *node.Node {
	t.Helper()

	if ev == nil {
		ev = func(v string, args ...any) { t.Logf(v, args...) }
	}

	n, err := node.New(node.Config{Self: self, State: st, EvHandler: ev})
	if err != nil {
		t.Fatalf("Should be able to construct the node: %s", err)
	}
	t.Cleanup(n.Shutdown)

	return n
}

func newKey(t *testing.T, seed string) (secret []byte, public []byte) {
	t.Helper()

	secret, public, err := signature.Ed25519{}.KeyFromSeed(signature.HashBytes(seed))
	if err != nil {
		t.Fatalf("Should be able to derive keys: %s", err)
	}

	return secret, public
}

// remoteChain mines a chain of the specified number of blocks after genesis
// on a separate state.
func remoteChain(t *testing.T, blocks int) []database.Block {
	t.Helper()

	st := newState(t)
	_, miner := newKey(t, "remote")

	for i := 0; i < blocks; i++ {
		if _, err := st.MineNewBlock(context.Background(), miner); err != nil {
			t.Fatalf("Should be able to mine a block: %s", err)
		}
	}

	chain, err := st.Blocks()
	if err != nil {
		t.Fatalf("Should be able to read the chain: %s", err)
	}

	return chain
}

func length(t *testing.T, st *state.State) int {
	t.Helper()

	blocks, err := st.Blocks()
	if err != nil {
		t.Fatalf("Should be able to read the chain: %s", err)
	}

	return len(blocks)
}

// =============================================================================

// fakePeer serves the private api of a node from fixed data and records
// the requests it receives.
type fakePeer struct {
	*httptest.Server

	blocks  []database.Block
	pending []database.Transaction
	release chan struct{}
	status  int

	mu       sync.Mutex
	requests []string
	peers    []string
}

func newFakePeer(t *testing.T, blocks []database.Block, pending []database.Transaction) *fakePeer {
	fp := fakePeer{
		blocks:  blocks,
		pending: pending,
	}

	fp.Server = httptest.NewServer(http.HandlerFunc(fp.serve))
	t.Cleanup(fp.Close)

	return &fp
}

func (fp *fakePeer) serve(w http.ResponseWriter, r *http.Request) {
	fp.mu.Lock()
	fp.requests = append(fp.requests, r.Method+" "+r.URL.Path)
	fp.mu.Unlock()

	if fp.status != 0 {
		w.WriteHeader(fp.status)
		return
	}

	respond := func(v any) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/v1/blockchain/blocks/latest":
		respond(fp.blocks[len(fp.blocks)-1])

	case r.Method == http.MethodGet && r.URL.Path == "/v1/blockchain/blocks":
		if fp.release != nil {
			<-fp.release
		}
		respond(fp.blocks)

	case r.Method == http.MethodGet && r.URL.Path == "/v1/blockchain/transactions":
		respond(fp.pending)

	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/blockchain/blocks/transactions/"):
		id := strings.TrimPrefix(r.URL.Path, "/v1/blockchain/blocks/transactions/")
		for _, block := range fp.blocks {
			for _, tx := range block.Transactions {
				if tx.ID == id {
					respond(tx)
					return
				}
			}
		}
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)

	case r.Method == http.MethodPost && r.URL.Path == "/v1/node/peers":
		var pr peer.Peer
		json.NewDecoder(r.Body).Decode(&pr)
		fp.mu.Lock()
		fp.peers = append(fp.peers, pr.URL)
		fp.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (fp *fakePeer) received(request string) int {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	var n int
	for _, r := range fp.requests {
		if r == request {
			n++
		}
	}
	return n
}

func (fp *fakePeer) introduced(url string) bool {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	for _, u := range fp.peers {
		if u == url {
			return true
		}
	}
	return false
}

// =============================================================================

func Test_CheckReceivedBlocks(t *testing.T) {
	remote := remoteChain(t, 3)

	t.Log("Given the need to reconcile blocks received from peers.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the blocks are not ahead of the local chain.", testID)
		{
			st := newState(t)
			n := newNode(t, st, nil)

			outcome, err := n.CheckReceivedBlocks([]database.Block{remote[0]})
			if err != nil || outcome != node.Ignored {
				t.Fatalf("\t%s\tTest %d:\tShould ignore the blocks: %s: %v", failed, testID, outcome, err)
			}
			t.Logf("\t%s\tTest %d:\tShould ignore the blocks.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the block is the successor of the local tip.", testID)
		{
			st := newState(t)
			n := newNode(t, st, nil)

			outcome, err := n.CheckReceivedBlocks([]database.Block{remote[1]})
			if err != nil || outcome != node.Appended {
				t.Fatalf("\t%s\tTest %d:\tShould append the block: %s: %v", failed, testID, outcome, err)
			}
			if length(t, st) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould hold two blocks.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould append the block.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a lone block is further ahead.", testID)
		{
			st := newState(t)
			n := newNode(t, st, nil)

			fp := newFakePeer(t, remote, nil)
			fp.release = make(chan struct{})
			n.AddPeer(peer.New(fp.URL))

			outcome, err := n.CheckReceivedBlocks([]database.Block{remote[3]})
			if err != nil || outcome != node.Requested {
				close(fp.release)
				t.Fatalf("\t%s\tTest %d:\tShould request the chains: %s: %v", failed, testID, outcome, err)
			}
			t.Logf("\t%s\tTest %d:\tShould request the chains.", success, testID)

			if length(t, st) != 1 {
				close(fp.release)
				t.Fatalf("\t%s\tTest %d:\tShould not change the chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not change the chain.", success, testID)

			close(fp.release)
			n.Wait()

			if fp.received("GET /v1/blockchain/blocks") != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould ask the peer for its chain.", failed, testID)
			}
			if length(t, st) != len(remote) {
				t.Fatalf("\t%s\tTest %d:\tShould adopt the chain of the peer: %d", failed, testID, length(t, st))
			}
			t.Logf("\t%s\tTest %d:\tShould adopt the chain of the peer.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a longer competing chain is received.", testID)
		{
			st := newState(t)
			n := newNode(t, st, nil)

			shuffled := []database.Block{remote[2], remote[0], remote[3], remote[1]}

			outcome, err := n.CheckReceivedBlocks(shuffled)
			if err != nil || outcome != node.Replaced {
				t.Fatalf("\t%s\tTest %d:\tShould replace the chain: %s: %v", failed, testID, outcome, err)
			}

			latest, _ := st.LatestBlock()
			if latest.Hash != remote[3].Hash {
				t.Fatalf("\t%s\tTest %d:\tShould end at the tip of the chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould replace the chain.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the competing chain is invalid.", testID)
		{
			st := newState(t)
			n := newNode(t, st, nil)

			tampered := append([]database.Block(nil), remote...)
			tampered[2].PreviousHash = tampered[0].Hash

			outcome, err := n.CheckReceivedBlocks(tampered)
			if !database.IsChainError(err) || outcome != node.Ignored {
				t.Fatalf("\t%s\tTest %d:\tShould surface the chain error: %s: %v", failed, testID, outcome, err)
			}
			if length(t, st) != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould not change the chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould surface the chain error: %v", success, testID, err)
		}
	}
}

func Test_ConnectToPeers(t *testing.T) {
	remote := remoteChain(t, 1)

	t.Log("Given the need to connect to new peers.")
	{
		st := newState(t)
		n := newNode(t, st, nil)

		p1 := newFakePeer(t, remote[:1], nil)
		p2 := newFakePeer(t, remote, nil)

		testID := 0
		t.Logf("\tTest %d:\tWhen connecting to the first peer.", testID)
		{
			if added := n.ConnectToPeers([]peer.Peer{{URL: p1.URL}}); added != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould register the peer: %d", failed, testID, added)
			}
			n.Wait()

			if !p1.introduced(self) {
				t.Fatalf("\t%s\tTest %d:\tShould announce itself.", failed, testID)
			}
			if p1.received("GET /v1/blockchain/blocks/latest") != 1 || p1.received("GET /v1/blockchain/transactions") != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould pull the latest block and the pending transactions.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould announce itself and pull from the peer.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen connecting to a second peer that is ahead.", testID)
		{
			added := n.ConnectToPeers([]peer.Peer{{URL: p2.URL + "/"}, {URL: p1.URL}, {URL: self}})
			if added != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould skip known peers and self: %d", failed, testID, added)
			}
			n.Wait()

			if !p1.introduced(p2.URL) {
				t.Fatalf("\t%s\tTest %d:\tShould introduce the new peer to the known peers.", failed, testID)
			}
			if p2.introduced(p2.URL) {
				t.Fatalf("\t%s\tTest %d:\tShould not introduce the peer to itself.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould introduce the new peer to the known peers.", success, testID)

			if length(t, st) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould append the latest block of the peer: %d", failed, testID, length(t, st))
			}
			t.Logf("\t%s\tTest %d:\tShould append the latest block of the peer.", success, testID)

			if len(n.Peers()) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould know two peers.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould know two peers.", success, testID)
		}
	}
}

func Test_SyncTransactions(t *testing.T) {
	t.Log("Given the need to merge pending transactions from peers.")
	{
		st := newState(t)
		n := newNode(t, st, nil)

		secret, from := newKey(t, "from")
		_, to := newKey(t, "to")

		if _, err := st.MineNewBlock(context.Background(), from); err != nil {
			t.Fatalf("Should be able to mine a block: %s", err)
		}
		utxo, _ := st.UnspentOutputsForAddress(from)

		tx, err := txbuilder.New(st.Scheme()).From(utxo).To(to, 10).Change(from).Fee(1).Sign(secret).Build()
		if err != nil {
			t.Fatalf("Should be able to build a transaction: %s", err)
		}

		bad := tx
		bad.ID = "forged"

		testID := 0
		t.Logf("\tTest %d:\tWhen receiving new, repeated and invalid transactions.", testID)
		{
			if added := n.SyncTransactions([]database.Transaction{tx, tx, bad}); added != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould add the new transaction once: %d", failed, testID, added)
			}
			t.Logf("\t%s\tTest %d:\tShould add the new transaction once.", success, testID)

			if added := n.SyncTransactions([]database.Transaction{tx}); added != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould ignore known transactions: %d", failed, testID, added)
			}
			t.Logf("\t%s\tTest %d:\tShould ignore known transactions.", success, testID)
		}
	}
}

func Test_Confirmations(t *testing.T) {
	t.Log("Given the need to count the confirmations of a transaction.")
	{
		st := newState(t)
		n := newNode(t, st, nil)

		_, miner := newKey(t, "miner")
		block, err := st.MineNewBlock(context.Background(), miner)
		if err != nil {
			t.Fatalf("Should be able to mine a block: %s", err)
		}
		id := block.Transactions[0].ID

		chain, _ := st.Blocks()
		confirming := newFakePeer(t, chain, nil)
		behind := newFakePeer(t, chain[:1], nil)
		n.AddPeer(peer.New(confirming.URL))
		n.AddPeer(peer.New(behind.URL))
		n.AddPeer(peer.New("http://127.0.0.1:1"))

		testID := 0
		t.Logf("\tTest %d:\tWhen one of three peers holds the transaction.", testID)
		{
			if c := n.Confirmations(context.Background(), id); c != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould count this node and one peer: %d", failed, testID, c)
			}
			t.Logf("\t%s\tTest %d:\tShould count this node and one peer.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen nobody holds the transaction.", testID)
		{
			if c := n.Confirmations(context.Background(), "unknown"); c != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould count nothing: %d", failed, testID, c)
			}
			t.Logf("\t%s\tTest %d:\tShould count nothing.", success, testID)
		}
	}
}

func Test_BroadcastFailures(t *testing.T) {
	t.Log("Given the need to survive failing peers.")
	{
		var mu sync.Mutex
		var warnings int
		ev := func(v string, args ...any) {
			if strings.Contains(v, "WARNING") {
				mu.Lock()
				warnings++
				mu.Unlock()
			}
		}

		st := newState(t)
		n := newNode(t, st, ev)

		fp := newFakePeer(t, nil, nil)
		fp.status = http.StatusInternalServerError
		n.AddPeer(peer.New(fp.URL))

		testID := 0
		t.Logf("\tTest %d:\tWhen the peer answers with errors.", testID)
		{
			n.BroadcastLatestBlock()
			n.BroadcastTransaction(database.Transaction{ID: "abc"})
			n.RequestChains()
			n.Wait()

			mu.Lock()
			got := warnings
			mu.Unlock()

			if got != 3 {
				t.Fatalf("\t%s\tTest %d:\tShould log every failure: %d", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould log every failure.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the node is shut down.", testID)
		{
			n.Shutdown()

			before := fp.received("PUT /v1/blockchain/blocks/latest")
			n.BroadcastLatestBlock()
			n.Wait()

			if fp.received("PUT /v1/blockchain/blocks/latest") != before {
				t.Fatalf("\t%s\tTest %d:\tShould not start new exchanges.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not start new exchanges.", success, testID)
		}
	}
}
