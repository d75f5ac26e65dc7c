// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/coin/business/core/operator"
	"github.com/ardanlabs/coin/business/sys/validate"
	"github.com/ardanlabs/coin/business/web/errs"
	"github.com/ardanlabs/coin/foundation/blockchain/database"
	"github.com/ardanlabs/coin/foundation/blockchain/node"
	"github.com/ardanlabs/coin/foundation/blockchain/txbuilder"
	"github.com/ardanlabs/coin/foundation/blockchain/wallet"
	"github.com/ardanlabs/coin/foundation/events"
	"github.com/ardanlabs/coin/foundation/web"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// passwordHeader carries the wallet password for wallet operations.
const passwordHeader = "password"

// Handlers manages the set of public endpoints.
type Handlers struct {
	Log      *zap.SugaredLogger
	Node     *node.Node
	Operator *operator.Operator
	WS       websocket.Upgrader
	Evts     *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// CreateWallet creates a wallet protected by the password.
func (h Handlers) CreateWallet(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nw NewWallet
	if err := web.Decode(r, &nw); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(nw); err != nil {
		return err
	}

	wlt, err := h.Operator.CreateWallet(nw.Password)
	if err != nil {
		return trusted(err)
	}

	return web.Respond(ctx, w, wlt, http.StatusCreated)
}

// Wallets returns every wallet hosted by the node.
func (h Handlers) Wallets(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	wallets, err := h.Operator.Wallets()
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, wallets, http.StatusOK)
}

// Wallet returns the specified wallet.
func (h Handlers) Wallet(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	wlt, err := h.Operator.Wallet(web.Param(r, "id"))
	if err != nil {
		return trusted(err)
	}

	return web.Respond(ctx, w, wlt, http.StatusOK)
}

// Addresses returns the addresses of the specified wallet.
func (h Handlers) Addresses(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	addrs, err := h.Operator.Addresses(web.Param(r, "id"))
	if err != nil {
		return trusted(err)
	}

	return web.Respond(ctx, w, addrs, http.StatusOK)
}

// GenerateAddress derives the next address of the specified wallet.
func (h Handlers) GenerateAddress(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	addr, err := h.Operator.GenerateAddress(web.Param(r, "id"), r.Header.Get(passwordHeader))
	if err != nil {
		return trusted(err)
	}

	return web.Respond(ctx, w, address{Address: addr}, http.StatusCreated)
}

// CreateTransaction signs a transaction with a key of the specified wallet
// and adds it to the pending pool.
func (h Handlers) CreateTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var nt NewTransaction
	if err := web.Decode(r, &nt); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(nt); err != nil {
		return err
	}

	walletID := web.Param(r, "id")
	tx, err := h.Operator.CreateTransaction(walletID, r.Header.Get(passwordHeader), nt.FromAddress, nt.ToAddress, nt.Amount, nt.ChangeAddress)
	if err != nil {
		return trusted(err)
	}

	h.Log.Infow("create tran", "traceid", v.TraceID, "wallet", walletID, "tx", tx.ID, "amount", nt.Amount)

	return web.Respond(ctx, w, tx, http.StatusCreated)
}

// Balance returns the balance of the specified address.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	addr, err := hexutil.Decode(web.Param(r, "address"))
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid address: %w", err), http.StatusBadRequest)
	}

	amount, err := h.Operator.BalanceForAddress(addr)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, balance{Address: addr, Balance: amount}, http.StatusOK)
}

// Mine mines the pending transactions into a new block paying the reward
// address.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var m Mine
	if err := web.Decode(r, &m); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(m); err != nil {
		return err
	}

	block, err := h.Node.State().MineNewBlock(ctx, m.RewardAddress)
	if err != nil {
		return trusted(err)
	}

	h.Log.Infow("mine", "traceid", v.TraceID, "index", block.Index, "hash", block.Hash, "txs", len(block.Transactions))

	return web.Respond(ctx, w, block, http.StatusCreated)
}

// Confirmations returns the number of nodes holding the transaction in
// their chain.
func (h Handlers) Confirmations(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := web.Param(r, "id")

	resp := confirmations{
		ID:            id,
		Confirmations: h.Node.Confirmations(ctx, id),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Peers returns the known peers.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Node.Peers(), http.StatusOK)
}

// =============================================================================

// trusted maps the errors of the ledger and the wallets to the status the
// client sees.
func trusted(err error) error {
	switch {
	case errors.Is(err, wallet.ErrNotFound), errors.Is(err, database.ErrNotFound):
		return errs.NewTrusted(err, http.StatusNotFound)
	case errors.Is(err, operator.ErrInvalidPassword):
		return errs.NewTrusted(err, http.StatusForbidden)
	case errors.Is(err, wallet.ErrUnknownAddress),
		errors.Is(err, txbuilder.ErrNoUnspentOutputs),
		errors.Is(err, txbuilder.ErrNoDestination),
		errors.Is(err, txbuilder.ErrNoAmount),
		errors.Is(err, txbuilder.ErrNoChangeAddress),
		errors.Is(err, txbuilder.ErrNoSecretKey),
		txbuilder.IsFundsError(err),
		database.IsTxError(err):
		return errs.NewTrusted(err, http.StatusBadRequest)
	case database.IsBlockError(err), database.IsChainError(err):
		return errs.NewTrusted(err, http.StatusConflict)
	}

	return err
}
