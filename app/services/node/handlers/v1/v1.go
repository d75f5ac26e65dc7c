// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/coin/app/services/node/handlers/v1/private"
	"github.com/ardanlabs/coin/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/coin/business/core/operator"
	"github.com/ardanlabs/coin/foundation/blockchain/node"
	"github.com/ardanlabs/coin/foundation/events"
	"github.com/ardanlabs/coin/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log      *zap.SugaredLogger
	Node     *node.Node
	Operator *operator.Operator
	Evts     *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:      cfg.Log,
		Node:     cfg.Node,
		Operator: cfg.Operator,
		Evts:     cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodPost, version, "/operator/wallets", pbl.CreateWallet)
	app.Handle(http.MethodGet, version, "/operator/wallets", pbl.Wallets)
	app.Handle(http.MethodGet, version, "/operator/wallets/:id", pbl.Wallet)
	app.Handle(http.MethodGet, version, "/operator/wallets/:id/addresses", pbl.Addresses)
	app.Handle(http.MethodPost, version, "/operator/wallets/:id/addresses", pbl.GenerateAddress)
	app.Handle(http.MethodPost, version, "/operator/wallets/:id/transactions", pbl.CreateTransaction)
	app.Handle(http.MethodGet, version, "/operator/addresses/:address/balance", pbl.Balance)
	app.Handle(http.MethodPost, version, "/miner/mine", pbl.Mine)
	app.Handle(http.MethodGet, version, "/node/transactions/:id/confirmations", pbl.Confirmations)
	app.Handle(http.MethodGet, version, "/node/peers", pbl.Peers)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:  cfg.Log,
		Node: cfg.Node,
	}

	app.Handle(http.MethodGet, version, "/blockchain/blocks", prv.Blocks)
	app.Handle(http.MethodGet, version, "/blockchain/blocks/latest", prv.LatestBlock)
	app.Handle(http.MethodPut, version, "/blockchain/blocks/latest", prv.ProposeBlock)
	app.Handle(http.MethodGet, version, "/blockchain/blocks/index/:index", prv.BlockByIndex)
	app.Handle(http.MethodGet, version, "/blockchain/blocks/hash/:hash", prv.BlockByHash)
	app.Handle(http.MethodGet, version, "/blockchain/blocks/transactions/:id", prv.BlockTransaction)
	app.Handle(http.MethodGet, version, "/blockchain/transactions", prv.PendingTransactions)
	app.Handle(http.MethodPost, version, "/blockchain/transactions", prv.AddTransaction)
	app.Handle(http.MethodGet, version, "/blockchain/transactions/unspent/:address", prv.UnspentOutputs)
	app.Handle(http.MethodGet, version, "/node/peers", prv.Peers)
	app.Handle(http.MethodPost, version, "/node/peers", prv.ConnectPeer)
}
