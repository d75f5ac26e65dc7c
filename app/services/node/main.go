package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ardanlabs/coin/app/services/node/handlers"
	"github.com/ardanlabs/coin/business/core/operator"
	"github.com/ardanlabs/coin/foundation/blockchain/database"
	"github.com/ardanlabs/coin/foundation/blockchain/database/storage/boltdb"
	"github.com/ardanlabs/coin/foundation/blockchain/database/storage/disk"
	"github.com/ardanlabs/coin/foundation/blockchain/database/storage/memory"
	"github.com/ardanlabs/coin/foundation/blockchain/genesis"
	"github.com/ardanlabs/coin/foundation/blockchain/mempool"
	"github.com/ardanlabs/coin/foundation/blockchain/node"
	"github.com/ardanlabs/coin/foundation/blockchain/peer"
	"github.com/ardanlabs/coin/foundation/blockchain/state"
	"github.com/ardanlabs/coin/foundation/blockchain/wallet"
	"github.com/ardanlabs/coin/foundation/blockchain/worker"
	"github.com/ardanlabs/coin/foundation/events"
	"github.com/ardanlabs/coin/foundation/logger"
	"github.com/ardanlabs/conf/v3"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:120s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			PrivateHost     string        `conf:"default:0.0.0.0:9080"`
			CORSOrigin      string        `conf:"default:*"`
		}
		DB struct {
			Kind string `conf:"default:memory,help:memory|disk|bolt"`
			Path string `conf:"default:zblock/coin"`
		}
		Chain struct {
			Settings string `conf:"help:path to the coin settings file, defaults when empty"`
			PowMode  string `conf:"help:strict|bypass, overrides the settings file"`
			Scheme   string `conf:"help:ed25519|secp256k1, overrides the settings file"`
		}
		Node struct {
			URL           string        `conf:"default:http://localhost:9080,help:url peers use to reach the private api"`
			KnownPeers    []string      `conf:"default:http://localhost:9180"`
			SyncInterval  time.Duration `conf:"default:1m"`
			PeerTimeout   time.Duration `conf:"default:5s"`
			RewardAddress string        `conf:"help:hex address paid for blocks mined on its own, no mining when empty"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Coin Settings

	gen := genesis.Default()
	if cfg.Chain.Settings != "" {
		if gen, err = genesis.Load(cfg.Chain.Settings); err != nil {
			return fmt.Errorf("loading coin settings: %w", err)
		}
	}
	if cfg.Chain.PowMode != "" {
		gen.ProofOfWork.Mode = cfg.Chain.PowMode
	}
	if cfg.Chain.Scheme != "" {
		gen.SignatureScheme = cfg.Chain.Scheme
	}
	if err := gen.Validate(); err != nil {
		return fmt.Errorf("validating coin settings: %w", err)
	}

	log.Infow("startup", "status", "coin settings", "fee", gen.FeePerTransaction, "reward", gen.Mining.MiningReward, "pow", gen.ProofOfWork.Mode, "scheme", gen.SignatureScheme, "genesis", gen.GenesisBlock.Seal().Hash)

	var rewardAddress []byte
	if cfg.Node.RewardAddress != "" {
		if rewardAddress, err = hexutil.Decode(cfg.Node.RewardAddress); err != nil {
			return fmt.Errorf("decoding reward address: %w", err)
		}
	}

	// =========================================================================
	// Storage Support

	log.Infow("startup", "status", "opening storage", "kind", cfg.DB.Kind, "path", cfg.DB.Path)

	strg, err := openStorage(cfg.DB.Kind, cfg.DB.Path)
	if err != nil {
		return err
	}
	defer func() {
		log.Infow("shutdown", "status", "closing storage", "kind", cfg.DB.Kind)
		strg.close()
	}()

	// =========================================================================
	// Blockchain Support

	// The blockchain packages accept a function of this signature to allow the
	// application to log. For now, these raw messages are sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	// The state value represents the blockchain and manages the stores and
	// the validation rules.
	st, err := state.New(state.Config{
		Genesis:    gen,
		BlockStore: strg.blocks,
		TxStore:    strg.pool,
		EvHandler:  ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	// The node value manages the peers and the exchanges with them.
	nd, err := node.New(node.Config{
		Self:      cfg.Node.URL,
		State:     st,
		Timeout:   cfg.Node.PeerTimeout,
		EvHandler: ev,
	})
	if err != nil {
		return err
	}

	// The worker package implements the different workflows such as mining,
	// block and transaction sharing, and peer updates. The worker will
	// register itself with the state.
	worker.Run(nd, worker.Config{
		SyncInterval:  cfg.Node.SyncInterval,
		RewardAddress: rewardAddress,
		EvHandler:     ev,
	})

	knownPeers := make([]peer.Peer, len(cfg.Node.KnownPeers))
	for i, url := range cfg.Node.KnownPeers {
		knownPeers[i] = peer.New(url)
	}
	added := nd.ConnectToPeers(knownPeers)
	log.Infow("startup", "status", "connecting to known peers", "peers", len(knownPeers), "added", added)

	op := operator.New(log, st, strg.wallets)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the debug
	// related endpoints. This includes the standard library endpoints.

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, nd)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		Node:     nd,
		Operator: op,
		Evts:     evts,
		Origin:   cfg.Web.CORSOrigin,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Start Private Service

	log.Infow("startup", "status", "initializing V1 private API support")

	// Construct the mux for the private API calls.
	privateMux := handlers.PrivateMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		Node:     nd,
	})

	// Construct a server to service the requests against the mux.
	private := http.Server{
		Addr:         cfg.Web.PrivateHost,
		Handler:      privateMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "private api router started", "host", private.Addr)
		serverErrors <- private.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancelPri := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPri()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown private API started")
		if err := private.Shutdown(ctx); err != nil {
			private.Close()
			return fmt.Errorf("could not stop private service gracefully: %w", err)
		}

		// Give outstanding requests a deadline for completion.
		ctx, cancelPub := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPub()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}

// =============================================================================

// storage holds the stores selected by configuration.
type storage struct {
	blocks  database.BlockStore
	pool    database.TransactionStore
	wallets wallet.Store
	close   func() error
}

// openStorage opens the stores of the specified kind. Memory keeps nothing
// between runs, disk keeps the chain as block files, bolt keeps the chain,
// the pool and the wallets in one database file.
func openStorage(kind string, path string) (storage, error) {
	switch kind {
	case "memory":
		return storage{
			blocks:  memory.NewBlocks(),
			pool:    mempool.New(),
			wallets: memory.NewWallets(),
			close:   func() error { return nil },
		}, nil

	case "disk":
		blocks, err := disk.New(filepath.Join(path, "blocks"))
		if err != nil {
			return storage{}, fmt.Errorf("opening disk storage: %w", err)
		}
		return storage{
			blocks:  blocks,
			pool:    mempool.New(),
			wallets: memory.NewWallets(),
			close:   blocks.Close,
		}, nil

	case "bolt":
		if err := os.MkdirAll(path, 0755); err != nil {
			return storage{}, fmt.Errorf("creating bolt storage folder: %w", err)
		}
		db, err := boltdb.Open(filepath.Join(path, "coin.db"))
		if err != nil {
			return storage{}, err
		}
		return storage{
			blocks:  db.Blocks(),
			pool:    db.Pool(),
			wallets: db.Wallets(),
			close:   db.Close,
		}, nil
	}

	return storage{}, fmt.Errorf("unknown storage kind %q", kind)
}
