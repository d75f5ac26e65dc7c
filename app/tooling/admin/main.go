// This program performs offline administrative tasks against the stores of
// a stopped node.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ardanlabs/coin/app/tooling/admin/commands"
	"github.com/ardanlabs/coin/foundation/blockchain/database"
	"github.com/ardanlabs/coin/foundation/blockchain/database/storage/boltdb"
	"github.com/ardanlabs/coin/foundation/blockchain/database/storage/disk"
	"github.com/ardanlabs/coin/foundation/blockchain/genesis"
	"github.com/ardanlabs/coin/foundation/logger"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Errorw("admin", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	var (
		kind     string
		path     string
		settings string
	)

	// withStore opens the block store for the duration of the command.
	withStore := func(f func(blocks database.BlockStore, args []string) error) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			log.Infow("admin", "command", cmd.Name(), "kind", kind, "path", path)

			blocks, closeStore, err := openBlocks(kind, path)
			if err != nil {
				return err
			}
			defer closeStore()

			return f(blocks, args)
		}
	}

	rootCmd := &cobra.Command{
		Use:          "admin",
		Short:        "Inspect the chain kept by a stopped node",
		Version:      build,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&kind, "kind", "k", "disk", "Kind of store: disk|bolt.")
	rootCmd.PersistentFlags().StringVarP(&path, "path", "p", "zblock/coin", "Folder the node keeps its stores in.")

	blocksCmd := &cobra.Command{
		Use:   "blocks",
		Short: "Print every block of the chain",
		Args:  cobra.NoArgs,
		RunE: withStore(func(blocks database.BlockStore, args []string) error {
			return commands.Blocks(os.Stdout, blocks)
		}),
	}

	balancesCmd := &cobra.Command{
		Use:   "balances [address]",
		Short: "Print the balances recorded in the chain",
		Args:  cobra.MaximumNArgs(1),
		RunE: withStore(func(blocks database.BlockStore, args []string) error {
			addr, err := addressArg(args)
			if err != nil {
				return err
			}
			return commands.Balances(os.Stdout, blocks, addr)
		}),
	}

	transactionsCmd := &cobra.Command{
		Use:   "transactions [address]",
		Short: "Print the transactions recorded in the chain",
		Args:  cobra.MaximumNArgs(1),
		RunE: withStore(func(blocks database.BlockStore, args []string) error {
			addr, err := addressArg(args)
			if err != nil {
				return err
			}
			return commands.Transactions(os.Stdout, blocks, addr)
		}),
	}

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Replay the chain against the coin settings",
		Args:  cobra.NoArgs,
		RunE: withStore(func(blocks database.BlockStore, args []string) error {
			gen := genesis.Default()
			if settings != "" {
				var err error
				if gen, err = genesis.Load(settings); err != nil {
					return err
				}
			}
			return commands.Verify(os.Stdout, blocks, gen)
		}),
	}
	verifyCmd.Flags().StringVarP(&settings, "settings", "s", "", "Path to the coin settings file, defaults when empty.")

	rootCmd.AddCommand(blocksCmd, balancesCmd, transactionsCmd, verifyCmd)

	return rootCmd.Execute()
}

// openBlocks opens the block store a node configured with the same kind and
// path writes to.
func openBlocks(kind string, path string) (database.BlockStore, func() error, error) {
	switch kind {
	case "disk":
		blocks, err := disk.New(filepath.Join(path, "blocks"))
		if err != nil {
			return nil, nil, err
		}
		return blocks, blocks.Close, nil

	case "bolt":
		db, err := boltdb.Open(filepath.Join(path, "coin.db"))
		if err != nil {
			return nil, nil, err
		}
		return db.Blocks(), db.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown store kind %q", kind)
}

func addressArg(args []string) ([]byte, error) {
	if len(args) == 0 {
		return nil, nil
	}

	addr, err := hexutil.Decode(args[0])
	if err != nil {
		return nil, fmt.Errorf("decoding address: %w", err)
	}

	return addr, nil
}
