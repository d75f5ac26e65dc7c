package cmd

import (
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine <reward-address>",
	Short: "Mine the pending transactions paying the reward address",
	Args:  cobra.ExactArgs(1),
	RunE:  mineRun,
}

var confirmationsCmd = &cobra.Command{
	Use:   "confirmations <transaction-id>",
	Short: "Print the number of nodes holding the transaction in their chain",
	Args:  cobra.ExactArgs(1),
	RunE:  confirmationsRun,
}

func init() {
	rootCmd.AddCommand(mineCmd, confirmationsCmd)
}

func mineRun(cmd *cobra.Command, args []string) error {
	addr, err := hexutil.Decode(args[0])
	if err != nil {
		return fmt.Errorf("decoding reward address: %w", err)
	}

	m := struct {
		RewardAddress hexutil.Bytes `json:"rewardAddress"`
	}{
		RewardAddress: addr,
	}

	var block struct {
		Index        uint64 `json:"index"`
		Hash         string `json:"hash"`
		Transactions []any  `json:"transactions"`
	}
	if err := call(http.MethodPost, "/miner/mine", false, m, &block); err != nil {
		return err
	}

	fmt.Printf("Block: %d  Hash: %s  Txs: %d\n", block.Index, block.Hash, len(block.Transactions))
	return nil
}

func confirmationsRun(cmd *cobra.Command, args []string) error {
	var resp struct {
		Confirmations int `json:"confirmations"`
	}
	if err := call(http.MethodGet, "/node/transactions/"+args[0]+"/confirmations", false, nil, &resp); err != nil {
		return err
	}

	fmt.Println(resp.Confirmations)
	return nil
}
