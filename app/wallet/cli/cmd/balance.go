package cmd

import (
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance <address>",
	Short: "Print the balance of the address",
	Args:  cobra.ExactArgs(1),
	RunE:  balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) error {
	addr, err := hexutil.Decode(args[0])
	if err != nil {
		return fmt.Errorf("decoding address: %w", err)
	}

	var resp struct {
		Address hexutil.Bytes `json:"address"`
		Balance uint64        `json:"balance"`
	}
	if err := call(http.MethodGet, "/operator/addresses/"+hexutil.Encode(addr)+"/balance", false, nil, &resp); err != nil {
		return err
	}

	fmt.Println("For Address:", resp.Address)
	fmt.Println(resp.Balance)
	return nil
}
