package cmd

import (
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <wallet-id>",
	Short: "Generate the next address of the wallet",
	Args:  cobra.ExactArgs(1),
	RunE:  generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) error {
	var resp struct {
		Address hexutil.Bytes `json:"address"`
	}
	if err := call(http.MethodPost, "/operator/wallets/"+args[0]+"/addresses", true, nil, &resp); err != nil {
		return err
	}

	fmt.Println(resp.Address)
	return nil
}
