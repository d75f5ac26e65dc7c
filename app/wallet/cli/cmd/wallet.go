package cmd

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

// wallet is the public view of a wallet returned by the node.
type wallet struct {
	ID        string          `json:"id"`
	Addresses []hexutil.Bytes `json:"addresses"`
}

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Create and list wallets",
}

var walletCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a wallet protected by the password",
	Args:  cobra.NoArgs,
	RunE:  walletCreateRun,
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the wallets hosted by the node",
	Args:  cobra.NoArgs,
	RunE:  walletListRun,
}

var walletShowCmd = &cobra.Command{
	Use:   "show <wallet-id>",
	Short: "Print a wallet and its addresses",
	Args:  cobra.ExactArgs(1),
	RunE:  walletShowRun,
}

func init() {
	walletCmd.AddCommand(walletCreateCmd, walletListCmd, walletShowCmd)
	rootCmd.AddCommand(walletCmd)
}

func walletCreateRun(cmd *cobra.Command, args []string) error {
	nw := struct {
		Password string `json:"password"`
	}{
		Password: walletPassword(),
	}

	var w wallet
	if err := call(http.MethodPost, "/operator/wallets", false, nw, &w); err != nil {
		return err
	}

	return printJSON(w)
}

func walletListRun(cmd *cobra.Command, args []string) error {
	var ws []wallet
	if err := call(http.MethodGet, "/operator/wallets", false, nil, &ws); err != nil {
		return err
	}

	return printJSON(ws)
}

func walletShowRun(cmd *cobra.Command, args []string) error {
	var w wallet
	if err := call(http.MethodGet, "/operator/wallets/"+args[0], false, nil, &w); err != nil {
		return err
	}

	return printJSON(w)
}
