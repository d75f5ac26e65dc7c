package cmd

import (
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var (
	walletID string
	from     string
	to       string
	amount   uint64
	change   string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send funds from an address of the wallet",
	Args:  cobra.NoArgs,
	RunE:  sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&walletID, "wallet", "i", "", "Id of the wallet holding the from address.")
	sendCmd.Flags().StringVarP(&from, "from", "f", "", "Address the funds are taken from.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address the funds are sent to.")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "a", 0, "Amount to send.")
	sendCmd.Flags().StringVarP(&change, "change", "c", "", "Address the change is returned to, the from address when empty.")
	sendCmd.MarkFlagRequired("wallet")
	sendCmd.MarkFlagRequired("from")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("amount")
}

func sendRun(cmd *cobra.Command, args []string) error {
	if change == "" {
		change = from
	}

	nt := struct {
		FromAddress   hexutil.Bytes `json:"fromAddress"`
		ToAddress     hexutil.Bytes `json:"toAddress"`
		Amount        uint64        `json:"amount"`
		ChangeAddress hexutil.Bytes `json:"changeAddress"`
	}{
		Amount: amount,
	}

	var err error
	if nt.FromAddress, err = hexutil.Decode(from); err != nil {
		return fmt.Errorf("decoding from address: %w", err)
	}
	if nt.ToAddress, err = hexutil.Decode(to); err != nil {
		return fmt.Errorf("decoding to address: %w", err)
	}
	if nt.ChangeAddress, err = hexutil.Decode(change); err != nil {
		return fmt.Errorf("decoding change address: %w", err)
	}

	var tx struct {
		ID string `json:"id"`
	}
	if err := call(http.MethodPost, "/operator/wallets/"+walletID+"/transactions", true, nt, &tx); err != nil {
		return err
	}

	fmt.Println("Transaction:", tx.ID)
	return nil
}
