// This program is a wallet client for the wallets hosted by a node.
package main

import "github.com/ardanlabs/coin/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
