package main

import "desk-wallet/cmd/wallet-cli/cmd"

func main() {
	cmd.Execute()
}
