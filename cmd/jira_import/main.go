package main

import (
	"os"

	"csvtojira/cli"
	"csvtojira/utils"
)

// version はビルド時に -ldflags で設定します
var version = "dev"

func main() {
	if err := cli.NewRootCommand(version).Execute(); err != nil {
		utils.LogError("%v", err)
		os.Exit(1)
	}
}
