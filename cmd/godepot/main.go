package main

import (
	"fmt"
	"os"

	"github.com/mwantia/godepot/cmd/godepot/cli"
	"github.com/mwantia/godepot/cmd/godepot/cli/client"
	"github.com/mwantia/godepot/cmd/godepot/cli/server"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	root := cli.NewRootCommand(cli.VersionInfo{
		Version: version,
		Commit:  commit,
	})

	root.AddCommand(cli.NewVersionCommand())

	root.AddCommand(server.NewServeCommand())
	root.AddCommand(server.NewConfigCommand())

	root.AddCommand(client.NewFilesCommand())

	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
