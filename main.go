package main

import (
	"log"
	"os"

	"dbexport/cmd"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "dbexport",
		Usage: "A CLI tool to dump a PostgreSQL database to CSV/JSON files with summary reports",
		Commands: []*cli.Command{
			cmd.InitCommand(),
			cmd.RunCommand(),
			cmd.CheckCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
