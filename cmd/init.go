package cmd

import (
	"fmt"
	"os"

	"dbexport/internal/config"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func InitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a starter dbexport.yaml configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "output",
				Usage: "Path of the config file to create",
				Value: "dbexport.yaml",
			},
		},
		Action: func(c *cli.Context) error {
			path := c.String("output")

			// Never clobber an existing config
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file already exists: %s", path)
			}

			cfg := config.Default()
			yamlData, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("creating yaml: %v", err)
			}

			if err := os.WriteFile(path, yamlData, 0644); err != nil {
				return fmt.Errorf("writing config file: %v", err)
			}

			fmt.Printf("Created %s\n", path)
			fmt.Println("Fill in the database name; leave password empty to be prompted or set DBEXPORT_PASSWORD.")
			return nil
		},
	}
}
