package cmd

import (
	"fmt"
	"os"
	"strconv"

	db "dbexport/database"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

// CheckCommand is a quick sanity check: connect, count rows per table, print
// a table and a total. No files are written.
func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Quick row-count check of every table",
		Flags: connectionFlags(),
		Action: func(c *cli.Context) error {
			cfg, err := resolveConfig(c)
			if err != nil {
				return err
			}

			mgr := &db.PostgresManager{}
			if err := mgr.ConnectWithDSN(cfg.DSN()); err != nil {
				fmt.Printf("[ERROR] Database connection failed: %v\n", err)
				return cli.Exit("", 1)
			}
			defer mgr.Close()
			fmt.Printf("[OK] Connected to database: %s\n\n", cfg.Database)

			tables, err := mgr.ListTables()
			if err != nil {
				return fmt.Errorf("listing tables: %v", err)
			}
			if len(tables) == 0 {
				fmt.Println("No tables found.")
				return nil
			}

			output := tablewriter.NewWriter(os.Stdout)
			output.SetHeader([]string{"Table", "Rows", "Columns"})
			output.SetBorder(false)
			output.SetColumnSeparator(" ")

			var totalRows int64
			for _, name := range tables {
				info, err := mgr.DescribeTable(name)
				if err != nil {
					return fmt.Errorf("describing table %s: %v", name, err)
				}
				output.Append([]string{
					name,
					strconv.FormatInt(info.RowCount, 10),
					strconv.Itoa(len(info.Columns)),
				})
				totalRows += info.RowCount
			}
			output.Render()

			fmt.Printf("\nTotal rows: %d\n", totalRows)
			return nil
		},
	}
}
