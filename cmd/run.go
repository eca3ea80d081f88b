package cmd

import (
	"fmt"
	"os"
	"os/signal"

	db "dbexport/database"
	"dbexport/extract"
	"dbexport/internal/config"
	"dbexport/internal/utils"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

// connectionFlags are shared by the commands that open a database connection.
// Flags override environment variables, which override the config file.
func connectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to dbexport.yaml (default: discovered in current or parent directories)",
		},
		&cli.StringFlag{
			Name:    "host",
			Usage:   "Database host",
			EnvVars: []string{"DBEXPORT_HOST"},
		},
		&cli.IntFlag{
			Name:    "port",
			Usage:   "Database port",
			EnvVars: []string{"DBEXPORT_PORT"},
		},
		&cli.StringFlag{
			Name:    "database",
			Usage:   "Database name",
			EnvVars: []string{"DBEXPORT_DATABASE"},
		},
		&cli.StringFlag{
			Name:    "user",
			Usage:   "Database user",
			EnvVars: []string{"DBEXPORT_USER"},
		},
		&cli.StringFlag{
			Name:    "password",
			Usage:   "Database password (prompted if omitted)",
			EnvVars: []string{"DBEXPORT_PASSWORD"},
		},
	}
}

func resolveConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()

	configPath := c.String("config")
	if configPath == "" {
		if found, err := utils.FindConfigFile(); err == nil {
			configPath = found
		}
	}
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	if v := c.String("host"); v != "" {
		cfg.Host = v
	}
	if c.IsSet("port") {
		cfg.Port = c.Int("port")
	}
	if v := c.String("database"); v != "" {
		cfg.Database = v
	}
	if v := c.String("user"); v != "" {
		cfg.User = v
	}
	if v := c.String("password"); v != "" {
		cfg.Password = v
	}
	if c.IsSet("json-limit") {
		cfg.JSONRowLimit = c.Int("json-limit")
	}
	if v := c.String("output-root"); v != "" {
		cfg.OutputRoot = v
	}

	if cfg.Password == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Printf("Password for %s@%s: ", cfg.User, cfg.Host)
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return nil, fmt.Errorf("reading password: %v", err)
		}
		cfg.Password = string(password)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func RunCommand() *cli.Command {
	flags := append(connectionFlags(),
		&cli.StringFlag{
			Name:    "output-root",
			Usage:   "Directory the timestamped export tree is created under",
			EnvVars: []string{"DBEXPORT_OUTPUT_ROOT"},
		},
		&cli.IntFlag{
			Name:    "json-limit",
			Usage:   "Maximum number of rows per JSON export file",
			EnvVars: []string{"DBEXPORT_JSON_LIMIT"},
		},
	)

	return &cli.Command{
		Name:  "run",
		Usage: "Export schema and data for every table to CSV/JSON with summary reports",
		Flags: flags,
		Action: func(c *cli.Context) error {
			cfg, err := resolveConfig(c)
			if err != nil {
				return err
			}

			// An interrupt is a cancellation, not a failure
			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, os.Interrupt)
			defer signal.Stop(sigs)
			go func() {
				<-sigs
				fmt.Println("\n[WARN] Export cancelled by user")
				os.Exit(130)
			}()

			mgr := &db.PostgresManager{}
			if err := mgr.ConnectWithDSN(cfg.DSN()); err != nil {
				fmt.Printf("[ERROR] Database connection failed: %v\n", err)
				return cli.Exit("", 1)
			}
			defer mgr.Close()
			fmt.Printf("[OK] Connected to database: %s\n", cfg.Database)

			opts := extract.Options{
				Database:     cfg.Database,
				OutputRoot:   cfg.OutputRoot,
				JSONRowLimit: cfg.JSONRowLimit,
			}
			if err := extract.Run(mgr, opts); err != nil {
				fmt.Printf("\n[ERROR] Export failed: %v\n", err)
				return cli.Exit("", 1)
			}

			return nil
		},
	}
}
