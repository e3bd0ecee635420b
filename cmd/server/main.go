// Command server runs the admin HTTP API over the remote admin backend or
// the local fixture store.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/simp-lee/petadmin/internal/app"
	"github.com/simp-lee/petadmin/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.StringP("config", "c", "configs/config.yaml", "configuration file")
	mode := flag.String("datasource", "", "datasource.mode override: remote or fixture")
	baseURL := flag.String("base-url", "", "datasource.remote.base_url override")
	port := flag.IntP("port", "p", 0, "server.port override")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	overridden := false
	if flag.CommandLine.Changed("datasource") {
		cfg.DataSource.Mode, overridden = *mode, true
	}
	if flag.CommandLine.Changed("base-url") {
		cfg.DataSource.Remote.BaseURL, overridden = *baseURL, true
	}
	if flag.CommandLine.Changed("port") {
		cfg.Server.Port, overridden = *port, true
	}
	if overridden {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}
	return a.Run()
}
