// Command petadmin is the interactive admin console for the lost-and-found
// dashboard. It talks to the admin API at --base-url.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/simp-lee/petadmin/internal/config"
	"github.com/simp-lee/petadmin/internal/console"
	"github.com/simp-lee/petadmin/internal/session"
	"github.com/simp-lee/petadmin/internal/upstream"
)

var commands = []string{
	"activate", "ai", "close", "deactivate", "delete", "help", "ignore", "list",
	"login", "logout", "members", "next", "page", "posts", "prev", "quit",
	"reports", "retry", "search", "show", "size", "type", "whoami",
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "petadmin:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.StringP("config", "c", defaultConfigPath(), "path to the JSONC config file")
	baseURL := flag.String("base-url", "", "admin API root (default "+console.DefaultBaseURL+")")
	sessionFile := flag.String("session-file", "", "file that keeps the login between runs")
	pageSize := flag.Int("page-size", 0, "rows per page")
	timeout := flag.String("timeout", "", "per-request timeout, e.g. 15s")
	logFile := flag.String("log-file", "", "write the structured log to this file")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	flag.Parse()

	cfg, err := console.LoadConfig(*configPath, flag.CommandLine.Changed("config"))
	if err != nil {
		return err
	}
	if flag.CommandLine.Changed("base-url") {
		cfg.BaseURL = *baseURL
	}
	if flag.CommandLine.Changed("session-file") {
		cfg.SessionFile = *sessionFile
	}
	if flag.CommandLine.Changed("page-size") {
		cfg.PageSize = *pageSize
	}
	if flag.CommandLine.Changed("timeout") {
		cfg.Timeout = *timeout
	}
	if flag.CommandLine.Changed("log-file") {
		cfg.LogFile = *logFile
	}
	if flag.CommandLine.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// The terminal belongs to the prompt; records only go to the log file.
	off := false
	log, err := config.SetupLogger(&config.LogConfig{
		Level:    cfg.LogLevel,
		Format:   "text",
		Color:    &off,
		Console:  &off,
		FilePath: cfg.LogFile,
	})
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer log.Close()

	client, err := upstream.NewClient(cfg.BaseURL,
		upstream.WithTimeout(cfg.TimeoutDuration()),
		upstream.WithLogger(log.Logger),
	)
	if err != nil {
		return err
	}

	var sess *session.Session
	if cfg.SessionFile != "" {
		sess = session.New(session.NewFileStore(cfg.SessionFile))
	} else {
		sess = session.New(nil)
	}
	if err := sess.Restore(); err != nil {
		log.Logger.Warn("saved session ignored", slog.String("error", err.Error()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(complete)

	history := historyFile()
	if f, err := os.Open(history); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer saveHistory(line, history)

	c := console.New(client, sess, line, os.Stdout, cfg.PageSize, log.Logger)
	return c.Run(ctx)
}

func complete(in string) []string {
	var out []string
	lower := strings.ToLower(in)
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, lower) {
			out = append(out, cmd)
		}
	}
	return out
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "petadmin.jsonc"
	}
	return filepath.Join(dir, "petadmin", "config.jsonc")
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".petadmin_history")
}

func saveHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	if f, err := os.Create(path); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}
