package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/rumors/internal/config"
	"github.com/hpungsan/rumors/internal/logging"
	"github.com/hpungsan/rumors/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"serve": true, "generate": true, "show": true, "list": true,
	"favorite": true, "share": true, "copy": true,
	"stats": true, "status": true, "categories": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___ _   _ __  __  ___  ___  ___
  | _ \ | | |  \/  |/ _ \| _ \/ __|
  |   / |_| | |\/| | (_) |   /\__ \
  |_|_\\___/|_|  |_|\___/|_|_\|___/

  Ridiculous Rumors: AI conspiracy theories, 100% fiction

  Usage: rumors <command> [options]
         rumors --help

  MCP server mode requires piped input.`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before any store is opened
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil)
		if err := app.Run(os.Args); err != nil {
			fail("%v", err)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if !isCLIMode() && len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'rumors --help' for usage.\n")
		os.Exit(1)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fail("could not determine home directory: %v", err)
	}
	baseDir := filepath.Join(homeDir, ".rumors")
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		fail("could not create %s: %v", baseDir, err)
	}

	cfg, err := config.Load(baseDir)
	if err != nil {
		fail("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		fail("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	svc, closeStore, err := newService(ctx, baseDir, cfg, logger)
	if err != nil {
		fail("failed to initialize: %v", err)
	}
	defer closeStore()

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(svc, logger)
		if err := app.Run(os.Args); err != nil {
			closeStore()
			fail("%v", err)
		}
		return
	}

	// MCP server mode (default)
	if err := mcp.Run(svc, logger, Version); err != nil {
		closeStore()
		fail("%v", err)
	}
}
