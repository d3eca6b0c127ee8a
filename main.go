// ABOUTME: Entry point for the closex CLI, TUI, web server and MCP server
// ABOUTME: Loads config, opens the snapshot store and routes to a command
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/harperreed/closex/charm"
	"github.com/harperreed/closex/cli"
	"github.com/harperreed/closex/config"
	"github.com/harperreed/closex/logging"
	"github.com/harperreed/closex/models"
	"github.com/harperreed/closex/service"
	"github.com/harperreed/closex/store"
	"github.com/harperreed/closex/tui"
	"github.com/harperreed/closex/web"
)

const version = "0.1.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dsn := flag.String("dsn", "", "Storage DSN (default: storage.dsn from config)")
	logLevel := flag.String("log-level", "", "Log level (default: log.level from config)")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	// Handle version flag
	if *showVersion {
		fmt.Printf("closex version %s\n", version)
		os.Exit(0)
	}

	// Get remaining args after flags
	args := flag.Args()

	// If no command specified, show usage
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", "err", err)
	}
	if *dsn != "" {
		cfg.Storage.DSN = *dsn
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	logger := logging.New(cfg.Log.Level, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Route to top-level command
	command := args[0]
	commandArgs := args[1:]

	// Commands that don't need the snapshot store
	switch command {
	case "config":
		exitOnError(logger, cli.ConfigCommand(cfg, commandArgs))
		return
	case "sync":
		client, err := charm.NewClient(&charm.Config{Host: cfg.Charm.Host, AutoSync: cfg.Charm.AutoSync})
		if err != nil {
			logger.Fatal("Failed to open charm store", "err", err)
		}
		defer func() { _ = client.Close() }()
		exitOnError(logger, cli.SyncCommand(client, commandArgs))
		return
	case "help":
		printUsage()
		return
	}

	svc, err := openService(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", "dsn", cfg.Storage.DSN, "err", err)
	}
	defer func() { _ = svc.Close() }()

	newSource := cli.BrowserSourceFactory(cfg.Browser)

	switch command {
	case "mcp":
		exitOnError(logger, cli.MCPCommand(ctx, svc, newSource, version))
	case "extract":
		exitOnError(logger, cli.ExtractCommand(ctx, svc, cfg.Browser, commandArgs))
	case "status":
		exitOnError(logger, cli.StatusCommand(ctx, svc, commandArgs))
	case "list":
		exitOnError(logger, cli.ListCommand(ctx, svc, commandArgs))
	case "delete":
		exitOnError(logger, cli.DeleteCommand(ctx, svc, commandArgs))
	case "clear":
		exitOnError(logger, cli.ClearCommand(ctx, svc, commandArgs))
	case "dashboard":
		exitOnError(logger, cli.DashboardCommand(ctx, svc, commandArgs))
	case "watch":
		exitOnError(logger, cli.WatchCommand(ctx, svc, logger, commandArgs))
	case "tui":
		exitOnError(logger, tui.Run(svc, func() models.PageSource { return newSource(cfg.Browser.URL) }))
	case "web":
		fs := flag.NewFlagSet("web", flag.ExitOnError)
		host := fs.String("host", cfg.Web.Host, "Interface to bind (use 0.0.0.0 to expose on the network)")
		port := fs.Int("port", cfg.Web.Port, "Port to listen on")
		_ = fs.Parse(commandArgs)

		server, err := web.NewServer(svc, newSource, logger)
		if err != nil {
			logger.Fatal("Failed to create web server", "err", err)
		}
		exitOnError(logger, server.Start(ctx, *host, *port))
	case "viz":
		if len(commandArgs) == 0 {
			fmt.Println("Error: viz requires a graph type (pipeline or all)")
			printUsage()
			os.Exit(1)
		}
		exitOnError(logger, cli.VizGraphCommand(ctx, svc, commandArgs[0], commandArgs[1:]))
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func openService(cfg config.Config, logger *log.Logger) (*service.Service, error) {
	backend, err := store.Open(cfg.Storage.DSN, store.Options{
		DefaultPath: config.DefaultDatabasePath(),
		Charm:       &charm.Config{Host: cfg.Charm.Host, AutoSync: cfg.Charm.AutoSync},
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("storage opened", "dsn", cfg.Storage.DSN, "key", cfg.Storage.Key)
	return service.New(store.NewGateway(backend, cfg.Storage.Key, logger), logger), nil
}

func exitOnError(logger *log.Logger, err error) {
	if err != nil {
		logger.Error("Error", "err", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`closex v%s - CRM lead scraper and pipeline dashboard

USAGE:
  closex [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --dsn <dsn>            Storage DSN (default: ~/.local/share/closex/closex.db)
                           sqlite:///path, badger:///dir, charm://host,
                           postgres://..., redis://..., memory:
  --log-level <level>    debug, info, warn or error

COMMANDS:
  extract                Scrape a page and merge its records
    --url <url>            Page to render in Chrome (default: browser.url)
    --file <path>          Saved HTML page
    -                      Read the page HTML from stdin
    --wait-selector <css>  Wait for this selector before reading the page
    --headful              Show the browser window

  status                 Show record counts and last sync time
  list <kind>            List contacts, opportunities or tasks
    --query <text>         Case-insensitive search
    --limit <n>            Max results (default: 50)
  delete <kind> <id>     Delete one record
  clear --confirm        Delete every record

  dashboard              Print the pipeline dashboard
  viz pipeline|all       Generate a GraphViz graph
    --output <file>        Output file (default: stdout)

  tui                    Interactive terminal UI
  web                    Web UI and JSON API
    --host <addr>          Interface to bind (default: 127.0.0.1)
    --port <n>             Port to listen on (default: 8080)
  mcp                    Start MCP server for Claude Desktop
  watch [dir]            Re-extract saved .html pages when they change
    --debounce <dur>       Quiet period per file (default: 500ms)

  sync link|status|now|wipe   Charm cloud sync for the charm:// backend
  config init|path       Write the current settings to the config file
    --force                Overwrite an existing file (init)

CONFIG:
  %s
  Environment overrides use CLOSEX_ with dots as underscores,
  e.g. CLOSEX_STORAGE_DSN, CLOSEX_BROWSER_HEADLESS.

EXAMPLES:
  # Scrape a saved leads page
  closex extract --file ~/Downloads/leads.html

  # Scrape the live pipeline with a logged-in Chrome profile
  CLOSEX_BROWSER_USER_DATA_DIR=~/.config/chrome closex extract --url https://app.close.com/opportunities/

  # Show contacts at Acme
  closex list contacts --query acme

`, version, config.Path())
}
