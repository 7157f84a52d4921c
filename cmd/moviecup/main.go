package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/abrezinsky/moviecup/internal/app"
	"github.com/abrezinsky/moviecup/internal/auth"
	"github.com/abrezinsky/moviecup/internal/config"
	"github.com/abrezinsky/moviecup/internal/logger"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

var (
	version = "dev"
)

// showLogo prints the MovieCup banner
func showLogo() {
	width := 62
	border := strings.Repeat("═", width)

	logo := []string{
		"   __  __            _       ____                          ",
		"  |  \\/  | _____   _(_) ___ / ___|   _ _ __               ",
		"  | |\\/| |/ _ \\ \\ / / |/ _ \\ |  | | | | '_ \\              ",
		"  | |  | | (_) \\ V /| |  __/ |__| |_| | |_) |             ",
		"  |_|  |_|\\___/ \\_/ |_|\\___|\\____\\__,_| .__/              ",
		"                                      |_|                 ",
	}

	fmt.Printf("\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		for len(line) < width {
			line += " "
		}
		fmt.Printf("  %s║%s%s%s║%s\n", cyan, yellow, line, cyan, reset)
	}
	fmt.Printf("  %s╚%s╝%s\n\n", cyan, border, reset)
}

func main() {
	port := flag.Int("port", 0, "HTTP server port (overrides addr from config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides db_path from config)")
	adminPw := flag.String("adminpw", "", "Admin password (auto-generated if not set)")
	logLevel := flag.String("loglevel", "", "Log level (debug, info, warn, error)")
	noLogo := flag.Bool("nologo", false, "Skip the startup banner")
	noKeyboard := flag.Bool("nokeyboard", false, "Disable keyboard shortcuts")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `MovieCup - Movie Tournament Server

Usage:
  moviecup [options]

Options:
  -port int      HTTP server port (default from config, 8081)
  -db string     SQLite database path (default "moviecup.db")
  -adminpw str   Admin password (auto-generated if not set)
  -loglevel str  Log level: debug, info, warn, error (default "info")
  -nologo        Skip the startup banner
  -nokeyboard    Disable keyboard shortcuts
  -version       Show version and exit
  -help          Show this help message

Configuration:
  MOVIECUP_CONFIG points at an optional YAML file. Every key can be
  overridden with a MOVIECUP_ environment variable, for example
  MOVIECUP_TMDB_API_KEY or MOVIECUP_BASE_URL. Flags win over both.

Keyboard Shortcuts (when enabled):
  m              Open the metrics page in browser
  s              Show server status
  h              Toggle HTTP request logging
  l              Cycle log level (debug → info → warn → error)
  q              Quit server
  ?              Show keyboard help

Examples:
  moviecup                           # Run with config defaults
  moviecup -port 8080                # Run on port 8080
  moviecup -db /data/moviecup.db     # Use custom database path
  moviecup -adminpw secret123        # Use specific admin password

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("moviecup %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(context.Background())
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}
	if *port != 0 {
		cfg.Addr = fmt.Sprintf(":%d", *port)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *adminPw != "" {
		cfg.AdminPassword = *adminPw
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	if !*noLogo {
		showLogo()
	}

	// Setup admin authentication
	password := cfg.AdminPassword
	if password == "" {
		password = auth.GeneratePassword()
	}
	adminAuth := auth.New(password)

	appLog := logger.NewWithOptions(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
	})
	if cfg.TMDBAPIKey == "" {
		appLog.Warn("No TMDB API key configured, catalog requests will fail", "env", config.EnvPrefix+"TMDB_API_KEY")
	}

	catalog := app.NewCatalog(cfg, appLog)

	a, err := app.New(cfg, appLog, catalog, adminAuth)
	if err != nil {
		log.Fatal("Failed to initialize application: ", err)
	}

	appLog.Info("Admin password", "password", password)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Run(cfg.Addr)
	}()

	// Wait a moment for server to start
	time.Sleep(100 * time.Millisecond)

	quit := make(chan struct{})
	if !*noKeyboard && term.IsTerminal(int(os.Stdin.Fd())) {
		c := &console{
			out:        os.Stdout,
			log:        appLog,
			metricsURL: localURL(cfg.Addr) + "/metrics",
			status: func() string {
				return fmt.Sprintf("active tournaments: %d, catalog breaker: %s", a.ActiveTournaments(), catalog.BreakerState())
			},
		}
		c.printHelp()

		go func() {
			listenForKeyboard(c)
			close(quit)
		}()
	} else {
		fmt.Printf("\n%sKeyboard shortcuts disabled%s\n\n", yellow, reset)
	}

	select {
	case err := <-serverErr:
		if err != nil {
			a.Close()
			log.Fatal(err)
		}
	case <-ctx.Done():
		fmt.Printf("%sShutting down server...%s\n", yellow, reset)
	case <-quit:
	}

	a.Close()
}

// localURL returns the loopback URL for a listen address
func localURL(addr string) string {
	port := addr[strings.LastIndex(addr, ":")+1:]
	if port == "" {
		port = "80"
	}
	return "http://localhost:" + port
}
