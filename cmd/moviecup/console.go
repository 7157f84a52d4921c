package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/abrezinsky/moviecup/internal/browser"
	"github.com/abrezinsky/moviecup/internal/logger"
)

// console runs the keyboard shortcuts shared by every platform
type console struct {
	out        io.Writer
	log        *logger.SlogLogger
	metricsURL string
	status     func() string
	open       func(url string) error
}

// handleKey performs the action bound to key. It returns true when the
// server should shut down.
func (c *console) handleKey(key byte) bool {
	switch strings.ToLower(string(key)) {
	case "m":
		fmt.Fprintf(c.out, "%sOpening metrics in browser...%s\n", cyan, reset)
		open := c.open
		if open == nil {
			open = browser.Open
		}
		if err := open(c.metricsURL); err != nil {
			fmt.Fprintf(c.out, "%sError opening browser: %v%s\n", red, err, reset)
		}
	case "s":
		if c.status != nil {
			fmt.Fprintf(c.out, "%sStatus: %s%s\n", green, c.status(), reset)
		}
	case "h":
		if c.log.IsHTTPLoggingEnabled() {
			c.log.DisableHTTPLogging()
			fmt.Fprintf(c.out, "%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			c.log.EnableHTTPLogging()
			fmt.Fprintf(c.out, "%sHTTP logging enabled%s\n", green, reset)
		}
	case "l":
		c.cycleLogLevel()
	case "?":
		c.printHelp()
	case "q", "\x03": // Ctrl+C
		fmt.Fprintf(c.out, "%sShutting down server...%s\n", yellow, reset)
		return true
	}
	return false
}

// cycleLogLevel cycles through debug -> info -> warn -> error
func (c *console) cycleLogLevel() {
	var next string
	switch c.log.GetLevel().String() {
	case "DEBUG":
		next = "info"
	case "INFO":
		next = "warn"
	case "WARN":
		next = "error"
	case "ERROR":
		next = "debug"
	default:
		next = "info"
	}

	c.log.SetLevel(logger.ParseLevel(next))
	fmt.Fprintf(c.out, "%sLog level: %s%s%s\n", green, yellow, next, reset)
}

// printHelp displays all available keyboard shortcuts
func (c *console) printHelp() {
	fmt.Fprintf(c.out, "\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset)
	fmt.Fprintf(c.out, "    %sm%s      - Open metrics page in browser\n", cyan, reset)
	fmt.Fprintf(c.out, "    %ss%s      - Show server status\n", cyan, reset)
	fmt.Fprintf(c.out, "    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Fprintf(c.out, "    %sl%s      - Cycle log level (debug → info → warn → error)\n", cyan, reset)
	fmt.Fprintf(c.out, "    %sq%s      - Quit server\n", cyan, reset)
	fmt.Fprintf(c.out, "    %s?%s      - Show this help\n\n", cyan, reset)
}
