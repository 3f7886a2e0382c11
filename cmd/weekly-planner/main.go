// Weekly Planner MCP server.
//
// Personal task management and weekly planning over MCP: task sections
// with priorities and due dates, plus one markdown plan per week. Works
// with any MCP-capable AI tool over stdio.
//
// Usage:
//
//	weekly-planner serve    # Start MCP server (stdio transport)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	plannerserver "github.com/appdotbuilder/weekly-planner/internal/server"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("weekly-planner v%s\n", plannerserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	s, cleanup, err := plannerserver.New()
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Graceful shutdown on interrupt.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	_ = ctx // stdio server manages its own lifecycle

	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Weekly Planner v%s — task and weekly planning MCP server

Usage:
  weekly-planner serve    Start the MCP server (stdio transport)

Configuration:
  Settings come from weekly-planner.toml in the working directory (or
  ~/.weekly-planner/config.toml), overridable via environment:

    WEEKLY_PLANNER_DATA_DIR   Storage root (default: data)
    WEEKLY_PLANNER_BACKEND    "files" or "sqlite" (default: files)

  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "weekly-planner": {
        "command": "weekly-planner",
        "args": ["serve"]
      }
    }
  }
`, plannerserver.Version)
}
