package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/agiloft-mcp/internal/agiloft"
	"github.com/bobmcallan/agiloft-mcp/internal/common"
	"github.com/bobmcallan/agiloft-mcp/internal/config"
	"github.com/bobmcallan/agiloft-mcp/internal/prompts"
	"github.com/bobmcallan/agiloft-mcp/internal/tools"
	"github.com/bobmcallan/agiloft-mcp/internal/workflow"
)

const version = "1.0.0"

func main() {
	stdio := flag.Bool("stdio", true, "Use stdio transport (for Claude Desktop)")
	configFile := flag.String("config", "agiloft-mcp.toml", "Path to config file")
	flag.Parse()

	// .env is optional; real env vars still win inside config loading.
	_ = godotenv.Load()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", *configFile, err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := common.NewLoggerFromConfig(cfg.Logging)

	client := agiloft.NewClient(cfg.Agiloft, logger)
	defer client.Logout(context.Background())

	mcpServer := server.NewMCPServer(
		cfg.Server.Name,
		version,
		server.WithToolCapabilities(true),
		server.WithPromptCapabilities(true),
	)

	dispatcher := tools.NewDispatcher(client, logger)
	dispatcher.Register(mcpServer)

	workflows := workflow.NewHandlers(client, logger)
	workflows.Register(mcpServer)

	prompts.Register(mcpServer)

	logger.Info().
		Str("base_url", cfg.Agiloft.BaseURL).
		Str("kb", cfg.Agiloft.KB).
		Msg("Agiloft MCP server ready")

	if *stdio {
		// Stdio transport — reads stdin, writes stdout
		if err := server.ServeStdio(mcpServer); err != nil {
			fmt.Fprintf(os.Stderr, "stdio server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	port := cfg.Server.Port

	// Streamable HTTP transport — listens on configured port
	httpServer := server.NewStreamableHTTPServer(mcpServer,
		server.WithStateLess(true),
	)

	fmt.Fprintf(os.Stderr, "Starting MCP Streamable HTTP on :%s\n", port)

	if err := httpServer.Start(":" + port); err != nil {
		fmt.Fprintf(os.Stderr, "http server error: %v\n", err)
		os.Exit(1)
	}
}
