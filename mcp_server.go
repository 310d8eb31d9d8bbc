package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/alc6/pgtables/tables"
)

// StartMCPServer serves the table operations over stdio until the client disconnects.
func StartMCPServer(cfg *Config) error {
	slog.Info("starting pgtables mcp server")
	return server.ServeStdio(newMCPServer(cfg))
}

func newMCPServer(cfg *Config) *server.MCPServer {
	s := server.NewMCPServer(
		"pgtables",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	createTablesTool := mcp.NewTool("create_tables",
		mcp.WithDescription("Validate table definitions and create the tables in the configured PostgreSQL database with CREATE TABLE IF NOT EXISTS"),
		mcp.WithString("spec_path",
			mcp.Required(),
			mcp.Description("Path to a YAML table definition file or a directory of them"),
		),
		mcp.WithBoolean("strict_drift",
			mcp.Description("Fail when an existing table differs from its definition (default: from config)"),
		),
	)
	s.AddTool(createTablesTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCreateTables(ctx, request, cfg, NewTargetManager(cfg.Database))
	})

	renderDDLTool := mcp.NewTool("render_ddl",
		mcp.WithDescription("Validate table definitions and return their CREATE TABLE statements without a database"),
		mcp.WithString("spec_path",
			mcp.Required(),
			mcp.Description("Path to a YAML table definition file or a directory of them"),
		),
	)
	s.AddTool(renderDDLTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRenderDDL(ctx, request)
	})

	tableExistsTool := mcp.NewTool("table_exists",
		mcp.WithDescription("Report whether tables exist in the configured PostgreSQL database"),
		mcp.WithString("tables",
			mcp.Required(),
			mcp.Description("Comma-separated table names, optionally schema-qualified"),
		),
	)
	s.AddTool(tableExistsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleTableExists(ctx, request, cfg, NewTargetManager(cfg.Database))
	})

	return s
}

func handleCreateTables(ctx context.Context, request mcp.CallToolRequest, cfg *Config, dbManager DatabaseManager) (*mcp.CallToolResult, error) {
	specPath, err := request.RequireString("spec_path")
	if err != nil {
		return mcp.NewToolResultError("spec_path parameter is required"), nil
	}
	if err := cfg.RequireDatabase(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	strict := request.GetBool("strict_drift", cfg.StrictDrift)

	created, err := createTablesCore(ctx, specPath, strict, NewFileSpecReader(), dbManager)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	output, err := createResultsJSON(created)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(fmt.Sprintf("tables created successfully:\n\n%s", output)), nil
}

func handleRenderDDL(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	specPath, err := request.RequireString("spec_path")
	if err != nil {
		return mcp.NewToolResultError("spec_path parameter is required"), nil
	}

	output, err := renderCore(specPath, NewFileSpecReader())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(output), nil
}

func handleTableExists(ctx context.Context, request mcp.CallToolRequest, cfg *Config, dbManager DatabaseManager) (*mcp.CallToolResult, error) {
	list, err := request.RequireString("tables")
	if err != nil {
		return mcp.NewToolResultError("tables parameter is required"), nil
	}
	names := splitTableList(list)
	if len(names) == 0 {
		return mcp.NewToolResultError("tables parameter must name at least one table"), nil
	}
	if err := cfg.RequireDatabase(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	output, err := existsCore(ctx, names, dbManager)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(output), nil
}

func splitTableList(list string) []string {
	var names []string
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

type createResult struct {
	Table   string   `json:"table"`
	Existed bool     `json:"existed"`
	Query   string   `json:"query"`
	Drift   []string `json:"drift,omitempty"`
}

func createResultsJSON(created []*tables.Table) (string, error) {
	results := make([]createResult, len(created))
	for i, t := range created {
		results[i] = createResult{Table: t.Name, Existed: t.Existed, Query: t.Query}
		for _, d := range t.Drifts {
			results[i].Drift = append(results[i].Drift, d.String())
		}
	}

	jsonOutput, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result to JSON: %w", err)
	}
	return string(jsonOutput), nil
}
