// Package mcp implements the Model Context Protocol server for repocheck
// using the mcp-go library.
//
// The server exposes the repository's workflow checks as MCP tools over
// stdio: a full pre-commit run, single-check execution, and check discovery.
// Protocol handling is delegated to mcp-go; this package only wires the
// check registry and the bounded-concurrency runner into tool handlers.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"repocheck/internal/checks"
	"repocheck/internal/config"
	"repocheck/internal/logging"
	"repocheck/internal/report"
	"repocheck/internal/runner"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const serverVersion = "1.0.0"

// Server represents the repocheck MCP server instance.
type Server struct {
	config    *config.Config
	logger    *logging.AppLogger
	registry  *checks.Registry
	changeset *checks.ChangeSet
	limits    runner.Limits
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance.
func NewServer(cfg *config.Config, logger *logging.AppLogger) *Server {
	return &Server{
		config: cfg,
		logger: logger,
	}
}

// Start initializes the check registry and serves MCP over stdio until the
// client disconnects.
func (s *Server) Start() error {
	s.logger.Info("Initializing MCP server", "repoRoot", s.config.RepoRoot)

	if err := s.InitializeComponents(); err != nil {
		return err
	}

	s.mcpServer = server.NewMCPServer(
		"repocheck",
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	s.registerTools()

	s.logger.Info("MCP server created, starting stdio communication",
		"checks", s.registry.Len())

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// InitializeComponents builds the check registry and changeset without
// starting the transport. Split out so tests and the one-shot CLI commands
// can reuse the setup.
func (s *Server) InitializeComponents() error {
	changeset, err := checks.CollectChangeSet(s.config.RepoRoot, s.logger)
	if err != nil {
		return fmt.Errorf("failed to collect changeset: %w", err)
	}
	s.changeset = changeset

	s.registry = checks.NewRegistry(s.logger)
	checks.RegisterBuiltins(s.registry, s.config.RepoRoot, s.config.Commands, changeset)

	loader := checks.NewCheckFileLoader(s.logger, s.config.RepoRoot)
	custom, err := loader.LoadDir(s.config.CheckDir)
	if err != nil {
		return fmt.Errorf("failed to load custom checks: %w", err)
	}
	for _, check := range custom {
		s.registry.Add(check)
	}

	s.limits = s.config.RunnerLimits()
	return nil
}

// Registry exposes the loaded checks for the CLI commands.
func (s *Server) Registry() *checks.Registry {
	return s.registry
}

// registerTools declares the MCP tool surface.
func (s *Server) registerTools() {
	runPrecommitTool := mcp.NewTool("run_precommit",
		mcp.WithDescription("Run every registered workflow check with bounded concurrency and return the aggregate report"),
	)
	s.mcpServer.AddTool(runPrecommitTool, s.handleRunPrecommit)

	runCheckTool := mcp.NewTool("run_check",
		mcp.WithDescription("Run a single workflow check by name and return its outcome"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the check to run (see list_checks)"),
		),
	)
	s.mcpServer.AddTool(runCheckTool, s.handleRunCheck)

	listChecksTool := mcp.NewTool("list_checks",
		mcp.WithDescription("List the registered workflow checks with their resource class and blocking classification"),
	)
	s.mcpServer.AddTool(listChecksTool, s.handleListChecks)
}

// RunPrecommit executes every registered check and returns the report.
// Shared by the MCP handler and the `repocheck run` command.
func (s *Server) RunPrecommit(ctx context.Context) report.Report {
	var changed []string
	if s.changeset != nil {
		changed = s.changeset.Files
	}
	return checks.RunAll(ctx, s.logger, s.registry.All(), changed, s.limits)
}

func (s *Server) handleRunPrecommit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep := s.RunPrecommit(ctx)

	payload, err := json.Marshal(rep)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to serialize report: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// checkOutcome is the JSON shape for a single check run.
type checkOutcome struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Skipped bool   `json:"skipped,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleRunCheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	check, ok := s.registry.Get(name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown check %q", name)), nil
	}

	outcome := s.runSingleCheck(ctx, check)

	payload, err := json.Marshal(outcome)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to serialize outcome: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// runSingleCheck runs one check through the same pool machinery as a full
// run, so per-check timeouts and panic isolation behave identically.
func (s *Server) runSingleCheck(ctx context.Context, check checks.Check) checkOutcome {
	tasks, _ := checks.BuildTasks([]checks.Check{check}, nil)
	results := runner.RunPool(ctx, tasks, 1)

	out := checkOutcome{Name: check.Name}
	res := results[0]
	if res.Rejected() {
		out.Error = res.Err.Error()
		return out
	}
	if outcome, ok := res.Value.(checks.Outcome); ok {
		out.OK = outcome.OK
		out.Skipped = outcome.Skipped
		out.Detail = outcome.Detail
	}
	return out
}

// checkInfo is the JSON shape for check discovery.
type checkInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Class       string `json:"class"`
	Blocking    bool   `json:"blocking"`
}

func (s *Server) handleListChecks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	all := s.registry.All()
	infos := make([]checkInfo, 0, len(all))
	for _, check := range all {
		infos = append(infos, checkInfo{
			Name:        check.Name,
			Description: check.Description,
			Class:       string(check.Class),
			Blocking:    check.Blocking,
		})
	}

	payload, err := json.Marshal(infos)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to serialize check list: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}
