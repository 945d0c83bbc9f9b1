// Package mcp exposes register parsing and stored applications as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/applications"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/config"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/descriptions"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/pdf/content"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/pdf/security"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/scraper"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/storage"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 500
)

// Store is the part of the application store the tools read and write
type Store interface {
	Upsert(ctx context.Context, r applications.Record) (bool, error)
	Get(ctx context.Context, applicationNumber string) (applications.Record, error)
	List(ctx context.Context, limit int) ([]applications.Record, error)
}

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	parser    *scraper.Parser
	validator *content.Validator
	store     Store
	paths     *security.PathValidator
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance. Local documents are read
// from cfg.DocumentDir only.
func NewServer(cfg *config.Config, parser *scraper.Parser, validator *content.Validator, store Store, logger *slog.Logger) (*Server, error) {
	if parser == nil {
		return nil, fmt.Errorf("parser cannot be nil")
	}
	if validator == nil {
		return nil, fmt.Errorf("validator cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	paths, err := security.NewPathValidator(cfg.DocumentDir)
	if err != nil {
		return nil, err
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:    cfg,
		parser:    parser,
		validator: validator,
		store:     store,
		paths:     paths,
		logger:    logger.With("component", "mcp"),
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s, nil
}

// toolSpec holds a tool's parameters and handler
type toolSpec struct {
	options []mcp.ToolOption
	handler server.ToolHandlerFunc
}

// registerTools adds every tool that has a description
func (s *Server) registerTools() {
	specs := map[string]toolSpec{
		descriptions.ParsePDFFile: {
			options: []mcp.ToolOption{
				mcp.WithString("path",
					mcp.Required(),
					mcp.Description("Path to the PDF, relative to the document directory"),
				),
				mcp.WithBoolean("save",
					mcp.Description("Store the extracted applications in the database"),
				),
			},
			handler: s.handleParsePDFFile,
		},
		descriptions.ListApplications: {
			options: []mcp.ToolOption{
				mcp.WithNumber("limit",
					mcp.Description(fmt.Sprintf("Maximum number of applications (default %d, max %d)", DefaultListLimit, MaxListLimit)),
				),
			},
			handler: s.handleListApplications,
		},
		descriptions.GetApplication: {
			options: []mcp.ToolOption{
				mcp.WithString("application_number",
					mcp.Required(),
					mcp.Description("Council reference, for example 123/2018"),
				),
			},
			handler: s.handleGetApplication,
		},
	}

	for _, name := range descriptions.GetAllToolNames() {
		spec, ok := specs[name]
		if !ok {
			s.logger.Warn("tool has a description but no handler", "tool", name)
			continue
		}
		options := append([]mcp.ToolOption{mcp.WithDescription(descriptions.GetToolDescription(name))}, spec.options...)
		s.mcpServer.AddTool(mcp.NewTool(name, options...), spec.handler)
	}
}

func (s *Server) handleParsePDFFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resolved, err := s.paths.Resolve(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := s.validator.ReadFile(resolved)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	records, err := s.parser.ParseDocument(ctx, data, resolved)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if records == nil {
		records = []applications.Record{}
	}

	if save, _ := request.GetArguments()["save"].(bool); save {
		inserted := 0
		for _, r := range records {
			ok, err := s.store.Upsert(ctx, r)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if ok {
				inserted++
			}
		}
		s.logger.Info("stored parsed applications", "path", resolved, "records", len(records), "inserted", inserted)
	}

	return jsonResult(records)
}

func (s *Server) handleListApplications(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, err := listLimit(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	records, err := s.store.List(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if records == nil {
		records = []applications.Record{}
	}
	return jsonResult(records)
}

func (s *Server) handleGetApplication(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	number, err := request.RequireString("application_number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	record, err := s.store.Get(ctx, number)
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("application %s not found", number)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(record)
}

// listLimit reads the optional limit argument. JSON numbers arrive as
// float64.
func listLimit(args map[string]any) (int, error) {
	raw, ok := args["limit"]
	if !ok || raw == nil {
		return DefaultListLimit, nil
	}

	var limit int
	switch v := raw.(type) {
	case float64:
		limit = int(v)
	case int:
		limit = v
	default:
		return 0, fmt.Errorf("limit must be a number")
	}

	if limit < 1 {
		return 0, fmt.Errorf("limit must be at least 1")
	}
	return min(limit, MaxListLimit), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// Run serves MCP over the process's stdin and stdout until ctx is done or
// stdin closes
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve serves MCP over in and out
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("starting MCP server", "name", s.config.ServerName, "documents", s.paths.Directory())

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
