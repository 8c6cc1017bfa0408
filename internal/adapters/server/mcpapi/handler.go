// Package mcpapi provides a stateless MCP streamable-HTTP adapter with
// read-only ledger tools for event dashboards.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/retreatworks/bandscan/internal/app"
	"github.com/retreatworks/bandscan/internal/domain"
)

// ActivityReader fetches one member activity snapshot from the ledger.
type ActivityReader interface {
	MemberActivity(ctx context.Context, query app.ActivityQuery) (app.Snapshot, error)
}

// StatsReader fetches aggregate per-activity stats from the ledger.
type StatsReader interface {
	ActivityStats(ctx context.Context, adminID, activity string) ([]app.StatsRow, error)
}

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter with member-activity, optional
// stats, and optional meal-window tools.
func NewHandler(cfg Config, activity ActivityReader, stats StatsReader, schedule domain.Schedule) (*Handler, error) {
	if activity == nil {
		return nil, fmt.Errorf("activity reader is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerMemberActivityTool(mcpSrv, activity)
	if stats != nil {
		registerStatsTool(mcpSrv, stats)
	}
	if len(schedule.Windows()) > 0 {
		registerMealWindowTool(mcpSrv, schedule)
	}

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "bandscan"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerMemberActivityTool registers the `bandscan.member_activity` tool.
func registerMemberActivityTool(srv *mcpserver.MCPServer, activity ActivityReader) {
	srv.AddTool(
		mcp.NewTool(
			"bandscan.member_activity",
			mcp.WithDescription("Fetch gift, meal, and service counts for one wristband tag."),
			mcp.WithString("tag_id", mcp.Required(), mcp.Description("Wristband tag identifier")),
			mcp.WithString("activity", mcp.Description("Ledger activity to query"),
				mcp.Enum(domain.ActivityGiftApproval, domain.ActivityGiftFulfilled, domain.ActivityServiceScan, domain.ActivityRegCheck)),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			tagID, err := req.RequireString("tag_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			query := app.ActivityQuery{
				TagID:    tagID,
				Activity: req.GetString("activity", domain.ActivityGiftApproval),
			}
			if query.Activity == domain.ActivityGiftApproval || query.Activity == domain.ActivityGiftFulfilled {
				query.Category = domain.WireCategoryGiftTracking
			}
			snapshot, err := activity.MemberActivity(ctx, query)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"member":   snapshot.Member,
				"counters": snapshot.Counters,
				"message":  snapshot.Message,
			})
			if err != nil {
				return nil, fmt.Errorf("encode member_activity result: %w", err)
			}
			return result, nil
		},
	)
}

// registerStatsTool registers the `bandscan.activity_stats` tool.
func registerStatsTool(srv *mcpserver.MCPServer, stats StatsReader) {
	slots := domain.MealSlots()
	slotNames := make([]string, len(slots))
	for i, s := range slots {
		slotNames[i] = string(s)
	}

	srv.AddTool(
		mcp.NewTool(
			"bandscan.activity_stats",
			mcp.WithDescription("Fetch aggregate scan totals for one meal window."),
			mcp.WithString("admin_id", mcp.Required(), mcp.Description("Member id of the requesting admin")),
			mcp.WithString("meal_slot", mcp.Required(), mcp.Description("Meal window to aggregate"), mcp.Enum(slotNames...)),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			adminID, err := req.RequireString("admin_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			slot, err := req.RequireString("meal_slot")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if !domain.ValidMealSlot(domain.MealSlot(slot)) {
				return mcp.NewToolResultError("invalid_request: unknown meal slot " + slot), nil
			}
			rows, err := stats.ActivityStats(ctx, adminID, slot)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"rows": rows,
			})
			if err != nil {
				return nil, fmt.Errorf("encode activity_stats result: %w", err)
			}
			return result, nil
		},
	)
}

// registerMealWindowTool registers the `bandscan.meal_window` tool.
func registerMealWindowTool(srv *mcpserver.MCPServer, schedule domain.Schedule) {
	srv.AddTool(
		mcp.NewTool(
			"bandscan.meal_window",
			mcp.WithDescription("Resolve which meal window, if any, covers a point in time."),
			mcp.WithString("at", mcp.Description("RFC 3339 timestamp, defaults to now")),
		),
		func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			at := time.Now()
			if raw := strings.TrimSpace(req.GetString("at", "")); raw != "" {
				parsed, err := time.Parse(time.RFC3339, raw)
				if err != nil {
					return mcp.NewToolResultError("invalid_request: " + err.Error()), nil
				}
				at = parsed
			}
			slot, err := schedule.Resolve(at)
			if errors.Is(err, domain.ErrNoMealWindow) {
				result, encErr := mcp.NewToolResultJSON(map[string]any{"open": false})
				if encErr != nil {
					return nil, fmt.Errorf("encode meal_window result: %w", encErr)
				}
				return result, nil
			}
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"open":  true,
				"slot":  string(slot),
				"label": slot.Label(),
			})
			if err != nil {
				return nil, fmt.Errorf("encode meal_window result: %w", err)
			}
			return result, nil
		},
	)
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, domain.ErrInvalidTag), errors.Is(err, domain.ErrInvalidMemberID):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, domain.ErrNoMealWindow):
		return mcp.NewToolResultError("no_meal_window: " + err.Error())
	case errors.Is(err, app.ErrFetchFailed):
		return mcp.NewToolResultError("ledger_unavailable: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
