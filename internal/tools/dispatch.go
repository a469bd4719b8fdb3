package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/agiloft-mcp/internal/agiloft"
	"github.com/bobmcallan/agiloft-mcp/internal/common"
	"github.com/bobmcallan/agiloft-mcp/internal/registry"
)

// Dispatcher routes generated tool invocations to the generic action
// handlers. All entity tools share one dispatch path so adding an entity
// to the registry requires no handler changes.
type Dispatcher struct {
	api    agiloft.API
	tools  []mcp.Tool
	routes map[string]Route
	logger *common.Logger
}

func NewDispatcher(api agiloft.API, logger *common.Logger) *Dispatcher {
	tools, routes := Generate()
	return &Dispatcher{
		api:    api,
		tools:  tools,
		routes: routes,
		logger: logger,
	}
}

// Tools returns the generated tool definitions in registry order.
func (d *Dispatcher) Tools() []mcp.Tool {
	return d.tools
}

// Register adds every generated tool to the MCP server, all bound to the
// shared dispatch handler.
func (d *Dispatcher) Register(s *server.MCPServer) {
	for _, tool := range d.tools {
		name := tool.Name
		s.AddTool(tool, func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return d.Dispatch(ctx, name, r.GetArguments()), nil
		})
	}
	d.logger.Info().Int("tools", len(d.tools)).Msg("Registered entity tools")
}

// Dispatch resolves a tool name to its entity and action and runs the
// handler. Unknown names and route inconsistencies surface as error
// envelopes, never as Go errors.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any) (res *mcp.CallToolResult) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().Str("tool", name).Str("panic", fmt.Sprintf("%v", r)).Msg("Handler panic recovered")
			res = envelopeResult(envelope{
				Success:   false,
				Operation: name,
				Error:     fmt.Sprintf("internal error handling %s: %v", name, r),
			})
		}
	}()

	route, ok := d.routes[name]
	if !ok {
		return envelopeResult(envelope{
			Success:   false,
			Operation: name,
			Error:     fmt.Sprintf("unknown tool: %s", name),
		})
	}

	entity, err := registry.Get(route.EntityKey)
	if err != nil {
		return envelopeResult(envelope{
			Success:   false,
			Operation: route.Action,
			Entity:    route.EntityKey,
			Error:     err.Error(),
		})
	}

	handler, ok := actionHandlers[route.Action]
	if !ok {
		return formatError(route.Action, entity, fmt.Errorf("no handler for action %s", route.Action), nil)
	}

	d.logger.Debug().
		Str("tool", name).
		Str("entity", entity.Key).
		Str("action", route.Action).
		Msg("Dispatching tool call")

	return handler(ctx, entity, args, d.api)
}
