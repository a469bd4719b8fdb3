// Package tools generates the MCP tool set from the entity registry and
// dispatches tool calls to generic, entity-agnostic handlers.
package tools

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bobmcallan/agiloft-mcp/internal/agiloft"
	"github.com/bobmcallan/agiloft-mcp/internal/registry"
)

// Actions routable by the dispatcher. One handler exists per action, each
// generic over EntityConfig.
const (
	ActionSearch             = "search"
	ActionGet                = "get"
	ActionCreate             = "create"
	ActionUpdate             = "update"
	ActionDelete             = "delete"
	ActionUpsert             = "upsert"
	ActionAttachFile         = "attach_file"
	ActionRetrieveAttachment = "retrieve_attachment"
	ActionRemoveAttachment   = "remove_attachment"
	ActionAttachmentInfo     = "get_attachment_info"
	ActionActionButton       = "action_button"
	ActionEvaluateFormat     = "evaluate_format"
)

// Route maps a tool name to the (entity, action) pair handling it.
type Route struct {
	EntityKey string
	Action    string
}

// toolName builds names like agiloft_search_contracts / agiloft_get_contract.
// External callers depend on this convention; search-style operations use
// the plural form, singular operations the singular.
func toolName(action string, e registry.EntityConfig, plural bool) string {
	name := e.Key
	if plural {
		name = e.KeyPlural
	}
	return "agiloft_" + action + "_" + name
}

// dataProperties converts an entity's key fields into a JSON schema
// property map. The field list is documentation, not a closed schema, so
// callers may always send additional properties.
func dataProperties(e registry.EntityConfig) map[string]any {
	props := make(map[string]any, len(e.KeyFields))
	for _, f := range e.KeyFields {
		props[f.Name] = map[string]any{
			"type":        f.Type,
			"description": f.Description,
		}
	}
	return props
}

func dataOption(e registry.EntityConfig, description string) mcp.ToolOption {
	return mcp.WithObject("data",
		mcp.Required(),
		mcp.Description(description),
		mcp.Properties(dataProperties(e)),
		mcp.AdditionalProperties(true),
	)
}

func searchTool(e registry.EntityConfig) mcp.Tool {
	searchable := "key fields"
	if len(e.TextSearchFields) > 0 {
		searchable = strings.Join(e.TextSearchFields, ", ")
	}
	preview := e.DefaultSearchFields
	if len(preview) > 5 {
		preview = preview[:5]
	}
	return mcp.NewTool(toolName(ActionSearch, e, true),
		mcp.WithDescription(fmt.Sprintf(
			"Search for %s in Agiloft. Use structured queries like 'status=Active AND field>value' " +
				"or text search against %s. Returns matching records with key fields.",
			strings.ToLower(e.DisplayNamePlural), searchable)),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description(fmt.Sprintf(
				"Structured query (e.g. 'status=Active AND field>value') or text to search in %s using LIKE matching",
				searchable))),
		mcp.WithArray("fields",
			mcp.WithStringItems(),
			mcp.Description("Fields to return. Defaults to: "+strings.Join(preview, ", ")+"...")),
		mcp.WithNumber("limit",
			mcp.DefaultNumber(50),
			mcp.Description("Maximum results to return (default 50)")),
	)
}

func getTool(e registry.EntityConfig) mcp.Tool {
	return mcp.NewTool(toolName(ActionGet, e, false),
		mcp.WithDescription(fmt.Sprintf(
			"Retrieve a specific %s by ID with full details.", strings.ToLower(e.DisplayName))),
		mcp.WithNumber("record_id",
			mcp.Required(),
			mcp.Description(fmt.Sprintf("The ID of the %s to retrieve", strings.ToLower(e.DisplayName)))),
		mcp.WithArray("fields",
			mcp.WithStringItems(),
			mcp.Description("Specific fields to return. If omitted, returns all fields.")),
	)
}

func createTool(e registry.EntityConfig) mcp.Tool {
	required := "none"
	if len(e.RequiredFields) > 0 {
		required = strings.Join(e.RequiredFields, ", ")
	}
	lower := strings.ToLower(e.DisplayName)
	return mcp.NewTool(toolName(ActionCreate, e, false),
		mcp.WithDescription(fmt.Sprintf(
			"Create a new %s in Agiloft. Required fields: %s. " +
				"Key fields are shown in the schema; any valid Agiloft field can be included.",
			lower, required)),
		dataOption(e, fmt.Sprintf(
			"%s data. Key fields shown below; any valid Agiloft %s field can be included.",
			e.DisplayName, lower)),
	)
}

func updateTool(e registry.EntityConfig) mcp.Tool {
	lower := strings.ToLower(e.DisplayName)
	return mcp.NewTool(toolName(ActionUpdate, e, false),
		mcp.WithDescription(fmt.Sprintf(
			"Update an existing %s in Agiloft. Only include fields that need to be changed.", lower)),
		mcp.WithNumber("record_id",
			mcp.Required(),
			mcp.Description(fmt.Sprintf("The ID of the %s to update", lower))),
		dataOption(e, fmt.Sprintf("Fields to update on the %s.", lower)),
	)
}

func deleteTool(e registry.EntityConfig) mcp.Tool {
	lower := strings.ToLower(e.DisplayName)
	return mcp.NewTool(toolName(ActionDelete, e, false),
		mcp.WithDescription(fmt.Sprintf(
			"Delete a %s from Agiloft. This is irreversible. " +
				"The delete_rule controls how dependent records are handled.", lower)),
		mcp.WithNumber("record_id",
			mcp.Required(),
			mcp.Description(fmt.Sprintf("The ID of the %s to delete", lower))),
		mcp.WithString("delete_rule",
			mcp.Description("How to handle dependent records"),
			mcp.Enum(agiloft.DeleteRules...),
			mcp.DefaultString(agiloft.DeleteRuleUnlinkOtherwiseDelete)),
	)
}

func upsertTool(e registry.EntityConfig) mcp.Tool {
	lower := strings.ToLower(e.DisplayName)
	return mcp.NewTool(toolName(ActionUpsert, e, false),
		mcp.WithDescription(fmt.Sprintf(
			"Insert or update a %s. If a record matching the query exists, updates it; " +
				"otherwise creates a new one. Query format: fieldName~='value' " +
				"(e.g., salesforce_contract_id~='SF-12345').", lower)),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Match query: fieldName~='value' to find existing record")),
		dataOption(e, fmt.Sprintf("%s data to insert or update.", e.DisplayName)),
	)
}

func attachFileTool(e registry.EntityConfig) mcp.Tool {
	lower := strings.ToLower(e.DisplayName)
	return mcp.NewTool(toolName(ActionAttachFile, e, false),
		mcp.WithDescription(fmt.Sprintf(
			"Upload a file attachment to a %s record. Requires the record ID, target field name, " +
				"file name, and base64-encoded file content.", lower)),
		mcp.WithNumber("record_id",
			mcp.Required(),
			mcp.Description(fmt.Sprintf("The ID of the %s record", lower))),
		mcp.WithString("field",
			mcp.Required(),
			mcp.Description("The file field name to attach to (e.g., 'attached_file')")),
		mcp.WithString("file_name",
			mcp.Required(),
			mcp.Description("Name of the file being uploaded")),
		mcp.WithString("file_content_base64",
			mcp.Required(),
			mcp.Description("Base64-encoded file content")),
	)
}

func retrieveAttachmentTool(e registry.EntityConfig) mcp.Tool {
	lower := strings.ToLower(e.DisplayName)
	return mcp.NewTool(toolName(ActionRetrieveAttachment, e, false),
		mcp.WithDescription(fmt.Sprintf(
			"Download an attachment from a %s record. Use get_attachment_info first " +
				"to find the correct field and file position.", lower)),
		mcp.WithNumber("record_id",
			mcp.Required(),
			mcp.Description(fmt.Sprintf("The ID of the %s record", lower))),
		mcp.WithString("field",
			mcp.Required(),
			mcp.Description("The file field name to retrieve from")),
		mcp.WithNumber("file_position",
			mcp.DefaultNumber(0),
			mcp.Description("Position of the file in the field (0-based, default 0)")),
	)
}

func removeAttachmentTool(e registry.EntityConfig) mcp.Tool {
	lower := strings.ToLower(e.DisplayName)
	return mcp.NewTool(toolName(ActionRemoveAttachment, e, false),
		mcp.WithDescription(fmt.Sprintf(
			"Remove an attachment from a %s record's file field. Use get_attachment_info " +
				"first to confirm the file position.", lower)),
		mcp.WithNumber("record_id",
			mcp.Required(),
			mcp.Description(fmt.Sprintf("The ID of the %s record", lower))),
		mcp.WithString("field",
			mcp.Required(),
			mcp.Description("The file field name to remove from")),
		mcp.WithNumber("file_position",
			mcp.DefaultNumber(0),
			mcp.Description("Position of the file to remove (0-based, default 0)")),
	)
}

func attachmentInfoTool(e registry.EntityConfig) mcp.Tool {
	lower := strings.ToLower(e.DisplayName)
	return mcp.NewTool(toolName(ActionAttachmentInfo, e, false),
		mcp.WithDescription(fmt.Sprintf(
			"Get metadata about files attached to a %s record's file field, including " +
				"file names, sizes, and positions. Use this before retrieve_attachment " +
				"to find the correct file position.", lower)),
		mcp.WithNumber("record_id",
			mcp.Required(),
			mcp.Description(fmt.Sprintf("The ID of the %s record", lower))),
		mcp.WithString("field",
			mcp.Required(),
			mcp.Description("The file field name to get info for")),
	)
}

func actionButtonTool(e registry.EntityConfig) mcp.Tool {
	lower := strings.ToLower(e.DisplayName)
	return mcp.NewTool(toolName(ActionActionButton, e, false),
		mcp.WithDescription(fmt.Sprintf(
			"Trigger an action button on a %s record. Executes the named workflow action button.", lower)),
		mcp.WithNumber("record_id",
			mcp.Required(),
			mcp.Description(fmt.Sprintf("The ID of the %s record", lower))),
		mcp.WithString("button_name",
			mcp.Required(),
			mcp.Description("Name of the action button to trigger")),
	)
}

func evaluateFormatTool(e registry.EntityConfig) mcp.Tool {
	lower := strings.ToLower(e.DisplayName)
	return mcp.NewTool(toolName(ActionEvaluateFormat, e, false),
		mcp.WithDescription(fmt.Sprintf(
			"Evaluate a formula/format expression against a %s record. Returns the computed result.", lower)),
		mcp.WithNumber("record_id",
			mcp.Required(),
			mcp.Description(fmt.Sprintf("The ID of the %s record", lower))),
		mcp.WithString("formula",
			mcp.Required(),
			mcp.Description("Agiloft formula expression to evaluate")),
	)
}

// generators in the order ops are emitted per entity.
var generators = []struct {
	action string
	build  func(registry.EntityConfig) mcp.Tool
}{
	{ActionSearch, searchTool},
	{ActionGet, getTool},
	{ActionCreate, createTool},
	{ActionUpdate, updateTool},
	{ActionDelete, deleteTool},
	{ActionUpsert, upsertTool},
	{ActionAttachFile, attachFileTool},
	{ActionRetrieveAttachment, retrieveAttachmentTool},
	{ActionRemoveAttachment, removeAttachmentTool},
	{ActionAttachmentInfo, attachmentInfoTool},
	{ActionActionButton, actionButtonTool},
	{ActionEvaluateFormat, evaluateFormatTool},
}

// supportsAction consults the entity's capability flags. Core CRUD and
// upsert are always generated.
func supportsAction(e registry.EntityConfig, action string) bool {
	switch action {
	case ActionAttachFile, ActionRetrieveAttachment, ActionRemoveAttachment, ActionAttachmentInfo:
		return e.SupportsAttach
	case ActionActionButton:
		return e.SupportsActionButton
	case ActionEvaluateFormat:
		return e.SupportsEvaluateFormat
	default:
		return true
	}
}

// Generate builds one tool per (entity, supported action) pair plus the
// dispatch map routing each tool name back to its pair. Both are produced
// in a single pass so they cannot diverge. Pure function of the registry;
// regenerated identically on every process start.
func Generate() ([]mcp.Tool, map[string]Route) {
	var toolList []mcp.Tool
	routes := make(map[string]Route)

	for _, e := range registry.All() {
		for _, g := range generators {
			if !supportsAction(e, g.action) {
				continue
			}
			tool := g.build(e)
			toolList = append(toolList, tool)
			routes[tool.Name] = Route{EntityKey: e.Key, Action: g.action}
		}
	}
	return toolList, routes
}
