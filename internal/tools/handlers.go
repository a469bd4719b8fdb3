package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bobmcallan/agiloft-mcp/internal/agiloft"
	"github.com/bobmcallan/agiloft-mcp/internal/registry"
)

const defaultSearchLimit = 50

// envelope is the uniform response shape every entity tool returns.
// External callers parse it; the field set and names are a contract.
type envelope struct {
	Success   bool   `json:"success"`
	Operation string `json:"operation"`
	Entity    string `json:"entity"`
	RecordID  *int   `json:"record_id,omitempty"`
	Count     *int   `json:"count,omitempty"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
}

// formatResponse wraps operation output in the success envelope. Sequences
// additionally carry their length as count.
func formatResponse(operation string, e registry.EntityConfig, data any, recordID *int) *mcp.CallToolResult {
	env := envelope{
		Success:   true,
		Operation: operation,
		Entity:    e.Key,
		RecordID:  recordID,
		Data:      data,
	}
	if records, ok := data.([]agiloft.Record); ok {
		n := len(records)
		env.Count = &n
	}
	return envelopeResult(env)
}

// formatError wraps a failure in the error envelope. Operation errors never
// escape the handler layer as raised errors.
func formatError(operation string, e registry.EntityConfig, err error, recordID *int) *mcp.CallToolResult {
	return envelopeResult(envelope{
		Success:   false,
		Operation: operation,
		Entity:    e.Key,
		RecordID:  recordID,
		Error:     err.Error(),
	})
}

func envelopeResult(env envelope) *mcp.CallToolResult {
	text, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		text = []byte(fmt.Sprintf(`{"success": false, "error": %q}`, err.Error()))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(text))},
		IsError: !env.Success,
	}
}

// --- Argument extraction ---

func argString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func argInt(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
	}
	return 0, false
}

func argIntDefault(args map[string]any, key string, def int) int {
	if v, ok := argInt(args, key); ok {
		return v
	}
	return def
}

func argStringSlice(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func argData(args map[string]any, key string) agiloft.Record {
	m, _ := args[key].(map[string]any)
	return m
}

// stripEmptyValues removes keys with nil or empty-string values before a
// create/update, so blanked-out linked-field references never reach the
// remote's validation.
func stripEmptyValues(data agiloft.Record) agiloft.Record {
	out := make(agiloft.Record, len(data))
	for k, v := range data {
		if v == nil || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// --- Operation handlers, each generic over EntityConfig ---

func handleSearch(ctx context.Context, e registry.EntityConfig, args map[string]any, api agiloft.API) *mcp.CallToolResult {
	query := argString(args, "query")
	fields := argStringSlice(args, "fields")
	if fields == nil {
		fields = e.DefaultSearchFields
	}
	limit := argIntDefault(args, "limit", defaultSearchLimit)

	var results []agiloft.Record
	var err error

	switch {
	case isStructuredQuery(query):
		// Structured syntax passes through verbatim.
		results, err = api.Search(ctx, e.APIPath, query, fields)
	case len(e.TextSearchFields) > 0 && strings.TrimSpace(query) != "":
		// The remote query language cannot OR across heterogeneous fields,
		// so free text issues one fuzzy query per declared text field and
		// merges the results, first occurrence winning.
		sanitized := sanitizeQueryValue(query)
		seen := make(map[any]struct{})
		results = []agiloft.Record{}
		for _, textField := range e.TextSearchFields {
			fieldQuery := fmt.Sprintf("%s~='%s'", textField, sanitized)
			var fieldResults []agiloft.Record
			fieldResults, err = api.Search(ctx, e.APIPath, fieldQuery, fields)
			if err != nil {
				break
			}
			for _, rec := range fieldResults {
				id := rec["id"]
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				results = append(results, rec)
			}
		}
	default:
		results, err = api.Search(ctx, e.APIPath, query, fields)
	}

	if err != nil {
		return formatError(ActionSearch, e, err, nil)
	}
	// Truncation happens client-side after retrieval.
	if len(results) > limit {
		results = results[:limit]
	}
	return formatResponse(ActionSearch, e, results, nil)
}

func handleGet(ctx context.Context, e registry.EntityConfig, args map[string]any, api agiloft.API) *mcp.CallToolResult {
	recordID := argIntDefault(args, "record_id", 0)
	fields := argStringSlice(args, "fields")

	record, err := api.Get(ctx, e.APIPath, recordID, fields)
	if err != nil {
		return formatError(ActionGet, e, err, &recordID)
	}
	return formatResponse(ActionGet, e, record, &recordID)
}

func handleCreate(ctx context.Context, e registry.EntityConfig, args map[string]any, api agiloft.API) *mcp.CallToolResult {
	data := stripEmptyValues(argData(args, "data"))

	result, err := api.Create(ctx, e.APIPath, data)
	if err != nil {
		return formatError(ActionCreate, e, err, nil)
	}
	return formatResponse(ActionCreate, e, result, nil)
}

func handleUpdate(ctx context.Context, e registry.EntityConfig, args map[string]any, api agiloft.API) *mcp.CallToolResult {
	recordID := argIntDefault(args, "record_id", 0)
	data := stripEmptyValues(argData(args, "data"))

	result, err := api.Update(ctx, e.APIPath, recordID, data)
	if err != nil {
		return formatError(ActionUpdate, e, err, &recordID)
	}
	return formatResponse(ActionUpdate, e, result, &recordID)
}

func handleDelete(ctx context.Context, e registry.EntityConfig, args map[string]any, api agiloft.API) *mcp.CallToolResult {
	recordID := argIntDefault(args, "record_id", 0)
	rule := argString(args, "delete_rule")
	if rule == "" {
		rule = agiloft.DeleteRuleUnlinkOtherwiseDelete
	}

	result, err := api.Delete(ctx, e.APIPath, recordID, rule)
	if err != nil {
		return formatError(ActionDelete, e, err, &recordID)
	}
	return formatResponse(ActionDelete, e, result, &recordID)
}

func handleUpsert(ctx context.Context, e registry.EntityConfig, args map[string]any, api agiloft.API) *mcp.CallToolResult {
	query := argString(args, "query")
	data := stripEmptyValues(argData(args, "data"))

	result, err := api.Upsert(ctx, e.APIPath, query, data)
	if err != nil {
		return formatError(ActionUpsert, e, err, nil)
	}
	return formatResponse(ActionUpsert, e, result, nil)
}

func handleAttachFile(ctx context.Context, e registry.EntityConfig, args map[string]any, api agiloft.API) *mcp.CallToolResult {
	recordID := argIntDefault(args, "record_id", 0)
	field := argString(args, "field")
	fileName := argString(args, "file_name")

	content, err := base64.StdEncoding.DecodeString(argString(args, "file_content_base64"))
	if err != nil {
		return formatError(ActionAttachFile, e, fmt.Errorf("invalid base64 content: %w", err), &recordID)
	}

	result, err := api.AttachFile(ctx, e.APIPath, recordID, field, fileName, content)
	if err != nil {
		return formatError(ActionAttachFile, e, err, &recordID)
	}
	return formatResponse(ActionAttachFile, e, result, &recordID)
}

func handleRetrieveAttachment(ctx context.Context, e registry.EntityConfig, args map[string]any, api agiloft.API) *mcp.CallToolResult {
	recordID := argIntDefault(args, "record_id", 0)
	field := argString(args, "field")
	position := argIntDefault(args, "file_position", 0)

	result, err := api.RetrieveAttachment(ctx, e.APIPath, recordID, field, position)
	if err != nil {
		return formatError(ActionRetrieveAttachment, e, err, &recordID)
	}
	return formatResponse(ActionRetrieveAttachment, e, result, &recordID)
}

func handleRemoveAttachment(ctx context.Context, e registry.EntityConfig, args map[string]any, api agiloft.API) *mcp.CallToolResult {
	recordID := argIntDefault(args, "record_id", 0)
	field := argString(args, "field")
	position := argIntDefault(args, "file_position", 0)

	result, err := api.RemoveAttachment(ctx, e.APIPath, recordID, field, position)
	if err != nil {
		return formatError(ActionRemoveAttachment, e, err, &recordID)
	}
	return formatResponse(ActionRemoveAttachment, e, result, &recordID)
}

func handleAttachmentInfo(ctx context.Context, e registry.EntityConfig, args map[string]any, api agiloft.API) *mcp.CallToolResult {
	recordID := argIntDefault(args, "record_id", 0)
	field := argString(args, "field")

	result, err := api.AttachmentInfo(ctx, e.APIPath, recordID, field)
	if err != nil {
		return formatError(ActionAttachmentInfo, e, err, &recordID)
	}
	return formatResponse(ActionAttachmentInfo, e, result, &recordID)
}

func handleActionButton(ctx context.Context, e registry.EntityConfig, args map[string]any, api agiloft.API) *mcp.CallToolResult {
	recordID := argIntDefault(args, "record_id", 0)
	buttonName := argString(args, "button_name")

	result, err := api.ActionButton(ctx, e.APIPath, recordID, buttonName)
	if err != nil {
		return formatError(ActionActionButton, e, err, &recordID)
	}
	return formatResponse(ActionActionButton, e, result, &recordID)
}

func handleEvaluateFormat(ctx context.Context, e registry.EntityConfig, args map[string]any, api agiloft.API) *mcp.CallToolResult {
	recordID := argIntDefault(args, "record_id", 0)
	formula := argString(args, "formula")

	result, err := api.EvaluateFormat(ctx, e.APIPath, recordID, formula)
	if err != nil {
		return formatError(ActionEvaluateFormat, e, err, &recordID)
	}
	return formatResponse(ActionEvaluateFormat, e, result, &recordID)
}

// handlerFunc is the shared shape of every action handler.
type handlerFunc func(context.Context, registry.EntityConfig, map[string]any, agiloft.API) *mcp.CallToolResult

var actionHandlers = map[string]handlerFunc{
	ActionSearch:             handleSearch,
	ActionGet:                handleGet,
	ActionCreate:             handleCreate,
	ActionUpdate:             handleUpdate,
	ActionDelete:             handleDelete,
	ActionUpsert:             handleUpsert,
	ActionAttachFile:         handleAttachFile,
	ActionRetrieveAttachment: handleRetrieveAttachment,
	ActionRemoveAttachment:   handleRemoveAttachment,
	ActionAttachmentInfo:     handleAttachmentInfo,
	ActionActionButton:       handleActionButton,
	ActionEvaluateFormat:     handleEvaluateFormat,
}
