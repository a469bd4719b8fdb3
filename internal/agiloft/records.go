package agiloft

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Record is one remote record as a decoded JSON object.
type Record = map[string]any

// Delete rules controlling how dependent records are handled.
const (
	DeleteRuleErrorIfDependants     = "ERROR_IF_DEPENDANTS"
	DeleteRuleApplyWherePossible    = "APPLY_DELETE_WHERE_POSSIBLE"
	DeleteRuleDeleteOtherwiseUnlink = "DELETE_WHERE_POSSIBLE_OTHERWISE_UNLINK"
	DeleteRuleUnlinkOtherwiseDelete = "UNLINK_WHERE_POSSIBLE_OTHERWISE_DELETE"
)

// DeleteRules lists the accepted delete rules in schema order.
var DeleteRules = []string{
	DeleteRuleErrorIfDependants,
	DeleteRuleApplyWherePossible,
	DeleteRuleDeleteOtherwiseUnlink,
	DeleteRuleUnlinkOtherwiseDelete,
}

// API is the entity-agnostic operation set consumed by tool and workflow
// handlers. Every method takes an explicit api path so no operation is tied
// to a particular entity.
type API interface {
	Search(ctx context.Context, path, query string, fields []string) ([]Record, error)
	Get(ctx context.Context, path string, id int, fields []string) (Record, error)
	Create(ctx context.Context, path string, data Record) (Record, error)
	Update(ctx context.Context, path string, id int, data Record) (Record, error)
	Delete(ctx context.Context, path string, id int, deleteRule string) (Record, error)
	Upsert(ctx context.Context, path, matchQuery string, data Record) (Record, error)
	AttachFile(ctx context.Context, path string, id int, field, fileName string, content []byte) (Record, error)
	RetrieveAttachment(ctx context.Context, path string, id int, field string, position int) (Record, error)
	RemoveAttachment(ctx context.Context, path string, id int, field string, position int) (Record, error)
	AttachmentInfo(ctx context.Context, path string, id int, field string) (Record, error)
	ActionButton(ctx context.Context, path string, id int, buttonName string) (Record, error)
	EvaluateFormat(ctx context.Context, path string, id int, formula string) (Record, error)
}

var _ API = (*Client)(nil)

// Search posts a structured query and returns the matching records. No
// matches is an empty slice, not an error.
func (c *Client) Search(ctx context.Context, path, query string, fields []string) ([]Record, error) {
	body, err := c.requestJSON(ctx, http.MethodPost, path+"/search", nil, map[string]any{
		"search": "",
		"field":  fields,
		"query":  query,
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Result  json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &APIError{Message: fmt.Sprintf("failed to parse search response: %v", err), Cause: err}
	}
	if !resp.Success {
		return nil, &APIError{Message: "search failed: " + messageOrUnknown(resp.Message)}
	}

	var records []Record
	if len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, &records); err != nil {
			return nil, &APIError{Message: fmt.Sprintf("failed to parse search result: %v", err), Cause: err}
		}
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Get fetches one record by id, normalizing across the response shapes the
// remote uses for different entity types. When fields are given the record
// is filtered client-side, since the remote does not support field
// filtering on a single-record fetch.
func (c *Client) Get(ctx context.Context, path string, id int, fields []string) (Record, error) {
	body, err := c.request(ctx, http.MethodGet, path+"/"+strconv.Itoa(id), nil, nil, "")
	if err != nil {
		return nil, err
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &APIError{Message: fmt.Sprintf("failed to parse get response: %v", err), Cause: err}
	}

	record, err := extractRecord(decoded, path, id)
	if err != nil {
		return nil, err
	}

	if len(fields) > 0 {
		filtered := Record{}
		for _, f := range fields {
			if v, ok := record[f]; ok {
				filtered[f] = v
			}
		}
		return filtered, nil
	}
	return record, nil
}

// extractRecord tries the known single-record response shapes in priority
// order: result-wrapped, entity-name-wrapped, bare record with an id key,
// then a one-element array.
func extractRecord(decoded any, path string, id int) (Record, error) {
	switch v := decoded.(type) {
	case map[string]any:
		if wrapped, ok := v["result"].(map[string]any); ok {
			return wrapped, nil
		}
		if wrapped, ok := v[entityName(path)].(map[string]any); ok {
			return wrapped, nil
		}
		if _, ok := v["id"]; ok {
			return v, nil
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		return nil, &APIError{Message: fmt.Sprintf("record %d not found in response; keys seen: %v", id, keys)}
	case []any:
		if len(v) > 0 {
			if rec, ok := v[0].(map[string]any); ok {
				return rec, nil
			}
		}
		return nil, &APIError{Message: fmt.Sprintf("record %d not found in response: empty or non-object list", id)}
	default:
		return nil, &APIError{Message: fmt.Sprintf("record %d not found in response: unexpected type %T", id, decoded)}
	}
}

// entityName derives the wrapping key the remote uses for a resource path,
// e.g. "/contract" -> "contract".
func entityName(path string) string {
	trimmed := strings.Trim(path, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	return trimmed
}

// Create posts a new record.
func (c *Client) Create(ctx context.Context, path string, data Record) (Record, error) {
	body, err := c.requestJSON(ctx, http.MethodPost, path, nil, data)
	if err != nil {
		return nil, err
	}
	return parseMutation("create", body)
}

// Update modifies an existing record via PUT.
func (c *Client) Update(ctx context.Context, path string, id int, data Record) (Record, error) {
	body, err := c.requestJSON(ctx, http.MethodPut, path+"/"+strconv.Itoa(id), nil, data)
	if err != nil {
		return nil, err
	}
	return parseMutation("update", body)
}

// Delete removes a record. The delete rule selects how dependent records
// are handled; an empty rule falls back to unlink-where-possible.
func (c *Client) Delete(ctx context.Context, path string, id int, deleteRule string) (Record, error) {
	if deleteRule == "" {
		deleteRule = DeleteRuleUnlinkOtherwiseDelete
	}
	params := url.Values{}
	params.Set("deleteRule", deleteRule)

	body, err := c.request(ctx, http.MethodDelete, path+"/"+strconv.Itoa(id), params, nil, "")
	if err != nil {
		return nil, err
	}

	resp, err := decodeRecord(body)
	if err != nil {
		return nil, err
	}
	if success, ok := resp["success"].(bool); !ok || !success {
		return nil, &APIError{Message: "delete failed: " + mutationError(resp)}
	}
	return resp, nil
}

// Upsert inserts or updates keyed by a fuzzy match query
// (fieldName~='value'); the remote decides which.
func (c *Client) Upsert(ctx context.Context, path, matchQuery string, data Record) (Record, error) {
	params := url.Values{}
	params.Set("query", matchQuery)

	body, err := c.requestJSON(ctx, http.MethodPost, path+"/upsert", params, data)
	if err != nil {
		return nil, err
	}
	return parseMutation("upsert", body)
}

// AttachFile uploads file content to a record's file field as multipart
// form data. The multipart writer supplies the content type; setting a JSON
// default here would corrupt the boundary.
func (c *Client) AttachFile(ctx context.Context, path string, id int, field, fileName string, content []byte) (Record, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, fileName)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("failed to build upload: %v", err), Cause: err}
	}
	if _, err := part.Write(content); err != nil {
		return nil, &APIError{Message: fmt.Sprintf("failed to build upload: %v", err), Cause: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &APIError{Message: fmt.Sprintf("failed to build upload: %v", err), Cause: err}
	}

	params := url.Values{}
	params.Set("field", field)

	body, err := c.request(ctx, http.MethodPost, path+"/attach/"+strconv.Itoa(id), params, buf.Bytes(), mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	return parseMutation("attach", body)
}

// RetrieveAttachment downloads one file from a record's file field. Binary
// responses are returned base64-encoded under content_base64.
func (c *Client) RetrieveAttachment(ctx context.Context, path string, id int, field string, position int) (Record, error) {
	params := url.Values{}
	params.Set("field", field)
	params.Set("position", strconv.Itoa(position))

	body, err := c.request(ctx, http.MethodGet, path+"/retrieveAttachment/"+strconv.Itoa(id), params, nil, "")
	if err != nil {
		return nil, err
	}

	var resp Record
	if json.Unmarshal(body, &resp) == nil && resp != nil {
		return resp, nil
	}
	return Record{
		"content_base64": base64.StdEncoding.EncodeToString(body),
		"size":           len(body),
	}, nil
}

// RemoveAttachment deletes one file from a record's file field.
func (c *Client) RemoveAttachment(ctx context.Context, path string, id int, field string, position int) (Record, error) {
	params := url.Values{}
	params.Set("field", field)
	params.Set("position", strconv.Itoa(position))

	body, err := c.request(ctx, http.MethodDelete, path+"/removeAttachment/"+strconv.Itoa(id), params, nil, "")
	if err != nil {
		return nil, err
	}
	return parseMutation("remove attachment", body)
}

// AttachmentInfo returns metadata for files held in a record's file field.
func (c *Client) AttachmentInfo(ctx context.Context, path string, id int, field string) (Record, error) {
	params := url.Values{}
	params.Set("field", field)

	body, err := c.request(ctx, http.MethodGet, path+"/attachmentInfo/"+strconv.Itoa(id), params, nil, "")
	if err != nil {
		return nil, err
	}
	return decodeRecord(body)
}

// ActionButton triggers the named workflow action button on a record.
func (c *Client) ActionButton(ctx context.Context, path string, id int, buttonName string) (Record, error) {
	params := url.Values{}
	params.Set("name", buttonName)

	body, err := c.requestJSON(ctx, http.MethodPost, path+"/actionButton/"+strconv.Itoa(id), params, nil)
	if err != nil {
		return nil, err
	}
	return parseMutation("action button", body)
}

// EvaluateFormat evaluates a formula expression against a record.
func (c *Client) EvaluateFormat(ctx context.Context, path string, id int, formula string) (Record, error) {
	params := url.Values{}
	params.Set("format", formula)

	body, err := c.requestJSON(ctx, http.MethodPost, path+"/evaluateFormat/"+strconv.Itoa(id), params, nil)
	if err != nil {
		return nil, err
	}
	return parseMutation("evaluate format", body)
}

// decodeRecord unmarshals a JSON object response.
func decodeRecord(body []byte) (Record, error) {
	var resp Record
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &APIError{Message: fmt.Sprintf("failed to parse response: %v", err), Cause: err}
	}
	return resp, nil
}

// parseMutation decodes a create/update-style response. A missing success
// field counts as success; an explicit false fails with any itemized
// sub-errors concatenated into one message.
func parseMutation(op string, body []byte) (Record, error) {
	resp, err := decodeRecord(body)
	if err != nil {
		return nil, err
	}
	if success, ok := resp["success"].(bool); ok && !success {
		return nil, &APIError{Message: op + " failed: " + mutationError(resp)}
	}
	return resp, nil
}

// mutationError flattens a failure response's message and itemized errors.
func mutationError(resp Record) string {
	msg := messageOrUnknown(stringField(resp, "message"))
	if items, ok := resp["errors"].([]any); ok && len(items) > 0 {
		details := make([]string, 0, len(items))
		for _, item := range items {
			if m, ok := item.(map[string]any); ok {
				if s := stringField(m, "message"); s != "" {
					details = append(details, s)
					continue
				}
			}
			details = append(details, fmt.Sprint(item))
		}
		msg += " - " + strings.Join(details, "; ")
	}
	return msg
}

func stringField(m Record, key string) string {
	s, _ := m[key].(string)
	return s
}

func messageOrUnknown(msg string) string {
	if msg == "" {
		return "unknown error"
	}
	return msg
}
