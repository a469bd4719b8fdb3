package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bobmcallan/agiloft-mcp/internal/agiloft"
	"github.com/bobmcallan/agiloft-mcp/internal/common"
	"github.com/bobmcallan/agiloft-mcp/internal/registry"
)

// stubAPI lets each test override just the operations it exercises.
type stubAPI struct {
	search       func(ctx context.Context, path, query string, fields []string) ([]agiloft.Record, error)
	get          func(ctx context.Context, path string, id int, fields []string) (agiloft.Record, error)
	create       func(ctx context.Context, path string, data agiloft.Record) (agiloft.Record, error)
	update       func(ctx context.Context, path string, id int, data agiloft.Record) (agiloft.Record, error)
	deleteFn     func(ctx context.Context, path string, id int, deleteRule string) (agiloft.Record, error)
	upsert       func(ctx context.Context, path, matchQuery string, data agiloft.Record) (agiloft.Record, error)
	attachFile   func(ctx context.Context, path string, id int, field, fileName string, content []byte) (agiloft.Record, error)
	retrieve     func(ctx context.Context, path string, id int, field string, position int) (agiloft.Record, error)
	remove       func(ctx context.Context, path string, id int, field string, position int) (agiloft.Record, error)
	info         func(ctx context.Context, path string, id int, field string) (agiloft.Record, error)
	actionButton func(ctx context.Context, path string, id int, buttonName string) (agiloft.Record, error)
	evaluate     func(ctx context.Context, path string, id int, formula string) (agiloft.Record, error)
}

func (s *stubAPI) Search(ctx context.Context, path, query string, fields []string) ([]agiloft.Record, error) {
	if s.search == nil {
		return nil, fmt.Errorf("unexpected Search call")
	}
	return s.search(ctx, path, query, fields)
}

func (s *stubAPI) Get(ctx context.Context, path string, id int, fields []string) (agiloft.Record, error) {
	if s.get == nil {
		return nil, fmt.Errorf("unexpected Get call")
	}
	return s.get(ctx, path, id, fields)
}

func (s *stubAPI) Create(ctx context.Context, path string, data agiloft.Record) (agiloft.Record, error) {
	if s.create == nil {
		return nil, fmt.Errorf("unexpected Create call")
	}
	return s.create(ctx, path, data)
}

func (s *stubAPI) Update(ctx context.Context, path string, id int, data agiloft.Record) (agiloft.Record, error) {
	if s.update == nil {
		return nil, fmt.Errorf("unexpected Update call")
	}
	return s.update(ctx, path, id, data)
}

func (s *stubAPI) Delete(ctx context.Context, path string, id int, deleteRule string) (agiloft.Record, error) {
	if s.deleteFn == nil {
		return nil, fmt.Errorf("unexpected Delete call")
	}
	return s.deleteFn(ctx, path, id, deleteRule)
}

func (s *stubAPI) Upsert(ctx context.Context, path, matchQuery string, data agiloft.Record) (agiloft.Record, error) {
	if s.upsert == nil {
		return nil, fmt.Errorf("unexpected Upsert call")
	}
	return s.upsert(ctx, path, matchQuery, data)
}

func (s *stubAPI) AttachFile(ctx context.Context, path string, id int, field, fileName string, content []byte) (agiloft.Record, error) {
	if s.attachFile == nil {
		return nil, fmt.Errorf("unexpected AttachFile call")
	}
	return s.attachFile(ctx, path, id, field, fileName, content)
}

func (s *stubAPI) RetrieveAttachment(ctx context.Context, path string, id int, field string, position int) (agiloft.Record, error) {
	if s.retrieve == nil {
		return nil, fmt.Errorf("unexpected RetrieveAttachment call")
	}
	return s.retrieve(ctx, path, id, field, position)
}

func (s *stubAPI) RemoveAttachment(ctx context.Context, path string, id int, field string, position int) (agiloft.Record, error) {
	if s.remove == nil {
		return nil, fmt.Errorf("unexpected RemoveAttachment call")
	}
	return s.remove(ctx, path, id, field, position)
}

func (s *stubAPI) AttachmentInfo(ctx context.Context, path string, id int, field string) (agiloft.Record, error) {
	if s.info == nil {
		return nil, fmt.Errorf("unexpected AttachmentInfo call")
	}
	return s.info(ctx, path, id, field)
}

func (s *stubAPI) ActionButton(ctx context.Context, path string, id int, buttonName string) (agiloft.Record, error) {
	if s.actionButton == nil {
		return nil, fmt.Errorf("unexpected ActionButton call")
	}
	return s.actionButton(ctx, path, id, buttonName)
}

func (s *stubAPI) EvaluateFormat(ctx context.Context, path string, id int, formula string) (agiloft.Record, error) {
	if s.evaluate == nil {
		return nil, fmt.Errorf("unexpected EvaluateFormat call")
	}
	return s.evaluate(ctx, path, id, formula)
}

var _ agiloft.API = (*stubAPI)(nil)

func decodeEnvelope(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected 1 content item, got %d", len(res.Content))
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	var env map[string]any
	if err := json.Unmarshal([]byte(tc.Text), &env); err != nil {
		t.Fatalf("response is not valid JSON: %v\n%s", err, tc.Text)
	}
	return env
}

func mustEntity(t *testing.T, key string) registry.EntityConfig {
	t.Helper()
	e, err := registry.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestHandleSearchStructuredPassesThrough(t *testing.T) {
	var gotQuery string
	api := &stubAPI{
		search: func(_ context.Context, path, query string, fields []string) ([]agiloft.Record, error) {
			gotQuery = query
			if path != "/contract" {
				t.Errorf("path = %q, want /contract", path)
			}
			return []agiloft.Record{{"id": float64(1)}}, nil
		},
	}

	res := handleSearch(context.Background(), mustEntity(t, "contract"),
		map[string]any{"query": "wfstate='Active'"}, api)

	env := decodeEnvelope(t, res)
	if env["success"] != true {
		t.Fatalf("success = %v: %v", env["success"], env["error"])
	}
	if gotQuery != "wfstate='Active'" {
		t.Errorf("structured query modified: %q", gotQuery)
	}
	if env["count"] != float64(1) {
		t.Errorf("count = %v, want 1", env["count"])
	}
}

func TestHandleSearchFreeTextFansOut(t *testing.T) {
	var queries []string
	api := &stubAPI{
		search: func(_ context.Context, _, query string, _ []string) ([]agiloft.Record, error) {
			queries = append(queries, query)
			// Both fields match record 1; only the title matches record 2.
			if strings.HasPrefix(query, "contract_title1") {
				return []agiloft.Record{{"id": float64(1)}, {"id": float64(2)}}, nil
			}
			return []agiloft.Record{{"id": float64(1)}}, nil
		},
	}

	res := handleSearch(context.Background(), mustEntity(t, "contract"),
		map[string]any{"query": "acme"}, api)

	env := decodeEnvelope(t, res)
	if env["success"] != true {
		t.Fatalf("success = %v: %v", env["success"], env["error"])
	}

	wantQueries := []string{"contract_title1~='acme'", "company_name~='acme'"}
	if len(queries) != len(wantQueries) {
		t.Fatalf("issued %d queries %v, want %v", len(queries), queries, wantQueries)
	}
	for i := range wantQueries {
		if queries[i] != wantQueries[i] {
			t.Errorf("query[%d] = %q, want %q", i, queries[i], wantQueries[i])
		}
	}

	// Record 1 appears in both result sets but must be reported once.
	if env["count"] != float64(2) {
		t.Errorf("count = %v, want 2 after dedup", env["count"])
	}
}

func TestHandleSearchFreeTextSanitizesValue(t *testing.T) {
	var queries []string
	api := &stubAPI{
		search: func(_ context.Context, _, query string, _ []string) ([]agiloft.Record, error) {
			queries = append(queries, query)
			return nil, nil
		},
	}

	handleSearch(context.Background(), mustEntity(t, "company"),
		map[string]any{"query": "O'Brien"}, api)

	if len(queries) != 1 || queries[0] != "company_name~='O''Brien'" {
		t.Errorf("queries = %v, want escaped quote", queries)
	}
}

func TestHandleSearchAppliesLimit(t *testing.T) {
	records := make([]agiloft.Record, 10)
	for i := range records {
		records[i] = agiloft.Record{"id": float64(i + 1)}
	}
	api := &stubAPI{
		search: func(_ context.Context, _, _ string, _ []string) ([]agiloft.Record, error) {
			return records, nil
		},
	}

	res := handleSearch(context.Background(), mustEntity(t, "contract"),
		map[string]any{"query": "wfstate='Active'", "limit": float64(3)}, api)

	env := decodeEnvelope(t, res)
	if env["count"] != float64(3) {
		t.Errorf("count = %v, want 3", env["count"])
	}
	data := env["data"].([]any)
	// First-seen order must survive truncation.
	first := data[0].(map[string]any)
	if first["id"] != float64(1) {
		t.Errorf("first record id = %v, want 1", first["id"])
	}
}

func TestHandleSearchErrorEnvelope(t *testing.T) {
	api := &stubAPI{
		search: func(_ context.Context, _, _ string, _ []string) ([]agiloft.Record, error) {
			return nil, &agiloft.APIError{Message: "search failed: boom"}
		},
	}

	res := handleSearch(context.Background(), mustEntity(t, "contract"),
		map[string]any{"query": "wfstate='Active'"}, api)

	if !res.IsError {
		t.Fatal("expected IsError on failure")
	}
	env := decodeEnvelope(t, res)
	if env["success"] != false {
		t.Error("success should be false")
	}
	if env["operation"] != "search" || env["entity"] != "contract" {
		t.Errorf("envelope operation/entity = %v/%v", env["operation"], env["entity"])
	}
	if !strings.Contains(env["error"].(string), "boom") {
		t.Errorf("error %q should carry the cause", env["error"])
	}
}

func TestHandleCreateStripsEmptyValues(t *testing.T) {
	var gotData agiloft.Record
	api := &stubAPI{
		create: func(_ context.Context, _ string, data agiloft.Record) (agiloft.Record, error) {
			gotData = data
			return agiloft.Record{"result": float64(42)}, nil
		},
	}

	res := handleCreate(context.Background(), mustEntity(t, "company"),
		map[string]any{"data": map[string]any{
			"company_name": "Acme",
			"industry":     "",
			"country":      nil,
		}}, api)

	env := decodeEnvelope(t, res)
	if env["success"] != true {
		t.Fatalf("success = %v: %v", env["success"], env["error"])
	}
	if _, ok := gotData["industry"]; ok {
		t.Error("empty string value should be stripped")
	}
	if _, ok := gotData["country"]; ok {
		t.Error("nil value should be stripped")
	}
	if gotData["company_name"] != "Acme" {
		t.Errorf("company_name = %v", gotData["company_name"])
	}
}

func TestCreateThenGetRoundTripsRequiredFields(t *testing.T) {
	entity := mustEntity(t, "contract")
	if len(entity.RequiredFields) == 0 {
		t.Fatal("contract declares no required fields")
	}

	stored := map[int]agiloft.Record{}
	api := &stubAPI{
		create: func(_ context.Context, path string, data agiloft.Record) (agiloft.Record, error) {
			if path != entity.APIPath {
				return nil, fmt.Errorf("unexpected create on %s", path)
			}
			rec := agiloft.Record{"id": float64(901)}
			for k, v := range data {
				rec[k] = v
			}
			stored[901] = rec
			return agiloft.Record{"result": float64(901)}, nil
		},
		get: func(_ context.Context, path string, id int, _ []string) (agiloft.Record, error) {
			rec, ok := stored[id]
			if !ok {
				return nil, fmt.Errorf("no record %d", id)
			}
			return rec, nil
		},
	}
	d := NewDispatcher(api, common.NewSilentLogger())

	data := map[string]any{}
	for i, f := range entity.RequiredFields {
		data[f] = fmt.Sprintf("value-%d", i)
	}
	res := d.Dispatch(context.Background(), "agiloft_create_contract", map[string]any{"data": data})
	env := decodeEnvelope(t, res)
	if env["success"] != true {
		t.Fatalf("create failed: %v", env["error"])
	}
	created := env["data"].(map[string]any)
	id := int(created["result"].(float64))

	res = d.Dispatch(context.Background(), "agiloft_get_contract", map[string]any{"record_id": id})
	env = decodeEnvelope(t, res)
	if env["success"] != true {
		t.Fatalf("get failed: %v", env["error"])
	}
	got := env["data"].(map[string]any)
	for f, want := range data {
		if got[f] != want {
			t.Errorf("field %s = %v after round trip, want %v", f, got[f], want)
		}
	}
}

func TestHandleGetIncludesRecordID(t *testing.T) {
	api := &stubAPI{
		get: func(_ context.Context, _ string, id int, _ []string) (agiloft.Record, error) {
			return agiloft.Record{"id": float64(id), "wfstate": "Active"}, nil
		},
	}

	res := handleGet(context.Background(), mustEntity(t, "contract"),
		map[string]any{"record_id": float64(17)}, api)

	env := decodeEnvelope(t, res)
	if env["record_id"] != float64(17) {
		t.Errorf("record_id = %v, want 17", env["record_id"])
	}
	if _, hasCount := env["count"]; hasCount {
		t.Error("single-record responses must not carry count")
	}
}

func TestHandleDeleteDefaultsRule(t *testing.T) {
	var gotRule string
	api := &stubAPI{
		deleteFn: func(_ context.Context, _ string, _ int, rule string) (agiloft.Record, error) {
			gotRule = rule
			return agiloft.Record{"success": true}, nil
		},
	}

	handleDelete(context.Background(), mustEntity(t, "contract"),
		map[string]any{"record_id": float64(1)}, api)

	if gotRule != agiloft.DeleteRuleUnlinkOtherwiseDelete {
		t.Errorf("delete rule = %q, want default", gotRule)
	}
}

func TestHandleAttachFileRejectsBadBase64(t *testing.T) {
	called := false
	api := &stubAPI{
		attachFile: func(_ context.Context, _ string, _ int, _, _ string, _ []byte) (agiloft.Record, error) {
			called = true
			return nil, nil
		},
	}

	res := handleAttachFile(context.Background(), mustEntity(t, "attachment"),
		map[string]any{
			"record_id":           float64(1),
			"field":               "attached_file",
			"file_name":           "x.pdf",
			"file_content_base64": "not base64!!!",
		}, api)

	if !res.IsError {
		t.Fatal("expected error for invalid base64")
	}
	if called {
		t.Error("remote must not be called when decoding fails")
	}
}

func TestHandleAttachFileDecodesContent(t *testing.T) {
	var gotContent []byte
	api := &stubAPI{
		attachFile: func(_ context.Context, _ string, _ int, _, _ string, content []byte) (agiloft.Record, error) {
			gotContent = content
			return agiloft.Record{"success": true}, nil
		},
	}

	payload := base64.StdEncoding.EncodeToString([]byte("hello"))
	res := handleAttachFile(context.Background(), mustEntity(t, "attachment"),
		map[string]any{
			"record_id":           float64(1),
			"field":               "attached_file",
			"file_name":           "x.txt",
			"file_content_base64": payload,
		}, api)

	env := decodeEnvelope(t, res)
	if env["success"] != true {
		t.Fatalf("success = %v: %v", env["success"], env["error"])
	}
	if string(gotContent) != "hello" {
		t.Errorf("uploaded content = %q, want hello", gotContent)
	}
}

func TestDispatcherUnknownTool(t *testing.T) {
	d := NewDispatcher(&stubAPI{}, common.NewSilentLogger())

	res := d.Dispatch(context.Background(), "agiloft_frobnicate_widgets", nil)
	if !res.IsError {
		t.Fatal("expected error for unknown tool")
	}
	env := decodeEnvelope(t, res)
	if !strings.Contains(env["error"].(string), "unknown tool") {
		t.Errorf("error = %v", env["error"])
	}
}

func TestDispatcherRecoversFromPanic(t *testing.T) {
	api := &stubAPI{
		get: func(ctx context.Context, path string, id int, fields []string) (agiloft.Record, error) {
			panic("boom")
		},
	}
	d := NewDispatcher(api, common.NewSilentLogger())

	res := d.Dispatch(context.Background(), "agiloft_get_contract", map[string]any{"record_id": 1})
	if !res.IsError {
		t.Fatal("expected error envelope from panicking handler")
	}
	env := decodeEnvelope(t, res)
	if !strings.Contains(env["error"].(string), "boom") {
		t.Errorf("error = %v", env["error"])
	}
}

func TestDispatcherRoutesToHandler(t *testing.T) {
	api := &stubAPI{
		get: func(_ context.Context, path string, id int, _ []string) (agiloft.Record, error) {
			if path != "/company" {
				t.Errorf("path = %q, want /company", path)
			}
			return agiloft.Record{"id": float64(id)}, nil
		},
	}
	d := NewDispatcher(api, common.NewSilentLogger())

	res := d.Dispatch(context.Background(), "agiloft_get_company",
		map[string]any{"record_id": float64(9)})

	env := decodeEnvelope(t, res)
	if env["success"] != true {
		t.Fatalf("success = %v: %v", env["success"], env["error"])
	}
	if env["entity"] != "company" || env["operation"] != "get" {
		t.Errorf("entity/operation = %v/%v", env["entity"], env["operation"])
	}
}
