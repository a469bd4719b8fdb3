package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bobmcallan/agiloft-mcp/internal/agiloft"
	"github.com/bobmcallan/agiloft-mcp/internal/common"
)

// stubAPI returns canned responses per operation; unset operations fail the
// test so handlers cannot silently call more than they should.
type stubAPI struct {
	t          *testing.T
	search     func(path, query string, fields []string) ([]agiloft.Record, error)
	get        func(path string, id int, fields []string) (agiloft.Record, error)
	create     func(path string, data agiloft.Record) (agiloft.Record, error)
	attachFile func(path string, id int, field, fileName string, content []byte) (agiloft.Record, error)
	info       func(path string, id int, field string) (agiloft.Record, error)
}

func (s *stubAPI) Search(_ context.Context, path, query string, fields []string) ([]agiloft.Record, error) {
	if s.search == nil {
		s.t.Fatalf("unexpected Search(%s, %s)", path, query)
	}
	return s.search(path, query, fields)
}

func (s *stubAPI) Get(_ context.Context, path string, id int, fields []string) (agiloft.Record, error) {
	if s.get == nil {
		s.t.Fatalf("unexpected Get(%s, %d)", path, id)
	}
	return s.get(path, id, fields)
}

func (s *stubAPI) Create(_ context.Context, path string, data agiloft.Record) (agiloft.Record, error) {
	if s.create == nil {
		s.t.Fatalf("unexpected Create(%s)", path)
	}
	return s.create(path, data)
}

func (s *stubAPI) Update(_ context.Context, path string, id int, _ agiloft.Record) (agiloft.Record, error) {
	s.t.Fatalf("unexpected Update(%s, %d)", path, id)
	return nil, nil
}

func (s *stubAPI) Delete(_ context.Context, path string, id int, _ string) (agiloft.Record, error) {
	s.t.Fatalf("unexpected Delete(%s, %d)", path, id)
	return nil, nil
}

func (s *stubAPI) Upsert(_ context.Context, path, _ string, _ agiloft.Record) (agiloft.Record, error) {
	s.t.Fatalf("unexpected Upsert(%s)", path)
	return nil, nil
}

func (s *stubAPI) AttachFile(_ context.Context, path string, id int, field, fileName string, content []byte) (agiloft.Record, error) {
	if s.attachFile == nil {
		s.t.Fatalf("unexpected AttachFile(%s, %d)", path, id)
	}
	return s.attachFile(path, id, field, fileName, content)
}

func (s *stubAPI) RetrieveAttachment(_ context.Context, path string, id int, _ string, _ int) (agiloft.Record, error) {
	s.t.Fatalf("unexpected RetrieveAttachment(%s, %d)", path, id)
	return nil, nil
}

func (s *stubAPI) RemoveAttachment(_ context.Context, path string, id int, _ string, _ int) (agiloft.Record, error) {
	s.t.Fatalf("unexpected RemoveAttachment(%s, %d)", path, id)
	return nil, nil
}

func (s *stubAPI) AttachmentInfo(_ context.Context, path string, id int, field string) (agiloft.Record, error) {
	if s.info == nil {
		s.t.Fatalf("unexpected AttachmentInfo(%s, %d)", path, id)
	}
	return s.info(path, id, field)
}

func (s *stubAPI) ActionButton(_ context.Context, path string, id int, _ string) (agiloft.Record, error) {
	s.t.Fatalf("unexpected ActionButton(%s, %d)", path, id)
	return nil, nil
}

func (s *stubAPI) EvaluateFormat(_ context.Context, path string, id int, _ string) (agiloft.Record, error) {
	s.t.Fatalf("unexpected EvaluateFormat(%s, %d)", path, id)
	return nil, nil
}

var _ agiloft.API = (*stubAPI)(nil)

func newTestHandlers(api agiloft.API, now time.Time) *Handlers {
	h := NewHandlers(api, common.NewSilentLogger())
	h.now = func() time.Time { return now }
	return h
}

func decodeResult(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T", res.Content[0])
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(tc.Text), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, tc.Text)
	}
	return out
}

func TestEnsureLinkedPrefix(t *testing.T) {
	got := ensureLinkedPrefix(agiloft.Record{
		"contract_type":           "Services Agreement",
		"company_name":            ":Acme Corp",
		"internal_contract_owner": "Robert Barash",
		"contract_title1":         "Plain Title",
	})

	if got["contract_type"] != ":Services Agreement" {
		t.Errorf("contract_type = %v", got["contract_type"])
	}
	if got["company_name"] != ":Acme Corp" {
		t.Errorf("already-prefixed value must not be double-prefixed: %v", got["company_name"])
	}
	if got["internal_contract_owner"] != ":Robert Barash" {
		t.Errorf("internal_contract_owner = %v", got["internal_contract_owner"])
	}
	if got["contract_title1"] != "Plain Title" {
		t.Errorf("non-linked field must be untouched: %v", got["contract_title1"])
	}
}

func TestPreflightTypeMismatchWarns(t *testing.T) {
	api := &stubAPI{
		search: func(path, query string, _ []string) ([]agiloft.Record, error) {
			switch path {
			case "/contract_type":
				return []agiloft.Record{{"id": float64(1), "contract_type": "MSA", "party_type": "Customer"}}, nil
			case "/company":
				return []agiloft.Record{{"id": float64(2), "company_name": "Acme", "type_of_company": "Vendor", "status": "Active"}}, nil
			}
			return nil, fmt.Errorf("unexpected path %s", path)
		},
	}
	api.t = t
	h := newTestHandlers(api, time.Now())

	res := h.PreflightCreateContract(context.Background(), map[string]any{
		"contract_type": "MSA",
		"company_name":  "Acme",
	})

	out := decodeResult(t, res)
	if out["success"] != true {
		t.Fatalf("success = %v: %v", out["success"], out["error"])
	}

	data := out["data"].(map[string]any)
	if data["ready_to_create"] != false {
		t.Error("type mismatch must clear ready_to_create")
	}

	warnings, _ := out["warnings"].([]any)
	found := false
	for _, w := range warnings {
		if strings.Contains(w.(string), "Type mismatch") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings %v should flag the type mismatch", warnings)
	}
}

func TestPreflightNoTypeListsActiveTypes(t *testing.T) {
	api := &stubAPI{
		search: func(path, query string, _ []string) ([]agiloft.Record, error) {
			if path != "/contract_type" || query != "status=Active" {
				return nil, fmt.Errorf("unexpected search %s %s", path, query)
			}
			return []agiloft.Record{{"id": float64(1), "contract_type": "MSA"}}, nil
		},
	}
	api.t = t
	h := newTestHandlers(api, time.Now())

	res := h.PreflightCreateContract(context.Background(), map[string]any{})
	out := decodeResult(t, res)

	data := out["data"].(map[string]any)
	if data["ready_to_create"] != false {
		t.Error("ready_to_create must be false with no type selected")
	}
	if _, ok := data["available_contract_types"]; !ok {
		t.Error("response should list available contract types")
	}
}

func TestCreateContractWithCompanyPrefixesLinkedFields(t *testing.T) {
	var contractCreate agiloft.Record
	api := &stubAPI{
		search: func(path, _ string, _ []string) ([]agiloft.Record, error) {
			return []agiloft.Record{{"id": float64(2), "company_name": "Acme"}}, nil
		},
		create: func(path string, data agiloft.Record) (agiloft.Record, error) {
			if path != "/contract" {
				return nil, fmt.Errorf("unexpected create on %s", path)
			}
			contractCreate = data
			return agiloft.Record{"result": float64(10)}, nil
		},
	}
	api.t = t
	h := newTestHandlers(api, time.Now())

	res := h.CreateContractWithCompany(context.Background(), map[string]any{
		"company_name": "Acme",
		"contract_data": map[string]any{
			"contract_type":   "MSA",
			"contract_title1": "Deal",
			"cost_center":     "",
		},
	})

	out := decodeResult(t, res)
	if out["success"] != true {
		t.Fatalf("success = %v: %v", out["success"], out["error"])
	}
	if contractCreate["company_name"] != ":Acme" {
		t.Errorf("company_name = %v, want :Acme", contractCreate["company_name"])
	}
	if contractCreate["contract_type"] != ":MSA" {
		t.Errorf("contract_type = %v, want :MSA", contractCreate["contract_type"])
	}
	if _, ok := contractCreate["cost_center"]; ok {
		t.Error("empty values must be stripped before create")
	}
}

func TestCreateContractWithCompanyMissingNoCreateFlag(t *testing.T) {
	api := &stubAPI{
		search: func(_, _ string, _ []string) ([]agiloft.Record, error) {
			return []agiloft.Record{}, nil
		},
	}
	api.t = t
	h := newTestHandlers(api, time.Now())

	res := h.CreateContractWithCompany(context.Background(), map[string]any{
		"company_name":  "Ghost Inc",
		"contract_data": map[string]any{},
	})

	if !res.IsError {
		t.Fatal("expected failure when company is missing and creation not requested")
	}
	out := decodeResult(t, res)
	if !strings.Contains(out["error"].(string), "create_company_if_missing") {
		t.Errorf("error %v should explain the flag", out["error"])
	}
}

func TestFindExpiringContractsBuckets(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	api := &stubAPI{
		search: func(path, query string, _ []string) ([]agiloft.Record, error) {
			if !strings.Contains(query, "contract_end_date>='2026-08-29'") {
				t.Errorf("query %q missing lower bound", query)
			}
			if !strings.Contains(query, "contract_end_date<='2026-11-27'") {
				t.Errorf("query %q missing upper bound", query)
			}
			return []agiloft.Record{
				{"id": float64(1), "contract_end_date": "2026-09-08"}, // +10
				{"id": float64(2), "contract_end_date": "2026-10-13"}, // +45
				{"id": float64(3), "contract_end_date": "2026-11-17"}, // +80
			}, nil
		},
	}
	api.t = t
	h := newTestHandlers(api, now)

	res := h.FindExpiringContracts(context.Background(), map[string]any{
		"days_from_now": float64(90),
	})

	out := decodeResult(t, res)
	if out["success"] != true {
		t.Fatalf("success = %v: %v", out["success"], out["error"])
	}

	data := out["data"].(map[string]any)
	summary := data["summary"].(map[string]any)
	if summary["total_found"] != float64(3) {
		t.Errorf("total_found = %v", summary["total_found"])
	}
	if summary["urgent_count"] != float64(1) || summary["upcoming_count"] != float64(1) || summary["planning_count"] != float64(1) {
		t.Errorf("bucket counts = %v", summary)
	}
	if summary["expired_count"] != float64(0) {
		t.Errorf("expired_count = %v", summary["expired_count"])
	}

	urgent := data["urgent"].([]any)
	first := urgent[0].(map[string]any)
	if first["urgency"] != "URGENT" || first["days_remaining"] != float64(10) {
		t.Errorf("urgent record = %v", first)
	}

	if _, ok := data["expired"]; ok {
		t.Error("expired bucket must be omitted unless requested")
	}
}

func TestFindExpiringContractsStatusFilter(t *testing.T) {
	var gotQuery string
	api := &stubAPI{
		search: func(_, query string, _ []string) ([]agiloft.Record, error) {
			gotQuery = query
			return nil, nil
		},
	}
	api.t = t
	h := newTestHandlers(api, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC))

	h.FindExpiringContracts(context.Background(), map[string]any{
		"status_filter": "Active",
	})

	if !strings.Contains(gotQuery, "AND wfstate='Active'") {
		t.Errorf("query %q missing status filter", gotQuery)
	}
}

func TestOnboardCompanyExistingWithoutSkipFails(t *testing.T) {
	api := &stubAPI{
		search: func(_, _ string, _ []string) ([]agiloft.Record, error) {
			return []agiloft.Record{{"id": float64(7), "company_name": "Acme"}}, nil
		},
	}
	api.t = t
	h := newTestHandlers(api, time.Now())

	res := h.OnboardCompanyWithContact(context.Background(), map[string]any{
		"company_data": map[string]any{"company_name": "Acme"},
	})

	if !res.IsError {
		t.Fatal("expected failure for existing company without skip_if_exists")
	}
	out := decodeResult(t, res)
	partial := out["partial_data"].(map[string]any)
	if _, ok := partial["existing_company"]; !ok {
		t.Error("partial_data should carry the existing company")
	}
}

func TestOnboardCompanyCreatesLinkedContact(t *testing.T) {
	var created []string
	var contactCreate agiloft.Record
	api := &stubAPI{
		search: func(_, _ string, _ []string) ([]agiloft.Record, error) {
			return []agiloft.Record{}, nil
		},
		create: func(path string, data agiloft.Record) (agiloft.Record, error) {
			created = append(created, path)
			if path == "/contacts" {
				contactCreate = data
			}
			return agiloft.Record{"result": float64(1)}, nil
		},
	}
	api.t = t
	h := newTestHandlers(api, time.Now())

	res := h.OnboardCompanyWithContact(context.Background(), map[string]any{
		"company_data": map[string]any{"company_name": "Acme", "status": "Active"},
		"contact_data": map[string]any{"first_name": "Jo", "last_name": "Nguyen"},
	})

	out := decodeResult(t, res)
	if out["success"] != true {
		t.Fatalf("success = %v: %v", out["success"], out["error"])
	}
	if len(created) != 2 || created[0] != "/company" || created[1] != "/contacts" {
		t.Errorf("create order = %v", created)
	}
	if contactCreate["company_name"] != ":Acme" {
		t.Errorf("contact company_name = %v, want :Acme", contactCreate["company_name"])
	}
}

func TestAttachFileRejectsSandboxPath(t *testing.T) {
	api := &stubAPI{} // any API call is a test failure
	api.t = t
	h := newTestHandlers(api, time.Now())

	res := h.AttachFileToContract(context.Background(), map[string]any{
		"contract_id": float64(1),
		"file_path":   "/mnt/data/contract.pdf",
	})

	if !res.IsError {
		t.Fatal("sandbox path must be rejected")
	}
	out := decodeResult(t, res)
	if !strings.Contains(out["error"].(string), "sandbox path") {
		t.Errorf("error = %v", out["error"])
	}
}

func TestAttachFileRejectsEmptyFile(t *testing.T) {
	api := &stubAPI{}
	api.t = t
	h := newTestHandlers(api, time.Now())
	h.readFile = func(string) ([]byte, error) { return []byte{}, nil }

	res := h.AttachFileToContract(context.Background(), map[string]any{
		"contract_id": float64(1),
		"file_path":   "/Users/jo/doc.pdf",
	})

	if !res.IsError {
		t.Fatal("empty file must be rejected")
	}
	out := decodeResult(t, res)
	if !strings.Contains(out["error"].(string), "0 bytes") {
		t.Errorf("error = %v", out["error"])
	}
}

func TestAttachFileFullFlow(t *testing.T) {
	var uploadedTo int
	var uploadedName string
	api := &stubAPI{
		get: func(path string, id int, _ []string) (agiloft.Record, error) {
			return agiloft.Record{"id": float64(id), "contract_title1": "Big Deal"}, nil
		},
		create: func(path string, data agiloft.Record) (agiloft.Record, error) {
			if path != "/attachment" {
				return nil, fmt.Errorf("unexpected create on %s", path)
			}
			if data["contract_title"] != ":Big Deal" {
				t.Errorf("contract_title = %v, want :Big Deal", data["contract_title"])
			}
			return agiloft.Record{"result": "314"}, nil
		},
		attachFile: func(path string, id int, field, fileName string, content []byte) (agiloft.Record, error) {
			uploadedTo = id
			uploadedName = fileName
			if string(content) != "pdf-bytes" {
				t.Errorf("content = %q", content)
			}
			return agiloft.Record{"success": true}, nil
		},
		info: func(path string, id int, field string) (agiloft.Record, error) {
			return agiloft.Record{"count": float64(1)}, nil
		},
	}
	api.t = t
	h := newTestHandlers(api, time.Now())
	h.readFile = func(path string) ([]byte, error) {
		if path != "/Users/jo/doc.pdf" {
			return nil, fmt.Errorf("unexpected path %s", path)
		}
		return []byte("pdf-bytes"), nil
	}

	res := h.AttachFileToContract(context.Background(), map[string]any{
		"contract_id": float64(55),
		"file_path":   "/Users/jo/doc.pdf",
	})

	out := decodeResult(t, res)
	if out["success"] != true {
		t.Fatalf("success = %v: %v", out["success"], out["error"])
	}
	data := out["data"].(map[string]any)
	if data["attachment_id"] != float64(314) {
		t.Errorf("attachment_id = %v, want 314", data["attachment_id"])
	}
	if uploadedTo != 314 {
		t.Errorf("uploaded to record %d, want 314", uploadedTo)
	}
	if uploadedName != "doc.pdf" {
		t.Errorf("uploaded name = %q, want doc.pdf", uploadedName)
	}
	if steps, ok := out["next_steps"].([]any); !ok || len(steps) == 0 {
		t.Errorf("next_steps = %v, want non-empty list", out["next_steps"])
	}
}

func TestAttachFileUntitledContractKeepsPartial(t *testing.T) {
	api := &stubAPI{
		get: func(_ string, id int, _ []string) (agiloft.Record, error) {
			return agiloft.Record{"id": float64(id)}, nil
		},
	}
	api.t = t
	h := newTestHandlers(api, time.Now())
	h.readFile = func(string) ([]byte, error) { return []byte("x"), nil }

	res := h.AttachFileToContract(context.Background(), map[string]any{
		"contract_id": float64(9),
		"file_path":   "/Users/jo/doc.pdf",
	})

	if !res.IsError {
		t.Fatal("untitled contract must fail")
	}
	out := decodeResult(t, res)
	partial := out["partial_data"].(map[string]any)
	if _, ok := partial["contract"]; !ok {
		t.Error("partial_data should keep the fetched contract")
	}
}

func TestExtractCreatedID(t *testing.T) {
	tests := []struct {
		name   string
		result agiloft.Record
		want   int
		ok     bool
	}{
		{"number", agiloft.Record{"result": float64(7)}, 7, true},
		{"string", agiloft.Record{"result": "12"}, 12, true},
		{"object", agiloft.Record{"result": map[string]any{"id": float64(3)}}, 3, true},
		{"object_string_id", agiloft.Record{"result": map[string]any{"id": "4"}}, 4, true},
		{"missing", agiloft.Record{}, 0, false},
		{"garbage", agiloft.Record{"result": "abc"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractCreatedID(tt.result)
			if got != tt.want || ok != tt.ok {
				t.Errorf("extractCreatedID(%v) = %d, %v; want %d, %v", tt.result, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestDispatchUnknownWorkflow(t *testing.T) {
	api := &stubAPI{}
	api.t = t
	h := newTestHandlers(api, time.Now())

	res := h.Dispatch(context.Background(), "agiloft_launch_rocket", nil)
	if !res.IsError {
		t.Fatal("unknown workflow must error")
	}
}
