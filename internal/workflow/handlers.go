package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/agiloft-mcp/internal/agiloft"
	"github.com/bobmcallan/agiloft-mcp/internal/common"
)

// Contract fields linked to other tables. Their values must carry a colon
// prefix (e.g. ":Services Agreement") or the remote rejects them, sometimes
// silently.
var contractLinkedFields = map[string]struct{}{
	"company_name":            {},
	"contract_type":           {},
	"internal_contract_owner": {},
}

// Paths that belong to an assistant sandbox rather than the machine this
// server runs on. Files under these prefixes can never be read here.
var sandboxPrefixes = []string{"/mnt/", "/home/claude", "/tmp/sandbox", "/sandbox/"}

const expiringSearchCap = 200

// Handlers implements the composite workflow tools. Each workflow chains
// several API calls and returns an enriched response with next_steps
// guidance. now and readFile are swappable for tests.
type Handlers struct {
	api      agiloft.API
	logger   *common.Logger
	now      func() time.Time
	readFile func(string) ([]byte, error)
}

func NewHandlers(api agiloft.API, logger *common.Logger) *Handlers {
	return &Handlers{
		api:      api,
		logger:   logger,
		now:      time.Now,
		readFile: os.ReadFile,
	}
}

// Register adds all workflow tools to the MCP server.
func (h *Handlers) Register(s *server.MCPServer) {
	for _, tool := range Tools() {
		name := tool.Name
		s.AddTool(tool, func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h.Dispatch(ctx, name, r.GetArguments()), nil
		})
	}
	h.logger.Info().Int("tools", len(Tools())).Msg("Registered workflow tools")
}

// Dispatch routes a workflow tool call by name.
func (h *Handlers) Dispatch(ctx context.Context, name string, args map[string]any) *mcp.CallToolResult {
	switch strings.TrimPrefix(name, toolPrefix) {
	case NamePreflightCreateContract:
		return h.PreflightCreateContract(ctx, args)
	case NameCreateContractWithCompany:
		return h.CreateContractWithCompany(ctx, args)
	case NameGetContractSummary:
		return h.GetContractSummary(ctx, args)
	case NameFindExpiringContracts:
		return h.FindExpiringContracts(ctx, args)
	case NameOnboardCompanyWithContact:
		return h.OnboardCompanyWithContact(ctx, args)
	case NameAttachFileToContract:
		return h.AttachFileToContract(ctx, args)
	default:
		return errorResult(name, fmt.Sprintf("unknown workflow tool: %s", name), nil)
	}
}

// --- Response helpers ---

func response(operation string, data map[string]any, nextSteps, warnings []string) *mcp.CallToolResult {
	result := map[string]any{
		"success":   true,
		"operation": operation,
		"data":      data,
	}
	if len(nextSteps) > 0 {
		result["next_steps"] = nextSteps
	}
	if len(warnings) > 0 {
		result["warnings"] = warnings
	}
	return textResult(result, false)
}

func errorResult(operation, errMsg string, partialData map[string]any) *mcp.CallToolResult {
	result := map[string]any{
		"success":   false,
		"operation": operation,
		"error":     errMsg,
	}
	if len(partialData) > 0 {
		result["partial_data"] = partialData
	}
	return textResult(result, true)
}

func textResult(v any, isError bool) *mcp.CallToolResult {
	text, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		text = []byte(fmt.Sprintf(`{"success": false, "error": %q}`, err.Error()))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(text))},
		IsError: isError,
	}
}

// ensureLinkedPrefix prepends the colon to known linked field values that
// lack it.
func ensureLinkedPrefix(data agiloft.Record) agiloft.Record {
	out := make(agiloft.Record, len(data))
	for k, v := range data {
		if _, linked := contractLinkedFields[k]; linked {
			if s, ok := v.(string); ok && s != "" && !strings.HasPrefix(s, ":") {
				out[k] = ":" + s
				continue
			}
		}
		out[k] = v
	}
	return out
}

func stripEmpty(data agiloft.Record) agiloft.Record {
	out := make(agiloft.Record, len(data))
	for k, v := range data {
		if v == nil || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// daysUntil counts whole calendar days from today to the given date string
// (first 10 chars, YYYY-MM-DD). Today counts as zero.
func (h *Handlers) daysUntil(dateStr string) (int, error) {
	if len(dateStr) > 10 {
		dateStr = dateStr[:10]
	}
	end, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return 0, err
	}
	now := h.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(end.Sub(today).Hours() / 24), nil
}

func getString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func getBool(args map[string]any, key string) bool {
	b, _ := args[key].(bool)
	return b
}

func getInt(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

func getRecord(args map[string]any, key string) agiloft.Record {
	m, _ := args[key].(map[string]any)
	return m
}

func recordString(rec agiloft.Record, key string) string {
	s, _ := rec[key].(string)
	return s
}

// --- preflight_create_contract ---

func (h *Handlers) PreflightCreateContract(ctx context.Context, args map[string]any) *mcp.CallToolResult {
	contractTypeName := getString(args, "contract_type")
	companyName := getString(args, "company_name")

	data := map[string]any{}
	var warnings, nextSteps []string
	readyToCreate := true

	if contractTypeName == "" {
		types, err := h.api.Search(ctx, "/contract_type", "status=Active",
			[]string{"id", "contract_type", "party_type", "description",
				"default_contract_term_in_months", "default_autorenewal_term_in_months"})
		if err != nil {
			return errorResult(NamePreflightCreateContract, err.Error(), nil)
		}
		data["available_contract_types"] = types
		data["ready_to_create"] = false
		nextSteps = append(nextSteps,
			"Select a contract type from the list and call this tool again "+
				"with the contract_type parameter.")
		return response(NamePreflightCreateContract, data, nextSteps, warnings)
	}

	typeQuery := fmt.Sprintf("contract_type='%s' AND status=Active", contractTypeName)
	typeResults, err := h.api.Search(ctx, "/contract_type", typeQuery,
		[]string{"id", "contract_type", "party_type", "description",
			"default_contract_term_in_months", "default_autorenewal_term_in_months",
			"available_for_record_types"})
	if err != nil {
		return errorResult(NamePreflightCreateContract, err.Error(), nil)
	}

	if len(typeResults) == 0 {
		data["ready_to_create"] = false
		warnings = append(warnings,
			fmt.Sprintf("Contract type '%s' not found or not active.", contractTypeName))
		activeTypes, err := h.api.Search(ctx, "/contract_type", "status=Active",
			[]string{"id", "contract_type", "party_type"})
		if err != nil {
			return errorResult(NamePreflightCreateContract, err.Error(), nil)
		}
		data["available_contract_types"] = activeTypes
		nextSteps = append(nextSteps, "Choose from the available active contract types.")
		return response(NamePreflightCreateContract, data, nextSteps, warnings)
	}

	contractTypeInfo := typeResults[0]
	data["contract_type"] = contractTypeInfo

	if companyName != "" {
		companyResults, err := h.api.Search(ctx, "/company",
			fmt.Sprintf("company_name~='%s'", companyName),
			[]string{"id", "company_name", "type_of_company", "status"})
		if err != nil {
			return errorResult(NamePreflightCreateContract, err.Error(), nil)
		}

		if len(companyResults) == 0 {
			readyToCreate = false
			warnings = append(warnings,
				fmt.Sprintf("Company '%s' not found. Create it first or check the name.", companyName))
			nextSteps = append(nextSteps,
				"Use agiloft_create_company or agiloft_onboard_company_with_contact "+
					"to create the company first.")
		} else {
			company := companyResults[0]
			data["company"] = company

			partyType := recordString(contractTypeInfo, "party_type")
			companyType := recordString(company, "type_of_company")
			if partyType != "" && companyType != "" && partyType != companyType {
				warnings = append(warnings, fmt.Sprintf(
					"Type mismatch: contract type expects party_type='%s' "+
						"but company is type_of_company='%s'. This may cause issues.",
					partyType, companyType))
			}
			if status := recordString(company, "status"); status != "Active" {
				warnings = append(warnings, fmt.Sprintf(
					"Company '%s' status is '%s', not Active.", companyName, status))
			}
		}
	} else {
		nextSteps = append(nextSteps, "Provide a company_name to validate company compatibility.")
	}

	requiredFields := map[string]any{
		"record_type":                 "Contract, Child Contract, or Amendment",
		"auto_renewal_term_in_months": "integer",
		"confidential":                "string",
		"evaluation_frequency":        "integer",
		"contract_type":               ":" + contractTypeName,
	}
	if companyName != "" && data["company"] != nil {
		requiredFields["company_name"] = ":" + companyName
	}
	data["required_fields"] = requiredFields

	data["linked_fields_warning"] = "CRITICAL: The following fields are LINKED FIELDS and their values " +
		"MUST start with a colon (:) prefix when creating or updating. " +
		"Without the colon prefix, the API will reject the value or fail silently."
	companyHint := "(provide company name with : prefix)"
	if companyName != "" {
		companyHint = ":" + companyName
	}
	data["linked_fields"] = map[string]any{
		"contract_type":           ":" + contractTypeName,
		"company_name":            companyHint,
		"internal_contract_owner": ":<owner name> (e.g. :Robert Barash)",
	}

	ready := readyToCreate && len(warnings) == 0
	data["ready_to_create"] = ready
	if ready {
		nextSteps = append(nextSteps, fmt.Sprintf(
			"All validations passed. Use agiloft_create_contract with the "+
				"required fields to create the contract. IMPORTANT: Use colon "+
				"prefix for linked fields - contract_type, company_name, and "+
				"internal_contract_owner values MUST start with ':' "+
				"(e.g. contract_type=':%s').", contractTypeName))
	}

	return response(NamePreflightCreateContract, data, nextSteps, warnings)
}

// --- create_contract_with_company ---

func (h *Handlers) CreateContractWithCompany(ctx context.Context, args map[string]any) *mcp.CallToolResult {
	contractData := getRecord(args, "contract_data")
	companyName := getString(args, "company_name")
	createIfMissing := getBool(args, "create_company_if_missing")
	companyData := getRecord(args, "company_data")

	data := map[string]any{}
	var warnings, nextSteps []string

	companyResults, err := h.api.Search(ctx, "/company",
		fmt.Sprintf("company_name='%s'", companyName),
		[]string{"id", "company_name", "type_of_company", "status"})
	if err != nil {
		return errorResult(NameCreateContractWithCompany, err.Error(), nil)
	}

	switch {
	case len(companyResults) > 0:
		data["company"] = companyResults[0]
		data["company_action"] = "found_existing"
	case createIfMissing:
		createData := make(agiloft.Record, len(companyData)+1)
		for k, v := range companyData {
			createData[k] = v
		}
		createData["company_name"] = companyName
		companyResult, err := h.api.Create(ctx, "/company", stripEmpty(createData))
		if err != nil {
			return errorResult(NameCreateContractWithCompany, err.Error(), data)
		}
		data["company"] = companyResult
		data["company_action"] = "created_new"
	default:
		return errorResult(NameCreateContractWithCompany, fmt.Sprintf(
			"Company '%s' not found. Set create_company_if_missing=true "+
				"and provide company_data to create it, or create it separately first.",
			companyName), nil)
	}

	create := make(agiloft.Record, len(contractData)+1)
	for k, v := range contractData {
		create[k] = v
	}
	create["company_name"] = ":" + companyName
	create = stripEmpty(ensureLinkedPrefix(create))

	contractResult, err := h.api.Create(ctx, "/contract", create)
	if err != nil {
		return errorResult(NameCreateContractWithCompany, err.Error(), data)
	}
	data["contract"] = contractResult

	nextSteps = append(nextSteps,
		"Contract created successfully. You can now:\n"+
			"- Upload attachments with agiloft_attach_file_to_contract (NOT agiloft_attach_file_contract)\n"+
			"- Review the full contract with agiloft_get_contract_summary")

	return response(NameCreateContractWithCompany, data, nextSteps, warnings)
}

// --- get_contract_summary ---

var contractSummaryFields = []string{
	"id", "record_type", "contract_title1", "company_name",
	"contract_type", "contract_amount", "contract_start_date",
	"contract_end_date", "contract_term_in_months", "wfstate",
	"internal_contract_owner", "date_signed", "confidential",
	"auto_renewal_term_in_months", "evaluation_frequency",
	"contract_description", "cost_center",
}

func (h *Handlers) GetContractSummary(ctx context.Context, args map[string]any) *mcp.CallToolResult {
	contractID := getInt(args, "contract_id", 0)

	data := map[string]any{}
	var warnings, nextSteps []string

	contract, err := h.api.Get(ctx, "/contract", contractID, contractSummaryFields)
	if err != nil {
		return errorResult(NameGetContractSummary, err.Error(), nil)
	}
	data["contract"] = contract

	if companyName := recordString(contract, "company_name"); companyName != "" {
		cleanName := strings.TrimLeft(companyName, ":")
		companyResults, err := h.api.Search(ctx, "/company",
			fmt.Sprintf("company_name='%s'", cleanName),
			[]string{"id", "company_name", "type_of_company", "status",
				"industry", "main_city", "country", "number_of_active_contracts"})
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Could not fetch company details: %v", err))
		} else if len(companyResults) > 0 {
			data["company"] = companyResults[0]
		}
	}

	if attachInfo, err := h.api.AttachmentInfo(ctx, "/contract", contractID, "attached_file"); err != nil {
		data["attachments"] = map[string]any{"count": 0, "note": "No attachments or field not available"}
	} else {
		data["attachments"] = attachInfo
	}

	var healthIssues []string

	if endDate := recordString(contract, "contract_end_date"); endDate != "" {
		if daysRemaining, err := h.daysUntil(endDate); err == nil {
			switch {
			case daysRemaining < 0:
				healthIssues = append(healthIssues,
					fmt.Sprintf("Contract EXPIRED %d days ago", -daysRemaining))
			case daysRemaining <= 30:
				healthIssues = append(healthIssues,
					fmt.Sprintf("Contract expires in %d days - URGENT", daysRemaining))
			case daysRemaining <= 90:
				healthIssues = append(healthIssues,
					fmt.Sprintf("Contract expires in %d days - review soon", daysRemaining))
			}
			data["days_remaining"] = daysRemaining
		}
	}

	if isEmpty(contract["contract_amount"]) {
		healthIssues = append(healthIssues, "Missing contract amount")
	}
	if isEmpty(contract["internal_contract_owner"]) {
		healthIssues = append(healthIssues, "No contract owner assigned")
	}
	if isEmpty(contract["date_signed"]) {
		healthIssues = append(healthIssues, "Contract not yet signed")
	}

	switch status := recordString(contract, "wfstate"); status {
	case "Draft", "Cancelled", "Expired":
		healthIssues = append(healthIssues, fmt.Sprintf("Contract status is '%s'", status))
	}

	if len(healthIssues) > 0 {
		data["health_issues"] = healthIssues
	}

	nextSteps = append(nextSteps,
		"Available actions:\n"+
			"- Update fields: agiloft_update_contract\n"+
			"- Upload attachment: agiloft_attach_file_to_contract (NOT agiloft_attach_file_contract)\n"+
			"- Download attachment: agiloft_retrieve_attachment_attachment (on the attachment record)\n"+
			"- Trigger action: agiloft_action_button_contract\n"+
			"- View company: agiloft_get_company")

	return response(NameGetContractSummary, data, nextSteps, warnings)
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case float64:
		return t == 0
	}
	return false
}

// --- find_expiring_contracts ---

func (h *Handlers) FindExpiringContracts(ctx context.Context, args map[string]any) *mcp.CallToolResult {
	daysFromNow := getInt(args, "days_from_now", 90)
	includeExpired := getBool(args, "include_expired")
	statusFilter := getString(args, "status_filter")

	data := map[string]any{}
	var warnings, nextSteps []string

	now := h.now()
	futureDate := now.AddDate(0, 0, daysFromNow)

	var query string
	if includeExpired {
		query = fmt.Sprintf("contract_end_date<='%s'", futureDate.Format("2006-01-02"))
	} else {
		query = fmt.Sprintf("contract_end_date>='%s' AND contract_end_date<='%s'",
			now.Format("2006-01-02"), futureDate.Format("2006-01-02"))
	}
	if statusFilter != "" {
		query += fmt.Sprintf(" AND wfstate='%s'", statusFilter)
	}

	results, err := h.api.Search(ctx, "/contract", query,
		[]string{"id", "contract_title1", "company_name", "contract_type",
			"contract_end_date", "contract_amount", "wfstate",
			"auto_renewal_term_in_months", "internal_contract_owner"})
	if err != nil {
		return errorResult(NameFindExpiringContracts, err.Error(), nil)
	}
	if len(results) > expiringSearchCap {
		results = results[:expiringSearchCap]
	}

	urgent := []agiloft.Record{}
	upcoming := []agiloft.Record{}
	planning := []agiloft.Record{}
	expired := []agiloft.Record{}

	for _, contract := range results {
		endDate := recordString(contract, "contract_end_date")
		if endDate == "" {
			continue
		}
		daysRemaining, err := h.daysUntil(endDate)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf(
				"Contract %v: could not parse end_date '%s'", contract["id"], endDate))
			continue
		}
		contract["days_remaining"] = daysRemaining

		switch {
		case daysRemaining < 0:
			contract["urgency"] = "EXPIRED"
			expired = append(expired, contract)
		case daysRemaining <= 30:
			contract["urgency"] = "URGENT"
			urgent = append(urgent, contract)
		case daysRemaining <= 60:
			contract["urgency"] = "UPCOMING"
			upcoming = append(upcoming, contract)
		default:
			contract["urgency"] = "PLANNING"
			planning = append(planning, contract)
		}
	}

	data["summary"] = map[string]any{
		"total_found":       len(results),
		"urgent_count":      len(urgent),
		"upcoming_count":    len(upcoming),
		"planning_count":    len(planning),
		"expired_count":     len(expired),
		"search_range_days": daysFromNow,
	}
	data["urgent"] = urgent
	data["upcoming"] = upcoming
	data["planning"] = planning
	if includeExpired {
		data["expired"] = expired
	}

	if len(urgent) > 0 {
		nextSteps = append(nextSteps, fmt.Sprintf(
			"%d URGENT contract(s) expiring within 30 days - "+
				"review immediately with agiloft_get_contract_summary.", len(urgent)))
	}
	if len(upcoming) > 0 {
		nextSteps = append(nextSteps, fmt.Sprintf(
			"%d contract(s) expiring in 31-60 days - schedule renewal discussions.", len(upcoming)))
	}
	if len(results) == 0 {
		nextSteps = append(nextSteps, fmt.Sprintf(
			"No contracts expiring within %d days. Try increasing the days_from_now value.",
			daysFromNow))
	}

	return response(NameFindExpiringContracts, data, nextSteps, warnings)
}

// --- onboard_company_with_contact ---

func (h *Handlers) OnboardCompanyWithContact(ctx context.Context, args map[string]any) *mcp.CallToolResult {
	companyData := getRecord(args, "company_data")
	contactData := getRecord(args, "contact_data")
	skipIfExists := getBool(args, "skip_if_exists")

	companyName := recordString(companyData, "company_name")
	data := map[string]any{}
	var warnings, nextSteps []string

	if companyName == "" {
		return errorResult(NameOnboardCompanyWithContact,
			"company_data.company_name is required.", nil)
	}

	existing, err := h.api.Search(ctx, "/company",
		fmt.Sprintf("company_name='%s'", companyName),
		[]string{"id", "company_name", "type_of_company", "status"})
	if err != nil {
		return errorResult(NameOnboardCompanyWithContact, err.Error(), nil)
	}

	if len(existing) > 0 {
		if !skipIfExists {
			return errorResult(NameOnboardCompanyWithContact, fmt.Sprintf(
				"Company '%s' already exists (ID: %v). "+
					"Set skip_if_exists=true to use the existing company, "+
					"or use agiloft_update_company to modify it.",
				companyName, existing[0]["id"]),
				map[string]any{"existing_company": existing[0]})
		}
		data["company"] = existing[0]
		data["company_action"] = "already_exists"
		warnings = append(warnings, fmt.Sprintf(
			"Company '%s' already exists (ID: %v). Skipped creation.",
			companyName, existing[0]["id"]))
	} else {
		companyResult, err := h.api.Create(ctx, "/company", stripEmpty(companyData))
		if err != nil {
			return errorResult(NameOnboardCompanyWithContact, err.Error(), data)
		}
		data["company"] = companyResult
		data["company_action"] = "created"
	}

	if len(contactData) > 0 {
		contactCreate := stripEmpty(contactData)
		contactCreate["company_name"] = ":" + companyName
		contactResult, err := h.api.Create(ctx, "/contacts", contactCreate)
		if err != nil {
			return errorResult(NameOnboardCompanyWithContact, err.Error(), data)
		}
		data["contact"] = contactResult
		data["contact_action"] = "created"
	} else {
		nextSteps = append(nextSteps,
			"No contact was created. Use agiloft_create_contact to add "+
				"a contact linked to this company.")
	}

	nextSteps = append(nextSteps,
		"Company onboarded. You can now:\n"+
			"- Create a contract: agiloft_create_contract or agiloft_create_contract_with_company\n"+
			"- Add more contacts: agiloft_create_contact")

	return response(NameOnboardCompanyWithContact, data, nextSteps, warnings)
}

// --- attach_file_to_contract ---

// AttachFileToContract links a file to a contract. Contracts carry no direct
// file field, so the flow is: read the contract title, create an Attachment
// record linked by title, upload the file to it, then verify.
func (h *Handlers) AttachFileToContract(ctx context.Context, args map[string]any) *mcp.CallToolResult {
	contractID := getInt(args, "contract_id", 0)
	filePath := getString(args, "file_path")
	fileName := getString(args, "file_name")
	attachmentTitle := getString(args, "attachment_title")

	data := map[string]any{}
	var nextSteps []string

	if filePath == "" {
		return errorResult(NameAttachFileToContract,
			"file_path is required. Provide the absolute path to the file on the "+
				"local filesystem (e.g. '/Users/hector/Downloads/contract.pdf'). "+
				"Ask the user for the file path if you don't have it.", nil)
	}

	for _, prefix := range sandboxPrefixes {
		if strings.HasPrefix(filePath, prefix) {
			return errorResult(NameAttachFileToContract, fmt.Sprintf(
				"'%s' is a sandbox path, not a real filesystem path. "+
					"The MCP server runs on the local machine and needs the actual "+
					"file path (e.g. '/Users/hector/Downloads/contract.pdf'). "+
					"Please ask the user for the real file location on their machine.",
				filePath), nil)
		}
	}

	if strings.HasPrefix(filePath, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			filePath = filepath.Join(home, strings.TrimPrefix(filePath, "~"))
		}
	}

	fileData, err := h.readFile(filePath)
	if err != nil {
		return errorResult(NameAttachFileToContract, fmt.Sprintf(
			"Could not read file %s: %v. "+
				"Make sure this is the correct absolute path on the local filesystem. "+
				"Ask the user to verify the file location.", filePath, err), nil)
	}

	if fileName == "" {
		fileName = filepath.Base(filePath)
	}
	if attachmentTitle == "" {
		attachmentTitle = fileName
	}

	fileSize := len(fileData)
	h.logger.Info().
		Int("contract_id", contractID).
		Str("file_name", fileName).
		Int("file_size", fileSize).
		Str("file_path", filePath).
		Msg("Attaching file to contract")

	if fileSize == 0 {
		return errorResult(NameAttachFileToContract, "File is empty (0 bytes).", nil)
	}

	contract, err := h.api.Get(ctx, "/contract", contractID, []string{"id", "contract_title1"})
	if err != nil {
		return errorResult(NameAttachFileToContract, err.Error(), nil)
	}
	data["contract"] = contract

	contractTitle := recordString(contract, "contract_title1")
	if contractTitle == "" {
		return errorResult(NameAttachFileToContract, fmt.Sprintf(
			"Contract %d has no title (contract_title1). Cannot link attachment.",
			contractID), data)
	}

	createResult, err := h.api.Create(ctx, "/attachment", agiloft.Record{
		"title":           attachmentTitle,
		"status":          "Active",
		"expiration_date": "2099-12-31",
		"contract_title":  ":" + contractTitle,
	})
	if err != nil {
		return errorResult(NameAttachFileToContract, err.Error(), data)
	}
	data["attachment_record"] = createResult

	attachmentID, ok := extractCreatedID(createResult)
	if !ok {
		return errorResult(NameAttachFileToContract, fmt.Sprintf(
			"Created attachment record but could not determine its ID. Response: %v",
			createResult), data)
	}
	data["attachment_id"] = attachmentID

	uploadResult, err := h.api.AttachFile(ctx, "/attachment", attachmentID,
		"attached_file", fileName, fileData)
	if err != nil {
		return errorResult(NameAttachFileToContract, err.Error(), data)
	}
	data["upload_result"] = uploadResult

	fileInfo, err := h.api.AttachmentInfo(ctx, "/attachment", attachmentID, "attached_file")
	if err != nil {
		return errorResult(NameAttachFileToContract, err.Error(), data)
	}
	data["file_info"] = fileInfo

	nextSteps = append(nextSteps, fmt.Sprintf(
		"File '%s' attached to contract %d via attachment record %d. You can:\n"+
			"- Download it: agiloft_retrieve_attachment_attachment\n"+
			"- View info: agiloft_get_attachment_info_attachment\n"+
			"- Remove it: agiloft_remove_attachment_attachment",
		fileName, contractID, attachmentID))

	return response(NameAttachFileToContract, data, nextSteps, nil)
}

// extractCreatedID pulls the new record id out of a create response, which
// the remote reports as a bare number, a numeric string, or a nested object.
func extractCreatedID(result agiloft.Record) (int, bool) {
	switch v := result["result"].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		if id, err := strconv.Atoi(v); err == nil {
			return id, true
		}
	case map[string]any:
		switch id := v["id"].(type) {
		case float64:
			return int(id), true
		case int:
			return id, true
		case string:
			if n, err := strconv.Atoi(id); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}
