package workflow

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Workflow names double as the "operation" field in responses.
const (
	NamePreflightCreateContract   = "preflight_create_contract"
	NameCreateContractWithCompany = "create_contract_with_company"
	NameGetContractSummary        = "get_contract_summary"
	NameFindExpiringContracts     = "find_expiring_contracts"
	NameOnboardCompanyWithContact = "onboard_company_with_contact"
	NameAttachFileToContract      = "attach_file_to_contract"
)

const toolPrefix = "agiloft_"

func preflightCreateContractTool() mcp.Tool {
	return mcp.NewTool(toolPrefix+NamePreflightCreateContract,
		mcp.WithDescription("Validate contract creation prerequisites WITHOUT creating anything. "+
			"Checks contract type availability, company existence, and type compatibility. "+
			"Returns ready_to_create status, required fields, warnings, and next steps."),
		mcp.WithString("contract_type",
			mcp.Description("Contract type name to validate (e.g. 'Master Services Agreement'). "+
				"If omitted, returns all active contract types for selection.")),
		mcp.WithString("company_name",
			mcp.Description("Company name to validate. If provided, checks existence and "+
				"type compatibility with the selected contract type.")),
	)
}

func createContractWithCompanyTool() mcp.Tool {
	return mcp.NewTool(toolPrefix+NameCreateContractWithCompany,
		mcp.WithDescription("Create a contract with automatic company resolution. "+
			"Searches for the company by name, optionally creates it if missing, "+
			"then creates the contract. Returns the created contract and company details."),
		mcp.WithObject("contract_data",
			mcp.Required(),
			mcp.Description("Contract fields to create. Must include record_type, "+
				"auto_renewal_term_in_months, confidential, evaluation_frequency. "+
				"company_name will be set from the resolved company."),
			mcp.AdditionalProperties(true)),
		mcp.WithString("company_name",
			mcp.Required(),
			mcp.Description("Company name to search for and link to the contract")),
		mcp.WithBoolean("create_company_if_missing",
			mcp.Description("Create the company if it doesn't exist (default false)"),
			mcp.DefaultBool(false)),
		mcp.WithObject("company_data",
			mcp.Description("Company data for creation if create_company_if_missing is true. "+
				"Must include type_of_company and status if creating."),
			mcp.AdditionalProperties(true)),
	)
}

func getContractSummaryTool() mcp.Tool {
	return mcp.NewTool(toolPrefix+NameGetContractSummary,
		mcp.WithDescription("Get a comprehensive contract summary in one call. "+
			"Retrieves the contract, associated company details, and attachment count. "+
			"Returns an enriched view with all related information."),
		mcp.WithNumber("contract_id",
			mcp.Required(),
			mcp.Description("The ID of the contract to summarize")),
	)
}

func findExpiringContractsTool() mcp.Tool {
	return mcp.NewTool(toolPrefix+NameFindExpiringContracts,
		mcp.WithDescription("Find contracts expiring within a date range. "+
			"Returns contracts with enriched urgency categories "+
			"(URGENT/UPCOMING/PLANNING) and renewal recommendations."),
		mcp.WithNumber("days_from_now",
			mcp.Description("Number of days from today to search for expiring contracts"),
			mcp.DefaultNumber(90)),
		mcp.WithBoolean("include_expired",
			mcp.Description("Include already-expired contracts (default false)"),
			mcp.DefaultBool(false)),
		mcp.WithString("status_filter",
			mcp.Description("Filter by contract status/wfstate (e.g. 'Active'). "+
				"If omitted, returns all statuses.")),
	)
}

func onboardCompanyWithContactTool() mcp.Tool {
	return mcp.NewTool(toolPrefix+NameOnboardCompanyWithContact,
		mcp.WithDescription("Onboard a company with an optional primary contact in one operation. "+
			"Checks if the company exists first, creates it if needed, "+
			"then creates the contact linked to the company."),
		mcp.WithObject("company_data",
			mcp.Required(),
			mcp.Description("Company fields. Must include company_name, type_of_company, status."),
			mcp.Properties(map[string]any{
				"company_name": map[string]any{
					"type":        "string",
					"description": "Company name (required)",
				},
				"type_of_company": map[string]any{
					"type":        "string",
					"description": "Type of company (required - e.g. Customer, Vendor)",
				},
				"status": map[string]any{
					"type":        "string",
					"description": "Company status (required - e.g. Active)",
				},
			}),
			mcp.AdditionalProperties(true)),
		mcp.WithObject("contact_data",
			mcp.Description("Contact fields for the primary contact. "+
				"company_name will be auto-linked. "+
				"If omitted, only the company is created."),
			mcp.Properties(map[string]any{
				"first_name": map[string]any{"type": "string", "description": "First name"},
				"last_name":  map[string]any{"type": "string", "description": "Last name"},
				"email":      map[string]any{"type": "string", "description": "Email address"},
				"title":      map[string]any{"type": "string", "description": "Job title"},
			}),
			mcp.AdditionalProperties(true)),
		mcp.WithBoolean("skip_if_exists",
			mcp.Description("If true and company already exists, skip creation and return "+
				"existing record. If false (default), return an error."),
			mcp.DefaultBool(false)),
	)
}

func attachFileToContractTool() mcp.Tool {
	return mcp.NewTool(toolPrefix+NameAttachFileToContract,
		mcp.WithDescription("Upload a file attachment to a contract. This is the CORRECT way to attach "+
			"files to contracts in Agiloft. DO NOT use agiloft_attach_file_contract "+
			"(which tries to attach directly to the contract table and will fail). "+
			"This tool creates an Attachment record linked to the contract, then "+
			"uploads the file to it. Returns the new attachment ID and file info. "+
			"CRITICAL: file_path MUST be an absolute path on the local filesystem "+
			"(e.g. '/Users/jane/Downloads/contract.pdf'). Do NOT use sandbox paths "+
			"like /mnt/, /home/claude/, or /tmp/. Do NOT try to encode the file to base64. "+
			"If you do not know the local file path, ASK THE USER for it."),
		mcp.WithNumber("contract_id",
			mcp.Required(),
			mcp.Description("The ID of the contract to attach the file to")),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("REQUIRED. Absolute path to the file on the local filesystem. "+
				"Example: '/Users/hector/Downloads/contract.pdf'. "+
				"The MCP server reads the file directly from disk. "+
				"Do NOT use sandbox paths (/mnt/, /home/claude/, /tmp/sandbox/). "+
				"If you don't have the real file path, ask the user.")),
		mcp.WithString("file_name",
			mcp.Description("Name for the uploaded file (e.g. 'contract.pdf'). "+
				"If omitted, uses the filename from file_path.")),
		mcp.WithString("attachment_title",
			mcp.Description("Title for the attachment record (optional - defaults to file_name)")),
	)
}

// Tools returns the composite workflow tool definitions in a stable order.
func Tools() []mcp.Tool {
	return []mcp.Tool{
		preflightCreateContractTool(),
		createContractWithCompanyTool(),
		getContractSummaryTool(),
		findExpiringContractsTool(),
		onboardCompanyWithContactTool(),
		attachFileToContractTool(),
	}
}
