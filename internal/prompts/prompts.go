// Package prompts defines the guided workflow prompts exposed through the
// MCP slash-command menu. Each prompt renders step-by-step instructions
// that steer the conversation through the underlying entity tools.
package prompts

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Register adds all guided prompts to the MCP server.
func Register(s *server.MCPServer) {
	s.AddPrompt(mcp.NewPrompt("create-contract",
		mcp.WithPromptDescription("Step-by-step guided contract creation. Validates contract type, "+
			"company compatibility, and required fields before creating."),
		mcp.WithArgument("contract_type",
			mcp.ArgumentDescription("Contract type to use (optional - will show available types if omitted)")),
		mcp.WithArgument("company_name",
			mcp.ArgumentDescription("Company name for the contract (optional - will ask if omitted)")),
	), renderCreateContract)

	s.AddPrompt(mcp.NewPrompt("contract-review",
		mcp.WithPromptDescription("Load a contract, present a summary, check attachments, "+
			"flag health issues, and offer actions."),
		mcp.WithArgument("contract_id",
			mcp.ArgumentDescription("Contract ID to review (optional - will ask or search if omitted)")),
	), renderContractReview)

	s.AddPrompt(mcp.NewPrompt("company-onboarding",
		mcp.WithPromptDescription("Onboard a new company: check existence, create company record, "+
			"and optionally create a primary contact."),
		mcp.WithArgument("company_name",
			mcp.ArgumentDescription("Company name to onboard (optional - will ask if omitted)")),
	), renderCompanyOnboarding)

	s.AddPrompt(mcp.NewPrompt("contract-search-and-report",
		mcp.WithPromptDescription("Search contracts by various criteria and format results "+
			"as a summary report with statistics."),
		mcp.WithArgument("search_criteria",
			mcp.ArgumentDescription("Search criteria (optional - will ask if omitted)")),
	), renderContractSearchReport)

	s.AddPrompt(mcp.NewPrompt("contract-renewal-check",
		mcp.WithPromptDescription("Find contracts expiring within N days, assess renewal status, "+
			"and suggest actions organized by urgency."),
		mcp.WithArgument("days_ahead",
			mcp.ArgumentDescription("Number of days ahead to check for expiring contracts"),
			mcp.RequiredArgument()),
	), renderContractRenewalCheck)
}

func userResult(description string, steps []string) *mcp.GetPromptResult {
	return mcp.NewGetPromptResult(description, []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(strings.Join(steps, "\n"))),
	})
}

func renderCreateContract(ctx context.Context, r mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	contractType := r.Params.Arguments["contract_type"]
	companyName := r.Params.Arguments["company_name"]

	steps := []string{
		"I want to create a new contract in Agiloft. " +
			"Please guide me through the process step by step.",
	}

	if contractType != "" {
		steps = append(steps, "\nI'd like to use contract type: "+contractType)
	} else {
		steps = append(steps,
			"\nFirst, search for available contract types using "+
				"agiloft_search_contract_types with query \"status=Active\" "+
				"and present them so I can choose one.")
	}

	if companyName != "" {
		steps = append(steps,
			"\nThe company is: "+companyName+". "+
				"Please verify it exists using agiloft_search_companies and "+
				"check that its type_of_company is compatible with the contract type's party_type.")
	} else {
		steps = append(steps,
			"\nAfter I select a contract type, ask me for the company name. "+
				"Then search for it with agiloft_search_companies to verify it exists "+
				"and check type compatibility with the contract type's party_type.")
	}

	steps = append(steps,
		"\nOnce the contract type and company are confirmed, collect these "+
			"required fields from me:\n"+
			"- record_type (Contract, Child Contract, or Amendment)\n"+
			"- contract_title1\n"+
			"- auto_renewal_term_in_months\n"+
			"- confidential\n"+
			"- evaluation_frequency\n"+
			"And any optional fields I want to provide (dates, amount, owner, etc.).",
		"\nCRITICAL - LINKED FIELD COLON PREFIX RULE:\n"+
			"Several contract fields are 'linked fields' in Agiloft. When setting "+
			"their values in create or update calls, the value MUST start with a "+
			"colon (:) prefix. Without it, the API will reject the value.\n"+
			"Linked fields that require colon prefix:\n"+
			"- contract_type → ':Services Agreement' (not 'Services Agreement')\n"+
			"- company_name → ':Acme Corp' (not 'Acme Corp')\n"+
			"- internal_contract_owner → ':Robert Barash' (not 'Robert Barash')\n"+
			"Always add the colon prefix to these fields when calling "+
			"agiloft_create_contract or agiloft_update_contract.",
		"\nAfter gathering all fields, use agiloft_preflight_create_contract "+
			"to validate everything before creating. Then use agiloft_create_contract "+
			"to create the contract. Remember to use colon prefixes for linked fields.",
		"\nAfter creation, ask if I want to upload any attachments to the new contract. "+
			"IMPORTANT: To attach files to a contract, use agiloft_attach_file_to_contract "+
			"(NOT agiloft_attach_file_contract, which tries to attach directly to the "+
			"contract table and will fail). The workflow tool creates an Attachment record "+
			"linked to the contract and uploads the file to it. "+
			"ALWAYS use the file_path parameter with the full path to the file on disk. "+
			"Do NOT use file_content_base64 (encoding large files to base64 will hang).")

	return userResult("Step-by-step contract creation workflow", steps), nil
}

func renderContractReview(ctx context.Context, r mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	contractID := r.Params.Arguments["contract_id"]

	steps := []string{"I want to review a contract in detail."}

	if contractID != "" {
		steps = append(steps,
			"\nRetrieve contract ID "+contractID+" using agiloft_get_contract "+
				"with all default fields.")
	} else {
		steps = append(steps,
			"\nAsk me for a contract ID or search criteria. If I give search "+
				"criteria, use agiloft_search_contracts to find matching contracts "+
				"and let me pick one.")
	}

	steps = append(steps,
		"\nOnce you have the contract, present a summary including:\n"+
			"- Title, type, status (wfstate)\n"+
			"- Company name\n"+
			"- Amount, dates (start, end, signed)\n"+
			"- Owner\n"+
			"- Term and auto-renewal details",
		"\nThen check for attachments using agiloft_get_attachment_info_contract "+
			"on the 'attached_file' field and report how many files are attached.",
		"\nFlag any potential issues:\n"+
			"- Contract end date is in the past or within 30 days\n"+
			"- Missing key fields (amount, dates, owner)\n"+
			"- Status is Draft or Cancelled",
		"\nFinally, offer available actions:\n"+
			"- Update contract fields (remember: linked fields like contract_type, "+
			"company_name, internal_contract_owner need colon prefix, e.g. ':value')\n"+
			"- Upload attachment: use agiloft_attach_file_to_contract with file_path parameter (NOT agiloft_attach_file_contract)\n"+
			"- Download attachment: use agiloft_retrieve_attachment_attachment on the attachment record\n"+
			"- Trigger an action button\n"+
			"- View the associated company details")

	return userResult("Contract review and health check", steps), nil
}

func renderCompanyOnboarding(ctx context.Context, r mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	companyName := r.Params.Arguments["company_name"]

	steps := []string{"I want to onboard a new company in Agiloft."}

	if companyName != "" {
		steps = append(steps,
			"\nFirst, check if \""+companyName+"\" already exists by searching "+
				"with agiloft_search_companies. If it exists, show me the existing "+
				"record and ask if I want to update it or proceed with a new one.")
	} else {
		steps = append(steps,
			"\nAsk me for the company name, then search agiloft_search_companies "+
				"to check if it already exists.")
	}

	steps = append(steps,
		"\nIf the company doesn't exist (or I want a new one), collect:\n"+
			"- company_name (required)\n"+
			"- type_of_company (required - e.g. Customer, Vendor, Partner)\n"+
			"- status (required - e.g. Active)\n"+
			"- Optional: industry, country, main_city, account_rep",
		"\nCreate the company using agiloft_create_company with the gathered data.",
		"\nAfter creating the company, ask if I want to create a primary contact. "+
			"If yes, collect contact details (first_name, last_name, email, title) "+
			"and create using agiloft_create_contact with the company_name linked.")

	return userResult("Company onboarding workflow with optional contact creation", steps), nil
}

func renderContractSearchReport(ctx context.Context, r mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	searchCriteria := r.Params.Arguments["search_criteria"]

	steps := []string{"I want to search for contracts and get a summary report."}

	if searchCriteria != "" {
		steps = append(steps,
			"\nSearch criteria: "+searchCriteria+"\n"+
				"Use agiloft_search_contracts with an appropriate structured query. "+
				"If the criteria is a company name, use company_name~='value'. "+
				"If it's a status, use wfstate='value'.")
	} else {
		steps = append(steps,
			"\nAsk me what I'm looking for. I can search by:\n"+
				"- Company name\n"+
				"- Contract status (wfstate)\n"+
				"- Contract type\n"+
				"- Date ranges (contract_end_date)\n"+
				"- Amount ranges\n"+
				"- Or any combination using AND/OR")
	}

	steps = append(steps,
		"\nPresent the results as a formatted summary table/report with:\n"+
			"- Total count of matching contracts\n"+
			"- For each contract: ID, title, company, type, status, amount, end date\n"+
			"- Summary statistics: total amount, count by status, count by type",
		"\nAfter showing results, offer to:\n"+
			"- Drill into any specific contract (contract-review)\n"+
			"- Narrow or broaden the search\n"+
			"- Export the data (list the records)")

	return userResult("Contract search with summary reporting", steps), nil
}

func renderContractRenewalCheck(ctx context.Context, r mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	daysAhead := r.Params.Arguments["days_ahead"]
	if daysAhead == "" {
		daysAhead = "90"
	}

	steps := []string{
		"I want to check for contracts expiring within the next " + daysAhead + " days.",
		"\nUse agiloft_find_expiring_contracts with days_from_now=" + daysAhead + " " +
			"to find contracts approaching their end date.",
		"\nPresent the results organized by urgency:\n" +
			"- URGENT: Expiring within 30 days\n" +
			"- UPCOMING: Expiring within 31-60 days\n" +
			"- PLANNING: Expiring within 61+ days",
		"\nFor each contract, show:\n" +
			"- Title, company, end date, days remaining\n" +
			"- Current status (wfstate)\n" +
			"- Auto-renewal term\n" +
			"- Contract amount",
		"\nSuggest actions for each category:\n" +
			"- URGENT: Immediate review and renewal decision needed\n" +
			"- UPCOMING: Schedule renewal discussions\n" +
			"- PLANNING: Add to renewal pipeline",
		"\nOffer to drill into any specific contract for a full review.",
	}

	return userResult("Contract renewal check - next "+daysAhead+" days", steps), nil
}
