package registry

// entities is the complete registry, in declaration order. Every downstream
// component (schema generation, dispatch, handlers) works unmodified for any
// well-formed entry here.
var entities = []EntityConfig{
	{
		Key:               "contract",
		KeyPlural:         "contracts",
		APIPath:           "/contract",
		DisplayName:       "Contract",
		DisplayNamePlural: "Contracts",
		TextSearchFields:  []string{"contract_title1", "company_name"},
		KeyFields: []Field{
			{"record_type", "string", "Contract record type (REQUIRED)"},
			{"contract_title1", "string", "Contract title"},
			{"company_name", "string", "Associated company name (LINKED FIELD - value MUST start with colon, e.g. ':Acme Corp')"},
			{"contract_amount", "number", "Contract monetary amount"},
			{"contract_start_date", "string", "Start date (YYYY-MM-DD)"},
			{"contract_end_date", "string", "End date (YYYY-MM-DD)"},
			{"contract_term_in_months", "integer", "Term length in months"},
			{"internal_contract_owner", "string", "Internal contract owner (LINKED FIELD - value MUST start with colon, e.g. ':Robert Barash')"},
			{"contract_type", "string", "Type of contract (LINKED FIELD - value MUST start with colon, e.g. ':Services Agreement', ':Master Services Agreement', ':SaaS Agreement', ':Non-Disclosure Agreement')"},
			{"contract_description", "string", "Contract description"},
			{"contract_comments", "string", "Contract comments - use this field for analysis notes, review comments, and observations"},
			{"wfstate", "string", "Contract status (workflow state)"},
			{"confidential", "string", "Confidentiality level (REQUIRED)"},
			{"evaluation_frequency", "integer", "Evaluation frequency (REQUIRED)"},
			{"auto_renewal_term_in_months", "integer", "Auto-renewal term (REQUIRED)"},
			{"date_signed", "string", "Date contract was signed"},
			{"signer1_email", "string", "Primary signer email"},
			{"cost_center", "string", "Cost center"},
			{"annual_increase", "number", "Annual increase percentage"},
		},
		DefaultSearchFields: []string{
			"id", "record_type", "contract_title1", "company_name",
			"contract_amount", "contract_end_date", "internal_contract_owner",
			"date_signed", "wfstate", "contract_type",
		},
		RequiredFields: []string{
			"record_type", "auto_renewal_term_in_months", "confidential", "evaluation_frequency",
		},
		SupportsAttach:         true,
		SupportsActionButton:   true,
		SupportsEvaluateFormat: true,
	},
	{
		Key:               "company",
		KeyPlural:         "companies",
		APIPath:           "/company",
		DisplayName:       "Company",
		DisplayNamePlural: "Companies",
		TextSearchFields:  []string{"company_name"},
		KeyFields: []Field{
			{"company_name", "string", "Company name (REQUIRED)"},
			{"type_of_company", "string", "Type of company (REQUIRED)"},
			{"status", "string", "Company status (REQUIRED)"},
			{"industry", "string", "Industry classification"},
			{"parent_company_id", "string", "Parent company ID"},
			{"main_city", "string", "Main office city"},
			{"country", "string", "Country"},
			{"fax", "string", "Fax number"},
			{"account_rep", "string", "Account representative"},
			{"main_location_name", "string", "Main location name"},
			{"ongoing_notes", "string", "Ongoing notes"},
		},
		DefaultSearchFields: []string{
			"id", "company_name", "type_of_company", "status",
			"industry", "main_city", "country", "number_of_active_contracts",
		},
		RequiredFields:         []string{"company_name", "type_of_company", "status"},
		SupportsAttach:         true,
		SupportsActionButton:   true,
		SupportsEvaluateFormat: true,
	},
	{
		Key:               "attachment",
		KeyPlural:         "attachments",
		APIPath:           "/attachment",
		DisplayName:       "Attachment",
		DisplayNamePlural: "Attachments",
		TextSearchFields:  []string{"title"},
		KeyFields: []Field{
			{"title", "string", "Attachment title (REQUIRED)"},
			{"status", "string", "Attachment status (REQUIRED)"},
			{"attached_file", "string", "Attached file reference (REQUIRED)"},
			{"expiration_date", "string", "Expiration date (REQUIRED)"},
			{"attachment_type", "string", "Type of attachment"},
			{"contract_id", "string", "Associated contract ID"},
			{"document_source", "string", "Document source"},
			{"contract_type", "string", "Associated contract type"},
			{"sorting_order", "number", "Display sorting order"},
			{"include_in_approval_packet", "string", "Include in approval packet flag"},
		},
		DefaultSearchFields: []string{
			"id", "title", "status", "attachment_type", "contract_id",
			"expiration_date", "document_source", "sorting_order",
		},
		RequiredFields:         []string{"attached_file", "title", "status", "expiration_date"},
		SupportsAttach:         true,
		SupportsActionButton:   true,
		SupportsEvaluateFormat: true,
	},
	{
		Key:               "contact",
		KeyPlural:         "contacts",
		APIPath:           "/contacts",
		DisplayName:       "Contact",
		DisplayNamePlural: "Contacts",
		TextSearchFields:  []string{"full_name", "company_name"},
		KeyFields: []Field{
			{"first_name", "string", "First name"},
			{"last_name", "string", "Last name"},
			{"full_name", "string", "Full name"},
			{"email", "string", "Email address"},
			{"company_name", "array", "Associated company names"},
			{"company_id", "string", "Associated company ID"},
			{"status", "string", "Contact status"},
			{"type_of_contact", "string", "Type of contact"},
			{"direct_phone", "string", "Direct phone number"},
			{"cell_phone", "string", "Cell phone number"},
			{"title", "string", "Job title"},
			{"sso_auth_method", "string", "SSO auth method (REQUIRED)"},
		},
		DefaultSearchFields: []string{
			"id", "full_name", "email", "company_name", "status",
			"type_of_contact", "direct_phone", "title",
		},
		RequiredFields:         []string{"sso_auth_method"},
		SupportsAttach:         true,
		SupportsActionButton:   true,
		SupportsEvaluateFormat: true,
	},
	{
		Key:               "employee",
		KeyPlural:         "employees",
		APIPath:           "/contacts.employees",
		DisplayName:       "Employee",
		DisplayNamePlural: "Employees",
		TextSearchFields:  []string{"full_name", "company_name"},
		KeyFields: []Field{
			{"_login", "string", "Login username (REQUIRED)"},
			{"password", "string", "Password (REQUIRED)"},
			{"first_name", "string", "First name"},
			{"last_name", "string", "Last name"},
			{"full_name", "string", "Full name"},
			{"email", "string", "Email address"},
			{"company_name", "array", "Associated company names"},
			{"status", "string", "Contact status"},
			{"type_of_contact", "string", "Type of contact"},
			{"department0", "string", "Department"},
			{"title", "string", "Job title"},
			{"sso_auth_method", "string", "SSO auth method (REQUIRED)"},
			{"preferred_interface", "string", "Preferred UI interface"},
		},
		DefaultSearchFields: []string{
			"id", "full_name", "email", "company_name", "status",
			"type_of_contact", "department0", "title", "_login",
		},
		RequiredFields:         []string{"_login", "password", "sso_auth_method"},
		SupportsAttach:         true,
		SupportsActionButton:   true,
		SupportsEvaluateFormat: true,
	},
	{
		Key:               "customer",
		KeyPlural:         "customers",
		APIPath:           "/contacts.customer",
		DisplayName:       "Customer Contact",
		DisplayNamePlural: "Customer Contacts",
		TextSearchFields:  []string{"full_name", "company_name"},
		KeyFields: []Field{
			{"_login", "string", "Login username (REQUIRED)"},
			{"password", "string", "Password (REQUIRED)"},
			{"first_name", "string", "First name"},
			{"last_name", "string", "Last name"},
			{"full_name", "string", "Full name"},
			{"email", "string", "Email address"},
			{"company_name", "array", "Associated company names"},
			{"status", "string", "Contact status"},
			{"type_of_contact", "string", "Type of contact"},
			{"title", "string", "Job title"},
			{"sso_auth_method", "string", "SSO auth method (REQUIRED)"},
		},
		DefaultSearchFields: []string{
			"id", "full_name", "email", "company_name", "status",
			"type_of_contact", "title", "_login",
		},
		RequiredFields:         []string{"_login", "password", "sso_auth_method"},
		SupportsAttach:         true,
		SupportsActionButton:   true,
		SupportsEvaluateFormat: true,
	},
	{
		Key:               "contract_type",
		KeyPlural:         "contract_types",
		APIPath:           "/contract_type",
		DisplayName:       "Contract Type",
		DisplayNamePlural: "Contract Types",
		TextSearchFields:  []string{"contract_type"},
		KeyFields: []Field{
			{"contract_type", "string", "Contract type name (REQUIRED)"},
			{"party_type", "string", "Party type (REQUIRED)"},
			{"uses_tasks", "string", "Uses tasks flag (REQUIRED)"},
			{"default_cost_type", "string", "Default cost type (REQUIRED)"},
			{"default_contract_term_in_months", "integer", "Default contract term in months (REQUIRED)"},
			{"default_autorenewal_term_in_months", "integer", "Default auto-renewal term in months (REQUIRED)"},
			{"default_days_in_advance_to_cancel_auto_renewal", "integer", "Default days in advance to cancel auto-renewal (REQUIRED)"},
			{"description", "string", "Contract type description"},
			{"status", "string", "Contract type status"},
			{"sort_order", "number", "Sort order"},
			{"available_for_record_types", "string", "Available for record types"},
			{"default_renewal_type", "string", "Default renewal type (linked field)"},
			{"default_workflow_title", "string", "Default workflow title (linked field)"},
			{"default_task_workflow_title", "string", "Default task workflow title (linked field)"},
			{"default_question_set", "string", "Default question set for supplier evaluation (linked field)"},
			{"self_serve_available", "string", "Self-serve available flag"},
			{"enable_ad_hoc_tasks", "string", "Enable ad hoc tasks flag"},
			{"deleteable", "string", "Deletable flag"},
		},
		DefaultSearchFields: []string{
			"id", "contract_type", "party_type", "status", "description",
			"sort_order", "available_for_record_types", "default_renewal_type",
			"default_contract_term_in_months", "default_workflow_title",
			"self_serve_available", "uses_tasks",
		},
		RequiredFields: []string{
			"contract_type", "party_type", "uses_tasks", "default_cost_type",
			"default_contract_term_in_months", "default_autorenewal_term_in_months",
			"default_days_in_advance_to_cancel_auto_renewal",
		},
		SupportsAttach:         true,
		SupportsActionButton:   true,
		SupportsEvaluateFormat: true,
	},
}
