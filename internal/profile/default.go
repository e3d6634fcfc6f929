package profile

// Default returns the built-in profile: an early-career business consultant targeting
// analyst, product and IT sales roles around Delhi NCR. Each call returns a fresh copy.
func Default() *Profile {
	return &Profile{
		Name:  "Chirag Sharma",
		Email: "",
		TargetRoles: []string{
			"Business Consultant", "Business Analyst",
			"Product Manager", "IT Sales",
			"Business Development", "Associate Product Manager",
			"Project Manager", "Pre-Sales Consultant",
		},
		Roles: Taxonomy{
			{Name: "Business Consultant", Keywords: []string{"business consultant", "management consultant", "strategy consultant"}},
			{Name: "Business Analyst", Keywords: []string{"business analyst", "ba ", "systems analyst", "process analyst", "functional analyst"}},
			{Name: "Product Manager", Keywords: []string{"product manager", "apm", "associate product manager", "pm ", "product owner"}},
			{Name: "IT Sales / BD", Keywords: []string{
				"it sales", "business development", "bd executive", "sales executive",
				"pre-sales", "presales", "inside sales", "account executive", "bd manager",
			}},
			{Name: "Project Manager", Keywords: []string{"project manager", "delivery manager", "program manager", "scrum master"}},
			{Name: "Pre-Sales Consultant", Keywords: []string{"pre-sales", "presales", "solution consultant", "sales engineer"}},
		},
		Skills: Taxonomy{
			{Name: "BRD Writing", Keywords: []string{"brd", "business requirement", "requirement document", "business requirements"}},
			{Name: "PRD Writing", Keywords: []string{"prd", "product requirement", "product document"}},
			{Name: "Proposal Writing", Keywords: []string{"proposal", "pitch deck", "rfp", "bid document", "eoi"}},
			{Name: "HubSpot CRM", Keywords: []string{"hubspot", "crm", "salesforce", "zoho crm", "customer relationship"}},
			{Name: "LinkedIn Sales Navigator", Keywords: []string{"linkedin", "sales navigator", "lead generation", "outreach"}},
			{Name: "Figma", Keywords: []string{"figma", "ui/ux", "prototyping", "wireframe", "mockup"}},
			{Name: "Agile", Keywords: []string{"agile", "scrum", "sprint", "kanban", "jira"}},
			{Name: "Stakeholder Management", Keywords: []string{"stakeholder", "client management", "account management", "client facing"}},
			{Name: "Market Research", Keywords: []string{"market research", "competitive analysis", "research"}},
			{Name: "IT Staffing", Keywords: []string{"staffing", "c2c", "c2h", "recruitment", "talent acquisition"}},
			{Name: "Documentation", Keywords: []string{"documentation", "technical writing", "user stories", "sow", "mou"}},
			{Name: "Cross-functional", Keywords: []string{"cross-functional", "coordination", "collaboration", "team management"}},
			{Name: "Excel", Keywords: []string{"excel", "spreadsheet", "data analysis", "mis"}},
			{Name: "Project Coordination", Keywords: []string{"project coordination", "delivery", "milestone", "timeline management"}},
		},
		Gaps: Taxonomy{
			{Name: "MBA", Keywords: []string{"mba", "master of business", "post graduate"}},
			{Name: "PMP Certification", Keywords: []string{"pmp", "prince2", "project management certification"}},
			{Name: "SQL / Data", Keywords: []string{"sql", "power bi", "tableau", "data analytics"}},
			{Name: "Python / Coding", Keywords: []string{"python", "coding", "programming", "javascript"}},
			{Name: "CA / Finance", Keywords: []string{"ca ", "chartered accountant", "finance degree", "cfa"}},
		},
		TargetLocations: []string{"Delhi", "Noida", "Gurugram", "Gurgaon", "Delhi NCR", "Remote"},
		NegativeSignals: []string{
			"10+ years", "15 years", "senior director", "vp of", "vice president",
			"cto", "ceo", "chief ", "head of product", "phd required",
			"data science", "machine learning", "deep learning", "python developer",
			"java developer", "software engineer", "backend developer", "frontend developer",
			"full stack", "devops", "cloud engineer", "security engineer",
			"ca required", "chartered accountant", "mba required",
		},
		PositiveSignals: []string{
			"0-2 years", "1-3 years", "0-3 years", "fresher", "entry level",
			"junior", "associate", "assistant manager", "trainee",
			"1+ year", "1-2 years", "recent graduate",
		},
		Background: []string{
			"Associate Business Consultant, 1.5 years",
			"Closed 10+ client accounts in app/web development and IT staffing",
			"Worked with clients in India and Middle East markets",
			"Created BRDs, PRDs, EOIs and pitch decks for 5+ product projects",
			"B.Tech Computer Science, 2024",
		},
	}
}
