// Package descriptions holds the MCP tool names and their long descriptions.
package descriptions

import "sort"

// Tool names
const (
	ParsePDFFile     = "parse_pdf_file"
	ListApplications = "list_applications"
	GetApplication   = "get_application"
)

const (
	ParsePDFFileDescription = `Extract development applications from a District Council of Grant register PDF.

**When to use:** A register PDF has been saved in the document directory and its applications are needed as structured records.

**Returns:** A JSON array of applications with council_reference, address, description, info_url, comment_url, date_scraped and, when the register has them, date_received and legal_description.

**Examples:**
• Read one register: "Parse DA-Register-March-2018.pdf"
• Read and keep: "Parse 2019/register.pdf with save=true so it can be listed later"

**Notes:** The path is relative to the document directory and cannot leave it. Pages without a recognisable register table are skipped. Addresses are rewritten as "STREET, Suburb SA POSTCODE" when the street is known.`

	ListApplicationsDescription = `List the development applications stored by previous scrapes, most recently scraped first.

**When to use:** Browsing what the scraper has collected, or checking that a scrape stored anything.

**Returns:** A JSON array of applications, 20 by default and at most 500.

**Examples:**
• Latest applications: "List the 10 most recently scraped applications"`

	GetApplicationDescription = `Get one stored development application by its council reference.

**When to use:** The application number is known, for example 123/2018 or 830/11/2019, and its address or description is needed.

**Returns:** The application as a JSON object, or an error when it has not been scraped.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	ParsePDFFile:     ParsePDFFileDescription,
	ListApplications: ListApplicationsDescription,
	GetApplication:   GetApplicationDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the tool names in sorted order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
