package applications

import (
	"regexp"
	"strings"
	"time"
)

// NoDescription replaces an empty description
const NoDescription = "No Description Provided"

const (
	registerDateLayout = "2/01/2006"
	dateLayout         = "2006-01-02"
)

var (
	descriptionQualifier = regexp.MustCompile(`(?i)\s*(-\s*)?(BUILDING RULES ONLY|BUILDING ONLY|PLANNING ONLY)\s*$`)
	hundredFragment      = regexp.MustCompile(`(?i)^HD\.?\s|\bHUNDRED\b`)
	hundredDecoration    = regexp.MustCompile(`(?i)^(HD\.?|HUNDRED\s+OF|HUNDRED)\s+|\s+HUNDRED$`)
)

// CleanDescription removes the approval scope qualifier from a description
func CleanDescription(description string) string {
	description = strings.ReplaceAll(strings.TrimSpace(description), "DW ELLING", "DWELLING")
	description = strings.TrimSpace(descriptionQualifier.ReplaceAllString(description, ""))
	if description == "" {
		return NoDescription
	}
	return description
}

// ParseDate converts a register date such as "5/03/2018" to "2018-03-05".
// Anything else gives an empty string.
func ParseDate(text string) string {
	t, err := time.Parse(registerDateLayout, strings.TrimSpace(text))
	if err != nil {
		return ""
	}
	return t.Format(dateLayout)
}

// LegalDescription joins the lot, section and hundred that are present
func LegalDescription(lot, section, hundred string) string {
	var parts []string
	for _, p := range []struct{ label, value string }{
		{"Lot", lot},
		{"Section", section},
		{"Hundred", hundred},
	} {
		if !isPlaceholder(p.value) {
			parts = append(parts, p.label+" "+strings.TrimSpace(p.value))
		}
	}
	return strings.Join(parts, ", ")
}

// splitHundred finds a trailing hundred in address lines. A last line
// marked "HD" or "HUNDRED" is removed from the address. An unmarked line that
// isHundred knows is reported but stays, since it still narrows the suburb.
func splitHundred(lines []string, isHundred func(string) bool) ([]string, string) {
	n := len(lines)
	if n < 2 {
		return lines, ""
	}
	last := lines[n-1]
	switch {
	case hundredFragment.MatchString(last):
		return lines[:n-1], last
	case isHundred != nil && isHundred(last):
		return lines, last
	}
	return lines, ""
}

// hundredName strips the "HD" or "HUNDRED OF" decoration from a hundred
func hundredName(fragment string) string {
	return strings.TrimSpace(hundredDecoration.ReplaceAllString(strings.TrimSpace(fragment), ""))
}

// isPlaceholder reports whether a cell holds nothing or only dashes
func isPlaceholder(text string) bool {
	return strings.Trim(text, " -–—") == ""
}
